package config

import (
	"fmt"
	"slices"
)

var presets = map[string]func() GameConfig{
	"sprite":  spritePreset,
	"neat":    neatPreset,
	"classic": classicPreset,
	"hover":   hoverPreset,
}

// Presets lists the known preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Preset returns the game rules of a named variant.
func Preset(name string) (GameConfig, error) {
	build, ok := presets[name]
	if !ok {
		return GameConfig{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return build(), nil
}

// sprite: the Q-learning sprite game. Gap tops 100..220 correspond to a
// 700px top pipe drawn at y -600..-480.
func spritePreset() GameConfig {
	return GameConfig{
		ScreenWidth:    551,
		ScreenHeight:   720,
		TicksPerSecond: 60,

		BirdStartX: 100,
		BirdStartY: 250,

		Physics:      "euler",
		Gravity:      0.5,
		MaxFallSpeed: 7,
		FlapVelocity: -7,
		FlapLatch:    true,
		FloorLimitY:  500,

		ScrollSpeed: 1,

		Pipes:         true,
		PipeSpawn:     "timer",
		PipeSpawnX:    550,
		PipeDespawnX:  -551,
		GapTopMin:     100,
		GapTopMax:     220,
		GapMin:        90,
		GapMax:        130,
		PipeTimerMin:  180,
		PipeTimerMax:  250,
		PipeTimerStep: 1,
		ScoreAt:       "exit",

		Ground:  true,
		GroundY: 520,

		Collision: "rect",

		AnimationTicks: 10,

		PipeFitness:  5,
		DeathFitness: 1,
	}
}

// neat: the multi-bird evolution variant, faster scrolling and a narrower gap range.
func neatPreset() GameConfig {
	g := spritePreset()
	g.ScrollSpeed = 3
	g.GapMin = 110
	g.GapMax = 130
	g.PipeTimerStep = 2
	g.ScoreAt = "center"
	g.FlapLatch = false
	return g
}

// classic: 500x800 window, arc physics, fixed 200px gap, pixel-mask collision.
func classicPreset() GameConfig {
	return GameConfig{
		ScreenWidth:    500,
		ScreenHeight:   800,
		TicksPerSecond: 30,

		BirdStartX: 247,
		BirdStartY: 362,

		Physics:      "arc",
		Gravity:      1.5,
		MaxFallSpeed: 16,
		FlapVelocity: -10.5,
		FlapLatch:    true,

		ScrollSpeed: 5,

		Pipes:        true,
		PipeSpawn:    "pass",
		PipeSpawnX:   500,
		PipeDespawnX: -53,
		GapTopMin:    50,
		GapTopMax:    449,
		GapMin:       200,
		GapMax:       200,
		ScoreAt:      "enter",

		Ground:  true,
		GroundY: 630,

		CeilingKill: true,
		Collision:   "mask",

		AnimationTicks:    5,
		AnimationPingPong: true,

		PipeFitness:  5,
		DeathFitness: 1,
	}
}

// hover: no pipes and no ground, the bird only has to stay on screen.
func hoverPreset() GameConfig {
	return GameConfig{
		ScreenWidth:    551,
		ScreenHeight:   720,
		TicksPerSecond: 60,

		BirdStartX: 100,
		BirdStartY: 250,

		Physics:      "euler",
		Gravity:      0.5,
		MaxFallSpeed: 10,
		FlapVelocity: -10,

		BoundsKill: true,
		Collision:  "rect",

		AnimationTicks: 10,

		PipeFitness:  5,
		DeathFitness: 1,
	}
}
