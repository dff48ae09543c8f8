package flappy

import (
	"math/rand/v2"

	"github.com/plus3/flappy/assets"
	"github.com/plus3/flappy/config"
	"github.com/plus3/flappy/ecs"
	"github.com/plus3/flappy/mask"
)

// Position is the top-left corner of an entity's sprite.
type Position struct {
	X, Y float64
}

// Velocity is vertical speed in pixels per tick, positive downwards.
type Velocity struct {
	Y float64
}

// Sprite names the image an entity is drawn with and its size.
type Sprite struct {
	Key  assets.Key
	W, H float64
}

// Bird is one player or agent.
type Bird struct {
	Slot  int
	Alive bool

	Frame    int
	AnimTick int
	// Tilt is in degrees, counter-clockwise positive (nose up).
	Tilt float64

	FlapLatched bool
	// Arc physics: ticks since the last flap, the launch velocity and the
	// height the flap started from.
	ArcTicks  int
	ArcLaunch float64
	ArcBaseY  float64

	Score   int
	Fitness float64
	DiedAt  uint64
}

type PipeKind int

const (
	PipeTop PipeKind = iota
	PipeBottom
)

// Pipe is one half of a pipe pair. Only the bottom half tracks scoring.
type Pipe struct {
	Kind      PipeKind
	Pair      uint64
	GapTop    float64
	GapBottom float64
	Passed    []bool
}

// Ground is one scrolling ground tile.
type Ground struct {
	Index int
}

// Session is the per-episode game state.
type Session struct {
	Episode   int
	Tick      uint64
	Score     int
	Best      int
	Alive     int
	PipeTimer int
	NextPair  uint64
	NextTile  int
	GameOver  bool
}

// Settings carries the immutable rules of the world.
type Settings struct {
	Game    config.GameConfig
	Sprites *assets.Sprites
	Slots   int
}

// Controls holds each slot's flap intent for the current frame.
type Controls struct {
	Flap []bool
}

// Random is the world's only source of randomness.
type Random struct {
	Rand *rand.Rand
}

func newRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Sprite](registry)
	ecs.RegisterComponent[Bird](registry)
	ecs.RegisterComponent[Pipe](registry)
	ecs.RegisterComponent[Ground](registry)
	return registry
}

func (s Sprite) rect(p *Position) mask.Rect {
	return mask.Rect{X: p.X, Y: p.Y, W: s.W, H: s.H}
}

func spriteFor(sprites *assets.Sprites, key assets.Key) Sprite {
	w, h := sprites.Size(key)
	return Sprite{Key: key, W: float64(w), H: float64(h)}
}
