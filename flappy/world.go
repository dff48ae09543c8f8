// Package flappy is the game simulation: an ECS world of birds, pipes and
// ground tiles advanced one fixed tick at a time.
package flappy

import (
	"math/rand/v2"

	"github.com/plus3/flappy/agent"
	"github.com/plus3/flappy/assets"
	"github.com/plus3/flappy/config"
	"github.com/plus3/flappy/ecs"
)

// StepResult describes the outcome of one tick for every slot.
type StepResult struct {
	// Rewards is +1 for a bird alive after the tick, -1 on the tick it
	// died and 0 afterwards.
	Rewards  []float64
	Done     []bool
	Score    int
	Alive    int
	GameOver bool
	Tick     uint64
}

// World owns the ECS storage and the fixed system pipeline.
type World struct {
	cfg     config.GameConfig
	sprites *assets.Sprites
	slots   int

	storage   *ecs.Storage
	scheduler *ecs.Scheduler

	session  *ecs.Singleton[Session]
	controls *ecs.Singleton[Controls]
	random   *ecs.Singleton[Random]

	birds   []ecs.EntityId
	birdsV  *ecs.View[birdItem]
	pipesV  *ecs.View[pipeItem]
	groundV *ecs.View[groundItem]

	wasAlive []bool
}

// NewWorld builds a world for the given number of bird slots. A nil sprite
// set uses the generated placeholders. The world starts reset, on episode 1.
func NewWorld(cfg config.GameConfig, sprites *assets.Sprites, slots int, seed uint64) *World {
	if slots < 1 {
		panic("world needs at least one bird slot")
	}
	if sprites == nil {
		sprites = assets.Fallback()
	}

	storage := ecs.NewStorage(newRegistry())
	w := &World{
		cfg:       cfg,
		sprites:   sprites,
		slots:     slots,
		storage:   storage,
		scheduler: ecs.NewScheduler(storage),
		birdsV:    ecs.NewView[birdItem](storage),
		pipesV:    ecs.NewView[pipeItem](storage),
		groundV:   ecs.NewView[groundItem](storage),
		wasAlive:  make([]bool, slots),
	}

	ecs.NewSingleton(storage, Settings{Game: cfg, Sprites: sprites, Slots: slots})
	w.session = ecs.NewSingleton(storage, Session{})
	w.controls = ecs.NewSingleton(storage, Controls{Flap: make([]bool, slots)})
	w.random = ecs.NewSingleton(storage, Random{Rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))})

	w.scheduler.Register(&FlapSystem{})
	w.scheduler.Register(&GravitySystem{})
	w.scheduler.Register(&AnimationSystem{})
	w.scheduler.Register(&ScrollSystem{})
	w.scheduler.Register(&GroundSystem{})
	w.scheduler.Register(&PipeSpawnSystem{})
	w.scheduler.Register(&ScoreSystem{})
	w.scheduler.Register(&CollisionSystem{})
	w.scheduler.Register(&CleanupSystem{})

	w.Reset()
	return w
}

func (w *World) Config() config.GameConfig    { return w.cfg }
func (w *World) Sprites() *assets.Sprites     { return w.sprites }
func (w *World) Slots() int                   { return w.slots }
func (w *World) Storage() *ecs.Storage        { return w.storage }
func (w *World) Scheduler() *ecs.Scheduler    { return w.scheduler }
func (w *World) Session() Session             { return *w.session.Get() }
func (w *World) BirdID(slot int) ecs.EntityId { return w.birds[slot] }

// Bird returns the live component of a slot's bird.
func (w *World) Bird(slot int) *Bird {
	return ecs.ReadComponent[Bird](w.storage, w.birds[slot])
}

// Reset discards every entity and starts the next episode. The best score
// survives. Resetting an episode that never ticked replays it under the
// same number.
func (w *World) Reset() {
	w.storage.Clear()

	session := w.session.Get()
	episode := session.Episode
	if episode == 0 || session.Tick > 0 {
		episode++
	}
	*session = Session{
		Episode: episode,
		Best:    session.Best,
		Alive:   w.slots,
	}
	clear(w.controls.Get().Flap)

	birdSprite := spriteFor(w.sprites, assets.BirdDown)
	x := w.cfg.BirdStartX - birdSprite.W/2
	y := w.cfg.BirdStartY - birdSprite.H/2

	w.birds = w.birds[:0]
	for slot := 0; slot < w.slots; slot++ {
		id := w.storage.Spawn(
			Position{X: x, Y: y},
			Velocity{},
			birdSprite,
			Bird{Slot: slot, Alive: true, ArcBaseY: y},
		)
		w.birds = append(w.birds, id)
		w.wasAlive[slot] = true
	}

	if w.cfg.Ground {
		w.storage.Spawn(Position{X: 0, Y: w.cfg.GroundY}, spriteFor(w.sprites, assets.Ground), Ground{})
		session.NextTile = 1
	}
	if w.cfg.Pipes && w.cfg.PipeSpawn == "pass" {
		w.SpawnPipePair(w.cfg.PipeSpawnX, float64(randInclusive(w.random.Get().Rand, w.cfg.GapTopMin, w.cfg.GapTopMax)), float64(w.cfg.GapMin))
	}
}

// SpawnPipePair places a pipe pair immediately with the gap spanning
// gapTop..gapTop+gap.
func (w *World) SpawnPipePair(x, gapTop, gap float64) {
	for _, components := range pipePair(w.sprites, w.session.Get(), w.slots, x, gapTop, gap) {
		w.storage.Spawn(components...)
	}
}

// Step advances the world one tick. actions is indexed by slot; missing
// entries are Idle.
func (w *World) Step(actions []agent.Action) StepResult {
	session := w.session.Get()
	session.Tick++

	flaps := w.controls.Get().Flap
	for slot := range flaps {
		flaps[slot] = slot < len(actions) && actions[slot] == agent.Flap
	}

	w.scheduler.Once(1.0 / float64(w.cfg.TicksPerSecond))

	result := StepResult{
		Rewards:  make([]float64, w.slots),
		Done:     make([]bool, w.slots),
		Score:    session.Score,
		Alive:    session.Alive,
		GameOver: session.GameOver,
		Tick:     session.Tick,
	}
	for slot := range w.birds {
		alive := w.Bird(slot).Alive
		switch {
		case alive:
			result.Rewards[slot] = 1
		case w.wasAlive[slot]:
			result.Rewards[slot] = -1
		}
		result.Done[slot] = !alive
		w.wasAlive[slot] = alive
	}
	return result
}

func newPipePair(settings *Settings, session *Session, rng *rand.Rand, x float64) [][]any {
	cfg := &settings.Game
	gapTop := randInclusive(rng, cfg.GapTopMin, cfg.GapTopMax)
	gap := randInclusive(rng, cfg.GapMin, cfg.GapMax)
	return pipePair(settings.Sprites, session, settings.Slots, x, float64(gapTop), float64(gap))
}

func pipePair(sprites *assets.Sprites, session *Session, slots int, x, gapTop, gap float64) [][]any {
	pair := session.NextPair
	session.NextPair++

	top := spriteFor(sprites, assets.PipeTop)
	bottom := spriteFor(sprites, assets.PipeBottom)
	gapBottom := gapTop + gap

	return [][]any{
		{
			Position{X: x, Y: gapTop - top.H},
			top,
			Pipe{Kind: PipeTop, Pair: pair, GapTop: gapTop, GapBottom: gapBottom},
		},
		{
			Position{X: x, Y: gapBottom},
			bottom,
			Pipe{Kind: PipeBottom, Pair: pair, GapTop: gapTop, GapBottom: gapBottom, Passed: make([]bool, slots)},
		},
	}
}

func randInclusive(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}
