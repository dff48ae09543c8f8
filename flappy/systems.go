package flappy

import (
	"math"

	"github.com/plus3/flappy/assets"
	"github.com/plus3/flappy/ecs"
)

type birdItem = struct {
	ecs.EntityId
	*Bird
	*Position
	*Velocity
	*Sprite
}

type pipeItem = struct {
	ecs.EntityId
	*Pipe
	*Position
	*Sprite
}

type groundItem = struct {
	ecs.EntityId
	*Ground
	*Position
	*Sprite
}

// FlapSystem applies each slot's flap intent.
type FlapSystem struct {
	Birds    ecs.Query[birdItem]
	Controls ecs.Singleton[Controls]
	Settings ecs.Singleton[Settings]
}

func (s *FlapSystem) Execute(frame *ecs.UpdateFrame) {
	cfg := &s.Settings.Get().Game
	flaps := s.Controls.Get().Flap

	for item := range s.Birds.Values() {
		bird := item.Bird
		pressed := bird.Slot < len(flaps) && flaps[bird.Slot]

		// arc physics latches until the input is released
		if cfg.Physics == "arc" && !pressed {
			bird.FlapLatched = false
		}
		if !pressed || !bird.Alive || item.Position.Y <= 0 {
			continue
		}
		if cfg.FlapLatch && bird.FlapLatched {
			continue
		}

		item.Velocity.Y = cfg.FlapVelocity
		bird.FlapLatched = cfg.FlapLatch
		bird.ArcTicks = 0
		bird.ArcLaunch = cfg.FlapVelocity
		bird.ArcBaseY = item.Position.Y
	}
}

// GravitySystem integrates vertical motion and derives the tilt.
// Dead birds keep falling until the floor limit; without one they freeze.
type GravitySystem struct {
	Birds    ecs.Query[birdItem]
	Settings ecs.Singleton[Settings]
}

func (s *GravitySystem) Execute(frame *ecs.UpdateFrame) {
	cfg := &s.Settings.Get().Game

	for item := range s.Birds.Values() {
		bird, pos, vel := item.Bird, item.Position, item.Velocity
		if !bird.Alive && cfg.FloorLimitY <= 0 {
			continue
		}

		if cfg.Physics == "arc" {
			bird.ArcTicks++
			t := float64(bird.ArcTicks)
			d := min(bird.ArcLaunch*t+cfg.Gravity*t*t, cfg.MaxFallSpeed)
			pos.Y += d
			vel.Y = d

			if d < 0 || pos.Y < bird.ArcBaseY+50 {
				bird.Tilt = max(bird.Tilt, 25)
			} else if bird.Tilt > -90 {
				bird.Tilt -= 20
			}
			continue
		}

		vel.Y = min(vel.Y+cfg.Gravity, cfg.MaxFallSpeed)
		if cfg.FloorLimitY <= 0 || pos.Y < cfg.FloorLimitY {
			pos.Y += math.Trunc(vel.Y)
		}
		if vel.Y == 0 {
			bird.FlapLatched = false
		}
		bird.Tilt = -vel.Y * 7
	}
}

// AnimationSystem cycles the wing frames of living birds.
type AnimationSystem struct {
	Birds    ecs.Query[birdItem]
	Settings ecs.Singleton[Settings]
}

var pingPong = [4]int{0, 1, 2, 1}

func (s *AnimationSystem) Execute(frame *ecs.UpdateFrame) {
	cfg := &s.Settings.Get().Game
	span := cfg.AnimationTicks

	for item := range s.Birds.Values() {
		bird := item.Bird
		if !bird.Alive {
			continue
		}

		bird.AnimTick++
		if cfg.AnimationPingPong {
			if bird.AnimTick >= span*len(pingPong) {
				bird.AnimTick = 0
			}
			bird.Frame = pingPong[bird.AnimTick/span]
		} else {
			if bird.AnimTick >= span*3 {
				bird.AnimTick = 0
			}
			bird.Frame = bird.AnimTick / span
		}

		// nose-diving birds hold their wings still
		if bird.Tilt < -80 {
			bird.Frame = 1
			bird.AnimTick = span * 2
		}
		item.Sprite.Key = assets.BirdFrame(bird.Frame)
	}
}

// ScrollSystem moves pipes and ground left while any bird is alive.
type ScrollSystem struct {
	Pipes    ecs.Query[pipeItem]
	Grounds  ecs.Query[groundItem]
	Session  ecs.Singleton[Session]
	Settings ecs.Singleton[Settings]
}

func (s *ScrollSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Session.Get().Alive == 0 {
		return
	}
	speed := s.Settings.Get().Game.ScrollSpeed

	for item := range s.Pipes.Values() {
		item.Position.X -= speed
	}
	for item := range s.Grounds.Values() {
		item.Position.X -= speed
	}
}

// GroundSystem keeps the ground tiles contiguous across the screen.
type GroundSystem struct {
	Grounds  ecs.Query[groundItem]
	Session  ecs.Singleton[Session]
	Settings ecs.Singleton[Settings]
}

func (s *GroundSystem) Execute(frame *ecs.UpdateFrame) {
	settings := s.Settings.Get()
	cfg := &settings.Game
	if !cfg.Ground {
		return
	}

	right := math.Inf(-1)
	for item := range s.Grounds.Values() {
		right = max(right, item.Position.X+item.Sprite.W)
	}
	if math.IsInf(right, -1) {
		right = 0
	}

	sprite := spriteFor(settings.Sprites, assets.Ground)
	session := s.Session.Get()
	for right <= float64(cfg.ScreenWidth) {
		frame.Commands.Spawn(Position{X: right, Y: cfg.GroundY}, sprite, Ground{Index: session.NextTile})
		session.NextTile++
		right += sprite.W
	}
}

// PipeSpawnSystem spawns pipe pairs on a countdown while any bird is alive.
type PipeSpawnSystem struct {
	Session  ecs.Singleton[Session]
	Settings ecs.Singleton[Settings]
	Random   ecs.Singleton[Random]
}

func (s *PipeSpawnSystem) Execute(frame *ecs.UpdateFrame) {
	settings := s.Settings.Get()
	cfg := &settings.Game
	if !cfg.Pipes || cfg.PipeSpawn != "timer" {
		return
	}

	session := s.Session.Get()
	rng := s.Random.Get().Rand
	if session.PipeTimer <= 0 && session.Alive > 0 {
		for _, components := range newPipePair(settings, session, rng, cfg.PipeSpawnX) {
			frame.Commands.Spawn(components...)
		}
		session.PipeTimer = randInclusive(rng, cfg.PipeTimerMin, cfg.PipeTimerMax)
	}
	session.PipeTimer -= cfg.PipeTimerStep
}

// ScoreSystem credits each living bird once per pipe pair it clears.
type ScoreSystem struct {
	Birds    ecs.Query[birdItem]
	Pipes    ecs.Query[pipeItem]
	Session  ecs.Singleton[Session]
	Settings ecs.Singleton[Settings]
	Random   ecs.Singleton[Random]
}

func (s *ScoreSystem) Execute(frame *ecs.UpdateFrame) {
	settings := s.Settings.Get()
	cfg := &settings.Game
	if !cfg.Pipes {
		return
	}
	session := s.Session.Get()

	for pipe := range s.Pipes.Values() {
		if pipe.Pipe.Kind != PipeBottom {
			continue
		}
		pipeRect := pipe.Sprite.rect(pipe.Position)

		firstPass := true
		for _, passed := range pipe.Pipe.Passed {
			if passed {
				firstPass = false
				break
			}
		}

		for bird := range s.Birds.Values() {
			slot := bird.Bird.Slot
			if !bird.Bird.Alive || slot >= len(pipe.Pipe.Passed) || pipe.Pipe.Passed[slot] {
				continue
			}
			birdRect := bird.Sprite.rect(bird.Position)

			var crossed bool
			switch cfg.ScoreAt {
			case "enter":
				crossed = birdRect.X > pipeRect.X
			case "center":
				crossed = birdRect.CenterX() > pipeRect.CenterX()
			default:
				crossed = birdRect.CenterX() > pipeRect.Right()
			}
			if !crossed {
				continue
			}

			pipe.Pipe.Passed[slot] = true
			bird.Bird.Score++
			bird.Bird.Fitness += cfg.PipeFitness
			session.Score = max(session.Score, bird.Bird.Score)
			session.Best = max(session.Best, session.Score)

			if firstPass && cfg.PipeSpawn == "pass" {
				for _, components := range newPipePair(settings, session, s.Random.Get().Rand, cfg.PipeSpawnX) {
					frame.Commands.Spawn(components...)
				}
				firstPass = false
			}
		}
	}
}

// CollisionSystem kills birds that hit an obstacle or leave the play area.
type CollisionSystem struct {
	Birds    ecs.Query[birdItem]
	Pipes    ecs.Query[pipeItem]
	Grounds  ecs.Query[groundItem]
	Session  ecs.Singleton[Session]
	Settings ecs.Singleton[Settings]
}

func (s *CollisionSystem) Execute(frame *ecs.UpdateFrame) {
	settings := s.Settings.Get()
	cfg := &settings.Game
	session := s.Session.Get()

	for bird := range s.Birds.Values() {
		if !bird.Bird.Alive {
			continue
		}
		if !s.collides(settings, bird) {
			continue
		}

		bird.Bird.Alive = false
		bird.Bird.Fitness -= cfg.DeathFitness
		bird.Bird.DiedAt = session.Tick
		session.Alive--
	}

	if session.Alive <= 0 {
		session.Alive = 0
		session.GameOver = true
	}
}

func (s *CollisionSystem) collides(settings *Settings, bird birdItem) bool {
	cfg := &settings.Game
	birdRect := bird.Sprite.rect(bird.Position)

	if cfg.CeilingKill && birdRect.Y < 0 {
		return true
	}
	if cfg.BoundsKill && (birdRect.Y <= 0 || birdRect.Bottom() >= float64(cfg.ScreenHeight)) {
		return true
	}

	hit := func(p *Position, sp *Sprite) bool {
		if !birdRect.Intersects(sp.rect(p)) {
			return false
		}
		if cfg.Collision != "mask" {
			return true
		}
		dx := int(math.Round(p.X - bird.Position.X))
		dy := int(math.Round(p.Y - bird.Position.Y))
		_, _, ok := settings.Sprites.Mask(bird.Sprite.Key).Overlap(settings.Sprites.Mask(sp.Key), dx, dy)
		return ok
	}

	for pipe := range s.Pipes.Values() {
		if hit(pipe.Position, pipe.Sprite) {
			return true
		}
	}
	for ground := range s.Grounds.Values() {
		if hit(ground.Position, ground.Sprite) {
			return true
		}
	}
	return false
}

// CleanupSystem removes pipes and ground tiles that scrolled off screen.
type CleanupSystem struct {
	Pipes    ecs.Query[pipeItem]
	Grounds  ecs.Query[groundItem]
	Settings ecs.Singleton[Settings]
}

func (s *CleanupSystem) Execute(frame *ecs.UpdateFrame) {
	cfg := &s.Settings.Get().Game

	for item := range s.Pipes.Values() {
		if item.Position.X <= cfg.PipeDespawnX {
			frame.Commands.Delete(item.EntityId)
		}
	}
	for item := range s.Grounds.Values() {
		if item.Position.X+item.Sprite.W <= 0 {
			frame.Commands.Delete(item.EntityId)
		}
	}
}
