package flappy_test

import (
	"testing"

	"github.com/plus3/flappy/agent"
	"github.com/plus3/flappy/config"
	"github.com/plus3/flappy/flappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preset(t *testing.T, name string) config.GameConfig {
	t.Helper()
	cfg, err := config.Preset(name)
	require.NoError(t, err)
	return cfg
}

// still is a world where nothing moves on its own.
func still(t *testing.T, name string) config.GameConfig {
	cfg := preset(t, name)
	cfg.Gravity = 0
	cfg.ScrollSpeed = 0
	cfg.Pipes = false
	return cfg
}

func idle(n int) []agent.Action { return make([]agent.Action, n) }

func flap(n int) []agent.Action {
	actions := make([]agent.Action, n)
	for i := range actions {
		actions[i] = agent.Flap
	}
	return actions
}

func birdState(w *flappy.World, slot int) flappy.BirdState {
	return w.Snapshot().Birds[slot]
}

func TestResetSpawnsEpisode(t *testing.T) {
	w := flappy.NewWorld(preset(t, "sprite"), nil, 2, 1)

	snap := w.Snapshot()
	require.Len(t, snap.Birds, 2)
	for _, b := range snap.Birds {
		assert.Equal(t, 83.0, b.X)
		assert.Equal(t, 238.0, b.Y)
		assert.True(t, b.Alive)
	}
	require.Len(t, snap.Grounds, 1)
	assert.Equal(t, 0.0, snap.Grounds[0].X)
	assert.Empty(t, snap.Pipes)
	assert.Equal(t, 1, snap.Session.Episode)
	assert.Equal(t, 2, snap.Session.Alive)

	w.Step(idle(2))
	w.Reset()
	snap = w.Snapshot()
	assert.Equal(t, 2, snap.Session.Episode)
	assert.Equal(t, uint64(0), snap.Session.Tick)
	assert.Empty(t, snap.Pipes)
	assert.Len(t, snap.Grounds, 1)
	assert.Equal(t, 238.0, birdState(w, 1).Y)
}

func TestResetBeforeFirstTickKeepsEpisode(t *testing.T) {
	w := flappy.NewWorld(preset(t, "sprite"), nil, 1, 1)
	w.Reset()
	w.Reset()
	assert.Equal(t, 1, w.Session().Episode)

	w.Step(idle(1))
	w.Reset()
	w.Reset()
	assert.Equal(t, 2, w.Session().Episode)
}

func TestGravityCapsFallSpeed(t *testing.T) {
	w := flappy.NewWorld(preset(t, "sprite"), nil, 1, 1)

	w.Step(idle(1))
	assert.Equal(t, 238.0, birdState(w, 0).Y, "0.5 px/tick truncates to no movement")
	w.Step(idle(1))
	assert.Equal(t, 239.0, birdState(w, 0).Y)

	for i := 2; i < 20; i++ {
		res := w.Step(idle(1))
		require.Equal(t, []float64{1}, res.Rewards)
	}
	assert.Equal(t, 329.0, birdState(w, 0).Y)
	assert.InDelta(t, -49.0, birdState(w, 0).Tilt, 1e-9, "tilt follows velocity 7")
}

func TestFlapLatchReleasesAtApex(t *testing.T) {
	w := flappy.NewWorld(preset(t, "sprite"), nil, 1, 1)

	w.Step(flap(1))
	assert.Equal(t, 232.0, birdState(w, 0).Y)
	assert.True(t, w.Bird(0).FlapLatched)

	for i := 2; i <= 13; i++ {
		w.Step(flap(1))
		require.True(t, w.Bird(0).FlapLatched, "tick %d", i)
	}

	// tick 14 reaches velocity zero and releases the latch
	w.Step(flap(1))
	assert.False(t, w.Bird(0).FlapLatched)

	before := birdState(w, 0).Y
	w.Step(flap(1))
	assert.Equal(t, before-6, birdState(w, 0).Y)
	assert.True(t, w.Bird(0).FlapLatched)
}

func TestBirdDiesOnGround(t *testing.T) {
	w := flappy.NewWorld(preset(t, "sprite"), nil, 1, 1)

	var res flappy.StepResult
	ticks := 0
	for ; ticks < 200; ticks++ {
		res = w.Step(idle(1))
		if res.GameOver {
			break
		}
	}
	require.True(t, res.GameOver)
	assert.Equal(t, []float64{-1}, res.Rewards)
	assert.Equal(t, []bool{true}, res.Done)
	assert.Equal(t, 0, res.Alive)
	assert.Equal(t, -1.0, w.Bird(0).Fitness)
	assert.Greater(t, birdState(w, 0).Y+24, 520.0)

	pipesBefore := w.Snapshot().Pipes
	for i := 0; i < 20; i++ {
		res = w.Step(idle(1))
		assert.Equal(t, []float64{0}, res.Rewards, "no reward after death")
	}
	assert.Equal(t, pipesBefore, w.Snapshot().Pipes, "scrolling stops when every bird is dead")
	assert.GreaterOrEqual(t, birdState(w, 0).Y, 500.0)
	assert.Less(t, birdState(w, 0).Y, 507.0, "falling stops at the floor limit")
}

func TestPipeTimerSpawnsAndScrolls(t *testing.T) {
	w := flappy.NewWorld(preset(t, "sprite"), nil, 1, 7)

	w.Step(idle(1))
	snap := w.Snapshot()
	require.Len(t, snap.Pipes, 2)
	assert.Equal(t, 550.0, snap.Pipes[0].X)

	timer := snap.Session.PipeTimer
	assert.GreaterOrEqual(t, timer, 179)
	assert.LessOrEqual(t, timer, 249)

	w.Step(idle(1))
	snap = w.Snapshot()
	assert.Equal(t, 549.0, snap.Pipes[0].X)
	assert.Equal(t, timer-1, snap.Session.PipeTimer)
}

func TestPipePairGeometry(t *testing.T) {
	cfg := preset(t, "sprite")
	w := flappy.NewWorld(cfg, nil, 1, 3)

	w.Step(idle(1))
	snap := w.Snapshot()
	require.Len(t, snap.Pipes, 2)

	top, bottom := snap.Pipes[0], snap.Pipes[1]
	if top.Y > bottom.Y {
		top, bottom = bottom, top
	}
	gapTop := top.Y + 700
	gap := bottom.Y - gapTop
	assert.GreaterOrEqual(t, gapTop, float64(cfg.GapTopMin))
	assert.LessOrEqual(t, gapTop, float64(cfg.GapTopMax))
	assert.GreaterOrEqual(t, gap, float64(cfg.GapMin))
	assert.LessOrEqual(t, gap, float64(cfg.GapMax))
}

func TestPipesDespawnOffScreen(t *testing.T) {
	cfg := preset(t, "sprite")
	cfg.Pipes = false
	w := flappy.NewWorld(cfg, nil, 1, 1)

	w.SpawnPipePair(-549, 200, 100)
	w.Step(idle(1))
	require.Len(t, w.Snapshot().Pipes, 2)
	assert.Equal(t, -550.0, w.Snapshot().Pipes[0].X)

	w.Step(idle(1))
	assert.Empty(t, w.Snapshot().Pipes)
}

func TestScoreOncePerPairPerBird(t *testing.T) {
	cfg := preset(t, "sprite")
	cfg.Gravity = 0
	w := flappy.NewWorld(cfg, nil, 2, 1)

	// right edge at 102, bird center at 100
	w.SpawnPipePair(50, 200, 130)

	w.Step(idle(2))
	w.Step(idle(2))
	assert.Equal(t, 0, w.Session().Score)

	res := w.Step(idle(2))
	assert.Equal(t, 1, res.Score)
	for i := 0; i < 10; i++ {
		res = w.Step(idle(2))
	}
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 2, res.Alive)
	for slot := 0; slot < 2; slot++ {
		assert.Equal(t, 1, w.Bird(slot).Score)
		assert.Equal(t, 5.0, w.Bird(slot).Fitness)
	}

	w.Reset()
	assert.Equal(t, 0, w.Session().Score)
	assert.Equal(t, 1, w.Session().Best)
}

func TestPipeCollisionKills(t *testing.T) {
	cfg := still(t, "sprite")
	w := flappy.NewWorld(cfg, nil, 1, 1)

	w.SpawnPipePair(90, 400, 100)
	res := w.Step(idle(1))
	assert.True(t, res.GameOver)
	assert.Equal(t, []float64{-1}, res.Rewards)
}

func TestMaskCollisionIgnoresTransparentCorners(t *testing.T) {
	for _, mode := range []string{"mask", "rect"} {
		t.Run(mode, func(t *testing.T) {
			cfg := still(t, "classic")
			cfg.Collision = mode
			w := flappy.NewWorld(cfg, nil, 1, 1)

			b := birdState(w, 0)
			require.Equal(t, 230.0, b.X)
			require.Equal(t, 350.0, b.Y)

			// the top pipe's lower-left corner covers the bird's top-right 2x2 pixels
			w.SpawnPipePair(b.X+32, b.Y+2, 200)
			res := w.Step(idle(1))
			assert.Equal(t, mode == "rect", res.GameOver)
		})
	}
}

func TestHoverDiesAtCeiling(t *testing.T) {
	w := flappy.NewWorld(preset(t, "hover"), nil, 1, 1)

	var res flappy.StepResult
	for i := 0; i < 100 && !res.GameOver; i++ {
		res = w.Step(flap(1))
	}
	require.True(t, res.GameOver)
	assert.LessOrEqual(t, birdState(w, 0).Y, 0.0)
	assert.Empty(t, w.Snapshot().Grounds)
}

func TestGroundTilesStayContiguous(t *testing.T) {
	cfg := still(t, "sprite")
	cfg.ScrollSpeed = 3
	w := flappy.NewWorld(cfg, nil, 1, 1)

	w.Step(idle(1))
	grounds := w.Snapshot().Grounds
	require.Len(t, grounds, 2)
	assert.Equal(t, -3.0, grounds[0].X)
	assert.Equal(t, 548.0, grounds[1].X)

	for i := 0; i < 700; i++ {
		w.Step(idle(1))
		grounds = w.Snapshot().Grounds
		require.NotEmpty(t, grounds)
		require.LessOrEqual(t, grounds[0].X, 0.0)
		require.LessOrEqual(t, len(grounds), 3)
		for j := 1; j < len(grounds); j++ {
			require.Equal(t, grounds[j-1].X+551, grounds[j].X)
		}
		require.GreaterOrEqual(t, grounds[len(grounds)-1].X+551, 551.0)
	}
}

func TestPassModeSpawnsOnScore(t *testing.T) {
	cfg := still(t, "classic")
	cfg.Pipes = true
	cfg.ScrollSpeed = 5
	cfg.GapTopMin, cfg.GapTopMax = 300, 300
	w := flappy.NewWorld(cfg, nil, 1, 1)

	snap := w.Snapshot()
	require.Len(t, snap.Pipes, 2, "classic starts with one pair")
	assert.Equal(t, 500.0, snap.Pipes[0].X)

	// the bird's left edge (230) passes the pipe's left edge after 55 ticks
	var res flappy.StepResult
	for i := 0; i < 54; i++ {
		res = w.Step(idle(1))
	}
	assert.Equal(t, 0, res.Score)
	require.Len(t, w.Snapshot().Pipes, 2)

	res = w.Step(idle(1))
	assert.Equal(t, 1, res.Score)
	assert.False(t, res.GameOver)

	pipes := w.Snapshot().Pipes
	require.Len(t, pipes, 4)
	assert.Equal(t, 225.0, pipes[0].X)
	assert.Equal(t, 500.0, pipes[3].X)
}

func TestObservations(t *testing.T) {
	w := flappy.NewWorld(preset(t, "sprite"), nil, 1, 1)

	assert.Equal(t, flappy.ObsPipes4, w.DefaultObs())
	assert.InDeltaSlice(t, []float64{238.0 / 720, 1, 1, 1}, w.Observe(0, flappy.ObsPipes4), 1e-9)
	assert.InDeltaSlice(t, []float64{250.0 / 720, 0}, w.Observe(0, flappy.ObsHover2), 1e-9)
	assert.InDeltaSlice(t, []float64{238.0 / 720, 1, 1}, w.Observe(0, flappy.ObsNeat3), 1e-9)

	w.SpawnPipePair(300, 200, 100)
	assert.InDeltaSlice(t, []float64{238.0 / 720, 217.0 / 551, 200.0 / 720, 300.0 / 720}, w.Observe(0, flappy.ObsPipes4), 1e-9)
	assert.InDeltaSlice(t, []float64{238.0 / 720, 38.0 / 720, 62.0 / 720}, w.Observe(0, flappy.ObsNeat3), 1e-9)

	// a pipe behind the bird is ignored
	w.SpawnPipePair(10, 100, 100)
	assert.InDelta(t, 217.0/551, w.Observe(0, flappy.ObsPipes4)[1], 1e-9)

	hover := flappy.NewWorld(preset(t, "hover"), nil, 1, 1)
	assert.Equal(t, flappy.ObsHover2, hover.DefaultObs())
	assert.Len(t, hover.Observe(0, hover.DefaultObs()), 2)
}

func TestObsKindNames(t *testing.T) {
	for _, k := range []flappy.ObsKind{flappy.ObsPipes4, flappy.ObsHover2, flappy.ObsNeat3} {
		parsed, err := flappy.ParseObsKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	assert.Equal(t, 3, flappy.ObsNeat3.Size())
	_, err := flappy.ParseObsKind("pixels")
	assert.Error(t, err)
}

func TestDeterministicForSeed(t *testing.T) {
	run := func() flappy.Snapshot {
		w := flappy.NewWorld(preset(t, "neat"), nil, 3, 42)
		for i := 0; i < 300; i++ {
			actions := idle(3)
			if i%20 == 0 {
				actions[i%3] = agent.Flap
			}
			w.Step(actions)
		}
		return w.Snapshot()
	}
	assert.Equal(t, run(), run())
}

func TestMissingActionsAreIdle(t *testing.T) {
	w := flappy.NewWorld(preset(t, "sprite"), nil, 2, 1)
	res := w.Step([]agent.Action{agent.Flap})
	assert.Len(t, res.Rewards, 2)
	assert.Less(t, birdState(w, 0).Y, birdState(w, 1).Y)
}
