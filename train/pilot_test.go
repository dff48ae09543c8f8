package train_test

import (
	"path/filepath"
	"testing"

	"github.com/plus3/flappy/agent"
	"github.com/plus3/flappy/train"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanPilotFlaps(t *testing.T) {
	cfg := testConfig("dqn")
	pilot := train.NewHumanPilot(cfg, nil)
	assert.True(t, pilot.Human())
	assert.Equal(t, "play", pilot.Mode())

	startY := pilot.World().Snapshot().Birds[0].Y
	pilot.Tick(true)
	assert.Less(t, pilot.World().Snapshot().Birds[0].Y, startY)

	p := pilot.Live()
	assert.Equal(t, 1, p.Steps)
	assert.Equal(t, 1, p.Episode)

	pilot.Reset()
	assert.Equal(t, 2, pilot.Live().Episode)
	assert.Equal(t, 0, pilot.Live().Steps)
}

func TestChampionPilotUsesPolicy(t *testing.T) {
	cfg := testConfig("neat")
	var seen [][]float64
	pilot := train.NewChampionPilot(cfg, nil, agent.PolicyFunc(func(obs []float64) agent.Action {
		seen = append(seen, obs)
		return agent.Idle
	}))
	assert.False(t, pilot.Human())

	for i := 0; i < 5; i++ {
		pilot.Tick(true)
	}
	require.Len(t, seen, 5)
	assert.Len(t, seen[0], 3)
	// falling bird: y grows
	assert.Greater(t, seen[4][0], seen[0][0])

	p, err := pilot.EndEpisode()
	require.NoError(t, err)
	assert.Equal(t, 5, p.Steps)
	assert.Equal(t, 5.0, p.Reward)
}

func TestFrozenDQNDoesNotLearn(t *testing.T) {
	cfg := testConfig("dqn")
	trained := train.NewDQN(cfg, nil)
	path := filepath.Join(t.TempDir(), "weights.json")
	require.NoError(t, trained.Save(path))

	player := train.NewDQN(cfg, nil)
	require.NoError(t, player.Play(path))
	assert.Equal(t, 0.0, player.Agent.Epsilon())

	pilot := player.Pilot()
	pilot.Reset()
	for i := 0; i < 20; i++ {
		pilot.Tick(false)
	}
	p, err := pilot.EndEpisode()
	require.NoError(t, err)
	assert.Equal(t, 0, player.Agent.Memory())
	assert.Equal(t, 0.0, p.Epsilon)
	assert.Equal(t, 0.0, p.Loss)
}

func TestNeatPilotTracksAlive(t *testing.T) {
	cfg := testConfig("neat")
	cfg.NEAT.Population = 5

	tr, err := train.NewNeat(cfg, nil)
	require.NoError(t, err)
	pilot := tr.Pilot()
	pilot.Reset()

	p := pilot.Live()
	assert.Equal(t, 5, p.Alive)
	assert.Equal(t, 1, p.Episode)

	pilot.Tick(false)
	p, err = pilot.EndEpisode()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Episode)
	assert.Equal(t, 1, tr.Population.Generation())
}
