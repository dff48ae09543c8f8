package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plus3/flappy/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sprite", cfg.Preset)
	assert.Equal(t, 551, cfg.Game.ScreenWidth)
	assert.Equal(t, []int{32, 32}, cfg.DQN.Hidden)
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"classic", "hover", "neat", "sprite"}, config.Presets())

	for _, name := range config.Presets() {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			require.NoError(t, cfg.UsePreset(name))
			assert.NoError(t, cfg.Validate())
		})
	}

	neat, err := config.Preset("neat")
	require.NoError(t, err)
	assert.Equal(t, 3.0, neat.ScrollSpeed)
	assert.Equal(t, 2, neat.PipeTimerStep)

	classic, err := config.Preset("classic")
	require.NoError(t, err)
	assert.Equal(t, "mask", classic.Collision)
	assert.Equal(t, 30, classic.TicksPerSecond)

	_, err = config.Preset("nope")
	assert.ErrorIs(t, err, config.ErrUnknownPreset)
}

func TestHoverUsesFasterDecay(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.UsePreset("hover"))
	assert.Equal(t, 0.995, cfg.DQN.EpsilonDecay)
	assert.False(t, cfg.Game.Pipes)
	assert.True(t, cfg.Game.BoundsKill)
}

func TestLoadOverlaysPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flappy.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
preset = "classic"

[game]
scroll_speed = 7.5

[train]
episodes = 12
`), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "classic", cfg.Preset)
	assert.Equal(t, 7.5, cfg.Game.ScrollSpeed)
	assert.Equal(t, 500, cfg.Game.ScreenWidth, "untouched preset values survive")
	assert.Equal(t, 12, cfg.Train.Episodes)
	assert.Equal(t, 1000, cfg.Train.MaxSteps)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := config.Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("preset = \"moon\"\n"), 0644))
	_, err = config.Load(unknown)
	assert.ErrorIs(t, err, config.ErrUnknownPreset)

	typo := filepath.Join(dir, "typo.toml")
	require.NoError(t, os.WriteFile(typo, []byte("[game]\ngravty = 2\n"), 0644))
	_, err = config.Load(typo)
	assert.ErrorIs(t, err, config.ErrInvalid)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[game]\ncollision = \"circle\"\n"), 0644))
	_, err = config.Load(invalid)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "flappy.toml")

	cfg := config.Default()
	require.NoError(t, cfg.UsePreset("neat"))
	cfg.NEAT.Population = 8
	require.NoError(t, cfg.Save(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Game.GapMin = 200
	cfg.Game.GapMax = 100
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)

	cfg = config.Default()
	cfg.DQN.ReplayCapacity = 10
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)

	cfg = config.Default()
	cfg.NEAT.Elites = cfg.NEAT.Population + 1
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)

	cfg = config.Default()
	cfg.NEAT.Elites = -1
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)

	cfg = config.Default()
	cfg.NEAT.TournamentSize = 0
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
}

func TestResolve(t *testing.T) {
	cfg, err := config.Resolve("", "")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	path := filepath.Join(t.TempDir(), "flappy.toml")
	require.NoError(t, os.WriteFile(path, []byte("[train]\nepisodes = 7\n"), 0644))

	cfg, err = config.Resolve(path, "classic")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Train.Episodes)
	assert.Equal(t, "classic", cfg.Preset)
	assert.Equal(t, 30, cfg.Game.TicksPerSecond)

	_, err = config.Resolve("", "moon")
	assert.ErrorIs(t, err, config.ErrUnknownPreset)
}
