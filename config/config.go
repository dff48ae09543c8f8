// Package config holds every tunable of the game, the learners and the
// trainer, and reads/writes them as TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

var (
	ErrUnknownPreset = errors.New("unknown preset")
	ErrInvalid       = errors.New("invalid config")
)

// Config is the root of the TOML document.
type Config struct {
	Preset  string        `toml:"preset"`
	Game    GameConfig    `toml:"game"`
	DQN     DQNConfig     `toml:"dqn"`
	Tabular TabularConfig `toml:"tabular"`
	NEAT    NEATConfig    `toml:"neat"`
	Train   TrainConfig   `toml:"train"`
	Assets  AssetsConfig  `toml:"assets"`
}

// GameConfig describes the physics, spawning and scoring rules of one game variant.
// Positions are in screen pixels with y growing downwards.
type GameConfig struct {
	ScreenWidth    int `toml:"screen_width"`
	ScreenHeight   int `toml:"screen_height"`
	TicksPerSecond int `toml:"ticks_per_second"`

	// BirdStartX/Y is the bird's center at the start of an episode.
	BirdStartX float64 `toml:"bird_start_x"`
	BirdStartY float64 `toml:"bird_start_y"`

	// Physics is "euler" (velocity integrated each tick, whole-pixel moves)
	// or "arc" (displacement from time since the last flap).
	Physics      string  `toml:"physics"`
	Gravity      float64 `toml:"gravity"`
	MaxFallSpeed float64 `toml:"max_fall_speed"`
	FlapVelocity float64 `toml:"flap_velocity"`
	FlapLatch    bool    `toml:"flap_latch"`
	// FloorLimitY stops vertical motion once the bird's top reaches it. Zero disables it.
	FloorLimitY float64 `toml:"floor_limit_y"`

	ScrollSpeed float64 `toml:"scroll_speed"`

	Pipes bool `toml:"pipes"`
	// PipeSpawn is "timer" or "pass" (a new pair whenever one is scored).
	PipeSpawn     string  `toml:"pipe_spawn"`
	PipeSpawnX    float64 `toml:"pipe_spawn_x"`
	PipeDespawnX  float64 `toml:"pipe_despawn_x"`
	GapTopMin     int     `toml:"gap_top_min"`
	GapTopMax     int     `toml:"gap_top_max"`
	GapMin        int     `toml:"gap_min"`
	GapMax        int     `toml:"gap_max"`
	PipeTimerMin  int     `toml:"pipe_timer_min"`
	PipeTimerMax  int     `toml:"pipe_timer_max"`
	PipeTimerStep int     `toml:"pipe_timer_step"`
	// ScoreAt is "enter" (bird left edge past pipe left edge), "center"
	// (bird center past pipe center) or "exit" (bird center past pipe right edge).
	ScoreAt string `toml:"score_at"`

	Ground  bool    `toml:"ground"`
	GroundY float64 `toml:"ground_y"`

	CeilingKill bool `toml:"ceiling_kill"`
	BoundsKill  bool `toml:"bounds_kill"`
	// Collision is "rect" or "mask".
	Collision string `toml:"collision"`

	AnimationTicks    int  `toml:"animation_ticks"`
	AnimationPingPong bool `toml:"animation_ping_pong"`

	PipeFitness  float64 `toml:"pipe_fitness"`
	DeathFitness float64 `toml:"death_fitness"`
}

type DQNConfig struct {
	Hidden         []int   `toml:"hidden"`
	LearningRate   float64 `toml:"learning_rate"`
	Gamma          float64 `toml:"gamma"`
	EpsilonStart   float64 `toml:"epsilon_start"`
	EpsilonDecay   float64 `toml:"epsilon_decay"`
	EpsilonMin     float64 `toml:"epsilon_min"`
	ReplayCapacity int     `toml:"replay_capacity"`
	BatchSize      int     `toml:"batch_size"`
	WarmUp         int     `toml:"warm_up"`
}

type TabularConfig struct {
	LearningRate float64 `toml:"learning_rate"`
	Gamma        float64 `toml:"gamma"`
	EpsilonStart float64 `toml:"epsilon_start"`
	EpsilonDecay float64 `toml:"epsilon_decay"`
	EpsilonMin   float64 `toml:"epsilon_min"`
	Bins         int     `toml:"bins"`
}

type NEATConfig struct {
	Population     int     `toml:"population"`
	Generations    int     `toml:"generations"`
	Elites         int     `toml:"elites"`
	TournamentSize int     `toml:"tournament_size"`
	MutationRate   float64 `toml:"mutation_rate"`
	MutationPower  float64 `toml:"mutation_power"`
	FlapThreshold  float64 `toml:"flap_threshold"`
}

type TrainConfig struct {
	Mode        string `toml:"mode"`
	Episodes    int    `toml:"episodes"`
	MaxSteps    int    `toml:"max_steps"`
	Seed        uint64 `toml:"seed"`
	LogPath     string `toml:"log_path"`
	WeightsPath string `toml:"weights_path"`
}

type AssetsConfig struct {
	Dir string `toml:"dir"`
}

// Default returns the "sprite" preset with learner defaults.
func Default() Config {
	game, _ := Preset("sprite")
	return Config{
		Preset: "sprite",
		Game:   game,
		DQN: DQNConfig{
			Hidden:         []int{32, 32},
			LearningRate:   0.001,
			Gamma:          0.99,
			EpsilonStart:   1.0,
			EpsilonDecay:   0.999,
			EpsilonMin:     0.01,
			ReplayCapacity: 10000,
			BatchSize:      32,
			WarmUp:         100,
		},
		Tabular: TabularConfig{
			LearningRate: 0.1,
			Gamma:        0.9,
			EpsilonStart: 1.0,
			EpsilonDecay: 0.995,
			EpsilonMin:   0.01,
			Bins:         24,
		},
		NEAT: NEATConfig{
			Population:     20,
			Generations:    50,
			Elites:         2,
			TournamentSize: 3,
			MutationRate:   0.8,
			MutationPower:  0.5,
			FlapThreshold:  0.5,
		},
		Train: TrainConfig{
			Mode:        "dqn",
			Episodes:    1000,
			MaxSteps:    1000,
			Seed:        1,
			LogPath:     "episodes.parquet",
			WeightsPath: "weights.json",
		},
		Assets: AssetsConfig{Dir: "sprites"},
	}
}

// Load reads a TOML file over the defaults. A preset named in the file is
// applied first, so the file only needs to list the values it changes.
func Load(path string) (Config, error) {
	var head struct {
		Preset string `toml:"preset"`
	}
	if _, err := toml.DecodeFile(path, &head); err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if head.Preset != "" {
		if err := cfg.UsePreset(head.Preset); err != nil {
			return Config{}, err
		}
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %s in %s", ErrInvalid, undecoded[0], path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the config as TOML, creating parent directories.
func (c Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return f.Close()
}

// UsePreset replaces the game block with the named preset.
func (c *Config) UsePreset(name string) error {
	game, err := Preset(name)
	if err != nil {
		return err
	}
	c.Preset = name
	c.Game = game
	if name == "hover" {
		c.DQN.EpsilonDecay = 0.995
	}
	return nil
}

// Validate reports the first inconsistent value.
func (c Config) Validate() error {
	g := c.Game
	switch {
	case g.ScreenWidth <= 0 || g.ScreenHeight <= 0:
		return fmt.Errorf("%w: screen size %dx%d", ErrInvalid, g.ScreenWidth, g.ScreenHeight)
	case g.TicksPerSecond <= 0:
		return fmt.Errorf("%w: ticks_per_second must be positive", ErrInvalid)
	case g.Physics != "euler" && g.Physics != "arc":
		return fmt.Errorf("%w: physics %q", ErrInvalid, g.Physics)
	case g.Collision != "rect" && g.Collision != "mask":
		return fmt.Errorf("%w: collision %q", ErrInvalid, g.Collision)
	case g.AnimationTicks <= 0:
		return fmt.Errorf("%w: animation_ticks must be positive", ErrInvalid)
	}

	if g.Pipes {
		switch {
		case g.PipeSpawn != "timer" && g.PipeSpawn != "pass":
			return fmt.Errorf("%w: pipe_spawn %q", ErrInvalid, g.PipeSpawn)
		case g.ScoreAt != "enter" && g.ScoreAt != "center" && g.ScoreAt != "exit":
			return fmt.Errorf("%w: score_at %q", ErrInvalid, g.ScoreAt)
		case g.GapMin > g.GapMax || g.GapMin <= 0:
			return fmt.Errorf("%w: gap range %d..%d", ErrInvalid, g.GapMin, g.GapMax)
		case g.GapTopMin > g.GapTopMax:
			return fmt.Errorf("%w: gap top range %d..%d", ErrInvalid, g.GapTopMin, g.GapTopMax)
		case g.PipeSpawn == "timer" && (g.PipeTimerMin > g.PipeTimerMax || g.PipeTimerStep <= 0):
			return fmt.Errorf("%w: pipe timer %d..%d step %d", ErrInvalid, g.PipeTimerMin, g.PipeTimerMax, g.PipeTimerStep)
		}
	}

	if c.DQN.BatchSize <= 0 || c.DQN.ReplayCapacity < c.DQN.BatchSize {
		return fmt.Errorf("%w: replay capacity %d must hold a batch of %d", ErrInvalid, c.DQN.ReplayCapacity, c.DQN.BatchSize)
	}
	if c.NEAT.Population <= 0 || c.NEAT.Elites < 0 || c.NEAT.Elites > c.NEAT.Population {
		return fmt.Errorf("%w: neat population %d with %d elites", ErrInvalid, c.NEAT.Population, c.NEAT.Elites)
	}
	if c.NEAT.TournamentSize < 1 {
		return fmt.Errorf("%w: neat tournament_size must be positive", ErrInvalid)
	}
	return nil
}

// Resolve is what the commands use: defaults, then the file at path if
// any, then preset if non-empty.
func Resolve(path, preset string) (Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if preset != "" {
		if err := cfg.UsePreset(preset); err != nil {
			return Config{}, err
		}
	}
	return cfg, cfg.Validate()
}
