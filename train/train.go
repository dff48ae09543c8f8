// Package train runs learners against a flappy.World, headless one episode
// (or NEAT generation) at a time, or tick by tick behind a window.
package train

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plus3/flappy/assets"
	"github.com/plus3/flappy/config"
	"github.com/plus3/flappy/flappy"
)

var ErrUnknownMode = errors.New("unknown training mode")

// Modes lists the accepted values of config.TrainConfig.Mode.
var Modes = []string{"dqn", "tabular", "neat"}

// Progress is the outcome of one episode.
type Progress struct {
	Mode    string
	Episode int
	Steps   int
	Score   int
	Best    int
	// Reward is the summed reward, or the best fitness of a NEAT generation.
	Reward      float64
	MeanFitness float64
	Epsilon     float64
	Loss        float64
	States      int
	Alive       int
	Duration    time.Duration
}

// Trainer owns a world and a learner.
type Trainer interface {
	Mode() string
	World() *flappy.World
	// Pilot is the tick-level driver the trainer plays episodes with.
	Pilot() Pilot
	// Episode plays until game over, MaxSteps or ctx is done, learning as it goes.
	Episode(ctx context.Context) (Progress, error)
	// Save writes the learner's current parameters.
	Save(path string) error
}

// New builds the trainer named by cfg.Train.Mode.
func New(cfg config.Config, sprites *assets.Sprites) (Trainer, error) {
	switch cfg.Train.Mode {
	case "dqn":
		return NewDQN(cfg, sprites), nil
	case "tabular":
		return NewTabular(cfg, sprites), nil
	case "neat":
		return NewNeat(cfg, sprites)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Train.Mode)
	}
}

// playEpisode resets the pilot and ticks it until game over or maxSteps.
func playEpisode(ctx context.Context, pilot Pilot, maxSteps int) (Progress, error) {
	start := time.Now()
	pilot.Reset()

	for steps := 0; maxSteps <= 0 || steps < maxSteps; steps++ {
		if err := ctx.Err(); err != nil {
			return pilot.Live(), err
		}
		if pilot.Tick(false).GameOver {
			break
		}
	}

	p, err := pilot.EndEpisode()
	p.Duration = time.Since(start)
	return p, err
}
