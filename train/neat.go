package train

import (
	"context"
	"fmt"

	"github.com/plus3/flappy/agent"
	"github.com/plus3/flappy/agent/neuro"
	"github.com/plus3/flappy/assets"
	"github.com/plus3/flappy/config"
	"github.com/plus3/flappy/flappy"
)

// NeatPilot flies the whole population at once, one bird per genome, and
// evolves it at the end of every episode.
type NeatPilot struct {
	world      *flappy.World
	population *neuro.Population
	actions    []agent.Action
	steps      int
}

func (p *NeatPilot) Mode() string         { return "neat" }
func (p *NeatPilot) World() *flappy.World { return p.world }
func (p *NeatPilot) Human() bool          { return false }

func (p *NeatPilot) Reset() {
	p.world.Reset()
	p.steps = 0
}

func (p *NeatPilot) Tick(bool) flappy.StepResult {
	for slot := range p.actions {
		p.actions[slot] = agent.Idle
		if p.world.Bird(slot).Alive {
			p.actions[slot] = p.population.Decide(slot, p.world.Observe(slot, flappy.ObsNeat3))
		}
	}
	p.steps++
	return p.world.Step(p.actions)
}

func (p *NeatPilot) Live() Progress {
	progress := sessionProgress(p.Mode(), p.world, p.steps)
	progress.Episode = p.population.Generation() + 1
	progress.Alive = p.world.Session().Alive
	return progress
}

// EndEpisode scores every genome by its bird's fitness and breeds the next generation.
func (p *NeatPilot) EndEpisode() (Progress, error) {
	progress := p.Live()

	fitness := make([]float64, p.population.Size())
	for slot := range fitness {
		fitness[slot] = p.world.Bird(slot).Fitness
	}
	stats, err := p.population.Evolve(fitness)
	if err != nil {
		return progress, err
	}

	progress.Reward = stats.Best
	progress.MeanFitness = stats.Mean
	return progress, nil
}

type Neat struct {
	pilot      *NeatPilot
	maxSteps   int
	Population *neuro.Population
}

func NewNeat(cfg config.Config, sprites *assets.Sprites) (*Neat, error) {
	pop, err := neuro.New(cfg.NEAT, cfg.Train.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to seed population: %w", err)
	}
	pilot := &NeatPilot{
		world:      flappy.NewWorld(cfg.Game, sprites, pop.Size(), cfg.Train.Seed),
		population: pop,
		actions:    make([]agent.Action, pop.Size()),
	}
	return &Neat{pilot: pilot, maxSteps: cfg.Train.MaxSteps, Population: pop}, nil
}

func (t *Neat) Mode() string         { return "neat" }
func (t *Neat) World() *flappy.World { return t.pilot.world }
func (t *Neat) Pilot() Pilot         { return t.pilot }

// Save writes the champion as JSON to path and, once a generation has been
// scored, its genome text to path + ".genome".
func (t *Neat) Save(path string) error {
	if err := t.Population.SaveChampion(path); err != nil {
		return err
	}
	if t.Population.Champion().Generation < 0 {
		return nil
	}
	return t.Population.SaveChampionGenome(path + ".genome")
}

// Episode evaluates the current generation and breeds the next one. An
// interrupted generation is not evolved.
func (t *Neat) Episode(ctx context.Context) (Progress, error) {
	return playEpisode(ctx, t.pilot, t.maxSteps)
}
