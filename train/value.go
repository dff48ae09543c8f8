package train

import (
	"context"

	"github.com/plus3/flappy/agent"
	"github.com/plus3/flappy/agent/dqn"
	"github.com/plus3/flappy/agent/tabular"
	"github.com/plus3/flappy/assets"
	"github.com/plus3/flappy/config"
	"github.com/plus3/flappy/flappy"
)

type DQN struct {
	pilot    *PolicyPilot
	maxSteps int
	Agent    *dqn.Agent
}

func NewDQN(cfg config.Config, sprites *assets.Sprites) *DQN {
	world := flappy.NewWorld(cfg.Game, sprites, 1, cfg.Train.Seed)
	kind := world.DefaultObs()
	learner := dqn.New(kind.Size(), cfg.DQN, cfg.Train.Seed)

	pilot := newPolicyPilot("dqn", world, kind, learner)
	pilot.learn = learner.Observe
	pilot.decay = learner.EndEpisode
	pilot.epsilon = learner.Epsilon

	return &DQN{pilot: pilot, maxSteps: cfg.Train.MaxSteps, Agent: learner}
}

func (t *DQN) Mode() string                { return "dqn" }
func (t *DQN) World() *flappy.World        { return t.pilot.world }
func (t *DQN) Pilot() Pilot                { return t.pilot }
func (t *DQN) Observation() flappy.ObsKind { return t.pilot.kind }
func (t *DQN) Save(path string) error      { return t.Agent.Save(path) }

// Play loads saved weights and flies greedily without learning.
func (t *DQN) Play(path string) error {
	if err := t.Agent.Load(path); err != nil {
		return err
	}
	t.Agent.SetEpsilon(0)
	t.pilot.Freeze()
	return nil
}

func (t *DQN) Episode(ctx context.Context) (Progress, error) {
	return playEpisode(ctx, t.pilot, t.maxSteps)
}

type Tabular struct {
	pilot    *PolicyPilot
	maxSteps int
	Agent    *tabular.Agent
}

func NewTabular(cfg config.Config, sprites *assets.Sprites) *Tabular {
	world := flappy.NewWorld(cfg.Game, sprites, 1, cfg.Train.Seed)
	learner := tabular.New(cfg.Tabular, cfg.Train.Seed)

	pilot := newPolicyPilot("tabular", world, world.DefaultObs(), learner)
	pilot.learn = func(tr agent.Transition) (float64, bool) {
		td := learner.Update(tr)
		return td * td, true
	}
	pilot.decay = learner.EndEpisode
	pilot.epsilon = learner.Epsilon

	return &Tabular{pilot: pilot, maxSteps: cfg.Train.MaxSteps, Agent: learner}
}

func (t *Tabular) Mode() string                { return "tabular" }
func (t *Tabular) World() *flappy.World        { return t.pilot.world }
func (t *Tabular) Pilot() Pilot                { return t.pilot }
func (t *Tabular) Observation() flappy.ObsKind { return t.pilot.kind }
func (t *Tabular) Save(path string) error      { return t.Agent.Save(path) }

// Play loads a saved table and flies greedily without learning.
func (t *Tabular) Play(path string) error {
	if err := t.Agent.Load(path); err != nil {
		return err
	}
	t.Agent.SetEpsilon(0)
	t.pilot.Freeze()
	return nil
}

func (t *Tabular) Episode(ctx context.Context) (Progress, error) {
	p, err := playEpisode(ctx, t.pilot, t.maxSteps)
	p.States = t.Agent.States()
	return p, err
}
