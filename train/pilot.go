package train

import (
	"github.com/plus3/flappy/agent"
	"github.com/plus3/flappy/assets"
	"github.com/plus3/flappy/config"
	"github.com/plus3/flappy/flappy"
)

// Pilot drives a world one tick at a time. The episode trainers and the
// windowed game both play through a Pilot.
type Pilot interface {
	Mode() string
	World() *flappy.World
	// Human reports whether slot 0 follows the player's flap input.
	Human() bool
	// Reset starts a new episode.
	Reset()
	Tick(flap bool) flappy.StepResult
	// EndEpisode closes the episode after game over or a step cap and
	// returns its summary.
	EndEpisode() (Progress, error)
	// Live reports the running episode's progress so far.
	Live() Progress
}

// HumanPilot flaps slot 0 on player input.
type HumanPilot struct {
	world   *flappy.World
	actions []agent.Action
	steps   int
}

func NewHumanPilot(cfg config.Config, sprites *assets.Sprites) *HumanPilot {
	return &HumanPilot{
		world:   flappy.NewWorld(cfg.Game, sprites, 1, cfg.Train.Seed),
		actions: make([]agent.Action, 1),
	}
}

func (p *HumanPilot) Mode() string         { return "play" }
func (p *HumanPilot) World() *flappy.World { return p.world }
func (p *HumanPilot) Human() bool          { return true }

func (p *HumanPilot) Reset() {
	p.world.Reset()
	p.steps = 0
}

func (p *HumanPilot) Tick(flap bool) flappy.StepResult {
	p.actions[0] = agent.Idle
	if flap {
		p.actions[0] = agent.Flap
	}
	p.steps++
	return p.world.Step(p.actions)
}

func (p *HumanPilot) Live() Progress {
	return sessionProgress(p.Mode(), p.world, p.steps)
}

func (p *HumanPilot) EndEpisode() (Progress, error) {
	return p.Live(), nil
}

// PolicyPilot flies one bird with a policy and optionally learns from
// every transition.
type PolicyPilot struct {
	mode    string
	world   *flappy.World
	kind    flappy.ObsKind
	policy  agent.Policy
	actions []agent.Action

	learn   func(agent.Transition) (float64, bool)
	decay   func() float64
	epsilon func() float64

	obs       []float64
	steps     int
	reward    float64
	lossSum   float64
	lossCount int
}

func newPolicyPilot(mode string, world *flappy.World, kind flappy.ObsKind, policy agent.Policy) *PolicyPilot {
	return &PolicyPilot{
		mode:    mode,
		world:   world,
		kind:    kind,
		policy:  policy,
		actions: make([]agent.Action, 1),
	}
}

// NewChampionPilot flies the best evolved network on a one-bird world.
func NewChampionPilot(cfg config.Config, sprites *assets.Sprites, policy agent.Policy) *PolicyPilot {
	world := flappy.NewWorld(cfg.Game, sprites, 1, cfg.Train.Seed)
	return newPolicyPilot("neat", world, flappy.ObsNeat3, policy)
}

func (p *PolicyPilot) Mode() string                { return p.mode }
func (p *PolicyPilot) World() *flappy.World        { return p.world }
func (p *PolicyPilot) Human() bool                 { return false }
func (p *PolicyPilot) Observation() flappy.ObsKind { return p.kind }

// Freeze stops learning and exploration decay.
func (p *PolicyPilot) Freeze() {
	p.learn = nil
	p.decay = nil
}

func (p *PolicyPilot) Reset() {
	p.world.Reset()
	p.obs = nil
	p.steps = 0
	p.reward = 0
	p.lossSum = 0
	p.lossCount = 0
}

func (p *PolicyPilot) Tick(bool) flappy.StepResult {
	if p.obs == nil {
		p.obs = p.world.Observe(0, p.kind)
	}

	p.actions[0] = p.policy.Act(p.obs)
	res := p.world.Step(p.actions)
	next := p.world.Observe(0, p.kind)

	if p.learn != nil {
		if loss, ok := p.learn(agent.Transition{
			State:  p.obs,
			Action: p.actions[0],
			Reward: res.Rewards[0],
			Next:   next,
			Done:   res.Done[0],
		}); ok {
			p.lossSum += loss
			p.lossCount++
		}
	}

	p.steps++
	p.reward += res.Rewards[0]
	p.obs = next
	return res
}

func (p *PolicyPilot) Live() Progress {
	progress := sessionProgress(p.mode, p.world, p.steps)
	progress.Reward = p.reward
	if p.lossCount > 0 {
		progress.Loss = p.lossSum / float64(p.lossCount)
	}
	if p.epsilon != nil {
		progress.Epsilon = p.epsilon()
	}
	return progress
}

func (p *PolicyPilot) EndEpisode() (Progress, error) {
	if p.decay != nil {
		p.decay()
	}
	return p.Live(), nil
}

func sessionProgress(mode string, world *flappy.World, steps int) Progress {
	session := world.Session()
	return Progress{
		Mode:    mode,
		Episode: session.Episode,
		Steps:   steps,
		Score:   session.Score,
		Best:    session.Best,
	}
}
