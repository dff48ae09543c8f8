// Package dqn is a Q-learning agent backed by a small go-deep network:
// inputs → hidden ReLU layers → one linear output per action.
package dqn

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"

	deep "github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"
	"github.com/plus3/flappy/agent"
	"github.com/plus3/flappy/agent/replay"
	"github.com/plus3/flappy/config"
)

type fitter interface {
	Train(n *deep.Neural, examples, validation training.Examples, iterations int)
}

type Agent struct {
	cfg     config.DQNConfig
	inputs  int
	net     *deep.Neural
	trainer fitter
	buffer  *replay.Buffer
	epsilon *agent.Epsilon
	rng     *rand.Rand

	steps    int
	lastLoss float64
}

// New builds an untrained agent for observations of the given size.
func New(inputs int, cfg config.DQNConfig, seed uint64) *Agent {
	layout := append(slices.Clone(cfg.Hidden), agent.NumActions)
	net := deep.NewNeural(&deep.Config{
		Inputs:     inputs,
		Layout:     layout,
		Activation: deep.ActivationReLU,
		Mode:       deep.ModeRegression,
		Weight:     deep.NewUniform(0.2, 0.0),
		Bias:       true,
		Loss:       deep.LossMeanSquared,
	})

	return &Agent{
		cfg:     cfg,
		inputs:  inputs,
		net:     net,
		trainer: training.NewTrainer(training.NewAdam(cfg.LearningRate, 0.9, 0.999, 1e-8), 0),
		buffer:  replay.New(cfg.ReplayCapacity),
		epsilon: agent.NewEpsilon(cfg.EpsilonStart, cfg.EpsilonDecay, cfg.EpsilonMin),
		rng:     rand.New(rand.NewPCG(seed, seed+1)),
	}
}

func (a *Agent) Inputs() int       { return a.inputs }
func (a *Agent) Epsilon() float64  { return a.epsilon.Value }
func (a *Agent) Steps() int        { return a.steps }
func (a *Agent) LastLoss() float64 { return a.lastLoss }
func (a *Agent) Memory() int       { return a.buffer.Len() }

// SetEpsilon overrides the exploration rate, e.g. 0 to evaluate a trained agent.
func (a *Agent) SetEpsilon(v float64) {
	a.epsilon.Value = v
}

// QValues returns the network's estimate for each action.
func (a *Agent) QValues(obs []float64) []float64 {
	return slices.Clone(a.net.Predict(obs))
}

// Greedy returns the action with the highest Q-value.
func (a *Agent) Greedy(obs []float64) agent.Action {
	return agent.Action(agent.Argmax(a.net.Predict(obs)))
}

// Act is epsilon-greedy.
func (a *Agent) Act(obs []float64) agent.Action {
	if a.epsilon.Explore(a.rng) {
		return agent.RandomAction(a.rng)
	}
	return a.Greedy(obs)
}

// Target is the Bellman target r + γ·max Q(s')·(1−done).
func (a *Agent) Target(t agent.Transition) float64 {
	if t.Done {
		return t.Reward
	}
	return t.Reward + a.cfg.Gamma*slices.Max(a.net.Predict(t.Next))
}

// Observe stores a transition and, once the buffer holds more than WarmUp
// transitions, fits one sampled batch. trained reports whether a fit ran.
func (a *Agent) Observe(t agent.Transition) (loss float64, trained bool) {
	a.steps++
	a.buffer.Add(t)
	if a.buffer.Len() <= a.cfg.WarmUp {
		return 0, false
	}
	batch := a.buffer.Sample(a.cfg.BatchSize, a.rng)
	if batch == nil {
		return 0, false
	}
	return a.Train(batch), true
}

// Train fits the network towards the Bellman targets of the batch for one
// epoch and returns the mean squared TD error measured before the fit.
func (a *Agent) Train(batch []agent.Transition) float64 {
	examples := make(training.Examples, 0, len(batch))
	var loss float64

	for _, t := range batch {
		target := a.Target(t)
		q := a.QValues(t.State)
		td := target - q[t.Action]
		loss += td * td
		q[t.Action] = target
		examples = append(examples, training.Example{Input: t.State, Response: q})
	}

	a.trainer.Train(a.net, examples, nil, 1)
	a.lastLoss = loss / float64(len(batch))
	return a.lastLoss
}

// EndEpisode decays epsilon and returns the new value.
func (a *Agent) EndEpisode() float64 {
	return a.epsilon.Next()
}

type snapshot struct {
	Inputs  int           `json:"inputs"`
	Hidden  []int         `json:"hidden"`
	Epsilon float64       `json:"epsilon"`
	Weights [][][]float64 `json:"weights"`
}

// Save writes the network weights and exploration state as JSON.
func (a *Agent) Save(path string) error {
	data, err := json.Marshal(snapshot{
		Inputs:  a.inputs,
		Hidden:  a.cfg.Hidden,
		Epsilon: a.epsilon.Value,
		Weights: a.net.Weights(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write weights: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize weights: %w", err)
	}
	return nil
}

// Load replaces the weights with a file written by Save. The stored network
// must have the same shape as this agent's.
func (a *Agent) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read weights: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode weights %s: %w", path, err)
	}
	if snap.Inputs != a.inputs || !slices.Equal(snap.Hidden, a.cfg.Hidden) || !sameShape(snap.Weights, a.net.Weights()) {
		return fmt.Errorf("%w: %s holds a %d→%v network, want %d→%v",
			agent.ErrShapeMismatch, path, snap.Inputs, snap.Hidden, a.inputs, a.cfg.Hidden)
	}

	a.net.ApplyWeights(snap.Weights)
	a.epsilon.Value = snap.Epsilon
	return nil
}

func sameShape(a, b [][][]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for l := range a {
		if len(a[l]) != len(b[l]) {
			return false
		}
		for n := range a[l] {
			if len(a[l][n]) != len(b[l][n]) {
				return false
			}
		}
	}
	return true
}
