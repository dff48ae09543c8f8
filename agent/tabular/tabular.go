// Package tabular is a Q-learning agent over a discretized observation space.
package tabular

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"slices"

	"github.com/kamstrup/intmap"
	"github.com/plus3/flappy/agent"
	"github.com/plus3/flappy/config"
)

// Observation components are clamped to [obsLow, obsHigh] before binning.
const (
	obsLow  = -1.0
	obsHigh = 1.0
)

type Agent struct {
	cfg     config.TabularConfig
	table   *intmap.Map[int64, [agent.NumActions]float64]
	epsilon *agent.Epsilon
	rng     *rand.Rand
}

func New(cfg config.TabularConfig, seed uint64) *Agent {
	if cfg.Bins < 2 {
		cfg.Bins = 2
	}
	return &Agent{
		cfg:     cfg,
		table:   intmap.New[int64, [agent.NumActions]float64](1024),
		epsilon: agent.NewEpsilon(cfg.EpsilonStart, cfg.EpsilonDecay, cfg.EpsilonMin),
		rng:     rand.New(rand.NewPCG(seed, seed+1)),
	}
}

func (a *Agent) Epsilon() float64     { return a.epsilon.Value }
func (a *Agent) SetEpsilon(v float64) { a.epsilon.Value = v }

// States returns how many distinct states have been visited.
func (a *Agent) States() int { return a.table.Len() }

// State encodes an observation as a mixed-radix number of bin indices.
func (a *Agent) State(obs []float64) int64 {
	bins := int64(a.cfg.Bins)
	var code int64
	for i := len(obs) - 1; i >= 0; i-- {
		v := min(max(obs[i], obsLow), obsHigh)
		bin := int64(math.Floor((v - obsLow) / (obsHigh - obsLow) * float64(bins)))
		code = code*bins + min(bin, bins-1)
	}
	return code
}

// Q returns the action values of an observation's state and whether it was seen before.
func (a *Agent) Q(obs []float64) ([agent.NumActions]float64, bool) {
	return a.table.Get(a.State(obs))
}

// Greedy picks the best known action; unseen states idle.
func (a *Agent) Greedy(obs []float64) agent.Action {
	q, ok := a.Q(obs)
	if !ok {
		return agent.Idle
	}
	return agent.Action(agent.Argmax(q[:]))
}

// Act is epsilon-greedy; unseen states are explored at random.
func (a *Agent) Act(obs []float64) agent.Action {
	q, ok := a.Q(obs)
	if !ok || a.epsilon.Explore(a.rng) {
		return agent.RandomAction(a.rng)
	}
	return agent.Action(agent.Argmax(q[:]))
}

// Update applies one Bellman backup and returns the TD error.
func (a *Agent) Update(t agent.Transition) float64 {
	state := a.State(t.State)
	q, _ := a.table.Get(state)

	target := t.Reward
	if !t.Done {
		if next, ok := a.table.Get(a.State(t.Next)); ok {
			target += a.cfg.Gamma * slices.Max(next[:])
		}
	}

	td := target - q[t.Action]
	q[t.Action] += a.cfg.LearningRate * td
	a.table.Put(state, q)
	return td
}

// EndEpisode decays epsilon and returns the new value.
func (a *Agent) EndEpisode() float64 {
	return a.epsilon.Next()
}

type tableFile struct {
	Bins    int                                 `json:"bins"`
	Epsilon float64                             `json:"epsilon"`
	Table   map[int64][agent.NumActions]float64 `json:"table"`
}

// Save writes the Q-table as JSON.
func (a *Agent) Save(path string) error {
	out := tableFile{
		Bins:    a.cfg.Bins,
		Epsilon: a.epsilon.Value,
		Table:   make(map[int64][agent.NumActions]float64, a.table.Len()),
	}
	for state, q := range a.table.All() {
		out.Table[state] = q
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(out); err != nil {
		return fmt.Errorf("failed to encode Q-table: %w", err)
	}
	return file.Close()
}

// Load replaces the Q-table with one written by Save using the same bin count.
func (a *Agent) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var in tableFile
	if err := json.NewDecoder(file).Decode(&in); err != nil {
		return fmt.Errorf("failed to decode Q-table: %w", err)
	}
	if in.Bins != a.cfg.Bins {
		return fmt.Errorf("%w: %s uses %d bins, want %d", agent.ErrShapeMismatch, path, in.Bins, a.cfg.Bins)
	}

	a.table = intmap.New[int64, [agent.NumActions]float64](max(len(in.Table), 1024))
	for state, q := range in.Table {
		a.table.Put(state, q)
	}
	a.epsilon.Value = in.Epsilon
	return nil
}
