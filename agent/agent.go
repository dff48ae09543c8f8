// Package agent holds the types shared by every learner: actions,
// transitions and the exploration schedule.
package agent

import (
	"errors"
	"math/rand/v2"
)

var ErrShapeMismatch = errors.New("observation shape mismatch")

// Action is what a bird does on one frame.
type Action int

const (
	Idle Action = iota
	Flap
)

// NumActions is the size of the action space.
const NumActions = 2

func (a Action) String() string {
	if a == Flap {
		return "flap"
	}
	return "idle"
}

// Policy maps an observation to an action.
type Policy interface {
	Act(obs []float64) Action
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(obs []float64) Action

func (f PolicyFunc) Act(obs []float64) Action { return f(obs) }

// Transition is one step of experience.
type Transition struct {
	State  []float64
	Action Action
	Reward float64
	Next   []float64
	Done   bool
}

// Epsilon is a multiplicative exploration schedule.
type Epsilon struct {
	Value float64
	Decay float64
	Floor float64
}

func NewEpsilon(start, decay, floor float64) *Epsilon {
	return &Epsilon{Value: max(start, floor), Decay: decay, Floor: floor}
}

// Next decays the value once, clamped at the floor, and returns it.
func (e *Epsilon) Next() float64 {
	e.Value = max(e.Value*e.Decay, e.Floor)
	return e.Value
}

// Explore reports whether a random action should be taken.
func (e *Epsilon) Explore(rng *rand.Rand) bool {
	return rng.Float64() < e.Value
}

// RandomAction returns Idle or Flap with equal probability.
func RandomAction(rng *rand.Rand) Action {
	return Action(rng.IntN(NumActions))
}

// Argmax returns the index of the largest value, preferring the lowest index on ties.
func Argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
