package flappy

import (
	"fmt"
	"math"
)

// ObsKind selects the observation vector a learner sees.
type ObsKind int

const (
	// ObsPipes4 is bird y, distance to the next pipe, gap top and gap bottom.
	ObsPipes4 ObsKind = iota
	// ObsHover2 is bird center y and velocity/10.
	ObsHover2
	// ObsNeat3 is bird y and its distances to the nearest gap's edges.
	ObsNeat3
)

func (k ObsKind) Size() int {
	switch k {
	case ObsHover2:
		return 2
	case ObsNeat3:
		return 3
	default:
		return 4
	}
}

func (k ObsKind) String() string {
	switch k {
	case ObsHover2:
		return "hover2"
	case ObsNeat3:
		return "neat3"
	default:
		return "pipes4"
	}
}

// ParseObsKind is the inverse of ObsKind.String.
func ParseObsKind(s string) (ObsKind, error) {
	for _, k := range []ObsKind{ObsPipes4, ObsHover2, ObsNeat3} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown observation %q", s)
}

// DefaultObs picks the observation for value learners: pipes if the world has any.
func (w *World) DefaultObs() ObsKind {
	if w.cfg.Pipes {
		return ObsPipes4
	}
	return ObsHover2
}

// Observe returns a fresh observation vector for a slot. Every component is
// divided by the screen size; absent pipes read as 1.0.
func (w *World) Observe(slot int, kind ObsKind) []float64 {
	bird := w.birdsV.Get(w.birds[slot])
	width, height := float64(w.cfg.ScreenWidth), float64(w.cfg.ScreenHeight)
	pos := bird.Position

	switch kind {
	case ObsHover2:
		return []float64{(pos.Y + bird.Sprite.H/2) / height, bird.Velocity.Y / 10}

	case ObsNeat3:
		centerX := pos.X + bird.Sprite.W/2
		pipe, ok := w.nearestPipe(func(p pipeItem) bool {
			return p.Position.X+p.Sprite.W/2 >= centerX
		})
		if !ok {
			return []float64{pos.Y / height, 1, 1}
		}
		return []float64{
			pos.Y / height,
			math.Abs(pos.Y-pipe.Pipe.GapTop) / height,
			math.Abs(pos.Y-pipe.Pipe.GapBottom) / height,
		}

	default:
		pipe, ok := w.nearestPipe(func(p pipeItem) bool {
			return p.Position.X > pos.X
		})
		if !ok {
			return []float64{pos.Y / height, 1, 1, 1}
		}
		return []float64{
			pos.Y / height,
			(pipe.Position.X - pos.X) / width,
			pipe.Pipe.GapTop / height,
			pipe.Pipe.GapBottom / height,
		}
	}
}

// nearestPipe returns the leftmost pipe accepted by ahead.
func (w *World) nearestPipe(ahead func(pipeItem) bool) (pipeItem, bool) {
	var best pipeItem
	found := false
	for item := range w.pipesV.Values() {
		if !ahead(item) {
			continue
		}
		if !found || item.Position.X < best.Position.X {
			best = item
			found = true
		}
	}
	return best, found
}
