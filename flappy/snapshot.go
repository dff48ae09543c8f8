package flappy

import (
	"cmp"
	"slices"

	"github.com/plus3/flappy/assets"
)

// BirdState is a read-only copy of one bird.
type BirdState struct {
	Slot    int
	X, Y    float64
	W, H    float64
	Tilt    float64
	Key     assets.Key
	Alive   bool
	Score   int
	Fitness float64
}

// SpriteState is a read-only copy of a pipe or ground tile.
type SpriteState struct {
	Key  assets.Key
	X, Y float64
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	Birds   []BirdState
	Pipes   []SpriteState
	Grounds []SpriteState
	Session Session
}

// Snapshot copies the drawable state. Pipes and ground tiles are ordered by x.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{Session: w.Session()}

	for _, id := range w.birds {
		item := w.birdsV.Get(id)
		snap.Birds = append(snap.Birds, BirdState{
			Slot:    item.Bird.Slot,
			X:       item.Position.X,
			Y:       item.Position.Y,
			W:       item.Sprite.W,
			H:       item.Sprite.H,
			Tilt:    item.Bird.Tilt,
			Key:     item.Sprite.Key,
			Alive:   item.Bird.Alive,
			Score:   item.Bird.Score,
			Fitness: item.Bird.Fitness,
		})
	}
	for item := range w.pipesV.Values() {
		snap.Pipes = append(snap.Pipes, SpriteState{Key: item.Sprite.Key, X: item.Position.X, Y: item.Position.Y})
	}
	for item := range w.groundV.Values() {
		snap.Grounds = append(snap.Grounds, SpriteState{Key: item.Sprite.Key, X: item.Position.X, Y: item.Position.Y})
	}

	byX := func(a, b SpriteState) int { return cmp.Compare(a.X, b.X) }
	slices.SortStableFunc(snap.Pipes, byX)
	slices.SortStableFunc(snap.Grounds, byX)
	return snap
}
