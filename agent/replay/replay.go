// Package replay implements a fixed-capacity experience replay buffer.
package replay

import (
	"math/rand/v2"

	"github.com/plus3/flappy/agent"
)

// Buffer is a ring of transitions. Once full, Add overwrites the oldest entry.
type Buffer struct {
	items []agent.Transition
	next  int
	full  bool
}

func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic("replay capacity must be positive")
	}
	return &Buffer{items: make([]agent.Transition, capacity)}
}

func (b *Buffer) Add(t agent.Transition) {
	b.items[b.next] = t
	b.next++
	if b.next == len(b.items) {
		b.next = 0
		b.full = true
	}
}

func (b *Buffer) Len() int {
	if b.full {
		return len(b.items)
	}
	return b.next
}

func (b *Buffer) Cap() int { return len(b.items) }

// Oldest returns the transition that the next Add would overwrite once full.
func (b *Buffer) Oldest() agent.Transition {
	if b.full {
		return b.items[b.next]
	}
	return b.items[0]
}

// Sample draws n distinct transitions. It returns nil if fewer than n are stored.
func (b *Buffer) Sample(n int, rng *rand.Rand) []agent.Transition {
	size := b.Len()
	if n > size {
		return nil
	}
	out := make([]agent.Transition, 0, n)
	for _, i := range rng.Perm(size)[:n] {
		out = append(out, b.items[i])
	}
	return out
}
