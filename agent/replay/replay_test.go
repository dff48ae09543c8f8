package replay_test

import (
	"math/rand/v2"
	"testing"

	"github.com/plus3/flappy/agent"
	"github.com/plus3/flappy/agent/replay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(r float64) agent.Transition {
	return agent.Transition{State: []float64{r}, Reward: r}
}

func TestBufferEvictsOldest(t *testing.T) {
	b := replay.New(3)
	assert.Equal(t, 0, b.Len())

	for i := 0; i < 5; i++ {
		b.Add(step(float64(i)))
		assert.LessOrEqual(t, b.Len(), b.Cap())
	}
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 2.0, b.Oldest().Reward)

	rewards := map[float64]bool{}
	for _, tr := range b.Sample(3, rand.New(rand.NewPCG(1, 1))) {
		rewards[tr.Reward] = true
	}
	assert.Equal(t, map[float64]bool{2: true, 3: true, 4: true}, rewards)
}

func TestSampleWithoutReplacement(t *testing.T) {
	b := replay.New(100)
	for i := 0; i < 50; i++ {
		b.Add(step(float64(i)))
	}

	rng := rand.New(rand.NewPCG(7, 7))
	batch := b.Sample(32, rng)
	require.Len(t, batch, 32)

	seen := map[float64]bool{}
	for _, tr := range batch {
		assert.False(t, seen[tr.Reward], "duplicate sample")
		seen[tr.Reward] = true
	}

	assert.Nil(t, b.Sample(51, rng))
}

func TestNewPanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { replay.New(0) })
}
