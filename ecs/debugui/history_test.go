package debugui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryWraps(t *testing.T) {
	h := NewHistory(3)
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Ordered())
	assert.Equal(t, float32(0), h.Mean())

	h.Push(1)
	h.Push(2)
	assert.Equal(t, []float32{1, 2}, h.Ordered())

	h.Push(3)
	h.Push(4)
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []float32{2, 3, 4}, h.Ordered())
	assert.Equal(t, float32(3), h.Mean())
}

func TestPanelRecordsFinishedEpisodes(t *testing.T) {
	p := NewTrainingPanel(10, 10)

	p.Record(PanelStats{Episode: 1, Score: 0})
	p.Record(PanelStats{Episode: 1, Score: 3})
	assert.Equal(t, 0, p.Scores().Len())

	p.Record(PanelStats{Episode: 2, Score: 0})
	p.Record(PanelStats{Episode: 3, Score: 0})
	assert.Equal(t, []float32{3, 0}, p.Scores().Ordered())
}
