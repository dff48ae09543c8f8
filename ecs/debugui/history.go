package debugui

// History is a fixed-size ring of samples for ImGui plots.
type History struct {
	values []float32
	next   int
	filled bool
}

func NewHistory(size int) *History {
	return &History{values: make([]float32, size)}
}

func (h *History) Push(v float32) {
	h.values[h.next] = v
	h.next = (h.next + 1) % len(h.values)
	if h.next == 0 {
		h.filled = true
	}
}

func (h *History) Len() int {
	if h.filled {
		return len(h.values)
	}
	return h.next
}

// Ordered returns the samples oldest first.
func (h *History) Ordered() []float32 {
	if !h.filled {
		return append([]float32(nil), h.values[:h.next]...)
	}
	out := make([]float32, 0, len(h.values))
	out = append(out, h.values[h.next:]...)
	return append(out, h.values[:h.next]...)
}

func (h *History) Mean() float32 {
	n := h.Len()
	if n == 0 {
		return 0
	}
	var sum float32
	for _, v := range h.Ordered() {
		sum += v
	}
	return sum / float32(n)
}
