// Package mask implements per-pixel collision masks.
package mask

import (
	"image"
	"math/bits"
)

// AlphaThreshold is the lowest 8-bit alpha counted as solid.
const AlphaThreshold = 127

// Mask is a w×h bitset of solid pixels, one row of uint64 words per scanline.
type Mask struct {
	w, h  int
	words int
	bits  []uint64
}

// New returns an empty mask.
func New(w, h int) *Mask {
	words := (w + 63) / 64
	return &Mask{w: w, h: h, words: words, bits: make([]uint64, words*h)}
}

// Full returns a mask with every pixel set.
func Full(w, h int) *Mask {
	m := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y)
		}
	}
	return m
}

// FromImage builds a mask from the image's alpha channel.
func FromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := New(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a>>8 > AlphaThreshold {
				m.Set(x-b.Min.X, y-b.Min.Y)
			}
		}
	}
	return m
}

func (m *Mask) Size() (int, int) { return m.w, m.h }

func (m *Mask) Set(x, y int) {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return
	}
	m.bits[y*m.words+x/64] |= 1 << uint(x%64)
}

func (m *Mask) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.bits[y*m.words+x/64]&(1<<uint(x%64)) != 0
}

// Count returns the number of solid pixels.
func (m *Mask) Count() int {
	n := 0
	for _, w := range m.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Overlap places other with its top-left corner at (dx, dy) in m's
// coordinates and returns the first pixel, in row-major order of m, that is
// solid in both. ok is false when nothing overlaps.
func (m *Mask) Overlap(other *Mask, dx, dy int) (x, y int, ok bool) {
	x0, x1 := max(0, dx), min(m.w, dx+other.w)
	y0, y1 := max(0, dy), min(m.h, dy+other.h)
	if x0 >= x1 || y0 >= y1 {
		return 0, 0, false
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; {
			word := m.bits[y*m.words+x/64] >> uint(x%64)
			span := min(64-x%64, x1-x)
			if span < 64 {
				word &= 1<<uint(span) - 1
			}
			for word != 0 {
				off := bits.TrailingZeros64(word)
				if other.Get(x+off-dx, y-dy) {
					return x + off, y, true
				}
				word &= word - 1
			}
			x += span
		}
	}
	return 0, 0, false
}

// Bounds returns the smallest rectangle holding every solid pixel.
func (m *Mask) Bounds() image.Rectangle {
	r := image.Rectangle{}
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if m.Get(x, y) {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}
