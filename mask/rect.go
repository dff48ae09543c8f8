package mask

// Rect is an axis-aligned box with a top-left corner and a size.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Right() float64   { return r.X + r.W }
func (r Rect) Bottom() float64  { return r.Y + r.H }
func (r Rect) CenterX() float64 { return r.X + r.W/2 }
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Intersects is the strict AABB test; touching edges do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && r.Right() > o.X && r.Y < o.Bottom() && r.Bottom() > o.Y
}
