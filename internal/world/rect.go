package world

// Rect is an axis-aligned rectangle in scene coordinates. Y grows upward,
// so MinY is the bottom edge and MaxY the top edge.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// RectAround returns the rectangle of the given size centred on (cx, cy).
func RectAround(cx, cy, width, height float64) Rect {
	return Rect{
		MinX: cx - width/2,
		MinY: cy - height/2,
		MaxX: cx + width/2,
		MaxY: cy + height/2,
	}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// Intersects returns true if the two rectangles share positive area.
// Rectangles that only touch along an edge or corner do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.MinX < other.MaxX &&
		r.MaxX > other.MinX &&
		r.MinY < other.MaxY &&
		r.MaxY > other.MinY
}

// Inset shrinks the rectangle by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{MinX: r.MinX + d, MinY: r.MinY + d, MaxX: r.MaxX - d, MaxY: r.MaxY - d}
}

// Union returns the smallest rectangle containing both r and other.
// An empty receiver is ignored.
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	return Rect{
		MinX: min(r.MinX, other.MinX),
		MinY: min(r.MinY, other.MinY),
		MaxX: max(r.MaxX, other.MaxX),
		MaxY: max(r.MaxY, other.MaxY),
	}
}
