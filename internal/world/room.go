package world

import "strconv"

// Room is a rectangular area of the map. Its size is fixed at creation;
// only the centre position changes while overlaps are being resolved.
type Room struct {
	ID     int     // Creation order, unique within a layout
	Cols   int     // Width in tiles (always even)
	Rows   int     // Height in tiles (always even)
	Width  float64 // Cols * tile size
	Height float64 // Rows * tile size
	X, Y   float64 // Centre position
}

// NewRoom creates a room with a random even-tile size and a random position
// inside the configured offset range. Draws are taken from src in the order
// cols, rows, x, y.
func NewRoom(id int, cfg Config, src Source) *Room {
	cols := randRange(src, cfg.MinExtent, cfg.MaxExtent) * 2
	rows := randRange(src, cfg.MinExtent, cfg.MaxExtent) * 2
	x := randRange(src, cfg.MinOffset, cfg.MaxOffset) * cfg.TileSize
	y := randRange(src, cfg.MinOffset, cfg.MaxOffset) * cfg.TileSize

	return &Room{
		ID:     id,
		Cols:   cols,
		Rows:   rows,
		Width:  float64(cols * cfg.TileSize),
		Height: float64(rows * cfg.TileSize),
		X:      float64(x),
		Y:      float64(y),
	}
}

// Name returns the display name used by renderers, e.g. "room3".
func (r *Room) Name() string {
	return "room" + strconv.Itoa(r.ID)
}

// Bounds returns the bounding rectangle at the room's current position.
func (r *Room) Bounds() Rect {
	return RectAround(r.X, r.Y, r.Width, r.Height)
}

// Floor returns the interior of the room, inset by one tile on each side.
func (r *Room) Floor(tileSize int) Rect {
	return r.Bounds().Inset(float64(tileSize))
}

func (r *Room) Left() float64   { return r.X - r.Width/2 }
func (r *Room) Right() float64  { return r.X + r.Width/2 }
func (r *Room) Bottom() float64 { return r.Y - r.Height/2 }
func (r *Room) Top() float64    { return r.Y + r.Height/2 }

// Intersects returns true if this room overlaps with another room.
func (r *Room) Intersects(other *Room) bool {
	return r.Bounds().Intersects(other.Bounds())
}

// Coord is an optional coordinate for MoveTo. The zero value is Keep.
type Coord struct {
	v   float64
	set bool
}

// Keep leaves an axis unchanged.
var Keep Coord

// To returns a Coord that moves an axis to v.
func To(v float64) Coord {
	return Coord{v: v, set: true}
}

// MoveTo updates the position on the axes that are set and leaves the
// others untouched.
func (r *Room) MoveTo(x, y Coord) {
	if x.set {
		r.X = x.v
	}
	if y.set {
		r.Y = y.v
	}
}

// MoveX moves the room horizontally only.
func (r *Room) MoveX(x float64) { r.MoveTo(To(x), Keep) }

// MoveY moves the room vertically only.
func (r *Room) MoveY(y float64) { r.MoveTo(Keep, To(y)) }
