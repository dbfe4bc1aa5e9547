package ui

import (
	"math"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/roomscatter/internal/world"
)

// Terminal cells are roughly twice as tall as they are wide.
const cellAspect = 2.0

// Renderer draws layouts to a screen. Each room is a filled rectangle with
// its floor inset by one tile and its id in the middle.
type Renderer struct {
	screen  *Screen
	palette Palette
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen, palette Palette) *Renderer {
	return &Renderer{screen: screen, palette: palette}
}

// viewport maps scene coordinates onto screen cells. The layout is centred
// and y grows upward.
type viewport struct {
	bounds     world.Rect
	scale      float64 // columns per scene unit
	offX, offY int
	rows       int
}

func newViewport(bounds world.Rect, cols, rows int) viewport {
	v := viewport{bounds: bounds, rows: rows, scale: 1}
	if bounds.Empty() || cols <= 0 || rows <= 0 {
		return v
	}

	v.scale = math.Min(float64(cols)/bounds.Width(), cellAspect*float64(rows)/bounds.Height())
	v.offX = (cols - int(math.Round(bounds.Width()*v.scale))) / 2
	v.offY = (rows - int(math.Round(bounds.Height()*v.scale/cellAspect))) / 2
	return v
}

// cells returns the half-open cell range [x0, x1) x [y0, y1) covering r.
func (v viewport) cells(r world.Rect) (x0, y0, x1, y1 int) {
	sy := v.scale / cellAspect
	x0 = v.offX + int(math.Round((r.MinX-v.bounds.MinX)*v.scale))
	x1 = v.offX + int(math.Round((r.MaxX-v.bounds.MinX)*v.scale))
	y0 = v.offY + int(math.Round((v.bounds.MaxY-r.MaxY)*sy))
	y1 = v.offY + int(math.Round((v.bounds.MaxY-r.MinY)*sy))
	return x0, y0, x1, y1
}

// Render draws the layout with a status line at the bottom of the screen.
func (r *Renderer) Render(layout *world.Layout, status string) {
	r.screen.Clear()

	w, h := r.screen.Size()
	rows := h - 1 // status line

	if layout != nil && len(layout.Rooms) > 0 {
		view := newViewport(layout.Bounds(), w, rows)
		tile := layout.Config.TileSize

		for _, room := range layout.Rooms {
			r.fill(view, room.Bounds(), r.palette.Fill, rows)
			if floor := room.Floor(tile); !floor.Empty() {
				r.fill(view, floor, r.palette.Floor, rows)
			}
			r.label(view, room, rows)
		}
	}

	r.RenderMessage(status, h-1)
	r.screen.Show()
}

// fill paints every cell of rect with the background color.
func (r *Renderer) fill(view viewport, rect world.Rect, color tcell.Color, rows int) {
	style := tcell.StyleDefault.Background(color)
	x0, y0, x1, y1 := view.cells(rect)
	w, _ := r.screen.Size()

	for y := max(y0, 0); y < min(y1, rows); y++ {
		for x := max(x0, 0); x < min(x1, w); x++ {
			r.screen.SetContent(x, y, ' ', style)
		}
	}
}

// label writes the room id centred in the room.
func (r *Renderer) label(view viewport, room *world.Room, rows int) {
	x0, y0, x1, y1 := view.cells(room.Bounds())
	text := strconv.Itoa(room.ID)
	y := (y0 + y1) / 2
	if y < 0 || y >= rows {
		return
	}

	style := tcell.StyleDefault.Foreground(r.palette.Label).Background(r.palette.Floor).Bold(true)
	r.screen.DrawText((x0+x1-len(text))/2, y, text, style)
}

// RenderMessage displays a message on the given row.
func (r *Renderer) RenderMessage(msg string, y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	r.screen.DrawText(0, y, msg, style)
}
