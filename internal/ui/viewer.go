package ui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/roomscatter/internal/telemetry"
	"github.com/samdwyer/roomscatter/internal/world"
)

// GenerateFunc produces a new layout. A non-nil layout may be returned
// together with an error, e.g. when the layout did not fully converge.
type GenerateFunc func(ctx context.Context) (*world.Layout, error)

// Viewer is an interactive loop showing one layout at a time.
// Keys: r regenerates, q or Esc quits.
type Viewer struct {
	screen   *Screen
	renderer *Renderer
	generate GenerateFunc
	layout   *world.Layout
	status   string
	running  bool
}

// NewViewer creates a viewer drawing on screen.
func NewViewer(screen *Screen, palette Palette, generate GenerateFunc) *Viewer {
	return &Viewer{
		screen:   screen,
		renderer: NewRenderer(screen, palette),
		generate: generate,
		running:  true,
	}
}

// Layout returns the layout currently on screen.
func (v *Viewer) Layout() *world.Layout {
	return v.layout
}

// Run generates the first layout and handles input until the user quits or
// ctx is done. The screen is closed on return.
func (v *Viewer) Run(ctx context.Context) error {
	defer v.screen.Close()

	stop := context.AfterFunc(ctx, v.screen.Interrupt)
	defer stop()

	v.regenerate(ctx)

	for v.running {
		v.renderer.Render(v.layout, v.status)
		v.handleInput(ctx)
	}

	return ctx.Err()
}

// regenerate replaces the current layout.
func (v *Viewer) regenerate(ctx context.Context) {
	ctx, span := telemetry.Tracer("ui").Start(ctx, "viewer.regenerate")
	defer span.End()

	layout, err := v.generate(ctx)
	if layout != nil {
		v.layout = layout
	}

	switch {
	case layout == nil && err != nil:
		v.status = "error: " + err.Error()
	case err != nil:
		v.status = fmt.Sprintf("%d rooms, %d overlaps left after %d passes  [r]egenerate [q]uit",
			len(layout.Rooms), layout.Residual, layout.Passes)
	default:
		v.status = fmt.Sprintf("%d rooms, %d passes  [r]egenerate [q]uit", len(layout.Rooms), layout.Passes)
	}

	if layout != nil {
		span.SetAttributes(
			attribute.Int("layout.room_count", len(layout.Rooms)),
			attribute.Bool("layout.converged", layout.Converged),
		)
	}
}

// handleInput processes a single input event.
func (v *Viewer) handleInput(ctx context.Context) {
	ev := v.screen.PollEvent()

	switch ev := ev.(type) {
	case nil, *tcell.EventInterrupt:
		v.running = false
	case *tcell.EventKey:
		v.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		v.screen.Sync()
	}
}

// handleKeyEvent processes keyboard input.
func (v *Viewer) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		v.running = false
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			v.running = false
		case 'r', 'R':
			v.regenerate(ctx)
		}
	}
}
