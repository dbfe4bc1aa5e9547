// Package world builds room layouts: randomly sized rectangles scattered in
// a plane and pushed apart until no two of them overlap.
package world

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/roomscatter/internal/telemetry"
)

// ErrNotConverged is returned when the pass budget runs out while rooms
// still overlap. The accompanying layout is still usable.
var ErrNotConverged = errors.New("layout did not converge")

// Layout is the result of a generation run.
type Layout struct {
	Rooms     []*Room
	Config    Config
	Passes    int  // Resolution passes executed
	Residual  int  // Overlapping pairs left when the run stopped
	Converged bool // True when the last pass found no overlaps
}

// Overlaps counts the pairs of rooms whose bounds intersect.
func (l *Layout) Overlaps() int {
	return CountOverlaps(l.Rooms)
}

// Bounds returns the rectangle enclosing every room.
func (l *Layout) Bounds() Rect {
	var r Rect
	for _, room := range l.Rooms {
		r = r.Union(room.Bounds())
	}
	return r
}

// CountOverlaps counts intersecting pairs without moving anything.
func CountOverlaps(rooms []*Room) int {
	count := 0
	for i := 0; i < len(rooms); i++ {
		for j := i + 1; j < len(rooms); j++ {
			if rooms[i].Intersects(rooms[j]) {
				count++
			}
		}
	}
	return count
}

// Resolver creates rooms and separates the overlapping ones.
type Resolver struct {
	cfg    Config
	src    Source
	tracer trace.Tracer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTracer sets the tracer used for generation spans. The default is the
// global provider's "world" tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Resolver) { r.tracer = t }
}

// NewResolver validates cfg and returns a resolver drawing from src.
func NewResolver(cfg Config, src Source, opts ...Option) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Resolver{
		cfg:    cfg,
		src:    src,
		tracer: telemetry.Tracer("world"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewRooms creates n rooms with ids 0..n-1.
func (r *Resolver) NewRooms(n int) []*Room {
	rooms := make([]*Room, n)
	for i := range rooms {
		rooms[i] = NewRoom(i, r.cfg, r.src)
	}
	return rooms
}

// Generate creates the configured number of rooms and runs resolution
// passes until one finds no overlaps. If MaxPasses is reached first the
// partial layout is returned with an error wrapping ErrNotConverged. If ctx
// ends first the partial layout is returned with ctx's error.
func (r *Resolver) Generate(ctx context.Context) (*Layout, error) {
	ctx, span := r.tracer.Start(ctx, "layout.generate")
	defer span.End()

	logger := log.FromContext(ctx)
	startTime := time.Now()

	layout := &Layout{
		Rooms:  r.NewRooms(r.cfg.TotalRooms),
		Config: r.cfg,
	}

	err := r.resolve(ctx, span, layout)

	span.SetAttributes(
		attribute.Int("layout.room_count", len(layout.Rooms)),
		attribute.Int("layout.passes", layout.Passes),
		attribute.Int("layout.residual", layout.Residual),
		attribute.Bool("layout.converged", layout.Converged),
		attribute.Int64("layout.generation_ms", time.Since(startTime).Milliseconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	logger.Debug("layout generated",
		"rooms", len(layout.Rooms),
		"passes", layout.Passes,
		"residual", layout.Residual,
		"converged", layout.Converged)

	return layout, err
}

func (r *Resolver) resolve(ctx context.Context, span trace.Span, layout *Layout) error {
	logger := log.FromContext(ctx)

	// Nothing can overlap.
	if len(layout.Rooms) < 2 {
		layout.Converged = true
		return nil
	}

	for layout.Passes < r.cfg.MaxPasses {
		if err := ctx.Err(); err != nil {
			layout.Residual = layout.Overlaps()
			return err
		}

		overlaps := r.ResolveOverlaps(layout.Rooms)
		layout.Passes++

		span.AddEvent("layout.pass", trace.WithAttributes(
			attribute.Int("pass", layout.Passes),
			attribute.Int("overlaps", overlaps),
		))
		logger.Debug("resolution pass", "pass", layout.Passes, "overlaps", overlaps)

		if overlaps == 0 {
			layout.Converged = true
			layout.Residual = 0
			return nil
		}
	}

	layout.Residual = layout.Overlaps()
	return fmt.Errorf("%w after %d passes: %d overlapping pairs remain",
		ErrNotConverged, layout.Passes, layout.Residual)
}

// ResolveOverlaps runs one resolution pass and returns the number of
// overlapping pairs it found. Each pair is visited once, and the earlier
// room in the slice always displaces the later one. For every overlap three
// coin flips are drawn in order: the vertical candidate (below or above the
// reference), the horizontal candidate (left or right of it), and which of
// the two axes to move on. If the single-axis move still overlaps the
// reference, the room is moved on both axes.
func (r *Resolver) ResolveOverlaps(rooms []*Room) int {
	count := 0

	for i := 0; i < len(rooms)-1; i++ {
		ref := rooms[i]
		frame := ref.Bounds()

		for _, other := range rooms[i+1:] {
			if !frame.Intersects(other.Bounds()) {
				continue
			}
			count++

			// Positions are centres, so offset by half the other room's size.
			var newY, newX float64
			if r.src.Bool() {
				newY = ref.Bottom() - other.Height/2
			} else {
				newY = ref.Top() + other.Height/2
			}
			if r.src.Bool() {
				newX = ref.Left() - other.Width/2
			} else {
				newX = ref.Right() + other.Width/2
			}

			if r.src.Bool() {
				other.MoveY(newY)
			} else {
				other.MoveX(newX)
			}

			if frame.Intersects(other.Bounds()) {
				other.MoveTo(To(newX), To(newY))
			}
		}
	}

	return count
}
