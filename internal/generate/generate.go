// Package generate runs layout generation under a bounded retry policy.
//
// A single resolver run can fail to converge; the generator restarts it with
// fresh rooms (drawn from the same source) until one converges, the attempt
// limit is reached, or the time budget runs out.
package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/roomscatter/internal/telemetry"
	"github.com/samdwyer/roomscatter/internal/world"
)

// Default retry policy.
const (
	DefaultAttempts = 3
	DefaultBudget   = 10 * time.Second
)

// Options controls the retry policy.
type Options struct {
	Attempts int           // Maximum number of generations, at least 1
	Delay    time.Duration // Pause between attempts
	Budget   time.Duration // Wall-clock limit for the whole run, 0 for none
}

// DefaultOptions returns the standard retry policy.
func DefaultOptions() Options {
	return Options{Attempts: DefaultAttempts, Budget: DefaultBudget}
}

// Result is the layout chosen by a run.
type Result struct {
	RunID    string // Identifier of the attempt that produced Layout
	Attempt  int    // 1-based attempt that produced Layout
	Attempts int    // Attempts made in total
	Layout   *world.Layout
}

// Generator produces layouts with a retry policy.
type Generator struct {
	resolver *world.Resolver
	opts     Options
	tracer   trace.Tracer
}

// New validates cfg and opts and returns a generator drawing from src.
func New(cfg world.Config, src world.Source, opts Options) (*Generator, error) {
	if opts.Attempts < 1 {
		return nil, &world.ConfigError{Field: "attempts", Reason: fmt.Sprintf("must be at least 1, got %d", opts.Attempts)}
	}
	if opts.Delay < 0 || opts.Budget < 0 {
		return nil, &world.ConfigError{Field: "budget", Reason: "durations must not be negative"}
	}

	resolver, err := world.NewResolver(cfg, src)
	if err != nil {
		return nil, err
	}

	return &Generator{
		resolver: resolver,
		opts:     opts,
		tracer:   telemetry.Tracer("generate"),
	}, nil
}

// Run generates layouts until one converges. When none does, the attempt
// with the fewest remaining overlaps is returned together with an error
// wrapping world.ErrNotConverged, or the context error if the caller's
// context ended.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	parent := ctx
	if g.opts.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Budget)
		defer cancel()
	}

	logger := log.FromContext(ctx)

	var best *Result
	attempts := 0

	operation := func() (*Result, error) {
		attempts++
		res, err := g.attempt(ctx, attempts)
		if best == nil || res.Layout.Residual < best.Layout.Residual {
			best = res
		}
		if err == nil {
			return res, nil
		}
		if errors.Is(err, world.ErrNotConverged) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	retryOpts := []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewConstantBackOff(g.opts.Delay)),
		backoff.WithMaxTries(uint(g.opts.Attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("layout did not converge, retrying", "attempt", attempts, "err", err, "delay", next)
		}),
	}
	if g.opts.Budget > 0 {
		retryOpts = append(retryOpts, backoff.WithMaxElapsedTime(g.opts.Budget))
	}

	res, err := backoff.Retry(ctx, operation, retryOpts...)
	if err == nil {
		res.Attempts = attempts
		logger.Info("layout converged", "run", res.RunID, "attempt", res.Attempt, "passes", res.Layout.Passes)
		return res, nil
	}

	if best == nil {
		return nil, err
	}
	best.Attempts = attempts

	// Our own deadline is a spent budget, not a caller cancellation.
	if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: time budget of %s exhausted", world.ErrNotConverged, g.opts.Budget)
	}

	logger.Warn("giving up on layout",
		"attempts", attempts,
		"best_run", best.RunID,
		"residual", best.Layout.Residual)

	return best, fmt.Errorf("after %d attempts: %w", attempts, err)
}

func (g *Generator) attempt(ctx context.Context, n int) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Attempt: n}

	ctx, span := g.tracer.Start(ctx, "generate.attempt", trace.WithAttributes(
		attribute.String("run.id", res.RunID),
		attribute.Int("run.attempt", n),
	))
	defer span.End()

	logger := log.FromContext(ctx).With("run", res.RunID)
	logger.Debug("starting layout attempt", "attempt", n)

	layout, err := g.resolver.Generate(log.WithContext(ctx, logger))
	res.Layout = layout
	span.SetAttributes(attribute.Bool("layout.converged", layout.Converged))

	return res, err
}
