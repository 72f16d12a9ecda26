package dev

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// PassFunc runs one compilation pass.
type PassFunc func(ctx context.Context) error

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithSettle sets how long the coordinator waits after a trigger before it
// starts a pass, so a burst of editor writes collapses into one pass.
func WithSettle(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.settle = d }
}

// WithCoordinatorLogger sets the logger.
func WithCoordinatorLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// Coordinator serializes compilation passes. It holds at most one pending
// request: triggers arriving while a pass runs collapse into a single
// follow-up pass, and passes never overlap.
type Coordinator struct {
	run     PassFunc
	pending chan struct{}
	settle  time.Duration
	logger  *slog.Logger

	passes    atomic.Int64
	coalesced atomic.Int64
}

// NewCoordinator creates a coordinator around run.
func NewCoordinator(run PassFunc, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		run:     run,
		pending: make(chan struct{}, 1),
		settle:  50 * time.Millisecond,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trigger requests a pass. It never blocks.
func (c *Coordinator) Trigger() {
	select {
	case c.pending <- struct{}{}:
	default:
		c.coalesced.Add(1)
	}
}

// Run processes triggers until ctx is done. Run must be called from a single
// goroutine.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.pending:
		}

		if c.settle > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.settle):
			}
			// The pass about to start covers anything that arrived meanwhile.
			select {
			case <-c.pending:
				c.coalesced.Add(1)
			default:
			}
		}

		n := c.passes.Add(1)
		if err := c.run(ctx); err != nil {
			c.logger.Debug("pass returned an error", "pass", n, "err", err)
		}
	}
}

// Passes returns the number of passes started.
func (c *Coordinator) Passes() int64 {
	return c.passes.Load()
}

// Coalesced returns the number of triggers folded into an already pending pass.
func (c *Coordinator) Coalesced() int64 {
	return c.coalesced.Load()
}
