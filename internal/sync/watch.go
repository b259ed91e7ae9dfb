package sync

import (
	"context"
	"time"

	"github.com/julianstephens/fitlog/internal/logger"
)

// Backoff is an exponential delay between failing watch cycles.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Duration returns Base * 2^(attempt-1), capped at Max. Attempts below 1
// get Base.
func (b Backoff) Duration(attempt int) time.Duration {
	if b.Base <= 0 {
		return 0
	}
	d := b.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

// WatchOptions configures Watch.
type WatchOptions struct {
	Interval time.Duration
	Backoff  Backoff
	// OnCycle, if set, observes every cycle.
	OnCycle func(Report, error)
}

// Watch runs a push-then-pull cycle every Interval until ctx is done.
// After a failing cycle it waits according to Backoff instead, or
// Interval when Backoff is zero; offline cycles are not failures.
func (e *Engine) Watch(ctx context.Context, userID string, opts WatchOptions) error {
	if _, _, err := e.handles(); err != nil {
		return err
	}
	failures := 0
	for {
		report, err := e.PushPull(ctx, userID)
		if opts.OnCycle != nil {
			opts.OnCycle(report, err)
		}

		wait := opts.Interval
		if err != nil {
			failures++
			if d := opts.Backoff.Duration(failures); d > 0 {
				wait = d
			}
			logger.Warn("Sync cycle failed", "user", userID, "attempt", failures, "retry_in", wait, "error", err)
		} else {
			failures = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
