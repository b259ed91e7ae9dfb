package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/fitlog/internal/logger"
	"github.com/julianstephens/fitlog/internal/outbox"
	"github.com/julianstephens/fitlog/internal/remote"
)

// SkipReason says why a pass ended before touching the outbox.
type SkipReason string

const (
	SkipInFlight SkipReason = "in_flight"
	SkipOffline  SkipReason = "offline"
	SkipEmpty    SkipReason = "empty"
)

// Report describes one drain pass.
type Report struct {
	Skipped SkipReason
	// Pending is the queue length when the pass started.
	Pending int
	Applied int
	// Failed entries stay queued for the next pass.
	Failed int
	// Unacked entries reached the remote but could not be removed locally.
	// They will be delivered again.
	Unacked    int
	BaselineXP int64
	EarnedXP   int64
	// PushedXP is the total written to the remote, zero if none was.
	PushedXP  int64
	XPPushErr error
	// Err aborted the pass.
	Err      error
	Duration time.Duration
}

// Error folds the pass failures into one error, nil for a clean pass.
func (r Report) Error() error {
	var errs []error
	if r.Err != nil {
		errs = append(errs, r.Err)
	}
	if r.Failed > 0 {
		errs = append(errs, fmt.Errorf("%d of %d outbox entries failed", r.Failed, r.Pending))
	}
	if r.XPPushErr != nil {
		errs = append(errs, fmt.Errorf("failed to push experience points: %w", r.XPPushErr))
	}
	return errors.Join(errs...)
}

// SyncToRemote runs one drain pass for userID: every queued entry is
// applied in creation order, and the XP of the applied ones is added to
// the remote total fetched at the start of the pass. At most one pass runs
// per engine; an overlapping call returns at once with SkipInFlight.
func (e *Engine) SyncToRemote(ctx context.Context, userID string) (report Report) {
	if !e.syncing.CompareAndSwap(false, true) {
		return Report{Skipped: SkipInFlight}
	}
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		e.syncing.Store(false)
	}()

	store, client, err := e.handles()
	if err != nil {
		return Report{Err: err}
	}
	if !e.Online(ctx) {
		logger.Debug("Offline, deferring sync", "user", userID)
		return Report{Skipped: SkipOffline}
	}

	records, err := store.PendingEntries()
	if err != nil {
		return Report{Err: fmt.Errorf("failed to read outbox: %w", err)}
	}
	if len(records) == 0 {
		return Report{Skipped: SkipEmpty}
	}
	report.Pending = len(records)

	err = e.call(ctx, func(ctx context.Context) error {
		var err error
		report.BaselineXP, err = client.GetProfileXP(ctx, userID)
		return err
	})
	if err != nil {
		logger.Error("Failed to fetch baseline experience points", "user", userID, "error", err)
		report.Err = fmt.Errorf("failed to fetch baseline XP: %w", err)
		return report
	}

	type recordKey struct {
		table outbox.Table
		id    string
	}
	var delivered []outbox.Mutation
	blocked := map[recordKey]bool{}

	for _, rec := range records {
		if ctx.Err() != nil {
			report.Failed += report.Pending - report.Applied - report.Failed
			break
		}
		entry, err := rec.Entry()
		if err != nil {
			logger.Error("Undecodable outbox entry left in queue", "entry", rec.ID, "table", rec.Table, "action", rec.Action, "error", err)
			report.Failed++
			continue
		}

		m := entry.Mutation
		if err := e.call(ctx, func(ctx context.Context) error { return apply(ctx, client, m) }); err != nil {
			logger.Warn("Outbox entry failed, will retry", "entry", entry.ID, "table", m.Table(), "action", m.Action(), "error", err)
			report.Failed++
			blocked[recordKey{m.Table(), m.RecordID()}] = true
			continue
		}
		report.Applied++
		report.EarnedXP += entry.XPGained

		if err := store.DeleteEntry(entry.ID); err != nil {
			// Delivered but still queued: the next pass sends it, and its
			// XP, again.
			logger.Error("Failed to remove delivered outbox entry", "entry", entry.ID, "table", m.Table(), "error", err)
			report.Unacked++
		}
		delivered = append(delivered, m)
	}

	// A row stays dirty while any of its entries is still queued.
	for _, m := range delivered {
		key := recordKey{m.Table(), m.RecordID()}
		if blocked[key] {
			continue
		}
		blocked[key] = true
		if err := store.MarkSynced(m.Table(), m.RecordID(), e.now()); err != nil {
			logger.Warn("Failed to clear needs_sync", "table", m.Table(), "id", m.RecordID(), "error", err)
		}
	}

	if report.EarnedXP > 0 {
		total := report.BaselineXP + report.EarnedXP
		err := e.call(ctx, func(ctx context.Context) error {
			return client.UpdateProfileXP(ctx, userID, total)
		})
		if err != nil {
			logger.Error("Failed to push experience points", "user", userID, "xp", total, "error", err)
			report.XPPushErr = err
		} else {
			report.PushedXP = total
		}
	}

	logger.Info("Sync pass finished", "user", userID, "applied", report.Applied, "failed", report.Failed, "xp", report.PushedXP)
	return report
}

// apply sends one mutation to the remote.
func apply(ctx context.Context, client remote.Client, m outbox.Mutation) error {
	switch m := m.(type) {
	case outbox.ProfileUpdate:
		return client.UpdateProfile(ctx, m.Profile)
	case outbox.MealInsert:
		return client.InsertMeal(ctx, m.Meal)
	case outbox.WorkoutInsert:
		return client.InsertWorkout(ctx, m.Workout)
	case outbox.WaterInsert:
		return client.InsertWater(ctx, m.Water)
	case outbox.WaterUpdate:
		return client.UpdateWaterGlasses(ctx, m.ID, m.Glasses)
	case outbox.SleepInsert:
		return client.InsertSleep(ctx, m.Sleep)
	case outbox.SleepUpdate:
		return client.UpdateSleepMinutes(ctx, m.ID, m.SleepMinutes)
	default:
		return fmt.Errorf("%w: %T", outbox.ErrUnknownMutation, m)
	}
}
