// Package sync reconciles the local store with the remote backend: it
// drains the outbox, pulls authoritative rows back and merges XP.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/julianstephens/fitlog/internal/connectivity"
	"github.com/julianstephens/fitlog/internal/logger"
	"github.com/julianstephens/fitlog/internal/models"
	"github.com/julianstephens/fitlog/internal/outbox"
	"github.com/julianstephens/fitlog/internal/remote"
	"github.com/julianstephens/fitlog/internal/storage"
)

var (
	// ErrNotInitialized is returned by operations called before Init.
	ErrNotInitialized = errors.New("sync engine not initialized")
	// ErrNoRemote is returned by remote reads on an engine bound without a
	// remote client.
	ErrNoRemote = errors.New("no remote backend configured")
)

type Options struct {
	// Probe gates every pass. Nil means always online.
	Probe connectivity.Probe
	// RemoteTimeout bounds each remote call. Zero disables it.
	RemoteTimeout time.Duration
	Now           func() time.Time
}

type Engine struct {
	mu     sync.RWMutex
	store  storage.LocalStore
	remote remote.Client

	probe   connectivity.Probe
	timeout time.Duration
	now     func() time.Time

	syncing atomic.Bool
}

// Status is the observable engine state.
type Status struct {
	Initialized bool
	Syncing     bool
}

func NewEngine(opts Options) *Engine {
	e := &Engine{
		probe:   opts.Probe,
		timeout: opts.RemoteTimeout,
		now:     opts.Now,
	}
	if e.probe == nil {
		e.probe = connectivity.NewStatic(true)
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Init binds the engine to its store and remote client. Only the first
// call has an effect; it reports whether this call did the binding. A nil
// client leaves the engine permanently offline, queueing everything.
func (e *Engine) Init(store storage.LocalStore, client remote.Client) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store != nil {
		return false
	}
	e.store = store
	e.remote = client
	return true
}

func (e *Engine) handles() (storage.LocalStore, remote.Client, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.store == nil {
		return nil, nil, ErrNotInitialized
	}
	return e.store, e.remote, nil
}

func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Status{Initialized: e.store != nil, Syncing: e.syncing.Load()}
}

// Online consults the connectivity probe. An engine bound without a
// remote client is always offline.
func (e *Engine) Online(ctx context.Context) bool {
	e.mu.RLock()
	client := e.remote
	e.mu.RUnlock()
	return client != nil && e.probe.Online(ctx)
}

// call runs fn under the per-call remote timeout.
func (e *Engine) call(ctx context.Context, fn func(context.Context) error) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return fn(ctx)
}

// FetchAndUpdateLocal pulls the remote profile and stores it locally as
// confirmed. It returns nil, nil when the remote has no profile.
func (e *Engine) FetchAndUpdateLocal(ctx context.Context, userID string) (*models.Profile, error) {
	store, client, err := e.handles()
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrNoRemote
	}

	var p *models.Profile
	err = e.call(ctx, func(ctx context.Context) error {
		var err error
		p, err = client.GetProfile(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	if err := store.UpsertProfile(*p, e.now()); err != nil {
		return nil, fmt.Errorf("failed to store remote profile: %w", err)
	}
	return p, nil
}

func (e *Engine) GetLocalProfile(userID string) (models.Profile, error) {
	store, _, err := e.handles()
	if err != nil {
		return models.Profile{}, err
	}
	return store.GetProfile(userID)
}

// UpdateProfile applies upd locally, queues the merged profile and runs a
// pass before returning. The merged profile is returned even when the
// pass could not deliver it.
func (e *Engine) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (models.Profile, error) {
	store, _, err := e.handles()
	if err != nil {
		return models.Profile{}, err
	}
	current, err := store.GetProfile(userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to load profile: %w", err)
	}

	merged := upd.Apply(current)
	merged.UpdatedAt = e.now()
	if err := store.SaveProfile(merged); err != nil {
		return models.Profile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	merged.NeedsSync = true

	e.AddToSyncQueue(outbox.ProfileUpdate{Profile: merged}, 0)
	report := e.SyncToRemote(ctx, userID)
	if err := report.Error(); err != nil {
		logger.Warn("Profile update not yet delivered", "user", userID, "error", err)
	}
	return merged, nil
}

// UpdateLocalProfileXP overwrites the local XP total without queueing
// anything. The drain pass is what reconciles XP with the remote.
func (e *Engine) UpdateLocalProfileXP(userID string, xp int64) error {
	store, _, err := e.handles()
	if err != nil {
		return err
	}
	return store.SetProfileXP(userID, xp, e.now())
}

// AddToSyncQueue appends m to the outbox. Failures are logged, never
// returned: the caller's local write already happened.
func (e *Engine) AddToSyncQueue(m outbox.Mutation, xpGained int64) {
	store, _, err := e.handles()
	if err == nil {
		_, err = store.Enqueue(outbox.Entry{Mutation: m, XPGained: xpGained, CreatedAt: e.now()})
	}
	if err != nil {
		logger.Error("Failed to queue mutation", "table", m.Table(), "action", m.Action(), "id", m.RecordID(), "error", err)
	}
}

func (e *Engine) HasPendingSyncs() (bool, error) {
	n, err := e.PendingCount()
	return n > 0, err
}

func (e *Engine) PendingCount() (int, error) {
	store, _, err := e.handles()
	if err != nil {
		return 0, err
	}
	return store.CountPending()
}

// FullSync pushes the outbox, pulls the profile and returns the local
// profile. Remote failures fall back to the local copy; only a missing
// local profile is an error.
func (e *Engine) FullSync(ctx context.Context, userID string) (models.Profile, error) {
	store, _, err := e.handles()
	if err != nil {
		return models.Profile{}, err
	}
	if _, err := e.PushPull(ctx, userID); err != nil {
		logger.Warn("Full sync incomplete, using local profile", "user", userID, "error", err)
	}
	return store.GetProfile(userID)
}

// PushPull is one push-then-pull cycle. Offline is not an error. The
// profile pull is skipped while the outbox still holds entries, so remote
// state never replaces undelivered local edits.
func (e *Engine) PushPull(ctx context.Context, userID string) (Report, error) {
	if !e.Online(ctx) {
		return Report{Skipped: SkipOffline}, nil
	}
	report := e.SyncToRemote(ctx, userID)
	if report.Skipped == SkipOffline {
		return report, nil
	}
	errs := []error{report.Error()}
	pending, err := e.PendingCount()
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("failed to count pending changes: %w", err))
	case pending > 0:
		logger.Debug("Skipping profile pull with undelivered changes", "user", userID, "pending", pending)
	default:
		if _, err := e.FetchAndUpdateLocal(ctx, userID); err != nil {
			errs = append(errs, fmt.Errorf("failed to pull profile: %w", err))
		}
	}
	return report, errors.Join(errs...)
}

// PullDay copies the user's remote rows for date into the local store.
// Rows with unsynced local changes are kept. It does nothing offline or
// while the outbox still holds undelivered entries.
func (e *Engine) PullDay(ctx context.Context, userID, date string) error {
	store, client, err := e.handles()
	if err != nil {
		return err
	}
	if !e.Online(ctx) {
		return nil
	}
	pending, err := store.CountPending()
	if err != nil {
		return err
	}
	if pending > 0 {
		logger.Debug("Skipping pull with undelivered changes", "user", userID, "pending", pending)
		return nil
	}

	var (
		meals    []models.Meal
		workouts []models.Workout
		water    *models.WaterConsumption
		sleep    *models.Sleep
	)
	err = e.call(ctx, func(ctx context.Context) error {
		var err error
		if meals, err = client.MealsByDate(ctx, userID, date); err != nil {
			return err
		}
		if workouts, err = client.WorkoutsByDate(ctx, userID, date); err != nil {
			return err
		}
		if water, err = client.WaterByDate(ctx, userID, date); err != nil {
			return err
		}
		sleep, err = client.SleepByDate(ctx, userID, date)
		return err
	})
	if err != nil {
		return err
	}

	var errs []error
	for _, m := range meals {
		errs = append(errs, store.UpsertSyncedMeal(m))
	}
	for _, w := range workouts {
		errs = append(errs, store.UpsertSyncedWorkout(w))
	}
	if water != nil {
		errs = append(errs, store.UpsertSyncedWater(*water))
	}
	if sleep != nil {
		errs = append(errs, store.UpsertSyncedSleep(*sleep))
	}
	return errors.Join(errs...)
}
