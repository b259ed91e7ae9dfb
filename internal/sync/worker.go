package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/fitlog/internal/logger"
)

// Passer runs one drain pass. *Engine implements it.
type Passer interface {
	SyncToRemote(ctx context.Context, userID string) Report
}

// PassError is published on Worker.Errors for every failed pass.
type PassError struct {
	UserID string
	Report Report
	Err    error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("sync pass for %s: %v", e.UserID, e.Err)
}

func (e *PassError) Unwrap() error {
	return e.Err
}

const (
	defaultErrorBuffer = 16
	defaultRetryDelay  = 250 * time.Millisecond
)

// Worker runs drain passes in the background on behalf of callers that
// must not wait for the network. Submissions for the same user coalesce
// into one pending pass.
type Worker struct {
	passer     Passer
	retryDelay time.Duration

	mu      sync.Mutex
	pending []string
	queued  map[string]bool
	running bool
	stopped bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	errs chan error
}

func NewWorker(p Passer) *Worker {
	return &Worker{
		passer:     p,
		retryDelay: defaultRetryDelay,
		queued:     map[string]bool{},
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		errs:       make(chan error, defaultErrorBuffer),
	}
}

// Errors delivers failed passes. When nobody reads fast enough the oldest
// failures are only logged.
func (w *Worker) Errors() <-chan error {
	return w.errs
}

// Submit schedules a pass for userID. It never blocks.
func (w *Worker) Submit(userID string) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		logger.Warn("Sync worker stopped, pass not scheduled", "user", userID)
		return
	}
	if !w.queued[userID] {
		w.queued[userID] = true
		w.pending = append(w.pending, userID)
	}
	w.mu.Unlock()
	w.signal()
}

func (w *Worker) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Start launches the worker goroutine. Cancelling ctx abandons pending
// passes; their entries stay in the outbox.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running || w.stopped {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.loop(ctx)
}

// Stop runs the passes still pending and waits for the worker to exit.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	running := w.running
	w.mu.Unlock()

	close(w.stop)
	if running {
		<-w.done
		return
	}
	w.drainPending(context.Background(), false)
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			w.drainPending(ctx, false)
			return
		case <-w.wake:
			w.drainPending(ctx, true)
		}
	}
}

func (w *Worker) next() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return "", false
	}
	userID := w.pending[0]
	w.pending = w.pending[1:]
	delete(w.queued, userID)
	return userID, true
}

func (w *Worker) drainPending(ctx context.Context, retry bool) {
	for ctx.Err() == nil {
		userID, ok := w.next()
		if !ok {
			return
		}
		report := w.run(ctx, userID)
		if report.Skipped == SkipInFlight && retry {
			// Another caller holds the pass. Try again shortly so this
			// submission is not lost.
			w.requeueAfter(userID, w.retryDelay)
		}
	}
}

func (w *Worker) requeueAfter(userID string, d time.Duration) {
	time.AfterFunc(d, func() {
		w.mu.Lock()
		stopped := w.stopped
		w.mu.Unlock()
		if !stopped {
			w.Submit(userID)
		}
	})
}

func (w *Worker) run(ctx context.Context, userID string) (report Report) {
	defer func() {
		if r := recover(); r != nil {
			report = Report{Err: fmt.Errorf("sync pass panicked: %v", r)}
			w.publish(userID, report, report.Err)
		}
	}()

	report = w.passer.SyncToRemote(ctx, userID)
	if err := report.Error(); err != nil {
		w.publish(userID, report, err)
	}
	return report
}

func (w *Worker) publish(userID string, report Report, err error) {
	perr := &PassError{UserID: userID, Report: report, Err: err}
	logger.Error("Background sync failed", "user", userID, "error", err)
	for {
		select {
		case w.errs <- perr:
			return
		default:
		}
		// Full: drop the oldest failure to make room.
		select {
		case old := <-w.errs:
			var dropped *PassError
			if errors.As(old, &dropped) {
				logger.Debug("Dropped unread sync failure", "user", dropped.UserID)
			}
		default:
		}
	}
}
