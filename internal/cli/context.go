package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/julianstephens/fitlog/internal/config"
	"github.com/julianstephens/fitlog/internal/connectivity"
	"github.com/julianstephens/fitlog/internal/remote"
	"github.com/julianstephens/fitlog/internal/remote/postgres"
	"github.com/julianstephens/fitlog/internal/storage/sqlite"
	fitsync "github.com/julianstephens/fitlog/internal/sync"
	"github.com/julianstephens/fitlog/internal/tracking"
)

// ErrNoUser is returned by commands that need a user when none is set.
var ErrNoUser = errors.New("no user configured, pass --user or set user_id in config.yaml")

// Context carries the services every command runs against.
type Context struct {
	ConfigDir string
	Config    *config.Config
	Store     *sqlite.Store
	Engine    *fitsync.Engine
	Tracker   *tracking.Service
	Worker    *fitsync.Worker
	// Remote is nil when no backend is configured.
	Remote  *postgres.Store
	Offline bool
	User    string
	Out     io.Writer
	// Clock defaults to time.Now.
	Clock func() time.Time

	base context.Context
}

// Options selects the remote side of a Context.
type Options struct {
	ConfigDir string
	User      string
	Offline   bool
	// Remote may be nil, leaving the engine permanently offline.
	Remote *postgres.Store
	Probe  connectivity.Probe
	Now    func() time.Time
	Out    io.Writer
}

// New wires the sync engine, worker and tracking service around store.
// The worker is not started.
func New(cfg *config.Config, store *sqlite.Store, opts Options) *Context {
	probe := opts.Probe
	if opts.Offline || probe == nil {
		probe = connectivity.NewStatic(!opts.Offline && opts.Remote != nil)
	}
	engine := fitsync.NewEngine(fitsync.Options{
		Probe:         probe,
		RemoteTimeout: cfg.Remote.Timeout,
		Now:           opts.Now,
	})

	// A typed nil pointer would not compare equal to a nil interface.
	var client remote.Client
	if opts.Remote != nil {
		client = opts.Remote
	}
	engine.Init(store, client)

	worker := fitsync.NewWorker(engine)
	user := opts.User
	if user == "" {
		user = cfg.UserID
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Context{
		ConfigDir: opts.ConfigDir,
		Config:    cfg,
		Store:     store,
		Engine:    engine,
		Tracker: tracking.NewService(store, engine, worker, tracking.Options{
			Rates: cfg.XP,
			Now:   opts.Now,
		}),
		Worker:  worker,
		Remote:  opts.Remote,
		Offline: opts.Offline,
		User:    user,
		Out:     out,
		Clock:   opts.Now,
	}
}

func (c *Context) Now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock()
}

// UserID returns the active user.
func (c *Context) UserID() (string, error) {
	if c.User == "" {
		return "", ErrNoUser
	}
	return c.User, nil
}

// Start runs the background sync worker until ctx ends. Commands run
// under ctx from then on.
func (c *Context) Start(ctx context.Context) {
	c.base = ctx
	c.Worker.Start(ctx)
}

// Ctx is the context commands run under.
func (c *Context) Ctx() context.Context {
	if c.base == nil {
		return context.Background()
	}
	return c.base
}

// SyncFailures drains the failed background passes reported so far.
func (c *Context) SyncFailures() []error {
	var errs []error
	for {
		select {
		case err := <-c.Worker.Errors():
			errs = append(errs, err)
		default:
			return errs
		}
	}
}

// Close flushes queued sync passes and releases the store and backend.
func (c *Context) Close() error {
	c.Worker.Stop()
	var errs []error
	if c.Remote != nil {
		errs = append(errs, c.Remote.Close())
	}
	errs = append(errs, c.Store.Close())
	return errors.Join(errs...)
}
