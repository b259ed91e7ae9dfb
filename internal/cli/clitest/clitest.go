// Package clitest builds command contexts backed by a temporary SQLite
// store and an in-memory remote.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/fitlog/internal/cli"
	"github.com/julianstephens/fitlog/internal/config"
	"github.com/julianstephens/fitlog/internal/connectivity"
	"github.com/julianstephens/fitlog/internal/models"
	"github.com/julianstephens/fitlog/internal/remote/remotetest"
	"github.com/julianstephens/fitlog/internal/storage/sqlite"
	fitsync "github.com/julianstephens/fitlog/internal/sync"
	"github.com/julianstephens/fitlog/internal/tracking"
)

// Now is the fixed clock every Env uses.
var Now = time.Date(2026, 10, 16, 8, 0, 0, 0, time.Local)

const UserID = "u1"

type Env struct {
	Ctx    *cli.Context
	Remote *remotetest.Fake
	Probe  *connectivity.Static
	Out    *bytes.Buffer
}

// Setup returns an initialized Env. The user has a profile with 1000 XP
// both locally and remotely, and the probe starts online.
func Setup(t *testing.T) *Env {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.UserID = UserID

	store := sqlite.NewStore(filepath.Join(dir, "fitlog.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	fake := remotetest.NewFake()
	profile := models.Profile{ID: UserID, FirstName: "Ada", ExperiencePoints: 1000, CreatedAt: Now, UpdatedAt: Now}
	fake.Profiles[UserID] = profile
	if err := store.UpsertProfile(profile, Now); err != nil {
		t.Fatal(err)
	}

	clock := func() time.Time { return Now }
	probe := connectivity.NewStatic(true)
	engine := fitsync.NewEngine(fitsync.Options{Probe: probe, Now: clock})
	engine.Init(store, fake)
	worker := fitsync.NewWorker(engine)
	out := &bytes.Buffer{}

	ctx := &cli.Context{
		ConfigDir: dir,
		Config:    cfg,
		Store:     store,
		Engine:    engine,
		Tracker:   tracking.NewService(store, engine, worker, tracking.Options{Rates: cfg.XP, Now: clock}),
		Worker:    worker,
		User:      UserID,
		Out:       out,
		Clock:     clock,
	}
	t.Cleanup(func() { ctx.Close() })
	return &Env{Ctx: ctx, Remote: fake, Probe: probe, Out: out}
}
