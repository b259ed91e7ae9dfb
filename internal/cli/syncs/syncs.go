// Package syncs holds the commands that drive the sync engine directly.
package syncs

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/julianstephens/fitlog/internal/cli"
	"github.com/julianstephens/fitlog/internal/lockfile"
	"github.com/julianstephens/fitlog/internal/logger"
	"github.com/julianstephens/fitlog/internal/storage"
	fitsync "github.com/julianstephens/fitlog/internal/sync"
)

// RunCmd runs one push-then-pull cycle in the foreground.
type RunCmd struct{}

func (c *RunCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID()
	if err != nil {
		return err
	}
	report, err := ctx.Engine.PushPull(ctx.Ctx(), userID)
	fmt.Fprintln(ctx.Out, cli.RenderReport(report))
	if err != nil {
		return fmt.Errorf("sync incomplete: %w", err)
	}
	if report.Unacked > 0 {
		fmt.Fprintln(ctx.Out, cli.Warning("%d delivered changes could not be cleared locally and will be sent again", report.Unacked))
	}
	return nil
}

type StatusCmd struct {
	Verbose bool `short:"v" help:"List every queued change."`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID()
	if err != nil {
		return err
	}
	status := ctx.Engine.Status()
	records, err := ctx.Store.PendingEntries()
	if err != nil {
		return fmt.Errorf("failed to read outbox: %w", err)
	}

	remote := "not configured"
	switch {
	case ctx.Remote == nil:
	case ctx.Offline:
		remote = "disabled (--offline)"
	case ctx.Engine.Online(ctx.Ctx()):
		remote = "reachable"
	default:
		remote = "unreachable"
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Remote:\t%s\n", remote)
	fmt.Fprintf(w, "Initialized:\t%t\n", status.Initialized)
	fmt.Fprintf(w, "Pending:\t%d\n", len(records))

	p, err := ctx.Store.GetProfile(userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fmt.Fprintf(w, "Last synced:\tno local profile\n")
	case err != nil:
		return err
	case p.LastSynced == nil:
		fmt.Fprintf(w, "Last synced:\tnever\n")
	default:
		fmt.Fprintf(w, "Last synced:\t%s\n", p.LastSynced.Local().Format("2006-01-02 15:04:05"))
	}

	if holder, err := lockfile.Read(lockfile.DefaultPath(ctx.ConfigDir)); err == nil {
		fmt.Fprintf(w, "Watcher:\tpid %d since %s\n", holder.PID, holder.StartedAt.Local().Format("15:04"))
	}

	if c.Verbose && len(records) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "ID\tTABLE\tACTION\tXP\tQUEUED")
		for _, r := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", r.ID, r.Table, r.Action, r.XPGained, r.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
	}
	return w.Flush()
}

// WatchCmd keeps syncing until interrupted. Only one watcher runs per
// config directory.
type WatchCmd struct {
	Interval time.Duration `help:"Time between cycles (defaults to sync.watch_interval)."`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	userID, err := ctx.UserID()
	if err != nil {
		return err
	}
	if ctx.Remote == nil {
		return errors.New("no remote configured, nothing to watch")
	}

	lock, err := lockfile.Acquire(lockfile.DefaultPath(ctx.ConfigDir))
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release watch lock", "error", err)
		}
	}()

	interval := c.Interval
	if interval <= 0 {
		interval = ctx.Config.Sync.WatchInterval
	}

	sigCtx, stop := signal.NotifyContext(ctx.Ctx(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(ctx.Out, "Watching for changes every %s, press Ctrl+C to stop\n", interval)
	err = ctx.Engine.Watch(sigCtx, userID, fitsync.WatchOptions{
		Interval: interval,
		Backoff: fitsync.Backoff{
			Base: ctx.Config.Sync.BackoffBase,
			Max:  ctx.Config.Sync.BackoffMax,
		},
		OnCycle: func(r fitsync.Report, err error) {
			if r.Skipped == fitsync.SkipEmpty && err == nil {
				return
			}
			line := cli.RenderReport(r)
			if err != nil && r.Error() == nil {
				line = cli.Warning("%v", err)
			}
			fmt.Fprintf(ctx.Out, "%s %s\n", time.Now().Format("15:04:05"), line)
		},
	})
	fmt.Fprintln(ctx.Out, "Stopped watching.")
	return err
}
