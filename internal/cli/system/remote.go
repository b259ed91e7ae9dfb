package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/fitlog/internal/cli"
)

// RemoteMigrateCmd creates or upgrades the backend schema.
type RemoteMigrateCmd struct{}

func (c *RemoteMigrateCmd) Run(ctx *cli.Context) error {
	if ctx.Remote == nil {
		return errors.New("no remote configured, use --remote, FITLOG_REMOTE_URL or 'fitlog keyring set'")
	}
	count, err := ctx.Remote.Migrate(ctx.Ctx(), func(msg string) {
		fmt.Fprintln(ctx.Out, msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		fmt.Fprintln(ctx.Out, "No migrations to apply. Remote is up to date.")
		return nil
	}
	fmt.Fprintf(ctx.Out, "\nSuccessfully applied %d migration(s).\n", count)
	return nil
}

// RemoteCheckCmd connects to the backend and checks its schema version.
type RemoteCheckCmd struct{}

func (c *RemoteCheckCmd) Run(ctx *cli.Context) error {
	if ctx.Remote == nil {
		return errors.New("no remote configured")
	}
	if err := ctx.Remote.Open(ctx.Ctx()); err != nil {
		return err
	}
	if err := ctx.Remote.Validate(); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, cli.Success("Remote is reachable and its schema is supported"))
	return nil
}
