// Package system holds setup, credential and diagnostic commands.
package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/fitlog/internal/backup"
	"github.com/julianstephens/fitlog/internal/cli"
	"github.com/julianstephens/fitlog/internal/config"
)

type InitCmd struct {
	Force bool `help:"Delete the existing local database first. Unsynced changes are lost."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	dbPath := ctx.Store.Path()
	if c.Force {
		if _, err := os.Stat(dbPath); err == nil {
			path, err := backup.NewManager(dbPath).Create()
			if err != nil {
				return fmt.Errorf("failed to back up existing database: %w", err)
			}
			fmt.Fprintf(ctx.Out, "Backed up existing database to: %s\n", path)
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Fprintf(ctx.Out, "Deleted existing database at: %s\n", dbPath)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Initialized fitlog storage at: %s\n", dbPath)

	if ctx.User != "" && ctx.Config.UserID != ctx.User {
		ctx.Config.UserID = ctx.User
		if err := ctx.Config.Save(ctx.ConfigDir); err != nil {
			return err
		}
		fmt.Fprintf(ctx.Out, "Saved user %s to %s\n", ctx.User, config.Path(ctx.ConfigDir))
	}

	if ctx.User == "" || !ctx.Engine.Online(ctx.Ctx()) {
		return nil
	}
	p, err := ctx.Engine.FetchAndUpdateLocal(ctx.Ctx(), ctx.User)
	switch {
	case err != nil:
		fmt.Fprintln(ctx.Out, cli.Warning("could not pull profile: %v", err))
	case p == nil:
		fmt.Fprintln(ctx.Out, cli.Warning("no remote profile for %s yet", ctx.User))
	default:
		fmt.Fprintln(ctx.Out, cli.Success("Pulled profile for %s (%d XP)", p.DisplayName(), p.ExperiencePoints))
	}
	return nil
}
