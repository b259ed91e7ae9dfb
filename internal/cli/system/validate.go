package system

import (
	"fmt"

	"github.com/julianstephens/fitlog/internal/cli"
	"github.com/julianstephens/fitlog/internal/validation"
)

// ValidateCmd checks today's local data and the outbox for problems.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	user, err := ctx.UserID()
	if err != nil {
		return err
	}
	progress, err := ctx.Tracker.GetTodayProgress(ctx.Ctx(), user, true)
	if err != nil {
		return err
	}
	records, err := ctx.Store.PendingEntries()
	if err != nil {
		return fmt.Errorf("failed to read outbox: %w", err)
	}

	v := validation.New()
	result := v.ValidateDay(progress.TodayData)
	result.Merge(v.ValidateQueue(records, ctx.Now()))

	if !result.HasIssues() {
		fmt.Fprintln(ctx.Out, cli.Success("No issues detected."))
		return nil
	}
	fmt.Fprint(ctx.Out, result.FormatReport())
	return nil
}
