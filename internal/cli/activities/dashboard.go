package activities

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/fitlog/internal/cli"
	"github.com/julianstephens/fitlog/internal/tui"
)

// DashboardCmd opens the interactive dashboard.
type DashboardCmd struct {
	Refresh time.Duration `default:"1m" help:"How often the dashboard reloads. 0 disables it."`
}

func (c *DashboardCmd) Run(ctx *cli.Context) error {
	user, err := ctx.UserID()
	if err != nil {
		return err
	}

	m := tui.NewModel(ctx.Ctx(), tui.Deps{
		Store:   ctx.Store,
		Tracker: ctx.Tracker,
		Engine:  ctx.Engine,
		UserID:  user,
		Offline: ctx.Offline || ctx.Remote == nil,
		Refresh: c.Refresh,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx.Ctx()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
