// Package queue shows the outbox entries still waiting for the remote.
package queue

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/fitlog/internal/outbox"
)

var (
	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Width(6)

	entryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(28)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

type Model struct {
	viewport viewport.Model
	Records  []outbox.Record
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.Records) == 0 {
		return "Nothing queued. Local changes are in sync."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetRecords(records []outbox.Record) {
	m.Records = records
	m.Render()
}

func (m *Model) Render() {
	var b strings.Builder
	for _, r := range m.Records {
		status := fmt.Sprintf("+%d XP · queued %s", r.XPGained, r.CreatedAt.Local().Format("Jan 2 15:04"))
		if _, err := r.Entry(); err != nil {
			status = errorStyle.Render("cannot decode: " + err.Error())
		} else {
			status = statusStyle.Render(status)
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			idStyle.Render(fmt.Sprintf("#%d", r.ID)),
			entryStyle.Render(fmt.Sprintf("%s %s", r.Action, r.Table)),
			status,
		)
	}
	m.viewport.SetContent(b.String())
}
