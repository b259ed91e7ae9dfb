package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/fitlog/internal/cli"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.err != nil:
		content = warningStyle.Render(fmt.Sprintf("Could not load today: %v", m.err))
	case !m.loaded:
		content = "Loading…"
	default:
		switch m.state {
		case StateToday:
			content = cli.RenderProgress(m.progress, m.profile)
		case StateActivity:
			content = m.activity.View()
		case StateQueue:
			content = m.queue.View()
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		docStyle.Render(content),
		m.viewStatus(),
		m.help.View(m.keys),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		pending := i == int(StateQueue) && len(m.queue.Records) > 0
		if pending {
			title = fmt.Sprintf("%s (%d)", title, len(m.queue.Records))
		}
		switch {
		case m.state == SessionState(i):
			tabs = append(tabs, activeTabStyle.Render(title))
		case pending:
			tabs = append(tabs, pendingTabStyle.Render(title))
		default:
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	line := statusStyle.Render(m.deps.UserID+" · ") + connectionBadge(m.deps.Offline)
	if m.status != "" {
		line += statusStyle.Render(" · " + m.status)
	}
	return line
}
