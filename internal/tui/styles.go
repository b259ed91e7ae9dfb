package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent  = lipgloss.Color("42")
	colorMuted   = lipgloss.Color("244")
	colorPending = lipgloss.Color("214")
	colorOffline = lipgloss.Color("203")
)

var (
	tabStyle = lipgloss.NewStyle().Padding(0, 1)

	activeTabStyle = tabStyle.
			Foreground(colorAccent).
			Underline(true).
			Bold(true)

	inactiveTabStyle = tabStyle.Foreground(colorMuted)

	// The queue tab turns amber while entries wait for the remote.
	pendingTabStyle = tabStyle.Foreground(colorPending)

	warningStyle = lipgloss.NewStyle().Foreground(colorPending).Italic(true)

	statusStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	onlineStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	offlineStyle = lipgloss.NewStyle().Foreground(colorOffline).Bold(true)

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)

// connectionBadge renders the online or offline marker for the status line.
func connectionBadge(offline bool) string {
	if offline {
		return offlineStyle.Render("● offline")
	}
	return onlineStyle.Render("● online")
}
