package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/fitlog/internal/cli"
)

// chrome is the height taken by the tabs, status line and help.
const chrome = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.activity.SetSize(msg.Width-h, msg.Height-v-chrome)
		m.queue.SetSize(msg.Width-h, msg.Height-v-chrome)
		return m, nil

	case loadedMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.loaded = true
		m.progress = msg.progress
		m.profile = msg.profile
		m.activity.SetDay(msg.progress.TodayData)
		m.queue.SetRecords(msg.records)
		return m, nil

	case syncedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("sync failed: %v", msg.err)
		} else {
			m.status = cli.RenderReport(msg.report)
		}
		return m, m.load()

	case waterMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("could not add water: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("%d glasses today", msg.glasses)
		return m, m.load()

	case tickMsg:
		return m, tea.Batch(m.load(), m.tick())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + SessionState(len(tabTitles))) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.Sync):
			m.status = "syncing…"
			return m, m.sync()
		case key.Matches(msg, m.keys.Water):
			return m, m.addWater()
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateActivity:
		m.activity, cmd = m.activity.Update(msg)
	case StateQueue:
		m.queue, cmd = m.queue.Update(msg)
	}
	return m, cmd
}
