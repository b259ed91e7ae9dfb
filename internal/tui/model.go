// Package tui is the interactive dashboard for today's activity and the
// sync queue.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/fitlog/internal/models"
	"github.com/julianstephens/fitlog/internal/outbox"
	"github.com/julianstephens/fitlog/internal/storage"
	fitsync "github.com/julianstephens/fitlog/internal/sync"
	"github.com/julianstephens/fitlog/internal/tracking"
	"github.com/julianstephens/fitlog/internal/tui/components/activity"
	"github.com/julianstephens/fitlog/internal/tui/components/queue"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateActivity
	StateQueue
)

var tabTitles = []string{"Today", "Activity", "Queue"}

type Deps struct {
	Store   storage.LocalStore
	Tracker *tracking.Service
	Engine  *fitsync.Engine
	UserID  string
	Offline bool
	// Refresh reloads the dashboard periodically. Zero disables it.
	Refresh time.Duration
}

type Model struct {
	ctx      context.Context
	deps     Deps
	state    SessionState
	keys     KeyMap
	help     help.Model
	activity activity.Model
	queue    queue.Model
	progress models.TodayProgress
	profile  *models.Profile
	status   string
	err      error
	loaded   bool
	quitting bool
	width    int
	height   int
}

func NewModel(ctx context.Context, deps Deps) Model {
	return Model{
		ctx:      ctx,
		deps:     deps,
		state:    StateToday,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		activity: activity.New(0, 0),
		queue:    queue.New(0, 0),
	}
}

type loadedMsg struct {
	progress models.TodayProgress
	profile  *models.Profile
	records  []outbox.Record
	err      error
}

type syncedMsg struct {
	report fitsync.Report
	err    error
}

type waterMsg struct {
	glasses int
	err     error
}

type tickMsg time.Time

func (m Model) Init() tea.Cmd {
	if m.deps.Refresh > 0 {
		return tea.Batch(m.load(), m.tick())
	}
	return m.load()
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		var msg loadedMsg
		msg.progress, msg.err = m.deps.Tracker.GetTodayProgress(m.ctx, m.deps.UserID, m.deps.Offline)
		if msg.err != nil {
			return msg
		}
		if p, err := m.deps.Engine.GetLocalProfile(m.deps.UserID); err == nil {
			msg.profile = &p
		}
		msg.records, msg.err = m.deps.Store.PendingEntries()
		return msg
	}
}

func (m Model) sync() tea.Cmd {
	return func() tea.Msg {
		report, err := m.deps.Engine.PushPull(m.ctx, m.deps.UserID)
		return syncedMsg{report: report, err: err}
	}
}

func (m Model) addWater() tea.Cmd {
	return func() tea.Msg {
		w, err := m.deps.Tracker.AddWater(m.ctx, m.deps.UserID)
		return waterMsg{glasses: w.Glasses, err: err}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.deps.Refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}
