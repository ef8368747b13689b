// Package cache provides the cache status tab showing database health and
// daily call activity.
package cache

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/vapi-call-browser/internal/app"
	"github.com/j-veylop/vapi-call-browser/internal/models"
	"github.com/j-veylop/vapi-call-browser/internal/services"
)

// trailingDays is the window the daily charts cover.
const trailingDays = 30

// keyMap defines the key bindings specific to the cache tab.
type keyMap struct {
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
}

// defaultKeyMap returns the default key bindings for the cache tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// dailyLoadedMsg is sent when daily call statistics are loaded.
type dailyLoadedMsg struct {
	stats []models.DailyCallStats
}

// dailyErrorMsg is sent when loading daily statistics failed.
type dailyErrorMsg struct {
	err string
}

// Model represents the cache tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	daily       []models.DailyCallStats
	loading     bool
	lastRefresh time.Time
	errorMsg    string
}

// New creates a new cache model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:    state,
		services: svc,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the cache tab.
func (m *Model) Init() tea.Cmd {
	return m.loadDailyCmd()
}

// loadDailyCmd creates a command to load daily call statistics.
func (m *Model) loadDailyCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services == nil {
			return dailyErrorMsg{err: "Services not initialized"}
		}

		stats, err := m.services.DailyStats(trailingDays)
		if err != nil {
			return dailyErrorMsg{err: err.Error()}
		}
		return dailyLoadedMsg{stats: stats}
	}
}

// Update handles messages for the cache tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case dailyLoadedMsg:
		m.daily = msg.stats
		m.loading = false
		m.lastRefresh = time.Now()
		m.errorMsg = ""

	case dailyErrorMsg:
		m.loading = false
		m.errorMsg = msg.err
		cmds = append(cmds, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("Cache stats error: %s", msg.err),
				Duration: app.LongNotificationDuration,
			}
		})

	case app.StatsLoadedMsg:
		// The stats card reads shared state; keep the charts in step
		if !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadDailyCmd())
		}

	case app.TabSwitchMsg:
		if msg.Tab == app.TabCache && !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadDailyCmd())
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Refresh):
		if !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadDailyCmd())
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the cache tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
