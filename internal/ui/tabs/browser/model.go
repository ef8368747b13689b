// Package browser provides the call browser tab, a table of cached calls with
// a transcript detail pane.
package browser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/vapi-call-browser/internal/app"
	"github.com/j-veylop/vapi-call-browser/internal/models"
	"github.com/j-veylop/vapi-call-browser/internal/services"
	"github.com/j-veylop/vapi-call-browser/internal/ui/components"
	"github.com/j-veylop/vapi-call-browser/internal/ui/styles"
	"github.com/j-veylop/vapi-call-browser/internal/vapi"
)

// sortField identifies a column the call list can be ordered by.
type sortField int

const (
	sortByTime sortField = iota
	sortByLength
	sortByCost
	sortByEnded
)

var sortFields = []sortField{sortByTime, sortByLength, sortByCost, sortByEnded}

// String returns the wire name used in sort messages.
func (f sortField) String() string {
	switch f {
	case sortByLength:
		return "length"
	case sortByCost:
		return "cost"
	case sortByEnded:
		return "ended"
	default:
		return "time"
	}
}

// label returns the human-readable name shown in the sort modal.
func (f sortField) label() string {
	switch f {
	case sortByLength:
		return "Length"
	case sortByCost:
		return "Cost"
	case sortByEnded:
		return "Ended reason"
	default:
		return "Time"
	}
}

func fieldFromString(s string) sortField {
	switch s {
	case "length":
		return sortByLength
	case "cost":
		return sortByCost
	case "ended":
		return sortByEnded
	default:
		return sortByTime
	}
}

// keyMap defines the key bindings specific to the browser tab.
type keyMap struct {
	Sort           key.Binding
	YankID         key.Binding
	YankTranscript key.Binding
	Raw            key.Binding
	PageUp         key.Binding
	PageDown       key.Binding
	Escape         key.Binding
}

// defaultKeyMap returns the default key bindings for the browser tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		YankID: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy call id"),
		),
		YankTranscript: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy transcript"),
		),
		Raw: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "view raw json"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "scroll detail up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "scroll detail down"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// rawReadyMsg is sent when a call's raw JSON has been written to a temp file.
type rawReadyMsg struct {
	path string
}

// rawErrorMsg is sent when fetching raw JSON failed.
type rawErrorMsg struct {
	err error
}

// editorFinishedMsg is sent when the external editor exits.
type editorFinishedMsg struct {
	path string
	err  error
}

// Model represents the browser tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	table    table.Model
	viewport viewport.Model
	spinner  components.LoadingSpinner
	width    int
	height   int
	keys     keyMap

	// Sorted view over the shared call list
	calls      []models.CallRecord
	sortField  sortField
	sortAsc    bool
	sorting    bool
	sortChoice int
}

// New creates a new browser model.
func New(state *app.State, svc *services.Manager) *Model {
	t := table.New(
		table.WithColumns(listColumns(14)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:     state,
		services:  svc,
		table:     t,
		viewport:  viewport.New(0, 0),
		spinner:   components.NewSpinner("Loading calls..."),
		keys:      defaultKeyMap(),
		sortField: sortByTime,
		sortAsc:   false,
	}
}

func listColumns(callerWidth int) []table.Column {
	return []table.Column{
		{Title: "Time", Width: 12},
		{Title: "Caller", Width: callerWidth},
		{Title: "Length", Width: 6},
		{Title: "Cost", Width: 7},
		{Title: "Ended", Width: 15},
	}
}

// Init initializes the browser tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	// Handle sort modal mode
	if m.sorting {
		return m.updateSortModal(msg)
	}

	switch msg := msg.(type) {
	case app.CallsLoadedMsg:
		m.refreshRows()

	case app.TabSwitchMsg:
		if msg.Tab == app.TabBrowser {
			m.refreshRows()
		}

	case app.SortMsg:
		m.sortField = fieldFromString(msg.Field)
		m.sortAsc = msg.Ascending
		m.refreshRows()

	case rawReadyMsg:
		return m.openEditor(msg.path)

	case rawErrorMsg:
		cmds = append(cmds, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("Raw call fetch failed: %v", msg.err),
				Duration: app.LongNotificationDuration,
			}
		})

	case editorFinishedMsg:
		os.Remove(msg.path)
		if msg.err != nil {
			cmds = append(cmds, func() tea.Msg {
				return app.AddNotificationMsg{
					Type:     app.NotificationError,
					Message:  fmt.Sprintf("Editor failed: %v", msg.err),
					Duration: app.LongNotificationDuration,
				}
			})
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Sort):
		m.sorting = true
		m.sortChoice = int(m.sortField)

	case key.Matches(msg, m.keys.YankID):
		if c := m.selectedCall(); c != nil {
			id := c.ID
			return m, func() tea.Msg {
				return app.CopyToClipboardMsg{Text: id, Label: "Call ID"}
			}
		}

	case key.Matches(msg, m.keys.YankTranscript):
		if c := m.selectedCall(); c != nil {
			if c.Transcript == "" {
				return m, func() tea.Msg {
					return app.AddNotificationMsg{
						Type:     app.NotificationWarning,
						Message:  "Call has no transcript",
						Duration: app.QuickNotificationDuration,
					}
				}
			}
			transcript := c.Transcript
			return m, func() tea.Msg {
				return app.CopyToClipboardMsg{Text: transcript, Label: "Transcript"}
			}
		}

	case key.Matches(msg, m.keys.Raw):
		if c := m.selectedCall(); c != nil {
			return m, m.loadRawCmd(c.ID)
		}

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	default:
		before := m.table.Cursor()
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
		if m.table.Cursor() != before {
			m.viewport.GotoTop()
		}
	}

	return m, tea.Batch(cmds...)
}

// updateSortModal handles input while the sort modal is open.
func (m *Model) updateSortModal(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "s":
			m.sorting = false
			return m, nil

		case "up", "k":
			m.sortChoice = (m.sortChoice - 1 + len(sortFields)) % len(sortFields)

		case "down", "j":
			m.sortChoice = (m.sortChoice + 1) % len(sortFields)

		case "enter":
			chosen := sortFields[m.sortChoice]
			// Every field starts descending; re-selecting the active
			// field flips the direction
			asc := false
			if chosen == m.sortField {
				asc = !m.sortAsc
			}
			m.sorting = false
			return m, func() tea.Msg {
				return app.SortMsg{Field: chosen.String(), Ascending: asc}
			}
		}
	}
	return m, nil
}

// openEditor suspends the TUI and opens the temp file in $EDITOR.
func (m *Model) openEditor(path string) (app.Tab, tea.Cmd) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	c := exec.Command(editor, path)
	return m, tea.ExecProcess(c, func(err error) tea.Msg {
		return editorFinishedMsg{path: path, err: err}
	})
}

// loadRawCmd fetches the raw API JSON for a call and stages it in a temp
// file. With masking on, UUIDs and secret-ish values are scrubbed before the
// payload ever touches disk.
func (m *Model) loadRawCmd(id string) tea.Cmd {
	masked := m.state.IsMasked()
	return func() tea.Msg {
		if m.services == nil {
			return rawErrorMsg{err: fmt.Errorf("services not initialized")}
		}

		raw, err := m.services.RawCall(id)
		if err != nil {
			return rawErrorMsg{err: err}
		}

		var pretty bytes.Buffer
		if masked {
			pretty.Write(vapi.MaskSecrets(raw))
		} else if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			// Not valid JSON, show it as-is
			pretty.Reset()
			pretty.Write(raw)
		}

		f, err := os.CreateTemp("", "vcb-call-*.json")
		if err != nil {
			return rawErrorMsg{err: err}
		}
		if _, err := f.Write(pretty.Bytes()); err != nil {
			f.Close()
			os.Remove(f.Name())
			return rawErrorMsg{err: err}
		}
		f.Close()

		return rawReadyMsg{path: f.Name()}
	}
}

// selectedCall returns the call under the cursor, nil when the list is empty.
func (m *Model) selectedCall() *models.CallRecord {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.calls) {
		return nil
	}
	return &m.calls[cursor]
}

// refreshRows rebuilds the sorted call list and table rows from shared state.
func (m *Model) refreshRows() {
	m.calls = m.state.GetCalls()
	m.sortCalls()

	masked := m.state.IsMasked()
	rows := make([]table.Row, 0, len(m.calls))
	for i := range m.calls {
		c := &m.calls[i]

		caller := c.FormattedCaller()
		if masked {
			caller = c.MaskedCaller()
		}

		ended := c.EndedReason
		if ended == "" {
			ended = "Unknown"
		}

		rows = append(rows, table.Row{
			c.Start.Format("Jan 02 15:04"),
			caller,
			formatLength(c.LengthInSeconds()),
			fmt.Sprintf("$%.2f", c.Cost),
			ended,
		})
	}
	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

func (m *Model) sortCalls() {
	field := m.sortField
	asc := m.sortAsc
	sort.SliceStable(m.calls, func(i, j int) bool {
		a, b := &m.calls[i], &m.calls[j]
		var less bool
		switch field {
		case sortByLength:
			less = a.Duration() < b.Duration()
		case sortByCost:
			less = a.Cost < b.Cost
		case sortByEnded:
			less = a.EndedReason < b.EndedReason
		default:
			less = a.Start.Before(b.Start)
		}
		if asc {
			return less
		}
		return !less
	})
}

// formatLength renders a call length in seconds as m:ss.
func formatLength(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// SetSize sets the available size for the browser tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	listWidth := m.listWidth()

	// Caller column absorbs whatever the fixed columns leave over
	callerWidth := listWidth - 54
	if callerWidth < 13 {
		callerWidth = 13
	}
	if callerWidth > 20 {
		callerWidth = 20
	}
	m.table.SetColumns(listColumns(callerWidth))
	m.table.SetHeight(max(height-8, 3))

	m.viewport.Width = max(width-listWidth-10, 20)
	m.viewport.Height = max(height-8, 3)
}

// listWidth returns the width of the call list pane.
func (m *Model) listWidth() int {
	w := m.width * 7 / 12
	if w < 67 {
		w = 67
	}
	if w > 74 {
		w = 74
	}
	return w
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.sorting {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
			m.keys.Escape,
		}
	}
	return []key.Binding{
		m.keys.Sort,
		m.keys.YankID,
		m.keys.YankTranscript,
		m.keys.Raw,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Sort, m.keys.Raw},
		{m.keys.YankID, m.keys.YankTranscript},
		{m.keys.PageUp, m.keys.PageDown},
	}
}
