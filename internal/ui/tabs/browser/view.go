package browser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/vapi-call-browser/internal/ui/components"
	"github.com/j-veylop/vapi-call-browser/internal/ui/styles"
)

// View renders the browser tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	var sections []string

	sections = append(sections, m.renderTitle())

	if m.sorting {
		sections = append(sections, m.renderSortModal())
	}

	if m.state.GetCallCount() == 0 {
		sections = append(sections, m.renderEmptyState())
	} else {
		// Rebuild rows so mask and sort changes show up immediately
		m.refreshRows()
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderList(),
			m.renderDetail(),
		))
	}

	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the browser tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Call Browser")

	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d calls cached, sorted by %s",
		m.state.GetCallCount(),
		strings.ToLower(m.sortField.label()),
	))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderList renders the call table pane.
func (m *Model) renderList() string {
	return styles.CardStyle.Width(m.listWidth()).Render(m.table.View())
}

// renderDetail renders the detail pane for the selected call.
func (m *Model) renderDetail() string {
	detailWidth := max(m.width-m.listWidth()-8, 24)

	c := m.selectedCall()
	if c == nil {
		return styles.CardStyle.Width(detailWidth).Render(
			styles.HelpStyle.Render("No call selected."),
		)
	}

	wrapStyle := lipgloss.NewStyle().Width(max(m.viewport.Width-2, 20))

	var rows []string

	// Header: caller and start time
	caller := styles.SpeakerCallerStyle.Render(c.FormattedCaller())
	if m.state.IsMasked() {
		caller = styles.MaskedValueStyle.Render(c.MaskedCaller())
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center,
		caller,
		"  ",
		styles.HelpStyle.Render(c.Start.Format("Mon Jan 2 2006 15:04:05")),
	))
	rows = append(rows, "")

	rows = append(rows, metaLine("ID", c.ID))
	rows = append(rows, metaLine("Duration", formatLength(c.LengthInSeconds())))
	rows = append(rows, metaLine("Cost", fmt.Sprintf("$%.2f", c.Cost)))

	ended := c.EndedReason
	if ended == "" {
		ended = "unknown"
	}
	rows = append(rows, styles.BlurredStyle.Render(fmt.Sprintf("%-10s", "Ended"))+
		styles.GetEndedReasonStyle(c.EndedReason).Render(ended))

	if len(c.CostBreakdown) > 0 {
		rows = append(rows, "")
		rows = append(rows, styles.CardTitleStyle.Render("Cost Breakdown"))

		keys := make([]string, 0, len(c.CostBreakdown))
		for k := range c.CostBreakdown {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			rows = append(rows, fmt.Sprintf("  %-12s $%.3f", k, c.CostBreakdown[k]))
		}
	}

	rows = append(rows, "")
	rows = append(rows, styles.CardTitleStyle.Render("Summary"))
	if c.Summary == "" {
		rows = append(rows, styles.HelpStyle.Render("No summary recorded."))
	} else {
		rows = append(rows, wrapStyle.Render(c.Summary))
	}

	rows = append(rows, "")
	rows = append(rows, styles.CardTitleStyle.Render("Transcript"))
	rows = append(rows, m.renderTranscript(c.Transcript, wrapStyle))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	m.viewport.SetContent(content)

	return styles.CardStyle.Width(detailWidth).Render(m.viewport.View())
}

func metaLine(label, value string) string {
	return styles.BlurredStyle.Render(fmt.Sprintf("%-10s", label)) + value
}

// renderTranscript colorizes speaker turns. Lines look like "AI: hello";
// only a short prefix before the first colon is treated as a speaker label.
func (m *Model) renderTranscript(transcript string, wrapStyle lipgloss.Style) string {
	if transcript == "" {
		return styles.HelpStyle.Render("No transcript recorded.")
	}

	var out []string
	for line := range strings.SplitSeq(transcript, "\n") {
		speaker, rest, found := strings.Cut(line, ":")
		if found && len(speaker) <= 12 && !strings.Contains(speaker, " ") {
			out = append(out, wrapStyle.Render(
				styles.GetSpeakerStyle(speaker).Render(speaker+":")+rest,
			))
		} else {
			out = append(out, wrapStyle.Render(line))
		}
	}
	return strings.Join(out, "\n")
}

// renderSortModal renders the sort field picker.
func (m *Model) renderSortModal() string {
	cardWidth := 34

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Sort Calls"))
	rows = append(rows, "")

	for i, f := range sortFields {
		label := f.label()
		if f == m.sortField {
			if m.sortAsc {
				label += " ↑"
			} else {
				label += " ↓"
			}
		}
		if i == m.sortChoice {
			rows = append(rows, styles.FocusedStyle.Render("> "+label))
		} else {
			rows = append(rows, styles.BlurredStyle.Render("  "+label))
		}
	}

	rows = append(rows, "")
	rows = append(rows, styles.HelpStyle.Render("Enter: apply | Esc: cancel"))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return styles.CenterHorizontal(
		styles.ModalContentStyle.Width(cardWidth).Render(content),
		m.width,
	)
}

// renderEmptyState renders the empty state when the cache holds no calls.
func (m *Model) renderEmptyState() string {
	cardWidth := max(m.width-6, 40)

	hint := "Press 'r' to fetch calls from the Vapi API"
	if m.state.IsOffline() {
		hint = "Offline mode is on. Press 'o' to go online first."
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No Calls Cached"),
		"",
		styles.HelpStyle.Render("The local cache is empty."),
		"",
		styles.InfoTextStyle.Render(hint),
		"",
	)

	return styles.CardStyle.Width(cardWidth).Render(content)
}

// renderFooter renders the footer with keyboard shortcuts.
func (m *Model) renderFooter() string {
	var shortcuts []string

	if m.sorting {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("↑/↓") + " choose",
			styles.HelpKeyStyle.Render("Enter") + " apply",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	} else {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("↑/↓") + " select",
			styles.HelpKeyStyle.Render("s") + " sort",
			styles.HelpKeyStyle.Render("y") + " copy id",
			styles.HelpKeyStyle.Render("Y") + " copy transcript",
			styles.HelpKeyStyle.Render("v") + " raw json",
			styles.HelpKeyStyle.Render("PgUp/PgDn") + " scroll",
		}
	}

	footer := ""
	for i, s := range shortcuts {
		if i > 0 {
			footer += styles.HelpSeparatorStyle.Render(" | ")
		}
		footer += s
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(footer)
}
