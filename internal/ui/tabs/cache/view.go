package cache

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/vapi-call-browser/internal/models"
	"github.com/j-veylop/vapi-call-browser/internal/ui/components"
	"github.com/j-veylop/vapi-call-browser/internal/ui/styles"
)

// View renders the cache tab.
func (m *Model) View() string {
	if m.loading && m.daily == nil && m.state.GetStats() == nil {
		return m.renderLoading()
	}

	sections := []string{
		m.renderHeader(),
		m.renderStats(),
		m.renderActivity(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading cache statistics..."))
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Cache Status")
	subtitle := styles.HelpStyle.Render("Local call cache health and activity")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderStats() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("💾")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Database")), "")

	stats := m.state.GetStats()
	if stats == nil {
		rows = append(rows, styles.HelpStyle.Render("  Statistics not loaded yet."))
	} else {
		rows = append(rows, statLine("Path", stats.Path))
		rows = append(rows, statLine("Status", renderStatus(stats)))

		if stats.Exists {
			rows = append(rows, statLine("Size", fmt.Sprintf("%.2f MB", stats.SizeMB())))
			rows = append(rows, statLine("Calls", fmt.Sprintf("%d", stats.CallCount)))
			if !stats.OldestCachedAt.IsZero() {
				rows = append(rows, statLine("Oldest", stats.OldestCachedAt.Format("Jan 2, 2006 15:04")))
			}
			if !stats.NewestCachedAt.IsZero() {
				rows = append(rows, statLine("Newest", stats.NewestCachedAt.Format("Jan 2, 2006 15:04")))
			}
		}

		refreshState := "idle"
		if m.state.IsRefreshing() {
			refreshState = styles.WarningTextStyle.Render("updating")
		}
		rows = append(rows, statLine("Refresh", refreshState))
		if last := m.state.GetLastUpdated(); !last.IsZero() {
			rows = append(rows, statLine("Updated", last.Format("15:04:05")))
		}

		if len(m.daily) > 0 {
			counts := make([]float64, len(m.daily))
			for i, d := range m.daily {
				counts[i] = float64(d.CallCount)
			}
			rows = append(rows, statLine("Activity", components.RenderSparkline(counts, 14)))
		}
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func statLine(label, value string) string {
	return "  " + styles.BlurredStyle.Render(fmt.Sprintf("%-8s", label)) + value
}

func renderStatus(stats *models.CacheStats) string {
	switch stats.Status {
	case models.CacheStatusOK:
		return styles.SuccessTextStyle.Render("OK")
	case models.CacheStatusNotExists:
		return styles.WarningTextStyle.Render("not created yet")
	default:
		return styles.ErrorTextStyle.Render(stats.Status)
	}
}

func (m *Model) renderActivity() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Daily Activity")), "")

	switch {
	case m.errorMsg != "":
		rows = append(rows, fmt.Sprintf("  %s %s", styles.ErrorTextStyle.Render("Error:"), m.errorMsg))

	case len(m.daily) == 0:
		rows = append(rows, styles.HelpStyle.Render("  No call activity recorded yet."))

	default:
		counts := make([]float64, len(m.daily))
		for i, d := range m.daily {
			counts[i] = float64(d.CallCount)
		}

		chartWidth := max(cardWidth-12, 30)
		chartHeight := 8

		chart := components.RenderLineChart(counts, chartWidth, chartHeight,
			fmt.Sprintf("Calls per day (last %d days)", len(m.daily)))

		chartLines := strings.SplitSeq(chart, "\n")
		for line := range chartLines {
			rows = append(rows, "  "+line)
		}

		rows = append(rows, "")

		// Cost bars for the most recent days
		recent := m.daily
		if len(recent) > 14 {
			recent = recent[len(recent)-14:]
		}
		costs := make([]float64, len(recent))
		labels := make([]string, len(recent))
		for i, d := range recent {
			costs[i] = d.TotalCost
			labels[i] = d.Date.Format("Jan 02")
		}

		barChart := components.RenderBarChart(costs, labels, chartWidth, "$%.2f")
		barLines := strings.SplitSeq(barChart, "\n")
		for line := range barLines {
			rows = append(rows, "  "+line)
		}

		rows = append(rows, "")
		legend := components.RenderLegend([]components.LegendItem{
			{Label: "Calls", Color: components.ChartCallsColor},
			{Label: "Cost", Color: components.ChartCostColor},
		})
		rows = append(rows, "  "+legend)

		var totalCalls int
		var totalCost float64
		for _, d := range m.daily {
			totalCalls += d.CallCount
			totalCost += d.TotalCost
		}
		rows = append(rows, "")
		rows = append(rows, fmt.Sprintf("  Total: %s calls costing %s over %d days",
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Render(fmt.Sprintf("%d", totalCalls)),
			lipgloss.NewStyle().Bold(true).Foreground(styles.Success).Render(fmt.Sprintf("$%.2f", totalCost)),
			len(m.daily),
		))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
