package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	if s.label != "Loading" {
		t.Error("Spinner label mismatch")
	}
}

func TestSpinner_Methods(t *testing.T) {
	s := NewSpinner("Init")

	s.SetLabel("Loading")
	if s.label != "Loading" {
		t.Errorf("label = %s, want Loading", s.label)
	}

	// Test View
	view := s.View()
	if view == "" {
		t.Error("View returned empty")
	}

	// Test ViewWithLabel
	view = s.ViewWithLabel()
	if view == "" {
		t.Error("ViewWithLabel returned empty")
	}

	// Test Init
	if s.Init() == nil {
		t.Error("Init should return command")
	}

	// Test Update
	m, cmd := s.Update(spinner.TickMsg{})
	_ = m
	if cmd == nil {
		t.Error("Update should return command for tick")
	}

	// Test Tick
	if s.Tick() == nil {
		t.Error("Tick should return command")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	view := RenderSpinnerCentered(s, 20, 5)
	if view == "" {
		t.Error("RenderSpinnerCentered returned empty")
	}
}

func TestRenderLineChart(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	s := RenderLineChart(data, 20, 5, "Calls per day")
	if s == "" {
		t.Error("RenderLineChart returned empty")
	}
	if !strings.Contains(s, "Calls per day") {
		t.Error("RenderLineChart should include the caption")
	}
}

func TestRenderLineChart_NoData(t *testing.T) {
	s := RenderLineChart(nil, 20, 5, "Empty")
	if !strings.Contains(s, "No data available") {
		t.Errorf("RenderLineChart(nil) = %q, want no-data placeholder", s)
	}
}

func TestRenderBarChart(t *testing.T) {
	values := []float64{1.5, 3.0}
	labels := []string{"Aug 01", "Aug 02"}
	s := RenderBarChart(values, labels, 40, "$%.2f")
	if s == "" {
		t.Error("RenderBarChart returned empty")
	}
	if !strings.Contains(s, "Aug 01") {
		t.Error("RenderBarChart should include labels")
	}
	if !strings.Contains(s, "$3.00") {
		t.Errorf("RenderBarChart should format values, got %q", s)
	}
	if !strings.Contains(s, "█") {
		t.Error("RenderBarChart should draw bars")
	}
}

func TestRenderBarChart_Empty(t *testing.T) {
	if s := RenderBarChart(nil, nil, 40, ""); s != "" {
		t.Errorf("RenderBarChart(nil) = %q, want empty", s)
	}
}

func TestRenderBarChart_DefaultFormat(t *testing.T) {
	s := RenderBarChart([]float64{2}, []string{"A"}, 40, "")
	if !strings.Contains(s, "2.0") {
		t.Errorf("default format should render 2.0, got %q", s)
	}
}

func TestRenderSparkline(t *testing.T) {
	data := []float64{1, 2, 3}
	s := RenderSparkline(data, 10)
	if s == "" {
		t.Error("RenderSparkline returned empty")
	}
	if n := len([]rune(s)); n > 10 {
		t.Errorf("sparkline width = %d, want <= 10", n)
	}
}

func TestRenderSparkline_Empty(t *testing.T) {
	if s := RenderSparkline(nil, 10); s != "" {
		t.Errorf("RenderSparkline(nil) = %q, want empty", s)
	}
}

func TestRenderLegend(t *testing.T) {
	items := []LegendItem{
		{Label: "Calls", Color: lipgloss.Color("#7aa2f7")},
		{Label: "Cost", Color: lipgloss.Color("#9ece6a")},
	}
	s := RenderLegend(items)
	if !strings.Contains(s, "Calls") || !strings.Contains(s, "Cost") {
		t.Errorf("RenderLegend missing labels: %q", s)
	}
}
