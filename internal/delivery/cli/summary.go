package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/macrolens/diettracker/internal/domain"
	"github.com/macrolens/diettracker/internal/usecase"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGray).
			Width(cellWidth).
			Align(lipgloss.Right)

	labelCellStyle = lipgloss.NewStyle().
			Width(labelWidth)

	cellStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Align(lipgloss.Right)

	overCellStyle = cellStyle.
			Foreground(colorRed)

	doneStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)
)

const (
	labelWidth = 7
	cellWidth  = 10
)

var columns = []string{"Calories", "Protein", "Carbs", "Fat"}

func values(n domain.NutritionFacts) []float64 {
	return []float64{n.Calories, n.Protein, n.Carbs, n.Fat}
}

// RenderTotals draws a Goal/Eaten/Left table for one set of totals.
func RenderTotals(title string, totals domain.Totals) string {
	heading := titleStyle.Render(title)
	if totals.Complete() {
		heading += " " + doneStyle.Render("done")
	}

	header := []string{labelCellStyle.Render("")}
	for _, c := range columns {
		header = append(header, headerCellStyle.Render(c))
	}

	rows := []string{heading, lipgloss.JoinHorizontal(lipgloss.Top, header...)}
	for _, r := range []struct {
		label string
		facts domain.NutritionFacts
		left  bool
	}{
		{"Goal", totals.Planned, false},
		{"Eaten", totals.Consumed, false},
		{"Left", totals.Remaining, true},
	} {
		cells := []string{labelCellStyle.Render(r.label)}
		for _, v := range values(r.facts) {
			style := cellStyle
			if r.left && v < 0 {
				style = overCellStyle
			}
			cells = append(cells, style.Render(usecase.FormatNumber(v)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// RenderSnapshot draws every meal followed by the daily totals.
func RenderSnapshot(snapshot domain.Snapshot) string {
	blocks := []string{titleStyle.Render(snapshot.Date)}
	for _, meal := range snapshot.Meals {
		blocks = append(blocks, RenderTotals(mealTitle(meal.Category), meal.Totals))
	}
	blocks = append(blocks, RenderTotals("Daily", snapshot.Daily))
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func mealTitle(c domain.MealCategory) string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Printer writes a rendered snapshot to w on every publish.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

var _ domain.TotalsPublisher = (*Printer)(nil)

// NewPrinter creates a Printer over w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PublishTotals renders snapshot and writes it followed by a newline
func (p *Printer) PublishTotals(_ context.Context, snapshot domain.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, RenderSnapshot(snapshot))
}
