package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/panel"
)

// panelBorder is the dashed, rounded frame of an info panel.
var panelBorder = lipgloss.Border{
	Top:         "╌",
	Bottom:      "╌",
	Left:        "╎",
	Right:       "╎",
	TopLeft:     "╭",
	TopRight:    "╮",
	BottomLeft:  "╰",
	BottomRight: "╯",
}

// Panel width limits in cells.
const (
	minPanelWidth = 16
	maxPanelWidth = 48
)

// panelWidth keeps the dataset's panel proportions within a column budget:
// the canvas width maps to maxPanelWidth cells.
func panelWidth(cfg panel.Config, budget int) int {
	w := maxPanelWidth
	if cfg.Width > 0 {
		w = int(cfg.Width / panel.CanvasSize * 2 * maxPanelWidth)
	}
	if w > budget {
		w = budget
	}
	if w > maxPanelWidth {
		w = maxPanelWidth
	}
	if w < minPanelWidth {
		w = minPanelWidth
	}
	return w
}

// RenderPanel draws a body's info panel in the dataset's colors with its
// text wrapped to width cells (frame excluded).
func RenderPanel(cfg panel.Config, width int) string {
	inner := width - 4 // border and padding
	if inner < 1 {
		inner = 1
	}

	titleStyle := lipgloss.NewStyle().Bold(true)
	textStyle := lipgloss.NewStyle()
	if cfg.TitleStyle != "" {
		titleStyle = titleStyle.Foreground(lipgloss.Color(cfg.TitleStyle))
	}
	if cfg.TextStyle != "" {
		textStyle = textStyle.Foreground(lipgloss.Color(cfg.TextStyle))
	}

	var lines []string
	for _, l := range panel.Wrap(cfg.Title, float64(inner), panel.Cells()) {
		lines = append(lines, titleStyle.Render(l))
	}
	lines = append(lines, "")
	for _, l := range panel.Wrap(strings.TrimRight(cfg.Text, "\n"), float64(inner), panel.Cells()) {
		lines = append(lines, textStyle.Render(l))
	}

	box := lipgloss.NewStyle().
		Border(panelBorder).
		Padding(0, 1).
		Width(inner + 2)
	if cfg.FrameStyle != "" {
		box = box.BorderForeground(lipgloss.Color(cfg.FrameStyle))
	}
	if cfg.BackgroundStyle != "" {
		box = box.Background(lipgloss.Color(cfg.BackgroundStyle))
	}
	return box.Render(strings.Join(lines, "\n"))
}
