package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/bodies"
	"github.com/litescript/ls-orrery/internal/geom"
	"github.com/litescript/ls-orrery/internal/pick"
	"github.com/litescript/ls-orrery/internal/player"
)

// Simulated marker layout for the scale player: one marker per body in a
// row in front of the camera.
const (
	markerSpacing = 4.5
	markerDepth   = -30.0
)

// MarkerPoses places each entry's marker so that its body sits on the
// camera's horizontal axis.
func MarkerPoses(entries []bodies.Entry) map[string]player.Pose {
	poses := make(map[string]player.Pose, len(entries))
	mid := float64(len(entries)-1) / 2
	for i, e := range entries {
		poses[e.Model.Marker] = player.Pose{
			Position: geom.Vec{X: (float64(i) - mid) * markerSpacing, Y: -player.BodyHeight, Z: markerDepth},
			Rotation: geom.Identity,
		}
	}
	return poses
}

// ScaleViewModel renders the scale player: every body side by side,
// sized relative to the largest visible one, with tap-to-toggle panels.
type ScaleViewModel struct {
	width  int
	height int

	player  *player.Scale
	driver  *player.Driver
	entries []bodies.Entry
	input   *touches

	focusIdx int
	camera   pick.Orthographic
	viewport pick.Viewport
}

// NewScaleViewModel wraps a scale player driven by d.
func NewScaleViewModel(s *player.Scale, d *player.Driver, entries []bodies.Entry) ScaleViewModel {
	return ScaleViewModel{player: s, driver: d, entries: entries, input: &touches{driver: d}}
}

// canvasRows is the drawing height; the rest holds the HUD.
func (m ScaleViewModel) canvasRows() int {
	rows := m.height - 4
	if rows < 4 {
		rows = 4
	}
	return rows
}

// SetSize updates the viewport and the pick camera to match it.
func (m ScaleViewModel) SetSize(width, height int) ScaleViewModel {
	m.width = width
	m.height = height

	cols, rows := m.width, m.canvasRows()
	m.viewport = pick.Viewport{Width: float64(cols * cellWidthPx), Height: float64(rows * cellHeightPx)}

	halfW := float64(len(m.entries)) * markerSpacing / 2
	m.camera = pick.Orthographic{
		Forward:    geom.Vec{Z: -1},
		Up:         geom.AxisY,
		HalfWidth:  halfW,
		HalfHeight: halfW * m.viewport.Height / m.viewport.Width,
	}
	m.driver.Apply(player.ViewInput(m.camera, m.viewport))
	return m
}

// FocusMarker returns the marker the visibility toggle acts on.
func (m ScaleViewModel) FocusMarker() string {
	if m.focusIdx < 0 || m.focusIdx >= len(m.entries) {
		return ""
	}
	return m.entries[m.focusIdx].Model.Marker
}

// Update handles input messages.
func (m ScaleViewModel) Update(msg tea.Msg) (ScaleViewModel, tea.Cmd) {
	now := time.Now()
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "k", "right":
			if len(m.entries) > 0 {
				m.focusIdx = (m.focusIdx + 1) % len(m.entries)
			}
		case "j", "left":
			if len(m.entries) > 0 {
				m.focusIdx = (m.focusIdx - 1 + len(m.entries)) % len(m.entries)
			}
		case "enter", " ":
			if x, y, ok := m.clientCenter(m.focusIdx); ok {
				m.input.tap(x, y, now)
			}
		}
	case tea.MouseMsg:
		m.input.mouse(msg, now)
	}
	return m, nil
}

// project maps a world point to client pixels.
func (m ScaleViewModel) project(p geom.Vec) (float64, float64) {
	if m.camera.HalfWidth == 0 || m.camera.HalfHeight == 0 {
		return 0, 0
	}
	ndcX := p.X / m.camera.HalfWidth
	ndcY := p.Y / m.camera.HalfHeight
	return (ndcX + 1) / 2 * m.viewport.Width, (1 - ndcY) / 2 * m.viewport.Height
}

// clientCenter returns the client pixel of body i's centre.
func (m ScaleViewModel) clientCenter(i int) (float64, float64, bool) {
	cands := m.player.Candidates()
	if i < 0 || i >= len(cands) {
		return 0, 0, false
	}
	x, y := m.project(cands[i].Center)
	return x, y, true
}

// View renders the bodies, the open panels and the HUD.
func (m ScaleViewModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for scale view"
	}
	parts := []string{m.buildCanvas().render()}
	if panels := m.renderPanels(); panels != "" {
		parts = append(parts, panels)
	}
	parts = append(parts, m.renderHUD())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m ScaleViewModel) buildCanvas() *canvas {
	c := newCanvas(m.width, m.canvasRows())
	cellsPerUnit := 0.0
	if m.camera.HalfWidth > 0 {
		cellsPerUnit = float64(m.width) / (2 * m.camera.HalfWidth)
	}

	for i, cand := range m.player.Candidates() {
		px, py := m.project(cand.Center)
		cx, cy := clientToCell(px, py)
		focused := i == m.focusIdx

		name := m.entries[i].Scientific.Name
		if !cand.Visible {
			c.text(cx-len([]rune(name))/2, cy, strings.Repeat("·", len([]rune(name))), "238")
			continue
		}

		r := cand.Radius * cellsPerUnit
		glyph, color := '●', "39"
		switch {
		case focused:
			glyph, color = '◉', "229"
		case m.entries[i].ID == bodies.Sun:
			color = "220"
		}
		c.disc(cx, cy, r, glyph, color)
		if m.entries[i].Ringed() {
			c.circle(cx, cy, r*player.RingOuter/player.BodyRadius, '·', "180")
		}

		labelY := cy + int(math.Ceil(r*0.5)) + 1
		labelColor := "249"
		if focused {
			labelColor = "229"
		}
		c.text(cx-len([]rune(name))/2, labelY, name, labelColor)
	}
	return c
}

func (m ScaleViewModel) renderPanels() string {
	shown := m.player.Panels().Shown()
	if len(shown) == 0 {
		return ""
	}
	var boxes []string
	used := 0
	for _, id := range shown {
		e, err := bodies.Get(id)
		if err != nil {
			continue
		}
		w := panelWidth(e.Textbox, m.width-used)
		if used+w > m.width {
			break
		}
		boxes = append(boxes, RenderPanel(e.Textbox, w))
		used += w + 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (m ScaleViewModel) renderHUD() string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	var b strings.Builder
	if m.focusIdx >= 0 && m.focusIdx < len(m.entries) {
		e := m.entries[m.focusIdx]
		scales := m.player.Scales()
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(e.Scientific.Name))
		b.WriteString(labelStyle.Render("  diameter "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.0f km", e.Scientific.DiameterKm)))
		if m.focusIdx < len(scales) {
			b.WriteString(labelStyle.Render("  scale "))
			b.WriteString(valueStyle.Render(fmt.Sprintf("%.4f", scales[m.focusIdx])))
		}
		b.WriteString(labelStyle.Render("  marker "))
		b.WriteString(valueStyle.Render(e.Model.Marker))
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("  panels open: %d  elapsed %.1fs", len(m.player.Panels().Shown()), m.player.Elapsed())))
	return b.String()
}
