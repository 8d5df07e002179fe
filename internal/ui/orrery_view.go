package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/bodies"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/player"
)

// OrreryViewModel renders a top-down view of the model player.
type OrreryViewModel struct {
	width  int
	height int

	player  *player.Model
	entries []bodies.Entry

	focusIdx  int
	labelMode LabelMode
}

// LabelMode controls which bodies are labelled.
type LabelMode int

const (
	LabelFocused LabelMode = iota
	LabelAll
	LabelNone
)

// NewOrreryViewModel wraps a model player.
func NewOrreryViewModel(p *player.Model, entries []bodies.Entry) OrreryViewModel {
	return OrreryViewModel{player: p, entries: entries}
}

// SetSize updates the viewport size.
func (m OrreryViewModel) SetSize(width, height int) OrreryViewModel {
	m.width = width
	m.height = height
	return m
}

// FocusMarker returns the marker the visibility toggle acts on; the whole
// system rides on the Sun's marker.
func (m OrreryViewModel) FocusMarker() string { return player.SunMarker }

// Update handles input messages.
func (m OrreryViewModel) Update(msg tea.Msg) (OrreryViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		n := len(m.entries)
		switch msg.String() {
		case "k", "]", "right":
			if n > 0 {
				m.focusIdx = (m.focusIdx + 1) % n
			}
		case "j", "[", "left":
			if n > 0 {
				m.focusIdx = (m.focusIdx - 1 + n) % n
			}
		case "l":
			m.labelMode = (m.labelMode + 1) % 3
		}
	}
	return m, nil
}

// View renders the orbits, bodies and HUD.
func (m OrreryViewModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for orrery view"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.buildCanvas().render(), m.renderHUD())
}

// displayScale returns cells per world unit so the outer ring fits.
func (m OrreryViewModel) displayScale(rows int) float64 {
	outer := orbit.RingRadius(orbit.RingCount-1) + orbit.RingWidth
	fit := math.Min(float64(m.width)/2, float64(rows)) * 0.9
	return fit / outer
}

func (m OrreryViewModel) buildCanvas() *canvas {
	rows := m.height - 4
	if rows < 5 {
		rows = 5
	}
	c := newCanvas(m.width, rows)
	if !m.player.Scene().Visible {
		msg := "Sun marker not in view · [v] show"
		c.text((m.width-len([]rune(msg)))/2, rows/2, msg, "240")
		return c
	}

	cx, cy := m.width/2, rows/2
	scale := m.displayScale(rows)

	for i := 0; i < orbit.RingCount; i++ {
		c.circle(cx, cy, orbit.RingRadius(i)*scale, '·', "240")
	}

	// Bodies last so they draw over the rings; top-down looks along -Y with
	// +Z towards the viewer's bottom edge.
	for i, e := range m.entries {
		n := m.player.Node(e.ID)
		if n == nil {
			continue
		}
		x := cx + int(math.Round(n.Position.X*scale))
		y := cy + int(math.Round(n.Position.Z*scale*0.5))
		focused := i == m.focusIdx

		glyph, color := '•', "39"
		switch {
		case e.ID == bodies.Sun:
			glyph, color = '☉', "220"
		case e.Ringed():
			glyph, color = '○', "208"
		}
		if focused && e.ID != bodies.Sun {
			glyph, color = '◉', "229"
		}
		c.set(x, y, glyph, color)

		if m.labelMode == LabelAll || (m.labelMode == LabelFocused && focused) {
			c.text(x+2, y, e.Scientific.Name, "249")
		}
	}
	return c
}

func (m OrreryViewModel) renderHUD() string {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	var b strings.Builder
	elapsed := m.player.Elapsed()
	b.WriteString(labelStyle.Render("  Visible time "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2f Earth years", elapsed)))

	if m.focusIdx >= 0 && m.focusIdx < len(m.entries) {
		e := m.entries[m.focusIdx]
		sci := e.Body()
		xf := orbit.ComputeTransform(sci, elapsed)
		b.WriteString("\n  ")
		b.WriteString(headerStyle.Render(e.Scientific.Name))
		b.WriteString(labelStyle.Render("  orbit "))
		if sci.Orbits() {
			b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f d", sci.OrbitalPeriodDays)))
		} else {
			b.WriteString(valueStyle.Render("-"))
		}
		b.WriteString(labelStyle.Render("  day "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f h", sci.RotationPeriodHours)))
		if sci.Retrograde() {
			b.WriteString(labelStyle.Render(" retrograde"))
		}
		b.WriteString(labelStyle.Render("  angle "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f°", math.Mod(xf.OrbitalAngle*180/math.Pi, 360))))
	}
	return b.String()
}
