package ui

import (
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/paulmach/orb"

	"github.com/litescript/ls-orrery/internal/geom"
	"github.com/litescript/ls-orrery/internal/player"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/weather"
)

// Colors of the terminal Earth.
var (
	oceanColor = colorful.Color{R: 0.07, G: 0.16, B: 0.30}
	gridColor  = colorful.Color{R: 0.12, G: 0.24, B: 0.40}
	pinColor   = "#EE0000"
)

// WeatherViewModel renders the remapped layer of the weather player as an
// equirectangular map, panned by the Earth's yaw and zoomed by its scale.
type WeatherViewModel struct {
	width  int
	height int

	player *player.Weather
	driver *player.Driver
	input  *touches

	located  bool
	lat, lon float64
}

// NewWeatherViewModel wraps a weather player driven by d.
func NewWeatherViewModel(w *player.Weather, d *player.Driver) WeatherViewModel {
	return WeatherViewModel{player: w, driver: d, input: &touches{driver: d}}
}

// SetSize updates the viewport size.
func (m WeatherViewModel) SetSize(width, height int) WeatherViewModel {
	m.width = width
	m.height = height
	return m
}

// SetLocation pins a geolocation on the Earth.
func (m WeatherViewModel) SetLocation(lat, lon float64) WeatherViewModel {
	m.located = true
	m.lat, m.lon = lat, lon
	m.driver.Apply(player.LocationInput(lat, lon))
	return m
}

// Update handles input messages.
func (m WeatherViewModel) Update(msg tea.Msg) (WeatherViewModel, tea.Cmd) {
	now := time.Now()
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "l":
			next := m.player.Layers().Next()
			m.driver.Apply(player.LayerInput(next))
		case "L":
			m.driver.Apply(player.LayerInput(weather.LayerNone))
		case "left":
			m.input.drag(-keyDragPx, 0, now)
		case "right":
			m.input.drag(keyDragPx, 0, now)
		case "up":
			m.input.drag(0, -keyDragPx, now)
		case "down":
			m.input.drag(0, keyDragPx, now)
		case "+", "=":
			m.input.pinch(wheelStep, now)
		case "-":
			m.input.pinch(1/wheelStep, now)
		}
	case tea.MouseMsg:
		m.input.mouse(msg, now)
	}
	return m, nil
}

// yaw returns the Earth's rotation about the vertical axis in radians.
func yaw(earth *scene.Node) float64 {
	v := geom.Rotate(earth.Rotation, geom.Vec{Z: 1})
	return math.Atan2(v.X, v.Z)
}

// zoom returns the Earth's scale relative to its resting size.
func zoom(earth *scene.Node) float64 {
	z := earth.Scale / player.EarthScale
	if z <= 0 || math.IsNaN(z) {
		return 1
	}
	return z
}

// View renders the map and HUD.
func (m WeatherViewModel) View() string {
	if m.width < 20 || m.height < 6 {
		return "Terminal too small for weather view"
	}
	root := m.player.Scene().Find("earth-marker")
	visible := root != nil && root.Visible
	return lipgloss.JoinVertical(lipgloss.Left, m.buildCanvas(visible).render(), m.renderHUD())
}

// layerImage returns the texture of the selected layer, blank until its
// fetch resolves.
func (m WeatherViewModel) layerImage() *image.RGBA {
	sel := m.player.Layers().Selected()
	if sel == weather.LayerNone {
		return nil
	}
	task := m.player.Layers().Registry().Task(sel)
	if task == nil {
		return nil
	}
	return task.Image()
}

// buildCanvas samples the layer over the base map with two pixels per cell.
func (m WeatherViewModel) buildCanvas(visible bool) *canvas {
	rows := m.height - 3
	if rows < 3 {
		rows = 3
	}
	c := newCanvas(m.width, rows)
	if !visible {
		msg := "Earth marker not in view · [v] show"
		c.text((m.width-len([]rune(msg)))/2, rows/2, msg, "240")
		return c
	}

	earth := m.player.Earth()
	z := zoom(earth)
	shift := yaw(earth) / (2 * math.Pi)
	img := m.layerImage()

	pinU, pinV, pinOK := weather.DefaultGeometry().Fraction(orb.Point{m.lon, m.lat})

	pxRows := rows * 2
	for y := 0; y < rows; y++ {
		for x := 0; x < m.width; x++ {
			top := m.sample(img, x, 2*y, pxRows, z, shift)
			bottom := m.sample(img, x, 2*y+1, pxRows, z, shift)
			c.halfBlock(x, y, top, bottom)
		}
	}

	if m.located && pinOK {
		u := 0.5 + (wrapUnit(pinU-shift)-0.5)*z
		v := 0.5 + (pinV-0.5)*z
		if u >= 0 && u < 1 && v >= 0 && v < 1 {
			px := int(u * float64(m.width))
			py := int(v * float64(rows))
			c.set(px, py, '●', pinColor)
		}
	}
	return c
}

// sample returns the colour at screen pixel (x, py). u runs across the map
// and wraps at the seam; beyond the poles is black.
func (m WeatherViewModel) sample(img *image.RGBA, x, py, pxRows int, z, shift float64) colorful.Color {
	u := (float64(x)+0.5)/float64(m.width) - 0.5
	v := (float64(py)+0.5)/float64(pxRows) - 0.5
	u = wrapUnit(0.5 + u/z + shift)
	v = 0.5 + v/z
	if v < 0 || v >= 1 {
		return colorful.Color{}
	}

	base := oceanColor
	// Graticule every 30 degrees.
	lonDeg, latDeg := u*360-180, 90-v*180
	if nearMultiple(lonDeg, 30, 360/float64(m.width)/z) || nearMultiple(latDeg, 30, 180/float64(pxRows)/z) {
		base = gridColor
	}
	if img == nil {
		return base
	}

	b := img.Bounds()
	sx := b.Min.X + int(u*float64(b.Dx()))
	sy := b.Min.Y + int(v*float64(b.Dy()))
	if sx >= b.Max.X {
		sx = b.Max.X - 1
	}
	if sy >= b.Max.Y {
		sy = b.Max.Y - 1
	}
	i := img.PixOffset(sx, sy)
	p := img.Pix[i : i+4 : i+4]
	alpha := float64(p[3]) / 255
	if alpha == 0 {
		return base
	}
	over := colorful.Color{R: float64(p[0]) / 255, G: float64(p[1]) / 255, B: float64(p[2]) / 255}
	return base.BlendRgb(over, alpha)
}

func wrapUnit(u float64) float64 {
	u -= math.Floor(u)
	return u
}

func nearMultiple(v, step, tol float64) bool {
	r := math.Mod(math.Abs(v), step)
	return r < tol/2 || step-r < tol/2
}

func (m WeatherViewModel) renderHUD() string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	earth := m.player.Earth()
	sel := m.player.Layers().Selected()

	phase := "-"
	if sel != weather.LayerNone {
		if task := m.player.Layers().Registry().Task(sel); task != nil {
			phase = taskPhase(task)
		}
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("  Layer "))
	b.WriteString(accentStyle.Render(sel.Label()))
	b.WriteString(labelStyle.Render(" (" + phase + ")"))
	if legend := m.player.Layers().Legend(); legend != "" {
		b.WriteString(labelStyle.Render("  legend "))
		b.WriteString(valueStyle.Render(legend))
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("  Yaw "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%6.1f°", yaw(earth)*180/math.Pi)))
	b.WriteString(labelStyle.Render("  Zoom "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2fx", zoom(earth))))
	b.WriteString(labelStyle.Render("  Gesture "))
	b.WriteString(valueStyle.Render(m.player.Gesture().String()))
	if m.located {
		b.WriteString(labelStyle.Render("  Pin "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.2f, %.2f", m.lat, m.lon)))
	}
	return b.String()
}

// taskPhase names the fetch state of a layer task.
func taskPhase(t *weather.Task) string {
	switch {
	case t.Ready():
		return "ready"
	case t.Resolved():
		return "failed"
	default:
		return "loading"
	}
}
