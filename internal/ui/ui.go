// Package ui provides the terminal user interface using Bubble Tea. Each
// player runs on a simulated marker tracker and is drawn as text.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-orrery/internal/bodies"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/player"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/version"
	"github.com/litescript/ls-orrery/internal/weather"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewWeather ViewMode = iota
	ViewScale
	ViewOrrery
	ViewStatus
)

var viewTabs = []string{"[1] Weather", "[2] Scale", "[3] Orrery", "[4] Status"}

// SessionID names the terminal's frame loop in the state manager.
const SessionID = "tui"

// frameInterval is the terminal redraw rate.
const frameInterval = time.Second / 30

// maxFrameDelta caps the step after a stall so visible time does not jump.
const maxFrameDelta = 250 * time.Millisecond

// headerLines is the height of the title and tab rows.
const headerLines = 2

// Msg types for Bubble Tea
type (
	// FrameMsg advances the active player by one frame.
	FrameMsg time.Time

	// TickMsg refreshes the state snapshot.
	TickMsg time.Time

	// LayerResolvedMsg signals that a layer fetch finished either way.
	LayerResolvedMsg struct {
		Layer weather.Layer
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state    *state.Manager
	registry *weather.Registry
	log      *logging.Logger

	tracker *player.StateTracker
	drivers map[ViewMode]*player.Driver

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	frames    int
	last      time.Time

	// Sub-models
	weather WeatherViewModel
	scale   ScaleViewModel
	orrery  OrreryViewModel
	status  StatusViewModel

	snapshot state.Snapshot
}

// Option configures the root model.
type Option func(*Model)

// WithLogger sets the UI logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Model) {
		m.log = l
	}
}

// WithView selects the initial view.
func WithView(v ViewMode) Option {
	return func(m *Model) {
		if v >= ViewWeather && v <= ViewStatus {
			m.viewMode = v
		}
	}
}

// WithLocation pins a geolocation on the weather Earth.
func WithLocation(lat, lon float64) Option {
	return func(m *Model) {
		m.weather = m.weather.SetLocation(lat, lon)
	}
}

// New creates the root UI model. Layer tasks in reg are expected to be
// started by the caller.
func New(reg *weather.Registry, st *state.Manager, opts ...Option) Model {
	entries := bodies.All()

	markers := []string{player.EarthMarker}
	for _, e := range entries {
		markers = append(markers, e.Model.Marker)
	}
	tracker := player.NewSimTracker(markers...)
	for marker, pose := range MarkerPoses(entries) {
		tracker.SetPose(marker, pose)
	}

	m := Model{
		state:    st,
		registry: reg,
		log:      logging.Discard(),
		tracker:  tracker,
		drivers:  make(map[ViewMode]*player.Driver, 3),
		status:   NewStatusViewModel(),
	}

	discard := player.RendererFunc(func(scene.Frame) {})

	wp := player.NewWeather(weather.NewLayerSet(reg))
	m.drivers[ViewWeather] = player.NewDriver(wp, tracker, discard)
	m.weather = NewWeatherViewModel(wp, m.drivers[ViewWeather])

	sp := player.NewScale(entries)
	m.drivers[ViewScale] = player.NewDriver(sp, tracker, discard)
	m.scale = NewScaleViewModel(sp, m.drivers[ViewScale], entries)

	mp := player.NewModel(entries)
	m.drivers[ViewOrrery] = player.NewDriver(mp, tracker, discard)
	m.orrery = NewOrreryViewModel(mp, entries)

	for _, opt := range opts {
		opt(&m)
	}
	m.state.OpenSession(SessionID, m.playerName())
	m.state.ObserveMarkers(SessionID, tracker.Markers())
	m.snapshot = m.state.Snapshot()
	m.status = m.status.UpdateData(m.snapshot)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{frameCmd(), tickCmd()}
	for _, l := range weather.Layers {
		if task := m.registry.Task(l); task != nil {
			cmds = append(cmds, waitLayer(task))
		}
	}
	return tea.Batch(cmds...)
}

// ActiveView returns the current view.
func (m Model) ActiveView() ViewMode { return m.viewMode }

// Tracker returns the simulated marker tracker.
func (m Model) Tracker() *player.StateTracker { return m.tracker }

// playerName returns the name of the player behind the active view.
func (m Model) playerName() string {
	if d := m.drivers[m.viewMode]; d != nil {
		return d.Player().Name()
	}
	return "status"
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.state.CloseSession(SessionID)
			return m, tea.Quit

		case "1":
			m.switchView(ViewWeather)
		case "2":
			m.switchView(ViewScale)
		case "3":
			m.switchView(ViewOrrery)
		case "4":
			m.switchView(ViewStatus)
		case "tab":
			m.switchView((m.viewMode + 1) % 4)

		case "v":
			m.toggleMarker()

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Header takes 2 lines, footer 2
		contentHeight := msg.Height - headerLines - 2
		m.weather = m.weather.SetSize(msg.Width, contentHeight)
		m.scale = m.scale.SetSize(msg.Width, contentHeight)
		m.orrery = m.orrery.SetSize(msg.Width, contentHeight)
		m.status = m.status.SetSize(msg.Width, contentHeight)

	case tea.MouseMsg:
		// Canvases start below the header.
		msg.Y -= headerLines
		cmds = append(cmds, m.updateActiveView(msg))

	case FrameMsg:
		cmds = append(cmds, frameCmd())
		m.frame(time.Time(msg))

	case TickMsg:
		cmds = append(cmds, tickCmd())
		m.snapshot = m.state.Snapshot()
		m.status = m.status.UpdateData(m.snapshot)

	case LayerResolvedMsg:
		if task := m.registry.Task(msg.Layer); task != nil {
			m.statusMsg = fmt.Sprintf("%s layer %s", msg.Layer.Label(), taskPhase(task))
			m.log.Info("layer %s resolved: %s", msg.Layer, taskPhase(task))
		}
		m.snapshot = m.state.Snapshot()
		m.status = m.status.UpdateData(m.snapshot)

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// frame runs one update of the active player.
func (m *Model) frame(now time.Time) {
	var dt time.Duration
	if !m.last.IsZero() {
		dt = now.Sub(m.last)
	}
	m.last = now
	if dt < 0 {
		dt = 0
	}
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}

	d := m.drivers[m.viewMode]
	if d == nil {
		return
	}
	if d.Frame(dt.Seconds()) {
		m.frames++
		if dt > 0 {
			m.state.RecordFrame(SessionID, dt)
		}
	}
}

// switchView moves the terminal's frame loop to another player.
func (m *Model) switchView(v ViewMode) {
	if v == m.viewMode {
		return
	}
	prev := m.playerName()
	m.viewMode = v
	m.last = time.Time{}
	if name := m.playerName(); name != prev && m.drivers[v] != nil {
		m.state.CloseSession(SessionID)
		m.state.OpenSession(SessionID, name)
		m.state.ObserveMarkers(SessionID, m.tracker.Markers())
	}
}

// focusMarker is the marker the active view's visibility toggle acts on.
func (m Model) focusMarker() string {
	switch m.viewMode {
	case ViewWeather:
		return player.EarthMarker
	case ViewScale:
		return m.scale.FocusMarker()
	case ViewOrrery:
		return m.orrery.FocusMarker()
	default:
		return ""
	}
}

// toggleMarker simulates a marker entering or leaving the camera view.
func (m *Model) toggleMarker() {
	marker := m.focusMarker()
	if marker == "" {
		return
	}
	visible := m.tracker.Toggle(marker)
	m.state.ObserveMarkers(SessionID, m.tracker.Markers())
	if visible {
		m.statusMsg = "marker " + marker + " found"
	} else {
		m.statusMsg = "marker " + marker + " lost"
	}
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewWeather:
		m.weather, cmd = m.weather.Update(msg)
	case ViewScale:
		m.scale, cmd = m.scale.Update(msg)
	case ViewOrrery:
		m.orrery, cmd = m.orrery.Update(msg)
	case ViewStatus:
		m.status, cmd = m.status.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewWeather:
		content = m.weather.View()
	case ViewScale:
		content = m.scale.View()
	case ViewOrrery:
		content = m.orrery.View()
	case ViewStatus:
		content = m.status.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderTitle() + "\n" + m.renderTabs()
}

// renderTitle draws the title with a horizontal gradient.
func (m Model) renderTitle() string {
	title := fmt.Sprintf("  LS-ORRERY · AR Solar System · v%s", version.Version)
	runes := []rune(title)

	var b strings.Builder
	for i, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(i, len(runes)))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

// Gradient endpoints: blue to pink.
var (
	gradientFrom = colorful.Color{R: 59.0 / 255, G: 130.0 / 255, B: 246.0 / 255}
	gradientTo   = colorful.Color{R: 236.0 / 255, G: 72.0 / 255, B: 153.0 / 255}
)

// gradientColor returns a hex color for a position in the title gradient.
func gradientColor(col, width int) string {
	if width <= 1 {
		return gradientFrom.Hex()
	}
	t := float64(col) / float64(width-1)
	return gradientFrom.BlendLuv(gradientTo, t).Clamped().Hex()
}

func (m Model) renderTabs() string {
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range viewTabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[(m.frames/3)%len(spinnerFrames)]

	ready := 0
	for _, l := range m.snapshot.Layers {
		if l.Phase == state.LayerReady {
			ready++
		}
	}
	fps := 0.0
	for _, s := range m.snapshot.Sessions {
		if s.ID == SessionID {
			fps = s.FPS
		}
	}
	status := accentStyle.Render(spinner) +
		dimStyle.Render(fmt.Sprintf(" %s %.0f fps · layers %d/%d", m.playerName(), fps, ready, len(weather.Layers)))

	var help string
	switch m.viewMode {
	case ViewWeather:
		help = dimStyle.Render("drag/arrows: rotate | wheel/+-: zoom | l: layer | v: marker")
	case ViewScale:
		help = dimStyle.Render("j/k: focus | click/enter: panel | v: marker")
	case ViewOrrery:
		help = dimStyle.Render("j/k: focus | l: labels | v: marker")
	default:
		help = dimStyle.Render("↑↓: navigate | tab: switch view")
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitLayer reports when a layer task resolves.
func waitLayer(t *weather.Task) tea.Cmd {
	return func() tea.Msg {
		<-t.Done()
		return LayerResolvedMsg{Layer: t.Layer()}
	}
}
