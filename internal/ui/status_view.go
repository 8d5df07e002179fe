package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/state"
)

// Styles for the status view
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	readyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// StatusViewModel lists layer fetches, frame loops and recent events.
type StatusViewModel struct {
	width    int
	height   int
	cursor   int
	snapshot state.Snapshot
}

// NewStatusViewModel creates a new status view.
func NewStatusViewModel() StatusViewModel {
	return StatusViewModel{}
}

// SetSize updates the viewport size.
func (m StatusViewModel) SetSize(width, height int) StatusViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m StatusViewModel) UpdateData(snapshot state.Snapshot) StatusViewModel {
	m.snapshot = snapshot
	if m.cursor >= len(snapshot.Layers) && len(snapshot.Layers) > 0 {
		m.cursor = len(snapshot.Layers) - 1
	}
	return m
}

// Update handles messages.
func (m StatusViewModel) Update(msg tea.Msg) (StatusViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		n := len(m.snapshot.Layers)
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < n-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if n > 0 {
				m.cursor = n - 1
			}
		}
	}
	return m, nil
}

// View renders the status tables.
func (m StatusViewModel) View() string {
	var b strings.Builder
	b.WriteString(m.renderLayers())
	b.WriteString("\n")
	b.WriteString(m.renderSessions())
	b.WriteString("\n")
	b.WriteString(m.renderEvents())
	return b.String()
}

func (m StatusViewModel) renderLayers() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Weather Layers"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-20s %-8s %-10s %-8s %s", "Layer", "Phase", "Fetched", "Took", "Error")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for i, l := range m.snapshot.Layers {
		fetched, took := "-", "-"
		if !l.FetchedAt.IsZero() {
			fetched = l.FetchedAt.Local().Format("15:04:05")
		}
		if l.Duration > 0 {
			took = l.Duration.Round(time.Millisecond).String()
		}
		row := fmt.Sprintf("%-20s %-8s %-10s %-8s %s",
			truncate(string(l.Layer), 20),
			m.renderPhase(l.Phase),
			fetched,
			truncate(took, 8),
			truncate(l.Error, 40),
		)
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderPhase pads before styling so the column stays aligned.
func (m StatusViewModel) renderPhase(p state.LayerPhase) string {
	s := fmt.Sprintf("%-8s", p)
	switch p {
	case state.LayerReady:
		return readyStyle.Render(s)
	case state.LayerFailed:
		return errorStyle.Render(s)
	default:
		return pendingStyle.Render(s)
	}
}

func (m StatusViewModel) renderSessions() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Frame Loops"))
	b.WriteString("\n")
	if len(m.snapshot.Sessions) == 0 {
		b.WriteString("  No active frame loops\n")
		return b.String()
	}
	for _, s := range m.snapshot.Sessions {
		markers := make([]string, 0, len(s.Markers))
		for k, v := range s.Markers {
			if v {
				markers = append(markers, k)
			}
		}
		sort.Strings(markers)
		b.WriteString(rowStyle.Render(fmt.Sprintf("  %-10s %-8s %5.1f fps  markers: %s",
			truncate(s.ID, 10), s.Player, s.FPS, strings.Join(markers, ", "))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m StatusViewModel) renderEvents() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent Events"))
	b.WriteString("\n")

	maxRows := m.height - len(m.snapshot.Layers) - len(m.snapshot.Sessions) - 8
	if maxRows < 3 {
		maxRows = 3
	}
	events := m.snapshot.Events
	if len(events) > maxRows {
		events = events[len(events)-maxRows:]
	}
	if len(events) == 0 {
		b.WriteString("  No events yet\n")
	}
	for _, e := range events {
		subject := e.Layer
		if e.Marker != "" {
			subject = e.Marker
		}
		line := fmt.Sprintf("  %s %-15s %-12s %s",
			e.Timestamp.Local().Format("15:04:05"), e.Type, truncate(subject, 12), e.Detail)
		if e.Type == state.EventLayerFailed {
			b.WriteString(errorStyle.Render(line))
		} else {
			b.WriteString(pendingStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
