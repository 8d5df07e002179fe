// Package state provides thread-safe state shared between the frame loops,
// the layer fetches and the status endpoints.
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/litescript/ls-orrery/internal/weather"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventLayerReady    EventType = "LAYER_READY"
	EventLayerFailed   EventType = "LAYER_FAILED"
	EventMarkerFound   EventType = "MARKER_FOUND"
	EventMarkerLost    EventType = "MARKER_LOST"
	EventSessionOpened EventType = "SESSION_OPENED"
	EventSessionClosed EventType = "SESSION_CLOSED"
)

// Event represents a state change worth showing to an operator.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Session   string    `json:"session,omitempty"`
	Layer     string    `json:"layer,omitempty"`
	Marker    string    `json:"marker,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// LayerPhase is the lifecycle of a layer fetch.
type LayerPhase string

const (
	LayerPending LayerPhase = "pending"
	LayerReady   LayerPhase = "ready"
	LayerFailed  LayerPhase = "failed"
)

// LayerStatus describes one weather layer.
type LayerStatus struct {
	Layer     weather.Layer `json:"layer"`
	Phase     LayerPhase    `json:"phase"`
	FetchedAt time.Time     `json:"fetched_at,omitempty"`
	Duration  time.Duration `json:"duration_ns,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Timestamp time.Time `json:"t"`
	Value     float64   `json:"v"`
}

// session tracks one frame loop.
type session struct {
	player  string
	opened  time.Time
	markers map[string]bool
	frames  []TimeSeries
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	layers map[weather.Layer]LayerStatus

	sessions       map[string]*session
	maxFrameSample int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	now func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents       int
	MaxFrameSamples int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents:       50,  // Last 50 events
		MaxFrameSamples: 120, // ~2s of frames at 60 Hz
	}
}

// NewManager creates a new state manager with every layer pending.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxFrames := cfg.MaxFrameSamples
	if maxFrames <= 0 {
		maxFrames = 120
	}
	m := &Manager{
		layers:         make(map[weather.Layer]LayerStatus, len(weather.Layers)),
		sessions:       make(map[string]*session),
		maxFrameSample: maxFrames,
		maxEvents:      maxEvents,
		events:         make([]Event, 0, maxEvents),
		now:            time.Now,
	}
	for _, l := range weather.Layers {
		m.layers[l] = LayerStatus{Layer: l, Phase: LayerPending}
	}
	return m
}

// RecordFetch stores the outcome of a layer fetch.
func (m *Manager) RecordFetch(res weather.FetchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := LayerStatus{
		Layer:     res.Layer,
		Phase:     LayerReady,
		FetchedAt: res.FetchedAt,
		Duration:  res.Duration,
	}
	ev := Event{Type: EventLayerReady, Timestamp: m.now(), Layer: string(res.Layer)}
	if res.Error != nil {
		st.Phase = LayerFailed
		st.Error = res.Error.Error()
		ev.Type = EventLayerFailed
		ev.Detail = st.Error
	}
	m.layers[res.Layer] = st
	m.addEvent(ev)
}

// OpenSession registers a frame loop.
func (m *Manager) OpenSession(id, player string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sessions[id] = &session{
		player:  player,
		opened:  now,
		markers: make(map[string]bool),
		frames:  make([]TimeSeries, 0, m.maxFrameSample),
	}
	m.addEvent(Event{Type: EventSessionOpened, Timestamp: now, Session: id, Detail: player})
}

// CloseSession forgets a frame loop.
func (m *Manager) CloseSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return
	}
	delete(m.sessions, id)
	m.addEvent(Event{Type: EventSessionClosed, Timestamp: m.now(), Session: id})
}

// ObserveMarkers compares marker visibility with the previous observation
// for the session and logs found/lost transitions.
func (m *Manager) ObserveMarkers(id string, visible map[string]bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return
	}

	now := m.now()
	names := make([]string, 0, len(visible))
	for name := range visible {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		was, is := s.markers[name], visible[name]
		switch {
		case is && !was:
			m.addEvent(Event{Type: EventMarkerFound, Timestamp: now, Session: id, Marker: name})
		case !is && was:
			m.addEvent(Event{Type: EventMarkerLost, Timestamp: now, Session: id, Marker: name})
		}
		s.markers[name] = is
	}
}

// RecordFrame adds a frame duration sample for the session.
func (m *Manager) RecordFrame(id string, dt time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return
	}
	s.frames = append(s.frames, TimeSeries{Timestamp: m.now(), Value: dt.Seconds()})
	if len(s.frames) > m.maxFrameSample {
		s.frames = s.frames[1:]
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// SessionStatus is the snapshot view of one frame loop.
type SessionStatus struct {
	ID      string          `json:"id"`
	Player  string          `json:"player"`
	Opened  time.Time       `json:"opened"`
	FPS     float64         `json:"fps"`
	Markers map[string]bool `json:"markers"`
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Layers   []LayerStatus   `json:"layers"`
	Sessions []SessionStatus `json:"sessions"`
	Events   []Event         `json:"events"`
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	layers := make([]LayerStatus, 0, len(weather.Layers))
	for _, l := range weather.Layers {
		layers = append(layers, m.layers[l])
	}

	sessions := make([]SessionStatus, 0, len(m.sessions))
	for id, s := range m.sessions {
		markers := make(map[string]bool, len(s.markers))
		for k, v := range s.markers {
			markers[k] = v
		}
		sessions = append(sessions, SessionStatus{
			ID:      id,
			Player:  s.player,
			Opened:  s.opened,
			FPS:     fps(s.frames),
			Markers: markers,
		})
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })

	return Snapshot{
		Layers:   layers,
		Sessions: sessions,
		Events:   m.getEventsOrdered(),
	}
}

// fps averages frame durations into a rate.
func fps(frames []TimeSeries) float64 {
	var total float64
	for _, f := range frames {
		total += f.Value
	}
	if total <= 0 {
		return 0
	}
	return float64(len(frames)) / total
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Layer returns the status of one layer.
func (m *Manager) Layer(l weather.Layer) (LayerStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.layers[l]
	return st, ok
}

// SessionCount returns the number of open frame loops.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
