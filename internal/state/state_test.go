package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-orrery/internal/weather"
)

func TestNewManager(t *testing.T) {
	m := NewManager(DefaultConfig())

	snap := m.Snapshot()
	if len(snap.Layers) != len(weather.Layers) {
		t.Fatalf("Layers = %d, want %d", len(snap.Layers), len(weather.Layers))
	}
	for _, l := range snap.Layers {
		if l.Phase != LayerPending {
			t.Errorf("%s phase = %q, want pending", l.Layer, l.Phase)
		}
	}
	if m.SessionCount() != 0 {
		t.Error("SessionCount should be 0 initially")
	}
}

func TestManager_RecordFetch(t *testing.T) {
	m := NewManager(DefaultConfig())
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	m.RecordFetch(weather.FetchResult{Layer: weather.LayerClouds, FetchedAt: at, Duration: 80 * time.Millisecond})
	m.RecordFetch(weather.FetchResult{Layer: weather.LayerWind, FetchedAt: at, Error: errors.New("boom")})

	clouds, _ := m.Layer(weather.LayerClouds)
	if clouds.Phase != LayerReady || clouds.Duration != 80*time.Millisecond {
		t.Errorf("clouds = %+v", clouds)
	}
	wind, _ := m.Layer(weather.LayerWind)
	if wind.Phase != LayerFailed || wind.Error != "boom" {
		t.Errorf("wind = %+v", wind)
	}

	events := m.RecentEvents(10)
	if len(events) != 2 || events[0].Type != EventLayerReady || events[1].Type != EventLayerFailed {
		t.Fatalf("events = %+v", events)
	}
	if events[1].Detail != "boom" {
		t.Errorf("detail = %q", events[1].Detail)
	}
}

func TestManager_MarkerEvents(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.OpenSession("s1", "model")

	m.ObserveMarkers("s1", map[string]bool{"sun.patt": false})
	m.ObserveMarkers("s1", map[string]bool{"sun.patt": true})
	m.ObserveMarkers("s1", map[string]bool{"sun.patt": true})
	m.ObserveMarkers("s1", map[string]bool{"sun.patt": false})

	var types []EventType
	for _, e := range m.RecentEvents(10) {
		types = append(types, e.Type)
	}
	want := []EventType{EventSessionOpened, EventMarkerFound, EventMarkerLost}
	if fmt.Sprint(types) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", types, want)
	}

	// Unknown sessions are ignored.
	m.ObserveMarkers("nope", map[string]bool{"sun.patt": true})
	if n := len(m.RecentEvents(10)); n != 3 {
		t.Errorf("events after unknown session = %d", n)
	}
}

func TestManager_Sessions(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.OpenSession("b", "scale")
	m.OpenSession("a", "weather")

	for i := 0; i < 10; i++ {
		m.RecordFrame("a", 20*time.Millisecond)
	}

	snap := m.Snapshot()
	if len(snap.Sessions) != 2 || snap.Sessions[0].ID != "a" {
		t.Fatalf("sessions = %+v", snap.Sessions)
	}
	if fps := snap.Sessions[0].FPS; fps < 49.99 || fps > 50.01 {
		t.Errorf("FPS = %v, want 50", fps)
	}
	if snap.Sessions[1].FPS != 0 {
		t.Errorf("idle session FPS = %v", snap.Sessions[1].FPS)
	}

	m.CloseSession("a")
	m.CloseSession("a")
	if m.SessionCount() != 1 {
		t.Errorf("SessionCount = %d, want 1", m.SessionCount())
	}
	last := m.RecentEvents(1)[0]
	if last.Type != EventSessionClosed || last.Session != "a" {
		t.Errorf("last event = %+v", last)
	}
}

func TestManager_FrameSamplesBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFrameSamples = 3
	m := NewManager(cfg)
	m.OpenSession("s", "model")

	for i := 1; i <= 5; i++ {
		m.RecordFrame("s", time.Duration(i)*time.Second)
	}

	m.mu.RLock()
	frames := m.sessions["s"].frames
	m.mu.RUnlock()
	if len(frames) != 3 || frames[0].Value != 3 {
		t.Errorf("frames = %+v", frames)
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 3
	m := NewManager(cfg)

	for i := 0; i < 5; i++ {
		m.OpenSession(fmt.Sprintf("s%d", i), "model")
	}

	events := m.RecentEvents(10)
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
	for i, want := range []string{"s2", "s3", "s4"} {
		if events[i].Session != want {
			t.Errorf("events[%d].Session = %q, want %q", i, events[i].Session, want)
		}
	}
	if got := m.RecentEvents(1); len(got) != 1 || got[0].Session != "s4" {
		t.Errorf("RecentEvents(1) = %+v", got)
	}
}

func TestManager_Snapshot_IsCopy(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.OpenSession("s", "weather")
	m.ObserveMarkers("s", map[string]bool{"earth.patt": true})

	snap := m.Snapshot()
	snap.Sessions[0].Markers["earth.patt"] = false
	snap.Layers[0].Phase = LayerFailed

	snap2 := m.Snapshot()
	if !snap2.Sessions[0].Markers["earth.patt"] {
		t.Error("Snapshot modification affected session markers")
	}
	if snap2.Layers[0].Phase != LayerPending {
		t.Error("Snapshot modification affected layers")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())

	var wg sync.WaitGroup
	iterations := 100

	// Writer goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.OpenSession("w", "model")
		for i := 0; i < iterations; i++ {
			m.RecordFrame("w", time.Millisecond)
			m.ObserveMarkers("w", map[string]bool{"sun.patt": i%2 == 0})
			m.RecordFetch(weather.FetchResult{Layer: weather.Layers[i%len(weather.Layers)]})
		}
	}()

	// Reader goroutines
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_ = m.Snapshot()
				_ = m.SessionCount()
				_, _ = m.Layer(weather.LayerClouds)
				_ = m.RecentEvents(5)
			}
		}()
	}

	wg.Wait()
}

type fixedSource struct{ err error }

func (s fixedSource) Fetch(ctx context.Context, l weather.Layer) weather.FetchResult {
	return weather.FetchResult{Layer: l, Error: s.err}
}

func TestManager_Source(t *testing.T) {
	m := NewManager(DefaultConfig())

	res := m.Source(fixedSource{err: errors.New("offline")}).Fetch(context.Background(), weather.LayerPressure)
	if res.Error == nil {
		t.Fatal("error should pass through")
	}
	st, _ := m.Layer(weather.LayerPressure)
	if st.Phase != LayerFailed || st.Error != "offline" {
		t.Errorf("pressure = %+v", st)
	}

	m.Source(fixedSource{}).Fetch(context.Background(), weather.LayerTemperature)
	if st, _ := m.Layer(weather.LayerTemperature); st.Phase != LayerReady {
		t.Errorf("temperature phase = %q, want ready", st.Phase)
	}
}
