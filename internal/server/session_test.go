package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/litescript/ls-orrery/internal/geom"
	"github.com/litescript/ls-orrery/internal/gesture"
	"github.com/litescript/ls-orrery/internal/pick"
	"github.com/litescript/ls-orrery/internal/player"
	"github.com/litescript/ls-orrery/internal/weather"
)

func TestMessageInput(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		msg     clientMessage
		want    player.InputKind
		wantErr bool
	}{
		{"touch start", clientMessage{Type: "touch", Phase: "start", Touches: []gesture.Touch{{ID: 1, X: 3, Y: 4}}}, player.InputTouch, false},
		{"touch cancel", clientMessage{Type: "touch", Phase: "cancel"}, player.InputTouch, false},
		{"touch bad phase", clientMessage{Type: "touch", Phase: "hover"}, 0, true},
		{"layer", clientMessage{Type: "layer", Layer: "wind"}, player.InputLayer, false},
		{"location", clientMessage{Type: "location", Lat: 45, Lon: 9}, player.InputLocation, false},
		{"location out of range", clientMessage{Type: "location", Lat: 91}, 0, true},
		{"view", clientMessage{Type: "view", Viewport: &pick.Viewport{Width: 640, Height: 480}}, player.InputView, false},
		{"view empty", clientMessage{Type: "view"}, 0, true},
		{"markers", clientMessage{Type: "markers", Markers: map[string]bool{"earth.patt": true}}, player.InputMarkers, false},
		{"unknown", clientMessage{Type: "reset"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := tt.msg.input(now)
			if tt.wantErr {
				if !errors.Is(err, ErrBadMessage) {
					t.Fatalf("err = %v, want ErrBadMessage", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if in.Kind != tt.want {
				t.Errorf("kind = %v, want %v", in.Kind, tt.want)
			}
		})
	}
}

func TestMessageInputDetails(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	in, _ := clientMessage{Type: "touch", Phase: "move"}.input(now)
	if !in.Event.At.Equal(now) {
		t.Errorf("missing timestamp should use receipt time, got %v", in.Event.At)
	}
	in, _ = clientMessage{Type: "touch", Phase: "move", TimeMs: 1000}.input(now)
	if !in.Event.At.Equal(time.UnixMilli(1000)) {
		t.Errorf("At = %v", in.Event.At)
	}

	in, _ = clientMessage{Type: "layer", Layer: "snow"}.input(now)
	if in.Layer != "" {
		t.Errorf("unknown layer = %q, want none", in.Layer)
	}
	in, _ = clientMessage{Type: "layer", Layer: "pressure"}.input(now)
	if in.Layer != weather.LayerPressure {
		t.Errorf("layer = %q", in.Layer)
	}

	in, _ = clientMessage{Type: "view", Viewport: &pick.Viewport{Width: 800, Height: 400}, FovY: 60}.input(now)
	cam, ok := in.Camera.(pick.Perspective)
	if !ok {
		t.Fatalf("camera = %T", in.Camera)
	}
	if cam.Aspect != 2 || cam.FovYDeg != 60 {
		t.Errorf("camera = %+v", cam)
	}

	in, _ = clientMessage{Type: "markers", Poses: map[string]player.Pose{"sun.patt": {}}}.input(now)
	if in.Poses["sun.patt"].Rotation != geom.Identity {
		t.Errorf("zero rotation should become identity, got %v", in.Poses["sun.patt"].Rotation)
	}
}

func TestMessageLabel(t *testing.T) {
	if messageLabel("touch") != "touch" || messageLabel("../../etc") != "other" {
		t.Error("unexpected labels")
	}
}

func TestSessionUnknownPlayer(t *testing.T) {
	s := New(testConfig(t), newGateSource())
	rec := get(t, s.Handler(), "/api/session?player=planetarium")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", rec.Code)
	}
}

func TestSessionStreamsFrames(t *testing.T) {
	s := New(testConfig(t), newGateSource())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/session?player=model"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{
		"type":    "markers",
		"markers": map[string]bool{player.SunMarker: true},
	}); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame struct {
		Seq    uint64 `json:"seq"`
		Player string `json:"player"`
		Root   struct {
			Name    string `json:"name"`
			Visible bool   `json:"visible"`
		} `json:"root"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Player != "model" {
		t.Errorf("player = %q", frame.Player)
	}

	snap := s.State().Snapshot()
	if len(snap.Sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(snap.Sessions))
	}
	if sess := snap.Sessions[0]; sess.Player != "model" || !sess.Markers[player.SunMarker] {
		t.Errorf("session = %+v", sess)
	}
}

func TestSessionSurvivesIdleClient(t *testing.T) {
	cfg := testConfig(t)
	cfg.PongWait = 300 * time.Millisecond
	s := New(cfg, newGateSource())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/session?player=model"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var pings atomic.Int32
	conn.SetPingHandler(func(data string) error {
		pings.Add(1)
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	if err := conn.WriteJSON(map[string]any{
		"type":    "markers",
		"markers": map[string]bool{player.SunMarker: true},
	}); err != nil {
		t.Fatal(err)
	}

	// Only read from here on, for well past the pong deadline.
	idle := time.Now().Add(3 * cfg.PongWait)
	frames := 0
	for time.Now().Before(idle) {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("session dropped after %d frames: %v", frames, err)
		}
		frames++
	}

	if pings.Load() == 0 {
		t.Error("expected keepalive pings")
	}
	if n := s.State().SessionCount(); n != 1 {
		t.Errorf("sessions = %d, want 1", n)
	}
}

func TestPingPeriod(t *testing.T) {
	if got := pingPeriod(60 * time.Second); got != 54*time.Second {
		t.Errorf("pingPeriod = %v, want 54s", got)
	}
}
