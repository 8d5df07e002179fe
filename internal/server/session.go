package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"gonum.org/v1/gonum/num/quat"

	"github.com/litescript/ls-orrery/internal/bodies"
	"github.com/litescript/ls-orrery/internal/geom"
	"github.com/litescript/ls-orrery/internal/gesture"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/pick"
	"github.com/litescript/ls-orrery/internal/player"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/weather"
)

// ErrUnknownPlayer is returned for a player name the backend cannot run.
var ErrUnknownPlayer = errors.New("unknown player")

// ErrBadMessage wraps client messages that cannot become inputs.
var ErrBadMessage = errors.New("bad client message")

// clientMessage is everything a browser may send over a session.
type clientMessage struct {
	Type string `json:"type"`

	// touch
	Phase   string          `json:"phase,omitempty"`
	Touches []gesture.Touch `json:"touches,omitempty"`
	TimeMs  int64           `json:"t,omitempty"`

	// layer
	Layer string `json:"layer,omitempty"`

	// location
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`

	// view
	Viewport *pick.Viewport `json:"viewport,omitempty"`
	FovY     float64        `json:"fov,omitempty"`

	// markers
	Markers map[string]bool        `json:"markers,omitempty"`
	Poses   map[string]player.Pose `json:"poses,omitempty"`
}

var touchPhases = map[string]player.TouchKind{
	"start":  player.TouchStart,
	"move":   player.TouchMove,
	"end":    player.TouchEnd,
	"cancel": player.TouchEnd,
}

// input converts a message into a frame-loop input.
func (m clientMessage) input(received time.Time) (player.Input, error) {
	switch m.Type {
	case "touch":
		kind, ok := touchPhases[m.Phase]
		if !ok {
			return player.Input{}, fmt.Errorf("%w: touch phase %q", ErrBadMessage, m.Phase)
		}
		at := received
		if m.TimeMs > 0 {
			at = time.UnixMilli(m.TimeMs)
		}
		return player.TouchInput(kind, gesture.Event{Touches: m.Touches, At: at}), nil
	case "layer":
		// Unknown names select nothing, as an empty <select> value does.
		l, _ := weather.ParseLayer(m.Layer)
		return player.LayerInput(l), nil
	case "location":
		if m.Lat < -90 || m.Lat > 90 || m.Lon < -180 || m.Lon > 180 {
			return player.Input{}, fmt.Errorf("%w: location %v,%v", ErrBadMessage, m.Lat, m.Lon)
		}
		return player.LocationInput(m.Lat, m.Lon), nil
	case "view":
		if m.Viewport == nil || m.Viewport.Width <= 0 || m.Viewport.Height <= 0 {
			return player.Input{}, fmt.Errorf("%w: empty viewport", ErrBadMessage)
		}
		cam := player.DefaultCamera()
		cam.Aspect = m.Viewport.Width / m.Viewport.Height
		if m.FovY > 0 && m.FovY < 180 {
			cam.FovYDeg = m.FovY
		}
		return player.ViewInput(cam, *m.Viewport), nil
	case "markers":
		for k, p := range m.Poses {
			if p.Rotation == (quat.Number{}) {
				p.Rotation = geom.Identity
				m.Poses[k] = p
			}
		}
		return player.MarkersInput(m.Markers, m.Poses), nil
	default:
		return player.Input{}, fmt.Errorf("%w: type %q", ErrBadMessage, m.Type)
	}
}

// messageLabel bounds the metric label set to known message types.
func messageLabel(t string) string {
	switch t {
	case "touch", "layer", "location", "view", "markers":
		return t
	default:
		return "other"
	}
}

// newPlayer builds a fresh player for one session. Weather players share the
// server's layer registry.
func (s *Server) newPlayer(name string) (player.Player, error) {
	switch name {
	case "", "weather":
		return player.NewWeather(weather.NewLayerSet(s.registry)), nil
	case "scale":
		return player.NewScale(bodies.All()), nil
	case "model":
		return player.NewModel(bodies.All()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, name)
	}
}

// wsRenderer streams frames as JSON text messages. It runs on the driver
// goroutine, the connection's only writer.
type wsRenderer struct {
	conn    *websocket.Conn
	timeout time.Duration
	onError func(error)
}

func (r *wsRenderer) Render(f scene.Frame) {
	_ = r.conn.SetWriteDeadline(time.Now().Add(r.timeout))
	if err := r.conn.WriteJSON(f); err != nil {
		r.onError(err)
	}
}

// handleSession upgrades to a websocket and runs one player until the
// client goes away.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	p, err := s.newPlayer(r.URL.Query().Get("player"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.log.Debug("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	id := strconv.FormatUint(s.nextID.Add(1), 10)
	log := s.log.With("session " + id)

	ctx, cancel := context.WithCancelCause(r.Context())
	defer cancel(nil)

	s.state.OpenSession(id, p.Name())
	s.metrics.sessions.Inc()
	defer func() {
		s.state.CloseSession(id)
		s.metrics.sessions.Dec()
	}()
	log.Info("opened %s player from %s", p.Name(), clientIP(r, s.cfg.TrustProtoHeader))

	frames := s.metrics.frames.WithLabelValues(p.Name())
	renderer := &wsRenderer{conn: conn, timeout: s.cfg.WriteTimeout, onError: func(err error) { cancel(err) }}
	driver := player.NewDriver(p, player.NewRemoteTracker(), renderer,
		player.WithLogger(log),
		player.WithFrameHook(func(dt time.Duration) {
			frames.Inc()
			s.state.RecordFrame(id, dt)
		}),
	)

	go s.readLoop(ctx, cancel, conn, driver, id, log)
	go s.pingLoop(ctx, cancel, conn)

	_ = driver.Run(ctx, s.cfg.FrameInterval)
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		log.Info("closed: %v", cause)
	} else {
		log.Info("closed")
	}
}

// pingPeriod keeps pings inside the client's pong deadline.
func pingPeriod(pongWait time.Duration) time.Duration {
	return pongWait * 9 / 10
}

// pingLoop keeps idle clients alive. WriteControl may run alongside the
// driver's frame writes.
func (s *Server) pingLoop(ctx context.Context, cancel context.CancelCauseFunc, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod(s.cfg.PongWait))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				cancel(fmt.Errorf("ping: %w", err))
				return
			}
		}
	}
}

// readLoop decodes client messages and queues them for the driver.
func (s *Server) readLoop(ctx context.Context, cancel context.CancelCauseFunc, conn *websocket.Conn, d *player.Driver, id string, log *logging.Logger) {
	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("read: %v", err)
			}
			cancel(err)
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
		s.metrics.inputs.WithLabelValues(messageLabel(msg.Type)).Inc()

		in, err := msg.input(time.Now())
		if err != nil {
			log.Debug("ignoring message: %v", err)
			continue
		}
		if in.Kind == player.InputMarkers {
			s.state.ObserveMarkers(id, in.Markers)
		}
		if ctx.Err() != nil {
			return
		}
		d.Send(in)
	}
}
