// Package player runs the AR players: a frame loop that polls the marker
// tracker, advances the active player and hands its scene to a renderer.
package player

import (
	"context"
	"time"

	"github.com/litescript/ls-orrery/internal/gesture"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/pick"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/weather"
)

// DefaultInterval targets 60 frames per second.
const DefaultInterval = time.Second / 60

// inputQueue bounds pending inputs between frames.
const inputQueue = 64

// Tracker reports which AR markers are in view.
type Tracker interface {
	Ready() bool
	Update()
	Visible(marker string) bool
}

// Renderer consumes one frame per tick.
type Renderer interface {
	Render(frame scene.Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(scene.Frame)

// Render implements Renderer.
func (f RendererFunc) Render(fr scene.Frame) { f(fr) }

// TouchKind distinguishes touch phases.
type TouchKind int

const (
	TouchStart TouchKind = iota
	TouchMove
	TouchEnd
)

func (k TouchKind) String() string {
	switch k {
	case TouchStart:
		return "start"
	case TouchMove:
		return "move"
	case TouchEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Player is one AR experience.
type Player interface {
	Name() string
	Update(dt float64, tr Tracker)
	Scene() *scene.Node
	HandleTouch(kind TouchKind, ev gesture.Event)
}

// Optional player capabilities, reached through Input.
type (
	LayerSelector interface {
		SelectLayer(l weather.Layer) string
	}
	Locator interface {
		SetLocation(lat, lon float64)
	}
	Viewer interface {
		SetView(cam pick.Camera, vp pick.Viewport)
	}
	Timed interface {
		Elapsed() float64
	}
)

// InputKind identifies an Input payload.
type InputKind int

const (
	InputTouch InputKind = iota
	InputLayer
	InputLocation
	InputView
	InputMarkers
)

// Input is an event delivered to the frame loop between frames.
type Input struct {
	Kind InputKind

	Touch TouchKind
	Event gesture.Event

	Layer weather.Layer

	Lat, Lon float64

	Camera   pick.Camera
	Viewport pick.Viewport

	Markers map[string]bool
	Poses   map[string]Pose
}

// TouchInput wraps a touch event.
func TouchInput(kind TouchKind, ev gesture.Event) Input {
	return Input{Kind: InputTouch, Touch: kind, Event: ev}
}

// LayerInput selects a weather layer.
func LayerInput(l weather.Layer) Input {
	return Input{Kind: InputLayer, Layer: l}
}

// LocationInput sets the viewer's geolocation.
func LocationInput(lat, lon float64) Input {
	return Input{Kind: InputLocation, Lat: lat, Lon: lon}
}

// ViewInput sets the picking camera and viewport.
func ViewInput(cam pick.Camera, vp pick.Viewport) Input {
	return Input{Kind: InputView, Camera: cam, Viewport: vp}
}

// MarkersInput reports marker visibility and poses from a remote tracker.
func MarkersInput(visible map[string]bool, poses map[string]Pose) Input {
	return Input{Kind: InputMarkers, Markers: visible, Poses: poses}
}

// Driver owns a player, a tracker and a renderer. All of its methods run on
// one goroutine; only Send may be called from elsewhere.
type Driver struct {
	player   Player
	tracker  Tracker
	renderer Renderer

	inputs chan Input
	seq    uint64

	now     func() time.Time
	log     *logging.Logger
	onFrame func(dt time.Duration)
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Driver) {
		d.log = l
	}
}

// WithClock overrides the monotonic clock used by Run.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		d.now = now
	}
}

// WithFrameHook is called after every rendered frame with its delta.
func WithFrameHook(fn func(dt time.Duration)) Option {
	return func(d *Driver) {
		d.onFrame = fn
	}
}

// NewDriver creates a driver.
func NewDriver(p Player, tr Tracker, r Renderer, opts ...Option) *Driver {
	d := &Driver{
		player:   p,
		tracker:  tr,
		renderer: r,
		inputs:   make(chan Input, inputQueue),
		now:      time.Now,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Player returns the driven player.
func (d *Driver) Player() Player { return d.player }

// Tracker returns the marker tracker.
func (d *Driver) Tracker() Tracker { return d.tracker }

// Send queues an input for the next Run iteration. It never blocks and
// reports false when the queue is full.
func (d *Driver) Send(in Input) bool {
	select {
	case d.inputs <- in:
		return true
	default:
		d.log.Warn("input queue full, dropping kind=%d", in.Kind)
		return false
	}
}

// Apply delivers an input immediately. Inputs the player cannot handle are
// ignored.
func (d *Driver) Apply(in Input) {
	switch in.Kind {
	case InputTouch:
		d.player.HandleTouch(in.Touch, in.Event)
	case InputLayer:
		if s, ok := d.player.(LayerSelector); ok {
			legend := s.SelectLayer(in.Layer)
			d.log.Debug("layer %q selected legend=%q", in.Layer, legend)
		}
	case InputLocation:
		if l, ok := d.player.(Locator); ok {
			l.SetLocation(in.Lat, in.Lon)
		}
	case InputView:
		if v, ok := d.player.(Viewer); ok && in.Camera != nil {
			v.SetView(in.Camera, in.Viewport)
		}
	case InputMarkers:
		if r, ok := d.tracker.(Reporter); ok {
			r.Report(in.Markers, in.Poses)
		}
	}
}

// Frame runs one update: tracker, then player, then renderer. It does
// nothing while the tracker is not ready and reports whether a frame was
// rendered.
func (d *Driver) Frame(dt float64) bool {
	if !d.tracker.Ready() {
		return false
	}
	d.tracker.Update()
	d.player.Update(dt, d.tracker)

	d.seq++
	fr := scene.Frame{
		Seq:    d.seq,
		Player: d.player.Name(),
		Dt:     dt,
		Root:   d.player.Scene(),
	}
	if t, ok := d.player.(Timed); ok {
		fr.Elapsed = t.Elapsed()
	}
	d.renderer.Render(fr)
	return true
}

// Run ticks Frame at interval until ctx is done, applying queued inputs
// between frames on the same goroutine.
func (d *Driver) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := d.now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-d.inputs:
			d.Apply(in)
		case <-ticker.C:
			now := d.now()
			dt := now.Sub(last)
			last = now
			if d.Frame(dt.Seconds()) && d.onFrame != nil {
				d.onFrame(dt)
			}
		}
	}
}
