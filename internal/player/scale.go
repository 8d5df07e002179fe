package player

import (
	"math"

	"github.com/litescript/ls-orrery/internal/bodies"
	"github.com/litescript/ls-orrery/internal/geom"
	"github.com/litescript/ls-orrery/internal/gesture"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/panel"
	"github.com/litescript/ls-orrery/internal/pick"
	"github.com/litescript/ls-orrery/internal/scene"
)

// Scale player layout.
const (
	BodyHeight   = 0.5
	BodyRadius   = 1.9
	PanelX       = 5.3
	SaturnPanelX = 6.3
	PanelY       = 1
	PanelScale   = 7
	RingInner    = 2.2
	RingOuter    = 3.0
	RingTexture  = "saturn_ring.png"

	// ScaleTimeFactor slows the scale player's clock.
	ScaleTimeFactor = 0.75
)

// Source resolution of the AR camera feed.
const (
	CameraWidth  = 1280
	CameraHeight = 960
)

// DefaultCamera approximates the AR camera until the client reports its own.
func DefaultCamera() pick.Perspective {
	return pick.Perspective{
		Forward: geom.Vec{Z: -1},
		Up:      geom.AxisY,
		FovYDeg: 45,
		Aspect:  float64(CameraWidth) / CameraHeight,
	}
}

// DefaultViewport matches the camera feed.
func DefaultViewport() pick.Viewport {
	return pick.Viewport{Width: CameraWidth, Height: CameraHeight}
}

// Scale puts one body on each marker, sized relative to the largest body in
// view. Tapping a body toggles its info panel.
type Scale struct {
	entries []bodies.Entry

	root    *scene.Node
	groups  []*scene.Node
	models  []*scene.Node
	sprites []*scene.Node

	visible []bool
	scales  []float64
	diam    []float64

	panels   *pick.Panels
	camera   pick.Camera
	viewport pick.Viewport
	gestures *gesture.Machine

	elapsed float64
}

// NewScale builds one marker group per dataset entry.
func NewScale(entries []bodies.Entry) *Scale {
	s := &Scale{
		entries:  entries,
		root:     scene.New("scale", scene.KindGroup),
		visible:  make([]bool, len(entries)),
		scales:   make([]float64, len(entries)),
		diam:     make([]float64, len(entries)),
		panels:   pick.NewPanels(),
		camera:   DefaultCamera(),
		viewport: DefaultViewport(),
		gestures: gesture.NewMachine(nil),
	}

	for i, e := range entries {
		group := scene.New(e.ID+"-marker", scene.KindGroup)
		group.Marker = e.Model.Marker
		group.Visible = false

		model := scene.New(e.ID, scene.KindSphere)
		model.Position = geom.Vec{Y: BodyHeight}
		model.Radius = BodyRadius
		model.Texture = e.Model.Texture
		if e.Ringed() {
			model.Add(saturnRing())
		}

		sprite := scene.New(e.ID+"-panel", scene.KindSprite)
		sprite.Position = geom.Vec{X: PanelX, Y: PanelY}
		if e.ID == bodies.Saturn {
			sprite.Position.X = SaturnPanelX
		}
		sprite.Scale = PanelScale
		sprite.Visible = false
		sprite.Panel = buildPanel(e.Textbox)

		group.Add(model, sprite)
		s.root.Add(group)

		s.groups = append(s.groups, group)
		s.models = append(s.models, model)
		s.sprites = append(s.sprites, sprite)
		s.scales[i] = 1
		s.diam[i] = e.Scientific.DiameterKm
	}
	return s
}

func saturnRing() *scene.Node {
	ring := scene.New("ring", scene.KindRing)
	ring.InnerRadius = RingInner
	ring.OuterRadius = RingOuter
	ring.Texture = RingTexture
	ring.Position = geom.Vec{Y: BodyHeight}
	ring.Rotation = geom.AxisAngle(geom.AxisX, math.Pi/2)
	return ring
}

func buildPanel(cfg panel.Config) *scene.Panel {
	l := panel.Compose(cfg, panel.Approx(cfg.TitleSize), panel.Approx(cfg.TextSize))
	return &scene.Panel{Config: cfg, Lines: l.Lines(), Outline: panel.Frame(cfg)}
}

// Name implements Player.
func (s *Scale) Name() string { return "scale" }

// Scene implements Player.
func (s *Scale) Scene() *scene.Node { return s.root }

// Elapsed implements Timed.
func (s *Scale) Elapsed() float64 { return s.elapsed }

// Panels returns the info-panel visibility set.
func (s *Scale) Panels() *pick.Panels { return s.panels }

// Scales returns the current relative scale of each body.
func (s *Scale) Scales() []float64 { return append([]float64(nil), s.scales...) }

// SetView implements Viewer.
func (s *Scale) SetView(cam pick.Camera, vp pick.Viewport) {
	s.camera = cam
	s.viewport = vp
}

// Update implements Player.
func (s *Scale) Update(dt float64, tr Tracker) {
	if dt > 0 {
		s.elapsed += ScaleTimeFactor * dt
	}

	poser, _ := tr.(PoseTracker)
	for i, e := range s.entries {
		s.visible[i] = tr.Visible(e.Model.Marker)
		s.groups[i].Visible = s.visible[i]
		if poser != nil {
			if p, ok := poser.Pose(e.Model.Marker); ok {
				s.groups[i].Position = p.Position
				s.groups[i].Rotation = p.Rotation
			}
		}
	}

	s.scales = orbit.RelativeScales(s.diam, s.visible, s.scales)
	for i, m := range s.models {
		m.Scale = s.scales[i]
	}
	s.syncPanels()
}

// HandleTouch implements Player. Taps pick the nearest visible body.
func (s *Scale) HandleTouch(kind TouchKind, ev gesture.Event) {
	tr := dispatch(s.gestures, kind, ev)
	if tr.Tap {
		s.Tap(tr.TapPoint.X, tr.TapPoint.Y)
	}
}

// Tap toggles the panel of the nearest visible body under a client point.
func (s *Scale) Tap(clientX, clientY float64) (pick.Hit, bool) {
	hit, ok := s.panels.Tap(s.camera, s.viewport, clientX, clientY, s.Candidates())
	if ok {
		s.syncPanels()
	}
	return hit, ok
}

// Candidates returns the pickable spheres in camera space.
func (s *Scale) Candidates() []pick.Candidate {
	cands := make([]pick.Candidate, len(s.entries))
	for i, e := range s.entries {
		g, m := s.groups[i], s.models[i]
		cands[i] = pick.Candidate{
			ID:      e.ID,
			Center:  addVec(g.Position, geom.Rotate(g.Rotation, m.Position)),
			Radius:  m.Radius * m.Scale,
			Visible: s.visible[i],
		}
	}
	return cands
}

func (s *Scale) syncPanels() {
	for i, e := range s.entries {
		s.sprites[i].Visible = s.panels.Visible(e.ID)
	}
}

func addVec(a, b geom.Vec) geom.Vec {
	return geom.Vec{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}
