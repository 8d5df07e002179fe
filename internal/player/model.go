package player

import (
	"fmt"
	"math"

	"github.com/litescript/ls-orrery/internal/bodies"
	"github.com/litescript/ls-orrery/internal/geom"
	"github.com/litescript/ls-orrery/internal/gesture"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/scene"
)

// Model player layout.
const (
	SunMarker   = "sun.patt"
	SunScale    = 0.2
	PlanetScale = 0.05
	OrbitColor  = "#00ff00"
)

// Model shows the whole system on the Sun marker. Bodies spin and orbit at
// Earth-relative rates over the time the marker has been in view.
type Model struct {
	entries []bodies.Entry
	radii   []float64

	root  *scene.Node
	rings []*scene.Node
	nodes []*scene.Node

	clock orbit.Clock
}

// NewModel lays out the rings and bodies.
func NewModel(entries []bodies.Entry) *Model {
	m := &Model{
		entries: entries,
		radii:   orbit.OrbitRadii(len(entries)),
		root:    scene.New("sun-marker", scene.KindGroup),
	}
	m.root.Marker = SunMarker
	m.root.Visible = false

	for i := 0; i < orbit.RingCount; i++ {
		ring := scene.New(fmt.Sprintf("orbit-%d", i), scene.KindRing)
		ring.InnerRadius = orbit.RingRadius(i)
		ring.OuterRadius = orbit.RingRadius(i) + orbit.RingWidth
		ring.Color = OrbitColor
		ring.Position = geom.Vec{Y: BodyHeight}
		ring.Rotation = geom.AxisAngle(geom.AxisX, math.Pi/2)
		m.rings = append(m.rings, ring)
		m.root.Add(ring)
	}

	for i, e := range entries {
		n := scene.New(e.ID, scene.KindSphere)
		n.Radius = BodyRadius
		n.Texture = e.Model.Texture
		n.Scale = PlanetScale
		if i == 0 {
			n.Scale = SunScale
		}
		n.Position = geom.Vec{X: m.radii[i], Y: BodyHeight}
		if e.Ringed() {
			n.Add(saturnRing())
		}
		m.nodes = append(m.nodes, n)
		m.root.Add(n)
	}
	return m
}

// Name implements Player.
func (m *Model) Name() string { return "model" }

// Scene implements Player.
func (m *Model) Scene() *scene.Node { return m.root }

// Elapsed implements Timed.
func (m *Model) Elapsed() float64 { return m.clock.Elapsed() }

// Update implements Player. Motion freezes while the marker is lost.
func (m *Model) Update(dt float64, tr Tracker) {
	visible := tr.Visible(SunMarker)
	m.root.Visible = visible
	t := m.clock.Tick(dt, visible)
	if !visible {
		return
	}
	for i, e := range m.entries {
		xf := orbit.ComputeTransform(e.Body(), t)
		x, z := xf.Position(m.radii[i])
		m.nodes[i].Rotation = geom.AxisAngle(geom.AxisY, xf.RotationAngle)
		m.nodes[i].Position = geom.Vec{X: x, Y: BodyHeight, Z: z}
	}
}

// HandleTouch implements Player. The model player has no touch interaction.
func (m *Model) HandleTouch(TouchKind, gesture.Event) {}

// Node returns the scene node of body id.
func (m *Model) Node(id string) *scene.Node {
	for i, e := range m.entries {
		if e.ID == id {
			return m.nodes[i]
		}
	}
	return nil
}
