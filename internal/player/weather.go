package player

import (
	"github.com/litescript/ls-orrery/internal/geom"
	"github.com/litescript/ls-orrery/internal/gesture"
	"github.com/litescript/ls-orrery/internal/globe"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/weather"
)

// Weather player layout.
const (
	EarthMarker  = "earth.patt"
	EarthTexture = "earth.jpg"
	EarthHeight  = 0.5
	EarthScale   = 3
	EarthRadius  = 1
	LayerRadius  = 1.08
)

// LayerTextureURL is where renderers load a remapped layer from.
func LayerTextureURL(l weather.Layer) string {
	return "/api/layers/" + string(l) + ".png"
}

// Weather shows the Earth with one selectable weather layer, rotated and
// zoomed by touch.
type Weather struct {
	layers *weather.LayerSet

	root   *scene.Node
	earth  *scene.Node
	legend *scene.Node
	shells map[weather.Layer]*scene.Node
	pin    *scene.Node

	gestures *gesture.Machine
	visible  bool
}

// NewWeather builds the Earth scene over a layer selector.
func NewWeather(layers *weather.LayerSet) *Weather {
	w := &Weather{
		layers: layers,
		root:   scene.New("earth-marker", scene.KindGroup),
		earth:  scene.New("earth", scene.KindSphere),
		legend: scene.New("legend", scene.KindLegend),
		shells: make(map[weather.Layer]*scene.Node, len(weather.Layers)),
	}
	w.root.Marker = EarthMarker
	w.root.Visible = false

	w.earth.Position = geom.Vec{Y: EarthHeight}
	w.earth.Scale = EarthScale
	w.earth.Radius = EarthRadius
	w.earth.Texture = EarthTexture

	for _, l := range weather.Layers {
		n := scene.New(string(l), scene.KindSphere)
		n.Radius = LayerRadius
		n.Texture = LayerTextureURL(l)
		n.Visible = false
		n.Ready = false
		w.shells[l] = n
		w.earth.Add(n)
	}
	w.legend.Visible = false

	w.root.Add(w.earth)
	w.gestures = gesture.NewMachine(nodeTarget{node: w.earth, visible: func() bool { return w.visible }})
	w.refreshLayers()
	return w
}

// Name implements Player.
func (w *Weather) Name() string { return "weather" }

// Scene implements Player. The legend is an overlay sibling of the marker.
func (w *Weather) Scene() *scene.Node {
	return scene.New("weather", scene.KindGroup).Add(w.root, w.legend)
}

// Earth returns the Earth node.
func (w *Weather) Earth() *scene.Node { return w.earth }

// Layers returns the layer selector.
func (w *Weather) Layers() *weather.LayerSet { return w.layers }

// SelectLayer implements LayerSelector.
func (w *Weather) SelectLayer(l weather.Layer) string {
	legend := w.layers.Select(l)
	w.refreshLayers()
	return legend
}

// SetLocation implements Locator by pinning the geolocation to the Earth.
func (w *Weather) SetLocation(lat, lon float64) {
	p := globe.Place(lat, lon)

	pin := scene.New("pin", scene.KindPin)
	pin.Position = p.Position
	pin.Rotation = p.Orientation

	needle := scene.New("needle", scene.KindPin)
	needle.Radius = globe.NeedleRadius
	needle.OuterRadius = globe.NeedleLength
	needle.Color = "#AFAFAF"

	head := scene.New("head", scene.KindSphere)
	head.Position = p.Head
	head.Radius = globe.HeadRadius
	head.Color = "#EE0000"

	pin.Add(needle, head)

	if w.pin != nil {
		*w.pin = *pin
		return
	}
	w.pin = pin
	w.earth.Add(pin)
}

// Update implements Player.
func (w *Weather) Update(dt float64, tr Tracker) {
	w.visible = tr.Visible(EarthMarker)
	w.root.Visible = w.visible
	w.refreshLayers()
}

// HandleTouch implements Player.
func (w *Weather) HandleTouch(kind TouchKind, ev gesture.Event) {
	dispatch(w.gestures, kind, ev)
}

// Gesture returns the current gesture state.
func (w *Weather) Gesture() gesture.State { return w.gestures.State() }

func (w *Weather) refreshLayers() {
	reg := w.layers.Registry()
	for l, n := range w.shells {
		n.Visible = w.layers.IsVisible(l)
		if task := reg.Task(l); task != nil {
			n.Ready = task.Resolved()
		}
	}
	w.legend.Texture = w.layers.Legend()
	w.legend.Visible = w.legend.Texture != ""
}
