// Package pick resolves a screen tap to the nearest visible body by casting
// a ray from the camera through the touch point.
package pick

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/geom"
)

// Viewport is the on-screen rectangle of the rendered view, in client pixels.
type Viewport struct {
	Left, Top     float64
	Width, Height float64
}

// NDC maps a client position to normalized device coordinates: x and y in
// [-1, 1], y up.
func (v Viewport) NDC(clientX, clientY float64) (x, y float64) {
	if v.Width <= 0 || v.Height <= 0 {
		return 0, 0
	}
	x = (clientX-v.Left)/v.Width*2 - 1
	y = -(clientY-v.Top)/v.Height*2 + 1
	return x, y
}

// Camera turns normalized device coordinates into a world ray.
type Camera interface {
	Ray(ndcX, ndcY float64) geom.Ray
}

// basis returns the right, up and forward unit vectors of a camera.
func basis(forward, up geom.Vec) (right, trueUp, fwd geom.Vec) {
	fwd = r3.Unit(forward)
	right = r3.Cross(fwd, up)
	if r3.Norm(right) < 1e-12 {
		right = r3.Cross(fwd, geom.AxisZ)
	}
	right = r3.Unit(right)
	trueUp = r3.Cross(right, fwd)
	return right, trueUp, fwd
}

// Perspective is a pinhole camera.
type Perspective struct {
	Position geom.Vec
	Forward  geom.Vec
	Up       geom.Vec
	FovYDeg  float64
	Aspect   float64
}

// Ray implements Camera.
func (c Perspective) Ray(ndcX, ndcY float64) geom.Ray {
	right, up, fwd := basis(c.Forward, c.Up)
	h := math.Tan(geom.DegToRad(c.FovYDeg) / 2)
	w := h * c.Aspect
	dir := r3.Add(fwd, r3.Add(r3.Scale(ndcX*w, right), r3.Scale(ndcY*h, up)))
	return geom.NewRay(c.Position, dir)
}

// Orthographic is a parallel-projection camera; rays share a direction and
// start on the image plane.
type Orthographic struct {
	Position   geom.Vec
	Forward    geom.Vec
	Up         geom.Vec
	HalfWidth  float64
	HalfHeight float64
}

// Ray implements Camera.
func (c Orthographic) Ray(ndcX, ndcY float64) geom.Ray {
	right, up, fwd := basis(c.Forward, c.Up)
	origin := r3.Add(c.Position, r3.Add(r3.Scale(ndcX*c.HalfWidth, right), r3.Scale(ndcY*c.HalfHeight, up)))
	return geom.NewRay(origin, fwd)
}

// Candidate is a tappable body.
type Candidate struct {
	ID      string
	Center  geom.Vec
	Radius  float64
	Visible bool
}

// Hit is a ray intersection with a candidate.
type Hit struct {
	ID       string
	Distance float64
	Point    geom.Vec
}

// All returns every intersection with a visible candidate, nearest first.
func All(ray geom.Ray, cands []Candidate) []Hit {
	var hits []Hit
	for _, c := range cands {
		if !c.Visible {
			continue
		}
		t, ok := geom.Sphere{Center: c.Center, Radius: c.Radius}.Intersect(ray)
		if !ok {
			continue
		}
		hits = append(hits, Hit{ID: c.ID, Distance: t, Point: ray.At(t)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// Pick returns the nearest visible hit. Only that hit is actionable.
func Pick(ray geom.Ray, cands []Candidate) (Hit, bool) {
	hits := All(ray, cands)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}

// Panels tracks which bodies have their info panel shown.
type Panels struct {
	shown map[string]bool
}

// NewPanels creates a set with every panel hidden.
func NewPanels() *Panels {
	return &Panels{shown: make(map[string]bool)}
}

// Visible reports whether id's panel is shown.
func (p *Panels) Visible(id string) bool { return p.shown[id] }

// Toggle flips id's panel and returns the new state.
func (p *Panels) Toggle(id string) bool {
	p.shown[id] = !p.shown[id]
	return p.shown[id]
}

// Shown returns the ids with a visible panel, sorted.
func (p *Panels) Shown() []string {
	var ids []string
	for id, ok := range p.shown {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Tap casts through the client position and toggles the nearest hit's
// panel. A miss changes nothing.
func (p *Panels) Tap(cam Camera, vp Viewport, clientX, clientY float64, cands []Candidate) (Hit, bool) {
	x, y := vp.NDC(clientX, clientY)
	hit, ok := Pick(cam.Ray(x, y), cands)
	if ok {
		p.Toggle(hit.ID)
	}
	return hit, ok
}
