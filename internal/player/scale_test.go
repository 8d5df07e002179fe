package player

import (
	"math"
	"testing"
	"time"

	"github.com/litescript/ls-orrery/internal/bodies"
	"github.com/litescript/ls-orrery/internal/geom"
	"github.com/litescript/ls-orrery/internal/gesture"
)

// placeInFront puts marker at depth z straight ahead of the default camera.
func placeInFront(tr *StateTracker, marker string, z float64) {
	tr.SetVisible(marker, true)
	tr.SetPose(marker, Pose{Position: geom.Vec{Y: -BodyHeight, Z: z}, Rotation: geom.Identity})
}

func TestScaleLayout(t *testing.T) {
	s := NewScale(bodies.All())
	root := s.Scene()

	saturn := root.Find("saturn")
	if saturn == nil || saturn.Find("ring") == nil {
		t.Fatal("saturn ring missing")
	}
	ring := saturn.Find("ring")
	if ring.InnerRadius != RingInner || ring.OuterRadius != RingOuter {
		t.Errorf("ring = %+v", ring)
	}
	if p := root.Find("saturn-panel"); p.Position.X != SaturnPanelX || p.Scale != PanelScale {
		t.Errorf("saturn panel = %+v", p)
	}
	if p := root.Find("mars-panel"); p.Position.X != PanelX || p.Position.Y != PanelY || p.Visible {
		t.Errorf("mars panel = %+v", p)
	}
	if p := root.Find("mars-panel").Panel; p == nil || len(p.Lines) == 0 {
		t.Error("mars panel has no text")
	}
	if root.Find("earth").Find("ring") != nil {
		t.Error("only saturn is ringed")
	}
}

func TestScaleRelativeSizes(t *testing.T) {
	s := NewScale(bodies.All())
	tr := NewSimTracker("earth.patt", "mars.patt")
	s.Update(0.016, tr)

	earth, _ := bodies.Get("earth")
	mars, _ := bodies.Get("mars")
	root := s.Scene()
	if root.Find("earth").Scale != 1 {
		t.Errorf("earth scale = %v, want 1", root.Find("earth").Scale)
	}
	want := mars.Scientific.DiameterKm / earth.Scientific.DiameterKm
	if got := root.Find("mars").Scale; math.Abs(got-want) > 1e-12 {
		t.Errorf("mars scale = %v, want %v", got, want)
	}

	// Jupiter comes into view and becomes the reference.
	tr.SetVisible("jupiter.patt", true)
	s.Update(0.016, tr)
	if root.Find("jupiter").Scale != 1 || root.Find("earth").Scale >= 1 {
		t.Errorf("jupiter=%v earth=%v", root.Find("jupiter").Scale, root.Find("earth").Scale)
	}

	// Hidden bodies keep their last scale.
	before := root.Find("mars").Scale
	tr.SetVisible("mars.patt", false)
	tr.SetVisible("jupiter.patt", false)
	s.Update(0.016, tr)
	if root.Find("mars").Scale != before {
		t.Errorf("hidden mars scale changed: %v -> %v", before, root.Find("mars").Scale)
	}
	if root.Find("mars-marker").Visible {
		t.Error("mars group should be hidden")
	}
}

func TestScaleTapTogglesPanel(t *testing.T) {
	s := NewScale(bodies.All())
	tr := NewSimTracker()
	placeInFront(tr, "mars.patt", -20)
	s.Update(0.016, tr)

	cx, cy := float64(CameraWidth)/2, float64(CameraHeight)/2
	if hit, ok := s.Tap(cx, cy); !ok || hit.ID != "mars" {
		t.Fatalf("Tap = %+v, %v", hit, ok)
	}
	if !s.Scene().Find("mars-panel").Visible {
		t.Error("mars panel should be shown")
	}

	// A tap in the corner hits nothing and changes nothing.
	if _, ok := s.Tap(0, 0); ok {
		t.Error("corner tap should miss")
	}
	if !s.Panels().Visible("mars") {
		t.Error("miss toggled the panel")
	}
}

func TestScaleTapNearestOnly(t *testing.T) {
	s := NewScale(bodies.All())
	tr := NewSimTracker()
	placeInFront(tr, "venus.patt", -15)
	placeInFront(tr, "earth.patt", -30)
	s.Update(0.016, tr)

	if hit, ok := s.Tap(float64(CameraWidth)/2, float64(CameraHeight)/2); !ok || hit.ID != "venus" {
		t.Fatalf("Tap = %+v, %v; want venus", hit, ok)
	}
	if s.Panels().Visible("earth") {
		t.Error("occluded body should not toggle")
	}
}

func TestScaleTouchTapVersusDrag(t *testing.T) {
	s := NewScale(bodies.All())
	tr := NewSimTracker()
	placeInFront(tr, "mars.patt", -20)
	s.Update(0.016, tr)

	cx, cy := float64(CameraWidth)/2, float64(CameraHeight)/2
	at := time.Now()

	// Drag: no toggle.
	s.HandleTouch(TouchStart, gesture.Event{Touches: []gesture.Touch{{X: cx, Y: cy}}, At: at})
	s.HandleTouch(TouchMove, gesture.Event{Touches: []gesture.Touch{{X: cx + 80, Y: cy}}, At: at})
	s.HandleTouch(TouchEnd, gesture.Event{At: at.Add(100 * time.Millisecond)})
	if s.Panels().Visible("mars") {
		t.Fatal("drag toggled the panel")
	}

	// Tap: toggle.
	s.HandleTouch(TouchStart, gesture.Event{Touches: []gesture.Touch{{X: cx, Y: cy}}, At: at})
	s.HandleTouch(TouchEnd, gesture.Event{At: at.Add(100 * time.Millisecond)})
	if !s.Panels().Visible("mars") {
		t.Error("tap did not toggle the panel")
	}
}

func TestScaleElapsed(t *testing.T) {
	s := NewScale(bodies.All())
	s.Update(1, NewSimTracker())
	s.Update(-1, NewSimTracker())
	if s.Elapsed() != ScaleTimeFactor {
		t.Errorf("Elapsed = %v, want %v", s.Elapsed(), ScaleTimeFactor)
	}
}
