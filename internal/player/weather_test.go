package player

import (
	"context"
	"image"
	"math"
	"testing"
	"time"

	"github.com/litescript/ls-orrery/internal/geom"
	"github.com/litescript/ls-orrery/internal/gesture"
	"github.com/litescript/ls-orrery/internal/weather"
)

type solidSource struct{}

func (solidSource) Fetch(ctx context.Context, l weather.Layer) weather.FetchResult {
	return weather.FetchResult{Layer: l, Image: image.NewRGBA(image.Rect(0, 0, 256, 256))}
}

func newWeather() (*Weather, *StateTracker) {
	w := NewWeather(weather.NewLayerSet(weather.NewRegistry()))
	return w, NewSimTracker(EarthMarker)
}

func TestWeatherLayout(t *testing.T) {
	w, _ := newWeather()
	e := w.Earth()
	if e.Position.Y != EarthHeight || e.Scale != EarthScale || e.Radius != EarthRadius {
		t.Errorf("earth = %+v", e)
	}
	if len(e.Children) != len(weather.Layers) {
		t.Fatalf("earth children = %d", len(e.Children))
	}
	for _, c := range e.Children {
		if c.Radius != LayerRadius || c.Visible || c.Ready {
			t.Errorf("layer shell %s = %+v", c.Name, c)
		}
	}
	if w.Scene().Find("earth-marker").Visible {
		t.Error("marker group visible before first update")
	}
}

func TestWeatherSelectLayer(t *testing.T) {
	w, tr := newWeather()

	legend := w.SelectLayer(weather.LayerPressure)
	if legend != "src/images/textures/scale_pressure.png" {
		t.Errorf("legend = %q", legend)
	}
	w.Update(0.016, tr)

	root := w.Scene()
	for _, l := range weather.Layers {
		if got, want := root.Find(string(l)).Visible, l == weather.LayerPressure; got != want {
			t.Errorf("%s visible = %v, want %v", l, got, want)
		}
	}
	if lg := root.Find("legend"); !lg.Visible || lg.Texture != legend {
		t.Errorf("legend node = %+v", lg)
	}

	if w.SelectLayer("bogus") != "" {
		t.Error("unknown layer should clear the legend")
	}
	if root.Find("legend").Visible || root.Find(string(weather.LayerPressure)).Visible {
		t.Error("unknown layer should hide everything")
	}
}

func TestWeatherLayerReady(t *testing.T) {
	reg := weather.NewRegistry()
	w := NewWeather(weather.NewLayerSet(reg))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	reg.StartAll(ctx, solidSource{})
	if _, err := reg.Task(weather.LayerClouds).Wait(ctx); err != nil {
		t.Fatal(err)
	}

	w.Update(0.016, NewSimTracker(EarthMarker))
	if !w.Scene().Find(string(weather.LayerClouds)).Ready {
		t.Error("clouds shell should be ready after the fetch resolved")
	}
}

func TestWeatherGestures(t *testing.T) {
	w, tr := newWeather()
	w.Update(0.016, tr)

	at := time.Now()
	w.HandleTouch(TouchStart, gesture.Event{Touches: []gesture.Touch{{X: 0, Y: 0}}, At: at})
	w.HandleTouch(TouchMove, gesture.Event{Touches: []gesture.Touch{{X: 8, Y: 0}}, At: at})
	w.HandleTouch(TouchEnd, gesture.Event{At: at})

	want := geom.AxisAngle(geom.AxisY, geom.DegToRad(2))
	if !geom.QuatApproxEqual(w.Earth().Rotation, want, 1e-12) {
		t.Errorf("earth rotation = %v", w.Earth().Rotation)
	}

	w.HandleTouch(TouchStart, gesture.Event{Touches: []gesture.Touch{{X: 0}, {X: 50}}})
	w.HandleTouch(TouchMove, gesture.Event{Touches: []gesture.Touch{{X: 0}, {X: 100}}})
	if math.Abs(w.Earth().Scale-2*EarthScale) > 1e-12 {
		t.Errorf("earth scale = %v, want %v", w.Earth().Scale, 2*EarthScale)
	}
	if w.Gesture() != gesture.Zooming {
		t.Errorf("gesture = %v", w.Gesture())
	}
}

func TestWeatherGesturesIgnoredWhenHidden(t *testing.T) {
	w, tr := newWeather()
	tr.SetVisible(EarthMarker, false)
	w.Update(0.016, tr)

	w.HandleTouch(TouchStart, gesture.Event{Touches: []gesture.Touch{{X: 0}}})
	w.HandleTouch(TouchMove, gesture.Event{Touches: []gesture.Touch{{X: 40}}})

	if w.Earth().Rotation != geom.Identity {
		t.Errorf("rotation changed while marker hidden: %v", w.Earth().Rotation)
	}
}

func TestWeatherLocation(t *testing.T) {
	w, _ := newWeather()
	w.SetLocation(-23.5, -46.6)
	w.SetLocation(51.5, -0.1)

	pins := 0
	for _, c := range w.Earth().Children {
		if c.Name == "pin" {
			pins++
		}
	}
	if pins != 1 {
		t.Fatalf("pins = %d, want 1", pins)
	}
	pin := w.Scene().Find("pin")
	if pin.Find("head") == nil || pin.Find("needle") == nil {
		t.Errorf("pin children = %+v", pin.Children)
	}
	if pin.Position.Y <= 0.7 {
		t.Errorf("London pin should sit in the northern hemisphere: %v", pin.Position)
	}
}
