package orbit

import (
	"math"
	"testing"
)

func TestClockFreezesAndResumes(t *testing.T) {
	var c Clock

	steps := []struct {
		dt      float64
		visible bool
		want    float64
	}{
		{0.5, true, 0.5},
		{0.25, true, 0.75},
		{10, false, 0.75}, // marker lost: frozen
		{3, false, 0.75},
		{0.25, true, 1.0}, // resumes additively
		{-1, true, 1.0},   // clock skew ignored
		{math.NaN(), true, 1.0},
	}

	for i, s := range steps {
		if got := c.Tick(s.dt, s.visible); got != s.want {
			t.Fatalf("step %d: Tick(%v, %v) = %v, want %v", i, s.dt, s.visible, got, s.want)
		}
	}
	if c.Elapsed() != 1.0 {
		t.Errorf("Elapsed() = %v", c.Elapsed())
	}
}

func TestOrbitRadii(t *testing.T) {
	got := OrbitRadii(4)
	want := []float64{0, 0.6, 0.9, 1.2}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("radius[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRelativeScales(t *testing.T) {
	diam := []float64{100, 50, 25}

	tests := []struct {
		name    string
		visible []bool
		prev    []float64
		want    []float64
	}{
		{"all visible", []bool{true, true, true}, nil, []float64{1, 0.5, 0.25}},
		{"largest hidden", []bool{false, true, true}, []float64{0.7, 0, 0}, []float64{0.7, 1, 0.5}},
		{"none visible keeps prev", []bool{false, false, false}, []float64{0.1, 0.2, 0.3}, []float64{0.1, 0.2, 0.3}},
		{"no prev defaults to 1", []bool{false, false, true}, nil, []float64{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelativeScales(diam, tt.visible, tt.prev)
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("scale[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
