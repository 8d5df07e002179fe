package orbit

import (
	"math"
	"testing"
)

var (
	sun   = Body{Name: "Sun", DiameterKm: 1391016, OrbitalPeriodDays: 0, RotationPeriodHours: 609.12}
	venus = Body{Name: "Venus", DiameterKm: 12104, OrbitalPeriodDays: 224.7, RotationPeriodHours: -5832.5}
	earth = Body{Name: "Earth", DiameterKm: 12756, OrbitalPeriodDays: 365.2, RotationPeriodHours: 23.9}
)

func TestSunDoesNotOrbit(t *testing.T) {
	for _, tt := range []float64{0, 1, 100, 1e6} {
		tr := ComputeTransform(sun, tt)
		if tr.OrbitalAngle != 0 {
			t.Errorf("t=%v: OrbitalAngle = %v, want 0", tt, tr.OrbitalAngle)
		}
	}
	tr := ComputeTransform(sun, 100)
	want := 100 * (365 * 24 / 609.12)
	if math.Abs(tr.RotationAngle-want) > 1e-9 {
		t.Errorf("RotationAngle = %v, want %v", tr.RotationAngle, want)
	}
}

func TestRetrogradeSign(t *testing.T) {
	tt := 5832.5
	v := ComputeTransform(venus, tt)
	e := ComputeTransform(earth, tt)

	if v.RotationAngle >= 0 || e.RotationAngle <= 0 {
		t.Errorf("Venus %v and Earth %v should spin in opposite senses", v.RotationAngle, e.RotationAngle)
	}
	if want := -365.0 * 24; math.Abs(v.RotationAngle-want) > 1e-9 {
		t.Errorf("Venus RotationAngle = %v, want %v", v.RotationAngle, want)
	}
	if !venus.Retrograde() || earth.Retrograde() {
		t.Error("Retrograde() mismatch")
	}
}

func TestZeroRotationPeriodGuard(t *testing.T) {
	b := Body{Name: "Odd", RotationPeriodHours: 0, OrbitalPeriodDays: 100}
	tr := ComputeTransform(b, 42)
	if tr.RotationAngle != 0 || math.IsNaN(tr.RotationAngle) || math.IsInf(tr.RotationAngle, 0) {
		t.Errorf("RotationAngle = %v, want 0", tr.RotationAngle)
	}
	if tr.OrbitalAngle != 42*365.0/100 {
		t.Errorf("OrbitalAngle = %v", tr.OrbitalAngle)
	}
}

func TestEarthCalibration(t *testing.T) {
	// With Earth-relative ratios a body with a 24h day and 365d year spins
	// 365*24/24 = 365 rad and orbits 1 rad per elapsed unit.
	b := Body{OrbitalPeriodDays: 365, RotationPeriodHours: 24}
	tr := ComputeTransform(b, 1)
	if tr.OrbitalAngle != 1 || tr.RotationAngle != 365 {
		t.Errorf("ComputeTransform = %+v", tr)
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		name         string
		angle, r     float64
		wantX, wantZ float64
	}{
		{"zero", 0, 2, 2, 0},
		{"quarter", math.Pi / 2, 2, 0, 2},
		{"half", math.Pi, 1, -1, 0},
		{"centre", 1.3, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, z := Transform{OrbitalAngle: tt.angle}.Position(tt.r)
			if math.Abs(x-tt.wantX) > 1e-12 || math.Abs(z-tt.wantZ) > 1e-12 {
				t.Errorf("Position = (%v, %v), want (%v, %v)", x, z, tt.wantX, tt.wantZ)
			}
		})
	}
}
