package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func vecNear(a, b Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func TestAxisAngleRotate(t *testing.T) {
	tests := []struct {
		name string
		axis Vec
		deg  float64
		in   Vec
		want Vec
	}{
		{"yaw 90 x to -z", AxisY, 90, Vec{X: 1}, Vec{Z: -1}},
		{"pitch 90 y to z", AxisX, 90, Vec{Y: 1}, Vec{Z: 1}},
		{"roll 180", AxisZ, 180, Vec{X: 1}, Vec{X: -1}},
		{"zero axis", Vec{}, 45, Vec{X: 1, Y: 2}, Vec{X: 1, Y: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotate(AxisAngle(tt.axis, DegToRad(tt.deg)), tt.in)
			if !vecNear(got, tt.want, 1e-9) {
				t.Errorf("Rotate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEulerXYZPureYaw(t *testing.T) {
	q := EulerXYZ(0, DegToRad(30), 0)
	want := AxisAngle(AxisY, DegToRad(30))
	if !QuatApproxEqual(q, want, 1e-12) {
		t.Errorf("EulerXYZ yaw = %v, want %v", q, want)
	}
}

func TestComposeAccumulates(t *testing.T) {
	step := AxisAngle(AxisY, DegToRad(1))
	q := Identity
	for i := 0; i < 90; i++ {
		q = Compose(q, step)
	}
	want := AxisAngle(AxisY, DegToRad(90))
	if !QuatApproxEqual(q, want, 1e-9) {
		t.Errorf("90 composed steps = %v, want %v", q, want)
	}
}

func TestNormalizeZero(t *testing.T) {
	if got := Normalize(quat.Number{}); got != Identity {
		t.Errorf("Normalize(0) = %v, want identity", got)
	}
}

func TestFromTo(t *testing.T) {
	tests := []struct {
		name     string
		from, to Vec
	}{
		{"same", AxisY, AxisY},
		{"opposite", AxisY, Vec{Y: -1}},
		{"y to x", AxisY, AxisX},
		{"oblique", AxisY, Vec{X: 1, Y: 1, Z: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotate(FromTo(tt.from, tt.to), r3.Unit(tt.from))
			if !vecNear(got, r3.Unit(tt.to), 1e-9) {
				t.Errorf("FromTo rotated %v to %v, want %v", tt.from, got, r3.Unit(tt.to))
			}
		})
	}
}

func TestSphereIntersect(t *testing.T) {
	s := Sphere{Center: Vec{Z: -10}, Radius: 2}

	tests := []struct {
		name   string
		ray    Ray
		wantT  float64
		wantOK bool
	}{
		{"head on", NewRay(Vec{}, Vec{Z: -1}), 8, true},
		{"miss", NewRay(Vec{X: 5}, Vec{Z: -1}), 0, false},
		{"behind", NewRay(Vec{}, Vec{Z: 1}), 0, false},
		{"inside", NewRay(Vec{Z: -10}, Vec{Z: -1}), 2, true},
		{"tangent", NewRay(Vec{X: 2}, Vec{Z: -1}), 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Intersect(tt.ray)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.wantT) > 1e-9 {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}
