// Package geom provides the small amount of 3D math the players need:
// vectors, orientations, rays and spheres.
package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a 3D vector in scene units.
type Vec = r3.Vec

// Common axes.
var (
	AxisX = Vec{X: 1}
	AxisY = Vec{Y: 1}
	AxisZ = Vec{Z: 1}
)

// Identity is the orientation that leaves vectors unchanged.
var Identity = quat.Number{Real: 1}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// AxisAngle returns the unit quaternion rotating by rad around axis.
// A zero axis yields Identity.
func AxisAngle(axis Vec, rad float64) quat.Number {
	n := r3.Norm(axis)
	if n == 0 {
		return Identity
	}
	u := r3.Scale(1/n, axis)
	s := math.Sin(rad / 2)
	return quat.Number{Real: math.Cos(rad / 2), Imag: u.X * s, Jmag: u.Y * s, Kmag: u.Z * s}
}

// EulerXYZ returns the orientation for intrinsic X, then Y, then Z rotations,
// angles in radians.
func EulerXYZ(x, y, z float64) quat.Number {
	qx := AxisAngle(AxisX, x)
	qy := AxisAngle(AxisY, y)
	qz := AxisAngle(AxisZ, z)
	return quat.Mul(quat.Mul(qx, qy), qz)
}

// Compose returns the orientation that applies delta in the local frame of q.
func Compose(q, delta quat.Number) quat.Number {
	return Normalize(quat.Mul(q, delta))
}

// Normalize scales q to unit length. The zero quaternion becomes Identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return Identity
	}
	return quat.Scale(1/n, q)
}

// Rotate applies orientation q to v.
func Rotate(q quat.Number, v Vec) Vec {
	return r3.Rotation(Normalize(q)).Rotate(v)
}

// FromTo returns the rotation carrying direction from onto direction to.
// Anti-parallel inputs rotate half a turn around an axis perpendicular to from.
func FromTo(from, to Vec) quat.Number {
	f := r3.Unit(from)
	t := r3.Unit(to)
	d := r3.Dot(f, t)
	if d >= 1-1e-12 {
		return Identity
	}
	if d <= -1+1e-12 {
		axis := r3.Cross(AxisX, f)
		if r3.Norm(axis) < 1e-9 {
			axis = r3.Cross(AxisY, f)
		}
		return AxisAngle(axis, math.Pi)
	}
	return AxisAngle(r3.Cross(f, t), math.Acos(d))
}

// QuatApproxEqual reports whether a and b describe the same orientation
// within tol. q and -q are treated as equal.
func QuatApproxEqual(a, b quat.Number, tol float64) bool {
	same := quat.Abs(quat.Sub(a, b)) <= tol
	flipped := quat.Abs(quat.Add(a, b)) <= tol
	return same || flipped
}

// Ray is a half-line starting at Origin along the unit vector Dir.
type Ray struct {
	Origin Vec
	Dir    Vec
}

// NewRay builds a ray, normalizing dir.
func NewRay(origin, dir Vec) Ray {
	return Ray{Origin: origin, Dir: r3.Unit(dir)}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}

// Sphere is a ball in scene units.
type Sphere struct {
	Center Vec
	Radius float64
}

// Intersect returns the distance to the nearest intersection in front of the
// ray origin. An origin inside the sphere hits the far surface.
func (s Sphere) Intersect(r Ray) (float64, bool) {
	if s.Radius <= 0 {
		return 0, false
	}
	oc := r3.Sub(r.Origin, s.Center)
	b := r3.Dot(oc, r.Dir)
	c := r3.Dot(oc, oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
