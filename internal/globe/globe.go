// Package globe places the viewer's geolocation pin on the unit Earth sphere.
package globe

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-orrery/internal/geom"
)

// Pin geometry, in Earth-model units.
const (
	// SurfaceOffset pushes the pin along +Z so it sits above the layer spheres.
	SurfaceOffset = 0.05
	HeadHeight    = 0.04
	HeadRadius    = 0.02
	NeedleRadius  = 0.005
	NeedleLength  = 0.05
)

// Pin is a placed geolocation marker, expressed in the Earth model's frame.
type Pin struct {
	Latitude, Longitude float64

	Normal      geom.Vec
	Position    geom.Vec
	Orientation quat.Number
	Head        geom.Vec // head centre relative to Position, before Orientation
}

// Normal returns the outward unit normal of the sphere at lat/lon degrees.
// Longitude 0 maps to -X so the texture seam sits behind the default view.
func Normal(lat, lon float64) geom.Vec {
	phi := geom.DegToRad(90 - lat)
	theta := geom.DegToRad(lon + 180)
	return geom.Vec{
		X: -math.Sin(phi) * math.Cos(theta),
		Y: math.Cos(phi),
		Z: math.Sin(phi) * math.Sin(theta),
	}
}

// Place computes the pin for a geolocation. The pin's +Y axis is rotated onto
// the surface normal; at the poles the rotation axis is X.
func Place(lat, lon float64) Pin {
	n := Normal(lat, lon)

	var axis geom.Vec
	if math.Abs(n.Y) >= 1-1e-12 {
		axis = geom.AxisX
	} else {
		axis = r3.Unit(r3.Cross(geom.AxisY, n))
	}
	angle := math.Acos(math.Max(-1, math.Min(1, r3.Dot(n, geom.AxisY))))

	return Pin{
		Latitude:    lat,
		Longitude:   lon,
		Normal:      n,
		Position:    geom.Vec{X: n.X, Y: n.Y, Z: n.Z + SurfaceOffset},
		Orientation: geom.AxisAngle(axis, angle),
		Head:        geom.Vec{Y: HeadHeight},
	}
}

// Tip returns the world-space direction the pin points in.
func (p Pin) Tip() geom.Vec {
	return geom.Rotate(p.Orientation, geom.AxisY)
}
