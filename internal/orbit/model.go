// Package orbit drives the orrery: per-body spin and orbital angles derived
// from Earth-relative period ratios, advanced by visible time only.
package orbit

import "math"

// Earth-relative calibration: one elapsed unit is one Earth year.
const (
	HoursPerYear = 365 * 24
	DaysPerYear  = 365
)

// Body is the immutable scientific record of a solar-system body.
type Body struct {
	Name                   string  `json:"name"`
	DiameterKm             float64 `json:"diameterKm"`
	DistanceToSunMillionKm float64 `json:"distanceToSunMillionKm"`
	OrbitalPeriodDays      float64 `json:"orbitalPeriodDays"`   // 0 = does not orbit
	RotationPeriodHours    float64 `json:"rotationPeriodHours"` // negative = retrograde
}

// Orbits reports whether the body moves around the Sun.
func (b Body) Orbits() bool {
	return b.OrbitalPeriodDays != 0
}

// Retrograde reports whether the body spins backwards.
func (b Body) Retrograde() bool {
	return b.RotationPeriodHours < 0
}

// RotationRate returns spin radians per elapsed unit. A zero period has no
// defined rate and spins at zero.
func (b Body) RotationRate() float64 {
	if b.RotationPeriodHours == 0 {
		return 0
	}
	return HoursPerYear / b.RotationPeriodHours
}

// OrbitalRate returns orbital radians per elapsed unit; zero for the Sun.
func (b Body) OrbitalRate() float64 {
	if b.OrbitalPeriodDays == 0 {
		return 0
	}
	return DaysPerYear / b.OrbitalPeriodDays
}

// Transform is a body's spin and orbital angle at some visible time.
type Transform struct {
	RotationAngle float64 // radians about the body's own Y axis
	OrbitalAngle  float64 // radians around the Sun
}

// ComputeTransform evaluates the motion model at visible elapsed time t.
func ComputeTransform(b Body, t float64) Transform {
	return Transform{
		RotationAngle: t * b.RotationRate(),
		OrbitalAngle:  t * b.OrbitalRate(),
	}
}

// Position returns the orbital-plane position on a circle of radius r.
func (tr Transform) Position(r float64) (x, z float64) {
	return r * math.Cos(tr.OrbitalAngle), r * math.Sin(tr.OrbitalAngle)
}
