package orbit

// Model-player layout constants, in marker units.
const (
	FirstOrbitRadius = 0.6
	OrbitSpacing     = 0.3
	RingWidth        = 0.02
	RingCount        = 8
)

// OrbitRadii assigns display radii to n bodies in dataset order: the first
// (the Sun) sits at the centre, the rest on evenly spaced rings.
func OrbitRadii(n int) []float64 {
	radii := make([]float64, n)
	for i := 1; i < n; i++ {
		radii[i] = RingRadius(i - 1)
	}
	return radii
}

// RingRadius returns the inner radius of orbit ring i.
func RingRadius(i int) float64 {
	return FirstOrbitRadius + float64(i)*OrbitSpacing
}

// RelativeScales sizes every visible body against the largest visible one.
// Hidden bodies keep the value in prev (or 1 when prev is short).
func RelativeScales(diameters []float64, visible []bool, prev []float64) []float64 {
	biggest := 0.0
	for i, d := range diameters {
		if i < len(visible) && visible[i] && d > biggest {
			biggest = d
		}
	}

	out := make([]float64, len(diameters))
	for i, d := range diameters {
		switch {
		case i < len(visible) && visible[i] && biggest > 0:
			out[i] = d / biggest
		case i < len(prev):
			out[i] = prev[i]
		default:
			out[i] = 1
		}
	}
	return out
}
