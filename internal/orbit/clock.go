package orbit

// Clock accumulates time only while its marker is visible. Losing the marker
// freezes it; regaining it resumes from the frozen value.
type Clock struct {
	elapsed float64
}

// Tick advances the clock by dt seconds if visible and returns the elapsed
// visible time. Negative or NaN deltas are ignored.
func (c *Clock) Tick(dt float64, visible bool) float64 {
	if visible && dt > 0 {
		c.elapsed += dt
	}
	return c.elapsed
}

// Elapsed returns the accumulated visible time.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}
