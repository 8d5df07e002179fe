// Package gesture turns raw touch events into drag-to-rotate and
// pinch-to-zoom on a target object.
package gesture

import (
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"

	"github.com/litescript/ls-orrery/internal/geom"
)

// State is the gesture machine state.
type State int

const (
	Idle State = iota
	Rotating
	Zooming
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rotating:
		return "rotating"
	case Zooming:
		return "zooming"
	default:
		return "unknown"
	}
}

// Drag sensitivity: one degree of rotation per this many pixels.
const PixelsPerDegree = 4

// Tap detection thresholds.
const (
	TapSlop    = 10.0
	TapTimeout = 500 * time.Millisecond
)

// Touch is one active contact point in client pixels.
type Touch struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Event carries the touches active after the event.
type Event struct {
	Touches []Touch
	At      time.Time
}

// Target is the object a gesture manipulates.
type Target interface {
	Orientation() quat.Number
	SetOrientation(q quat.Number)
	Scale() float64
	SetScale(s float64)
	Visible() bool
}

// Transition reports what a single event did.
type Transition struct {
	From, To State

	// Rotated is set when a drag delta was composed into the target.
	Rotated bool
	Delta   quat.Number

	// Scaled is set when a pinch set the target's scale.
	Scaled bool
	Scale  float64

	// Applied is false when the target was hidden and effects were skipped.
	Applied bool

	// Tap is set on touch-end of a short single-touch gesture.
	Tap      bool
	TapPoint Touch
}

// Machine tracks one gesture at a time. It is not safe for concurrent use;
// the frame loop owns it.
type Machine struct {
	target Target
	state  State

	last Touch

	pinchStart float64
	baseline   float64

	tapCandidate bool
	tapOrigin    Touch
	tapStart     time.Time
	travel       float64
}

// NewMachine creates an idle machine bound to target.
func NewMachine(target Target) *Machine {
	return &Machine{target: target}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// SetTarget rebinds the machine and resets it to idle.
func (m *Machine) SetTarget(t Target) {
	m.target = t
	m.reset()
}

func (m *Machine) reset() {
	m.state = Idle
	m.tapCandidate = false
	m.travel = 0
}

// OnTouchStart begins a rotation (one touch) or a pinch (two touches).
func (m *Machine) OnTouchStart(ev Event) Transition {
	tr := Transition{From: m.state, To: m.state, Applied: m.visible()}

	switch len(ev.Touches) {
	case 1:
		m.last = ev.Touches[0]
		m.state = Rotating
		// A second finger arriving later cancels the tap.
		if tr.From == Idle {
			m.tapCandidate = true
			m.tapOrigin = ev.Touches[0]
			m.tapStart = ev.At
			m.travel = 0
		}
	case 2:
		m.pinchStart = distance(ev.Touches[0], ev.Touches[1])
		if m.target != nil {
			m.baseline = m.target.Scale()
		} else {
			m.baseline = 1
		}
		m.state = Zooming
		m.tapCandidate = false
	}

	tr.To = m.state
	return tr
}

// OnTouchMove rotates by the drag delta or rescales by the pinch ratio.
// Moves with a touch count that does not match the state are ignored.
func (m *Machine) OnTouchMove(ev Event) Transition {
	tr := Transition{From: m.state, To: m.state, Applied: m.visible()}

	switch {
	case m.state == Rotating && len(ev.Touches) == 1:
		cur := ev.Touches[0]
		dx, dy := cur.X-m.last.X, cur.Y-m.last.Y
		m.last = cur

		if m.tapCandidate {
			m.travel = math.Max(m.travel, math.Hypot(cur.X-m.tapOrigin.X, cur.Y-m.tapOrigin.Y))
		}

		tr.Delta = geom.EulerXYZ(
			geom.DegToRad(dy/PixelsPerDegree),
			geom.DegToRad(dx/PixelsPerDegree),
			0,
		)
		if tr.Applied {
			m.target.SetOrientation(geom.Compose(m.target.Orientation(), tr.Delta))
			tr.Rotated = true
		}

	case m.state == Zooming && len(ev.Touches) == 2:
		factor := 1.0
		if m.pinchStart > 0 {
			factor = distance(ev.Touches[0], ev.Touches[1]) / m.pinchStart
		}
		tr.Scale = m.baseline * factor
		if tr.Applied {
			m.target.SetScale(tr.Scale)
			tr.Scaled = true
		}
	}

	return tr
}

// OnTouchEnd returns to idle and reports whether the gesture was a tap.
func (m *Machine) OnTouchEnd(ev Event) Transition {
	tr := Transition{From: m.state, To: Idle, Applied: m.visible()}

	if m.state == Rotating && m.tapCandidate && m.travel < TapSlop {
		elapsed := ev.At.Sub(m.tapStart)
		if ev.At.IsZero() || m.tapStart.IsZero() || elapsed <= TapTimeout {
			tr.Tap = true
			tr.TapPoint = m.last
		}
	}

	m.reset()
	return tr
}

func (m *Machine) visible() bool {
	return m.target != nil && m.target.Visible()
}

func distance(a, b Touch) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
