package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-orrery/internal/gesture"
	"github.com/litescript/ls-orrery/internal/player"
)

// Synthetic gesture sizes for keyboard and wheel input.
const (
	keyDragPx       = 15 * gesture.PixelsPerDegree // 15 degrees per key press
	pinchBaselinePx = 100.0
	wheelStep       = 1.1
)

// touches translates terminal input into touch events on one driver.
type touches struct {
	driver *player.Driver
	down   bool
}

func (t *touches) send(kind player.TouchKind, at time.Time, pts ...gesture.Touch) {
	t.driver.Apply(player.TouchInput(kind, gesture.Event{Touches: pts, At: at}))
}

// mouse maps a left-button press/drag/release to a one-finger gesture and
// the wheel to a pinch. It reports whether the message was consumed.
func (t *touches) mouse(msg tea.MouseMsg, at time.Time) bool {
	px, py := cellToClient(msg.X, msg.Y)
	finger := gesture.Touch{ID: 0, X: px, Y: py}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		t.pinch(wheelStep, at)
	case msg.Button == tea.MouseButtonWheelDown:
		t.pinch(1/wheelStep, at)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		t.down = true
		t.send(player.TouchStart, at, finger)
	case msg.Action == tea.MouseActionMotion && t.down:
		t.send(player.TouchMove, at, finger)
	case msg.Action == tea.MouseActionRelease && t.down:
		t.down = false
		t.send(player.TouchEnd, at)
	default:
		return false
	}
	return true
}

// drag performs a complete one-finger drag by (dx, dy) client pixels.
func (t *touches) drag(dx, dy float64, at time.Time) {
	from := gesture.Touch{X: 0, Y: 0}
	to := gesture.Touch{X: dx, Y: dy}
	t.send(player.TouchStart, at, from)
	t.send(player.TouchMove, at, to)
	t.send(player.TouchEnd, at)
}

// pinch performs a complete two-finger pinch scaling by factor.
func (t *touches) pinch(factor float64, at time.Time) {
	a := gesture.Touch{ID: 0}
	b := gesture.Touch{ID: 1, X: pinchBaselinePx}
	t.send(player.TouchStart, at, a, b)
	b.X = pinchBaselinePx * factor
	t.send(player.TouchMove, at, a, b)
	t.send(player.TouchEnd, at)
}

// tap performs a press and release at one client point.
func (t *touches) tap(px, py float64, at time.Time) {
	p := gesture.Touch{X: px, Y: py}
	t.send(player.TouchStart, at, p)
	t.send(player.TouchEnd, at)
}
