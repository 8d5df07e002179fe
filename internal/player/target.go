package player

import (
	"gonum.org/v1/gonum/num/quat"

	"github.com/litescript/ls-orrery/internal/gesture"
	"github.com/litescript/ls-orrery/internal/scene"
)

// nodeTarget lets a gesture machine drive a scene node.
type nodeTarget struct {
	node    *scene.Node
	visible func() bool
}

func (t nodeTarget) Orientation() quat.Number     { return t.node.Rotation }
func (t nodeTarget) SetOrientation(q quat.Number) { t.node.Rotation = q }
func (t nodeTarget) Scale() float64               { return t.node.Scale }
func (t nodeTarget) SetScale(s float64)           { t.node.Scale = s }
func (t nodeTarget) Visible() bool                { return t.visible() }

// dispatch routes a touch to the matching machine handler.
func dispatch(m *gesture.Machine, kind TouchKind, ev gesture.Event) gesture.Transition {
	switch kind {
	case TouchStart:
		return m.OnTouchStart(ev)
	case TouchMove:
		return m.OnTouchMove(ev)
	default:
		return m.OnTouchEnd(ev)
	}
}
