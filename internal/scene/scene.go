// Package scene is the plain scene description the players hand to a
// renderer. It carries geometry and visibility only; the renderer owns
// meshes, materials and the camera.
package scene

import (
	"gonum.org/v1/gonum/num/quat"

	"github.com/litescript/ls-orrery/internal/geom"
	"github.com/litescript/ls-orrery/internal/panel"
)

// Kind names the shape a node stands for.
type Kind string

const (
	KindGroup  Kind = "group"  // marker-anchored or plain group
	KindSphere Kind = "sphere" // textured ball
	KindRing   Kind = "ring"   // flat annulus
	KindSprite Kind = "sprite" // camera-facing info panel
	KindPin    Kind = "pin"    // geolocation marker
	KindLegend Kind = "legend" // overlay image, not in 3D space
)

// Panel is the renderable content of a sprite node.
type Panel struct {
	Config  panel.Config  `json:"config"`
	Lines   []panel.Line  `json:"lines"`
	Outline panel.Outline `json:"outline"`
}

// Node is one element of the scene tree. Transforms are relative to the
// parent.
type Node struct {
	Name     string      `json:"name"`
	Kind     Kind        `json:"kind"`
	Marker   string      `json:"marker,omitempty"`
	Position geom.Vec    `json:"position"`
	Rotation quat.Number `json:"rotation"`
	Scale    float64     `json:"scale"`
	Visible  bool        `json:"visible"`

	// Shape parameters; unused fields stay zero.
	Radius      float64 `json:"radius,omitempty"`
	InnerRadius float64 `json:"inner_radius,omitempty"`
	OuterRadius float64 `json:"outer_radius,omitempty"`
	Color       string  `json:"color,omitempty"`

	Texture string `json:"texture,omitempty"`
	// Ready is false while the texture content may still change.
	Ready bool   `json:"ready"`
	Panel *Panel `json:"panel,omitempty"`

	Children []*Node `json:"children,omitempty"`
}

// New creates a visible node with unit scale and identity rotation.
func New(name string, kind Kind) *Node {
	return &Node{Name: name, Kind: kind, Rotation: geom.Identity, Scale: 1, Visible: true, Ready: true}
}

// Add appends children and returns n.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Find returns the first node named name in depth-first order.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Shown reports whether n and every ancestor on path are visible.
func Shown(path ...*Node) bool {
	for _, n := range path {
		if n == nil || !n.Visible {
			return false
		}
	}
	return true
}

// Clone deep-copies the tree. Panel content is shared since players never
// mutate it after construction.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// Frame is one rendered update.
type Frame struct {
	Seq     uint64  `json:"seq"`
	Player  string  `json:"player"`
	Dt      float64 `json:"dt"`
	Elapsed float64 `json:"elapsed"`
	Root    *Node   `json:"root"`
}
