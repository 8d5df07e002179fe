package scene

import (
	"encoding/json"
	"testing"

	"github.com/litescript/ls-orrery/internal/geom"
)

func tree() *Node {
	root := New("root", KindGroup)
	earth := New("earth", KindSphere)
	earth.Add(New("clouds_new", KindSphere), New("pin", KindPin))
	return root.Add(earth, New("legend", KindLegend))
}

func TestFind(t *testing.T) {
	root := tree()
	if n := root.Find("pin"); n == nil || n.Kind != KindPin {
		t.Errorf("Find(pin) = %+v", n)
	}
	if root.Find("missing") != nil {
		t.Error("Find(missing) should be nil")
	}
	var nilNode *Node
	if nilNode.Find("x") != nil {
		t.Error("nil Find should be nil")
	}
}

func TestWalkSkipsHidden(t *testing.T) {
	root := tree()
	root.Find("earth").Visible = false

	var seen []string
	root.Walk(func(n *Node) bool {
		seen = append(seen, n.Name)
		return n.Visible
	})

	want := []string{"root", "earth", "legend"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	root := tree()
	c := root.Clone()
	c.Find("earth").Position = geom.Vec{X: 5}
	c.Find("clouds_new").Visible = false

	if root.Find("earth").Position.X != 0 || !root.Find("clouds_new").Visible {
		t.Error("Clone shares nodes with the original")
	}
}

func TestFrameJSON(t *testing.T) {
	f := Frame{Seq: 3, Player: "weather", Root: tree()}
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}

	var back Frame
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.Seq != 3 || back.Root.Find("pin") == nil {
		t.Errorf("decoded frame = %+v", back)
	}
	if back.Root.Rotation != geom.Identity {
		t.Errorf("rotation = %v", back.Root.Rotation)
	}
}

func TestShown(t *testing.T) {
	a, b := New("a", KindGroup), New("b", KindSphere)
	if !Shown(a, b) {
		t.Error("both visible should be shown")
	}
	a.Visible = false
	if Shown(a, b) || Shown(nil) {
		t.Error("hidden ancestor should hide")
	}
}
