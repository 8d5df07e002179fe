package player

import (
	"gonum.org/v1/gonum/num/quat"

	"github.com/litescript/ls-orrery/internal/geom"
)

// Pose places a marker in camera space.
type Pose struct {
	Position geom.Vec    `json:"position"`
	Rotation quat.Number `json:"rotation"`
}

// PoseTracker is a tracker that also knows where markers are.
type PoseTracker interface {
	Tracker
	Pose(marker string) (Pose, bool)
}

// Reporter accepts pushed marker state.
type Reporter interface {
	Report(visible map[string]bool, poses map[string]Pose)
}

// StateTracker holds marker state set directly or pushed by a remote client.
// Like the players, it is owned by the frame loop goroutine.
type StateTracker struct {
	ready   bool
	visible map[string]bool
	poses   map[string]Pose
	updates int
}

// NewSimTracker returns a ready tracker with the given markers in view.
func NewSimTracker(markers ...string) *StateTracker {
	t := &StateTracker{ready: true, visible: make(map[string]bool), poses: make(map[string]Pose)}
	for _, m := range markers {
		t.visible[m] = true
	}
	return t
}

// NewRemoteTracker returns a tracker that becomes ready on its first report.
func NewRemoteTracker() *StateTracker {
	return &StateTracker{visible: make(map[string]bool), poses: make(map[string]Pose)}
}

// Ready implements Tracker.
func (t *StateTracker) Ready() bool { return t.ready }

// Update implements Tracker.
func (t *StateTracker) Update() { t.updates++ }

// Updates returns how many frames polled the tracker.
func (t *StateTracker) Updates() int { return t.updates }

// Visible implements Tracker.
func (t *StateTracker) Visible(marker string) bool { return t.visible[marker] }

// Pose implements PoseTracker.
func (t *StateTracker) Pose(marker string) (Pose, bool) {
	p, ok := t.poses[marker]
	return p, ok
}

// SetReady sets readiness.
func (t *StateTracker) SetReady(ready bool) { t.ready = ready }

// SetVisible shows or hides a marker.
func (t *StateTracker) SetVisible(marker string, v bool) { t.visible[marker] = v }

// Toggle flips a marker and returns its new visibility.
func (t *StateTracker) Toggle(marker string) bool {
	t.visible[marker] = !t.visible[marker]
	return t.visible[marker]
}

// SetPose places a marker.
func (t *StateTracker) SetPose(marker string, p Pose) { t.poses[marker] = p }

// Report implements Reporter. Markers absent from visible are hidden; poses
// are merged.
func (t *StateTracker) Report(visible map[string]bool, poses map[string]Pose) {
	t.ready = true
	t.visible = make(map[string]bool, len(visible))
	for k, v := range visible {
		t.visible[k] = v
	}
	for k, p := range poses {
		t.poses[k] = p
	}
}

// Markers returns the visibility map copy.
func (t *StateTracker) Markers() map[string]bool {
	out := make(map[string]bool, len(t.visible))
	for k, v := range t.visible {
		out[k] = v
	}
	return out
}
