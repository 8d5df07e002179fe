package weather

import (
	"context"
	"errors"
	"image"
	"sync"
)

// ErrNotReady is returned by Task.Result before the fetch has resolved.
var ErrNotReady = errors.New("layer not resolved yet")

// Task is a single, at-most-once download-and-remap of one layer. Until it
// resolves successfully Image returns a blank transparent texture; afterwards
// it returns the remapped texture. Neither image is mutated once handed out.
type Task struct {
	layer    Layer
	geometry Geometry
	blank    *image.RGBA

	once sync.Once
	done chan struct{}

	// Written once before done is closed.
	img *image.RGBA
	err error
}

// NewTask creates an unstarted task for layer.
func NewTask(layer Layer) *Task {
	g := DefaultGeometry()
	return &Task{
		layer:    layer,
		geometry: g,
		blank:    g.NewBlank(),
		done:     make(chan struct{}),
	}
}

// Layer returns the task's layer.
func (t *Task) Layer() Layer { return t.layer }

// Start issues the fetch in the background. Only the first call has an
// effect; there are no retries.
func (t *Task) Start(ctx context.Context, src TileSource) {
	t.once.Do(func() {
		go t.run(ctx, src)
	})
}

func (t *Task) run(ctx context.Context, src TileSource) {
	defer close(t.done)

	res := src.Fetch(ctx, t.layer)
	if res.Error != nil {
		t.err = res.Error
		return
	}
	t.img = t.geometry.Remap(res.Image)
}

// Done is closed when the task has resolved, successfully or not.
func (t *Task) Done() <-chan struct{} { return t.done }

// Resolved reports whether the fetch has completed either way.
func (t *Task) Resolved() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Ready reports whether the remapped texture is available.
func (t *Task) Ready() bool {
	return t.Resolved() && t.err == nil
}

// Result returns the remapped image or the fetch failure. Before resolution
// it returns ErrNotReady.
func (t *Task) Result() (*image.RGBA, error) {
	if !t.Resolved() {
		return nil, ErrNotReady
	}
	return t.img, t.err
}

// Wait blocks until the task resolves or ctx is done.
func (t *Task) Wait(ctx context.Context) (*image.RGBA, error) {
	select {
	case <-t.done:
		return t.img, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Image returns the texture to draw this frame.
func (t *Task) Image() *image.RGBA {
	if t.Ready() {
		return t.img
	}
	return t.blank
}
