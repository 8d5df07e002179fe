package weather

import "context"

// Registry owns one Task per layer. It is shared by every viewer of the same
// tile provider so each layer is fetched at most once.
type Registry struct {
	tasks map[Layer]*Task
}

// NewRegistry creates unstarted tasks for all layers.
func NewRegistry() *Registry {
	r := &Registry{tasks: make(map[Layer]*Task, len(Layers))}
	for _, l := range Layers {
		r.tasks[l] = NewTask(l)
	}
	return r
}

// StartAll issues every layer fetch in the background.
func (r *Registry) StartAll(ctx context.Context, src TileSource) {
	for _, l := range Layers {
		r.tasks[l].Start(ctx, src)
	}
}

// Task returns the task for a layer, or nil for LayerNone/unknown.
func (r *Registry) Task(l Layer) *Task {
	if r == nil {
		return nil
	}
	return r.tasks[l]
}

// LayerSet is the per-viewer layer selector: at most one layer is visible.
type LayerSet struct {
	registry *Registry
	selected Layer
}

// NewLayerSet creates a selector with no visible layer.
func NewLayerSet(r *Registry) *LayerSet {
	return &LayerSet{registry: r}
}

// Select makes only l visible and returns its legend path. Unknown layers
// hide everything and return "".
func (s *LayerSet) Select(l Layer) string {
	if _, ok := legends[l]; !ok {
		l = LayerNone
	}
	s.selected = l
	return l.Legend()
}

// Selected returns the visible layer.
func (s *LayerSet) Selected() Layer { return s.selected }

// Legend returns the legend path of the visible layer.
func (s *LayerSet) Legend() string { return s.selected.Legend() }

// IsVisible reports whether l is the selected layer.
func (s *LayerSet) IsVisible(l Layer) bool {
	return l != LayerNone && l == s.selected
}

// Registry returns the shared task registry.
func (s *LayerSet) Registry() *Registry { return s.registry }

// Next cycles the selection through none and every layer.
func (s *LayerSet) Next() Layer {
	i := s.selected.Index() + 1
	if i >= len(Layers) {
		s.selected = LayerNone
	} else {
		s.selected = Layers[i]
	}
	return s.selected
}
