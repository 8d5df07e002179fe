package state

import (
	"context"

	"github.com/litescript/ls-orrery/internal/weather"
)

type recordingSource struct {
	next weather.TileSource
	m    *Manager
}

func (s recordingSource) Fetch(ctx context.Context, l weather.Layer) weather.FetchResult {
	res := s.next.Fetch(ctx, l)
	s.m.RecordFetch(res)
	return res
}

// Source wraps next so that every fetch outcome lands in the layer status
// before the layer task sees it.
func (m *Manager) Source(next weather.TileSource) weather.TileSource {
	return recordingSource{next: next, m: m}
}
