package server

import (
	"context"

	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/weather"
)

// recordingSource counts and logs every fetch outcome before handing it to
// the layer task.
type recordingSource struct {
	next    weather.TileSource
	metrics *Metrics
	log     *logging.Logger
}

func (s recordingSource) Fetch(ctx context.Context, layer weather.Layer) weather.FetchResult {
	res := s.next.Fetch(ctx, layer)
	s.metrics.RecordFetch(res)
	if res.Error != nil {
		s.log.Warn("layer %s stays blank: %v", layer, res.Error)
	} else {
		s.log.Info("layer %s ready in %v", layer, res.Duration)
	}
	return res
}
