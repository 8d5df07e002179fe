package server

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strings"

	"github.com/coocood/freecache"

	"github.com/litescript/ls-orrery/internal/weather"
)

const blankKey = "layer:blank"

// encodedLayer returns the PNG bytes for img, caching them under key.
func (s *Server) encodedLayer(key string, img image.Image) ([]byte, error) {
	k := []byte(key)
	if b, err := s.cache.Get(k); err == nil {
		s.metrics.layerCache.WithLabelValues("hit").Inc()
		return b, nil
	} else if !errors.Is(err, freecache.ErrNotFound) {
		return nil, fmt.Errorf("reading layer cache: %w", err)
	}
	s.metrics.layerCache.WithLabelValues("miss").Inc()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", key, err)
	}
	b := buf.Bytes()
	if err := s.cache.Set(k, b, 0); err != nil {
		// Too large for the cache; still serve it.
		s.log.Debug("layer cache skip %s: %v", key, err)
	}
	return b, nil
}

// handleLayer serves a remapped weather layer. Until the fetch succeeds the
// response is the blank transparent texture and must not be cached.
func (s *Server) handleLayer(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(r.PathValue("file"), ".png")
	layer, ok := weather.ParseLayer(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	task := s.registry.Task(layer)

	phase := "pending"
	key, img := blankKey, task.Image()
	switch {
	case task.Ready():
		phase = "ready"
		key = "layer:" + string(layer)
	case task.Resolved():
		phase = "failed"
	}

	b, err := s.encodedLayer(key, img)
	if err != nil {
		s.log.Error("layer %s: %v", layer, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Layer-State", phase)
	if phase == "ready" && s.cfg.LayerMaxAge > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.cfg.LayerMaxAge.Seconds())))
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	_, _ = w.Write(b)
}
