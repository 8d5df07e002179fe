package server

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-orrery/internal/weather"
)

// Metrics is the backend's Prometheus instrumentation, on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	rateLimited     prometheus.Counter

	tileFetches       *prometheus.CounterVec
	tileFetchDuration prometheus.Histogram
	layerCache        *prometheus.CounterVec

	sessions prometheus.Gauge
	frames   *prometheus.CounterVec
	inputs   *prometheus.CounterVec
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "orrery",
				Name:      "http_request_duration_seconds",
				Help:      "Time spent serving HTTP requests",
			},
			[]string{"route"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "orrery",
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "orrery",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the per-IP limiter",
			},
		),
		tileFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "orrery",
				Name:      "tile_fetches_total",
				Help:      "Weather tile downloads by layer and outcome",
			},
			[]string{"layer", "result"},
		),
		tileFetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "orrery",
				Name:      "tile_fetch_duration_seconds",
				Help:      "Weather tile download time",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
			},
		),
		layerCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "orrery",
				Name:      "layer_cache_total",
				Help:      "Encoded layer cache lookups",
			},
			[]string{"result"},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "orrery",
				Name:      "sessions",
				Help:      "Open player sessions",
			},
		),
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "orrery",
				Name:      "frames_total",
				Help:      "Frames streamed to clients",
			},
			[]string{"player"},
		),
		inputs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "orrery",
				Name:      "inputs_total",
				Help:      "Client messages by type",
			},
			[]string{"type"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestsTotal,
		m.rateLimited,
		m.tileFetches,
		m.tileFetchDuration,
		m.layerCache,
		m.sessions,
		m.frames,
		m.inputs,
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordFetch counts a tile download.
func (m *Metrics) RecordFetch(res weather.FetchResult) {
	result := "ok"
	if res.Error != nil {
		result = "error"
	}
	m.tileFetches.WithLabelValues(string(res.Layer), result).Inc()
	m.tileFetchDuration.Observe(res.Duration.Seconds())
}

// RecordRequest observes one HTTP exchange.
func (m *Metrics) RecordRequest(route string, code int, d time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Hijack passes websocket upgrades through to the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.code = http.StatusSwitchingProtocols
	return h.Hijack()
}

// instrument wraps a route handler with request metrics.
func (m *Metrics) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RecordRequest(route, rec.code, time.Since(start))
	})
}
