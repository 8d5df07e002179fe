// Package server is the web backend: an HTTPS-enforcing static file server
// for the browser players, the remapped layer API, live player sessions over
// websockets and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/coocood/freecache"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/time/rate"

	"github.com/litescript/ls-orrery/internal/bodies"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/version"
	"github.com/litescript/ls-orrery/internal/weather"
)

// limiterIdle is how long an idle client keeps its token bucket.
const limiterIdle = 10 * time.Minute

// Server wires the layer registry, session players and HTTP surface.
type Server struct {
	cfg      Config
	log      *logging.Logger
	source   weather.TileSource
	registry *weather.Registry
	state    *state.Manager
	metrics  *Metrics
	cache    *freecache.Cache
	limiter  *IPRateLimiter
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	handler  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithState shares an existing state manager.
func WithState(m *state.Manager) Option {
	return func(s *Server) {
		s.state = m
	}
}

// New creates a server fetching tiles from src.
func New(cfg Config, src weather.TileSource, opts ...Option) *Server {
	cfg = cfg.normalize()
	s := &Server{
		cfg:      cfg,
		log:      logging.Discard(),
		registry: weather.NewRegistry(),
		metrics:  NewMetrics(),
		cache:    freecache.NewCache(cfg.CacheBytes),
		limiter:  NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 16384,
			// Players are served from this origin or embedded by the site.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.state == nil {
		s.state = state.NewManager(state.DefaultConfig())
	}
	s.source = recordingSource{next: s.state.Source(src), metrics: s.metrics, log: s.log.With("tiles")}
	s.handler = s.routes()
	return s
}

// Registry returns the shared layer registry.
func (s *Server) Registry() *weather.Registry { return s.registry }

// State returns the state manager.
func (s *Server) State() *state.Manager { return s.state }

// Metrics returns the instrumentation.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Start issues every layer fetch once. Sessions started before the fetches
// resolve see blank layers.
func (s *Server) Start(ctx context.Context) {
	s.log.Info("fetching %d weather layers", len(weather.Layers))
	s.registry.StartAll(ctx, s.source)
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /api/layers/{file}", s.metrics.instrument("layers", http.HandlerFunc(s.handleLayer)))
	mux.Handle("GET /api/bodies", s.metrics.instrument("bodies", http.HandlerFunc(s.handleBodies)))
	mux.Handle("GET /api/status", s.metrics.instrument("status", http.HandlerFunc(s.handleStatus)))
	mux.Handle("GET /api/session", s.metrics.instrument("session", http.HandlerFunc(s.handleSession)))
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("/", s.metrics.instrument("static", http.FileServer(http.Dir(s.cfg.SiteDir))))

	var h http.Handler = mux
	h = RateLimit(h, s.limiter, s.cfg.TrustProtoHeader, s.metrics.rateLimited.Inc)
	if s.cfg.EnforceHTTPS {
		h = EnforceHTTPS(h, s.cfg.TrustProtoHeader)
	}
	return h
}

func (s *Server) handleBodies(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(bodies.Raw())
}

type statusResponse struct {
	Version string `json:"version"`
	state.Snapshot
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	resp := statusResponse{Version: version.Version, Snapshot: s.state.Snapshot()}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("status encode: %v", err)
	}
}

// ListenAndServe serves until ctx is done. With an autocert domain it serves
// TLS on :443 and ACME challenges plus redirects on cfg.Addr.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var challenge *http.Server
	if s.cfg.AutocertDomain != "" {
		if err := os.MkdirAll(s.cfg.CertDir, 0o700); err != nil {
			return fmt.Errorf("creating cert dir: %w", err)
		}
		m := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(s.cfg.AutocertDomain),
			Cache:      autocert.DirCache(s.cfg.CertDir),
		}
		srv.Addr = ":443"
		srv.TLSConfig = m.TLSConfig()
		challenge = &http.Server{
			Addr:              s.cfg.Addr,
			Handler:           m.HTTPHandler(s.handler),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	errc := make(chan error, 2)
	go func() {
		s.log.Info("listening on %s", srv.Addr)
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		errc <- err
	}()
	if challenge != nil {
		go func() {
			s.log.Info("ACME challenges on %s", challenge.Addr)
			errc <- challenge.ListenAndServe()
		}()
	}

	prune := time.NewTicker(limiterIdle)
	defer prune.Stop()

	for {
		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serving: %w", err)
		case <-prune.C:
			n := s.limiter.Prune(limiterIdle)
			s.log.Debug("rate limiter tracking %d clients", n)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if challenge != nil {
				_ = challenge.Shutdown(shutdownCtx)
			}
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		}
	}
}
