package server

import (
	"time"

	"github.com/litescript/ls-orrery/internal/player"
)

// Config holds web backend settings.
type Config struct {
	Addr    string
	SiteDir string

	// EnforceHTTPS redirects plain-HTTP reads and rejects plain-HTTP writes.
	EnforceHTTPS bool
	// TrustProtoHeader accepts X-Forwarded-Proto from a fronting proxy.
	TrustProtoHeader bool

	RateLimit float64 // requests per second per client IP
	RateBurst int

	FrameInterval time.Duration
	WriteTimeout  time.Duration
	PongWait      time.Duration

	CacheBytes  int
	LayerMaxAge time.Duration

	// AutocertDomain enables Let's Encrypt certificates on :443.
	AutocertDomain string
	CertDir        string
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:             ":8080",
		SiteDir:          "./site/",
		EnforceHTTPS:     true,
		TrustProtoHeader: true,
		RateLimit:        20,
		RateBurst:        40,
		FrameInterval:    player.DefaultInterval,
		WriteTimeout:     10 * time.Second,
		PongWait:         60 * time.Second,
		CacheBytes:       8 << 20,
		LayerMaxAge:      time.Hour,
		CertDir:          "certs",
	}
}

// Limits for clamped settings.
const (
	minFrameInterval = time.Second / 120
	maxFrameInterval = time.Second
	minCacheBytes    = 512 << 10
)

// normalize clamps out-of-range values the way the CLI clamps the refresh
// interval.
func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = d.FrameInterval
	}
	if c.FrameInterval < minFrameInterval {
		c.FrameInterval = minFrameInterval
	}
	if c.FrameInterval > maxFrameInterval {
		c.FrameInterval = maxFrameInterval
	}
	if c.RateLimit <= 0 {
		c.RateLimit = d.RateLimit
	}
	if c.RateBurst <= 0 {
		c.RateBurst = d.RateBurst
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.PongWait <= 0 {
		c.PongWait = d.PongWait
	}
	if c.CacheBytes < minCacheBytes {
		c.CacheBytes = minCacheBytes
	}
	if c.LayerMaxAge < 0 {
		c.LayerMaxAge = 0
	}
	if c.CertDir == "" {
		c.CertDir = d.CertDir
	}
	return c
}
