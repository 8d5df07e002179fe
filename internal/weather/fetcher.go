package weather

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"net/http"
	"net/url"
	"time"

	"github.com/litescript/ls-orrery/internal/logging"
)

const (
	// DefaultHost is the tile provider's domain; tiles come from tile.<host>.
	DefaultHost = "openweathermap.org"

	// DefaultTimeout for tile requests. The frame loop never waits on it.
	DefaultTimeout = 30 * time.Second
)

// ErrBadStatus is wrapped by fetch failures caused by a non-200 response.
var ErrBadStatus = errors.New("unexpected status code")

// ErrEmptyTile is wrapped when a tile decodes to no pixels.
var ErrEmptyTile = errors.New("empty tile")

// FetchError reports a failed tile download for one layer.
type FetchError struct {
	Layer Layer
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch layer %s: %v", e.Layer, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// TileSource downloads the zoom-0 Mercator tile of a layer.
type TileSource interface {
	Fetch(ctx context.Context, layer Layer) FetchResult
}

// FetchResult contains the result of a tile download.
type FetchResult struct {
	Layer     Layer
	Image     *image.RGBA // source tile, at most SourceWidth x SourceHeight
	FetchedAt time.Time
	Duration  time.Duration
	Error     error
}

// Fetcher handles HTTP fetching of weather tiles.
type Fetcher struct {
	client  *http.Client
	baseURL string
	appID   string
	timeout time.Duration
	logger  *logging.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHost sets the provider domain; requests go to https://tile.<host>.
func WithHost(host string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = "https://tile." + host
	}
}

// WithBaseURL overrides the full tile server base URL.
func WithBaseURL(base string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = base
	}
}

// WithAppID sets the API key sent as the appid query parameter.
func WithAppID(key string) FetcherOption {
	return func(f *Fetcher) {
		f.appID = key
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l *logging.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a new tile fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		baseURL: "https://tile." + DefaultHost,
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.timeout,
		}
	}

	return f
}

// URL returns the tile URL for a layer.
func (f *Fetcher) URL(layer Layer) string {
	u := fmt.Sprintf("%s/map/%s/0/0/0.png", f.baseURL, url.PathEscape(string(layer)))
	return u + "?appid=" + url.QueryEscape(f.appID)
}

// Fetch downloads and decodes a layer tile into an RGBA image no larger than
// SourceWidth x SourceHeight. Failures are reported in the result, never panicked.
func (f *Fetcher) Fetch(ctx context.Context, layer Layer) FetchResult {
	start := time.Now()
	result := FetchResult{
		Layer:     layer,
		FetchedAt: start,
	}

	img, err := f.fetchImage(ctx, layer)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = &FetchError{Layer: layer, Err: err}
		f.logger.Warn("layer %s failed after %v: %v", layer, result.Duration, err)
		return result
	}

	result.Image = img
	f.logger.Debug("layer %s fetched in %v", layer, result.Duration)
	return result
}

func (f *Fetcher) fetchImage(ctx context.Context, layer Layer) (*image.RGBA, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(layer), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "ls-orrery/1.0 (AR Solar System Viewer)")
	req.Header.Set("Accept", "image/png")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	decoded, err := png.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode tile: %w", err)
	}

	// Keep the tile's own size, cropped to the nominal tile, so a short tile
	// reaches the remapper's edge clamp instead of transparent padding.
	b := decoded.Bounds()
	w, h := min(b.Dx(), SourceWidth), min(b.Dy(), SourceHeight)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("decode tile: %w", ErrEmptyTile)
	}
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(src, src.Bounds(), decoded, b.Min, draw.Src)
	return src, nil
}
