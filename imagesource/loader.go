package imagesource

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
	"golang.org/x/time/rate"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/config"
)

// Default loader settings.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultCacheTTL = 10 * time.Minute
	DefaultRate     = 8 // remote fetches per second
	DefaultBurst    = 4
)

// Loader resolves data URLs, local files and http(s) URLs by decoding the
// image header. Remote fetches are rate limited and results are cached for
// a configurable TTL.
//
// Loader is safe for concurrent use.
type Loader struct {
	client  *http.Client
	limiter *rate.Limiter
	cache   *gocache.Cache
	baseURL *url.URL
	baseDir string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.client = c }
}

// WithRateLimit limits remote fetches to r per second with the given burst.
// A non-positive r disables limiting.
func WithRateLimit(r float64, burst int) LoaderOption {
	return func(l *Loader) {
		if r <= 0 {
			l.limiter = nil
			return
		}
		l.limiter = rate.NewLimiter(rate.Limit(r), max(burst, 1))
	}
}

// WithCacheTTL sets how long resolved sizes are remembered.
func WithCacheTTL(ttl time.Duration) LoaderOption {
	return func(l *Loader) { l.cache = gocache.New(ttl, 2*ttl) }
}

// WithBaseURL resolves root-relative sources ("/uploads/a.png") against u.
func WithBaseURL(u *url.URL) LoaderOption {
	return func(l *Loader) { l.baseURL = u }
}

// WithBaseDir resolves relative file paths against dir.
func WithBaseDir(dir string) LoaderOption {
	return func(l *Loader) { l.baseDir = dir }
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(DefaultRate, DefaultBurst),
		cache:   gocache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Resolve implements Resolver.
func (l *Loader) Resolve(ctx context.Context, src string) (Info, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return Info{}, &studio.ImageLoadError{Source: src, Err: ErrEmptySource}
	}
	if v, ok := l.cache.Get(src); ok {
		return v.(Info), nil
	}

	info, err := l.resolve(ctx, src)
	if err != nil {
		studio.Logger().Debug("imagesource: resolve failed", "source", abbreviate(src), "err", err)
		return Info{}, &studio.ImageLoadError{Source: abbreviate(src), Err: err}
	}
	l.cache.Set(src, info, gocache.DefaultExpiration)
	return info, nil
}

func (l *Loader) resolve(ctx context.Context, src string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}

	var (
		r   io.ReadCloser
		err error
	)
	switch {
	case strings.HasPrefix(src, "data:"):
		var data []byte
		data, err = decodeDataURL(src)
		r = io.NopCloser(bytes.NewReader(data))
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		r, err = l.fetch(ctx, src)
	case strings.HasPrefix(src, "/") && l.baseURL != nil:
		r, err = l.fetch(ctx, l.baseURL.ResolveReference(&url.URL{Path: src}).String())
	case strings.HasPrefix(src, "file://"):
		var u *url.URL
		if u, err = url.Parse(src); err == nil {
			r, err = os.Open(u.Path)
		}
	default:
		path := src
		if l.baseDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(l.baseDir, path)
		}
		r, err = os.Open(path) // #nosec G304 -- sources are supplied by the host
	}
	if err != nil {
		return Info{}, err
	}
	defer r.Close()

	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, ErrInvalidDimensions
	}
	return Info{Source: src, Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

func (l *Loader) fetch(ctx context.Context, u string) (io.ReadCloser, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", u, resp.Status)
	}
	return resp.Body, nil
}

// decodeDataURL decodes "data:[<mediatype>][;base64],<data>".
func decodeDataURL(s string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL")
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return base64.RawStdEncoding.DecodeString(payload)
		}
		return data, nil
	}
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(unescaped), nil
}

// abbreviate keeps data URLs out of log lines and error messages.
func abbreviate(src string) string {
	if strings.HasPrefix(src, "data:") && len(src) > 48 {
		return src[:48] + "..."
	}
	return src
}

// FromConfig builds a Loader from file configuration.
func FromConfig(c config.ImagesConfig) *Loader {
	opts := []LoaderOption{
		WithHTTPClient(&http.Client{Timeout: c.FetchTimeout}),
		WithRateLimit(c.RateLimit, c.Burst),
		WithCacheTTL(c.CacheTTL),
		WithBaseDir(c.BaseDir),
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			studio.Logger().Warn("imagesource: ignoring invalid base url", "url", c.BaseURL, "err", err)
		} else {
			opts = append(opts, WithBaseURL(u))
		}
	}
	return NewLoader(opts...)
}
