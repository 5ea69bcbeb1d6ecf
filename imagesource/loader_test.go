package imagesource

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gogpu/studio"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func dataURL(t *testing.T, w, h int) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, w, h))
}

func TestLoaderDataURL(t *testing.T) {
	l := NewLoader()
	info, err := l.Resolve(context.Background(), dataURL(t, 30, 20))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if info.Width != 30 || info.Height != 20 || info.Format != "png" {
		t.Errorf("Resolve() = %+v, want 30x20 png", info)
	}
}

func TestLoaderFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rose.png"), pngBytes(t, 64, 48), 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(WithBaseDir(dir))
	info, err := l.Resolve(context.Background(), "rose.png")
	if err != nil {
		t.Fatalf("Resolve(relative) error = %v", err)
	}
	if info.Width != 64 || info.Height != 48 {
		t.Errorf("Resolve(relative) = %+v, want 64x48", info)
	}

	info, err = NewLoader().Resolve(context.Background(), "file://"+filepath.Join(dir, "rose.png"))
	if err != nil || info.Width != 64 {
		t.Errorf("Resolve(file://) = %+v, %v", info, err)
	}
}

func TestLoaderHTTPAndCache(t *testing.T) {
	var hits atomic.Int32
	body := pngBytes(t, 100, 50)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/uploads/bg.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	base, _ := url.Parse(srv.URL)
	l := NewLoader(WithHTTPClient(srv.Client()), WithBaseURL(base), WithRateLimit(0, 0))

	for range 3 {
		info, err := l.Resolve(context.Background(), "/uploads/bg.png")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if info.Width != 100 || info.Height != 50 {
			t.Errorf("Resolve() = %+v, want 100x50", info)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1 (cached)", n)
	}

	_, err := l.Resolve(context.Background(), srv.URL+"/missing.png")
	var loadErr *studio.ImageLoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("Resolve(404) error = %v, want ImageLoadError", err)
	}
}

func TestLoaderFailures(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"not an image", "data:text/plain,hello"},
		{"malformed data url", "data:image/png;base64"},
		{"missing file", filepath.Join(t.TempDir(), "nope.png")},
	}
	l := NewLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Resolve(context.Background(), tt.src)
			var loadErr *studio.ImageLoadError
			if !errors.As(err, &loadErr) {
				t.Errorf("Resolve(%q) error = %v, want ImageLoadError", tt.src, err)
			}
		})
	}
}

func TestLoaderCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader().Resolve(ctx, dataURL(t, 2, 2))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve(canceled) error = %v, want context.Canceled", err)
	}
}

func TestStatic(t *testing.T) {
	s := NewStatic(Info{Source: "a.png", Width: 10, Height: 20})
	s.Add("b.png", 5, 5)

	if info, err := s.Resolve(context.Background(), "a.png"); err != nil || info.Height != 20 {
		t.Errorf("Resolve(a.png) = %+v, %v", info, err)
	}
	if _, err := s.Resolve(context.Background(), "c.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(c.png) error = %v, want ErrNotFound", err)
	}
}
