// Package imagesource resolves image source strings (URLs, data URLs, file
// paths) into the natural dimensions the scene factory needs.
//
// Only the image header is decoded. Pixel data stays with the host's
// renderer, which loads the same source on its own.
package imagesource

import (
	"context"
	"errors"
	"sync"

	"github.com/gogpu/studio"
)

// Info describes a resolved image source.
type Info struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format,omitempty"`
}

// Resolver resolves an image source. Failures are reported as
// *studio.ImageLoadError.
type Resolver interface {
	Resolve(ctx context.Context, src string) (Info, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, src string) (Info, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, src string) (Info, error) {
	return f(ctx, src)
}

var (
	// ErrNotFound is wrapped by Static for unknown sources.
	ErrNotFound = errors.New("imagesource: source not found")

	// ErrEmptySource is wrapped when the source string is empty.
	ErrEmptySource = errors.New("imagesource: empty source")

	// ErrInvalidDimensions is wrapped when a header reports a zero size.
	ErrInvalidDimensions = errors.New("imagesource: invalid image dimensions")
)

// Static is an in-memory resolver for sources whose sizes are already known.
// Static is safe for concurrent use.
type Static struct {
	mu      sync.RWMutex
	entries map[string]Info
}

// NewStatic returns a Static resolver preloaded with entries.
func NewStatic(entries ...Info) *Static {
	s := &Static{entries: make(map[string]Info, len(entries))}
	for _, e := range entries {
		s.entries[e.Source] = e
	}
	return s
}

// Add registers src with the given natural size.
func (s *Static) Add(src string, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[src] = Info{Source: src, Width: width, Height: height}
}

// Resolve implements Resolver.
func (s *Static) Resolve(ctx context.Context, src string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, &studio.ImageLoadError{Source: src, Err: err}
	}
	s.mu.RLock()
	info, ok := s.entries[src]
	s.mu.RUnlock()
	if !ok {
		return Info{}, &studio.ImageLoadError{Source: src, Err: ErrNotFound}
	}
	return info, nil
}
