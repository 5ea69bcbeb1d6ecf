package text

import (
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/studio/layer"
)

// Registry maps font families and weights to parsed sources. Families are
// matched case-insensitively; unknown families use the fallback source of
// the requested weight.
type Registry struct {
	mu       sync.RWMutex
	families map[string]map[layer.FontWeight]*FontSource
	fallback map[layer.FontWeight]*FontSource
}

// NewRegistry returns a registry whose fallback faces are the Go fonts
// (Go Regular for normal and lighter, Go Bold for bold).
func NewRegistry() (*Registry, error) {
	regular, err := NewFontSource(goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := NewFontSource(gobold.TTF)
	if err != nil {
		return nil, err
	}
	return &Registry{
		families: make(map[string]map[layer.FontWeight]*FontSource),
		fallback: map[layer.FontWeight]*FontSource{
			layer.WeightNormal:  regular,
			layer.WeightLighter: regular,
			layer.WeightBold:    bold,
		},
	}, nil
}

// Register adds src as the face of family at weight.
func (r *Registry) Register(family string, weight layer.FontWeight, src *FontSource) {
	key := strings.ToLower(strings.TrimSpace(family))
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.families[key] == nil {
		r.families[key] = make(map[layer.FontWeight]*FontSource)
	}
	r.families[key][weight] = src
}

// Lookup returns the source for family and weight. A family registered
// without the requested weight answers with its normal weight.
func (r *Registry) Lookup(family string, weight layer.FontWeight) (*FontSource, error) {
	if weight == "" {
		weight = layer.WeightNormal
	}
	key := strings.ToLower(strings.TrimSpace(family))

	r.mu.RLock()
	defer r.mu.RUnlock()
	if faces, ok := r.families[key]; ok {
		if src, ok := faces[weight]; ok {
			return src, nil
		}
		if src, ok := faces[layer.WeightNormal]; ok {
			return src, nil
		}
	}
	if src, ok := r.fallback[weight]; ok {
		return src, nil
	}
	if src, ok := r.fallback[layer.WeightNormal]; ok {
		return src, nil
	}
	return nil, ErrUnknownFamily
}
