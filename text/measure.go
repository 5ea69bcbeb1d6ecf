package text

import (
	"strings"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/cache"
	"github.com/gogpu/studio/layer"
)

// FontSizeMult is the ratio between a line's box height and its font size
// before line-height spacing is applied.
const FontSizeMult = 1.13

// Style is the subset of text attributes that affect layout size.
type Style struct {
	Family     string
	Size       float64
	Weight     layer.FontWeight
	LineHeight float64
}

// Size is a measured natural size in canvas pixels.
type Size struct {
	Width  float64
	Height float64
}

type measureKey struct {
	style Style
	text  string
}

// Measurer computes natural text block sizes.
//
// Lines are split on '\n'. Width is the widest line advance; height follows
// the multi-line box model:
//
//	height = size * FontSizeMult * (lineHeight*(lines-1) + 1)
type Measurer struct {
	registry *Registry
	shaper   Shaper
	cache    *cache.LRU[measureKey, Size]
}

// MeasurerOption configures a Measurer.
type MeasurerOption func(*Measurer)

// WithShaper replaces the default GoTextShaper.
func WithShaper(s Shaper) MeasurerOption {
	return func(m *Measurer) { m.shaper = s }
}

// WithRegistry replaces the default Go font registry.
func WithRegistry(r *Registry) MeasurerOption {
	return func(m *Measurer) { m.registry = r }
}

// WithCacheSize sets the number of memoized measurements.
func WithCacheSize(n int) MeasurerOption {
	return func(m *Measurer) { m.cache = cache.New[measureKey, Size](n) }
}

// NewMeasurer creates a Measurer.
func NewMeasurer(opts ...MeasurerOption) (*Measurer, error) {
	m := &Measurer{}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		r, err := NewRegistry()
		if err != nil {
			return nil, err
		}
		m.registry = r
	}
	if m.shaper == nil {
		m.shaper = NewGoTextShaper()
	}
	if m.cache == nil {
		m.cache = cache.New[measureKey, Size](cache.DefaultCapacity)
	}
	return m, nil
}

// Measure returns the natural size of s laid out in style.
func (m *Measurer) Measure(style Style, s string) Size {
	if style.Size <= 0 {
		style.Size = layer.DefaultFontSize
	}
	if style.LineHeight <= 0 {
		style.LineHeight = layer.DefaultLineHeight
	}
	return m.cache.GetOrCreate(measureKey{style: style, text: s}, func() Size {
		return m.measure(style, s)
	})
}

func (m *Measurer) measure(style Style, s string) Size {
	lines := strings.Split(s, "\n")

	width := 0.0
	src, err := m.registry.Lookup(style.Family, style.Weight)
	if err != nil {
		studio.Logger().Warn("text: no font for family, estimating width",
			"family", style.Family, "err", err)
	}
	for _, line := range lines {
		var w float64
		if src != nil {
			w = m.shaper.Advance(src, style.Size, line)
		} else {
			w = estimateAdvance(line, style.Size)
		}
		width = max(width, w)
	}

	n := float64(len(lines))
	height := style.Size * FontSizeMult * (style.LineHeight*(n-1) + 1)
	return Size{Width: width, Height: height}
}

// estimateAdvance approximates a line advance at half an em per rune.
func estimateAdvance(line string, size float64) float64 {
	return float64(len([]rune(line))) * size * 0.5
}
