package text

import (
	"bytes"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
)

// Shaper computes the horizontal advance of a single line of text.
type Shaper interface {
	Advance(src *FontSource, size float64, line string) float64
}

// BuiltinShaper sums per-glyph advances from the font's hmtx table.
// It ignores kerning and ligatures.
type BuiltinShaper struct{}

// Advance implements Shaper.
func (BuiltinShaper) Advance(src *FontSource, size float64, line string) float64 {
	return src.advance(line, size)
}

// GoTextShaper shapes lines with go-text/typesetting's HarfBuzz port.
//
// GoTextShaper is safe for concurrent use. Parsed font.Font values are
// cached per source (they are read-only); font.Face and HarfbuzzShaper are
// not concurrent-safe, so a face is created per call and shapers are pooled.
type GoTextShaper struct {
	shaperPool sync.Pool

	mu        sync.RWMutex
	fontCache map[*FontSource]*font.Font

	fallback BuiltinShaper
}

// NewGoTextShaper creates a GoTextShaper.
func NewGoTextShaper() *GoTextShaper {
	return &GoTextShaper{
		shaperPool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
		fontCache: make(map[*FontSource]*font.Font),
	}
}

// Advance implements Shaper. Fonts go-text cannot parse fall back to
// BuiltinShaper.
func (s *GoTextShaper) Advance(src *FontSource, size float64, line string) float64 {
	if line == "" {
		return 0
	}
	f, err := s.fontFor(src)
	if err != nil {
		return s.fallback.Advance(src, size, line)
	}

	runes := []rune(line)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(f),
		Size:      toFixed(size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := s.shaperPool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	s.shaperPool.Put(hb)

	total := 0.0
	for _, g := range out.Glyphs {
		total += fromFixed(g.Advance)
	}
	return total
}

func (s *GoTextShaper) fontFor(src *FontSource) (*font.Font, error) {
	s.mu.RLock()
	f, ok := s.fontCache[src]
	s.mu.RUnlock()
	if ok {
		return f, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.fontCache[src]; ok {
		return f, nil
	}
	face, err := font.ParseTTF(bytes.NewReader(src.data))
	if err != nil {
		return nil, err
	}
	s.fontCache[src] = face.Font
	return face.Font, nil
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
