// Package text measures the natural size of editable text blocks.
//
// Fonts are parsed with golang.org/x/image/font/opentype. Line advances come
// from a pluggable Shaper: the default GoTextShaper shapes runs with
// go-text/typesetting (kerning, ligatures), BuiltinShaper sums per-glyph
// advances.
package text

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FontSource is a parsed font file shared by every measurement at any size.
// FontSource is safe for concurrent use.
type FontSource struct {
	data []byte
	font *opentype.Font
	name string
}

// NewFontSource parses TTF or OTF data. The data slice is copied.
func NewFontSource(data []byte) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font: %w", err)
	}

	s := &FontSource{
		data: append([]byte(nil), data...),
		font: f,
	}
	s.name = s.lookupName(sfnt.NameIDFamily)
	if s.name == "" {
		s.name = s.lookupName(sfnt.NameIDFull)
	}
	if s.name == "" {
		s.name = "Unknown Font"
	}
	return s, nil
}

// Name returns the font family name.
func (s *FontSource) Name() string { return s.name }

// Metrics holds face metrics at one size, in pixels.
type Metrics struct {
	Ascent  float64
	Descent float64 // positive distance below the baseline
	Height  float64 // recommended line height
}

// Metrics returns the face metrics at size pixels per em.
func (s *FontSource) Metrics(size float64) Metrics {
	var buf sfnt.Buffer
	m, err := s.font.Metrics(&buf, toFixed(size), font.HintingNone)
	if err != nil {
		return Metrics{Ascent: size * 0.8, Descent: size * 0.2, Height: size}
	}
	descent := fromFixed(m.Descent)
	if descent < 0 {
		descent = -descent
	}
	return Metrics{
		Ascent:  fromFixed(m.Ascent),
		Descent: descent,
		Height:  fromFixed(m.Height),
	}
}

// advance returns the sum of glyph advances of s at size, without shaping.
func (s *FontSource) advance(str string, size float64) float64 {
	var buf sfnt.Buffer
	ppem := toFixed(size)
	total := 0.0
	for _, r := range str {
		gid, err := s.font.GlyphIndex(&buf, r)
		if err != nil {
			continue
		}
		adv, err := s.font.GlyphAdvance(&buf, gid, ppem, font.HintingNone)
		if err != nil {
			continue
		}
		total += fromFixed(adv)
	}
	return total
}

func (s *FontSource) lookupName(id sfnt.NameID) string {
	name, err := s.font.Name(nil, id)
	if err != nil {
		return ""
	}
	return name
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64.0 }
