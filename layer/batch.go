package layer

import (
	"encoding/json"
	"fmt"
	"io"
)

// ParsedKind is the kind assigned to a region by the analysis collaborator.
type ParsedKind string

// Parsed layer kinds.
const (
	KindBackground ParsedKind = "background"
	KindFloral     ParsedKind = "floral"
	KindTypography ParsedKind = "typography"
	KindMask       ParsedKind = "mask"
	KindMisc       ParsedKind = "misc"
)

// Bounds is the detected region of a parsed layer in canvas pixels.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Payload carries the semantic hints of a parsed layer: text, font, color,
// imageUrl, clusterId, maskUrl, styleHints and anything else the analysis
// produced.
type Payload map[string]any

// String returns the string stored under key.
func (p Payload) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok && s != ""
}

// Number returns the number stored under key. Numeric strings are not
// accepted.
func (p Payload) Number(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Map returns the nested object stored under key.
func (p Payload) Map(key string) Payload {
	switch v := p[key].(type) {
	case map[string]any:
		return Payload(v)
	case Payload:
		return v
	}
	return nil
}

// Hint looks key up in payload.styleHints first, then in the payload itself.
func (p Payload) Hint(key string) (any, bool) {
	if hints := p.Map("styleHints"); hints != nil {
		if v, ok := hints[key]; ok && v != nil {
			return v, true
		}
	}
	v, ok := p[key]
	return v, ok && v != nil
}

// HintString is Hint restricted to non-empty strings. A string that is
// empty in styleHints falls through to the payload.
func (p Payload) HintString(key string) (string, bool) {
	if s, ok := p.Map("styleHints").String(key); ok {
		return s, true
	}
	return p.String(key)
}

// HintNumber is Hint restricted to numbers.
func (p Payload) HintNumber(key string) (float64, bool) {
	if n, ok := p.Map("styleHints").Number(key); ok {
		return n, true
	}
	return p.Number(key)
}

// ParsedLayer is one region detected by the analysis collaborator.
type ParsedLayer struct {
	ID         string     `json:"id"`
	Kind       ParsedKind `json:"kind"`
	Confidence float64    `json:"confidence"`
	Bounds     Bounds     `json:"bounds"`
	Payload    Payload    `json:"payload"`
	Notes      string     `json:"notes,omitempty"`
}

// Background is the optional full-canvas background of a batch.
type Background struct {
	ImageURL string `json:"imageUrl"`
	Notes    string `json:"notes,omitempty"`
}

// ParsedLayerBatch is the analysis output the import pipeline consumes.
type ParsedLayerBatch struct {
	Background *Background    `json:"background,omitempty"`
	Florals    []*ParsedLayer `json:"florals"`
	Typography []*ParsedLayer `json:"typography"`
	Misc       []*ParsedLayer `json:"misc"`
}

// Len returns the number of parsed layers, counting the background.
func (b *ParsedLayerBatch) Len() int {
	n := len(b.Florals) + len(b.Typography) + len(b.Misc)
	if b.Background != nil && b.Background.ImageURL != "" {
		n++
	}
	return n
}

// DecodeBatch reads a JSON encoded batch.
func DecodeBatch(r io.Reader) (*ParsedLayerBatch, error) {
	var b ParsedLayerBatch
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("layer: decode batch: %w", err)
	}
	return &b, nil
}
