// Package layer defines the canonical description of a composition layer:
// semantic tags, layer descriptors, per-object metadata and the parsed layer
// batches produced by the external image-analysis collaborator.
//
// Everything in this package is plain data. The only non-determinism is in
// generated ids and creation timestamps.
package layer

import (
	"github.com/gogpu/studio"
)

// SemanticTag is the closed-set role label of a layer.
type SemanticTag string

// Semantic tags.
const (
	TagBackground SemanticTag = "background"
	TagFloral     SemanticTag = "floral"
	TagTypography SemanticTag = "typography"
	TagMask       SemanticTag = "mask"
	TagGraphic    SemanticTag = "graphic"
	TagMisc       SemanticTag = "misc"
	TagUser       SemanticTag = "user"
)

// Tags lists every semantic tag in declaration order.
var Tags = []SemanticTag{
	TagBackground, TagFloral, TagTypography, TagMask, TagGraphic, TagMisc, TagUser,
}

// fallbackNames maps tags to the display name used when a layer has none.
var fallbackNames = map[SemanticTag]string{
	TagBackground: "Background",
	TagFloral:     "Florals",
	TagTypography: "Typography",
	TagMask:       "Mask",
	TagGraphic:    "Graphic",
	TagMisc:       "Layer",
	TagUser:       "Layer",
}

// Valid reports whether t is in the closed tag set.
func (t SemanticTag) Valid() bool {
	_, ok := fallbackNames[t]
	return ok
}

// FallbackName returns the display name for layers of this tag.
func (t SemanticTag) FallbackName() string {
	if name, ok := fallbackNames[t]; ok {
		return name
	}
	return "Layer"
}

// ParseSemanticTag validates s against the closed tag set.
func ParseSemanticTag(s string) (SemanticTag, error) {
	t := SemanticTag(s)
	if !t.Valid() {
		return "", &studio.InvalidSemanticTagError{Value: s}
	}
	return t, nil
}

// CoerceSemanticTag converts an untyped value into a tag, returning fallback
// for anything that is not a valid tag string.
func CoerceSemanticTag(v any, fallback SemanticTag) SemanticTag {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	t, err := ParseSemanticTag(s)
	if err != nil {
		studio.Logger().Debug("layer: coercing semantic tag", "value", s, "fallback", string(fallback))
		return fallback
	}
	return t
}

// Origin records who produced a layer.
type Origin string

// Layer origins.
const (
	OriginParsed    Origin = "parsed"
	OriginUser      Origin = "user"
	OriginGenerated Origin = "generated"
)
