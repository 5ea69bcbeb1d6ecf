package layer

import "github.com/gogpu/studio"

// Position is an optional top-left placement. Nil fields are left unchanged.
type Position struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// Size is an optional target size. Width/Height are converted to scale
// factors against the object's natural size; ScaleX/ScaleY apply directly.
type Size struct {
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	ScaleX *float64 `json:"scaleX,omitempty"`
	ScaleY *float64 `json:"scaleY,omitempty"`
}

// Base holds the fields shared by every layer descriptor.
type Base struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name,omitempty"`
	SemanticTag SemanticTag    `json:"semanticTag"`
	Origin      Origin         `json:"origin,omitempty"`
	ZIndex      *int           `json:"zIndex,omitempty"`
	GroupID     string         `json:"groupId,omitempty"`
	Position    *Position      `json:"position,omitempty"`
	Size        *Size          `json:"size,omitempty"`
	Opacity     *float64       `json:"opacity,omitempty"`
	Locked      bool           `json:"locked,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	MaskURL     string         `json:"maskUrl,omitempty"`

	// Selectable and Evented override the object's interaction flags before
	// Locked is applied. Background layers set both to false.
	Selectable *bool `json:"selectable,omitempty"`
	Evented    *bool `json:"evented,omitempty"`
}

// Descriptor is a layer description consumed once by the scene factory.
// It is implemented only by *ImageLayer and *TextLayer.
type Descriptor interface {
	// Common returns the shared fields.
	Common() *Base

	// Kind returns "image" or "text".
	Kind() string

	sealed()
}

// ImageLayer describes a raster layer loaded from Source. When Crop is set
// only that region of the source is shown and the region's size is the
// object's natural size.
type ImageLayer struct {
	Base
	Source string       `json:"source"`
	Crop   *studio.Rect `json:"crop,omitempty"`
}

// Common implements Descriptor.
func (l *ImageLayer) Common() *Base { return &l.Base }

// Kind implements Descriptor.
func (l *ImageLayer) Kind() string { return "image" }

func (l *ImageLayer) sealed() {}

// TextAlign is the horizontal alignment of a text block.
type TextAlign string

// Text alignments.
const (
	AlignLeft    TextAlign = "left"
	AlignCenter  TextAlign = "center"
	AlignRight   TextAlign = "right"
	AlignJustify TextAlign = "justify"
)

// ParseTextAlign returns the alignment named by s, or false.
func ParseTextAlign(s string) (TextAlign, bool) {
	switch a := TextAlign(s); a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return a, true
	}
	return "", false
}

// FontWeight is the weight of a text block.
type FontWeight string

// Font weights.
const (
	WeightNormal  FontWeight = "normal"
	WeightBold    FontWeight = "bold"
	WeightLighter FontWeight = "lighter"
)

// ParseFontWeight returns the weight named by s, or false.
// Numeric CSS weights of 600 and above map to bold.
func ParseFontWeight(s string) (FontWeight, bool) {
	switch w := FontWeight(s); w {
	case WeightNormal, WeightBold, WeightLighter:
		return w, true
	}
	switch s {
	case "100", "200", "300":
		return WeightLighter, true
	case "400", "500":
		return WeightNormal, true
	case "600", "700", "800", "900":
		return WeightBold, true
	}
	return "", false
}

// Text defaults applied by the factory and the import pipeline.
const (
	DefaultFontFamily = "serif display"
	DefaultFontSize   = 48.0
	DefaultFontWeight = WeightNormal
	DefaultLineHeight = 1.6
	DefaultTextAlign  = AlignCenter
	DefaultFill       = "#2d2d2d"
)

// TextLayer describes an editable text block. Zero style fields fall back
// to the Default* constants.
type TextLayer struct {
	Base
	Text       string     `json:"text"`
	FontFamily string     `json:"fontFamily,omitempty"`
	FontSize   float64    `json:"fontSize,omitempty"`
	FontWeight FontWeight `json:"fontWeight,omitempty"`
	LineHeight float64    `json:"lineHeight,omitempty"`
	TextAlign  TextAlign  `json:"textAlign,omitempty"`
	Fill       string     `json:"fill,omitempty"`
}

// Common implements Descriptor.
func (l *TextLayer) Common() *Base { return &l.Base }

// Kind implements Descriptor.
func (l *TextLayer) Kind() string { return "text" }

func (l *TextLayer) sealed() {}

// Float returns a pointer to v, for optional descriptor fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// At returns a Position at (x, y).
func At(x, y float64) *Position { return &Position{X: Float(x), Y: Float(y)} }

// Sized returns a Size with explicit width and height.
func Sized(w, h float64) *Size { return &Size{Width: Float(w), Height: Float(h)} }
