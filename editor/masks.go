package editor

import (
	"cmp"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/layer"
	"github.com/gogpu/studio/scene"
)

// MaskMode tells the host whether a mask stroke marks pixels to keep or to
// remove.
type MaskMode string

// Mask modes.
const (
	MaskKeep   MaskMode = "keep"
	MaskRemove MaskMode = "remove"
)

// Freehand stroke defaults.
const (
	DefaultBrushColor = "#000000"
	DefaultBrushWidth = 5.0
	minMaskWidth      = 6.0
	maskOpacity       = 0.85
)

type maskStyle struct {
	name, stroke, fill string
}

var maskStyles = map[MaskMode]maskStyle{
	MaskKeep:   {name: "Mask Keep", stroke: "#22c55e", fill: "rgba(34,197,94,0.25)"},
	MaskRemove: {name: "Mask Remove", stroke: "#ef4444", fill: "rgba(239,68,68,0.25)"},
}

// CompletePath adds a finished freehand stroke given in canvas
// coordinates. With a Mode the stroke becomes a mask layer; otherwise it
// is a user drawing.
type CompletePath struct {
	Points      []studio.Point
	Mode        MaskMode
	Stroke      string
	StrokeWidth float64
}

func (c CompletePath) apply(e *Editor) (Outcome, error) {
	if len(c.Points) < 2 {
		return Outcome{}, ErrShortPath
	}
	width := cmp.Or(c.StrokeWidth, DefaultBrushWidth)
	path := scene.NewPath(c.Points, cmp.Or(c.Stroke, DefaultBrushColor), width)

	md := &layer.Metadata{
		SemanticTag: layer.TagUser,
		Name:        "Drawing",
		Origin:      layer.OriginUser,
		ZIndex:      e.scene.Len(),
		CreatedAt:   layer.Now(),
		Additional:  map[string]any{},
	}
	if style, ok := maskStyles[c.Mode]; ok {
		md.SemanticTag = layer.TagMask
		md.Name = style.name
		md.Additional[layer.KeyMaskMode] = string(c.Mode)
		path.Stroke, path.Fill = style.stroke, style.fill
		path.StrokeWidth = max(width, minMaskWidth)
		path.Opacity = maskOpacity
	}
	md.ID = layer.NewID(md.SemanticTag)

	if err := e.scene.Add(path, md); err != nil {
		return Outcome{}, err
	}
	return Outcome{LayerIDs: []string{md.ID}}, nil
}

// ClearMasks removes mask layers with the given mode, or all of them when
// Mode is empty, and clears the selection.
type ClearMasks struct {
	Mode MaskMode
}

func (c ClearMasks) apply(e *Editor) (Outcome, error) {
	var out Outcome
	for _, obj := range e.scene.Objects() {
		md := e.scene.Metadata(obj)
		if md.SemanticTag != layer.TagMask {
			continue
		}
		if mode, _ := md.Additional[layer.KeyMaskMode].(string); c.Mode != "" && MaskMode(mode) != c.Mode {
			continue
		}
		out.LayerIDs = append(out.LayerIDs, md.ID)
		e.scene.Remove(obj)
	}
	if len(out.LayerIDs) == 0 {
		return Outcome{}, errUnchanged
	}
	e.setSelection(nil)
	return out, nil
}
