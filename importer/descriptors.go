// Package importer converts parsed layer batches from the analysis
// collaborator into scene objects: descriptor planning, concurrent image
// resolution, floral clustering and z-order insertion.
package importer

import (
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/layer"
)

// DefaultBucket is the floral bucket of layers without a group id.
const DefaultBucket = "floral"

// Skipped describes a parsed layer that produced no scene object.
type Skipped struct {
	ParsedLayerID string
	Source        string
	Err           error
}

// Descriptors plans the layer descriptors of batch for a canvas of the given
// size: background, florals, typography and misc in that order with
// increasing zIndex. Image layers without any source are reported as
// skipped.
//
// A parsed region that has no image of its own is a region of the batch
// background; it becomes a crop of the background image.
func Descriptors(batch *layer.ParsedLayerBatch, width, height float64) ([]layer.Descriptor, []Skipped) {
	if batch == nil {
		return nil, nil
	}
	p := &planner{width: width, height: height}
	if bg := batch.Background; bg != nil && bg.ImageURL != "" {
		p.background = bg.ImageURL
		p.add(&layer.ImageLayer{
			Base: layer.Base{
				Name:        layer.TagBackground.FallbackName(),
				SemanticTag: layer.TagBackground,
				Origin:      layer.OriginParsed,
				Position:    layer.At(0, 0),
				Size:        layer.Sized(width, height),
				Selectable:  layer.Bool(false),
				Evented:     layer.Bool(false),
			},
			Source: bg.ImageURL,
		})
	}
	for _, pl := range batch.Florals {
		p.image(pl, layer.TagFloral)
	}
	for _, pl := range batch.Typography {
		p.text(pl, layer.TagTypography)
	}
	for _, pl := range batch.Misc {
		if pl == nil {
			continue
		}
		tag := layer.CoerceSemanticTag(pl.Payload["semanticTag"], layer.TagMisc)
		if pl.Kind == layer.KindTypography {
			p.text(pl, tag)
			continue
		}
		p.image(pl, tag)
	}
	return p.out, p.skipped
}

type planner struct {
	width, height float64
	background    string
	zIndex        int
	out           []layer.Descriptor
	skipped       []Skipped
}

func (p *planner) add(d layer.Descriptor) {
	b := d.Common()
	if b.ZIndex == nil {
		b.ZIndex = layer.Int(p.zIndex)
	}
	p.zIndex++
	p.out = append(p.out, d)
}

func (p *planner) image(pl *layer.ParsedLayer, tag layer.SemanticTag) {
	if pl == nil {
		return
	}
	src, own := pl.Payload.String("imageUrl")
	if !own {
		src = p.background
	}
	if src == "" {
		studio.Logger().Warn("importer: parsed layer has no image source", "id", pl.ID, "kind", string(pl.Kind))
		p.skipped = append(p.skipped, Skipped{ParsedLayerID: pl.ID, Err: errNoSource})
		return
	}

	d := &layer.ImageLayer{Base: p.base(pl, tag), Source: src}
	if pl.Bounds.Width > 0 && pl.Bounds.Height > 0 {
		d.Size = layer.Sized(pl.Bounds.Width, pl.Bounds.Height)
		if !own {
			d.Crop = &studio.Rect{
				Left:   pl.Bounds.X,
				Top:    pl.Bounds.Y,
				Width:  pl.Bounds.Width,
				Height: pl.Bounds.Height,
			}
		}
	}
	if mask, ok := pl.Payload.String("maskUrl"); ok {
		d.MaskURL = mask
	}
	if id, ok := pl.Payload.String("clusterId"); ok {
		d.GroupID = id
	} else if id, ok := pl.Payload.String("groupId"); ok {
		d.GroupID = id
	}
	p.add(d)
}

func (p *planner) text(pl *layer.ParsedLayer, tag layer.SemanticTag) {
	if pl == nil {
		return
	}
	pay := pl.Payload
	content, _ := pay.HintString("text")

	d := &layer.TextLayer{
		Base:       p.base(pl, tag),
		Text:       norm.NFC.String(content),
		FontFamily: layer.DefaultFontFamily,
		FontSize:   layer.DefaultFontSize,
		FontWeight: layer.DefaultFontWeight,
		LineHeight: layer.DefaultLineHeight,
		TextAlign:  layer.DefaultTextAlign,
		Fill:       layer.DefaultFill,
	}
	if v, ok := pay.HintString("fontFamily"); ok {
		d.FontFamily = v
	}
	if v, ok := pay.HintNumber("fontSize"); ok && v > 0 {
		d.FontSize = v
	}
	if v, ok := hintWeight(pay); ok {
		d.FontWeight = v
	}
	if v, ok := pay.HintNumber("lineHeight"); ok && v > 0 {
		d.LineHeight = v
	}
	if v, ok := pay.HintString("textAlign"); ok {
		if a, ok := layer.ParseTextAlign(v); ok {
			d.TextAlign = a
		}
	}
	if v, ok := pay.HintString("color"); ok {
		d.Fill = v
	} else if v, ok := pay.HintString("fill"); ok {
		d.Fill = v
	}
	p.add(d)
}

func (p *planner) base(pl *layer.ParsedLayer, tag layer.SemanticTag) layer.Base {
	b := layer.Base{
		SemanticTag: tag,
		Origin:      layer.OriginParsed,
		Position:    layer.At(pl.Bounds.X, pl.Bounds.Y),
		Metadata: map[string]any{
			layer.KeyParsedLayerID: pl.ID,
			layer.KeyConfidence:    pl.Confidence,
			layer.KeyPayload:       map[string]any(pl.Payload),
			layer.KeyBounds:        pl.Bounds,
			layer.KeyOriginalKind:  string(pl.Kind),
		},
	}
	if name, ok := pl.Payload.String("label"); ok {
		b.Name = name
	}
	return b
}

func hintWeight(pay layer.Payload) (layer.FontWeight, bool) {
	if n, ok := pay.HintNumber("fontWeight"); ok {
		return layer.ParseFontWeight(formatWeight(n))
	}
	if s, ok := pay.HintString("fontWeight"); ok {
		return layer.ParseFontWeight(s)
	}
	return "", false
}

func formatWeight(n float64) string {
	switch {
	case n < 400:
		return "300"
	case n < 600:
		return "400"
	default:
		return "700"
	}
}
