package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/imagesource"
	"github.com/gogpu/studio/layer"
	"github.com/gogpu/studio/text"
)

// Factory turns layer descriptors into live objects.
type Factory struct {
	resolver imagesource.Resolver
	measurer *text.Measurer
}

// NewFactory returns a factory that resolves image sources with resolver
// and sizes text with measurer.
func NewFactory(resolver imagesource.Resolver, measurer *text.Measurer) *Factory {
	return &Factory{resolver: resolver, measurer: measurer}
}

// Resolver returns the image resolver used by the factory.
func (f *Factory) Resolver() imagesource.Resolver { return f.resolver }

// Create builds the object described by d and applies its transform.
func (f *Factory) Create(ctx context.Context, d layer.Descriptor) (Object, error) {
	switch l := d.(type) {
	case *layer.ImageLayer:
		img, err := f.CreateImage(ctx, l)
		if err != nil {
			return nil, err
		}
		return img, nil
	case *layer.TextLayer:
		return f.CreateText(l), nil
	default:
		return nil, fmt.Errorf("scene: unsupported descriptor %T", d)
	}
}

// CreateImage resolves the descriptor's source and builds an image object.
// Resolution failures are returned as *studio.ImageLoadError.
func (f *Factory) CreateImage(ctx context.Context, d *layer.ImageLayer) (*Image, error) {
	info, err := f.resolver.Resolve(ctx, d.Source)
	if err != nil {
		var loadErr *studio.ImageLoadError
		if !errors.As(err, &loadErr) {
			err = &studio.ImageLoadError{Source: d.Source, Err: err}
		}
		return nil, err
	}
	return NewImage(info, d), nil
}

// NewImage builds an image object from an already resolved source.
func NewImage(info imagesource.Info, d *layer.ImageLayer) *Image {
	img := &Image{
		Props:   newProps(float64(info.Width), float64(info.Height)),
		Source:  d.Source,
		Format:  info.Format,
		MaskURL: d.MaskURL,
	}
	if d.Crop != nil && !d.Crop.IsEmpty() {
		crop := *d.Crop
		img.Crop = &crop
		img.Width, img.Height = crop.Width, crop.Height
	}
	ApplyTransform(img, d)
	studio.Logger().Debug("scene: image created",
		"source", abbreviate(d.Source), "width", info.Width, "height", info.Height)
	return img
}

// CreateText builds a text object, filling unset style fields with the
// layer defaults and sizing it with the factory's measurer.
func (f *Factory) CreateText(d *layer.TextLayer) *Text {
	t := &Text{
		Props:      newProps(0, 0),
		Text:       d.Text,
		FontFamily: or(d.FontFamily, layer.DefaultFontFamily),
		FontSize:   orNum(d.FontSize, layer.DefaultFontSize),
		FontWeight: or(d.FontWeight, layer.DefaultFontWeight),
		LineHeight: orNum(d.LineHeight, layer.DefaultLineHeight),
		TextAlign:  or(d.TextAlign, layer.DefaultTextAlign),
		Fill:       or(d.Fill, layer.DefaultFill),
	}
	f.Remeasure(t)
	ApplyTransform(t, d)
	return t
}

// Remeasure recomputes the natural size of t from its content and style.
func (f *Factory) Remeasure(t *Text) {
	sz := f.measurer.Measure(text.Style{
		Family:     t.FontFamily,
		Size:       t.FontSize,
		Weight:     t.FontWeight,
		LineHeight: t.LineHeight,
	}, t.Text)
	t.Width, t.Height = sz.Width, sz.Height
}

// ApplyTransform applies a descriptor's placement, size, opacity and
// interaction flags to obj. A target width or height becomes a scale
// factor against the natural size; explicit scale factors win. Locking is
// applied last.
func ApplyTransform(obj Object, d layer.Descriptor) {
	p := obj.Common()
	b := d.Common()

	if pos := b.Position; pos != nil {
		if pos.X != nil {
			p.Left = *pos.X
		}
		if pos.Y != nil {
			p.Top = *pos.Y
		}
	}
	if sz := b.Size; sz != nil {
		if sz.Width != nil && p.Width > 0 {
			p.ScaleX = *sz.Width / p.Width
		}
		if sz.Height != nil && p.Height > 0 {
			p.ScaleY = *sz.Height / p.Height
		}
		if sz.ScaleX != nil {
			p.ScaleX = *sz.ScaleX
		}
		if sz.ScaleY != nil {
			p.ScaleY = *sz.ScaleY
		}
	}
	if b.Opacity != nil {
		p.Opacity = *b.Opacity
	}
	if b.Selectable != nil {
		p.Selectable = *b.Selectable
	}
	if b.Evented != nil {
		p.Evented = *b.Evented
	}
	if b.Locked {
		p.Lock()
	}
}

func or[T ~string](v, fallback T) T {
	if v == "" {
		return fallback
	}
	return v
}

func orNum(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}

func abbreviate(s string) string {
	const limit = 64
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
