package scene

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/layer"
)

// Snapshot is the serialized state of a scene: canvas size, every object
// with its geometry and flags, and the metadata of every object. Guides are
// excluded.
type Snapshot []byte

const snapshotVersion = 1

type snapshotDoc struct {
	Version int         `json:"version"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Objects []objectDoc `json:"objects"`
}

type objectDoc struct {
	Type       string  `json:"type"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	ScaleX     float64 `json:"scaleX"`
	ScaleY     float64 `json:"scaleY"`
	Angle      float64 `json:"angle"`
	Opacity    float64 `json:"opacity"`
	Visible    bool    `json:"visible"`
	Selectable bool    `json:"selectable"`
	Evented    bool    `json:"evented"`
	Locks

	Src     string       `json:"src,omitempty"`
	Format  string       `json:"format,omitempty"`
	MaskURL string       `json:"maskUrl,omitempty"`
	Crop    *studio.Rect `json:"crop,omitempty"`

	Text       string           `json:"text,omitempty"`
	FontFamily string           `json:"fontFamily,omitempty"`
	FontSize   float64          `json:"fontSize,omitempty"`
	FontWeight layer.FontWeight `json:"fontWeight,omitempty"`
	LineHeight float64          `json:"lineHeight,omitempty"`
	TextAlign  layer.TextAlign  `json:"textAlign,omitempty"`
	Fill       string           `json:"fill,omitempty"`

	Points      []studio.Point `json:"points,omitempty"`
	Stroke      string         `json:"stroke,omitempty"`
	StrokeWidth float64        `json:"strokeWidth,omitempty"`

	Objects []objectDoc     `json:"objects,omitempty"`
	Data    *layer.Metadata `json:"data,omitempty"`
}

// Snapshot serializes the scene.
func (s *Scene) Snapshot() (Snapshot, error) {
	doc := snapshotDoc{
		Version: snapshotVersion,
		Width:   s.width,
		Height:  s.height,
		Objects: make([]objectDoc, 0, len(s.objects)),
	}
	for _, obj := range s.objects {
		doc.Objects = append(doc.Objects, s.encode(obj))
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("scene: encode snapshot: %w", err)
	}
	return data, nil
}

// Restore replaces the scene contents with a snapshot. Objects get fresh
// ObjectIDs. On error the scene is left unchanged.
func (s *Scene) Restore(snap Snapshot) error {
	var doc snapshotDoc
	if err := json.Unmarshal(snap, &doc); err != nil {
		return fmt.Errorf("scene: decode snapshot: %w", err)
	}
	if doc.Version != snapshotVersion {
		return fmt.Errorf("scene: unsupported snapshot version %d", doc.Version)
	}

	next := New(doc.Width, doc.Height)
	for i := range doc.Objects {
		obj, err := next.decode(&doc.Objects[i])
		if err != nil {
			return err
		}
		next.objects = append(next.objects, obj)
	}

	s.width, s.height = next.width, next.height
	s.objects = next.objects
	s.meta = next.meta
	s.byLayer = next.byLayer
	s.guides = nil
	return nil
}

func (s *Scene) encode(obj Object) objectDoc {
	p := obj.Common()
	d := objectDoc{
		Type:       obj.Kind().String(),
		Left:       p.Left,
		Top:        p.Top,
		Width:      p.Width,
		Height:     p.Height,
		ScaleX:     p.ScaleX,
		ScaleY:     p.ScaleY,
		Angle:      p.Angle,
		Opacity:    p.Opacity,
		Visible:    p.Visible,
		Selectable: p.Selectable,
		Evented:    p.Evented,
		Locks:      p.Locks,
		Data:       s.meta[obj.ID()],
	}
	switch o := obj.(type) {
	case *Image:
		d.Src, d.Format, d.MaskURL, d.Crop = o.Source, o.Format, o.MaskURL, o.Crop
	case *Text:
		d.Text = o.Text
		d.FontFamily, d.FontSize, d.FontWeight = o.FontFamily, o.FontSize, o.FontWeight
		d.LineHeight, d.TextAlign, d.Fill = o.LineHeight, o.TextAlign, o.Fill
	case *Path:
		d.Points, d.Stroke, d.StrokeWidth, d.Fill = o.Points, o.Stroke, o.StrokeWidth, o.Fill
	case *Group:
		d.Objects = make([]objectDoc, len(o.Children))
		for i, c := range o.Children {
			d.Objects[i] = s.encode(c)
		}
	}
	return d
}

func (s *Scene) decode(d *objectDoc) (Object, error) {
	p := newProps(d.Width, d.Height)
	p.Left, p.Top = d.Left, d.Top
	p.ScaleX, p.ScaleY, p.Angle = d.ScaleX, d.ScaleY, d.Angle
	p.Opacity = d.Opacity
	p.Visible, p.Selectable, p.Evented = d.Visible, d.Selectable, d.Evented
	p.Locks = d.Locks

	var obj Object
	switch d.Type {
	case "image":
		obj = &Image{Props: p, Source: d.Src, Format: d.Format, MaskURL: d.MaskURL, Crop: d.Crop}
	case "text":
		obj = &Text{
			Props:      p,
			Text:       d.Text,
			FontFamily: d.FontFamily,
			FontSize:   d.FontSize,
			FontWeight: d.FontWeight,
			LineHeight: d.LineHeight,
			TextAlign:  d.TextAlign,
			Fill:       d.Fill,
		}
	case "path":
		obj = &Path{Props: p, Points: d.Points, Stroke: d.Stroke, StrokeWidth: d.StrokeWidth, Fill: d.Fill}
	case "group":
		g := &Group{Props: p, Children: make([]Object, 0, len(d.Objects))}
		for i := range d.Objects {
			c, err := s.decode(&d.Objects[i])
			if err != nil {
				return nil, err
			}
			g.Children = append(g.Children, c)
		}
		obj = g
	default:
		return nil, fmt.Errorf("scene: unknown object type %q", d.Type)
	}
	if d.Data == nil {
		return nil, fmt.Errorf("scene: %s object: %w", d.Type, ErrMissingMetadata)
	}
	if err := s.Attach(obj, d.Data); err != nil {
		return nil, err
	}
	return obj, nil
}
