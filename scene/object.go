// Package scene holds the live composition: positioned image, text, group
// and path objects in paint order, the metadata attached to each of them,
// the snapping guide overlay and the serialized snapshot form used by the
// history manager.
//
// Objects carry only an opaque ObjectID; their semantic metadata lives in
// the Scene and is looked up by id. A Scene is a single-writer resource and
// is not safe for concurrent use.
package scene

import (
	"sync/atomic"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/layer"
)

// ObjectID is the opaque handle of a scene object.
type ObjectID uint64

var lastID atomic.Uint64

func nextID() ObjectID { return ObjectID(lastID.Add(1)) }

// Kind identifies the concrete type of an Object.
type Kind uint8

// Object kinds.
const (
	KindImage Kind = iota + 1
	KindText
	KindGroup
	KindPath
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindGroup:
		return "group"
	case KindPath:
		return "path"
	default:
		return "unknown"
	}
}

// Locks disables interactive transforms on an object.
type Locks struct {
	MovementX bool `json:"lockMovementX,omitempty"`
	MovementY bool `json:"lockMovementY,omitempty"`
	Rotation  bool `json:"lockRotation,omitempty"`
	ScalingX  bool `json:"lockScalingX,omitempty"`
	ScalingY  bool `json:"lockScalingY,omitempty"`
}

// Any reports whether any lock is set.
func (l Locks) Any() bool {
	return l.MovementX || l.MovementY || l.Rotation || l.ScalingX || l.ScalingY
}

// Props are the geometry and interaction flags shared by all objects.
// Width and Height are the natural (unscaled) size; Left and Top place the
// top-left corner.
type Props struct {
	id ObjectID

	Left    float64
	Top     float64
	Width   float64
	Height  float64
	ScaleX  float64
	ScaleY  float64
	Angle   float64 // degrees, clockwise around the top-left corner
	Opacity float64

	Visible    bool
	Selectable bool
	Evented    bool
	Locks      Locks
}

func newProps(width, height float64) Props {
	return Props{
		id:         nextID(),
		Width:      width,
		Height:     height,
		ScaleX:     1,
		ScaleY:     1,
		Opacity:    1,
		Visible:    true,
		Selectable: true,
		Evented:    true,
	}
}

// Common returns p. It lets every object expose its shared properties.
func (p *Props) Common() *Props { return p }

// ID returns the object's handle.
func (p *Props) ID() ObjectID { return p.id }

// Matrix returns the object-to-parent transform.
func (p *Props) Matrix() studio.Matrix {
	return studio.ObjectMatrix(p.Left, p.Top, p.Angle, p.ScaleX, p.ScaleY)
}

// BoundingRect returns the axis-aligned bounds in parent coordinates
// (canvas coordinates for top-level objects).
func (p *Props) BoundingRect() studio.Rect {
	return p.Matrix().TransformRect(p.Width, p.Height)
}

// ScaledSize returns the natural size multiplied by the scale factors.
func (p *Props) ScaledSize() (w, h float64) {
	return p.Width * p.ScaleX, p.Height * p.ScaleY
}

// Lock disables movement, rotation, scaling and selection.
func (p *Props) Lock() {
	p.Locks = Locks{MovementX: true, MovementY: true, Rotation: true, ScalingX: true, ScalingY: true}
	p.Selectable = false
}

// Unlock clears all locks and makes the object selectable again.
func (p *Props) Unlock() {
	p.Locks = Locks{}
	p.Selectable = true
}

// Locked reports whether movement is locked on both axes.
func (p *Props) Locked() bool {
	return p.Locks.MovementX && p.Locks.MovementY
}

// Object is a live scene object. It is implemented by *Image, *Text,
// *Group and *Path.
type Object interface {
	ID() ObjectID
	Common() *Props
	Kind() Kind
	sealed()
}

// Image is a raster object whose pixels the host renders from Source.
// A non-nil Crop selects a region of the source in source pixels.
type Image struct {
	Props
	Source  string
	Format  string
	MaskURL string
	Crop    *studio.Rect
}

// Kind implements Object.
func (*Image) Kind() Kind { return KindImage }
func (*Image) sealed()    {}

// Text is an editable text block. It is always editable in place.
type Text struct {
	Props
	Text       string
	FontFamily string
	FontSize   float64
	FontWeight layer.FontWeight
	LineHeight float64
	TextAlign  layer.TextAlign
	Fill       string
}

// Kind implements Object.
func (*Text) Kind() Kind { return KindText }
func (*Text) sealed()    {}

// Path is a freehand stroke. Points are relative to Left/Top.
type Path struct {
	Props
	Points      []studio.Point
	Stroke      string
	StrokeWidth float64
	Fill        string
}

// Kind implements Object.
func (*Path) Kind() Kind { return KindPath }
func (*Path) sealed()    {}

// NewPath builds a path from absolute canvas points. The path's origin is
// the top-left of the points' bounding box.
func NewPath(points []studio.Point, stroke string, strokeWidth float64) *Path {
	p := &Path{Props: newProps(0, 0), Stroke: stroke, StrokeWidth: strokeWidth}
	if len(points) == 0 {
		return p
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, pt := range points[1:] {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}
	p.Left, p.Top = minX, minY
	p.Width, p.Height = maxX-minX, maxY-minY
	p.Points = make([]studio.Point, len(points))
	origin := studio.Pt(minX, minY)
	for i, pt := range points {
		p.Points[i] = pt.Sub(origin)
	}
	return p
}

// Walk calls fn for obj and, for groups, every descendant in paint order.
// Walking stops when fn returns false.
func Walk(obj Object, fn func(Object) bool) bool {
	if !fn(obj) {
		return false
	}
	if g, ok := obj.(*Group); ok {
		for _, c := range g.Children {
			if !Walk(c, fn) {
				return false
			}
		}
	}
	return true
}
