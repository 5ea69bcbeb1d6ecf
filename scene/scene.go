package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/layer"
)

// ErrMissingMetadata is returned when an object is added without metadata.
var ErrMissingMetadata = errors.New("scene: object has no metadata")

// Scene is the live composition: top-level objects in paint order
// (index 0 is painted first) plus the metadata of every object, including
// group children.
type Scene struct {
	width, height float64

	objects []Object
	meta    map[ObjectID]*layer.Metadata
	byLayer map[string]ObjectID
	guides  []Guide
}

// New returns an empty scene with the given canvas size.
func New(width, height float64) *Scene {
	return &Scene{
		width:   width,
		height:  height,
		meta:    make(map[ObjectID]*layer.Metadata),
		byLayer: make(map[string]ObjectID),
	}
}

// Width returns the canvas width.
func (s *Scene) Width() float64 { return s.width }

// Height returns the canvas height.
func (s *Scene) Height() float64 { return s.height }

// SetSize changes the canvas size. Objects are not moved.
func (s *Scene) SetSize(width, height float64) {
	s.width, s.height = width, height
}

// Len returns the number of top-level objects.
func (s *Scene) Len() int { return len(s.objects) }

// Objects returns the top-level objects in paint order.
func (s *Scene) Objects() []Object { return slices.Clone(s.objects) }

// At returns the top-level object at paint index i.
func (s *Scene) At(i int) Object { return s.objects[i] }

// Add registers md for obj and appends obj on top of the paint order.
func (s *Scene) Add(obj Object, md *layer.Metadata) error {
	if err := s.Attach(obj, md); err != nil {
		return err
	}
	s.objects = append(s.objects, obj)
	return nil
}

// Insert adds obj at paint index i, clamped to the valid range.
func (s *Scene) Insert(obj Object, md *layer.Metadata, i int) error {
	if err := s.Attach(obj, md); err != nil {
		return err
	}
	i = clamp(i, 0, len(s.objects))
	s.objects = slices.Insert(s.objects, i, obj)
	return nil
}

// Attach registers md for obj without placing it in the paint order.
// It is used for group children.
func (s *Scene) Attach(obj Object, md *layer.Metadata) error {
	if md == nil {
		return ErrMissingMetadata
	}
	if owner, ok := s.byLayer[md.ID]; ok && owner != obj.ID() {
		return fmt.Errorf("%w: %s", studio.ErrDuplicateLayerID, md.ID)
	}
	if old, ok := s.meta[obj.ID()]; ok && old.ID != md.ID {
		delete(s.byLayer, old.ID)
	}
	s.meta[obj.ID()] = md
	s.byLayer[md.ID] = obj.ID()
	return nil
}

// Remove takes a top-level object out of the scene and forgets the
// metadata of obj and all its descendants.
func (s *Scene) Remove(obj Object) bool {
	if !s.Detach(obj) {
		return false
	}
	Walk(obj, func(o Object) bool {
		s.forget(o)
		return true
	})
	return true
}

// Detach takes a top-level object out of the paint order. Its metadata
// stays registered, so the object can be re-parented into a group.
func (s *Scene) Detach(obj Object) bool {
	i := s.IndexOf(obj)
	if i < 0 {
		return false
	}
	s.objects = slices.Delete(s.objects, i, i+1)
	return true
}

func (s *Scene) forget(obj Object) {
	if md, ok := s.meta[obj.ID()]; ok {
		delete(s.byLayer, md.ID)
		delete(s.meta, obj.ID())
	}
}

// Clear removes every object and guide.
func (s *Scene) Clear() {
	s.objects = nil
	clear(s.meta)
	clear(s.byLayer)
	s.guides = nil
}

// IndexOf returns the paint index of a top-level object, or -1.
func (s *Scene) IndexOf(obj Object) int {
	return slices.IndexFunc(s.objects, func(o Object) bool { return o.ID() == obj.ID() })
}

// MoveTo moves a top-level object to paint index i, clamped to the valid
// range.
func (s *Scene) MoveTo(obj Object, i int) bool {
	from := s.IndexOf(obj)
	if from < 0 {
		return false
	}
	s.objects = slices.Delete(s.objects, from, from+1)
	i = clamp(i, 0, len(s.objects))
	s.objects = slices.Insert(s.objects, i, obj)
	return true
}

// BringToFront paints obj last.
func (s *Scene) BringToFront(obj Object) bool { return s.MoveTo(obj, len(s.objects)) }

// SendToBack paints obj first.
func (s *Scene) SendToBack(obj Object) bool { return s.MoveTo(obj, 0) }

// BringForward swaps obj with the object painted right after it.
func (s *Scene) BringForward(obj Object) bool {
	i := s.IndexOf(obj)
	if i < 0 || i == len(s.objects)-1 {
		return false
	}
	s.objects[i], s.objects[i+1] = s.objects[i+1], s.objects[i]
	return true
}

// SendBackward swaps obj with the object painted right before it.
func (s *Scene) SendBackward(obj Object) bool {
	i := s.IndexOf(obj)
	if i <= 0 {
		return false
	}
	s.objects[i], s.objects[i-1] = s.objects[i-1], s.objects[i]
	return true
}

// Metadata returns the metadata attached to obj, or nil.
func (s *Scene) Metadata(obj Object) *layer.Metadata {
	return s.meta[obj.ID()]
}

// Find returns the object, top-level or nested, carrying layer id.
func (s *Scene) Find(id string) (Object, bool) {
	oid, ok := s.byLayer[id]
	if !ok {
		return nil, false
	}
	var found Object
	for _, top := range s.objects {
		Walk(top, func(o Object) bool {
			if o.ID() == oid {
				found = o
				return false
			}
			return true
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

// FindTopLevel returns the top-level object that is, or contains, the
// object carrying layer id.
func (s *Scene) FindTopLevel(id string) (Object, bool) {
	oid, ok := s.byLayer[id]
	if !ok {
		return nil, false
	}
	for _, top := range s.objects {
		hit := false
		Walk(top, func(o Object) bool {
			hit = o.ID() == oid
			return !hit
		})
		if hit {
			return top, true
		}
	}
	return nil, false
}

// Guides returns the current snapping guides.
func (s *Scene) Guides() []Guide { return slices.Clone(s.guides) }

// SetGuides replaces the guide overlay.
func (s *Scene) SetGuides(g []Guide) { s.guides = slices.Clone(g) }

// ClearGuides removes every guide.
func (s *Scene) ClearGuides() { s.guides = nil }

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
