package scene

import (
	"fmt"
	"slices"

	"github.com/gogpu/studio"
)

// Clone returns a deep copy of obj. The copy and every copied descendant
// get fresh ObjectIDs; metadata is not copied because it is owned by the
// Scene.
func Clone(obj Object) (Object, error) {
	switch o := obj.(type) {
	case *Image:
		c := *o
		c.id = nextID()
		if o.Crop != nil {
			crop := *o.Crop
			c.Crop = &crop
		}
		return &c, nil
	case *Text:
		c := *o
		c.id = nextID()
		return &c, nil
	case *Path:
		c := *o
		c.id = nextID()
		c.Points = slices.Clone(o.Points)
		return &c, nil
	case *Group:
		c := *o
		c.id = nextID()
		c.Children = make([]Object, len(o.Children))
		for i, child := range o.Children {
			cc, err := Clone(child)
			if err != nil {
				return nil, err
			}
			c.Children[i] = cc
		}
		return &c, nil
	default:
		return nil, fmt.Errorf("%w: unsupported object %T", studio.ErrCloneFailure, obj)
	}
}
