package scene

import "github.com/gogpu/studio"

// Group is a container whose children are positioned relative to the
// group's top-left corner.
type Group struct {
	Props
	Children []Object
}

// Kind implements Object.
func (*Group) Kind() Kind { return KindGroup }
func (*Group) sealed()    {}

// NewGroup wraps children into a group sized to the union of their bounds.
// Children keep their paint order and their on-canvas placement.
func NewGroup(children []Object) *Group {
	g := &Group{Props: newProps(0, 0)}
	if len(children) == 0 {
		return g
	}
	bounds := children[0].Common().BoundingRect()
	for _, c := range children[1:] {
		bounds = bounds.Union(c.Common().BoundingRect())
	}
	g.Left, g.Top = bounds.Left, bounds.Top
	g.Width, g.Height = bounds.Width, bounds.Height
	g.Children = make([]Object, len(children))
	for i, c := range children {
		p := c.Common()
		p.Left -= bounds.Left
		p.Top -= bounds.Top
		g.Children[i] = c
	}
	return g
}

// Release empties the group and returns its children with their transforms
// expressed in the group's parent space.
func (g *Group) Release() []Object {
	gm := g.Matrix()
	out := g.Children
	for _, c := range out {
		p := c.Common()
		m := gm.Multiply(p.Matrix())
		origin := m.TransformPoint(studio.Pt(0, 0))
		p.Left, p.Top = origin.X, origin.Y
		p.ScaleX, p.ScaleY = m.ScaleFactors()
		p.Angle = m.Angle()
		p.Opacity *= g.Opacity
	}
	g.Children = nil
	g.Width, g.Height = 0, 0
	return out
}

// ChildBoundingRect returns the canvas-space bounds of a direct child.
func (g *Group) ChildBoundingRect(child Object) studio.Rect {
	p := child.Common()
	return g.Matrix().Multiply(p.Matrix()).TransformRect(p.Width, p.Height)
}
