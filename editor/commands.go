package editor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/layer"
	"github.com/gogpu/studio/scene"
)

// Editor command errors.
var (
	ErrNotText   = errors.New("editor: layer is not text")
	ErrShortPath = errors.New("editor: path needs at least two points")
)

// DuplicateOffset is the distance a duplicate is shifted on both axes.
const DuplicateOffset = 20

// Outcome reports the layers a command created or affected.
type Outcome struct {
	LayerIDs []string
}

// Command is a scene mutation applied by Editor.Execute.
type Command interface {
	apply(e *Editor) (Outcome, error)
}

// preparer is implemented by commands that do blocking work, such as image
// resolution, before the editor lock is taken.
type preparer interface {
	prepare(ctx context.Context, f *scene.Factory) (Command, error)
}

// AddText adds a user text layer and selects it. A nil Position places the
// text near the canvas center.
type AddText struct {
	Text       string
	Position   *layer.Position
	FontFamily string
	FontSize   float64
	Fill       string
}

func (c AddText) apply(e *Editor) (Outcome, error) {
	pos := layer.At(e.scene.Width()/2-100, e.scene.Height()/2)
	if c.Position != nil {
		if c.Position.X != nil {
			pos.X = c.Position.X
		}
		if c.Position.Y != nil {
			pos.Y = c.Position.Y
		}
	}
	d := &layer.TextLayer{
		Base: layer.Base{
			SemanticTag: layer.TagTypography,
			Origin:      layer.OriginUser,
			Position:    pos,
		},
		Text:       norm.NFC.String(c.Text),
		FontFamily: c.FontFamily,
		FontSize:   c.FontSize,
		Fill:       c.Fill,
	}
	obj := e.factory.CreateText(d)
	md := layer.BuildMetadata(d, layer.Overrides{
		Name:   "Text",
		Origin: layer.OriginUser,
		ZIndex: layer.Int(e.scene.Len()),
	})
	if err := e.scene.Add(obj, md); err != nil {
		return Outcome{}, err
	}
	e.setSelection([]scene.Object{obj})
	return Outcome{LayerIDs: []string{md.ID}}, nil
}

// AddImage adds a user image layer and selects it. Without Width or Height
// the image covers the canvas; without Position it is centered. Load
// failures are returned as *studio.ImageLoadError.
type AddImage struct {
	Source   string
	Position *layer.Position
	Width    float64
	Height   float64
}

func (c AddImage) prepare(ctx context.Context, f *scene.Factory) (Command, error) {
	img, err := f.CreateImage(ctx, &layer.ImageLayer{Source: c.Source})
	if err != nil {
		studio.Logger().Warn("editor: add image failed", "err", err)
		return nil, err
	}
	return addResolvedImage{AddImage: c, img: img}, nil
}

func (c AddImage) apply(*Editor) (Outcome, error) {
	return Outcome{}, errors.New("editor: AddImage applied without resolution")
}

type addResolvedImage struct {
	AddImage
	img *scene.Image
}

func (c addResolvedImage) apply(e *Editor) (Outcome, error) {
	img := c.img
	w, h := e.scene.Width(), e.scene.Height()
	if img.Width > 0 && img.Height > 0 {
		scale := max(w/img.Width, h/img.Height)
		switch {
		case c.Width > 0:
			scale = c.Width / img.Width
		case c.Height > 0:
			scale = c.Height / img.Height
		}
		img.ScaleX, img.ScaleY = scale, scale
	}
	sw, sh := img.ScaledSize()
	img.Left, img.Top = (w-sw)/2, (h-sh)/2
	if c.Position != nil {
		if c.Position.X != nil {
			img.Left = *c.Position.X
		}
		if c.Position.Y != nil {
			img.Top = *c.Position.Y
		}
	}

	d := &layer.ImageLayer{
		Base: layer.Base{
			SemanticTag: layer.TagUser,
			Origin:      layer.OriginUser,
			Position:    layer.At(img.Left, img.Top),
			Size:        &layer.Size{ScaleX: layer.Float(img.ScaleX), ScaleY: layer.Float(img.ScaleY)},
		},
		Source: c.Source,
	}
	md := layer.BuildMetadata(d, layer.Overrides{ZIndex: layer.Int(e.scene.Len())})
	if err := e.scene.Add(img, md); err != nil {
		return Outcome{}, err
	}
	e.setSelection([]scene.Object{img})
	return Outcome{LayerIDs: []string{md.ID}}, nil
}

// Move places a layer's top-left corner at (Left, Top). Coordinates are
// canvas coordinates for top-level layers and relative to the group origin
// for layers inside a group.
type Move struct {
	ID        string
	Left, Top float64
}

func (c Move) apply(e *Editor) (Outcome, error) {
	obj, _, err := e.find(c.ID)
	if err != nil {
		return Outcome{}, err
	}
	p := obj.Common()
	if p.Locks.MovementX || p.Locks.MovementY {
		return Outcome{}, fmt.Errorf("%w: %s", studio.ErrLocked, c.ID)
	}
	if p.Left == c.Left && p.Top == c.Top {
		return Outcome{}, errUnchanged
	}
	p.Left, p.Top = c.Left, c.Top
	return Outcome{LayerIDs: []string{c.ID}}, nil
}

// Transform changes a layer's geometry. Nil fields are left unchanged.
// Left and Top are relative to the group origin for grouped layers, as in
// Move.
// Width and Height are target sizes converted to scale factors; explicit
// scale factors win.
type Transform struct {
	ID            string
	Left, Top     *float64
	Width, Height *float64
	ScaleX        *float64
	ScaleY        *float64
	Angle         *float64
	Opacity       *float64
}

func (c Transform) apply(e *Editor) (Outcome, error) {
	obj, _, err := e.find(c.ID)
	if err != nil {
		return Outcome{}, err
	}
	p := obj.Common()
	l := p.Locks
	if (c.Left != nil && l.MovementX) || (c.Top != nil && l.MovementY) ||
		((c.Width != nil || c.ScaleX != nil) && l.ScalingX) ||
		((c.Height != nil || c.ScaleY != nil) && l.ScalingY) ||
		(c.Angle != nil && l.Rotation) {
		return Outcome{}, fmt.Errorf("%w: %s", studio.ErrLocked, c.ID)
	}
	scene.ApplyTransform(obj, &layer.ImageLayer{Base: layer.Base{
		Position: &layer.Position{X: c.Left, Y: c.Top},
		Size:     &layer.Size{Width: c.Width, Height: c.Height, ScaleX: c.ScaleX, ScaleY: c.ScaleY},
		Opacity:  c.Opacity,
	}})
	if c.Angle != nil {
		p.Angle = *c.Angle
	}
	return Outcome{LayerIDs: []string{c.ID}}, nil
}

// SetVisibility shows or hides a layer. Lock state is not affected.
type SetVisibility struct {
	ID      string
	Visible bool
}

func (c SetVisibility) apply(e *Editor) (Outcome, error) {
	obj, _, err := e.find(c.ID)
	if err != nil {
		return Outcome{}, err
	}
	if obj.Common().Visible == c.Visible {
		return Outcome{}, errUnchanged
	}
	obj.Common().Visible = c.Visible
	return Outcome{LayerIDs: []string{c.ID}}, nil
}

// ToggleVisibility flips a layer's visibility.
type ToggleVisibility struct {
	ID string
}

func (c ToggleVisibility) apply(e *Editor) (Outcome, error) {
	obj, _, err := e.find(c.ID)
	if err != nil {
		return Outcome{}, err
	}
	return SetVisibility{ID: c.ID, Visible: !obj.Common().Visible}.apply(e)
}

// SetLocked locks or unlocks a layer. Unlocking a background keeps it
// unselectable.
type SetLocked struct {
	ID     string
	Locked bool
}

func (c SetLocked) apply(e *Editor) (Outcome, error) {
	obj, md, err := e.find(c.ID)
	if err != nil {
		return Outcome{}, err
	}
	p := obj.Common()
	if c.Locked {
		p.Lock()
		if e.isSelected(obj) {
			e.setSelection(slices.DeleteFunc(e.selected(), func(o scene.Object) bool { return o.ID() == obj.ID() }))
		}
	} else {
		p.Unlock()
		if md.SemanticTag == layer.TagBackground {
			p.Selectable = false
		}
	}
	md.Locked = c.Locked
	return Outcome{LayerIDs: []string{c.ID}}, nil
}

// Rename sets a layer's display name. An empty name restores the tag's
// fallback name.
type Rename struct {
	ID   string
	Name string
}

func (c Rename) apply(e *Editor) (Outcome, error) {
	_, md, err := e.find(c.ID)
	if err != nil {
		return Outcome{}, err
	}
	name := cmp.Or(c.Name, md.SemanticTag.FallbackName())
	if md.Name == name {
		return Outcome{}, errUnchanged
	}
	md.Name = name
	return Outcome{LayerIDs: []string{c.ID}}, nil
}

// EditText replaces the content of a text layer and re-measures it.
type EditText struct {
	ID   string
	Text string
}

func (c EditText) apply(e *Editor) (Outcome, error) {
	obj, md, err := e.find(c.ID)
	if err != nil {
		return Outcome{}, err
	}
	t, ok := obj.(*scene.Text)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrNotText, c.ID)
	}
	s := norm.NFC.String(c.Text)
	if t.Text == s {
		return Outcome{}, errUnchanged
	}
	t.Text = s
	e.factory.Remeasure(t)
	md.Text = s
	return Outcome{LayerIDs: []string{c.ID}}, nil
}

// Duplicate copies layers, or the selection when IDs is empty. Copies are
// offset by DuplicateOffset and inserted at the paint index given by the
// source's zIndex+1, which is right above the source only while zIndex
// values match paint order. The last copy is selected. Nothing changes when
// any copy fails.
type Duplicate struct {
	IDs []string
}

func (c Duplicate) apply(e *Editor) (Outcome, error) {
	srcs, err := e.targets(c.IDs)
	if err != nil {
		return Outcome{}, err
	}

	type dup struct {
		obj scene.Object
		md  *layer.Metadata
		src *layer.Metadata
	}
	dups := make([]dup, 0, len(srcs))
	for _, src := range srcs {
		clone, err := scene.Clone(src)
		if err != nil {
			studio.Logger().Warn("editor: duplicate failed", "err", err)
			return Outcome{}, err
		}
		p := clone.Common()
		p.Left += DuplicateOffset
		p.Top += DuplicateOffset

		srcMD := e.scene.Metadata(src)
		md := duplicateMetadata(srcMD)
		md.Name = cmp.Or(srcMD.Name, "Layer") + " Copy"
		md.ZIndex = srcMD.ZIndex + 1
		dups = append(dups, dup{obj: clone, md: md, src: srcMD})
	}

	out := Outcome{LayerIDs: make([]string, 0, len(dups))}
	for i, d := range dups {
		if err := e.attachCopies(srcs[i], d.obj, d.md); err != nil {
			return Outcome{}, err
		}
		if err := e.scene.Add(d.obj, d.md); err != nil {
			return Outcome{}, err
		}
		e.scene.MoveTo(d.obj, d.md.ZIndex)
		out.LayerIDs = append(out.LayerIDs, d.md.ID)
	}
	e.setSelection([]scene.Object{dups[len(dups)-1].obj})
	return out, nil
}

// attachCopies registers fresh metadata for the descendants of a cloned
// group and rewrites the copy's groupedChildIds.
func (e *Editor) attachCopies(src, clone scene.Object, md *layer.Metadata) error {
	sg, ok := src.(*scene.Group)
	if !ok {
		return nil
	}
	cg := clone.(*scene.Group)
	ids := make([]string, 0, len(cg.Children))
	for i, child := range cg.Children {
		childMD := duplicateMetadata(e.scene.Metadata(sg.Children[i]))
		if err := e.attachCopies(sg.Children[i], child, childMD); err != nil {
			return err
		}
		if err := e.scene.Attach(child, childMD); err != nil {
			return err
		}
		ids = append(ids, childMD.ID)
	}
	if md.IsGroup {
		md.Additional[layer.KeyGroupedChildIDs] = ids
	}
	return nil
}

func duplicateMetadata(src *layer.Metadata) *layer.Metadata {
	md := src.Clone()
	md.ID = layer.NewID(src.SemanticTag)
	md.Origin = layer.OriginUser
	md.CreatedAt = layer.Now()
	md.Additional[layer.KeyDuplicatedFrom] = src.ID
	return md
}

// Delete removes layers, or the selection when IDs is empty, and clears
// the selection.
type Delete struct {
	IDs []string
}

func (c Delete) apply(e *Editor) (Outcome, error) {
	objs, err := e.targets(c.IDs)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{LayerIDs: make([]string, 0, len(objs))}
	for _, obj := range objs {
		out.LayerIDs = append(out.LayerIDs, e.scene.Metadata(obj).ID)
		e.scene.Remove(obj)
	}
	e.setSelection(nil)
	return out, nil
}

// Group merges two or more layers, or the selection when IDs is empty,
// into one group placed at the lowest member zIndex. The group is selected.
type Group struct {
	IDs []string
}

func (c Group) apply(e *Editor) (Outcome, error) {
	members, err := e.targets(c.IDs)
	if err != nil {
		return Outcome{}, err
	}
	if len(members) < 2 {
		return Outcome{}, studio.ErrSelectionTooSmall
	}

	ref := e.scene.Metadata(members[0])
	zIndex := ref.ZIndex
	childIDs := make([]string, len(members))
	for i, obj := range members {
		md := e.scene.Metadata(obj)
		childIDs[i] = md.ID
		zIndex = min(zIndex, md.ZIndex)
	}
	// children keep their relative paint order
	ordered := slices.Clone(members)
	slices.SortFunc(ordered, func(a, b scene.Object) int {
		return cmp.Compare(e.scene.IndexOf(a), e.scene.IndexOf(b))
	})

	md := &layer.Metadata{
		ID:          layer.NewID(ref.SemanticTag),
		Name:        "Layer Group",
		SemanticTag: ref.SemanticTag,
		Origin:      cmp.Or(ref.Origin, layer.OriginUser),
		ZIndex:      zIndex,
		GroupID:     ref.GroupID,
		CreatedAt:   layer.Now(),
		Additional:  ref.Clone().Additional,
		IsGroup:     true,
	}
	if ref.Name != "" {
		md.Name = ref.Name + " Group"
	}
	md.Additional[layer.KeyGroupedChildIDs] = childIDs

	for _, obj := range ordered {
		e.scene.Detach(obj)
	}
	g := scene.NewGroup(ordered)
	if err := e.scene.Add(g, md); err != nil {
		return Outcome{}, err
	}
	e.scene.MoveTo(g, zIndex)
	e.setSelection([]scene.Object{g})
	return Outcome{LayerIDs: []string{md.ID}}, nil
}

// Ungroup dissolves a group, or the first selected object when ID is
// empty. Children return at their absolute positions and their own zIndex.
type Ungroup struct {
	ID string
}

func (c Ungroup) apply(e *Editor) (Outcome, error) {
	var ids []string
	if c.ID != "" {
		ids = []string{c.ID}
	}
	objs, err := e.targets(ids)
	if err != nil {
		return Outcome{}, err
	}
	g, ok := objs[0].(*scene.Group)
	if !ok {
		return Outcome{}, studio.ErrNotGroup
	}

	children := g.Release()
	e.scene.Remove(g)
	out := Outcome{LayerIDs: make([]string, 0, len(children))}
	for _, child := range children {
		md := e.scene.Metadata(child)
		if err := e.scene.Add(child, md); err != nil {
			return Outcome{}, err
		}
		e.scene.MoveTo(child, md.ZIndex)
		out.LayerIDs = append(out.LayerIDs, md.ID)
	}
	e.setSelection(nil)
	return out, nil
}

// ReorderOp is a z-order move.
type ReorderOp uint8

// Z-order moves.
const (
	BringToFront ReorderOp = iota
	SendToBack
	BringForward
	SendBackward
)

// Reorder moves layers, or the selection when IDs is empty, in paint
// order. Afterwards every top-level zIndex equals its paint index.
type Reorder struct {
	IDs []string
	Op  ReorderOp
}

func (c Reorder) apply(e *Editor) (Outcome, error) {
	objs, err := e.targets(c.IDs)
	if err != nil {
		return Outcome{}, err
	}
	before := e.scene.Objects()

	// order the moves so the moved objects keep their relative order
	slices.SortFunc(objs, func(a, b scene.Object) int {
		return cmp.Compare(e.scene.IndexOf(a), e.scene.IndexOf(b))
	})
	if c.Op == BringForward || c.Op == SendToBack {
		slices.Reverse(objs)
	}
	for _, obj := range objs {
		switch c.Op {
		case BringToFront:
			e.scene.BringToFront(obj)
		case SendToBack:
			e.scene.SendToBack(obj)
		case BringForward:
			e.scene.BringForward(obj)
		case SendBackward:
			e.scene.SendBackward(obj)
		default:
			return Outcome{}, fmt.Errorf("editor: unknown reorder op %d", c.Op)
		}
	}
	if slices.Equal(before, e.scene.Objects()) {
		return Outcome{}, errUnchanged
	}
	for i, obj := range e.scene.Objects() {
		e.scene.Metadata(obj).ZIndex = i
	}
	return Outcome{}, nil
}
