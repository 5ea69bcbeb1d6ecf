package editor

import (
	"fmt"
	"slices"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/layer"
	"github.com/gogpu/studio/scene"
	"github.com/gogpu/studio/snap"
)

type dragState struct {
	obj            scene.Object
	startX, startY float64
}

// SelectLayer selects the top-level object that is, or contains, the layer
// with the given id, replacing the previous selection.
func (e *Editor) SelectLayer(id string) error {
	return e.SelectLayers(id)
}

// SelectLayers replaces the selection. Unknown ids leave the selection
// unchanged.
func (e *Editor) SelectLayers(ids ...string) error {
	e.mu.Lock()
	var err error
	if len(ids) == 0 {
		e.setSelection(nil)
	} else {
		var objs []scene.Object
		if objs, err = e.targets(ids); err == nil {
			e.setSelection(objs)
		}
	}
	ev := e.flush()
	e.mu.Unlock()

	ev.dispatch()
	return err
}

// SelectByTag selects every selectable top-level layer with the given
// semantic tag and returns how many were selected.
func (e *Editor) SelectByTag(tag layer.SemanticTag) int {
	e.mu.Lock()
	var objs []scene.Object
	for _, obj := range e.scene.Objects() {
		md := e.scene.Metadata(obj)
		if md != nil && md.SemanticTag == tag && obj.Common().Selectable {
			objs = append(objs, obj)
		}
	}
	e.setSelection(objs)
	ev := e.flush()
	e.mu.Unlock()

	ev.dispatch()
	return len(objs)
}

// ClearSelection empties the selection and ends any drag in progress.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	e.endDrag(true)
	e.setSelection(nil)
	ev := e.flush()
	e.mu.Unlock()

	ev.dispatch()
}

// Selection returns the layer ids of the selected objects in selection
// order.
func (e *Editor) Selection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedIDs()
}

// setSelection replaces the selection and queues a notification when it
// changed. Callers hold e.mu.
func (e *Editor) setSelection(objs []scene.Object) {
	ids := make([]scene.ObjectID, len(objs))
	for i, obj := range objs {
		ids[i] = obj.ID()
	}
	if slices.Equal(ids, e.selection) {
		return
	}
	e.selection = ids
	e.pending.selection = true
}

// selected returns the selected objects still in the scene.
func (e *Editor) selected() []scene.Object {
	objs := make([]scene.Object, 0, len(e.selection))
	for _, id := range e.selection {
		for _, obj := range e.scene.Objects() {
			if obj.ID() == id {
				objs = append(objs, obj)
				break
			}
		}
	}
	return objs
}

func (e *Editor) selectedIDs() []string {
	objs := e.selected()
	ids := make([]string, 0, len(objs))
	for _, obj := range objs {
		if md := e.scene.Metadata(obj); md != nil {
			ids = append(ids, md.ID)
		}
	}
	return ids
}

func (e *Editor) isSelected(obj scene.Object) bool {
	return slices.Contains(e.selection, obj.ID())
}

// BeginDrag starts a drag gesture on the top-level object carrying id and
// selects it.
func (e *Editor) BeginDrag(id string) error {
	e.mu.Lock()
	obj, err := e.findTop(id)
	if err == nil && obj.Common().Locked() {
		err = fmt.Errorf("%w: %s", studio.ErrLocked, id)
	}
	if err == nil {
		e.endDrag(true)
		p := obj.Common()
		e.drag = &dragState{obj: obj, startX: p.Left, startY: p.Top}
		e.snap.Begin(obj)
		if !e.isSelected(obj) {
			e.setSelection([]scene.Object{obj})
		}
	}
	ev := e.flush()
	e.mu.Unlock()

	ev.dispatch()
	return err
}

// DragTo moves the dragged object's top-left corner to (left, top) and
// snaps it. The returned result holds the final position and the guides
// drawn for this tick.
func (e *Editor) DragTo(left, top float64) (snap.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag == nil {
		return snap.Result{}, studio.ErrNotDragging
	}
	p := e.drag.obj.Common()
	if !p.Locks.MovementX {
		p.Left = left
	}
	if !p.Locks.MovementY {
		p.Top = top
	}
	return e.snap.Move(e.drag.obj)
}

// EndDrag finishes the gesture, clears the guides and records one history
// snapshot if the object moved.
func (e *Editor) EndDrag() error {
	e.mu.Lock()
	if e.drag == nil {
		e.mu.Unlock()
		return studio.ErrNotDragging
	}
	e.endDrag(true)
	ev := e.flush()
	e.mu.Unlock()

	ev.dispatch()
	return nil
}

// CancelDrag abandons the gesture and puts the object back where it
// started.
func (e *Editor) CancelDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag == nil {
		return
	}
	p := e.drag.obj.Common()
	p.Left, p.Top = e.drag.startX, e.drag.startY
	e.drag = nil
	e.snap.Cancel()
}

// endDrag stops a drag in progress. With keep set, a moved object stays
// where it is and the move is committed; otherwise the drag is dropped.
// Callers hold e.mu.
func (e *Editor) endDrag(keep bool) {
	if e.drag == nil {
		return
	}
	d := e.drag
	e.drag = nil
	e.snap.End()
	p := d.obj.Common()
	if keep && (p.Left != d.startX || p.Top != d.startY) {
		e.commit()
	}
}
