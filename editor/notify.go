package editor

import (
	"slices"

	"github.com/gogpu/studio/scene"
)

type listeners struct {
	selection []func([]string)
	layers    []func()
	snapshot  []func(scene.Snapshot)
}

// events queued while the lock is held.
type events struct {
	selection bool
	layers    bool
	snapshot  scene.Snapshot

	selected []string
	l        listeners
}

// OnSelectionChanged registers fn to receive the selected layer ids after
// every selection change.
func (e *Editor) OnSelectionChanged(fn func(ids []string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners.selection = append(e.listeners.selection, fn)
}

// OnLayersChanged registers fn to be called after layers are added,
// removed or modified.
func (e *Editor) OnLayersChanged(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners.layers = append(e.listeners.layers, fn)
}

// OnSnapshot registers fn to receive the scene snapshot after every
// recorded edit, undo and redo. It is intended for autosave.
func (e *Editor) OnSnapshot(fn func(scene.Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners.snapshot = append(e.listeners.snapshot, fn)
}

// flush takes the pending events together with the listeners to notify.
// Callers hold e.mu.
func (e *Editor) flush() events {
	ev := e.pending
	e.pending = events{}
	if ev.selection {
		ev.selected = e.selectedIDs()
	}
	ev.l = listeners{
		selection: slices.Clone(e.listeners.selection),
		layers:    slices.Clone(e.listeners.layers),
		snapshot:  slices.Clone(e.listeners.snapshot),
	}
	return ev
}

func (ev events) dispatch() {
	if ev.layers {
		for _, fn := range ev.l.layers {
			fn()
		}
	}
	if ev.selection {
		for _, fn := range ev.l.selection {
			fn(slices.Clone(ev.selected))
		}
	}
	if ev.snapshot != nil {
		for _, fn := range ev.l.snapshot {
			fn(ev.snapshot)
		}
	}
}
