// Package history records full scene snapshots and provides bounded
// undo/redo over them.
//
// Every capture truncates the redo branch, appends the current snapshot and
// drops the oldest entries beyond the limit. Captures requested while a
// hydration is in progress (undo, redo, project load) are ignored so that
// restoring a snapshot never records itself.
package history

import (
	"fmt"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/scene"
)

// DefaultLimit is the default number of retained snapshots.
const DefaultLimit = 50

// Target is the state being recorded. *scene.Scene implements it.
type Target interface {
	Snapshot() (scene.Snapshot, error)
	Restore(scene.Snapshot) error
}

// State summarizes the manager's position for UI flags.
type State struct {
	Index   int
	Len     int
	CanUndo bool
	CanRedo bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit sets the maximum number of retained snapshots. Values below 1
// are ignored.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n >= 1 {
			m.limit = n
		}
	}
}

// WithOnChange registers fn to be called after every change of State.
func WithOnChange(fn func(State)) Option {
	return func(m *Manager) { m.onChange = fn }
}

// Manager is a bounded snapshot history. It is not safe for concurrent use.
type Manager struct {
	target   Target
	limit    int
	onChange func(State)

	entries   []scene.Snapshot
	index     int
	hydrating int
}

// New returns a manager recording target. Call Init before use.
func New(target Target, opts ...Option) *Manager {
	m := &Manager{target: target, limit: DefaultLimit}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init discards all entries and records the target's current state as
// index 0.
func (m *Manager) Init() error {
	snap, err := m.target.Snapshot()
	if err != nil {
		return fmt.Errorf("history: init: %w", err)
	}
	m.entries = []scene.Snapshot{snap}
	m.index = 0
	m.notify()
	return nil
}

// Capture records the target's current state. It is a no-op during
// hydration.
func (m *Manager) Capture() error {
	if m.hydrating > 0 {
		studio.Logger().Debug("history: capture suppressed during hydration")
		return nil
	}
	snap, err := m.target.Snapshot()
	if err != nil {
		return fmt.Errorf("history: capture: %w", err)
	}
	if len(m.entries) > 0 {
		m.entries = m.entries[:m.index+1]
	}
	m.entries = append(m.entries, snap)
	if over := len(m.entries) - m.limit; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
	}
	m.index = len(m.entries) - 1
	m.notify()
	return nil
}

// Undo restores the previous entry. It returns studio.ErrHistoryBounds at
// the oldest entry, leaving the target untouched.
func (m *Manager) Undo() error {
	if !m.CanUndo() {
		m.notify()
		return studio.ErrHistoryBounds
	}
	return m.moveTo(m.index - 1)
}

// Redo restores the next entry. It returns studio.ErrHistoryBounds at the
// newest entry.
func (m *Manager) Redo() error {
	if !m.CanRedo() {
		m.notify()
		return studio.ErrHistoryBounds
	}
	return m.moveTo(m.index + 1)
}

func (m *Manager) moveTo(i int) error {
	err := m.Hydrate(func() error {
		return m.target.Restore(m.entries[i])
	})
	if err != nil {
		return fmt.Errorf("history: restore entry %d: %w", i, err)
	}
	m.index = i
	m.notify()
	return nil
}

// Hydrate runs fn with captures suppressed. Calls may nest.
func (m *Manager) Hydrate(fn func() error) error {
	m.hydrating++
	defer func() { m.hydrating-- }()
	return fn()
}

// Hydrating reports whether a hydration is in progress.
func (m *Manager) Hydrating() bool { return m.hydrating > 0 }

// CanUndo reports whether an older entry exists.
func (m *Manager) CanUndo() bool { return m.index > 0 }

// CanRedo reports whether a newer entry exists.
func (m *Manager) CanRedo() bool { return m.index < len(m.entries)-1 }

// Len returns the number of retained snapshots.
func (m *Manager) Len() int { return len(m.entries) }

// Index returns the position of the current entry.
func (m *Manager) Index() int { return m.index }

// Limit returns the maximum number of retained snapshots.
func (m *Manager) Limit() int { return m.limit }

// Current returns the snapshot at the current index, or nil before Init.
func (m *Manager) Current() scene.Snapshot {
	if len(m.entries) == 0 {
		return nil
	}
	return m.entries[m.index]
}

// State returns the current position and flags.
func (m *Manager) State() State {
	return State{Index: m.index, Len: len(m.entries), CanUndo: m.CanUndo(), CanRedo: m.CanRedo()}
}

func (m *Manager) notify() {
	if m.onChange != nil {
		m.onChange(m.State())
	}
}
