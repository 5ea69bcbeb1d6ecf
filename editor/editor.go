// Package editor is the single mutation surface of a composition. It owns
// the scene, the object factory, the import pipeline, the snapping engine,
// the edit history and the current selection.
//
// Every structural change is expressed as a Command applied through
// Execute, which records exactly one history snapshot when the command
// succeeds. Editor methods are safe for concurrent use; they serialize on a
// single writer lock, and listeners run after the lock is released.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/config"
	"github.com/gogpu/studio/history"
	"github.com/gogpu/studio/imagesource"
	"github.com/gogpu/studio/importer"
	"github.com/gogpu/studio/layer"
	"github.com/gogpu/studio/scene"
	"github.com/gogpu/studio/snap"
	"github.com/gogpu/studio/text"
)

// errUnchanged is returned by commands that had nothing to do. Execute
// reports success without recording history.
var errUnchanged = errors.New("editor: unchanged")

type settings struct {
	resolver     imagesource.Resolver
	measurer     *text.Measurer
	snapOpts     []snap.Option
	historyLimit int
	concurrency  int
}

// Option configures an Editor.
type Option func(*settings)

// WithResolver sets the image source resolver. The default is an
// imagesource.Loader.
func WithResolver(r imagesource.Resolver) Option {
	return func(s *settings) { s.resolver = r }
}

// WithMeasurer sets the text measurer used to size text objects.
func WithMeasurer(m *text.Measurer) Option {
	return func(s *settings) { s.measurer = m }
}

// WithSnapOptions configures the snapping engine.
func WithSnapOptions(opts ...snap.Option) Option {
	return func(s *settings) { s.snapOpts = append(s.snapOpts, opts...) }
}

// WithHistoryLimit sets the number of retained undo snapshots.
func WithHistoryLimit(n int) Option {
	return func(s *settings) { s.historyLimit = n }
}

// WithImportConcurrency bounds parallel image resolution during imports.
func WithImportConcurrency(n int) Option {
	return func(s *settings) { s.concurrency = n }
}

// WithConfig applies file configuration: snapping, history, image loading
// and import concurrency. The canvas size is passed to New separately.
func WithConfig(c *config.Config) Option {
	return func(s *settings) {
		s.snapOpts = append(s.snapOpts,
			snap.WithEnabled(!c.Snap.Disabled),
			snap.WithSnapDistance(c.Snap.Distance),
			snap.WithObjectTargets(!c.Snap.NoObject),
			snap.WithCanvasTargets(!c.Snap.NoCanvas),
		)
		if c.Snap.Grid {
			s.snapOpts = append(s.snapOpts, snap.WithGrid(c.Snap.GridSize))
		}
		s.historyLimit = c.History.Limit
		s.concurrency = c.Images.Concurrency
		if s.resolver == nil {
			s.resolver = imagesource.FromConfig(c.Images)
		}
	}
}

// Editor is a composition editing session.
type Editor struct {
	mu sync.Mutex

	scene    *scene.Scene
	factory  *scene.Factory
	pipeline *importer.Pipeline
	snap     *snap.Engine
	history  *history.Manager

	selection []scene.ObjectID
	drag      *dragState

	pending   events
	listeners listeners
}

// New creates an editor for an empty canvas of the given size and records
// it as history index 0.
func New(width, height float64, opts ...Option) (*Editor, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.measurer == nil {
		m, err := text.NewMeasurer()
		if err != nil {
			return nil, fmt.Errorf("editor: %w", err)
		}
		s.measurer = m
	}
	if s.resolver == nil {
		s.resolver = imagesource.NewLoader()
	}

	sc := scene.New(width, height)
	factory := scene.NewFactory(s.resolver, s.measurer)
	e := &Editor{
		scene:    sc,
		factory:  factory,
		pipeline: importer.NewPipeline(factory, importer.WithConcurrency(s.concurrency)),
		snap:     snap.New(sc, s.snapOpts...),
		history:  history.New(sc, history.WithLimit(s.historyLimit)),
	}
	if err := e.history.Init(); err != nil {
		return nil, err
	}
	return e, nil
}

// Execute applies cmd and records one history snapshot if it changed the
// scene.
func (e *Editor) Execute(ctx context.Context, cmd Command) (Outcome, error) {
	if p, ok := cmd.(preparer); ok {
		prepared, err := p.prepare(ctx, e.factory)
		if err != nil {
			return Outcome{}, err
		}
		cmd = prepared
	}

	e.mu.Lock()
	out, err := cmd.apply(e)
	switch {
	case errors.Is(err, errUnchanged):
		err = nil
	case err == nil:
		e.commit()
	default:
		studio.Logger().Debug("editor: command failed", "command", fmt.Sprintf("%T", cmd), "err", err)
	}
	ev := e.flush()
	e.mu.Unlock()

	ev.dispatch()
	return out, err
}

// commit records the current scene in history and queues change
// notifications. Callers hold e.mu.
func (e *Editor) commit() {
	if err := e.history.Capture(); err != nil {
		studio.Logger().Error("editor: history capture failed", "err", err)
	}
	e.pending.layers = true
	e.pending.snapshot = e.history.Current()
}

// Import materializes a parsed layer batch, clears the selection and
// records one history snapshot when the scene changed. Images are resolved
// before the editor lock is taken, against the canvas size at the time of
// the call.
func (e *Editor) Import(ctx context.Context, batch *layer.ParsedLayerBatch, opts importer.Options) (importer.Result, error) {
	e.mu.Lock()
	width, height := e.scene.Width(), e.scene.Height()
	e.mu.Unlock()

	prepared, err := e.pipeline.Prepare(ctx, batch, width, height)
	if err != nil {
		return importer.Result{}, err
	}
	if prepared.Result().Empty {
		return prepared.Result(), nil
	}

	e.mu.Lock()
	e.endDrag(false)
	res, err := e.pipeline.Apply(e.scene, prepared, opts)
	if res.Changed() {
		e.commit()
	}
	e.setSelection(nil)
	ev := e.flush()
	e.mu.Unlock()

	ev.dispatch()
	return res, err
}

// Load replaces the scene with a saved snapshot without recording it, then
// restarts history from the loaded state.
func (e *Editor) Load(snap scene.Snapshot) error {
	return e.hydrate(func() error { return e.scene.Restore(snap) })
}

// Reset clears the scene, as on a tab switch, and restarts history.
func (e *Editor) Reset() error {
	return e.hydrate(func() error {
		e.scene.Clear()
		return nil
	})
}

func (e *Editor) hydrate(fn func() error) error {
	e.mu.Lock()
	e.endDrag(false)
	err := e.history.Hydrate(fn)
	if err == nil {
		err = e.history.Init()
		e.pending.layers = true
	}
	e.setSelection(nil)
	ev := e.flush()
	e.mu.Unlock()

	ev.dispatch()
	return err
}

// SetCanvasSize resizes the canvas and re-fits background layers to it.
func (e *Editor) SetCanvasSize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("editor: invalid canvas size %vx%v", width, height)
	}
	e.mu.Lock()
	e.endDrag(false)
	e.scene.SetSize(width, height)
	for _, obj := range e.scene.Objects() {
		md := e.scene.Metadata(obj)
		p := obj.Common()
		if md == nil || md.SemanticTag != layer.TagBackground || p.Width <= 0 || p.Height <= 0 {
			continue
		}
		p.Left, p.Top, p.Angle = 0, 0, 0
		p.ScaleX, p.ScaleY = width/p.Width, height/p.Height
	}
	e.commit()
	ev := e.flush()
	e.mu.Unlock()

	ev.dispatch()
	return nil
}

// Undo restores the previous history entry. At the oldest entry it does
// nothing.
func (e *Editor) Undo() error { return e.step(e.history.Undo) }

// Redo restores the next history entry. At the newest entry it does
// nothing.
func (e *Editor) Redo() error { return e.step(e.history.Redo) }

func (e *Editor) step(move func() error) error {
	e.mu.Lock()
	err := move()
	if errors.Is(err, studio.ErrHistoryBounds) {
		e.mu.Unlock()
		return nil
	}
	e.endDrag(false)
	if err == nil {
		e.pending.layers = true
		e.pending.snapshot = e.history.Current()
	}
	e.setSelection(nil)
	ev := e.flush()
	e.mu.Unlock()

	ev.dispatch()
	return err
}

// CanUndo reports whether Undo would change the scene.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

// CanRedo reports whether Redo would change the scene.
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

// History returns the history position and flags.
func (e *Editor) History() history.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.State()
}

// Snapshot serializes the current scene.
func (e *Editor) Snapshot() (scene.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Snapshot()
}

// View calls fn with the scene under the editor lock. fn must not retain
// the scene or mutate it.
func (e *Editor) View(fn func(*scene.Scene)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.scene)
}

// SnapOptions returns the snapping configuration.
func (e *Editor) SnapOptions() snap.Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.Options()
}

// SetSnapOptions replaces the snapping configuration.
func (e *Editor) SetSnapOptions(o snap.Options) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snap.SetOptions(o)
}

func (e *Editor) find(id string) (scene.Object, *layer.Metadata, error) {
	obj, ok := e.scene.Find(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", studio.ErrLayerNotFound, id)
	}
	return obj, e.scene.Metadata(obj), nil
}

func (e *Editor) findTop(id string) (scene.Object, error) {
	obj, ok := e.scene.FindTopLevel(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", studio.ErrLayerNotFound, id)
	}
	return obj, nil
}

// targets resolves ids to distinct top-level objects, falling back to the
// selection when ids is empty.
func (e *Editor) targets(ids []string) ([]scene.Object, error) {
	if len(ids) == 0 {
		objs := e.selected()
		if len(objs) == 0 {
			return nil, studio.ErrEmptySelection
		}
		return objs, nil
	}
	seen := make(map[scene.ObjectID]bool, len(ids))
	objs := make([]scene.Object, 0, len(ids))
	for _, id := range ids {
		obj, err := e.findTop(id)
		if err != nil {
			return nil, err
		}
		if !seen[obj.ID()] {
			seen[obj.ID()] = true
			objs = append(objs, obj)
		}
	}
	return objs, nil
}
