// Package snap aligns a dragged object to nearby canvas, grid and object
// targets and publishes guide lines for the current tick.
//
// The engine is a two-state machine. Begin enters the dragging state, Move
// runs one snapping tick, and End or Cancel return to idle and clear the
// guide overlay.
package snap

import (
	"github.com/gogpu/studio"
	"github.com/gogpu/studio/scene"
)

// State of the engine.
type State uint8

// Engine states.
const (
	Idle State = iota
	Dragging
)

// String returns "idle" or "dragging".
func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Result describes one move tick.
type Result struct {
	Left, Top float64
	X, Y      Match
	SnappedX  bool
	SnappedY  bool
	Guides    []scene.Guide
}

// Engine snaps objects of one scene. It is not safe for concurrent use.
type Engine struct {
	scene  *scene.Scene
	opts   Options
	state  State
	active scene.ObjectID
}

// New returns an idle engine for sc with DefaultOptions modified by opts.
func New(sc *scene.Scene, opts ...Option) *Engine {
	return &Engine{scene: sc, opts: DefaultOptions().Apply(opts...)}
}

// Options returns the current options.
func (e *Engine) Options() Options { return e.opts }

// SetOptions replaces the options. It takes effect on the next tick.
func (e *Engine) SetOptions(o Options) { e.opts = o }

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Begin starts a drag of obj. A drag already in progress is replaced.
func (e *Engine) Begin(obj scene.Object) {
	e.scene.ClearGuides()
	e.state = Dragging
	e.active = obj.ID()
}

// Move runs one snapping tick for obj at its current position. The object
// is shifted on each axis that matched and the scene's guides are replaced
// with one guide per matched axis.
func (e *Engine) Move(obj scene.Object) (Result, error) {
	if e.state != Dragging || obj.ID() != e.active {
		return Result{}, studio.ErrNotDragging
	}
	p := obj.Common()
	res := Result{Left: p.Left, Top: p.Top}
	if !e.opts.Enabled {
		e.scene.ClearGuides()
		return res, nil
	}

	targets := BuildTargets(e.scene, obj, e.opts)
	r := p.BoundingRect()

	if m, ok := match([3]float64{r.Left, r.CenterX(), r.Right()}, targets.X, e.opts.SnapDistance); ok {
		p.Left += m.Offset
		res.X, res.SnappedX = m, true
		res.Guides = append(res.Guides, scene.VerticalGuide(m.Target, e.scene.Height()))
	}
	if m, ok := match([3]float64{r.Top, r.CenterY(), r.Bottom()}, targets.Y, e.opts.SnapDistance); ok {
		p.Top += m.Offset
		res.Y, res.SnappedY = m, true
		res.Guides = append(res.Guides, scene.HorizontalGuide(m.Target, e.scene.Width()))
	}
	res.Left, res.Top = p.Left, p.Top
	e.scene.SetGuides(res.Guides)

	if res.SnappedX || res.SnappedY {
		studio.Logger().Debug("snap: aligned",
			"x", res.SnappedX, "y", res.SnappedY, "left", res.Left, "top", res.Top)
	}
	return res, nil
}

// End finishes the drag and clears the guides.
func (e *Engine) End() { e.reset() }

// Cancel abandons the drag, for example when the selection is cleared.
func (e *Engine) Cancel() { e.reset() }

func (e *Engine) reset() {
	e.state = Idle
	e.active = 0
	e.scene.ClearGuides()
}
