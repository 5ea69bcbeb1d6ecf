package snap

// Default option values.
const (
	DefaultSnapDistance = 5.0
	DefaultGridSize     = 20.0
)

// Options controls which targets are considered and how close a reference
// point must be to snap.
type Options struct {
	Enabled       bool
	SnapDistance  float64
	SnapToObjects bool
	SnapToCanvas  bool
	SnapToGrid    bool
	GridSize      float64
}

// DefaultOptions returns snapping to canvas and objects within 5px, with
// grid snapping off.
func DefaultOptions() Options {
	return Options{
		Enabled:       true,
		SnapDistance:  DefaultSnapDistance,
		SnapToObjects: true,
		SnapToCanvas:  true,
		SnapToGrid:    false,
		GridSize:      DefaultGridSize,
	}
}

// Option modifies Options.
type Option func(*Options)

// WithEnabled turns snapping on or off.
func WithEnabled(on bool) Option {
	return func(o *Options) { o.Enabled = on }
}

// WithSnapDistance sets the snap threshold in canvas pixels.
func WithSnapDistance(d float64) Option {
	return func(o *Options) {
		if d > 0 {
			o.SnapDistance = d
		}
	}
}

// WithGrid enables grid snapping with the given cell size.
func WithGrid(size float64) Option {
	return func(o *Options) {
		o.SnapToGrid = size > 0
		if size > 0 {
			o.GridSize = size
		}
	}
}

// WithObjectTargets toggles snapping to other objects.
func WithObjectTargets(on bool) Option {
	return func(o *Options) { o.SnapToObjects = on }
}

// WithCanvasTargets toggles snapping to canvas edges and center.
func WithCanvasTargets(on bool) Option {
	return func(o *Options) { o.SnapToCanvas = on }
}

// Apply returns a copy of o with opts applied.
func (o Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
