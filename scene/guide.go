package scene

// Orientation of a snapping guide.
type Orientation uint8

// Guide orientations.
const (
	Vertical Orientation = iota
	Horizontal
)

// Guide is a transient non-interactive line spanning the canvas. Guides
// never carry metadata and are not part of snapshots.
type Guide struct {
	Orientation Orientation
	// Coords are x1, y1, x2, y2.
	Coords [4]float64
}

// VerticalGuide returns a guide at x spanning the canvas height.
func VerticalGuide(x, height float64) Guide {
	return Guide{Orientation: Vertical, Coords: [4]float64{x, 0, x, height}}
}

// HorizontalGuide returns a guide at y spanning the canvas width.
func HorizontalGuide(y, width float64) Guide {
	return Guide{Orientation: Horizontal, Coords: [4]float64{0, y, width, y}}
}
