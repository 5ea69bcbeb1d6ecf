package snap

import (
	"slices"

	"github.com/gogpu/studio/scene"
)

// Targets are the sorted, de-duplicated alignment coordinates of one move
// tick.
type Targets struct {
	X []float64
	Y []float64
}

// BuildTargets collects canvas, grid and object targets for a drag of
// moving. Hidden objects and moving itself are skipped.
func BuildTargets(sc *scene.Scene, moving scene.Object, opts Options) Targets {
	w, h := sc.Width(), sc.Height()
	var t Targets

	if opts.SnapToCanvas {
		t.X = append(t.X, 0, w/2, w)
		t.Y = append(t.Y, 0, h/2, h)
	}
	if opts.SnapToGrid && opts.GridSize > 0 {
		for x := 0.0; x <= w; x += opts.GridSize {
			t.X = append(t.X, x)
		}
		for y := 0.0; y <= h; y += opts.GridSize {
			t.Y = append(t.Y, y)
		}
	}
	if opts.SnapToObjects {
		for _, obj := range sc.Objects() {
			if obj.ID() == moving.ID() || !obj.Common().Visible {
				continue
			}
			r := obj.Common().BoundingRect()
			t.X = append(t.X, r.Left, r.CenterX(), r.Right())
			t.Y = append(t.Y, r.Top, r.CenterY(), r.Bottom())
		}
	}

	slices.Sort(t.X)
	slices.Sort(t.Y)
	t.X = slices.Compact(t.X)
	t.Y = slices.Compact(t.Y)
	return t
}

// Nearest returns the element of sorted closest to v and its distance.
// Equidistant candidates resolve to the lower coordinate.
func Nearest(sorted []float64, v float64) (target, dist float64, ok bool) {
	if len(sorted) == 0 {
		return 0, 0, false
	}
	i, _ := slices.BinarySearch(sorted, v)
	best, bestDist := 0.0, -1.0
	for _, j := range [2]int{i - 1, i} {
		if j < 0 || j >= len(sorted) {
			continue
		}
		d := abs(sorted[j] - v)
		if bestDist < 0 || d < bestDist {
			best, bestDist = sorted[j], d
		}
	}
	return best, bestDist, true
}

// Match is the best snap on one axis: the reference point of the moving
// object that aligns, the target it aligns to, and the signed offset that
// was applied.
type Match struct {
	Ref    Ref
	Target float64
	Offset float64
}

// Ref names a reference point of the moving object's bounding box.
type Ref uint8

// Reference points. On the y axis Start, Center and End are top, middle
// and bottom.
const (
	RefStart Ref = iota
	RefCenter
	RefEnd
)

// match finds the minimum-distance alignment of refs against targets. A
// candidate must be strictly closer than threshold; on equal distance the
// earlier reference point wins.
func match(refs [3]float64, targets []float64, threshold float64) (Match, bool) {
	var best Match
	found := false
	bestDist := threshold
	for i, r := range refs {
		target, d, ok := Nearest(targets, r)
		if !ok || d >= bestDist {
			continue
		}
		best = Match{Ref: Ref(i), Target: target, Offset: target - r}
		bestDist = d
		found = true
	}
	return best, found
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
