package snap

import (
	"errors"
	"testing"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/imagesource"
	"github.com/gogpu/studio/layer"
	"github.com/gogpu/studio/scene"
)

func box(t *testing.T, sc *scene.Scene, id string, x, y float64, w, h int) *scene.Image {
	t.Helper()
	img := scene.NewImage(imagesource.Info{Width: w, Height: h}, &layer.ImageLayer{
		Base: layer.Base{Position: layer.At(x, y)},
	})
	if err := sc.Add(img, &layer.Metadata{ID: id}); err != nil {
		t.Fatal(err)
	}
	return img
}

func TestCenterAlignment(t *testing.T) {
	tests := []struct {
		name     string
		left     float64
		wantLeft float64
		snapped  bool
	}{
		{"within threshold", 453, 450, true},
		{"below threshold", 446, 450, true},
		{"at threshold", 455, 455, false},
		{"outside threshold", 460, 460, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := scene.New(1000, 1000)
			box(t, sc, "target", 400, 100, 200, 100)
			moving := box(t, sc, "moving", 0, 500, 100, 50)

			e := New(sc, WithCanvasTargets(false))
			e.Begin(moving)
			moving.Left = tt.left
			res, err := e.Move(moving)
			if err != nil {
				t.Fatalf("Move: %v", err)
			}
			if moving.Left != tt.wantLeft {
				t.Errorf("Left = %v, want %v", moving.Left, tt.wantLeft)
			}
			if res.SnappedX != tt.snapped {
				t.Errorf("SnappedX = %v, want %v", res.SnappedX, tt.snapped)
			}
			if tt.snapped && res.X.Ref != RefCenter {
				t.Errorf("Ref = %v, want center", res.X.Ref)
			}
			if res.SnappedY {
				t.Error("y axis should not snap")
			}
		})
	}
}

func TestGuidesLifecycle(t *testing.T) {
	sc := scene.New(1000, 800)
	box(t, sc, "target", 400, 100, 200, 100)
	moving := box(t, sc, "moving", 0, 500, 100, 50)

	e := New(sc)
	e.Begin(moving)
	if e.State() != Dragging {
		t.Fatalf("State = %v, want dragging", e.State())
	}
	moving.Left, moving.Top = 452, 198
	if _, err := e.Move(moving); err != nil {
		t.Fatal(err)
	}
	guides := sc.Guides()
	if len(guides) != 2 {
		t.Fatalf("len(guides) = %d, want 2", len(guides))
	}
	if guides[0].Coords != [4]float64{500, 0, 500, 800} {
		t.Errorf("vertical guide = %v", guides[0].Coords)
	}
	if guides[1].Coords != [4]float64{0, 200, 1000, 200} {
		t.Errorf("horizontal guide = %v", guides[1].Coords)
	}
	if moving.Top != 200 {
		t.Errorf("Top = %v, want 200 (top edge on target bottom)", moving.Top)
	}

	moving.Left, moving.Top = 700, 650
	if _, err := e.Move(moving); err != nil {
		t.Fatal(err)
	}
	if len(sc.Guides()) != 0 {
		t.Errorf("stale guides left: %v", sc.Guides())
	}

	moving.Left = 452
	_, _ = e.Move(moving)
	e.End()
	if e.State() != Idle || len(sc.Guides()) != 0 {
		t.Errorf("after End: state=%v guides=%d", e.State(), len(sc.Guides()))
	}
}

func TestMoveRequiresDrag(t *testing.T) {
	sc := scene.New(100, 100)
	a := box(t, sc, "a", 0, 0, 10, 10)
	b := box(t, sc, "b", 50, 50, 10, 10)
	e := New(sc)
	if _, err := e.Move(a); !errors.Is(err, studio.ErrNotDragging) {
		t.Errorf("err = %v, want ErrNotDragging", err)
	}
	e.Begin(a)
	if _, err := e.Move(b); !errors.Is(err, studio.ErrNotDragging) {
		t.Errorf("moving another object: err = %v, want ErrNotDragging", err)
	}
	e.Cancel()
	if e.State() != Idle {
		t.Error("Cancel did not return to idle")
	}
}

func TestGridTargets(t *testing.T) {
	sc := scene.New(200, 200)
	moving := box(t, sc, "m", 0, 0, 15, 15)
	e := New(sc, WithGrid(20), WithCanvasTargets(false), WithObjectTargets(false))
	e.Begin(moving)
	moving.Left, moving.Top = 38.5, 61
	res, err := e.Move(moving)
	if err != nil {
		t.Fatal(err)
	}
	if res.Left != 40 || res.Top != 60 {
		t.Errorf("position = (%v, %v), want (40, 60)", res.Left, res.Top)
	}
}

func TestDisabled(t *testing.T) {
	sc := scene.New(200, 200)
	moving := box(t, sc, "m", 0, 0, 10, 10)
	e := New(sc, WithEnabled(false))
	e.Begin(moving)
	moving.Left = 1
	res, _ := e.Move(moving)
	if res.SnappedX || moving.Left != 1 {
		t.Errorf("disabled engine snapped: %+v", res)
	}
}

func TestHiddenObjectsAreNotTargets(t *testing.T) {
	sc := scene.New(1000, 1000)
	hidden := box(t, sc, "hidden", 400, 100, 200, 100)
	hidden.Visible = false
	moving := box(t, sc, "m", 0, 500, 100, 50)

	targets := BuildTargets(sc, moving, DefaultOptions())
	for _, x := range targets.X {
		if x == 400 || x == 600 {
			t.Errorf("hidden object produced target %v", x)
		}
	}
	if len(targets.X) != 3 {
		t.Errorf("targets.X = %v, want canvas targets only", targets.X)
	}
}

func TestNearest(t *testing.T) {
	tests := []struct {
		sorted []float64
		v      float64
		want   float64
		dist   float64
		ok     bool
	}{
		{nil, 3, 0, 0, false},
		{[]float64{0, 10}, 5, 0, 5, true},
		{[]float64{0, 10, 20}, 12, 10, 2, true},
		{[]float64{0, 10, 20}, -4, 0, 4, true},
		{[]float64{0, 10, 20}, 26, 20, 6, true},
		{[]float64{0, 10, 20}, 10, 10, 0, true},
	}
	for _, tt := range tests {
		got, dist, ok := Nearest(tt.sorted, tt.v)
		if got != tt.want || dist != tt.dist || ok != tt.ok {
			t.Errorf("Nearest(%v, %v) = (%v, %v, %v), want (%v, %v, %v)",
				tt.sorted, tt.v, got, dist, ok, tt.want, tt.dist, tt.ok)
		}
	}
}

func TestMatchPrefersTrueMinimum(t *testing.T) {
	// left is 4 away from 100, right is 1 away from 201
	m, ok := match([3]float64{96, 148, 200}, []float64{100, 201}, 5)
	if !ok {
		t.Fatal("no match")
	}
	if m.Ref != RefEnd || m.Target != 201 || m.Offset != 1 {
		t.Errorf("match = %+v, want right edge onto 201", m)
	}
}
