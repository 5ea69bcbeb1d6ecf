package studio

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translate", Translate(10, 20), Pt(1, 2), Pt(11, 22)},
		{"scale", Scale(2, 3), Pt(1, 2), Pt(2, 6)},
		{"rotate 90deg", Rotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"object matrix", ObjectMatrix(100, 50, 0, 2, 2), Pt(10, 10), Pt(120, 70)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	m := ObjectMatrix(40, -15, 30, 1.5, 0.5)
	p := Pt(12, 7)
	got := m.Invert().TransformPoint(m.TransformPoint(p))
	if !near(got.X, p.X) || !near(got.Y, p.Y) {
		t.Errorf("Invert round trip = %v, want %v", got, p)
	}
}

func TestMatrixInvertSingular(t *testing.T) {
	if got := Scale(0, 0).Invert(); !got.IsIdentity() {
		t.Errorf("Invert of singular matrix = %+v, want identity", got)
	}
}

func TestMatrixDecompose(t *testing.T) {
	m := ObjectMatrix(0, 0, 45, 2, 3)
	sx, sy := m.ScaleFactors()
	if !near(sx, 2) || !near(sy, 3) {
		t.Errorf("ScaleFactors() = (%v, %v), want (2, 3)", sx, sy)
	}
	if a := m.Angle(); !near(a, 45) {
		t.Errorf("Angle() = %v, want 45", a)
	}
}

func TestMatrixTransformRect(t *testing.T) {
	r := ObjectMatrix(10, 20, 0, 2, 0.5).TransformRect(50, 40)
	want := Rect{Left: 10, Top: 20, Width: 100, Height: 20}
	if r != want {
		t.Errorf("TransformRect() = %+v, want %+v", r, want)
	}

	// A square rotated 90 degrees around its top-left corner swings left.
	r = ObjectMatrix(100, 100, 90, 1, 1).TransformRect(10, 10)
	if !near(r.Left, 90) || !near(r.Top, 100) || !near(r.Width, 10) || !near(r.Height, 10) {
		t.Errorf("rotated TransformRect() = %+v", r)
	}
}

func TestRectEdges(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Width: 50, Height: 30}
	if r.Right() != 60 || r.Bottom() != 50 || r.CenterX() != 35 || r.CenterY() != 35 {
		t.Errorf("edges of %+v: right=%v bottom=%v cx=%v cy=%v", r, r.Right(), r.Bottom(), r.CenterX(), r.CenterY())
	}
	u := r.Union(Rect{Left: 0, Top: 40, Width: 20, Height: 20})
	want := Rect{Left: 0, Top: 20, Width: 60, Height: 40}
	if u != want {
		t.Errorf("Union() = %+v, want %+v", u, want)
	}
}
