package scene

import (
	"errors"
	"testing"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/layer"
)

func buildScene(t *testing.T) *Scene {
	t.Helper()
	s := New(1500, 2100)

	bg := &Image{Props: newProps(1500, 2100), Source: "bg.png"}
	bg.Selectable, bg.Evented = false, false
	if err := s.Add(bg, md("bg")); err != nil {
		t.Fatal(err)
	}

	txt := &Text{Props: newProps(120, 54), Text: "Hi", FontFamily: "serif display", FontSize: 48,
		FontWeight: layer.WeightBold, LineHeight: 1.6, TextAlign: layer.AlignLeft, Fill: "#000"}
	txt.Left, txt.Top, txt.Angle = 40, 60, 15
	if err := s.Add(txt, md("text")); err != nil {
		t.Fatal(err)
	}

	a := &Image{Props: newProps(10, 10), Source: "a.png"}
	a.Left, a.Top = 300, 300
	p := NewPath([]studio.Point{{X: 310, Y: 310}, {X: 340, Y: 350}}, "#fff", 8)
	g := NewGroup([]Object{a, p})
	if err := s.Attach(a, md("a")); err != nil {
		t.Fatal(err)
	}
	if err := s.Attach(p, md("p")); err != nil {
		t.Fatal(err)
	}
	gmd := md("g")
	gmd.IsGroup = true
	gmd.Additional[layer.KeyGroupedChildIDs] = []string{"a", "p"}
	if err := s.Add(g, gmd); err != nil {
		t.Fatal(err)
	}
	s.SetGuides([]Guide{VerticalGuide(1, 2)})
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := buildScene(t)
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	r := New(1, 1)
	if err := r.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if r.Width() != 1500 || r.Height() != 2100 {
		t.Errorf("size = %vx%v", r.Width(), r.Height())
	}
	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
	if len(r.Guides()) != 0 {
		t.Error("guides restored")
	}

	bg := r.At(0).(*Image)
	if bg.Source != "bg.png" || bg.Selectable || bg.Evented {
		t.Errorf("background = %+v", bg)
	}
	txt := r.At(1).(*Text)
	if txt.Text != "Hi" || txt.Angle != 15 || txt.FontWeight != layer.WeightBold || txt.TextAlign != layer.AlignLeft {
		t.Errorf("text = %+v", txt)
	}
	g := r.At(2).(*Group)
	if len(g.Children) != 2 {
		t.Fatalf("group children = %d", len(g.Children))
	}
	if got := r.Metadata(g).GroupedChildIDs(); len(got) != 2 || got[0] != "a" || got[1] != "p" {
		t.Errorf("groupedChildIds = %v", got)
	}
	if obj, ok := r.Find("p"); !ok || obj.Kind() != KindPath {
		t.Errorf("Find(p) = %v, %v", obj, ok)
	}

	again, err := r.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(snap) {
		t.Error("restored scene does not serialize identically")
	}
}

func TestRestoreInvalidLeavesSceneUnchanged(t *testing.T) {
	s := buildScene(t)
	tests := []struct {
		name string
		snap Snapshot
		want error // nil accepts any error
	}{
		{"garbage", Snapshot("{"), nil},
		{"version", Snapshot(`{"version":7,"objects":[]}`), nil},
		{"unknown type", Snapshot(`{"version":1,"objects":[{"type":"circle"}]}`), nil},
		{"duplicate id", Snapshot(`{"version":1,"objects":[{"type":"image","data":{"id":"x"}},{"type":"image","data":{"id":"x"}}]}`), studio.ErrDuplicateLayerID},
		{"no metadata", Snapshot(`{"version":1,"objects":[{"type":"text","text":"hi"}]}`), ErrMissingMetadata},
		{"child without metadata", Snapshot(`{"version":1,"objects":[{"type":"group","data":{"id":"g"},"objects":[{"type":"image"}]}]}`), ErrMissingMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Restore(tt.snap)
			if err == nil {
				t.Fatal("Restore succeeded, want error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if s.Len() != 3 {
				t.Errorf("Len = %d after failed restore", s.Len())
			}
			for _, obj := range s.Objects() {
				if s.Metadata(obj) == nil {
					t.Errorf("object %d has no metadata after failed restore", obj.ID())
				}
			}
		})
	}
}
