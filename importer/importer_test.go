package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/imagesource"
	"github.com/gogpu/studio/layer"
	"github.com/gogpu/studio/scene"
	"github.com/gogpu/studio/text"
)

type fixedShaper struct{}

func (fixedShaper) Advance(_ *text.FontSource, size float64, line string) float64 {
	return float64(len([]rune(line))) * size * 0.5
}

func newPipeline(t *testing.T, res imagesource.Resolver) *Pipeline {
	t.Helper()
	m, err := text.NewMeasurer(text.WithShaper(fixedShaper{}))
	if err != nil {
		t.Fatalf("NewMeasurer: %v", err)
	}
	return NewPipeline(scene.NewFactory(res, m))
}

func staticImages() *imagesource.Static {
	return imagesource.NewStatic(
		imagesource.Info{Source: "bg.png", Width: 1500, Height: 2100},
		imagesource.Info{Source: "rose.png", Width: 100, Height: 100},
		imagesource.Info{Source: "leaf.png", Width: 40, Height: 80},
	)
}

func floral(id string, x, y float64, payload layer.Payload) *layer.ParsedLayer {
	return &layer.ParsedLayer{
		ID:         id,
		Kind:       layer.KindFloral,
		Confidence: 0.9,
		Bounds:     layer.Bounds{X: x, Y: y, Width: 50, Height: 50},
		Payload:    payload,
	}
}

func TestScenarioClusteredFlorals(t *testing.T) {
	batch := &layer.ParsedLayerBatch{
		Background: &layer.Background{ImageURL: "bg.png"},
		Florals: []*layer.ParsedLayer{
			floral("f1", 10, 10, layer.Payload{"clusterId": "c1"}),
			floral("f2", 70, 10, layer.Payload{"clusterId": "c1"}),
		},
	}
	sc := scene.New(1500, 2100)
	res, err := newPipeline(t, staticImages()).Import(context.Background(), sc, batch, Options{ClearExisting: true})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if sc.Len() != 2 || res.Inserted != 2 || res.Groups != 1 {
		t.Fatalf("Len=%d Inserted=%d Groups=%d, want 2, 2, 1", sc.Len(), res.Inserted, res.Groups)
	}

	bg, ok := sc.At(0).(*scene.Image)
	if !ok {
		t.Fatalf("At(0) = %T, want *scene.Image", sc.At(0))
	}
	r := bg.BoundingRect()
	if r != (studio.Rect{Left: 0, Top: 0, Width: 1500, Height: 2100}) {
		t.Errorf("background bounds = %+v", r)
	}
	if bg.Selectable || bg.Evented {
		t.Error("background must not be selectable or evented")
	}
	if md := sc.Metadata(bg); md.SemanticTag != layer.TagBackground || md.ZIndex != 0 || md.Name != "Background" {
		t.Errorf("background metadata = %+v", md)
	}

	g, ok := sc.At(1).(*scene.Group)
	if !ok {
		t.Fatalf("At(1) = %T, want *scene.Group", sc.At(1))
	}
	if len(g.Children) != 2 {
		t.Fatalf("group children = %d, want 2", len(g.Children))
	}
	gmd := sc.Metadata(g)
	if !gmd.IsGroup || gmd.ZIndex != 1 || gmd.GroupID != "c1" || gmd.SemanticTag != layer.TagFloral {
		t.Errorf("group metadata = %+v", gmd)
	}
	ids := gmd.GroupedChildIDs()
	if len(ids) != 2 {
		t.Fatalf("groupedChildIds = %v", ids)
	}
	for i, want := range []string{"f1", "f2"} {
		child, ok := sc.Find(ids[i])
		if !ok {
			t.Fatalf("child %s not registered", ids[i])
		}
		if got := sc.Metadata(child).Additional[layer.KeyParsedLayerID]; got != want {
			t.Errorf("child %d parsedLayerId = %v, want %s", i, got, want)
		}
	}
	if g.Left != 10 || g.Top != 10 || g.Width != 110 || g.Height != 50 {
		t.Errorf("group bounds = (%v,%v,%v,%v), want (10,10,110,50)", g.Left, g.Top, g.Width, g.Height)
	}
	crop := g.Children[0].(*scene.Image).Crop
	if crop == nil || *crop != (studio.Rect{Left: 10, Top: 10, Width: 50, Height: 50}) {
		t.Errorf("floral crop = %v, want background region", crop)
	}
}

func TestTopLevelCount(t *testing.T) {
	text := func(id string) *layer.ParsedLayer {
		return &layer.ParsedLayer{ID: id, Kind: layer.KindTypography, Payload: layer.Payload{"text": id}}
	}
	batch := &layer.ParsedLayerBatch{
		Background: &layer.Background{ImageURL: "bg.png"},
		Florals: []*layer.ParsedLayer{
			floral("a1", 0, 0, layer.Payload{"imageUrl": "rose.png", "clusterId": "a"}),
			floral("a2", 0, 0, layer.Payload{"imageUrl": "rose.png", "groupId": "a"}),
			floral("a3", 0, 0, layer.Payload{"imageUrl": "rose.png", "clusterId": "a"}),
			floral("b1", 0, 0, layer.Payload{"imageUrl": "leaf.png", "clusterId": "b"}),
			floral("n1", 0, 0, layer.Payload{"imageUrl": "leaf.png"}),
			floral("n2", 0, 0, layer.Payload{"imageUrl": "leaf.png"}),
		},
		Typography: []*layer.ParsedLayer{text("t1"), text("t2")},
		Misc: []*layer.ParsedLayer{
			{ID: "m1", Kind: layer.KindMisc, Payload: layer.Payload{"imageUrl": "leaf.png", "semanticTag": "graphic"}},
			{ID: "m2", Kind: layer.KindTypography, Payload: layer.Payload{"text": "misc"}},
		},
	}
	sc := scene.New(1500, 2100)
	res, err := newPipeline(t, staticImages()).Import(context.Background(), sc, batch, Options{})
	if err != nil {
		t.Fatal(err)
	}
	// background + groups {a, default} + single b1 + 2 typography + 2 misc
	const want = 1 + 2 + 1 + 2 + 2
	if sc.Len() != want {
		t.Errorf("top-level objects = %d, want %d", sc.Len(), want)
	}
	if res.Groups != 2 {
		t.Errorf("Groups = %d, want 2", res.Groups)
	}

	last := -1
	for _, obj := range sc.Objects() {
		z := sc.Metadata(obj).ZIndex
		if z < last {
			t.Errorf("paint order not sorted by zIndex: %d after %d", z, last)
		}
		last = z
	}
}

func TestImageFailureSkipsLayer(t *testing.T) {
	batch := &layer.ParsedLayerBatch{
		Florals: []*layer.ParsedLayer{
			floral("ok", 0, 0, layer.Payload{"imageUrl": "rose.png"}),
			floral("bad", 0, 0, layer.Payload{"imageUrl": "missing.png"}),
		},
	}
	sc := scene.New(100, 100)
	res, err := newPipeline(t, staticImages()).Import(context.Background(), sc, batch, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if sc.Len() != 1 || len(res.Skipped) != 1 {
		t.Fatalf("Len=%d Skipped=%d, want 1, 1", sc.Len(), len(res.Skipped))
	}
	s := res.Skipped[0]
	var loadErr *studio.ImageLoadError
	if s.ParsedLayerID != "bad" || s.Source != "missing.png" || !errors.As(s.Err, &loadErr) {
		t.Errorf("Skipped = %+v", s)
	}
}

func TestClearExistingWhenNothingMaterializes(t *testing.T) {
	tests := []struct {
		name      string
		clear     bool
		wantLen   int
		wantClear int
	}{
		{"clear", true, 0, 1},
		{"keep", false, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := scene.New(100, 100)
			keep := scene.NewImage(imagesource.Info{Width: 1, Height: 1}, &layer.ImageLayer{})
			if err := sc.Add(keep, &layer.Metadata{ID: "keep"}); err != nil {
				t.Fatal(err)
			}
			batch := &layer.ParsedLayerBatch{
				Florals: []*layer.ParsedLayer{floral("bad", 0, 0, layer.Payload{"imageUrl": "missing.png"})},
			}
			res, err := newPipeline(t, staticImages()).Import(context.Background(), sc, batch, Options{ClearExisting: tt.clear})
			if err != nil {
				t.Fatal(err)
			}
			if sc.Len() != tt.wantLen {
				t.Errorf("scene has %d objects, want %d", sc.Len(), tt.wantLen)
			}
			if res.Inserted != 0 || res.Cleared != tt.wantClear || len(res.Skipped) != 1 {
				t.Errorf("Result = %+v", res)
			}
			if res.Changed() != tt.clear {
				t.Errorf("Changed = %v, want %v", res.Changed(), tt.clear)
			}
			if _, ok := sc.Find("keep"); ok == tt.clear {
				t.Errorf("old layer present = %v", ok)
			}
		})
	}
}

func TestPrepareDoesNotTouchScene(t *testing.T) {
	p := newPipeline(t, staticImages())
	batch := &layer.ParsedLayerBatch{
		Background: &layer.Background{ImageURL: "bg.png"},
		Florals:    []*layer.ParsedLayer{floral("f1", 5, 5, layer.Payload{"imageUrl": "rose.png"})},
	}
	b, err := p.Prepare(context.Background(), batch, 1500, 2100)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Result(); got.Descriptors != 2 || got.Inserted != 0 || got.Empty {
		t.Errorf("prepared Result = %+v", got)
	}

	sc := scene.New(1500, 2100)
	res, err := p.Apply(sc, b, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 2 || sc.Len() != 2 {
		t.Errorf("Inserted = %d, Len = %d, want 2", res.Inserted, sc.Len())
	}
}

func TestEmptyBatch(t *testing.T) {
	tests := []struct {
		name  string
		batch *layer.ParsedLayerBatch
	}{
		{"nil", nil},
		{"empty", &layer.ParsedLayerBatch{}},
		{"no sources", &layer.ParsedLayerBatch{Florals: []*layer.ParsedLayer{floral("x", 0, 0, nil)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := scene.New(100, 100)
			res, err := newPipeline(t, staticImages()).Import(context.Background(), sc, tt.batch, Options{ClearExisting: true})
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if !res.Empty || sc.Len() != 0 {
				t.Errorf("Empty=%v Len=%d, want no-op", res.Empty, sc.Len())
			}
		})
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	batch := &layer.ParsedLayerBatch{Background: &layer.Background{ImageURL: "bg.png"}}
	sc := scene.New(100, 100)
	if _, err := newPipeline(t, staticImages()).Import(ctx, sc, batch, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if sc.Len() != 0 {
		t.Error("canceled import mutated the scene")
	}
}

func TestTypographyStyleResolution(t *testing.T) {
	batch := &layer.ParsedLayerBatch{
		Typography: []*layer.ParsedLayer{
			{
				ID:     "t1",
				Kind:   layer.KindTypography,
				Bounds: layer.Bounds{X: 30, Y: 40, Width: 300, Height: 60},
				Payload: layer.Payload{
					"text":       "Cafe\u0301",
					"fontFamily": "Payload Family",
					"fontSize":   float64(24),
					"color":      "#ff0000",
					"label":      "Title",
					"styleHints": map[string]any{
						"fontFamily": "Hint Family",
						"fontWeight": float64(700),
						"textAlign":  "left",
					},
				},
			},
			{ID: "t2", Kind: layer.KindTypography, Payload: layer.Payload{"textAlign": "sideways"}},
		},
	}
	descs, skipped := Descriptors(batch, 1500, 2100)
	if len(descs) != 2 || len(skipped) != 0 {
		t.Fatalf("descriptors=%d skipped=%d", len(descs), len(skipped))
	}

	d := descs[0].(*layer.TextLayer)
	if d.Text != "Caf\u00e9" {
		t.Errorf("Text = %q, want NFC composed", d.Text)
	}
	if d.FontFamily != "Hint Family" {
		t.Errorf("FontFamily = %q, want styleHints value", d.FontFamily)
	}
	if d.FontSize != 24 || d.FontWeight != layer.WeightBold || d.TextAlign != layer.AlignLeft || d.Fill != "#ff0000" {
		t.Errorf("style = size %v weight %v align %v fill %v", d.FontSize, d.FontWeight, d.TextAlign, d.Fill)
	}
	if d.LineHeight != layer.DefaultLineHeight {
		t.Errorf("LineHeight = %v, want default", d.LineHeight)
	}
	if d.Name != "Title" || *d.Position.X != 30 || *d.Position.Y != 40 {
		t.Errorf("name/position = %q (%v,%v)", d.Name, *d.Position.X, *d.Position.Y)
	}
	if d.Metadata[layer.KeyParsedLayerID] != "t1" || d.Metadata[layer.KeyOriginalKind] != "typography" {
		t.Errorf("provenance = %v", d.Metadata)
	}

	d2 := descs[1].(*layer.TextLayer)
	if d2.FontFamily != layer.DefaultFontFamily || d2.FontSize != layer.DefaultFontSize ||
		d2.TextAlign != layer.DefaultTextAlign || d2.Fill != layer.DefaultFill {
		t.Errorf("defaults not applied: %+v", d2)
	}
	if *d.ZIndex != 0 || *d2.ZIndex != 1 {
		t.Errorf("zIndex = %d, %d", *d.ZIndex, *d2.ZIndex)
	}
}

func TestMiscSemanticTag(t *testing.T) {
	batch := &layer.ParsedLayerBatch{
		Background: &layer.Background{ImageURL: "bg.png"},
		Misc: []*layer.ParsedLayer{
			{ID: "g", Kind: layer.KindMisc, Payload: layer.Payload{"imageUrl": "x.png", "semanticTag": "graphic"}},
			{ID: "bad", Kind: layer.KindMisc, Payload: layer.Payload{"imageUrl": "x.png", "semanticTag": "sparkle"}},
			{ID: "txt", Kind: layer.KindTypography, Payload: layer.Payload{"text": "hi", "semanticTag": "user"}},
		},
	}
	descs, _ := Descriptors(batch, 100, 100)
	want := []layer.SemanticTag{layer.TagBackground, layer.TagGraphic, layer.TagMisc, layer.TagUser}
	if len(descs) != len(want) {
		t.Fatalf("len = %d, want %d", len(descs), len(want))
	}
	for i, d := range descs {
		if got := d.Common().SemanticTag; got != want[i] {
			t.Errorf("descs[%d] tag = %q, want %q", i, got, want[i])
		}
		if *d.Common().ZIndex != i {
			t.Errorf("descs[%d] zIndex = %d, want %d", i, *d.Common().ZIndex, i)
		}
	}
	if _, ok := descs[3].(*layer.TextLayer); !ok {
		t.Errorf("misc typography = %T, want text", descs[3])
	}
}
