package layer

import (
	"strings"
	"testing"
)

const sampleBatch = `{
  "background": {"imageUrl": "bg.png"},
  "florals": [
    {"id": "f1", "kind": "floral", "confidence": 0.8,
     "bounds": {"x": 10, "y": 10, "width": 50, "height": 50},
     "payload": {"clusterId": "c1", "imageUrl": "f1.png"}}
  ],
  "typography": [
    {"id": "t1", "kind": "typography", "confidence": 0.95,
     "bounds": {"x": 100, "y": 200, "width": 300, "height": 60},
     "payload": {"text": "Save the Date", "fontSize": 56,
                 "styleHints": {"fontFamily": "Cormorant", "fontSize": 64}}}
  ],
  "misc": []
}`

func TestDecodeBatch(t *testing.T) {
	b, err := DecodeBatch(strings.NewReader(sampleBatch))
	if err != nil {
		t.Fatalf("DecodeBatch() error = %v", err)
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
	f := b.Florals[0]
	if f.Bounds.Width != 50 || f.Kind != KindFloral {
		t.Errorf("floral decoded as %+v", f)
	}
	if s, ok := f.Payload.String("clusterId"); !ok || s != "c1" {
		t.Errorf("clusterId = %q, %v", s, ok)
	}
}

func TestPayloadHints(t *testing.T) {
	b, err := DecodeBatch(strings.NewReader(sampleBatch))
	if err != nil {
		t.Fatal(err)
	}
	p := b.Typography[0].Payload

	if size, ok := p.HintNumber("fontSize"); !ok || size != 64 {
		t.Errorf("HintNumber(fontSize) = %v, %v; want styleHints value 64", size, ok)
	}
	if fam, ok := p.HintString("fontFamily"); !ok || fam != "Cormorant" {
		t.Errorf("HintString(fontFamily) = %q, %v", fam, ok)
	}
	if text, ok := p.HintString("text"); !ok || text != "Save the Date" {
		t.Errorf("HintString(text) = %q, %v; want payload fallback", text, ok)
	}
	if _, ok := p.HintString("color"); ok {
		t.Error("HintString(color) found a value in a payload without one")
	}
}

func TestPayloadNilSafe(t *testing.T) {
	var p Payload
	if _, ok := p.String("x"); ok {
		t.Error("nil payload String returned ok")
	}
	if _, ok := p.HintNumber("x"); ok {
		t.Error("nil payload HintNumber returned ok")
	}
}
