package layer

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Well-known keys of Metadata.Additional.
const (
	KeyGroupedChildIDs = "groupedChildIds"
	KeyDuplicatedFrom  = "duplicatedFrom"
	KeyMaskMode        = "maskMode"
	KeyParsedLayerID   = "parsedLayerId"
	KeyConfidence      = "confidence"
	KeyPayload         = "payload"
	KeyBounds          = "bounds"
	KeyOriginalKind    = "originalKind"
)

// Metadata is the semantic record attached to every live scene object.
type Metadata struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	SemanticTag SemanticTag    `json:"semanticTag"`
	Origin      Origin         `json:"origin"`
	ZIndex      int            `json:"zIndex"`
	GroupID     string         `json:"groupId,omitempty"`
	Source      string         `json:"source,omitempty"`
	Text        string         `json:"text,omitempty"`
	MaskURL     string         `json:"maskUrl,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	Locked      bool           `json:"locked,omitempty"`
	Additional  map[string]any `json:"additional"`
	IsGroup     bool           `json:"isGroup"`
}

// Overrides replace descriptor values when building metadata.
// Empty strings and nil pointers mean "not overridden".
type Overrides struct {
	ID         string
	Name       string
	Origin     Origin
	ZIndex     *int
	GroupID    string
	Source     string
	Text       string
	MaskURL    string
	CreatedAt  string
	Locked     *bool
	Additional map[string]any
	IsGroup    bool
}

// NewID returns a fresh layer id of the form "<tag>-<uuid>".
func NewID(tag SemanticTag) string {
	return string(tag) + "-" + uuid.NewString()
}

// Now returns the current time formatted as a metadata timestamp.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// BuildMetadata derives the metadata of a new scene object from its
// descriptor. Overrides win over descriptor fields; the id is generated and
// the name taken from the tag fallback table when neither provides one.
func BuildMetadata(d Descriptor, o Overrides) *Metadata {
	b := d.Common()

	md := &Metadata{
		ID:          firstNonEmpty(o.ID, b.ID),
		Name:        firstNonEmpty(o.Name, b.Name, b.SemanticTag.FallbackName()),
		SemanticTag: b.SemanticTag,
		Origin:      Origin(firstNonEmpty(string(o.Origin), string(b.Origin), string(OriginParsed))),
		GroupID:     firstNonEmpty(o.GroupID, b.GroupID),
		MaskURL:     firstNonEmpty(o.MaskURL, b.MaskURL),
		CreatedAt:   firstNonEmpty(o.CreatedAt, Now()),
		Locked:      b.Locked,
		IsGroup:     o.IsGroup,
	}
	if md.ID == "" {
		md.ID = NewID(b.SemanticTag)
	}
	switch {
	case o.ZIndex != nil:
		md.ZIndex = *o.ZIndex
	case b.ZIndex != nil:
		md.ZIndex = *b.ZIndex
	}
	if o.Locked != nil {
		md.Locked = *o.Locked
	}

	switch l := d.(type) {
	case *ImageLayer:
		md.Source = l.Source
		md.Text = o.Text
	case *TextLayer:
		md.Text = l.Text
		md.Source = o.Source
	}

	md.Additional = make(map[string]any, len(b.Metadata)+len(o.Additional))
	maps.Copy(md.Additional, b.Metadata)
	maps.Copy(md.Additional, o.Additional)
	return md
}

// Clone returns a deep copy of the metadata. Nested maps and slices in
// Additional are copied so the clone can be mutated independently.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	c := *m
	c.Additional = cloneMap(m.Additional)
	return &c
}

// GroupedChildIDs returns the ids recorded under additional.groupedChildIds.
func (m *Metadata) GroupedChildIDs() []string {
	switch v := m.Additional[KeyGroupedChildIDs].(type) {
	case []string:
		return v
	case []any:
		ids := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				ids = append(ids, s)
			}
		}
		return ids
	}
	return nil
}

// DuplicatedFrom returns the id this layer was duplicated from, if any.
func (m *Metadata) DuplicatedFrom() string {
	s, _ := m.Additional[KeyDuplicatedFrom].(string)
	return s
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = cloneValue(x[i])
		}
		return out
	case []string:
		return append([]string(nil), x...)
	default:
		return v
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
