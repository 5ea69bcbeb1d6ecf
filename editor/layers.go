package editor

import "github.com/gogpu/studio/layer"

// LayerView is the sidebar projection of one top-level object.
type LayerView struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	SemanticTag layer.SemanticTag `json:"semanticTag"`
	Visible     bool              `json:"visible"`
	Locked      bool              `json:"locked"`
	IsActive    bool              `json:"isActive"`
	IsGroup     bool              `json:"isGroup"`
	ZIndex      int               `json:"zIndex"`
}

// Layers returns the top-level layers, top-most first.
func (e *Editor) Layers() []LayerView {
	e.mu.Lock()
	defer e.mu.Unlock()

	objs := e.scene.Objects()
	views := make([]LayerView, 0, len(objs))
	for i := len(objs) - 1; i >= 0; i-- {
		obj := objs[i]
		md := e.scene.Metadata(obj)
		p := obj.Common()
		views = append(views, LayerView{
			ID:          md.ID,
			Name:        md.Name,
			SemanticTag: md.SemanticTag,
			Visible:     p.Visible,
			Locked:      p.Locks.MovementX,
			IsActive:    e.isSelected(obj),
			IsGroup:     md.IsGroup,
			ZIndex:      md.ZIndex,
		})
	}
	return views
}
