// Package studio is the headless core of a 2D composition editor.
//
// # Overview
//
// studio owns a scene of positioned visual layers (images and editable
// text), imports machine-generated layer descriptions into that scene, keeps
// objects aligned through a snapping engine and maintains a bounded,
// reversible edit history. Rendering, storage and transport are left to the
// host application, which hands the core typed data and receives serialized
// scene snapshots and change notifications back.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/studio/editor"
//	    "github.com/gogpu/studio/layer"
//	)
//
//	ed, err := editor.New(1500, 2100)
//	if err != nil {
//	    return err
//	}
//	_, _ = ed.Execute(ctx, editor.AddText{Text: "Hello", Position: layer.At(100, 200)})
//	_, _ = ed.Execute(ctx, editor.Duplicate{})
//	_ = ed.Undo()
//
// # Architecture
//
// The module is organized into:
//   - Root: geometry (Point, Rect, Matrix), logging, error taxonomy
//   - layer: descriptors, semantic tags, metadata, parsed layer batches
//   - text: font registry and text measurement
//   - imagesource: image source resolution (files, URLs, data URLs)
//   - cache: bounded LRU used by the measurer
//   - config: YAML configuration
//   - scene: scene objects, the Scene handle, the object factory, snapshots
//   - importer: parsed batch to scene objects, floral clustering
//   - snap: alignment targets and per-tick snapping
//   - history: snapshot based undo/redo
//   - editor: selection and the command surface the UI calls into
//
// # Coordinate System
//
// Same as the canvas the host renders to:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Object positions name the top-left corner of the unrotated object
//
// # Concurrency
//
// The scene is a single mutable resource. The editor serializes all
// mutations behind one lock; only image resolution during object creation
// runs concurrently, before the mutation phase begins.
package studio

// Version is the current version of the module.
const Version = "0.3.0"
