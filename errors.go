package studio

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the studio packages.
var (
	// ErrCloneFailure is returned when an object cannot be deep-copied.
	ErrCloneFailure = errors.New("studio: clone failed")

	// ErrEmptyImportBatch marks a parsed batch that produced no descriptors.
	// Imports treat it as a successful no-op.
	ErrEmptyImportBatch = errors.New("studio: import batch is empty")

	// ErrHistoryBounds is returned by undo at the oldest entry and by redo
	// at the newest one.
	ErrHistoryBounds = errors.New("studio: history bounds")

	// ErrLayerNotFound is returned when no scene object carries a layer id.
	ErrLayerNotFound = errors.New("studio: layer not found")

	// ErrDuplicateLayerID is returned when a layer id is already in the scene.
	ErrDuplicateLayerID = errors.New("studio: duplicate layer id")

	// ErrNotGroup is returned when ungrouping an object that is not a group.
	ErrNotGroup = errors.New("studio: object is not a group")

	// ErrSelectionTooSmall is returned when grouping fewer than two objects.
	ErrSelectionTooSmall = errors.New("studio: selection too small")

	// ErrEmptySelection is returned by selection based commands with nothing selected.
	ErrEmptySelection = errors.New("studio: nothing selected")

	// ErrLocked is returned when moving or transforming a locked object.
	ErrLocked = errors.New("studio: object is locked")

	// ErrNotDragging is returned by drag ticks outside a drag gesture.
	ErrNotDragging = errors.New("studio: no drag in progress")
)

// ImageLoadError is returned when an image source cannot be resolved or decoded.
type ImageLoadError struct {
	Source string
	Err    error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("studio: failed to load image layer %q: %v", e.Source, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// InvalidSemanticTagError is returned when an externally supplied tag is not
// in the closed tag set. Callers usually recover by coercing to misc.
type InvalidSemanticTagError struct {
	Value string
}

func (e *InvalidSemanticTagError) Error() string {
	return fmt.Sprintf("studio: invalid semantic tag %q", e.Value)
}
