package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrUnknownFamily is returned when a family is not registered and no
	// fallback source is configured.
	ErrUnknownFamily = errors.New("text: unknown font family")
)
