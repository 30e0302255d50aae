package driven

import (
	"context"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

// Renderer turns text glyphs into a stroked outline.
type Renderer interface {
	// TextToPath traces the glyph content of a text layer into a vector
	// outline registered with the document.
	// Returns domain.ErrExpectedTextLayer for non-text layers.
	TextToPath(ctx context.Context, textID domain.NodeID) (domain.PathID, error)

	// StrokePath paints the path onto a raster layer with the brush.
	StrokePath(ctx context.Context, layerID domain.NodeID, path domain.PathID, brush domain.Brush) error

	// RemovePath discards a registered path.
	RemovePath(ctx context.Context, path domain.PathID) error

	// Autocrop shrinks the layer to the bounds of its drawn content.
	Autocrop(ctx context.Context, layerID domain.NodeID) error

	// SetActive moves the user's selection focus to the node.
	SetActive(ctx context.Context, id domain.NodeID) error
}

// ProgressReporter reports the progress of a run.
type ProgressReporter interface {
	// Init starts a progress display with a message.
	Init(message string)

	// Update reports percent complete (0-100).
	Update(percent int)
}
