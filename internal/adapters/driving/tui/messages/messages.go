// Package messages defines Bubbletea message types for the TUI.
// Messages carry the results of session commands back to the model.
package messages

import (
	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driving"
)

// DocumentOpened carries the live session for the browsed document.
type DocumentOpened struct {
	Session driving.Session
	Err     error
}

// TreeLoaded carries a fresh depth-first listing of the document.
// Focus, when set, is selected once the entries are shown.
type TreeLoaded struct {
	Entries []domain.TreeEntry
	Focus   domain.NodeID
	Err     error
}

// OutlineCompleted signals an outline run finished.
// Done is false when there was nothing to outline. Active is the node the
// run focused, the managed root on success.
type OutlineCompleted struct {
	Target domain.NodeID
	Active domain.NodeID
	Done   bool
	Err    error
}

// UndoCompleted signals an undo step finished.
type UndoCompleted struct {
	Err error
}

// SaveCompleted signals the document was stored.
type SaveCompleted struct {
	Err error
}
