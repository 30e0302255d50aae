package driven

import (
	"io"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

// Workspace is a live, editable document.
type Workspace interface {
	DocumentTree
	TagBackend
	UndoManager

	// DuplicateSubtree copies the node and its descendants, tags included
	// verbatim, and inserts the copy directly above the original.
	DuplicateSubtree(id domain.NodeID) (domain.NodeID, error)

	// Renderer returns a renderer bound to this workspace.
	Renderer() Renderer

	// Active returns the node holding selection focus, or domain.NoParent.
	Active() domain.NodeID

	// Snapshot captures the current state for persistence.
	Snapshot() *domain.DocumentSnapshot
}

// WorkspaceFactory opens snapshots as live workspaces.
type WorkspaceFactory interface {
	// Open builds a workspace from a snapshot. The snapshot is not retained.
	Open(snapshot *domain.DocumentSnapshot) (Workspace, error)
}

// DocumentCodec reads and writes the human-editable document format.
type DocumentCodec interface {
	// Decode parses a document. Node IDs missing from the input are assigned.
	Decode(r io.Reader) (*domain.DocumentSnapshot, error)

	// Encode writes a document.
	Encode(w io.Writer, snapshot *domain.DocumentSnapshot) error
}
