package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

// WorkspaceService manages stored documents and runs outlines on them.
type WorkspaceService interface {
	// List returns all stored documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Import decodes a document and stores it.
	Import(ctx context.Context, r io.Reader) (*domain.Document, error)

	// Export encodes a stored document.
	Export(ctx context.Context, documentID string, w io.Writer) error

	// Tree returns a depth-first listing of the document with roles.
	Tree(ctx context.Context, documentID string) ([]domain.TreeEntry, error)

	// Outline runs the outline on one node and stores the result.
	Outline(ctx context.Context, documentID string, target domain.NodeID) (bool, error)

	// OutlineAll re-outlines every managed root in the document.
	OutlineAll(ctx context.Context, documentID string) (*domain.OutlineSummary, error)

	// Inspect reports how a run would see the node.
	Inspect(ctx context.Context, documentID string, target domain.NodeID) (*domain.Inspection, error)

	// Duplicate copies a node and its subtree, tags included, directly
	// above the original. Returns the copy's ID.
	Duplicate(ctx context.Context, documentID string, target domain.NodeID) (domain.NodeID, error)

	// Delete removes a stored document.
	Delete(ctx context.Context, documentID string) error

	// Open loads a document as a live session for interactive editing.
	Open(ctx context.Context, documentID string) (Session, error)
}

// Session is a live document held open by an interactive client.
type Session interface {
	// Document returns the document metadata.
	Document() domain.Document

	// Tree returns a depth-first listing with roles.
	Tree() ([]domain.TreeEntry, error)

	// Active returns the focused node. A completed outline focuses its root group.
	Active() domain.NodeID

	// Outline runs the outline on one node.
	Outline(ctx context.Context, target domain.NodeID) (bool, error)

	// Undo reverts the most recent step.
	Undo() error

	// Save stores the current state.
	Save(ctx context.Context) error
}
