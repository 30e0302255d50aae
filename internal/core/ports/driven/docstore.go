package driven

import (
	"context"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

// DocumentStore persists document snapshots.
// Backed by SQLite for durable storage.
type DocumentStore interface {
	// Save stores or replaces a snapshot.
	Save(ctx context.Context, snapshot *domain.DocumentSnapshot) error

	// Load retrieves a snapshot by document ID.
	// Returns domain.ErrNotFound if the document does not exist.
	Load(ctx context.Context, id string) (*domain.DocumentSnapshot, error)

	// List returns all stored documents, without their nodes.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document and its nodes.
	Delete(ctx context.Context, id string) error
}
