package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Snapshots are copied on the way in and out.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.DocumentSnapshot
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*domain.DocumentSnapshot),
	}
}

// Save stores or replaces a snapshot.
func (s *DocumentStore) Save(_ context.Context, snapshot *domain.DocumentSnapshot) error {
	if snapshot.Document.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[snapshot.Document.ID] = snapshot.Clone()
	return nil
}

// Load retrieves a snapshot by document ID.
func (s *DocumentStore) Load(_ context.Context, id string) (*domain.DocumentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return snap.Clone(), nil
}

// List returns all documents ordered by name, then ID.
func (s *DocumentStore) List(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, snap := range s.documents {
		docs = append(docs, snap.Document)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Name != docs[j].Name {
			return docs[i].Name < docs[j].Name
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// Delete removes a document.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	return nil
}
