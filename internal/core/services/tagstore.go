package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
)

// dataTerminator is the C-string terminator the tag substrate leaves on
// stored values.
const dataTerminator = "\x00"

// TagStore provides typed access to node tags.
// Reads use node snapshots; writes go through the host's TagBackend.
type TagStore struct {
	backend driven.TagBackend
}

// NewTagStore creates a tag store over the host's tag backend.
func NewTagStore(backend driven.TagBackend) *TagStore {
	return &TagStore{backend: backend}
}

// Has reports whether the node carries a tag with the key.
func (s *TagStore) Has(node domain.Node, key domain.TagKey) bool {
	_, ok := node.Tags[key.String()]
	return ok
}

// Get returns the tag value with one trailing terminator stripped.
func (s *TagStore) Get(node domain.Node, key domain.TagKey) (string, bool) {
	raw, ok := node.Tags[key.String()]
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(raw, dataTerminator), true
}

// Set attaches a persistent, undoable tag, replacing any existing value.
// Returns domain.ErrInvalidTagValue if value is not a string.
func (s *TagStore) Set(id domain.NodeID, key domain.TagKey, value any) (domain.Tag, error) {
	str, ok := value.(string)
	if !ok {
		return domain.Tag{}, domain.ErrInvalidTagValue
	}

	tag := domain.Tag{
		Key:   key,
		Value: str,
		Flags: domain.TagPersistent | domain.TagUndoable,
	}
	if err := s.backend.AttachTag(id, key, str, tag.Flags); err != nil {
		return domain.Tag{}, fmt.Errorf("attaching %s to layer %d: %w", key, id, err)
	}
	return tag, nil
}
