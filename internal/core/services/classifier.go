package services

import "github.com/custodia-labs/managed-outline/internal/core/domain"

// Classifier maps nodes to roles.
type Classifier struct {
	tags *TagStore
}

// NewClassifier creates a classifier reading tags through the store.
func NewClassifier(tags *TagStore) *Classifier {
	return &Classifier{tags: tags}
}

// Classify returns the node's role. The first matching rule wins:
// root tag, outline tag, text tag, text capability.
func (c *Classifier) Classify(node domain.Node) domain.Role {
	switch {
	case c.tags.Has(node, domain.TagRoot):
		return domain.RoleRoot
	case c.tags.Has(node, domain.TagOutline):
		return domain.RoleOutline
	case c.tags.Has(node, domain.TagText):
		return domain.RoleText
	case node.HasText():
		return domain.RolePlainText
	default:
		return domain.RoleUnclassified
	}
}
