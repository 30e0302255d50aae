package services

import (
	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
)

// RootResolver finds the managed root owning a node.
// Only the direct parent is considered.
type RootResolver struct {
	tree       driven.DocumentTree
	tags       *TagStore
	classifier *Classifier
}

// NewRootResolver creates a resolver over the document tree.
func NewRootResolver(tree driven.DocumentTree, tags *TagStore, classifier *Classifier) *RootResolver {
	return &RootResolver{tree: tree, tags: tags, classifier: classifier}
}

// Resolve returns node itself when it is a root, otherwise its parent after
// checking the parent is a root and is the one node references.
func (r *RootResolver) Resolve(node domain.Node) (domain.Node, error) {
	if r.classifier.Classify(node) == domain.RoleRoot {
		return node, nil
	}

	ref, ok := r.tags.Get(node, domain.TagRootReference)
	if !ok {
		return domain.Node{}, domain.ErrChildLayerWithoutRootReference
	}

	if !node.HasParent() {
		return domain.Node{}, domain.ErrParentlessChild
	}
	parent, err := r.tree.Node(node.Parent)
	if err != nil {
		return domain.Node{}, err
	}

	if r.classifier.Classify(parent) != domain.RoleRoot {
		return domain.Node{}, domain.ErrParentLayerWasNotManagedRoot
	}

	if parent.ID.String() != ref {
		return domain.Node{}, domain.ErrChildLayerDoesNotMatchRoot
	}

	return parent, nil
}
