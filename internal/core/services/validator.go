package services

import "github.com/custodia-labs/managed-outline/internal/core/domain"

// ConsistencyValidator checks managed back-references.
type ConsistencyValidator struct {
	tags       *TagStore
	classifier *Classifier
}

// NewConsistencyValidator creates a validator.
func NewConsistencyValidator(tags *TagStore, classifier *Classifier) *ConsistencyValidator {
	return &ConsistencyValidator{tags: tags, classifier: classifier}
}

// IsMember reports whether child's root reference names root.
// A false result is not an error; callers map it to a role-specific one.
func (v *ConsistencyValidator) IsMember(root, child domain.Node) (bool, error) {
	if len(root.Children) == 0 {
		return false, domain.ErrChildlessRoot
	}

	if v.classifier.Classify(root) != domain.RoleRoot {
		return false, domain.ErrLayerWasNotManagedRoot
	}

	ref, ok := v.tags.Get(child, domain.TagRootReference)
	if !ok {
		return false, domain.ErrChildLayerWithoutRootReference
	}

	return root.ID.String() == ref, nil
}
