package driven

import "github.com/custodia-labs/managed-outline/internal/core/domain"

// TagBackend is the host's tag persistence substrate.
// Stored values are read back through DocumentTree.Node and may carry a
// trailing NUL terminator.
type TagBackend interface {
	// AttachTag stores or replaces a tag on the node.
	AttachTag(id domain.NodeID, key domain.TagKey, value string, flags domain.TagFlags) error
}

// UndoManager groups host mutations into undo steps.
type UndoManager interface {
	// BeginGroup opens an undo group. Groups may nest; only the outermost counts.
	BeginGroup(label string)

	// EndGroup closes the innermost open group.
	EndGroup()

	// Undo reverts the most recent undo step.
	// Returns domain.ErrNotFound when there is nothing to undo.
	Undo() error

	// CanUndo reports whether an undo step is available.
	CanUndo() bool
}
