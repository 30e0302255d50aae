package driven

import (
	"image"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

// DocumentTree exposes the host's generic tree primitives.
// Returned nodes are snapshots; re-fetch after mutating.
type DocumentTree interface {
	// Node returns a snapshot of the node, including its raw tags.
	// Returns domain.ErrNotFound if the node does not exist.
	Node(id domain.NodeID) (domain.Node, error)

	// Bounds returns the canvas rectangle.
	Bounds() image.Rectangle

	// TopLevel returns the top-level node IDs in stacking order.
	TopLevel() []domain.NodeID

	// IndexOf returns the node's position among its siblings.
	IndexOf(id domain.NodeID) (int, error)

	// CreateGroup creates a detached, empty group.
	CreateGroup(name string) (domain.NodeID, error)

	// CreateLayer creates a detached, transparent raster layer.
	CreateLayer(name string, bounds image.Rectangle) (domain.NodeID, error)

	// Duplicate creates a detached copy of the node's content.
	// Identity and tags are not copied.
	Duplicate(id domain.NodeID) (domain.NodeID, error)

	// Insert attaches a detached node under parent (domain.NoParent for
	// top level) at index. Out-of-range indexes append.
	Insert(id, parent domain.NodeID, index int) error

	// Delete removes the node and its descendants.
	Delete(id domain.NodeID) error

	// SetName renames the node.
	SetName(id domain.NodeID, name string) error
}
