package domain

import "time"

// Document is a layered canvas.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the human-readable name.
	Name string

	// Width and Height are the canvas size in pixels.
	// Fresh outline layers are created at this size before autocrop.
	Width  int
	Height int

	// CreatedAt is when the document was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the document was last stored.
	UpdatedAt time.Time
}

// DocumentSnapshot is the complete persisted state of a document.
type DocumentSnapshot struct {
	Document Document

	// Nodes holds every node, in no particular order.
	Nodes []Node

	// TopLevel lists top-level node IDs in stacking order.
	TopLevel []NodeID

	// NextID is the next identity the host will hand out.
	NextID NodeID

	// Active is the node holding the user's selection focus, or NoParent.
	Active NodeID
}

// Node returns the node with the given ID.
func (s *DocumentSnapshot) Node(id NodeID) (Node, bool) {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return s.Nodes[i], true
		}
	}
	return Node{}, false
}

// TreeEntry is one row of a depth-first document listing.
type TreeEntry struct {
	Node  Node
	Depth int
	Role  Role
}

// Clone returns a deep copy of the snapshot.
func (s *DocumentSnapshot) Clone() *DocumentSnapshot {
	c := *s
	c.Nodes = make([]Node, len(s.Nodes))
	for i := range s.Nodes {
		c.Nodes[i] = s.Nodes[i].Clone()
	}
	c.TopLevel = append([]NodeID(nil), s.TopLevel...)
	return &c
}
