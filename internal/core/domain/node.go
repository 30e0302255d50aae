package domain

import (
	"image"
	"strconv"
)

// NodeID identifies a node within one document.
// IDs are never reused and are not preserved when a node is duplicated.
type NodeID int

// NoParent is the parent of top-level nodes.
const NoParent NodeID = 0

// String returns the decimal form used in root references.
func (id NodeID) String() string {
	return strconv.Itoa(int(id))
}

// ParseNodeID parses the decimal form of a NodeID.
func ParseNodeID(s string) (NodeID, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, ErrInvalidInput
	}
	return NodeID(n), nil
}

// NodeKind enumerates the host layer types.
type NodeKind int

const (
	KindLayer NodeKind = iota // raster layer
	KindGroup                 // layer group
	KindText                  // text layer
)

func (k NodeKind) String() string {
	switch k {
	case KindLayer:
		return "layer"
	case KindGroup:
		return "group"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// ParseNodeKind parses the String form of a NodeKind.
func ParseNodeKind(s string) (NodeKind, error) {
	switch s {
	case "layer", "":
		return KindLayer, nil
	case "group":
		return KindGroup, nil
	case "text":
		return KindText, nil
	default:
		return 0, ErrInvalidInput
	}
}

// Node is an element of the document tree. Values returned by the host are
// snapshots; mutate the document through the DocumentTree port.
type Node struct {
	// ID is the document-unique identity.
	ID NodeID

	// Name is the display name.
	Name string

	// Parent is the owning group, or NoParent for top-level nodes.
	Parent NodeID

	// Children lists child nodes in stacking order (groups only).
	Children []NodeID

	// Kind is the host layer type.
	Kind NodeKind

	// Text is the glyph content of a text layer.
	Text string

	// Bounds is the layer extent in canvas coordinates.
	Bounds image.Rectangle

	// Raster holds the pixels of a raster layer. Its bounds match Bounds.
	Raster *image.NRGBA

	// Tags holds raw persisted tag values keyed by tag key.
	Tags map[string]string
}

// HasText reports whether the node carries renderable text content.
func (n Node) HasText() bool {
	return n.Kind == KindText
}

// IsGroup reports whether the node can hold children.
func (n Node) IsGroup() bool {
	return n.Kind == KindGroup
}

// HasParent reports whether the node is nested under a group.
func (n Node) HasParent() bool {
	return n.Parent != NoParent
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	c := n
	if n.Children != nil {
		c.Children = append([]NodeID(nil), n.Children...)
	}
	if n.Tags != nil {
		c.Tags = make(map[string]string, len(n.Tags))
		for k, v := range n.Tags {
			c.Tags[k] = v
		}
	}
	if n.Raster != nil {
		r := image.NewNRGBA(n.Raster.Rect)
		copy(r.Pix, n.Raster.Pix)
		c.Raster = r
	}
	return c
}
