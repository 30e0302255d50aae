// Package domain defines the core entities for managed text outlines.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A layered canvas and its metadata
//   - Node: A group, raster layer, or text layer inside a document
//   - Tag: Persistent string metadata attached to a node
//   - Role: The managed role a node plays, derived from its tags
//   - ManagedGroup: The {root, text, outline} triple one run produces
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
