package mcp

import (
	"github.com/custodia-labs/managed-outline/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Workspace manages stored documents and runs outlines.
	Workspace driving.WorkspaceService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Workspace == nil {
		return ErrMissingWorkspaceService
	}
	return nil
}
