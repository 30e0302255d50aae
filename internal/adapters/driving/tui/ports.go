// Package tui provides an interactive layer-tree browser for managed-outline.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/managed-outline/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Workspace opens stored documents as live sessions.
	Workspace driving.WorkspaceService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Workspace == nil {
		return ErrMissingWorkspaceService
	}
	return nil
}
