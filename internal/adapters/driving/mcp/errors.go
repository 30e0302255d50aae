package mcp

import "errors"

// ErrMissingWorkspaceService is returned when the workspace service is not provided.
var ErrMissingWorkspaceService = errors.New("mcp: workspace service is required")
