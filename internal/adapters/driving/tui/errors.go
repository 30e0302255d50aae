package tui

import "errors"

// ErrMissingWorkspaceService is returned when the workspace service is not provided.
var ErrMissingWorkspaceService = errors.New("tui: workspace service is required")

// ErrMissingDocument is returned when no document ID is given.
var ErrMissingDocument = errors.New("tui: document id is required")
