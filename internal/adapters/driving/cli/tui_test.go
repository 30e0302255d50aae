package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/managed-outline/internal/adapters/driving/tui"
)

func TestTUICmd_Use(t *testing.T) {
	assert.Equal(t, "tui [doc-id]", tuiCmd.Use)
}

func TestTUICmd_RequiresDocument(t *testing.T) {
	setupTestServices(t)

	_, err := execute("tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestTUICmd_RequiresWorkspace(t *testing.T) {
	SetServices(nil, nil)

	_, err := execute("tui", "poster")

	assert.ErrorIs(t, err, tui.ErrMissingWorkspaceService)
}
