package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/services"
)

func importDocument(t *testing.T, content string) {
	t.Helper()
	_, err := execute("import", writeDocument(t, content))
	require.NoError(t, err)
}

func roles(t *testing.T, ws *services.WorkspaceService, id string) []domain.Role {
	t.Helper()
	entries, err := ws.Tree(context.Background(), id)
	require.NoError(t, err)
	out := make([]domain.Role, len(entries))
	for i, e := range entries {
		out[i] = e.Role
	}
	return out
}

func TestOutlineCmd_PlainText(t *testing.T) {
	ws := setupTestServices(t)
	importDocument(t, posterYAML)

	out, err := execute("outline", "poster", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "Outlined layer 2 in poster.")
	assert.Equal(t,
		[]domain.Role{domain.RoleUnclassified, domain.RoleRoot, domain.RoleText, domain.RoleOutline},
		roles(t, ws, "poster"))
}

func TestOutlineCmd_NothingToDo(t *testing.T) {
	setupTestServices(t)
	importDocument(t, posterYAML)

	out, err := execute("outline", "poster", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to outline")
}

func TestOutlineCmd_Errors(t *testing.T) {
	setupTestServices(t)
	importDocument(t, posterYAML)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "missing layer", args: []string{"outline", "poster"}, want: domain.ErrInvalidInput},
		{name: "bad layer id", args: []string{"outline", "poster", "abc"}, want: domain.ErrInvalidInput},
		{name: "zero layer id", args: []string{"outline", "poster", "0"}, want: domain.ErrInvalidInput},
		{name: "all with layer", args: []string{"outline", "poster", "2", "--all"}, want: domain.ErrInvalidInput},
		{name: "unknown layer", args: []string{"outline", "poster", "42"}, want: domain.ErrNotFound},
		{name: "unknown document", args: []string{"outline", "missing", "2"}, want: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(rootCmd)
			_, err := execute(tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOutlineCmd_ProtocolErrorShowsUserMessage(t *testing.T) {
	setupTestServices(t)
	importDocument(t, `
id: broken
name: Broken
width: 40
height: 20
layers:
  - id: 3
    name: Stray
    kind: text
    text: x
    tags:
      managed-outline:text: "True"
      managed-outline:root-id: "9"
`)

	_, err := execute("outline", "broken", "3")

	assert.ErrorIs(t, err, domain.ErrParentlessChild)
	assert.Contains(t, err.Error(), "not inside one")
}

func TestOutlineCmd_All(t *testing.T) {
	ws := setupTestServices(t)
	importDocument(t, badgeYAML)

	out, err := execute("outline", "badge", "--all")

	require.NoError(t, err)
	assert.Contains(t, out, "Outlined 1 group(s), skipped 0.")
	assert.Equal(t,
		[]domain.Role{domain.RoleUnclassified, domain.RoleRoot, domain.RoleText, domain.RoleOutline},
		roles(t, ws, "badge"))
}

func TestOutlineCmd_AllReportsFailures(t *testing.T) {
	setupTestServices(t)
	importDocument(t, `
id: mixed
name: Mixed
width: 60
height: 30
layers:
  - id: 9
    name: Background
  - id: 3
    name: "Group: B"
    kind: group
    tags:
      managed-outline:root: "True"
    layers:
      - id: 4
        name: B
        kind: text
        text: B
        tags:
          managed-outline:text: "True"
          managed-outline:root-id: "9"
`)

	out, err := execute("outline", "mixed", "--all")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 group(s) could not be outlined")
	assert.Contains(t, out, "Outlined 0 group(s), skipped 0.")
	assert.Contains(t, out, "layer 3: The group's text layer references a different group.")
}

func TestInspectCmd(t *testing.T) {
	setupTestServices(t)
	importDocument(t, badgeYAML)

	out, err := execute("inspect", "badge", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "Layer:   2 Title (text)")
	assert.Contains(t, out, "Role:    managed-text")
	assert.Contains(t, out, "Root:    5")
	assert.Contains(t, out, "Outline: none")
	assert.Contains(t, out, "Member:  true")
	assert.Contains(t, out, "Status:  ready")
}

func TestInspectCmd_Unmanaged(t *testing.T) {
	setupTestServices(t)
	importDocument(t, badgeYAML)

	out, err := execute("inspect", "badge", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Role:    unclassified")
	assert.NotContains(t, out, "Root:")
	assert.Contains(t, out, "Status:  Nothing to outline")
}

func TestDuplicateCmd_ThenOutlineRepairs(t *testing.T) {
	ws := setupTestServices(t)
	importDocument(t, badgeYAML)

	out, err := execute("duplicate", "badge", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Duplicated layer 5 as")

	// The copy sits above the original with its text still pointing at 5.
	entries, err := ws.Tree(context.Background(), "badge")
	require.NoError(t, err)
	require.Len(t, entries, 5)
	copyID, copyText := entries[1].Node.ID, entries[2].Node.ID
	require.NotEqual(t, domain.NodeID(5), copyID)

	_, err = execute("outline", "badge", copyText.String())
	require.NoError(t, err)

	ins, err := ws.Inspect(context.Background(), "badge", copyText)
	require.NoError(t, err)
	assert.Equal(t, copyID, ins.Root)
	assert.NotZero(t, ins.Outline)
	assert.NoError(t, ins.Err)

	ins, err = ws.Inspect(context.Background(), "badge", 2)
	require.NoError(t, err)
	assert.Equal(t, domain.NodeID(5), ins.Root, "the original keeps its own group")
}
