package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid tree URI", "managed-outline://documents/doc-456/tree", "doc-456"},
		{"invalid prefix", "file://documents/doc-456/tree", ""},
		{"missing tree suffix", "managed-outline://documents/doc-456", ""},
		{"empty URI", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	mock := &mockWorkspaceService{docs: []domain.Document{{ID: "a", Name: "Poster", Width: 4, Height: 2}}}
	server, err := NewServer(&Ports{Workspace: mock})
	require.NoError(t, err)

	result, err := server.handleDocumentsResource(context.Background(), makeReadResourceRequest("managed-outline://documents"))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)

	var docs []DocumentOutput
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &docs))
	assert.Equal(t, []DocumentOutput{{ID: "a", Name: "Poster", Width: 4, Height: 2}}, docs)
}

func TestServer_handleTreeResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists layers with roles", func(t *testing.T) {
		server := newWorkspaceServer(t)
		_, _, err := server.handleOutline(ctx, nil, OutlineInput{DocumentID: "poster", LayerID: 2})
		require.NoError(t, err)

		uri := "managed-outline://documents/poster/tree"
		result, err := server.handleTreeResource(ctx, makeReadResourceRequest(uri))
		require.NoError(t, err)
		assert.Equal(t, uri, result.Contents[0].URI)

		var entries []treeEntry
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &entries))
		require.Len(t, entries, 4)
		assert.Equal(t, "managed-root", entries[1].Role)
		assert.Equal(t, "Group: Title", entries[1].Name)
		assert.Equal(t, 1, entries[2].Depth)
		assert.Equal(t, "managed-outline", entries[3].Role)
	})

	t.Run("unknown document", func(t *testing.T) {
		server := newWorkspaceServer(t)

		_, err := server.handleTreeResource(ctx, makeReadResourceRequest("managed-outline://documents/nope/tree"))

		assert.Error(t, err)
	})

	t.Run("malformed URI", func(t *testing.T) {
		server := newWorkspaceServer(t)

		_, err := server.handleTreeResource(ctx, makeReadResourceRequest("managed-outline://other"))

		assert.Error(t, err)
	})
}
