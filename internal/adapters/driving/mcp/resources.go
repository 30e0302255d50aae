package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for managed-outline resources.
	uriScheme = "managed-outline://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all stored documents",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}/tree",
		Name:        "document-tree",
		Description: "Layer tree of a document with the managed role of each layer",
		MIMEType:    "application/json",
	}, s.handleTreeResource)
}

// handleDocumentsResource returns a list of all stored documents.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Workspace.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	infos := make([]DocumentOutput, len(docs))
	for i, d := range docs {
		infos[i] = DocumentOutput{ID: d.ID, Name: d.Name, Width: d.Width, Height: d.Height}
	}

	return jsonResult(req.Params.URI, infos)
}

// treeEntry is one layer in the tree resource.
type treeEntry struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Role  string `json:"role"`
	Depth int    `json:"depth"`
}

// handleTreeResource returns the layer tree of a document.
func (s *Server) handleTreeResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	entries, err := s.ports.Workspace.Tree(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading tree: %w", err)
	}

	infos := make([]treeEntry, len(entries))
	for i, e := range entries {
		infos[i] = treeEntry{
			ID:    int(e.Node.ID),
			Name:  e.Node.Name,
			Kind:  e.Node.Kind.String(),
			Role:  e.Role.String(),
			Depth: e.Depth,
		}
	}

	return jsonResult(req.Params.URI, infos)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like
// managed-outline://documents/{documentId}/tree.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"
	const suffix = "/tree"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
