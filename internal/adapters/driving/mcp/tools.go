package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

// OutlineInput is the input schema for the outline_layer tool.
type OutlineInput struct {
	DocumentID string `json:"document_id" jsonschema:"the stored document to edit"`
	LayerID    int    `json:"layer_id,omitempty" jsonschema:"the text layer, managed group or outline layer to outline"`
	All        bool   `json:"all,omitempty" jsonschema:"re-outline every managed group in the document instead of one layer"`
}

// OutlineOutput is the output schema for the outline_layer tool.
type OutlineOutput struct {
	Outlined []int            `json:"outlined"`
	Skipped  []int            `json:"skipped,omitempty"`
	Failed   map[string]string `json:"failed,omitempty"`
	Message  string           `json:"message"`
}

// InspectInput is the input schema for the inspect_layer tool.
type InspectInput struct {
	DocumentID string `json:"document_id" jsonschema:"the stored document"`
	LayerID    int    `json:"layer_id" jsonschema:"the layer to inspect"`
}

// InspectOutput is the output schema for the inspect_layer tool.
type InspectOutput struct {
	LayerID int    `json:"layer_id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Root    int    `json:"root,omitempty"`
	Text    int    `json:"text,omitempty"`
	Outline int    `json:"outline,omitempty"`
	Member  bool   `json:"member"`
	Problem string `json:"problem,omitempty"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes one stored document.
type DocumentOutput struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "outline_layer",
		Description: "Draw or refresh the managed outline around a text layer",
	}, s.handleOutline)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "inspect_layer",
		Description: "Report how a layer is classified and which managed group it belongs to",
	}, s.handleInspect)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List stored documents",
	}, s.handleListDocuments)
}

// handleOutline handles the outline_layer tool invocation.
func (s *Server) handleOutline(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OutlineInput,
) (*mcp.CallToolResult, OutlineOutput, error) {
	if input.All {
		summary, err := s.ports.Workspace.OutlineAll(ctx, input.DocumentID)
		if err != nil {
			return nil, OutlineOutput{}, domain.NewUserError(err)
		}
		out := OutlineOutput{
			Outlined: ids(summary.Outlined),
			Skipped:  ids(summary.Skipped),
			Message: fmt.Sprintf("Outlined %d group(s), skipped %d, failed %d",
				len(summary.Outlined), len(summary.Skipped), len(summary.Failed)),
		}
		if len(summary.Failed) > 0 {
			out.Failed = make(map[string]string, len(summary.Failed))
			for id, ferr := range summary.Failed {
				out.Failed[id.String()] = domain.UserMessage(ferr)
			}
		}
		return nil, out, nil
	}

	target := domain.NodeID(input.LayerID)
	done, err := s.ports.Workspace.Outline(ctx, input.DocumentID, target)
	if err != nil {
		return nil, OutlineOutput{}, domain.NewUserError(err)
	}
	if !done {
		return nil, OutlineOutput{Outlined: []int{}, Message: domain.UserMessage(domain.ErrUnknownLayerType)}, nil
	}
	return nil, OutlineOutput{
		Outlined: []int{input.LayerID},
		Message:  fmt.Sprintf("Outlined layer %d", input.LayerID),
	}, nil
}

// handleInspect handles the inspect_layer tool invocation.
func (s *Server) handleInspect(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input InspectInput,
) (*mcp.CallToolResult, InspectOutput, error) {
	ins, err := s.ports.Workspace.Inspect(ctx, input.DocumentID, domain.NodeID(input.LayerID))
	if err != nil {
		return nil, InspectOutput{}, domain.NewUserError(err)
	}

	out := InspectOutput{
		LayerID: int(ins.Target.ID),
		Name:    ins.Target.Name,
		Role:    ins.Role.String(),
		Root:    int(ins.Root),
		Text:    int(ins.Text),
		Outline: int(ins.Outline),
		Member:  ins.Member,
	}
	switch {
	case ins.Err != nil:
		out.Problem = domain.UserMessage(ins.Err)
	case ins.OutlineErr != nil:
		out.Problem = domain.UserMessage(ins.OutlineErr)
	}
	return nil, out, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Workspace.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	out := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i, d := range docs {
		out.Documents[i] = DocumentOutput{ID: d.ID, Name: d.Name, Width: d.Width, Height: d.Height}
	}
	return nil, out, nil
}

func ids(nodes []domain.NodeID) []int {
	out := make([]int, len(nodes))
	for i, id := range nodes {
		out[i] = int(id)
	}
	return out
}
