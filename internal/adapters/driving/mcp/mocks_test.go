package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driving"
)

// mockWorkspaceService is a mock implementation of driving.WorkspaceService.
type mockWorkspaceService struct {
	docs       []domain.Document
	entries    []domain.TreeEntry
	inspection *domain.Inspection
	summary    *domain.OutlineSummary
	done       bool
	err        error

	outlined []domain.NodeID
}

var _ driving.WorkspaceService = (*mockWorkspaceService)(nil)

func (m *mockWorkspaceService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockWorkspaceService) Import(_ context.Context, _ io.Reader) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockWorkspaceService) Export(_ context.Context, _ string, _ io.Writer) error {
	return m.err
}

func (m *mockWorkspaceService) Tree(_ context.Context, _ string) ([]domain.TreeEntry, error) {
	return m.entries, m.err
}

func (m *mockWorkspaceService) Outline(_ context.Context, _ string, target domain.NodeID) (bool, error) {
	m.outlined = append(m.outlined, target)
	return m.done, m.err
}

func (m *mockWorkspaceService) OutlineAll(_ context.Context, _ string) (*domain.OutlineSummary, error) {
	return m.summary, m.err
}

func (m *mockWorkspaceService) Inspect(_ context.Context, _ string, _ domain.NodeID) (*domain.Inspection, error) {
	return m.inspection, m.err
}

func (m *mockWorkspaceService) Duplicate(_ context.Context, _ string, _ domain.NodeID) (domain.NodeID, error) {
	return 0, m.err
}

func (m *mockWorkspaceService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockWorkspaceService) Open(_ context.Context, _ string) (driving.Session, error) {
	return nil, m.err
}
