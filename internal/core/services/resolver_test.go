package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

// managedDocument holds a consistent managed group and some broken nodes.
//
//	10 Group: Title (root)
//	  11 Title (text, ref 10)
//	  12 Outline: Title (outline, ref 10)
//	20 Folder (plain group)
//	  21 Stray (text, ref 20)
//	30 Loose (text, ref 10)
//	40 Other (root)
//	  41 Copy (text, ref 10)
func managedDocument() *domain.DocumentSnapshot {
	return &domain.DocumentSnapshot{
		Document: domain.Document{ID: "doc-2", Width: 64, Height: 32},
		Nodes: []domain.Node{
			{ID: 10, Name: "Group: Title", Kind: domain.KindGroup, Children: []domain.NodeID{11, 12},
				Tags: rawTags("managed-outline:root", "True")},
			{ID: 11, Name: "Title", Parent: 10, Kind: domain.KindText, Text: "Title",
				Tags: rawTags("managed-outline:text", "True", "managed-outline:root-id", "10")},
			{ID: 12, Name: "Outline: Title", Parent: 10, Kind: domain.KindLayer,
				Tags: rawTags("managed-outline:outline", "True", "managed-outline:root-id", "10")},
			{ID: 20, Name: "Folder", Kind: domain.KindGroup, Children: []domain.NodeID{21}},
			{ID: 21, Name: "Stray", Parent: 20, Kind: domain.KindText,
				Tags: rawTags("managed-outline:text", "True", "managed-outline:root-id", "20")},
			{ID: 30, Name: "Loose", Kind: domain.KindText,
				Tags: rawTags("managed-outline:text", "True", "managed-outline:root-id", "10")},
			{ID: 40, Name: "Other", Kind: domain.KindGroup, Children: []domain.NodeID{41},
				Tags: rawTags("managed-outline:root", "True")},
			{ID: 41, Name: "Copy", Parent: 40, Kind: domain.KindText,
				Tags: rawTags("managed-outline:text", "True", "managed-outline:root-id", "10")},
		},
		TopLevel: []domain.NodeID{10, 20, 30, 40},
		NextID:   50,
	}
}

func newResolver(t *testing.T) (*RootResolver, func(domain.NodeID) domain.Node) {
	t.Helper()
	ws := newHost(t, managedDocument())
	tags := NewTagStore(ws)
	r := NewRootResolver(ws, tags, NewClassifier(tags))
	return r, func(id domain.NodeID) domain.Node { return mustNode(t, ws, id) }
}

func TestRootResolver_Resolve(t *testing.T) {
	r, node := newResolver(t)

	tests := []struct {
		name    string
		target  domain.NodeID
		want    domain.NodeID
		wantErr error
	}{
		{"root resolves to itself", 10, 10, nil},
		{"text resolves to parent", 11, 10, nil},
		{"outline resolves to parent", 12, 10, nil},
		{"unmanaged parent", 21, 0, domain.ErrParentLayerWasNotManagedRoot},
		{"no parent", 30, 0, domain.ErrParentlessChild},
		{"reference names another root", 41, 0, domain.ErrChildLayerDoesNotMatchRoot},
		{"no reference", 20, 0, domain.ErrChildLayerWithoutRootReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := r.Resolve(node(tt.target))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, root.ID)
		})
	}
}

func TestRootResolver_ReferenceCheckedBeforeParent(t *testing.T) {
	r, _ := newResolver(t)

	// A parentless node without a reference reports the missing reference.
	_, err := r.Resolve(domain.Node{ID: 99, Kind: domain.KindText, Tags: rawTags("managed-outline:text", "True")})

	assert.ErrorIs(t, err, domain.ErrChildLayerWithoutRootReference)
}
