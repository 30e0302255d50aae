package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

func TestGroupManager_Prepare_CreatesGroupFromPlainText(t *testing.T) {
	ws := newHost(t, titleDocument())
	gm := NewGroupManager(ws, ws)

	group, err := gm.Prepare(context.Background(), 2)
	require.NoError(t, err)

	// The group takes the text layer's place.
	assert.Equal(t, []domain.NodeID{1, group.Root, 3}, ws.TopLevel())
	_, err = ws.Node(2)
	assert.ErrorIs(t, err, domain.ErrNotFound, "the original text layer is consumed")

	root := mustNode(t, ws, group.Root)
	assert.Equal(t, "Group: Title", root.Name)
	assert.Equal(t, domain.KindGroup, root.Kind)
	assert.Equal(t, "True", tagValue(root, domain.TagRoot))
	assert.Equal(t, []domain.NodeID{group.Text, group.Outline}, root.Children)

	text := mustNode(t, ws, group.Text)
	assert.Equal(t, "Title", text.Name)
	assert.Equal(t, "Title", text.Text)
	assert.Equal(t, "True", tagValue(text, domain.TagText))
	assert.Equal(t, group.Root.String(), tagValue(text, domain.TagRootReference))

	outline := mustNode(t, ws, group.Outline)
	assert.Equal(t, "Outline: Title", outline.Name)
	assert.Equal(t, "True", tagValue(outline, domain.TagOutline))
	assert.Equal(t, group.Root.String(), tagValue(outline, domain.TagRootReference))
	assert.Equal(t, ws.Bounds(), outline.Bounds, "outline layers start at canvas size")
}

func TestGroupManager_Prepare_NestedPlainTextKeepsParent(t *testing.T) {
	ws := newHost(t, &domain.DocumentSnapshot{
		Document: domain.Document{ID: "doc", Width: 10, Height: 10},
		Nodes: []domain.Node{
			{ID: 1, Name: "Folder", Kind: domain.KindGroup, Children: []domain.NodeID{2, 3}},
			{ID: 2, Name: "Logo", Parent: 1, Kind: domain.KindLayer},
			{ID: 3, Name: "Caption", Parent: 1, Kind: domain.KindText, Text: "Hi"},
		},
		TopLevel: []domain.NodeID{1},
		NextID:   4,
	})

	group, err := NewGroupManager(ws, ws).Prepare(context.Background(), 3)
	require.NoError(t, err)

	folder := mustNode(t, ws, 1)
	assert.Equal(t, []domain.NodeID{2, group.Root}, folder.Children)
	assert.Equal(t, domain.NodeID(1), mustNode(t, ws, group.Root).Parent)
}

func TestGroupManager_Prepare_ReselectingAnyMemberKeepsRootAndText(t *testing.T) {
	for _, pick := range []string{"root", "text", "outline"} {
		t.Run(pick, func(t *testing.T) {
			ws := newHost(t, titleDocument())
			gm := NewGroupManager(ws, ws)
			first, err := gm.Prepare(context.Background(), 2)
			require.NoError(t, err)
			textBefore := mustNode(t, ws, first.Text)

			target := map[string]domain.NodeID{"root": first.Root, "text": first.Text, "outline": first.Outline}[pick]
			second, err := gm.Prepare(context.Background(), target)
			require.NoError(t, err)

			assert.Equal(t, first.Root, second.Root)
			assert.Equal(t, first.Text, second.Text)
			assert.NotEqual(t, first.Outline, second.Outline, "the outline is recreated")

			_, err = ws.Node(first.Outline)
			assert.ErrorIs(t, err, domain.ErrNotFound)

			root := mustNode(t, ws, second.Root)
			assert.Equal(t, []domain.NodeID{second.Text, second.Outline}, root.Children, "same position")

			outline := mustNode(t, ws, second.Outline)
			assert.Equal(t, "True", tagValue(outline, domain.TagOutline))
			assert.Equal(t, second.Root.String(), tagValue(outline, domain.TagRootReference))

			assert.Equal(t, textBefore, mustNode(t, ws, second.Text), "text untouched")
		})
	}
}

func TestGroupManager_Prepare_OutlineAfterTextWithOtherChildren(t *testing.T) {
	ws := newHost(t, &domain.DocumentSnapshot{
		Document: domain.Document{ID: "doc", Width: 10, Height: 10},
		Nodes: []domain.Node{
			{ID: 1, Name: "Group", Kind: domain.KindGroup, Children: []domain.NodeID{2, 3, 4},
				Tags: rawTags("managed-outline:root", "True")},
			{ID: 2, Name: "Shadow", Parent: 1, Kind: domain.KindLayer},
			{ID: 3, Name: "Title", Parent: 1, Kind: domain.KindText, Text: "T",
				Tags: rawTags("managed-outline:text", "True", "managed-outline:root-id", "1")},
			{ID: 4, Name: "Glow", Parent: 1, Kind: domain.KindLayer},
		},
		TopLevel: []domain.NodeID{1},
		NextID:   5,
	})

	group, err := NewGroupManager(ws, ws).Prepare(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []domain.NodeID{2, 3, group.Outline, 4}, mustNode(t, ws, 1).Children)
}

func TestGroupManager_Prepare_RepairsDuplicatedGroup(t *testing.T) {
	for _, pick := range []string{"text", "root", "outline"} {
		t.Run(pick, func(t *testing.T) {
			ws := newHost(t, titleDocument())
			gm := NewGroupManager(ws, ws)
			a, err := gm.Prepare(context.Background(), 2)
			require.NoError(t, err)

			bRoot, err := ws.DuplicateSubtree(a.Root)
			require.NoError(t, err)
			b := mustNode(t, ws, bRoot)
			require.Len(t, b.Children, 2)
			bText, bOutline := b.Children[0], b.Children[1]
			require.Equal(t, a.Root.String(), tagValue(mustNode(t, ws, bText), domain.TagRootReference))

			target := map[string]domain.NodeID{"root": bRoot, "text": bText, "outline": bOutline}[pick]
			got, err := gm.Prepare(context.Background(), target)
			require.NoError(t, err)

			assert.Equal(t, bRoot, got.Root)
			assert.Equal(t, bText, got.Text)

			text := mustNode(t, ws, bText)
			assert.Equal(t, bRoot.String(), tagValue(text, domain.TagRootReference))

			member, err := gm.validator.IsMember(mustNode(t, ws, bRoot), text)
			require.NoError(t, err)
			assert.True(t, member)

			// The original group is unaffected.
			again, err := gm.Prepare(context.Background(), a.Text)
			require.NoError(t, err)
			assert.Equal(t, a.Root, again.Root)
		})
	}
}

func TestGroupManager_Prepare_RepairsCopyOfDeletedGroup(t *testing.T) {
	for _, pick := range []string{"text", "root"} {
		t.Run(pick, func(t *testing.T) {
			ws := newHost(t, titleDocument())
			gm := NewGroupManager(ws, ws)
			a, err := gm.Prepare(context.Background(), 2)
			require.NoError(t, err)

			bRoot, err := ws.DuplicateSubtree(a.Root)
			require.NoError(t, err)
			require.NoError(t, ws.Delete(a.Root))
			bText := mustNode(t, ws, bRoot).Children[0]
			require.Equal(t, a.Root.String(), tagValue(mustNode(t, ws, bText), domain.TagRootReference))

			target := map[string]domain.NodeID{"root": bRoot, "text": bText}[pick]
			got, err := gm.Prepare(context.Background(), target)
			require.NoError(t, err)

			assert.Equal(t, bRoot, got.Root)
			assert.Equal(t, bText, got.Text)
			assert.Equal(t, bRoot.String(), tagValue(mustNode(t, ws, bText), domain.TagRootReference))

			ins, err := gm.Inspect(context.Background(), bText)
			require.NoError(t, err)
			assert.NoError(t, ins.Err)
			assert.True(t, ins.Member)
		})
	}
}

func TestGroupManager_Prepare_ForeignReferenceWithoutDuplicateFails(t *testing.T) {
	ws := newHost(t, managedDocument())
	gm := NewGroupManager(ws, ws)

	// 41 sits under root 40 but references root 10: a copy that was moved
	// by hand is still healed because 10 is a live root.
	group, err := gm.Prepare(context.Background(), 41)
	require.NoError(t, err)
	assert.Equal(t, domain.NodeID(40), group.Root)

	// A reference to something that is not a root is a real mismatch.
	ws = newHost(t, &domain.DocumentSnapshot{
		Document: domain.Document{ID: "doc", Width: 10, Height: 10},
		Nodes: []domain.Node{
			{ID: 1, Name: "Group", Kind: domain.KindGroup, Children: []domain.NodeID{2},
				Tags: rawTags("managed-outline:root", "True")},
			{ID: 2, Name: "Title", Parent: 1, Kind: domain.KindText,
				Tags: rawTags("managed-outline:text", "True", "managed-outline:root-id", "3")},
			{ID: 3, Name: "Layer", Kind: domain.KindLayer},
		},
		TopLevel: []domain.NodeID{1, 3},
		NextID:   4,
	})
	gm = NewGroupManager(ws, ws)

	_, err = gm.Prepare(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrChildLayerDoesNotMatchRoot)

	_, err = gm.Prepare(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrTextLayerDoesNotMatchRoot)
}

func TestGroupManager_Prepare_Failures(t *testing.T) {
	tests := []struct {
		name    string
		target  domain.NodeID
		wantErr error
	}{
		{"unmanaged raster", 1, domain.ErrUnknownLayerType},
		{"root without text", 10, domain.ErrFoundRootWithoutText},
		{"empty root", 20, domain.ErrFoundRootWithoutText},
		{"text under plain group", 31, domain.ErrParentLayerWasNotManagedRoot},
		{"parentless text", 40, domain.ErrParentlessChild},
		{"text without reference", 51, domain.ErrChildLayerWithoutRootReference},
		{"unreferenced text child", 60, domain.ErrTextLayerDoesNotMatchRoot},
		{"missing node", 99, domain.ErrNotFound},
	}

	snap := &domain.DocumentSnapshot{
		Document: domain.Document{ID: "doc", Width: 10, Height: 10},
		Nodes: []domain.Node{
			{ID: 1, Name: "Background", Kind: domain.KindLayer},
			{ID: 10, Name: "Outline only", Kind: domain.KindGroup, Children: []domain.NodeID{11},
				Tags: rawTags("managed-outline:root", "True")},
			{ID: 11, Name: "Outline", Parent: 10, Kind: domain.KindLayer,
				Tags: rawTags("managed-outline:outline", "True", "managed-outline:root-id", "10")},
			{ID: 20, Name: "Empty", Kind: domain.KindGroup, Tags: rawTags("managed-outline:root", "True")},
			{ID: 30, Name: "Folder", Kind: domain.KindGroup, Children: []domain.NodeID{31}},
			{ID: 31, Name: "Text", Parent: 30, Kind: domain.KindText,
				Tags: rawTags("managed-outline:text", "True", "managed-outline:root-id", "30")},
			{ID: 40, Name: "Loose", Kind: domain.KindText,
				Tags: rawTags("managed-outline:text", "True", "managed-outline:root-id", "10")},
			{ID: 50, Name: "Group", Kind: domain.KindGroup, Children: []domain.NodeID{51},
				Tags: rawTags("managed-outline:root", "True")},
			{ID: 51, Name: "Text", Parent: 50, Kind: domain.KindText, Tags: rawTags("managed-outline:text", "True")},
			{ID: 60, Name: "Group", Kind: domain.KindGroup, Children: []domain.NodeID{61},
				Tags: rawTags("managed-outline:root", "True")},
			{ID: 61, Name: "Text", Parent: 60, Kind: domain.KindText, Tags: rawTags("managed-outline:text", "True")},
		},
		TopLevel: []domain.NodeID{1, 10, 20, 30, 40, 50, 60},
		NextID:   70,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newHost(t, snap.Clone())
			before := ws.Snapshot()

			_, err := NewGroupManager(ws, ws).Prepare(context.Background(), tt.target)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, ws.Snapshot(), "failed preparation leaves the document untouched")
		})
	}
}

func TestGroupManager_Prepare_LastDuplicateWins(t *testing.T) {
	ws := newHost(t, &domain.DocumentSnapshot{
		Document: domain.Document{ID: "doc", Width: 10, Height: 10},
		Nodes: []domain.Node{
			{ID: 1, Name: "Group", Kind: domain.KindGroup, Children: []domain.NodeID{2, 3, 4, 5},
				Tags: rawTags("managed-outline:root", "True")},
			{ID: 2, Name: "First", Parent: 1, Kind: domain.KindText,
				Tags: rawTags("managed-outline:text", "True", "managed-outline:root-id", "1")},
			{ID: 3, Name: "Outline A", Parent: 1, Kind: domain.KindLayer,
				Tags: rawTags("managed-outline:outline", "True", "managed-outline:root-id", "1")},
			{ID: 4, Name: "Second", Parent: 1, Kind: domain.KindText,
				Tags: rawTags("managed-outline:text", "True", "managed-outline:root-id", "1")},
			{ID: 5, Name: "Outline B", Parent: 1, Kind: domain.KindLayer,
				Tags: rawTags("managed-outline:outline", "True", "managed-outline:root-id", "1")},
		},
		TopLevel: []domain.NodeID{1},
		NextID:   6,
	})

	group, err := NewGroupManager(ws, ws).Prepare(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, domain.NodeID(4), group.Text)
	// Only the last outline is replaced.
	assert.Equal(t, []domain.NodeID{2, 3, 4, group.Outline}, mustNode(t, ws, 1).Children)
	assert.Equal(t, "Outline: Second", mustNode(t, ws, group.Outline).Name)
}

func TestGroupManager_Inspect(t *testing.T) {
	ws := newHost(t, titleDocument())
	gm := NewGroupManager(ws, ws)
	ctx := context.Background()

	ins, err := gm.Inspect(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePlainText, ins.Role)
	assert.NoError(t, ins.Err)

	ins, err = gm.Inspect(ctx, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, ins.Err, domain.ErrUnknownLayerType)

	group, err := gm.Prepare(ctx, 2)
	require.NoError(t, err)
	before := ws.Snapshot()

	ins, err = gm.Inspect(ctx, group.Outline)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOutline, ins.Role)
	assert.Equal(t, group.Root, ins.Root)
	assert.Equal(t, group.Text, ins.Text)
	assert.Equal(t, group.Outline, ins.Outline)
	assert.True(t, ins.Member)
	assert.NoError(t, ins.Err)
	assert.NoError(t, ins.OutlineErr)
	assert.Equal(t, before, ws.Snapshot(), "inspect never mutates")

	_, err = gm.Inspect(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGroupManager_Inspect_ReportsMismatchedOutline(t *testing.T) {
	ws := newHost(t, &domain.DocumentSnapshot{
		Document: domain.Document{ID: "doc", Width: 10, Height: 10},
		Nodes: []domain.Node{
			{ID: 1, Name: "Group", Kind: domain.KindGroup, Children: []domain.NodeID{2, 3},
				Tags: rawTags("managed-outline:root", "True")},
			{ID: 2, Name: "Title", Parent: 1, Kind: domain.KindText,
				Tags: rawTags("managed-outline:text", "True", "managed-outline:root-id", "1")},
			{ID: 3, Name: "Outline", Parent: 1, Kind: domain.KindLayer,
				Tags: rawTags("managed-outline:outline", "True", "managed-outline:root-id", "8")},
		},
		TopLevel: []domain.NodeID{1},
		NextID:   9,
	})

	ins, err := NewGroupManager(ws, ws).Inspect(context.Background(), 1)

	require.NoError(t, err)
	assert.NoError(t, ins.Err, "a stale outline does not stop a run")
	assert.ErrorIs(t, ins.OutlineErr, domain.ErrOutlineLayerDoesNotMatchRoot)
}

func TestGroupManager_Prepare_TagBackendFailure(t *testing.T) {
	ws := newHost(t, titleDocument())

	_, err := NewGroupManager(ws, failingBackend{}).Prepare(context.Background(), 2)

	assert.ErrorIs(t, err, errBackend)
}
