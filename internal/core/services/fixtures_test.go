package services

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/managed-outline/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

// titleDocument holds a plain "Title" text layer between two raster layers.
//
//	1 Background
//	2 Title (text)
//	3 Footer
func titleDocument() *domain.DocumentSnapshot {
	return &domain.DocumentSnapshot{
		Document: domain.Document{ID: "doc-1", Name: "Poster", Width: 120, Height: 40},
		Nodes: []domain.Node{
			{ID: 1, Name: "Background", Kind: domain.KindLayer},
			{ID: 2, Name: "Title", Kind: domain.KindText, Text: "Title", Bounds: image.Rect(10, 10, 45, 23)},
			{ID: 3, Name: "Footer", Kind: domain.KindLayer},
		},
		TopLevel: []domain.NodeID{1, 2, 3},
		NextID:   4,
	}
}

func newHost(t *testing.T, snap *domain.DocumentSnapshot) *memory.Workspace {
	t.Helper()
	ws, err := memory.NewWorkspace(snap)
	require.NoError(t, err)
	return ws
}

// rawTags builds a raw tag map the way the host stores it.
func rawTags(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1] + "\x00"
	}
	return m
}

func mustNode(t *testing.T, ws *memory.Workspace, id domain.NodeID) domain.Node {
	t.Helper()
	n, err := ws.Node(id)
	require.NoError(t, err)
	return n
}

// tagValue reads a tag the way the core does.
func tagValue(n domain.Node, key domain.TagKey) string {
	v, _ := NewTagStore(nil).Get(n, key)
	return v
}

// recordingProgress records progress calls.
type recordingProgress struct {
	messages []string
	updates  []int
}

func (p *recordingProgress) Init(message string) { p.messages = append(p.messages, message) }
func (p *recordingProgress) Update(percent int)  { p.updates = append(p.updates, percent) }

// fakeRenderer records calls and fails on demand.
type fakeRenderer struct {
	calls     []string
	textErr   error
	strokeErr error
	removed   []domain.PathID
	active    domain.NodeID
}

func (r *fakeRenderer) TextToPath(_ context.Context, _ domain.NodeID) (domain.PathID, error) {
	r.calls = append(r.calls, "text")
	if r.textErr != nil {
		return 0, r.textErr
	}
	return 7, nil
}

func (r *fakeRenderer) StrokePath(_ context.Context, _ domain.NodeID, _ domain.PathID, _ domain.Brush) error {
	r.calls = append(r.calls, "stroke")
	return r.strokeErr
}

func (r *fakeRenderer) RemovePath(_ context.Context, path domain.PathID) error {
	r.calls = append(r.calls, "remove")
	r.removed = append(r.removed, path)
	return nil
}

func (r *fakeRenderer) Autocrop(_ context.Context, _ domain.NodeID) error {
	r.calls = append(r.calls, "crop")
	return nil
}

func (r *fakeRenderer) SetActive(_ context.Context, id domain.NodeID) error {
	r.calls = append(r.calls, "active")
	r.active = id
	return nil
}

// failingBackend rejects every tag write.
type failingBackend struct{}

var errBackend = errors.New("backend down")

func (failingBackend) AttachTag(domain.NodeID, domain.TagKey, string, domain.TagFlags) error {
	return errBackend
}
