package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/managed-outline/internal/adapters/driven/render"
	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

var testBrush = domain.Brush{Name: "round", Size: 3, Color: "#000000"}

func TestOutlineService_Run_ReportsProgressInOrder(t *testing.T) {
	ws := newHost(t, titleDocument())
	renderer := &fakeRenderer{}
	progress := &recordingProgress{}
	svc := NewOutlineService(ws, ws, ws, renderer, progress, testBrush)

	done, err := svc.Run(context.Background(), 2)

	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []string{"Drawing outline around text"}, progress.messages)
	assert.Equal(t, []int{0, 25, 50, 75, 100}, progress.updates)
	assert.Equal(t, []string{"text", "stroke", "remove", "crop", "active"}, renderer.calls)
	assert.Equal(t, []domain.PathID{7}, renderer.removed)

	root := mustNode(t, ws, renderer.active)
	assert.Equal(t, "Group: Title", root.Name)
}

func TestOutlineService_Run_SoftOutcomes(t *testing.T) {
	snap := titleDocument()
	snap.Nodes = append(snap.Nodes, domain.Node{
		ID: 4, Name: "Empty", Kind: domain.KindGroup, Tags: rawTags("managed-outline:root", "True"),
	})
	snap.TopLevel = append(snap.TopLevel, 4)
	snap.NextID = 5

	for name, target := range map[string]domain.NodeID{"unmanaged raster": 1, "root without text": 4} {
		t.Run(name, func(t *testing.T) {
			ws := newHost(t, snap.Clone())
			renderer := &fakeRenderer{}
			progress := &recordingProgress{}

			done, err := NewOutlineService(ws, ws, ws, renderer, progress, testBrush).Run(context.Background(), target)

			require.NoError(t, err)
			assert.False(t, done)
			assert.Equal(t, []int{0, 100}, progress.updates)
			assert.Empty(t, renderer.calls)
		})
	}
}

func TestOutlineService_Run_HardErrorForcesCompletion(t *testing.T) {
	ws := newHost(t, titleDocument())
	renderer := &fakeRenderer{textErr: domain.ErrExpectedTextLayer}
	progress := &recordingProgress{}

	done, err := NewOutlineService(ws, ws, ws, renderer, progress, testBrush).Run(context.Background(), 2)

	assert.ErrorIs(t, err, domain.ErrExpectedTextLayer)
	assert.False(t, done)
	assert.Equal(t, []int{0, 25, 100}, progress.updates)
}

func TestOutlineService_Run_StructuralErrorIsReturned(t *testing.T) {
	ws := newHost(t, managedDocument())
	progress := &recordingProgress{}

	_, err := NewOutlineService(ws, ws, ws, &fakeRenderer{}, progress, testBrush).Run(context.Background(), 30)

	assert.ErrorIs(t, err, domain.ErrParentlessChild)
	assert.Equal(t, []int{0, 100}, progress.updates)
}

func TestOutlineService_Run_StrokeFailureStillRemovesPath(t *testing.T) {
	ws := newHost(t, titleDocument())
	strokeErr := errors.New("brush exploded")
	renderer := &fakeRenderer{strokeErr: strokeErr}

	_, err := NewOutlineService(ws, ws, ws, renderer, nil, testBrush).Run(context.Background(), 2)

	assert.ErrorIs(t, err, strokeErr)
	assert.Equal(t, []string{"text", "stroke", "remove"}, renderer.calls)
	assert.Equal(t, []domain.PathID{7}, renderer.removed)
}

func TestOutlineService_Run_IsOneUndoStep(t *testing.T) {
	ws := newHost(t, titleDocument())
	before := ws.Snapshot()

	done, err := NewOutlineService(ws, ws, ws, &fakeRenderer{}, nil, testBrush).Run(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, done)

	require.NoError(t, ws.Undo())
	after := ws.Snapshot()
	assert.Equal(t, before.Nodes, after.Nodes)
	assert.Equal(t, before.TopLevel, after.TopLevel)
	assert.False(t, ws.CanUndo())
}

func TestOutlineService_Run_Cancelled(t *testing.T) {
	ws := newHost(t, titleDocument())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOutlineService(ws, ws, ws, render.NewRasteriser(ws, domain.TextFaceBasic), nil, testBrush).Run(ctx, 2)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutlineService_Run_WithRasteriser(t *testing.T) {
	ws := newHost(t, titleDocument())
	svc := NewOutlineService(ws, ws, ws, render.NewRasteriser(ws, domain.TextFaceBasic), nil, testBrush)

	done, err := svc.Run(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, done)

	group, err := svc.Inspect(context.Background(), ws.Active())
	require.NoError(t, err)
	require.NoError(t, group.Err)

	outline := mustNode(t, ws, group.Outline)
	require.NotNil(t, outline.Raster)
	assert.False(t, outline.Bounds.Empty())
	assert.True(t, outline.Bounds.In(ws.Bounds()))
	assert.NotEqual(t, ws.Bounds(), outline.Bounds, "the outline is cropped to its stroke")
	assert.Zero(t, ws.PathCount(), "temporary paths are discarded")

	// A second run replaces the outline in place.
	done, err = svc.Run(context.Background(), group.Text)
	require.NoError(t, err)
	require.True(t, done)

	again, err := svc.Inspect(context.Background(), group.Root)
	require.NoError(t, err)
	assert.NotEqual(t, group.Outline, again.Outline)
	assert.Equal(t, outline.Bounds, mustNode(t, ws, again.Outline).Bounds)
	assert.Len(t, mustNode(t, ws, group.Root).Children, 2)
}
