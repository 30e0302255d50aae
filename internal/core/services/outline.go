package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driving"
	"github.com/custodia-labs/managed-outline/internal/logger"
)

// Ensure OutlineService implements the interface.
var _ driving.OutlineService = (*OutlineService)(nil)

// Labels shown for a run.
const (
	progressMessage = "Drawing outline around text"
	undoLabel       = "Managed Text Outline"
)

// OutlineService prepares the managed group for a node and strokes the
// outline of its text.
type OutlineService struct {
	groups   *GroupManager
	undo     driven.UndoManager
	renderer driven.Renderer
	progress driven.ProgressReporter
	brush    domain.Brush
}

// NewOutlineService creates an outline service.
// undo and progress may be nil.
func NewOutlineService(
	tree driven.DocumentTree,
	tags driven.TagBackend,
	undo driven.UndoManager,
	renderer driven.Renderer,
	progress driven.ProgressReporter,
	brush domain.Brush,
) *OutlineService {
	if progress == nil {
		progress = nopProgress{}
	}
	return &OutlineService{
		groups:   NewGroupManager(tree, tags),
		undo:     undo,
		renderer: renderer,
		progress: progress,
		brush:    brush,
	}
}

// Run outlines the text belonging to target as one undo step.
func (s *OutlineService) Run(ctx context.Context, target domain.NodeID) (done bool, err error) {
	s.progress.Init(progressMessage)
	s.progress.Update(0)
	defer func() {
		if err != nil {
			s.progress.Update(100)
		}
	}()

	if s.undo != nil {
		s.undo.BeginGroup(undoLabel)
		defer s.undo.EndGroup()
	}

	group, err := s.groups.Prepare(ctx, target)
	if err != nil {
		if domain.IsSoft(err) {
			logger.Info("Nothing to outline for layer %d: %v", target, err)
			s.progress.Update(100)
			return false, nil
		}
		return false, err
	}
	s.progress.Update(25)

	if err := s.render(ctx, group); err != nil {
		return false, err
	}

	if err := s.renderer.SetActive(ctx, group.Root); err != nil {
		return false, fmt.Errorf("focusing group %d: %w", group.Root, err)
	}
	s.progress.Update(100)

	logger.Info("Outlined text layer %d in group %d", group.Text, group.Root)
	return true, nil
}

// render strokes the text's glyph outline onto the outline layer.
func (s *OutlineService) render(ctx context.Context, group *domain.ManagedGroup) error {
	path, err := s.renderer.TextToPath(ctx, group.Text)
	if err != nil {
		return err
	}
	s.progress.Update(50)

	strokeErr := s.renderer.StrokePath(ctx, group.Outline, path, s.brush)
	if err := s.renderer.RemovePath(ctx, path); err != nil && strokeErr == nil {
		return fmt.Errorf("removing path %d: %w", path, err)
	}
	if strokeErr != nil {
		return fmt.Errorf("stroking outline layer %d: %w", group.Outline, strokeErr)
	}
	s.progress.Update(75)

	if err := s.renderer.Autocrop(ctx, group.Outline); err != nil {
		return fmt.Errorf("cropping outline layer %d: %w", group.Outline, err)
	}
	return nil
}

// Prepare produces or repairs the managed group without rendering.
func (s *OutlineService) Prepare(ctx context.Context, target domain.NodeID) (*domain.ManagedGroup, error) {
	return s.groups.Prepare(ctx, target)
}

// Inspect reports how a run would see target.
func (s *OutlineService) Inspect(ctx context.Context, target domain.NodeID) (*domain.Inspection, error) {
	return s.groups.Inspect(ctx, target)
}

type nopProgress struct{}

func (nopProgress) Init(string) {}
func (nopProgress) Update(int)  {}
