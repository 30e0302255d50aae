package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driving"
	"github.com/custodia-labs/managed-outline/internal/logger"
)

// Ensure WorkspaceService implements the interface.
var _ driving.WorkspaceService = (*WorkspaceService)(nil)

// ErrNoRenderer is returned when a workspace cannot draw.
var ErrNoRenderer = errors.New("workspace has no renderer")

// WorkspaceService manages stored documents and runs outlines on them.
// Runs on the same document are serialised.
type WorkspaceService struct {
	store    driven.DocumentStore
	codec    driven.DocumentCodec
	factory  driven.WorkspaceFactory
	settings driving.SettingsService
	progress driven.ProgressReporter

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	now   func() time.Time
}

// NewWorkspaceService creates a workspace service.
// settings and progress may be nil.
func NewWorkspaceService(
	store driven.DocumentStore,
	codec driven.DocumentCodec,
	factory driven.WorkspaceFactory,
	settings driving.SettingsService,
	progress driven.ProgressReporter,
) *WorkspaceService {
	return &WorkspaceService{
		store:    store,
		codec:    codec,
		factory:  factory,
		settings: settings,
		progress: progress,
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
	}
}

// lock serialises work on one document and returns the unlock func.
func (s *WorkspaceService) lock(documentID string) func() {
	s.mu.Lock()
	l, ok := s.locks[documentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[documentID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// List returns all stored documents.
func (s *WorkspaceService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.List(ctx)
}

// Import decodes a document and stores it, replacing a stored document
// with the same ID.
func (s *WorkspaceService) Import(ctx context.Context, r io.Reader) (*domain.Document, error) {
	snap, err := s.codec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if snap.Document.ID == "" {
		snap.Document.ID = uuid.New().String()
	}

	unlock := s.lock(snap.Document.ID)
	defer unlock()

	now := s.now()
	snap.Document.CreatedAt = now
	if existing, err := s.store.Load(ctx, snap.Document.ID); err == nil {
		snap.Document.CreatedAt = existing.Document.CreatedAt
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	snap.Document.UpdatedAt = now

	// Opening validates the tree structure.
	if _, err := s.factory.Open(snap); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	logger.Info("Imported document %s (%d layers)", snap.Document.ID, len(snap.Nodes))
	return &snap.Document, nil
}

// Export encodes a stored document.
func (s *WorkspaceService) Export(ctx context.Context, documentID string, w io.Writer) error {
	snap, err := s.store.Load(ctx, documentID)
	if err != nil {
		return err
	}
	return s.codec.Encode(w, snap)
}

// Tree returns a depth-first listing of the document with roles.
func (s *WorkspaceService) Tree(ctx context.Context, documentID string) ([]domain.TreeEntry, error) {
	ws, err := s.open(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return Flatten(ws)
}

// Outline runs the outline on one node and stores the result.
// Nothing is stored when the run fails or has nothing to do.
func (s *WorkspaceService) Outline(ctx context.Context, documentID string, target domain.NodeID) (bool, error) {
	unlock := s.lock(documentID)
	defer unlock()

	ws, err := s.open(ctx, documentID)
	if err != nil {
		return false, err
	}
	outliner, err := s.outliner(ws)
	if err != nil {
		return false, err
	}

	defer logger.Since("outline", time.Now())
	done, err := outliner.Run(ctx, target)
	if err != nil || !done {
		return false, err
	}
	return true, s.save(ctx, ws)
}

// OutlineAll re-outlines every managed root in the document.
// A failed run is undone so later roots see a clean document.
func (s *WorkspaceService) OutlineAll(ctx context.Context, documentID string) (*domain.OutlineSummary, error) {
	unlock := s.lock(documentID)
	defer unlock()

	ws, err := s.open(ctx, documentID)
	if err != nil {
		return nil, err
	}
	outliner, err := s.outliner(ws)
	if err != nil {
		return nil, err
	}

	entries, err := Flatten(ws)
	if err != nil {
		return nil, err
	}

	summary := &domain.OutlineSummary{Failed: make(map[domain.NodeID]error)}
	for _, e := range entries {
		if e.Role != domain.RoleRoot {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		done, err := outliner.Run(ctx, e.Node.ID)
		switch {
		case err != nil:
			summary.Failed[e.Node.ID] = err
			if ws.CanUndo() {
				if uerr := ws.Undo(); uerr != nil {
					return nil, fmt.Errorf("reverting group %d: %w", e.Node.ID, uerr)
				}
			}
			logger.Warn("Group %d failed: %v", e.Node.ID, err)
		case done:
			summary.Outlined = append(summary.Outlined, e.Node.ID)
		default:
			summary.Skipped = append(summary.Skipped, e.Node.ID)
		}
	}

	if len(summary.Outlined) > 0 {
		if err := s.save(ctx, ws); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// Inspect reports how a run would see the node.
func (s *WorkspaceService) Inspect(ctx context.Context, documentID string, target domain.NodeID) (*domain.Inspection, error) {
	ws, err := s.open(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return NewGroupManager(ws, ws).Inspect(ctx, target)
}

// Duplicate copies a node and its subtree, tags included, directly above
// the original.
func (s *WorkspaceService) Duplicate(ctx context.Context, documentID string, target domain.NodeID) (domain.NodeID, error) {
	unlock := s.lock(documentID)
	defer unlock()

	ws, err := s.open(ctx, documentID)
	if err != nil {
		return 0, err
	}
	id, err := ws.DuplicateSubtree(target)
	if err != nil {
		return 0, err
	}
	if err := s.save(ctx, ws); err != nil {
		return 0, err
	}
	logger.Info("Duplicated layer %d as %d", target, id)
	return id, nil
}

// Delete removes a stored document.
func (s *WorkspaceService) Delete(ctx context.Context, documentID string) error {
	unlock := s.lock(documentID)
	defer unlock()
	return s.store.Delete(ctx, documentID)
}

// Open loads a document as a live session.
func (s *WorkspaceService) Open(ctx context.Context, documentID string) (driving.Session, error) {
	ws, err := s.open(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &session{svc: s, ws: ws, doc: ws.Snapshot().Document}, nil
}

func (s *WorkspaceService) open(ctx context.Context, documentID string) (driven.Workspace, error) {
	snap, err := s.store.Load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.factory.Open(snap)
}

func (s *WorkspaceService) save(ctx context.Context, ws driven.Workspace) error {
	snap := ws.Snapshot()
	snap.Document.UpdatedAt = s.now()
	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// outliner builds an outline service over the workspace with the
// configured brush.
func (s *WorkspaceService) outliner(ws driven.Workspace) (*OutlineService, error) {
	renderer := ws.Renderer()
	if renderer == nil {
		return nil, ErrNoRenderer
	}
	return NewOutlineService(ws, ws, ws, renderer, s.progress, s.brush()), nil
}

func (s *WorkspaceService) brush() domain.Brush {
	if s.settings != nil {
		if settings, err := s.settings.Get(); err == nil {
			return settings.Brush
		}
	}
	return domain.DefaultAppSettings().Brush
}

// Flatten lists the tree depth-first with each node's role.
func Flatten(tree driven.DocumentTree) ([]domain.TreeEntry, error) {
	classifier := NewClassifier(NewTagStore(nil))
	var entries []domain.TreeEntry

	var walk func(ids []domain.NodeID, depth int) error
	walk = func(ids []domain.NodeID, depth int) error {
		for _, id := range ids {
			n, err := tree.Node(id)
			if err != nil {
				return err
			}
			entries = append(entries, domain.TreeEntry{
				Node:  n,
				Depth: depth,
				Role:  classifier.Classify(n),
			})
			if err := walk(n.Children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(tree.TopLevel(), 0); err != nil {
		return nil, err
	}
	return entries, nil
}

// session is a workspace held open by an interactive client.
type session struct {
	svc *WorkspaceService
	ws  driven.Workspace
	doc domain.Document
}

func (s *session) Document() domain.Document {
	return s.doc
}

func (s *session) Tree() ([]domain.TreeEntry, error) {
	return Flatten(s.ws)
}

func (s *session) Active() domain.NodeID {
	return s.ws.Active()
}

func (s *session) Outline(ctx context.Context, target domain.NodeID) (bool, error) {
	outliner, err := s.svc.outliner(s.ws)
	if err != nil {
		return false, err
	}
	return outliner.Run(ctx, target)
}

func (s *session) Undo() error {
	return s.ws.Undo()
}

func (s *session) Save(ctx context.Context) error {
	unlock := s.svc.lock(s.doc.ID)
	defer unlock()
	return s.svc.save(ctx, s.ws)
}
