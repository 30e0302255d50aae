package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
	"github.com/custodia-labs/managed-outline/internal/logger"
)

// GroupManager produces or repairs the managed {root, text, outline} triple
// for any of its three nodes, or creates it from a plain text layer.
type GroupManager struct {
	tree       driven.DocumentTree
	tags       *TagStore
	classifier *Classifier
	resolver   *RootResolver
	validator  *ConsistencyValidator
}

// NewGroupManager creates a group manager over the host tree and tag backend.
func NewGroupManager(tree driven.DocumentTree, backend driven.TagBackend) *GroupManager {
	tags := NewTagStore(backend)
	classifier := NewClassifier(tags)
	return &GroupManager{
		tree:       tree,
		tags:       tags,
		classifier: classifier,
		resolver:   NewRootResolver(tree, tags, classifier),
		validator:  NewConsistencyValidator(tags, classifier),
	}
}

// Classifier returns the classifier used by the manager.
func (m *GroupManager) Classifier() *Classifier {
	return m.classifier
}

// groupScan is the result of resolving a managed node and scanning its root.
type groupScan struct {
	root    domain.Node
	text    *domain.Node
	outline *domain.Node
}

// Prepare returns the managed group for target, creating it when target is
// a plain text layer. The outline child is always recreated.
func (m *GroupManager) Prepare(_ context.Context, target domain.NodeID) (*domain.ManagedGroup, error) {
	node, err := m.tree.Node(target)
	if err != nil {
		return nil, fmt.Errorf("loading layer %d: %w", target, err)
	}

	role := m.classifier.Classify(node)
	logger.Debug("Layer %d %q classified as %s", node.ID, node.Name, role)

	switch role {
	case domain.RolePlainText:
		return m.createNewGroup(node)
	case domain.RoleUnclassified:
		return nil, domain.ErrUnknownLayerType
	case domain.RoleRoot, domain.RoleText, domain.RoleOutline:
		return m.refreshGroup(node)
	default:
		return nil, domain.ErrUnexpectedTargetLayerType
	}
}

// Inspect reports what Prepare would do with target, without mutating.
func (m *GroupManager) Inspect(_ context.Context, target domain.NodeID) (*domain.Inspection, error) {
	node, err := m.tree.Node(target)
	if err != nil {
		return nil, fmt.Errorf("loading layer %d: %w", target, err)
	}

	ins := &domain.Inspection{
		Target: node,
		Role:   m.classifier.Classify(node),
	}

	switch ins.Role {
	case domain.RolePlainText:
		return ins, nil
	case domain.RoleUnclassified:
		ins.Err = domain.ErrUnknownLayerType
		return ins, nil
	case domain.RoleRoot, domain.RoleText, domain.RoleOutline:
	default:
		ins.Err = domain.ErrUnexpectedTargetLayerType
		return ins, nil
	}

	scan, err := m.scan(node)
	if scan != nil {
		ins.Root = scan.root.ID
		if scan.text != nil {
			ins.Text = scan.text.ID
			ins.Member = err == nil
		}
		if scan.outline != nil {
			ins.Outline = scan.outline.ID
			ins.OutlineErr = m.checkOutline(scan.root, *scan.outline)
		}
	}
	ins.Err = err
	return ins, nil
}

// refreshGroup resolves the group a managed node belongs to and recreates
// its outline.
func (m *GroupManager) refreshGroup(node domain.Node) (*domain.ManagedGroup, error) {
	scan, err := m.scan(node)
	if err != nil {
		return nil, err
	}

	outlineID, err := m.refreshOutline(scan.root, *scan.text, scan.outline)
	if err != nil {
		return nil, err
	}

	return &domain.ManagedGroup{
		Root:    scan.root.ID,
		Text:    scan.text.ID,
		Outline: outlineID,
	}, nil
}

// scan resolves node's root and picks its text and outline children.
// The returned scan is non-nil whenever the root was resolved.
func (m *GroupManager) scan(node domain.Node) (*groupScan, error) {
	root, err := m.resolver.Resolve(node)
	if errors.Is(err, domain.ErrChildLayerDoesNotMatchRoot) {
		parent, perr := m.tree.Node(node.Parent)
		if perr == nil && m.isDuplicatedChild(parent, node) {
			logger.Info("Layer %d was copied from another group, adopting parent %d", node.ID, parent.ID)
			root, err = parent, nil
		}
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("Resolved root %d %q", root.ID, root.Name)

	scan := &groupScan{root: root}
	for _, id := range root.Children {
		child, err := m.tree.Node(id)
		if err != nil {
			return scan, fmt.Errorf("loading layer %d: %w", id, err)
		}

		// Later children win; duplicates are not reconciled.
		switch m.classifier.Classify(child) {
		case domain.RoleText:
			if scan.text != nil {
				logger.Warn("Group %d has more than one text layer, using %d", root.ID, child.ID)
			}
			scan.text = &child
		case domain.RoleOutline:
			if scan.outline != nil {
				logger.Warn("Group %d has more than one outline layer, using %d", root.ID, child.ID)
			}
			scan.outline = &child
		}
	}

	if scan.text == nil {
		return scan, domain.ErrFoundRootWithoutText
	}

	member, err := m.validator.IsMember(root, *scan.text)
	if err == nil && !member && m.isDuplicatedChild(root, *scan.text) {
		logger.Info("Text layer %d was copied from another group, adopting root %d", scan.text.ID, root.ID)
		member = true
	}
	if err != nil || !member {
		logger.Debug("Text layer %d failed membership of %d: member=%t err=%v", scan.text.ID, root.ID, member, err)
		return scan, domain.ErrTextLayerDoesNotMatchRoot
	}

	return scan, nil
}

// checkOutline reports whether the outline child references root.
// A mismatch never stops a run because the outline is recreated.
func (m *GroupManager) checkOutline(root, outline domain.Node) error {
	member, err := m.validator.IsMember(root, outline)
	if err != nil {
		return err
	}
	if !member {
		return domain.ErrOutlineLayerDoesNotMatchRoot
	}
	return nil
}

// isDuplicatedChild reports whether child sits under root while referencing
// a different root that is still managed or no longer exists. That is what a
// document-level copy of a whole group leaves behind, including after the
// source group was deleted.
func (m *GroupManager) isDuplicatedChild(root, child domain.Node) bool {
	if m.classifier.Classify(root) != domain.RoleRoot {
		return false
	}
	ref, ok := m.tags.Get(child, domain.TagRootReference)
	if !ok {
		return false
	}
	refID, err := domain.ParseNodeID(ref)
	if err != nil || refID == root.ID {
		return false
	}
	other, err := m.tree.Node(refID)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("Layer %d references deleted layer %d", child.ID, refID)
		return true
	}
	if err != nil {
		return false
	}
	return m.classifier.Classify(other) == domain.RoleRoot
}

// createNewGroup replaces a plain text layer with a managed group holding a
// tagged copy of it and a fresh outline layer.
func (m *GroupManager) createNewGroup(target domain.Node) (*domain.ManagedGroup, error) {
	name := target.Name
	parent := target.Parent
	index, err := m.tree.IndexOf(target.ID)
	if err != nil {
		return nil, fmt.Errorf("locating layer %d: %w", target.ID, err)
	}

	rootID, err := m.tree.CreateGroup(groupName(name))
	if err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}
	if _, err := m.tags.Set(rootID, domain.TagRoot, domain.TagMarker); err != nil {
		return nil, err
	}
	if err := m.tree.Insert(rootID, parent, index); err != nil {
		return nil, fmt.Errorf("inserting group: %w", err)
	}

	textID, err := m.tree.Duplicate(target.ID)
	if err != nil {
		return nil, fmt.Errorf("copying layer %d: %w", target.ID, err)
	}
	if err := m.tree.SetName(textID, name); err != nil {
		return nil, fmt.Errorf("renaming text layer: %w", err)
	}
	if err := m.tree.Insert(textID, rootID, 0); err != nil {
		return nil, fmt.Errorf("inserting text layer: %w", err)
	}
	if _, err := m.tags.Set(textID, domain.TagText, domain.TagMarker); err != nil {
		return nil, err
	}
	if _, err := m.tags.Set(textID, domain.TagRootReference, rootID.String()); err != nil {
		return nil, err
	}
	if err := m.tree.Delete(target.ID); err != nil {
		return nil, fmt.Errorf("removing layer %d: %w", target.ID, err)
	}
	logger.Info("Created managed group %d for text layer %q", rootID, name)

	root, err := m.tree.Node(rootID)
	if err != nil {
		return nil, err
	}
	text, err := m.tree.Node(textID)
	if err != nil {
		return nil, err
	}

	outlineID, err := m.refreshOutline(root, text, nil)
	if err != nil {
		return nil, err
	}

	return &domain.ManagedGroup{Root: rootID, Text: textID, Outline: outlineID}, nil
}

// refreshOutline deletes the old outline, creates a new canvas-sized one
// directly after text, and re-stamps text's root reference.
func (m *GroupManager) refreshOutline(root, text domain.Node, outline *domain.Node) (domain.NodeID, error) {
	if outline != nil {
		if err := m.tree.Delete(outline.ID); err != nil {
			return 0, fmt.Errorf("removing outline layer %d: %w", outline.ID, err)
		}
		logger.Debug("Removed outline layer %d", outline.ID)
	}

	outlineID, err := m.tree.CreateLayer(outlineName(text.Name), m.tree.Bounds())
	if err != nil {
		return 0, fmt.Errorf("creating outline layer: %w", err)
	}
	if _, err := m.tags.Set(outlineID, domain.TagOutline, domain.TagMarker); err != nil {
		return 0, err
	}
	if _, err := m.tags.Set(outlineID, domain.TagRootReference, root.ID.String()); err != nil {
		return 0, err
	}

	// Heals groups whose text layer still references the group it was copied from.
	if _, err := m.tags.Set(text.ID, domain.TagRootReference, root.ID.String()); err != nil {
		return 0, err
	}

	index, err := m.tree.IndexOf(text.ID)
	if err != nil {
		return 0, fmt.Errorf("locating text layer %d: %w", text.ID, err)
	}
	if err := m.tree.Insert(outlineID, root.ID, index+1); err != nil {
		return 0, fmt.Errorf("inserting outline layer: %w", err)
	}
	logger.Debug("Created outline layer %d in group %d", outlineID, root.ID)

	return outlineID, nil
}

func groupName(textName string) string {
	return "Group: " + textName
}

func outlineName(textName string) string {
	return "Outline: " + textName
}
