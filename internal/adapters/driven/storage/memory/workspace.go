package memory

import (
	"fmt"
	"image"
	"sync"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
)

// Ensure Workspace and WorkspaceFactory implement the interfaces.
var (
	_ driven.Workspace        = (*Workspace)(nil)
	_ driven.WorkspaceFactory = (*WorkspaceFactory)(nil)
)

// tagTerminator is appended to every stored tag value, as C-string
// backed hosts do.
const tagTerminator = "\x00"

// copySuffix is appended to the names of duplicated nodes.
const copySuffix = " copy"

// RendererFunc builds a renderer drawing on a workspace.
type RendererFunc func(ws *Workspace) driven.Renderer

// WorkspaceFactory opens snapshots as in-memory workspaces.
type WorkspaceFactory struct {
	newRenderer RendererFunc
}

// NewWorkspaceFactory creates a factory. newRenderer may be nil, in which
// case workspaces have no renderer.
func NewWorkspaceFactory(newRenderer RendererFunc) *WorkspaceFactory {
	return &WorkspaceFactory{newRenderer: newRenderer}
}

// Open builds a workspace from a snapshot.
func (f *WorkspaceFactory) Open(snapshot *domain.DocumentSnapshot) (driven.Workspace, error) {
	ws, err := NewWorkspace(snapshot)
	if err != nil {
		return nil, err
	}
	if f.newRenderer != nil {
		ws.renderer = f.newRenderer(ws)
	}
	return ws, nil
}

// wsState is the undoable part of a workspace.
type wsState struct {
	nodes     map[domain.NodeID]domain.Node
	top       []domain.NodeID
	detached  map[domain.NodeID]bool
	transient map[domain.NodeID]map[string]bool
	active    domain.NodeID
}

func (s *wsState) clone() wsState {
	c := wsState{
		nodes:     make(map[domain.NodeID]domain.Node, len(s.nodes)),
		top:       append([]domain.NodeID(nil), s.top...),
		detached:  make(map[domain.NodeID]bool, len(s.detached)),
		transient: make(map[domain.NodeID]map[string]bool, len(s.transient)),
		active:    s.active,
	}
	for id, n := range s.nodes {
		c.nodes[id] = n.Clone()
	}
	for id := range s.detached {
		c.detached[id] = true
	}
	for id, keys := range s.transient {
		m := make(map[string]bool, len(keys))
		for k := range keys {
			m[k] = true
		}
		c.transient[id] = m
	}
	return c
}

// Workspace is an in-memory editable document host.
// Every mutation outside an undo group is its own undo step.
type Workspace struct {
	mu       sync.RWMutex
	doc      domain.Document
	state    wsState
	next     domain.NodeID
	paths    map[domain.PathID]domain.Path
	nextPath domain.PathID
	history  []wsState
	depth    int
	renderer driven.Renderer
}

// NewWorkspace builds a workspace from a snapshot without a renderer.
func NewWorkspace(snapshot *domain.DocumentSnapshot) (*Workspace, error) {
	ws := &Workspace{
		doc: snapshot.Document,
		state: wsState{
			nodes:     make(map[domain.NodeID]domain.Node, len(snapshot.Nodes)),
			top:       append([]domain.NodeID(nil), snapshot.TopLevel...),
			detached:  make(map[domain.NodeID]bool),
			transient: make(map[domain.NodeID]map[string]bool),
			active:    snapshot.Active,
		},
		next:  snapshot.NextID,
		paths: make(map[domain.PathID]domain.Path),
	}

	for _, n := range snapshot.Nodes {
		if n.ID <= 0 {
			return nil, fmt.Errorf("%w: node id %d", domain.ErrInvalidInput, n.ID)
		}
		if _, dup := ws.state.nodes[n.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node id %d", domain.ErrInvalidInput, n.ID)
		}
		ws.state.nodes[n.ID] = n.Clone()
		if n.ID >= ws.next {
			ws.next = n.ID + 1
		}
	}
	if ws.next < 1 {
		ws.next = 1
	}

	if err := ws.checkLinks(); err != nil {
		return nil, err
	}
	return ws, nil
}

// checkLinks verifies parent and child references agree.
func (w *Workspace) checkLinks() error {
	top := make(map[domain.NodeID]bool, len(w.state.top))
	for _, id := range w.state.top {
		n, ok := w.state.nodes[id]
		if !ok || n.HasParent() || top[id] {
			return fmt.Errorf("%w: bad top-level node %d", domain.ErrInvalidInput, id)
		}
		top[id] = true
	}
	for _, n := range w.state.nodes {
		if !n.HasParent() && !top[n.ID] {
			return fmt.Errorf("%w: node %d is not in the tree", domain.ErrInvalidInput, n.ID)
		}
		for _, c := range n.Children {
			child, ok := w.state.nodes[c]
			if !ok || child.Parent != n.ID {
				return fmt.Errorf("%w: bad child %d of node %d", domain.ErrInvalidInput, c, n.ID)
			}
		}
		if n.HasParent() && !containsID(w.state.nodes[n.Parent].Children, n.ID) {
			return fmt.Errorf("%w: node %d is not a child of %d", domain.ErrInvalidInput, n.ID, n.Parent)
		}
	}
	return nil
}

func containsID(ids []domain.NodeID, id domain.NodeID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Document returns the document metadata.
func (w *Workspace) Document() domain.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.doc
}

// Node returns a snapshot of the node.
func (w *Workspace) Node(id domain.NodeID) (domain.Node, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n, ok := w.state.nodes[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	return n.Clone(), nil
}

// Bounds returns the canvas rectangle.
func (w *Workspace) Bounds() image.Rectangle {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return image.Rect(0, 0, w.doc.Width, w.doc.Height)
}

// TopLevel returns the top-level node IDs in stacking order.
func (w *Workspace) TopLevel() []domain.NodeID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]domain.NodeID(nil), w.state.top...)
}

// IndexOf returns the node's position among its siblings.
func (w *Workspace) IndexOf(id domain.NodeID) (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.indexOf(id)
}

func (w *Workspace) indexOf(id domain.NodeID) (int, error) {
	n, ok := w.state.nodes[id]
	if !ok {
		return 0, fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	if w.state.detached[id] {
		return 0, fmt.Errorf("%w: node %d is not in the tree", domain.ErrInvalidInput, id)
	}
	for i, s := range w.siblings(n.Parent) {
		if s == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
}

func (w *Workspace) siblings(parent domain.NodeID) []domain.NodeID {
	if parent == domain.NoParent {
		return w.state.top
	}
	return w.state.nodes[parent].Children
}

// CreateGroup creates a detached, empty group.
func (w *Workspace) CreateGroup(name string) (domain.NodeID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.checkpoint()
	return w.add(domain.Node{Name: name, Kind: domain.KindGroup}), nil
}

// CreateLayer creates a detached, transparent raster layer.
func (w *Workspace) CreateLayer(name string, bounds image.Rectangle) (domain.NodeID, error) {
	if bounds.Empty() {
		return 0, fmt.Errorf("%w: empty layer bounds", domain.ErrInvalidInput)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.checkpoint()
	return w.add(domain.Node{
		Name:   name,
		Kind:   domain.KindLayer,
		Bounds: bounds,
		Raster: image.NewNRGBA(bounds),
	}), nil
}

// add registers a detached node and returns its fresh ID.
func (w *Workspace) add(n domain.Node) domain.NodeID {
	n.ID = w.next
	n.Parent = domain.NoParent
	w.next++
	w.state.nodes[n.ID] = n
	w.state.detached[n.ID] = true
	return n.ID
}

// Duplicate creates a detached copy of the node's content without tags.
func (w *Workspace) Duplicate(id domain.NodeID) (domain.NodeID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.state.nodes[id]; !ok {
		return 0, fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	w.checkpoint()
	copyID := w.copyTree(id, false)
	w.rename(copyID)
	return copyID, nil
}

// DuplicateSubtree copies the node and its descendants with their tags and
// inserts the copy directly above the original.
func (w *Workspace) DuplicateSubtree(id domain.NodeID) (domain.NodeID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.state.nodes[id]
	if !ok {
		return 0, fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	index, err := w.indexOf(id)
	if err != nil {
		return 0, err
	}

	w.checkpoint()
	copyID := w.copyTree(id, true)
	w.rename(copyID)
	w.insert(copyID, n.Parent, index)
	return copyID, nil
}

func (w *Workspace) rename(id domain.NodeID) {
	n := w.state.nodes[id]
	n.Name += copySuffix
	w.state.nodes[id] = n
}

// copyTree copies id and its descendants into detached nodes.
// Children of the copy are attached to it.
func (w *Workspace) copyTree(id domain.NodeID, withTags bool) domain.NodeID {
	src := w.state.nodes[id].Clone()
	children := src.Children
	src.Children = nil
	if !withTags {
		src.Tags = nil
	}

	copyID := w.add(src)
	if w.state.nodes[id].IsGroup() {
		copies := make([]domain.NodeID, 0, len(children))
		for _, c := range children {
			childCopy := w.copyTree(c, withTags)
			child := w.state.nodes[childCopy]
			child.Parent = copyID
			w.state.nodes[childCopy] = child
			delete(w.state.detached, childCopy)
			copies = append(copies, childCopy)
		}
		n := w.state.nodes[copyID]
		n.Children = copies
		w.state.nodes[copyID] = n
	}
	if withTags {
		if keys, ok := w.state.transient[id]; ok {
			m := make(map[string]bool, len(keys))
			for k := range keys {
				m[k] = true
			}
			w.state.transient[copyID] = m
		}
	}
	return copyID
}

// Insert attaches a detached node under parent at index.
func (w *Workspace) Insert(id, parent domain.NodeID, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.state.nodes[id]; !ok {
		return fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	if !w.state.detached[id] {
		return fmt.Errorf("%w: node %d is already in the tree", domain.ErrInvalidInput, id)
	}
	if parent != domain.NoParent {
		p, ok := w.state.nodes[parent]
		if !ok {
			return fmt.Errorf("parent %d: %w", parent, domain.ErrNotFound)
		}
		if !p.IsGroup() {
			return fmt.Errorf("%w: node %d cannot hold children", domain.ErrInvalidInput, parent)
		}
		if parent == id || w.isDescendant(parent, id) {
			return fmt.Errorf("%w: node %d cannot be inserted under itself", domain.ErrInvalidInput, id)
		}
	}

	w.checkpoint()
	w.insert(id, parent, index)
	return nil
}

// isDescendant reports whether node lies in the subtree of root.
func (w *Workspace) isDescendant(node, root domain.NodeID) bool {
	for cur := node; cur != domain.NoParent; cur = w.state.nodes[cur].Parent {
		if cur == root {
			return true
		}
	}
	return false
}

func (w *Workspace) insert(id, parent domain.NodeID, index int) {
	list := w.siblings(parent)
	if index < 0 || index > len(list) {
		index = len(list)
	}
	updated := make([]domain.NodeID, 0, len(list)+1)
	updated = append(updated, list[:index]...)
	updated = append(updated, id)
	updated = append(updated, list[index:]...)

	if parent == domain.NoParent {
		w.state.top = updated
	} else {
		p := w.state.nodes[parent]
		p.Children = updated
		w.state.nodes[parent] = p
	}

	n := w.state.nodes[id]
	n.Parent = parent
	w.state.nodes[id] = n
	delete(w.state.detached, id)
}

// Delete removes the node and its descendants.
func (w *Workspace) Delete(id domain.NodeID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, ok := w.state.nodes[id]
	if !ok {
		return fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	w.checkpoint()

	if !w.state.detached[id] {
		list := w.siblings(n.Parent)
		updated := make([]domain.NodeID, 0, len(list))
		for _, s := range list {
			if s != id {
				updated = append(updated, s)
			}
		}
		if n.Parent == domain.NoParent {
			w.state.top = updated
		} else {
			p := w.state.nodes[n.Parent]
			p.Children = updated
			w.state.nodes[n.Parent] = p
		}
	}
	w.remove(id)
	return nil
}

func (w *Workspace) remove(id domain.NodeID) {
	for _, c := range w.state.nodes[id].Children {
		w.remove(c)
	}
	delete(w.state.nodes, id)
	delete(w.state.detached, id)
	delete(w.state.transient, id)
	if w.state.active == id {
		w.state.active = domain.NoParent
	}
}

// SetName renames the node.
func (w *Workspace) SetName(id domain.NodeID, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.state.nodes[id]
	if !ok {
		return fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	w.checkpoint()
	n.Name = name
	w.state.nodes[id] = n
	return nil
}

// AttachTag stores the value with a trailing terminator.
// Tags without TagPersistent are dropped from snapshots.
func (w *Workspace) AttachTag(id domain.NodeID, key domain.TagKey, value string, flags domain.TagFlags) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.state.nodes[id]
	if !ok {
		return fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	if flags&domain.TagUndoable != 0 {
		w.checkpoint()
	}

	if n.Tags == nil {
		n.Tags = make(map[string]string)
	}
	n.Tags[key.String()] = value + tagTerminator
	w.state.nodes[id] = n

	if flags&domain.TagPersistent != 0 {
		delete(w.state.transient[id], key.String())
	} else {
		if w.state.transient[id] == nil {
			w.state.transient[id] = make(map[string]bool)
		}
		w.state.transient[id][key.String()] = true
	}
	return nil
}

// BeginGroup opens an undo group.
func (w *Workspace) BeginGroup(_ string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.depth == 0 {
		w.history = append(w.history, w.state.clone())
	}
	w.depth++
}

// EndGroup closes the innermost undo group.
func (w *Workspace) EndGroup() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.depth > 0 {
		w.depth--
	}
}

// Undo restores the state before the most recent undo step.
func (w *Workspace) Undo() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.depth > 0 {
		return fmt.Errorf("%w: undo group still open", domain.ErrInvalidInput)
	}
	if len(w.history) == 0 {
		return fmt.Errorf("undo history: %w", domain.ErrNotFound)
	}
	w.state = w.history[len(w.history)-1]
	w.history = w.history[:len(w.history)-1]
	return nil
}

// CanUndo reports whether an undo step is available.
func (w *Workspace) CanUndo() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.depth == 0 && len(w.history) > 0
}

// checkpoint records an undo step unless a group is open (caller holds lock).
func (w *Workspace) checkpoint() {
	if w.depth == 0 {
		w.history = append(w.history, w.state.clone())
	}
}

// Renderer returns the workspace renderer, or nil.
func (w *Workspace) Renderer() driven.Renderer {
	return w.renderer
}

// Active returns the node holding selection focus.
func (w *Workspace) Active() domain.NodeID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.active
}

// Snapshot captures the attached tree in depth-first order.
// Detached nodes and non-persistent tags are dropped.
func (w *Workspace) Snapshot() *domain.DocumentSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := &domain.DocumentSnapshot{
		Document: w.doc,
		TopLevel: append([]domain.NodeID(nil), w.state.top...),
		NextID:   w.next,
		Active:   w.state.active,
	}
	var walk func(ids []domain.NodeID)
	walk = func(ids []domain.NodeID) {
		for _, id := range ids {
			n := w.state.nodes[id].Clone()
			for k := range w.state.transient[id] {
				delete(n.Tags, k)
			}
			snap.Nodes = append(snap.Nodes, n)
			walk(n.Children)
		}
	}
	walk(w.state.top)
	return snap
}

// Surface methods used by renderers.

// RegisterPath stores a vector path and returns its handle.
func (w *Workspace) RegisterPath(p domain.Path) domain.PathID {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextPath++
	w.paths[w.nextPath] = p
	return w.nextPath
}

// Path returns a registered path.
func (w *Workspace) Path(id domain.PathID) (domain.Path, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.paths[id]
	if !ok {
		return domain.Path{}, fmt.Errorf("path %d: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// UnregisterPath discards a registered path.
func (w *Workspace) UnregisterPath(id domain.PathID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.paths[id]; !ok {
		return fmt.Errorf("path %d: %w", id, domain.ErrNotFound)
	}
	delete(w.paths, id)
	return nil
}

// PathCount returns the number of registered paths.
func (w *Workspace) PathCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.paths)
}

// SetRaster replaces a layer's pixels; its bounds follow the image.
func (w *Workspace) SetRaster(id domain.NodeID, img *image.NRGBA) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.state.nodes[id]
	if !ok {
		return fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	if n.Kind != domain.KindLayer {
		return fmt.Errorf("%w: node %d is a %s", domain.ErrInvalidInput, id, n.Kind)
	}
	w.checkpoint()
	n.Raster = img
	n.Bounds = img.Rect
	w.state.nodes[id] = n
	return nil
}

// Focus moves the selection focus.
func (w *Workspace) Focus(id domain.NodeID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.state.nodes[id]; !ok {
		return fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	w.state.active = id
	return nil
}
