package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/managed-outline/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/managed-outline/internal/core/domain"
	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
)

// Store is a SQLite-based document store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.managed-outline/data/outline.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".managed-outline", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "outline.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// version returns the highest applied migration.
func (s *Store) version() (int, error) {
	var v int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Save replaces the document and its whole tree in one transaction.
func (s *documentStore) Save(ctx context.Context, snapshot *domain.DocumentSnapshot) error {
	doc := snapshot.Document
	if doc.ID == "" {
		return fmt.Errorf("%w: document has no ID", domain.ErrInvalidInput)
	}

	positions := make(map[domain.NodeID]int, len(snapshot.Nodes))
	for i, id := range snapshot.TopLevel {
		positions[id] = i
	}
	for _, n := range snapshot.Nodes {
		for i, id := range n.Children {
			positions[id] = i
		}
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, name, width, height, next_id, active_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			width = excluded.width,
			height = excluded.height,
			next_id = excluded.next_id,
			active_id = excluded.active_id,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Name, doc.Width, doc.Height, int(snapshot.NextID), int(snapshot.Active),
		nullTime(doc.CreatedAt), nullTime(doc.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	// Tags cascade with their nodes.
	if _, err := tx.ExecContext(ctx, "DELETE FROM nodes WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing nodes: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (document_id, id, parent_id, position, ordinal, name, kind, text,
			min_x, min_y, max_x, max_y, raster)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer nodeStmt.Close()

	tagStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tags (document_id, node_id, key, value) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer tagStmt.Close()

	for i, n := range snapshot.Nodes {
		b := n.Bounds
		if _, err := nodeStmt.ExecContext(ctx, doc.ID, int(n.ID), int(n.Parent), positions[n.ID], i,
			n.Name, n.Kind.String(), n.Text, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y,
			rasterBlob(n.Raster)); err != nil {
			return fmt.Errorf("saving node %d: %w", n.ID, err)
		}
		for key, value := range n.Tags {
			if _, err := tagStmt.ExecContext(ctx, doc.ID, int(n.ID), key, []byte(value)); err != nil {
				return fmt.Errorf("saving tag %s on node %d: %w", key, n.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load retrieves a document and rebuilds its tree.
func (s *documentStore) Load(ctx context.Context, id string) (*domain.DocumentSnapshot, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, width, height, next_id, active_id, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	snap := &domain.DocumentSnapshot{}
	var nextID, activeID int
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&snap.Document.ID, &snap.Document.Name, &snap.Document.Width, &snap.Document.Height,
		&nextID, &activeID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	snap.NextID = domain.NodeID(nextID)
	snap.Active = domain.NodeID(activeID)
	if createdAt.Valid {
		snap.Document.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		snap.Document.UpdatedAt = updatedAt.Time
	}

	if err := s.loadNodes(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadTags(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *documentStore) loadNodes(ctx context.Context, snap *domain.DocumentSnapshot) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, parent_id, position, name, kind, text, min_x, min_y, max_x, max_y, raster
		FROM nodes WHERE document_id = ?
		ORDER BY ordinal
	`, snap.Document.ID)
	if err != nil {
		return fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	type placed struct {
		id       domain.NodeID
		parent   domain.NodeID
		position int
	}
	var order []placed //nolint:prealloc // size unknown from query

	for rows.Next() {
		var n domain.Node
		var id, parent, position int
		var kind string
		var raster []byte
		var b image.Rectangle
		if err := rows.Scan(&id, &parent, &position, &n.Name, &kind, &n.Text,
			&b.Min.X, &b.Min.Y, &b.Max.X, &b.Max.Y, &raster); err != nil {
			return fmt.Errorf("scanning node: %w", err)
		}
		n.ID = domain.NodeID(id)
		n.Parent = domain.NodeID(parent)
		n.Bounds = b
		if n.Kind, err = domain.ParseNodeKind(kind); err != nil {
			return fmt.Errorf("node %d has kind %q: %w", id, kind, err)
		}
		if raster != nil {
			if n.Raster, err = rasterFromBlob(raster, b); err != nil {
				return fmt.Errorf("node %d: %w", id, err)
			}
		}
		snap.Nodes = append(snap.Nodes, n)
		order = append(order, placed{id: n.ID, parent: n.Parent, position: position})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating nodes: %w", err)
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].position < order[j].position })

	index := make(map[domain.NodeID]int, len(snap.Nodes))
	for i, n := range snap.Nodes {
		index[n.ID] = i
	}
	for _, p := range order {
		if p.parent == domain.NoParent {
			snap.TopLevel = append(snap.TopLevel, p.id)
			continue
		}
		i, ok := index[p.parent]
		if !ok {
			return fmt.Errorf("node %d has missing parent %d: %w", p.id, p.parent, domain.ErrInvalidInput)
		}
		snap.Nodes[i].Children = append(snap.Nodes[i].Children, p.id)
	}
	return nil
}

func (s *documentStore) loadTags(ctx context.Context, snap *domain.DocumentSnapshot) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT node_id, key, value FROM tags WHERE document_id = ?
	`, snap.Document.ID)
	if err != nil {
		return fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	index := make(map[domain.NodeID]int, len(snap.Nodes))
	for i, n := range snap.Nodes {
		index[n.ID] = i
	}

	for rows.Next() {
		var nodeID int
		var key string
		var value []byte
		if err := rows.Scan(&nodeID, &key, &value); err != nil {
			return fmt.Errorf("scanning tag: %w", err)
		}
		i, ok := index[domain.NodeID(nodeID)]
		if !ok {
			continue
		}
		if snap.Nodes[i].Tags == nil {
			snap.Nodes[i].Tags = make(map[string]string)
		}
		snap.Nodes[i].Tags[key] = string(value)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating tags: %w", err)
	}
	return nil
}

// List returns all stored documents ordered by name.
func (s *documentStore) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, width, height, created_at, updated_at
		FROM documents
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Width, &doc.Height, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if createdAt.Valid {
			doc.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			doc.UpdatedAt = updatedAt.Time
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document. Nodes and tags cascade.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ==================== Helpers ====================

// nullTime stores zero times as NULL.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// rasterBlob returns the raw NRGBA pixels with a tight stride, or nil.
func rasterBlob(img *image.NRGBA) []byte {
	if img == nil {
		return nil
	}
	r := img.Rect
	if img.Stride == 4*r.Dx() {
		return append([]byte{}, img.Pix[:4*r.Dx()*r.Dy()]...)
	}
	tight := image.NewNRGBA(r)
	draw.Draw(tight, r, img, r.Min, draw.Src)
	return tight.Pix
}

func rasterFromBlob(pix []byte, bounds image.Rectangle) (*image.NRGBA, error) {
	img := image.NewNRGBA(bounds)
	if len(pix) != len(img.Pix) {
		return nil, fmt.Errorf("%w: raster holds %d bytes, bounds %v need %d",
			domain.ErrInvalidInput, len(pix), bounds, len(img.Pix))
	}
	copy(img.Pix, pix)
	return img, nil
}
