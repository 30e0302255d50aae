// Package sqlite provides a SQLite-based implementation of driven.DocumentStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// A document is stored as one documents row, one nodes row per layer and one
// tags row per raw tag value. Raster pixels are stored as tight NRGBA blobs.
//
// # Data Location
//
// By default, the database is stored at ~/.managed-outline/data/outline.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
