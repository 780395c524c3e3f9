// Package sqlite provides the SQLite-based chunk repository.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements driven.ChunkRepository
// through a single database connection.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
//   - chunks: one row per chunk; the autoincrement seq column is insertion order
//   - index_meta: key/value pairs describing the index (embedding model, dimensions)
//
// There is no documents table. Document attributes are stamped into every
// chunk's metadata and recovered by grouping chunks by document_id.
//
// # Data Location
//
// By default, the database is stored at ~/.studyrag/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
