// Package sqlite provides a SQLite-based implementation of the document store
// and the query log.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both stores share one database:
//
//   - DocumentStore: the document table the vector index is rebuilt from
//   - QueryLogStore: asked questions and the documents retrieved for them
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.newsrag/data/newsrag.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
