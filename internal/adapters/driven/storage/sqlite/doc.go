// Package sqlite provides a SQLite-backed implementation of the
// VectorStore driven port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Embeddings are stored as
// little-endian float32 blobs; heading paths and author lists are stored as
// JSON text columns.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.hearth/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
