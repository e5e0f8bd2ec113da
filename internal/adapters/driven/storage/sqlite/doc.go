// Package sqlite provides the SQLite implementation of the knowledge and
// bundle stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database file backs both stores:
//
//   - KnowledgeStore: documents and their chunks, including embeddings
//   - BundleStore: assembled project bundles and their archives
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.docugen/data/docugen.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database runs in WAL mode
// so readers never block each other, and Put writes a document's chunks and
// flips its status in one transaction.
package sqlite
