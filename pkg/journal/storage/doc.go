// Package storage provides storage backends for journal records.
//
// # Storage Backends
//
// The storage package implements the journal.Storage interface twice:
//
//   - SQLite: Embedded database, survives restarts (the default for
//     single-node deployments)
//   - Memory: Bounded in-memory ring, cheap and lossy (development and test)
//
// # SQLite Backend
//
// The SQLite backend provides durable storage with:
//
//   - WAL mode for concurrent reads alongside the single writer
//   - Prepared statements for the fixed-shape insert and prune paths
//   - Indexes on time, route, client and request id columns
//   - A background checkpoint loop that keeps the WAL from growing unbounded
//
// Pragmas are applied through the modernc.org/sqlite _pragma connection
// parameters, so WAL and the busy timeout are in effect from the first
// connection.
//
// # Basic Usage
//
//	// Create SQLite storage
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path:               "data/journal.db",
//	    BusyTimeout:        5 * time.Second,
//	    CheckpointInterval: time.Minute,
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	// Store a record
//	err = store.Store(ctx, record)
//
//	// Query recent stream requests
//	records, err := store.Query(ctx, &journal.Query{
//	    Route: "/api/stream",
//	    Limit: 100,
//	})
//
// # Memory Backend
//
// The memory backend holds at most MaxEntries records and evicts the oldest
// on overflow. It is the right choice when the journal only needs to answer
// "what happened recently" and persistence across restarts does not matter.
//
// # Thread Safety
//
// Both backends are safe for concurrent use. Store, Query, Count and
// DeleteBefore may be called from multiple goroutines.
//
// # Schema Migration
//
// The SQLite backend initializes its schema on first use and records the
// schema version in the schema_version table for future migrations.
package storage
