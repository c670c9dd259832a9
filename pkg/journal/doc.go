// Package journal provides request journaling for gateway activity. Every
// completed request can be recorded as an immutable journal entry for
// troubleshooting, abuse investigation, and usage review.
//
// # Architecture
//
// The journal consists of three layers:
//
//  1. Recorder - accepts completed request records without blocking
//  2. Storage Backend - persists records (SQLite or bounded memory)
//  3. Retention - prunes old records on a cron schedule
//
// # Journal Records
//
// Each record captures one finished request:
//   - Identity (request ID, route, method, client)
//   - Outcome (status code, bytes sent, duration)
//   - Media context (media ID when the route resolved one)
//   - Error text when the request failed
//
// Records are written once, after the response has finished. A streaming
// request that runs for minutes produces a single record when the relay
// ends, carrying the final byte count and outcome.
//
// # Recording Flow
//
// Recording is asynchronous so a slow disk never stalls a response:
//
//	Request completes → Record() → buffered channel → worker → storage
//
// When the buffer is full the record is dropped and counted rather than
// queued. Dropped records surface through Recorder.Dropped() and the
// journal metrics.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path: "data/journal.db",
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	recorder := journal.NewRecorder(store, &journal.Config{
//	    Enabled: true,
//	    Buffer:  1024,
//	}, logger)
//	defer recorder.Close()
//
//	// Record a completed request (async, non-blocking)
//	_ = recorder.Record(&journal.Record{
//	    RequestID:  requestID,
//	    Route:      "/api/stream",
//	    Method:     "GET",
//	    ClientID:   clientID,
//	    Status:     200,
//	    BytesOut:   4194304,
//	    DurationMS: 2350,
//	    MediaID:    "dQw4w9WgXcQ",
//	})
//
// # Querying
//
//	start := time.Now().Add(-time.Hour)
//	records, err := store.Query(ctx, &journal.Query{
//	    Start: &start,
//	    Route: "/api/stream",
//	    Limit: 100,
//	})
//
// Query results are always ordered newest first.
//
// # Retention
//
// Old records are pruned on a schedule:
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    MaxAge:        7 * 24 * time.Hour,
//	    PruneSchedule: "0 3 * * *",
//	}, logger)
//	pruner.Start(ctx)
//	defer pruner.Stop()
//
// # Thread Safety
//
// All journal types are safe for concurrent use. The recorder hands records
// to a single worker goroutine; the storage backends take their own locks.
package journal
