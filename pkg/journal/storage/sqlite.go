package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"wavecast-hq/tunegate/pkg/journal"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 1 minute
	CheckpointInterval time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:               "data/journal.db",
		BusyTimeout:        5 * time.Second,
		CheckpointInterval: time.Minute,
	}
}

// SQLiteStorage implements the Storage interface using SQLite in WAL mode.
// A single writer connection keeps inserts serialized, which matches how
// SQLite locks anyway and avoids SQLITE_BUSY churn under load.
type SQLiteStorage struct {
	db        *sql.DB
	config    *SQLiteConfig
	logger    *slog.Logger
	done      chan struct{}
	closeOnce sync.Once

	insertStmt *sql.Stmt
	deleteStmt *sql.Stmt
}

// NewSQLiteStorage creates a new SQLite storage backend. It creates the
// database file (and its parent directory) if missing, applies the schema,
// and starts a background WAL checkpoint loop.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		config.Path = DefaultSQLiteConfig().Path
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}
	if config.CheckpointInterval <= 0 {
		config.CheckpointInterval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "journal.storage.sqlite")

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, journal.NewStorageError("sqlite", "create_dir", err)
		}
	}

	// modernc.org/sqlite applies pragmas through _pragma connection
	// parameters, one per pragma.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		config.Path, config.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, journal.NewStorageError("sqlite", "open", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
		done:   make(chan struct{}),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	go s.checkpointLoop()

	var mode string
	_ = s.db.QueryRow("PRAGMA journal_mode").Scan(&mode)

	logger.Info("SQLite journal storage initialized",
		"path", config.Path,
		"journal_mode", mode,
		"checkpoint_interval", config.CheckpointInterval,
	)

	return s, nil
}

// initialize applies the schema and verifies the schema version.
func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return journal.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return journal.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return journal.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return journal.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// prepareStatements compiles the fixed-shape statements once. Query and Count
// build their SQL per call because the filter set varies.
func (s *SQLiteStorage) prepareStatements() error {
	var err error

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO journal (
			id, request_id, time,
			route, method, client_id,
			status, bytes_out, duration_ms,
			media_id, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return journal.NewStorageError("sqlite", "prepare_insert", err)
	}

	s.deleteStmt, err = s.db.Prepare(`
		DELETE FROM journal WHERE time < ?
	`)
	if err != nil {
		return journal.NewStorageError("sqlite", "prepare_delete", err)
	}

	return nil
}

// Store persists a journal record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *journal.Record) error {
	// Convert empty strings to NULL for optional columns.
	var mediaIDVal, errorVal interface{}
	if record.MediaID != "" {
		mediaIDVal = record.MediaID
	}
	if record.Error != "" {
		errorVal = record.Error
	}

	_, err := s.insertStmt.ExecContext(ctx,
		record.ID, record.RequestID, record.Time.UnixMilli(),
		record.Route, record.Method, record.ClientID,
		record.Status, record.BytesOut, record.DurationMS,
		mediaIDVal, errorVal,
	)
	if err != nil {
		return journal.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves journal records matching the query filters, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *journal.Query) ([]*journal.Record, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := `SELECT id, request_id, time, route, method, client_id, status, bytes_out, duration_ms, media_id, error FROM journal`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	// Ordering is fixed. The query type exposes no sort fields, so nothing
	// caller-controlled is ever spliced into the statement text.
	sqlQuery += " ORDER BY time DESC LIMIT ?"

	limit := journal.DefaultQueryLimit
	if query.Limit > 0 {
		limit = query.Limit
	}
	args = append(args, limit)

	if query.Offset > 0 {
		sqlQuery += " OFFSET ?"
		args = append(args, query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, journal.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*journal.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, journal.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, journal.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of journal records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *journal.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM journal"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, journal.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// DeleteBefore removes all records whose time is strictly before the cutoff
// and returns the number removed.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.deleteStmt.ExecContext(ctx, cutoff.UnixMilli())
	if err != nil {
		return 0, journal.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, journal.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close stops the checkpoint loop, runs a final checkpoint, and closes the
// database. Safe to call more than once.
func (s *SQLiteStorage) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.insertStmt != nil {
			s.insertStmt.Close()
		}
		if s.deleteStmt != nil {
			s.deleteStmt.Close()
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}

		s.logger.Info("SQLite journal storage closed")
	})

	if closeErr != nil {
		return journal.NewStorageError("sqlite", "close", closeErr)
	}
	return nil
}

// checkpointLoop periodically merges the WAL back into the main database file
// so the log does not grow without bound between restarts.
func (s *SQLiteStorage) checkpointLoop() {
	ticker := time.NewTicker(s.config.CheckpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)"); err != nil {
				s.logger.Warn("WAL checkpoint failed", "error", err)
			}
		case <-s.done:
			return
		}
	}
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the clause (without the "WHERE" keyword) and its arguments.
func buildWhereClause(query *journal.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.Start != nil {
		conditions = append(conditions, "time >= ?")
		args = append(args, query.Start.UnixMilli())
	}
	if query.End != nil {
		conditions = append(conditions, "time <= ?")
		args = append(args, query.End.UnixMilli())
	}

	if query.Route != "" {
		conditions = append(conditions, "route = ?")
		args = append(args, query.Route)
	}
	if query.ClientID != "" {
		conditions = append(conditions, "client_id = ?")
		args = append(args, query.ClientID)
	}

	if query.Status != 0 {
		conditions = append(conditions, "status = ?")
		args = append(args, query.Status)
	}

	if query.Errored != nil {
		if *query.Errored {
			conditions = append(conditions, "error IS NOT NULL")
		} else {
			conditions = append(conditions, "error IS NULL")
		}
	}

	whereClause := ""
	for i, condition := range conditions {
		if i > 0 {
			whereClause += " AND "
		}
		whereClause += condition
	}

	return whereClause, args
}

// scanRow scans a database row into a Record.
func scanRow(rows *sql.Rows) (*journal.Record, error) {
	var record journal.Record
	var timeMs int64
	var mediaID, errorVal sql.NullString

	err := rows.Scan(
		&record.ID, &record.RequestID, &timeMs,
		&record.Route, &record.Method, &record.ClientID,
		&record.Status, &record.BytesOut, &record.DurationMS,
		&mediaID, &errorVal,
	)
	if err != nil {
		return nil, err
	}

	record.Time = time.UnixMilli(timeMs).UTC()
	if mediaID.Valid {
		record.MediaID = mediaID.String
	}
	if errorVal.Valid {
		record.Error = errorVal.String
	}

	return &record, nil
}
