package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the journal database schema.
// Timestamps are stored as Unix milliseconds so range scans stay integer
// comparisons.
const Schema = `
-- Journal records table
CREATE TABLE IF NOT EXISTS journal (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,
    time INTEGER NOT NULL,

    -- Request identity
    route TEXT NOT NULL,
    method TEXT NOT NULL,
    client_id TEXT NOT NULL,

    -- Outcome
    status INTEGER NOT NULL,
    bytes_out INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,

    -- Optional context
    media_id TEXT,
    error TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_journal_time ON journal(time);
CREATE INDEX IF NOT EXISTS idx_journal_route ON journal(route);
CREATE INDEX IF NOT EXISTS idx_journal_client_id ON journal(client_id);
CREATE INDEX IF NOT EXISTS idx_journal_request_id ON journal(request_id);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
