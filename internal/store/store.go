// Package store persists prepared Sankey runs in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/lipidflow-cli/internal/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	input_path   TEXT NOT NULL DEFAULT '',
	start_column TEXT NOT NULL,
	mid_column   TEXT NOT NULL,
	end_column   TEXT NOT NULL,
	value_column TEXT NOT NULL,
	thresholds   TEXT NOT NULL DEFAULT '{}',
	created_at   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS grouped_flows (
	run_id       TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx          INTEGER NOT NULL,
	source_label TEXT NOT NULL,
	target_label TEXT NOT NULL,
	value        REAL NOT NULL,
	ratio        REAL NOT NULL,
	PRIMARY KEY (run_id, idx)
);
CREATE TABLE IF NOT EXISTS flow_records (
	run_id       TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx          INTEGER NOT NULL,
	key          TEXT NOT NULL,
	row_id       TEXT NOT NULL,
	source_label TEXT NOT NULL,
	target_label TEXT NOT NULL,
	source_node  TEXT NOT NULL,
	target_node  TEXT NOT NULL,
	value        REAL NOT NULL,
	row_ratio    REAL NOT NULL,
	ratio        REAL NOT NULL,
	PRIMARY KEY (run_id, idx)
);
CREATE TABLE IF NOT EXISTS node_colors (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx    INTEGER NOT NULL,
	label  TEXT NOT NULL,
	color  TEXT NOT NULL,
	PRIMARY KEY (run_id, idx)
);
`

// DB wraps a SQLite database connection
type DB struct {
	conn *sql.DB
	Path string
}

// Open opens (creating if needed) the run database with WAL mode and foreign keys enabled.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps :memory: databases and PRAGMAs consistent.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{conn: conn, Path: path}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}
