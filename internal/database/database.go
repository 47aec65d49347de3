package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle.
type DB struct {
	conn *sql.DB
}

// Connect opens (or creates) the SQLite database and runs migrations.
func Connect(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("unable to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// WAL mode so the API can read history while detections are written.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to set WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.runMigrations(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("Database connected: %s", dbPath)
	return db, nil
}

// Close closes the database handle.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) runMigrations() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for version := 1; version <= len(migrations); version++ {
		var exists bool
		err := db.conn.QueryRow(
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)",
			version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", version, err)
		}
		if exists {
			continue
		}

		log.Printf("Applying migration %d...", version)
		if _, err := db.conn.Exec(migrations[version]); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", version, err)
		}
		if _, err := db.conn.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version,
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", version, err)
		}
	}

	return nil
}

// migrations is an ordered map of migration version to SQL.
var migrations = map[int]string{
	1: migration001,
	2: migration002,
}

// Timestamps are stored as Unix seconds: the sqlite driver hands TEXT
// columns back as strings, so integer times are the portable choice.
const migration001 = `
CREATE TABLE IF NOT EXISTS invoices (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    invoice_id TEXT NOT NULL,
    store_name TEXT,
    store_key TEXT,
    products TEXT NOT NULL,
    total_amount REAL NOT NULL DEFAULT 0,
    detection_confidence REAL NOT NULL DEFAULT 0,
    extracted_text TEXT,
    invoice_date INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invoices_created ON invoices(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_invoices_store ON invoices(store_key);
`

const migration002 = `
CREATE TABLE IF NOT EXISTS forecasts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    predicted_quantity INTEGER NOT NULL,
    trend TEXT NOT NULL,
    confidence REAL NOT NULL,
    historical_mean REAL NOT NULL,
    history_count INTEGER NOT NULL,
    products TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_forecasts_created ON forecasts(created_at DESC);
`
