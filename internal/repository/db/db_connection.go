package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates the local SQLite file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is not great with many writers
	db.SetMaxIdleConns(1)

	// Pragmas to improve reliability
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaConnectionConfig = `
CREATE TABLE IF NOT EXISTS connection_config (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    address TEXT NOT NULL,
    port INTEGER NOT NULL,
    auth_token TEXT NOT NULL,
    auto_detect BOOLEAN NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaDeviceCache = `
CREATE TABLE IF NOT EXISTS device_cache (
    kind TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    cached_at TIMESTAMP NOT NULL
);
`

const schemaProfilesLocal = `
CREATE TABLE IF NOT EXISTS profiles_local (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    icon TEXT NOT NULL,
    min_humidity REAL NOT NULL,
    max_humidity REAL NOT NULL,
    min_temp REAL NOT NULL,
    max_temp REAL NOT NULL,
    fresh_air_interval INTEGER NOT NULL,
    fresh_air_duration INTEGER NOT NULL,
    fogger_max_on INTEGER NOT NULL,
    is_custom BOOLEAN NOT NULL,
    is_active BOOLEAN NOT NULL
);
`

const schemaHistory = `
CREATE TABLE IF NOT EXISTS history (
    id TEXT PRIMARY KEY,
    recorded_at TIMESTAMP NOT NULL,
    temperature REAL NOT NULL,
    humidity REAL NOT NULL,
    fogger BOOLEAN NOT NULL,
    exhaust BOOLEAN NOT NULL,
    circulation BOOLEAN NOT NULL
);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaConnectionConfig,
		schemaDeviceCache,
		schemaProfilesLocal,
		schemaHistory,
		schemaUsers,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
