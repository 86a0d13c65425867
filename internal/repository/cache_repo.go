package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type CacheSQLite struct {
	db *sql.DB
}

func NewCacheSQLite(db *sql.DB) *CacheSQLite {
	return &CacheSQLite{db: db}
}

var _ CacheRepo = (*CacheSQLite)(nil)

const (
	upsertCacheSQL = `
		INSERT INTO device_cache (kind, payload, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			payload=excluded.payload,
			cached_at=excluded.cached_at
	`

	selectCacheSQL = `SELECT payload, cached_at FROM device_cache WHERE kind=?`
)

// Put overwrites the cached payload for one data kind.
func (r *CacheSQLite) Put(ctx context.Context, kind string, payload []byte, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.ExecContext(ctx, upsertCacheSQL, kind, string(payload), at.UTC())
	return err
}

// Get returns the cached payload and its timestamp, or a nil payload when
// nothing was cached for the kind.
func (r *CacheSQLite) Get(ctx context.Context, kind string) ([]byte, time.Time, error) {
	row := r.db.QueryRowContext(ctx, selectCacheSQL, kind)

	var payload string
	var cachedAt time.Time
	if err := row.Scan(&payload, &cachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, err
	}
	return []byte(payload), cachedAt.UTC(), nil
}
