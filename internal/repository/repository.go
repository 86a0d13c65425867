package repository

import (
	"context"
	"database/sql"
	"time"

	"mycodash/internal/models"
)

// ConfigRepo persists the single connection-config row. Load reports
// found=false when no row exists yet.
type ConfigRepo interface {
	Load(ctx context.Context) (models.ConnectionConfig, bool, error)
	Save(ctx context.Context, cfg models.ConnectionConfig) error
}

// CacheRepo keeps the last-known-good payload per data kind.
// Get returns a nil payload for a missing kind.
type CacheRepo interface {
	Put(ctx context.Context, kind string, payload []byte, at time.Time) error
	Get(ctx context.Context, kind string) ([]byte, time.Time, error)
}

// ProfileCacheRepo stores the local shadow of the profile set plus the
// active id, replaced wholesale after every mutation.
type ProfileCacheRepo interface {
	Load(ctx context.Context) ([]models.Profile, string, error)
	ReplaceAll(ctx context.Context, profiles []models.Profile, activeID string) error
}

// HistoryRepo is the append-only climate history.
type HistoryRepo interface {
	Append(ctx context.Context, p models.HistoryPoint) error
	List(ctx context.Context, from, to time.Time) ([]models.HistoryPoint, error)
}

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type Repository struct {
	Config       ConfigRepo
	Cache        CacheRepo
	ProfileCache ProfileCacheRepo
	History      HistoryRepo
	Auth         Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Config:       NewConfigSQLite(db),
		Cache:        NewCacheSQLite(db),
		ProfileCache: NewProfileCacheSQLite(db),
		History:      NewHistorySQLite(db),
		Auth:         NewUserRepository(db),
	}
}
