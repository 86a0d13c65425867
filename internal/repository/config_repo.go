package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mycodash/internal/models"
)

type ConfigSQLite struct {
	db *sql.DB
}

func NewConfigSQLite(db *sql.DB) *ConfigSQLite {
	return &ConfigSQLite{db: db}
}

var _ ConfigRepo = (*ConfigSQLite)(nil)

const (
	connectionConfigRowID = 1

	upsertConfigSQL = `
		INSERT INTO connection_config (id, address, port, auth_token, auto_detect, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			address=excluded.address,
			port=excluded.port,
			auth_token=excluded.auth_token,
			auto_detect=excluded.auto_detect,
			updated_at=excluded.updated_at
	`

	selectConfigSQL = `
		SELECT address, port, auth_token, auto_detect
		FROM connection_config WHERE id=?
	`
)

// Save overwrites the single config row (id always 1).
func (r *ConfigSQLite) Save(ctx context.Context, cfg models.ConnectionConfig) error {
	_, err := r.db.ExecContext(ctx, upsertConfigSQL,
		connectionConfigRowID,
		cfg.Address,
		cfg.Port,
		cfg.AuthToken,
		cfg.AutoDetect,
		time.Now().UTC(),
	)
	return err
}

// Load fetches the single config row. found=false when the row is absent.
func (r *ConfigSQLite) Load(ctx context.Context) (models.ConnectionConfig, bool, error) {
	row := r.db.QueryRowContext(ctx, selectConfigSQL, connectionConfigRowID)

	var cfg models.ConnectionConfig
	if err := row.Scan(&cfg.Address, &cfg.Port, &cfg.AuthToken, &cfg.AutoDetect); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ConnectionConfig{}, false, nil
		}
		return models.ConnectionConfig{}, false, err
	}
	return cfg, true, nil
}
