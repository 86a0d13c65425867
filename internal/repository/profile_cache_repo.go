package repository

import (
	"context"
	"database/sql"
	"fmt"

	"mycodash/internal/models"
)

type ProfileCacheSQLite struct {
	db *sql.DB
}

func NewProfileCacheSQLite(db *sql.DB) *ProfileCacheSQLite {
	return &ProfileCacheSQLite{db: db}
}

var _ ProfileCacheRepo = (*ProfileCacheSQLite)(nil)

const (
	insertProfileSQL = `
		INSERT INTO profiles_local
			(id, name, icon, min_humidity, max_humidity, min_temp, max_temp,
			 fresh_air_interval, fresh_air_duration, fogger_max_on, is_custom, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectProfilesSQL = `
		SELECT id, name, icon, min_humidity, max_humidity, min_temp, max_temp,
		       fresh_air_interval, fresh_air_duration, fogger_max_on, is_custom, is_active
		FROM profiles_local ORDER BY rowid ASC
	`
)

// ReplaceAll swaps the whole cached profile set in one transaction. The
// active profile is marked on its own row.
func (r *ProfileCacheSQLite) ReplaceAll(ctx context.Context, profiles []models.Profile, activeID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin profile cache tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM profiles_local`); err != nil {
		return fmt.Errorf("clear profile cache: %w", err)
	}
	for _, p := range profiles {
		if _, err := tx.ExecContext(ctx, insertProfileSQL,
			p.ID, p.Name, p.Icon,
			p.MinHumidity, p.MaxHumidity,
			p.MinTemperature, p.MaxTemperature,
			p.FreshAirInterval, p.FreshAirDuration, p.FoggerMaxOnTime,
			p.IsCustom, p.ID == activeID,
		); err != nil {
			return fmt.Errorf("insert cached profile %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile cache tx: %w", err)
	}
	return nil
}

// Load returns the cached profile set and the active id ("" when the cache
// is empty or no row is marked active).
func (r *ProfileCacheSQLite) Load(ctx context.Context) ([]models.Profile, string, error) {
	rows, err := r.db.QueryContext(ctx, selectProfilesSQL)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var (
		out      []models.Profile
		activeID string
	)
	for rows.Next() {
		var p models.Profile
		var active bool
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Icon,
			&p.MinHumidity, &p.MaxHumidity,
			&p.MinTemperature, &p.MaxTemperature,
			&p.FreshAirInterval, &p.FreshAirDuration, &p.FoggerMaxOnTime,
			&p.IsCustom, &active,
		); err != nil {
			return nil, "", err
		}
		if active {
			activeID = p.ID
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	return out, activeID, nil
}
