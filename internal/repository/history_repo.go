package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"mycodash/internal/models"

	"github.com/google/uuid"
)

type HistorySQLite struct {
	db *sql.DB
}

func NewHistorySQLite(db *sql.DB) *HistorySQLite { return &HistorySQLite{db: db} }

var _ HistoryRepo = (*HistorySQLite)(nil)

// Append inserts one climate datapoint. ID and RecordedAt are set if empty.
func (r *HistorySQLite) Append(ctx context.Context, p models.HistoryPoint) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.RecordedAt.IsZero() {
		p.RecordedAt = time.Now().UTC()
	} else {
		p.RecordedAt = p.RecordedAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO history (id, recorded_at, temperature, humidity, fogger, exhaust, circulation)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID,
		p.RecordedAt,
		p.Temperature,
		p.Humidity,
		p.FoggerOn,
		p.ExhaustFanOn,
		p.CirculationFanOn,
	)
	return err
}

// List returns datapoints within [from, to] (inclusive), ordered ASC.
// A zero bound is open-ended.
func (r *HistorySQLite) List(ctx context.Context, from, to time.Time) ([]models.HistoryPoint, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, to.UTC())
	}

	q := `SELECT id, recorded_at, temperature, humidity, fogger, exhaust, circulation FROM history`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY recorded_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.HistoryPoint, 0, 64)
	for rows.Next() {
		var p models.HistoryPoint
		if err := rows.Scan(&p.ID, &p.RecordedAt, &p.Temperature, &p.Humidity,
			&p.FoggerOn, &p.ExhaustFanOn, &p.CirculationFanOn); err != nil {
			return nil, err
		}
		p.RecordedAt = p.RecordedAt.UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
