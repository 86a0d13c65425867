package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"mycodash/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

type sqlmockArgumentFunc func(driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool { return f(v) }

// recentUTC matches a time.Time in UTC within a few seconds of now.
var recentUTC = sqlmockArgumentFunc(func(v driver.Value) bool {
	tm, ok := v.(time.Time)
	if !ok {
		return false
	}
	if tm.Location() != time.UTC {
		return false
	}
	now := time.Now().UTC()
	return !tm.Before(now.Add(-5*time.Second)) && !tm.After(now.Add(5*time.Second))
})

func TestConfigSQLite_Save_UpsertsSingleRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewConfigSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(upsertConfigSQL)).
		WithArgs(connectionConfigRowID, "192.168.1.50", 8080, "tok", true, recentUTC).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Save(context.Background(), models.ConnectionConfig{
		Address:    "192.168.1.50",
		Port:       8080,
		AuthToken:  "tok",
		AutoDetect: true,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestConfigSQLite_Load_FoundAndMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewConfigSQLite(db)

	rows := sqlmock.NewRows([]string{"address", "port", "auth_token", "auto_detect"}).
		AddRow("192.168.4.1", 80, "", true)
	mock.ExpectQuery(regexp.QuoteMeta(selectConfigSQL)).
		WithArgs(connectionConfigRowID).
		WillReturnRows(rows)

	cfg, found, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatalf("expected found=true")
	}
	if cfg.Address != "192.168.4.1" || cfg.Port != 80 || !cfg.AutoDetect {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	// Missing row reports found=false without error.
	mock.ExpectQuery(regexp.QuoteMeta(selectConfigSQL)).
		WithArgs(connectionConfigRowID).
		WillReturnError(sql.ErrNoRows)

	_, found, err = repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load (missing): %v", err)
	}
	if found {
		t.Fatalf("expected found=false for missing row")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestConfigSQLite_Load_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewConfigSQLite(db)
	mock.ExpectQuery(regexp.QuoteMeta(selectConfigSQL)).
		WithArgs(connectionConfigRowID).
		WillReturnError(errors.New("disk error"))

	if _, _, err := repo.Load(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
