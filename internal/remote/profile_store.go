package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"

	"mycodash/internal/logger"
	"mycodash/internal/models"
)

// ErrStore marks failures of the remote profile store so callers can
// distinguish "cloud is down" from validation or not-found conditions.
var ErrStore = errors.New("remote store unavailable")

// ErrProfileNotFound is returned when a profile id does not exist for the user.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRecord is the persisted shape of a grow profile in Postgres.
type ProfileRecord struct {
	ID               string `gorm:"primaryKey"`
	UserID           int    `gorm:"index:idx_user_profiles;not null"`
	Name             string `gorm:"not null"`
	Icon             string
	MinHumidity      float64
	MaxHumidity      float64
	MinTemperature   float64
	MaxTemperature   float64
	FreshAirInterval int
	FreshAirDuration int
	FoggerMaxOnTime  int
	IsCustom         bool
	IsActive         bool `gorm:"index"`
	IsDefault        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for ProfileRecord.
func (ProfileRecord) TableName() string {
	return "grow_profiles"
}

// Store is the cloud-side source of truth for grow profiles.
type Store interface {
	ListByUser(ctx context.Context, userID int) ([]models.Profile, string, error)
	Upsert(ctx context.Context, userID int, p models.Profile) error
	Delete(ctx context.Context, userID int, profileID string) error
	Activate(ctx context.Context, userID int, profileID string) error
	SeedDefaults(ctx context.Context, userID int, defaults []models.Profile, activeID string) error
}

// GormStore implements Store on top of a Postgres connection.
type GormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the Postgres connection, runs migrations and returns a ready store.
func New(dsn string, log *logger.Logger) (*GormStore, error) {
	gormLogger := gormlog.New(
		zapWriter{log: log},
		gormlog.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      gormlog.Warn,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	if err := db.AutoMigrate(&ProfileRecord{}); err != nil {
		return nil, fmt.Errorf("gorm migrate: %w", err)
	}
	log.Infof("remote profile store ready")

	return &GormStore{db: db, log: log}, nil
}

// ListByUser returns every profile the user owns plus the id of the
// active one ("" when none is marked active).
func (s *GormStore) ListByUser(ctx context.Context, userID int) ([]models.Profile, string, error) {
	var records []ProfileRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, "", fmt.Errorf("%w: list profiles: %v", ErrStore, err)
	}

	profiles := make([]models.Profile, 0, len(records))
	activeID := ""
	for _, r := range records {
		profiles = append(profiles, r.toProfile())
		if r.IsActive {
			activeID = r.ID
		}
	}
	return profiles, activeID, nil
}

// Upsert creates the profile or overwrites an existing row with the same id.
// Activation state of an existing row is preserved.
func (s *GormStore) Upsert(ctx context.Context, userID int, p models.Profile) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ProfileRecord
		err := tx.Where("id = ? AND user_id = ?", p.ID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec := recordFromProfile(userID, p)
			return tx.Create(&rec).Error
		case err != nil:
			return err
		}

		rec := recordFromProfile(userID, p)
		rec.IsActive = existing.IsActive
		rec.CreatedAt = existing.CreatedAt
		return tx.Save(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("%w: upsert profile %s: %v", ErrStore, p.ID, err)
	}
	return nil
}

// Delete removes the profile row. Deleting a missing row is not an error.
func (s *GormStore) Delete(ctx context.Context, userID int, profileID string) error {
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", profileID, userID).
		Delete(&ProfileRecord{}).Error
	if err != nil {
		return fmt.Errorf("%w: delete profile %s: %v", ErrStore, profileID, err)
	}
	return nil
}

// Activate marks exactly one profile active for the user, clearing any
// previous active flag in the same transaction.
func (s *GormStore) Activate(ctx context.Context, userID int, profileID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec ProfileRecord
		if err := tx.Where("id = ? AND user_id = ?", profileID, userID).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}

		if err := tx.Model(&ProfileRecord{}).
			Where("user_id = ? AND is_active", userID).
			Update("is_active", false).Error; err != nil {
			return err
		}

		return tx.Model(&ProfileRecord{}).
			Where("id = ? AND user_id = ?", profileID, userID).
			Update("is_active", true).Error
	})
	if errors.Is(err, ErrProfileNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: activate profile %s: %v", ErrStore, profileID, err)
	}
	return nil
}

// SeedDefaults installs the built-in profile set for a user whose
// remote collection is empty. It is a no-op when rows already exist.
func (s *GormStore) SeedDefaults(ctx context.Context, userID int, defaults []models.Profile, activeID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ProfileRecord{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		for _, p := range defaults {
			rec := recordFromProfile(userID, p)
			rec.IsActive = p.ID == activeID
			rec.IsDefault = true
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: seed defaults: %v", ErrStore, err)
	}
	return nil
}

func (r ProfileRecord) toProfile() models.Profile {
	return models.Profile{
		ID:               r.ID,
		Name:             r.Name,
		Icon:             r.Icon,
		MinHumidity:      r.MinHumidity,
		MaxHumidity:      r.MaxHumidity,
		MinTemperature:   r.MinTemperature,
		MaxTemperature:   r.MaxTemperature,
		FreshAirInterval: r.FreshAirInterval,
		FreshAirDuration: r.FreshAirDuration,
		FoggerMaxOnTime:  r.FoggerMaxOnTime,
		IsCustom:         r.IsCustom,
	}
}

func recordFromProfile(userID int, p models.Profile) ProfileRecord {
	return ProfileRecord{
		ID:               p.ID,
		UserID:           userID,
		Name:             p.Name,
		Icon:             p.Icon,
		MinHumidity:      p.MinHumidity,
		MaxHumidity:      p.MaxHumidity,
		MinTemperature:   p.MinTemperature,
		MaxTemperature:   p.MaxTemperature,
		FreshAirInterval: p.FreshAirInterval,
		FreshAirDuration: p.FreshAirDuration,
		FoggerMaxOnTime:  p.FoggerMaxOnTime,
		IsCustom:         p.IsCustom,
	}
}

// zapWriter adapts the zap logger to gorm's log writer interface.
type zapWriter struct {
	log *logger.Logger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Infof(format, args...)
}
