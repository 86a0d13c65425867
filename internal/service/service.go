package service

import (
	"context"
	"time"

	"mycodash/internal/device"
	"mycodash/internal/logger"
	"mycodash/internal/models"
	"mycodash/internal/remote"
	"mycodash/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Connection exposes the device connection settings and probes.
type Connection interface {
	Config(ctx context.Context) (models.ConnectionConfig, error)
	UpdateConfig(ctx context.Context, cfg models.ConnectionConfig) error
	Test(ctx context.Context) (device.ConnStatus, error)
	Discover(ctx context.Context) (string, error)
}

// Profiles is the grow-profile reconciliation engine.
type Profiles interface {
	List(ctx context.Context, userID int) ([]models.Profile, string, error)
	Create(ctx context.Context, userID int, p models.Profile) (models.Profile, error)
	Update(ctx context.Context, userID int, p models.Profile) (models.Profile, error)
	Delete(ctx context.Context, userID int, profileID string) error
	Activate(ctx context.Context, userID int, profileID string) error
	Warnings(userID int) []string
	Degraded(userID int) bool
}

// Overrides is the manual-override controller for the three actuators.
type Overrides interface {
	Toggle(ctx context.Context, a models.ActuatorID) error
	Active() []models.ManualOverride
	DisableAll(ctx context.Context) error
	Run(ctx context.Context, tick time.Duration)
}

// Monitor exposes polled device state, alerts and climate history.
type Monitor interface {
	Snapshot(ctx context.Context) (models.DeviceSnapshot, error)
	Sensors(ctx context.Context) (models.SensorData, models.ConnectionMode, error)
	Water(ctx context.Context) (models.WaterLevel, models.ConnectionMode, error)
	Alerts() []models.Alert
	MarkRead(alertID string) error
	History(ctx context.Context, from, to time.Time) ([]models.HistoryPoint, error)
	Run(ctx context.Context, tick time.Duration)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Connection
	Profiles
	Overrides
	Monitor
	Authorization
}

// Deps carries everything the service layer is built from.
type Deps struct {
	Device device.API
	Repos  *repository.Repository
	Remote remote.Store // nil means cloud store unavailable (local-only mode)
	Clock  Clock
	Log    *logger.Logger
	Auth   AuthConfig
}

func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = SystemClock()
	}

	monitor := NewMonitorService(d.Device, d.Repos.History, d.Clock, d.Log.Named("monitor"))
	overrides := NewOverrideService(d.Device, d.Clock, d.Log.Named("overrides"))
	overrides.refresh = monitor.Refresh

	return &Service{
		Connection:    NewConnectionService(d.Device, d.Log.Named("connection")),
		Profiles:      NewProfileService(d.Device, d.Remote, d.Repos.ProfileCache, d.Log.Named("profiles")),
		Overrides:     overrides,
		Monitor:       monitor,
		Authorization: NewAuthService(d.Repos.Auth, d.Auth),
	}
}
