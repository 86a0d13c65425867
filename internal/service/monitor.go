package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"mycodash/internal/device"
	"mycodash/internal/logger"
	"mycodash/internal/models"
	"mycodash/internal/repository"
)

// ErrAlertNotFound is returned when marking an unknown alert as read.
var ErrAlertNotFound = errors.New("alert not found")

// MonitorService polls the enclosure, maintains the latest snapshot,
// derives alerts from it and appends climate history.
type MonitorService struct {
	dev     device.API
	history repository.HistoryRepo
	clock   Clock
	log     *logger.Logger

	mu       sync.Mutex
	snapshot models.DeviceSnapshot
	polled   bool
	alerts   []models.Alert
}

func NewMonitorService(dev device.API, history repository.HistoryRepo, clock Clock, log *logger.Logger) *MonitorService {
	return &MonitorService{dev: dev, history: history, clock: clock, log: log}
}

// Refresh performs one polling pass immediately.
func (s *MonitorService) Refresh(ctx context.Context) {
	s.poll(ctx)
}

// Snapshot returns the latest aggregate state, polling first if the
// service has never polled.
func (s *MonitorService) Snapshot(ctx context.Context) (models.DeviceSnapshot, error) {
	s.mu.Lock()
	polled := s.polled
	s.mu.Unlock()

	if !polled {
		s.poll(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, nil
}

// Sensors reads the climate probes directly.
func (s *MonitorService) Sensors(ctx context.Context) (models.SensorData, models.ConnectionMode, error) {
	return s.dev.Sensors(ctx)
}

// Water reads the tank level directly.
func (s *MonitorService) Water(ctx context.Context) (models.WaterLevel, models.ConnectionMode, error) {
	return s.dev.Water(ctx)
}

// Alerts returns the current alert list, newest first.
func (s *MonitorService) Alerts() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// MarkRead marks one alert as read. Reading an alert allows the next
// occurrence of its category to raise a fresh one.
func (s *MonitorService) MarkRead(alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].ID == alertID {
			s.alerts[i].Read = true
			return nil
		}
	}
	return ErrAlertNotFound
}

// History returns climate points within [from, to]; zero bounds are open.
func (s *MonitorService) History(ctx context.Context, from, to time.Time) ([]models.HistoryPoint, error) {
	return s.history.List(ctx, from, to)
}

// Run polls on the given cadence until the context is cancelled.
func (s *MonitorService) Run(ctx context.Context, tick time.Duration) {
	s.poll(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.poll(ctx)
		}
	}
}

// poll reads status, sensors and water level concurrently, folds the
// results into the snapshot and derives alerts.
func (s *MonitorService) poll(ctx context.Context) {
	var (
		wg sync.WaitGroup

		status     models.DeviceStatus
		statusMode models.ConnectionMode
		statusErr  error

		sensors     models.SensorData
		sensorsMode models.ConnectionMode
		sensorsErr  error

		water     models.WaterLevel
		waterMode models.ConnectionMode
		waterErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		status, statusMode, statusErr = s.dev.Status(ctx)
	}()
	go func() {
		defer wg.Done()
		sensors, sensorsMode, sensorsErr = s.dev.Sensors(ctx)
	}()
	go func() {
		defer wg.Done()
		water, waterMode, waterErr = s.dev.Water(ctx)
	}()
	wg.Wait()

	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if statusErr != nil || sensorsErr != nil || waterErr != nil {
		// Nothing fresh and nothing cached: keep the last snapshot but
		// flag it stale.
		s.snapshot.Online = false
		s.snapshot.ConnectionMode = models.ModeOffline
		s.polled = true
		s.raiseAlert(models.AlertDeviceOffline, models.SeverityCritical, "Device unreachable", now)
		return
	}

	mode := worstMode(statusMode, sensorsMode, waterMode)
	online := status.Online && mode != models.ModeOffline

	s.snapshot = models.DeviceSnapshot{
		Online:         online,
		Fogger:         status.Fogger,
		ExhaustFan:     status.ExhaustFan,
		CirculationFan: status.CirculationFan,
		Water:          water.Status,
		Sensors:        sensors,
		ObservedAt:     now,
		ConnectionMode: mode,
	}
	s.polled = true

	switch water.Status {
	case models.WaterEmpty:
		s.raiseAlert(models.AlertWaterEmpty, models.SeverityCritical, "Water tank is empty", now)
	case models.WaterLow:
		s.raiseAlert(models.AlertWaterLow, models.SeverityWarning, "Water tank is running low", now)
	}
	if !online {
		s.raiseAlert(models.AlertDeviceOffline, models.SeverityCritical, "Device unreachable", now)
	}

	if sensorsMode == models.ModeLocal {
		point := models.HistoryPoint{
			RecordedAt:       now,
			Temperature:      sensors.Temperature,
			Humidity:         sensors.AvgHumidity,
			FoggerOn:         status.Fogger,
			ExhaustFanOn:     status.ExhaustFan,
			CirculationFanOn: status.CirculationFan,
		}
		if err := s.history.Append(ctx, point); err != nil {
			s.log.Warnw("appending history point failed", "err", err)
		}
	}
}

// raiseAlert adds an alert unless an unread one of the same category is
// already pending. Callers must hold s.mu.
func (s *MonitorService) raiseAlert(cat models.AlertCategory, sev models.AlertSeverity, msg string, at time.Time) {
	for _, a := range s.alerts {
		if a.Category == cat && !a.Read {
			return
		}
	}
	s.alerts = append([]models.Alert{{
		ID:        uuid.NewString(),
		Category:  cat,
		Message:   msg,
		Timestamp: at,
		Severity:  sev,
	}}, s.alerts...)
}

// worstMode folds per-endpoint connection modes: any stale read makes the
// whole snapshot stale.
func worstMode(modes ...models.ConnectionMode) models.ConnectionMode {
	out := models.ModeLocal
	for _, m := range modes {
		if m == models.ModeOffline {
			return models.ModeOffline
		}
		if m == models.ModeCloud {
			out = models.ModeCloud
		}
	}
	return out
}
