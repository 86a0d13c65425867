package service

import (
	"context"
	"sync"
	"time"

	"mycodash/internal/device"
	"mycodash/internal/models"
)

// manualClock lets tests move time by hand.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(at time.Time) *manualClock { return &manualClock{now: at} }

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type controlCall struct {
	actuator models.ActuatorID
	on       bool
}

// fakeDevice is a scriptable device.API double. Reads return the stored
// values with their configured mode and error; writes record their calls
// and fail when the matching error knob is set.
type fakeDevice struct {
	mu sync.Mutex

	cfg models.ConnectionConfig

	status      models.DeviceStatus
	statusMode  models.ConnectionMode
	statusErr   error
	sensors     models.SensorData
	sensorsMode models.ConnectionMode
	sensorsErr  error
	water       models.WaterLevel
	waterMode   models.ConnectionMode
	waterErr    error

	controlErr       error
	enableManualErr  error
	disableManualErr error
	profileOpErr     error

	controlCalls       []controlCall
	enableManualCalls  int
	disableManualCalls int
	createdProfiles    []models.Profile
	updatedProfiles    []models.Profile
	deletedProfiles    []string
	activatedProfiles  []string

	discoverAddr string
	discoverErr  error
}

var _ device.API = (*fakeDevice)(nil)

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		cfg:         models.DefaultConnectionConfig(),
		statusMode:  models.ModeLocal,
		sensorsMode: models.ModeLocal,
		waterMode:   models.ModeLocal,
		status:      models.DeviceStatus{Online: true, Mode: "auto"},
		water:       models.WaterLevel{Status: models.WaterOK},
	}
}

func (f *fakeDevice) Config() models.ConnectionConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *fakeDevice) UpdateConfig(ctx context.Context, cfg models.ConnectionConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
	return nil
}

func (f *fakeDevice) ConnStatus() device.ConnStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return device.ConnStatus{Connected: f.statusErr == nil}
}

func (f *fakeDevice) Status(ctx context.Context) (models.DeviceStatus, models.ConnectionMode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statusMode, f.statusErr
}

func (f *fakeDevice) Sensors(ctx context.Context) (models.SensorData, models.ConnectionMode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sensors, f.sensorsMode, f.sensorsErr
}

func (f *fakeDevice) Water(ctx context.Context) (models.WaterLevel, models.ConnectionMode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.water, f.waterMode, f.waterErr
}

func (f *fakeDevice) Profiles(ctx context.Context) ([]models.Profile, models.ConnectionMode, error) {
	return nil, models.ModeLocal, nil
}

func (f *fakeDevice) ActiveProfile(ctx context.Context) (models.Profile, models.ConnectionMode, error) {
	return models.Profile{}, models.ModeLocal, nil
}

func (f *fakeDevice) CreateProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileOpErr != nil {
		return models.Profile{}, f.profileOpErr
	}
	f.createdProfiles = append(f.createdProfiles, p)
	return p, nil
}

func (f *fakeDevice) UpdateProfile(ctx context.Context, id string, p models.Profile) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileOpErr != nil {
		return models.Profile{}, f.profileOpErr
	}
	f.updatedProfiles = append(f.updatedProfiles, p)
	return p, nil
}

func (f *fakeDevice) DeleteProfile(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileOpErr != nil {
		return f.profileOpErr
	}
	f.deletedProfiles = append(f.deletedProfiles, id)
	return nil
}

func (f *fakeDevice) ActivateProfile(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileOpErr != nil {
		return f.profileOpErr
	}
	f.activatedProfiles = append(f.activatedProfiles, id)
	return nil
}

func (f *fakeDevice) ControlActuator(ctx context.Context, a models.ActuatorID, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.controlErr != nil {
		return f.controlErr
	}
	f.controlCalls = append(f.controlCalls, controlCall{actuator: a, on: on})
	switch a {
	case models.ActuatorFogger:
		f.status.Fogger = on
	case models.ActuatorExhaustFan:
		f.status.ExhaustFan = on
	case models.ActuatorCirculationFan:
		f.status.CirculationFan = on
	}
	return nil
}

func (f *fakeDevice) EnableManual(ctx context.Context) (models.ManualState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enableManualErr != nil {
		return models.ManualState{}, f.enableManualErr
	}
	f.enableManualCalls++
	f.status.Mode = "manual"
	return models.ManualState{Enabled: true}, nil
}

func (f *fakeDevice) DisableManual(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disableManualErr != nil {
		return f.disableManualErr
	}
	f.disableManualCalls++
	f.status.Mode = "auto"
	return nil
}

func (f *fakeDevice) Discover(ctx context.Context) (string, error) {
	return f.discoverAddr, f.discoverErr
}
