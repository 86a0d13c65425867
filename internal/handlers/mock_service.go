package handlers

import (
	"context"
	"net/http"
	"time"

	"mycodash/internal/device"
	"mycodash/internal/models"
	"mycodash/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockConnection struct {
	cfg          models.ConnectionConfig
	updateErr    error
	testStatus   device.ConnStatus
	discoverAddr string
	discoverErr  error

	lastUpdated models.ConnectionConfig
	updateCalls int
}

func (m *mockConnection) Config(ctx context.Context) (models.ConnectionConfig, error) {
	return m.cfg, nil
}
func (m *mockConnection) UpdateConfig(ctx context.Context, cfg models.ConnectionConfig) error {
	m.updateCalls++
	m.lastUpdated = cfg
	return m.updateErr
}
func (m *mockConnection) Test(ctx context.Context) (device.ConnStatus, error) {
	return m.testStatus, nil
}
func (m *mockConnection) Discover(ctx context.Context) (string, error) {
	return m.discoverAddr, m.discoverErr
}

type mockProfiles struct {
	profiles  []models.Profile
	activeID  string
	listErr   error
	created   models.Profile
	createErr error
	updateErr error
	deleteErr error
	activErr  error
	degraded  bool
	warnings  []string

	lastUserID   int
	lastActivate string
	lastDelete   string
}

func (m *mockProfiles) List(ctx context.Context, userID int) ([]models.Profile, string, error) {
	m.lastUserID = userID
	return m.profiles, m.activeID, m.listErr
}
func (m *mockProfiles) Create(ctx context.Context, userID int, p models.Profile) (models.Profile, error) {
	m.lastUserID = userID
	if m.createErr != nil {
		return models.Profile{}, m.createErr
	}
	m.created = p
	return p, nil
}
func (m *mockProfiles) Update(ctx context.Context, userID int, p models.Profile) (models.Profile, error) {
	m.lastUserID = userID
	if m.updateErr != nil {
		return models.Profile{}, m.updateErr
	}
	return p, nil
}
func (m *mockProfiles) Delete(ctx context.Context, userID int, profileID string) error {
	m.lastUserID = userID
	m.lastDelete = profileID
	return m.deleteErr
}
func (m *mockProfiles) Activate(ctx context.Context, userID int, profileID string) error {
	m.lastUserID = userID
	m.lastActivate = profileID
	return m.activErr
}
func (m *mockProfiles) Warnings(userID int) []string { return m.warnings }
func (m *mockProfiles) Degraded(userID int) bool     { return m.degraded }

type mockOverrides struct {
	overrides  []models.ManualOverride
	toggleErr  error
	disableErr error

	lastToggle   models.ActuatorID
	toggleCalls  int
	disableCalls int
}

func (m *mockOverrides) Toggle(ctx context.Context, a models.ActuatorID) error {
	m.toggleCalls++
	m.lastToggle = a
	return m.toggleErr
}
func (m *mockOverrides) Active() []models.ManualOverride { return m.overrides }
func (m *mockOverrides) DisableAll(ctx context.Context) error {
	m.disableCalls++
	return m.disableErr
}
func (m *mockOverrides) Run(ctx context.Context, tick time.Duration) {}

type mockMonitor struct {
	snapshot    models.DeviceSnapshot
	snapshotErr error
	sensors     models.SensorData
	sensorsMode models.ConnectionMode
	sensorsErr  error
	water       models.WaterLevel
	waterMode   models.ConnectionMode
	waterErr    error
	alerts      []models.Alert
	markReadErr error
	points      []models.HistoryPoint
	historyErr  error

	lastMarkRead string
	lastFrom     time.Time
	lastTo       time.Time
}

func (m *mockMonitor) Snapshot(ctx context.Context) (models.DeviceSnapshot, error) {
	return m.snapshot, m.snapshotErr
}
func (m *mockMonitor) Sensors(ctx context.Context) (models.SensorData, models.ConnectionMode, error) {
	return m.sensors, m.sensorsMode, m.sensorsErr
}
func (m *mockMonitor) Water(ctx context.Context) (models.WaterLevel, models.ConnectionMode, error) {
	return m.water, m.waterMode, m.waterErr
}
func (m *mockMonitor) Alerts() []models.Alert { return m.alerts }
func (m *mockMonitor) MarkRead(alertID string) error {
	m.lastMarkRead = alertID
	return m.markReadErr
}
func (m *mockMonitor) History(ctx context.Context, from, to time.Time) ([]models.HistoryPoint, error) {
	m.lastFrom = from
	m.lastTo = to
	return m.points, m.historyErr
}
func (m *mockMonitor) Run(ctx context.Context, tick time.Duration) {}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
