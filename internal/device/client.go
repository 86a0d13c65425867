package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"mycodash/internal/logger"
	"mycodash/internal/models"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds every regular device call.
const DefaultTimeout = 5 * time.Second

// Cache kinds, one per read endpoint.
const (
	cacheKindStatus        = "status"
	cacheKindSensors       = "sensors"
	cacheKindWater         = "water"
	cacheKindProfiles      = "profiles"
	cacheKindActiveProfile = "active_profile"
)

// ConfigStore persists the connection configuration. Load reports found=false
// when no configuration has been saved yet.
type ConfigStore interface {
	Load(ctx context.Context) (models.ConnectionConfig, bool, error)
	Save(ctx context.Context, cfg models.ConnectionConfig) error
}

// CacheStore persists the last-known-good payload per data kind.
// Get returns a nil payload when no entry exists.
type CacheStore interface {
	Put(ctx context.Context, kind string, payload []byte, at time.Time) error
	Get(ctx context.Context, kind string) ([]byte, time.Time, error)
}

// ConnStatus is the derived connection state after the most recent call.
type ConnStatus struct {
	Connected bool   `json:"connected"`
	LastError string `json:"lastError,omitempty"`
}

// API is the full surface of the enclosure controller. Reads degrade to the
// cache; writes never do.
type API interface {
	Config() models.ConnectionConfig
	UpdateConfig(ctx context.Context, cfg models.ConnectionConfig) error
	ConnStatus() ConnStatus

	Status(ctx context.Context) (models.DeviceStatus, models.ConnectionMode, error)
	Sensors(ctx context.Context) (models.SensorData, models.ConnectionMode, error)
	Water(ctx context.Context) (models.WaterLevel, models.ConnectionMode, error)
	Profiles(ctx context.Context) ([]models.Profile, models.ConnectionMode, error)
	ActiveProfile(ctx context.Context) (models.Profile, models.ConnectionMode, error)

	CreateProfile(ctx context.Context, p models.Profile) (models.Profile, error)
	UpdateProfile(ctx context.Context, id string, p models.Profile) (models.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
	ActivateProfile(ctx context.Context, id string) error
	ControlActuator(ctx context.Context, a models.ActuatorID, on bool) error
	EnableManual(ctx context.Context) (models.ManualState, error)
	DisableManual(ctx context.Context) error

	Discover(ctx context.Context) (string, error)
}

// Client talks JSON-over-HTTP to the enclosure controller.
type Client struct {
	http     *resty.Client
	cfgStore ConfigStore
	cache    CacheStore
	log      *logger.Logger

	mu         sync.Mutex
	cfg        models.ConnectionConfig
	connected  bool
	lastErr    string
	candidates []string
}

var _ API = (*Client)(nil)

// NewClient loads the persisted connection config (falling back to first-run
// defaults) and returns a ready client.
func NewClient(ctx context.Context, cfgStore ConfigStore, cache CacheStore, log *logger.Logger) (*Client, error) {
	cfg, found, err := cfgStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load connection config: %w", err)
	}
	if !found {
		cfg = models.DefaultConnectionConfig()
		if err := cfgStore.Save(ctx, cfg); err != nil {
			return nil, fmt.Errorf("save default connection config: %w", err)
		}
	}
	return &Client{
		http:       resty.New().SetTimeout(DefaultTimeout),
		cfgStore:   cfgStore,
		cache:      cache,
		log:        log,
		cfg:        cfg,
		candidates: append([]string(nil), DefaultCandidates...),
	}, nil
}

// Config returns the current connection configuration.
func (c *Client) Config() models.ConnectionConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// UpdateConfig persists the new configuration. It takes effect for the next
// call; a call already in flight completes against the old address.
func (c *Client) UpdateConfig(ctx context.Context, cfg models.ConnectionConfig) error {
	if err := c.cfgStore.Save(ctx, cfg); err != nil {
		return fmt.Errorf("save connection config: %w", err)
	}
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
	return nil
}

// ConnStatus reports whether the most recent call succeeded.
func (c *Client) ConnStatus() ConnStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConnStatus{Connected: c.connected, LastError: c.lastErr}
}

// ---- read endpoints ----

func (c *Client) Status(ctx context.Context) (models.DeviceStatus, models.ConnectionMode, error) {
	var out models.DeviceStatus
	mode, err := c.readThroughCache(ctx, "/status", cacheKindStatus, &out)
	return out, mode, err
}

func (c *Client) Sensors(ctx context.Context) (models.SensorData, models.ConnectionMode, error) {
	var out models.SensorData
	mode, err := c.readThroughCache(ctx, "/sensors", cacheKindSensors, &out)
	return out, mode, err
}

func (c *Client) Water(ctx context.Context) (models.WaterLevel, models.ConnectionMode, error) {
	var out models.WaterLevel
	mode, err := c.readThroughCache(ctx, "/water", cacheKindWater, &out)
	return out, mode, err
}

func (c *Client) Profiles(ctx context.Context) ([]models.Profile, models.ConnectionMode, error) {
	var out []models.Profile
	mode, err := c.readThroughCache(ctx, "/profiles", cacheKindProfiles, &out)
	return out, mode, err
}

func (c *Client) ActiveProfile(ctx context.Context) (models.Profile, models.ConnectionMode, error) {
	var out models.Profile
	mode, err := c.readThroughCache(ctx, "/profile/active", cacheKindActiveProfile, &out)
	return out, mode, err
}

// ---- write endpoints (never served from cache) ----

func (c *Client) CreateProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	var out models.Profile
	err := c.do(ctx, http.MethodPost, "/profiles", p, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, id string, p models.Profile) (models.Profile, error) {
	var out models.Profile
	err := c.do(ctx, http.MethodPut, "/profiles/"+id, p, &out)
	return out, err
}

func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/profiles/"+id, nil, nil)
}

func (c *Client) ActivateProfile(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/profiles/activate", map[string]string{"id": id}, nil)
}

// ControlActuator switches one actuator on or off.
func (c *Client) ControlActuator(ctx context.Context, a models.ActuatorID, on bool) error {
	path, err := controlPath(a)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, map[string]bool{"on": on}, nil)
}

func (c *Client) EnableManual(ctx context.Context) (models.ManualState, error) {
	var out models.ManualState
	err := c.do(ctx, http.MethodPost, "/manual/enable", nil, &out)
	return out, err
}

func (c *Client) DisableManual(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/manual/disable", nil, nil)
}

// ---- internals ----

// controlPath maps an actuator to its firmware endpoint. The circulation fan
// is plain "fan" on the wire.
func controlPath(a models.ActuatorID) (string, error) {
	switch a {
	case models.ActuatorFogger:
		return "/control/fogger", nil
	case models.ActuatorExhaustFan:
		return "/control/exhaust", nil
	case models.ActuatorCirculationFan:
		return "/control/fan", nil
	}
	return "", fmt.Errorf("unknown actuator %q", a)
}

// readThroughCache performs a GET, refreshing the cache on success. On
// failure it serves the last cached payload flagged offline, or fails with
// no_cached_data when the cache is cold.
func (c *Client) readThroughCache(ctx context.Context, path, kind string, out any) (models.ConnectionMode, error) {
	callErr := c.do(ctx, http.MethodGet, path, nil, out)
	if callErr == nil {
		if b, err := json.Marshal(out); err == nil {
			if err := c.cache.Put(ctx, kind, b, time.Now().UTC()); err != nil && c.log != nil {
				c.log.Warnw("device_cache_write_failed", "kind", kind, "err", err)
			}
		}
		return models.ModeLocal, nil
	}

	b, _, err := c.cache.Get(ctx, kind)
	if err == nil && b != nil {
		if err := json.Unmarshal(b, out); err == nil {
			return models.ModeOffline, nil
		}
	}
	return models.ModeOffline, newError(KindNoCachedData, callErr)
}

// do executes one HTTP call against the configured device and updates the
// derived connection status.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	cfg := c.Config()

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")
	if cfg.AuthToken != "" {
		req.SetAuthToken(cfg.AuthToken)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, baseURL(cfg.Address, cfg.Port)+path)
	if err != nil {
		return c.fail(classifyTransportError(err))
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return c.fail(newError(KindUnauthorized, nil))
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return c.fail(newHTTPError(resp.StatusCode(), nil))
	}
	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return c.fail(fmt.Errorf("decode %s response: %w", path, err))
		}
	}

	c.mu.Lock()
	c.connected = true
	c.lastErr = ""
	c.mu.Unlock()
	return nil
}

func (c *Client) fail(err error) error {
	c.mu.Lock()
	c.connected = false
	c.lastErr = err.Error()
	c.mu.Unlock()
	return err
}

// classifyTransportError separates a timed-out call from an unreachable host.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return newError(KindTimeout, err)
	}
	return newError(KindUnreachable, err)
}

// baseURL accepts a bare address (port appended from config) or an explicit
// host:port pair.
func baseURL(address string, port int) string {
	if strings.Contains(address, ":") {
		return "http://" + address
	}
	return fmt.Sprintf("http://%s:%d", address, port)
}
