package device

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mycodash/internal/models"
)

// DefaultCandidates are the addresses probed during auto-discovery: the
// controller's own access point first, then common LAN assignments.
var DefaultCandidates = []string{
	"192.168.4.1",
	"192.168.1.100",
	"192.168.1.101",
	"192.168.0.100",
	"192.168.0.101",
}

// probeTimeout is deliberately shorter than DefaultTimeout; a probe that
// takes longer than this is treated as a miss.
const probeTimeout = 2 * time.Second

// ErrNotFound is returned when every candidate address failed to answer.
var ErrNotFound = errors.New("no device found on candidate addresses")

// Discover probes the candidate list in order and stops at the first address
// that answers /status. The found address is persisted immediately and
// becomes the configured one. Probing is sequential; this runs rarely and
// predictability beats speed.
func (c *Client) Discover(ctx context.Context) (string, error) {
	cfg := c.Config()

	for _, addr := range c.candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if c.probe(ctx, addr, cfg) {
			cfg.Address = addr
			if err := c.UpdateConfig(ctx, cfg); err != nil {
				return "", err
			}
			if c.log != nil {
				c.log.Infow("device_discovered", "address", addr)
			}
			return addr, nil
		}
	}
	return "", ErrNotFound
}

func (c *Client) probe(ctx context.Context, addr string, cfg models.ConnectionConfig) bool {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req := c.http.R().SetContext(pctx)
	if cfg.AuthToken != "" {
		req.SetAuthToken(cfg.AuthToken)
	}
	resp, err := req.Get(baseURL(addr, cfg.Port) + "/status")
	if err != nil {
		return false
	}
	return resp.StatusCode() == http.StatusOK
}
