package device

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"mycodash/internal/models"
)

// deadAddr returns an address with nothing listening on it.
func deadAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func okServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		_ = json.NewEncoder(w).Encode(models.DeviceStatus{Online: true})
	}))
}

func TestDiscover_TriesInOrderAndStopsAtFirstSuccess(t *testing.T) {
	var hitsB, hitsC int32
	srvB := okServer(t, &hitsB)
	defer srvB.Close()
	srvC := okServer(t, &hitsC)
	defer srvC.Close()

	addrA := deadAddr(t)
	addrB := strings.TrimPrefix(srvB.URL, "http://")
	addrC := strings.TrimPrefix(srvC.URL, "http://")

	store := &memConfigStore{cfg: models.ConnectionConfig{Address: "10.0.0.1", Port: 80}, found: true}
	c, err := NewClient(context.Background(), store, newMemCache(), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.candidates = []string{addrA, addrB, addrC}

	found, err := c.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if found != addrB {
		t.Fatalf("expected first responding candidate %s, got %s", addrB, found)
	}
	if store.cfg.Address != addrB {
		t.Fatalf("expected discovered address persisted, config has %s", store.cfg.Address)
	}
	if atomic.LoadInt32(&hitsB) != 1 {
		t.Fatalf("expected exactly one probe on B, got %d", hitsB)
	}
	if atomic.LoadInt32(&hitsC) != 0 {
		t.Fatalf("no candidate after the first success may be probed, C got %d", hitsC)
	}
}

func TestDiscover_ExhaustedListReturnsNotFound(t *testing.T) {
	store := &memConfigStore{cfg: models.ConnectionConfig{Address: "10.0.0.1", Port: 80}, found: true}
	c, err := NewClient(context.Background(), store, newMemCache(), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.candidates = []string{deadAddr(t), deadAddr(t)}

	if _, err := c.Discover(context.Background()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.cfg.Address != "10.0.0.1" {
		t.Fatalf("failed discovery must not change the configured address")
	}
}

func TestDiscover_NonOKProbeIsAMiss(t *testing.T) {
	srvBad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srvBad.Close()
	srvGood := okServer(t, nil)
	defer srvGood.Close()

	store := &memConfigStore{cfg: models.ConnectionConfig{Address: "10.0.0.1", Port: 80}, found: true}
	c, err := NewClient(context.Background(), store, newMemCache(), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	goodAddr := strings.TrimPrefix(srvGood.URL, "http://")
	c.candidates = []string{strings.TrimPrefix(srvBad.URL, "http://"), goodAddr}

	found, err := c.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if found != goodAddr {
		t.Fatalf("expected %s, got %s", goodAddr, found)
	}
}
