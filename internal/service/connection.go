package service

import (
	"context"
	"errors"
	"fmt"

	"mycodash/internal/device"
	"mycodash/internal/logger"
	"mycodash/internal/models"
)

// ConnectionService manages the device connection settings.
type ConnectionService struct {
	dev device.API
	log *logger.Logger
}

func NewConnectionService(dev device.API, log *logger.Logger) *ConnectionService {
	return &ConnectionService{dev: dev, log: log}
}

// Config returns the current connection configuration.
func (s *ConnectionService) Config(ctx context.Context) (models.ConnectionConfig, error) {
	return s.dev.Config(), nil
}

// UpdateConfig validates and persists new settings. They take effect for the
// next device call.
func (s *ConnectionService) UpdateConfig(ctx context.Context, cfg models.ConnectionConfig) error {
	if cfg.Address == "" {
		return errors.New("address is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}
	if err := s.dev.UpdateConfig(ctx, cfg); err != nil {
		return err
	}
	s.log.Infow("connection config updated", "address", cfg.Address, "port", cfg.Port)
	return nil
}

// Test performs one status call and reports the resulting connection state.
// The call error itself is folded into the status, not returned.
func (s *ConnectionService) Test(ctx context.Context) (device.ConnStatus, error) {
	_, _, err := s.dev.Status(ctx)
	if err != nil {
		s.log.Warnw("connection test failed", "err", err)
	}
	return s.dev.ConnStatus(), nil
}

// Discover probes the candidate addresses and persists the first responder.
func (s *ConnectionService) Discover(ctx context.Context) (string, error) {
	addr, err := s.dev.Discover(ctx)
	if err != nil {
		return "", err
	}
	s.log.Infow("device discovered", "address", addr)
	return addr, nil
}
