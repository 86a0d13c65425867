package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mycodash/internal/device"
	"mycodash/internal/logger"
	"mycodash/internal/models"
)

// OverrideDuration is how long a manual override holds before the
// automation takes the actuator back.
const OverrideDuration = 10 * time.Minute

// OverrideService is the manual-override controller. Each actuator can be
// flipped away from the automation for a bounded window; when the last
// override ends, the device is returned to automatic mode.
type OverrideService struct {
	dev   device.API
	clock Clock
	log   *logger.Logger

	// refresh is called after state-changing device commands so the
	// monitor's snapshot catches up immediately.
	refresh func(ctx context.Context)

	mu         sync.Mutex
	overrides  map[models.ActuatorID]models.ManualOverride
	prevStates map[models.ActuatorID]bool
}

func NewOverrideService(dev device.API, clock Clock, log *logger.Logger) *OverrideService {
	return &OverrideService{
		dev:        dev,
		clock:      clock,
		log:        log,
		overrides:  make(map[models.ActuatorID]models.ManualOverride),
		prevStates: make(map[models.ActuatorID]bool),
	}
}

// Toggle flips one actuator. The first toggle creates an override and
// switches the device to manual mode; toggling again cancels the override
// and restores the actuator's previous state.
func (s *OverrideService) Toggle(ctx context.Context, a models.ActuatorID) error {
	if !a.Valid() {
		return fmt.Errorf("unknown actuator %q", a)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.overrides[a]; ok {
		return s.cancelLocked(ctx, a)
	}
	return s.createLocked(ctx, a)
}

func (s *OverrideService) createLocked(ctx context.Context, a models.ActuatorID) error {
	status, _, err := s.dev.Status(ctx)
	if err != nil {
		return fmt.Errorf("read device status: %w", err)
	}
	current := actuatorState(status, a)

	if len(s.overrides) == 0 {
		if _, err := s.dev.EnableManual(ctx); err != nil {
			return fmt.Errorf("enable manual mode: %w", err)
		}
	}

	if err := s.dev.ControlActuator(ctx, a, !current); err != nil {
		// Manual mode stays on for the device; the command just did not land.
		return fmt.Errorf("switch %s: %w", a, err)
	}

	s.overrides[a] = models.ManualOverride{
		Device:    a,
		ExpiresAt: s.clock.Now().Add(OverrideDuration),
	}
	s.prevStates[a] = current
	s.log.Infow("manual override set", "actuator", a, "on", !current)
	s.refreshLocked(ctx)
	return nil
}

func (s *OverrideService) cancelLocked(ctx context.Context, a models.ActuatorID) error {
	if err := s.dev.ControlActuator(ctx, a, s.prevStates[a]); err != nil {
		return fmt.Errorf("restore %s: %w", a, err)
	}
	s.dropLocked(ctx, a)
	s.log.Infow("manual override cancelled", "actuator", a)
	s.refreshLocked(ctx)
	return nil
}

// dropLocked removes one override and, when it was the last, hands the
// device back to the automation best effort.
func (s *OverrideService) dropLocked(ctx context.Context, a models.ActuatorID) {
	delete(s.overrides, a)
	delete(s.prevStates, a)
	if len(s.overrides) == 0 {
		if err := s.dev.DisableManual(ctx); err != nil {
			s.log.Warnw("disabling manual mode failed", "err", err)
		}
	}
}

// Active lists the overrides currently in force.
func (s *OverrideService) Active() []models.ManualOverride {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ManualOverride, 0, len(s.overrides))
	for _, o := range s.overrides {
		out = append(out, o)
	}
	return out
}

// DisableAll cancels every override and returns the device to automatic
// mode immediately.
func (s *OverrideService) DisableAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.dev.DisableManual(ctx); err != nil {
		return fmt.Errorf("disable manual mode: %w", err)
	}
	s.overrides = make(map[models.ActuatorID]models.ManualOverride)
	s.prevStates = make(map[models.ActuatorID]bool)
	s.log.Infow("manual mode disabled")
	s.refreshLocked(ctx)
	return nil
}

// ExpireDue drops every override whose window has passed.
func (s *OverrideService) ExpireDue(ctx context.Context) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for a, o := range s.overrides {
		if !o.ExpiresAt.After(now) {
			s.log.Infow("manual override expired", "actuator", a)
			s.dropLocked(ctx, a)
		}
	}
}

// Run sweeps for expired overrides until the context is cancelled.
func (s *OverrideService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.ExpireDue(ctx)
		}
	}
}

func (s *OverrideService) refreshLocked(ctx context.Context) {
	if s.refresh != nil {
		s.refresh(ctx)
	}
}

func actuatorState(st models.DeviceStatus, a models.ActuatorID) bool {
	switch a {
	case models.ActuatorFogger:
		return st.Fogger
	case models.ActuatorExhaustFan:
		return st.ExhaustFan
	case models.ActuatorCirculationFan:
		return st.CirculationFan
	}
	return false
}
