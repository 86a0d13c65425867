package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"mycodash/internal/device"
	"mycodash/internal/logger"
	"mycodash/internal/models"
	"mycodash/internal/remote"
	"mycodash/internal/repository"
)

// Domain errors for profile flows.
var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrBuiltinProfile   = errors.New("built-in profiles cannot be deleted")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// DefaultProfiles returns the built-in species presets. The oyster profile
// is the initial active one.
func DefaultProfiles() []models.Profile {
	return []models.Profile{
		{
			ID: "oyster", Name: "Oyster", Icon: "🍄",
			MinHumidity: 85, MaxHumidity: 95,
			MinTemperature: 18, MaxTemperature: 24,
			FreshAirInterval: 60, FreshAirDuration: 120, FoggerMaxOnTime: 300,
		},
		{
			ID: "shiitake", Name: "Shiitake", Icon: "🟤",
			MinHumidity: 80, MaxHumidity: 90,
			MinTemperature: 16, MaxTemperature: 22,
			FreshAirInterval: 90, FreshAirDuration: 120, FoggerMaxOnTime: 240,
		},
		{
			ID: "lions-mane", Name: "Lion's Mane", Icon: "⚪",
			MinHumidity: 85, MaxHumidity: 95,
			MinTemperature: 18, MaxTemperature: 24,
			FreshAirInterval: 60, FreshAirDuration: 90, FoggerMaxOnTime: 300,
		},
	}
}

// profileSet is the reconciled in-memory profile state for one user.
type profileSet struct {
	profiles []models.Profile
	activeID string
	degraded bool // remote store was unreachable at load time
	warnings []string
}

// ProfileService reconciles three profile copies: the cloud store (source of
// truth), the local sqlite shadow, and the device's own set (best effort).
type ProfileService struct {
	dev    device.API
	remote remote.Store // nil when running local-only
	local  repository.ProfileCacheRepo
	log    *logger.Logger

	mu    sync.Mutex
	users map[int]*profileSet
}

func NewProfileService(dev device.API, store remote.Store, local repository.ProfileCacheRepo, log *logger.Logger) *ProfileService {
	return &ProfileService{
		dev:    dev,
		remote: store,
		local:  local,
		log:    log,
		users:  make(map[int]*profileSet),
	}
}

// resolveProfiles decides which profile copy wins at load time: the remote
// set when the fetch succeeded, otherwise the local shadow, otherwise the
// built-in defaults. Degraded is true whenever the remote copy was not used.
func resolveProfiles(remoteProfiles []models.Profile, remoteActive string, remoteErr error,
	localProfiles []models.Profile, localActive string) ([]models.Profile, string, bool) {

	if remoteErr == nil {
		return remoteProfiles, remoteActive, false
	}
	if len(localProfiles) > 0 {
		return localProfiles, localActive, true
	}
	defaults := DefaultProfiles()
	return defaults, defaults[0].ID, true
}

// load returns the user's profile set, building it on first access.
// Callers must hold s.mu.
func (s *ProfileService) load(ctx context.Context, userID int) (*profileSet, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	if set, ok := s.users[userID]; ok {
		return set, nil
	}

	set, err := s.buildSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.users[userID] = set
	return set, nil
}

func (s *ProfileService) buildSet(ctx context.Context, userID int) (*profileSet, error) {
	localProfiles, localActive, err := s.local.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load local profile cache: %w", err)
	}

	var (
		remoteProfiles []models.Profile
		remoteActive   string
		remoteErr      error
	)
	if s.remote == nil {
		remoteErr = remote.ErrStore
	} else {
		remoteProfiles, remoteActive, remoteErr = s.remote.ListByUser(ctx, userID)
		if remoteErr == nil && len(remoteProfiles) == 0 {
			defaults := DefaultProfiles()
			remoteProfiles, remoteActive = defaults, defaults[0].ID
			if err := s.remote.SeedDefaults(ctx, userID, defaults, remoteActive); err != nil {
				s.log.Warnw("seeding default profiles failed", "user", userID, "err", err)
				remoteErr = err
			}
		}
	}
	if remoteErr != nil {
		s.log.Warnw("remote profile fetch failed, using fallback", "user", userID, "err", remoteErr)
	}

	profiles, activeID, degraded := resolveProfiles(remoteProfiles, remoteActive, remoteErr, localProfiles, localActive)
	profiles, activeID = reconcileActive(profiles, activeID)

	set := &profileSet{profiles: profiles, activeID: activeID, degraded: degraded}
	s.persistLocal(ctx, set)
	return set, nil
}

// reconcileActive guarantees exactly one active profile: an unknown or empty
// active id falls back to the first profile.
func reconcileActive(profiles []models.Profile, activeID string) ([]models.Profile, string) {
	if len(profiles) == 0 {
		return profiles, ""
	}
	for _, p := range profiles {
		if p.ID == activeID {
			return profiles, activeID
		}
	}
	return profiles, profiles[0].ID
}

// List returns the user's profiles and the active profile id.
func (s *ProfileService) List(ctx context.Context, userID int) ([]models.Profile, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	out := make([]models.Profile, len(set.profiles))
	copy(out, set.profiles)
	return out, set.activeID, nil
}

// Create adds a custom profile. The local copy always succeeds; the remote
// and device copies are updated best effort.
func (s *ProfileService) Create(ctx context.Context, userID int, p models.Profile) (models.Profile, error) {
	if err := p.Validate(); err != nil {
		return models.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}

	p.ID = uuid.NewString()
	p.IsCustom = true

	s.pushRemote(ctx, set, "create", func() error {
		return s.remote.Upsert(ctx, userID, p)
	})
	s.pushDevice(ctx, "create", func() error {
		_, err := s.dev.CreateProfile(ctx, p)
		return err
	})

	set.profiles = append(set.profiles, p)
	s.persistLocal(ctx, set)
	return p, nil
}

// Update overwrites an existing profile's settings, keeping its activation.
func (s *ProfileService) Update(ctx context.Context, userID int, p models.Profile) (models.Profile, error) {
	if err := p.Validate(); err != nil {
		return models.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}

	idx := indexOf(set.profiles, p.ID)
	if idx < 0 {
		return models.Profile{}, ErrProfileNotFound
	}
	p.IsCustom = set.profiles[idx].IsCustom

	s.pushRemote(ctx, set, "update", func() error {
		return s.remote.Upsert(ctx, userID, p)
	})
	s.pushDevice(ctx, "update", func() error {
		_, err := s.dev.UpdateProfile(ctx, p.ID, p)
		return err
	})

	set.profiles[idx] = p
	s.persistLocal(ctx, set)
	return p, nil
}

// Delete removes a custom profile. Deleting the active profile fails over
// to the first remaining one.
func (s *ProfileService) Delete(ctx context.Context, userID int, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	idx := indexOf(set.profiles, profileID)
	if idx < 0 {
		return ErrProfileNotFound
	}
	if !set.profiles[idx].IsCustom {
		return ErrBuiltinProfile
	}

	s.pushRemote(ctx, set, "delete", func() error {
		return s.remote.Delete(ctx, userID, profileID)
	})
	s.pushDevice(ctx, "delete", func() error {
		return s.dev.DeleteProfile(ctx, profileID)
	})

	set.profiles = append(set.profiles[:idx], set.profiles[idx+1:]...)
	if set.activeID == profileID {
		set.profiles, set.activeID = reconcileActive(set.profiles, "")
		if set.activeID != "" {
			s.propagateActivation(ctx, userID, set, set.activeID)
		}
	}
	s.persistLocal(ctx, set)
	return nil
}

// Activate makes exactly one profile active.
func (s *ProfileService) Activate(ctx context.Context, userID int, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if indexOf(set.profiles, profileID) < 0 {
		return ErrProfileNotFound
	}

	s.propagateActivation(ctx, userID, set, profileID)
	set.activeID = profileID
	s.persistLocal(ctx, set)
	return nil
}

// Warnings returns and clears the soft failures recorded for the user.
func (s *ProfileService) Warnings(userID int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.users[userID]
	if !ok {
		return nil
	}
	out := set.warnings
	set.warnings = nil
	return out
}

// Degraded reports whether the user's set was loaded without the remote copy.
func (s *ProfileService) Degraded(userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.users[userID]
	return ok && set.degraded
}

// ---- internals ----

func (s *ProfileService) propagateActivation(ctx context.Context, userID int, set *profileSet, profileID string) {
	s.pushRemote(ctx, set, "activate", func() error {
		return s.remote.Activate(ctx, userID, profileID)
	})
	s.pushDevice(ctx, "activate", func() error {
		return s.dev.ActivateProfile(ctx, profileID)
	})
}

// pushRemote applies a mutation to the cloud store. Failures do not abort
// the operation: they are logged and surfaced as warnings.
func (s *ProfileService) pushRemote(ctx context.Context, set *profileSet, op string, fn func() error) {
	if s.remote == nil {
		return
	}
	if err := fn(); err != nil {
		s.log.Warnw("remote profile "+op+" failed", "err", err)
		set.warnings = append(set.warnings, fmt.Sprintf("cloud sync failed (%s): changes saved locally", op))
	}
}

// pushDevice mirrors a mutation onto the enclosure controller. The device
// keeps its own copy for offline automation, so failures are log-only.
func (s *ProfileService) pushDevice(ctx context.Context, op string, fn func() error) {
	if err := fn(); err != nil {
		s.log.Debugw("device profile "+op+" skipped", "err", err)
	}
}

func (s *ProfileService) persistLocal(ctx context.Context, set *profileSet) {
	if err := s.local.ReplaceAll(ctx, set.profiles, set.activeID); err != nil {
		s.log.Errorw("persisting local profile cache failed", "err", err)
	}
}

func indexOf(profiles []models.Profile, id string) int {
	for i, p := range profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}
