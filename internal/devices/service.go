package devices

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shelfwise/shelfwise-backend/pkg/db/models"
	pkgerrors "github.com/shelfwise/shelfwise-backend/pkg/errors"
	"github.com/shelfwise/shelfwise-backend/pkg/logger"
	"github.com/shelfwise/shelfwise-backend/pkg/redis"
	"gorm.io/gorm"
)

const touchTimeout = 5 * time.Second

// ResolvedDevice is the per-scan view of one scanner: who owns it and
// where its scans land. Everything downstream of the resolver trusts
// this struct, never identifiers supplied by the request body.
type ResolvedDevice struct {
	DeviceID     uuid.UUID  `json:"device_id"`
	AccountID    uuid.UUID  `json:"account_id"`
	Serial       string     `json:"serial"`
	LocationID   *uuid.UUID `json:"location_id,omitempty"`
	LocationName *string    `json:"location_name,omitempty"`
}

// Service resolves scanner identity and manages device assignments.
type Service interface {
	ResolveBySerial(ctx context.Context, serial string) (*ResolvedDevice, error)
	List(ctx context.Context, accountID uuid.UUID) ([]models.Device, error)
	AssignLocation(ctx context.Context, accountID, deviceID uuid.UUID, locationID *uuid.UUID) error
}

type serialCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DeviceSerialKey(serial string) string
}

type service struct {
	repo     Repository
	cache    serialCache
	cacheTTL time.Duration
	logg     *logger.Logger
}

// ServiceParams wires device service dependencies.
type ServiceParams struct {
	Repo     Repository
	Cache    serialCache
	CacheTTL time.Duration
	Logger   *logger.Logger
}

// NewService wires device resolution dependencies. Cache is optional;
// without it every resolve hits the database.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "devices repository required")
	}
	return &service{
		repo:     params.Repo,
		cache:    params.Cache,
		cacheTTL: params.CacheTTL,
		logg:     params.Logger,
	}, nil
}

func (s *service) ResolveBySerial(ctx context.Context, serial string) (*ResolvedDevice, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device serial required")
	}

	if resolved := s.fromCache(ctx, serial); resolved != nil {
		s.touchAsync(ctx, resolved.DeviceID)
		return resolved, nil
	}

	device, err := s.repo.FindBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "device not registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve device")
	}

	resolved := &ResolvedDevice{
		DeviceID:   device.ID,
		AccountID:  device.AccountID,
		Serial:     device.Serial,
		LocationID: device.LocationID,
	}
	if device.Location != nil {
		name := device.Location.Name
		resolved.LocationName = &name
	}

	s.toCache(ctx, serial, resolved)
	s.touchAsync(ctx, device.ID)

	return resolved, nil
}

func (s *service) List(ctx context.Context, accountID uuid.UUID) ([]models.Device, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	devices, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list devices")
	}
	return devices, nil
}

func (s *service) AssignLocation(ctx context.Context, accountID, deviceID uuid.UUID, locationID *uuid.UUID) error {
	if accountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if deviceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}

	found, err := s.repo.AssignLocation(ctx, accountID, deviceID, locationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign device location")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "device not found")
	}

	// drop every cached resolution for this account's devices lazily: we
	// do not know the serial here, so invalidate on next resolve via TTL
	// and clear eagerly when we can
	s.invalidateByDevice(ctx, accountID, deviceID)
	return nil
}

func (s *service) fromCache(ctx context.Context, serial string) *ResolvedDevice {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.DeviceSerialKey(serial))
	if err != nil {
		if !redis.IsMiss(err) && s.logg != nil {
			s.logg.Warn(ctx, "device cache read failed")
		}
		return nil
	}
	var resolved ResolvedDevice
	if err := json.Unmarshal([]byte(raw), &resolved); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "device cache entry corrupt")
		}
		_ = s.cache.Del(ctx, s.cache.DeviceSerialKey(serial))
		return nil
	}
	return &resolved
}

func (s *service) toCache(ctx context.Context, serial string, resolved *ResolvedDevice) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(resolved)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.DeviceSerialKey(serial), string(payload), s.cacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "device cache write failed")
	}
}

func (s *service) invalidateByDevice(ctx context.Context, accountID, deviceID uuid.UUID) {
	if s.cache == nil {
		return
	}
	devices, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return
	}
	for _, device := range devices {
		if device.ID == deviceID {
			_ = s.cache.Del(ctx, s.cache.DeviceSerialKey(device.Serial))
			return
		}
	}
}

// touchAsync refreshes last_seen without blocking or failing the scan.
func (s *service) touchAsync(ctx context.Context, deviceID uuid.UUID) {
	detached := context.WithoutCancel(ctx)
	go func() {
		touchCtx, cancel := context.WithTimeout(detached, touchTimeout)
		defer cancel()
		if err := s.repo.TouchLastSeen(touchCtx, deviceID, time.Now().UTC()); err != nil && s.logg != nil {
			s.logg.Warn(touchCtx, "device last-seen refresh failed")
		}
	}()
}
