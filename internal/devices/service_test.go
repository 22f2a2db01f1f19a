package devices

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shelfwise/shelfwise-backend/pkg/db/models"
	pkgerrors "github.com/shelfwise/shelfwise-backend/pkg/errors"
	"gorm.io/gorm"
)

type fakeRepository struct {
	mu sync.Mutex

	findBySerialFn func(ctx context.Context, serial string) (*models.Device, error)
	listFn         func(ctx context.Context, accountID uuid.UUID) ([]models.Device, error)
	assignFn       func(ctx context.Context, accountID, deviceID uuid.UUID, locationID *uuid.UUID) (bool, error)

	findCalls int
	touched   []uuid.UUID
	touchDone chan struct{}
	touchErr  error
	touchOnce sync.Once
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindBySerial(ctx context.Context, serial string) (*models.Device, error) {
	f.mu.Lock()
	f.findCalls++
	f.mu.Unlock()
	if f.findBySerialFn != nil {
		return f.findBySerialFn(ctx, serial)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) TouchLastSeen(ctx context.Context, deviceID uuid.UUID, now time.Time) error {
	f.mu.Lock()
	f.touched = append(f.touched, deviceID)
	f.mu.Unlock()
	if f.touchDone != nil {
		f.touchOnce.Do(func() { close(f.touchDone) })
	}
	return f.touchErr
}

func (f *fakeRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Device, error) {
	if f.listFn != nil {
		return f.listFn(ctx, accountID)
	}
	return nil, nil
}

func (f *fakeRepository) AssignLocation(ctx context.Context, accountID, deviceID uuid.UUID, locationID *uuid.UUID) (bool, error) {
	if f.assignFn != nil {
		return f.assignFn(ctx, accountID, deviceID, locationID)
	}
	return true, nil
}

func (f *fakeRepository) findCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findCalls
}

func (f *fakeRepository) waitForTouch(t *testing.T) uuid.UUID {
	t.Helper()
	select {
	case <-f.touchDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for last-seen refresh")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched[0]
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.entries[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value.(string)
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func (f *fakeCache) DeviceSerialKey(serial string) string {
	return "sw:cache:device:" + serial
}

func newTestService(t *testing.T, repo Repository, cache serialCache) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Cache: cache, CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_ResolveBySerialMissThenHit(t *testing.T) {
	deviceID := uuid.New()
	accountID := uuid.New()
	locationID := uuid.New()

	repo := &fakeRepository{
		touchDone: make(chan struct{}),
		findBySerialFn: func(ctx context.Context, serial string) (*models.Device, error) {
			return &models.Device{
				ID:         deviceID,
				AccountID:  accountID,
				Serial:     serial,
				LocationID: &locationID,
				Location:   &models.Location{ID: locationID, Name: "Kitchen"},
			}, nil
		},
	}
	cache := newFakeCache()
	svc := newTestService(t, repo, cache)

	resolved, err := svc.ResolveBySerial(context.Background(), "SCAN-001")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if resolved.DeviceID != deviceID || resolved.AccountID != accountID {
		t.Fatalf("unexpected resolution: %+v", resolved)
	}
	if resolved.LocationName == nil || *resolved.LocationName != "Kitchen" {
		t.Fatalf("expected location name, got %+v", resolved.LocationName)
	}
	if touched := repo.waitForTouch(t); touched != deviceID {
		t.Fatalf("expected touch for %s got %s", deviceID, touched)
	}

	// second resolve must be served from cache
	again, err := svc.ResolveBySerial(context.Background(), "SCAN-001")
	if err != nil {
		t.Fatalf("unexpected cached resolve error: %v", err)
	}
	if again.DeviceID != deviceID {
		t.Fatalf("cached resolution mismatch: %+v", again)
	}
	if count := repo.findCallCount(); count != 1 {
		t.Fatalf("expected 1 repository lookup, got %d", count)
	}
}

func TestService_ResolveBySerialUnknown(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(t, repo, newFakeCache())

	_, err := svc.ResolveBySerial(context.Background(), "UNKNOWN-1")
	if err == nil {
		t.Fatal("expected error for unregistered serial")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %s", code)
	}
}

func TestService_ResolveBySerialBlankSerial(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, nil)

	_, err := svc.ResolveBySerial(context.Background(), "   ")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
}

func TestService_ResolveBySerialCorruptCacheEntry(t *testing.T) {
	deviceID := uuid.New()
	repo := &fakeRepository{
		touchDone: make(chan struct{}),
		findBySerialFn: func(ctx context.Context, serial string) (*models.Device, error) {
			return &models.Device{ID: deviceID, AccountID: uuid.New(), Serial: serial}, nil
		},
	}
	cache := newFakeCache()
	cache.entries[cache.DeviceSerialKey("SCAN-002")] = "{not json"

	svc := newTestService(t, repo, cache)
	resolved, err := svc.ResolveBySerial(context.Background(), "SCAN-002")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if resolved.DeviceID != deviceID {
		t.Fatalf("unexpected device id %s", resolved.DeviceID)
	}

	// corrupt entry must be replaced by a fresh one
	raw := cache.entries[cache.DeviceSerialKey("SCAN-002")]
	var cached ResolvedDevice
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		t.Fatalf("expected rewritten cache entry, got %q", raw)
	}
	if cached.DeviceID != deviceID {
		t.Fatalf("cache entry device mismatch: %s", cached.DeviceID)
	}
}

func TestService_AssignLocationInvalidatesCache(t *testing.T) {
	deviceID := uuid.New()
	accountID := uuid.New()

	repo := &fakeRepository{
		listFn: func(ctx context.Context, gotAccount uuid.UUID) ([]models.Device, error) {
			if gotAccount != accountID {
				t.Fatalf("unexpected account %s", gotAccount)
			}
			return []models.Device{{ID: deviceID, AccountID: accountID, Serial: "SCAN-003"}}, nil
		},
	}
	cache := newFakeCache()
	cache.entries[cache.DeviceSerialKey("SCAN-003")] = `{"device_id":"` + deviceID.String() + `"}`

	svc := newTestService(t, repo, cache)
	locationID := uuid.New()
	if err := svc.AssignLocation(context.Background(), accountID, deviceID, &locationID); err != nil {
		t.Fatalf("unexpected assign error: %v", err)
	}

	if _, ok := cache.entries[cache.DeviceSerialKey("SCAN-003")]; ok {
		t.Fatal("expected cache entry to be invalidated")
	}
}

func TestService_AssignLocationNotFound(t *testing.T) {
	repo := &fakeRepository{
		assignFn: func(ctx context.Context, accountID, deviceID uuid.UUID, locationID *uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(t, repo, nil)

	err := svc.AssignLocation(context.Background(), uuid.New(), uuid.New(), nil)
	if err == nil {
		t.Fatal("expected error for unknown device")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %s", code)
	}
}
