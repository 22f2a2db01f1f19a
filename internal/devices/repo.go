package devices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shelfwise/shelfwise-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for paired scanner devices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBySerial(ctx context.Context, serial string) (*models.Device, error)
	TouchLastSeen(ctx context.Context, deviceID uuid.UUID, now time.Time) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Device, error)
	AssignLocation(ctx context.Context, accountID, deviceID uuid.UUID, locationID *uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a device repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindBySerial(ctx context.Context, serial string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("serial = ?", serial).
		First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *repositoryImpl) TouchLastSeen(ctx context.Context, deviceID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("id = ?", deviceID).
		UpdateColumn("last_seen_at", now).Error
}

func (r *repositoryImpl) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Device, error) {
	var devices []models.Device
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&devices).Error
	return devices, err
}

func (r *repositoryImpl) AssignLocation(ctx context.Context, accountID, deviceID uuid.UUID, locationID *uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("id = ? AND account_id = ?", deviceID, accountID).
		Update("location_id", locationID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
