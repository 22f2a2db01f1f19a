package locations

import (
	"context"

	"github.com/google/uuid"
	"github.com/shelfwise/shelfwise-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for storage locations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, location *models.Location) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Location, error)
	FindByID(ctx context.Context, accountID, locationID uuid.UUID) (*models.Location, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a locations repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *repositoryImpl) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Location, error) {
	var locations []models.Location
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("name ASC").
		Find(&locations).Error
	return locations, err
}

func (r *repositoryImpl) FindByID(ctx context.Context, accountID, locationID uuid.UUID) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", locationID, accountID).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}
