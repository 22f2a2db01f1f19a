package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/shelfwise/shelfwise-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for pantry products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByBarcode(ctx context.Context, accountID uuid.UUID, barcode string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	CreateTags(ctx context.Context, tags []models.ProductTag) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Product, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByBarcode(ctx context.Context, accountID uuid.UUID, barcode string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND barcode = ?", accountID, barcode).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repositoryImpl) CreateTags(ctx context.Context, tags []models.ProductTag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&tags).Error
}

func (r *repositoryImpl) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}
