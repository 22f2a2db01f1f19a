package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shelfwise/shelfwise-backend/pkg/db/models"
	"gorm.io/gorm"
)

// StockLine is one inventory row joined with its product for listings.
type StockLine struct {
	LocationID    uuid.UUID `json:"locationId"`
	ProductID     uuid.UUID `json:"productId"`
	ProductName   string    `json:"productName"`
	Quantity      int       `json:"quantity"`
	LastScannedAt time.Time `json:"lastScannedAt"`
}

// Repository persists per-location stock counts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ApplyDelta(ctx context.Context, locationID, productID uuid.UUID, delta int, scannedAt time.Time) (int, error)
	Get(ctx context.Context, locationID, productID uuid.UUID) (*models.StockEntry, error)
	ListByLocation(ctx context.Context, accountID, locationID uuid.UUID) ([]StockLine, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// ApplyDelta moves the (location, product) count by delta in a single upsert
// and returns the resulting quantity. The arithmetic runs inside the conflict
// clause so concurrent scans compose instead of overwriting each other, and
// GREATEST keeps a remove from driving the count below zero.
func (r *repositoryImpl) ApplyDelta(ctx context.Context, locationID, productID uuid.UUID, delta int, scannedAt time.Time) (int, error) {
	insertQuantity := delta
	if insertQuantity < 0 {
		insertQuantity = 0
	}

	var quantity int
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO stock_entries (location_id, product_id, quantity, last_scanned_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (location_id, product_id) DO UPDATE SET
			quantity = GREATEST(0, stock_entries.quantity + ?),
			last_scanned_at = EXCLUDED.last_scanned_at,
			updated_at = now()
		RETURNING quantity
	`, locationID, productID, insertQuantity, scannedAt, delta).Scan(&quantity).Error
	if err != nil {
		return 0, err
	}
	return quantity, nil
}

func (r *repositoryImpl) Get(ctx context.Context, locationID, productID uuid.UUID) (*models.StockEntry, error) {
	var entry models.StockEntry
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND product_id = ?", locationID, productID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repositoryImpl) ListByLocation(ctx context.Context, accountID, locationID uuid.UUID) ([]StockLine, error) {
	var lines []StockLine
	err := r.db.WithContext(ctx).
		Table("stock_entries").
		Select("stock_entries.location_id, stock_entries.product_id, products.name AS product_name, stock_entries.quantity, stock_entries.last_scanned_at").
		Joins("JOIN products ON products.id = stock_entries.product_id").
		Joins("JOIN locations ON locations.id = stock_entries.location_id").
		Where("locations.account_id = ? AND stock_entries.location_id = ?", accountID, locationID).
		Order("products.name ASC").
		Scan(&lines).Error
	return lines, err
}
