package models

import (
	"time"

	"github.com/google/uuid"
)

// StockEntry tracks how many units of one product sit in one location.
// At most one row exists per (location, product); all writes go through
// the conflict-resolving upsert in internal/stock.
type StockEntry struct {
	LocationID    uuid.UUID `gorm:"column:location_id;type:uuid;primaryKey"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	Quantity      int       `gorm:"column:quantity;not null;default:0"`
	LastScannedAt time.Time `gorm:"column:last_scanned_at;type:timestamptz;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
