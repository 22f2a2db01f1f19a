package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelfwise/shelfwise-backend/pkg/enums"
)

// ScanLogEntry is the append-only audit record of one ingestion event.
// The pipeline never mutates or deletes rows here.
type ScanLogEntry struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID   uuid.UUID        `gorm:"column:account_id;type:uuid;not null;index"`
	DeviceID    uuid.UUID        `gorm:"column:device_id;type:uuid;not null"`
	ProductID   uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	LocationID  *uuid.UUID       `gorm:"column:location_id;type:uuid"`
	Action      enums.ScanAction `gorm:"column:action;type:scan_action;not null"`
	Quantity    int              `gorm:"column:quantity;not null"`
	ProductName string           `gorm:"column:product_name;not null"`
	CreatedAt   time.Time        `gorm:"column:created_at;type:timestamptz;default:now()"`
}
