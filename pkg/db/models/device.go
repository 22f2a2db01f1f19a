package models

import (
	"time"

	"github.com/google/uuid"
)

// Device is a paired barcode scanner. The serial number is the credential
// it presents on every scan; pairing and deletion happen in the device
// management UI, the ingestion pipeline only reads and touches last_seen.
type Device struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID  uuid.UUID  `gorm:"column:account_id;type:uuid;not null;index"`
	Serial     string     `gorm:"column:serial;not null;uniqueIndex"`
	Name       *string    `gorm:"column:name"`
	LocationID *uuid.UUID `gorm:"column:location_id;type:uuid"`
	Location   *Location  `gorm:"foreignKey:LocationID"`
	LastSeenAt *time.Time `gorm:"column:last_seen_at;type:timestamptz"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
