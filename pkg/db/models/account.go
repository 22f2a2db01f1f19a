package models

import (
	"time"

	"github.com/google/uuid"
)

// Account anchors ownership of devices, products and locations. Identity
// and credentials live in the managed auth backend; this row only exists
// so the inventory tables have a referential owner.
type Account struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
