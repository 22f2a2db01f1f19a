package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is one catalog-enriched pantry item. Enrichment fields are
// populated once at creation from the external catalog and stay null when
// the catalog had nothing; they are never refreshed automatically.
type Product struct {
	ID          uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID   uuid.UUID    `gorm:"column:account_id;type:uuid;not null;uniqueIndex:idx_products_account_barcode"`
	Barcode     *string      `gorm:"column:barcode;uniqueIndex:idx_products_account_barcode"`
	Name        string       `gorm:"column:name;not null"`
	Brand       *string      `gorm:"column:brand"`
	ImageURL    *string      `gorm:"column:image_url"`
	Ingredients *string      `gorm:"column:ingredients"`
	NutriScore  *string      `gorm:"column:nutriscore"`
	EcoScore    *string      `gorm:"column:ecoscore"`
	Allergens   *string      `gorm:"column:allergens"`
	Origin      *string      `gorm:"column:origin"`
	Packaging   *string      `gorm:"column:packaging"`
	Tags        []ProductTag `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductTag is a category label derived from the catalog response.
type ProductTag struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Tag       string    `gorm:"column:tag;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
