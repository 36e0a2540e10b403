package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Brand is a lens manufacturer line.
type Brand struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Product is a lens catalog entry. Prices are whole won.
type Product struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	BrandID         uuid.UUID        `json:"brand_id" db:"brand_id"`
	BrandName       string           `json:"brand_name,omitempty" db:"brand_name"`
	Name            string           `json:"name" db:"name"`
	LensType        string           `json:"lens_type,omitempty" db:"lens_type"`
	RefractiveIndex string           `json:"refractive_index,omitempty" db:"refractive_index"`
	SellingPrice    int64            `json:"selling_price" db:"selling_price"`
	PurchasePrice   int64            `json:"purchase_price" db:"purchase_price"`
	IsActive        bool             `json:"is_active" db:"is_active"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
	Options         []*ProductOption `json:"options,omitempty" db:"-"`
}

// ProductOption is the stock-keeping unit for one sphere/cylinder combination.
type ProductOption struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Sph       string    `json:"sph" db:"sph"`
	Cyl       string    `json:"cyl" db:"cyl"`
	Stock     float64   `json:"stock" db:"stock"`
	Barcode   *string   `json:"barcode,omitempty" db:"barcode"`
	Location  string    `json:"location,omitempty" db:"location"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BrandRequest creates or renames a brand.
type BrandRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// ProductRequest creates or replaces a product.
type ProductRequest struct {
	BrandID         uuid.UUID `json:"brand_id"`
	Name            string    `json:"name"`
	LensType        string    `json:"lens_type"`
	RefractiveIndex string    `json:"refractive_index"`
	SellingPrice    int64     `json:"selling_price"`
	PurchasePrice   int64     `json:"purchase_price"`
	IsActive        *bool     `json:"is_active,omitempty"`
}

// OptionRequest creates or edits an option. Stock is never set here.
type OptionRequest struct {
	Sph      string `json:"sph"`
	Cyl      string `json:"cyl"`
	Barcode  string `json:"barcode"`
	Location string `json:"location"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	BrandID    *uuid.UUID
	Query      string
	ActiveOnly bool
	Limit      int
}
