package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines catalog storage.
type Repository interface {
	CreateBrand(ctx context.Context, b *Brand) error
	UpdateBrand(ctx context.Context, b *Brand) error
	GetBrand(ctx context.Context, id uuid.UUID) (*Brand, error)
	ListBrands(ctx context.Context, activeOnly bool) ([]*Brand, error)

	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]*Product, error)

	// CreateOption inserts an option; a duplicate sph/cyl or barcode yields apperr.ErrDuplicate.
	CreateOption(ctx context.Context, o *ProductOption) error
	// UpdateOption writes everything except stock.
	UpdateOption(ctx context.Context, o *ProductOption) error
	GetOption(ctx context.Context, id uuid.UUID) (*ProductOption, error)
	OptionByBarcode(ctx context.Context, barcode string) (*ProductOption, error)
	ListOptions(ctx context.Context, productID uuid.UUID) ([]*ProductOption, error)
}
