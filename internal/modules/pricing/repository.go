package pricing

import (
	"context"

	"github.com/google/uuid"
)

// Repository reads and writes store pricing rules.
type Repository interface {
	// Product returns the catalog price, or apperr.ErrProductNotFound.
	Product(ctx context.Context, productID uuid.UUID) (*Product, error)

	// StoreRate returns the store's base discount rate, or apperr.ErrStoreNotFound.
	StoreRate(ctx context.Context, storeID uuid.UUID) (float64, error)

	BrandExists(ctx context.Context, brandID uuid.UUID) (bool, error)

	// Overrides collects the rules applicable to one store+product.
	Overrides(ctx context.Context, storeID, productID, brandID uuid.UUID) (Overrides, error)

	ListRules(ctx context.Context, storeID uuid.UUID) (*Rules, error)

	UpsertBrandDiscount(ctx context.Context, storeID, brandID uuid.UUID, rate float64) error
	DeleteBrandDiscount(ctx context.Context, storeID, brandID uuid.UUID) error
	UpsertProductDiscount(ctx context.Context, storeID, productID uuid.UUID, rate float64) error
	DeleteProductDiscount(ctx context.Context, storeID, productID uuid.UUID) error
	UpsertSpecialPrice(ctx context.Context, storeID, productID uuid.UUID, price int64) error
	DeleteSpecialPrice(ctx context.Context, storeID, productID uuid.UUID) error
}
