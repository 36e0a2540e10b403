package pricing

import "github.com/google/uuid"

// DiscountType names the rule that produced a unit price.
type DiscountType string

const (
	DiscountSpecial DiscountType = "special"
	DiscountBrand   DiscountType = "brand"
	DiscountProduct DiscountType = "product"
	DiscountStore   DiscountType = "store"
	DiscountNone    DiscountType = "none"
	DiscountManual  DiscountType = "manual"
)

// Product is the catalog data pricing needs.
type Product struct {
	ID           uuid.UUID `db:"id"`
	BrandID      uuid.UUID `db:"brand_id"`
	Name         string    `db:"name"`
	SellingPrice int64     `db:"selling_price"`
	IsActive     bool      `db:"is_active"`
}

// Overrides are the store-specific rules that may apply to one product.
// A nil field means no rule is configured.
type Overrides struct {
	SpecialPrice *int64
	BrandRate    *float64
	ProductRate  *float64
	StoreRate    float64
}

// Quote is a resolved unit price.
type Quote struct {
	ProductID     uuid.UUID    `json:"product_id"`
	ProductName   string       `json:"product_name,omitempty"`
	OriginalPrice int64        `json:"original_price"`
	UnitPrice     int64        `json:"unit_price"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountRate  float64      `json:"discount_rate"`
}

type BrandDiscount struct {
	BrandID      uuid.UUID `json:"brand_id" db:"brand_id"`
	DiscountRate float64   `json:"discount_rate" db:"discount_rate"`
}

type ProductDiscount struct {
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	DiscountRate float64   `json:"discount_rate" db:"discount_rate"`
}

type SpecialPrice struct {
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	SpecialPrice int64     `json:"special_price" db:"special_price"`
}

// Rules is every pricing rule configured for one store.
type Rules struct {
	StoreID          uuid.UUID         `json:"store_id"`
	BaseRate         float64           `json:"base_discount_rate"`
	BrandDiscounts   []BrandDiscount   `json:"brand_discounts"`
	ProductDiscounts []ProductDiscount `json:"product_discounts"`
	SpecialPrices    []SpecialPrice    `json:"special_prices"`
}

type SetRateRequest struct {
	DiscountRate float64 `json:"discount_rate"`
}

type SetPriceRequest struct {
	SpecialPrice int64 `json:"special_price"`
}
