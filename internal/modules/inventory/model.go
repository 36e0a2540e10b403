package inventory

import (
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/google/uuid"
)

// CountLine sets one option's stock to an absolute count.
type CountLine struct {
	OptionID uuid.UUID `json:"product_option_id"`
	Stock    float64   `json:"stock"`
}

// AdjustRequest is a stock-take: every line is a counted quantity.
type AdjustRequest struct {
	Reason string      `json:"reason"`
	Memo   string      `json:"memo"`
	Items  []CountLine `json:"items"`
}

// ReceiveLine adds stock to one option.
type ReceiveLine struct {
	OptionID  uuid.UUID `json:"product_option_id"`
	Quantity  float64   `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
}

// ReceiveRequest records stock arriving outside a purchase order.
type ReceiveRequest struct {
	Memo  string        `json:"memo"`
	Items []ReceiveLine `json:"items"`
}

// LineResult reports one line of an adjustment or receipt.
type LineResult struct {
	OptionID  uuid.UUID           `json:"product_option_id"`
	Unchanged bool                `json:"unchanged,omitempty"`
	Stock     *ledger.StockResult `json:"stock,omitempty"`
}

// Result summarizes a bulk stock operation.
type Result struct {
	Changed   int          `json:"changed"`
	Unchanged int          `json:"unchanged"`
	Lines     []LineResult `json:"lines"`
}

// LowStockItem is an active option whose stock fell below a threshold.
type LowStockItem struct {
	OptionID    uuid.UUID `json:"product_option_id" db:"id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	BrandName   string    `json:"brand_name" db:"brand_name"`
	Sph         string    `json:"sph" db:"sph"`
	Cyl         string    `json:"cyl" db:"cyl"`
	Stock       float64   `json:"stock" db:"stock"`
	Location    string    `json:"location,omitempty" db:"location"`
}
