package purchase

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a lens maker or distributor we buy stock from.
type Supplier struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	ContactName string    `json:"contact_name,omitempty" db:"contact_name"`
	Phone       string    `json:"phone,omitempty" db:"phone"`
	Email       string    `json:"email,omitempty" db:"email"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SupplierRequest creates or replaces a supplier.
type SupplierRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// Status is the lifecycle state of a purchase order.
type Status string

const (
	StatusOrdered   Status = "ordered"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// Purchase is a purchase order placed with a supplier.
type Purchase struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	PurchaseNo   string          `json:"purchase_no" db:"purchase_no"`
	SupplierID   uuid.UUID       `json:"supplier_id" db:"supplier_id"`
	SupplierName string          `json:"supplier_name,omitempty" db:"supplier_name"`
	Status       Status          `json:"status" db:"status"`
	TotalAmount  int64           `json:"total_amount" db:"total_amount"`
	Memo         string          `json:"memo,omitempty" db:"memo"`
	CreatedBy    string          `json:"created_by" db:"created_by"`
	OrderedAt    time.Time       `json:"ordered_at" db:"ordered_at"`
	ReceivedAt   *time.Time      `json:"received_at,omitempty" db:"received_at"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty" db:"cancelled_at"`
	Items        []*PurchaseItem `json:"items,omitempty" db:"-"`
}

// PurchaseItem is one option line of a purchase order.
type PurchaseItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PurchaseID uuid.UUID `json:"purchase_id" db:"purchase_id"`
	OptionID   uuid.UUID `json:"product_option_id" db:"product_option_id"`
	ProductID  uuid.UUID `json:"product_id" db:"product_id"`
	Quantity   float64   `json:"quantity" db:"quantity"`
	UnitCost   int64     `json:"unit_cost" db:"unit_cost"`
	TotalCost  int64     `json:"total_cost" db:"total_cost"`
	Position   int       `json:"position" db:"position"`
}

// PurchaseLine is one requested line.
type PurchaseLine struct {
	OptionID uuid.UUID `json:"product_option_id"`
	Quantity float64   `json:"quantity"`
	UnitCost int64     `json:"unit_cost"`
}

// PurchaseRequest places a purchase order.
type PurchaseRequest struct {
	SupplierID uuid.UUID      `json:"supplier_id"`
	Memo       string         `json:"memo"`
	Items      []PurchaseLine `json:"items"`
}

// ListFilter narrows a purchase listing.
type ListFilter struct {
	SupplierID *uuid.UUID
	Status     Status
	From       *time.Time
	To         *time.Time
	Limit      int
}
