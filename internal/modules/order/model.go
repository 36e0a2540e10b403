package order

import (
	"math"
	"strings"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
	"github.com/georgemunganga/lensworks-backend/internal/modules/pricing"
	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// ParseTarget validates a requested transition target.
func ParseTarget(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return s, nil
	}
	return "", apperr.ErrStatusInvalid.New(raw)
}

// ParseStatus accepts any lifecycle status, including pending.
func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if s == StatusPending {
		return s, nil
	}
	return ParseTarget(raw)
}

// OrderType distinguishes stock lenses drawn from inventory from made-to-order RX lenses.
type OrderType string

const (
	TypeStock OrderType = "stock"
	TypeRx    OrderType = "rx"
)

var typeAliases = map[string]OrderType{
	"":      TypeStock,
	"stock": TypeStock,
	"여벌":    TypeStock,
	"착색":    TypeStock,
	"기타":    TypeStock,
	"rx":    TypeRx,
}

// ParseOrderType maps the order kinds used at the counter onto stock or rx.
func ParseOrderType(raw string) (OrderType, error) {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t, nil
	}
	return "", apperr.ErrOrderTypeInvalid.New(raw)
}

// NormalizeQuantity rounds q away from zero to the next 0.5 step:
// 0.1 → 0.5, 1.1 → 1.5, 1.6 → 2.0, -0.3 → -0.5.
func NormalizeQuantity(q float64) float64 {
	const eps = 1e-9
	switch {
	case q > 0:
		return math.Ceil(q*2-eps) / 2
	case q < 0:
		return -math.Ceil(-q*2-eps) / 2
	}
	return 0
}

// LineTotal is quantity × unit price rounded to a whole won.
func LineTotal(qty float64, unitPrice int64) int64 {
	return int64(math.Round(qty * float64(unitPrice)))
}

// Order is a store's lens order.
type Order struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	OrderNo     string       `json:"order_no" db:"order_no"`
	Period      string       `json:"period" db:"period"`
	StoreID     uuid.UUID    `json:"store_id" db:"store_id"`
	StoreName   string       `json:"store_name,omitempty" db:"store_name"`
	OrderType   OrderType    `json:"order_type" db:"order_type"`
	Status      OrderStatus  `json:"status" db:"status"`
	TotalAmount int64        `json:"total_amount" db:"total_amount"`
	Memo        string       `json:"memo,omitempty" db:"memo"`
	CreatedBy   string       `json:"created_by" db:"created_by"`
	OrderedAt   time.Time    `json:"ordered_at" db:"ordered_at"`
	ConfirmedAt *time.Time   `json:"confirmed_at,omitempty" db:"confirmed_at"`
	ShippedAt   *time.Time   `json:"shipped_at,omitempty" db:"shipped_at"`
	DeliveredAt *time.Time   `json:"delivered_at,omitempty" db:"delivered_at"`
	CancelledAt *time.Time   `json:"cancelled_at,omitempty" db:"cancelled_at"`
	Items       []*OrderItem `json:"items,omitempty" db:"-"`
}

// TotalQuantity sums the item quantities.
func (o *Order) TotalQuantity() float64 {
	var q float64
	for _, it := range o.Items {
		q += it.Quantity
	}
	return q
}

// OrderItem is a single line within an order.
type OrderItem struct {
	ID            uuid.UUID            `json:"id" db:"id"`
	OrderID       uuid.UUID            `json:"order_id" db:"order_id"`
	ProductID     uuid.UUID            `json:"product_id" db:"product_id"`
	ProductName   string               `json:"product_name,omitempty" db:"product_name"`
	Quantity      float64              `json:"quantity" db:"quantity"`
	UnitPrice     int64                `json:"unit_price" db:"unit_price"`
	OriginalPrice int64                `json:"original_price" db:"original_price"`
	DiscountType  pricing.DiscountType `json:"discount_type" db:"discount_type"`
	DiscountRate  float64              `json:"discount_rate" db:"discount_rate"`
	TotalPrice    int64                `json:"total_price" db:"total_price"`
	Sph           string               `json:"sph,omitempty" db:"sph"`
	Cyl           string               `json:"cyl,omitempty" db:"cyl"`
	Axis          string               `json:"axis,omitempty" db:"axis"`
	BC            string               `json:"bc,omitempty" db:"bc"`
	Dia           string               `json:"dia,omitempty" db:"dia"`
	Memo          string               `json:"memo,omitempty" db:"memo"`
	Position      int                  `json:"position" db:"position"`
}

// ItemRequest describes one line of a new order. UnitPrice overrides the discount chain.
type ItemRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	Sph       string  `json:"sph,omitempty"`
	Cyl       string  `json:"cyl,omitempty"`
	Axis      string  `json:"axis,omitempty"`
	BC        string  `json:"bc,omitempty"`
	Dia       string  `json:"dia,omitempty"`
	Memo      string  `json:"memo,omitempty"`
	UnitPrice *int64  `json:"unit_price,omitempty"`
}

// CreateOrderRequest is the payload for creating a new order.
type CreateOrderRequest struct {
	StoreID         string        `json:"store_id"`
	OrderType       string        `json:"order_type"`
	Items           []ItemRequest `json:"items"`
	Memo            string        `json:"memo,omitempty"`
	SkipCreditCheck bool          `json:"skip_credit_check,omitempty"`
}

// CreditDetails explains a credit-limit rejection.
type CreditDetails struct {
	CurrentOutstanding int64 `json:"current_outstanding"`
	OrderAmount        int64 `json:"order_amount"`
	CreditLimit        int64 `json:"credit_limit"`
	WouldExceedBy      int64 `json:"would_exceed_by"`
}

// TransitionRequest moves one or more orders to a target status.
type TransitionRequest struct {
	OrderIDs []string `json:"order_ids"`
	Status   string   `json:"status"`
}

// Outcome is the per-order result of a transition.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeRejected  Outcome = "rejected"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeFailed    Outcome = "failed"
)

// TransitionResult reports what happened to one order.
type TransitionResult struct {
	OrderID      string               `json:"order_id"`
	OrderNo      string               `json:"order_no,omitempty"`
	From         OrderStatus          `json:"from,omitempty"`
	To           OrderStatus          `json:"to"`
	Outcome      Outcome              `json:"outcome"`
	Error        string               `json:"error,omitempty"`
	Code         string               `json:"code,omitempty"`
	BalanceAfter *int64               `json:"balance_after,omitempty"`
	Stock        []ledger.StockResult `json:"stock,omitempty"`
}

// BatchResult aggregates a multi-order transition.
type BatchResult struct {
	Status  OrderStatus        `json:"status"`
	Results []TransitionResult `json:"results"`
	Counts  map[Outcome]int    `json:"counts"`
}

// ListFilter narrows an order listing; To is exclusive.
type ListFilter struct {
	StoreID *uuid.UUID
	Status  OrderStatus
	Type    OrderType
	From    *time.Time
	To      *time.Time
	Limit   int
}
