package returns

import (
	"strings"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/google/uuid"
)

// Type distinguishes a refund from an exchange.
type Type string

const (
	TypeReturn   Type = "return"
	TypeExchange Type = "exchange"
)

var typeAliases = map[string]Type{
	"":         TypeReturn,
	"return":   TypeReturn,
	"반품":       TypeReturn,
	"exchange": TypeExchange,
	"교환":       TypeExchange,
}

// ParseType maps the request kind onto return or exchange.
func ParseType(raw string) (Type, error) {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t, nil
	}
	return "", apperr.ErrReturnTypeInvalid.New(raw)
}

// Status is the lifecycle state of a return.
type Status string

const (
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusReceived  Status = "received"
	StatusRejected  Status = "rejected"
)

// Action moves a return along its lifecycle.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReceive Action = "receive"
	ActionReject  Action = "reject"
)

// ParseAction validates a requested action.
func ParseAction(raw string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	switch a {
	case ActionApprove, ActionReceive, ActionReject:
		return a, nil
	}
	return "", apperr.ErrReturnActionInvalid.New(raw)
}

// Return is a store's request to send lenses back against a booked order.
type Return struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	ReturnNo      string        `json:"return_no" db:"return_no"`
	OrderID       uuid.UUID     `json:"order_id" db:"order_id"`
	OrderNo       string        `json:"order_no" db:"order_no"`
	StoreID       uuid.UUID     `json:"store_id" db:"store_id"`
	StoreName     string        `json:"store_name,omitempty" db:"store_name"`
	Type          Type          `json:"type" db:"type"`
	Status        Status        `json:"status" db:"status"`
	TotalQuantity float64       `json:"total_quantity" db:"total_quantity"`
	TotalAmount   int64         `json:"total_amount" db:"total_amount"`
	Reason        string        `json:"reason,omitempty" db:"reason"`
	Memo          string        `json:"memo,omitempty" db:"memo"`
	ProcessedBy   string        `json:"processed_by" db:"processed_by"`
	RequestedAt   time.Time     `json:"requested_at" db:"requested_at"`
	ApprovedAt    *time.Time    `json:"approved_at,omitempty" db:"approved_at"`
	ReceivedAt    *time.Time    `json:"received_at,omitempty" db:"received_at"`
	RejectedAt    *time.Time    `json:"rejected_at,omitempty" db:"rejected_at"`
	Items         []*ReturnItem `json:"items,omitempty" db:"-"`
}

// ReturnItem is the part of one order line being returned.
type ReturnItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ReturnID    uuid.UUID `json:"return_id" db:"return_id"`
	OrderItemID uuid.UUID `json:"order_item_id" db:"order_item_id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	Sph         string    `json:"sph,omitempty" db:"sph"`
	Cyl         string    `json:"cyl,omitempty" db:"cyl"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	UnitPrice   int64     `json:"unit_price" db:"unit_price"`
	TotalPrice  int64     `json:"total_price" db:"total_price"`
	Reason      string    `json:"reason,omitempty" db:"reason"`
	Condition   string    `json:"condition" db:"condition"`
	Position    int       `json:"position" db:"position"`
}

// LineRequest names an order line and how much of it comes back.
type LineRequest struct {
	OrderItemID uuid.UUID `json:"order_item_id"`
	Quantity    float64   `json:"quantity"`
	Reason      string    `json:"reason"`
	Condition   string    `json:"condition"`
}

// CreateRequest opens a return.
type CreateRequest struct {
	OrderID uuid.UUID     `json:"order_id"`
	Type    string        `json:"type"`
	Reason  string        `json:"reason"`
	Memo    string        `json:"memo"`
	Items   []LineRequest `json:"items"`
}

// ActionRequest approves, receives or rejects a return.
type ActionRequest struct {
	Action string `json:"action"`
	Memo   string `json:"memo"`
}

// ListFilter narrows a return listing.
type ListFilter struct {
	StoreID *uuid.UUID
	OrderID *uuid.UUID
	Status  Status
	Limit   int
}
