package store

import (
	"time"

	"github.com/google/uuid"
)

// Store is a retailer account that places lens orders.
type Store struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	Code              string     `json:"code" db:"code"`
	Name              string     `json:"name" db:"name"`
	OwnerName         string     `json:"owner_name,omitempty" db:"owner_name"`
	Phone             string     `json:"phone,omitempty" db:"phone"`
	Address           string     `json:"address,omitempty" db:"address"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	OutstandingAmount int64      `json:"outstanding_amount" db:"outstanding_amount"`
	CreditLimit       int64      `json:"credit_limit" db:"credit_limit"`
	PaymentTermsDays  int        `json:"payment_terms_days" db:"payment_terms_days"`
	DiscountRate      float64    `json:"discount_rate" db:"discount_rate"`
	LastPaymentAt     *time.Time `json:"last_payment_at,omitempty" db:"last_payment_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// StoreRequest creates or replaces a store's profile. Outstanding amount is never set here.
type StoreRequest struct {
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	OwnerName        string  `json:"owner_name"`
	Phone            string  `json:"phone"`
	Address          string  `json:"address"`
	CreditLimit      int64   `json:"credit_limit"`
	PaymentTermsDays *int    `json:"payment_terms_days,omitempty"`
	DiscountRate     float64 `json:"discount_rate"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

// DepositRequest records money received from a store.
type DepositRequest struct {
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	Depositor     string `json:"depositor"`
	BankName      string `json:"bank_name"`
	Memo          string `json:"memo"`
}

// AdjustmentRequest corrects a store's balance by a signed amount.
type AdjustmentRequest struct {
	Amount int64  `json:"amount"`
	Memo   string `json:"memo"`
}

// ListFilter narrows a store listing.
type ListFilter struct {
	Query      string
	ActiveOnly bool
	Limit      int
}
