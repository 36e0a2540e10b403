package taxinvoice

import (
	"strings"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/google/uuid"
)

// Status is the lifecycle state of a tax invoice.
type Status string

const (
	StatusIssued    Status = "issued"
	StatusSent      Status = "sent"
	StatusCancelled Status = "cancelled"
)

// validTransitions is the tax invoice state machine. Cancelled is terminal.
var validTransitions = map[Status][]Status{
	StatusIssued: {StatusSent, StatusCancelled},
	StatusSent:   {StatusCancelled},
}

// CanTransition reports whether an invoice may move from current to next.
func CanTransition(current, next Status) bool {
	for _, s := range validTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// ParseStatus accepts a listing filter value.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusIssued, StatusSent, StatusCancelled:
		return s, nil
	}
	return "", apperr.ErrTaxInvoiceStatusInvalid.New(raw)
}

// VATRate is the value added tax rate in percent.
const VATRate = 10

// VAT returns the tax on a supply amount, rounded half up.
func VAT(supply int64) int64 {
	if supply < 0 {
		return -VAT(-supply)
	}
	return (supply*VATRate + 50) / 100
}

// Party identifies the supplier or the buyer printed on an invoice.
type Party struct {
	BizNo   string `json:"biz_no"`
	Name    string `json:"name"`
	CEOName string `json:"ceo_name"`
	Address string `json:"address"`
	BizType string `json:"biz_type,omitempty"`
	BizItem string `json:"biz_item,omitempty"`
}

// TaxInvoice is a VAT invoice issued to a store.
type TaxInvoice struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	InvoiceNo       string     `json:"invoice_no" db:"invoice_no"`
	StoreID         uuid.UUID  `json:"store_id" db:"store_id"`
	SupplierBizNo   string     `json:"supplier_biz_no" db:"supplier_biz_no"`
	SupplierName    string     `json:"supplier_name" db:"supplier_name"`
	SupplierCEOName string     `json:"supplier_ceo_name" db:"supplier_ceo_name"`
	SupplierAddress string     `json:"supplier_address" db:"supplier_address"`
	SupplierBizType string     `json:"supplier_biz_type" db:"supplier_biz_type"`
	SupplierBizItem string     `json:"supplier_biz_item" db:"supplier_biz_item"`
	BuyerBizNo      string     `json:"buyer_biz_no" db:"buyer_biz_no"`
	BuyerName       string     `json:"buyer_name" db:"buyer_name"`
	BuyerCEOName    string     `json:"buyer_ceo_name" db:"buyer_ceo_name"`
	BuyerAddress    string     `json:"buyer_address" db:"buyer_address"`
	SupplyAmount    int64      `json:"supply_amount" db:"supply_amount"`
	TaxAmount       int64      `json:"tax_amount" db:"tax_amount"`
	TotalAmount     int64      `json:"total_amount" db:"total_amount"`
	IssueDate       time.Time  `json:"issue_date" db:"issue_date"`
	SupplyDate      time.Time  `json:"supply_date" db:"supply_date"`
	Status          Status     `json:"status" db:"status"`
	Memo            string     `json:"memo,omitempty" db:"memo"`
	IdempotencyKey  string     `json:"-" db:"idempotency_key"`
	CreatedBy       string     `json:"created_by" db:"created_by"`
	SentAt          *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	Items           []*Item    `json:"items,omitempty" db:"-"`
}

func (t *TaxInvoice) setSupplier(p Party) {
	t.SupplierBizNo, t.SupplierName, t.SupplierCEOName = p.BizNo, p.Name, p.CEOName
	t.SupplierAddress, t.SupplierBizType, t.SupplierBizItem = p.Address, p.BizType, p.BizItem
}

func (t *TaxInvoice) setBuyer(p Party) {
	t.BuyerBizNo, t.BuyerName, t.BuyerCEOName, t.BuyerAddress = p.BizNo, p.Name, p.CEOName, p.Address
}

// Item is one supply line of an invoice.
type Item struct {
	ID            uuid.UUID `json:"id" db:"id"`
	InvoiceID     uuid.UUID `json:"tax_invoice_id" db:"tax_invoice_id"`
	Seq           int       `json:"seq" db:"seq"`
	ItemDate      time.Time `json:"item_date" db:"item_date"`
	ItemName      string    `json:"item_name" db:"item_name"`
	Specification string    `json:"specification,omitempty" db:"specification"`
	Quantity      float64   `json:"quantity" db:"quantity"`
	UnitPrice     int64     `json:"unit_price" db:"unit_price"`
	SupplyAmount  int64     `json:"supply_amount" db:"supply_amount"`
	TaxAmount     int64     `json:"tax_amount" db:"tax_amount"`
	Memo          string    `json:"memo,omitempty" db:"memo"`
}

// ItemRequest is one requested supply line. SupplyAmount defaults to quantity × unit price.
type ItemRequest struct {
	ItemName      string  `json:"item_name"`
	Specification string  `json:"specification"`
	Quantity      float64 `json:"quantity"`
	UnitPrice     int64   `json:"unit_price"`
	SupplyAmount  *int64  `json:"supply_amount,omitempty"`
	Memo          string  `json:"memo"`
}

// IssueRequest issues an invoice to a store.
type IssueRequest struct {
	StoreID    uuid.UUID     `json:"store_id"`
	BuyerBizNo string        `json:"buyer_biz_no"`
	SupplyDate string        `json:"supply_date"` // YYYY-MM-DD, defaults to the issue date
	Memo       string        `json:"memo"`
	Items      []ItemRequest `json:"items"`

	// IdempotencyKey replays the first invoice issued under the same key.
	IdempotencyKey string `json:"-"`
}

// ListFilter narrows an invoice listing; To is exclusive.
type ListFilter struct {
	StoreID *uuid.UUID
	Status  Status
	From    *time.Time
	To      *time.Time
	Limit   int
}

// Summary counts invoices per status; TotalAmount excludes cancelled ones.
type Summary struct {
	Issued      int   `json:"issued" db:"issued"`
	Sent        int   `json:"sent" db:"sent"`
	Cancelled   int   `json:"cancelled" db:"cancelled"`
	TotalAmount int64 `json:"total_amount" db:"total_amount"`
}

// List is one page of invoices with the overall summary.
type List struct {
	Invoices []*TaxInvoice `json:"invoices"`
	Summary  Summary       `json:"summary"`
}
