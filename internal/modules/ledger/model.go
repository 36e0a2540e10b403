package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// TransactionType classifies a balance-affecting event.
type TransactionType string

const (
	TxSale       TransactionType = "sale"
	TxDeposit    TransactionType = "deposit"
	TxReturn     TransactionType = "return"
	TxAdjustment TransactionType = "adjustment"
)

// Transaction is one append-only accounts-receivable row. Amount is signed:
// the running sum of a store's rows equals its outstanding amount.
type Transaction struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	StoreID       uuid.UUID       `json:"store_id" db:"store_id"`
	Type          TransactionType `json:"type" db:"type"`
	Amount        int64           `json:"amount" db:"amount"`
	BalanceAfter  int64           `json:"balance_after" db:"balance_after"`
	OrderID       *uuid.UUID      `json:"order_id,omitempty" db:"order_id"`
	OrderNo       string          `json:"order_no,omitempty" db:"order_no"`
	ReturnID      *uuid.UUID      `json:"return_id,omitempty" db:"return_id"`
	PaymentMethod string          `json:"payment_method,omitempty" db:"payment_method"`
	Depositor     string          `json:"depositor,omitempty" db:"depositor"`
	BankName      string          `json:"bank_name,omitempty" db:"bank_name"`
	Memo          string          `json:"memo,omitempty" db:"memo"`
	ProcessedBy   string          `json:"processed_by" db:"processed_by"`
	ProcessedAt   time.Time       `json:"processed_at" db:"processed_at"`
}

// MovementType classifies a stock-affecting event.
type MovementType string

const (
	MoveIn     MovementType = "in"
	MoveOut    MovementType = "out"
	MoveAdjust MovementType = "adjust"
)

// InventoryTransaction is one append-only stock row; BeforeStock + Quantity == AfterStock.
type InventoryTransaction struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	ProductID       uuid.UUID    `json:"product_id" db:"product_id"`
	ProductOptionID uuid.UUID    `json:"product_option_id" db:"product_option_id"`
	Type            MovementType `json:"type" db:"type"`
	Reason          string       `json:"reason" db:"reason"`
	Quantity        float64      `json:"quantity" db:"quantity"`
	BeforeStock     float64      `json:"before_stock" db:"before_stock"`
	AfterStock      float64      `json:"after_stock" db:"after_stock"`
	OrderID         *uuid.UUID   `json:"order_id,omitempty" db:"order_id"`
	OrderNo         string       `json:"order_no,omitempty" db:"order_no"`
	PurchaseID      *uuid.UUID   `json:"purchase_id,omitempty" db:"purchase_id"`
	ReturnID        *uuid.UUID   `json:"return_id,omitempty" db:"return_id"`
	UnitPrice       int64        `json:"unit_price" db:"unit_price"`
	TotalPrice      int64        `json:"total_price" db:"total_price"`
	Memo            string       `json:"memo,omitempty" db:"memo"`
	ProcessedBy     string       `json:"processed_by" db:"processed_by"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
}

// WorkLog is a free-form audit entry for any business action.
type WorkLog struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	WorkType    string          `json:"work_type" db:"work_type"`
	TargetType  string          `json:"target_type" db:"target_type"`
	TargetID    uuid.UUID       `json:"target_id" db:"target_id"`
	TargetNo    string          `json:"target_no,omitempty" db:"target_no"`
	Description string          `json:"description" db:"description"`
	Details     types.JSONText  `json:"details,omitempty" db:"details"`
	UserName    string          `json:"user_name" db:"user_name"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Work types written by the services.
const (
	WorkOrderCreate      = "order_create"
	WorkOrderConfirm     = "order_confirm"
	WorkOrderShip        = "order_ship"
	WorkOrderDeliver     = "order_deliver"
	WorkOrderCancel      = "order_cancel"
	WorkPayment          = "payment"
	WorkBalanceAdjust    = "balance_adjust"
	WorkStockAdjust      = "stock_adjust"
	WorkStockIn          = "stock_in"
	WorkPurchaseCreate   = "purchase_create"
	WorkPurchaseReceive  = "purchase_receive"
	WorkPurchaseCancel   = "purchase_cancel"
	WorkReturnCreate     = "return_create"
	WorkReturnApprove    = "return_approve"
	WorkReturnReceive    = "return_receive"
	WorkReturnReject     = "return_reject"
	WorkTaxInvoiceCreate = "tax_invoice_create"
	WorkTaxInvoiceSend   = "tax_invoice_send"
	WorkTaxInvoiceCancel = "tax_invoice_cancel"
)

// StoreAccount is the receivable state of a store as seen inside a transaction.
type StoreAccount struct {
	ID                uuid.UUID `db:"id"`
	Code              string    `db:"code"`
	Name              string    `db:"name"`
	IsActive          bool      `db:"is_active"`
	OutstandingAmount int64     `db:"outstanding_amount"`
	CreditLimit       int64     `db:"credit_limit"`
}

// OptionStock is the stock state of one ProductOption. Stock counts lenses in
// steps of 0.5 (one lens of a pair), which float64 holds exactly.
type OptionStock struct {
	ID        uuid.UUID `db:"id"`
	ProductID uuid.UUID `db:"product_id"`
	Sph       string    `db:"sph"`
	Cyl       string    `db:"cyl"`
	Stock     float64   `db:"stock"`
	IsActive  bool      `db:"is_active"`
}

// Statement summarises one store's ledger for a calendar month.
type Statement struct {
	StoreID        uuid.UUID                 `json:"store_id"`
	Period         string                    `json:"period"`
	OpeningBalance int64                     `json:"opening_balance"`
	ClosingBalance int64                     `json:"closing_balance"`
	Totals         map[TransactionType]int64 `json:"totals"`
	Transactions   []*Transaction            `json:"transactions"`
}

// Sales report groupings.
const (
	GroupDay   = "day"
	GroupMonth = "month"
)

// SalesFilter scopes a sales report; To is exclusive.
type SalesFilter struct {
	StoreID *uuid.UUID
	From    time.Time
	To      time.Time
}

// PeriodSales aggregates booked sales for one day or month. Cancelled and
// Returned are positive amounts taken back from Sales.
type PeriodSales struct {
	Period    string `json:"period" db:"period"`
	Orders    int    `json:"orders" db:"orders"`
	Sales     int64  `json:"sales" db:"sales"`
	Cancelled int64  `json:"cancelled" db:"cancelled"`
	Returned  int64  `json:"returned" db:"returned"`
	Net       int64  `json:"net" db:"-"`
}

func (p *PeriodSales) add(o *PeriodSales) {
	p.Orders += o.Orders
	p.Sales += o.Sales
	p.Cancelled += o.Cancelled
	p.Returned += o.Returned
	p.Net = p.Sales - p.Cancelled - p.Returned
}

// ProductSales aggregates the lines of booked orders per product, net of cancellations.
type ProductSales struct {
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	Amount      int64     `json:"amount" db:"amount"`
	Orders      int       `json:"orders" db:"orders"`
}

// SalesReport summarises booked sales over an inclusive date range.
type SalesReport struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	GroupBy  string          `json:"group_by"`
	Totals   PeriodSales     `json:"totals"`
	Periods  []*PeriodSales  `json:"periods"`
	Products []*ProductSales `json:"products"`
}
