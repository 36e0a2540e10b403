package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransactionFilter narrows a transaction history query; To is exclusive.
type TransactionFilter struct {
	StoreID *uuid.UUID
	Type    TransactionType
	From    *time.Time
	To      *time.Time
	Limit   int
}

// MovementFilter narrows an inventory movement query; To is exclusive.
type MovementFilter struct {
	OptionID   *uuid.UUID
	ProductID  *uuid.UUID
	OrderID    *uuid.UUID
	PurchaseID *uuid.UUID
	Type       MovementType
	From       *time.Time
	To         *time.Time
	Limit      int
}

// WorkLogFilter narrows a work log query.
type WorkLogFilter struct {
	TargetType string
	TargetID   *uuid.UUID
	WorkType   string
	Limit      int
}

// Repository is the read side of the ledger. Writes go through Tx.
type Repository interface {
	// ListTransactions returns matching rows oldest first.
	ListTransactions(ctx context.Context, f TransactionFilter) ([]*Transaction, error)

	// BalanceBefore returns the store's balance_after of the last row strictly before at, or 0.
	BalanceBefore(ctx context.Context, storeID uuid.UUID, at time.Time) (int64, error)

	// ListMovements returns matching inventory rows newest first.
	ListMovements(ctx context.Context, f MovementFilter) ([]*InventoryTransaction, error)

	// ListWorkLogs returns matching audit rows newest first.
	ListWorkLogs(ctx context.Context, f WorkLogFilter) ([]*WorkLog, error)

	// DailySales aggregates sale, order-cancel and return rows per calendar day
	// of the IANA zone tz, oldest first. Net is left to the caller.
	DailySales(ctx context.Context, f SalesFilter, tz string) ([]*PeriodSales, error)

	// ProductSales aggregates the order lines behind sale and order-cancel rows,
	// largest amount first.
	ProductSales(ctx context.Context, f SalesFilter) ([]*ProductSales, error)
}
