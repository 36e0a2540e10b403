package inventory

import (
	"context"

	"github.com/georgemunganga/lensworks-backend/internal/modules/ledger"
)

// Repository defines inventory storage. Stock itself only changes through ledger.MoveStock.
type Repository interface {
	WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error

	// LowStock lists active options with stock strictly below threshold, emptiest first.
	LowStock(ctx context.Context, threshold float64, limit int) ([]*LowStockItem, error)
}
