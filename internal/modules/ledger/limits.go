package ledger

import "github.com/georgemunganga/lensworks-backend/internal/apperr"

// Bounds on quantities and money accepted from requests.
// MaxQuantity × MaxUnitPrice stays below MaxAmount, and MaxAmount stays well
// inside both int64 and the exact-integer range of float64.
const (
	MaxQuantity  = 100_000
	MaxUnitPrice = 1_000_000_000
	MaxAmount    = 1_000_000_000_000_000
)

// CheckLine rejects a line quantity or unit price outside the accepted bounds.
func CheckLine(qty float64, unitPrice int64) error {
	switch {
	case qty <= 0:
		return apperr.ErrQuantityInvalid.New()
	case qty > MaxQuantity:
		return apperr.ErrQuantityTooLarge.New(MaxQuantity)
	case unitPrice < 0:
		return apperr.ErrPriceInvalid.New()
	case unitPrice > MaxUnitPrice:
		return apperr.ErrPriceTooLarge.New(int64(MaxUnitPrice))
	}
	return nil
}

// AddAmount returns a+b, failing when either operand or the sum leaves ±MaxAmount.
func AddAmount(a, b int64) (int64, error) {
	if a > MaxAmount || a < -MaxAmount || b > MaxAmount || b < -MaxAmount {
		return 0, apperr.ErrAmountTooLarge.New(int64(MaxAmount))
	}
	sum := a + b
	if sum > MaxAmount || sum < -MaxAmount {
		return 0, apperr.ErrAmountTooLarge.New(int64(MaxAmount))
	}
	return sum, nil
}
