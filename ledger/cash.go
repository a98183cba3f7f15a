package ledger

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "USD"

// Cash is a signed amount in the currency's minor unit (cents for USD).
type Cash int64

// Mul scales a per-unit amount by a quantity.
func (c Cash) Mul(qty int64) Cash { return c * Cash(qty) }

// Total is price times qty for a non-negative price and quantity. A
// product that does not fit in int64 is ErrInvalidAmount.
func (c Cash) Total(qty int64) (Cash, error) {
	if c < 0 || qty < 0 {
		return 0, ErrInvalidAmount
	}
	if c != 0 && qty > math.MaxInt64/int64(c) {
		return 0, fmt.Errorf("%w: %d x %d overflows", ErrInvalidAmount, int64(c), qty)
	}
	return c * Cash(qty), nil
}

// Neg flips the sign.
func (c Cash) Neg() Cash { return -c }

// Decimal returns the amount in major units.
func (c Cash) Decimal(currency string) decimal.Decimal {
	return decimal.New(int64(c), -int32(fraction(currency)))
}

// Format renders the amount with the currency's symbol and separators.
func (c Cash) Format(currency string) string {
	return money.New(int64(c), currency).Display()
}

// ParseCash reads a major-unit amount such as "12.50" into minor units.
// Amounts with more digits than the currency allows are rejected rather
// than rounded.
func ParseCash(s, currency string) (Cash, error) {
	if money.GetCurrency(currency) == nil {
		return 0, fmt.Errorf("parse cash: unknown currency %q", currency)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse cash %q: %w", s, err)
	}
	return FromDecimal(d, currency)
}

// FromDecimal converts a major-unit decimal into minor units.
func FromDecimal(d decimal.Decimal, currency string) (Cash, error) {
	minor := d.Shift(int32(fraction(currency)))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more precision than %s allows", d, currency)
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %s out of range", d)
	}
	return Cash(minor.IntPart()), nil
}

// KnownCurrency reports whether code is an ISO currency go-money knows.
func KnownCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

func fraction(currency string) int {
	if c := money.GetCurrency(currency); c != nil {
		return c.Fraction
	}
	return 2
}

// Plain renders the amount in major units without a symbol, e.g. "-12.50".
func (c Cash) Plain(currency string) string {
	return c.Decimal(currency).StringFixed(int32(fraction(currency)))
}
