package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney parses a monetary string into an exact decimal, limited to
// two decimal places. Binary floats never enter monetary arithmetic.
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return d, nil
}

// MoneyEqual compares two amounts ignoring exponent representation.
func MoneyEqual(a, b decimal.Decimal) bool {
	return a.Cmp(b) == 0
}
