// Package common holds the value types shared across the matching engine:
// decimals, identifiers, orders, trades, and market-data snapshots.
package common

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal is the engine's exact base-10 fixed-point type. It is never a
// binary float: all comparisons, sums and subtractions performed against
// it are exact, which is the whole point of using it for price and
// quantity fields.
type Decimal = decimal.Decimal

// Zero is the additive identity, exported for readability at call sites
// that need an explicit starting accumulator.
var Zero = decimal.Zero

var (
	// ErrEmptyDecimal rejects the empty string, which decimal.NewFromString
	// would otherwise happily parse in some configurations.
	ErrEmptyDecimal = errors.New("decimal: empty string is not a valid number")
	// ErrScientificNotation rejects exponential notation on the wire; the
	// spec requires canonical base-10 string form only.
	ErrScientificNotation = errors.New("decimal: scientific notation is not permitted")
	// ErrNonPositiveDecimal flags a value that must be strictly positive.
	ErrNonPositiveDecimal = errors.New("decimal: value must be positive")
)

// ParseDecimal parses a canonical base-10 decimal string. Empty strings,
// scientific notation ("1e10"), and anything decimal.NewFromString itself
// rejects (non-finite, malformed) are all errors.
func ParseDecimal(s string) (Decimal, error) {
	if s == "" {
		return Decimal{}, ErrEmptyDecimal
	}
	if strings.ContainsAny(s, "eE") {
		return Decimal{}, ErrScientificNotation
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return d, nil
}

// Min returns the smaller of a and b, used by the matching loop to size
// a fill as the lesser of the taker's and the resting order's remaining
// quantity.
func Min(a, b Decimal) Decimal {
	if a.LessThanOrEqual(b) {
		return a
	}
	return b
}

// ParsePositiveDecimal parses s and additionally requires it to be > 0.
func ParsePositiveDecimal(s string) (Decimal, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return Decimal{}, err
	}
	if !d.IsPositive() {
		return Decimal{}, ErrNonPositiveDecimal
	}
	return d, nil
}
