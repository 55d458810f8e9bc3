// Package types provides common type aliases and utilities.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is a stock amount with full decimal precision.
// Uses decimal.Decimal to avoid floating-point drift across add/remove cycles.
type Quantity = decimal.Decimal

// Bounds on client supplied quantities. Anything outside them is rejected
// before it reaches a ledger, where a tiny exponent would rescale the
// stored value to a huge coefficient.
const (
	MaxQuantityExponent = 18
	MaxQuantityDigits   = 38
)

var (
	// ErrEmptyQuantity is returned when a quantity is parsed from blank text.
	ErrEmptyQuantity = errors.New("empty quantity")

	// ErrQuantityOutOfRange is returned for text with too many digits or too large an exponent.
	ErrQuantityOutOfRange = errors.New("quantity out of range")
)

// NewQuantity creates a Quantity from an integer.
func NewQuantity(v int64) Quantity {
	return decimal.NewFromInt(v)
}

// MustQuantity creates a Quantity from a string, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	return decimal.RequireFromString(s)
}

// ZeroQuantity returns the zero Quantity.
func ZeroQuantity() Quantity {
	return decimal.Zero
}

// ParseQuantity parses user supplied text. Surrounding whitespace is ignored.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyQuantity
	}
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	if exp := q.Exponent(); exp > MaxQuantityExponent || exp < -MaxQuantityExponent {
		return decimal.Zero, fmt.Errorf("parse quantity %q: %w", s, ErrQuantityOutOfRange)
	}
	if q.NumDigits() > MaxQuantityDigits {
		return decimal.Zero, fmt.Errorf("parse quantity %q: %w", s, ErrQuantityOutOfRange)
	}
	return q, nil
}

// ParseQuantityOrDefault behaves like ParseQuantity but returns def for blank text.
func ParseQuantityOrDefault(s string, def Quantity) (Quantity, error) {
	q, err := ParseQuantity(s)
	if errors.Is(err, ErrEmptyQuantity) {
		return def, nil
	}
	return q, err
}

// NumericText carries a numeric field exactly as the client sent it.
// It accepts either a JSON number or a JSON string, so parsing and
// validation happen in the domain layer instead of the JSON decoder.
type NumericText string

// UnmarshalJSON accepts a JSON number, string or null.
func (n *NumericText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericText(s)
		return nil
	}

	// Anything else is kept verbatim; booleans or objects fail later as "invalid value".
	*n = NumericText(data)
	return nil
}

// String returns the raw text.
func (n NumericText) String() string { return string(n) }

// Min returns the smaller of a and b.
func Min(a, b Quantity) Quantity {
	if a.LessThan(b) {
		return a
	}
	return b
}
