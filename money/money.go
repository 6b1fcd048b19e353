/*
Package money provides exact fixed-point monetary amounts.

PURPOSE:
  Every amount in the settlement engine flows through this type. Amounts
  are backed by decimal.Decimal, so there is no binary floating-point
  rounding error anywhere in the pipeline.

KEY RULES:
  1. Persisted and reported amounts carry exactly 2 fraction digits.
  2. Rounding is round-half-up (Round2).
  3. Per-unit amounts are rounded immediately when computed. Totals are
     sums of already-rounded amounts, never a rounded grand total. This
     keeps repeated runs byte-for-byte reproducible.

USAGE:
  rate := money.MustParse("33.335")
  amount := money.FromDecimal(hours.Mul(rate.Decimal())).Round2()

SEE ALSO:
  - settlement/pricing.go: The only producer of time-derived amounts
*/
package money

import (
	"github.com/shopspring/decimal"
)

// Amount is an exact monetary value. The zero value is zero money.
type Amount struct {
	value decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// New creates an Amount from integer units and an exponent,
// e.g. New(1999, -2) == 19.99.
func New(value int64, exp int32) Amount {
	return Amount{value: decimal.New(value, exp)}
}

// FromDecimal wraps a raw decimal as an Amount.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{value: d}
}

// Parse parses a decimal string such as "20.00" or "-3.50".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{value: d}, nil
}

// MustParse parses a decimal string and panics on failure.
// For constants in tests and wiring code only.
func MustParse(s string) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("money: invalid amount " + s)
	}
	return Amount{value: d}
}

func (a Amount) Decimal() decimal.Decimal { return a.value }

func (a Amount) Add(b Amount) Amount          { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount          { return Amount{value: a.value.Sub(b.value)} }
func (a Amount) Mul(b Amount) Amount          { return Amount{value: a.value.Mul(b.value)} }
func (a Amount) Div(b Amount) Amount          { return Amount{value: a.value.Div(b.value)} }
func (a Amount) Neg() Amount                  { return Amount{value: a.value.Neg()} }
func (a Amount) IsZero() bool                 { return a.value.IsZero() }
func (a Amount) IsPositive() bool             { return a.value.IsPositive() }
func (a Amount) IsNegative() bool             { return a.value.IsNegative() }
func (a Amount) Equal(b Amount) bool          { return a.value.Equal(b.value) }
func (a Amount) GreaterThan(b Amount) bool    { return a.value.GreaterThan(b.value) }
func (a Amount) LessThan(b Amount) bool       { return a.value.LessThan(b.value) }

// Round2 rounds to 2 fraction digits, half away from zero.
func (a Amount) Round2() Amount {
	return Amount{value: a.value.Round(2)}
}

// String renders the exact value without padding ("30", "33.335").
func (a Amount) String() string { return a.value.String() }

// StringFixed renders with exactly 2 fraction digits ("30.00").
// This is the wire format: amounts cross the API boundary as strings.
func (a Amount) StringFixed() string { return a.value.StringFixed(2) }
