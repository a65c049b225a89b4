package money

import (
	"database/sql/driver"
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MinUnit is the smallest meaningful currency difference (one cent).
// Balances smaller than this are rounding residue, not real money.
var MinUnit = decimal.New(1, -2)

// Money is an exact decimal amount in major currency units.
// It never goes through a binary float, so repeated arithmetic does not
// accumulate rounding error.
type Money struct {
	value decimal.Decimal
}

func New(value decimal.Decimal) Money {
	return Money{value: value}
}

// FromCents builds a Money from a minor-unit count, e.g. 96328 -> 963.28.
func FromCents(cents int64) Money {
	return Money{value: decimal.New(cents, -2)}
}

// FromFloat converts a float amount at the boundary of the system.
// Only use this for values arriving from JSON or user input; everything
// internal stays decimal.
func FromFloat(f float64) Money {
	return Money{value: decimal.NewFromFloat(f)}
}

func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return Money{value: d}, nil
}

func Zero() Money { return Money{} }

func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value)} }
func (m Money) Neg() Money        { return Money{value: m.value.Neg()} }

// Mul scales the amount by an integer quantity.
func (m Money) Mul(qty int64) Money {
	return Money{value: m.value.Mul(decimal.NewFromInt(qty))}
}

// DivInt splits the amount into n equal parts, keeping full precision.
func (m Money) DivInt(n int64) Money {
	return Money{value: m.value.Div(decimal.NewFromInt(n))}
}

// Percent returns rate% of the amount, e.g. Percent(16) on 100.00 is 16.00.
// The result is not rounded; callers decide when to settle on cents.
func (m Money) Percent(rate decimal.Decimal) Money {
	return Money{value: m.value.Mul(rate).Div(decimal.NewFromInt(100))}
}

func (m Money) IsZero() bool     { return m.value.IsZero() }
func (m Money) IsNegative() bool { return m.value.IsNegative() }
func (m Money) IsPositive() bool { return m.value.IsPositive() }

func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) }
func (m Money) LessThan(n Money) bool    { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }

// IsEffectivelyZero reports whether the amount is within MinUnit of zero.
// Every "is this paid off" decision goes through here instead of an exact
// equality check, so sub-cent residue from tax rounding reads as settled.
func (m Money) IsEffectivelyZero() bool {
	return m.value.Abs().LessThan(MinUnit)
}

// Clamp bounds the amount into [low, high] without failing. Used for change
// and outstanding-balance display where a tiny negative residue should show
// as zero.
func (m Money) Clamp(low, high Money) Money {
	if m.value.LessThan(low.value) {
		return low
	}

	if m.value.GreaterThan(high.value) {
		return high
	}

	return m
}

// RoundCents rounds to two decimal places, half away from zero. This is the
// fixed rounding rule for tax amounts.
func (m Money) RoundCents() Money {
	return Money{value: m.value.Round(2)}
}

// Cents returns the amount as a minor-unit count, rounding half away from
// zero if the value carries sub-cent digits.
func (m Money) Cents() int64 {
	return m.value.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (m Money) Decimal() decimal.Decimal { return m.value }

// String renders the bare amount with two decimals, e.g. "963.28".
func (m Money) String() string {
	return m.value.StringFixed(2)
}

// Format renders the amount with the currency's symbol and grouping,
// e.g. Format("EUR") -> "€963.28".
func (m Money) Format(currencyCode string) string {
	cur := gomoney.New(0, currencyCode).Currency()

	return cur.Formatter().Format(m.value.Shift(int32(cur.Fraction)).Round(0).IntPart())
}

func (m Money) MarshalJSON() ([]byte, error)    { return m.value.MarshalJSON() }
func (m *Money) UnmarshalJSON(b []byte) error   { return m.value.UnmarshalJSON(b) }
func (m Money) Value() (driver.Value, error)    { return m.value.Value() }
func (m *Money) Scan(src any) error             { return m.value.Scan(src) }
func (m Money) MarshalText() ([]byte, error)    { return m.value.MarshalText() }
func (m *Money) UnmarshalText(text []byte) error { return m.value.UnmarshalText(text) }
