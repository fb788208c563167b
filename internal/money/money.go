// Package money holds the fixed-precision helpers shared by the invoice totals
// engine and the cash-drawer reconciliation. Amounts are decimal.Decimal end to
// end; floats only appear at the JSON boundary of third-party APIs.
package money

import (
	"github.com/shopspring/decimal"
)

// Money is a currency amount with exact decimal semantics.
type Money = decimal.Decimal

// DefaultPrecision is the number of fractional digits shown to users.
const DefaultPrecision int32 = 2

var hundred = decimal.NewFromInt(100)

// Policy groups the rounding knobs configured per deployment.
type Policy struct {
	// Precision is the display precision used for rounded totals.
	Precision int32
	// Epsilon bounds the fractional remainder that is silently absorbed into
	// the round-off account. The bound is inclusive.
	Epsilon Money
	// Tolerance widens Epsilon so remainders computed from float inputs still
	// land inside the bound.
	Tolerance Money
}

// DefaultPolicy absorbs sub-cent remainders on two-decimal currencies.
func DefaultPolicy() Policy {
	return Policy{
		Precision: DefaultPrecision,
		Epsilon:   decimal.RequireFromString("0.01"),
		Tolerance: decimal.RequireFromString("0.000001"),
	}
}

// Normalize fills zero-valued fields with the defaults.
func (p Policy) Normalize() Policy {
	d := DefaultPolicy()
	if p.Precision <= 0 {
		p.Precision = d.Precision
	}
	if !p.Epsilon.IsPositive() {
		p.Epsilon = d.Epsilon
	}
	if !p.Tolerance.IsPositive() {
		p.Tolerance = d.Tolerance
	}
	return p
}

// Round rounds half away from zero to the given number of places.
func Round(m Money, places int32) Money {
	return m.Round(places)
}

// Parse reads a decimal string; empty input is zero.
func Parse(s string) (Money, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// Sum adds all values.
func Sum(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Percent returns m * rate / 100.
func Percent(m Money, rate Money) Money {
	return m.Mul(rate).Div(hundred)
}

// Fraction returns the fractional remainder of |m|, always in [0, 1).
func Fraction(m Money) Money {
	abs := m.Abs()
	return abs.Sub(abs.Floor())
}

// WholeTowardZero drops the fractional part keeping the sign.
func WholeTowardZero(m Money) Money {
	return m.Truncate(0)
}

// Absorbable reports whether the fractional remainder of m is small enough to
// be written off: non-zero and at most epsilon plus tolerance. Zero is never
// absorbable.
func (p Policy) Absorbable(m Money) bool {
	if m.IsZero() {
		return false
	}
	frac := Fraction(m)
	return !frac.IsZero() && frac.LessThanOrEqual(p.Epsilon.Add(p.Tolerance))
}

// VariancePercent returns variance / base * 100 rounded to two places, or zero
// when the base is zero.
func VariancePercent(variance, base Money) Money {
	if base.IsZero() {
		return decimal.Zero
	}
	return variance.Div(base).Mul(hundred).Round(2)
}
