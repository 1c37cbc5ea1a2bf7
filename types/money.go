// Package types provides common types used across Loansign.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// divisionScale is the number of decimal places kept when dividing.
// Division always truncates toward zero at this scale, so a computed
// installment times the number of periods can never exceed the amount
// actually owed.
const divisionScale = 16

// Money represents an exact decimal monetary value in the game currency.
// All arithmetic is arbitrary-precision decimal, never binary floating
// point, so repeated interest and installment math cannot drift.
//
// Money values serialize as decimal strings ("39.7995"), never as JSON
// numbers.
type Money struct {
	d decimal.Decimal
}

// Constructors

// NewFromString parses a decimal string ("19.99") into Money.
func NewFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return Money{d: d}, nil
}

// MustParse is like NewFromString but panics on error. Use for constants.
func MustParse(s string) Money {
	m, err := NewFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// NewFromFloat converts a float64 into Money. Only use at system
// boundaries (user input); all internal propagation stays decimal-exact.
func NewFromFloat(f float64) Money {
	return Money{d: decimal.NewFromFloat(f)}
}

// NewFromInt creates a Money value from whole currency units.
func NewFromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

// NewFromDecimal wraps an existing decimal value.
func NewFromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

// Zero returns the zero Money value.
func Zero() Money { return Money{} }

// Arithmetic operations

// Add adds two Money values.
func (m Money) Add(other Money) Money {
	return Money{d: m.d.Add(other.d)}
}

// Subtract subtracts another Money value.
func (m Money) Subtract(other Money) Money {
	return Money{d: m.d.Sub(other.d)}
}

// Multiply multiplies two Money values.
func (m Money) Multiply(other Money) Money {
	return Money{d: m.d.Mul(other.d)}
}

// MultiplyInt multiplies the Money by an integer factor.
func (m Money) MultiplyInt(factor int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(factor))}
}

// Divide divides by another Money value, truncating toward zero at a
// fixed scale. Division never rounds up, so installment totals can never
// exceed what is owed. Panics on division by zero.
func (m Money) Divide(other Money) Money {
	if other.d.IsZero() {
		panic("money: division by zero")
	}
	q, _ := m.d.QuoRem(other.d, divisionScale)
	return Money{d: q}
}

// DivideInt divides by an integer divisor, truncating toward zero.
// Panics on division by zero.
func (m Money) DivideInt(divisor int64) Money {
	return m.Divide(NewFromInt(divisor))
}

// Negate returns the negative of the Money value.
func (m Money) Negate() Money {
	return Money{d: m.d.Neg()}
}

// Abs returns the absolute value.
func (m Money) Abs() Money {
	return Money{d: m.d.Abs()}
}

// Comparison methods

// Cmp compares two Money values: -1 if m < other, 0 if equal, +1 if greater.
func (m Money) Cmp(other Money) int {
	return m.d.Cmp(other.d)
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.d.IsZero() }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.d.IsPositive() }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// Equal returns true if both Money values are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.d.Equal(other.d)
}

// LessThan returns true if this Money is less than other.
func (m Money) LessThan(other Money) bool {
	return m.d.LessThan(other.d)
}

// GreaterThan returns true if this Money is greater than other.
func (m Money) GreaterThan(other Money) bool {
	return m.d.GreaterThan(other.d)
}

// Min returns the smaller of two Money values.
func (m Money) Min(other Money) Money {
	if m.d.LessThan(other.d) {
		return m
	}
	return other
}

// Max returns the larger of two Money values.
func (m Money) Max(other Money) Money {
	if m.d.GreaterThan(other.d) {
		return m
	}
	return other
}

// Formatting methods

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// String returns the exact decimal string representation.
func (m Money) String() string { return m.d.String() }

// StringFixed returns the value rounded (half away from zero) to the
// given number of decimal places. Display only; never feed the result
// back into accounting math.
func (m Money) StringFixed(places int32) string { return m.d.StringFixed(places) }

// MarshalJSON implements json.Marshaler. The value is a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Accepts a decimal string or,
// for tolerance toward hand-edited snapshots, a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		m.d = decimal.Decimal{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: unmarshal %q: %w", string(data), err)
	}
	m.d = d
	return nil
}

// Sum calculates the sum of multiple Money values.
func Sum(values ...Money) Money {
	var result Money
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
