package tradebook

import (
	"encoding/json"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// cents is the precision of every monetary output.
const cents = 2

// pricePlaces is the precision of prices and average costs in outputs.
const pricePlaces = 4

// Money represents a monetary value, or a price per share.
//
// There is no currency conversion: every amount of a session is in the same
// currency, which is only needed for display.
type Money struct {
	value decimal.Decimal
}

// M creates Money.
func M[T float64 | int | int64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value)} }
func (m Money) Decimal() decimal.Decimal        { return m.value }

// Scale multiplies m by a plain ratio.
func (m Money) Scale(r decimal.Decimal) Money { return Money{value: m.value.Mul(r)} }

// Div returns the price per unit, or zero when q is zero.
func (m Money) Div(q Quantity) Money {
	if q.value.IsZero() {
		return Money{}
	}
	return Money{value: m.value.Div(q.value)}
}

// Percent returns m/n as a percentage, or zero when n is not positive.
func (m Money) Percent(n Money) Percent {
	if !n.value.IsPositive() {
		return 0
	}
	return Percent(m.value.Div(n.value).Mul(decimal.NewFromInt(100)).InexactFloat64())
}

// Max returns the greatest of m and n.
func (m Money) Max(n Money) Money {
	if n.value.GreaterThan(m.value) {
		return n
	}
	return m
}

// Cents returns m rounded to 2 decimal places.
func (m Money) Cents() Money { return Money{value: m.value.Round(cents)} }

// RoundPrice returns m rounded to the price precision (4 decimal places).
func (m Money) RoundPrice() Money { return Money{value: m.value.Round(pricePlaces)} }

// String returns the amount with 2 decimal places.
func (m Money) String() string { return m.value.StringFixed(cents) }

// SignedString returns the amount with a sign, "-" for zero.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// Format returns the amount formatted in the given currency (e.g. "¥1,234.50").
// Unknown currencies fall back to String.
func (m Money) Format(currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return m.String()
	}
	minor := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// MarshalJSON writes the amount as an exact json number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return err
	}
	m.value = v
	return nil
}

// MarshalCSV writes the amount as a plain number.
func (m Money) MarshalCSV() (string, error) { return m.value.String(), nil }
