/*
Package ledger provides the core balance-consistency engine.

PURPOSE:
  This package contains the types and algorithms that keep every account's
  balance consistent with the full history of financial events recorded
  against it. Four event kinds exist — transactions, transfers, credits,
  savings goals — and each one knows the exact signed deltas it applied on
  creation, so deleting an event can reverse its effect bit-for-bit.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: An exact decimal monetary quantity (never float64)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift
  2. Reversibility: Every event's creation effect has an exact inverse
  3. Single writer: Balances are mutated only by the propagation engine

SEE ALSO:
  - records.go: Event records and their delta algebra
  - engine.go: Balance propagation (the single balance writer)
  - store.go: Persistence interface
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Exact decimal monetary amount
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int) Money {
	return Money{Value: decimal.NewFromInt(int64(value))}
}

func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

// MustMoney parses s and returns zero on failure. Intended for literals.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}
	}
	return Money{Value: d}
}

func Zero() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money         { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money         { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Neg() Money                { return Money{Value: m.Value.Neg()} }
func (m Money) Abs() Money                { return Money{Value: m.Value.Abs()} }
func (m Money) IsZero() bool              { return m.Value.IsZero() }
func (m Money) IsNegative() bool          { return m.Value.IsNegative() }
func (m Money) IsPositive() bool          { return m.Value.IsPositive() }
func (m Money) Equal(o Money) bool        { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool  { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool     { return m.Value.LessThan(o.Value) }
func (m Money) String() string            { return m.Value.String() }

// DivCeil returns ceil(m / o) as an integer. Used for installment schedules
// (how many monthly payments cover a principal).
func (m Money) DivCeil(o Money) int {
	return int(m.Value.Div(o.Value).Ceil().IntPart())
}

// MarshalJSON emits the exact decimal string, quoted.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.Value.MarshalJSON()
}

// UnmarshalJSON accepts both quoted decimal strings and bare JSON numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Value.UnmarshalJSON(data)
}
