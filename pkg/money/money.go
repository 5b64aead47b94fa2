// Package money defines the fixed-precision decimal type used for every
// cash, price, and fee value in the trading engine. Using decimal.Decimal
// instead of float64 keeps settlement arithmetic exact and reproducible —
// the engine's ledger invariants are checked with equality, not tolerance.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money wraps decimal.Decimal. All arithmetic is exact; rounding only
// happens when a value is formatted for display (String).
type Money struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{}

// New builds a Money from a float64. Only use this at system boundaries
// (config defaults, test fixtures) — internal arithmetic should flow
// through Add/Sub/Mul/Div so no binary-float error is introduced.
func New(f float64) Money {
	return Money{d: decimal.NewFromFloat(f)}
}

// NewFromInt builds a Money from an integer amount (e.g. a share count
// used as a scalar multiplier).
func NewFromInt(i int64) Money {
	return Money{d: decimal.NewFromInt(i)}
}

// Parse parses a decimal string such as "10.00".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{d: d}, nil
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Mul(o Money) Money { return Money{d: m.d.Mul(o.d)} }

// MulInt multiplies by an integer quantity without any decimal rounding.
func (m Money) MulInt(q int) Money { return Money{d: m.d.Mul(decimal.NewFromInt(int64(q)))} }

// Div divides by another Money value, rounding to 8 fractional digits to
// avoid unbounded-precision results for non-terminating quotients.
func (m Money) Div(o Money) Money { return Money{d: m.d.DivRound(o.d, 8)} }

func (m Money) Neg() Money { return Money{d: m.d.Neg()} }

// Cmp returns -1, 0, or 1 as m is less than, equal to, or greater than o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) GreaterThan(o Money) bool      { return m.d.GreaterThan(o.d) }
func (m Money) GreaterOrEqual(o Money) bool   { return m.d.GreaterThanOrEqual(o.d) }
func (m Money) LessThan(o Money) bool         { return m.d.LessThan(o.d) }
func (m Money) LessOrEqual(o Money) bool      { return m.d.LessThanOrEqual(o.d) }
func (m Money) IsZero() bool                  { return m.d.IsZero() }
func (m Money) IsPositive() bool              { return m.d.IsPositive() }
func (m Money) IsNegative() bool              { return m.d.IsNegative() }
func (m Money) Equal(o Money) bool            { return m.d.Equal(o.d) }

// Max returns the greater of m and o, matching FeeSchedule's commission-floor shape.
func Max(a, b Money) Money {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Float64 exposes the underlying value for callers that need to interoperate
// with float-based APIs (e.g. JSON fields on external dashboards). Internal
// ledger logic must never round-trip through this.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// Round2 returns m rounded to 2 fractional digits, for display only.
func (m Money) Round2() Money { return Money{d: m.d.Round(2)} }

func (m Money) String() string { return m.d.StringFixed(2) }

// MarshalJSON serializes as a decimal string so precision survives the
// snapshot round-trip and API responses.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.d.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("unmarshal money %q: %w", s, err)
	}
	m.d = d
	return nil
}

// GobEncode/GobDecode let Money round-trip through the gob-encoded state
// snapshot (internal/persist) without losing precision.
func (m Money) GobEncode() ([]byte, error) {
	return []byte(m.d.String()), nil
}

func (m *Money) GobDecode(b []byte) error {
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("gob decode money %q: %w", string(b), err)
	}
	m.d = d
	return nil
}
