package model

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount with a fixed two-digit scale on the wire.
// It serializes as a quoted string ("2769.80") so trailing zeros survive a
// round trip.
type Money struct {
	d decimal.Decimal
}

// NewMoney builds a Money from an exact decimal.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d}
}

// MoneyFromString parses a monetary string. Currency symbols, commas and
// surrounding whitespace are stripped before parsing.
func MoneyFromString(s string) (Money, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return Money{}, eris.New("model: empty monetary value")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Money{}, eris.Wrapf(err, "model: parse monetary value %q", s)
	}
	return Money{d: d}, nil
}

// MustMoney parses a monetary string and panics on failure. Test helper.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the underlying exact decimal.
func (m Money) Decimal() decimal.Decimal { return m.d }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.d.IsZero() }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.d.IsPositive() }

// Add returns m + o.
func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

// Sub returns m - o.
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

// Abs returns |m|.
func (m Money) Abs() Money { return Money{d: m.d.Abs()} }

// Cmp compares m and o: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

// Float64 returns an approximate float value, for range checks and display
// only. Arithmetic consistency checks must use exact decimals.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// String renders the amount at fixed two-digit scale.
func (m Money) String() string { return m.d.StringFixed(2) }

// MarshalJSON renders the amount as a quoted fixed-scale string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.d.StringFixed(2) + `"`), nil
}

// UnmarshalJSON accepts both quoted decimal strings and bare JSON numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*m = Money{}
		return nil
	}
	parsed, err := MoneyFromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
