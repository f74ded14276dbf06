package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value. The canonical representation everywhere
// (display, JSON, XLSX) is the value rounded to two decimal places,
// e.g. "47.00".
type Amount struct {
	dec decimal.Decimal
}

// NewAmount creates an Amount from a float
func NewAmount(f float64) Amount {
	return Amount{dec: decimal.NewFromFloat(f)}
}

// ParseAmount parses a user-entered numeric string. Numeric entry is
// lenient: empty, missing, or unparseable input yields zero, never an error.
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}
	}
	return Amount{dec: d}
}

// Add returns a + b
func (a Amount) Add(b Amount) Amount {
	return Amount{dec: a.dec.Add(b.dec)}
}

// Sub returns a - b
func (a Amount) Sub(b Amount) Amount {
	return Amount{dec: a.dec.Sub(b.dec)}
}

// Mul returns a * b
func (a Amount) Mul(b Amount) Amount {
	return Amount{dec: a.dec.Mul(b.dec)}
}

// Round rounds to two decimal places, half away from zero
func (a Amount) Round() Amount {
	return Amount{dec: a.dec.Round(2)}
}

// Equal reports whether two amounts represent the same value
func (a Amount) Equal(b Amount) bool {
	return a.dec.Equal(b.dec)
}

// IsZero reports whether the amount is zero
func (a Amount) IsZero() bool {
	return a.dec.IsZero()
}

// Float64 returns the amount as a float (for display math only)
func (a Amount) Float64() float64 {
	f, _ := a.dec.Float64()
	return f
}

// String returns the canonical fixed two-decimal representation
func (a Amount) String() string {
	return a.dec.StringFixed(2)
}

// MarshalJSON encodes the amount as its canonical string, e.g. "47.00"
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts either a JSON string or a bare number. Bad input
// decodes to zero, matching lenient numeric entry.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*a = Amount{}
		return nil
	}
	*a = ParseAmount(s)
	return nil
}
