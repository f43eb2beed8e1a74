// Package core provides money parsing and handling utilities.
//
// Amounts are held in paise (1/100 rupee) so that sums are exact. Rupee
// values only appear at the edges: parsing user input, JSON, and display.
package core

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount of Indian rupees expressed in paise.
type Money struct {
	Paise int64
}

var maxPaise = decimal.NewFromInt(math.MaxInt64)

// Amount text longer than maxAmountText, or with an exponent outside
// ±maxAmountExponent, is rejected before any rescaling. Rescaling a value
// like 1e9999999 would build a ten-million-digit integer.
const (
	maxAmountText     = 40
	maxAmountExponent = 20
)

// decimalAmount parses raw into a decimal bounded in size and scale.
func decimalAmount(raw string) (decimal.Decimal, error) {
	if len(raw) > maxAmountText {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d, nil
}

// Rupees builds Money from a whole rupee amount.
func Rupees(r int64) Money {
	return Money{Paise: r * 100}
}

// ParseAmount converts user-entered rupee text to Money.
//
// A leading "₹", "Rs" or "INR" marker is ignored, as are commas used as
// digit-group separators ("1,23,456.50"). Fractions beyond two digits are
// rounded half-up. Signs, exponents, non-numeric input and zero are rejected,
// so malformed text never turns into a silent zero.
//
// Examples:
//
//	ParseAmount("12.34")      -> 1234 paise
//	ParseAmount("₹1,250")     -> 125000 paise
//	ParseAmount("12.345")     -> 1235 paise (rounds up)
//	ParseAmount("abc")        -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = normalizeAmount(s)
	if s == "" || strings.Count(s, ".") > 1 || s == "." {
		return Money{}, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return Money{}, ErrInvalidAmount
		}
	}
	d, err := decimalAmount(s)
	if err != nil {
		return Money{}, err
	}
	paise := d.Shift(2).Round(0)
	if paise.GreaterThan(maxPaise) || !paise.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	return Money{Paise: paise.IntPart()}, nil
}

func normalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"₹", "INR", "Rs.", "Rs"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}
	return strings.ReplaceAll(s, ",", "")
}

// Validate reports whether m is usable as an expense amount.
func (m Money) Validate() error {
	if m.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the rupee value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Paise, -2)
}

// Float returns the rupee value as a float64 for ratios and display only.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

func (m Money) Add(o Money) Money { return Money{Paise: m.Paise + o.Paise} }
func (m Money) Sub(o Money) Money { return Money{Paise: m.Paise - o.Paise} }

// Mul multiplies by a whole factor.
func (m Money) Mul(n int64) Money { return Money{Paise: m.Paise * n} }

// Scale multiplies by a fractional factor, rounding to the nearest paisa.
func (m Money) Scale(f float64) Money {
	return Money{Paise: decimal.NewFromInt(m.Paise).Mul(decimal.NewFromFloat(f)).Round(0).IntPart()}
}

func (m Money) Abs() Money {
	if m.Paise < 0 {
		return Money{Paise: -m.Paise}
	}
	return m
}

func (m Money) IsZero() bool { return m.Paise == 0 }

// String formats m the way Indian locales do, e.g. "₹3,75,000" or
// "₹1,234.50". Paise are shown only when non-zero.
func (m Money) String() string {
	return FormatINR(m)
}

// FormatINR groups the integer part as lakh/crore (3 digits, then pairs).
func FormatINR(m Money) string {
	neg := m.Paise < 0
	abs := m.Abs()
	whole := abs.Paise / 100
	frac := abs.Paise % 100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("₹")
	b.WriteString(groupIndian(digits))
	if frac != 0 {
		fmt.Fprintf(&b, ".%02d", frac)
	}
	return b.String()
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}

// FormatCompact abbreviates large amounts with Indian units: K (thousand),
// L (lakh) and Cr (crore), one decimal place.
func FormatCompact(m Money) string {
	r := m.Decimal()
	switch {
	case r.GreaterThanOrEqual(decimal.NewFromInt(10_000_000)):
		return "₹" + r.Div(decimal.NewFromInt(10_000_000)).StringFixed(1) + " Cr"
	case r.GreaterThanOrEqual(decimal.NewFromInt(100_000)):
		return "₹" + r.Div(decimal.NewFromInt(100_000)).StringFixed(1) + " L"
	case r.GreaterThanOrEqual(decimal.NewFromInt(1_000)):
		return "₹" + r.Div(decimal.NewFromInt(1_000)).StringFixed(1) + " K"
	}
	return FormatINR(m)
}

// FormatPercent renders a percentage with one decimal, e.g. "70.0%".
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(1) + "%"
}

// MarshalJSON encodes m as a rupee number, e.g. 9000 or 1234.5.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a string in any form ParseAmount
// understands. An empty string is zero. Zero and negative numbers are
// decoded as-is; callers validate.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*m = Money{}
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		raw = normalizeAmount(strings.Trim(raw, `"`))
		if raw == "" {
			*m = Money{}
			return nil
		}
	}
	d, err := decimalAmount(raw)
	if err != nil {
		return fmt.Errorf("%w: %.40s", ErrInvalidAmount, string(b))
	}
	paise := d.Shift(2).Round(0)
	if paise.Abs().GreaterThan(maxPaise) {
		return fmt.Errorf("%w: %.40s", ErrInvalidAmount, string(b))
	}
	*m = Money{Paise: paise.IntPart()}
	return nil
}
