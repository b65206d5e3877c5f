// Package core holds the ForeFunds domain types and their validation.
//
// Amounts are kept as integer paise. Conversions from user or model input go
// through shopspring/decimal so that 0.1 + 0.2 style drift never reaches the
// store.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// maxRupees bounds accepted amounts so Cents never overflows.
var maxRupees = decimal.NewFromInt(math.MaxInt64 / 100)

// ParseAmount converts a user supplied rupee amount to Money.
//
// Indian digit grouping (1,23,456.50), a leading ₹ or "Rs" and surrounding
// spaces are accepted. The value is rounded half away from zero to paise and
// must be strictly positive.
//
// Examples:
//
//	ParseAmount("12.34")       -> 1234
//	ParseAmount("₹1,23,456.5") -> 12345650
//	ParseAmount("12.345")      -> 1235
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	if len(s) >= 2 && strings.EqualFold(s[:2], "rs") {
		s = strings.TrimPrefix(strings.TrimSpace(s[2:]), ".")
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d to paise. Zero, negative or out of range values
// are rejected.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if !d.IsPositive() || d.GreaterThan(maxRupees) {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Round(2).Shift(2).IntPart()
	if cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents}, nil
}

// MoneyFromFloat converts a JSON number (as produced by clients and language
// models) to Money.
func MoneyFromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(decimal.NewFromFloat(f))
}

// Rupees returns the value as float64 for JSON responses.
// Use Cents for arithmetic.
func (m Money) Rupees() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// Decimal returns the amount in rupees.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) String() string {
	return FormatINR(m.Cents)
}

// FormatINR renders paise the way en-IN locales do: ₹1,23,456.78.
func FormatINR(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	rupees := cents / 100
	paise := cents % 100

	digits := decimal.NewFromInt(rupees).String()
	var b strings.Builder
	b.WriteString(sign)
	b.WriteString("₹")
	b.WriteString(groupIndian(digits))
	b.WriteByte('.')
	if paise < 10 {
		b.WriteByte('0')
	}
	b.WriteString(decimal.NewFromInt(paise).String())
	return b.String()
}

// groupIndian inserts separators after the last three digits and then every
// two digits.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
