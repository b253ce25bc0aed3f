// Package core provides money parsing and display utilities.
//
// Amounts travel as float64 like the server stores them; rounding to the
// currency's minor unit happens only when a value is displayed.
package core

import (
	"math"
	"math/big"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no display currency is configured.
const DefaultCurrency = money.INR

// ParseAmount converts user input into an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Negative
// and zero values are rejected, the server would refuse them anyway.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("-3")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// Round2 rounds v to two decimals the way JavaScript's toFixed(2) does: the
// exact binary value is rounded, so 2.675 (stored as 2.67499...) gives 2.67.
func Round2(v float64) float64 {
	return fixed(v, 2).InexactFloat64()
}

// fixed rounds the exact decimal expansion of v half away from zero to
// places digits. Non-finite values are returned as zero.
func fixed(v float64, places int32) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	// A float64 has at most 1074 fractional binary digits, so this is exact.
	exact, err := decimal.NewFromString(new(big.Float).SetFloat64(v).Text('f', 1074))
	if err != nil {
		return decimal.NewFromFloat(v).Round(places)
	}
	return exact.Round(places)
}

// FormatAmount renders v in the given ISO currency, e.g. "₹1,234.50".
// Unknown codes fall back to DefaultCurrency.
func FormatAmount(v float64, code string) string {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	minor := fixed(v, int32(cur.Fraction)).Shift(int32(cur.Fraction)).IntPart()
	return money.New(minor, cur.Code).Display()
}

// KnownCurrency reports whether code is an ISO currency go-money can display.
func KnownCurrency(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}
