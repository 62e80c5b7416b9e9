// Package core provides the domain model and display formatting utilities.
//
// This file contains pure, total formatting functions: they never fail and
// fall back to a safe value on bad input.
package core

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var currencyPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatCurrency renders a numeric amount as a Brazilian Real currency
// string with grouped thousands and two decimals, e.g. "R$ 1.234,56".
// Non-finite input is treated as zero.
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return currencyPrinter.Sprintf("R$ %v", number.Decimal(v, number.Scale(2)))
}

// FormatAmount is the decimal.Decimal convenience over FormatCurrency.
func FormatAmount(d decimal.Decimal) string {
	return FormatCurrency(d.InexactFloat64())
}

// ParseAmount coerces a user-typed amount to a decimal. It accepts both
// "12.34" and "12,34"; anything unparseable yields ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Accept a decimal comma as typed in pt-BR forms.
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatDate converts an ISO calendar date ("YYYY-MM-DD") to "DD/MM/YYYY"
// positionally, with no timezone conversion. Other inputs are parsed as a
// generic timestamp and rendered in the same short format; an empty or
// unparseable value yields "".
func FormatDate(value string) string {
	if value == "" {
		return ""
	}
	if isISODate(value) {
		return value[8:10] + "/" + value[5:7] + "/" + value[0:4]
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return ""
}

func isISODate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for _, i := range []int{0, 1, 2, 3, 5, 6, 8, 9} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
