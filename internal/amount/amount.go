// Package amount normalizes free-text monetary strings from utility bills
// into canonical decimal values.
//
// Romanian bills render the same amount in wildly different shapes:
// "123.45", "123,45", "1.234,56" or a bare "12345". Rather than guessing
// which separator is the decimal mark, parsing is purely positional: every
// separator is discarded and the last two digits are always read as bani
// (minor units). This trades locale awareness for total predictability,
// which is what the downstream matching logic needs.
package amount

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Parse converts a free-text amount into a decimal value of major currency
// units (lei). It returns false when the input contains no digits at all;
// it never fails in any other way.
//
//	Parse("123.45")   => 123.45
//	Parse("123,45")   => 123.45
//	Parse("1.234,56") => 1234.56
//	Parse("12345")    => 123.45
//	Parse("abc")      => _, false
func Parse(text string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == ',' || r == '.':
			return -1
		case unicode.IsSpace(r):
			return -1
		case r >= '0' && r <= '9':
			return r
		default:
			// Any other character is noise (currency symbols, OCR junk);
			// drop it and keep the digit positions intact.
			return -1
		}
	}, text)

	if cleaned == "" {
		return decimal.Decimal{}, false
	}

	minor, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}

	// The digit string counts bani; shift two places for lei.
	return minor.Shift(-2), true
}

// ParseFloat is a float64 convenience over Parse for callers that do not
// carry decimals through their API.
func ParseFloat(text string) (float64, bool) {
	d, ok := Parse(text)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}
