package statement

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAmount   = errors.New("empty amount")
	ErrInvalidAmount = errors.New("invalid amount")
)

// AmountOptions controls how ParseAmount reads a locale-formatted number.
type AmountOptions struct {
	NegativeInParentheses bool
	ThousandSeparator     Separator
	DecimalSeparator      Separator
}

var (
	currencySymbols = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", "₹", "")
	digitGrouping   = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "'", "")
)

// ParseAmount parses a bank-formatted amount such as "-1.234,56", "(42.50)" or
// "$1,000" into an exact signed decimal. Separators set to auto are inferred
// from the value itself.
func ParseAmount(value string, opts AmountOptions) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	negative := false

	if opts.NegativeInParentheses && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.TrimSpace(currencySymbols.Replace(s))

	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		negative = true
		s = s[:len(s)-1]
	}

	s = digitGrouping.Replace(s)

	if s == "" || strings.ContainsAny(s, "+-") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	thousands, dec := resolveSeparators(s, opts)

	if thousands != "" {
		s = strings.ReplaceAll(s, thousands, "")
	}

	if dec != "." {
		s = strings.ReplaceAll(s, dec, ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	if negative {
		d = d.Neg()
	}

	return d, nil
}

// resolveSeparators returns the thousands separator ("" for none) and the
// decimal separator to apply to s. Both are inferred from s unless both are
// set explicitly.
func resolveSeparators(s string, opts AmountOptions) (string, string) {
	thousands, dec := opts.ThousandSeparator, opts.DecimalSeparator

	if thousands.isAuto() || dec.isAuto() {
		return inferSeparators(s)
	}

	return groupingString(thousands), string(dec)
}

// inferSeparators guesses the separators from the positions of commas and
// periods in a cleaned amount.
func inferSeparators(s string) (string, string) {
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots == 0 && commas == 0:
		return "", "."
	case dots > 0 && commas > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			return ".", ","
		}

		return ",", "."
	case dots > 1:
		return ".", ","
	case commas > 1:
		return ",", "."
	case dots == 1:
		return "", "."
	}

	// A single comma is a decimal comma only when exactly two digits follow.
	if tail := s[strings.Index(s, ",")+1:]; len(tail) == 2 && isDigits(tail) {
		return "", ","
	}

	return ",", "."
}

func groupingString(s Separator) string {
	if s == SeparatorNone {
		return ""
	}

	return string(s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return s != ""
}
