// Package statement turns free-form bank statement exports into normalized
// transaction candidates. It detects the CSV dialect, proposes a column
// mapping, parses dates and amounts, and filters out rows that were already
// imported. Nothing in this package performs I/O.
package statement

import (
	"errors"
	"fmt"
)

// AmountMode determines how amounts are extracted from a row.
type AmountMode string

const (
	// AmountSingle means one signed column (e.g. "Amount" with value "-10.00").
	AmountSingle AmountMode = "single"
	// AmountSplit means separate debit and credit columns.
	AmountSplit AmountMode = "split"
)

// Separator is a thousands or decimal separator choice.
type Separator string

const (
	SeparatorAuto       Separator = "auto"
	SeparatorNone       Separator = "none"
	SeparatorComma      Separator = ","
	SeparatorPeriod     Separator = "."
	SeparatorSpace      Separator = " "
	SeparatorApostrophe Separator = "'"
)

// ColumnMapping describes one account's CSV dialect: which header holds which
// field and how dates and amounts are written.
type ColumnMapping struct {
	DateColumn        string `json:"date_column"`
	DescriptionColumn string `json:"description_column,omitempty"`
	MerchantColumn    string `json:"merchant_column,omitempty"`
	StatusColumn      string `json:"status_column,omitempty"`

	AmountMode   AmountMode `json:"amount_mode"`
	AmountColumn string     `json:"amount_column,omitempty"` // used when AmountMode == AmountSingle
	DebitColumn  string     `json:"debit_column,omitempty"`  // used when AmountMode == AmountSplit
	CreditColumn string     `json:"credit_column,omitempty"` // used when AmountMode == AmountSplit

	DateFormat            DateFormat `json:"date_format,omitempty"`
	NegativeInParentheses bool       `json:"negative_in_parentheses"`
	ThousandSeparator     Separator  `json:"thousand_separator,omitempty"`
	DecimalSeparator      Separator  `json:"decimal_separator,omitempty"`
	SkipHeaderRows        int        `json:"skip_header_rows,omitempty"`
}

var ErrInvalidMapping = errors.New("invalid column mapping")

// Check validates the enumerated fields of the mapping. Column names are not
// checked against any headers here: a column missing from a file is reported
// per row by the mapper.
func (m ColumnMapping) Check() error {
	switch m.AmountMode {
	case AmountSingle, AmountSplit:
	default:
		return fmt.Errorf("%w: unknown amount mode %q", ErrInvalidMapping, m.AmountMode)
	}

	if m.DateFormat != "" {
		if _, ok := lookupDateFormat(m.DateFormat); !ok {
			return fmt.Errorf("%w: unknown date format %q", ErrInvalidMapping, m.DateFormat)
		}
	}

	for _, sep := range []Separator{m.ThousandSeparator, m.DecimalSeparator} {
		if !sep.valid() {
			return fmt.Errorf("%w: unknown separator %q", ErrInvalidMapping, sep)
		}
	}

	switch m.DecimalSeparator {
	case "", SeparatorAuto, SeparatorComma, SeparatorPeriod:
	default:
		return fmt.Errorf("%w: decimal separator must be %q or %q", ErrInvalidMapping, SeparatorComma, SeparatorPeriod)
	}

	if !m.DecimalSeparator.isAuto() && m.ThousandSeparator == m.DecimalSeparator {
		return fmt.Errorf("%w: thousand and decimal separators are both %q", ErrInvalidMapping, m.DecimalSeparator)
	}

	if m.SkipHeaderRows < 0 {
		return fmt.Errorf("%w: skip_header_rows must not be negative", ErrInvalidMapping)
	}

	return nil
}

// AmountOptions extracts the amount parsing options from the mapping.
func (m ColumnMapping) AmountOptions() AmountOptions {
	return AmountOptions{
		NegativeInParentheses: m.NegativeInParentheses,
		ThousandSeparator:     m.ThousandSeparator,
		DecimalSeparator:      m.DecimalSeparator,
	}
}

// amountCols returns the column names this mapping reads amounts from.
func (m ColumnMapping) amountCols() []string {
	switch m.AmountMode {
	case AmountSingle:
		return []string{m.AmountColumn}
	case AmountSplit:
		return []string{m.DebitColumn, m.CreditColumn}
	}

	return nil
}

func (s Separator) valid() bool {
	switch s {
	case "", SeparatorAuto, SeparatorNone, SeparatorComma, SeparatorPeriod, SeparatorSpace, SeparatorApostrophe:
		return true
	}

	return false
}

func (s Separator) isAuto() bool {
	return s == "" || s == SeparatorAuto
}
