package statement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPosted  Status = "posted"
)

var statusVocabulary = map[string]Status{
	"posted":        StatusPosted,
	"cleared":       StatusPosted,
	"complete":      StatusPosted,
	"completed":     StatusPosted,
	"settled":       StatusPosted,
	"pending":       StatusPending,
	"processing":    StatusPending,
	"hold":          StatusPending,
	"authorization": StatusPending,
	"authorized":    StatusPending,
}

// NormalizeStatus maps a bank's status wording to a Status. Unknown wording
// yields the empty Status.
func NormalizeStatus(raw string) Status {
	return statusVocabulary[strings.ToLower(strings.TrimSpace(raw))]
}

// Candidate is a normalized statement row that has not been stored yet.
type Candidate struct {
	Date        string          `json:"date"` // YYYY-MM-DD
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // never negative
	Type        Type            `json:"type"`
	Merchant    string          `json:"merchant,omitempty"`
	Status      Status          `json:"status,omitempty"`
	SourceRow   int             `json:"source_row"`
}

// Fingerprint returns the candidate's dedup hash.
func (c Candidate) Fingerprint() string {
	return Fingerprint(c.Date, c.Amount, c.Description)
}

// RowError describes a row that could not be mapped. It never aborts a batch.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
	Raw     string `json:"raw,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Column, e.Message)
	}

	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// MapResult is the outcome of mapping a batch of rows.
type MapResult struct {
	Transactions []Candidate
	Errors       []RowError
	Dropped      int // rows discarded for amounts that round to zero cents
}

// Mapper applies a ColumnMapping to parsed rows.
type Mapper struct {
	// KeepZeroAmounts turns zero-amount rows into income candidates instead of
	// dropping them.
	KeepZeroAmounts bool
}

// MapRows maps rows with the default Mapper.
func MapRows(rows []Row, m ColumnMapping) MapResult {
	return Mapper{}.Map(rows, m)
}

// Map turns every row into either a Candidate or a RowError. When the mapping
// has no date format, one is fitted to the date column of all rows; rows whose
// date does not fit it become row errors.
func (mp Mapper) Map(rows []Row, m ColumnMapping) MapResult {
	if m.SkipHeaderRows > 0 {
		rows = rows[min(m.SkipHeaderRows, len(rows)):]
	}

	format := m.DateFormat
	if format == "" {
		format = detectRowsDateFormat(rows, m.DateColumn)
	}

	opts := m.AmountOptions()

	var res MapResult

	for _, row := range rows {
		c, rowErr := mapRow(row, m, format, opts)
		if rowErr != nil {
			res.Errors = append(res.Errors, *rowErr)
			continue
		}

		if isZeroCents(c.Amount) && !mp.KeepZeroAmounts {
			res.Dropped++
			continue
		}

		res.Transactions = append(res.Transactions, c)
	}

	return res
}

// isZeroCents reports whether d is stored as zero once rounded to cents.
func isZeroCents(d decimal.Decimal) bool {
	return d.Round(2).IsZero()
}

func detectRowsDateFormat(rows []Row, col string) DateFormat {
	samples := make([]string, 0, len(rows))

	for _, r := range rows {
		if v, ok := r.Get(col); ok {
			samples = append(samples, v)
		}
	}

	f, _ := fitDateFormat(samples)

	return f
}

func mapRow(row Row, m ColumnMapping, format DateFormat, opts AmountOptions) (Candidate, *RowError) {
	rawDate, rowErr := column(row, m.DateColumn, "date")
	if rowErr != nil {
		return Candidate{}, rowErr
	}

	date, ok := ParseDate(rawDate, format)
	if !ok {
		return Candidate{}, &RowError{Row: row.Line, Column: m.DateColumn, Message: "unrecognized date", Raw: rawDate}
	}

	var (
		amount decimal.Decimal
		txType Type
		amtErr *RowError
	)

	switch m.AmountMode {
	case AmountSingle:
		amount, txType, amtErr = singleAmount(row, m.AmountColumn, opts)
	case AmountSplit:
		amount, txType, amtErr = splitAmount(row, m.DebitColumn, m.CreditColumn, opts)
	default:
		amtErr = &RowError{Row: row.Line, Message: fmt.Sprintf("unknown amount mode %q", m.AmountMode)}
	}

	if amtErr != nil {
		return Candidate{}, amtErr
	}

	merchant := collapseSpace(optional(row, m.MerchantColumn))

	description := collapseSpace(optional(row, m.DescriptionColumn))
	if description == "" {
		description = merchant
	}

	if description == "" {
		description = "Transaction on " + date
	}

	return Candidate{
		Date:        date,
		Description: description,
		Amount:      amount,
		Type:        txType,
		Merchant:    merchant,
		Status:      NormalizeStatus(optional(row, m.StatusColumn)),
		SourceRow:   row.Line,
	}, nil
}

func singleAmount(row Row, col string, opts AmountOptions) (decimal.Decimal, Type, *RowError) {
	raw, rowErr := column(row, col, "amount")
	if rowErr != nil {
		return decimal.Zero, "", rowErr
	}

	v, err := ParseAmount(raw, opts)
	if err != nil {
		return decimal.Zero, "", &RowError{Row: row.Line, Column: col, Message: err.Error(), Raw: raw}
	}

	if v.IsNegative() {
		return v.Abs(), TypeExpense, nil
	}

	return v, TypeIncome, nil
}

func splitAmount(row Row, debitCol, creditCol string, opts AmountOptions) (decimal.Decimal, Type, *RowError) {
	rawDebit, rowErr := column(row, debitCol, "debit")
	if rowErr != nil {
		return decimal.Zero, "", rowErr
	}

	rawCredit, rowErr := column(row, creditCol, "credit")
	if rowErr != nil {
		return decimal.Zero, "", rowErr
	}

	if debit, err := ParseAmount(rawDebit, opts); err == nil && !debit.IsZero() {
		return debit.Abs(), TypeExpense, nil
	}

	if credit, err := ParseAmount(rawCredit, opts); err == nil && !credit.IsZero() {
		return credit.Abs(), TypeIncome, nil
	}

	return decimal.Zero, "", &RowError{
		Row:     row.Line,
		Column:  debitCol,
		Message: "no debit or credit amount",
		Raw:     rawDebit + "|" + rawCredit,
	}
}

// column reads a required column. An unmapped or absent column is reported
// as a row error.
func column(row Row, col, field string) (string, *RowError) {
	if col == "" {
		return "", &RowError{Row: row.Line, Column: field, Message: "no column mapped"}
	}

	v, ok := row.Get(col)
	if !ok {
		return "", &RowError{Row: row.Line, Column: col, Message: "column not found in statement"}
	}

	return v, nil
}

func optional(row Row, col string) string {
	if col == "" {
		return ""
	}

	v, _ := row.Get(col)

	return v
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
