package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
)

var ErrNotFound = errors.New("transaction not found")

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Status tells whether the bank has settled the transaction.
type Status string

const (
	StatusPending Status = "pending"
	StatusPosted  Status = "posted"
)

// Transaction is a stored statement line belonging to one account.
type Transaction struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Amount      int64 // Amount in cents, never negative
	Type        Type
	Status      Status
	Description string
	Merchant    string
	Date        time.Time
	Fingerprint string
	SourceRow   int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}

var hundred = decimal.NewFromInt(100)

// FromCandidate converts an imported statement row into a transaction of the
// given account. A candidate without a recognized status is posted.
func FromCandidate(accountID uuid.UUID, c statement.Candidate) (*Transaction, error) {
	date, err := time.Parse(time.DateOnly, c.Date)
	if err != nil {
		return nil, fmt.Errorf("row %d: invalid date %q: %w", c.SourceRow, c.Date, err)
	}

	status := Status(c.Status)
	if status == "" {
		status = StatusPosted
	}

	return &Transaction{
		AccountID:   accountID,
		Amount:      c.Amount.Abs().Mul(hundred).Round(0).IntPart(),
		Type:        Type(c.Type),
		Status:      status,
		Description: c.Description,
		Merchant:    c.Merchant,
		Date:        date,
		Fingerprint: c.Fingerprint(),
		SourceRow:   c.SourceRow,
	}, nil
}
