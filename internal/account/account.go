// Package account stores the bank accounts statements are imported into,
// together with each account's confirmed column mapping.
package account

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
)

var (
	ErrNotFound    = errors.New("account not found")
	ErrInvalidName = errors.New("account name is required")
)

type Account struct {
	ID   uuid.UUID
	Name string
	// CSVMapping is nil until the user confirms a mapping for the account.
	CSVMapping *statement.ColumnMapping
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
