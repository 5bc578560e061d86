package view

import (
	"context"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/ledgerbook/internal/transaction"
)

const dbTimeout = 5 * time.Second

// FormatAmount formats an amount stored as cents into a human-readable string.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100.0)
}

// FormatSigned formats a transaction amount with expenses shown as negative.
func FormatSigned(tx *transaction.Transaction) string {
	if tx.Type == transaction.TypeExpense {
		return "-" + FormatAmount(tx.Amount)
	}

	return FormatAmount(tx.Amount)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
