package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerbook/internal/transaction"
)

type transactionResponse struct {
	ID          uuid.UUID          `json:"id"`
	AccountID   uuid.UUID          `json:"account_id"`
	Amount      int64              `json:"amount"`
	Type        transaction.Type   `json:"type"`
	Status      transaction.Status `json:"status"`
	Description string             `json:"description"`
	Merchant    string             `json:"merchant,omitempty"`
	Date        string             `json:"date"`
	SourceRow   int                `json:"source_row"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   *time.Time         `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		AccountID:   tx.AccountID,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Status:      tx.Status,
		Description: tx.Description,
		Merchant:    tx.Merchant,
		Date:        tx.Date.Format(time.DateOnly),
		SourceRow:   tx.SourceRow,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
