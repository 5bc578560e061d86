package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerbook/internal/account"
	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
)

type accountResponse struct {
	ID         uuid.UUID                `json:"id"`
	Name       string                   `json:"name"`
	CSVMapping *statement.ColumnMapping `json:"csv_mapping,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  *time.Time               `json:"updated_at,omitempty"`
}

func toResponse(a *account.Account) accountResponse {
	return accountResponse{
		ID:         a.ID,
		Name:       a.Name,
		CSVMapping: a.CSVMapping,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
