package importcsv

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerbook/internal/encoding"
	"github.com/MrJamesThe3rd/ledgerbook/internal/importer"
	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
	"github.com/MrJamesThe3rd/ledgerbook/internal/transaction"
)

type previewResponse struct {
	Headers         []string                 `json:"headers"`
	SampleRows      [][]string               `json:"sample_rows"`
	DetectedMapping statement.ColumnMapping  `json:"detected_mapping"`
	SavedMapping    *statement.ColumnMapping `json:"saved_mapping,omitempty"`
	Preset          string                   `json:"preset,omitempty"`
	TotalRows       int                      `json:"total_rows"`
	Delimiter       string                   `json:"delimiter,omitempty"`
	Encoding        encoding.Charset         `json:"encoding,omitempty"`
	Format          importer.Format          `json:"format"`
	MalformedLines  int                      `json:"malformed_lines,omitempty"`
}

func toPreviewResponse(p *importer.Preview) previewResponse {
	return previewResponse{
		Headers:         p.Headers,
		SampleRows:      p.SampleRows,
		DetectedMapping: p.DetectedMapping,
		SavedMapping:    p.SavedMapping,
		Preset:          p.Preset,
		TotalRows:       p.TotalRows,
		Delimiter:       p.Delimiter,
		Encoding:        p.Encoding,
		Format:          p.Format,
		MalformedLines:  p.Malformed,
	}
}

type transactionResponse struct {
	ID          uuid.UUID          `json:"id"`
	Amount      int64              `json:"amount"`
	Type        transaction.Type   `json:"type"`
	Status      transaction.Status `json:"status"`
	Description string             `json:"description"`
	Merchant    string             `json:"merchant,omitempty"`
	Date        string             `json:"date"`
	SourceRow   int                `json:"source_row"`
	CreatedAt   time.Time          `json:"created_at"`
}

type importResponse struct {
	ImportedCount int                   `json:"imported_count"`
	SkippedCount  int                   `json:"skipped_count"`
	DroppedCount  int                   `json:"dropped_count"`
	Errors        []statement.RowError  `json:"errors"`
	Transactions  []transactionResponse `json:"transactions"`
}

func toImportResponse(res *importer.Result) importResponse {
	resp := importResponse{
		ImportedCount: res.ImportedCount,
		SkippedCount:  res.SkippedCount,
		DroppedCount:  res.DroppedCount,
		Errors:        res.Errors,
		Transactions:  make([]transactionResponse, 0, len(res.Imported)),
	}

	if resp.Errors == nil {
		resp.Errors = []statement.RowError{}
	}

	for _, tx := range res.Imported {
		resp.Transactions = append(resp.Transactions, transactionResponse{
			ID:          tx.ID,
			Amount:      tx.Amount,
			Type:        tx.Type,
			Status:      tx.Status,
			Description: tx.Description,
			Merchant:    tx.Merchant,
			Date:        tx.Date.Format(time.DateOnly),
			SourceRow:   tx.SourceRow,
			CreatedAt:   tx.CreatedAt,
		})
	}

	return resp
}
