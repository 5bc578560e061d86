// Package importer turns uploaded bank statements into stored transactions.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerbook/internal/account"
	"github.com/MrJamesThe3rd/ledgerbook/internal/encoding"
	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
	"github.com/MrJamesThe3rd/ledgerbook/internal/transaction"
)

var ErrNoMapping = errors.New("account has no column mapping")

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer
type Accounts interface {
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	SaveMapping(ctx context.Context, id uuid.UUID, m statement.ColumnMapping) error
}

type Ledger interface {
	ImportCandidates(ctx context.Context, accountID uuid.UUID, candidates []statement.Candidate) (*transaction.ImportResult, error)
}

type Payees interface {
	Enrich(ctx context.Context, candidates []statement.Candidate) error
}

type Options struct {
	PreviewRows     int
	KeepZeroAmounts bool
}

type Service struct {
	accounts Accounts
	ledger   Ledger
	payees   Payees
	mapper   statement.Mapper
	opts     Options
}

// NewService builds an import service. payees may be nil, in which case
// merchants are only taken from the statement itself.
func NewService(accounts Accounts, ledger Ledger, payees Payees, opts Options) *Service {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 5
	}

	return &Service{
		accounts: accounts,
		ledger:   ledger,
		payees:   payees,
		mapper:   statement.Mapper{KeepZeroAmounts: opts.KeepZeroAmounts},
		opts:     opts,
	}
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

type Preview struct {
	Headers         []string
	SampleRows      [][]string
	DetectedMapping statement.ColumnMapping
	SavedMapping    *statement.ColumnMapping
	Preset          string
	TotalRows       int
	Delimiter       string
	Encoding        encoding.Charset
	Format          Format
	Malformed       int
}

// Preview parses an upload without storing anything and proposes a mapping
// for the user to confirm.
func (s *Service) Preview(ctx context.Context, accountID uuid.UUID, data []byte) (*Preview, error) {
	acc, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	src, err := load(data)
	if err != nil {
		return nil, err
	}

	t := src.table

	p := &Preview{
		Headers:         t.Headers,
		SampleRows:      t.Records(s.opts.PreviewRows),
		DetectedMapping: statement.DetectMapping(t),
		SavedMapping:    acc.CSVMapping,
		TotalRows:       len(t.Rows),
		Encoding:        src.charset,
		Format:          src.format,
		Malformed:       t.Malformed,
	}

	if t.Delimiter != 0 {
		p.Delimiter = string(t.Delimiter)
	}

	if preset, ok := statement.MatchPreset(t.Headers); ok {
		p.Preset = preset.Name
	}

	return p, nil
}

type Result struct {
	Imported      []*transaction.Transaction
	ImportedCount int
	SkippedCount  int // duplicates of earlier imports
	DroppedCount  int // zero-amount rows
	Errors        []statement.RowError
}

// Import maps an upload and stores every row not imported into the account
// before. A non-nil mapping is saved on the account first; otherwise the
// account's saved mapping is used.
func (s *Service) Import(ctx context.Context, accountID uuid.UUID, data []byte, mapping *statement.ColumnMapping) (*Result, error) {
	start := time.Now()
	defer func() {
		importDuration.Observe(time.Since(start).Seconds())
	}()

	acc, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	src, err := load(data)
	if err != nil {
		return nil, err
	}

	m, err := s.resolveMapping(ctx, acc, mapping)
	if err != nil {
		return nil, err
	}

	mapped := s.mapper.Map(src.table.Rows, m)

	candidates, rowErrs := calendarDates(mapped.Transactions)
	rowErrs = append(rowErrs, mapped.Errors...)
	slices.SortStableFunc(rowErrs, func(a, b statement.RowError) int {
		return a.Row - b.Row
	})

	if s.payees != nil {
		if err := s.payees.Enrich(ctx, candidates); err != nil {
			return nil, fmt.Errorf("enrich merchants: %w", err)
		}
	}

	stored, err := s.ledger.ImportCandidates(ctx, accountID, candidates)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Imported:      stored.Imported,
		ImportedCount: len(stored.Imported),
		SkippedCount:  stored.Skipped,
		DroppedCount:  mapped.Dropped,
		Errors:        rowErrs,
	}

	observeRows(res)

	slog.Info("statement imported",
		"account_id", accountID,
		"format", src.format,
		"imported", res.ImportedCount,
		"skipped", res.SkippedCount,
		"dropped", res.DroppedCount,
		"errors", len(res.Errors),
	)

	return res, nil
}

func (s *Service) resolveMapping(ctx context.Context, acc *account.Account, supplied *statement.ColumnMapping) (statement.ColumnMapping, error) {
	if supplied != nil {
		if err := s.accounts.SaveMapping(ctx, acc.ID, *supplied); err != nil {
			return statement.ColumnMapping{}, fmt.Errorf("save mapping: %w", err)
		}

		return *supplied, nil
	}

	if acc.CSVMapping == nil {
		return statement.ColumnMapping{}, ErrNoMapping
	}

	if err := acc.CSVMapping.Check(); err != nil {
		return statement.ColumnMapping{}, err
	}

	return *acc.CSVMapping, nil
}

type source struct {
	table   *statement.Table
	charset encoding.Charset
	format  Format
}

// load decodes an upload into a table and rejects statements without a
// header or data rows.
func load(data []byte) (*source, error) {
	src := &source{format: FormatCSV}

	if statement.IsXLSX(data) {
		t, err := statement.ReadXLSX(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}

		src.table = t
		src.format = FormatXLSX
	} else {
		text, charset, err := encoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("decode statement: %w", err)
		}

		src.table = statement.ParseStatement(text)
		src.charset = charset
	}

	if err := src.table.Validate(); err != nil {
		return nil, err
	}

	return src, nil
}

// calendarDates moves candidates whose date has the right shape but does not
// exist, such as 2026-02-31, into row errors. The date parser only checks
// ranges; the transactions table stores a DATE, and one such row would fail
// the insert of the whole batch.
func calendarDates(cs []statement.Candidate) ([]statement.Candidate, []statement.RowError) {
	var (
		valid = make([]statement.Candidate, 0, len(cs))
		errs  []statement.RowError
	)

	for _, c := range cs {
		if _, err := time.Parse(time.DateOnly, c.Date); err != nil {
			errs = append(errs, statement.RowError{
				Row:     c.SourceRow,
				Column:  "date",
				Message: "date does not exist",
				Raw:     c.Date,
			})

			continue
		}

		valid = append(valid, c)
	}

	return valid, errs
}
