package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	BeginImport(ctx context.Context, accountID uuid.UUID) (ImportTx, error)
}

// ImportTx is a per-account import unit. Only one can be open for an account
// at a time, so the fingerprint check and the inserts cannot interleave with
// another import of the same account.
type ImportTx interface {
	// Fingerprints returns every fingerprint recorded for the account,
	// including those of deleted transactions.
	Fingerprints(ctx context.Context) (statement.FingerprintSet, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	AccountID *uuid.UUID
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// Delete soft-deletes a transaction. Its fingerprint stays on record, so
// re-importing the same statement does not bring it back.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

type ImportResult struct {
	Imported []*Transaction
	Skipped  int // candidates already imported for the account
}

// ImportCandidates stores the candidates that have not been imported into the
// account before. The fingerprint check and the inserts run in one import
// transaction.
func (s *Service) ImportCandidates(ctx context.Context, accountID uuid.UUID, candidates []statement.Candidate) (*ImportResult, error) {
	if len(candidates) == 0 {
		return &ImportResult{}, nil
	}

	itx, err := s.repo.BeginImport(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	existing, err := itx.Fingerprints(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fingerprints: %w", err)
	}

	fresh, skipped := statement.FilterNew(candidates, existing)
	if len(fresh) == 0 {
		return &ImportResult{Skipped: skipped}, nil
	}

	txs := make([]*Transaction, len(fresh))

	for i, c := range fresh {
		tx, err := FromCandidate(accountID, c)
		if err != nil {
			return nil, err
		}

		txs[i] = tx
	}

	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: txs, Skipped: skipped}, nil
}
