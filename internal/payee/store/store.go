package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/ledgerbook/internal/payee"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMerchant(ctx context.Context, description string) (string, error) {
	query := `
		SELECT merchant
		FROM payee_rules
		WHERE POSITION(LOWER(pattern) IN LOWER($1)) > 0
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var merchant string

	err := s.db.QueryRowContext(ctx, query, description).Scan(&merchant)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding merchant: %w", err)
	}

	return merchant, nil
}

func (s *Store) CreateRule(ctx context.Context, rule payee.Rule) error {
	query := `
		INSERT INTO payee_rules (pattern, merchant, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT ((LOWER(pattern))) DO UPDATE SET merchant = EXCLUDED.merchant
	`

	_, err := s.db.ExecContext(ctx, query, rule.Pattern, rule.Merchant)
	if err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}
