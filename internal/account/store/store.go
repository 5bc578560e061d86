package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerbook/internal/account"
	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*account.Account, error) {
	var a account.Account

	var mapping []byte

	if err := s.Scan(&a.ID, &a.Name, &mapping, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}

	if mapping != nil {
		var m statement.ColumnMapping
		if err := json.Unmarshal(mapping, &m); err != nil {
			return nil, fmt.Errorf("decoding csv mapping of account %s: %w", a.ID, err)
		}

		a.CSVMapping = &m
	}

	return &a, nil
}

const selectAccountColumns = `id, name, csv_mapping, created_at, updated_at`

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (name, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	if err := s.db.QueryRowContext(ctx, query, a.Name).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	return accounts, nil
}

func (s *Store) UpdateMapping(ctx context.Context, id uuid.UUID, m statement.ColumnMapping) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding csv mapping: %w", err)
	}

	query := `
		UPDATE accounts
		SET csv_mapping = $1, updated_at = NOW()
		WHERE id = $2
	`

	res, err := s.db.ExecContext(ctx, query, string(raw), id)
	if err != nil {
		return fmt.Errorf("updating csv mapping: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating csv mapping: %w", err)
	}

	if n == 0 {
		return account.ErrNotFound
	}

	return nil
}
