// Package payee learns which merchant a statement description belongs to.
package payee

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
)

var ErrInvalidRule = errors.New("pattern and merchant are required")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payee
type Repository interface {
	FindMerchant(ctx context.Context, description string) (string, error)
	CreateRule(ctx context.Context, rule Rule) error
}

// Rule maps every description containing Pattern (case-insensitive) to
// Merchant.
type Rule struct {
	Pattern  string
	Merchant string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the merchant of the longest rule whose pattern occurs in the
// description, or an empty string if no rule matches.
func (s *Service) Suggest(ctx context.Context, description string) (string, error) {
	return s.repo.FindMerchant(ctx, description)
}

// Learn remembers a new pattern to merchant rule.
func (s *Service) Learn(ctx context.Context, pattern, merchant string) error {
	pattern = strings.TrimSpace(pattern)
	merchant = strings.TrimSpace(merchant)

	if pattern == "" || merchant == "" {
		return ErrInvalidRule
	}

	return s.repo.CreateRule(ctx, Rule{Pattern: pattern, Merchant: merchant})
}

// Enrich fills the merchant of candidates that have none from the learned
// rules. Fingerprints do not include the merchant, so enrichment never changes
// how a candidate is deduplicated.
func (s *Service) Enrich(ctx context.Context, candidates []statement.Candidate) error {
	for i, c := range candidates {
		if c.Merchant != "" {
			continue
		}

		merchant, err := s.repo.FindMerchant(ctx, c.Description)
		if err != nil {
			return fmt.Errorf("row %d: %w", c.SourceRow, err)
		}

		candidates[i].Merchant = merchant
	}

	return nil
}
