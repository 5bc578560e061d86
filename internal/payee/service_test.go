package payee_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledgerbook/internal/payee"
	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
)

func TestService_Learn(t *testing.T) {
	type testCase struct {
		name      string
		pattern   string
		merchant  string
		setupMock func(m *payee.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name:     "Success",
			pattern:  " STARBUCKS ",
			merchant: "Starbucks",
			setupMock: func(m *payee.MockRepository) {
				m.EXPECT().
					CreateRule(gomock.Any(), payee.Rule{Pattern: "STARBUCKS", Merchant: "Starbucks"}).
					Return(nil)
			},
		},
		{
			name:     "MissingMerchant",
			pattern:  "STARBUCKS",
			merchant: "  ",
			wantErr:  true,
		},
		{
			name:     "RepoError",
			pattern:  "UBER",
			merchant: "Uber",
			setupMock: func(m *payee.MockRepository) {
				m.EXPECT().CreateRule(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := payee.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := payee.NewService(repo)
			err := svc.Learn(context.Background(), tt.pattern, tt.merchant)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Enrich(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := payee.NewMockRepository(ctrl)
	svc := payee.NewService(repo)

	candidates := []statement.Candidate{
		{Description: "COMPRA STARBUCKS LISBOA", SourceRow: 2},
		{Description: "TRF SALARY", SourceRow: 3},
		{Description: "UBER TRIP", Merchant: "Uber BV", SourceRow: 4},
	}
	fingerprint := candidates[0].Fingerprint()

	repo.EXPECT().FindMerchant(gomock.Any(), "COMPRA STARBUCKS LISBOA").Return("Starbucks", nil)
	repo.EXPECT().FindMerchant(gomock.Any(), "TRF SALARY").Return("", nil)

	require.NoError(t, svc.Enrich(context.Background(), candidates))

	assert.Equal(t, "Starbucks", candidates[0].Merchant)
	assert.Equal(t, "", candidates[1].Merchant)
	assert.Equal(t, "Uber BV", candidates[2].Merchant)
	assert.Equal(t, fingerprint, candidates[0].Fingerprint())
}

func TestService_Enrich_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := payee.NewMockRepository(ctrl)
	svc := payee.NewService(repo)

	repo.EXPECT().FindMerchant(gomock.Any(), gomock.Any()).Return("", errors.New("db error"))

	err := svc.Enrich(context.Background(), []statement.Candidate{{Description: "X", SourceRow: 7}})
	assert.ErrorContains(t, err, "row 7")
}
