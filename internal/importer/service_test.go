package importer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledgerbook/internal/account"
	"github.com/MrJamesThe3rd/ledgerbook/internal/encoding"
	"github.com/MrJamesThe3rd/ledgerbook/internal/importer"
	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
	"github.com/MrJamesThe3rd/ledgerbook/internal/transaction"
)

const basicCSV = "Date,Description,Amount\n" +
	"2026-01-05,Starbucks,-6.45\n" +
	"2026-01-05,Paycheck,2500.00\n" +
	"not-a-date,Bad Row,10.00\n"

var basicMapping = statement.ColumnMapping{
	DateColumn:        "Date",
	DescriptionColumn: "Description",
	AmountMode:        statement.AmountSingle,
	AmountColumn:      "Amount",
	DateFormat:        statement.DateISO,
}

// memStore is an in-memory transaction repository.
type memStore struct {
	txs []*transaction.Transaction
}

func (s *memStore) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}

	return nil, transaction.ErrNotFound
}

func (s *memStore) ListTransactions(context.Context, transaction.ListFilter) ([]*transaction.Transaction, error) {
	return s.txs, nil
}

func (s *memStore) DeleteTransaction(context.Context, uuid.UUID) error {
	return nil
}

func (s *memStore) BeginImport(_ context.Context, accountID uuid.UUID) (transaction.ImportTx, error) {
	return &memImportTx{store: s, accountID: accountID}, nil
}

type memImportTx struct {
	store     *memStore
	accountID uuid.UUID
	pending   []*transaction.Transaction
}

func (t *memImportTx) Fingerprints(context.Context) (statement.FingerprintSet, error) {
	set := statement.NewFingerprintSet()

	for _, tx := range t.store.txs {
		if tx.AccountID == t.accountID {
			set.Add(tx.Fingerprint)
		}
	}

	return set, nil
}

func (t *memImportTx) CreateTransactions(_ context.Context, txs []*transaction.Transaction) error {
	for _, tx := range txs {
		tx.ID = uuid.New()
	}

	t.pending = append(t.pending, txs...)

	return nil
}

func (t *memImportTx) Commit() error {
	t.store.txs = append(t.store.txs, t.pending...)
	t.pending = nil

	return nil
}

func (t *memImportTx) Rollback() error {
	t.pending = nil
	return nil
}

func newLedger() (*transaction.Service, *memStore) {
	store := &memStore{}
	return transaction.NewService(store), store
}

func TestService_Import_EndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountID := uuid.New()
	accounts := importer.NewMockAccounts(ctrl)
	accounts.EXPECT().Get(gomock.Any(), accountID).Return(&account.Account{ID: accountID}, nil)
	accounts.EXPECT().SaveMapping(gomock.Any(), accountID, basicMapping).Return(nil)

	ledger, store := newLedger()
	svc := importer.NewService(accounts, ledger, nil, importer.Options{})

	mapping := basicMapping
	res, err := svc.Import(context.Background(), accountID, []byte(basicCSV), &mapping)
	require.NoError(t, err)

	assert.Equal(t, 2, res.ImportedCount)
	assert.Equal(t, 0, res.SkippedCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 4, res.Errors[0].Row)
	assert.Equal(t, "not-a-date", res.Errors[0].Raw)

	require.Len(t, store.txs, 2)
	assert.Equal(t, "Starbucks", store.txs[0].Description)
	assert.Equal(t, int64(645), store.txs[0].Amount)
	assert.Equal(t, transaction.TypeExpense, store.txs[0].Type)
	assert.Equal(t, transaction.StatusPosted, store.txs[0].Status)
	assert.Equal(t, "Paycheck", store.txs[1].Description)
	assert.Equal(t, int64(250000), store.txs[1].Amount)
	assert.Equal(t, transaction.TypeIncome, store.txs[1].Type)
}

func TestService_Import_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountID := uuid.New()
	saved := basicMapping

	accounts := importer.NewMockAccounts(ctrl)
	accounts.EXPECT().
		Get(gomock.Any(), accountID).
		Return(&account.Account{ID: accountID, CSVMapping: &saved}, nil).
		Times(2)

	ledger, store := newLedger()
	svc := importer.NewService(accounts, ledger, nil, importer.Options{})

	first, err := svc.Import(context.Background(), accountID, []byte(basicCSV), nil)
	require.NoError(t, err)

	second, err := svc.Import(context.Background(), accountID, []byte(basicCSV), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, first.ImportedCount)
	assert.Equal(t, 0, second.ImportedCount)
	assert.Equal(t, first.ImportedCount, second.SkippedCount)
	assert.Len(t, second.Errors, 1)
	assert.Len(t, store.txs, 2)
}

func TestService_Import_SameRowsOtherAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	saved := basicMapping
	accounts := importer.NewMockAccounts(ctrl)
	accounts.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id uuid.UUID) (*account.Account, error) {
			return &account.Account{ID: id, CSVMapping: &saved}, nil
		}).
		Times(2)

	ledger, store := newLedger()
	svc := importer.NewService(accounts, ledger, nil, importer.Options{})

	for range 2 {
		res, err := svc.Import(context.Background(), uuid.New(), []byte(basicCSV), nil)
		require.NoError(t, err)
		assert.Equal(t, 2, res.ImportedCount)
	}

	assert.Len(t, store.txs, 4)
}

func TestService_Import_Errors(t *testing.T) {
	accountID := uuid.New()
	saved := basicMapping

	type testCase struct {
		name      string
		data      string
		mapping   *statement.ColumnMapping
		setupMock func(a *importer.MockAccounts, l *importer.MockLedger)
		wantErr   error
	}

	withMapping := func(a *importer.MockAccounts, _ *importer.MockLedger) {
		a.EXPECT().Get(gomock.Any(), accountID).Return(&account.Account{ID: accountID, CSVMapping: &saved}, nil)
	}

	tests := []testCase{
		{
			name: "UnknownAccount",
			data: basicCSV,
			setupMock: func(a *importer.MockAccounts, _ *importer.MockLedger) {
				a.EXPECT().Get(gomock.Any(), accountID).Return(nil, account.ErrNotFound)
			},
			wantErr: account.ErrNotFound,
		},
		{
			name:      "EmptyFile",
			data:      "",
			setupMock: withMapping,
			wantErr:   statement.ErrNoHeaders,
		},
		{
			name:      "HeaderOnly",
			data:      "Date,Description,Amount\n",
			setupMock: withMapping,
			wantErr:   statement.ErrNoRows,
		},
		{
			name: "NoMapping",
			data: basicCSV,
			setupMock: func(a *importer.MockAccounts, _ *importer.MockLedger) {
				a.EXPECT().Get(gomock.Any(), accountID).Return(&account.Account{ID: accountID}, nil)
			},
			wantErr: importer.ErrNoMapping,
		},
		{
			name:    "InvalidSuppliedMapping",
			data:    basicCSV,
			mapping: &statement.ColumnMapping{AmountMode: "sideways"},
			setupMock: func(a *importer.MockAccounts, _ *importer.MockLedger) {
				a.EXPECT().Get(gomock.Any(), accountID).Return(&account.Account{ID: accountID}, nil)
				a.EXPECT().SaveMapping(gomock.Any(), accountID, gomock.Any()).Return(statement.ErrInvalidMapping)
			},
			wantErr: statement.ErrInvalidMapping,
		},
		{
			name: "LedgerFails",
			data: basicCSV,
			setupMock: func(a *importer.MockAccounts, l *importer.MockLedger) {
				withMapping(a, l)
				l.EXPECT().ImportCandidates(gomock.Any(), accountID, gomock.Len(2)).Return(nil, errDB)
			},
			wantErr: errDB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			accounts := importer.NewMockAccounts(ctrl)
			ledger := importer.NewMockLedger(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(accounts, ledger)
			}

			svc := importer.NewService(accounts, ledger, nil, importer.Options{})
			got, err := svc.Import(context.Background(), accountID, []byte(tt.data), tt.mapping)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
		})
	}
}

var errDB = errors.New("db error")

func TestService_Import_NonCalendarDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountID := uuid.New()
	saved := basicMapping

	accounts := importer.NewMockAccounts(ctrl)
	accounts.EXPECT().Get(gomock.Any(), accountID).Return(&account.Account{ID: accountID, CSVMapping: &saved}, nil)

	ledger, store := newLedger()
	svc := importer.NewService(accounts, ledger, nil, importer.Options{})

	input := "Date,Description,Amount\n" +
		"2026-02-31,Rent,-900\n" +
		"2026-02-27,Groceries,-45.10\n" +
		"garbage,Bad Row,1\n"

	res, err := svc.Import(context.Background(), accountID, []byte(input), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.ImportedCount)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Equal(t, "date does not exist", res.Errors[0].Message)
	assert.Equal(t, 4, res.Errors[1].Row)
	assert.Len(t, store.txs, 1)
}

func TestService_Import_ZeroAmounts(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"2026-01-05,Card check,0.00\n" +
		"2026-01-06,Coffee,-3.20\n"

	tests := []struct {
		name         string
		keepZero     bool
		wantImported int
		wantDropped  int
	}{
		{name: "DroppedByDefault", wantImported: 1, wantDropped: 1},
		{name: "Kept", keepZero: true, wantImported: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			accountID := uuid.New()
			saved := basicMapping

			accounts := importer.NewMockAccounts(ctrl)
			accounts.EXPECT().Get(gomock.Any(), accountID).Return(&account.Account{ID: accountID, CSVMapping: &saved}, nil)

			ledger, _ := newLedger()
			svc := importer.NewService(accounts, ledger, nil, importer.Options{KeepZeroAmounts: tt.keepZero})

			res, err := svc.Import(context.Background(), accountID, []byte(input), nil)
			require.NoError(t, err)

			assert.Equal(t, tt.wantImported, res.ImportedCount)
			assert.Equal(t, tt.wantDropped, res.DroppedCount)
			assert.Empty(t, res.Errors)
		})
	}
}

func TestService_Import_EnrichesMerchants(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountID := uuid.New()
	saved := basicMapping

	accounts := importer.NewMockAccounts(ctrl)
	accounts.EXPECT().Get(gomock.Any(), accountID).Return(&account.Account{ID: accountID, CSVMapping: &saved}, nil)

	payees := importer.NewMockPayees(ctrl)
	payees.EXPECT().
		Enrich(gomock.Any(), gomock.Len(2)).
		DoAndReturn(func(_ context.Context, cs []statement.Candidate) error {
			cs[0].Merchant = "Starbucks Coffee"
			return nil
		})

	ledger, store := newLedger()
	svc := importer.NewService(accounts, ledger, payees, importer.Options{})

	_, err := svc.Import(context.Background(), accountID, []byte(basicCSV), nil)
	require.NoError(t, err)

	require.Len(t, store.txs, 2)
	assert.Equal(t, "Starbucks Coffee", store.txs[0].Merchant)
	assert.Empty(t, store.txs[1].Merchant)
}

func TestService_Preview(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountID := uuid.New()
	saved := basicMapping

	accounts := importer.NewMockAccounts(ctrl)
	accounts.EXPECT().Get(gomock.Any(), accountID).Return(&account.Account{ID: accountID, CSVMapping: &saved}, nil)

	svc := importer.NewService(accounts, importer.NewMockLedger(ctrl), nil, importer.Options{PreviewRows: 2})

	input := "Date,Description,Amount\n" +
		"2026-01-05,Starbucks,-6.45\n" +
		"2026-01-05,Paycheck,2500.00\n" +
		"2026-01-07,Bakery,(3.10)\n"

	got, err := svc.Preview(context.Background(), accountID, []byte(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Description", "Amount"}, got.Headers)
	assert.Equal(t, [][]string{
		{"2026-01-05", "Starbucks", "-6.45"},
		{"2026-01-05", "Paycheck", "2500.00"},
	}, got.SampleRows)
	assert.Equal(t, 3, got.TotalRows)
	assert.Equal(t, ",", got.Delimiter)
	assert.Equal(t, encoding.UTF8, got.Encoding)
	assert.Equal(t, importer.FormatCSV, got.Format)
	assert.Empty(t, got.Preset)
	assert.Same(t, &saved, got.SavedMapping)

	m := got.DetectedMapping
	assert.Equal(t, "Date", m.DateColumn)
	assert.Equal(t, "Description", m.DescriptionColumn)
	assert.Equal(t, statement.AmountSingle, m.AmountMode)
	assert.Equal(t, "Amount", m.AmountColumn)
	assert.Equal(t, statement.DateISO, m.DateFormat)
	assert.True(t, m.NegativeInParentheses)
}

func TestService_Preview_Latin1Preset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountID := uuid.New()
	accounts := importer.NewMockAccounts(ctrl)
	accounts.EXPECT().Get(gomock.Any(), accountID).Return(&account.Account{ID: accountID}, nil)

	svc := importer.NewService(accounts, importer.NewMockLedger(ctrl), nil, importer.Options{})

	// "Descrição" and "Débito" in windows-1252.
	data := []byte("Data;Descri\xe7\xe3o;D\xe9bito;Cr\xe9dito\n05-01-2026;CONTINENTE;23,45;\n")

	got, err := svc.Preview(context.Background(), accountID, data)
	require.NoError(t, err)

	assert.NotEqual(t, encoding.UTF8, got.Encoding)
	assert.Equal(t, "cgd-cartao", got.Preset)
	assert.Equal(t, ";", got.Delimiter)
	assert.Equal(t, "Descrição", got.DetectedMapping.DescriptionColumn)
	assert.Nil(t, got.SavedMapping)
}

func TestService_Preview_XLSX(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Date", "Description", "Amount"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2026-01-05", "Starbucks", "-6.45"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	accountID := uuid.New()
	accounts := importer.NewMockAccounts(ctrl)
	accounts.EXPECT().Get(gomock.Any(), accountID).Return(&account.Account{ID: accountID}, nil)

	svc := importer.NewService(accounts, importer.NewMockLedger(ctrl), nil, importer.Options{})

	got, err := svc.Preview(context.Background(), accountID, buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, importer.FormatXLSX, got.Format)
	assert.Empty(t, got.Delimiter)
	assert.Empty(t, got.Encoding)
	assert.Equal(t, 1, got.TotalRows)
	assert.Equal(t, "Amount", got.DetectedMapping.AmountColumn)
}
