package statement_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
)

func singleMapping() statement.ColumnMapping {
	return statement.ColumnMapping{
		DateColumn:        "Date",
		DescriptionColumn: "Description",
		AmountColumn:      "Amount",
		AmountMode:        statement.AmountSingle,
		DateFormat:        statement.DateISO,
	}
}

func mapCSV(t *testing.T, input string, m statement.ColumnMapping) statement.MapResult {
	t.Helper()

	table := statement.Parse(input)
	require.NoError(t, table.Validate())

	return statement.MapRows(table.Rows, m)
}

func TestMapRows_EndToEnd(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"2026-01-05,Starbucks,-6.45\n" +
		"2026-01-05,Paycheck,2500.00\n" +
		"not-a-date,Bad Row,10.00\n"

	res := mapCSV(t, input, singleMapping())

	require.Len(t, res.Transactions, 2)
	require.Len(t, res.Errors, 1)

	coffee := res.Transactions[0]
	assert.Equal(t, "2026-01-05", coffee.Date)
	assert.Equal(t, "Starbucks", coffee.Description)
	assert.True(t, decimal.RequireFromString("6.45").Equal(coffee.Amount))
	assert.Equal(t, statement.TypeExpense, coffee.Type)
	assert.Equal(t, 2, coffee.SourceRow)

	pay := res.Transactions[1]
	assert.Equal(t, "Paycheck", pay.Description)
	assert.True(t, decimal.RequireFromString("2500").Equal(pay.Amount))
	assert.Equal(t, statement.TypeIncome, pay.Type)

	rowErr := res.Errors[0]
	assert.Equal(t, 4, rowErr.Row)
	assert.Equal(t, "Date", rowErr.Column)
	assert.Equal(t, "not-a-date", rowErr.Raw)
	assert.Contains(t, rowErr.Error(), "row 4")
}

func TestMapRows_RowIsolation(t *testing.T) {
	var b strings.Builder

	b.WriteString("Date,Description,Amount\n")

	const rows = 25
	for i := range rows {
		date := fmt.Sprintf("2026-02-%02d", i+1)
		if i == 11 {
			date = "2026-02-xx"
		}

		fmt.Fprintf(&b, "%s,Item %d,-%d.99\n", date, i, i+1)
	}

	res := mapCSV(t, b.String(), singleMapping())

	assert.Len(t, res.Errors, 1)
	assert.Len(t, res.Transactions, rows-1)
}

func TestMapRows_UnterminatedQuote(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"2026-01-05,\"Starbucks,-6.45\n" +
		"2026-01-06,Tea,-2.10\n" +
		"2026-01-07,Bakery,-3.20\n" +
		"2026-01-08,Salary,1500.00\n"

	res := mapCSV(t, input, singleMapping())

	require.Len(t, res.Transactions, 3)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Equal(t, "Amount", res.Errors[0].Column)
	assert.Equal(t, "Tea", res.Transactions[0].Description)
}

func TestMapRows_FitsDateFormatAroundStrayValue(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"05/01/2026,A,-1.00\n" +
		"06/01/2026,B,-2.00\n" +
		"n/a,Total,-3.00\n" +
		"07/01/2026,C,-4.00\n"

	m := singleMapping()
	m.DateFormat = ""

	res := mapCSV(t, input, m)

	require.Len(t, res.Transactions, 3)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 4, res.Errors[0].Row)
	assert.Equal(t, "n/a", res.Errors[0].Raw)
	assert.Equal(t, "2026-05-01", res.Transactions[0].Date)
	assert.Equal(t, "2026-07-01", res.Transactions[2].Date)
}

func TestMapRows_AmountSign(t *testing.T) {
	res := mapCSV(t, "Date,Description,Amount\n2026-01-01,Out,-42.50\n2026-01-01,In,42.50\n", singleMapping())

	require.Len(t, res.Transactions, 2)

	want := decimal.RequireFromString("42.50")
	assert.True(t, want.Equal(res.Transactions[0].Amount))
	assert.Equal(t, statement.TypeExpense, res.Transactions[0].Type)
	assert.True(t, want.Equal(res.Transactions[1].Amount))
	assert.Equal(t, statement.TypeIncome, res.Transactions[1].Type)
}

func TestMapRows_SplitMode(t *testing.T) {
	input := "Date;Memo;Debit;Credit\n" +
		"05/01/2026;Rent;1.200,00;\n" +
		"06/01/2026;Salary;;2.500,00\n" +
		"07/01/2026;Nothing;;\n" +
		"08/01/2026;Zeroes;0,00;0,00\n" +
		"09/01/2026;Negative debit;-15,00;\n"

	m := statement.ColumnMapping{
		DateColumn:        "Date",
		DescriptionColumn: "Memo",
		AmountMode:        statement.AmountSplit,
		DebitColumn:       "Debit",
		CreditColumn:      "Credit",
		DateFormat:        statement.DateEUSlash,
	}

	res := mapCSV(t, input, m)

	require.Len(t, res.Transactions, 3)
	require.Len(t, res.Errors, 2)

	rent := res.Transactions[0]
	assert.Equal(t, "2026-01-05", rent.Date)
	assert.Equal(t, statement.TypeExpense, rent.Type)
	assert.True(t, decimal.RequireFromString("1200").Equal(rent.Amount))

	salary := res.Transactions[1]
	assert.Equal(t, statement.TypeIncome, salary.Type)
	assert.True(t, decimal.RequireFromString("2500").Equal(salary.Amount))

	negative := res.Transactions[2]
	assert.Equal(t, statement.TypeExpense, negative.Type)
	assert.True(t, decimal.RequireFromString("15").Equal(negative.Amount))

	assert.Equal(t, 4, res.Errors[0].Row)
	assert.Equal(t, 5, res.Errors[1].Row)
}

func TestMapRows_ZeroAmounts(t *testing.T) {
	input := "Date,Description,Amount\n2026-01-01,Balance,0.00\n2026-01-02,Fee,-1.00\n"

	table := statement.Parse(input)

	dropped := statement.MapRows(table.Rows, singleMapping())
	assert.Len(t, dropped.Transactions, 1)
	assert.Empty(t, dropped.Errors)
	assert.Equal(t, 1, dropped.Dropped)

	kept := statement.Mapper{KeepZeroAmounts: true}.Map(table.Rows, singleMapping())
	require.Len(t, kept.Transactions, 2)
	assert.Equal(t, 0, kept.Dropped)
	assert.True(t, kept.Transactions[0].Amount.IsZero())
	assert.Equal(t, statement.TypeIncome, kept.Transactions[0].Type)
}

func TestMapRows_SubCentAmounts(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"2026-01-01,Rounding,0.004\n" +
		"2026-01-02,Interest,0.005\n"

	res := mapCSV(t, input, singleMapping())

	assert.Equal(t, 1, res.Dropped)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Interest", res.Transactions[0].Description)
}

func TestMapRows_Description(t *testing.T) {
	input := "Date,Description,Merchant,Amount\n" +
		"2026-01-05,\"  Coffee    Shop \",Starbucks,-3.00\n" +
		"2026-01-05,,Starbucks,-3.00\n" +
		"2026-01-05,,,-3.00\n"

	m := singleMapping()
	m.MerchantColumn = "Merchant"

	res := mapCSV(t, input, m)
	require.Len(t, res.Transactions, 3)

	assert.Equal(t, "Coffee Shop", res.Transactions[0].Description)
	assert.Equal(t, "Starbucks", res.Transactions[0].Merchant)
	assert.Equal(t, "Starbucks", res.Transactions[1].Description)
	assert.Equal(t, "Transaction on 2026-01-05", res.Transactions[2].Description)
	assert.Equal(t, "", res.Transactions[2].Merchant)
}

func TestMapRows_Status(t *testing.T) {
	input := "Date,Description,Amount,Status\n" +
		"2026-01-05,A,-1,Cleared\n" +
		"2026-01-05,B,-1, AUTHORIZED \n" +
		"2026-01-05,C,-1,reversed\n"

	m := singleMapping()
	m.StatusColumn = "Status"

	res := mapCSV(t, input, m)
	require.Len(t, res.Transactions, 3)

	assert.Equal(t, statement.StatusPosted, res.Transactions[0].Status)
	assert.Equal(t, statement.StatusPending, res.Transactions[1].Status)
	assert.Equal(t, statement.Status(""), res.Transactions[2].Status)
}

func TestMapRows_ConfigurationFailures(t *testing.T) {
	input := "Date,Description,Amount\n2026-01-05,A,-1\n2026-01-06,B,-2\n"

	tests := []struct {
		name       string
		mutate     func(m *statement.ColumnMapping)
		wantColumn string
	}{
		{
			name:       "AmountColumnMissing",
			mutate:     func(m *statement.ColumnMapping) { m.AmountColumn = "Value" },
			wantColumn: "Value",
		},
		{
			name:       "AmountColumnUnmapped",
			mutate:     func(m *statement.ColumnMapping) { m.AmountColumn = "" },
			wantColumn: "amount",
		},
		{
			name: "SplitWithoutCredit",
			mutate: func(m *statement.ColumnMapping) {
				m.AmountMode = statement.AmountSplit
				m.DebitColumn = "Amount"
			},
			wantColumn: "credit",
		},
		{
			name:       "DateColumnMissing",
			mutate:     func(m *statement.ColumnMapping) { m.DateColumn = "Posted" },
			wantColumn: "Posted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := singleMapping()
			tt.mutate(&m)

			res := mapCSV(t, input, m)

			assert.Empty(t, res.Transactions)
			require.Len(t, res.Errors, 2)

			for _, e := range res.Errors {
				assert.Equal(t, tt.wantColumn, e.Column)
			}
		})
	}
}

func TestMapRows_SkipHeaderRows(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"Opening balance,,\n" +
		"2026-01-05,A,-1\n"

	m := singleMapping()
	m.SkipHeaderRows = 1

	res := mapCSV(t, input, m)
	assert.Len(t, res.Transactions, 1)
	assert.Empty(t, res.Errors)

	m.SkipHeaderRows = 10
	res = mapCSV(t, input, m)
	assert.Empty(t, res.Transactions)
	assert.Empty(t, res.Errors)
}

func TestMapRows_DetectsMissingDateFormat(t *testing.T) {
	input := "Date,Description,Amount\n01/02/2026,A,-1\n25/02/2026,B,-2\n"

	m := singleMapping()
	m.DateFormat = ""

	res := mapCSV(t, input, m)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "2026-02-01", res.Transactions[0].Date)
	assert.Equal(t, "2026-02-25", res.Transactions[1].Date)
}
