package statement_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgerbook/internal/statement"
)

func TestFingerprint(t *testing.T) {
	base := statement.Fingerprint("2026-01-15", decimal.RequireFromString("42.50"), "Coffee Shop")

	assert.Len(t, base, 32)

	t.Run("CaseAndWhitespaceInsensitive", func(t *testing.T) {
		got := statement.Fingerprint("2026-01-15", decimal.RequireFromString("42.5"), "  coffee SHOP ")
		assert.Equal(t, base, got)
	})

	t.Run("SignInsensitive", func(t *testing.T) {
		got := statement.Fingerprint("2026-01-15", decimal.RequireFromString("-42.50"), "Coffee Shop")
		assert.Equal(t, base, got)
	})

	t.Run("OneCentChangesHash", func(t *testing.T) {
		got := statement.Fingerprint("2026-01-15", decimal.RequireFromString("42.51"), "Coffee Shop")
		assert.NotEqual(t, base, got)
	})

	t.Run("DateChangesHash", func(t *testing.T) {
		got := statement.Fingerprint("2026-01-16", decimal.RequireFromString("42.50"), "Coffee Shop")
		assert.NotEqual(t, base, got)
	})

	t.Run("DescriptionTruncated", func(t *testing.T) {
		long := strings.Repeat("é", 100)
		a := statement.Fingerprint("2026-01-15", decimal.NewFromInt(1), long+"A")
		b := statement.Fingerprint("2026-01-15", decimal.NewFromInt(1), long+"B")
		assert.Equal(t, a, b)
	})
}

func TestFilterNew_Idempotent(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"2026-01-05,Starbucks,-6.45\n" +
		"2026-01-05,Paycheck,2500.00\n" +
		"2026-01-06,Groceries,-54.10\n"

	table := statement.Parse(input)
	res := statement.MapRows(table.Rows, singleMapping())
	require.Len(t, res.Transactions, 3)

	existing := statement.NewFingerprintSet()

	first, skipped := statement.FilterNew(res.Transactions, existing)
	assert.Len(t, first, 3)
	assert.Equal(t, 0, skipped)

	for _, c := range first {
		existing.Add(c.Fingerprint())
	}

	second, skipped := statement.FilterNew(res.Transactions, existing)
	assert.Empty(t, second)
	assert.Equal(t, len(first), skipped)
}

func TestFilterNew_KeepsRepeatsWithinBatch(t *testing.T) {
	c := statement.Candidate{
		Date:        "2026-01-05",
		Description: "Parking",
		Amount:      decimal.RequireFromString("2.00"),
		Type:        statement.TypeExpense,
	}

	fresh, skipped := statement.FilterNew([]statement.Candidate{c, c}, statement.NewFingerprintSet())
	assert.Len(t, fresh, 2)
	assert.Equal(t, 0, skipped)

	fresh, skipped = statement.FilterNew([]statement.Candidate{c, c}, statement.NewFingerprintSet(c.Fingerprint()))
	assert.Empty(t, fresh)
	assert.Equal(t, 2, skipped)
}
