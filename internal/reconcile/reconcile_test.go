package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolveBalanceArithmetic(t *testing.T) {
	records := []models.RawRecord{
		{Description: "Opening Balance", BalanceText: "1,000.00", Synthetic: true},
		{DateText: "15/01/2024", Description: "MYSTERY ROW A", AmountText: "25.00", BalanceText: "975.00"},
		{DateText: "16/01/2024", Description: "MYSTERY ROW B", AmountText: "500.00", BalanceText: "1,475.00"},
	}

	txns := Resolve(records, models.Period{})
	require.Len(t, txns, 3)

	// The delta decides polarity even with no keyword hints.
	a := txns[1]
	require.NotNil(t, a.Debit)
	assert.Nil(t, a.Credit)
	assert.True(t, a.Debit.Equal(dec("25.00")))

	b := txns[2]
	require.NotNil(t, b.Credit)
	assert.Nil(t, b.Debit)
	assert.True(t, b.Credit.Equal(dec("500.00")))

	for _, txn := range txns {
		assert.False(t, txn.Inconsistent)
	}
}

func TestResolveKeywordFallback(t *testing.T) {
	// No balances anywhere, so only the descriptions can decide.
	records := []models.RawRecord{
		{DateText: "15/01/2024", Description: "DIRECT CREDIT SALARY", AmountText: "2,500.00"},
		{DateText: "16/01/2024", Description: "ATM WDL CBD", AmountText: "100.00"},
	}

	txns := Resolve(records, models.Period{})
	require.Len(t, txns, 2)

	assert.NotNil(t, txns[0].Credit)
	assert.Nil(t, txns[0].Debit)
	assert.NotNil(t, txns[1].Debit)
	assert.Nil(t, txns[1].Credit)
}

func TestResolvePreResolvedColumns(t *testing.T) {
	records := []models.RawRecord{
		{DateText: "15/01/2024", Description: "EFTPOS", DebitText: "25.00", BalanceText: "975.00"},
		{DateText: "16/01/2024", Description: "WAGES", CreditText: "500.00", BalanceText: "1,475.00"},
	}

	txns := Resolve(records, models.Period{})
	require.Len(t, txns, 2)
	require.NotNil(t, txns[0].Debit)
	assert.Nil(t, txns[0].Credit)
	require.NotNil(t, txns[1].Credit)
	assert.Nil(t, txns[1].Debit)
}

func TestResolveBothColumnsPopulated(t *testing.T) {
	// Some layouts yield a value in both columns; the balance delta picks
	// the real side and the other is discarded.
	records := []models.RawRecord{
		{Description: "Opening Balance", BalanceText: "1,000.00", Synthetic: true},
		{DateText: "15/01/2024", Description: "SETTLEMENT", DebitText: "300.00", CreditText: "300.00", BalanceText: "1,300.00"},
	}

	txns := Resolve(records, models.Period{})
	require.Len(t, txns, 2)
	require.NotNil(t, txns[1].Credit)
	assert.Nil(t, txns[1].Debit)
}

func TestResolveZeroCellIsPlaceholder(t *testing.T) {
	records := []models.RawRecord{
		{DateText: "15/01/2024", Description: "WAGES", DebitText: "0.00", CreditText: "500.00"},
	}

	txns := Resolve(records, models.Period{})
	require.Len(t, txns, 1)
	assert.Nil(t, txns[0].Debit)
	require.NotNil(t, txns[0].Credit)
}

func TestResolveAmountRecoveredFromDelta(t *testing.T) {
	records := []models.RawRecord{
		{Description: "Opening Balance", BalanceText: "500.00", Synthetic: true},
		{DateText: "15/01/2024", Description: "NO AMOUNT PRINTED", BalanceText: "420.00"},
	}

	txns := Resolve(records, models.Period{})
	require.Len(t, txns, 2)
	require.NotNil(t, txns[1].Debit)
	assert.True(t, txns[1].Debit.Equal(dec("80.00")))
}

func TestResolveFlagsMismatchedBalance(t *testing.T) {
	records := []models.RawRecord{
		{Description: "Opening Balance", BalanceText: "1,000.00", Synthetic: true},
		{DateText: "15/01/2024", Description: "DIRECT CREDIT WAGES", AmountText: "500.00", BalanceText: "1,700.00"},
	}

	txns := Resolve(records, models.Period{})
	require.Len(t, txns, 2)

	// The row survives, flagged rather than repaired.
	assert.True(t, txns[1].Inconsistent)
	require.NotNil(t, txns[1].Credit)
	assert.True(t, txns[1].Credit.Equal(dec("500.00")))
}

func TestResolveBalanceThreadsAcrossGap(t *testing.T) {
	// A balance-less row in between must not break the chain for the
	// arithmetic on the following row.
	records := []models.RawRecord{
		{Description: "Opening Balance", BalanceText: "1,000.00", Synthetic: true},
		{DateText: "15/01/2024", Description: "PENDING THING", AmountText: "50.00"},
		{DateText: "16/01/2024", Description: "MYSTERY", AmountText: "200.00", BalanceText: "800.00"},
	}

	txns := Resolve(records, models.Period{})
	require.Len(t, txns, 3)
	require.NotNil(t, txns[2].Debit)
	assert.True(t, txns[2].Debit.Equal(dec("200.00")))
}

func TestTolerance(t *testing.T) {
	assert.True(t, tolerance(dec("10.00")).Equal(dec("0.01")))
	// Proportional component takes over for large amounts.
	assert.True(t, tolerance(dec("100000.00")).Equal(dec("50.00")))
}
