package pipeline

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/parser"
)

func tok(text string, center, top float64) models.WordToken {
	return models.WordToken{Text: text, Left: center - 5, Right: center + 5, Top: top, Bottom: top + 10}
}

// headerRow lays out the five canonical column labels.
func headerRow(top float64) []models.WordToken {
	return []models.WordToken{
		tok("Date", 40, top),
		tok("Description", 160, top),
		tok("Withdrawals", 300, top),
		tok("Deposits", 380, top),
		tok("Balance", 460, top),
	}
}

func genericDoc() *models.Document {
	const tableText = "Date Description Withdrawals Deposits Balance"
	pageOne := models.Page{Text: tableText, Words: append(headerRow(100),
		tok("Opening", 140, 120), tok("Balance", 180, 120), tok("1,000.00", 460, 120),
		tok("15/01/2024", 40, 140), tok("GROCER", 160, 140), tok("25.00", 300, 140), tok("975.00", 460, 140),
		tok("16/01/2024", 40, 160), tok("FUEL", 160, 160), tok("60.00", 300, 160), tok("915.00", 460, 160),
	)}
	pageTwo := models.Page{Text: tableText, Words: append(headerRow(100),
		tok("17/01/2024", 40, 120), tok("WAGES", 160, 120), tok("500.00", 380, 120), tok("1,415.00", 460, 120),
		tok("18/01/2024", 40, 140), tok("RENT", 160, 140), tok("400.00", 300, 140), tok("1,015.00", 460, 140),
		tok("19/01/2024", 40, 160), tok("INTEREST", 160, 160), tok("2.00", 380, 160), tok("1,017.00", 460, 160),
	)}
	return &models.Document{Pages: []models.Page{pageOne, pageTwo}}
}

func TestExtractGenericDocument(t *testing.T) {
	stmt, err := Extract(context.Background(), genericDoc(), "")
	require.NoError(t, err)

	assert.Equal(t, models.FormatGeneric, stmt.Format)
	// Synthetic opening anchor plus five transaction rows.
	require.Len(t, stmt.Transactions, 6)

	var debits, credits int
	for _, txn := range stmt.Transactions {
		if txn.Debit != nil {
			debits++
		}
		if txn.Credit != nil {
			credits++
		}
		// Polarity is exclusive on every row.
		assert.False(t, txn.Debit != nil && txn.Credit != nil, "row %q has both sides", txn.Description)
		// The balance chain survives the page boundary without flags.
		assert.False(t, txn.Inconsistent, "row %q flagged", txn.Description)
	}
	assert.Equal(t, 3, debits)
	assert.Equal(t, 2, credits)

	wages := stmt.Transactions[3]
	assert.Equal(t, "WAGES", wages.Description)
	require.NotNil(t, wages.Credit)
	assert.True(t, wages.Credit.Equal(decimal.RequireFromString("500.00")))
	require.NotNil(t, wages.Date)
	assert.Equal(t, "17-01-2024", wages.DateString())
}

func TestExtractWordsOnlyDocument(t *testing.T) {
	// Some backends recover geometry but no plain text. Detection reassembles
	// the page from its word tokens and the run matches the text-backed one.
	doc := genericDoc()
	for i := range doc.Pages {
		doc.Pages[i].Text = ""
	}

	stmt, err := Extract(context.Background(), doc, "")
	require.NoError(t, err)
	assert.Equal(t, models.FormatGeneric, stmt.Format)
	require.Len(t, stmt.Transactions, 6)
	for _, txn := range stmt.Transactions {
		assert.False(t, txn.Inconsistent, "row %q flagged", txn.Description)
	}
}

func TestExtractUnknownFormat(t *testing.T) {
	doc := &models.Document{Pages: []models.Page{{Text: "quarterly newsletter"}}}
	_, err := Extract(context.Background(), doc, "")
	assert.Error(t, err)
}

func TestExtractEmptyDocument(t *testing.T) {
	_, err := Extract(context.Background(), &models.Document{}, "")
	assert.Error(t, err)
	_, err = Extract(context.Background(), nil, "")
	assert.Error(t, err)
}

func TestExtractForcedFormat(t *testing.T) {
	// Forcing a format skips detection; a doc that would not detect as
	// anything still parses when the caller knows better.
	page := `Date Description Credit Debit Balance 2024
4 Dec
SALARY
$2,500.00 $3,500.00`
	doc := &models.Document{Pages: []models.Page{{Text: page}}}

	stmt, err := Extract(context.Background(), doc, models.FormatANZ)
	require.NoError(t, err)
	assert.Equal(t, models.FormatANZ, stmt.Format)
	require.Len(t, stmt.Transactions, 1)
}

func TestExtractFallsBackToGeneric(t *testing.T) {
	// Branded like Suncorp but laid out as an arbitrary table: the Suncorp
	// parser finds no header and the generic strategy takes over.
	doc := &models.Document{Pages: []models.Page{{
		Text: "Suncorp newsletter header",
		Words: append(headerRow(100),
			tok("15/01/2024", 40, 120), tok("GROCER", 160, 120), tok("25.00", 300, 120), tok("975.00", 460, 120),
		),
	}}}

	stmt, err := Extract(context.Background(), doc, "")
	require.NoError(t, err)
	assert.Equal(t, models.FormatGeneric, stmt.Format)
	require.Len(t, stmt.Transactions, 1)
}

func TestExtractErrorNamesFailedParser(t *testing.T) {
	// No table at all: the Suncorp parser fails and the generic fallback has
	// nothing to work with either. The error reports the detected strategy's
	// failure, not the fallback's.
	doc := &models.Document{Pages: []models.Page{{Text: "Suncorp Bank statement with no table"}}}

	_, err := Extract(context.Background(), doc, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Suncorp Bank")

	var pe *parser.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, models.FormatSuncorp, pe.Format)
}

func TestExtractCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extract(ctx, genericDoc(), "")
	assert.ErrorIs(t, err, context.Canceled)
}
