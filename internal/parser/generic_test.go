package parser

import (
	"testing"

	"github.com/insightdelivered/statement-extractor/internal/layout"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

// tok places a word on a page at the given column center and row top.
func tok(text string, center, top float64) models.WordToken {
	return models.WordToken{Text: text, Left: center - 5, Right: center + 5, Top: top, Bottom: top + 10}
}

func lineFromWords(words ...models.WordToken) layout.Line {
	return layout.Line{Words: words}
}

// Column centers used by the fixture pages.
const (
	colDate    = 40.0
	colDesc    = 160.0
	colDebit   = 300.0
	colCredit  = 380.0
	colBalance = 460.0
)

func genericPage() models.Page {
	words := []models.WordToken{
		// header
		tok("Date", colDate, 100),
		tok("Description", colDesc, 100),
		tok("Withdrawals", colDebit, 100),
		tok("Deposits", colCredit, 100),
		tok("Balance", colBalance, 100),
		// opening balance anchor
		tok("Opening", colDesc-20, 120),
		tok("Balance", colDesc+20, 120),
		tok("1,000.00", colBalance, 120),
		// debit row with a wrapped description line
		tok("15/01/2024", colDate, 140),
		tok("EFTPOS", colDesc-20, 140),
		tok("GROCER", colDesc+25, 140),
		tok("25.00", colDebit, 140),
		tok("975.00", colBalance, 140),
		tok("CARD", colDesc-15, 160),
		tok("1234", colDesc+20, 160),
		// credit row
		tok("16/01/2024", colDate, 180),
		tok("WAGES", colDesc, 180),
		tok("500.00", colCredit, 180),
		tok("1,475.00", colBalance, 180),
	}
	return models.Page{Words: words}
}

func TestGenericParser(t *testing.T) {
	doc := &models.Document{Pages: []models.Page{genericPage()}}

	result, err := (&GenericParser{}).Parse(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := result.Records
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(records), records)
	}

	opening := records[0]
	if !opening.Synthetic {
		t.Error("expected opening balance row to be synthetic")
	}
	if opening.BalanceText != "1,000.00" {
		t.Errorf("opening balance = %q, want 1,000.00", opening.BalanceText)
	}

	debit := records[1]
	if debit.DateText != "15/01/2024" {
		t.Errorf("debit date = %q", debit.DateText)
	}
	if debit.Description != "EFTPOS GROCER CARD 1234" {
		t.Errorf("continuation not merged, description = %q", debit.Description)
	}
	if debit.DebitText != "25.00" || debit.CreditText != "" {
		t.Errorf("debit cells = %q/%q, want 25.00/empty", debit.DebitText, debit.CreditText)
	}
	if debit.BalanceText != "975.00" {
		t.Errorf("debit balance = %q", debit.BalanceText)
	}

	credit := records[2]
	if credit.CreditText != "500.00" || credit.DebitText != "" {
		t.Errorf("credit cells = %q/%q, want 500.00/empty", credit.CreditText, credit.DebitText)
	}
	if credit.BalanceText != "1,475.00" {
		t.Errorf("credit balance = %q", credit.BalanceText)
	}
}

func TestGenericParserNoHeader(t *testing.T) {
	page := models.Page{Words: []models.WordToken{
		tok("hello", 100, 100),
		tok("world", 200, 100),
	}}
	doc := &models.Document{Pages: []models.Page{page}}

	_, err := (&GenericParser{}).Parse(doc)
	if err == nil {
		t.Fatal("expected error for page without header")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Reason != ReasonNoHeader {
		t.Errorf("reason = %q, want %q", pe.Reason, ReasonNoHeader)
	}
}

func TestNormalizeHeaderToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"Date", roleDate},
		{"Withdrawals", roleDebit},
		{"Deposits", roleCredit},
		{"Particulars", roleDescription},
		{"Balance", roleBalance},
		{"Frobnicate", ""},
	}

	for _, tt := range tests {
		if got := normalizeHeaderToken(tt.token); got != tt.want {
			t.Errorf("normalizeHeaderToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestBuildColumnsRequiresThreeRoles(t *testing.T) {
	header := lineFromWords(
		tok("Date", colDate, 0),
		tok("Notes", colDesc, 0),
	)
	if specs, _ := buildColumns(header); specs != nil {
		t.Errorf("expected nil specs for a two-role header, got %+v", specs)
	}
}
