package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/normalize"
)

// WestpacCreditParser handles Westpac Altitude credit-card statements.
//
// The transaction table arrives as one grid whose single data row packs the
// whole statement: each cell holds every value of its column joined with
// line breaks. The cells are split into parallel sub-lists and re-paired by
// position. Debit and credit cells hold fewer entries than the description
// cell, so amounts are dealt out in order: rows whose description carries a
// payment/refund keyword take the next credit, everything else the next
// debit. The statement shows no running balance; one is synthesized.
type WestpacCreditParser struct{}

func (p *WestpacCreditParser) FormatName() string {
	return "Westpac credit card"
}

var westpacCreditKeywords = []string{"PAYMENT", "REFUND", "CREDIT", "BPAY", "THANK YOU"}

func (p *WestpacCreditParser) Parse(doc *models.Document) (*ParseResult, error) {
	for _, page := range doc.Pages {
		for _, table := range page.Tables {
			if result := p.parseTable(table); result != nil {
				return result, nil
			}
		}
	}
	return nil, &ParseError{Format: models.FormatWestpacCredit, Reason: ReasonNoHeader}
}

// parseTable handles one candidate grid; nil when its header does not match.
func (p *WestpacCreditParser) parseTable(table [][]string) *ParseResult {
	headerIdx := -1
	for i, row := range table {
		if len(row) >= 4 &&
			strings.Contains(strings.ToLower(row[0]), "date of") &&
			strings.EqualFold(strings.TrimSpace(row[1]), "description") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 || headerIdx+1 >= len(table) {
		return nil
	}

	data := table[headerIdx+1]
	if len(data) < 4 {
		return nil
	}

	dates := splitCell(data[0])
	descriptions := splitCell(data[1])
	debits := splitCell(data[2])
	credits := splitCell(data[3])
	if len(descriptions) == 0 {
		return nil
	}

	var records []models.RawRecord
	running := decimal.Zero
	debitIdx, creditIdx := 0, 0

	for i, desc := range descriptions {
		r := models.RawRecord{Description: collapseSpaces(desc)}
		if i < len(dates) {
			r.DateText = dates[i]
		}

		upper := strings.ToUpper(desc)
		isCredit := false
		for _, kw := range westpacCreditKeywords {
			if strings.Contains(upper, kw) {
				isCredit = true
				break
			}
		}

		var amt *decimal.Decimal
		if isCredit {
			if creditIdx < len(credits) {
				amt = normalize.Amount(credits[creditIdx])
				creditIdx++
			}
			if amt != nil {
				a := amt.Abs()
				r.CreditText = a.StringFixed(2)
				running = running.Add(a)
			}
		} else {
			if debitIdx < len(debits) {
				amt = normalize.Amount(debits[debitIdx])
				debitIdx++
			}
			if amt != nil {
				a := amt.Abs()
				r.DebitText = a.StringFixed(2)
				running = running.Sub(a)
			}
		}
		r.BalanceText = running.StringFixed(2)
		records = append(records, r)
	}

	if len(records) == 0 {
		return nil
	}

	period := models.Period{}
	// Altitude dates are "DD Mon YY" and carry their own year, so the
	// period is only a fallback for malformed cells.
	return &ParseResult{Records: records, Period: period}
}

// splitCell breaks a multi-line cell into its trimmed, non-empty entries.
func splitCell(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, "\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
