package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// WestpacBusinessParser handles Westpac BusinessOne (and plain Westpac
// retail) statements.
//
// Layout:
//
//	Date | Transaction Description | Debit | Credit | Balance
//
// Dates are DD/MM/YY or DD/MM/YYYY at the line start. Wrapped description
// lines are merged into the preceding dated line before field extraction.
type WestpacBusinessParser struct{}

func (p *WestpacBusinessParser) FormatName() string {
	return "Westpac BusinessOne"
}

var (
	westpacDateAnchor = regexp.MustCompile(`^\s*(\d{2}/\d{2}/\d{2,4})\b`)
	westpacHeader     = "DATE TRANSACTION DESCRIPTION DEBIT CREDIT BALANCE"
	westpacFooter     = []string{"WESTPAC", "STATEMENT NO", "PAGE", "PLEASE CHECK", "ABN", "AFSL"}
	// Amounts valid as statement figures: up to five plain digits or any
	// comma-grouped number, two decimals.
	westpacPlainAmount = regexp.MustCompile(`^\d{1,5}(\.\d{2})?$`)
	westpacGroupAmount = regexp.MustCompile(`^[\d,]+(\.\d{2})?$`)
	westpacNumToken    = regexp.MustCompile(`[\d,]+(?:\.\d{2})?`)
	westpacDepositPair = regexp.MustCompile(`\s*\d{1,3}(?:,\d{3})*(?:\.\d{2})\s*\d{1,3}(?:,\d{3})*(?:\.\d{2})`)
)

func (p *WestpacBusinessParser) Parse(doc *models.Document) (*ParseResult, error) {
	var records []models.RawRecord
	headerSeen := false

	for _, page := range doc.Pages {
		lines := nonEmptyLines(page.Text)

		start := -1
		for i, line := range lines {
			if strings.Contains(strings.ToUpper(line), westpacHeader) {
				start = i + 1
				break
			}
		}
		if start < 0 {
			continue
		}
		headerSeen = true

		// Table body ends at the first footer line.
		var body []string
		for _, line := range lines[start:] {
			if lineHasAny(strings.ToUpper(line), westpacFooter) {
				break
			}
			body = append(body, line)
		}

		// Merge wrapped description lines into their dated line.
		var merged []string
		for _, line := range body {
			if westpacDateAnchor.MatchString(line) {
				merged = append(merged, line)
			} else if len(merged) > 0 {
				merged[len(merged)-1] += " " + line
			}
		}

		for _, line := range merged {
			if r, ok := p.parseLine(line); ok {
				records = append(records, r)
			}
		}
	}

	if !headerSeen {
		return nil, &ParseError{Format: models.FormatWestpacBusiness, Reason: ReasonNoHeader}
	}
	if len(records) == 0 {
		return nil, &ParseError{Format: models.FormatWestpacBusiness, Reason: ReasonNoDateAnchor}
	}

	return &ParseResult{Records: records}, nil
}

func (p *WestpacBusinessParser) parseLine(line string) (models.RawRecord, bool) {
	m := westpacDateAnchor.FindStringSubmatch(line)
	if m == nil {
		return models.RawRecord{}, false
	}
	date := m[1]
	rest := strings.TrimSpace(line[strings.Index(line, date)+len(date):])

	// Deposits often show exactly amount+balance as two comma-grouped
	// figures; that pairing is unambiguous.
	if big := extractAmounts(rest); len(big) == 2 && strings.Contains(strings.ToLower(rest), "deposit") {
		desc := westpacDepositPair.ReplaceAllString(rest, "")
		return models.RawRecord{
			DateText:    date,
			Description: collapseSpaces(strings.TrimSpace(desc)),
			CreditText:  big[0],
			BalanceText: big[1],
		}, true
	}

	var valid []string
	for _, tok := range westpacNumToken.FindAllString(rest, -1) {
		if isWestpacAmount(tok) {
			valid = append(valid, tok)
		}
	}
	if len(valid) == 0 {
		return models.RawRecord{}, false
	}

	// Right-trim the numeric tokens to get the description.
	desc := rest
	for i := len(valid) - 1; i >= 0; i-- {
		if idx := strings.LastIndex(desc, valid[i]); idx >= 0 {
			desc = desc[:idx] + desc[idx+len(valid[i]):]
		}
	}
	desc = strings.Trim(collapseSpaces(desc), " -")

	r := models.RawRecord{
		DateText:    date,
		Description: desc,
		BalanceText: valid[len(valid)-1],
	}
	switch {
	case len(valid) >= 3:
		r.DebitText = valid[len(valid)-3]
		r.CreditText = valid[len(valid)-2]
	case len(valid) == 2:
		// One amount plus balance; direction left to reconciliation.
		r.AmountText = valid[0]
	}
	return r, true
}

func isWestpacAmount(tok string) bool {
	plain := strings.ReplaceAll(tok, ",", "")
	if westpacPlainAmount.MatchString(plain) {
		return true
	}
	return strings.Contains(tok, ",") && westpacGroupAmount.MatchString(tok)
}
