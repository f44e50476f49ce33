package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// ANZParser handles ANZ Plus transaction-account statements.
//
// Layout:
//
//	Date | Description | Credit | Debit | Balance
//
// Date format: DD Mon without a year (e.g. "4 Dec"); the statement year is
// read from the first page. Each record closes when it has collected two
// $-amounts: the transaction amount and the running balance.
type ANZParser struct{}

func (p *ANZParser) FormatName() string {
	return "ANZ Plus"
}

var (
	anzDateAnchor   = regexp.MustCompile(`^\d{1,2} [A-Za-z]{3}$`)
	anzTableHeader  = "Date Description Credit Debit Balance"
	anzFooterMarker = []string{"Australia and New Zealand Banking Group", "Page "}
	// "Please check..." and similar trailing notices polluting descriptions.
	anzNoticePattern = regexp.MustCompile(`(?i)Please check.*`)
)

func (p *ANZParser) Parse(doc *models.Document) (*ParseResult, error) {
	period := yearPeriod(documentYear(doc))

	acc := accumulator{}
	anchored := false

	for _, page := range doc.Pages {
		lines := nonEmptyLines(page.Text)

		// Resume below the column header when the page restates it.
		for i, line := range lines {
			if strings.Contains(line, anzTableHeader) {
				lines = lines[i+1:]
				break
			}
		}

		for _, line := range lines {
			if lineHasAny(line, anzFooterMarker) {
				break
			}

			parts := strings.Fields(line)
			anchor := ""
			if len(parts) >= 2 {
				candidate := parts[0] + " " + parts[1]
				if anzDateAnchor.MatchString(candidate) {
					anchor = candidate
				}
			}

			if anchor != "" {
				p.closeRecord(&acc)
				anchored = true
				acc.start(models.RawRecord{
					DateText:    anchor,
					Description: strings.Join(parts[2:], " "),
				})
			} else if !dollarAmountPattern.MatchString(line) {
				acc.appendDescription(line)
			}

			// Amount pair may arrive on the anchor line or a later one.
			if amounts := dollarAmountPattern.FindAllString(line, -1); len(amounts) == 2 && acc.active() {
				r := acc.current()
				r.AmountText = amounts[0]
				r.BalanceText = amounts[1]
			}
		}
	}
	p.closeRecord(&acc)

	records := acc.result()
	if !anchored {
		return nil, &ParseError{Format: models.FormatANZ, Reason: ReasonNoDateAnchor}
	}

	return &ParseResult{Records: records, Period: period}, nil
}

// closeRecord finalizes the open record: records without both amounts are
// dropped (fragment rows), and the description loses its amount tokens and
// trailing notices.
func (p *ANZParser) closeRecord(acc *accumulator) {
	r := acc.current()
	if r == nil {
		return
	}
	if r.AmountText == "" || r.BalanceText == "" {
		acc.open = nil
		return
	}
	r.Description = stripAmounts(anzNoticePattern.ReplaceAllString(r.Description, ""))
	acc.flush()
}

// nonEmptyLines splits page text into trimmed, non-blank lines.
func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
