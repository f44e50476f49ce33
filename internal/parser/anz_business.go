package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// ANZBusinessParser handles ANZ Business Essentials statements.
//
// Layout:
//
//	Date | Transaction Details | Withdrawals ($) | Deposits ($) | Balance ($)
//
// Dates are "DD Mon" without a year; the year is read from the first page.
// Amount columns arrive as a trailing triple on some line of the record,
// with the literal word "blank" standing in for an empty cell.
type ANZBusinessParser struct{}

func (p *ANZBusinessParser) FormatName() string {
	return "ANZ Business Essentials"
}

var (
	anzBizDateAnchor = regexp.MustCompile(`^(\d{2} [A-Za-z]{3})\b`)
	// withdrawal deposit balance at line end; "blank" is an empty cell
	anzBizAmountTriple = regexp.MustCompile(`([\d.,]+|blank)\s+([\d.,]+|blank)\s+([\d.,]+)$`)
	anzBizSkip         = []string{"TOTALS AT END", "Withdrawals ($)"}
	// Internal reference codes that leak into descriptions.
	anzBizRefCodes = []*regexp.Regexp{
		regexp.MustCompile(`XPRCAP\d+-\d+`),
		regexp.MustCompile(`RTBSP\d+`),
	}
	anzBizHeaderFragment = regexp.MustCompile(`Withdrawals \(\$\).*`)
)

func (p *ANZBusinessParser) Parse(doc *models.Document) (*ParseResult, error) {
	period := yearPeriod(documentYear(doc))

	acc := accumulator{}
	headerSeen := false

	for _, page := range doc.Pages {
		if !strings.Contains(page.Text, "Date Transaction Details") {
			continue
		}
		headerSeen = true
		reading := false

		for _, raw := range strings.Split(page.Text, "\n") {
			line := strings.TrimSpace(raw)

			if strings.Contains(line, "Date Transaction Details") {
				reading = true
				continue
			}
			if !reading || line == "" || yearPattern.MatchString(line) && len(strings.Fields(line)) == 1 {
				continue
			}
			if lineHasAny(line, anzBizSkip) || strings.HasPrefix(line, "Page") {
				continue
			}

			if m := anzBizDateAnchor.FindStringSubmatch(line); m != nil {
				p.closeRecord(&acc)
				acc.start(models.RawRecord{DateText: m[1]})
				line = strings.TrimSpace(strings.TrimPrefix(line, m[1]))
			}

			if m := anzBizAmountTriple.FindStringSubmatch(line); m != nil && acc.active() {
				r := acc.current()
				r.DebitText = blankToEmpty(m[1])
				r.CreditText = blankToEmpty(m[2])
				r.BalanceText = m[3]
				if left := strings.TrimSpace(line[:strings.LastIndex(line, m[3])]); left != "" {
					acc.appendDescription(left)
				}
			} else {
				acc.appendDescription(line)
			}
		}
	}
	p.closeRecord(&acc)

	if !headerSeen {
		return nil, &ParseError{Format: models.FormatANZBusiness, Reason: ReasonNoHeader}
	}
	records := acc.result()
	if len(records) == 0 {
		return nil, &ParseError{Format: models.FormatANZBusiness, Reason: ReasonNoDateAnchor}
	}

	return &ParseResult{Records: records, Period: period}, nil
}

// closeRecord finalizes the open record. An OPENING BALANCE record becomes a
// synthetic balance-only anchor; everything else gets its description
// cleaned of reference codes, amounts and header fragments.
func (p *ANZBusinessParser) closeRecord(acc *accumulator) {
	r := acc.current()
	if r == nil {
		return
	}

	if strings.Contains(strings.ToUpper(r.Description), "OPENING BALANCE") {
		bal := r.BalanceText
		if bal == "" {
			if amounts := extractAmounts(r.Description); len(amounts) > 0 {
				bal = amounts[0]
			}
		}
		acc.open = nil
		if bal != "" {
			acc.emit(models.RawRecord{
				Description: "Opening Balance",
				BalanceText: bal,
				Synthetic:   true,
			})
		}
		return
	}

	desc := r.Description
	// Amount columns restated mid-description (wrapped header fragments).
	desc = anzBizHeaderFragment.ReplaceAllString(desc, "")
	for _, re := range anzBizRefCodes {
		desc = re.ReplaceAllString(desc, "")
	}
	desc = strings.ReplaceAll(desc, "blank", "")
	r.Description = stripAmounts(desc)
	acc.flush()
}

func blankToEmpty(s string) string {
	if s == "blank" {
		return ""
	}
	return s
}
