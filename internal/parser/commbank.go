package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// CommBankParser handles Commonwealth Bank transaction-account statements.
//
// Layout:
//
//	Date | Transaction | Debit | Credit | Balance
//
// Records do not align with physical lines: a record runs until its balance
// token, which carries a CR or DR qualifier. The text after the header is
// therefore flattened and re-segmented on those qualifiers. Dates are
// "DD Mon" without a year; the statement period (mandatory on page one) is
// used to resolve years across a December/January boundary.
type CommBankParser struct{}

func (p *CommBankParser) FormatName() string {
	return "Commonwealth Bank"
}

const commbankHeader = "Date Transaction Debit Credit Balance"

var (
	commbankDate    = regexp.MustCompile(`(?i)(\d{2}\s+[A-Za-z]{3})(?:\s+\d{4})?`)
	commbankBalance = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*\.\d{2})\s*(CR|DR)`)
)

func (p *CommBankParser) Parse(doc *models.Document) (*ParseResult, error) {
	if len(doc.Pages) == 0 {
		return nil, &ParseError{Format: models.FormatCommBank, Reason: ReasonNoHeader}
	}

	period := findPeriod(doc.Pages[0].Text)
	if period.IsZero() {
		return nil, &ParseError{Format: models.FormatCommBank, Reason: ReasonNoPeriod}
	}

	// Concatenate everything after the header on each page.
	var body strings.Builder
	for _, page := range doc.Pages {
		if idx := strings.Index(page.Text, commbankHeader); idx >= 0 {
			body.WriteString("\n")
			body.WriteString(page.Text[idx+len(commbankHeader):])
		}
	}
	if strings.TrimSpace(body.String()) == "" {
		return nil, &ParseError{Format: models.FormatCommBank, Reason: ReasonNoHeader}
	}

	flat := collapseSpaces(body.String())
	flat = strings.ReplaceAll(flat, "$ ", "$")

	var records []models.RawRecord
	for _, seg := range splitOnBalanceQualifier(flat) {
		if r, ok := p.parseSegment(seg); ok {
			records = append(records, r)
		}
	}
	if len(records) == 0 {
		return nil, &ParseError{Format: models.FormatCommBank, Reason: ReasonNoDateAnchor}
	}

	return &ParseResult{Records: records, Period: period}, nil
}

// splitOnBalanceQualifier cuts the flattened table body after each qualified
// balance token, yielding one segment per logical record. The cut anchors on
// the full amount-plus-qualifier pattern: a bare "DR" inside a description
// ("DR SMITH MEDICAL") must not end a record.
func splitOnBalanceQualifier(flat string) []string {
	var segs []string
	start := 0
	for _, loc := range commbankBalance.FindAllStringIndex(flat, -1) {
		if seg := strings.TrimSpace(flat[start:loc[1]]); seg != "" {
			segs = append(segs, seg)
		}
		start = loc[1]
	}
	if tail := strings.TrimSpace(flat[start:]); tail != "" {
		segs = append(segs, tail)
	}
	return segs
}

// parseSegment extracts one record from a CR/DR-terminated segment: the
// balance is the qualified amount, the candidate amount is the rightmost
// amount left of it, the description is what remains.
func (p *CommBankParser) parseSegment(seg string) (models.RawRecord, bool) {
	balMatch := commbankBalance.FindStringSubmatchIndex(seg)
	if balMatch == nil {
		return models.RawRecord{}, false
	}
	balance := seg[balMatch[2]:balMatch[3]]
	balancePos := balMatch[2]

	dateText := ""
	if m := commbankDate.FindStringSubmatch(seg); m != nil {
		dateText = m[1]
	}

	// Rightmost amount strictly left of the balance token; failing that, the
	// last amount anywhere else on the segment.
	candidate, fallback := "", ""
	for _, loc := range amountPattern.FindAllStringIndex(seg, -1) {
		if loc[0] == balancePos {
			continue
		}
		if loc[0] < balancePos {
			candidate = seg[loc[0]:loc[1]]
		} else {
			fallback = seg[loc[0]:loc[1]]
		}
	}
	if candidate == "" {
		candidate = fallback
	}

	desc := seg
	if dateText != "" {
		desc = strings.Replace(desc, dateText, "", 1)
	}
	desc = strings.Replace(desc, balance, "", 1)
	desc = stripAmounts(desc)
	desc = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(desc, "CR"), "DR"))

	return models.RawRecord{
		DateText:    dateText,
		Description: collapseSpaces(desc),
		AmountText:  candidate,
		BalanceText: balance,
	}, true
}
