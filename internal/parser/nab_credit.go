package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/normalize"
)

// NABCreditParser handles NAB business credit-card statements
// (Qantas Business Signature and the commercial cards layout).
//
// These statements carry an explicit table grid per page:
//
//	Date | Amount$ | Details | Explanation | ...
//
// Dates are compact "DDMonYYYY". The Amount$ column is a signed transaction
// amount — there is no balance column — so polarity is resolved here by
// sign and credit keywords, and the rows go out without balances.
type NABCreditParser struct{}

func (p *NABCreditParser) FormatName() string {
	return "NAB credit card"
}

var (
	nabCreditDate    = regexp.MustCompile(`^\d{1,2}[A-Za-z]{3}\d{4}$`)
	nabCreditKeyword = []string{"payment", "refund", "credit", "bpay"}
)

func (p *NABCreditParser) Parse(doc *models.Document) (*ParseResult, error) {
	var records []models.RawRecord
	tableSeen := false

	for _, page := range doc.Pages {
		for _, table := range page.Tables {
			if len(table) < 2 || !nabCreditHeader(table[0]) {
				continue
			}
			tableSeen = true

			for _, row := range table[1:] {
				if len(row) < 3 {
					continue
				}
				dateText := strings.TrimSpace(row[0])
				if dateText == "" || !nabCreditDate.MatchString(dateText) {
					continue
				}
				amount := normalize.Amount(row[1])
				details := collapseSpaces(strings.Trim(row[2], " .,-"))

				r := models.RawRecord{
					DateText:    dateText,
					Description: details,
				}
				switch {
				case amount == nil:
					// Row without a parseable amount still documents the
					// transaction; amount fields stay null.
				case amount.Sign() < 0 || lineHasAny(details, nabCreditKeyword):
					r.CreditText = amount.Abs().StringFixed(2)
				default:
					r.DebitText = amount.StringFixed(2)
				}
				records = append(records, r)
			}
		}
	}

	if !tableSeen {
		return nil, &ParseError{Format: models.FormatNABCredit, Reason: ReasonNoHeader}
	}
	if len(records) == 0 {
		return nil, &ParseError{Format: models.FormatNABCredit, Reason: ReasonNoDateAnchor}
	}

	return &ParseResult{Records: records}, nil
}

// nabCreditHeader recognizes the grid's header row by its first columns.
func nabCreditHeader(row []string) bool {
	if len(row) < 3 {
		return false
	}
	joined := strings.ToLower(strings.Join(row, " "))
	return strings.Contains(joined, "date") &&
		strings.Contains(joined, "amount") &&
		strings.Contains(joined, "details")
}
