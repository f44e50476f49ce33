package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/normalize"
)

// CommBankCreditParser handles Commonwealth credit-card statements
// (Ultimate Awards / Low Rate Mastercard).
//
// Each transaction line starts with a "DD Mon" date and ends with a signed
// amount: a trailing minus marks payments and refunds (money in). The
// statement shows no running balance, so one is synthesized by accumulating
// the signed amounts; polarity is decided here, not by reconciliation.
type CommBankCreditParser struct{}

func (p *CommBankCreditParser) FormatName() string {
	return "Commonwealth Bank credit card"
}

var (
	commbankCreditAnchor = regexp.MustCompile(`^\s*\d{1,2}\s*[A-Za-z]{3}`)
	commbankCreditAmount = regexp.MustCompile(`^\$?[\d,]+\.\d{2}-?$`)
)

// Summary-panel lines that match the date anchor but are not transactions.
var commbankCreditNoise = []string{
	"available credit", "minimum payment", "total amount owing",
	"saving", "balance", "tot", "years",
}

func (p *CommBankCreditParser) Parse(doc *models.Document) (*ParseResult, error) {
	var records []models.RawRecord
	running := decimal.Zero

	year := 0
	for _, page := range doc.Pages {
		if y := yearPattern.FindString(page.Text); y != "" {
			year = atoiDigits(y)
			break
		}
	}
	period := yearPeriod(year)

	for _, page := range doc.Pages {
		for _, raw := range strings.Split(page.Text, "\n") {
			line := strings.TrimSpace(raw)
			if !commbankCreditAnchor.MatchString(line) {
				continue
			}

			parts := strings.Fields(line)
			if len(parts) < 3 {
				continue
			}
			last := parts[len(parts)-1]
			if !commbankCreditAmount.MatchString(last) {
				continue
			}

			desc := strings.Join(parts[2:len(parts)-1], " ")
			if lineHasAny(desc, commbankCreditNoise) {
				continue
			}

			// Trailing minus means money in; normalize handles the sign.
			// Purchases (positive) push the synthesized balance down,
			// payments push it up, so the balance column stays explainable
			// as prev + credit - debit.
			amt := normalize.Amount(last)
			if amt == nil {
				continue
			}
			running = running.Sub(*amt)

			r := models.RawRecord{
				DateText:    parts[0] + " " + parts[1],
				Description: collapseSpaces(desc),
				BalanceText: running.StringFixed(2),
			}
			if amt.Sign() < 0 {
				r.CreditText = amt.Abs().StringFixed(2)
			} else {
				r.DebitText = amt.StringFixed(2)
			}
			records = append(records, r)
		}
	}

	if len(records) == 0 {
		return nil, &ParseError{Format: models.FormatCommBankCredit, Reason: ReasonNoDateAnchor}
	}

	return &ParseResult{Records: records, Period: period}, nil
}

func atoiDigits(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
