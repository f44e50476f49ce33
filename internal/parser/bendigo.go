package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// BendigoParser handles Bendigo Bank statements.
//
// Layout:
//
//	Date | Transaction | Withdrawals | Deposits | Balance
//
// Dates are "DD Mon YY". The last amount on an anchor line is the running
// balance and the one before it the transaction amount; debit/credit
// polarity is not positional here and is left to reconciliation. An
// "Opening balance $X" line becomes a synthetic anchor row, and a closing
// row is appended from the final balance.
type BendigoParser struct{}

func (p *BendigoParser) FormatName() string {
	return "Bendigo Bank"
}

var (
	bendigoDateAnchor = regexp.MustCompile(`^\d{1,2}\s+[A-Za-z]{3}\s+\d{2}$`)
	bendigoHeader     = "Date Transaction Withdrawals Deposits Balance"
	bendigoOpening    = regexp.MustCompile(`(?i)Opening\s+balance\s+\$?([\d,]+\.\d{2})`)
	bendigoNoise      = []string{"transaction totals", "opening balance", "continued", "bendigobank.com", "bendigoadelaide", "statement number"}
)

func (p *BendigoParser) Parse(doc *models.Document) (*ParseResult, error) {
	acc := accumulator{}
	openingBalance := ""
	headerSeen := false

	for _, page := range doc.Pages {
		if m := bendigoOpening.FindStringSubmatch(page.Text); m != nil && openingBalance == "" {
			openingBalance = m[1]
		}

		inTable := false
		for _, raw := range strings.Split(page.Text, "\n") {
			line := strings.TrimSpace(raw)
			if strings.Contains(line, bendigoHeader) {
				inTable = true
				headerSeen = true
				continue
			}
			if !inTable || line == "" {
				continue
			}
			if lineHasAny(line, bendigoNoise) {
				continue
			}

			parts := strings.Fields(line)
			dateCandidate := ""
			if len(parts) >= 3 {
				dateCandidate = strings.Join(parts[:3], " ")
			}

			if dateCandidate != "" && bendigoDateAnchor.MatchString(dateCandidate) {
				p.closeRecord(&acc)
				r := models.RawRecord{
					DateText:    dateCandidate,
					Description: strings.Join(parts[3:], " "),
				}
				if nums := extractAmounts(line); len(nums) > 0 {
					r.BalanceText = nums[len(nums)-1]
					if len(nums) >= 2 {
						r.AmountText = nums[len(nums)-2]
					}
				}
				acc.start(r)
			} else {
				acc.appendDescription(line)
			}
		}
	}
	p.closeRecord(&acc)

	if !headerSeen {
		return nil, &ParseError{Format: models.FormatBendigo, Reason: ReasonNoHeader}
	}
	records := acc.result()
	if len(records) == 0 {
		return nil, &ParseError{Format: models.FormatBendigo, Reason: ReasonNoDateAnchor}
	}

	// Synthetic open/close anchors around the real rows.
	closing := records[len(records)-1].BalanceText
	out := make([]models.RawRecord, 0, len(records)+2)
	if openingBalance != "" {
		out = append(out, models.RawRecord{
			Description: "Opening Balance",
			BalanceText: openingBalance,
			Synthetic:   true,
		})
	}
	out = append(out, records...)
	if closing != "" {
		out = append(out, models.RawRecord{
			Description: "Closing Balance",
			BalanceText: closing,
			Synthetic:   true,
		})
	}

	return &ParseResult{Records: out}, nil
}

// closeRecord drops balance-less fragments and scrubs amounts out of the
// description.
func (p *BendigoParser) closeRecord(acc *accumulator) {
	r := acc.current()
	if r == nil {
		return
	}
	if r.BalanceText == "" {
		acc.open = nil
		return
	}
	r.Description = stripAmounts(r.Description)
	acc.flush()
}
