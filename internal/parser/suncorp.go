package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// SuncorpParser handles Suncorp Bank statements.
//
// Layout:
//
//	Date | Transaction Details | Withdrawal | Deposit | Balance
//
// Dates are fully spelled out ("12 March 2024"). Pages carry heavy footer
// boilerplate, fenced off by keyword. BALANCE BROUGHT/CARRIED FORWARD and
// OPENING/CLOSING BALANCE lines become synthetic anchor rows; a carried-
// forward balance is re-emitted at the end of its page so cross-page
// reconciliation keeps its anchor.
type SuncorpParser struct{}

func (p *SuncorpParser) FormatName() string {
	return "Suncorp Bank"
}

const suncorpHeader = "Date Transaction Details Withdrawal Deposit Balance"

var (
	suncorpDateAnchor = regexp.MustCompile(`^(\d{1,2}\s\w+\s\d{4})\s+(.*)`)
	suncorpFooter     = []string{
		"Statement No:", "Details are continued", "Suncorp Bank",
		"Norfina", "GPO Box", "Brisbane", "AFSL", "Page",
		"contact us", "complaint", "Important information",
		"Protecting your property", "Summary of Interest",
	}
)

func (p *SuncorpParser) Parse(doc *models.Document) (*ParseResult, error) {
	var records []models.RawRecord
	headerSeen := false

	for _, page := range doc.Pages {
		if !strings.Contains(page.Text, suncorpHeader) {
			continue
		}
		headerSeen = true

		body := strings.SplitN(page.Text, suncorpHeader, 2)[1]
		body = fenceFooter(body)
		if idx := strings.Index(strings.ToUpper(body), "CLOSING BALANCE"); idx >= 0 {
			// Keep the closing-balance line itself, drop what follows.
			if nl := strings.Index(body[idx:], "\n"); nl >= 0 {
				body = body[:idx+nl]
			}
		}

		acc := accumulator{}
		var carried *models.RawRecord

		for _, raw := range strings.Split(body, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			upper := strings.ToUpper(line)

			if strings.Contains(upper, "BALANCE CARRIED FORWARD") {
				if amts := extractAmounts(line); len(amts) > 0 {
					carried = &models.RawRecord{
						Description: collapseSpaces(line),
						BalanceText: amts[len(amts)-1],
						Synthetic:   true,
					}
				}
				continue
			}
			if strings.Contains(upper, "BALANCE BROUGHT FORWARD") ||
				strings.Contains(upper, "OPENING BALANCE") ||
				strings.Contains(upper, "CLOSING BALANCE") {
				if amts := extractAmounts(line); len(amts) > 0 {
					acc.flush()
					acc.emit(models.RawRecord{
						Description: collapseSpaces(line),
						BalanceText: amts[len(amts)-1],
						Synthetic:   true,
					})
				}
				continue
			}

			if m := suncorpDateAnchor.FindStringSubmatch(line); m != nil {
				rest := m[2]
				r := models.RawRecord{
					DateText:    m[1],
					Description: stripAmounts(rest),
				}
				switch amts := extractAmounts(rest); len(amts) {
				case 0:
				case 1:
					r.BalanceText = amts[0]
				default:
					r.AmountText = amts[0]
					r.BalanceText = amts[len(amts)-1]
				}
				acc.start(r)
			} else {
				// Wrapped lines may carry the amounts the anchor line lacked.
				if r := acc.current(); r != nil && r.BalanceText == "" {
					switch amts := extractAmounts(line); len(amts) {
					case 0:
					case 1:
						r.BalanceText = amts[0]
					default:
						r.AmountText = amts[0]
						r.BalanceText = amts[len(amts)-1]
					}
				}
				acc.appendDescription(stripAmounts(line))
			}
		}
		acc.flush()

		pageRecords := acc.result()
		if carried != nil {
			pageRecords = append(pageRecords, *carried)
		}
		records = append(records, pageRecords...)
	}

	if !headerSeen {
		return nil, &ParseError{Format: models.FormatSuncorp, Reason: ReasonNoHeader}
	}
	if len(records) == 0 {
		return nil, &ParseError{Format: models.FormatSuncorp, Reason: ReasonNoDateAnchor}
	}

	return &ParseResult{Records: records}, nil
}

// fenceFooter truncates page text at the first footer keyword line.
func fenceFooter(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if lineHasAny(line, suncorpFooter) {
			break
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
