// Package parser turns layout-backend documents into raw transaction
// records. It holds the format detector and one parsing strategy per
// recognized statement layout, plus a generic column-bucketing strategy for
// tabular statements no specific rule claims.
package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// ParseResult is what a format parser recovers from one document.
type ParseResult struct {
	Records []models.RawRecord
	Period  models.Period
}

// Parser is the contract every format strategy implements.
type Parser interface {
	// Parse consumes all pages and returns raw candidate records.
	Parse(doc *models.Document) (*ParseResult, error)
	// FormatName returns the human-readable format name.
	FormatName() string
}

// ParseError reports a structural failure: the parser found no recognizable
// transaction table or date anchor anywhere in the document. Field-level
// issues never surface here; they are recovered by nulling the field.
type ParseError struct {
	Format models.FormatID
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parser: %s", e.Format, e.Reason)
}

// Structural failure reasons.
const (
	ReasonNoHeader     = "no transaction table header found"
	ReasonNoDateAnchor = "no date-anchored transaction line found"
	ReasonNoPeriod     = "statement period not found"
)

// New returns the parser for the given format. The set is closed: adding a
// format means adding a FormatID and a strategy here, never probing.
func New(format models.FormatID) (Parser, error) {
	switch format {
	case models.FormatANZ:
		return &ANZParser{}, nil
	case models.FormatANZBusiness:
		return &ANZBusinessParser{}, nil
	case models.FormatCommBank:
		return &CommBankParser{}, nil
	case models.FormatCommBankCredit:
		return &CommBankCreditParser{}, nil
	case models.FormatNABCredit:
		return &NABCreditParser{}, nil
	case models.FormatWestpacBusiness:
		return &WestpacBusinessParser{}, nil
	case models.FormatWestpacCredit:
		return &WestpacCreditParser{}, nil
	case models.FormatBendigo:
		return &BendigoParser{}, nil
	case models.FormatSuncorp:
		return &SuncorpParser{}, nil
	case models.FormatGeneric:
		return &GenericParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported statement format: %q", format)
	}
}

// Detect classifies a document from the text of its first two pages. Rules
// run in a fixed priority order: credit-card and business-account signatures
// before bare bank-name matches, so a retail statement is never confused
// with its credit-card counterpart. Detection never fails — when no variant
// fires the result is Generic if generic table markers are present, Unknown
// otherwise; failing, if it comes to that, belongs to the parse stage.
func Detect(pages []string) models.FormatID {
	var sb strings.Builder
	for i, p := range pages {
		if i >= 2 {
			break
		}
		sb.WriteString("\n")
		sb.WriteString(p)
	}
	text := strings.ToLower(sb.String())

	hit := func(needle string) bool { return strings.Contains(text, needle) }
	anyOf := func(needles ...string) bool {
		for _, n := range needles {
			if hit(n) {
				return true
			}
		}
		return false
	}

	// NAB credit card first: its signatures are the most specific.
	switch {
	case hit("nab qantas business signature"),
		hit("nab commercial cards centre"),
		hit("transaction record for:") && hit("amount not"),
		hit("amount not") && hit("gst component") && hit("reference") &&
			hit("details") && hit("amount $"):
		return models.FormatNABCredit
	}

	if anyOf("commonwealth", "commbank") {
		// The credit-card variant needs a product keyword on top of the bank
		// name; the bank name alone means the retail statement.
		if anyOf("ultimate awards credit card", "low rate mastercard", "credit card") {
			return models.FormatCommBankCredit
		}
		return models.FormatCommBank
	}

	if hit("anz business essentials statement") {
		return models.FormatANZBusiness
	}
	if hit("anz plus") {
		return models.FormatANZ
	}

	if anyOf("bendigo", "bendigobank") {
		return models.FormatBendigo
	}
	if hit("suncorp") {
		return models.FormatSuncorp
	}

	if hit("westpac") {
		if (hit("altitude") && hit("mastercard")) ||
			hit("altitude business platinum") ||
			(hit("credit card") && hit("closing balance")) {
			return models.FormatWestpacCredit
		}
		// Business One and the plain retail layout share a parser.
		return models.FormatWestpacBusiness
	}

	if countRoleHits(text) >= 3 {
		return models.FormatGeneric
	}
	return models.FormatUnknown
}
