package parser

import (
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/layout"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

// GenericParser handles arbitrary tabular statements with no format-specific
// knowledge. It finds a header line carrying at least three of the five
// canonical column roles, derives column buckets from the header keywords'
// horizontal centers, and assigns every later word to the bucket containing
// its own center. Pages without a recognizable header are skipped; the
// document fails only when no page yields one.
type GenericParser struct{}

func (p *GenericParser) FormatName() string {
	return "Generic tabular statement"
}

// Canonical column roles in precedence order.
const (
	roleDate        = "date"
	roleDescription = "description"
	roleDebit       = "debit"
	roleCredit      = "credit"
	roleBalance     = "balance"
)

var roleOrder = []string{roleDate, roleDescription, roleDebit, roleCredit, roleBalance}

// headerAliases maps each role to the header labels that denote it.
var headerAliases = map[string][]string{
	roleDate: {"date", "txn date", "value date"},
	roleDescription: {
		"transaction", "particulars", "description",
		"transaction description", "narration", "details",
	},
	roleDebit:   {"debit", "withdrawal", "debits", "withdrawals", "amount withdrawn", "debit amt"},
	roleCredit:  {"credit", "deposit", "credits", "deposits", "amount deposited", "credit amt"},
	roleBalance: {"balance", "closing balance", "running balance"},
}

// countRoleHits counts how many roles have at least one alias present in the
// text. Used both for header detection and by the detector's Generic-versus-
// Unknown decision.
func countRoleHits(text string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, names := range headerAliases {
		for _, n := range names {
			if strings.Contains(lower, n) {
				hits++
				break
			}
		}
	}
	return hits
}

// columnSpec is one detected header column: its role and horizontal center.
type columnSpec struct {
	role   string
	center float64
}

// normalizeHeaderToken maps a header word to its role, or "".
func normalizeHeaderToken(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	compact := strings.ReplaceAll(t, " ", "")
	for _, role := range roleOrder {
		for _, n := range headerAliases[role] {
			if t == n || compact == strings.ReplaceAll(n, " ", "") {
				return role
			}
		}
	}
	return ""
}

// isHeaderLine reports whether a line names at least three column roles.
func isHeaderLine(line layout.Line) bool {
	return countRoleHits(line.Text()) >= 3
}

// buildColumns derives the column layout from a header line: the first
// keyword hit per role becomes that role's center, roles come out in
// canonical order, and bucket boundaries are the midpoints between adjacent
// centers. Fewer than three tagged roles means no usable layout.
func buildColumns(header layout.Line) ([]columnSpec, []float64) {
	centers := make(map[string]float64)
	for _, w := range header.Words {
		role := normalizeHeaderToken(w.Text)
		if role == "" {
			continue
		}
		if _, seen := centers[role]; !seen {
			centers[role] = w.XCenter()
		}
	}

	var specs []columnSpec
	for _, role := range roleOrder {
		if c, ok := centers[role]; ok {
			specs = append(specs, columnSpec{role: role, center: c})
		}
	}
	if len(specs) < 3 {
		return nil, nil
	}

	splits := make([]float64, 0, len(specs)-1)
	for i := 1; i < len(specs); i++ {
		splits = append(splits, (specs[i-1].center+specs[i].center)/2)
	}
	return specs, splits
}

// bucketWords assigns each word of a line to the column bucket whose
// boundary range contains the word's horizontal center, then joins the words
// per bucket into cell text.
func bucketWords(line layout.Line, specs []columnSpec, splits []float64) map[string]string {
	cells := make(map[string][]string, len(specs))
	for _, w := range line.Words {
		idx := 0
		for idx < len(splits) && w.XCenter() > splits[idx] {
			idx++
		}
		if idx >= len(specs) {
			idx = len(specs) - 1
		}
		role := specs[idx].role
		cells[role] = append(cells[role], w.Text)
	}

	out := make(map[string]string, len(specs))
	for role, words := range cells {
		out[role] = strings.TrimSpace(strings.Join(words, " "))
	}
	return out
}

// Non-transaction boilerplate dropped unless a usable balance is present.
var genericNoise = []string{
	"opening balance", "closing balance", "total", "page",
	"statement", "interest charged",
}

func (p *GenericParser) Parse(doc *models.Document) (*ParseResult, error) {
	period := models.Period{}
	for _, page := range doc.Pages {
		if per := findPeriod(page.Text); !per.IsZero() {
			period = per
			break
		}
	}

	var rows []models.RawRecord
	headerSeen := false

	// Headers may repeat on later pages, so detection runs per page; the
	// redundant recomputation for identical layouts is accepted for
	// simplicity.
	for _, page := range doc.Pages {
		lines := layout.Lines(page.Words)
		headerIdx := -1
		for i, line := range lines {
			if isHeaderLine(line) {
				headerIdx = i
				break
			}
		}
		if headerIdx < 0 {
			continue
		}
		specs, splits := buildColumns(lines[headerIdx])
		if specs == nil {
			continue
		}
		headerSeen = true

		for _, line := range lines[headerIdx+1:] {
			cells := bucketWords(line, specs, splits)
			r := models.RawRecord{
				DateText:    cells[roleDate],
				Description: cells[roleDescription],
				DebitText:   lastAmountToken(cells[roleDebit]),
				CreditText:  lastAmountToken(cells[roleCredit]),
				BalanceText: lastAmountToken(stripBalanceSuffix(cells[roleBalance])),
			}
			if r.DateText == "" && r.Description == "" &&
				r.DebitText == "" && r.CreditText == "" && r.BalanceText == "" {
				continue
			}
			rows = append(rows, r)
		}
	}

	if !headerSeen {
		return nil, &ParseError{Format: models.FormatGeneric, Reason: ReasonNoHeader}
	}

	merged := mergeContinuationRows(rows)
	records := filterGenericNoise(merged)
	if len(records) == 0 {
		return nil, &ParseError{Format: models.FormatGeneric, Reason: ReasonNoDateAnchor}
	}

	return &ParseResult{Records: records, Period: period}, nil
}

// mergeContinuationRows folds rows without a date bucket into the previous
// row: descriptions concatenate, amount buckets fill only when still empty.
func mergeContinuationRows(rows []models.RawRecord) []models.RawRecord {
	var merged []models.RawRecord
	for _, r := range rows {
		if len(merged) > 0 && r.DateText == "" {
			prev := &merged[len(merged)-1]
			if r.Description != "" {
				prev.Description = strings.TrimSpace(prev.Description + " " + r.Description)
			}
			if prev.DebitText == "" {
				prev.DebitText = r.DebitText
			}
			if prev.CreditText == "" {
				prev.CreditText = r.CreditText
			}
			if prev.BalanceText == "" {
				prev.BalanceText = r.BalanceText
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// filterGenericNoise drops boilerplate rows, keeping balance-carrying ones
// as synthetic anchors.
func filterGenericNoise(rows []models.RawRecord) []models.RawRecord {
	var out []models.RawRecord
	for _, r := range rows {
		noisy := lineHasAny(r.Description, genericNoise)
		hasAmount := r.DebitText != "" || r.CreditText != ""
		switch {
		case noisy && !hasAmount && r.BalanceText != "":
			out = append(out, models.RawRecord{
				Description: collapseSpaces(r.Description),
				BalanceText: r.BalanceText,
				Synthetic:   true,
			})
		case noisy && !hasAmount:
			// Page numbers, footers, label-only totals.
		case r.DateText == "" && !r.HasAmount():
			// Stray description fragment with nothing attached.
		default:
			r.Description = collapseSpaces(r.Description)
			out = append(out, r)
		}
	}
	return out
}

// lastAmountToken keeps only the final monetary token of a cell, guarding
// against descriptions spilling into amount buckets.
func lastAmountToken(cell string) string {
	if cell == "" {
		return ""
	}
	m := extractAmounts(cell)
	if len(m) == 0 {
		return ""
	}
	return m[len(m)-1]
}

// stripBalanceSuffix removes CR/DR qualifiers so the numeric token parses.
func stripBalanceSuffix(cell string) string {
	cell = strings.ReplaceAll(cell, "CR", "")
	cell = strings.ReplaceAll(cell, "DR", "")
	return strings.TrimSpace(cell)
}
