package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Common amount and date patterns shared across the format parsers.
var (
	// 1,234.56 or 25.99
	amountPattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})*\.\d{2}`)
	// $1,234.56
	dollarAmountPattern = regexp.MustCompile(`\$[0-9,]+\.\d{2}`)
	// DD Mon YYYY (full date with year)
	fullDatePattern = regexp.MustCompile(`\b(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})\b`)
	// First four-digit 20xx year on a page
	yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)
)

// extractAmounts returns every monetary token on the line, left to right.
func extractAmounts(line string) []string {
	return amountPattern.FindAllString(line, -1)
}

// collapseSpaces squeezes runs of whitespace into single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripAmounts removes monetary tokens and currency symbols from description
// text, then normalizes spacing.
func stripAmounts(s string) string {
	s = dollarAmountPattern.ReplaceAllString(s, "")
	s = amountPattern.ReplaceAllString(s, "")
	s = strings.NewReplacer("$", "", "£", "", "€", "").Replace(s)
	return strings.Trim(collapseSpaces(s), " .,-")
}

// documentYear finds the first plausible year on the first page, for formats
// whose transaction dates omit it. Zero when absent.
func documentYear(doc *models.Document) int {
	if len(doc.Pages) == 0 {
		return 0
	}
	m := yearPattern.FindString(doc.Pages[0].Text)
	if m == "" {
		return 0
	}
	y := 0
	for _, c := range m {
		y = y*10 + int(c-'0')
	}
	return y
}

// yearPeriod builds a single-year period so year-less dates resolve to it.
func yearPeriod(year int) models.Period {
	if year == 0 {
		return models.Period{}
	}
	return models.Period{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// findPeriod scans text for a labeled statement period ("Statement Period
// 1 Oct 2023 - 31 Mar 2024" and variants). Falls back to the first two full
// dates found near a "period" mention. Zero when nothing matches.
var periodPattern = regexp.MustCompile(
	`(?i)statement\s*period\s*(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})\s*[-–—]\s*(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})`)

func findPeriod(text string) models.Period {
	flat := collapseSpaces(text)
	if m := periodPattern.FindStringSubmatch(flat); m != nil {
		return periodFromDates(m[1], m[2])
	}
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(strings.ToLower(line), "period") {
			continue
		}
		dates := fullDatePattern.FindAllString(line, 2)
		if len(dates) == 2 {
			return periodFromDates(dates[0], dates[1])
		}
	}
	return models.Period{}
}

func periodFromDates(start, end string) models.Period {
	s, errS := time.Parse("2 Jan 2006", collapseSpaces(start))
	e, errE := time.Parse("2 Jan 2006", collapseSpaces(end))
	if errS != nil || errE != nil {
		return models.Period{}
	}
	return models.Period{Start: s, End: e}
}

// lineHasAny reports case-insensitive substring membership of any needle.
func lineHasAny(line string, needles []string) bool {
	lower := strings.ToLower(line)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// accumulator models the currently-open record while a line parser scans a
// page: either idle or accumulating, so continuation-line merging and
// page-boundary carry-over stay testable in one place.
type accumulator struct {
	open    *models.RawRecord
	records []models.RawRecord
}

// start closes any open record and opens a new one.
func (a *accumulator) start(r models.RawRecord) {
	a.flush()
	a.open = &r
}

// active reports whether a record is currently accumulating.
func (a *accumulator) active() bool {
	return a.open != nil
}

// appendDescription adds a continuation line to the open record.
func (a *accumulator) appendDescription(s string) {
	if a.open == nil {
		return
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if a.open.Description == "" {
		a.open.Description = s
	} else {
		a.open.Description += " " + s
	}
}

// current returns the open record for in-place amount assignment.
func (a *accumulator) current() *models.RawRecord {
	return a.open
}

// emit appends a finished record directly, without touching the open one.
func (a *accumulator) emit(r models.RawRecord) {
	a.records = append(a.records, r)
}

// flush closes the open record, if any.
func (a *accumulator) flush() {
	if a.open != nil {
		a.records = append(a.records, *a.open)
		a.open = nil
	}
}

// result flushes and returns everything accumulated.
func (a *accumulator) result() []models.RawRecord {
	a.flush()
	return a.records
}
