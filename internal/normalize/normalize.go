// Package normalize canonicalizes heterogeneous monetary and date tokens.
//
// Amounts become two-decimal-place decimals; dates become calendar dates,
// with the statement period resolving year-less tokens. Both return nil for
// unparseable input rather than failing, so a single bad token never aborts
// a document.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

var (
	// 15/01/2024, 15/1/24
	dateSlash = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	// 15-01-2024 (already-canonical form)
	dateDash = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	// 15 Jan, 15 Jan 24, 15 Jan 2024, 15 January 2024
	dateText = regexp.MustCompile(`(?i)^(\d{1,2})\s+([A-Za-z]{3,9})\.?(?:\s+(\d{2,4}))?$`)
	// 17Dec2024
	dateCompact = regexp.MustCompile(`(?i)^(\d{1,2})([A-Za-z]{3})(\d{4})$`)
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Amount converts a monetary token to a two-decimal-place value. Currency
// symbols, thousands separators and spacing are stripped; parenthesized or
// minus-suffixed tokens become negative. Returns nil when no number remains.
func Amount(text string) *decimal.Decimal {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}

	for _, sym := range []string{"$", "£", "€", ",", " ", "\u00a0"} {
		s = strings.ReplaceAll(s, sym, "")
	}

	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	if strings.HasSuffix(s, "-") {
		neg = true
		s = s[:len(s)-1]
	}

	if s == "" {
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	if neg {
		d = d.Neg()
	}
	d = d.Round(2)
	return &d
}

// Date parses a date token into a calendar date. Year-less tokens are
// resolved from the statement period: when the period crosses a year
// boundary, months from October onward get the start year and the rest the
// end year. This is a heuristic, not a guarantee; statements longer than a
// year defeat it. Returns nil for unrecognized tokens.
func Date(text string, period models.Period) *time.Time {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}

	if m := dateSlash.FindStringSubmatch(s); m != nil {
		return makeDate(atoi(m[1]), time.Month(atoi(m[2])), expandYear(atoi(m[3])))
	}
	if m := dateDash.FindStringSubmatch(s); m != nil {
		return makeDate(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]))
	}
	if m := dateCompact.FindStringSubmatch(s); m != nil {
		mon, ok := months[strings.ToLower(m[2])]
		if !ok {
			return nil
		}
		return makeDate(atoi(m[1]), mon, atoi(m[3]))
	}
	if m := dateText.FindStringSubmatch(s); m != nil {
		mon, ok := months[strings.ToLower(m[2])[:3]]
		if !ok {
			return nil
		}
		year := 0
		if m[3] != "" {
			year = expandYear(atoi(m[3]))
		} else {
			year = resolveYear(mon, period)
			if year == 0 {
				return nil
			}
		}
		return makeDate(atoi(m[1]), mon, year)
	}

	return nil
}

// resolveYear picks a year for a year-less month token from the statement
// period. Zero means no period was available.
func resolveYear(mon time.Month, period models.Period) int {
	if period.IsZero() {
		return 0
	}
	start, end := period.Start.Year(), period.End.Year()
	if start == end {
		return start
	}
	if mon >= time.October {
		return start
	}
	return end
}

// expandYear widens two-digit years into the 2000s.
func expandYear(y int) int {
	if y < 100 {
		return 2000 + y
	}
	return y
}

func makeDate(day int, mon time.Month, year int) *time.Time {
	if day < 1 || day > 31 || mon < time.January || mon > time.December || year < 1900 {
		return nil
	}
	t := time.Date(year, mon, day, 0, 0, 0, 0, time.UTC)
	// Reject rollovers like 31 Feb.
	if t.Day() != day {
		return nil
	}
	return &t
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
