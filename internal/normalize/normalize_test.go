package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "25.99", "25.99"},
		{"thousands separators", "1,234,567.89", "1234567.89"},
		{"dollar sign", "$1,234.56", "1234.56"},
		{"pound sign", "£42.00", "42"},
		{"leading minus", "-15.00", "-15"},
		{"trailing minus", "89.99-", "-89.99"},
		{"parentheses", "(120.50)", "-120.5"},
		{"internal spaces", "1 234.56", "1234.56"},
		{"more than two decimals rounds", "10.005", "10.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Amount(tt.input)
			require.NotNil(t, got)
			want := decimal.RequireFromString(tt.want)
			assert.True(t, want.Equal(*got), "got %s, want %s", got, want)
		})
	}
}

func TestAmountRejectsNonNumeric(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "12.34.56", "$", "-"} {
		assert.Nil(t, Amount(input), "input %q", input)
	}
}

func TestDateFullYearForms(t *testing.T) {
	none := models.Period{}
	tests := []struct {
		input string
		want  time.Time
	}{
		{"15/01/2024", time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)},
		{"15/1/24", time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)},
		{"15-01-2024", time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)},
		{"17Dec2024", time.Date(2024, time.December, 17, 0, 0, 0, 0, time.UTC)},
		{"5 Mar 2024", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"5 Mar 24", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"12 March 2024", time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got := Date(tt.input, none)
		require.NotNil(t, got, "input %q", tt.input)
		assert.Equal(t, tt.want, *got, "input %q", tt.input)
	}
}

func TestDateYearlessResolvedFromPeriod(t *testing.T) {
	crossYear := models.Period{
		Start: time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
	}

	// Months from October onward belong to the period's first year.
	nov := Date("15 Nov", crossYear)
	require.NotNil(t, nov)
	assert.Equal(t, 2023, nov.Year())

	feb := Date("10 Feb", crossYear)
	require.NotNil(t, feb)
	assert.Equal(t, 2024, feb.Year())

	// No period means a year-less token cannot be resolved.
	assert.Nil(t, Date("15 Nov", models.Period{}))
}

func TestDateRejectsInvalid(t *testing.T) {
	none := models.Period{}
	for _, input := range []string{"", "31 Feb 2024", "99/01/2024", "15 Xyz 2024", "not a date"} {
		assert.Nil(t, Date(input, none), "input %q", input)
	}
}
