// Package models defines the data types shared across the statement
// extraction pipeline: layout-backend input structures, the raw record
// accumulator used while parsing, and the canonical transaction table.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical rendering of transaction dates.
const DateLayout = "02-01-2006"

// WordToken is a positioned word produced by the document layout backend.
type WordToken struct {
	Text   string  `json:"text"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// XCenter returns the horizontal midpoint of the word's bounding box.
func (w WordToken) XCenter() float64 {
	return (w.Left + w.Right) / 2
}

// YCenter returns the vertical midpoint of the word's bounding box.
func (w WordToken) YCenter() float64 {
	return (w.Top + w.Bottom) / 2
}

// Page holds whichever representations the layout backend produced for one
// page. Text is always attempted; Words and Tables are present only when the
// backend could recover geometry or an explicit grid.
type Page struct {
	Text   string       `json:"text"`
	Words  []WordToken  `json:"words,omitempty"`
	Tables [][][]string `json:"tables,omitempty"`
}

// Document is one statement as delivered by the layout backend.
type Document struct {
	Pages []Page `json:"pages"`
}

// PageTexts returns the plain text of every page, in order.
func (d *Document) PageTexts() []string {
	texts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		texts[i] = p.Text
	}
	return texts
}

// FormatID identifies one recognized statement layout.
type FormatID string

const (
	FormatNABCredit       FormatID = "nab-credit"
	FormatCommBankCredit  FormatID = "commbank-credit"
	FormatCommBank        FormatID = "commbank"
	FormatANZBusiness     FormatID = "anz-business"
	FormatANZ             FormatID = "anz"
	FormatBendigo         FormatID = "bendigo"
	FormatSuncorp         FormatID = "suncorp"
	FormatWestpacCredit   FormatID = "westpac-credit"
	FormatWestpacBusiness FormatID = "westpac-business"
	FormatGeneric         FormatID = "generic"
	FormatUnknown         FormatID = "unknown"
)

// Period is the statement's date range, used to resolve year-less date tokens.
// A zero Period means the range could not be determined.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether no period was detected.
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

// RawRecord is the mutable accumulator a parser fills while scanning lines.
// AmountText holds a positionally ambiguous single amount whose debit/credit
// polarity is decided later by reconciliation; parsers that can already tell
// the polarity fill DebitText/CreditText directly.
type RawRecord struct {
	DateText    string
	Description string
	DebitText   string
	CreditText  string
	AmountText  string
	BalanceText string

	// Synthetic marks opening/closing balance rows that anchor reconciliation
	// but do not represent real transactions.
	Synthetic bool
}

// HasAmount reports whether any monetary field is populated.
func (r *RawRecord) HasAmount() bool {
	return r.DebitText != "" || r.CreditText != "" || r.AmountText != "" || r.BalanceText != ""
}

// Transaction is one row of the canonical output table. Absent amounts are
// nil, never zero. After reconciliation at most one of Debit and Credit is
// non-nil.
type Transaction struct {
	Date        *time.Time       `json:"date"`
	Description string           `json:"description"`
	Debit       *decimal.Decimal `json:"debit"`
	Credit      *decimal.Decimal `json:"credit"`
	Balance     *decimal.Decimal `json:"balance"`

	// Inconsistent marks rows whose balance delta does not match the resolved
	// amount within tolerance. Flagged rows are kept, never dropped.
	Inconsistent bool `json:"inconsistent,omitempty"`
}

// DateString renders the date in the canonical layout, or "" when nil.
func (t *Transaction) DateString() string {
	if t.Date == nil {
		return ""
	}
	return t.Date.Format(DateLayout)
}

// Statement is the immutable result of one document's extraction.
type Statement struct {
	Format       FormatID      `json:"format"`
	Period       Period        `json:"period"`
	Transactions []Transaction `json:"transactions"`
}
