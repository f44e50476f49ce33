// Package writer serializes resolved statements into the delivery formats:
// CSV for downstream ingestion, XLSX for human review.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Column headers shared by both output formats.
var columns = []string{"Date", "Description", "Debit", "Credit", "Balance", "Notes"}

// CSVWriter writes a statement to CSV.
type CSVWriter struct {
	IncludeMetadata bool
}

// WriteToFile writes the statement to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, stmt *models.Statement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, stmt)
}

// Write writes the statement in CSV format to the given writer. Unresolved
// cells stay empty rather than rendering a zero.
func (w *CSVWriter) Write(out io.Writer, stmt *models.Statement) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeMetadata {
		if stmt.Format != "" {
			writer.Write([]string{"# Format", string(stmt.Format)})
		}
		if !stmt.Period.IsZero() {
			writer.Write([]string{"# Statement Period", periodString(stmt.Period)})
		}
	}

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range stmt.Transactions {
		row := []string{
			txn.DateString(),
			txn.Description,
			formatAmount(txn.Debit),
			formatAmount(txn.Credit),
			formatAmount(txn.Balance),
			noteFor(txn),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

func formatAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func noteFor(txn models.Transaction) string {
	if txn.Inconsistent {
		return "balance mismatch"
	}
	return ""
}

func periodString(p models.Period) string {
	return p.Start.Format(models.DateLayout) + " to " + p.End.Format(models.DateLayout)
}
