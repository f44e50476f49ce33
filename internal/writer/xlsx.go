package writer

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

const xlsxSheet = "Transactions"

// XLSXWriter writes a statement to an Excel workbook, one sheet, flagged
// rows highlighted so a reviewer can spot balance mismatches at a glance.
type XLSXWriter struct{}

// WriteToFile writes the statement to an XLSX file at the given path.
func (w *XLSXWriter) WriteToFile(path string, stmt *models.Statement) error {
	f, err := w.build(stmt)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %q: %w", path, err)
	}
	return nil
}

// Write streams the workbook to the given writer.
func (w *XLSXWriter) Write(out io.Writer, stmt *models.Statement) error {
	f, err := w.build(stmt)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) build(stmt *models.Statement) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), xlsxSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	flaggedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create highlight style: %w", err)
	}

	for i, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(xlsxSheet, cell, name)
	}
	f.SetRowStyle(xlsxSheet, 1, 1, headerStyle)

	for i, txn := range stmt.Transactions {
		row := i + 2
		values := []any{
			txn.DateString(),
			txn.Description,
			cellAmount(txn.Debit),
			cellAmount(txn.Credit),
			cellAmount(txn.Balance),
			noteFor(txn),
		}
		for j, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(xlsxSheet, cell, v)
		}
		if txn.Inconsistent {
			f.SetRowStyle(xlsxSheet, row, row, flaggedStyle)
		}
	}

	f.SetColWidth(xlsxSheet, "B", "B", 48)
	return f, nil
}

// cellAmount returns a numeric cell value, or nil for an empty cell.
func cellAmount(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	v, _ := d.Float64()
	return v
}
