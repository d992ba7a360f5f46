package backup

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/checktrack/checktrack/internal/importer"
	"github.com/checktrack/checktrack/internal/model"
)

const (
	sheetName  = "Ödemeler"
	exportDate = "02.01.2006"
)

// ExportXLSX writes payments in the import column layout followed by the
// status column, so the file imports again with the same statuses.
func ExportXLSX(w io.Writer, payments []model.Payment) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, 0, len(importer.ExpectedColumns)+1)
	for _, c := range importer.ExpectedColumns {
		header = append(header, c)
	}
	header = append(header, importer.StatusColumn)
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, p := range payments {
		row := []any{
			p.DueDate.Format(exportDate),
			p.CheckNumber,
			p.Bank,
			p.Company,
			p.BusinessGroup,
			p.Description,
			p.Amount.InexactFloat64(),
			string(p.Status),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if len(payments) > 0 {
		style, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
		if err != nil {
			return fmt.Errorf("creating amount style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(7, len(payments)+1)
		if err := f.SetCellStyle(sheetName, "G2", last, style); err != nil {
			return fmt.Errorf("styling amounts: %w", err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "H", 18); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
