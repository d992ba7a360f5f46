package importer

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXDecoder reads Office Open XML workbooks.
type XLSXDecoder struct{}

// Format returns the decoder name.
func (d *XLSXDecoder) Format() string { return "xlsx" }

// Extensions returns the file extensions handled by the decoder.
func (d *XLSXDecoder) Extensions() []string { return []string{".xlsx", ".xlsm"} }

// Decode reads the first worksheet. Numeric cells come back as float64 so
// date serials and amounts keep their type.
func (d *XLSXDecoder) Decode(r io.Reader) ([][]Cell, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no worksheet found")
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	rows := make([][]Cell, len(raw))
	for i, rawRow := range raw {
		row := make([]Cell, len(rawRow))
		for j, value := range rawRow {
			row[j] = xlsxCell(f, sheet, j+1, i+1, value)
		}
		rows[i] = row
	}
	return rows, nil
}

func xlsxCell(f *excelize.File, sheet string, col, row int, value string) Cell {
	if value == "" {
		return nil
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return value
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return value
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
	case excelize.CellTypeDate:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t
		}
	case excelize.CellTypeBool:
		return value == "1" || value == "TRUE"
	}
	return value
}
