package importer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
)

// XLSDecoder reads legacy BIFF8 workbooks.
type XLSDecoder struct {
	// Charset is passed to the BIFF reader; defaults to utf-8.
	Charset string
}

// Format returns the decoder name.
func (d *XLSDecoder) Format() string { return "xls" }

// Extensions returns the file extensions handled by the decoder.
func (d *XLSDecoder) Extensions() []string { return []string{".xls"} }

// Decode reads the first worksheet. The BIFF reader only exposes formatted
// text; see xlsCell for how it is typed.
func (d *XLSDecoder) Decode(r io.Reader) ([][]Cell, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}

	charset := d.Charset
	if charset == "" {
		charset = "utf-8"
	}
	wb, err := xls.OpenReader(bytes.NewReader(data), charset)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	// An OLE file without a Workbook stream opens without error.
	if wb == nil || wb.NumSheets() == 0 {
		return nil, fmt.Errorf("no worksheet found")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("no worksheet found")
	}

	var rows [][]Cell
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		var cells []Cell
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, xlsCell(row.Col(j)))
		}
		for len(cells) > 0 && cells[len(cells)-1] == nil {
			cells = cells[:len(cells)-1]
		}
		rows = append(rows, cells)
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

// xlsCell types the text the BIFF reader produced. Cells with a custom date
// format arrive as RFC 3339 and become time.Time. Numeric cells are written
// in Go's shortest form, so only text that round-trips through
// strconv.FormatFloat is a number; "0012345" or "1e5" came from a text cell.
func xlsCell(value string) Cell {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil && strconv.FormatFloat(n, 'f', -1, 64) == value {
		return n
	}
	return value
}
