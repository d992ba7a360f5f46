package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVDecoder reads comma or semicolon separated exports. Every cell is text.
type CSVDecoder struct{}

// Format returns the decoder name.
func (d *CSVDecoder) Format() string { return "csv" }

// Extensions returns the file extensions handled by the decoder.
func (d *CSVDecoder) Extensions() []string { return []string{".csv"} }

// Decode reads all records. The delimiter is guessed from the header line.
func (d *CSVDecoder) Decode(r io.Reader) ([][]Cell, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.Comma = guessDelimiter(text)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	rows := make([][]Cell, len(records))
	for i, rec := range records {
		row := make([]Cell, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}

// guessDelimiter picks ';' when the first line has more semicolons than commas,
// which is what spreadsheet programs emit in comma-decimal locales.
func guessDelimiter(text string) rune {
	first, _, _ := strings.Cut(text, "\n")
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	return ','
}
