package importer

import (
	"errors"
	"fmt"
	"strings"
)

// ExpectedColumns is the required header, in order. Matching is per position
// and case-insensitive; extra trailing columns are allowed.
var ExpectedColumns = []string{
	"Vade Tarihi", // due date
	"Çek No",      // check number
	"Banka",       // bank
	"Firma",       // company
	"İş Grubu",    // business group
	"Açıklama",    // description
	"Tutar",       // amount
}

// StatusColumn is an optional column after ExpectedColumns. When present its
// value, if a known status, replaces the inferred one.
const StatusColumn = "Durum"

const (
	colDueDate = iota
	colCheckNumber
	colBank
	colCompany
	colBusinessGroup
	colDescription
	colAmount
	numColumns
)

var (
	// ErrNoData means the file has no rows below the header.
	ErrNoData = errors.New("spreadsheet contains no data rows")
	// ErrHeaderMismatch means the header row does not match ExpectedColumns.
	ErrHeaderMismatch = errors.New("spreadsheet header does not match the expected columns")
)

// StructuralError rejects a whole file. It is never used for a single bad row.
type StructuralError struct {
	Err      error
	Expected []string
	Found    []string
}

func (e *StructuralError) Error() string {
	if errors.Is(e.Err, ErrNoData) {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: columns must be, in this order: %s", e.Err, strings.Join(e.Expected, ", "))
}

func (e *StructuralError) Unwrap() error { return e.Err }

// ValidateShape checks the row count and the header of a decoded sheet.
func ValidateShape(rows [][]Cell) error {
	if len(rows) < 2 {
		return &StructuralError{Err: ErrNoData, Expected: ExpectedColumns}
	}
	return ValidateHeader(rows[0])
}

// ValidateHeader checks that header starts with ExpectedColumns.
func ValidateHeader(header []Cell) error {
	found := make([]string, len(header))
	for i, c := range header {
		found[i] = cellString(c)
	}

	for i, want := range ExpectedColumns {
		if i >= len(found) || foldHeader(found[i]) != foldHeader(want) {
			return &StructuralError{Err: ErrHeaderMismatch, Expected: ExpectedColumns, Found: found}
		}
	}
	return nil
}

// hasStatusColumn reports whether header carries StatusColumn right after
// ExpectedColumns.
func hasStatusColumn(header []Cell) bool {
	return len(header) > numColumns && foldHeader(cellString(header[numColumns])) == foldHeader(StatusColumn)
}

// foldHeader lower-cases a header for comparison. Dotted and dotless i fold
// together, so "AÇIKLAMA" matches "Açıklama"; a decomposed "I" plus U+0307 loses
// its combining dot.
func foldHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
	return strings.NewReplacer("\u0307", "", "\u0131", "i").Replace(s)
}
