package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checktrack/checktrack/internal/model"
)

func TestXLSCell(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Cell
	}{
		{"empty", "  ", nil},
		{"integer", "1000", float64(1000)},
		{"decimal", "250.5", 250.5},
		{"negative", "-3", float64(-3)},
		{"date serial", "45000", float64(45000)},
		{"custom date format", "2024-03-01T00:00:00Z", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"zero padded check number", "0012345", "0012345"},
		{"long check number", "12345678901234567890", "12345678901234567890"},
		{"exponent text", "1e5", "1e5"},
		{"trailing zero text", "12.50", "12.50"},
		{"plain text", "Ziraat Bankası", "Ziraat Bankası"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, xlsCell(tt.in))
		})
	}
}

func TestXLSCell_RowsThroughPipeline(t *testing.T) {
	// Text as the BIFF reader formats it: a custom date format, a date serial,
	// a zero-padded text check number and a numeric amount.
	raw := [][]string{
		ExpectedColumns,
		{"2024-03-01T00:00:00Z", "0012345", "Ziraat Bankası", "ALTAY", "KULU", "custom date", "1000"},
		{"45000", "CK-2", "Halk Bankası", "ALTAY", "KULU", "", "250.5"},
		{"2025-07-15T00:00:00Z", "1e5", "Halk Bankası", "ALTAY", "KULU", "", "10"},
	}
	rows := make([][]Cell, len(raw))
	for i, r := range raw {
		rows[i] = make([]Cell, len(r))
		for j, v := range r {
			rows[i][j] = xlsCell(v)
		}
	}

	got, err := newTestPipeline().Process(rows)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "2024-03-01", got[0].DueDate.Format("2006-01-02"))
	assert.Equal(t, model.StatusPaid, got[0].Status)
	assert.Equal(t, "0012345", got[0].CheckNumber)

	assert.Equal(t, "2023-03-15", got[1].DueDate.Format("2006-01-02"))
	assert.Equal(t, model.StatusPaid, got[1].Status)

	assert.Equal(t, "2025-07-15", got[2].DueDate.Format("2006-01-02"))
	assert.Equal(t, model.StatusPending, got[2].Status)
	assert.Equal(t, "1e5", got[2].CheckNumber)
}

func TestXLSDecoder_NotAWorkbook(t *testing.T) {
	_, err := (&XLSDecoder{}).Decode(strings.NewReader(strings.Repeat("x", 1024)))
	assert.ErrorContains(t, err, "opening workbook")
}
