package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellString(t *testing.T) {
	tests := []struct {
		in   Cell
		want string
	}{
		{nil, ""},
		{false, ""},
		{true, "true"},
		{float64(0), ""},
		{0, ""},
		{"0", "0"},
		{"  CK-1 ", "CK-1"},
		{float64(12345), "12345"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cellString(tt.in), "%#v", tt.in)
	}
}

func TestPipeline_FalsyRequiredCellDropsRow(t *testing.T) {
	rows := [][]Cell{
		header(),
		{"01.03.2024", float64(0), "Ziraat", "ALTAY", "KULU", "", 100},
		{"01.03.2024", "CK-2", false, "ALTAY", "KULU", "", 100},
		{"01.03.2024", "0", "Ziraat", "ALTAY", "KULU", float64(0), 100},
	}

	pv, err := newTestPipeline().Preview(rows)
	require.NoError(t, err)
	require.Len(t, pv.Payments, 1)
	assert.Equal(t, 2, pv.Dropped)
	assert.Equal(t, "0", pv.Payments[0].CheckNumber, "text zero is kept")
	assert.Equal(t, "", pv.Payments[0].Description)
}
