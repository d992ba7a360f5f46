package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialDateParser(t *testing.T) {
	tests := []struct {
		in   Cell
		want time.Time
	}{
		{45000.0, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)},
		{45000, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)},
		{45352.5, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		{25569.0, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)},
		{1.0, time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := SerialDateParser{}.ParseDate(tt.in)
		require.True(t, ok, "%v", tt.in)
		assert.True(t, tt.want.Equal(got), "%v: got %s", tt.in, got)
	}
}

func TestSerialDateParser_Rejects(t *testing.T) {
	for _, c := range []Cell{"45000", -1.0, 1e9, nil, true} {
		_, ok := SerialDateParser{}.ParseDate(c)
		assert.False(t, ok, "%v", c)
	}
}

func TestLayoutDateParser(t *testing.T) {
	ist, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)
	p := LayoutDateParser{Layouts: DefaultLayouts, Location: ist}

	tests := []struct {
		in   string
		want time.Time
	}{
		{"01.03.2024", time.Date(2024, 3, 1, 0, 0, 0, 0, ist)},
		{"1.3.2024", time.Date(2024, 3, 1, 0, 0, 0, 0, ist)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, ist)},
		{"03/01/2024", time.Date(2024, 3, 1, 0, 0, 0, 0, ist)},
		{" 31.12.2029 ", time.Date(2029, 12, 31, 0, 0, 0, 0, ist)},
	}
	for _, tt := range tests {
		got, ok := p.ParseDate(tt.in)
		require.True(t, ok, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %s", tt.in, got)
		assert.Equal(t, ist, got.Location())
	}

	for _, bad := range []Cell{"31.02.2024", "yarın", "2024/03/01", 45000.0} {
		_, ok := p.ParseDate(bad)
		assert.False(t, ok, "%v", bad)
	}
}

func TestCoerceDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	dp := DefaultDateParser(time.UTC)

	assert.Equal(t, now, coerceDate(dp, nil, now))
	assert.Equal(t, now, coerceDate(dp, "  ", now))
	assert.Equal(t, now, coerceDate(dp, 0.0, now))
	assert.Equal(t, now, coerceDate(dp, "not a date", now))
	assert.Equal(t, now, coerceDate(dp, true, now))

	want := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, coerceDate(dp, 45000.0, now))
	assert.Equal(t, want, coerceDate(dp, want, now))
	assert.Equal(t, want, coerceDate(dp, "15.03.2023", now))
}

type fixedDate time.Time

func (f fixedDate) ParseDate(Cell) (time.Time, bool) { return time.Time(f), true }

func TestDateChain_FirstWins(t *testing.T) {
	first := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	chain := DateChain{SerialDateParser{}, fixedDate(first), fixedDate(time.Now())}

	got, ok := chain.ParseDate("anything")
	require.True(t, ok)
	assert.Equal(t, first, got)

	_, ok = DateChain{}.ParseDate(45000.0)
	assert.False(t, ok)
}
