package activity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checktrack/checktrack/internal/clock"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		User:      "altay",
		Action:    ActionImport,
		Details:   "imported 5 payments from cekler.xlsx",
		IDs:       []string{"pay-0001", "pay-0002"},
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "altay", entries[0].User)
	assert.Equal(t, []string{"pay-0001", "pay-0002"}, entries[0].IDs)
	assert.True(t, testTime.Equal(entries[0].Timestamp))
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	second := testEntry()
	second.Action = ActionClear
	second.IDs = nil
	require.NoError(t, Append(dir, []Entry{second}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionClear, entries[1].Action)
	assert.Nil(t, entries[1].IDs)

	data, err := os.ReadFile(filepath.Join(dir, logFile))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header), "header written once")
}

func TestRead_Missing(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_BadTimestamp(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, logDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, logFile), []byte(Header+"\nyesterday,altay,add,,\n"), 0o644))

	_, err := Read(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestLog_Record(t *testing.T) {
	dir := t.TempDir()
	l := NewLog(dir, clock.Fixed(testTime))
	require.NoError(t, l.Record("veli", ActionDelete, "deleted CK-9", "pay-0009"))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{
		Timestamp: entries[0].Timestamp,
		User:      "veli",
		Action:    ActionDelete,
		Details:   "deleted CK-9",
		IDs:       []string{"pay-0009"},
	}, entries[0])
	assert.True(t, testTime.Equal(entries[0].Timestamp))
}
