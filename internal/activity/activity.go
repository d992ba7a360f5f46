// Package activity keeps an append-only log of changes to payments, users
// and categories.
package activity

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/checktrack/checktrack/internal/clock"
)

// Entry is one row in the activity log.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	// IDs are the affected record IDs.
	IDs []string `json:"ids,omitempty"`
}

// Actions recorded by the services.
const (
	ActionAdd          = "add"
	ActionEdit         = "edit"
	ActionStatus       = "status"
	ActionDelete       = "delete"
	ActionClear        = "clear"
	ActionImport       = "import"
	ActionRestore      = "restore"
	ActionUserAdd      = "user_add"
	ActionUserUpdate   = "user_update"
	ActionUserRemove   = "user_remove"
	ActionCategoryEdit = "category_edit"
)

// Header is the CSV header for activity.csv.
const Header = "timestamp,user,action,details,ids"

const (
	numFields    = 5
	logDir       = "logs"
	logFile      = "logs/activity.csv"
	idSep        = ";"
	colTimestamp = 0
	colUser      = 1
	colAction    = 2
	colDetails   = 3
	colIDs       = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colUser] = e.User
	row[colAction] = e.Action
	row[colDetails] = e.Details
	row[colIDs] = strings.Join(e.IDs, idSep)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var ids []string
	if record[colIDs] != "" {
		ids = strings.Split(record[colIDs], idSep)
	}

	return Entry{
		Timestamp: ts,
		User:      record[colUser],
		Action:    record[colAction],
		Details:   record[colDetails],
		IDs:       ids,
	}, nil
}

// Append writes entries to <dataDir>/logs/activity.csv, creating the file and header if needed.
func Append(dataDir string, entries []Entry) error {
	dir := filepath.Join(dataDir, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(dataDir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dataDir>/logs/activity.csv.
// Returns an empty slice if the file does not exist.
func Read(dataDir string) ([]Entry, error) {
	path := filepath.Join(dataDir, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Recorder is implemented by anything that accepts activity entries.
type Recorder interface {
	Record(user, action, details string, ids ...string) error
}

// Log appends timestamped entries to a data directory's activity log.
type Log struct {
	dataDir string
	clock   clock.Clock
	mu      sync.Mutex
}

// NewLog returns a Log writing under dataDir.
func NewLog(dataDir string, clk clock.Clock) *Log {
	return &Log{dataDir: dataDir, clock: clk}
}

// Record appends one entry.
func (l *Log) Record(user, action, details string, ids ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Append(l.dataDir, []Entry{{
		Timestamp: l.clock.Now(),
		User:      user,
		Action:    action,
		Details:   details,
		IDs:       ids,
	}})
}

// Discard drops every entry.
type Discard struct{}

// Record implements Recorder.
func (Discard) Record(string, string, string, ...string) error { return nil }
