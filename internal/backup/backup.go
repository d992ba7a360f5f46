// Package backup writes and reads payment backups and spreadsheet exports.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/checktrack/checktrack/internal/model"
)

// Version is the backup format version written by Write.
const Version = 1

// File is the JSON backup document.
type File struct {
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"createdAt"`
	Payments  []model.Payment `json:"payments"`
}

// Write encodes payments as an indented JSON backup.
func Write(w io.Writer, payments []model.Payment, createdAt time.Time) error {
	if payments == nil {
		payments = []model.Payment{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(File{Version: Version, CreatedAt: createdAt, Payments: payments}); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

// Read decodes a backup. A bare JSON array of payments is accepted too.
func Read(r io.Reader) ([]model.Payment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("backup is empty")
	}

	if data[0] == '[' {
		var payments []model.Payment
		if err := json.Unmarshal(data, &payments); err != nil {
			return nil, fmt.Errorf("parsing backup: %w", err)
		}
		return payments, nil
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing backup: %w", err)
	}
	if f.Version > Version {
		return nil, fmt.Errorf("backup version %d is newer than supported version %d", f.Version, Version)
	}
	return f.Payments, nil
}
