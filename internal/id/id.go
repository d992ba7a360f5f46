package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ShortLen is the number of characters shown for an ID on the command line.
const ShortLen = 8

// Generator produces unique record IDs.
type Generator interface {
	NewID() string
}

// UUID generates random version 4 UUIDs.
type UUID struct{}

// NewID returns a fresh UUID string.
func (UUID) NewID() string { return uuid.NewString() }

// Sequence generates "<prefix>-0001", "<prefix>-0002", ... for deterministic output.
type Sequence struct {
	Prefix string
	n      int
}

// NewID returns the next ID in the sequence.
func (s *Sequence) NewID() string {
	s.n++
	return fmt.Sprintf("%s-%04d", s.Prefix, s.n)
}

// Short returns the display prefix of an ID.
// "0b6c1b4e-6f1a-4c3b-9a57-8d0f2d1e8c11" -> "0b6c1b4e"
func Short(id string) string {
	if len(id) <= ShortLen {
		return id
	}
	return id[:ShortLen]
}

// Resolve finds the single ID in ids that equals or starts with prefix.
func Resolve(prefix string, ids []string) (string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", fmt.Errorf("empty id")
	}

	var matches []string
	for _, candidate := range ids {
		lc := strings.ToLower(candidate)
		if lc == prefix {
			return candidate, nil
		}
		if strings.HasPrefix(lc, prefix) {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no record matches id %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id %q is ambiguous (%d matches)", prefix, len(matches))
	}
}
