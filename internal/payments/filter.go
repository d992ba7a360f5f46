package payments

import (
	"strings"
	"time"

	"github.com/checktrack/checktrack/internal/model"
)

// Filter selects payments for List. Zero fields match everything; text fields
// match case-insensitively.
type Filter struct {
	Status        model.Status
	Bank          string
	Company       string
	BusinessGroup string
	// From and To bound the due date, both inclusive.
	From time.Time
	To   time.Time
	// Search matches a substring of the check number or description.
	Search string
}

// Match reports whether p passes the filter.
func (f Filter) Match(p model.Payment) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if !equalFold(f.Bank, p.Bank) || !equalFold(f.Company, p.Company) || !equalFold(f.BusinessGroup, p.BusinessGroup) {
		return false
	}
	if !f.From.IsZero() && p.DueDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && p.DueDate.After(f.To) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.CheckNumber), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

func equalFold(want, got string) bool {
	return want == "" || strings.EqualFold(strings.TrimSpace(want), got)
}
