package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the settlement state of a payment.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOther   Status = "other"
)

// ParseStatus converts user input into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusPaid, StatusOther:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q (want pending, paid or other)", s)
	}
}

// Payment is a tracked post-dated check.
type Payment struct {
	ID            string          `json:"id"`
	DueDate       time.Time       `json:"dueDate"`
	CheckNumber   string          `json:"checkNumber"`
	Bank          string          `json:"bank"`
	Company       string          `json:"company"`
	BusinessGroup string          `json:"businessGroup"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt,omitzero"`
	UpdatedAt     time.Time       `json:"updatedAt,omitzero"`
}

// MissingFields returns the names of required fields that are empty.
// A non-positive amount is reported as "amount".
func (p Payment) MissingFields() []string {
	var missing []string
	if p.CheckNumber == "" {
		missing = append(missing, "checkNumber")
	}
	if p.Bank == "" {
		missing = append(missing, "bank")
	}
	if p.Company == "" {
		missing = append(missing, "company")
	}
	if p.BusinessGroup == "" {
		missing = append(missing, "businessGroup")
	}
	if !p.Amount.IsPositive() {
		missing = append(missing, "amount")
	}
	return missing
}

// IsOverdue reports whether the due date falls before the start of today.
func (p Payment) IsOverdue(startOfDay time.Time) bool {
	return p.DueDate.Before(startOfDay)
}
