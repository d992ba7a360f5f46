package payments

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/checktrack/checktrack/internal/model"
)

// ErrInvalid is matched by every ValidationError.
var ErrInvalid = errors.New("invalid payment")

// ValidationError lists the fields of a draft that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payment: missing or invalid %s", strings.Join(e.Fields, ", "))
}

// Is makes errors.Is(err, ErrInvalid) hold.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// Draft is the user-editable part of a payment.
type Draft struct {
	DueDate       time.Time       `json:"dueDate"`
	CheckNumber   string          `json:"checkNumber"`
	Bank          string          `json:"bank"`
	Company       string          `json:"company"`
	BusinessGroup string          `json:"businessGroup"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
}

// DraftOf returns the editable fields of p.
func DraftOf(p model.Payment) Draft {
	return Draft{
		DueDate:       p.DueDate,
		CheckNumber:   p.CheckNumber,
		Bank:          p.Bank,
		Company:       p.Company,
		BusinessGroup: p.BusinessGroup,
		Description:   p.Description,
		Amount:        p.Amount,
	}
}

// apply copies the trimmed draft onto p.
func (d Draft) apply(p model.Payment) model.Payment {
	p.DueDate = d.DueDate
	p.CheckNumber = strings.TrimSpace(d.CheckNumber)
	p.Bank = strings.TrimSpace(d.Bank)
	p.Company = strings.TrimSpace(d.Company)
	p.BusinessGroup = strings.TrimSpace(d.BusinessGroup)
	p.Description = strings.TrimSpace(d.Description)
	p.Amount = d.Amount
	return p
}

// Validate checks the required fields and a positive amount. A zero due
// date is invalid.
func (d Draft) Validate() error {
	p := d.apply(model.Payment{})
	fields := p.MissingFields()
	if d.DueDate.IsZero() {
		fields = append([]string{"dueDate"}, fields...)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
