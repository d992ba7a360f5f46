package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/checktrack/checktrack/internal/model"
)

// Header is the CSV header for payments.csv.
const Header = "id,due_date,check_number,bank,company,business_group,description,amount,status,created_at,updated_at"

const (
	numFields        = 11
	timeFormat       = time.RFC3339Nano
	colID            = 0
	colDueDate       = 1
	colCheckNumber   = 2
	colBank          = 3
	colCompany       = 4
	colBusinessGroup = 5
	colDescription   = 6
	colAmount        = 7
	colStatus        = 8
	colCreatedAt     = 9
	colUpdatedAt     = 10
)

// ReadPayments reads all payments from a payments.csv reader.
func ReadPayments(r io.Reader) ([]model.Payment, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading payments CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var payments []model.Payment
	for i, rec := range records[1:] {
		p, err := UnmarshalPayment(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

// WritePayments writes payments to a payments.csv writer (including header).
func WritePayments(w io.Writer, payments []model.Payment) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, p := range payments {
		if err := cw.Write(MarshalPayment(p)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalPayment converts a Payment to a CSV row.
func MarshalPayment(p model.Payment) []string {
	row := make([]string, numFields)
	row[colID] = p.ID
	row[colDueDate] = p.DueDate.Format(timeFormat)
	row[colCheckNumber] = p.CheckNumber
	row[colBank] = p.Bank
	row[colCompany] = p.Company
	row[colBusinessGroup] = p.BusinessGroup
	row[colDescription] = p.Description
	row[colAmount] = p.Amount.String()
	row[colStatus] = string(p.Status)
	row[colCreatedAt] = formatOptional(p.CreatedAt)
	row[colUpdatedAt] = formatOptional(p.UpdatedAt)
	return row
}

// UnmarshalPayment converts a CSV row to a Payment.
func UnmarshalPayment(record []string) (model.Payment, error) {
	if len(record) != numFields {
		return model.Payment{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	due, err := time.Parse(timeFormat, record[colDueDate])
	if err != nil {
		return model.Payment{}, fmt.Errorf("parsing due_date %q: %w", record[colDueDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Payment{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	status, err := model.ParseStatus(record[colStatus])
	if err != nil {
		return model.Payment{}, err
	}

	created, err := parseOptional(record[colCreatedAt])
	if err != nil {
		return model.Payment{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
	}
	updated, err := parseOptional(record[colUpdatedAt])
	if err != nil {
		return model.Payment{}, fmt.Errorf("parsing updated_at %q: %w", record[colUpdatedAt], err)
	}

	return model.Payment{
		ID:            record[colID],
		DueDate:       due,
		CheckNumber:   record[colCheckNumber],
		Bank:          record[colBank],
		Company:       record[colCompany],
		BusinessGroup: record[colBusinessGroup],
		Description:   record[colDescription],
		Amount:        amount,
		Status:        status,
		CreatedAt:     created,
		UpdatedAt:     updated,
	}, nil
}

func formatOptional(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeFormat)
}

func parseOptional(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeFormat, s)
}
