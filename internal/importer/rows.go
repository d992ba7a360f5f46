package importer

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/checktrack/checktrack/internal/model"
)

// leadingNumber matches the longest numeric prefix of a cleaned amount,
// so "1.000.50" reads as 1.000 and "12-3" as 12.
var leadingNumber = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)

// parseAmount reads the amount cell. Numeric cells are used as they are; text
// keeps only digits, '.' and '-'. ok is false when nothing numeric remains.
func parseAmount(c Cell) (decimal.Decimal, bool) {
	if n, ok := cellNumber(c); ok {
		return decimal.NewFromFloat(n), true
	}
	if c == nil {
		return decimal.Decimal{}, false
	}

	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, cast.ToString(c))

	m := leadingNumber.FindString(cleaned)
	if m == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(m, "."))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// coerceRow builds a candidate payment from a data row. It returns a reason
// when the row is dropped. The ID is left empty. With withStatus set, a known
// status in the column after the amount overrides the inferred one.
func coerceRow(row []Cell, dates DateParser, now, today time.Time, withStatus bool) (model.Payment, string) {
	if len(row) < numColumns {
		return model.Payment{}, "short row"
	}

	p := model.Payment{
		DueDate:       coerceDate(dates, row[colDueDate], now),
		CheckNumber:   cellString(row[colCheckNumber]),
		Bank:          cellString(row[colBank]),
		Company:       cellString(row[colCompany]),
		BusinessGroup: cellString(row[colBusinessGroup]),
		Description:   cellString(row[colDescription]),
		Status:        model.StatusPending,
	}
	if p.DueDate.Before(today) {
		p.Status = model.StatusPaid
	}
	if withStatus && len(row) > numColumns {
		if st, err := model.ParseStatus(cellString(row[numColumns])); err == nil {
			p.Status = st
		}
	}

	amount, ok := parseAmount(row[colAmount])
	if !ok {
		return model.Payment{}, "unreadable amount"
	}
	p.Amount = amount

	if missing := p.MissingFields(); len(missing) > 0 {
		return model.Payment{}, "missing " + strings.Join(missing, ", ")
	}
	return p, ""
}
