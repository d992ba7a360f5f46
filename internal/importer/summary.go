package importer

import (
	"github.com/shopspring/decimal"

	"github.com/checktrack/checktrack/internal/model"
)

// Summary is the aggregate shown before an import is committed.
type Summary struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PaidCount   int             `json:"paidCount"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
}

// Pending returns the number of records that are not paid.
func (s Summary) Pending() int { return s.Count - s.PaidCount }

// PendingAmount returns the total of records that are not paid.
func (s Summary) PendingAmount() decimal.Decimal { return s.TotalAmount.Sub(s.PaidAmount) }

// Summarize totals payments exactly.
func Summarize(payments []model.Payment) Summary {
	s := Summary{TotalAmount: decimal.Zero, PaidAmount: decimal.Zero}
	for _, p := range payments {
		s.Count++
		s.TotalAmount = s.TotalAmount.Add(p.Amount)
		if p.Status == model.StatusPaid {
			s.PaidCount++
			s.PaidAmount = s.PaidAmount.Add(p.Amount)
		}
	}
	return s
}
