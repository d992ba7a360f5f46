package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{"pending", StatusPending},
		{"PAID", StatusPaid},
		{" other ", StatusOther},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.input)
		require.NoError(t, err, "input: %q", tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseStatus("settled")
	assert.Error(t, err)
}

func TestPaymentMissingFields(t *testing.T) {
	p := Payment{
		CheckNumber:   "CK-1",
		Bank:          "Ziraat Bankası",
		Company:       "ALTAY",
		BusinessGroup: "KULU",
		Amount:        decimal.NewFromInt(1000),
	}
	assert.Empty(t, p.MissingFields())

	p.Bank = ""
	p.Amount = decimal.Zero
	assert.Equal(t, []string{"bank", "amount"}, p.MissingFields())

	p.Amount = decimal.NewFromInt(-5)
	assert.Contains(t, p.MissingFields(), "amount")
}

func TestPaymentIsOverdue(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, Payment{DueDate: today.Add(-time.Nanosecond)}.IsOverdue(today))
	assert.False(t, Payment{DueDate: today}.IsOverdue(today), "due today is not overdue")
	assert.False(t, Payment{DueDate: today.AddDate(0, 0, 1)}.IsOverdue(today))
}
