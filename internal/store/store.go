// Package store defines persistence for payment records.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/checktrack/checktrack/internal/model"
)

var (
	// ErrNotFound is returned for an unknown payment ID.
	ErrNotFound = errors.New("payment not found")
	// ErrDuplicateID is returned when creating a payment whose ID already exists.
	ErrDuplicateID = errors.New("payment id already exists")
	// ErrMissingID is returned when a payment has no ID.
	ErrMissingID = errors.New("payment id is required")
)

// Store persists payments keyed by ID. Create and Update stamp the
// CreatedAt/UpdatedAt fields and return the stored record.
type Store interface {
	Create(ctx context.Context, p model.Payment) (model.Payment, error)
	// CreateBatch stores all payments or none.
	CreateBatch(ctx context.Context, ps []model.Payment) ([]model.Payment, error)
	Get(ctx context.Context, id string) (model.Payment, error)
	// All returns every payment ordered by due date, earliest first.
	All(ctx context.Context) ([]model.Payment, error)
	Update(ctx context.Context, p model.Payment) (model.Payment, error)
	Delete(ctx context.Context, id string) error
	// DeleteAll removes every payment and returns how many were removed.
	DeleteAll(ctx context.Context) (int, error)
	// Replace swaps every stored payment for ps in one write and returns how
	// many were removed. On error the previous payments are kept.
	Replace(ctx context.Context, ps []model.Payment) (int, error)
	Close() error
}

// SortByDueDate orders payments by due date, then creation time, then ID.
func SortByDueDate(ps []model.Payment) {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// CheckBatch validates IDs in a batch against each other and against
// existing, which reports whether an ID is already stored.
func CheckBatch(ps []model.Payment, existing func(id string) bool) error {
	seen := make(map[string]bool, len(ps))
	for _, p := range ps {
		if p.ID == "" {
			return ErrMissingID
		}
		if seen[p.ID] || existing(p.ID) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
