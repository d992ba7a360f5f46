// Package gormstore keeps payments in PostgreSQL through gorm.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/checktrack/checktrack/internal/clock"
	"github.com/checktrack/checktrack/internal/model"
	"github.com/checktrack/checktrack/internal/store"
)

// batchSize is the number of rows per INSERT in CreateBatch.
const batchSize = 200

// paymentRow is the payments table.
type paymentRow struct {
	ID            string          `gorm:"primaryKey;size:64"`
	DueDate       time.Time       `gorm:"index;not null"`
	CheckNumber   string          `gorm:"not null"`
	Bank          string          `gorm:"index;not null"`
	Company       string          `gorm:"index;not null"`
	BusinessGroup string          `gorm:"index;not null"`
	Description   string
	Amount        decimal.Decimal `gorm:"type:numeric;not null"`
	Status        string          `gorm:"index;size:16;not null"`
	CreatedAt     time.Time       `gorm:"autoCreateTime:false"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime:false"`
}

func (paymentRow) TableName() string { return "payments" }

func toRow(p model.Payment) paymentRow {
	return paymentRow{
		ID:            p.ID,
		DueDate:       p.DueDate,
		CheckNumber:   p.CheckNumber,
		Bank:          p.Bank,
		Company:       p.Company,
		BusinessGroup: p.BusinessGroup,
		Description:   p.Description,
		Amount:        p.Amount,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (r paymentRow) payment() model.Payment {
	return model.Payment{
		ID:            r.ID,
		DueDate:       r.DueDate,
		CheckNumber:   r.CheckNumber,
		Bank:          r.Bank,
		Company:       r.Company,
		BusinessGroup: r.BusinessGroup,
		Description:   r.Description,
		Amount:        r.Amount,
		Status:        model.Status(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Store is a store.Store backed by a gorm database.
type Store struct {
	db    *gorm.DB
	clock clock.Clock
}

var _ store.Store = (*Store)(nil)

// Open connects to PostgreSQL at dsn and migrates the payments table.
func Open(ctx context.Context, dsn string, clk clock.Clock) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	s := New(db, clk)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection.
func New(db *gorm.DB, clk clock.Clock) *Store {
	return &Store{db: db, clock: clk}
}

// Migrate creates or updates the payments table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&paymentRow{}); err != nil {
		return fmt.Errorf("migrating payments table: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Create implements store.Store.
func (s *Store) Create(ctx context.Context, p model.Payment) (model.Payment, error) {
	out, err := s.CreateBatch(ctx, []model.Payment{p})
	if err != nil {
		return model.Payment{}, err
	}
	return out[0], nil
}

// CreateBatch implements store.Store. The batch is inserted in one transaction.
func (s *Store) CreateBatch(ctx context.Context, ps []model.Payment) ([]model.Payment, error) {
	if len(ps) == 0 {
		return nil, nil
	}

	out, rows := s.stamp(ps)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := existingIDs(tx, ps)
		if err != nil {
			return err
		}
		if err := store.CheckBatch(ps, func(id string) bool { return taken[id] }); err != nil {
			return err
		}
		if err := tx.CreateInBatches(&rows, batchSize).Error; err != nil {
			return fmt.Errorf("inserting payments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// stamp sets the creation times and converts ps to table rows.
func (s *Store) stamp(ps []model.Payment) ([]model.Payment, []paymentRow) {
	now := s.clock.Now()
	out := make([]model.Payment, len(ps))
	rows := make([]paymentRow, len(ps))
	for i, p := range ps {
		p.CreatedAt = now
		p.UpdatedAt = now
		out[i] = p
		rows[i] = toRow(p)
	}
	return out, rows
}

// existingIDs returns which IDs of ps are already stored. The lookup runs in
// chunks of batchSize to stay under the bind parameter limit.
func existingIDs(tx *gorm.DB, ps []model.Payment) (map[string]bool, error) {
	taken := make(map[string]bool)
	for start := 0; start < len(ps); start += batchSize {
		end := min(start+batchSize, len(ps))
		ids := make([]string, 0, end-start)
		for _, p := range ps[start:end] {
			ids = append(ids, p.ID)
		}
		var existing []string
		if err := tx.Model(&paymentRow{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
			return nil, fmt.Errorf("checking ids: %w", err)
		}
		for _, id := range existing {
			taken[id] = true
		}
	}
	return taken, nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (model.Payment, error) {
	var row paymentRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Payment{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return model.Payment{}, fmt.Errorf("loading payment: %w", err)
	}
	return row.payment(), nil
}

// All implements store.Store.
func (s *Store) All(ctx context.Context) ([]model.Payment, error) {
	var rows []paymentRow
	if err := s.db.WithContext(ctx).Order("due_date ASC").Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	out := make([]model.Payment, len(rows))
	for i, r := range rows {
		out[i] = r.payment()
	}
	return out, nil
}

// Update implements store.Store. CreatedAt is kept from the stored record.
func (s *Store) Update(ctx context.Context, p model.Payment) (model.Payment, error) {
	var out model.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur paymentRow
		if err := tx.First(&cur, "id = ?", p.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", store.ErrNotFound, p.ID)
			}
			return fmt.Errorf("loading payment: %w", err)
		}

		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = s.clock.Now()
		row := toRow(p)
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("updating payment: %w", err)
		}
		out = p
		return nil
	})
	return out, err
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&paymentRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return nil
}

// DeleteAll implements store.Store.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	res := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&paymentRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting payments: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// Replace implements store.Store. The delete and the inserts share one
// transaction.
func (s *Store) Replace(ctx context.Context, ps []model.Payment) (int, error) {
	if err := store.CheckBatch(ps, func(string) bool { return false }); err != nil {
		return 0, err
	}
	_, rows := s.stamp(ps)

	var removed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&paymentRow{})
		if res.Error != nil {
			return fmt.Errorf("deleting payments: %w", res.Error)
		}
		removed = int(res.RowsAffected)
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, batchSize).Error; err != nil {
			return fmt.Errorf("inserting payments: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
