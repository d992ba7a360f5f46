// Package csvstore keeps payments in a CSV file inside the data directory.
package csvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/checktrack/checktrack/internal/clock"
	"github.com/checktrack/checktrack/internal/model"
	"github.com/checktrack/checktrack/internal/store"
)

// FileName is the payments file inside the data directory.
const FileName = "payments.csv"

// Store is a store.Store backed by <dataDir>/payments.csv. Every call reads
// the file and every mutation rewrites it.
type Store struct {
	path  string
	clock clock.Clock
	mu    sync.Mutex
}

var _ store.Store = (*Store)(nil)

// New returns a store for dataDir. The file is created on first write.
func New(dataDir string, clk clock.Clock) *Store {
	return &Store{path: filepath.Join(dataDir, FileName), clock: clk}
}

// Path returns the payments file path.
func (s *Store) Path() string { return s.path }

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Create implements store.Store.
func (s *Store) Create(ctx context.Context, p model.Payment) (model.Payment, error) {
	out, err := s.CreateBatch(ctx, []model.Payment{p})
	if err != nil {
		return model.Payment{}, err
	}
	return out[0], nil
}

// CreateBatch implements store.Store.
func (s *Store) CreateBatch(ctx context.Context, ps []model.Payment) ([]model.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(all))
	for _, p := range all {
		ids[p.ID] = true
	}
	if err := store.CheckBatch(ps, func(id string) bool { return ids[id] }); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := make([]model.Payment, len(ps))
	for i, p := range ps {
		p.CreatedAt = now
		p.UpdatedAt = now
		out[i] = p
	}
	if err := s.save(append(all, out...)); err != nil {
		return nil, err
	}
	return out, nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (model.Payment, error) {
	if err := ctx.Err(); err != nil {
		return model.Payment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return model.Payment{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Payment{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
}

// All implements store.Store.
func (s *Store) All(ctx context.Context) ([]model.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}
	store.SortByDueDate(all)
	return all, nil
}

// Update implements store.Store. CreatedAt is kept from the stored record.
func (s *Store) Update(ctx context.Context, p model.Payment) (model.Payment, error) {
	if err := ctx.Err(); err != nil {
		return model.Payment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return model.Payment{}, err
	}
	for i := range all {
		if all[i].ID != p.ID {
			continue
		}
		p.CreatedAt = all[i].CreatedAt
		p.UpdatedAt = s.clock.Now()
		all[i] = p
		if err := s.save(all); err != nil {
			return model.Payment{}, err
		}
		return p, nil
	}
	return model.Payment{}, fmt.Errorf("%w: %s", store.ErrNotFound, p.ID)
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id {
			return s.save(append(all[:i], all[i+1:]...))
		}
	}
	return fmt.Errorf("%w: %s", store.ErrNotFound, id)
}

// DeleteAll implements store.Store.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return 0, err
	}
	if err := s.save(nil); err != nil {
		return 0, err
	}
	return len(all), nil
}

// Replace implements store.Store.
func (s *Store) Replace(ctx context.Context, ps []model.Payment) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := store.CheckBatch(ps, func(string) bool { return false }); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	out := make([]model.Payment, len(ps))
	for i, p := range ps {
		p.CreatedAt = now
		p.UpdatedAt = now
		out[i] = p
	}
	if err := s.save(out); err != nil {
		return 0, err
	}
	return len(all), nil
}

func (s *Store) load() ([]model.Payment, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", FileName, err)
	}
	defer f.Close()

	payments, err := ReadPayments(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FileName, err)
	}
	return payments, nil
}

// save writes to a temporary file and renames it over payments.csv.
func (s *Store) save(payments []model.Payment) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".payments-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WritePayments(tmp, payments); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", FileName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", FileName, err)
	}
	return nil
}
