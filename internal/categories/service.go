// Package categories manages the bank, company and business group pick lists.
package categories

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/checktrack/checktrack/internal/model"
)

// FileName is the categories file inside the data directory.
const FileName = "categories.csv"

var (
	// ErrDuplicateItem signals an item already in the list.
	ErrDuplicateItem = errors.New("item already exists")
	// ErrItemNotFound signals an item missing from the list.
	ErrItemNotFound = errors.New("item not found")
)

// Service holds the pick lists and writes changes to categories.csv.
type Service struct {
	path string

	mu   sync.Mutex
	cats []model.Category
}

// Load reads categories.csv from dataDir. A missing file yields Defaults.
func Load(dataDir string) (*Service, error) {
	path := filepath.Join(dataDir, FileName)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Service{path: path, cats: Defaults()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	return &Service{path: path, cats: cats}, nil
}

// All returns every category.
func (s *Service) All() []model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Category, len(s.cats))
	for i, c := range s.cats {
		c.Items = slices.Clone(c.Items)
		out[i] = c
	}
	return out
}

// Get returns one category.
func (s *Service) Get(kind model.CategoryKind) (model.Category, bool) {
	for _, c := range s.All() {
		if c.Kind == kind {
			return c, true
		}
	}
	return model.Category{}, false
}

// Add appends an item. Requires manageCategories.
func (s *Service) Add(actor model.User, kind model.CategoryKind, item string) error {
	item = strings.TrimSpace(item)
	if item == "" {
		return fmt.Errorf("item is required")
	}
	return s.change(actor, kind, func(items []string) ([]string, error) {
		if slices.Contains(items, item) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, item)
		}
		return append(items, item), nil
	})
}

// Remove deletes an item. Requires manageCategories.
func (s *Service) Remove(actor model.User, kind model.CategoryKind, item string) error {
	item = strings.TrimSpace(item)
	return s.change(actor, kind, func(items []string) ([]string, error) {
		i := slices.Index(items, item)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, item)
		}
		return slices.Delete(items, i, i+1), nil
	})
}

// Replace sets the whole list of a kind. Blank and repeated items are dropped.
// Requires manageCategories.
func (s *Service) Replace(actor model.User, kind model.CategoryKind, items []string) (model.Category, error) {
	err := s.change(actor, kind, func([]string) ([]string, error) {
		out := []string{}
		for _, it := range items {
			it = strings.TrimSpace(it)
			if it != "" && !slices.Contains(out, it) {
				out = append(out, it)
			}
		}
		return out, nil
	})
	if err != nil {
		return model.Category{}, err
	}
	c, _ := s.Get(kind)
	return c, nil
}

// Save writes the current lists to categories.csv.
func (s *Service) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(s.cats)
}

func (s *Service) change(actor model.User, kind model.CategoryKind, fn func([]string) ([]string, error)) error {
	if err := model.Require(actor, model.PermManageCategories); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Category, len(s.cats))
	copy(next, s.cats)
	c := find(next, kind)
	if c == nil {
		return fmt.Errorf("unknown category %q", kind)
	}
	items, err := fn(slices.Clone(c.Items))
	if err != nil {
		return err
	}
	c.Items = items

	if err := s.save(next); err != nil {
		return err
	}
	s.cats = next
	return nil
}

func (s *Service) save(cats []model.Category) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating categories file: %w", err)
	}
	defer f.Close()

	if err := WriteCategories(f, cats); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}
	return nil
}
