package categories

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/checktrack/checktrack/internal/model"
)

const (
	numFields = 2
	colKind   = 0
	colItem   = 1
)

// ReadCategories reads categories.csv: one row per item, grouped by kind.
// Every kind is present in the result, possibly with no items.
func ReadCategories(r io.Reader) ([]model.Category, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}

	cats := empty()
	if len(records) == 0 {
		return cats, nil
	}

	for i, rec := range records[1:] {
		kind, err := model.ParseCategoryKind(rec[colKind])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		c := find(cats, kind)
		c.Items = append(c.Items, rec[colItem])
	}
	return cats, nil
}

// WriteCategories writes categories.csv.
func WriteCategories(w io.Writer, cats []model.Category) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"kind", "item"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, c := range cats {
		for _, item := range c.Items {
			if err := cw.Write([]string{string(c.Kind), item}); err != nil {
				return fmt.Errorf("writing %s item: %w", c.Kind, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func empty() []model.Category {
	cats := make([]model.Category, len(Kinds))
	for i, k := range Kinds {
		cats[i] = model.Category{Kind: k, Name: DisplayName(k), Items: []string{}}
	}
	return cats
}

func find(cats []model.Category, kind model.CategoryKind) *model.Category {
	for i := range cats {
		if cats[i].Kind == kind {
			return &cats[i]
		}
	}
	return nil
}
