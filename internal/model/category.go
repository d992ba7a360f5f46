package model

import "fmt"

// CategoryKind identifies one of the pick lists offered for a payment field.
type CategoryKind string

const (
	CategoryBank          CategoryKind = "bank"
	CategoryCompany       CategoryKind = "company"
	CategoryBusinessGroup CategoryKind = "businessGroup"
)

// ParseCategoryKind accepts the kind names used on the CLI and the API.
func ParseCategoryKind(s string) (CategoryKind, error) {
	switch s {
	case "bank":
		return CategoryBank, nil
	case "company":
		return CategoryCompany, nil
	case "businessGroup", "business-group", "business_group":
		return CategoryBusinessGroup, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Category is a named pick list.
type Category struct {
	Kind  CategoryKind `json:"id"`
	Name  string       `json:"name"`
	Items []string     `json:"items"`
}
