package adapters

import "strings"

// Category identifies the functional domain an adapter serves
type Category string

const (
	CategoryWeb      Category = "web"
	CategoryDatabase Category = "database"
	CategoryAsync    Category = "async"
	CategoryML       Category = "ml"
)

// AllCategories lists every recognized category in a stable order
var AllCategories = []Category{
	CategoryWeb,
	CategoryDatabase,
	CategoryAsync,
	CategoryML,
}

// Valid reports whether c is one of the recognized categories
func (c Category) Valid() bool {
	switch c {
	case CategoryWeb, CategoryDatabase, CategoryAsync, CategoryML:
		return true
	}
	return false
}

// ParseCategory converts a string into a Category.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", newKindError(KindUnsupportedCategory, "", "", "unsupported adapter category: "+s)
	}
	return c, nil
}

// ProviderName identifies a backing technology within a category
type ProviderName string

func normalizeProvider(p ProviderName) ProviderName {
	return ProviderName(strings.ToLower(strings.TrimSpace(string(p))))
}
