// Package catalog holds the pure data-shaping steps behind the selector
// screens and the export pipeline: deriving filter keys from tag categories,
// projecting an item's tags onto those keys, and filtering item lists.
//
// Nothing here performs I/O. Every function is a deterministic transformation
// of its arguments, so callers fetch a fresh snapshot from the repos and
// hand it in.
package catalog

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// filterKeySeparator joins the whitespace-separated words of a category name.
const filterKeySeparator = "_"

// CategoryKeyMap maps a tag category id to its filter key.
type CategoryKeyMap map[uuid.UUID]string

// NormalizeFilterKey derives a filter key from a display string.
//
// The string is NFKC-normalised (so full-width letters and the ideographic
// space fold to their ASCII forms), lower-cased, and every run of
// whitespace collapses to a single "_". Leading and trailing whitespace is
// dropped. "Weapon  Type" and "ｗｅａｐｏｎ　type" both become "weapon_type".
func NormalizeFilterKey(name string) string {
	s := norm.NFKC.String(name)
	s = cases.Lower(language.Und).String(s)
	return strings.Join(strings.Fields(s), filterKeySeparator)
}

// FilterKey returns the filter key for c: derived from c.Role when set,
// otherwise from c.Name.
func FilterKey(c domain.TagCategory) string {
	if strings.TrimSpace(c.Role) != "" {
		return NormalizeFilterKey(c.Role)
	}
	return NormalizeFilterKey(c.Name)
}

// BuildCategoryKeyMap maps every category id to its filter key.
// Categories whose key normalises to "" are left out. Two categories with
// the same normalised name share a key; that grouping is intentional.
func BuildCategoryKeyMap(categories []domain.TagCategory) CategoryKeyMap {
	m := make(CategoryKeyMap, len(categories))
	for _, c := range categories {
		if key := FilterKey(c); key != "" {
			m[c.ID] = key
		}
	}
	return m
}
