package catalog

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// Taxonomy is a read-only snapshot of the categories and values for one
// item type, with the lookups derived from them.
type Taxonomy struct {
	ItemType   domain.ItemType
	Categories []domain.TagCategory
	Values     []domain.TagValue
	Index      ValueIndex
	Keys       CategoryKeyMap
}

// NewTaxonomy builds the derived lookups. Categories and values are sorted
// by (sort order, name/value, id) so colliding sort orders still produce a
// stable layout.
func NewTaxonomy(itemType domain.ItemType, categories []domain.TagCategory, values []domain.TagValue) Taxonomy {
	cats := slices.Clone(categories)
	slices.SortStableFunc(cats, func(a, b domain.TagCategory) int {
		return cmp.Or(
			cmp.Compare(a.SortOrder, b.SortOrder),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.ID.String(), b.ID.String()),
		)
	})
	vals := slices.Clone(values)
	slices.SortStableFunc(vals, func(a, b domain.TagValue) int {
		return cmp.Or(
			cmp.Compare(a.SortOrder, b.SortOrder),
			cmp.Compare(a.Value, b.Value),
			cmp.Compare(a.ID.String(), b.ID.String()),
		)
	})
	return Taxonomy{
		ItemType:   itemType,
		Categories: cats,
		Values:     vals,
		Index:      BuildValueIndex(vals),
		Keys:       BuildCategoryKeyMap(cats),
	}
}

// Project is ProjectItemTags bound to this taxonomy.
func (t Taxonomy) Project(item domain.Item) TagProjection {
	return ProjectItemTags(item, t.Index, t.Keys)
}

// CategoriesByKey returns every category whose filter key equals key, in
// display order. Categories whose names normalise alike share a key.
func (t Taxonomy) CategoriesByKey(key string) []domain.TagCategory {
	var out []domain.TagCategory
	for _, c := range t.Categories {
		if t.Keys[c.ID] == key {
			out = append(out, c)
		}
	}
	return out
}

// ValueByText finds the value with the given text inside category.
func (t Taxonomy) ValueByText(categoryID uuid.UUID, text string) (domain.TagValue, bool) {
	for _, v := range t.Values {
		if v.CategoryID == categoryID && v.Value == text {
			return v, true
		}
	}
	return domain.TagValue{}, false
}

// FilterOption is one filter group as the selector UI shows it.
type FilterOption struct {
	Key         string
	Label       string
	MultiSelect bool
	Values      []string
}

// FilterOptions lists one option group per filter key, in category order.
// Categories sharing a key merge into one group; duplicate value strings
// appear once.
func (t Taxonomy) FilterOptions() []FilterOption {
	byCategory := make(map[uuid.UUID][]string)
	for _, v := range t.Values {
		byCategory[v.CategoryID] = append(byCategory[v.CategoryID], v.Value)
	}

	var out []FilterOption
	pos := make(map[string]int)
	for _, c := range t.Categories {
		key, ok := t.Keys[c.ID]
		if !ok {
			continue
		}
		i, seen := pos[key]
		if !seen {
			i = len(out)
			pos[key] = i
			out = append(out, FilterOption{Key: key, Label: c.Name, MultiSelect: c.MultiSelect})
		}
		for _, v := range byCategory[c.ID] {
			if !slices.Contains(out[i].Values, v) {
				out[i].Values = append(out[i].Values, v)
			}
		}
	}
	return out
}
