package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// Query describes what the selector screen wants to see.
//
// TagFilters maps filter key to the accepted values. An item passes a key
// when it carries any accepted value (OR within a key) and must pass every
// key with a non-empty list (AND across keys). Empty lists are inactive.
type Query struct {
	Search      string
	OwnedOnly   bool
	SelectedIDs []string
	TagFilters  map[string][]string
}

// ActiveTagFilters reports whether any tag filter has at least one value.
func (q Query) ActiveTagFilters() bool {
	for _, vals := range q.TagFilters {
		if len(vals) > 0 {
			return true
		}
	}
	return false
}

// FilterItems returns the items matching q, preserving input order.
// project supplies each item's tag projection and is only called when a
// tag filter is active.
func FilterItems(items []domain.Item, q Query, project func(domain.Item) TagProjection) []domain.Item {
	search := strings.ToLower(q.Search)
	var selected map[string]struct{}
	if q.OwnedOnly {
		selected = make(map[string]struct{}, len(q.SelectedIDs))
		for _, id := range q.SelectedIDs {
			selected[id] = struct{}{}
		}
	}
	tagsActive := q.ActiveTagFilters()

	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		if q.OwnedOnly {
			if _, ok := selected[item.ID]; !ok {
				continue
			}
		}
		if tagsActive && !MatchesTagFilters(project(item), q.TagFilters) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// MatchesTagFilters reports whether p intersects every non-empty filter.
func MatchesTagFilters(p TagProjection, filters map[string][]string) bool {
	for key, accepted := range filters {
		if len(accepted) == 0 {
			continue
		}
		have := p[key]
		if !slices.ContainsFunc(accepted, have.Has) {
			return false
		}
	}
	return true
}

// SortItems orders items by implementation date (newest first), then name,
// then id.
func SortItems(items []domain.Item) {
	slices.SortStableFunc(items, func(a, b domain.Item) int {
		return cmp.Or(
			b.ImplementedAt.Compare(a.ImplementedAt),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.ID, b.ID),
		)
	})
}
