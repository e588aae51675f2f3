package catalog

import (
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// ValueRef is the part of a TagValue the projection needs.
type ValueRef struct {
	CategoryID uuid.UUID
	Value      string
}

// ValueIndex resolves tag value ids.
type ValueIndex map[uuid.UUID]ValueRef

// BuildValueIndex indexes values by id.
func BuildValueIndex(values []domain.TagValue) ValueIndex {
	idx := make(ValueIndex, len(values))
	for _, v := range values {
		idx[v.ID] = ValueRef{CategoryID: v.CategoryID, Value: v.Value}
	}
	return idx
}

// StringSet is an unordered set of value strings.
type StringSet map[string]struct{}

// Has reports whether s contains v.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// TagProjection maps a filter key to the values an item carries under it.
type TagProjection map[string]StringSet

// Values returns the sorted values under key, or nil.
func (p TagProjection) Values(key string) []string {
	set, ok := p[key]
	if !ok {
		return nil
	}
	return set.Sorted()
}

// Flatten converts the projection into sorted slices, which is the shape the
// JSON API and the snapshot renderer consume.
func (p TagProjection) Flatten() map[string][]string {
	out := make(map[string][]string, len(p))
	for k, set := range p {
		out[k] = set.Sorted()
	}
	return out
}

// ProjectItemTags groups the values an item carries by filter key.
//
// The category of each association is taken from the value index rather
// than from the association itself, so a stale denormalised category id
// cannot misfile a value. Associations whose value is missing from the
// index, or whose category has no key, are skipped.
func ProjectItemTags(item domain.Item, values ValueIndex, keys CategoryKeyMap) TagProjection {
	out := make(TagProjection)
	for _, tag := range item.Tags {
		ref, ok := values[tag.ValueID]
		if !ok {
			continue
		}
		key, ok := keys[ref.CategoryID]
		if !ok {
			continue
		}
		set, ok := out[key]
		if !ok {
			set = make(StringSet)
			out[key] = set
		}
		set[ref.Value] = struct{}{}
	}
	return out
}
