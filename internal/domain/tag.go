package domain

import (
	"time"

	"github.com/google/uuid"
)

// TagCategory is a named classification axis scoped to one item type,
// e.g. "element" for characters.
//
// Role is an optional stable semantic key. When set it is used in place of
// Name to derive the category's filter key, so renaming the display text
// does not move the category to a different filter group.
type TagCategory struct {
	ID          uuid.UUID
	Name        string
	Role        string
	ItemType    ItemType
	MultiSelect bool
	Required    bool
	SortOrder   int
	CreatedAt   time.Time
}

// TagValue is one selectable option within a category, e.g. "fire".
// Value is unique within its category.
type TagValue struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Value      string
	SortOrder  int
	CreatedAt  time.Time
}
