// Package domain contains the core data types for the Granblue Checker API.
// This package has no dependencies beyond uuid and is imported by every
// other internal package (catalog, repo, service, handler).
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemType is the catalogue partition an item or tag category belongs to.
// Its string value doubles as the literal prefix of every item id.
type ItemType string

const (
	ItemTypeCharacter ItemType = "character"
	ItemTypeWeapon    ItemType = "weapon"
	ItemTypeSummon    ItemType = "summon"
)

// ItemTypes lists every ItemType in display order.
var ItemTypes = []ItemType{ItemTypeCharacter, ItemTypeWeapon, ItemTypeSummon}

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeCharacter, ItemTypeWeapon, ItemTypeSummon:
		return true
	}
	return false
}

// IDPrefix returns the prefix carried by ids of this type, e.g. "weapon_".
func (t ItemType) IDPrefix() string {
	return string(t) + "_"
}

// ParseItemType converts s into an ItemType, ignoring case and surrounding
// whitespace. ok is false for unknown values.
func ParseItemType(s string) (ItemType, bool) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// ItemTypeFromID classifies an item id by its literal prefix.
// ok is false when the id carries none of the known prefixes.
func ItemTypeFromID(id string) (ItemType, bool) {
	for _, t := range ItemTypes {
		if strings.HasPrefix(id, t.IDPrefix()) {
			return t, true
		}
	}
	return "", false
}

// Item is a character, weapon, or summon catalogue entry.
// ImageRef is nil until an image has been uploaded.
type Item struct {
	ID            string
	Name          string
	Type          ItemType
	ImageRef      *string
	BlurHash      *string
	ImplementedAt time.Time
	Tags          []ItemTag
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ItemTag records that an item carries one tag value.
// CategoryID is denormalised from the value so projections need no join.
type ItemTag struct {
	CategoryID uuid.UUID
	ValueID    uuid.UUID
}

// ValueIDs returns the tag value ids carried by the item, in stored order.
func (i Item) ValueIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(i.Tags))
	for n, t := range i.Tags {
		ids[n] = t.ValueID
	}
	return ids
}
