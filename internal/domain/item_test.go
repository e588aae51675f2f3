package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/granblue-checker/internal/domain"
)

func TestItemTypeFromID(t *testing.T) {
	tests := []struct {
		id     string
		want   domain.ItemType
		wantOK bool
	}{
		{"character_001", domain.ItemTypeCharacter, true},
		{"weapon_abc", domain.ItemTypeWeapon, true},
		{"summon_x", domain.ItemTypeSummon, true},
		{"001", "", false},
		{"characters_001", "", false},
	}
	for _, tc := range tests {
		got, ok := domain.ItemTypeFromID(tc.id)
		assert.Equal(t, tc.wantOK, ok, tc.id)
		assert.Equal(t, tc.want, got, tc.id)
	}
}

func TestParseItemType(t *testing.T) {
	got, ok := domain.ParseItemType(" Weapon ")
	assert.True(t, ok)
	assert.Equal(t, domain.ItemTypeWeapon, got)

	_, ok = domain.ParseItemType("armor")
	assert.False(t, ok)
}

func TestSelectionState_AddSelected_UnionPreservesOrder(t *testing.T) {
	s := domain.SelectionState{Selected: []string{"character_1", "weapon_1"}}

	s.AddSelected("weapon_1", "summon_1", "summon_1", "character_2")

	assert.Equal(t, []string{"character_1", "weapon_1", "summon_1", "character_2"}, s.Selected)
}

func TestSelectionState_Clone_IsIndependent(t *testing.T) {
	orig := domain.SelectionState{
		Values:       domain.FieldValues{"name": "Gran"},
		Selected:     []string{"character_1"},
		WeaponCounts: map[string]int{"weapon_1": 2},
	}

	c := orig.Clone()
	c.Values["name"] = "Djeeta"
	c.Selected[0] = "character_2"
	c.WeaponCounts["weapon_1"] = 5

	assert.Equal(t, "Gran", orig.Values["name"])
	assert.Equal(t, "character_1", orig.Selected[0])
	assert.Equal(t, 2, orig.WeaponCounts["weapon_1"])
}
