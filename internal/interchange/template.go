package interchange

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// Bulk-upload columns every item sheet has. Any other column is a tag
// column matched against category filter keys.
const (
	ColumnName          = "name"
	ColumnImage         = "image"
	ColumnImplementedAt = "implemented_at"
)

type template struct {
	header  []string
	example []string
}

var templates = map[domain.ItemType]template{
	domain.ItemTypeCharacter: {
		header:  []string{ColumnName, ColumnImage, ColumnImplementedAt, "element", "rarity", "race", "specialty"},
		example: []string{"Katalina", "katalina.png", "2014-03-10", "water", "SSR", "human", "sabre|spear"},
	},
	domain.ItemTypeWeapon: {
		header:  []string{ColumnName, ColumnImage, ColumnImplementedAt, "element", "weapon_type", "series"},
		example: []string{"Luminiera Sword Omega", "luminiera_sword.png", "2015-06-30", "water", "sabre", "omega"},
	},
	domain.ItemTypeSummon: {
		header:  []string{ColumnName, ColumnImage, ColumnImplementedAt, "element", "rarity", "series"},
		example: []string{"Varuna", "varuna.png", "2016-04-13", "water", "SSR", "primal"},
	},
}

// WriteTemplate writes the blank bulk-upload sheet for t: a header row and
// one example row. The template is an authoring aid and is not parsed back
// as an export.
func WriteTemplate(w io.Writer, t domain.ItemType) error {
	tpl, ok := templates[t]
	if !ok {
		return fmt.Errorf("interchange.WriteTemplate: %w: unknown item type %q", domain.ErrValidation, t)
	}
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("interchange.WriteTemplate: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll([][]string{tpl.header, tpl.example}); err != nil {
		return fmt.Errorf("interchange.WriteTemplate: %w", err)
	}
	return nil
}
