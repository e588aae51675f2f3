package interchange

import (
	"cmp"
	"slices"
	"time"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/form"
)

// BuildDocument lays out state as an export document.
//
// Item rows are grouped by type (characters, weapons, summons) and keep
// selection order within a type. Selected ids missing from items (deleted
// since they were picked) are still written, with an empty name, so an
// export never silently drops part of a selection.
//
// User-info rows follow the form schema order; values whose key is not an
// input item in groups come last, sorted by key, with their type inferred
// from the value.
func BuildDocument(state domain.SelectionState, items []domain.Item, groups []domain.InputGroup, now time.Time) Document {
	doc := Document{ExportedAt: now}

	byID := make(map[string]domain.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	seen := make(map[string]struct{}, len(state.Selected))
	for _, id := range state.Selected {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		row := ItemRow{ID: id}
		if it, ok := byID[id]; ok {
			row.Type, row.Name = it.Type, it.Name
		} else {
			row.Type, _ = classify(id, "")
		}
		if row.Type == domain.ItemTypeWeapon {
			if n, ok := state.WeaponCounts[id]; ok {
				row.Count = &n
			}
		}
		doc.Items = append(doc.Items, row)
	}
	slices.SortStableFunc(doc.Items, func(a, b ItemRow) int {
		return cmp.Compare(typeRank(a.Type), typeRank(b.Type))
	})

	written := make(map[string]struct{})
	for _, g := range groups {
		for _, in := range g.Items {
			key := in.ID.String()
			v, ok := state.Values[key]
			if !ok {
				continue
			}
			written[key] = struct{}{}
			doc.UserInfo = append(doc.UserInfo, UserInfoRow{
				GroupID:   g.ID.String(),
				GroupName: g.Name,
				ItemID:    key,
				ItemName:  in.Label,
				ItemType:  in.Type,
				Value:     form.Format(in.Type, v),
			})
		}
	}
	var rest []string
	for key := range state.Values {
		if _, ok := written[key]; !ok {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	for _, key := range rest {
		v := state.Values[key]
		ft := form.InferType(v)
		doc.UserInfo = append(doc.UserInfo, UserInfoRow{
			ItemID:   key,
			ItemName: key,
			ItemType: ft,
			Value:    form.Format(ft, v),
		})
	}
	return doc
}

func typeRank(t domain.ItemType) int {
	if i := slices.Index(domain.ItemTypes, t); i >= 0 {
		return i
	}
	return len(domain.ItemTypes)
}
