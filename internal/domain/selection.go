package domain

// SelectionState is the user's working state: form values, selected item
// ids, and how many copies of each selected weapon they own.
//
// It is passed explicitly to the operations that read or merge it (share,
// export, import) instead of living in any process-wide variable.
type SelectionState struct {
	Values       FieldValues
	Selected     []string
	WeaponCounts map[string]int
}

// Clone returns a deep copy so callers can merge into the copy without
// touching the original.
func (s SelectionState) Clone() SelectionState {
	out := SelectionState{
		Values:       make(FieldValues, len(s.Values)),
		Selected:     append([]string(nil), s.Selected...),
		WeaponCounts: make(map[string]int, len(s.WeaponCounts)),
	}
	for k, v := range s.Values {
		out.Values[k] = v
	}
	for k, v := range s.WeaponCounts {
		out.WeaponCounts[k] = v
	}
	return out
}

// SelectedSet returns the selected ids as a set.
func (s SelectionState) SelectedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Selected))
	for _, id := range s.Selected {
		set[id] = struct{}{}
	}
	return set
}

// AddSelected appends ids that are not already selected, preserving the
// existing order. Duplicates within ids collapse too.
func (s *SelectionState) AddSelected(ids ...string) {
	seen := s.SelectedSet()
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		s.Selected = append(s.Selected, id)
	}
}
