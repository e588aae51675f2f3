package domain

import "time"

// FieldValues maps input item ids to the value the user entered.
// Values are JSON-compatible: string, float64, bool, or nil.
type FieldValues map[string]any

// Session is an immutable snapshot of a user's form values and selection,
// referenced by a shareable link. There is no update operation: every share
// mints a new Session.
type Session struct {
	ID              string
	InputValues     FieldValues
	SelectedItemIDs []string
	WeaponCounts    map[string]int
	CreatedAt       time.Time
}

// State returns the session contents as a SelectionState.
func (s Session) State() SelectionState {
	return SelectionState{
		Values:       s.InputValues,
		Selected:     s.SelectedItemIDs,
		WeaponCounts: s.WeaponCounts,
	}
}
