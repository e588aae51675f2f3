package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/repo"
)

// sessionIDAttempts bounds retries when a generated id collides.
const sessionIDAttempts = 3

// SessionService mints and loads share snapshots.
type SessionService struct {
	sessions repo.SessionRepo
	newID    func() (string, error)
}

// NewSessionService constructs a SessionService that names sessions with
// 21-character nanoids.
func NewSessionService(sessions repo.SessionRepo) *SessionService {
	return &SessionService{sessions: sessions, newID: func() (string, error) { return gonanoid.New() }}
}

// Create persists state as a new immutable session. Selected ids are
// de-duplicated in order; weapon counts are kept only for selected ids and
// must not be negative. A count of zero is stored as given, matching what
// CSV import accepts.
func (s *SessionService) Create(ctx context.Context, state domain.SelectionState) (domain.Session, error) {
	var clean domain.SelectionState
	clean.AddSelected(state.Selected...)
	if clean.Selected == nil {
		clean.Selected = []string{}
	}

	selected := clean.SelectedSet()
	counts := make(map[string]int, len(state.WeaponCounts))
	for id, n := range state.WeaponCounts {
		if _, ok := selected[id]; !ok {
			continue
		}
		if n < 0 {
			return domain.Session{}, fmt.Errorf("%w: weapon count for %q must not be negative", domain.ErrValidation, id)
		}
		counts[id] = n
	}
	values := state.Values
	if values == nil {
		values = domain.FieldValues{}
	}

	for attempt := 1; ; attempt++ {
		id, err := s.newID()
		if err != nil {
			return domain.Session{}, fmt.Errorf("service.SessionService.Create: generate id: %w", err)
		}
		sess, err := s.sessions.Create(ctx, domain.Session{
			ID:              id,
			InputValues:     values,
			SelectedItemIDs: clean.Selected,
			WeaponCounts:    counts,
		})
		if errors.Is(err, domain.ErrConflict) && attempt < sessionIDAttempts {
			continue
		}
		if err != nil {
			return domain.Session{}, fmt.Errorf("service.SessionService.Create: %w", err)
		}
		return sess, nil
	}
}

// Get loads a session. Unknown or empty ids return domain.ErrNotFound.
func (s *SessionService) Get(ctx context.Context, id string) (domain.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Session{}, fmt.Errorf("service.SessionService.Get: %w", domain.ErrNotFound)
	}
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return domain.Session{}, fmt.Errorf("service.SessionService.Get: %w", err)
	}
	return sess, nil
}
