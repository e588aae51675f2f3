package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// SessionRepo persists share snapshots. Sessions are immutable: there is no
// update or delete.
type SessionRepo interface {
	// Create inserts a session under the id the caller generated. An id
	// collision returns domain.ErrConflict.
	Create(ctx context.Context, s domain.Session) (domain.Session, error)

	// GetByID returns domain.ErrNotFound if no session has that id.
	GetByID(ctx context.Context, id string) (domain.Session, error)
}

type pgSessionRepo struct {
	db db
}

// NewSessionRepo constructs a SessionRepo backed by the provided db connection.
func NewSessionRepo(db db) SessionRepo {
	return &pgSessionRepo{db: db}
}

const sessionColumns = `id, input_values, selected_item_ids, weapon_counts, created_at`

func (r *pgSessionRepo) Create(ctx context.Context, s domain.Session) (domain.Session, error) {
	const q = `
		INSERT INTO sessions (id, input_values, selected_item_ids, weapon_counts)
		VALUES (@id, @input_values, @selected_item_ids, @weapon_counts)
		RETURNING ` + sessionColumns

	// JSONB and text[] columns are NOT NULL; nil maps and slices would
	// encode as NULL.
	values := s.InputValues
	if values == nil {
		values = domain.FieldValues{}
	}
	selected := s.SelectedItemIDs
	if selected == nil {
		selected = []string{}
	}
	counts := s.WeaponCounts
	if counts == nil {
		counts = map[string]int{}
	}

	args := pgx.NamedArgs{
		"id":                s.ID,
		"input_values":      values,
		"selected_item_ids": selected,
		"weapon_counts":     counts,
	}
	result, err := scanSession(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgSessionRepo) GetByID(ctx context.Context, id string) (domain.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = @id`

	result, err := scanSession(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.GetByID: %w", translate(err))
	}
	return result, nil
}

func scanSession(s scanner) (domain.Session, error) {
	var (
		sess   domain.Session
		values map[string]any
	)
	if err := s.Scan(&sess.ID, &values, &sess.SelectedItemIDs, &sess.WeaponCounts, &sess.CreatedAt); err != nil {
		return domain.Session{}, err
	}
	sess.InputValues = domain.FieldValues(values)
	return sess, nil
}
