package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// ValueRepo defines the persistence operations for TagValues.
type ValueRepo interface {
	// Create inserts a value. A duplicate value string within the category
	// returns domain.ErrConflict.
	Create(ctx context.Context, v domain.TagValue) (domain.TagValue, error)

	// GetByID returns domain.ErrNotFound if no value has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.TagValue, error)

	// ListByCategory returns a category's values ordered by sort_order, value.
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.TagValue, error)

	// ListByType returns the values of every category of one item type.
	ListByType(ctx context.Context, t domain.ItemType) ([]domain.TagValue, error)

	// ListByIDs returns the values whose ids are in ids; unknown ids are
	// silently absent from the result.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.TagValue, error)

	// Update overwrites the value text and sort order.
	Update(ctx context.Context, v domain.TagValue) (domain.TagValue, error)

	// Delete removes a value and its item associations.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgValueRepo struct {
	db db
}

// NewValueRepo constructs a ValueRepo backed by the provided db connection.
func NewValueRepo(db db) ValueRepo {
	return &pgValueRepo{db: db}
}

const valueColumns = `v.id, v.category_id, v.value, v.sort_order, v.created_at`

func (r *pgValueRepo) Create(ctx context.Context, v domain.TagValue) (domain.TagValue, error) {
	const q = `
		INSERT INTO tag_values AS v (category_id, value, sort_order)
		VALUES (@category_id, @value, @sort_order)
		RETURNING ` + valueColumns

	args := pgx.NamedArgs{
		"category_id": v.CategoryID,
		"value":       v.Value,
		"sort_order":  v.SortOrder,
	}
	result, err := scanValue(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TagValue{}, fmt.Errorf("repo.ValueRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgValueRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TagValue, error) {
	const q = `SELECT ` + valueColumns + ` FROM tag_values v WHERE v.id = @id`

	result, err := scanValue(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.TagValue{}, fmt.Errorf("repo.ValueRepo.GetByID: %w", translate(err))
	}
	return result, nil
}

func (r *pgValueRepo) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.TagValue, error) {
	const q = `
		SELECT ` + valueColumns + `
		FROM tag_values v
		WHERE v.category_id = @category_id
		ORDER BY v.sort_order, v.value`

	return r.list(ctx, "ListByCategory", q, pgx.NamedArgs{"category_id": categoryID})
}

func (r *pgValueRepo) ListByType(ctx context.Context, t domain.ItemType) ([]domain.TagValue, error) {
	const q = `
		SELECT ` + valueColumns + `
		FROM tag_values v
		JOIN tag_categories c ON c.id = v.category_id
		WHERE c.item_type = @item_type
		ORDER BY c.sort_order, c.name, v.sort_order, v.value`

	return r.list(ctx, "ListByType", q, pgx.NamedArgs{"item_type": string(t)})
}

func (r *pgValueRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.TagValue, error) {
	if len(ids) == 0 {
		return []domain.TagValue{}, nil
	}
	const q = `
		SELECT ` + valueColumns + `
		FROM tag_values v
		WHERE v.id = ANY(@ids::uuid[])
		ORDER BY v.sort_order, v.value`

	return r.list(ctx, "ListByIDs", q, pgx.NamedArgs{"ids": uuidStrings(ids)})
}

func (r *pgValueRepo) list(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.TagValue, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ValueRepo.%s: %w", op, err)
	}
	values, err := collect(rows, scanValue)
	if err != nil {
		return nil, fmt.Errorf("repo.ValueRepo.%s: %w", op, err)
	}
	return values, nil
}

func (r *pgValueRepo) Update(ctx context.Context, v domain.TagValue) (domain.TagValue, error) {
	const q = `
		UPDATE tag_values AS v
		SET value      = @value,
		    sort_order = @sort_order
		WHERE v.id = @id
		RETURNING ` + valueColumns

	args := pgx.NamedArgs{"id": v.ID, "value": v.Value, "sort_order": v.SortOrder}
	result, err := scanValue(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TagValue{}, fmt.Errorf("repo.ValueRepo.Update: %w", translate(err))
	}
	return result, nil
}

func (r *pgValueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tag_values WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ValueRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ValueRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanValue(s scanner) (domain.TagValue, error) {
	var (
		v       domain.TagValue
		id, cid pgtype.UUID
	)
	if err := s.Scan(&id, &cid, &v.Value, &v.SortOrder, &v.CreatedAt); err != nil {
		return domain.TagValue{}, err
	}
	v.ID = uuid.UUID(id.Bytes)
	v.CategoryID = uuid.UUID(cid.Bytes)
	return v, nil
}

// uuidStrings renders ids for a text[] parameter cast to uuid[] in SQL.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
