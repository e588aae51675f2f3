package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// CategoryRepo defines the persistence operations for TagCategories.
type CategoryRepo interface {
	// Create inserts a category and returns it with its generated id.
	Create(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error)

	// GetByID returns domain.ErrNotFound if no category has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.TagCategory, error)

	// ListByType returns the categories of one item type ordered by
	// sort_order, then name, then id. Colliding sort orders are allowed.
	ListByType(ctx context.Context, t domain.ItemType) ([]domain.TagCategory, error)

	// Update overwrites the mutable fields. The item type cannot change.
	Update(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error)

	// Delete removes a category with its values and their item associations.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgCategoryRepo struct {
	db db
}

// NewCategoryRepo constructs a CategoryRepo backed by the provided db connection.
func NewCategoryRepo(db db) CategoryRepo {
	return &pgCategoryRepo{db: db}
}

const categoryColumns = `id, name, role, item_type, multi_select, required, sort_order, created_at`

func (r *pgCategoryRepo) Create(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error) {
	const q = `
		INSERT INTO tag_categories (name, role, item_type, multi_select, required, sort_order)
		VALUES (@name, @role, @item_type, @multi_select, @required, @sort_order)
		RETURNING ` + categoryColumns

	args := pgx.NamedArgs{
		"name":         c.Name,
		"role":         c.Role,
		"item_type":    string(c.ItemType),
		"multi_select": c.MultiSelect,
		"required":     c.Required,
		"sort_order":   c.SortOrder,
	}
	result, err := scanCategory(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TagCategory{}, fmt.Errorf("repo.CategoryRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TagCategory, error) {
	const q = `SELECT ` + categoryColumns + ` FROM tag_categories WHERE id = @id`

	result, err := scanCategory(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.TagCategory{}, fmt.Errorf("repo.CategoryRepo.GetByID: %w", translate(err))
	}
	return result, nil
}

func (r *pgCategoryRepo) ListByType(ctx context.Context, t domain.ItemType) ([]domain.TagCategory, error) {
	const q = `
		SELECT ` + categoryColumns + `
		FROM tag_categories
		WHERE item_type = @item_type
		ORDER BY sort_order, name, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"item_type": string(t)})
	if err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.ListByType: %w", err)
	}
	cats, err := collect(rows, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.ListByType: %w", err)
	}
	return cats, nil
}

func (r *pgCategoryRepo) Update(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error) {
	const q = `
		UPDATE tag_categories
		SET name         = @name,
		    role         = @role,
		    multi_select = @multi_select,
		    required     = @required,
		    sort_order   = @sort_order
		WHERE id = @id
		RETURNING ` + categoryColumns

	args := pgx.NamedArgs{
		"id":           c.ID,
		"name":         c.Name,
		"role":         c.Role,
		"multi_select": c.MultiSelect,
		"required":     c.Required,
		"sort_order":   c.SortOrder,
	}
	result, err := scanCategory(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TagCategory{}, fmt.Errorf("repo.CategoryRepo.Update: %w", translate(err))
	}
	return result, nil
}

func (r *pgCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tag_categories WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.CategoryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CategoryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanCategory(s scanner) (domain.TagCategory, error) {
	var (
		c        domain.TagCategory
		id       pgtype.UUID
		itemType string
	)
	if err := s.Scan(&id, &c.Name, &c.Role, &itemType, &c.MultiSelect, &c.Required, &c.SortOrder, &c.CreatedAt); err != nil {
		return domain.TagCategory{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	c.ItemType = domain.ItemType(itemType)
	return c, nil
}
