package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// InputRepo defines the persistence operations for the user-info form
// schema: InputGroups and their InputItems.
type InputRepo interface {
	// ListGroups returns every group ordered by sort_order, then name, each
	// with its items ordered by sort_order, then label.
	ListGroups(ctx context.Context) ([]domain.InputGroup, error)

	// GetGroup returns a group with its items, or domain.ErrNotFound.
	GetGroup(ctx context.Context, id uuid.UUID) (domain.InputGroup, error)
	CreateGroup(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error)
	UpdateGroup(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error)

	// DeleteGroup removes a group and all of its items.
	DeleteGroup(ctx context.Context, id uuid.UUID) error

	GetItem(ctx context.Context, id uuid.UUID) (domain.InputItem, error)
	CreateItem(ctx context.Context, it domain.InputItem) (domain.InputItem, error)

	// UpdateItem overwrites every field except the owning group.
	UpdateItem(ctx context.Context, it domain.InputItem) (domain.InputItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type pgInputRepo struct {
	db db
}

// NewInputRepo constructs an InputRepo backed by the provided db connection.
func NewInputRepo(db db) InputRepo {
	return &pgInputRepo{db: db}
}

const (
	groupColumns     = `id, name, sort_order, created_at`
	inputItemColumns = `id, group_id, label, field_type, required, default_value, options, sort_order, created_at`
)

func (r *pgInputRepo) ListGroups(ctx context.Context) ([]domain.InputGroup, error) {
	rows, err := r.db.Query(ctx, `SELECT `+groupColumns+` FROM input_groups ORDER BY sort_order, name, id`)
	if err != nil {
		return nil, fmt.Errorf("repo.InputRepo.ListGroups: %w", err)
	}
	groups, err := collect(rows, scanGroup)
	if err != nil {
		return nil, fmt.Errorf("repo.InputRepo.ListGroups: %w", err)
	}

	rows, err = r.db.Query(ctx, `SELECT `+inputItemColumns+` FROM input_items ORDER BY sort_order, label, id`)
	if err != nil {
		return nil, fmt.Errorf("repo.InputRepo.ListGroups: items: %w", err)
	}
	items, err := collect(rows, scanInputItem)
	if err != nil {
		return nil, fmt.Errorf("repo.InputRepo.ListGroups: items: %w", err)
	}

	byGroup := make(map[uuid.UUID][]domain.InputItem, len(groups))
	for _, it := range items {
		byGroup[it.GroupID] = append(byGroup[it.GroupID], it)
	}
	for i := range groups {
		if its, ok := byGroup[groups[i].ID]; ok {
			groups[i].Items = its
		}
	}
	return groups, nil
}

func (r *pgInputRepo) GetGroup(ctx context.Context, id uuid.UUID) (domain.InputGroup, error) {
	g, err := scanGroup(r.db.QueryRow(ctx, `SELECT `+groupColumns+` FROM input_groups WHERE id = @id`, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.InputGroup{}, fmt.Errorf("repo.InputRepo.GetGroup: %w", translate(err))
	}
	const q = `SELECT ` + inputItemColumns + ` FROM input_items WHERE group_id = @id ORDER BY sort_order, label, id`
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return domain.InputGroup{}, fmt.Errorf("repo.InputRepo.GetGroup: items: %w", err)
	}
	if g.Items, err = collect(rows, scanInputItem); err != nil {
		return domain.InputGroup{}, fmt.Errorf("repo.InputRepo.GetGroup: items: %w", err)
	}
	return g, nil
}

func (r *pgInputRepo) CreateGroup(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error) {
	const q = `
		INSERT INTO input_groups (name, sort_order)
		VALUES (@name, @sort_order)
		RETURNING ` + groupColumns

	created, err := scanGroup(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": g.Name, "sort_order": g.SortOrder}))
	if err != nil {
		return domain.InputGroup{}, fmt.Errorf("repo.InputRepo.CreateGroup: %w", translate(err))
	}
	created.Items = []domain.InputItem{}
	return created, nil
}

func (r *pgInputRepo) UpdateGroup(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error) {
	const q = `
		UPDATE input_groups
		SET name = @name, sort_order = @sort_order
		WHERE id = @id
		RETURNING ` + groupColumns

	updated, err := scanGroup(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": g.ID, "name": g.Name, "sort_order": g.SortOrder}))
	if err != nil {
		return domain.InputGroup{}, fmt.Errorf("repo.InputRepo.UpdateGroup: %w", translate(err))
	}
	return updated, nil
}

func (r *pgInputRepo) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM input_groups WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.InputRepo.DeleteGroup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.InputRepo.DeleteGroup: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgInputRepo) GetItem(ctx context.Context, id uuid.UUID) (domain.InputItem, error) {
	it, err := scanInputItem(r.db.QueryRow(ctx, `SELECT `+inputItemColumns+` FROM input_items WHERE id = @id`, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.InputItem{}, fmt.Errorf("repo.InputRepo.GetItem: %w", translate(err))
	}
	return it, nil
}

func (r *pgInputRepo) CreateItem(ctx context.Context, it domain.InputItem) (domain.InputItem, error) {
	const q = `
		INSERT INTO input_items (group_id, label, field_type, required, default_value, options, sort_order)
		VALUES (@group_id, @label, @field_type, @required, @default_value, @options, @sort_order)
		RETURNING ` + inputItemColumns

	args := inputItemArgs(it)
	args["group_id"] = it.GroupID
	created, err := scanInputItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.InputItem{}, fmt.Errorf("repo.InputRepo.CreateItem: %w", translate(err))
	}
	return created, nil
}

func (r *pgInputRepo) UpdateItem(ctx context.Context, it domain.InputItem) (domain.InputItem, error) {
	const q = `
		UPDATE input_items
		SET label         = @label,
		    field_type    = @field_type,
		    required      = @required,
		    default_value = @default_value,
		    options       = @options,
		    sort_order    = @sort_order
		WHERE id = @id
		RETURNING ` + inputItemColumns

	args := inputItemArgs(it)
	args["id"] = it.ID
	updated, err := scanInputItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.InputItem{}, fmt.Errorf("repo.InputRepo.UpdateItem: %w", translate(err))
	}
	return updated, nil
}

func (r *pgInputRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM input_items WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.InputRepo.DeleteItem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.InputRepo.DeleteItem: %w", domain.ErrNotFound)
	}
	return nil
}

func inputItemArgs(it domain.InputItem) pgx.NamedArgs {
	opts := it.Options
	if opts == nil {
		opts = []string{}
	}
	return pgx.NamedArgs{
		"label":         it.Label,
		"field_type":    string(it.Type),
		"required":      it.Required,
		"default_value": it.DefaultValue,
		"options":       opts,
		"sort_order":    it.SortOrder,
	}
}

func scanGroup(s scanner) (domain.InputGroup, error) {
	var (
		g  domain.InputGroup
		id pgtype.UUID
	)
	if err := s.Scan(&id, &g.Name, &g.SortOrder, &g.CreatedAt); err != nil {
		return domain.InputGroup{}, err
	}
	g.ID = uuid.UUID(id.Bytes)
	g.Items = []domain.InputItem{}
	return g, nil
}

func scanInputItem(s scanner) (domain.InputItem, error) {
	var (
		it        domain.InputItem
		id, gid   pgtype.UUID
		fieldType string
	)
	if err := s.Scan(&id, &gid, &it.Label, &fieldType, &it.Required, &it.DefaultValue, &it.Options, &it.SortOrder, &it.CreatedAt); err != nil {
		return domain.InputItem{}, err
	}
	it.ID = uuid.UUID(id.Bytes)
	it.GroupID = uuid.UUID(gid.Bytes)
	it.Type = domain.FieldType(fieldType)
	return it, nil
}
