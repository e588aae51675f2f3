package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// ItemRepo defines the persistence operations for Items and the item_tags
// association table. Every read returns items with their Tags populated.
type ItemRepo interface {
	// Create inserts the item and its tag associations in one transaction.
	// The caller supplies the id.
	Create(ctx context.Context, item domain.Item) (domain.Item, error)

	// GetByID returns domain.ErrNotFound if no item has that id.
	GetByID(ctx context.Context, id string) (domain.Item, error)

	// ListByType returns every item of one type ordered by implementation
	// date descending, then name, then id.
	ListByType(ctx context.Context, t domain.ItemType) ([]domain.Item, error)

	// ListPaged returns one page of items and the total count. An empty t
	// includes every type.
	ListPaged(ctx context.Context, t domain.ItemType, p domain.PaginationParams) ([]domain.Item, int64, error)

	// ListByIDs returns the items whose ids are in ids; unknown ids are
	// silently absent from the result.
	ListByIDs(ctx context.Context, ids []string) ([]domain.Item, error)

	// Update overwrites name and implementation date and replaces the full
	// tag set, in one transaction. The item type cannot change.
	Update(ctx context.Context, item domain.Item) (domain.Item, error)

	// SetImage records the stored image reference and its BlurHash.
	SetImage(ctx context.Context, id, imageRef string, blurHash *string) (domain.Item, error)

	// Delete removes an item and its tag associations.
	Delete(ctx context.Context, id string) error
}

type pgItemRepo struct {
	db db
}

// NewItemRepo constructs an ItemRepo backed by the provided db connection.
func NewItemRepo(db db) ItemRepo {
	return &pgItemRepo{db: db}
}

const itemColumns = `id, name, item_type, image_ref, blur_hash, implemented_at, created_at, updated_at`

func (r *pgItemRepo) Create(ctx context.Context, item domain.Item) (domain.Item, error) {
	const q = `
		INSERT INTO items (id, name, item_type, implemented_at)
		VALUES (@id, @name, @item_type, @implemented_at)
		RETURNING ` + itemColumns

	var result domain.Item
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		args := pgx.NamedArgs{
			"id":             item.ID,
			"name":           item.Name,
			"item_type":      string(item.Type),
			"implemented_at": item.ImplementedAt,
		}
		created, err := scanItem(tx.QueryRow(ctx, q, args))
		if err != nil {
			return translate(err)
		}
		if err := insertTags(ctx, tx, item.ID, item.ValueIDs()); err != nil {
			return err
		}
		created.Tags, err = loadTags(ctx, tx, item.ID)
		result = created
		return err
	})
	if err != nil {
		return domain.Item{}, fmt.Errorf("repo.ItemRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) GetByID(ctx context.Context, id string) (domain.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items WHERE id = @id`

	item, err := scanItem(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Item{}, fmt.Errorf("repo.ItemRepo.GetByID: %w", translate(err))
	}
	if item.Tags, err = loadTags(ctx, r.db, id); err != nil {
		return domain.Item{}, fmt.Errorf("repo.ItemRepo.GetByID: %w", err)
	}
	return item, nil
}

func (r *pgItemRepo) ListByType(ctx context.Context, t domain.ItemType) ([]domain.Item, error) {
	const q = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE item_type = @item_type
		ORDER BY implemented_at DESC, name, id`

	return r.list(ctx, "ListByType", q, pgx.NamedArgs{"item_type": string(t)})
}

func (r *pgItemRepo) ListPaged(ctx context.Context, t domain.ItemType, p domain.PaginationParams) ([]domain.Item, int64, error) {
	const countQ = `SELECT count(*) FROM items WHERE @item_type = '' OR item_type = @item_type`
	const q = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE @item_type = '' OR item_type = @item_type
		ORDER BY implemented_at DESC, name, id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"item_type": string(t)}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ItemRepo.ListPaged: count: %w", err)
	}
	items, err := r.list(ctx, "ListPaged", q, pgx.NamedArgs{
		"item_type": string(t),
		"limit":     p.Limit,
		"offset":    p.Offset(),
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *pgItemRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Item, error) {
	if len(ids) == 0 {
		return []domain.Item{}, nil
	}
	const q = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE id = ANY(@ids)
		ORDER BY implemented_at DESC, name, id`

	return r.list(ctx, "ListByIDs", q, pgx.NamedArgs{"ids": ids})
}

// list runs an item query and attaches every item's tags with one extra
// query rather than one per item.
func (r *pgItemRepo) list(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.Item, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.%s: %w", op, err)
	}
	items, err := collect(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.%s: %w", op, err)
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	tags, err := loadTagsFor(ctx, r.db, ids)
	if err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.%s: %w", op, err)
	}
	for i := range items {
		items[i].Tags = tags[items[i].ID]
		if items[i].Tags == nil {
			items[i].Tags = []domain.ItemTag{}
		}
	}
	return items, nil
}

func (r *pgItemRepo) Update(ctx context.Context, item domain.Item) (domain.Item, error) {
	const q = `
		UPDATE items
		SET name           = @name,
		    implemented_at = @implemented_at,
		    updated_at     = now()
		WHERE id = @id
		RETURNING ` + itemColumns

	var result domain.Item
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		args := pgx.NamedArgs{
			"id":             item.ID,
			"name":           item.Name,
			"implemented_at": item.ImplementedAt,
		}
		updated, err := scanItem(tx.QueryRow(ctx, q, args))
		if err != nil {
			return translate(err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM item_tags WHERE item_id = @id`, pgx.NamedArgs{"id": item.ID}); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		if err := insertTags(ctx, tx, item.ID, item.ValueIDs()); err != nil {
			return err
		}
		updated.Tags, err = loadTags(ctx, tx, item.ID)
		result = updated
		return err
	})
	if err != nil {
		return domain.Item{}, fmt.Errorf("repo.ItemRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) SetImage(ctx context.Context, id, imageRef string, blurHash *string) (domain.Item, error) {
	const q = `
		UPDATE items
		SET image_ref  = @image_ref,
		    blur_hash  = @blur_hash,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + itemColumns

	args := pgx.NamedArgs{"id": id, "image_ref": imageRef, "blur_hash": blurHash}
	item, err := scanItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Item{}, fmt.Errorf("repo.ItemRepo.SetImage: %w", translate(err))
	}
	if item.Tags, err = loadTags(ctx, r.db, id); err != nil {
		return domain.Item{}, fmt.Errorf("repo.ItemRepo.SetImage: %w", err)
	}
	return item, nil
}

func (r *pgItemRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ItemRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItemRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func insertTags(ctx context.Context, q db, itemID string, valueIDs []uuid.UUID) error {
	if len(valueIDs) == 0 {
		return nil
	}
	const stmt = `
		INSERT INTO item_tags (item_id, tag_value_id)
		SELECT @item_id, unnest(@value_ids::uuid[])
		ON CONFLICT DO NOTHING`

	if _, err := q.Exec(ctx, stmt, pgx.NamedArgs{"item_id": itemID, "value_ids": uuidStrings(valueIDs)}); err != nil {
		return fmt.Errorf("insert tags: %w", translate(err))
	}
	return nil
}

const tagQuery = `
	SELECT it.item_id, v.category_id, v.id
	FROM item_tags it
	JOIN tag_values v ON v.id = it.tag_value_id
	JOIN tag_categories c ON c.id = v.category_id
	WHERE it.item_id = ANY(@ids)
	ORDER BY it.item_id, c.sort_order, c.name, v.sort_order, v.value`

func loadTags(ctx context.Context, q db, itemID string) ([]domain.ItemTag, error) {
	byItem, err := loadTagsFor(ctx, q, []string{itemID})
	if err != nil {
		return nil, err
	}
	if tags := byItem[itemID]; tags != nil {
		return tags, nil
	}
	return []domain.ItemTag{}, nil
}

func loadTagsFor(ctx context.Context, q db, ids []string) (map[string][]domain.ItemTag, error) {
	rows, err := q.Query(ctx, tagQuery, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.ItemTag, len(ids))
	for rows.Next() {
		var (
			itemID   string
			cid, vid pgtype.UUID
		)
		if err := rows.Scan(&itemID, &cid, &vid); err != nil {
			return nil, fmt.Errorf("load tags: scan: %w", err)
		}
		out[itemID] = append(out[itemID], domain.ItemTag{
			CategoryID: uuid.UUID(cid.Bytes),
			ValueID:    uuid.UUID(vid.Bytes),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load tags: rows: %w", err)
	}
	return out, nil
}

func scanItem(s scanner) (domain.Item, error) {
	var (
		it       domain.Item
		itemType string
		implDate pgtype.Date
	)
	if err := s.Scan(&it.ID, &it.Name, &itemType, &it.ImageRef, &it.BlurHash, &implDate, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return domain.Item{}, err
	}
	it.Type = domain.ItemType(itemType)
	it.ImplementedAt = implDate.Time
	return it, nil
}
