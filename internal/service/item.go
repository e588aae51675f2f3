package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/pkordes/granblue-checker/internal/catalog"
	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/media"
	"github.com/pkordes/granblue-checker/internal/repo"
)

// ImageStore is the blob storage item images live in. *media.Storage
// satisfies it.
type ImageStore interface {
	SaveForItem(itemID string, data []byte) (string, error)
	Get(name string) ([]byte, error)
	Delete(name string) error
}

// ItemService implements the catalogue: item CRUD with tag rules enforced
// at write time, image attachment, and the filtered public listing.
type ItemService struct {
	items    repo.ItemRepo
	taxonomy *TaxonomyService
	images   ImageStore
	log      *slog.Logger
}

// NewItemService constructs an ItemService.
func NewItemService(items repo.ItemRepo, taxonomy *TaxonomyService, images ImageStore, log *slog.Logger) *ItemService {
	return &ItemService{items: items, taxonomy: taxonomy, images: images, log: log}
}

// NewItemID mints an id for a new item of type t: the type prefix followed
// by a 21-character nanoid, e.g. "weapon_V1StGXR8_Z5jdHi6B-myT".
func NewItemID(t domain.ItemType) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate item id: %w", err)
	}
	return t.IDPrefix() + id, nil
}

// Create validates item and its tags and persists both in one transaction.
// An empty ID is generated; a supplied ID must carry the type's prefix.
func (s *ItemService) Create(ctx context.Context, item domain.Item) (domain.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if err := validateItem(item); err != nil {
		return domain.Item{}, err
	}
	if item.ID == "" {
		id, err := NewItemID(item.Type)
		if err != nil {
			return domain.Item{}, fmt.Errorf("service.ItemService.Create: %w", err)
		}
		item.ID = id
	} else if !strings.HasPrefix(item.ID, item.Type.IDPrefix()) {
		return domain.Item{}, fmt.Errorf("%w: id %q must start with %q", domain.ErrValidation, item.ID, item.Type.IDPrefix())
	}

	tax, err := s.taxonomy.Taxonomy(ctx, item.Type)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.Create: %w", err)
	}
	if item.Tags, err = resolveTags(tax, item.ValueIDs()); err != nil {
		return domain.Item{}, err
	}

	created, err := s.items.Create(ctx, item)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single item with its tags.
func (s *ItemService) GetByID(ctx context.Context, id string) (domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.GetByID: %w", err)
	}
	return item, nil
}

// ListByType returns every item of t, newest implementation date first.
func (s *ItemService) ListByType(ctx context.Context, t domain.ItemType) ([]domain.Item, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, t)
	}
	items, err := s.items.ListByType(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("service.ItemService.ListByType: %w", err)
	}
	if items == nil {
		return []domain.Item{}, nil
	}
	catalog.SortItems(items)
	return items, nil
}

// ListPaged returns one page of items for the admin listing. An empty t
// lists every type.
func (s *ItemService) ListPaged(ctx context.Context, t domain.ItemType, p domain.PaginationParams) ([]domain.Item, int64, error) {
	if t != "" && !t.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, t)
	}
	items, total, err := s.items.ListPaged(ctx, t, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ItemService.ListPaged: %w", err)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, total, nil
}

// Update overwrites name, implementation date, and the full tag set. The
// type of an existing item never changes.
func (s *ItemService) Update(ctx context.Context, item domain.Item) (domain.Item, error) {
	existing, err := s.items.GetByID(ctx, item.ID)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}
	item.Type = existing.Type
	item.Name = strings.TrimSpace(item.Name)
	if err := validateItem(item); err != nil {
		return domain.Item{}, err
	}

	tax, err := s.taxonomy.Taxonomy(ctx, item.Type)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}
	if item.Tags, err = resolveTags(tax, item.ValueIDs()); err != nil {
		return domain.Item{}, err
	}

	updated, err := s.items.Update(ctx, item)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes an item, its tag associations, and its stored image.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	existing, err := s.items.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.ItemService.Delete: %w", err)
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ItemService.Delete: %w", err)
	}
	if existing.ImageRef != nil {
		if err := s.images.Delete(*existing.ImageRef); err != nil {
			s.log.WarnContext(ctx, "delete item image", "item_id", id, "image", *existing.ImageRef, "error", err)
		}
	}
	return nil
}

// SetImage stores data as the item's image and records its BlurHash.
// A BlurHash failure is logged and leaves the hash empty; the image is
// still attached.
func (s *ItemService) SetImage(ctx context.Context, id string, data []byte) (domain.Item, error) {
	if _, err := s.items.GetByID(ctx, id); err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.SetImage: %w", err)
	}
	name, err := s.images.SaveForItem(id, data)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.SetImage: %w", err)
	}

	var hash *string
	if h, err := media.ComputeBlurHash(data); err != nil {
		s.log.WarnContext(ctx, "compute blurhash", "item_id", id, "error", err)
	} else {
		hash = &h
	}

	item, err := s.items.SetImage(ctx, id, name, hash)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.SetImage: %w", err)
	}
	return item, nil
}

// Image returns the stored bytes of a named item image.
func (s *ItemService) Image(name string) ([]byte, error) {
	data, err := s.images.Get(name)
	if err != nil {
		return nil, fmt.Errorf("service.ItemService.Image: %w", err)
	}
	return data, nil
}

// CatalogEntry is one item in a catalogue listing with its tags projected
// onto filter keys.
type CatalogEntry struct {
	Item domain.Item
	Tags map[string][]string
}

// CatalogPage is the result of a catalogue search: matching items plus the
// filter groups the selector offers for the type.
type CatalogPage struct {
	Items   []CatalogEntry
	Filters []catalog.FilterOption
}

// Catalog lists the items of t that satisfy q, newest first.
func (s *ItemService) Catalog(ctx context.Context, t domain.ItemType, q catalog.Query) (CatalogPage, error) {
	tax, err := s.taxonomy.Taxonomy(ctx, t)
	if err != nil {
		return CatalogPage{}, fmt.Errorf("service.ItemService.Catalog: %w", err)
	}
	items, err := s.items.ListByType(ctx, t)
	if err != nil {
		return CatalogPage{}, fmt.Errorf("service.ItemService.Catalog: %w", err)
	}
	catalog.SortItems(items)

	matched := catalog.FilterItems(items, q, tax.Project)
	page := CatalogPage{
		Items:   make([]CatalogEntry, len(matched)),
		Filters: tax.FilterOptions(),
	}
	for i, it := range matched {
		page.Items[i] = CatalogEntry{Item: it, Tags: tax.Project(it).Flatten()}
	}
	return page, nil
}

// validateItem enforces the field rules common to create and update.
func validateItem(item domain.Item) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !item.Type.Valid() {
		return fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, item.Type)
	}
	if item.ImplementedAt.IsZero() {
		return fmt.Errorf("%w: implemented_at is required", domain.ErrValidation)
	}
	return nil
}

// resolveTags checks valueIDs against the item type's taxonomy and returns
// the tag set with categories filled in. Rules:
//   - every value must exist and belong to a category of this item type;
//   - a single-select category carries at most one value;
//   - a required category carries at least one value.
//
// Repeated value ids collapse.
func resolveTags(tax catalog.Taxonomy, valueIDs []uuid.UUID) ([]domain.ItemTag, error) {
	tags := make([]domain.ItemTag, 0, len(valueIDs))
	perCategory := make(map[uuid.UUID]int)
	seen := make(map[uuid.UUID]struct{}, len(valueIDs))

	var errs []error
	for _, id := range valueIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ref, ok := tax.Index[id]
		if !ok {
			errs = append(errs, fmt.Errorf("tag value %s is not a %s tag", id, tax.ItemType))
			continue
		}
		perCategory[ref.CategoryID]++
		tags = append(tags, domain.ItemTag{CategoryID: ref.CategoryID, ValueID: id})
	}
	for _, c := range tax.Categories {
		n := perCategory[c.ID]
		if !c.MultiSelect && n > 1 {
			errs = append(errs, fmt.Errorf("category %q allows one value, got %d", c.Name, n))
		}
		if c.Required && n == 0 {
			errs = append(errs, fmt.Errorf("category %q requires a value", c.Name))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(errs...))
	}
	return tags, nil
}
