package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pkordes/granblue-checker/internal/catalog"
	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/form"
	"github.com/pkordes/granblue-checker/internal/interchange"
)

// BulkError is one failed row of a bulk upload.
type BulkError struct {
	Row    int
	Name   string
	Reason string
}

// BulkResult summarises a bulk upload. Total = Processed + Failed.
type BulkResult struct {
	Total     int
	Processed int
	Failed    int
	Errors    []BulkError
	Created   []domain.Item
}

// BulkUploadService creates many items of one type from a sheet plus a set
// of image files. Rows are independent: a bad row is reported and skipped,
// the others still go in.
type BulkUploadService struct {
	items    *ItemService
	taxonomy *TaxonomyService
	log      *slog.Logger
}

// NewBulkUploadService constructs a BulkUploadService.
func NewBulkUploadService(items *ItemService, taxonomy *TaxonomyService, log *slog.Logger) *BulkUploadService {
	return &BulkUploadService{items: items, taxonomy: taxonomy, log: log}
}

// Upload reads sheet and creates one item of type t per row. images maps
// file names to contents; a row's image cell must match a key exactly.
//
// An error is returned only when nothing can be attempted: unknown type,
// unreadable sheet, or the taxonomy cannot be loaded.
func (s *BulkUploadService) Upload(ctx context.Context, t domain.ItemType, sheet io.Reader, images map[string][]byte) (BulkResult, error) {
	if !t.Valid() {
		return BulkResult{}, fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, t)
	}
	rows, err := interchange.ParseBulkSheet(sheet)
	if err != nil {
		return BulkResult{}, fmt.Errorf("service.BulkUploadService.Upload: %w", err)
	}
	tax, err := s.taxonomy.Taxonomy(ctx, t)
	if err != nil {
		return BulkResult{}, fmt.Errorf("service.BulkUploadService.Upload: %w", err)
	}

	res := BulkResult{Total: len(rows), Errors: []BulkError{}, Created: []domain.Item{}}
	for _, row := range rows {
		item, err := s.uploadRow(ctx, t, tax, row, images)
		if err != nil {
			s.log.WarnContext(ctx, "bulk upload row failed",
				"item_type", t, "row", row.Line, "name", row.Name, "error", err)
			res.Failed++
			res.Errors = append(res.Errors, BulkError{Row: row.Line, Name: row.Name, Reason: reason(err)})
			continue
		}
		res.Processed++
		res.Created = append(res.Created, item)
	}
	s.log.InfoContext(ctx, "bulk upload finished",
		"item_type", t, "total", res.Total, "processed", res.Processed, "failed", res.Failed)
	return res, nil
}

// uploadRow checks everything it can before writing, then creates the item
// and attaches its image. If the image cannot be attached the item is
// removed again so the row leaves nothing behind.
func (s *BulkUploadService) uploadRow(ctx context.Context, t domain.ItemType, tax catalog.Taxonomy, row interchange.BulkRow, images map[string][]byte) (domain.Item, error) {
	if row.Image == "" {
		return domain.Item{}, fmt.Errorf("%w: image is required", domain.ErrValidation)
	}
	data, ok := images[row.Image]
	if !ok {
		return domain.Item{}, fmt.Errorf("%w: image %q was not uploaded", domain.ErrValidation, row.Image)
	}
	if row.ImplementedAt == "" {
		return domain.Item{}, fmt.Errorf("%w: implemented_at is required", domain.ErrValidation)
	}
	date, err := time.Parse(form.DateLayout, row.ImplementedAt)
	if err != nil {
		return domain.Item{}, fmt.Errorf("%w: implemented_at %q is not a YYYY-MM-DD date", domain.ErrValidation, row.ImplementedAt)
	}
	tags, err := rowTags(tax, row.Tags)
	if err != nil {
		return domain.Item{}, err
	}

	created, err := s.items.Create(ctx, domain.Item{Name: row.Name, Type: t, ImplementedAt: date, Tags: tags})
	if err != nil {
		return domain.Item{}, err
	}
	withImage, err := s.items.SetImage(ctx, created.ID, data)
	if err != nil {
		if delErr := s.items.Delete(ctx, created.ID); delErr != nil {
			s.log.ErrorContext(ctx, "bulk upload rollback failed", "item_id", created.ID, "error", delErr)
		}
		return domain.Item{}, err
	}
	return withImage, nil
}

// rowTags resolves tag cells keyed by filter key to tag values. Values
// match exactly first, then case-insensitively. Categories sharing a key
// are searched together.
func rowTags(tax catalog.Taxonomy, cells map[string][]string) ([]domain.ItemTag, error) {
	var (
		tags []domain.ItemTag
		errs []error
	)
	for key, vals := range cells {
		cats := tax.CategoriesByKey(key)
		if len(cats) == 0 {
			errs = append(errs, fmt.Errorf("unknown column %q", key))
			continue
		}
		for _, text := range vals {
			v, ok := findValue(tax, cats, text)
			if !ok {
				errs = append(errs, fmt.Errorf("unknown %s value %q", key, text))
				continue
			}
			tags = append(tags, domain.ItemTag{CategoryID: v.CategoryID, ValueID: v.ID})
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(errs...))
	}
	return tags, nil
}

func findValue(tax catalog.Taxonomy, cats []domain.TagCategory, text string) (domain.TagValue, bool) {
	for _, c := range cats {
		if v, ok := tax.ValueByText(c.ID, text); ok {
			return v, true
		}
	}
	for _, v := range tax.Values {
		for _, c := range cats {
			if v.CategoryID == c.ID && strings.EqualFold(v.Value, text) {
				return v, true
			}
		}
	}
	return domain.TagValue{}, false
}

// reason strips the sentinel prefix so row errors read naturally.
func reason(err error) string {
	msg := err.Error()
	for _, prefix := range []string{"service.ItemService.Create: ", "service.ItemService.SetImage: ", domain.ErrValidation.Error() + ": "} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	return strings.ReplaceAll(msg, "\n", "; ")
}
