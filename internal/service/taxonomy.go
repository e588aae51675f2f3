// Package service contains the business logic for the Granblue Checker API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/granblue-checker/internal/catalog"
	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/repo"
)

// TaxonomyService manages tag categories and their values, and assembles
// the per-type taxonomy snapshot the catalogue filters with.
type TaxonomyService struct {
	categories repo.CategoryRepo
	values     repo.ValueRepo
}

// NewTaxonomyService constructs a TaxonomyService backed by the provided repos.
func NewTaxonomyService(categories repo.CategoryRepo, values repo.ValueRepo) *TaxonomyService {
	return &TaxonomyService{categories: categories, values: values}
}

// Taxonomy returns the categories and values of one item type with their
// derived lookups.
func (s *TaxonomyService) Taxonomy(ctx context.Context, t domain.ItemType) (catalog.Taxonomy, error) {
	if !t.Valid() {
		return catalog.Taxonomy{}, fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, t)
	}
	cats, err := s.categories.ListByType(ctx, t)
	if err != nil {
		return catalog.Taxonomy{}, fmt.Errorf("service.TaxonomyService.Taxonomy: %w", err)
	}
	vals, err := s.values.ListByType(ctx, t)
	if err != nil {
		return catalog.Taxonomy{}, fmt.Errorf("service.TaxonomyService.Taxonomy: %w", err)
	}
	return catalog.NewTaxonomy(t, cats, vals), nil
}

// ListCategories returns the categories of one item type in display order.
// Always returns a non-nil slice.
func (s *TaxonomyService) ListCategories(ctx context.Context, t domain.ItemType) ([]domain.TagCategory, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, t)
	}
	cats, err := s.categories.ListByType(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("service.TaxonomyService.ListCategories: %w", err)
	}
	if cats == nil {
		return []domain.TagCategory{}, nil
	}
	return cats, nil
}

func (s *TaxonomyService) GetCategory(ctx context.Context, id uuid.UUID) (domain.TagCategory, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return domain.TagCategory{}, fmt.Errorf("service.TaxonomyService.GetCategory: %w", err)
	}
	return c, nil
}

// CreateCategory validates and persists a new category.
func (s *TaxonomyService) CreateCategory(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error) {
	c = normalizeCategory(c)
	if err := validateCategory(c); err != nil {
		return domain.TagCategory{}, err
	}
	created, err := s.categories.Create(ctx, c)
	if err != nil {
		return domain.TagCategory{}, fmt.Errorf("service.TaxonomyService.CreateCategory: %w", err)
	}
	return created, nil
}

// UpdateCategory overwrites a category's mutable fields. The item type is
// fixed at creation; a differing type in c is ignored.
func (s *TaxonomyService) UpdateCategory(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error) {
	existing, err := s.categories.GetByID(ctx, c.ID)
	if err != nil {
		return domain.TagCategory{}, fmt.Errorf("service.TaxonomyService.UpdateCategory: %w", err)
	}
	c.ItemType = existing.ItemType
	c = normalizeCategory(c)
	if err := validateCategory(c); err != nil {
		return domain.TagCategory{}, err
	}
	updated, err := s.categories.Update(ctx, c)
	if err != nil {
		return domain.TagCategory{}, fmt.Errorf("service.TaxonomyService.UpdateCategory: %w", err)
	}
	return updated, nil
}

// DeleteCategory removes a category, its values, and their item associations.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TaxonomyService.DeleteCategory: %w", err)
	}
	return nil
}

// ListValues returns a category's values. Returns domain.ErrNotFound if the
// category does not exist.
func (s *TaxonomyService) ListValues(ctx context.Context, categoryID uuid.UUID) ([]domain.TagValue, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("service.TaxonomyService.ListValues: %w", err)
	}
	vals, err := s.values.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("service.TaxonomyService.ListValues: %w", err)
	}
	if vals == nil {
		return []domain.TagValue{}, nil
	}
	return vals, nil
}

// CreateValue adds a value to an existing category. A value whose text is
// already used in the category returns domain.ErrConflict.
func (s *TaxonomyService) CreateValue(ctx context.Context, v domain.TagValue) (domain.TagValue, error) {
	v.Value = strings.TrimSpace(v.Value)
	if v.Value == "" {
		return domain.TagValue{}, fmt.Errorf("%w: value is required", domain.ErrValidation)
	}
	if _, err := s.categories.GetByID(ctx, v.CategoryID); err != nil {
		return domain.TagValue{}, fmt.Errorf("service.TaxonomyService.CreateValue: %w", err)
	}
	created, err := s.values.Create(ctx, v)
	if err != nil {
		return domain.TagValue{}, fmt.Errorf("service.TaxonomyService.CreateValue: %w", err)
	}
	return created, nil
}

// UpdateValue changes a value's text and sort order. Values cannot move
// between categories.
func (s *TaxonomyService) UpdateValue(ctx context.Context, v domain.TagValue) (domain.TagValue, error) {
	v.Value = strings.TrimSpace(v.Value)
	if v.Value == "" {
		return domain.TagValue{}, fmt.Errorf("%w: value is required", domain.ErrValidation)
	}
	updated, err := s.values.Update(ctx, v)
	if err != nil {
		return domain.TagValue{}, fmt.Errorf("service.TaxonomyService.UpdateValue: %w", err)
	}
	return updated, nil
}

func (s *TaxonomyService) DeleteValue(ctx context.Context, id uuid.UUID) error {
	if err := s.values.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TaxonomyService.DeleteValue: %w", err)
	}
	return nil
}

func normalizeCategory(c domain.TagCategory) domain.TagCategory {
	c.Name = strings.TrimSpace(c.Name)
	c.Role = catalog.NormalizeFilterKey(c.Role)
	return c
}

// validateCategory enforces the rules common to create and update:
//   - Name must be non-empty and yield a non-empty filter key.
//   - ItemType must be one of character, weapon, summon.
func validateCategory(c domain.TagCategory) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if catalog.FilterKey(c) == "" {
		return fmt.Errorf("%w: name %q has no usable filter key", domain.ErrValidation, c.Name)
	}
	if !c.ItemType.Valid() {
		return fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, c.ItemType)
	}
	return nil
}
