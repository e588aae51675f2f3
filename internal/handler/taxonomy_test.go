package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/granblue-checker/internal/catalog"
	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/handler"
)

func TestGetTaxonomy_nestsValuesUnderCategories(t *testing.T) {
	element := domain.TagCategory{ID: uuid.New(), Name: "Element", ItemType: domain.ItemTypeCharacter, Required: true}
	race := domain.TagCategory{ID: uuid.New(), Name: "Race", ItemType: domain.ItemTypeCharacter, SortOrder: 1, MultiSelect: true}
	svc := &mockTaxonomyServicer{
		taxonomy: func(_ context.Context, ty domain.ItemType) (catalog.Taxonomy, error) {
			return catalog.NewTaxonomy(ty,
				[]domain.TagCategory{race, element},
				[]domain.TagValue{
					{ID: uuid.New(), CategoryID: element.ID, Value: "fire"},
					{ID: uuid.New(), CategoryID: race.ID, Value: "Human"},
					{ID: uuid.New(), CategoryID: element.ID, Value: "water", SortOrder: 1},
				}), nil
		},
	}
	h := newHTTPHandler(handler.Services{Taxonomy: svc})

	rec := do(h, http.MethodGet, "/taxonomy/character", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		ItemType   string `json:"item_type"`
		Categories []struct {
			Name      string `json:"name"`
			FilterKey string `json:"filter_key"`
			Values    []struct {
				Value string `json:"value"`
			} `json:"values"`
		} `json:"categories"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "character", body.ItemType)
	require.Len(t, body.Categories, 2)
	assert.Equal(t, "Element", body.Categories[0].Name)
	assert.Equal(t, "element", body.Categories[0].FilterKey)
	require.Len(t, body.Categories[0].Values, 2)
	assert.Equal(t, "fire", body.Categories[0].Values[0].Value)
	assert.Equal(t, "water", body.Categories[0].Values[1].Value)
	assert.Equal(t, "race", body.Categories[1].FilterKey)
}

func TestCreateCategory_unknownType_returns422(t *testing.T) {
	h := newHTTPHandler(handler.Services{Taxonomy: &mockTaxonomyServicer{}})

	rec := do(h, http.MethodPost, "/admin/categories", strings.NewReader(`{"name":"Element"}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateCategory_returns201(t *testing.T) {
	svc := &mockTaxonomyServicer{
		createCategory: func(_ context.Context, c domain.TagCategory) (domain.TagCategory, error) {
			assert.Equal(t, domain.ItemTypeSummon, c.ItemType)
			assert.True(t, c.MultiSelect)
			c.ID = uuid.New()
			return c, nil
		},
	}
	h := newHTTPHandler(handler.Services{Taxonomy: svc})

	rec := do(h, http.MethodPost, "/admin/categories", strings.NewReader(`{"name":"Call Effect","item_type":"summon","multi_select":true}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"filter_key":"call_effect"`)
}

func TestCreateValue_duplicate_returns409(t *testing.T) {
	catID := uuid.New()
	svc := &mockTaxonomyServicer{
		createValue: func(_ context.Context, v domain.TagValue) (domain.TagValue, error) {
			assert.Equal(t, catID, v.CategoryID)
			return domain.TagValue{}, fmt.Errorf("service.TaxonomyService.CreateValue: repo.ValueRepo.Create: %w: tag_values_category_id_value_key", domain.ErrConflict)
		},
	}
	h := newHTTPHandler(handler.Services{Taxonomy: svc})

	rec := do(h, http.MethodPost, "/admin/categories/"+catID.String()+"/values", strings.NewReader(`{"value":"fire"}`))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeError(t, rec).Error.Code)
}

func TestGetCategory_badUUID_returns422(t *testing.T) {
	h := newHTTPHandler(handler.Services{Taxonomy: &mockTaxonomyServicer{}})

	rec := do(h, http.MethodGet, "/admin/categories/not-a-uuid", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteCategory_notFound(t *testing.T) {
	svc := &mockTaxonomyServicer{
		deleteCategory: func(context.Context, uuid.UUID) error { return domain.ErrNotFound },
	}
	h := newHTTPHandler(handler.Services{Taxonomy: svc})

	rec := do(h, http.MethodDelete, "/admin/categories/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "category not found", decodeError(t, rec).Error.Message)
}
