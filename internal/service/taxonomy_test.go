package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/service"
)

func echoCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{
		create: func(_ context.Context, c domain.TagCategory) (domain.TagCategory, error) { return c, nil },
		update: func(_ context.Context, c domain.TagCategory) (domain.TagCategory, error) { return c, nil },
	}
}

func TestTaxonomyService_CreateCategory_NormalizesRole(t *testing.T) {
	svc := service.NewTaxonomyService(echoCategoryRepo(), &mockValueRepo{})

	got, err := svc.CreateCategory(context.Background(), domain.TagCategory{
		Name:     "  属性 ",
		Role:     "Element ",
		ItemType: domain.ItemTypeCharacter,
	})

	require.NoError(t, err)
	assert.Equal(t, "属性", got.Name)
	assert.Equal(t, "element", got.Role)
}

func TestTaxonomyService_CreateCategory_Invalid(t *testing.T) {
	svc := service.NewTaxonomyService(echoCategoryRepo(), &mockValueRepo{})

	tests := []struct {
		name string
		in   domain.TagCategory
	}{
		{"blank name", domain.TagCategory{Name: "   ", ItemType: domain.ItemTypeCharacter}},
		{"ideographic space only", domain.TagCategory{Name: "　", ItemType: domain.ItemTypeCharacter}},
		{"unknown type", domain.TagCategory{Name: "Element", ItemType: "armor"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateCategory(context.Background(), tc.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestTaxonomyService_UpdateCategory_KeepsItemType(t *testing.T) {
	existing := domain.TagCategory{ID: uuid.New(), Name: "Element", ItemType: domain.ItemTypeSummon}
	cats := echoCategoryRepo()
	cats.getByID = func(_ context.Context, _ uuid.UUID) (domain.TagCategory, error) { return existing, nil }
	svc := service.NewTaxonomyService(cats, &mockValueRepo{})

	got, err := svc.UpdateCategory(context.Background(), domain.TagCategory{
		ID: existing.ID, Name: "Attribute", ItemType: domain.ItemTypeWeapon,
	})

	require.NoError(t, err)
	assert.Equal(t, "Attribute", got.Name)
	assert.Equal(t, domain.ItemTypeSummon, got.ItemType)
}

func TestTaxonomyService_CreateValue(t *testing.T) {
	f := newFixture()
	vals := &mockValueRepo{
		create: func(_ context.Context, v domain.TagValue) (domain.TagValue, error) { return v, nil },
	}
	svc := service.NewTaxonomyService(f.categoryRepo(), vals)
	ctx := context.Background()

	got, err := svc.CreateValue(ctx, domain.TagValue{CategoryID: f.element.ID, Value: " wind "})
	require.NoError(t, err)
	assert.Equal(t, "wind", got.Value)

	_, err = svc.CreateValue(ctx, domain.TagValue{CategoryID: f.element.ID, Value: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateValue(ctx, domain.TagValue{CategoryID: uuid.New(), Value: "wind"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaxonomyService_CreateValue_DuplicatePassesConflictThrough(t *testing.T) {
	f := newFixture()
	vals := &mockValueRepo{
		create: func(_ context.Context, _ domain.TagValue) (domain.TagValue, error) {
			return domain.TagValue{}, domain.ErrConflict
		},
	}
	svc := service.NewTaxonomyService(f.categoryRepo(), vals)

	_, err := svc.CreateValue(context.Background(), domain.TagValue{CategoryID: f.element.ID, Value: "fire"})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTaxonomyService_Taxonomy(t *testing.T) {
	f := newFixture()
	svc := f.taxonomyService()

	tax, err := svc.Taxonomy(context.Background(), domain.ItemTypeCharacter)

	require.NoError(t, err)
	assert.Equal(t, "element", tax.Keys[f.element.ID])
	assert.Equal(t, "weapon_type", tax.Keys[f.weaponType.ID])
	assert.Len(t, tax.Values, 4)

	_, err = svc.Taxonomy(context.Background(), "armor")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaxonomyService_ListValues_UnknownCategory(t *testing.T) {
	f := newFixture()
	svc := f.taxonomyService()

	_, err := svc.ListValues(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
