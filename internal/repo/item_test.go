package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/repo"
	"github.com/pkordes/granblue-checker/testutil"
)

type itemWorld struct {
	items  repo.ItemRepo
	fire   domain.TagValue
	water  domain.TagValue
	sabre  domain.TagValue
	cat    domain.TagCategory
	weapon domain.TagCategory
}

// newItemWorld seeds two character categories (Element: fire, water;
// Weapon: sabre) and returns an ItemRepo on the same transaction.
func newItemWorld(t *testing.T) itemWorld {
	t.Helper()
	ctx := context.Background()
	tx := testutil.NewTx(t)
	cats, values := repo.NewCategoryRepo(tx), repo.NewValueRepo(tx)

	w := itemWorld{items: repo.NewItemRepo(tx)}
	var err error
	w.cat, err = cats.Create(ctx, domain.TagCategory{Name: "Element", ItemType: domain.ItemTypeCharacter})
	require.NoError(t, err)
	w.weapon, err = cats.Create(ctx, domain.TagCategory{Name: "Weapon", ItemType: domain.ItemTypeCharacter, SortOrder: 1})
	require.NoError(t, err)
	w.fire, err = values.Create(ctx, domain.TagValue{CategoryID: w.cat.ID, Value: "fire"})
	require.NoError(t, err)
	w.water, err = values.Create(ctx, domain.TagValue{CategoryID: w.cat.ID, Value: "water"})
	require.NoError(t, err)
	w.sabre, err = values.Create(ctx, domain.TagValue{CategoryID: w.weapon.ID, Value: "sabre"})
	require.NoError(t, err)
	return w
}

func characterFixture(id, name string, day int) domain.Item {
	return domain.Item{
		ID:            id,
		Name:          name,
		Type:          domain.ItemTypeCharacter,
		ImplementedAt: time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestItemRepo_CreateWithTags(t *testing.T) {
	w := newItemWorld(t)
	ctx := context.Background()

	in := characterFixture("character_katalina", "Katalina", 10)
	in.Tags = []domain.ItemTag{
		{CategoryID: w.weapon.ID, ValueID: w.sabre.ID},
		{CategoryID: w.cat.ID, ValueID: w.water.ID},
	}
	created, err := w.items.Create(ctx, in)

	require.NoError(t, err)
	assert.Equal(t, "Katalina", created.Name)
	assert.True(t, created.ImplementedAt.Equal(in.ImplementedAt))
	assert.Nil(t, created.ImageRef)
	// Tags come back in category order.
	assert.Equal(t, []domain.ItemTag{
		{CategoryID: w.cat.ID, ValueID: w.water.ID},
		{CategoryID: w.weapon.ID, ValueID: w.sabre.ID},
	}, created.Tags)

	got, err := w.items.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Tags, got.Tags)
}

func TestItemRepo_CreateRollsBackOnBadTag(t *testing.T) {
	w := newItemWorld(t)
	ctx := context.Background()

	in := characterFixture("character_ghost", "Ghost", 1)
	in.Tags = []domain.ItemTag{{CategoryID: w.cat.ID, ValueID: [16]byte{0xde, 0xad}}}
	_, err := w.items.Create(ctx, in)

	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = w.items.GetByID(ctx, "character_ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound, "the item insert must be rolled back with the tags")
}

func TestItemRepo_DuplicateIDConflicts(t *testing.T) {
	w := newItemWorld(t)
	ctx := context.Background()

	_, err := w.items.Create(ctx, characterFixture("character_a", "A", 1))
	require.NoError(t, err)
	_, err = w.items.Create(ctx, characterFixture("character_a", "A again", 1))

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestItemRepo_ListByType_Ordering(t *testing.T) {
	w := newItemWorld(t)
	ctx := context.Background()

	for _, it := range []domain.Item{
		characterFixture("character_old", "Old", 1),
		characterFixture("character_b", "Beta", 20),
		characterFixture("character_a", "Alpha", 20),
	} {
		_, err := w.items.Create(ctx, it)
		require.NoError(t, err)
	}

	got, err := w.items.ListByType(ctx, domain.ItemTypeCharacter)

	require.NoError(t, err)
	var ids []string
	for _, it := range got {
		ids = append(ids, it.ID)
		assert.NotNil(t, it.Tags, "tags are never nil")
	}
	assert.Equal(t, []string{"character_a", "character_b", "character_old"}, ids)
}

func TestItemRepo_ListPagedAndByIDs(t *testing.T) {
	w := newItemWorld(t)
	ctx := context.Background()
	for _, it := range []domain.Item{
		characterFixture("character_1", "One", 1),
		characterFixture("character_2", "Two", 2),
		characterFixture("character_3", "Three", 3),
	} {
		_, err := w.items.Create(ctx, it)
		require.NoError(t, err)
	}

	limit, page := 2, 2
	items, total, err := w.items.ListPaged(ctx, domain.ItemTypeCharacter, domain.NewPaginationParams(&page, &limit))
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "character_1", items[0].ID)

	byIDs, err := w.items.ListByIDs(ctx, []string{"character_2", "character_missing"})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	assert.Equal(t, "character_2", byIDs[0].ID)
}

func TestItemRepo_UpdateReplacesTags(t *testing.T) {
	w := newItemWorld(t)
	ctx := context.Background()
	in := characterFixture("character_k", "Katalina", 10)
	in.Tags = []domain.ItemTag{{CategoryID: w.cat.ID, ValueID: w.fire.ID}}
	created, err := w.items.Create(ctx, in)
	require.NoError(t, err)

	created.Name = "Katalina (Grand)"
	created.Tags = []domain.ItemTag{{CategoryID: w.cat.ID, ValueID: w.water.ID}}
	updated, err := w.items.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, "Katalina (Grand)", updated.Name)
	assert.Equal(t, []domain.ItemTag{{CategoryID: w.cat.ID, ValueID: w.water.ID}}, updated.Tags)
}

func TestItemRepo_SetImageAndDelete(t *testing.T) {
	w := newItemWorld(t)
	ctx := context.Background()
	_, err := w.items.Create(ctx, characterFixture("character_k", "Katalina", 10))
	require.NoError(t, err)

	hash := "LEHV6nWB2yk8pyo0adR*.7kCMdnj"
	got, err := w.items.SetImage(ctx, "character_k", "character_k.png", &hash)
	require.NoError(t, err)
	require.NotNil(t, got.ImageRef)
	assert.Equal(t, "character_k.png", *got.ImageRef)
	require.NotNil(t, got.BlurHash)
	assert.Equal(t, hash, *got.BlurHash)

	require.NoError(t, w.items.Delete(ctx, "character_k"))
	assert.ErrorIs(t, w.items.Delete(ctx, "character_k"), domain.ErrNotFound)
	_, err = w.items.SetImage(ctx, "character_k", "x.png", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
