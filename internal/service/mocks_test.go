package service_test

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/repo"
	"github.com/pkordes/granblue-checker/internal/service"
)

// Hand-written test doubles: each method is a function field, so a test
// sets only the ones it needs. Calling an unset one panics, which flags an
// unexpected repo call.

type mockCategoryRepo struct {
	create     func(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.TagCategory, error)
	listByType func(ctx context.Context, t domain.ItemType) ([]domain.TagCategory, error)
	update     func(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error)
	delete     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCategoryRepo) Create(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error) {
	return m.create(ctx, c)
}
func (m *mockCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TagCategory, error) {
	return m.getByID(ctx, id)
}
func (m *mockCategoryRepo) ListByType(ctx context.Context, t domain.ItemType) ([]domain.TagCategory, error) {
	return m.listByType(ctx, t)
}
func (m *mockCategoryRepo) Update(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error) {
	return m.update(ctx, c)
}
func (m *mockCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.CategoryRepo = (*mockCategoryRepo)(nil)

type mockValueRepo struct {
	create         func(ctx context.Context, v domain.TagValue) (domain.TagValue, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.TagValue, error)
	listByCategory func(ctx context.Context, categoryID uuid.UUID) ([]domain.TagValue, error)
	listByType     func(ctx context.Context, t domain.ItemType) ([]domain.TagValue, error)
	listByIDs      func(ctx context.Context, ids []uuid.UUID) ([]domain.TagValue, error)
	update         func(ctx context.Context, v domain.TagValue) (domain.TagValue, error)
	delete         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockValueRepo) Create(ctx context.Context, v domain.TagValue) (domain.TagValue, error) {
	return m.create(ctx, v)
}
func (m *mockValueRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TagValue, error) {
	return m.getByID(ctx, id)
}
func (m *mockValueRepo) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.TagValue, error) {
	return m.listByCategory(ctx, categoryID)
}
func (m *mockValueRepo) ListByType(ctx context.Context, t domain.ItemType) ([]domain.TagValue, error) {
	return m.listByType(ctx, t)
}
func (m *mockValueRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.TagValue, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockValueRepo) Update(ctx context.Context, v domain.TagValue) (domain.TagValue, error) {
	return m.update(ctx, v)
}
func (m *mockValueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.ValueRepo = (*mockValueRepo)(nil)

type mockItemRepo struct {
	create     func(ctx context.Context, item domain.Item) (domain.Item, error)
	getByID    func(ctx context.Context, id string) (domain.Item, error)
	listByType func(ctx context.Context, t domain.ItemType) ([]domain.Item, error)
	listPaged  func(ctx context.Context, t domain.ItemType, p domain.PaginationParams) ([]domain.Item, int64, error)
	listByIDs  func(ctx context.Context, ids []string) ([]domain.Item, error)
	update     func(ctx context.Context, item domain.Item) (domain.Item, error)
	setImage   func(ctx context.Context, id, imageRef string, blurHash *string) (domain.Item, error)
	delete     func(ctx context.Context, id string) error
}

func (m *mockItemRepo) Create(ctx context.Context, item domain.Item) (domain.Item, error) {
	return m.create(ctx, item)
}
func (m *mockItemRepo) GetByID(ctx context.Context, id string) (domain.Item, error) {
	return m.getByID(ctx, id)
}
func (m *mockItemRepo) ListByType(ctx context.Context, t domain.ItemType) ([]domain.Item, error) {
	return m.listByType(ctx, t)
}
func (m *mockItemRepo) ListPaged(ctx context.Context, t domain.ItemType, p domain.PaginationParams) ([]domain.Item, int64, error) {
	return m.listPaged(ctx, t, p)
}
func (m *mockItemRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Item, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockItemRepo) Update(ctx context.Context, item domain.Item) (domain.Item, error) {
	return m.update(ctx, item)
}
func (m *mockItemRepo) SetImage(ctx context.Context, id, imageRef string, blurHash *string) (domain.Item, error) {
	return m.setImage(ctx, id, imageRef, blurHash)
}
func (m *mockItemRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

var _ repo.ItemRepo = (*mockItemRepo)(nil)

type mockSessionRepo struct {
	create  func(ctx context.Context, s domain.Session) (domain.Session, error)
	getByID func(ctx context.Context, id string) (domain.Session, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, s domain.Session) (domain.Session, error) {
	return m.create(ctx, s)
}
func (m *mockSessionRepo) GetByID(ctx context.Context, id string) (domain.Session, error) {
	return m.getByID(ctx, id)
}

var _ repo.SessionRepo = (*mockSessionRepo)(nil)

type mockInputRepo struct {
	listGroups  func(ctx context.Context) ([]domain.InputGroup, error)
	getGroup    func(ctx context.Context, id uuid.UUID) (domain.InputGroup, error)
	createGroup func(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error)
	updateGroup func(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error)
	deleteGroup func(ctx context.Context, id uuid.UUID) error
	getItem     func(ctx context.Context, id uuid.UUID) (domain.InputItem, error)
	createItem  func(ctx context.Context, it domain.InputItem) (domain.InputItem, error)
	updateItem  func(ctx context.Context, it domain.InputItem) (domain.InputItem, error)
	deleteItem  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockInputRepo) ListGroups(ctx context.Context) ([]domain.InputGroup, error) {
	return m.listGroups(ctx)
}
func (m *mockInputRepo) GetGroup(ctx context.Context, id uuid.UUID) (domain.InputGroup, error) {
	return m.getGroup(ctx, id)
}
func (m *mockInputRepo) CreateGroup(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error) {
	return m.createGroup(ctx, g)
}
func (m *mockInputRepo) UpdateGroup(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error) {
	return m.updateGroup(ctx, g)
}
func (m *mockInputRepo) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	return m.deleteGroup(ctx, id)
}
func (m *mockInputRepo) GetItem(ctx context.Context, id uuid.UUID) (domain.InputItem, error) {
	return m.getItem(ctx, id)
}
func (m *mockInputRepo) CreateItem(ctx context.Context, it domain.InputItem) (domain.InputItem, error) {
	return m.createItem(ctx, it)
}
func (m *mockInputRepo) UpdateItem(ctx context.Context, it domain.InputItem) (domain.InputItem, error) {
	return m.updateItem(ctx, it)
}
func (m *mockInputRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return m.deleteItem(ctx, id)
}

var _ repo.InputRepo = (*mockInputRepo)(nil)

// memImages is an in-memory ImageStore.
type memImages struct {
	files map[string][]byte
}

func newMemImages() *memImages { return &memImages{files: map[string][]byte{}} }

func (m *memImages) SaveForItem(itemID string, data []byte) (string, error) {
	name := itemID + ".png"
	m.files[name] = data
	return name, nil
}
func (m *memImages) Get(name string) ([]byte, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}
func (m *memImages) Delete(name string) error {
	delete(m.files, name)
	return nil
}

var _ service.ImageStore = (*memImages)(nil)

var discard = slog.New(slog.DiscardHandler)

// ---- taxonomy fixture --------------------------------------------------------

// fixture is a small character taxonomy:
//
//	Element (required, single-select): fire, water
//	Weapon Type (multi-select):        sabre, spear
//
// plus one weapon category, Series: Xeno.
type fixture struct {
	element, weaponType, series domain.TagCategory
	fire, water, sabre, spear   domain.TagValue
	xeno                        domain.TagValue
}

func newFixture() fixture {
	f := fixture{
		element:    domain.TagCategory{ID: uuid.New(), Name: "Element", ItemType: domain.ItemTypeCharacter, Required: true},
		weaponType: domain.TagCategory{ID: uuid.New(), Name: "Weapon Type", ItemType: domain.ItemTypeCharacter, MultiSelect: true, SortOrder: 1},
		series:     domain.TagCategory{ID: uuid.New(), Name: "Series", ItemType: domain.ItemTypeWeapon},
	}
	f.fire = domain.TagValue{ID: uuid.New(), CategoryID: f.element.ID, Value: "fire"}
	f.water = domain.TagValue{ID: uuid.New(), CategoryID: f.element.ID, Value: "water"}
	f.sabre = domain.TagValue{ID: uuid.New(), CategoryID: f.weaponType.ID, Value: "sabre"}
	f.spear = domain.TagValue{ID: uuid.New(), CategoryID: f.weaponType.ID, Value: "spear"}
	f.xeno = domain.TagValue{ID: uuid.New(), CategoryID: f.series.ID, Value: "Xeno"}
	return f
}

func (f fixture) categoryRepo() *mockCategoryRepo {
	all := []domain.TagCategory{f.element, f.weaponType, f.series}
	return &mockCategoryRepo{
		listByType: func(_ context.Context, t domain.ItemType) ([]domain.TagCategory, error) {
			var out []domain.TagCategory
			for _, c := range all {
				if c.ItemType == t {
					out = append(out, c)
				}
			}
			return out, nil
		},
		getByID: func(_ context.Context, id uuid.UUID) (domain.TagCategory, error) {
			for _, c := range all {
				if c.ID == id {
					return c, nil
				}
			}
			return domain.TagCategory{}, domain.ErrNotFound
		},
	}
}

func (f fixture) valueRepo() *mockValueRepo {
	return &mockValueRepo{
		listByType: func(_ context.Context, t domain.ItemType) ([]domain.TagValue, error) {
			if t == domain.ItemTypeWeapon {
				return []domain.TagValue{f.xeno}, nil
			}
			return []domain.TagValue{f.fire, f.water, f.sabre, f.spear}, nil
		},
	}
}

func (f fixture) taxonomyService() *service.TaxonomyService {
	return service.NewTaxonomyService(f.categoryRepo(), f.valueRepo())
}
