package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/granblue-checker/internal/catalog"
	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/handler"
	"github.com/pkordes/granblue-checker/internal/service"
)

// ---- item servicer -----------------------------------------------------------

// mockItemServicer is a test double for handler.ItemServicer.
// Set only the method fields your test needs.
type mockItemServicer struct {
	create    func(ctx context.Context, item domain.Item) (domain.Item, error)
	getByID   func(ctx context.Context, id string) (domain.Item, error)
	listPaged func(ctx context.Context, t domain.ItemType, p domain.PaginationParams) ([]domain.Item, int64, error)
	update    func(ctx context.Context, item domain.Item) (domain.Item, error)
	delete    func(ctx context.Context, id string) error
	setImage  func(ctx context.Context, id string, data []byte) (domain.Item, error)
	image     func(name string) ([]byte, error)
	catalog   func(ctx context.Context, t domain.ItemType, q catalog.Query) (service.CatalogPage, error)
}

func (m *mockItemServicer) Create(ctx context.Context, item domain.Item) (domain.Item, error) {
	return m.create(ctx, item)
}
func (m *mockItemServicer) GetByID(ctx context.Context, id string) (domain.Item, error) {
	return m.getByID(ctx, id)
}
func (m *mockItemServicer) ListPaged(ctx context.Context, t domain.ItemType, p domain.PaginationParams) ([]domain.Item, int64, error) {
	return m.listPaged(ctx, t, p)
}
func (m *mockItemServicer) Update(ctx context.Context, item domain.Item) (domain.Item, error) {
	return m.update(ctx, item)
}
func (m *mockItemServicer) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}
func (m *mockItemServicer) SetImage(ctx context.Context, id string, data []byte) (domain.Item, error) {
	return m.setImage(ctx, id, data)
}
func (m *mockItemServicer) Image(name string) ([]byte, error) {
	return m.image(name)
}
func (m *mockItemServicer) Catalog(ctx context.Context, t domain.ItemType, q catalog.Query) (service.CatalogPage, error) {
	return m.catalog(ctx, t, q)
}

// ---- taxonomy servicer -------------------------------------------------------

type mockTaxonomyServicer struct {
	taxonomy       func(ctx context.Context, t domain.ItemType) (catalog.Taxonomy, error)
	listCategories func(ctx context.Context, t domain.ItemType) ([]domain.TagCategory, error)
	getCategory    func(ctx context.Context, id uuid.UUID) (domain.TagCategory, error)
	createCategory func(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error)
	updateCategory func(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error)
	deleteCategory func(ctx context.Context, id uuid.UUID) error
	listValues     func(ctx context.Context, categoryID uuid.UUID) ([]domain.TagValue, error)
	createValue    func(ctx context.Context, v domain.TagValue) (domain.TagValue, error)
	updateValue    func(ctx context.Context, v domain.TagValue) (domain.TagValue, error)
	deleteValue    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTaxonomyServicer) Taxonomy(ctx context.Context, t domain.ItemType) (catalog.Taxonomy, error) {
	return m.taxonomy(ctx, t)
}
func (m *mockTaxonomyServicer) ListCategories(ctx context.Context, t domain.ItemType) ([]domain.TagCategory, error) {
	return m.listCategories(ctx, t)
}
func (m *mockTaxonomyServicer) GetCategory(ctx context.Context, id uuid.UUID) (domain.TagCategory, error) {
	return m.getCategory(ctx, id)
}
func (m *mockTaxonomyServicer) CreateCategory(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error) {
	return m.createCategory(ctx, c)
}
func (m *mockTaxonomyServicer) UpdateCategory(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error) {
	return m.updateCategory(ctx, c)
}
func (m *mockTaxonomyServicer) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.deleteCategory(ctx, id)
}
func (m *mockTaxonomyServicer) ListValues(ctx context.Context, categoryID uuid.UUID) ([]domain.TagValue, error) {
	return m.listValues(ctx, categoryID)
}
func (m *mockTaxonomyServicer) CreateValue(ctx context.Context, v domain.TagValue) (domain.TagValue, error) {
	return m.createValue(ctx, v)
}
func (m *mockTaxonomyServicer) UpdateValue(ctx context.Context, v domain.TagValue) (domain.TagValue, error) {
	return m.updateValue(ctx, v)
}
func (m *mockTaxonomyServicer) DeleteValue(ctx context.Context, id uuid.UUID) error {
	return m.deleteValue(ctx, id)
}

// ---- input servicer ----------------------------------------------------------

type mockInputServicer struct {
	schema      func(ctx context.Context) ([]domain.InputGroup, error)
	createGroup func(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error)
	updateGroup func(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error)
	deleteGroup func(ctx context.Context, id uuid.UUID) error
	createItem  func(ctx context.Context, it domain.InputItem) (domain.InputItem, error)
	updateItem  func(ctx context.Context, it domain.InputItem) (domain.InputItem, error)
	deleteItem  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockInputServicer) Schema(ctx context.Context) ([]domain.InputGroup, error) {
	return m.schema(ctx)
}
func (m *mockInputServicer) CreateGroup(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error) {
	return m.createGroup(ctx, g)
}
func (m *mockInputServicer) UpdateGroup(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error) {
	return m.updateGroup(ctx, g)
}
func (m *mockInputServicer) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	return m.deleteGroup(ctx, id)
}
func (m *mockInputServicer) CreateItem(ctx context.Context, it domain.InputItem) (domain.InputItem, error) {
	return m.createItem(ctx, it)
}
func (m *mockInputServicer) UpdateItem(ctx context.Context, it domain.InputItem) (domain.InputItem, error) {
	return m.updateItem(ctx, it)
}
func (m *mockInputServicer) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return m.deleteItem(ctx, id)
}

// ---- session servicer --------------------------------------------------------

type mockSessionServicer struct {
	create func(ctx context.Context, state domain.SelectionState) (domain.Session, error)
	get    func(ctx context.Context, id string) (domain.Session, error)
}

func (m *mockSessionServicer) Create(ctx context.Context, state domain.SelectionState) (domain.Session, error) {
	return m.create(ctx, state)
}
func (m *mockSessionServicer) Get(ctx context.Context, id string) (domain.Session, error) {
	return m.get(ctx, id)
}

// ---- export servicer ---------------------------------------------------------

type mockExportServicer struct {
	exportCSV   func(ctx context.Context, w io.Writer, state domain.SelectionState) error
	exportImage func(ctx context.Context, w io.Writer, state domain.SelectionState, page int) (int, error)
	exportPDF   func(ctx context.Context, w io.Writer, state domain.SelectionState) (int, error)
	importCSV   func(ctx context.Context, text string, current domain.SelectionState) service.ImportOutcome
}

func (m *mockExportServicer) ExportCSV(ctx context.Context, w io.Writer, state domain.SelectionState) error {
	return m.exportCSV(ctx, w, state)
}
func (m *mockExportServicer) ExportImage(ctx context.Context, w io.Writer, state domain.SelectionState, page int) (int, error) {
	return m.exportImage(ctx, w, state, page)
}
func (m *mockExportServicer) ExportPDF(ctx context.Context, w io.Writer, state domain.SelectionState) (int, error) {
	return m.exportPDF(ctx, w, state)
}
func (m *mockExportServicer) ImportCSV(ctx context.Context, text string, current domain.SelectionState) service.ImportOutcome {
	return m.importCSV(ctx, text, current)
}

// ---- bulk uploader -----------------------------------------------------------

type mockBulkUploader struct {
	upload func(ctx context.Context, t domain.ItemType, sheet io.Reader, images map[string][]byte) (service.BulkResult, error)
}

func (m *mockBulkUploader) Upload(ctx context.Context, t domain.ItemType, sheet io.Reader, images map[string][]byte) (service.BulkResult, error) {
	return m.upload(ctx, t, sheet, images)
}

// compile-time checks: every mock must satisfy its handler interface.
var (
	_ handler.ItemServicer     = (*mockItemServicer)(nil)
	_ handler.TaxonomyServicer = (*mockTaxonomyServicer)(nil)
	_ handler.InputServicer    = (*mockInputServicer)(nil)
	_ handler.SessionServicer  = (*mockSessionServicer)(nil)
	_ handler.ExportServicer   = (*mockExportServicer)(nil)
	_ handler.BulkUploader     = (*mockBulkUploader)(nil)
)

// ---- helpers -----------------------------------------------------------------

const testBaseURL = "https://checker.example.com"

// newHTTPHandler wires a Server with the given mocks into its chi router.
// This mirrors how main.go wires it in production, minus the admin guard.
func newHTTPHandler(svc handler.Services) http.Handler {
	return handler.NewServer(svc, handler.Options{
		PublicBaseURL: testBaseURL,
		OpenAPI:       []byte("openapi: 3.0.3\n"),
		Log:           slog.New(slog.DiscardHandler),
	}).Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do sends one request through h and returns the recorder.
func do(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// errorBody decodes the standard error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}
