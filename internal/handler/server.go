// Package handler implements the HTTP handlers for the Granblue Checker API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (item.go, session.go, etc.) but share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/granblue-checker/internal/catalog"
	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/service"
)

// ItemServicer defines the catalogue operations the item handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type ItemServicer interface {
	Create(ctx context.Context, item domain.Item) (domain.Item, error)
	GetByID(ctx context.Context, id string) (domain.Item, error)
	ListPaged(ctx context.Context, t domain.ItemType, p domain.PaginationParams) ([]domain.Item, int64, error)
	Update(ctx context.Context, item domain.Item) (domain.Item, error)
	Delete(ctx context.Context, id string) error
	SetImage(ctx context.Context, id string, data []byte) (domain.Item, error)
	Image(name string) ([]byte, error)
	Catalog(ctx context.Context, t domain.ItemType, q catalog.Query) (service.CatalogPage, error)
}

// TaxonomyServicer defines the tag category and value operations.
type TaxonomyServicer interface {
	Taxonomy(ctx context.Context, t domain.ItemType) (catalog.Taxonomy, error)
	ListCategories(ctx context.Context, t domain.ItemType) ([]domain.TagCategory, error)
	GetCategory(ctx context.Context, id uuid.UUID) (domain.TagCategory, error)
	CreateCategory(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error)
	UpdateCategory(ctx context.Context, c domain.TagCategory) (domain.TagCategory, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListValues(ctx context.Context, categoryID uuid.UUID) ([]domain.TagValue, error)
	CreateValue(ctx context.Context, v domain.TagValue) (domain.TagValue, error)
	UpdateValue(ctx context.Context, v domain.TagValue) (domain.TagValue, error)
	DeleteValue(ctx context.Context, id uuid.UUID) error
}

// InputServicer defines the user-info form schema operations.
type InputServicer interface {
	Schema(ctx context.Context) ([]domain.InputGroup, error)
	CreateGroup(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error)
	UpdateGroup(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error
	CreateItem(ctx context.Context, it domain.InputItem) (domain.InputItem, error)
	UpdateItem(ctx context.Context, it domain.InputItem) (domain.InputItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// SessionServicer defines the share-link operations.
type SessionServicer interface {
	Create(ctx context.Context, state domain.SelectionState) (domain.Session, error)
	Get(ctx context.Context, id string) (domain.Session, error)
}

// ExportServicer defines the export and import operations.
type ExportServicer interface {
	ExportCSV(ctx context.Context, w io.Writer, state domain.SelectionState) error
	ExportImage(ctx context.Context, w io.Writer, state domain.SelectionState, page int) (int, error)
	ExportPDF(ctx context.Context, w io.Writer, state domain.SelectionState) (int, error)
	ImportCSV(ctx context.Context, text string, current domain.SelectionState) service.ImportOutcome
}

// BulkUploader defines the bulk item upload operation.
type BulkUploader interface {
	Upload(ctx context.Context, t domain.ItemType, sheet io.Reader, images map[string][]byte) (service.BulkResult, error)
}

// Services groups every dependency the Server needs.
type Services struct {
	Items    ItemServicer
	Taxonomy TaxonomyServicer
	Inputs   InputServicer
	Sessions SessionServicer
	Export   ExportServicer
	Bulk     BulkUploader
}

// Options carries the non-service settings of the Server.
type Options struct {
	// PublicBaseURL prefixes share links, e.g. "https://checker.example.com".
	PublicBaseURL string

	// AdminAuth guards every /admin route. Nil means no guard (tests only).
	AdminAuth func(http.Handler) http.Handler

	// SessionLimit throttles POST /sessions. Nil means unlimited.
	SessionLimit func(http.Handler) http.Handler

	// OpenAPI is the document served at /openapi.yaml.
	OpenAPI []byte

	Log *slog.Logger
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	items    ItemServicer
	taxonomy TaxonomyServicer
	inputs   InputServicer
	sessions SessionServicer
	export   ExportServicer
	bulk     BulkUploader

	baseURL      string
	adminAuth    func(http.Handler) http.Handler
	sessionLimit func(http.Handler) http.Handler
	openapi      []byte
	log          *slog.Logger
	validate     *validator
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		items:        svc.Items,
		taxonomy:     svc.Taxonomy,
		inputs:       svc.Inputs,
		sessions:     svc.Sessions,
		export:       svc.Export,
		bulk:         svc.Bulk,
		baseURL:      opts.PublicBaseURL,
		adminAuth:    orPassthrough(opts.AdminAuth),
		sessionLimit: orPassthrough(opts.SessionLimit),
		openapi:      opts.OpenAPI,
		log:          log,
		validate:     newValidator(),
	}
}

// Routes returns the chi router for the whole API. Cross-cutting middleware
// (request id, logging, CORS, body limit) is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/items", s.ListItems)
	r.Get("/items/{id}", s.GetItem)
	r.Post("/catalog/{type}/search", s.SearchCatalog)
	r.Get("/taxonomy/{type}", s.GetTaxonomy)
	r.Get("/input-groups", s.GetInputSchema)

	r.With(s.sessionLimit).Post("/sessions", s.CreateSession)
	r.Get("/sessions/{id}", s.GetSession)

	r.Post("/export", s.Export)
	r.Post("/import", s.Import)
	r.Get("/templates/{file}", s.GetTemplate)
	r.Get("/images/{name}", s.GetImage)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.adminAuth)

		r.Get("/categories", s.ListCategories)
		r.Post("/categories", s.CreateCategory)
		r.Get("/categories/{id}", s.GetCategory)
		r.Put("/categories/{id}", s.UpdateCategory)
		r.Delete("/categories/{id}", s.DeleteCategory)
		r.Get("/categories/{id}/values", s.ListValues)
		r.Post("/categories/{id}/values", s.CreateValue)
		r.Put("/values/{id}", s.UpdateValue)
		r.Delete("/values/{id}", s.DeleteValue)

		r.Get("/items", s.ListItemsPaged)
		r.Post("/items", s.CreateItem)
		r.Post("/items/bulk", s.BulkUpload)
		r.Get("/items/{id}", s.GetItem)
		r.Put("/items/{id}", s.UpdateItem)
		r.Delete("/items/{id}", s.DeleteItem)
		r.Put("/items/{id}/image", s.UploadItemImage)

		r.Post("/input-groups", s.CreateInputGroup)
		r.Put("/input-groups/{id}", s.UpdateInputGroup)
		r.Delete("/input-groups/{id}", s.DeleteInputGroup)
		r.Post("/input-groups/{id}/items", s.CreateInputItem)
		r.Put("/input-items/{id}", s.UpdateInputItem)
		r.Delete("/input-items/{id}", s.DeleteInputItem)
	})

	return r
}

func orPassthrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw != nil {
		return mw
	}
	return func(next http.Handler) http.Handler { return next }
}
