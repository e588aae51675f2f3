package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/granblue-checker/internal/catalog"
	"github.com/pkordes/granblue-checker/internal/domain"
)

// itemType parses an item type from a query or path value, writing a 422
// when it is missing or unknown.
func (s *Server) itemType(w http.ResponseWriter, r *http.Request, raw string) (domain.ItemType, bool) {
	t, ok := domain.ParseItemType(raw)
	if !ok {
		s.badRequest(w, r, "type must be one of: character weapon summon")
		return "", false
	}
	return t, true
}

// ListItems handles GET /items?type=. It returns every item of the type,
// newest first, with its tags projected onto filter keys.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	t, ok := s.itemType(w, r, r.URL.Query().Get("type"))
	if !ok {
		return
	}
	page, err := s.items.Catalog(r.Context(), t, catalog.Query{})
	if err != nil {
		s.handleError(w, r, err, "item type not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, catalogToResponse(page))
}

// SearchCatalog handles POST /catalog/{type}/search.
func (s *Server) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	t, ok := s.itemType(w, r, chi.URLParam(r, "type"))
	if !ok {
		return
	}
	var body catalogSearchRequest
	if !s.decode(w, r, &body) {
		return
	}
	q := catalog.Query{
		Search:      body.Search,
		OwnedOnly:   body.OwnedOnly,
		SelectedIDs: body.SelectedIDs,
		TagFilters:  body.TagFilters,
	}
	page, err := s.items.Catalog(r.Context(), t, q)
	if err != nil {
		s.handleError(w, r, err, "item type not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, catalogToResponse(page))
}

// GetItem handles GET /items/{id} and GET /admin/items/{id}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.items.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, r, err, "item not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, itemToResponse(item))
}

// ListItemsPaged handles GET /admin/items?type=&page=&limit=. An empty type
// lists every type.
func (s *Server) ListItemsPaged(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var t domain.ItemType
	if raw := q.Get("type"); raw != "" {
		var ok bool
		if t, ok = s.itemType(w, r, raw); !ok {
			return
		}
	}
	p := domain.NewPaginationParams(intParam(q.Get("page")), intParam(q.Get("limit")))

	items, total, err := s.items.ListPaged(r.Context(), t, p)
	if err != nil {
		s.handleError(w, r, err, "items not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, itemPageResponse{
		Items: itemsToResponse(items),
		Page:  p.Page,
		Limit: p.Limit,
		Total: total,
	})
}

// CreateItem handles POST /admin/items.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	var body createItemRequest
	if !s.decode(w, r, &body) {
		return
	}
	created, err := s.items.Create(r.Context(), domain.Item{
		ID:            body.ID,
		Name:          body.Name,
		Type:          domain.ItemType(body.Type),
		ImplementedAt: body.ImplementedAt.Time,
		Tags:          valueIDsToTags(body.TagValueIDs),
	})
	if err != nil {
		s.handleError(w, r, err, "item not found")
		return
	}
	s.writeJSON(w, r, http.StatusCreated, itemToResponse(created))
}

// UpdateItem handles PUT /admin/items/{id}. Tags are replaced wholesale.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var body updateItemRequest
	if !s.decode(w, r, &body) {
		return
	}
	updated, err := s.items.Update(r.Context(), domain.Item{
		ID:            chi.URLParam(r, "id"),
		Name:          body.Name,
		ImplementedAt: body.ImplementedAt.Time,
		Tags:          valueIDsToTags(body.TagValueIDs),
	})
	if err != nil {
		s.handleError(w, r, err, "item not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, itemToResponse(updated))
}

// DeleteItem handles DELETE /admin/items/{id}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.items.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleError(w, r, err, "item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func intParam(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
