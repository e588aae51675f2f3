package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// uuidParam parses the named path parameter, writing a 422 when it is not
// a UUID.
func (s *Server) uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		s.badRequest(w, r, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// GetTaxonomy handles GET /taxonomy/{type}: the categories of the type in
// display order, each with its values and filter key.
func (s *Server) GetTaxonomy(w http.ResponseWriter, r *http.Request) {
	t, ok := s.itemType(w, r, chi.URLParam(r, "type"))
	if !ok {
		return
	}
	tax, err := s.taxonomy.Taxonomy(r.Context(), t)
	if err != nil {
		s.handleError(w, r, err, "taxonomy not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, taxonomyToResponse(tax))
}

// ListCategories handles GET /admin/categories?type=.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	t, ok := s.itemType(w, r, r.URL.Query().Get("type"))
	if !ok {
		return
	}
	cats, err := s.taxonomy.ListCategories(r.Context(), t)
	if err != nil {
		s.handleError(w, r, err, "categories not found")
		return
	}
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = categoryToResponse(c)
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

// GetCategory handles GET /admin/categories/{id}.
func (s *Server) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "id")
	if !ok {
		return
	}
	c, err := s.taxonomy.GetCategory(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err, "category not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, categoryToResponse(c))
}

// CreateCategory handles POST /admin/categories.
func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryRequest
	if !s.decode(w, r, &body) {
		return
	}
	t, ok := s.itemType(w, r, body.ItemType)
	if !ok {
		return
	}
	created, err := s.taxonomy.CreateCategory(r.Context(), domain.TagCategory{
		Name:        body.Name,
		Role:        body.Role,
		ItemType:    t,
		MultiSelect: body.MultiSelect,
		Required:    body.Required,
		SortOrder:   body.SortOrder,
	})
	if err != nil {
		s.handleError(w, r, err, "category not found")
		return
	}
	s.writeJSON(w, r, http.StatusCreated, categoryToResponse(created))
}

// UpdateCategory handles PUT /admin/categories/{id}. The item type of a
// category is fixed; item_type in the body is ignored.
func (s *Server) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var body categoryRequest
	if !s.decode(w, r, &body) {
		return
	}
	updated, err := s.taxonomy.UpdateCategory(r.Context(), domain.TagCategory{
		ID:          id,
		Name:        body.Name,
		Role:        body.Role,
		MultiSelect: body.MultiSelect,
		Required:    body.Required,
		SortOrder:   body.SortOrder,
	})
	if err != nil {
		s.handleError(w, r, err, "category not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, categoryToResponse(updated))
}

// DeleteCategory handles DELETE /admin/categories/{id}.
func (s *Server) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.taxonomy.DeleteCategory(r.Context(), id); err != nil {
		s.handleError(w, r, err, "category not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListValues handles GET /admin/categories/{id}/values.
func (s *Server) ListValues(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "id")
	if !ok {
		return
	}
	vals, err := s.taxonomy.ListValues(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err, "category not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, valuesToResponse(vals))
}

// CreateValue handles POST /admin/categories/{id}/values.
func (s *Server) CreateValue(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var body valueRequest
	if !s.decode(w, r, &body) {
		return
	}
	created, err := s.taxonomy.CreateValue(r.Context(), domain.TagValue{
		CategoryID: id,
		Value:      body.Value,
		SortOrder:  body.SortOrder,
	})
	if err != nil {
		s.handleError(w, r, err, "category not found")
		return
	}
	s.writeJSON(w, r, http.StatusCreated, valueToResponse(created))
}

// UpdateValue handles PUT /admin/values/{id}.
func (s *Server) UpdateValue(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var body valueRequest
	if !s.decode(w, r, &body) {
		return
	}
	updated, err := s.taxonomy.UpdateValue(r.Context(), domain.TagValue{
		ID:        id,
		Value:     body.Value,
		SortOrder: body.SortOrder,
	})
	if err != nil {
		s.handleError(w, r, err, "value not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, valueToResponse(updated))
}

// DeleteValue handles DELETE /admin/values/{id}.
func (s *Server) DeleteValue(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.taxonomy.DeleteValue(r.Context(), id); err != nil {
		s.handleError(w, r, err, "value not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
