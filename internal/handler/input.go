package handler

import (
	"net/http"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/service"
)

// GetInputSchema handles GET /input-groups: the ordered user-info form and
// the default value of every field.
func (s *Server) GetInputSchema(w http.ResponseWriter, r *http.Request) {
	groups, err := s.inputs.Schema(r.Context())
	if err != nil {
		s.handleError(w, r, err, "input schema not found")
		return
	}
	resp := inputSchemaResponse{
		Groups:   make([]inputGroupResponse, len(groups)),
		Defaults: service.Defaults(groups),
	}
	for i, g := range groups {
		resp.Groups[i] = inputGroupToResponse(g)
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

// CreateInputGroup handles POST /admin/input-groups.
func (s *Server) CreateInputGroup(w http.ResponseWriter, r *http.Request) {
	var body inputGroupRequest
	if !s.decode(w, r, &body) {
		return
	}
	created, err := s.inputs.CreateGroup(r.Context(), domain.InputGroup{Name: body.Name, SortOrder: body.SortOrder})
	if err != nil {
		s.handleError(w, r, err, "input group not found")
		return
	}
	s.writeJSON(w, r, http.StatusCreated, inputGroupToResponse(created))
}

// UpdateInputGroup handles PUT /admin/input-groups/{id}.
func (s *Server) UpdateInputGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var body inputGroupRequest
	if !s.decode(w, r, &body) {
		return
	}
	updated, err := s.inputs.UpdateGroup(r.Context(), domain.InputGroup{ID: id, Name: body.Name, SortOrder: body.SortOrder})
	if err != nil {
		s.handleError(w, r, err, "input group not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, inputGroupToResponse(updated))
}

// DeleteInputGroup handles DELETE /admin/input-groups/{id}.
func (s *Server) DeleteInputGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.inputs.DeleteGroup(r.Context(), id); err != nil {
		s.handleError(w, r, err, "input group not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateInputItem handles POST /admin/input-groups/{id}/items.
func (s *Server) CreateInputItem(w http.ResponseWriter, r *http.Request) {
	groupID, ok := s.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var body inputItemRequest
	if !s.decode(w, r, &body) {
		return
	}
	it := requestToInputItem(body)
	it.GroupID = groupID
	created, err := s.inputs.CreateItem(r.Context(), it)
	if err != nil {
		s.handleError(w, r, err, "input group not found")
		return
	}
	s.writeJSON(w, r, http.StatusCreated, inputItemToResponse(created))
}

// UpdateInputItem handles PUT /admin/input-items/{id}.
func (s *Server) UpdateInputItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var body inputItemRequest
	if !s.decode(w, r, &body) {
		return
	}
	it := requestToInputItem(body)
	it.ID = id
	updated, err := s.inputs.UpdateItem(r.Context(), it)
	if err != nil {
		s.handleError(w, r, err, "input item not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, inputItemToResponse(updated))
}

// DeleteInputItem handles DELETE /admin/input-items/{id}.
func (s *Server) DeleteInputItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.inputs.DeleteItem(r.Context(), id); err != nil {
		s.handleError(w, r, err, "input item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
