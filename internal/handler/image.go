package handler

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/granblue-checker/internal/media"
)

// GetImage handles GET /images/{name}.
func (s *Server) GetImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := s.items.Image(name)
	if err != nil {
		s.handleError(w, r, err, "image not found")
		return
	}
	w.Header().Set("Content-Type", media.ContentType(name))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}

// UploadItemImage handles PUT /admin/items/{id}/image. The image is either
// the raw request body or the "image" part of a multipart form.
func (s *Server) UploadItemImage(w http.ResponseWriter, r *http.Request) {
	data, err := readImageBody(r)
	if err != nil {
		s.badRequest(w, r, "image could not be read: "+err.Error())
		return
	}
	item, err := s.items.SetImage(r.Context(), chi.URLParam(r, "id"), data)
	if err != nil {
		s.handleError(w, r, err, "item not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, itemToResponse(item))
}

func readImageBody(r *http.Request) ([]byte, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}
	f, _, err := r.FormFile("image")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// readPart reads one uploaded file in full.
func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
