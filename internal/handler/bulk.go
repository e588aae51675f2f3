package handler

import (
	"net/http"
	"path/filepath"
)

// bulkFormMemory is how much of a bulk upload form is held in memory
// before parts spill to temporary files.
const bulkFormMemory = 32 << 20

// BulkUpload handles POST /admin/items/bulk, a multipart form with:
//
//	type      the item type of every row
//	csv       the item sheet
//	images[]  the image files, matched to rows by file name
//
// Rows fail independently; the response lists each failure.
func (s *Server) BulkUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(bulkFormMemory); err != nil {
		s.badRequest(w, r, "request must be a multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	t, ok := s.itemType(w, r, r.FormValue("type"))
	if !ok {
		return
	}
	sheet, _, err := r.FormFile("csv")
	if err != nil {
		s.badRequest(w, r, "csv file is required")
		return
	}
	defer sheet.Close()

	images := make(map[string][]byte)
	for _, fh := range r.MultipartForm.File["images[]"] {
		data, err := readPart(fh)
		if err != nil {
			s.badRequest(w, r, "image "+fh.Filename+" could not be read")
			return
		}
		images[filepath.Base(fh.Filename)] = data
	}

	res, err := s.bulk.Upload(r.Context(), t, sheet, images)
	if err != nil {
		s.handleError(w, r, err, "item type not found")
		return
	}
	s.log.InfoContext(r.Context(), "bulk upload",
		"type", t, "total", res.Total, "processed", res.Processed, "failed", res.Failed)
	s.writeJSON(w, r, http.StatusOK, bulkToResponse(res))
}
