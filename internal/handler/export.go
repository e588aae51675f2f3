package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/granblue-checker/internal/interchange"
)

// Export handles POST /export?format=csv|image|pdf&page=N.
// The body is the selection state to export. For format=image, page 0 (the
// default) is the whole snapshot and page N is the Nth A4 page; the page
// count is returned in the X-Page-Count header, as it is for format=pdf.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.badRequest(w, r, "page must be a non-negative integer")
			return
		}
		page = n
	}

	var body selectionState
	if !s.decode(w, r, &body) {
		return
	}
	state := body.toDomain()
	stamp := time.Now().UTC().Format("20060102-150405")

	// Render into a buffer so a failure halfway through still produces a
	// clean error response.
	var buf bytes.Buffer
	switch format {
	case "csv":
		if err := s.export.ExportCSV(r.Context(), &buf, state); err != nil {
			s.handleError(w, r, err, "export not found")
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment("granblue-checker-"+stamp+".csv"))
	case "image":
		pages, err := s.export.ExportImage(r.Context(), &buf, state, page)
		if err != nil {
			s.handleError(w, r, err, "export not found")
			return
		}
		name := "granblue-checker-" + stamp + ".png"
		if page > 0 {
			name = fmt.Sprintf("granblue-checker-%s-p%d.png", stamp, page)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", attachment(name))
		w.Header().Set("X-Page-Count", strconv.Itoa(pages))
	case "pdf":
		pages, err := s.export.ExportPDF(r.Context(), &buf, state)
		if err != nil {
			s.handleError(w, r, err, "export not found")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", attachment("granblue-checker-"+stamp+".pdf"))
		w.Header().Set("X-Page-Count", strconv.Itoa(pages))
	default:
		s.badRequest(w, r, "format must be one of: csv image pdf")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Import handles POST /import. A file that cannot be imported is not an
// HTTP error: the response carries success=false and the caller's state
// unchanged.
func (s *Server) Import(w http.ResponseWriter, r *http.Request) {
	var body importRequest
	if !s.decode(w, r, &body) {
		return
	}
	outcome := s.export.ImportCSV(r.Context(), body.Text, body.State.toDomain())
	s.writeJSON(w, r, http.StatusOK, importToResponse(outcome))
}

// GetTemplate handles GET /templates/{type}.csv.
func (s *Server) GetTemplate(w http.ResponseWriter, r *http.Request) {
	raw, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".csv")
	if !ok {
		s.notFound(w, r, "template not found")
		return
	}
	t, ok := s.itemType(w, r, raw)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := interchange.WriteTemplate(&buf, t); err != nil {
		s.handleError(w, r, err, "template not found")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(string(t)+"-template.csv"))
	_, _ = buf.WriteTo(w)
}

func attachment(filename string) string {
	return `attachment; filename="` + filename + `"`
}
