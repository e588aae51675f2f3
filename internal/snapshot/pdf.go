package snapshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// a4mm is the A4 sheet in millimetres, the unit the PDF is laid out in.
var a4mm = struct{ w, h float64 }{210, 297}

// RenderPDF writes l as an A4 PDF: one PDF page per Paginate page, each
// carrying the rendered page image with its footer. It returns the page
// count.
func (r *Renderer) RenderPDF(w io.Writer, l Layout, title string) (int, error) {
	pages := Paginate(l, A4)
	if len(pages) == 0 {
		return 0, fmt.Errorf("%w: nothing to export", domain.ErrValidation)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetCreator("Granblue Checker", false)
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	r.mu.Lock()
	full := r.rasterize(l)
	imgs := make([]*image.RGBA, len(pages))
	for i, p := range pages {
		imgs[i] = r.page(full, l, p, A4)
	}
	r.mu.Unlock()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, p := range pages {
		var buf bytes.Buffer
		if err := png.Encode(&buf, imgs[i]); err != nil {
			return 0, fmt.Errorf("snapshot.RenderPDF: page %d: %w", p.Number, err)
		}
		name := fmt.Sprintf("page-%d", p.Number)
		doc.RegisterImageOptionsReader(name, opts, &buf)
		doc.AddPage()
		doc.ImageOptions(name, 0, 0, a4mm.w, a4mm.h, false, opts, 0, "")
	}
	if err := doc.Output(w); err != nil {
		return 0, fmt.Errorf("snapshot.RenderPDF: %w", err)
	}
	return len(pages), nil
}
