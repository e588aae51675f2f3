package snapshot

import "fmt"

// PageSize is a fixed output page in pixels. FooterHeight is reserved at
// the bottom of every page.
type PageSize struct {
	Width        int
	Height       int
	FooterHeight int
}

// A4 at 96 dpi.
var A4 = PageSize{Width: 794, Height: 1123, FooterHeight: 32}

func (s PageSize) scale(layoutWidth int) float64 {
	return float64(s.Width) / float64(layoutWidth)
}

// Page is a horizontal slice [Top, Bottom) of a layout, in layout pixels.
type Page struct {
	Number int
	Top    int
	Bottom int
	Footer string
}

// Paginate slices l into pages of size. The layout is scaled to the page
// width, so each page holds (Height-FooterHeight)/scale layout pixels.
func Paginate(l Layout, size PageSize) []Page {
	if l.Height <= 0 || l.Width <= 0 {
		return nil
	}
	per := int(float64(size.Height-size.FooterHeight) / size.scale(l.Width))
	if per <= 0 {
		per = l.Height
	}
	total := (l.Height + per - 1) / per

	pages := make([]Page, 0, total)
	for i := range total {
		top := i * per
		pages = append(pages, Page{
			Number: i + 1,
			Top:    top,
			Bottom: min(top+per, l.Height),
			Footer: fmt.Sprintf("Granblue Checker - page %d of %d", i+1, total),
		})
	}
	return pages
}
