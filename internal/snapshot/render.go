package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var (
	colorPlaceholder = color.RGBA{R: 0xe4, G: 0xe7, B: 0xeb, A: 0xff}
	colorBadge       = color.RGBA{R: 0x0b, G: 0x4f, B: 0x9c, A: 0xff}
	colorWhite       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Renderer rasterises layouts with one font face. Opentype faces keep
// scratch buffers, so renders are serialised.
type Renderer struct {
	mu   sync.Mutex
	face font.Face
}

// NewRenderer returns a Renderer drawing with face, or DefaultFace when
// face is nil.
func NewRenderer(face font.Face) *Renderer {
	if face == nil {
		face = DefaultFace()
	}
	return &Renderer{face: face}
}

// Rasterize draws l onto a new RGBA canvas.
func (r *Renderer) Rasterize(l Layout) *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rasterize(l)
}

func (r *Renderer) rasterize(l Layout) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	for _, t := range l.Texts {
		r.drawText(dst, t.X, t.Y, r.fit(t.Value, l.Width-margin-t.X), t.Color)
	}
	for _, t := range l.Tiles {
		draw.Draw(dst, t.Rect, image.NewUniform(colorPlaceholder), image.Point{}, draw.Src)
		if t.Image != nil {
			draw.CatmullRom.Scale(dst, t.Rect, t.Image, t.Image.Bounds(), draw.Over, nil)
		}
		r.drawText(dst, t.Rect.Min.X, t.Rect.Max.Y+labelSpace-5, r.fit(t.Label, t.Rect.Dx()), colorText)
		if t.Badge != "" {
			bw := font.MeasureString(r.face, t.Badge).Ceil() + 6
			badge := image.Rect(t.Rect.Max.X-bw, t.Rect.Max.Y-16, t.Rect.Max.X, t.Rect.Max.Y)
			draw.Draw(dst, badge, image.NewUniform(colorBadge), image.Point{}, draw.Src)
			r.drawText(dst, badge.Min.X+3, badge.Max.Y-4, t.Badge, colorWhite)
		}
	}
	return dst
}

// RenderPNG writes the whole layout as one PNG.
func (r *Renderer) RenderPNG(w io.Writer, l Layout) error {
	r.mu.Lock()
	img := r.rasterize(l)
	r.mu.Unlock()
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("snapshot.RenderPNG: %w", err)
	}
	return nil
}

// RenderPage writes page p of l, scaled onto size, as a PNG with the
// page's footer.
func (r *Renderer) RenderPage(w io.Writer, l Layout, p Page, size PageSize) error {
	r.mu.Lock()
	img := r.page(r.rasterize(l), l, p, size)
	r.mu.Unlock()
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("snapshot.RenderPage: %w", err)
	}
	return nil
}

// page cuts p out of the rasterised layout full and scales it onto a
// size canvas with the footer centred in the reserved strip.
func (r *Renderer) page(full *image.RGBA, l Layout, p Page, size PageSize) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	src := image.Rect(0, p.Top, l.Width, p.Bottom)
	scaled := int(float64(src.Dy()) * size.scale(l.Width))
	draw.CatmullRom.Scale(dst, image.Rect(0, 0, size.Width, scaled), full, src, draw.Src, nil)

	fx := (size.Width - font.MeasureString(r.face, p.Footer).Ceil()) / 2
	r.drawText(dst, fx, size.Height-size.FooterHeight/2+4, p.Footer, colorMuted)
	return dst
}

// fit truncates s with an ellipsis so it measures at most width pixels in
// the renderer's face.
func (r *Renderer) fit(s string, width int) string {
	limit := fixed.I(width)
	if font.MeasureString(r.face, s) <= limit {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		cand := string(runes[:n]) + "..."
		if font.MeasureString(r.face, cand) <= limit {
			return cand
		}
	}
	return ""
}

func (r *Renderer) drawText(dst draw.Image, x, y int, s string, c color.RGBA) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
