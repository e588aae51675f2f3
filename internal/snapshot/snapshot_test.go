package snapshot_test

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/interchange"
	"github.com/pkordes/granblue-checker/internal/snapshot"
)

func sampleDoc() interchange.Document {
	three := 3
	return interchange.Document{
		ExportedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Items: []interchange.ItemRow{
			{Type: domain.ItemTypeCharacter, ID: "character_1", Name: "Katalina"},
			{Type: domain.ItemTypeCharacter, ID: "character_2", Name: "Lucilius (Summer)"},
			{Type: domain.ItemTypeWeapon, ID: "weapon_1", Name: "Blutgang", Count: &three},
		},
		UserInfo: []interchange.UserInfoRow{
			{GroupName: "Profile", ItemName: "Name", ItemType: domain.FieldText, Value: "Taro"},
			{GroupName: "Profile", ItemName: "Rank", ItemType: domain.FieldNumber, Value: "250"},
		},
	}
}

func TestBuild_PlacesEverySelectedItem(t *testing.T) {
	thumb := image.NewRGBA(image.Rect(0, 0, 10, 10))

	l := snapshot.Build(sampleDoc(), map[string]image.Image{"character_1": thumb})

	require.Len(t, l.Tiles, 3)
	assert.Equal(t, snapshot.Width, l.Width)
	assert.Positive(t, l.Height)

	assert.Equal(t, "Katalina", l.Tiles[0].Label)
	assert.Same(t, thumb, l.Tiles[0].Image)
	assert.Nil(t, l.Tiles[1].Image, "missing thumbnail leaves a placeholder")
	assert.True(t, strings.HasSuffix(l.Tiles[1].Label, "..."), "long names are truncated")
	assert.Equal(t, "x3", l.Tiles[2].Badge)

	// Weapons get their own section below the characters.
	assert.Greater(t, l.Tiles[2].Rect.Min.Y, l.Tiles[0].Rect.Max.Y)

	var texts []string
	for _, tx := range l.Texts {
		texts = append(texts, tx.Value)
	}
	assert.Contains(t, texts, "Profile")
	assert.Contains(t, texts, "Characters (2)")
	assert.Contains(t, texts, "Weapons (1)")
	assert.NotContains(t, texts, "Summons (0)")
}

func TestBuild_WrapsGridRows(t *testing.T) {
	cols := snapshot.Columns()
	doc := interchange.Document{}
	for i := range cols + 1 {
		doc.Items = append(doc.Items, interchange.ItemRow{
			Type: domain.ItemTypeSummon,
			ID:   fmt.Sprintf("summon_%d", i),
		})
	}

	l := snapshot.Build(doc, nil)

	require.Len(t, l.Tiles, cols+1)
	first, wrapped := l.Tiles[0].Rect, l.Tiles[cols].Rect
	assert.Equal(t, first.Min.X, wrapped.Min.X)
	assert.Greater(t, wrapped.Min.Y, first.Max.Y)
	assert.LessOrEqual(t, l.Tiles[cols-1].Rect.Max.X, l.Width)
	assert.Equal(t, "summon_0", l.Tiles[0].Label, "id is the caption when the name is unknown")
}

func TestRenderPNG(t *testing.T) {
	l := snapshot.Build(sampleDoc(), nil)
	var buf bytes.Buffer

	require.NoError(t, snapshot.NewRenderer(nil).RenderPNG(&buf, l))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, l.Width, img.Bounds().Dx())
	assert.Equal(t, l.Height, img.Bounds().Dy())
}

func TestPaginate(t *testing.T) {
	l := snapshot.Layout{Width: 1200, Height: 3000}

	pages := snapshot.Paginate(l, snapshot.A4)

	require.Len(t, pages, 2)
	assert.Equal(t, 0, pages[0].Top)
	assert.Equal(t, pages[0].Bottom, pages[1].Top)
	assert.Equal(t, 3000, pages[1].Bottom)
	assert.Equal(t, "Granblue Checker - page 2 of 2", pages[1].Footer)

	assert.Nil(t, snapshot.Paginate(snapshot.Layout{Width: 1200}, snapshot.A4))
}

func TestRenderPage(t *testing.T) {
	l := snapshot.Build(sampleDoc(), nil)
	pages := snapshot.Paginate(l, snapshot.A4)
	require.Len(t, pages, 1)
	var buf bytes.Buffer

	require.NoError(t, snapshot.NewRenderer(nil).RenderPage(&buf, l, pages[0], snapshot.A4))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, snapshot.A4.Width, img.Bounds().Dx())
	assert.Equal(t, snapshot.A4.Height, img.Bounds().Dy())
}

func tallDoc(n int) interchange.Document {
	doc := interchange.Document{ExportedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	for i := range n {
		doc.Items = append(doc.Items, interchange.ItemRow{
			Type: domain.ItemTypeSummon,
			ID:   fmt.Sprintf("summon_%d", i),
			Name: fmt.Sprintf("Summon %d", i),
		})
	}
	return doc
}

func TestRenderPDF_OnePagePerA4Page(t *testing.T) {
	l := snapshot.Build(tallDoc(400), nil)
	pages := snapshot.Paginate(l, snapshot.A4)
	require.Greater(t, len(pages), 1)
	var buf bytes.Buffer

	n, err := snapshot.NewRenderer(nil).RenderPDF(&buf, l, "Granblue Checker")

	require.NoError(t, err)
	assert.Equal(t, len(pages), n)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	assert.Equal(t, len(pages), strings.Count(out, "<</Type /Page\n"))
}

func TestRenderPDF_EmptyLayout(t *testing.T) {
	var buf bytes.Buffer

	_, err := snapshot.NewRenderer(nil).RenderPDF(&buf, snapshot.Layout{Width: 1200}, "x")

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, buf.Len())
}

func TestDefaultFace_CoversNonASCII(t *testing.T) {
	face := snapshot.DefaultFace()

	for _, r := range "éßЖλ" {
		_, ok := face.GlyphAdvance(r)
		assert.True(t, ok, "glyph for %q", r)
	}
}

func TestLoadFace(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "go.ttf")
	require.NoError(t, os.WriteFile(good, goregular.TTF, 0o600))
	bad := filepath.Join(dir, "bad.ttf")
	require.NoError(t, os.WriteFile(bad, []byte("not a font"), 0o600))

	face, err := snapshot.LoadFace(good)
	require.NoError(t, err)
	_, ok := face.GlyphAdvance('A')
	assert.True(t, ok)

	_, err = snapshot.LoadFace(bad)
	assert.Error(t, err)

	_, err = snapshot.LoadFace(filepath.Join(dir, "missing.ttf"))
	assert.Error(t, err)
}

func TestRenderer_RasterizesNonASCIILabels(t *testing.T) {
	doc := interchange.Document{Items: []interchange.ItemRow{
		{Type: domain.ItemTypeCharacter, ID: "character_1", Name: "Zeta Ægis"},
	}}
	l := snapshot.Build(doc, nil)

	img := snapshot.NewRenderer(nil).Rasterize(l)

	// Some pixel under the caption is darker than the white background.
	tile := l.Tiles[0].Rect
	dark := false
	for y := tile.Max.Y; y < tile.Max.Y+18 && !dark; y++ {
		for x := tile.Min.X; x < tile.Max.X; x++ {
			if img.RGBAAt(x, y).R < 0x80 {
				dark = true
				break
			}
		}
	}
	assert.True(t, dark)
}
