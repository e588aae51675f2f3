// Package snapshot lays out an export document as a fixed visual page
// (header, user-info block, one thumbnail grid per item type) and
// rasterises it. The layout is plain data so it can be inspected and
// paginated without rendering.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"unicode/utf8"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/interchange"
)

const (
	Width = 1200

	margin     = 32
	lineHeight = 18
	tileSize   = 96
	tileGap    = 12
	labelSpace = 18
	sectionGap = 24

	// glyphWidth approximates the average advance at fontSize for layout
	// indentation; the renderer re-fits text against the real face.
	glyphWidth = 7
)

var (
	colorText    = color.RGBA{R: 0x1f, G: 0x23, B: 0x28, A: 0xff}
	colorMuted   = color.RGBA{R: 0x6a, G: 0x73, B: 0x7d, A: 0xff}
	colorHeading = color.RGBA{R: 0x0b, G: 0x4f, B: 0x9c, A: 0xff}
)

var sectionTitles = map[domain.ItemType]string{
	domain.ItemTypeCharacter: "Characters",
	domain.ItemTypeWeapon:    "Weapons",
	domain.ItemTypeSummon:    "Summons",
}

// Text is one line of text; Y is the baseline.
type Text struct {
	X, Y  int
	Value string
	Color color.RGBA
}

// Tile is one item thumbnail with its caption. Image may be nil, in which
// case a placeholder is drawn.
type Tile struct {
	ItemID string
	Rect   image.Rectangle
	Image  image.Image
	Label  string
	Badge  string
}

// Layout is a positioned snapshot of one export.
type Layout struct {
	Width  int
	Height int
	Texts  []Text
	Tiles  []Tile
}

// Columns is how many tiles fit in one grid row.
func Columns() int {
	return (Width - 2*margin + tileGap) / (tileSize + tileGap)
}

// Build positions doc on a Width-wide canvas. thumbs maps item ids to
// their thumbnails; items without one get a placeholder tile.
func Build(doc interchange.Document, thumbs map[string]image.Image) Layout {
	l := Layout{Width: Width}
	y := margin

	text := func(x int, s string, c color.RGBA) {
		y += lineHeight
		l.Texts = append(l.Texts, Text{X: x, Y: y - 4, Value: s, Color: c})
	}

	text(margin, "Granblue Checker", colorHeading)
	text(margin, "Exported at "+doc.ExportedAt.UTC().Format("2006-01-02 15:04 MST"), colorMuted)

	if len(doc.UserInfo) > 0 {
		y += sectionGap
		group := "\x00"
		for _, row := range doc.UserInfo {
			if row.GroupName != group {
				group = row.GroupName
				if group != "" {
					text(margin, group, colorHeading)
				}
			}
			text(margin+glyphWidth*2, fitText(row.ItemName+": "+row.Value, Width-2*margin), colorText)
		}
	}

	cols := Columns()
	for _, t := range domain.ItemTypes {
		var rows []interchange.ItemRow
		for _, r := range doc.Items {
			if r.Type == t {
				rows = append(rows, r)
			}
		}
		if len(rows) == 0 {
			continue
		}
		y += sectionGap
		text(margin, fmt.Sprintf("%s (%d)", sectionTitles[t], len(rows)), colorHeading)
		y += tileGap / 2

		for i, r := range rows {
			col, row := i%cols, i/cols
			x0 := margin + col*(tileSize+tileGap)
			y0 := y + row*(tileSize+labelSpace+tileGap)
			label := r.Name
			if label == "" {
				label = r.ID
			}
			tile := Tile{
				ItemID: r.ID,
				Rect:   image.Rect(x0, y0, x0+tileSize, y0+tileSize),
				Image:  thumbs[r.ID],
				Label:  fitText(label, tileSize),
			}
			if r.Count != nil && *r.Count > 1 {
				tile.Badge = fmt.Sprintf("x%d", *r.Count)
			}
			l.Tiles = append(l.Tiles, tile)
		}
		gridRows := (len(rows) + cols - 1) / cols
		y += gridRows*(tileSize+labelSpace+tileGap) - tileGap
	}

	l.Height = y + margin
	return l
}

// fitText truncates s with an ellipsis so it renders within width pixels.
func fitText(s string, width int) string {
	limit := width / glyphWidth
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= 3 {
		return strings.Repeat(".", max(limit, 0))
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}
