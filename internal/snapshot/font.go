package snapshot

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontSize is the pixel size of every face the renderer draws with.
const fontSize = 12

// DefaultFace is Go Regular at fontSize. It covers Latin, Greek and
// Cyrillic; deployments with Japanese names load a CJK font with LoadFace.
func DefaultFace() font.Face {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic("snapshot: parse embedded Go Regular: " + err.Error())
	}
	face, err := newFace(f)
	if err != nil {
		panic("snapshot: Go Regular face: " + err.Error())
	}
	return face
}

// LoadFace reads a TrueType or OpenType font (a single font, or the first
// font of a .ttc collection) and returns a face at fontSize.
func LoadFace(path string) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot.LoadFace: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		coll, cerr := opentype.ParseCollection(data)
		if cerr != nil {
			return nil, fmt.Errorf("snapshot.LoadFace: %s: %w", path, err)
		}
		if f, err = coll.Font(0); err != nil {
			return nil, fmt.Errorf("snapshot.LoadFace: %s: %w", path, err)
		}
	}
	face, err := newFace(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot.LoadFace: %s: %w", path, err)
	}
	return face, nil
}

func newFace(f *opentype.Font) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
