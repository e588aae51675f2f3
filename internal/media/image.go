package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// blurHashSize bounds the image BlurHash is computed from; the hash is a
// tiny placeholder so a 64px source gives the same result far faster.
const blurHashSize = 64

// Decode decodes any registered image format.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media.Decode: %w", err)
	}
	return img, nil
}

// ComputeBlurHash returns a 4x3-component BlurHash for the image in data.
func ComputeBlurHash(data []byte) (string, error) {
	img, err := Decode(data)
	if err != nil {
		return "", err
	}
	hash, err := blurhash.Encode(4, 3, Fit(img, blurHashSize, blurHashSize, draw.NearestNeighbor))
	if err != nil {
		return "", fmt.Errorf("media.ComputeBlurHash: %w", err)
	}
	return hash, nil
}

// Thumbnail scales img to fit within size x size using a smooth scaler.
func Thumbnail(img image.Image, size int) image.Image {
	return Fit(img, size, size, draw.CatmullRom)
}

// Fit scales img down (never up) to fit within w x h, keeping its aspect
// ratio.
func Fit(img image.Image, w, h int, scaler draw.Scaler) image.Image {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw <= w && sh <= h {
		return img
	}
	dw, dh := w, h
	if sw*h > sh*w {
		dh = max(1, sh*w/sw)
	} else {
		dw = max(1, sw*h/sh)
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	scaler.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
