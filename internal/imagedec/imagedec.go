// Package imagedec decodes user-supplied background images.
package imagedec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	// Registered formats.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when bytes cannot be decoded into an image.
var ErrDecode = errors.New("decode image")

// Raster is a decoded background image.
type Raster struct {
	img    *image.NRGBA
	format string
}

// Decode reads a png, jpeg, gif, bmp, tiff or webp image.
func Decode(data []byte) (*Raster, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty %s image", ErrDecode, format)
	}
	r := FromImage(img)
	r.format = format
	return r, nil
}

// FromImage copies img into a Raster anchored at (0, 0).
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Raster{img: dst, format: "png"}
}

func (r *Raster) Width() int  { return r.img.Bounds().Dx() }
func (r *Raster) Height() int { return r.img.Bounds().Dy() }

// At returns the pixel at (x, y), transparent outside the image.
func (r *Raster) At(x, y int) color.Color { return r.img.At(x, y) }

// Image exposes the raster for sampling and drawing.
func (r *Raster) Image() image.Image { return r.img }

// Format is the name of the format the raster was decoded from.
func (r *Raster) Format() string { return r.format }

// EncodePNG re-encodes the raster as PNG for storage.
func (r *Raster) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
