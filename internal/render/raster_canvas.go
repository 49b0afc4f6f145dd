package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// RasterCanvas draws into an in-memory RGBA image. It backs headless
// snapshots and tests.
type RasterCanvas struct {
	img *image.RGBA
	ras *vector.Rasterizer
}

// NewRasterCanvas allocates a w×h canvas.
func NewRasterCanvas(w, h int) *RasterCanvas {
	return &RasterCanvas{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		ras: vector.NewRasterizer(w, h),
	}
}

// Image returns the backing image.
func (rc *RasterCanvas) Image() *image.RGBA { return rc.img }

// EncodePNG writes the canvas as PNG.
func (rc *RasterCanvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, rc.img)
}

func (rc *RasterCanvas) Size() (int, int) {
	b := rc.img.Bounds()
	return b.Dx(), b.Dy()
}

func (rc *RasterCanvas) Fill(c color.Color) {
	draw.Draw(rc.img, rc.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (rc *RasterCanvas) FillRect(x, y, w, h float64, c color.Color) {
	r := image.Rect(
		int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+w)), int(math.Round(y+h)),
	).Intersect(rc.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(rc.img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

func (rc *RasterCanvas) StrokeRect(x, y, w, h, width float64, c color.Color) {
	rc.StrokeLine(x, y, x+w, y, width, c)
	rc.StrokeLine(x+w, y, x+w, y+h, width, c)
	rc.StrokeLine(x+w, y+h, x, y+h, width, c)
	rc.StrokeLine(x, y+h, x, y, width, c)
}

// StrokeLine rasterises the line as a quad of the given width.
func (rc *RasterCanvas) StrokeLine(x0, y0, x1, y1, width float64, c color.Color) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 || width <= 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	w, h := rc.Size()
	rc.ras.Reset(w, h)
	rc.ras.MoveTo(float32(x0+nx), float32(y0+ny))
	rc.ras.LineTo(float32(x1+nx), float32(y1+ny))
	rc.ras.LineTo(float32(x1-nx), float32(y1-ny))
	rc.ras.LineTo(float32(x0-nx), float32(y0-ny))
	rc.ras.ClosePath()
	rc.ras.DrawOp = draw.Over
	rc.ras.Draw(rc.img, rc.img.Bounds(), image.NewUniform(c), image.Point{})
}

// DrawImage scales img with nearest-neighbour sampling and composites it at
// the given alpha.
func (rc *RasterCanvas) DrawImage(img image.Image, geo Affine, alpha float64) {
	if img == nil || alpha <= 0 || geo.Scale <= 0 {
		return
	}
	tmp := image.NewRGBA(rc.img.Bounds())
	m := f64.Aff3{geo.Scale, 0, geo.TX, 0, geo.Scale, geo.TY}
	draw.NearestNeighbor.Transform(tmp, m, img, img.Bounds(), draw.Src, nil)
	mask := image.NewUniform(color.Alpha{A: uint8(clamp01(alpha)*255 + 0.5)})
	draw.DrawMask(rc.img, rc.img.Bounds(), tmp, image.Point{}, mask, image.Point{}, draw.Over)
}

// Text draws s with its top-left corner at (x, y) in white.
func (rc *RasterCanvas) Text(s string, x, y int) {
	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  rc.img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(s)
}
