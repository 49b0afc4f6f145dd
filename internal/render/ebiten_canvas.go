package render

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// EbitenCanvas draws onto an ebiten screen image. Source images passed to
// DrawImage are uploaded once and reused while the same image is drawn.
type EbitenCanvas struct {
	dst *ebiten.Image

	src    image.Image
	srcImg *ebiten.Image
}

// NewEbitenCanvas returns a canvas with no target; call SetTarget every frame.
func NewEbitenCanvas() *EbitenCanvas { return &EbitenCanvas{} }

// SetTarget points the canvas at this frame's screen.
func (ec *EbitenCanvas) SetTarget(dst *ebiten.Image) { ec.dst = dst }

func (ec *EbitenCanvas) Size() (int, int) {
	b := ec.dst.Bounds()
	return b.Dx(), b.Dy()
}

func (ec *EbitenCanvas) Fill(c color.Color) { ec.dst.Fill(c) }

func (ec *EbitenCanvas) FillRect(x, y, w, h float64, c color.Color) {
	vector.FillRect(ec.dst, float32(x), float32(y), float32(w), float32(h), c, false)
}

func (ec *EbitenCanvas) StrokeRect(x, y, w, h, width float64, c color.Color) {
	vector.StrokeRect(ec.dst, float32(x), float32(y), float32(w), float32(h), float32(width), c, false)
}

func (ec *EbitenCanvas) StrokeLine(x0, y0, x1, y1, width float64, c color.Color) {
	vector.StrokeLine(ec.dst, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), c, true)
}

func (ec *EbitenCanvas) DrawImage(img image.Image, geo Affine, alpha float64) {
	if img == nil || alpha <= 0 {
		return
	}
	if img != ec.src {
		if ec.srcImg != nil {
			ec.srcImg.Deallocate()
		}
		ec.src = img
		ec.srcImg = ebiten.NewImageFromImage(img)
	}
	opts := &ebiten.DrawImageOptions{Filter: ebiten.FilterNearest}
	opts.GeoM.Scale(geo.Scale, geo.Scale)
	opts.GeoM.Translate(geo.TX, geo.TY)
	opts.ColorScale.ScaleAlpha(float32(clamp01(alpha)))
	ec.dst.DrawImage(ec.srcImg, opts)
}

func (ec *EbitenCanvas) Text(s string, x, y int) {
	ebitenutil.DebugPrintAt(ec.dst, s, x, y)
}
