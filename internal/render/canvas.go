// Package render composes a frame of the editor onto a Canvas.
package render

import (
	"image"
	"image/color"
)

// Affine places a source image on the canvas: dst = src*Scale + (TX, TY).
type Affine struct {
	Scale  float64
	TX, TY float64
}

// Canvas is the drawing surface a frame is composed onto. Colours may carry
// alpha; every primitive composites over what is already drawn.
type Canvas interface {
	Size() (w, h int)
	Fill(c color.Color)
	FillRect(x, y, w, h float64, c color.Color)
	StrokeRect(x, y, w, h, width float64, c color.Color)
	StrokeLine(x0, y0, x1, y1, width float64, c color.Color)
	DrawImage(img image.Image, geo Affine, alpha float64)
	Text(s string, x, y int)
}

// withAlpha scales the alpha of c by a.
func withAlpha(c color.Color, a float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	a = clamp01(a)
	n.A = uint8(float64(n.A)*a + 0.5)
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
