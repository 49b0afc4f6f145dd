package gridmap

import (
	"image"
	"image/color"
	"math"
)

// Default auto-fill parameters.
const (
	DefaultLuminanceThreshold = 128
	DefaultColorTolerance     = 10
)

// FillRule maps a sampled background colour to a cell.
type FillRule func(color.Color) Cell

// LuminanceThreshold marks a cell Normal{1} when the Rec.601 luma of its
// sample is at least threshold (0..255), Invalid otherwise.
func LuminanceThreshold(threshold float64) FillRule {
	return func(c color.Color) Cell {
		if float64(luma1000(c)) >= threshold*1000 {
			return Normal(1)
		}
		return Invalid()
	}
}

// ColorMatch marks a cell Normal{1} when its sample lies within tolerance
// (Euclidean RGB distance, 0..255 per channel) of free, Invalid otherwise.
func ColorMatch(free color.Color, tolerance float64) FillRule {
	fr, fg, fb := rgb8(free)
	return func(c color.Color) Cell {
		r, g, b := rgb8(c)
		dr, dg, db := r-fr, g-fg, b-fb
		if math.Sqrt(dr*dr+dg*dg+db*db) < tolerance {
			return Normal(1)
		}
		return Invalid()
	}
}

// Luma returns the Rec.601 luma of c on a 0..255 scale.
func Luma(c color.Color) float64 {
	return float64(luma1000(c)) / 1000
}

// luma1000 is the luma scaled by 1000, exact for 8-bit channels.
func luma1000(c color.Color) int {
	cr, cg, cb, _ := c.RGBA()
	return 299*int(cr>>8) + 587*int(cg>>8) + 114*int(cb>>8)
}

func rgb8(c color.Color) (r, g, b float64) {
	cr, cg, cb, _ := c.RGBA()
	return float64(cr >> 8), float64(cg >> 8), float64(cb >> 8)
}

// SamplePoint returns the background pixel sampled for cell p: the centre of
// the ppc×ppc square the cell covers.
func SamplePoint(p Point, ppc float64) image.Point {
	x := (float64(p.Col) + 0.5) * ppc
	y := (float64(p.Row) + 0.5) * ppc
	return image.Pt(int(math.Floor(x)), int(math.Floor(y)))
}

// AutoFill assigns every cell from rule applied to the background sample at
// the cell centre. Cells whose sample falls outside the image become Invalid.
// The result depends only on the image, the rule and the map's dimensions and
// scale.
func (m *GridMap) AutoFill(bg image.Image, rule FillRule) error {
	if bg == nil {
		return ErrNoBackground
	}
	bounds := bg.Bounds()
	cells := make([]Cell, len(m.cells))
	for i := range cells {
		sp := SamplePoint(m.PointAt(i), m.pixelsPerCell).Add(bounds.Min)
		if !sp.In(bounds) {
			continue
		}
		c := rule(bg.At(sp.X, sp.Y))
		if err := validateCost(c); err != nil {
			return err
		}
		cells[i] = c.Unlinked()
	}
	m.cells = cells
	m.revision++
	return nil
}
