package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/Garsondee/gridfind/internal/gridmap"
	"github.com/Garsondee/gridfind/internal/pathfind"
	"github.com/Garsondee/gridfind/internal/view"
)

// Options toggles the compositing layers of a frame.
type Options struct {
	BackgroundAlpha float64
	ForegroundAlpha float64
	DrawGrid        bool
	DrawPathDebug   bool
	DrawLinks       bool
}

// DefaultOptions is the editor's initial display configuration.
var DefaultOptions = Options{
	BackgroundAlpha: 0.8,
	ForegroundAlpha: 0.8,
	DrawGrid:        true,
	DrawPathDebug:   true,
	DrawLinks:       true,
}

// Marker is an optional highlighted cell.
type Marker struct {
	Point gridmap.Point
	Set   bool
}

// At returns a set marker at p.
func At(p gridmap.Point) Marker { return Marker{Point: p, Set: true} }

// Frame is everything a single frame is drawn from.
type Frame struct {
	Map        *gridmap.GridMap
	View       view.State
	Background image.Image
	Overlay    pathfind.Overlay
	Options    Options

	Start, Goal Marker
	Hover       Marker
	LinkSource  Marker
	// SelectionA and SelectionB span a rectangle being dragged out.
	SelectionA, SelectionB Marker
	// ShowNeighbors draws the moves leaving the hovered cell.
	ShowNeighbors bool
}

// Theme colours.
var (
	colorClear     = color.RGBA{R: 32, G: 32, B: 36, A: 255}
	colorInvalid   = color.RGBA{A: 255}
	colorFree      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorWeighted  = color.RGBA{R: 255, G: 255, A: 255}
	colorOneWay    = color.RGBA{G: 255, B: 255, A: 255}
	colorTick      = color.RGBA{R: 0, G: 90, B: 110, A: 255}
	colorLink      = color.RGBA{R: 200, G: 0, B: 200, A: 220}
	colorGridLine  = color.RGBA{R: 90, G: 90, B: 90, A: 160}
	colorVisited   = color.RGBA{R: 70, G: 110, B: 230, A: 110}
	colorFrontier  = color.RGBA{R: 255, G: 150, B: 30, A: 140}
	colorPath      = color.RGBA{G: 200, A: 255}
	colorCurrent   = color.RGBA{R: 255, G: 60, B: 200, A: 255}
	colorStart     = color.RGBA{G: 255, A: 255}
	colorGoal      = color.RGBA{R: 255, A: 255}
	colorHover     = color.RGBA{R: 255, G: 255, B: 255, A: 200}
	colorNeighbor  = color.RGBA{R: 255, G: 120, B: 0, A: 220}
	colorSource    = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	colorSelection = color.RGBA{R: 80, G: 200, B: 255, A: 220}
)

// CellColor returns the fill colour of a cell.
func CellColor(c gridmap.Cell) color.RGBA {
	switch c.Kind {
	case gridmap.KindNormal:
		if c.Cost == 1 {
			return colorFree
		}
		return colorWeighted
	case gridmap.KindOneWay:
		return colorOneWay
	default:
		return colorInvalid
	}
}

// Cell sizes in pixels below which grid lines and cost labels are skipped.
const (
	minGridZoom  = 4
	minLabelZoom = 28
)

// Render draws f onto c. The output depends only on f and the canvas size.
func Render(c Canvas, f Frame) {
	c.Fill(colorClear)
	if f.Map == nil || f.View.Zoom <= 0 {
		return
	}
	w, h := c.Size()
	vp := view.Rect{W: float64(w), H: float64(h)}
	s := f.View
	o := f.Options

	if f.Background != nil && o.BackgroundAlpha > 0 {
		scale := s.Zoom / f.Map.PixelsPerCell()
		c.DrawImage(f.Background, Affine{Scale: scale, TX: s.OriginX, TY: s.OriginY}, o.BackgroundAlpha)
	}

	r0, r1, c0, c1, ok := s.VisibleRange(f.Map.Rows(), f.Map.Cols(), vp)
	if !ok {
		return
	}

	if o.ForegroundAlpha > 0 {
		drawCells(c, f, r0, r1, c0, c1)
	}
	if o.DrawLinks {
		drawLinks(c, f, r0, r1, c0, c1)
	}
	if o.DrawGrid && s.Zoom >= minGridZoom {
		drawGrid(c, f, r0, r1, c0, c1)
	}
	if o.DrawPathDebug {
		drawOverlay(c, f, vp)
	}
	drawMarkers(c, f)
}

func drawCells(c Canvas, f Frame, r0, r1, c0, c1 int) {
	s := f.View
	alpha := f.Options.ForegroundAlpha
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			p := gridmap.Point{Row: row, Col: col}
			cell := f.Map.CellAt(p)
			rect := s.CellRect(p)
			c.FillRect(rect.X, rect.Y, rect.W, rect.H, withAlpha(CellColor(cell), alpha))

			switch cell.Kind {
			case gridmap.KindOneWay:
				drawTick(c, s, p, cell.Direction, alpha)
			case gridmap.KindNormal:
				if cell.Cost != 1 && s.Zoom >= minLabelZoom {
					c.Text(fmt.Sprintf("%g", cell.Cost), int(rect.X)+2, int(rect.Y)+2)
				}
			}
		}
	}
}

// drawTick draws an arrow from the cell centre towards its exit edge.
func drawTick(c Canvas, s view.State, p gridmap.Point, d gridmap.Direction, alpha float64) {
	cx, cy := s.CellCenter(p)
	dr, dc := d.Offset()
	l := s.Zoom * 0.4
	ex, ey := cx+float64(dc)*l, cy+float64(dr)*l
	width := math.Max(1, s.Zoom/10)
	col := withAlpha(colorTick, alpha)
	c.StrokeLine(cx, cy, ex, ey, width, col)
	// Arrow head: two short strokes back from the tip.
	hx, hy := float64(dc)*l*0.4, float64(dr)*l*0.4
	c.StrokeLine(ex, ey, ex-hx-hy, ey-hy+hx, width, col)
	c.StrokeLine(ex, ey, ex-hx+hy, ey-hy-hx, width, col)
}

func drawLinks(c Canvas, f Frame, r0, r1, c0, c1 int) {
	s := f.View
	width := math.Max(1, s.Zoom/12)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			p := gridmap.Point{Row: row, Col: col}
			t, ok := f.Map.CellAt(p).TargetPoint()
			if !ok {
				continue
			}
			x0, y0 := s.CellCenter(p)
			x1, y1 := s.CellCenter(t)
			c.StrokeLine(x0, y0, x1, y1, width, colorLink)
			tr := s.CellRect(t)
			inset := tr.W * 0.3
			c.StrokeRect(tr.X+inset, tr.Y+inset, tr.W-2*inset, tr.H-2*inset, width, colorLink)
		}
	}
}

func drawGrid(c Canvas, f Frame, r0, r1, c0, c1 int) {
	s := f.View
	x0, y0 := s.WorldToScreen(float64(c0), float64(r0))
	x1, y1 := s.WorldToScreen(float64(c1+1), float64(r1+1))
	for col := c0; col <= c1+1; col++ {
		x, _ := s.WorldToScreen(float64(col), 0)
		c.StrokeLine(x, y0, x, y1, 1, colorGridLine)
	}
	for row := r0; row <= r1+1; row++ {
		_, y := s.WorldToScreen(0, float64(row))
		c.StrokeLine(x0, y, x1, y, 1, colorGridLine)
	}
}

func drawOverlay(c Canvas, f Frame, vp view.Rect) {
	s := f.View
	ov := f.Overlay
	for _, v := range ov.Visited {
		r := s.CellRect(v.Point)
		if r.Intersects(vp) {
			c.FillRect(r.X, r.Y, r.W, r.H, colorVisited)
		}
	}
	for _, p := range ov.Frontier {
		r := s.CellRect(p)
		if r.Intersects(vp) {
			c.FillRect(r.X, r.Y, r.W, r.H, colorFrontier)
		}
	}
	width := math.Max(1.5, s.Zoom/6)
	for i := 1; i < len(ov.Path); i++ {
		x0, y0 := s.CellCenter(ov.Path[i-1])
		x1, y1 := s.CellCenter(ov.Path[i])
		c.StrokeLine(x0, y0, x1, y1, width, colorPath)
	}
	if ov.HasCurrent && ov.Result == pathfind.Searching {
		r := s.CellRect(ov.Current)
		c.StrokeRect(r.X, r.Y, r.W, r.H, math.Max(1, s.Zoom/10), colorCurrent)
	}
}

func drawMarkers(c Canvas, f Frame) {
	s := f.View
	if f.SelectionA.Set && f.SelectionB.Set {
		a, b := f.SelectionA.Point, f.SelectionB.Point
		x0, y0 := s.WorldToScreen(float64(min(a.Col, b.Col)), float64(min(a.Row, b.Row)))
		x1, y1 := s.WorldToScreen(float64(max(a.Col, b.Col)+1), float64(max(a.Row, b.Row)+1))
		c.StrokeRect(x0, y0, x1-x0, y1-y0, 2, colorSelection)
	}
	for _, m := range []struct {
		mk  Marker
		col color.RGBA
	}{{f.Start, colorStart}, {f.Goal, colorGoal}} {
		if !m.mk.Set {
			continue
		}
		r := s.CellRect(m.mk.Point)
		inset := r.W * 0.2
		c.FillRect(r.X+inset, r.Y+inset, r.W-2*inset, r.H-2*inset, m.col)
	}
	if f.LinkSource.Set {
		r := s.CellRect(f.LinkSource.Point)
		c.StrokeRect(r.X, r.Y, r.W, r.H, math.Max(2, s.Zoom/8), colorSource)
	}
	if f.Hover.Set {
		r := s.CellRect(f.Hover.Point)
		c.StrokeRect(r.X, r.Y, r.W, r.H, 1, colorHover)
		if f.ShowNeighbors {
			cx, cy := s.CellCenter(f.Hover.Point)
			for _, e := range f.Map.Neighbors(f.Hover.Point) {
				nx, ny := s.CellCenter(e.To)
				c.StrokeLine(cx, cy, nx, ny, math.Max(1, s.Zoom/12), colorNeighbor)
			}
		}
	}
}
