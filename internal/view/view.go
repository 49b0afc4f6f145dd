// Package view maps between screen pixels and grid cells.
//
// World space is measured in cells: world (x, y) = (col, row) as reals. Screen
// space is canvas pixels: screen = origin + world*zoom, so zoom is the size of
// one cell in pixels.
package view

import (
	"math"

	"github.com/Garsondee/gridfind/internal/gridmap"
)

// Rect is an axis-aligned screen rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the midpoint of r.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Contains reports whether (x, y) lies inside r. The right and bottom edges
// are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// State is a snapshot of the pan/zoom transform.
type State struct {
	OriginX, OriginY float64
	Zoom             float64
}

// WorldToScreen converts cell-space coordinates to screen pixels.
func (s State) WorldToScreen(wx, wy float64) (float64, float64) {
	return s.OriginX + wx*s.Zoom, s.OriginY + wy*s.Zoom
}

// ScreenToWorld converts screen pixels to cell-space coordinates.
func (s State) ScreenToWorld(sx, sy float64) (float64, float64) {
	return (sx - s.OriginX) / s.Zoom, (sy - s.OriginY) / s.Zoom
}

// CellAt returns the cell containing screen point (sx, sy) without any bounds
// check.
func (s State) CellAt(sx, sy float64) gridmap.Point {
	wx, wy := s.ScreenToWorld(sx, sy)
	return gridmap.Point{Row: int(math.Floor(wy)), Col: int(math.Floor(wx))}
}

// CellRect returns the screen rectangle covered by cell p.
func (s State) CellRect(p gridmap.Point) Rect {
	x, y := s.WorldToScreen(float64(p.Col), float64(p.Row))
	return Rect{X: x, Y: y, W: s.Zoom, H: s.Zoom}
}

// CellCenter returns the screen position of the centre of cell p.
func (s State) CellCenter(p gridmap.Point) (float64, float64) {
	return s.WorldToScreen(float64(p.Col)+0.5, float64(p.Row)+0.5)
}

// VisibleRange returns the inclusive row and column ranges of a rows×cols
// grid that intersect viewport. ok is false when nothing is visible.
func (s State) VisibleRange(rows, cols int, viewport Rect) (r0, r1, c0, c1 int, ok bool) {
	if s.Zoom <= 0 {
		return 0, 0, 0, 0, false
	}
	wx0, wy0 := s.ScreenToWorld(viewport.X, viewport.Y)
	wx1, wy1 := s.ScreenToWorld(viewport.X+viewport.W, viewport.Y+viewport.H)
	c0 = max(0, int(math.Floor(wx0)))
	r0 = max(0, int(math.Floor(wy0)))
	c1 = min(cols-1, int(math.Ceil(wx1))-1)
	r1 = min(rows-1, int(math.Ceil(wy1))-1)
	if r0 > r1 || c0 > c1 {
		return 0, 0, 0, 0, false
	}
	return r0, r1, c0, c1, true
}
