package view

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/Garsondee/gridfind/internal/gridmap"
)

// Limits bounds the zoom of a Transform.
type Limits struct {
	MinZoom     float64
	MaxZoom     float64
	InitialZoom float64
}

// DefaultLimits matches the editor defaults: 10 px cells, zoomable from 1 px
// to 200 px.
var DefaultLimits = Limits{MinZoom: 1, MaxZoom: 200, InitialZoom: 10}

// fitAnim holds the tweens of an animated fit.
type fitAnim struct {
	x, y, zoom *gween.Tween
}

// Transform is the live pan/zoom state for a rows×cols grid.
type Transform struct {
	state      State
	rows, cols int
	limits     Limits
	anim       *fitAnim
}

// New creates a transform for a rows×cols grid at the initial zoom with the
// origin at (0, 0).
func New(rows, cols int, limits Limits) *Transform {
	if limits.MinZoom <= 0 {
		limits.MinZoom = DefaultLimits.MinZoom
	}
	if limits.MaxZoom < limits.MinZoom {
		limits.MaxZoom = limits.MinZoom
	}
	t := &Transform{rows: rows, cols: cols, limits: limits}
	t.Reset()
	return t
}

// Reset returns to the initial zoom with the origin at (0, 0) and stops any
// running animation.
func (t *Transform) Reset() {
	t.anim = nil
	t.state = State{Zoom: t.clamp(t.limits.InitialZoom)}
}

// SetGrid changes the grid dimensions used for bounds checks.
func (t *Transform) SetGrid(rows, cols int) {
	t.rows, t.cols = rows, cols
}

// State returns a snapshot for rendering.
func (t *Transform) State() State { return t.state }

// Zoom returns the current cell size in pixels.
func (t *Transform) Zoom() float64 { return t.state.Zoom }

// Limits returns the zoom bounds.
func (t *Transform) Limits() Limits { return t.limits }

func (t *Transform) clamp(z float64) float64 {
	if math.IsNaN(z) {
		return t.limits.MinZoom
	}
	return math.Max(t.limits.MinZoom, math.Min(t.limits.MaxZoom, z))
}

// ScreenToGrid resolves a screen pixel to a cell. ok is false outside the grid.
func (t *Transform) ScreenToGrid(sx, sy float64) (gridmap.Point, bool) {
	p := t.state.CellAt(sx, sy)
	if p.Row < 0 || p.Row >= t.rows || p.Col < 0 || p.Col >= t.cols {
		return gridmap.Point{}, false
	}
	return p, true
}

// GridToScreenRect returns the screen rectangle covered by p.
func (t *Transform) GridToScreenRect(p gridmap.Point) Rect {
	return t.state.CellRect(p)
}

// Pan translates the origin by (dx, dy) screen pixels.
func (t *Transform) Pan(dx, dy float64) {
	t.anim = nil
	t.state.OriginX += dx
	t.state.OriginY += dy
}

// ZoomAt scales the zoom by factor, clamped to the limits, keeping the world
// point under (sx, sy) fixed on screen. Non-positive factors are ignored.
func (t *Transform) ZoomAt(sx, sy, factor float64) {
	if !(factor > 0) {
		return
	}
	t.anim = nil
	wx, wy := t.state.ScreenToWorld(sx, sy)
	t.state.Zoom = t.clamp(t.state.Zoom * factor)
	t.state.OriginX = sx - wx*t.state.Zoom
	t.state.OriginY = sy - wy*t.state.Zoom
}

// FitState returns the state that centres the whole grid inside viewport at
// the largest zoom that fits, clamped to the limits.
func (t *Transform) FitState(viewport Rect) State {
	if t.rows <= 0 || t.cols <= 0 || viewport.W <= 0 || viewport.H <= 0 {
		return t.state
	}
	z := t.clamp(math.Min(viewport.W/float64(t.cols), viewport.H/float64(t.rows)))
	return State{
		OriginX: viewport.X + (viewport.W-float64(t.cols)*z)/2,
		OriginY: viewport.Y + (viewport.H-float64(t.rows)*z)/2,
		Zoom:    z,
	}
}

// Fit jumps straight to FitState.
func (t *Transform) Fit(viewport Rect) {
	t.anim = nil
	t.state = t.FitState(viewport)
}

// AnimateFit tweens towards FitState over duration seconds. Pan and ZoomAt
// cancel the animation.
func (t *Transform) AnimateFit(viewport Rect, duration float32, fn ease.TweenFunc) {
	if duration <= 0 {
		t.Fit(viewport)
		return
	}
	if fn == nil {
		fn = ease.OutCubic
	}
	to := t.FitState(viewport)
	from := t.state
	t.anim = &fitAnim{
		x:    gween.New(float32(from.OriginX), float32(to.OriginX), duration, fn),
		y:    gween.New(float32(from.OriginY), float32(to.OriginY), duration, fn),
		zoom: gween.New(float32(from.Zoom), float32(to.Zoom), duration, fn),
	}
}

// Animating reports whether a fit animation is in progress.
func (t *Transform) Animating() bool { return t.anim != nil }

// Update advances a running animation by dt seconds.
func (t *Transform) Update(dt float32) {
	if t.anim == nil {
		return
	}
	x, doneX := t.anim.x.Update(dt)
	y, doneY := t.anim.y.Update(dt)
	z, doneZ := t.anim.zoom.Update(dt)
	t.state = State{OriginX: float64(x), OriginY: float64(y), Zoom: t.clamp(float64(z))}
	if doneX && doneY && doneZ {
		t.anim = nil
	}
}
