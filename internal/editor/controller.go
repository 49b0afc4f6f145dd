// Package editor is the interactive core of gridfind: it owns the map, the
// mode state machine and the selection, and turns input events into edits or
// solver commands.
package editor

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tanema/gween/ease"

	"github.com/Garsondee/gridfind/internal/config"
	"github.com/Garsondee/gridfind/internal/finder"
	"github.com/Garsondee/gridfind/internal/gridmap"
	"github.com/Garsondee/gridfind/internal/imagedec"
	"github.com/Garsondee/gridfind/internal/pathfind"
	"github.com/Garsondee/gridfind/internal/presets"
	"github.com/Garsondee/gridfind/internal/render"
	"github.com/Garsondee/gridfind/internal/storage"
	"github.com/Garsondee/gridfind/internal/view"
)

// WeightedCost is the cost painted by the weighted tool.
const WeightedCost = 5

// maxCatchUp bounds how many auto-step ticks a single slow frame may run.
const maxCatchUp = 4

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithStore sets the persistence backend.
func WithStore(s storage.Store) Option {
	return func(c *Controller) { c.store = s }
}

// WithPresets sets the preset catalog.
func WithPresets(p *presets.Catalog) Option {
	return func(c *Controller) { c.presets = p }
}

// WithFactory replaces the solver factory.
func WithFactory(f finder.Factory) Option {
	return func(c *Controller) { c.factory = f }
}

// WithViewport sets the initial canvas size.
func WithViewport(w, h float64) Option {
	return func(c *Controller) { c.viewport = view.Rect{W: w, H: h} }
}

// WithClipboard sets the sink for the copy actions.
func WithClipboard(write func(string) error) Option {
	return func(c *Controller) { c.clipboard = write }
}

// WithClock replaces time.Now, used to seed mazes when no seed is configured.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller is the only owner of the mutable GridMap. The solver driver gets
// a private snapshot on every Reset.
type Controller struct {
	cfg       config.Config
	log       zerolog.Logger
	store     storage.Store
	presets   *presets.Catalog
	factory   finder.Factory
	clipboard func(string) error
	now       func() time.Time

	mode       Mode
	grid       *gridmap.GridMap
	background *imagedec.Raster
	view       *view.Transform
	viewport   view.Rect
	driver     *finder.Driver
	task       *finder.FinishTask
	sel        Selection
	notices    *Notices
	display    render.Options
	preset     string

	autoStep bool
	autoAcc  time.Duration
}

// New creates a controller in Setup mode.
func New(cfg config.Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg,
		log:      zerolog.Nop(),
		presets:  presets.Builtin(),
		now:      time.Now,
		mode:     Setup,
		viewport: view.Rect{W: 800, H: 600},
		sel:      newSelection(),
		notices:  NewNotices(),
		display: render.Options{
			BackgroundAlpha: cfg.Display.BackgroundAlpha,
			ForegroundAlpha: cfg.Display.ForegroundAlpha,
			DrawGrid:        cfg.Display.DrawGrid,
			DrawPathDebug:   cfg.Display.DrawPathDebug,
			DrawLinks:       cfg.Display.DrawLinks,
		},
		autoStep: cfg.AutoStep.Enabled,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.view = view.New(0, 0, view.Limits{
		MinZoom:     cfg.View.MinZoom,
		MaxZoom:     cfg.View.MaxZoom,
		InitialZoom: cfg.View.InitialZoom,
	})
	c.driver = finder.NewDriver(c.factory, c.log.With().Str("component", "finder").Logger())
	return c
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.mode }

// Map returns the current map, or nil before one is loaded. Callers must not
// mutate it.
func (c *Controller) Map() *gridmap.GridMap { return c.grid }

// Background returns the background raster, or nil.
func (c *Controller) Background() *imagedec.Raster { return c.background }

// View returns the live view transform.
func (c *Controller) View() *view.Transform { return c.view }

// Selection returns a copy of the selection state.
func (c *Controller) Selection() Selection { return c.sel }

// Notices returns the notice buffer.
func (c *Controller) Notices() *Notices { return c.notices }

// Display returns the layer toggles.
func (c *Controller) Display() render.Options { return c.display }

// SetDisplay replaces the layer toggles.
func (c *Controller) SetDisplay(o render.Options) { c.display = o }

// AutoStepEnabled reports whether auto-step is on.
func (c *Controller) AutoStepEnabled() bool { return c.autoStep }

// Finishing reports whether a Finish run is in flight.
func (c *Controller) Finishing() bool { return c.task != nil }

// Steps returns how many steps advanced the current search.
func (c *Controller) Steps() int { return c.driver.Steps() }

// Path returns the solver's current path.
func (c *Controller) Path() []gridmap.Point { return c.driver.Path() }

// Overlay returns the solver's debug overlay.
func (c *Controller) Overlay() pathfind.Overlay { return c.driver.Overlay() }

// CanStep reports whether Step and Finish are permitted.
func (c *Controller) CanStep() bool {
	return c.mode.IsFind() && c.sel.HasStart && c.sel.HasGoal
}

// SetViewport records the canvas size that fits are computed against.
func (c *Controller) SetViewport(w, h float64) {
	c.viewport = view.Rect{W: w, H: h}
}

// Viewport returns the canvas rectangle.
func (c *Controller) Viewport() view.Rect { return c.viewport }

// FitView frames the whole map, animated when animate is set and a fit
// duration is configured.
func (c *Controller) FitView(animate bool) {
	if c.grid == nil {
		return
	}
	if animate {
		c.view.AnimateFit(c.viewport, float32(c.cfg.View.FitDuration.Seconds()), ease.OutCubic)
		return
	}
	c.view.Fit(c.viewport)
}

// ZoomAt zooms by factor about a screen point.
func (c *Controller) ZoomAt(sx, sy, factor float64) { c.view.ZoomAt(sx, sy, factor) }

// Pan moves the view by a screen delta.
func (c *Controller) Pan(dx, dy float64) { c.view.Pan(dx, dy) }

// SetHover records the cell under the pointer.
func (c *Controller) SetHover(sx, sy float64) {
	p, ok := c.view.ScreenToGrid(sx, sy)
	c.sel.Hover, c.sel.HasHover = p, ok
}

// Update advances animations, an in-flight Finish and auto-step by dt.
func (c *Controller) Update(dt time.Duration) {
	c.view.Update(float32(dt.Seconds()))
	if c.task != nil {
		c.pumpFinish()
		return
	}
	if !c.autoStep || !Allowed(ActTick, c.mode) {
		c.autoAcc = 0
		return
	}
	interval := c.cfg.AutoStep.Interval
	if interval <= 0 {
		return
	}
	c.autoAcc += dt
	ticks := int(c.autoAcc / interval)
	c.autoAcc -= time.Duration(ticks) * interval
	for i := 0; i < min(ticks, maxCatchUp); i++ {
		if err := c.Tick(); err != nil || c.mode == FindDone {
			break
		}
	}
}

// Frame assembles everything the renderer needs for one frame.
func (c *Controller) Frame() render.Frame {
	f := render.Frame{
		Map:     c.grid,
		View:    c.view.State(),
		Options: c.display,
	}
	if c.background != nil {
		f.Background = c.background.Image()
	}
	if c.sel.HasHover {
		f.Hover = render.At(c.sel.Hover)
	}
	if c.mode.IsFind() {
		f.Overlay = c.driver.Overlay()
		if c.sel.HasStart {
			f.Start = render.At(c.sel.Start)
		}
		if c.sel.HasGoal {
			f.Goal = render.At(c.sel.Goal)
		}
	}
	if c.mode == EditPaintingCells {
		f.ShowNeighbors = c.sel.HasHover && !c.sel.Dragging()
		if src, ok := c.sel.Link.Source(); ok {
			f.LinkSource = render.At(src)
		}
		if a, b, ok := c.sel.Rect(); ok {
			f.SelectionA, f.SelectionB = render.At(a), render.At(b)
		}
	}
	return f
}

// HoverText describes the hovered cell. In Find mode it includes the search
// state of that cell.
func (c *Controller) HoverText() string {
	if c.grid == nil || !c.sel.HasHover {
		return ""
	}
	p := c.sel.Hover
	text := fmt.Sprintf("%s %s", p, c.grid.CellAt(p).Describe())
	if !c.mode.IsFind() || !c.driver.Ready() {
		return text
	}
	o := c.driver.Overlay()
	for _, v := range o.Visited {
		if v.Point == p {
			return fmt.Sprintf("%s visited g=%g", text, v.Cost)
		}
	}
	for _, f := range o.Frontier {
		if f == p {
			return text + " frontier"
		}
	}
	return text
}

// Status is a one-line summary of the session for the HUD.
func (c *Controller) Status() string {
	if c.grid == nil {
		return c.mode.String()
	}
	s := fmt.Sprintf("%s %dx%d zoom=%.1f", c.mode, c.grid.Rows(), c.grid.Cols(), c.view.Zoom())
	switch {
	case c.mode.IsFind():
		s += fmt.Sprintf(" steps=%d %s", c.driver.Steps(), c.driver.Overlay().Result)
		if c.autoStep {
			s += " auto"
		}
	case c.mode == EditPaintingCells:
		s += " tool=" + c.sel.Tool.Describe()
		if c.sel.Link.Armed() {
			s += " link:" + c.sel.Link.Phase().String()
		}
	}
	return s
}

// ExportMap serializes the current map.
func (c *Controller) ExportMap() ([]byte, error) {
	if c.grid == nil {
		return nil, fmt.Errorf("%w: no map loaded", ErrInvalidState)
	}
	return c.grid.Marshal()
}

// Cancel abandons a pending link capture, colour pick, drag, Finish run and
// auto-step. It never changes mode.
func (c *Controller) Cancel() {
	c.sel.Link.Cancel()
	c.sel.PickColor = false
	c.sel.EndDrag()
	c.cancelFinish()
	c.autoStep = false
}

// install replaces the map and background and resets every session-scoped
// piece of state.
func (c *Controller) install(m *gridmap.GridMap, bg *imagedec.Raster) {
	c.cancelFinish()
	c.driver.Discard()
	c.grid = m
	c.background = bg
	c.sel.reset()
	c.autoStep = c.cfg.AutoStep.Enabled
	c.autoAcc = 0
	c.view.SetGrid(m.Rows(), m.Cols())
	c.view.Reset()
	c.view.Fit(c.viewport)
}

// regrid follows a change of map dimensions.
func (c *Controller) regrid() {
	c.driver.Discard()
	c.sel.reset()
	c.view.SetGrid(c.grid.Rows(), c.grid.Cols())
	c.view.Fit(c.viewport)
}

func (c *Controller) requireMap() error {
	if c.grid == nil {
		return fmt.Errorf("%w: no map loaded", ErrInvalidState)
	}
	return nil
}

func (c *Controller) requireBackground() error {
	if c.background == nil {
		return gridmap.ErrNoBackground
	}
	return nil
}

func (c *Controller) cancelFinish() {
	if c.task != nil {
		c.task.Cancel()
		c.task = nil
	}
}

// run guards action, runs fn and turns any failure into a notice. The map and
// mode are left as they were when fn fails.
func (c *Controller) run(action Action, fn func() error) error {
	if err := c.guard(action); err != nil {
		return c.fail(action, err)
	}
	if err := fn(); err != nil {
		return c.fail(action, err)
	}
	return nil
}

func (c *Controller) fail(action Action, err error) error {
	level := LevelError
	if isWarning(err) {
		level = LevelWarn
	}
	c.notices.Add(level, fmt.Sprintf("%s: %v", action, err))
	c.log.Warn().Err(err).Str("action", string(action)).Stringer("mode", c.mode).Msg("action failed")
	return err
}

func (c *Controller) info(format string, args ...any) {
	c.notices.Add(LevelInfo, fmt.Sprintf(format, args...))
}

func isWarning(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrPrecondition) ||
		errors.Is(err, gridmap.ErrOutOfBounds) ||
		errors.Is(err, gridmap.ErrInvalidCell) ||
		errors.Is(err, gridmap.ErrNoBackground) ||
		errors.Is(err, finder.ErrInvalidEndpoints)
}
