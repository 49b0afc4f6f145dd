package editor

import (
	"context"
	"math"

	"github.com/Garsondee/gridfind/internal/gridmap"
)

// EventKind classifies host input.
type EventKind uint8

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	Wheel
	KeyPress
)

// Button is a pointer button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Event is one input event from the host, in screen pixels.
type Event struct {
	Kind   EventKind
	X, Y   float64
	Button Button
	Ctrl   bool
	Shift  bool
	// WheelY is the vertical wheel delta in notches; positive zooms in.
	WheelY float64
	// Key is an ebiten key name such as "Space" or "Digit1".
	Key string
}

type (
	// interceptor handles an event the same way in every mode. It returns
	// false to let the event through to the mode table.
	interceptor func(c *Controller, ev Event) bool
	handler     func(c *Controller, ctx context.Context, ev Event) error
)

// anyMode holds the mode-independent gestures: Ctrl-drag pan and wheel zoom.
var anyMode = map[EventKind][]interceptor{
	PointerDown: {beginPan},
	PointerMove: {trackHover, continuePan},
	PointerUp:   {endPan},
	Wheel:       {wheelZoom},
}

// dispatch maps (mode kind, event kind) to a handler.
var dispatch = map[Kind]map[EventKind]handler{
	KindSetup: {
		KeyPress: handleKey,
	},
	KindEdit: {
		PointerDown: editPointerDown,
		PointerMove: editPointerMove,
		PointerUp:   editPointerUp,
		KeyPress:    handleKey,
	},
	KindFind: {
		PointerDown: findPointerDown,
		KeyPress:    handleKey,
	},
}

// Handle routes ev through the mode-independent gestures, then the dispatch
// table. Errors have already been recorded as notices when returned.
func (c *Controller) Handle(ctx context.Context, ev Event) error {
	for _, ic := range anyMode[ev.Kind] {
		if ic(c, ev) {
			return nil
		}
	}
	h, ok := dispatch[c.mode.Kind][ev.Kind]
	if !ok {
		return nil
	}
	return h(c, ctx, ev)
}

func beginPan(c *Controller, ev Event) bool {
	if !ev.Ctrl && ev.Button != ButtonMiddle {
		return false
	}
	c.sel.drag = dragPan
	c.sel.lastX, c.sel.lastY = ev.X, ev.Y
	return true
}

func trackHover(c *Controller, ev Event) bool {
	c.SetHover(ev.X, ev.Y)
	return false
}

func continuePan(c *Controller, ev Event) bool {
	if c.sel.drag != dragPan {
		return false
	}
	c.view.Pan(ev.X-c.sel.lastX, ev.Y-c.sel.lastY)
	c.sel.lastX, c.sel.lastY = ev.X, ev.Y
	c.SetHover(ev.X, ev.Y)
	return true
}

func endPan(c *Controller, ev Event) bool {
	if c.sel.drag != dragPan {
		return false
	}
	c.sel.EndDrag()
	return true
}

func wheelZoom(c *Controller, ev Event) bool {
	if ev.WheelY == 0 {
		return true
	}
	step := c.cfg.View.ZoomStep
	if step <= 1 {
		step = 1.1
	}
	c.view.ZoomAt(ev.X, ev.Y, math.Pow(step, ev.WheelY))
	c.SetHover(ev.X, ev.Y)
	return true
}

func handleKey(c *Controller, ctx context.Context, ev Event) error {
	action, ok := c.cfg.ActionForKey(ev.Key)
	if !ok {
		return nil
	}
	return c.Perform(ctx, action)
}

func editPointerDown(c *Controller, _ context.Context, ev Event) error {
	if c.mode != EditPaintingCells {
		return nil
	}
	p := c.view.State().CellAt(ev.X, ev.Y)
	switch {
	case c.sel.PickColor:
		return c.PickColorAt(ev.X, ev.Y)
	case c.sel.Link.Armed():
		return c.LinkClick(p)
	case ev.Shift:
		if !c.grid.InBounds(p) {
			return nil
		}
		c.sel.drag = dragRect
		c.sel.rectA, c.sel.rectB = p, p
		return nil
	}
	c.sel.drag = dragStroke
	c.sel.strokeCell = c.sel.Tool
	if ev.Button == ButtonRight {
		c.sel.strokeCell = gridmap.Invalid()
	}
	c.sel.lastPainted = p
	return c.paint(p, c.sel.strokeCell)
}

func editPointerMove(c *Controller, _ context.Context, ev Event) error {
	p := c.view.State().CellAt(ev.X, ev.Y)
	switch c.sel.drag {
	case dragStroke:
		if p == c.sel.lastPainted {
			return nil
		}
		from := c.sel.lastPainted
		c.sel.lastPainted = p
		return c.paintLine(from, p, c.sel.strokeCell)
	case dragRect:
		c.sel.rectB = p
	}
	return nil
}

func editPointerUp(c *Controller, _ context.Context, _ Event) error {
	defer c.sel.EndDrag()
	if c.sel.drag != dragRect {
		return nil
	}
	return c.FillRect(c.sel.rectA, c.sel.rectB)
}

func findPointerDown(c *Controller, _ context.Context, ev Event) error {
	p, ok := c.view.ScreenToGrid(ev.X, ev.Y)
	if !ok {
		return nil
	}
	if ev.Shift || ev.Button == ButtonRight {
		return c.SetGoal(p)
	}
	return c.SetStart(p)
}
