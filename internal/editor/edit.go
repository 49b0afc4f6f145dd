package editor

import (
	"fmt"
	"math"

	"github.com/Garsondee/gridfind/internal/gridmap"
)

// clockwise maps a direction to the next one when rotating the tool.
var clockwise = map[gridmap.Direction]gridmap.Direction{
	gridmap.DirUp:    gridmap.DirRight,
	gridmap.DirRight: gridmap.DirDown,
	gridmap.DirDown:  gridmap.DirLeft,
	gridmap.DirLeft:  gridmap.DirUp,
}

// SelectTool arms the cell painted by subsequent clicks. Tools never carry a
// one-way target; targets are only set by link capture.
func (c *Controller) SelectTool(cell gridmap.Cell) error {
	return c.run(ActSelectTool, func() error {
		if cell.Kind != gridmap.KindInvalid && !(cell.Cost > 0) {
			return fmt.Errorf("%w: tool cost must be positive, got %g", gridmap.ErrInvalidCell, cell.Cost)
		}
		c.sel.Tool = cell.Unlinked()
		return nil
	})
}

// RotateTool turns a one-way tool clockwise. Other tools are left alone.
func (c *Controller) RotateTool() error {
	if c.sel.Tool.Kind != gridmap.KindOneWay {
		return nil
	}
	t := c.sel.Tool
	t.Direction = clockwise[t.Direction]
	return c.SelectTool(t)
}

// PaintAt paints the armed tool at p. Out-of-bounds points are ignored.
func (c *Controller) PaintAt(p gridmap.Point) error {
	return c.paint(p, c.sel.Tool)
}

func (c *Controller) paint(p gridmap.Point, cell gridmap.Cell) error {
	return c.run(ActPaint, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		if !c.grid.InBounds(p) {
			return nil
		}
		return c.grid.SetCell(p, cell)
	})
}

// paintLine paints every cell on the line from a to b, so fast strokes leave
// no gaps.
func (c *Controller) paintLine(a, b gridmap.Point, cell gridmap.Cell) error {
	dr, dc := abs(b.Row-a.Row), abs(b.Col-a.Col)
	sr, sc := sign(b.Row-a.Row), sign(b.Col-a.Col)
	err := dc - dr
	p := a
	for {
		if e := c.paint(p, cell); e != nil {
			return e
		}
		if p == b {
			return nil
		}
		e2 := 2 * err
		if e2 > -dr {
			err -= dr
			p.Col += sc
		}
		if e2 < dc {
			err += dc
			p.Row += sr
		}
	}
}

// FillRect paints the armed tool over the rectangle spanned by a and b,
// clipped to the map.
func (c *Controller) FillRect(a, b gridmap.Point) error {
	return c.run(ActPaint, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		return c.grid.FillRect(a, b, c.sel.Tool)
	})
}

// ArmLink starts a two-click target capture.
func (c *Controller) ArmLink() error {
	return c.run(ActArmLink, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		c.sel.PickColor = false
		c.sel.Link.Arm()
		c.info("link: click a one-way cell")
		return nil
	})
}

// LinkClick feeds a click to the armed capture. The first click must hit a
// one-way cell; the second sets that cell's target, replacing any previous
// one. A rejected click leaves the capture armed in the same phase.
func (c *Controller) LinkClick(p gridmap.Point) error {
	return c.run(ActLinkClick, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		if !c.sel.Link.Armed() {
			return fmt.Errorf("%w: link capture is not armed", ErrInvalidState)
		}
		if !c.grid.InBounds(p) {
			return fmt.Errorf("%w: %s", gridmap.ErrOutOfBounds, p)
		}
		switch c.sel.Link.Phase() {
		case LinkAwaitingSource:
			if c.grid.CellAt(p).Kind != gridmap.KindOneWay {
				return fmt.Errorf("%w: link source %s is not a one-way cell", gridmap.ErrInvalidCell, p)
			}
			c.sel.Link.awaitTarget(p)
			c.info("link: click the target for %s", p)
			return nil
		case LinkAwaitingTarget:
			src, _ := c.sel.Link.Source()
			if p == src {
				return fmt.Errorf("%w: link target unchanged (%s is the source)", gridmap.ErrInvalidCell, p)
			}
			cell := c.grid.CellAt(src)
			if cell.Kind != gridmap.KindOneWay {
				c.sel.Link.Arm()
				return fmt.Errorf("%w: link source %s is no longer one-way", gridmap.ErrInvalidCell, src)
			}
			if err := c.grid.SetCell(src, cell.WithTarget(p)); err != nil {
				return err
			}
			c.sel.Link.Cancel()
			c.info("linked %s -> %s", src, p)
			return nil
		}
		return nil
	})
}

// AutoFill derives every cell from the background with the luminance rule.
func (c *Controller) AutoFill() error {
	return c.run(ActAutoFill, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		if err := c.requireBackground(); err != nil {
			return err
		}
		rule := gridmap.LuminanceThreshold(c.cfg.AutoFill.Threshold)
		return c.grid.AutoFill(c.background.Image(), rule)
	})
}

// ArmPickColor makes the next click choose the background colour that means
// free.
func (c *Controller) ArmPickColor() error {
	return c.run(ActPickColor, func() error {
		if err := c.requireBackground(); err != nil {
			return err
		}
		c.sel.Link.Cancel()
		c.sel.PickColor = true
		c.info("auto fill: click a free colour")
		return nil
	})
}

// PickColorAt samples the background under screen point (sx, sy) and fills
// every cell whose colour is within tolerance of it.
func (c *Controller) PickColorAt(sx, sy float64) error {
	return c.run(ActAutoFill, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		if err := c.requireBackground(); err != nil {
			return err
		}
		wx, wy := c.view.State().ScreenToWorld(sx, sy)
		ppc := c.grid.PixelsPerCell()
		px, py := int(math.Floor(wx*ppc)), int(math.Floor(wy*ppc))
		if px < 0 || py < 0 || px >= c.background.Width() || py >= c.background.Height() {
			return fmt.Errorf("%w: pixel (%d,%d) outside background", gridmap.ErrOutOfBounds, px, py)
		}
		free := c.background.At(px, py)
		rule := gridmap.ColorMatch(free, c.cfg.AutoFill.ColorTolerance)
		if err := c.grid.AutoFill(c.background.Image(), rule); err != nil {
			return err
		}
		c.sel.PickColor = false
		return nil
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
