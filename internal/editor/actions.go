package editor

import (
	"context"
	"fmt"

	"github.com/Garsondee/gridfind/internal/config"
	"github.com/Garsondee/gridfind/internal/gridmap"
)

// Perform runs the command bound to a keybinding action name.
func (c *Controller) Perform(ctx context.Context, action string) error {
	switch action {
	case config.ActionToggleMode:
		return c.ToggleMode()
	case config.ActionStep:
		_, err := c.Step()
		return err
	case config.ActionReset:
		return c.Reset()
	case config.ActionFinish:
		_, err := c.Finish()
		return err
	case config.ActionAutoStep:
		return c.ToggleAutoStep()
	case config.ActionSave:
		return c.Save(ctx)
	case config.ActionLoad:
		return c.Load(ctx)
	case config.ActionClearStorage:
		return c.ClearStorage(ctx)
	case config.ActionArmLink:
		return c.ArmLink()
	case config.ActionCancel:
		c.Cancel()
		return nil
	case config.ActionFitView:
		c.FitView(true)
		return nil
	case config.ActionCopyCell:
		return c.copyText(Action(action), c.HoverText())
	case config.ActionCopyMap:
		data, err := c.ExportMap()
		if err != nil {
			return c.fail(Action(action), err)
		}
		return c.copyText(Action(action), string(data))
	case config.ActionConfirmSize:
		return c.ConfirmSize()
	case config.ActionDoubleMap:
		return c.DoubleMap()
	case config.ActionScaleUp:
		return c.ScaleUp(2)
	case config.ActionAutoScale:
		return c.AutoScale(c.cfg.AutoScale.PixelsPerCell)
	case config.ActionAutoFill:
		return c.AutoFill()
	case config.ActionPickColor:
		return c.ArmPickColor()
	case config.ActionLoadMaze:
		return c.LoadMaze(c.cfg.Maze.Rows, c.cfg.Maze.Cols, c.cfg.Maze.Seed)
	case config.ActionNewBlank:
		return c.NewBlank(c.cfg.Blank.Rows, c.cfg.Blank.Cols)
	case config.ActionNextPreset:
		return c.NextPreset()
	case config.ActionChangeBackground:
		return c.ChangeBackground()
	case config.ActionResizeGrid:
		return c.ResizeGrid()
	case config.ActionToolInvalid:
		return c.SelectTool(gridmap.Invalid())
	case config.ActionToolNormal:
		return c.SelectTool(gridmap.Normal(1))
	case config.ActionToolWeighted:
		return c.SelectTool(gridmap.Normal(WeightedCost))
	case config.ActionToolOneWay:
		return c.SelectTool(gridmap.OneWay(gridmap.DirRight, 1))
	case config.ActionRotateTool:
		return c.RotateTool()
	case config.ActionToggleGrid:
		c.display.DrawGrid = !c.display.DrawGrid
		return nil
	case config.ActionToggleDebug:
		c.display.DrawPathDebug = !c.display.DrawPathDebug
		return nil
	case config.ActionToggleLinks:
		c.display.DrawLinks = !c.display.DrawLinks
		return nil
	}
	return c.fail(Action(action), fmt.Errorf("%w: unknown action %q", ErrInvalidState, action))
}

func (c *Controller) copyText(action Action, text string) error {
	if c.clipboard == nil || text == "" {
		return nil
	}
	if err := c.clipboard(text); err != nil {
		return c.fail(action, fmt.Errorf("clipboard: %w", err))
	}
	c.info("copied %d bytes", len(text))
	return nil
}
