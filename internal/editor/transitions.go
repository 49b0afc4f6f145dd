package editor

import (
	"fmt"
	"slices"

	"github.com/Garsondee/gridfind/internal/config"
)

// Action names a user command. Actions reachable from keybindings share the
// names used in the config file.
type Action string

const (
	ActBegin            Action = "begin"
	ActLoadBackground   Action = "load_background"
	ActLoadMaze         Action = config.ActionLoadMaze
	ActLoadPreset       Action = "load_preset"
	ActNextPreset       Action = config.ActionNextPreset
	ActNewBlank         Action = config.ActionNewBlank
	ActAutoScale        Action = config.ActionAutoScale
	ActSetSize          Action = "set_size"
	ActDoubleMap        Action = config.ActionDoubleMap
	ActScaleUp          Action = config.ActionScaleUp
	ActConfirmSize      Action = config.ActionConfirmSize
	ActChangeBackground Action = config.ActionChangeBackground
	ActResizeGrid       Action = config.ActionResizeGrid
	ActSelectTool       Action = "select_tool"
	ActPaint            Action = "paint"
	ActArmLink          Action = config.ActionArmLink
	ActLinkClick        Action = "link_click"
	ActAutoFill         Action = config.ActionAutoFill
	ActPickColor        Action = config.ActionPickColor
	ActSave             Action = config.ActionSave
	ActLoad             Action = config.ActionLoad
	ActClearStorage     Action = config.ActionClearStorage
	ActToggleMode       Action = config.ActionToggleMode
	ActSetStart         Action = "set_start"
	ActSetGoal          Action = "set_goal"
	ActReset            Action = config.ActionReset
	ActStep             Action = config.ActionStep
	ActFinish           Action = config.ActionFinish
	ActAutoStep         Action = config.ActionAutoStep
	ActTick             Action = "tick"
)

// transition lists the modes an action may start from and the modes it may
// end in. An empty to set means the mode is left unchanged.
type transition struct {
	from []Mode
	to   []Mode
}

// transitions is the single source of truth for which action is legal where.
// Handlers consult it through guard before doing anything and through enter
// when they change mode.
var transitions = map[Action]transition{
	ActBegin:            {from: []Mode{Setup}, to: []Mode{EditChoosingBackground, EditPaintingCells}},
	ActLoadBackground:   {from: []Mode{EditChoosingBackground}, to: []Mode{EditSizingGrid}},
	ActLoadMaze:         {from: []Mode{EditChoosingBackground}, to: []Mode{EditSizingGrid}},
	ActLoadPreset:       {from: []Mode{EditChoosingBackground}, to: []Mode{EditSizingGrid}},
	ActNextPreset:       {from: []Mode{EditChoosingBackground}, to: []Mode{EditSizingGrid}},
	ActNewBlank:         {from: []Mode{EditChoosingBackground}, to: []Mode{EditSizingGrid}},
	ActAutoScale:        {from: []Mode{EditSizingGrid}},
	ActSetSize:          {from: []Mode{EditSizingGrid}},
	ActDoubleMap:        {from: []Mode{EditSizingGrid}},
	ActScaleUp:          {from: []Mode{EditSizingGrid}},
	ActConfirmSize:      {from: []Mode{EditSizingGrid}, to: []Mode{EditPaintingCells}},
	ActChangeBackground: {from: []Mode{EditSizingGrid, EditPaintingCells}, to: []Mode{EditChoosingBackground}},
	ActResizeGrid:       {from: []Mode{EditPaintingCells}, to: []Mode{EditSizingGrid}},
	ActSelectTool:       {from: []Mode{EditPaintingCells}},
	ActPaint:            {from: []Mode{EditPaintingCells}},
	ActArmLink:          {from: []Mode{EditPaintingCells}},
	ActLinkClick:        {from: []Mode{EditPaintingCells}},
	ActAutoFill:         {from: []Mode{EditPaintingCells}},
	ActPickColor:        {from: []Mode{EditPaintingCells}},
	ActSave:             {from: []Mode{EditPaintingCells}},
	ActLoad:             {from: []Mode{EditPaintingCells}},
	ActClearStorage:     {from: allModes},
	ActToggleMode:       {from: append(slices.Clone(editModes), findModes...), to: []Mode{FindIdle, EditPaintingCells}},
	ActSetStart:         {from: findModes, to: []Mode{FindIdle}},
	ActSetGoal:          {from: findModes, to: []Mode{FindIdle}},
	ActReset:            {from: findModes, to: []Mode{FindIdle}},
	ActStep:             {from: findModes, to: []Mode{FindStepping, FindDone}},
	ActFinish:           {from: []Mode{FindIdle, FindStepping}, to: []Mode{FindStepping, FindDone}},
	ActAutoStep:         {from: findModes},
	ActTick:             {from: []Mode{FindIdle, FindStepping}, to: []Mode{FindStepping, FindDone}},
}

// Allowed reports whether action is legal in mode m.
func Allowed(action Action, m Mode) bool {
	t, ok := transitions[action]
	return ok && slices.Contains(t.from, m)
}

// guard rejects action unless the current mode allows it.
func (c *Controller) guard(action Action) error {
	if _, ok := transitions[action]; !ok {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidState, action)
	}
	if !Allowed(action, c.mode) {
		return fmt.Errorf("%w: %s not allowed in %s", ErrInvalidState, action, c.mode)
	}
	return nil
}

// enter moves to next on behalf of action. Leaving a mode always cancels a
// pending link capture and any in-flight Finish.
func (c *Controller) enter(action Action, next Mode) error {
	t := transitions[action]
	if next != c.mode && !slices.Contains(t.to, next) {
		return fmt.Errorf("%w: %s cannot move %s to %s", ErrInvalidState, action, c.mode, next)
	}
	if next == c.mode {
		return nil
	}
	prev := c.mode
	c.mode = next
	c.sel.Link.Cancel()
	c.sel.EndDrag()
	c.cancelFinish()
	c.log.Debug().
		Str("action", string(action)).
		Stringer("from", prev).
		Stringer("to", next).
		Msg("mode transition")
	return nil
}
