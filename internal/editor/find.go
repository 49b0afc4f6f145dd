package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/Garsondee/gridfind/internal/finder"
	"github.com/Garsondee/gridfind/internal/gridmap"
	"github.com/Garsondee/gridfind/internal/pathfind"
)

// ToggleMode switches between Edit and Find. Entering Find resets the solver
// when both endpoints are already set; leaving it discards the solver.
func (c *Controller) ToggleMode() error {
	return c.run(ActToggleMode, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		if c.mode.IsFind() {
			c.driver.Discard()
			return c.enter(ActToggleMode, EditPaintingCells)
		}
		if err := c.enter(ActToggleMode, FindIdle); err != nil {
			return err
		}
		if c.sel.HasStart && c.sel.HasGoal {
			return c.resetDriver()
		}
		return nil
	})
}

// SetStart records the start cell.
func (c *Controller) SetStart(p gridmap.Point) error {
	return c.run(ActSetStart, func() error {
		if err := c.checkEndpoint(p); err != nil {
			return err
		}
		c.sel.Start, c.sel.HasStart = p, true
		return c.endpointsChanged(ActSetStart)
	})
}

// SetGoal records the goal cell.
func (c *Controller) SetGoal(p gridmap.Point) error {
	return c.run(ActSetGoal, func() error {
		if err := c.checkEndpoint(p); err != nil {
			return err
		}
		c.sel.Goal, c.sel.HasGoal = p, true
		return c.endpointsChanged(ActSetGoal)
	})
}

func (c *Controller) checkEndpoint(p gridmap.Point) error {
	if err := c.requireMap(); err != nil {
		return err
	}
	if !c.grid.InBounds(p) {
		return fmt.Errorf("%w: %s", gridmap.ErrOutOfBounds, p)
	}
	if !c.grid.CellAt(p).Passable() {
		return fmt.Errorf("%w: %s is an invalid cell", finder.ErrInvalidEndpoints, p)
	}
	return nil
}

func (c *Controller) endpointsChanged(action Action) error {
	c.driver.Discard()
	if err := c.enter(action, FindIdle); err != nil {
		return err
	}
	c.cancelFinish()
	if c.sel.HasStart && c.sel.HasGoal {
		return c.resetDriver()
	}
	return nil
}

// Reset discards the search and, with both endpoints set, starts a new one.
func (c *Controller) Reset() error {
	return c.run(ActReset, func() error {
		c.driver.Discard()
		c.cancelFinish()
		if err := c.enter(ActReset, FindIdle); err != nil {
			return err
		}
		if c.sel.HasStart && c.sel.HasGoal {
			return c.resetDriver()
		}
		return nil
	})
}

// resetDriver starts a search from the selected endpoints. Endpoints that no
// longer fit the map are cleared and the mode falls back to Find(Idle).
func (c *Controller) resetDriver() error {
	err := c.driver.Reset(c.grid, c.sel.Start, c.sel.Goal)
	if errors.Is(err, finder.ErrInvalidEndpoints) {
		c.sel.ClearEndpoints()
		c.autoStep = false
		_ = c.enter(ActReset, FindIdle)
	}
	return err
}

// ensureReady checks the step precondition and resets the solver when it is
// missing or the map changed since the last Reset.
func (c *Controller) ensureReady() error {
	if !c.CanStep() {
		return fmt.Errorf("%w: select a start and a goal first", ErrPrecondition)
	}
	if !c.driver.Ready() || c.driver.Stale(c.grid.Revision()) {
		c.log.Debug().Msg("solver snapshot missing or stale, resetting")
		return c.resetDriver()
	}
	return nil
}

// Step advances the search once. Once the search is done further steps are
// no-ops returning {Advanced: false, Done: true}.
func (c *Controller) Step() (finder.StepResult, error) {
	var res finder.StepResult
	err := c.run(ActStep, func() error {
		if err := c.ensureReady(); err != nil {
			return err
		}
		c.cancelFinish()
		r, err := c.driver.Step()
		if err != nil {
			return err
		}
		res = r
		next := FindStepping
		if r.Done {
			next = FindDone
		}
		if err := c.enter(ActStep, next); err != nil {
			return err
		}
		if r.Done && r.Advanced {
			c.reportResult()
		}
		return nil
	})
	return res, err
}

// Finish starts a sliced run to completion. The host advances it one slice
// per frame through Update; any mode change or Reset cancels it.
func (c *Controller) Finish() (*finder.FinishTask, error) {
	var task *finder.FinishTask
	err := c.run(ActFinish, func() error {
		if err := c.ensureReady(); err != nil {
			return err
		}
		if err := c.enter(ActFinish, FindStepping); err != nil {
			return err
		}
		t, err := c.driver.Finish(c.cfg.Finish.SliceSize)
		if err != nil {
			return err
		}
		c.task = t
		task = t
		return nil
	})
	return task, err
}

// FinishNow runs Finish to completion on the calling goroutine, yielding
// between slices. It is used by the headless tools and tests.
func (c *Controller) FinishNow(ctx context.Context, yield func()) error {
	task, err := c.Finish()
	if err != nil {
		return err
	}
	if err := task.Run(ctx, yield); err != nil {
		c.task = nil
		return c.fail(ActFinish, err)
	}
	c.settleFinish(task)
	return nil
}

// pumpFinish advances the in-flight Finish by one slice.
func (c *Controller) pumpFinish() {
	task := c.task
	if task.Advance() {
		return
	}
	c.settleFinish(task)
}

func (c *Controller) settleFinish(task *finder.FinishTask) {
	if c.task == task {
		c.task = nil
	}
	switch {
	case task.Cancelled():
		return
	case task.Err() != nil:
		c.fail(ActFinish, task.Err())
		return
	}
	if err := c.enter(ActFinish, FindDone); err != nil {
		c.fail(ActFinish, err)
		return
	}
	c.reportResult()
}

// SetAutoStep turns auto-step on or off. Turning it on needs both endpoints.
func (c *Controller) SetAutoStep(on bool) error {
	return c.run(ActAutoStep, func() error {
		if on && !c.CanStep() {
			return fmt.Errorf("%w: select a start and a goal first", ErrPrecondition)
		}
		c.autoStep = on
		c.autoAcc = 0
		return nil
	})
}

// ToggleAutoStep flips auto-step.
func (c *Controller) ToggleAutoStep() error {
	return c.SetAutoStep(!c.autoStep)
}

// Tick runs one auto-step tick of steps_per_tick steps. It is quiet when
// stepping is not yet possible.
func (c *Controller) Tick() error {
	if !c.CanStep() {
		return nil
	}
	return c.run(ActTick, func() error {
		if err := c.ensureReady(); err != nil {
			return err
		}
		for i := 0; i < max(1, c.cfg.AutoStep.StepsPerTick); i++ {
			r, err := c.driver.Step()
			if err != nil {
				c.autoStep = false
				return err
			}
			if r.Done {
				c.autoStep = false
				if err := c.enter(ActTick, FindDone); err != nil {
					return err
				}
				c.reportResult()
				return nil
			}
		}
		return c.enter(ActTick, FindStepping)
	})
}

func (c *Controller) reportResult() {
	o := c.driver.Overlay()
	switch o.Result {
	case pathfind.Found:
		c.info("path found: %d cells, cost %g, %d steps", len(o.Path), o.Cost, c.driver.Steps())
	case pathfind.NoPath:
		c.notices.Add(LevelWarn, fmt.Sprintf("no path after %d steps", c.driver.Steps()))
	}
}
