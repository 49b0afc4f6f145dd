package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

var backends = []string{"file", "sqlite", "memory"}

// Validate checks every section and returns all field errors at once.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		c.validateView(),
		criterio.Run("display.background_alpha", c.Display.BackgroundAlpha, unitInterval),
		criterio.Run("display.foreground_alpha", c.Display.ForegroundAlpha, unitInterval),
		c.validateAutoStep(),
		criterio.Run("finish.slice_size", c.Finish.SliceSize, positiveInt),
		criterio.Run("auto_fill.threshold", c.AutoFill.Threshold, lumaRange),
		criterio.Run("auto_fill.color_tolerance", c.AutoFill.ColorTolerance, positiveFloat),
		criterio.Run("auto_scale.pixels_per_cell", c.AutoScale.PixelsPerCell, positiveFloat),
		c.validateMaze(),
		c.validateBlank(),
		criterio.Run("storage.backend", c.Storage.Backend, knownBackend),
		criterio.Run("presets.glob", c.Presets.Glob, validGlob),
		c.validateKeybindings(),
	)
}

func (c *Config) validateView() error {
	var errs criterio.FieldErrorsBuilder
	v := c.View
	if v.MinZoom <= 0 {
		errs = errs.Append("view.min_zoom", fmt.Errorf("must be positive, got %g", v.MinZoom))
	}
	if v.MaxZoom < v.MinZoom {
		errs = errs.Append("view.max_zoom", fmt.Errorf("must be at least min_zoom (%g), got %g", v.MinZoom, v.MaxZoom))
	}
	if v.InitialZoom < v.MinZoom || v.InitialZoom > v.MaxZoom {
		errs = errs.Append("view.initial_zoom", fmt.Errorf("must be within [%g, %g], got %g", v.MinZoom, v.MaxZoom, v.InitialZoom))
	}
	if v.ZoomStep <= 1 {
		errs = errs.Append("view.zoom_step", fmt.Errorf("must be greater than 1, got %g", v.ZoomStep))
	}
	if v.FitDuration < 0 {
		errs = errs.Append("view.fit_duration", errors.New("must not be negative"))
	}
	return errs.ToError()
}

func (c *Config) validateAutoStep() error {
	var errs criterio.FieldErrorsBuilder
	if c.AutoStep.Interval <= 0 {
		errs = errs.Append("auto_step.interval", fmt.Errorf("must be positive, got %s", c.AutoStep.Interval))
	}
	if c.AutoStep.StepsPerTick < 1 {
		errs = errs.Append("auto_step.steps_per_tick", fmt.Errorf("must be at least 1, got %d", c.AutoStep.StepsPerTick))
	}
	return errs.ToError()
}

func (c *Config) validateMaze() error {
	var errs criterio.FieldErrorsBuilder
	if c.Maze.Rows < 3 {
		errs = errs.Append("maze.rows", fmt.Errorf("must be at least 3, got %d", c.Maze.Rows))
	}
	if c.Maze.Cols < 3 {
		errs = errs.Append("maze.cols", fmt.Errorf("must be at least 3, got %d", c.Maze.Cols))
	}
	if c.Maze.PixelsPerCell < 1 {
		errs = errs.Append("maze.pixels_per_cell", fmt.Errorf("must be at least 1, got %d", c.Maze.PixelsPerCell))
	}
	return errs.ToError()
}

func (c *Config) validateBlank() error {
	var errs criterio.FieldErrorsBuilder
	if c.Blank.Rows < 1 {
		errs = errs.Append("blank.rows", fmt.Errorf("must be at least 1, got %d", c.Blank.Rows))
	}
	if c.Blank.Cols < 1 {
		errs = errs.Append("blank.cols", fmt.Errorf("must be at least 1, got %d", c.Blank.Cols))
	}
	return errs.ToError()
}

func (c *Config) validateKeybindings() error {
	var errs criterio.FieldErrorsBuilder
	for key, action := range c.Keybindings {
		field := fmt.Sprintf("keybindings[%q]", key)
		if strings.TrimSpace(key) == "" {
			errs = errs.Append(field, errors.New("key name cannot be empty"))
			continue
		}
		if !slices.Contains(KnownActions, action) {
			errs = errs.Append(field, fmt.Errorf("unknown action %q", action))
		}
	}
	return errs.ToError()
}

func unitInterval(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("must be within [0, 1], got %g", v)
	}
	return nil
}

func lumaRange(v float64) error {
	if v < 0 || v > 255 {
		return fmt.Errorf("must be within [0, 255], got %g", v)
	}
	return nil
}

func positiveFloat(v float64) error {
	if v <= 0 {
		return fmt.Errorf("must be positive, got %g", v)
	}
	return nil
}

func positiveInt(v int) error {
	if v < 1 {
		return fmt.Errorf("must be at least 1, got %d", v)
	}
	return nil
}

func knownBackend(v string) error {
	if !slices.Contains(backends, v) {
		return fmt.Errorf("must be one of %s, got %q", strings.Join(backends, ", "), v)
	}
	return nil
}

func validGlob(v string) error {
	if v == "" {
		return errors.New("cannot be empty")
	}
	if !doublestar.ValidatePattern(v) {
		return fmt.Errorf("invalid pattern %q", v)
	}
	return nil
}
