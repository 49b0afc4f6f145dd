package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	cfg, err := Load(filepath.Join(dataDir, "nope.yaml"), dataDir)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.View, cfg.View)
	assert.Equal(t, def.Display, cfg.Display)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, dataDir, cfg.Storage.Dir, "storage dir defaults to the data dir")
	assert.Equal(t, filepath.Join(dataDir, "presets"), cfg.Presets.Dir)

	action, ok := cfg.ActionForKey("Space")
	require.True(t, ok)
	assert.Equal(t, ActionStep, action)
}

func TestLoad_OverridesKeepUnsetDefaults(t *testing.T) {
	path := writeConfig(t, `
view:
  max_zoom: 50
display:
  draw_grid: false
auto_step:
  interval: 250ms
storage:
  backend: sqlite
keybindings:
  space: finish
  X: step
`)
	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.InDelta(t, 50.0, cfg.View.MaxZoom, 1e-9)
	assert.InDelta(t, 1.0, cfg.View.MinZoom, 1e-9, "unset field keeps default")
	assert.False(t, cfg.Display.DrawGrid)
	assert.True(t, cfg.Display.DrawLinks)
	assert.Equal(t, 250*time.Millisecond, cfg.AutoStep.Interval)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)

	action, _ := cfg.ActionForKey("Space")
	assert.Equal(t, ActionFinish, action, "user binding overrides default")
	action, _ = cfg.ActionForKey("x")
	assert.Equal(t, ActionStep, action)
	action, _ = cfg.ActionForKey("R")
	assert.Equal(t, ActionReset, action, "defaults survive the merge")
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "view: [not, a, map")
	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"min zoom", func(c *Config) { c.View.MinZoom = 0 }, "view.min_zoom"},
		{"max below min", func(c *Config) { c.View.MaxZoom = 0.5 }, "view.max_zoom"},
		{"zoom step", func(c *Config) { c.View.ZoomStep = 1 }, "view.zoom_step"},
		{"alpha", func(c *Config) { c.Display.BackgroundAlpha = 1.5 }, "display.background_alpha"},
		{"interval", func(c *Config) { c.AutoStep.Interval = 0 }, "auto_step.interval"},
		{"steps per tick", func(c *Config) { c.AutoStep.StepsPerTick = 0 }, "auto_step.steps_per_tick"},
		{"slice", func(c *Config) { c.Finish.SliceSize = 0 }, "finish.slice_size"},
		{"threshold", func(c *Config) { c.AutoFill.Threshold = 300 }, "auto_fill.threshold"},
		{"pixels per cell", func(c *Config) { c.AutoScale.PixelsPerCell = 0 }, "auto_scale.pixels_per_cell"},
		{"maze rows", func(c *Config) { c.Maze.Rows = 2 }, "maze.rows"},
		{"blank cols", func(c *Config) { c.Blank.Cols = 0 }, "blank.cols"},
		{"backend", func(c *Config) { c.Storage.Backend = "etcd" }, "storage.backend"},
		{"glob", func(c *Config) { c.Presets.Glob = "[" }, "presets.glob"},
		{"keybinding", func(c *Config) { c.Keybindings = map[string]string{"j": "jump"} }, `keybindings["j"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestLoad_InvalidConfigReportsField(t *testing.T) {
	path := writeConfig(t, "finish:\n  slice_size: -1\n")
	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "finish.slice_size", fieldErrs[0].Field)
}
