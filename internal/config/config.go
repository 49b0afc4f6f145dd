// Package config handles configuration loading and validation for gridfind.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Action names that keybindings may refer to.
const (
	ActionToggleMode       = "toggle_mode"
	ActionStep             = "step"
	ActionReset            = "reset"
	ActionFinish           = "finish"
	ActionAutoStep         = "auto_step"
	ActionSave             = "save"
	ActionLoad             = "load"
	ActionClearStorage     = "clear_storage"
	ActionArmLink          = "arm_link"
	ActionCancel           = "cancel"
	ActionFitView          = "fit_view"
	ActionCopyCell         = "copy_cell"
	ActionCopyMap          = "copy_map"
	ActionConfirmSize      = "confirm_size"
	ActionDoubleMap        = "double_map"
	ActionScaleUp          = "scale_up"
	ActionAutoScale        = "auto_scale"
	ActionAutoFill         = "auto_fill"
	ActionPickColor        = "pick_color"
	ActionLoadMaze         = "load_maze"
	ActionNewBlank         = "new_blank"
	ActionNextPreset       = "next_preset"
	ActionChangeBackground = "change_background"
	ActionResizeGrid       = "resize_grid"
	ActionToolInvalid      = "tool_invalid"
	ActionToolNormal       = "tool_normal"
	ActionToolWeighted     = "tool_weighted"
	ActionToolOneWay       = "tool_oneway"
	ActionRotateTool       = "rotate_tool"
	ActionToggleGrid       = "toggle_grid"
	ActionToggleDebug      = "toggle_debug"
	ActionToggleLinks      = "toggle_links"
)

// KnownActions lists every action a keybinding may name.
var KnownActions = []string{
	ActionToggleMode, ActionStep, ActionReset, ActionFinish, ActionAutoStep,
	ActionSave, ActionLoad, ActionClearStorage, ActionArmLink, ActionCancel,
	ActionFitView, ActionCopyCell, ActionCopyMap, ActionConfirmSize,
	ActionDoubleMap, ActionScaleUp, ActionAutoScale, ActionAutoFill,
	ActionPickColor, ActionLoadMaze, ActionNewBlank, ActionNextPreset,
	ActionChangeBackground, ActionResizeGrid, ActionToolInvalid,
	ActionToolNormal, ActionToolWeighted, ActionToolOneWay, ActionRotateTool,
	ActionToggleGrid, ActionToggleDebug, ActionToggleLinks,
}

// defaultKeybindings maps ebiten key names to actions. User keybindings are
// merged over these.
var defaultKeybindings = map[string]string{
	"Tab":       ActionToggleMode,
	"Space":     ActionStep,
	"R":         ActionReset,
	"F":         ActionFinish,
	"A":         ActionAutoStep,
	"S":         ActionSave,
	"L":         ActionLoad,
	"Delete":    ActionClearStorage,
	"T":         ActionArmLink,
	"Escape":    ActionCancel,
	"Home":      ActionFitView,
	"C":         ActionCopyCell,
	"M":         ActionCopyMap,
	"Enter":     ActionConfirmSize,
	"D":         ActionDoubleMap,
	"U":         ActionScaleUp,
	"K":         ActionAutoScale,
	"I":         ActionAutoFill,
	"Q":         ActionPickColor,
	"Z":         ActionLoadMaze,
	"N":         ActionNewBlank,
	"Period":    ActionNextPreset,
	"B":         ActionChangeBackground,
	"E":         ActionResizeGrid,
	"Digit1":    ActionToolInvalid,
	"Digit2":    ActionToolNormal,
	"Digit3":    ActionToolWeighted,
	"Digit4":    ActionToolOneWay,
	"O":         ActionRotateTool,
	"G":         ActionToggleGrid,
	"P":         ActionToggleDebug,
	"V":         ActionToggleLinks,
	"Backspace": ActionCancel,
}

// Config holds the application configuration.
type Config struct {
	View        ViewConfig        `yaml:"view"`
	Display     DisplayConfig     `yaml:"display"`
	AutoStep    AutoStepConfig    `yaml:"auto_step"`
	Finish      FinishConfig      `yaml:"finish"`
	AutoFill    AutoFillConfig    `yaml:"auto_fill"`
	AutoScale   AutoScaleConfig   `yaml:"auto_scale"`
	Maze        MazeConfig        `yaml:"maze"`
	Blank       BlankConfig       `yaml:"blank"`
	Storage     StorageConfig     `yaml:"storage"`
	Presets     PresetsConfig     `yaml:"presets"`
	Keybindings map[string]string `yaml:"keybindings"` // ebiten key name -> action
	DataDir     string            `yaml:"-"`           // set by caller, not from config file
}

// ViewConfig bounds the camera.
type ViewConfig struct {
	MinZoom     float64       `yaml:"min_zoom"`
	MaxZoom     float64       `yaml:"max_zoom"`
	InitialZoom float64       `yaml:"initial_zoom"`
	ZoomStep    float64       `yaml:"zoom_step"`    // wheel factor per notch
	FitDuration time.Duration `yaml:"fit_duration"` // 0 jumps straight to the fitted view
}

// DisplayConfig holds the initial layer toggles.
type DisplayConfig struct {
	BackgroundAlpha float64 `yaml:"background_alpha"`
	ForegroundAlpha float64 `yaml:"foreground_alpha"`
	DrawGrid        bool    `yaml:"draw_grid"`
	DrawPathDebug   bool    `yaml:"draw_path_debug"`
	DrawLinks       bool    `yaml:"draw_links"`
}

// AutoStepConfig drives automatic stepping in Find mode.
type AutoStepConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Interval     time.Duration `yaml:"interval"`
	StepsPerTick int           `yaml:"steps_per_tick"`
}

// FinishConfig sizes the slices of a Finish run.
type FinishConfig struct {
	SliceSize int `yaml:"slice_size"`
}

// AutoFillConfig parameterises the auto-fill rules.
type AutoFillConfig struct {
	Threshold      float64 `yaml:"threshold"`       // luma 0..255
	ColorTolerance float64 `yaml:"color_tolerance"` // RGB distance
}

// AutoScaleConfig sets the pixels-per-cell used by the auto scale action.
type AutoScaleConfig struct {
	PixelsPerCell float64 `yaml:"pixels_per_cell"`
}

// MazeConfig sizes generated mazes.
type MazeConfig struct {
	Rows          int   `yaml:"rows"`
	Cols          int   `yaml:"cols"`
	Seed          int64 `yaml:"seed"` // 0 picks a seed from the clock
	PixelsPerCell int   `yaml:"pixels_per_cell"`
}

// BlankConfig sizes maps created without a background.
type BlankConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // file, sqlite or memory
	Dir       string `yaml:"dir"`     // defaults to the data dir
	Namespace string `yaml:"namespace"`
}

// PresetsConfig locates preset backgrounds.
type PresetsConfig struct {
	Dir  string `yaml:"dir"`
	Glob string `yaml:"glob"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		View: ViewConfig{
			MinZoom:     1,
			MaxZoom:     200,
			InitialZoom: 10,
			ZoomStep:    1.1,
			FitDuration: 300 * time.Millisecond,
		},
		Display: DisplayConfig{
			BackgroundAlpha: 0.8,
			ForegroundAlpha: 0.8,
			DrawGrid:        true,
			DrawPathDebug:   true,
			DrawLinks:       true,
		},
		AutoStep: AutoStepConfig{
			Interval:     time.Second / 60,
			StepsPerTick: 5,
		},
		Finish:      FinishConfig{SliceSize: 256},
		AutoFill:    AutoFillConfig{Threshold: 128, ColorTolerance: 10},
		AutoScale:   AutoScaleConfig{PixelsPerCell: 10},
		Maze:        MazeConfig{Rows: 31, Cols: 41, PixelsPerCell: 8},
		Blank:       BlankConfig{Rows: 10, Cols: 10},
		Storage:     StorageConfig{Backend: "file", Namespace: "gridfind"},
		Presets:     PresetsConfig{Glob: "**/*.{png,jpg,jpeg,gif,bmp,tiff,webp}"},
		Keybindings: mergeKeybindings(defaultKeybindings, nil),
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir
	cfg.Keybindings = nil

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
			cfg.DataDir = dataDir
		}
	}

	cfg.Keybindings = mergeKeybindings(defaultKeybindings, cfg.Keybindings)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// applyDefaults fills settings derived from other settings.
func (c *Config) applyDefaults() {
	if c.Storage.Dir == "" {
		c.Storage.Dir = c.DataDir
	}
	if c.Presets.Dir == "" && c.DataDir != "" {
		c.Presets.Dir = c.DataDir + string(os.PathSeparator) + "presets"
	}
}

// mergeKeybindings merges user keybindings into defaults. User keybindings
// override defaults for the same key; key names compare case-insensitively.
func mergeKeybindings(defaults, user map[string]string) map[string]string {
	result := make(map[string]string, len(defaults)+len(user))
	for k, v := range defaults {
		result[strings.ToLower(k)] = v
	}
	for k, v := range user {
		result[strings.ToLower(k)] = v
	}
	return result
}

// ActionForKey returns the action bound to an ebiten key name.
func (c *Config) ActionForKey(key string) (string, bool) {
	a, ok := c.Keybindings[strings.ToLower(key)]
	return a, ok
}
