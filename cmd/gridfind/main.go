package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/Garsondee/gridfind/internal/app"
	"github.com/Garsondee/gridfind/internal/config"
	"github.com/Garsondee/gridfind/internal/editor"
	"github.com/Garsondee/gridfind/internal/logging"
	"github.com/Garsondee/gridfind/internal/presets"
	"github.com/Garsondee/gridfind/internal/storage"
)

var version = "dev"

type flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	Width      int
	Height     int
	Background string
}

func defaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "gridfind", "config.yaml")
}

func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "gridfind")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		f         = &flags{}
		cfg       *config.Config
		store     storage.Store
		logCloser func()
	)

	cmd := &cli.Command{
		Name:    "gridfind",
		Usage:   "Edit grid maps over a background image and watch a pathfinder step through them",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error)",
				Sources:     cli.EnvVars("GRIDFIND_LOG_LEVEL"),
				Value:       "info",
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/gridfind.log)",
				Sources:     cli.EnvVars("GRIDFIND_LOG_FILE"),
				Destination: &f.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("GRIDFIND_CONFIG"),
				Value:       defaultConfigPath(),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "directory for saved maps, logs and presets",
				Sources:     cli.EnvVars("GRIDFIND_DATA_DIR"),
				Value:       defaultDataDir(),
				Destination: &f.DataDir,
			},
			&cli.IntFlag{
				Name:        "width",
				Usage:       "window width",
				Value:       1280,
				Destination: &f.Width,
			},
			&cli.IntFlag{
				Name:        "height",
				Usage:       "window height",
				Value:       800,
				Destination: &f.Height,
			},
			&cli.StringFlag{
				Name:        "background",
				Aliases:     []string{"b"},
				Usage:       "image to load as the background when nothing is saved",
				Destination: &f.Background,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logFile := f.LogFile
			if logFile == "" {
				logFile = filepath.Join(f.DataDir, "gridfind.log")
			}
			logger, closer, err := logging.New(f.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err = config.Load(f.ConfigPath, f.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			store, err = storage.Open(cfg.Storage.Backend, cfg.Storage.Dir, cfg.Storage.Namespace)
			if err != nil {
				return ctx, fmt.Errorf("open storage: %w", err)
			}
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if store != nil {
				if err := store.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close storage")
				}
			}
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return run(ctx, f, cfg, store)
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f *flags, cfg *config.Config, store storage.Store) error {
	catalog, err := presets.Open(cfg.Presets.Dir, cfg.Presets.Glob)
	if err != nil {
		return fmt.Errorf("open presets: %w", err)
	}
	log.Info().Strs("presets", catalog.Names()).Str("backend", cfg.Storage.Backend).Msg("starting")

	ed := editor.New(*cfg,
		editor.WithLogger(logging.Component(log.Logger, "editor")),
		editor.WithStore(store),
		editor.WithPresets(catalog),
		editor.WithViewport(float64(f.Width), float64(f.Height)),
		editor.WithClipboard(clipboard.WriteAll),
	)
	// Storage failures during Begin are reported on screen.
	_ = ed.Begin(ctx)

	if f.Background != "" && ed.Mode() == editor.EditChoosingBackground {
		data, err := os.ReadFile(f.Background)
		if err != nil {
			return fmt.Errorf("read background: %w", err)
		}
		if err := ed.LoadBackground(data); err != nil {
			return fmt.Errorf("load background %s: %w", f.Background, err)
		}
	}

	ebiten.SetWindowTitle("gridfind")
	ebiten.SetWindowSize(f.Width, f.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(app.TPS)

	game := app.New(ctx, ed, cfg.Presets.Glob, logging.Component(log.Logger, "app"))
	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}
