// Command headless-find runs a search without a window and prints a report,
// optionally rendering the final frame to a PNG.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/Garsondee/gridfind/internal/config"
	"github.com/Garsondee/gridfind/internal/editor"
	"github.com/Garsondee/gridfind/internal/gridmap"
	"github.com/Garsondee/gridfind/internal/logging"
	"github.com/Garsondee/gridfind/internal/render"
	"github.com/Garsondee/gridfind/internal/storage"
)

type options struct {
	MapFile  string
	Maze     string
	Seed     int64
	Start    string
	Goal     string
	Slice    int
	PNG      string
	Width    int
	Height   int
	LogLevel string
}

// report summarizes one finished search.
type report struct {
	Rows, Cols  int
	Start, Goal gridmap.Point
	Result      string
	Steps       int
	Visited     int
	PathLen     int
	Cost        float64
}

func main() {
	o := &options{}
	cmd := &cli.Command{
		Name:  "headless-find",
		Usage: "Run a pathfinding search on a saved map or a generated maze",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "map", Usage: "saved map file (JSON)", Destination: &o.MapFile},
			&cli.StringFlag{Name: "maze", Usage: "generate a ROWSxCOLS maze instead of loading a map", Destination: &o.Maze},
			&cli.Int64Flag{Name: "seed", Usage: "maze seed", Value: 1, Destination: &o.Seed},
			&cli.StringFlag{Name: "start", Usage: "start cell as ROW,COL (defaults to the maze entrance)", Destination: &o.Start},
			&cli.StringFlag{Name: "goal", Usage: "goal cell as ROW,COL (defaults to the maze exit)", Destination: &o.Goal},
			&cli.IntFlag{Name: "slice", Usage: "steps per finish slice", Value: config.DefaultConfig().Finish.SliceSize, Destination: &o.Slice},
			&cli.StringFlag{Name: "png", Usage: "write the final frame to this PNG file", Destination: &o.PNG},
			&cli.IntFlag{Name: "width", Usage: "snapshot width", Value: 800, Destination: &o.Width},
			&cli.IntFlag{Name: "height", Usage: "snapshot height", Value: 600, Destination: &o.Height},
			&cli.StringFlag{
				Name:        "log-level",
				Sources:     cli.EnvVars("GRIDFIND_LOG_LEVEL"),
				Value:       "warn",
				Destination: &o.LogLevel,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger, closer, err := logging.New(o.LogLevel, "")
			if err != nil {
				return err
			}
			defer closer()
			log.Logger = logger

			r, err := run(ctx, o)
			if err != nil {
				return err
			}
			printReport(os.Stdout, r)
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o *options) (report, error) {
	cfg := config.DefaultConfig()
	cfg.Finish.SliceSize = o.Slice
	cfg.AutoStep.Enabled = false

	store := storage.NewMemoryStore()
	if o.MapFile != "" {
		data, err := os.ReadFile(o.MapFile)
		if err != nil {
			return report{}, fmt.Errorf("read map: %w", err)
		}
		if err := store.Save(ctx, storage.KeyMap, data); err != nil {
			return report{}, err
		}
	}

	ed := editor.New(cfg,
		editor.WithLogger(logging.Component(log.Logger, "editor")),
		editor.WithStore(store),
		editor.WithViewport(float64(o.Width), float64(o.Height)),
	)
	if err := ed.Begin(ctx); err != nil {
		return report{}, err
	}

	switch {
	case o.Maze != "":
		rows, cols, err := parseDims(o.Maze)
		if err != nil {
			return report{}, err
		}
		if err := ed.LoadMaze(rows, cols, o.Seed); err != nil {
			return report{}, err
		}
		if err := ed.ConfirmSize(); err != nil {
			return report{}, err
		}
	case ed.Mode() != editor.EditPaintingCells:
		return report{}, errors.New("one of --map or --maze is required")
	}
	if err := ed.ToggleMode(); err != nil {
		return report{}, err
	}

	if err := setEndpoint(o.Start, ed.SetStart); err != nil {
		return report{}, fmt.Errorf("start: %w", err)
	}
	if err := setEndpoint(o.Goal, ed.SetGoal); err != nil {
		return report{}, fmt.Errorf("goal: %w", err)
	}
	if !ed.CanStep() {
		return report{}, errors.New("--start and --goal are required for saved maps")
	}

	if err := ed.FinishNow(ctx, nil); err != nil {
		return report{}, err
	}

	sel := ed.Selection()
	ov := ed.Overlay()
	r := report{
		Rows:    ed.Map().Rows(),
		Cols:    ed.Map().Cols(),
		Start:   sel.Start,
		Goal:    sel.Goal,
		Result:  ov.Result.String(),
		Steps:   ed.Steps(),
		Visited: len(ov.Visited),
		PathLen: len(ov.Path),
		Cost:    ov.Cost,
	}

	if o.PNG != "" {
		if err := writeSnapshot(o.PNG, o.Width, o.Height, ed.Frame()); err != nil {
			return r, err
		}
	}
	return r, nil
}

func setEndpoint(s string, set func(gridmap.Point) error) error {
	if s == "" {
		return nil
	}
	p, err := parsePoint(s)
	if err != nil {
		return err
	}
	return set(p)
}

// parsePoint reads "ROW,COL".
func parsePoint(s string) (gridmap.Point, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return gridmap.Point{}, fmt.Errorf("invalid point %q, want ROW,COL", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return gridmap.Point{}, fmt.Errorf("invalid row in %q: %w", s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return gridmap.Point{}, fmt.Errorf("invalid col in %q: %w", s, err)
	}
	return gridmap.Point{Row: row, Col: col}, nil
}

// parseDims reads "ROWSxCOLS".
func parseDims(s string) (int, int, error) {
	a, b, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, want ROWSxCOLS", s)
	}
	rows, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid rows in %q: %w", s, err)
	}
	cols, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cols in %q: %w", s, err)
	}
	return rows, cols, nil
}

func writeSnapshot(path string, w, h int, f render.Frame) error {
	canvas := render.NewRasterCanvas(w, h)
	render.Render(canvas, f)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := canvas.EncodePNG(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return file.Close()
}

func printReport(w io.Writer, r report) {
	fmt.Fprintf(w, "=== Headless Find Report ===\n")
	fmt.Fprintf(w, "map=%dx%d start=%s goal=%s\n", r.Rows, r.Cols, r.Start, r.Goal)
	fmt.Fprintf(w, "result=%s steps=%d visited=%d\n", r.Result, r.Steps, r.Visited)
	if r.PathLen > 0 {
		fmt.Fprintf(w, "path_len=%d cost=%g\n", r.PathLen, r.Cost)
	}
}
