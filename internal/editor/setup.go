package editor

import (
	"context"
	"fmt"

	"github.com/Garsondee/gridfind/internal/gridmap"
	"github.com/Garsondee/gridfind/internal/imagedec"
	"github.com/Garsondee/gridfind/internal/maze"
	"github.com/Garsondee/gridfind/internal/presets"
)

// Begin leaves Setup. A map saved by an earlier session is restored straight
// into Edit(PaintingCells); otherwise the user is asked for a background.
// Storage failures are reported and treated as an empty store.
func (c *Controller) Begin(ctx context.Context) error {
	return c.run(ActBegin, func() error {
		m, bg, ok, err := c.restore(ctx)
		if err != nil {
			c.fail(ActBegin, err)
		}
		if !ok {
			return c.enter(ActBegin, EditChoosingBackground)
		}
		c.install(m, bg)
		c.info("restored %dx%d map", m.Rows(), m.Cols())
		return c.enter(ActBegin, EditPaintingCells)
	})
}

// LoadBackground decodes data and derives a fresh map from the image size at
// the configured pixels per cell.
func (c *Controller) LoadBackground(data []byte) error {
	return c.run(ActLoadBackground, func() error {
		return c.loadBackground(ActLoadBackground, data)
	})
}

// DropBackground is LoadBackground for files dropped onto the window: from
// Edit(PaintingCells) or Edit(SizingGrid) it also changes background. The
// image is decoded before anything changes, so a bad file leaves the editor
// as it was.
func (c *Controller) DropBackground(data []byte) error {
	if !Allowed(ActChangeBackground, c.mode) {
		return c.LoadBackground(data)
	}
	raster, m, err := c.decodeBackground(data)
	if err != nil {
		return c.fail(ActLoadBackground, err)
	}
	if err := c.ChangeBackground(); err != nil {
		return err
	}
	return c.run(ActLoadBackground, func() error {
		return c.installBackground(ActLoadBackground, raster, m)
	})
}

func (c *Controller) loadBackground(action Action, data []byte) error {
	raster, m, err := c.decodeBackground(data)
	if err != nil {
		return err
	}
	return c.installBackground(action, raster, m)
}

// decodeBackground decodes data and builds the map it implies without
// touching controller state.
func (c *Controller) decodeBackground(data []byte) (*imagedec.Raster, *gridmap.GridMap, error) {
	raster, err := imagedec.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	ppc := c.cfg.AutoScale.PixelsPerCell
	rows, cols, err := gridmap.ScaledDims(raster.Width(), raster.Height(), ppc)
	if err != nil {
		return nil, nil, err
	}
	m, err := gridmap.New(rows, cols)
	if err != nil {
		return nil, nil, err
	}
	if err := m.SetPixelsPerCell(ppc); err != nil {
		return nil, nil, err
	}
	return raster, m, nil
}

func (c *Controller) installBackground(action Action, raster *imagedec.Raster, m *gridmap.GridMap) error {
	c.install(m, raster)
	c.info("loaded %s background %dx%d px", raster.Format(), raster.Width(), raster.Height())
	return c.enter(action, EditSizingGrid)
}

// LoadMaze generates a maze and uses its rendering as the background. A zero
// seed picks one from the clock. The maze entrance and exit are preselected
// as start and goal.
func (c *Controller) LoadMaze(rows, cols int, seed int64) error {
	return c.run(ActLoadMaze, func() error {
		return c.loadMaze(ActLoadMaze, rows, cols, seed)
	})
}

func (c *Controller) loadMaze(action Action, rows, cols int, seed int64) error {
	if seed == 0 {
		seed = c.now().UnixNano()
	}
	m, err := maze.Generate(rows, cols, seed)
	if err != nil {
		return err
	}
	ppc := max(1, c.cfg.Maze.PixelsPerCell)
	if err := m.SetPixelsPerCell(float64(ppc)); err != nil {
		return err
	}
	bg := imagedec.FromImage(maze.Image(m, ppc))
	c.install(m, bg)
	start, goal := maze.Endpoints(rows, cols)
	c.sel.Start, c.sel.HasStart = start, true
	c.sel.Goal, c.sel.HasGoal = goal, true
	c.log.Debug().Int("rows", rows).Int("cols", cols).Int64("seed", seed).Msg("maze generated")
	c.info("generated %dx%d maze (seed %d)", rows, cols, seed)
	return c.enter(action, EditSizingGrid)
}

// LoadPreset loads a named preset from the catalog.
func (c *Controller) LoadPreset(name string) error {
	return c.run(ActLoadPreset, func() error {
		return c.loadPreset(ActLoadPreset, name)
	})
}

// NextPreset loads the preset after the last one loaded.
func (c *Controller) NextPreset() error {
	return c.run(ActNextPreset, func() error {
		return c.loadPreset(ActNextPreset, c.presets.Next(c.preset))
	})
}

func (c *Controller) loadPreset(action Action, name string) error {
	p, ok := c.presets.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", presets.ErrUnknownPreset, name)
	}
	var err error
	switch p.Kind {
	case presets.KindMaze:
		mz := c.cfg.Maze
		err = c.loadMaze(action, mz.Rows, mz.Cols, mz.Seed)
	default:
		var data []byte
		data, err = c.presets.Read(name)
		if err == nil {
			err = c.loadBackground(action, data)
		}
	}
	if err != nil {
		return err
	}
	c.preset = name
	return nil
}

// NewBlank creates a rows×cols map of free cells with no background.
func (c *Controller) NewBlank(rows, cols int) error {
	return c.run(ActNewBlank, func() error {
		m, err := gridmap.NewFilled(rows, cols, gridmap.Normal(1))
		if err != nil {
			return err
		}
		c.install(m, nil)
		return c.enter(ActNewBlank, EditSizingGrid)
	})
}

// AutoScale derives rows and cols from the background size at ppc pixels per
// cell. Existing cells are kept by position.
func (c *Controller) AutoScale(ppc float64) error {
	return c.run(ActAutoScale, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		if err := c.requireBackground(); err != nil {
			return err
		}
		if err := c.grid.AutoScale(c.background.Width(), c.background.Height(), ppc); err != nil {
			return err
		}
		c.regrid()
		return nil
	})
}

// SetSize resizes the map, keeping cells by position.
func (c *Controller) SetSize(rows, cols int) error {
	return c.run(ActSetSize, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		if err := c.grid.Resize(rows, cols); err != nil {
			return err
		}
		c.regrid()
		return nil
	})
}

// DoubleMap doubles both dimensions, keeping every cell at its coordinates.
func (c *Controller) DoubleMap() error {
	return c.run(ActDoubleMap, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		if err := c.grid.ResizeDoubling(); err != nil {
			return err
		}
		c.regrid()
		return nil
	})
}

// ScaleUp repeats every cell into a factor×factor block.
func (c *Controller) ScaleUp(factor int) error {
	return c.run(ActScaleUp, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		if err := c.grid.ScaleUp(factor); err != nil {
			return err
		}
		c.regrid()
		return nil
	})
}

// ConfirmSize finishes sizing and starts painting.
func (c *Controller) ConfirmSize() error {
	return c.run(ActConfirmSize, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		return c.enter(ActConfirmSize, EditPaintingCells)
	})
}

// ChangeBackground goes back to choosing a background. The map is kept until
// a new one is loaded.
func (c *Controller) ChangeBackground() error {
	return c.run(ActChangeBackground, func() error {
		return c.enter(ActChangeBackground, EditChoosingBackground)
	})
}

// ResizeGrid goes back to sizing the current map.
func (c *Controller) ResizeGrid() error {
	return c.run(ActResizeGrid, func() error {
		return c.enter(ActResizeGrid, EditSizingGrid)
	})
}
