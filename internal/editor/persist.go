package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/Garsondee/gridfind/internal/gridmap"
	"github.com/Garsondee/gridfind/internal/imagedec"
	"github.com/Garsondee/gridfind/internal/storage"
)

var errNoStore = fmt.Errorf("%w: persistence disabled", storage.ErrStorage)

// Save writes the map and, when there is one, the background as PNG. A map
// without a background clears any stale stored background.
func (c *Controller) Save(ctx context.Context) error {
	return c.run(ActSave, func() error {
		if err := c.requireMap(); err != nil {
			return err
		}
		if c.store == nil {
			return errNoStore
		}
		data, err := c.grid.Marshal()
		if err != nil {
			return err
		}
		var bg []byte
		if c.background != nil {
			if bg, err = c.background.EncodePNG(); err != nil {
				return err
			}
		}
		// Background first, map last. A failed map write restores the old
		// background.
		prev, _, err := c.store.Load(ctx, storage.KeyBackground)
		if err != nil {
			return err
		}
		if err := c.putBackground(ctx, bg); err != nil {
			return err
		}
		if err := c.store.Save(ctx, storage.KeyMap, data); err != nil {
			return errors.Join(err, c.putBackground(ctx, prev))
		}
		c.log.Info().Int("rows", c.grid.Rows()).Int("cols", c.grid.Cols()).Int("bytes", len(data)).Msg("map saved")
		c.info("saved %dx%d map", c.grid.Rows(), c.grid.Cols())
		return nil
	})
}

// putBackground stores bg, or removes the stored background when bg is nil.
func (c *Controller) putBackground(ctx context.Context, bg []byte) error {
	if bg == nil {
		return c.store.Clear(ctx, storage.KeyBackground)
	}
	return c.store.Save(ctx, storage.KeyBackground, bg)
}

// Load replaces the map with the saved one. An empty store is reported and
// leaves the current map alone.
func (c *Controller) Load(ctx context.Context) error {
	return c.run(ActLoad, func() error {
		m, bg, ok, err := c.restore(ctx)
		if err != nil {
			return err
		}
		if !ok {
			c.info("nothing saved")
			return nil
		}
		c.install(m, bg)
		c.info("loaded %dx%d map", m.Rows(), m.Cols())
		return nil
	})
}

// ClearStorage deletes the saved map and background.
func (c *Controller) ClearStorage(ctx context.Context) error {
	return c.run(ActClearStorage, func() error {
		if c.store == nil {
			return errNoStore
		}
		err := errors.Join(
			c.store.Clear(ctx, storage.KeyMap),
			c.store.Clear(ctx, storage.KeyBackground),
		)
		if err != nil {
			return err
		}
		c.info("storage cleared")
		return nil
	})
}

// restore reads the saved map and background. ok is false when nothing is
// saved. A stored background that no longer decodes is dropped with a notice
// rather than failing the whole restore.
func (c *Controller) restore(ctx context.Context) (*gridmap.GridMap, *imagedec.Raster, bool, error) {
	if c.store == nil {
		return nil, nil, false, nil
	}
	data, ok, err := c.store.Load(ctx, storage.KeyMap)
	if err != nil || !ok {
		return nil, nil, false, err
	}
	m, err := gridmap.Unmarshal(data)
	if err != nil {
		return nil, nil, false, err
	}
	bgData, ok, err := c.store.Load(ctx, storage.KeyBackground)
	if err != nil {
		return nil, nil, false, err
	}
	var bg *imagedec.Raster
	if ok {
		bg, err = imagedec.Decode(bgData)
		if err != nil {
			c.notices.Add(LevelWarn, fmt.Sprintf("saved background dropped: %v", err))
			bg = nil
		}
	}
	return m, bg, true, nil
}
