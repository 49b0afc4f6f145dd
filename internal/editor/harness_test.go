package editor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Garsondee/gridfind/internal/config"
	"github.com/Garsondee/gridfind/internal/gridmap"
	"github.com/Garsondee/gridfind/internal/storage"
)

// harness drives a Controller the way the ebiten host does, without a window.
type harness struct {
	t     *testing.T
	ctx   context.Context
	c     *Controller
	store storage.Store
	clip  []string
}

// harnessOptionKind controls the pass in which an option is applied.
type harnessOptionKind int

const (
	optConfig harnessOptionKind = iota // config and collaborators, applied before New
	optMap                             // map setup, applied after Begin
)

type harnessOption struct {
	kind harnessOptionKind
	cfg  func(*config.Config, *[]Option, *harness)
	mapF func(*harness)
}

// withConfig edits the configuration before the controller is built.
func withConfig(fn func(*config.Config)) harnessOption {
	return harnessOption{kind: optConfig, cfg: func(c *config.Config, _ *[]Option, _ *harness) { fn(c) }}
}

// withStore replaces the default memory store.
func withStore(s storage.Store) harnessOption {
	return harnessOption{kind: optConfig, cfg: func(_ *config.Config, _ *[]Option, h *harness) { h.store = s }}
}

// withOptions passes extra controller options.
func withOptions(opts ...Option) harnessOption {
	return harnessOption{kind: optConfig, cfg: func(_ *config.Config, o *[]Option, _ *harness) {
		*o = append(*o, opts...)
	}}
}

// withBlankMap creates a rows×cols map of free cells and confirms its size,
// leaving the controller in Edit(PaintingCells).
func withBlankMap(rows, cols int) harnessOption {
	return harnessOption{kind: optMap, mapF: func(h *harness) {
		require.NoError(h.t, h.c.NewBlank(rows, cols))
		require.NoError(h.t, h.c.ConfirmSize())
	}}
}

// withWalls paints Invalid cells onto the blank map.
func withWalls(points ...gridmap.Point) harnessOption {
	return harnessOption{kind: optMap, mapF: func(h *harness) {
		require.NoError(h.t, h.c.SelectTool(gridmap.Invalid()))
		for _, p := range points {
			require.NoError(h.t, h.c.PaintAt(p))
		}
		require.NoError(h.t, h.c.SelectTool(DefaultTool()))
	}}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	h := &harness{t: t, ctx: context.Background(), store: storage.NewMemoryStore()}
	cfg := config.DefaultConfig()
	var copts []Option
	for _, o := range opts {
		if o.kind == optConfig {
			o.cfg(&cfg, &copts, h)
		}
	}
	copts = append([]Option{
		WithStore(h.store),
		WithViewport(800, 600),
		WithClipboard(func(s string) error {
			h.clip = append(h.clip, s)
			return nil
		}),
	}, copts...)
	h.c = New(cfg, copts...)
	require.NoError(t, h.c.Begin(h.ctx))
	for _, o := range opts {
		if o.kind == optMap {
			o.mapF(h)
		}
	}
	return h
}

// screen returns the screen position of the centre of cell p.
func (h *harness) screen(p gridmap.Point) (float64, float64) {
	return h.c.View().State().CellCenter(p)
}

func (h *harness) click(p gridmap.Point, shift bool) error {
	x, y := h.screen(p)
	err := h.c.Handle(h.ctx, Event{Kind: PointerDown, X: x, Y: y, Shift: shift})
	if upErr := h.c.Handle(h.ctx, Event{Kind: PointerUp, X: x, Y: y, Shift: shift}); err == nil {
		err = upErr
	}
	return err
}

func (h *harness) clickAt(x, y float64) error {
	err := h.c.Handle(h.ctx, Event{Kind: PointerDown, X: x, Y: y})
	if upErr := h.c.Handle(h.ctx, Event{Kind: PointerUp, X: x, Y: y}); err == nil {
		err = upErr
	}
	return err
}

func (h *harness) key(name string) error {
	return h.c.Handle(h.ctx, Event{Kind: KeyPress, Key: name})
}

// find toggles into Find mode and selects start and goal.
func (h *harness) find(start, goal gridmap.Point) {
	h.t.Helper()
	require.NoError(h.t, h.c.ToggleMode())
	require.NoError(h.t, h.click(start, false))
	require.NoError(h.t, h.click(goal, true))
	require.Equal(h.t, FindIdle, h.c.Mode())
}

// encodePNG renders a w×h image split into a black left half and a white
// right half.
func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{A: 255}
			if x >= w/2 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
