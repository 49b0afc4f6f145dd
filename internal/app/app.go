// Package app hosts the editor in an ebiten window.
package app

import (
	"context"
	"image/color"
	"io/fs"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/Garsondee/gridfind/internal/editor"
	"github.com/Garsondee/gridfind/internal/presets"
	"github.com/Garsondee/gridfind/internal/render"
)

// TPS is the update rate the window runs at.
const TPS = 60

const (
	hudLineHeight = 16
	hudNotices    = 5
	noticeTTL     = 4 * time.Second
)

var colorHUDBack = color.RGBA{R: 10, G: 12, B: 14, A: 200}

// Game implements ebiten.Game around an editor.Controller.
type Game struct {
	ctx    context.Context
	c      *editor.Controller
	log    zerolog.Logger
	glob   string
	canvas *render.EbitenCanvas

	prev   inputState
	keyBuf []ebiten.Key

	// shown tracks when each notice was first drawn, by sequence number.
	shown   map[int]time.Time
	showHUD bool
	now     func() time.Time
}

// New wraps c. glob filters files dropped onto the window.
func New(ctx context.Context, c *editor.Controller, glob string, log zerolog.Logger) *Game {
	return &Game{
		ctx:     ctx,
		c:       c,
		log:     log,
		glob:    glob,
		canvas:  render.NewEbitenCanvas(),
		shown:   make(map[int]time.Time),
		showHUD: true,
		now:     time.Now,
	}
}

// Update polls input, forwards it to the editor and advances time.
func (g *Game) Update() error {
	if err := g.ctx.Err(); err != nil {
		return ebiten.Termination
	}
	cur, buf := pollInput(g.keyBuf)
	g.keyBuf = buf
	for _, ev := range diffInput(g.prev, cur) {
		// Failures are already recorded as notices.
		_ = g.c.Handle(g.ctx, ev)
	}
	g.prev = cur

	if dropped := ebiten.DroppedFiles(); dropped != nil {
		g.handleDrop(dropped)
	}
	g.c.Update(time.Second / TPS)
	return nil
}

// handleDrop loads the first image among files dropped onto the window.
func (g *Game) handleDrop(fsys fs.FS) {
	catalog, err := presets.Discover(fsys, g.glob)
	if err != nil {
		g.log.Warn().Err(err).Msg("dropped files")
		return
	}
	images := catalog.Images()
	if len(images) == 0 {
		g.log.Info().Msg("dropped files contain no image")
		return
	}
	data, err := catalog.Read(images[0].Name)
	if err != nil {
		g.log.Warn().Err(err).Msg("read dropped file")
		return
	}
	g.log.Info().Str("file", images[0].Path).Int("bytes", len(data)).Msg("background dropped")
	_ = g.c.DropBackground(data)
}

// Draw renders the map and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	g.canvas.SetTarget(screen)
	render.Render(g.canvas, g.c.Frame())
	if g.showHUD {
		g.drawHUD(screen)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	lines := []string{g.c.Status()}
	if hover := g.c.HoverText(); hover != "" {
		lines = append(lines, hover)
	}
	lines = append(lines, hint(g.c.Mode()))

	vector.FillRect(screen, 0, 0, float32(w), float32(len(lines)*hudLineHeight+4), colorHUDBack, false)
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, 4, 2+i*hudLineHeight)
	}

	notices := g.visibleNotices()
	y := h - len(notices)*hudLineHeight - 4
	for _, n := range notices {
		ebitenutil.DebugPrintAt(screen, n.String(), 4, y)
		y += hudLineHeight
	}
}

// visibleNotices returns the newest notices that have not yet expired.
func (g *Game) visibleNotices() []editor.Notice {
	now := g.now()
	recent := g.c.Notices().Recent()
	var out []editor.Notice
	for _, n := range recent {
		first, ok := g.shown[n.Seq]
		if !ok {
			g.shown[n.Seq] = now
			first = now
		}
		if now.Sub(first) < noticeTTL {
			out = append(out, n)
		}
	}
	// Forget notices that have left the ring buffer.
	if len(recent) > 0 {
		for seq := range g.shown {
			if seq < recent[0].Seq {
				delete(g.shown, seq)
			}
		}
	}
	if len(out) > hudNotices {
		out = out[len(out)-hudNotices:]
	}
	return out
}

// Layout tracks the window size so fits use the real canvas.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	vp := g.c.Viewport()
	if int(vp.W) != outsideWidth || int(vp.H) != outsideHeight {
		g.c.SetViewport(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// hint is the one-line help for a mode.
func hint(m editor.Mode) string {
	switch m {
	case editor.EditChoosingBackground:
		return "drop an image, z maze, n blank, . next preset"
	case editor.EditSizingGrid:
		return "k auto scale, d double, u scale up, enter confirm, b change background"
	case editor.EditPaintingCells:
		return "1-4 tools, o rotate, t link, shift-drag rect, i auto fill, q pick colour, e resize, s/l save/load, tab find"
	}
	if m.IsFind() {
		return "click start, shift-click goal, space step, f finish, a auto, r reset, tab edit"
	}
	return ""
}
