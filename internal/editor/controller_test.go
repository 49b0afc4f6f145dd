package editor

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/gridfind/internal/config"
	"github.com/Garsondee/gridfind/internal/finder"
	"github.com/Garsondee/gridfind/internal/gridmap"
	"github.com/Garsondee/gridfind/internal/imagedec"
	"github.com/Garsondee/gridfind/internal/pathfind"
	"github.com/Garsondee/gridfind/internal/presets"
	"github.com/Garsondee/gridfind/internal/storage"
)

func pt(r, c int) gridmap.Point { return gridmap.Point{Row: r, Col: c} }

func TestBegin_EmptyStoreChoosesBackground(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, EditChoosingBackground, h.c.Mode())
	assert.Nil(t, h.c.Map())
}

func TestBegin_CorruptSaveIsReportedNotFatal(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), storage.KeyMap, []byte("garbage")))

	h := newHarness(t, withStore(store))
	assert.Equal(t, EditChoosingBackground, h.c.Mode())
	last, ok := h.c.Notices().Last()
	require.True(t, ok)
	assert.Equal(t, LevelError, last.Level)
}

func TestTransitions_RejectedActionsLeaveState(t *testing.T) {
	h := newHarness(t, withBlankMap(4, 4))
	before := h.c.Map().Clone()

	err := h.c.DoubleMap()
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, EditPaintingCells, h.c.Mode())
	assert.True(t, before.Equal(h.c.Map()))

	_, err = h.c.Step()
	require.ErrorIs(t, err, ErrInvalidState)

	last, ok := h.c.Notices().Last()
	require.True(t, ok)
	assert.Equal(t, LevelWarn, last.Level)
	assert.Contains(t, last.Message, "step")
}

func TestLoadBackground_SizingAndAutoFill(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.LoadBackground(encodePNG(t, 40, 20)))
	assert.Equal(t, EditSizingGrid, h.c.Mode())
	require.NotNil(t, h.c.Background())
	assert.Equal(t, 2, h.c.Map().Rows(), "20px / 10ppc")
	assert.Equal(t, 4, h.c.Map().Cols(), "40px / 10ppc")

	require.NoError(t, h.c.AutoScale(5))
	assert.Equal(t, 4, h.c.Map().Rows())
	assert.Equal(t, 8, h.c.Map().Cols())

	require.NoError(t, h.c.ConfirmSize())
	require.NoError(t, h.c.AutoFill())
	for col := 0; col < 8; col++ {
		want := gridmap.KindNormal
		if col < 4 {
			want = gridmap.KindInvalid
		}
		assert.Equal(t, want, h.c.Map().CellAt(pt(0, col)).Kind, "col %d", col)
	}

	require.NoError(t, h.c.ArmPickColor())
	require.NoError(t, h.click(pt(0, 0), false), "picking the black half as free")
	assert.Equal(t, gridmap.KindNormal, h.c.Map().CellAt(pt(3, 0)).Kind)
	assert.Equal(t, gridmap.KindInvalid, h.c.Map().CellAt(pt(3, 7)).Kind)
	assert.False(t, h.c.Selection().PickColor)
}

func TestLoadBackground_DecodeFailureKeepsState(t *testing.T) {
	h := newHarness(t)
	err := h.c.LoadBackground([]byte("not an image"))
	require.ErrorIs(t, err, imagedec.ErrDecode)
	assert.Equal(t, EditChoosingBackground, h.c.Mode())
	assert.Nil(t, h.c.Map())
}

func TestAutoFill_NeedsBackground(t *testing.T) {
	h := newHarness(t, withBlankMap(3, 3))
	require.ErrorIs(t, h.c.AutoFill(), gridmap.ErrNoBackground)
}

func TestDoubleMap_PreservesCells(t *testing.T) {
	h := newHarness(t, withBlankMap(3, 4), withWalls(pt(0, 0), pt(2, 3)))
	before := h.c.Map().Clone()

	require.NoError(t, h.c.ResizeGrid())
	require.NoError(t, h.c.DoubleMap())
	m := h.c.Map()
	require.Equal(t, 6, m.Rows())
	require.Equal(t, 8, m.Cols())
	for r := 0; r < before.Rows(); r++ {
		for c := 0; c < before.Cols(); c++ {
			assert.Equal(t, before.CellAt(pt(r, c)), m.CellAt(pt(r, c)))
		}
	}
	assert.Equal(t, gridmap.KindInvalid, m.CellAt(pt(5, 7)).Kind, "new cells are invalid")

	require.NoError(t, h.c.ScaleUp(2))
	assert.Equal(t, 12, m.Rows())
	require.NoError(t, h.c.SetSize(2, 2))
	assert.Equal(t, 2, m.Cols())
}

func TestPaint_ClickStrokeAndOutOfBounds(t *testing.T) {
	h := newHarness(t, withBlankMap(5, 5))
	require.NoError(t, h.c.SelectTool(gridmap.Normal(WeightedCost)))
	require.NoError(t, h.click(pt(1, 1), false))
	assert.Equal(t, gridmap.Normal(WeightedCost), h.c.Map().CellAt(pt(1, 1)))

	rev := h.c.Map().Revision()
	require.NoError(t, h.clickAt(-50, -50), "painting off the map is a no-op")
	assert.Equal(t, rev, h.c.Map().Revision())

	// A right-button stroke erases along the dragged line without gaps.
	x0, y0 := h.screen(pt(4, 0))
	x1, y1 := h.screen(pt(4, 4))
	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: PointerDown, X: x0, Y: y0, Button: ButtonRight}))
	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: PointerMove, X: x1, Y: y1, Button: ButtonRight}))
	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: PointerUp, X: x1, Y: y1, Button: ButtonRight}))
	for c := 0; c < 5; c++ {
		assert.Equal(t, gridmap.KindInvalid, h.c.Map().CellAt(pt(4, c)).Kind, "col %d", c)
	}
}

func TestPaint_ShiftDragFillsRectangle(t *testing.T) {
	h := newHarness(t, withBlankMap(5, 5))
	require.NoError(t, h.c.SelectTool(gridmap.Invalid()))

	x0, y0 := h.screen(pt(1, 1))
	x1, y1 := h.screen(pt(2, 3))
	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: PointerDown, X: x0, Y: y0, Shift: true}))
	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: PointerMove, X: x1, Y: y1, Shift: true}))
	f := h.c.Frame()
	assert.Equal(t, pt(1, 1), f.SelectionA.Point)
	assert.Equal(t, pt(2, 3), f.SelectionB.Point)
	assert.Equal(t, gridmap.KindNormal, h.c.Map().CellAt(pt(1, 1)).Kind, "nothing painted until release")

	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: PointerUp, X: x1, Y: y1, Shift: true}))
	invalid := 0
	for _, cell := range h.c.Map().Cells() {
		if cell.Kind == gridmap.KindInvalid {
			invalid++
		}
	}
	assert.Equal(t, 6, invalid)
	assert.Equal(t, gridmap.KindInvalid, h.c.Map().CellAt(pt(2, 3)).Kind)
}

func TestLinkCapture_SetAndOverwriteTarget(t *testing.T) {
	h := newHarness(t, withBlankMap(5, 5))
	require.NoError(t, h.c.SelectTool(gridmap.OneWay(gridmap.DirRight, 1)))
	require.NoError(t, h.click(pt(2, 2), false))

	require.NoError(t, h.c.ArmLink())
	require.NoError(t, h.click(pt(2, 2), false))
	assert.Equal(t, LinkAwaitingTarget, h.c.Selection().Link.Phase())
	require.NoError(t, h.click(pt(2, 3), false))

	target, ok := h.c.Map().CellAt(pt(2, 2)).TargetPoint()
	require.True(t, ok)
	assert.Equal(t, pt(2, 3), target)
	assert.Equal(t, LinkIdle, h.c.Selection().Link.Phase())

	require.NoError(t, h.c.ArmLink())
	require.NoError(t, h.click(pt(2, 2), false))
	require.NoError(t, h.click(pt(0, 4), false))
	target, _ = h.c.Map().CellAt(pt(2, 2)).TargetPoint()
	assert.Equal(t, pt(0, 4), target, "a second target overwrites the first")
}

func TestLinkCapture_RejectedClicksStayArmed(t *testing.T) {
	h := newHarness(t, withBlankMap(5, 5))
	require.NoError(t, h.c.ArmLink())

	err := h.click(pt(1, 1), false)
	require.ErrorIs(t, err, gridmap.ErrInvalidCell, "source must be one-way")
	assert.Equal(t, LinkAwaitingSource, h.c.Selection().Link.Phase())

	require.NoError(t, h.c.Map().SetCell(pt(1, 1), gridmap.OneWay(gridmap.DirDown, 1)))
	require.NoError(t, h.click(pt(1, 1), false))

	err = h.click(pt(1, 1), false)
	require.ErrorIs(t, err, gridmap.ErrInvalidCell, "unchanged target")
	assert.Equal(t, LinkAwaitingTarget, h.c.Selection().Link.Phase())

	err = h.clickAt(-100, -100)
	require.ErrorIs(t, err, gridmap.ErrOutOfBounds)
	assert.Equal(t, LinkAwaitingTarget, h.c.Selection().Link.Phase())
	_, linked := h.c.Map().CellAt(pt(1, 1)).TargetPoint()
	assert.False(t, linked)

	last, _ := h.c.Notices().Last()
	assert.Equal(t, LevelWarn, last.Level)

	src, ok := h.c.Selection().Link.Source()
	require.True(t, ok)
	assert.Equal(t, pt(1, 1), h.c.Frame().LinkSource.Point)
	assert.Equal(t, pt(1, 1), src)
}

func TestLinkCapture_CancelledByModeChange(t *testing.T) {
	h := newHarness(t, withBlankMap(5, 5))
	require.NoError(t, h.c.Map().SetCell(pt(2, 2), gridmap.OneWay(gridmap.DirRight, 1)))
	require.NoError(t, h.c.ArmLink())
	require.NoError(t, h.click(pt(2, 2), false))

	require.NoError(t, h.c.ToggleMode())
	assert.Equal(t, LinkIdle, h.c.Selection().Link.Phase())
}

func TestCanStep_Law(t *testing.T) {
	h := newHarness(t, withBlankMap(3, 3))
	for _, m := range allModes {
		for _, hasStart := range []bool{false, true} {
			for _, hasGoal := range []bool{false, true} {
				h.c.mode = m
				h.c.sel.HasStart, h.c.sel.HasGoal = hasStart, hasGoal
				want := m.IsFind() && hasStart && hasGoal
				assert.Equal(t, want, h.c.CanStep(), "%s start=%v goal=%v", m, hasStart, hasGoal)
				if want {
					continue
				}

				_, err := h.c.Step()
				require.Error(t, err)
				if m.IsFind() {
					assert.ErrorIs(t, err, ErrPrecondition)
				} else {
					assert.ErrorIs(t, err, ErrInvalidState)
				}
				_, err = h.c.Finish()
				require.Error(t, err)
				assert.Equal(t, m, h.c.Mode(), "a rejected step never changes mode")
			}
		}
	}
}

func TestStep_MonotonicBoundedThenNoop(t *testing.T) {
	h := newHarness(t, withBlankMap(10, 10))
	h.find(pt(0, 0), pt(9, 9))

	steps := 0
	for {
		res, err := h.c.Step()
		require.NoError(t, err)
		steps++
		require.LessOrEqual(t, steps, 100, "bounded by rows*cols")
		if res.Done {
			break
		}
		assert.True(t, res.Advanced)
		assert.Equal(t, FindStepping, h.c.Mode())
	}
	assert.Equal(t, FindDone, h.c.Mode())

	total := h.c.Steps()
	for i := 0; i < 3; i++ {
		res, err := h.c.Step()
		require.NoError(t, err)
		assert.Equal(t, finder.StepResult{Advanced: false, Done: true}, res)
	}
	assert.Equal(t, total, h.c.Steps())
	assert.Equal(t, FindDone, h.c.Mode())
}

func TestFinish_OpenGridFindsPath(t *testing.T) {
	h := newHarness(t, withBlankMap(10, 10))
	h.find(pt(0, 0), pt(9, 9))

	require.NoError(t, h.c.FinishNow(h.ctx, nil))
	assert.Equal(t, FindDone, h.c.Mode())
	path := h.c.Path()
	require.NotEmpty(t, path)
	assert.Equal(t, pt(0, 0), path[0])
	assert.Equal(t, pt(9, 9), path[len(path)-1])
	assert.Equal(t, pathfind.Found, h.c.Overlay().Result)
	assert.Len(t, path, 19)
}

func TestFinish_WallMeansNoPath(t *testing.T) {
	h := newHarness(t, withBlankMap(3, 3), withWalls(pt(0, 1), pt(1, 1), pt(2, 1)))
	h.find(pt(1, 0), pt(1, 2))

	require.NoError(t, h.c.FinishNow(h.ctx, nil))
	assert.Equal(t, FindDone, h.c.Mode())
	assert.Empty(t, h.c.Path())
	assert.Equal(t, pathfind.NoPath, h.c.Overlay().Result)
	last, _ := h.c.Notices().Last()
	assert.Contains(t, last.Message, "no path")
}

func TestFinish_SlicedAndCancelledByReset(t *testing.T) {
	h := newHarness(t, withBlankMap(10, 10), withConfig(func(c *config.Config) { c.Finish.SliceSize = 1 }))
	h.find(pt(0, 0), pt(9, 9))

	task, err := h.c.Finish()
	require.NoError(t, err)
	assert.Equal(t, FindStepping, h.c.Mode())
	assert.True(t, h.c.Finishing())

	h.c.Update(16 * time.Millisecond)
	h.c.Update(16 * time.Millisecond)
	assert.Equal(t, 2, h.c.Steps(), "one slice per frame")

	require.NoError(t, h.c.Reset())
	assert.True(t, task.Cancelled())
	assert.False(t, h.c.Finishing())
	assert.Equal(t, FindIdle, h.c.Mode())
	assert.Equal(t, 0, h.c.Steps())

	assert.False(t, task.Advance(), "a cancelled task never steps again")
	h.c.Update(16 * time.Millisecond)
	assert.Equal(t, 0, h.c.Steps())
}

func TestFinish_CancelledByModeToggle(t *testing.T) {
	h := newHarness(t, withBlankMap(10, 10), withConfig(func(c *config.Config) { c.Finish.SliceSize = 1 }))
	h.find(pt(0, 0), pt(9, 9))

	task, err := h.c.Finish()
	require.NoError(t, err)
	h.c.Update(16 * time.Millisecond)

	require.NoError(t, h.c.ToggleMode())
	assert.Equal(t, EditPaintingCells, h.c.Mode())
	assert.True(t, task.Cancelled())
	assert.False(t, h.c.Finishing())
}

func TestFinish_PumpedToDone(t *testing.T) {
	h := newHarness(t, withBlankMap(4, 4), withConfig(func(c *config.Config) { c.Finish.SliceSize = 4 }))
	h.find(pt(0, 0), pt(3, 3))

	_, err := h.c.Finish()
	require.NoError(t, err)
	for i := 0; i < 16 && h.c.Finishing(); i++ {
		h.c.Update(16 * time.Millisecond)
	}
	assert.False(t, h.c.Finishing())
	assert.Equal(t, FindDone, h.c.Mode())

	_, err = h.c.Finish()
	assert.ErrorIs(t, err, ErrInvalidState, "finish is not offered once done")
}

func TestFinishNow_ContextCancelled(t *testing.T) {
	h := newHarness(t, withBlankMap(10, 10), withConfig(func(c *config.Config) { c.Finish.SliceSize = 1 }))
	h.find(pt(0, 0), pt(9, 9))

	ctx, cancel := context.WithCancel(h.ctx)
	slices := 0
	err := h.c.FinishNow(ctx, func() {
		slices++
		if slices == 3 {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, h.c.Steps())
	assert.Equal(t, FindStepping, h.c.Mode())
	assert.False(t, h.c.Finishing())
}

func TestAutoStep_TicksOnCadence(t *testing.T) {
	h := newHarness(t, withBlankMap(4, 4), withConfig(func(c *config.Config) {
		c.AutoStep.Interval = 10 * time.Millisecond
		c.AutoStep.StepsPerTick = 2
	}))
	require.NoError(t, h.c.ToggleMode())
	require.ErrorIs(t, h.c.SetAutoStep(true), ErrPrecondition)

	require.NoError(t, h.c.SetStart(pt(0, 0)))
	require.NoError(t, h.c.SetGoal(pt(3, 3)))
	require.NoError(t, h.c.SetAutoStep(true))

	h.c.Update(5 * time.Millisecond)
	assert.Equal(t, 0, h.c.Steps())
	h.c.Update(5 * time.Millisecond)
	assert.Equal(t, 2, h.c.Steps())
	assert.Equal(t, FindStepping, h.c.Mode())

	for i := 0; i < 50 && h.c.Mode() != FindDone; i++ {
		h.c.Update(10 * time.Millisecond)
	}
	assert.Equal(t, FindDone, h.c.Mode())
	assert.False(t, h.c.AutoStepEnabled(), "auto-step stops when done")
}

func TestEndpoints_InvalidatedByEditFallBackToIdle(t *testing.T) {
	h := newHarness(t, withBlankMap(5, 5))
	h.find(pt(0, 0), pt(4, 4))
	_, err := h.c.Step()
	require.NoError(t, err)

	require.NoError(t, h.c.ToggleMode())
	require.NoError(t, h.c.SelectTool(gridmap.Invalid()))
	require.NoError(t, h.c.PaintAt(pt(0, 0)))

	err = h.c.ToggleMode()
	require.ErrorIs(t, err, finder.ErrInvalidEndpoints)
	assert.Equal(t, FindIdle, h.c.Mode())
	sel := h.c.Selection()
	assert.False(t, sel.HasStart)
	assert.False(t, sel.HasGoal)
	assert.False(t, h.c.CanStep())
}

func TestEndpoints_RejectInvalidCell(t *testing.T) {
	h := newHarness(t, withBlankMap(3, 3), withWalls(pt(1, 1)))
	require.NoError(t, h.c.ToggleMode())
	err := h.c.SetStart(pt(1, 1))
	require.ErrorIs(t, err, finder.ErrInvalidEndpoints)
	assert.False(t, h.c.Selection().HasStart)
}

func TestStep_StaleSnapshotAutoResets(t *testing.T) {
	h := newHarness(t, withBlankMap(5, 5))
	h.find(pt(0, 0), pt(4, 4))
	_, err := h.c.Step()
	require.NoError(t, err)
	_, err = h.c.Step()
	require.NoError(t, err)
	require.Equal(t, 2, h.c.Steps())

	require.NoError(t, h.c.grid.SetCell(pt(2, 2), gridmap.Invalid()))
	_, err = h.c.Step()
	require.NoError(t, err)
	assert.Equal(t, 1, h.c.Steps(), "the edit forced a reset before stepping")
}

func TestSetStart_ResetsPhaseToIdle(t *testing.T) {
	h := newHarness(t, withBlankMap(5, 5))
	h.find(pt(0, 0), pt(4, 4))
	require.NoError(t, h.c.FinishNow(h.ctx, nil))
	require.Equal(t, FindDone, h.c.Mode())

	require.NoError(t, h.click(pt(1, 1), false))
	assert.Equal(t, FindIdle, h.c.Mode())
	assert.Equal(t, 0, h.c.Steps())
	assert.Equal(t, pt(1, 1), h.c.Selection().Start)
}

func TestWheelZoom_KeepsCellUnderCursor(t *testing.T) {
	h := newHarness(t, withBlankMap(10, 10))
	x, y := h.screen(pt(5, 5))
	before := h.c.View().Zoom()

	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: Wheel, X: x, Y: y, WheelY: 1}))
	assert.Greater(t, h.c.View().Zoom(), before)
	p, ok := h.c.View().ScreenToGrid(x, y)
	require.True(t, ok)
	assert.Equal(t, pt(5, 5), p)

	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: Wheel, X: x + 3, Y: y - 2, WheelY: -3}))
	p, _ = h.c.View().ScreenToGrid(x+3, y-2)
	assert.Equal(t, pt(5, 5), p)
}

func TestCtrlDrag_PansWithoutPainting(t *testing.T) {
	h := newHarness(t, withBlankMap(5, 5))
	require.NoError(t, h.c.SelectTool(gridmap.Invalid()))
	rev := h.c.Map().Revision()
	before := h.c.View().State()

	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: PointerDown, X: 100, Y: 100, Ctrl: true}))
	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: PointerMove, X: 130, Y: 90, Ctrl: true}))
	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: PointerUp, X: 130, Y: 90, Ctrl: true}))

	after := h.c.View().State()
	assert.InDelta(t, before.OriginX+30, after.OriginX, 1e-9)
	assert.InDelta(t, before.OriginY-10, after.OriginY, 1e-9)
	assert.Equal(t, rev, h.c.Map().Revision())
}

func TestSaveLoadClear(t *testing.T) {
	store := storage.NewMemoryStore()
	h := newHarness(t, withStore(store))
	require.NoError(t, h.c.LoadBackground(encodePNG(t, 30, 20)))
	require.NoError(t, h.c.ConfirmSize())
	require.NoError(t, h.c.AutoFill())
	require.NoError(t, h.c.Save(h.ctx))
	saved := h.c.Map().Clone()

	require.NoError(t, h.c.PaintAt(pt(0, 0)))
	require.NoError(t, h.c.Load(h.ctx))
	assert.True(t, saved.Equal(h.c.Map()), "load reverts to the saved map")

	next := newHarness(t, withStore(store))
	assert.Equal(t, EditPaintingCells, next.c.Mode(), "a saved map skips background selection")
	assert.True(t, saved.Equal(next.c.Map()))
	require.NotNil(t, next.c.Background())
	assert.Equal(t, 30, next.c.Background().Width())

	require.NoError(t, next.c.ClearStorage(next.ctx))
	fresh := newHarness(t, withStore(store))
	assert.Equal(t, EditChoosingBackground, fresh.c.Mode())
}

func TestSave_WithoutStore(t *testing.T) {
	h := newHarness(t, withBlankMap(2, 2), withOptions(WithStore(nil)))
	require.ErrorIs(t, h.c.Save(h.ctx), storage.ErrStorage)
}

// failingStore rejects writes to one key.
type failingStore struct {
	storage.Store
	failKey string
}

func (s *failingStore) Save(ctx context.Context, key string, data []byte) error {
	if key == s.failKey {
		return fmt.Errorf("%w: disk full", storage.ErrStorage)
	}
	return s.Store.Save(ctx, key, data)
}

func TestSave_FailedWriteKeepsStoredPair(t *testing.T) {
	mem := storage.NewMemoryStore()
	store := &failingStore{Store: mem}
	h := newHarness(t, withStore(store))
	require.NoError(t, h.c.LoadBackground(encodePNG(t, 30, 20)))
	require.NoError(t, h.c.ConfirmSize())
	require.NoError(t, h.c.Save(h.ctx))
	wantMap, _, _ := mem.Load(h.ctx, storage.KeyMap)
	wantBG, _, _ := mem.Load(h.ctx, storage.KeyBackground)

	require.NoError(t, h.c.DropBackground(encodePNG(t, 60, 10)))
	require.NoError(t, h.c.ConfirmSize())

	for _, key := range []string{storage.KeyMap, storage.KeyBackground} {
		store.failKey = key
		require.ErrorIs(t, h.c.Save(h.ctx), storage.ErrStorage, "failing %s", key)
		gotMap, _, err := mem.Load(h.ctx, storage.KeyMap)
		require.NoError(t, err)
		gotBG, _, err := mem.Load(h.ctx, storage.KeyBackground)
		require.NoError(t, err)
		assert.Equal(t, wantMap, gotMap, "failing %s", key)
		assert.Equal(t, wantBG, gotBG, "failing %s", key)
	}
}

func TestDropBackground_DecodeFailureKeepsState(t *testing.T) {
	h := newHarness(t, withBlankMap(3, 3), withWalls(pt(1, 1)))
	before := h.c.Map().Clone()
	truncated := encodePNG(t, 40, 20)[:40]

	err := h.c.DropBackground(truncated)
	require.ErrorIs(t, err, imagedec.ErrDecode)
	assert.Equal(t, EditPaintingCells, h.c.Mode())
	assert.True(t, before.Equal(h.c.Map()))
	assert.Nil(t, h.c.Background())
	last, ok := h.c.Notices().Last()
	require.True(t, ok)
	assert.Equal(t, LevelError, last.Level)

	require.NoError(t, h.c.DropBackground(encodePNG(t, 40, 20)))
	assert.Equal(t, EditSizingGrid, h.c.Mode())
	assert.Equal(t, 2, h.c.Map().Rows())
	assert.Equal(t, 4, h.c.Map().Cols())
}

func TestBegin_OversizedSaveIsRejected(t *testing.T) {
	for name, data := range map[string]string{
		"overflowing": `{"version":1,"rows":4294967296,"cols":4294967296,"cells":[]}`,
		"oversized":   `{"version":1,"rows":1000000,"cols":1000000,"cells":[]}`,
		"mismatched":  `{"version":1,"rows":2,"cols":2,"cells":[{"k":"normal"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			require.NoError(t, store.Save(context.Background(), storage.KeyMap, []byte(data)))

			h := newHarness(t, withStore(store))
			assert.Equal(t, EditChoosingBackground, h.c.Mode())
			assert.Nil(t, h.c.Map())
			last, ok := h.c.Notices().Last()
			require.True(t, ok)
			assert.Contains(t, last.Message, "corrupt map data")
		})
	}
}

func TestLoad_CorruptSaveKeepsMap(t *testing.T) {
	store := storage.NewMemoryStore()
	h := newHarness(t, withStore(store), withBlankMap(3, 3), withWalls(pt(0, 2)))
	before := h.c.Map().Clone()
	require.NoError(t, store.Save(h.ctx, storage.KeyMap, []byte(`{"version":1,"rows":-1,"cols":5,"cells":[]}`)))

	require.ErrorIs(t, h.c.Load(h.ctx), gridmap.ErrCorrupt)
	assert.Equal(t, EditPaintingCells, h.c.Mode())
	assert.True(t, before.Equal(h.c.Map()))
}

func TestLoadMaze_PreselectsEndpoints(t *testing.T) {
	h := newHarness(t, withConfig(func(c *config.Config) {
		c.Maze = config.MazeConfig{Rows: 11, Cols: 15, Seed: 7, PixelsPerCell: 4}
	}))
	require.NoError(t, h.key("Z"))
	assert.Equal(t, EditSizingGrid, h.c.Mode())
	assert.Equal(t, 44, h.c.Background().Height())

	require.NoError(t, h.key("Enter"))
	require.NoError(t, h.key("Tab"))
	assert.Equal(t, FindIdle, h.c.Mode())
	assert.True(t, h.c.CanStep())

	require.NoError(t, h.c.FinishNow(h.ctx, nil))
	assert.Equal(t, pathfind.Found, h.c.Overlay().Result)
}

func TestPresets_LoadAndCycle(t *testing.T) {
	catalog, err := presets.Discover(fstest.MapFS{
		"floor.png": {Data: encodePNG(t, 20, 20)},
	}, "*.png")
	require.NoError(t, err)
	h := newHarness(t, withOptions(WithPresets(catalog)), withConfig(func(c *config.Config) {
		c.Maze = config.MazeConfig{Rows: 5, Cols: 5, Seed: 1, PixelsPerCell: 2}
	}))

	require.NoError(t, h.c.LoadPreset("floor"))
	assert.Equal(t, 2, h.c.Map().Rows())

	require.NoError(t, h.c.ChangeBackground())
	require.NoError(t, h.c.NextPreset())
	assert.Equal(t, 5, h.c.Map().Rows(), "the preset after floor wraps to the maze")

	require.NoError(t, h.c.ChangeBackground())
	require.ErrorIs(t, h.c.LoadPreset("nope"), presets.ErrUnknownPreset)
}

func TestKeybindings_DriveActions(t *testing.T) {
	h := newHarness(t, withBlankMap(3, 3))
	require.NoError(t, h.key("Digit4"))
	assert.Equal(t, gridmap.KindOneWay, h.c.Selection().Tool.Kind)
	require.NoError(t, h.key("O"))
	assert.Equal(t, gridmap.DirDown, h.c.Selection().Tool.Direction)

	grid := h.c.Display().DrawGrid
	require.NoError(t, h.key("G"))
	assert.Equal(t, !grid, h.c.Display().DrawGrid)

	require.NoError(t, h.key("Tab"))
	assert.Equal(t, FindIdle, h.c.Mode())
	require.ErrorIs(t, h.key("Space"), ErrPrecondition)
	require.NoError(t, h.key("unbound"))
}

func TestCopyActions(t *testing.T) {
	h := newHarness(t, withBlankMap(3, 3))
	x, y := h.screen(pt(1, 2))
	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: PointerMove, X: x, Y: y}))
	require.NoError(t, h.key("C"))
	require.NoError(t, h.key("M"))

	require.Len(t, h.clip, 2)
	assert.Equal(t, "(1,2) normal cost=1", h.clip[0])
	m, err := gridmap.Unmarshal([]byte(h.clip[1]))
	require.NoError(t, err)
	assert.True(t, m.Equal(h.c.Map()))
}

func TestFrame_ReflectsMode(t *testing.T) {
	h := newHarness(t, withBlankMap(5, 5))
	x, y := h.screen(pt(2, 2))
	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: PointerMove, X: x, Y: y}))
	f := h.c.Frame()
	assert.True(t, f.ShowNeighbors)
	assert.Equal(t, pt(2, 2), f.Hover.Point)
	assert.False(t, f.Start.Set)

	h.find(pt(0, 0), pt(4, 4))
	_, err := h.c.Step()
	require.NoError(t, err)
	x, y = h.screen(pt(0, 0))
	require.NoError(t, h.c.Handle(h.ctx, Event{Kind: PointerMove, X: x, Y: y}))
	f = h.c.Frame()
	assert.False(t, f.ShowNeighbors)
	assert.Equal(t, pt(0, 0), f.Start.Point)
	assert.Equal(t, pt(4, 4), f.Goal.Point)
	assert.NotEmpty(t, f.Overlay.Visited)
	assert.Equal(t, "(0,0) normal cost=1 visited g=0", h.c.HoverText())
	assert.Contains(t, h.c.Status(), "find(stepping)")
}
