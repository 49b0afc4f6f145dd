// Package finder drives a step-wise solver against a snapshot of the grid.
package finder

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Garsondee/gridfind/internal/gridmap"
	"github.com/Garsondee/gridfind/internal/pathfind"
)

var (
	// ErrInvalidEndpoints is returned by Reset when start or goal is out of
	// bounds or sits on an Invalid cell.
	ErrInvalidEndpoints = errors.New("invalid endpoints")
	// ErrNotReady is returned by Step and Finish before a successful Reset.
	ErrNotReady = errors.New("solver not reset")
	// ErrStepLimit is returned when a solver runs past rows*cols steps
	// without finishing.
	ErrStepLimit = errors.New("solver exceeded step limit")
)

// Solver is a resumable search over a read-only grid snapshot.
type Solver interface {
	// Step advances the search by one unit. It returns false once done.
	Step() bool
	Done() bool
	Path() []gridmap.Point
	Overlay() pathfind.Overlay
}

// Factory builds a solver for a snapshot.
type Factory func(snapshot *gridmap.GridMap, start, goal gridmap.Point) (Solver, error)

// DefaultFactory builds the Dijkstra solver.
func DefaultFactory(snapshot *gridmap.GridMap, start, goal gridmap.Point) (Solver, error) {
	return pathfind.New(snapshot, start, goal), nil
}

// StepResult reports what a single Step did.
type StepResult struct {
	Advanced bool
	Done     bool
}

// Driver owns the live search. It never mutates the map it was reset from;
// the solver only ever sees a private clone.
type Driver struct {
	factory Factory
	log     zerolog.Logger

	solver   Solver
	snapshot *gridmap.GridMap
	revision uint64
	start    gridmap.Point
	goal     gridmap.Point
	steps    int
	calls    int
	limit    int
	task     *FinishTask
}

// NewDriver creates a driver using factory, or DefaultFactory when nil.
func NewDriver(factory Factory, log zerolog.Logger) *Driver {
	if factory == nil {
		factory = DefaultFactory
	}
	return &Driver{factory: factory, log: log}
}

// ValidateEndpoints checks that start and goal are usable on m.
func ValidateEndpoints(m *gridmap.GridMap, start, goal gridmap.Point) error {
	for _, p := range [2]gridmap.Point{start, goal} {
		if !m.InBounds(p) {
			return fmt.Errorf("%w: %s outside %dx%d map", ErrInvalidEndpoints, p, m.Rows(), m.Cols())
		}
		if !m.CellAt(p).Passable() {
			return fmt.Errorf("%w: %s is an invalid cell", ErrInvalidEndpoints, p)
		}
	}
	return nil
}

// Reset discards any running search and starts a new one on a fresh snapshot
// of m. On failure the driver is left discarded.
func (d *Driver) Reset(m *gridmap.GridMap, start, goal gridmap.Point) error {
	d.Discard()
	if m == nil {
		return fmt.Errorf("%w: no map", ErrInvalidEndpoints)
	}
	if err := ValidateEndpoints(m, start, goal); err != nil {
		return err
	}
	snap := m.Clone()
	s, err := d.factory(snap, start, goal)
	if err != nil {
		return fmt.Errorf("create solver: %w", err)
	}
	d.solver = s
	d.snapshot = snap
	d.revision = m.Revision()
	d.start, d.goal = start, goal
	d.limit = m.Len()
	d.log.Debug().
		Stringer("start", start).
		Stringer("goal", goal).
		Int("cells", d.limit).
		Msg("solver reset")
	return nil
}

// Discard drops the search and cancels any in-flight Finish.
func (d *Driver) Discard() {
	if d.task != nil {
		d.task.Cancel()
		d.task = nil
	}
	d.solver = nil
	d.snapshot = nil
	d.steps = 0
	d.calls = 0
	d.limit = 0
}

// Ready reports whether a search exists.
func (d *Driver) Ready() bool { return d.solver != nil }

// Stale reports whether the map has changed since the last Reset.
func (d *Driver) Stale(revision uint64) bool {
	return d.solver != nil && revision != d.revision
}

// Endpoints returns the endpoints of the current search.
func (d *Driver) Endpoints() (start, goal gridmap.Point) { return d.start, d.goal }

// Done reports whether the current search has finished.
func (d *Driver) Done() bool { return d.solver != nil && d.solver.Done() }

// Steps returns the number of steps that advanced the search.
func (d *Driver) Steps() int { return d.steps }

// Step advances the search once. Once done it is a no-op returning
// {Advanced: false, Done: true}.
func (d *Driver) Step() (StepResult, error) {
	if d.solver == nil {
		return StepResult{}, ErrNotReady
	}
	if d.solver.Done() {
		return StepResult{Advanced: false, Done: true}, nil
	}
	if d.calls >= d.limit {
		return StepResult{}, fmt.Errorf("%w: %d steps on %d cells", ErrStepLimit, d.calls, d.limit)
	}
	d.calls++
	advanced := d.solver.Step()
	if advanced {
		d.steps++
	}
	done := d.solver.Done()
	if done {
		d.log.Debug().Int("steps", d.steps).Int("path_len", len(d.solver.Path())).Msg("solver done")
	}
	return StepResult{Advanced: advanced, Done: done}, nil
}

// Path returns the solver's current path, or nil before Reset.
func (d *Driver) Path() []gridmap.Point {
	if d.solver == nil {
		return nil
	}
	return d.solver.Path()
}

// Overlay returns the debug overlay, or the zero overlay before Reset.
func (d *Driver) Overlay() pathfind.Overlay {
	if d.solver == nil {
		return pathfind.Overlay{}
	}
	return d.solver.Overlay()
}

// Finish starts a sliced run to completion. Any previous task is cancelled.
func (d *Driver) Finish(slice int) (*FinishTask, error) {
	if d.solver == nil {
		return nil, ErrNotReady
	}
	if d.task != nil {
		d.task.Cancel()
	}
	if slice <= 0 {
		slice = DefaultSliceSize
	}
	d.task = &FinishTask{driver: d, slice: slice}
	return d.task, nil
}

// Task returns the in-flight Finish, if any.
func (d *Driver) Task() *FinishTask { return d.task }
