// Package gridmap holds the editable grid: its dimensions, per-cell traversal
// semantics, background scale and the versioned on-disk format.
package gridmap

import (
	"fmt"
	"math"
	"strings"
)

// DefaultPixelsPerCell is the background scale of a freshly created map.
const DefaultPixelsPerCell = 1.0

// MaxDimension bounds rows and cols of any map.
const MaxDimension = 4096

// GridMap is a rows×cols grid of cells stored row-major: index = row*cols + col.
//
// Every mutation bumps Revision so readers holding a snapshot can tell when
// the map they cloned has gone stale.
type GridMap struct {
	rows          int
	cols          int
	cells         []Cell
	pixelsPerCell float64
	revision      uint64
}

// New creates a rows×cols map with every cell Invalid.
func New(rows, cols int) (*GridMap, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, err
	}
	return &GridMap{
		rows:          rows,
		cols:          cols,
		cells:         make([]Cell, rows*cols),
		pixelsPerCell: DefaultPixelsPerCell,
	}, nil
}

func checkDims(rows, cols int) error {
	if rows <= 0 || cols <= 0 || rows > MaxDimension || cols > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	return nil
}

// NewFilled creates a rows×cols map with every cell set to fill.
func NewFilled(rows, cols int, fill Cell) (*GridMap, error) {
	m, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	if fill.Kind == KindOneWay && fill.Linked {
		return nil, fmt.Errorf("%w: fill cell cannot carry a target", ErrInvalidCell)
	}
	if err := validateCost(fill); err != nil {
		return nil, err
	}
	for i := range m.cells {
		m.cells[i] = fill
	}
	return m, nil
}

func (m *GridMap) Rows() int { return m.rows }
func (m *GridMap) Cols() int { return m.cols }

// Len returns rows*cols.
func (m *GridMap) Len() int { return len(m.cells) }

// Revision increases on every mutation.
func (m *GridMap) Revision() uint64 { return m.revision }

// PixelsPerCell is the background scale: how many image pixels one cell covers.
func (m *GridMap) PixelsPerCell() float64 { return m.pixelsPerCell }

// SetPixelsPerCell changes the background scale. Non-positive or non-finite
// values are rejected.
func (m *GridMap) SetPixelsPerCell(ppc float64) error {
	if !(ppc > 0) || math.IsInf(ppc, 0) {
		return fmt.Errorf("%w: pixels per cell %v", ErrInvalidDimensions, ppc)
	}
	m.pixelsPerCell = ppc
	m.revision++
	return nil
}

// InBounds reports whether p addresses a cell of the map.
func (m *GridMap) InBounds(p Point) bool {
	return p.Row >= 0 && p.Row < m.rows && p.Col >= 0 && p.Col < m.cols
}

// Index returns the row-major index of p. p must be in bounds.
func (m *GridMap) Index(p Point) int { return p.Row*m.cols + p.Col }

// PointAt is the inverse of Index.
func (m *GridMap) PointAt(i int) Point { return Point{Row: i / m.cols, Col: i % m.cols} }

// CellAt returns the cell at p, or an Invalid cell when p is out of bounds.
func (m *GridMap) CellAt(p Point) Cell {
	if !m.InBounds(p) {
		return Invalid()
	}
	return m.cells[m.Index(p)]
}

// Cells returns a copy of the row-major cell sequence.
func (m *GridMap) Cells() []Cell {
	out := make([]Cell, len(m.cells))
	copy(out, m.cells)
	return out
}

// SetCell replaces the cell at p after validating it against the map.
func (m *GridMap) SetCell(p Point, c Cell) error {
	if !m.InBounds(p) {
		return fmt.Errorf("set cell %s on %dx%d map: %w", p, m.rows, m.cols, ErrOutOfBounds)
	}
	if err := m.validate(p, c); err != nil {
		return err
	}
	m.cells[m.Index(p)] = c
	m.revision++
	return nil
}

// FillRect sets every cell in the inclusive rectangle spanned by a and b.
// Out-of-bounds parts of the rectangle are clipped.
func (m *GridMap) FillRect(a, b Point, c Cell) error {
	if c.Linked {
		return fmt.Errorf("%w: rectangle fill cannot carry a target", ErrInvalidCell)
	}
	if err := validateCost(c); err != nil {
		return err
	}
	r0, r1 := max(0, min(a.Row, b.Row)), min(m.rows-1, max(a.Row, b.Row))
	c0, c1 := max(0, min(a.Col, b.Col)), min(m.cols-1, max(a.Col, b.Col))
	if r0 > r1 || c0 > c1 {
		return fmt.Errorf("fill %s..%s: %w", a, b, ErrOutOfBounds)
	}
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			m.cells[row*m.cols+col] = c
		}
	}
	m.revision++
	return nil
}

func validateCost(c Cell) error {
	if c.Kind == KindInvalid {
		return nil
	}
	if !(c.Cost > 0) || math.IsInf(c.Cost, 0) {
		return fmt.Errorf("%w: cost %v must be positive", ErrInvalidCell, c.Cost)
	}
	if c.Kind == KindOneWay && c.Direction > DirRight {
		return fmt.Errorf("%w: direction %d", ErrInvalidCell, c.Direction)
	}
	return nil
}

func (m *GridMap) validate(p Point, c Cell) error {
	if c.Kind > KindOneWay {
		return fmt.Errorf("%w: kind %d", ErrInvalidCell, c.Kind)
	}
	if err := validateCost(c); err != nil {
		return err
	}
	if t, ok := c.TargetPoint(); ok {
		if !m.InBounds(t) {
			return fmt.Errorf("%w: target %s outside %dx%d map", ErrInvalidCell, t, m.rows, m.cols)
		}
		if t == p {
			return fmt.Errorf("%w: cell %s cannot target itself", ErrInvalidCell, p)
		}
	}
	return nil
}

// Resize reallocates the map to rows×cols. Cells keep their (row, col)
// position; cells that fall outside are dropped and new cells are Invalid.
// One-way targets that no longer fit are unlinked.
func (m *GridMap) Resize(rows, cols int) error {
	if err := checkDims(rows, cols); err != nil {
		return err
	}
	cells := make([]Cell, rows*cols)
	for row := 0; row < min(m.rows, rows); row++ {
		for col := 0; col < min(m.cols, cols); col++ {
			c := m.cells[row*m.cols+col]
			if t, ok := c.TargetPoint(); ok && (t.Row >= rows || t.Col >= cols) {
				c = c.Unlinked()
			}
			cells[row*cols+col] = c
		}
	}
	m.rows, m.cols, m.cells = rows, cols, cells
	m.revision++
	return nil
}

// ResizeDoubling doubles both dimensions, keeping every existing cell at its
// original coordinates.
func (m *GridMap) ResizeDoubling() error {
	return m.Resize(2*m.rows, 2*m.cols)
}

// ScaleUp enlarges the map by factor, repeating each cell into a factor×factor
// block so the layout keeps its shape over the same background. One-way
// targets are moved to the top-left cell of their block.
func (m *GridMap) ScaleUp(factor int) error {
	if factor < 1 {
		return fmt.Errorf("%w: scale factor %d", ErrInvalidDimensions, factor)
	}
	if factor == 1 {
		return nil
	}
	if factor > MaxDimension {
		return fmt.Errorf("%w: scale factor %d", ErrInvalidDimensions, factor)
	}
	rows, cols := m.rows*factor, m.cols*factor
	if err := checkDims(rows, cols); err != nil {
		return err
	}
	cells := make([]Cell, rows*cols)
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			c := m.cells[row*m.cols+col]
			if t, ok := c.TargetPoint(); ok {
				c.Target = Point{Row: t.Row * factor, Col: t.Col * factor}
			}
			for r := 0; r < factor; r++ {
				for k := 0; k < factor; k++ {
					p := Point{Row: row*factor + r, Col: col*factor + k}
					cc := c
					if cc.Linked && cc.Target == p {
						cc = cc.Unlinked()
					}
					cells[p.Row*cols+p.Col] = cc
				}
			}
		}
	}
	m.rows, m.cols, m.cells = rows, cols, cells
	m.pixelsPerCell /= float64(factor)
	m.revision++
	return nil
}

// AutoScale resizes the map so each cell covers ppc×ppc pixels of a
// width×height background: rows = ⌊height/ppc⌋, cols = ⌊width/ppc⌋, both at
// least 1.
func (m *GridMap) AutoScale(width, height int, ppc float64) error {
	rows, cols, err := ScaledDims(width, height, ppc)
	if err != nil {
		return err
	}
	if err := m.Resize(rows, cols); err != nil {
		return err
	}
	return m.SetPixelsPerCell(ppc)
}

// ScaledDims computes the grid dimensions AutoScale would produce.
func ScaledDims(width, height int, ppc float64) (rows, cols int, err error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: image %dx%d", ErrInvalidDimensions, width, height)
	}
	if !(ppc > 0) || math.IsInf(ppc, 0) {
		return 0, 0, fmt.Errorf("%w: pixels per cell %v", ErrInvalidDimensions, ppc)
	}
	rows = max(1, int(math.Floor(float64(height)/ppc)))
	cols = max(1, int(math.Floor(float64(width)/ppc)))
	return rows, cols, nil
}

// Clone returns a deep copy. The copy starts at the same revision.
func (m *GridMap) Clone() *GridMap {
	out := *m
	out.cells = make([]Cell, len(m.cells))
	copy(out.cells, m.cells)
	return &out
}

// Equal reports whether two maps have the same dimensions, scale and cells.
func (m *GridMap) Equal(o *GridMap) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.rows != o.rows || m.cols != o.cols || m.pixelsPerCell != o.pixelsPerCell {
		return false
	}
	for i := range m.cells {
		if m.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Edge is one move available to the solver.
type Edge struct {
	To   Point
	Cost float64
}

// Neighbors returns the moves that leave p. The move cost is the cost of the
// cell being left. Normal cells reach their four orthogonal neighbours; a
// one-way cell reaches only the neighbour in its direction, plus its target
// when linked. Moves into Invalid or out-of-bounds cells are dropped.
func (m *GridMap) Neighbors(p Point) []Edge {
	c := m.CellAt(p)
	var out []Edge
	switch c.Kind {
	case KindNormal:
		out = make([]Edge, 0, 4)
		for _, d := range Directions {
			dr, dc := d.Offset()
			out = m.appendEdge(out, p.Add(dr, dc), c.Cost)
		}
	case KindOneWay:
		out = make([]Edge, 0, 2)
		dr, dc := c.Direction.Offset()
		out = m.appendEdge(out, p.Add(dr, dc), c.Cost)
		if t, ok := c.TargetPoint(); ok {
			out = m.appendEdge(out, t, c.Cost)
		}
	}
	return out
}

func (m *GridMap) appendEdge(out []Edge, to Point, cost float64) []Edge {
	if !m.InBounds(to) || !m.cells[m.Index(to)].Passable() {
		return out
	}
	return append(out, Edge{To: to, Cost: cost})
}

// String renders the map as text, one line per row.
func (m *GridMap) String() string {
	var sb strings.Builder
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			sb.WriteString(m.cells[row*m.cols+col].glyph())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
