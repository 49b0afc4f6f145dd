package gridmap

import "fmt"

// Point addresses one cell of the grid.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the point offset by (dr, dc).
func (p Point) Add(dr, dc int) Point {
	return Point{Row: p.Row + dr, Col: p.Col + dc}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Kind identifies the traversal semantics of a cell.
type Kind uint8

const (
	KindInvalid Kind = iota // impassable
	KindNormal              // traversable in all four directions
	KindOneWay              // traversable only along Direction
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNormal:
		return "normal"
	case KindOneWay:
		return "oneway"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Direction is the single exit of a one-way cell.
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Directions lists every direction in a stable order.
var Directions = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	}
	return 0, fmt.Errorf("%w: unknown direction %q", ErrInvalidCell, s)
}

// Offset returns the (row, col) step taken when leaving a cell in direction d.
func (d Direction) Offset() (dr, dc int) {
	switch d {
	case DirUp:
		return -1, 0
	case DirDown:
		return 1, 0
	case DirLeft:
		return 0, -1
	default:
		return 0, 1
	}
}

// Cell is one grid unit. The zero value is an Invalid cell.
//
// Cost applies to Normal and OneWay cells. Direction and Target only apply to
// OneWay cells; Target is meaningful only while Linked is set.
type Cell struct {
	Kind      Kind
	Cost      float64
	Direction Direction
	Target    Point
	Linked    bool
}

// Invalid returns an impassable cell.
func Invalid() Cell { return Cell{} }

// Normal returns a cell traversable at the given cost.
func Normal(cost float64) Cell { return Cell{Kind: KindNormal, Cost: cost} }

// OneWay returns a cell that may only be left in direction d.
func OneWay(d Direction, cost float64) Cell {
	return Cell{Kind: KindOneWay, Cost: cost, Direction: d}
}

// WithTarget returns a copy of a one-way cell linked to target.
// Linking replaces any previous target.
func (c Cell) WithTarget(target Point) Cell {
	c.Target = target
	c.Linked = true
	return c
}

// Unlinked returns a copy of c with its target cleared.
func (c Cell) Unlinked() Cell {
	c.Target = Point{}
	c.Linked = false
	return c
}

// Passable reports whether the solver may enter the cell.
func (c Cell) Passable() bool { return c.Kind != KindInvalid }

// TargetPoint returns the one-way target, if any.
func (c Cell) TargetPoint() (Point, bool) {
	if c.Kind != KindOneWay || !c.Linked {
		return Point{}, false
	}
	return c.Target, true
}

// Describe returns a one-line human readable description of the cell.
func (c Cell) Describe() string {
	switch c.Kind {
	case KindNormal:
		return fmt.Sprintf("normal cost=%g", c.Cost)
	case KindOneWay:
		if t, ok := c.TargetPoint(); ok {
			return fmt.Sprintf("oneway %s cost=%g target=%s", c.Direction, c.Cost, t)
		}
		return fmt.Sprintf("oneway %s cost=%g", c.Direction, c.Cost)
	default:
		return "invalid"
	}
}

// glyph renders the cell as a single character for text dumps.
func (c Cell) glyph() string {
	switch c.Kind {
	case KindInvalid:
		return "X"
	case KindNormal:
		if c.Cost == 1 {
			return " "
		}
		return "~"
	}
	linked := c.Linked
	switch c.Direction {
	case DirUp:
		if linked {
			return "↟"
		}
		return "↑"
	case DirDown:
		if linked {
			return "↡"
		}
		return "↓"
	case DirLeft:
		if linked {
			return "↞"
		}
		return "←"
	default:
		if linked {
			return "↠"
		}
		return "→"
	}
}
