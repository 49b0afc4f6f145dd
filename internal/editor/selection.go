package editor

import "github.com/Garsondee/gridfind/internal/gridmap"

// LinkPhase is the state of the two-click one-way target capture.
type LinkPhase uint8

const (
	LinkIdle LinkPhase = iota
	LinkAwaitingSource
	LinkAwaitingTarget
)

func (p LinkPhase) String() string {
	switch p {
	case LinkAwaitingSource:
		return "awaiting source"
	case LinkAwaitingTarget:
		return "awaiting target"
	default:
		return "idle"
	}
}

// LinkCapture is Idle -> AwaitingSource -> AwaitingTarget(source) -> Idle.
type LinkCapture struct {
	phase  LinkPhase
	source gridmap.Point
}

// Arm starts a capture, discarding any pending source.
func (l *LinkCapture) Arm() {
	l.phase = LinkAwaitingSource
	l.source = gridmap.Point{}
}

// Cancel returns to Idle.
func (l *LinkCapture) Cancel() {
	l.phase = LinkIdle
	l.source = gridmap.Point{}
}

// Phase returns the capture state.
func (l LinkCapture) Phase() LinkPhase { return l.phase }

// Armed reports whether a capture is in progress.
func (l LinkCapture) Armed() bool { return l.phase != LinkIdle }

// Source returns the pending source cell while awaiting a target.
func (l LinkCapture) Source() (gridmap.Point, bool) {
	return l.source, l.phase == LinkAwaitingTarget
}

func (l *LinkCapture) awaitTarget(src gridmap.Point) {
	l.phase = LinkAwaitingTarget
	l.source = src
}

// dragKind says what a pointer drag is doing.
type dragKind uint8

const (
	dragNone dragKind = iota
	dragPan
	dragStroke
	dragRect
)

// Selection is the editor's ephemeral state. It is reset whenever a map is
// (re)loaded.
type Selection struct {
	// Tool is the cell painted by a click in Edit(PaintingCells).
	Tool gridmap.Cell
	Link LinkCapture

	Start, Goal       gridmap.Point
	HasStart, HasGoal bool

	Hover    gridmap.Point
	HasHover bool

	// PickColor arms colour-pick auto-fill: the next click samples the
	// background colour that means "free".
	PickColor bool

	drag         dragKind
	lastX, lastY float64
	rectA, rectB gridmap.Point
	lastPainted  gridmap.Point
	strokeCell   gridmap.Cell
}

// DefaultTool is the paint tool selected on a fresh session.
func DefaultTool() gridmap.Cell { return gridmap.Normal(1) }

func newSelection() Selection {
	return Selection{Tool: DefaultTool()}
}

// reset clears everything except the armed tool.
func (s *Selection) reset() {
	*s = Selection{Tool: s.Tool}
}

// EndDrag abandons any drag gesture.
func (s *Selection) EndDrag() { s.drag = dragNone }

// Dragging reports whether a pointer drag is in progress.
func (s *Selection) Dragging() bool { return s.drag != dragNone }

// Rect returns the corners of a rectangle drag in progress.
func (s *Selection) Rect() (a, b gridmap.Point, ok bool) {
	return s.rectA, s.rectB, s.drag == dragRect
}

// ClearEndpoints unsets start and goal.
func (s *Selection) ClearEndpoints() {
	s.HasStart, s.HasGoal = false, false
	s.Start, s.Goal = gridmap.Point{}, gridmap.Point{}
}
