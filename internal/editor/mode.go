package editor

// Kind is the top-level interaction mode.
type Kind uint8

const (
	KindSetup Kind = iota + 1
	KindEdit
	KindFind
)

func (k Kind) String() string {
	switch k {
	case KindSetup:
		return "setup"
	case KindEdit:
		return "edit"
	case KindFind:
		return "find"
	default:
		return "none"
	}
}

// Phase refines a Kind. Edit and Find have their own phases; Setup has none.
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseChoosingBackground
	PhaseSizingGrid
	PhasePaintingCells
	PhaseIdle
	PhaseStepping
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseChoosingBackground:
		return "choosing background"
	case PhaseSizingGrid:
		return "sizing grid"
	case PhasePaintingCells:
		return "painting cells"
	case PhaseIdle:
		return "idle"
	case PhaseStepping:
		return "stepping"
	case PhaseDone:
		return "done"
	default:
		return ""
	}
}

// Mode is the active (kind, phase) pair. Exactly one is active at a time.
type Mode struct {
	Kind  Kind
	Phase Phase
}

// The reachable modes.
var (
	Setup                  = Mode{KindSetup, PhaseNone}
	EditChoosingBackground = Mode{KindEdit, PhaseChoosingBackground}
	EditSizingGrid         = Mode{KindEdit, PhaseSizingGrid}
	EditPaintingCells      = Mode{KindEdit, PhasePaintingCells}
	FindIdle               = Mode{KindFind, PhaseIdle}
	FindStepping           = Mode{KindFind, PhaseStepping}
	FindDone               = Mode{KindFind, PhaseDone}
)

var (
	editModes = []Mode{EditChoosingBackground, EditSizingGrid, EditPaintingCells}
	findModes = []Mode{FindIdle, FindStepping, FindDone}
	allModes  = append(append([]Mode{Setup}, editModes...), findModes...)
)

// IsEdit reports whether m is any Edit phase.
func (m Mode) IsEdit() bool { return m.Kind == KindEdit }

// IsFind reports whether m is any Find phase.
func (m Mode) IsFind() bool { return m.Kind == KindFind }

func (m Mode) String() string {
	if m.Phase == PhaseNone {
		return m.Kind.String()
	}
	return m.Kind.String() + "(" + m.Phase.String() + ")"
}
