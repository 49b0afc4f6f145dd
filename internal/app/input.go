package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/gridfind/internal/editor"
)

// buttons are the pointer buttons forwarded to the editor, indexed by
// editor.Button.
var buttons = [...]ebiten.MouseButton{
	editor.ButtonLeft:   ebiten.MouseButtonLeft,
	editor.ButtonRight:  ebiten.MouseButtonRight,
	editor.ButtonMiddle: ebiten.MouseButtonMiddle,
}

// inputState is one frame of polled input.
type inputState struct {
	X, Y    int
	Pressed [len(buttons)]bool
	WheelY  float64
	Ctrl    bool
	Shift   bool
	Keys    []string // keys that went down this frame
}

// pollInput reads the current ebiten input state.
func pollInput(keyBuf []ebiten.Key) (inputState, []ebiten.Key) {
	var s inputState
	s.X, s.Y = ebiten.CursorPosition()
	for i, b := range buttons {
		s.Pressed[i] = ebiten.IsMouseButtonPressed(b)
	}
	_, s.WheelY = ebiten.Wheel()
	s.Ctrl = ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	s.Shift = ebiten.IsKeyPressed(ebiten.KeyShift)
	keyBuf = inpututil.AppendJustPressedKeys(keyBuf[:0])
	for _, k := range keyBuf {
		s.Keys = append(s.Keys, k.String())
	}
	return s, keyBuf
}

// diffInput turns two consecutive input frames into editor events: a move
// first, then button edges, the wheel and key presses.
func diffInput(prev, cur inputState) []editor.Event {
	var out []editor.Event
	base := editor.Event{X: float64(cur.X), Y: float64(cur.Y), Ctrl: cur.Ctrl, Shift: cur.Shift}

	held := editor.ButtonLeft
	for i, down := range cur.Pressed {
		if down {
			held = editor.Button(i)
			break
		}
	}
	if cur.X != prev.X || cur.Y != prev.Y {
		ev := base
		ev.Kind, ev.Button = editor.PointerMove, held
		out = append(out, ev)
	}
	for i := range buttons {
		if cur.Pressed[i] == prev.Pressed[i] {
			continue
		}
		ev := base
		ev.Button = editor.Button(i)
		ev.Kind = editor.PointerUp
		if cur.Pressed[i] {
			ev.Kind = editor.PointerDown
		}
		out = append(out, ev)
	}
	if cur.WheelY != 0 {
		ev := base
		ev.Kind, ev.WheelY = editor.Wheel, cur.WheelY
		out = append(out, ev)
	}
	for _, k := range cur.Keys {
		ev := base
		ev.Kind, ev.Key = editor.KeyPress, k
		out = append(out, ev)
	}
	return out
}
