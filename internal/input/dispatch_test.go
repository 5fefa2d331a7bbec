package input

import (
	"math/rand"
	"testing"
	"time"
)

func TestMouseDownSetsButtonState(t *testing.T) {
	st := State{}
	rec := Handle(MouseDown{Button: ButtonLeft, X: 10, Y: 20}, &st)

	if !st.MouseDown {
		t.Error("MouseDown should set state.MouseDown")
	}
	want := Record{Kind: KindMouseDown, Button: ButtonLeft, X: 10, Y: 20}
	if rec != want {
		t.Errorf("Handle() = %+v, expected %+v", rec, want)
	}
}

func TestMouseMoveWhileDown(t *testing.T) {
	st := State{CursorX: 1, CursorY: 2, MouseDown: true}
	Handle(MouseMove{X: 50, Y: 60, DX: 5, DY: 5}, &st)

	if st.CursorX != 50 || st.CursorY != 60 {
		t.Errorf("cursor = (%v, %v), expected (50, 60)", st.CursorX, st.CursorY)
	}
}

func TestMouseMoveWhileUp(t *testing.T) {
	st := State{CursorX: 1, CursorY: 2}
	rec := Handle(MouseMove{X: 50, Y: 60, DX: 5, DY: 5}, &st)

	if st.CursorX != 1 || st.CursorY != 2 {
		t.Errorf("cursor moved to (%v, %v) with no button held", st.CursorX, st.CursorY)
	}
	want := Record{Kind: KindMouseMove, X: 50, Y: 60, DX: 5, DY: 5}
	if rec != want {
		t.Errorf("Handle() = %+v, expected %+v", rec, want)
	}
}

func TestMouseMoveUsesAbsolutePosition(t *testing.T) {
	st := State{MouseDown: true}
	Handle(MouseMove{X: 10, Y: 10, DX: 10, DY: 10}, &st)
	Handle(MouseMove{X: 12, Y: 9, DX: 2, DY: -1}, &st)

	if st.CursorX != 12 || st.CursorY != 9 {
		t.Errorf("cursor = (%v, %v), expected (12, 9)", st.CursorX, st.CursorY)
	}
}

func TestKeyDownPassesThrough(t *testing.T) {
	st := DefaultState()
	before := st
	key := KeyInput{Code: "A", Mods: ModShift}
	rec := Handle(KeyDown{Key: key, Repeat: false}, &st)

	if st != before {
		t.Errorf("KeyDown mutated state: %+v", st)
	}
	if rec.Kind != KindKeyDown || rec.Key != key || rec.Repeat {
		t.Errorf("Handle() = %+v, expected pass-through of %+v", rec, key)
	}
	if !rec.Key.Mods.Contain(ModShift) {
		t.Error("shift modifier lost")
	}
}

func TestKeyUpIdempotent(t *testing.T) {
	st := DefaultState()
	ev := KeyUp{Meta: Meta{Time: time.Unix(10, 0), Device: "kbd"}, Key: KeyInput{Code: KeyEscape}}

	first := Handle(ev, &st)
	second := Handle(ev, &st)

	if first != second {
		t.Errorf("records differ: %+v vs %+v", first, second)
	}
	if st != DefaultState() {
		t.Errorf("KeyUp mutated state: %+v", st)
	}
}

func TestHandleCopiesMeta(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st := State{}
	rec := Handle(FocusChanged{Meta: Meta{Time: at, Device: "tty"}, Gained: true}, &st)

	if !rec.Time.Equal(at) || rec.Device != "tty" {
		t.Errorf("meta not copied: %+v", rec)
	}
	if !rec.Gained {
		t.Error("Gained not copied")
	}
}

func TestStatelessVariants(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want Record
	}{
		{"wheel", MouseWheel{X: 0, Y: -1}, Record{Kind: KindMouseWheel, Y: -1}},
		{"text", TextInput{Char: 'x'}, Record{Kind: KindTextInput, Char: 'x'}},
		{"pad down", GamepadButtonDown{Button: PadSouth, Pad: 1}, Record{Kind: KindGamepadButtonDown, PadButton: PadSouth, Pad: 1}},
		{"pad up", GamepadButtonUp{Button: PadStart}, Record{Kind: KindGamepadButtonUp, PadButton: PadStart}},
		{"axis", GamepadAxis{Axis: PadLeftStickX, Value: 0.5, Pad: 2}, Record{Kind: KindGamepadAxis, Axis: PadLeftStickX, Value: 0.5, Pad: 2}},
		{"focus lost", FocusChanged{Gained: false}, Record{Kind: KindFocusChanged}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := State{CursorX: 3, CursorY: 4, MouseDown: true}
			before := st
			rec := Handle(tc.ev, &st)
			if rec != tc.want {
				t.Errorf("Handle() = %+v, expected %+v", rec, tc.want)
			}
			if st != before {
				t.Errorf("state changed to %+v", st)
			}
		})
	}
}

// The button flag must follow the Up/Down state machine for any sequence
// of presses, releases and moves.
func TestMouseButtonStateMachine(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		st := DefaultState()
		down := false
		var lastX, lastY float32 = st.CursorX, st.CursorY

		for i := 0; i < 50; i++ {
			x, y := float32(rng.Intn(100)), float32(rng.Intn(100))
			switch rng.Intn(3) {
			case 0:
				Handle(MouseDown{Button: ButtonLeft, X: x, Y: y}, &st)
				down = true
			case 1:
				Handle(MouseUp{Button: ButtonLeft, X: x, Y: y}, &st)
				down = false
			case 2:
				Handle(MouseMove{X: x, Y: y}, &st)
				if down {
					lastX, lastY = x, y
				}
			}

			if st.MouseDown != down {
				t.Fatalf("run %d step %d: MouseDown = %v, expected %v", run, i, st.MouseDown, down)
			}
			if st.CursorX != lastX || st.CursorY != lastY {
				t.Fatalf("run %d step %d: cursor = (%v, %v), expected (%v, %v)",
					run, i, st.CursorX, st.CursorY, lastX, lastY)
			}
		}
	}
}

func TestStoreDispatch(t *testing.T) {
	s := NewStore(DefaultState())

	if got := s.Get(); got.CursorX != 100 || got.CursorY != 100 || got.MouseDown {
		t.Fatalf("initial state = %+v", got)
	}

	s.Dispatch(MouseDown{Button: ButtonRight, X: 5, Y: 6})
	s.Dispatch(MouseMove{X: 7, Y: 8, DX: 2, DY: 2})
	snap := s.Get()
	s.Dispatch(MouseUp{Button: ButtonRight, X: 7, Y: 8})

	if !snap.MouseDown || snap.CursorX != 7 || snap.CursorY != 8 {
		t.Errorf("snapshot = %+v", snap)
	}
	if s.Get().MouseDown {
		t.Error("MouseUp should release the button")
	}
}
