package input

import (
	"fmt"
	"time"
)

// Kind tells which event variant a Record was produced from.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindKeyDown
	KindKeyUp
	KindMouseDown
	KindMouseUp
	KindMouseMove
	KindMouseWheel
	KindTextInput
	KindGamepadButtonDown
	KindGamepadButtonUp
	KindGamepadAxis
	KindFocusChanged
)

var kindNames = [...]string{
	KindUnknown:           "unknown",
	KindKeyDown:           "key_down",
	KindKeyUp:             "key_up",
	KindMouseDown:         "mouse_down",
	KindMouseUp:           "mouse_up",
	KindMouseMove:         "mouse_move",
	KindMouseWheel:        "mouse_wheel",
	KindTextInput:         "text_input",
	KindGamepadButtonDown: "gamepad_button_down",
	KindGamepadButtonUp:   "gamepad_button_up",
	KindGamepadAxis:       "gamepad_axis",
	KindFocusChanged:      "focus_changed",
}

// String returns the snake_case kind name used in scripts and storage.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if i != int(KindUnknown) && name == s {
			return Kind(i), true
		}
	}
	return KindUnknown, false
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames)-1)
	for i := 1; i < len(kindNames); i++ {
		kinds = append(kinds, Kind(i))
	}
	return kinds
}

// Record is the normalized form of an event handed to sinks. It is a flat,
// comparable value; fields that do not apply to Kind are zero.
type Record struct {
	Kind   Kind
	Time   time.Time
	Device DeviceID

	// Keyboard
	Key    KeyInput
	Repeat bool

	// Mouse
	Button MouseButton
	X, Y   float32
	DX, DY float32

	// Text
	Char rune

	// Gamepad
	Pad       GamepadID
	PadButton PadButton
	Axis      PadAxis
	Value     float32

	// Focus
	Gained bool
}

// String renders the record as a single console line.
func (r Record) String() string {
	switch r.Kind {
	case KindKeyDown:
		return fmt.Sprintf("Key pressed: scancode %d, keycode %s, modifier %s, repeat: %t",
			r.Key.Scancode, keyName(r.Key.Code), r.Key.Mods, r.Repeat)
	case KindKeyUp:
		return fmt.Sprintf("Key released: scancode %d, keycode %s, modifier %s",
			r.Key.Scancode, keyName(r.Key.Code), r.Key.Mods)
	case KindMouseDown:
		return fmt.Sprintf("Mouse button pressed: %s, x: %v, y: %v", r.Button, r.X, r.Y)
	case KindMouseUp:
		return fmt.Sprintf("Mouse button released: %s, x: %v, y: %v", r.Button, r.X, r.Y)
	case KindMouseMove:
		return fmt.Sprintf("Mouse motion, x: %v, y: %v, relative x: %v, relative y: %v",
			r.X, r.Y, r.DX, r.DY)
	case KindMouseWheel:
		return fmt.Sprintf("Mousewheel event, x: %v, y: %v", r.X, r.Y)
	case KindTextInput:
		return fmt.Sprintf("Text input: %c", r.Char)
	case KindGamepadButtonDown:
		return fmt.Sprintf("Gamepad button pressed: %s Gamepad_Id: %d", r.PadButton, r.Pad)
	case KindGamepadButtonUp:
		return fmt.Sprintf("Gamepad button released: %s Gamepad_Id: %d", r.PadButton, r.Pad)
	case KindGamepadAxis:
		return fmt.Sprintf("Axis Event: %s Value: %v Gamepad_Id: %d", r.Axis, r.Value, r.Pad)
	case KindFocusChanged:
		if r.Gained {
			return "Focus gained"
		}
		return "Focus lost"
	default:
		return "Unknown event"
	}
}

func keyName(c KeyCode) string {
	if c == KeyUnknown {
		return "Unknown"
	}
	return string(c)
}
