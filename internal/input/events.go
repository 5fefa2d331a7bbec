// Package input defines the device events understood by the router, the
// application state they update and the normalized records they produce.
// It has no external dependencies so that dispatch stays pure and testable.
package input

import "time"

// DeviceID identifies the device or session that produced an event
// (e.g. "tty", "ssh:alice", "script:demo").
type DeviceID string

// Meta is the header shared by every event.
type Meta struct {
	Time   time.Time
	Device DeviceID
}

// Header returns the event header.
func (m Meta) Header() Meta {
	return m
}

// Event is one raw input occurrence. The set of variants is closed: each
// variant implements the unexported handle method in dispatch.go, so a type
// without a handler cannot be used as an Event.
type Event interface {
	Header() Meta
	handle(st *State) Record
}

// KeyDown is a key press. Repeat is set for auto-repeated presses.
type KeyDown struct {
	Meta
	Key    KeyInput
	Repeat bool
}

// KeyUp is a key release.
type KeyUp struct {
	Meta
	Key KeyInput
}

// MouseDown is a mouse button press at an absolute position.
type MouseDown struct {
	Meta
	Button MouseButton
	X, Y   float32
}

// MouseUp is a mouse button release at an absolute position.
type MouseUp struct {
	Meta
	Button MouseButton
	X, Y   float32
}

// MouseMove carries the absolute position and the delta since the previous motion.
type MouseMove struct {
	Meta
	X, Y   float32
	DX, DY float32
}

// MouseWheel is a scroll step. Positive Y scrolls up, positive X scrolls right.
type MouseWheel struct {
	Meta
	X, Y float32
}

// TextInput is a character produced by the keyboard layout or a paste.
type TextInput struct {
	Meta
	Char rune
}

// GamepadButtonDown is a gamepad button press.
type GamepadButtonDown struct {
	Meta
	Button PadButton
	Pad    GamepadID
}

// GamepadButtonUp is a gamepad button release.
type GamepadButtonUp struct {
	Meta
	Button PadButton
	Pad    GamepadID
}

// GamepadAxis is a new value for an analog axis, normally in [-1, 1].
type GamepadAxis struct {
	Meta
	Axis  PadAxis
	Value float32
	Pad   GamepadID
}

// FocusChanged reports the window (or terminal) gaining or losing focus.
type FocusChanged struct {
	Meta
	Gained bool
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
	ButtonBack
	ButtonForward
)

var mouseButtonNames = [...]string{
	ButtonNone:    "None",
	ButtonLeft:    "Left",
	ButtonRight:   "Right",
	ButtonMiddle:  "Middle",
	ButtonBack:    "Back",
	ButtonForward: "Forward",
}

// String returns the button name.
func (b MouseButton) String() string {
	if int(b) < len(mouseButtonNames) {
		return mouseButtonNames[b]
	}
	return "Unknown"
}

// ParseMouseButton accepts the names returned by String, case-insensitively.
func ParseMouseButton(s string) (MouseButton, bool) {
	for i, name := range mouseButtonNames {
		if equalFold(name, s) {
			return MouseButton(i), true
		}
	}
	return ButtonNone, false
}
