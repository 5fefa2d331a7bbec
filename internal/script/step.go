// Package script reads YAML event scripts and plays them back as an event
// source. A script is a list of steps, each describing one device event and
// its offset from the start of playback.
package script

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/inputecho/internal/input"
)

// ErrUnknownType is returned for steps whose type is not an event kind.
var ErrUnknownType = errors.New("script: unknown step type")

// Script is a parsed event script.
type Script struct {
	Name   string `yaml:"name"`
	Device string `yaml:"device,omitempty"`
	Events []Step `yaml:"events"`

	// Source is where the script was loaded from ("builtin" or a path).
	Source string `yaml:"-"`
}

// Step is one scripted event. Only the fields relevant to Type are read.
type Step struct {
	At     time.Duration `yaml:"at,omitempty"`
	Type   string        `yaml:"type"`
	Device string        `yaml:"device,omitempty"`

	// key_down, key_up
	Key      string   `yaml:"key,omitempty"`
	Mods     []string `yaml:"mods,omitempty"`
	Scancode uint32   `yaml:"scancode,omitempty"`
	Repeat   bool     `yaml:"repeat,omitempty"`

	// mouse_*, gamepad_button_*
	Button string  `yaml:"button,omitempty"`
	X      float32 `yaml:"x,omitempty"`
	Y      float32 `yaml:"y,omitempty"`
	DX     float32 `yaml:"dx,omitempty"`
	DY     float32 `yaml:"dy,omitempty"`

	// text_input: one event per rune
	Text string `yaml:"text,omitempty"`

	// gamepad_*
	Pad   uint32  `yaml:"pad,omitempty"`
	Axis  string  `yaml:"axis,omitempty"`
	Value float32 `yaml:"value,omitempty"`

	// focus_changed
	Gained bool `yaml:"gained,omitempty"`
}

// Events converts the step into device events carrying meta. A text step
// yields one TextInput per rune; every other step yields exactly one event.
func (s Step) Events(meta input.Meta) ([]input.Event, error) {
	if s.Device != "" {
		meta.Device = input.DeviceID(s.Device)
	}

	kind, ok := input.ParseKind(s.Type)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, s.Type)
	}

	switch kind {
	case input.KindKeyDown, input.KindKeyUp:
		key, err := s.keyInput()
		if err != nil {
			return nil, err
		}
		if kind == input.KindKeyUp {
			return one(input.KeyUp{Meta: meta, Key: key}), nil
		}
		return one(input.KeyDown{Meta: meta, Key: key, Repeat: s.Repeat}), nil

	case input.KindMouseDown, input.KindMouseUp:
		button, ok := input.ParseMouseButton(s.Button)
		if !ok || button == input.ButtonNone {
			return nil, fmt.Errorf("script: unknown mouse button %q", s.Button)
		}
		if kind == input.KindMouseUp {
			return one(input.MouseUp{Meta: meta, Button: button, X: s.X, Y: s.Y}), nil
		}
		return one(input.MouseDown{Meta: meta, Button: button, X: s.X, Y: s.Y}), nil

	case input.KindMouseMove:
		return one(input.MouseMove{Meta: meta, X: s.X, Y: s.Y, DX: s.DX, DY: s.DY}), nil

	case input.KindMouseWheel:
		return one(input.MouseWheel{Meta: meta, X: s.X, Y: s.Y}), nil

	case input.KindTextInput:
		if s.Text == "" {
			return nil, errors.New("script: text_input needs text")
		}
		var events []input.Event
		for _, r := range s.Text {
			events = append(events, input.TextInput{Meta: meta, Char: r})
		}
		return events, nil

	case input.KindGamepadButtonDown, input.KindGamepadButtonUp:
		button, ok := input.ParsePadButton(s.Button)
		if !ok {
			return nil, fmt.Errorf("script: unknown gamepad button %q", s.Button)
		}
		pad := input.GamepadID(s.Pad)
		if kind == input.KindGamepadButtonUp {
			return one(input.GamepadButtonUp{Meta: meta, Button: button, Pad: pad}), nil
		}
		return one(input.GamepadButtonDown{Meta: meta, Button: button, Pad: pad}), nil

	case input.KindGamepadAxis:
		axis, ok := input.ParsePadAxis(s.Axis)
		if !ok {
			return nil, fmt.Errorf("script: unknown gamepad axis %q", s.Axis)
		}
		return one(input.GamepadAxis{Meta: meta, Axis: axis, Value: s.Value, Pad: input.GamepadID(s.Pad)}), nil

	case input.KindFocusChanged:
		return one(input.FocusChanged{Meta: meta, Gained: s.Gained}), nil
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownType, s.Type)
}

func (s Step) keyInput() (input.KeyInput, error) {
	code, ok := input.ParseKeyCode(s.Key)
	if !ok {
		return input.KeyInput{}, fmt.Errorf("script: unknown key %q", s.Key)
	}
	mods, ok := input.ParseModifiers(s.Mods)
	if !ok {
		return input.KeyInput{}, fmt.Errorf("script: unknown modifier in %v", s.Mods)
	}
	return input.KeyInput{Scancode: s.Scancode, Code: code, Mods: mods}, nil
}

func one(ev input.Event) []input.Event {
	return []input.Event{ev}
}

// FromRecord builds the step that reproduces rec. At is the record's offset
// from base when both times are set.
func FromRecord(rec input.Record, base time.Time) Step {
	s := Step{Type: rec.Kind.String(), Device: string(rec.Device)}
	if !base.IsZero() && !rec.Time.IsZero() && rec.Time.After(base) {
		s.At = rec.Time.Sub(base)
	}

	switch rec.Kind {
	case input.KindKeyDown, input.KindKeyUp:
		s.Key = string(rec.Key.Code)
		s.Mods = rec.Key.Mods.Names()
		s.Scancode = rec.Key.Scancode
		s.Repeat = rec.Repeat
	case input.KindMouseDown, input.KindMouseUp:
		s.Button = rec.Button.String()
		s.X, s.Y = rec.X, rec.Y
	case input.KindMouseMove:
		s.X, s.Y, s.DX, s.DY = rec.X, rec.Y, rec.DX, rec.DY
	case input.KindMouseWheel:
		s.X, s.Y = rec.X, rec.Y
	case input.KindTextInput:
		s.Text = string(rec.Char)
	case input.KindGamepadButtonDown, input.KindGamepadButtonUp:
		s.Button = rec.PadButton.String()
		s.Pad = uint32(rec.Pad)
	case input.KindGamepadAxis:
		s.Axis = rec.Axis.String()
		s.Value = rec.Value
		s.Pad = uint32(rec.Pad)
	case input.KindFocusChanged:
		s.Gained = rec.Gained
	}
	return s
}

// FromEvent builds the step that reproduces ev.
func FromEvent(ev input.Event, base time.Time) Step {
	// The record carries every payload field of ev.
	var scratch input.State
	return FromRecord(input.Handle(ev, &scratch), base)
}
