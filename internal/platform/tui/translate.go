package tui

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/inputecho/internal/input"
)

// Translator turns Bubble Tea messages into device events. It remembers the
// last pointer position (for motion deltas) and the last pressed button
// (terminals often report releases without one).
type Translator struct {
	Device input.DeviceID
	Now    func() time.Time

	lastX, lastY int
	havePos      bool
	lastButton   input.MouseButton
}

// NewTranslator creates a translator stamping events with device.
func NewTranslator(device input.DeviceID) *Translator {
	return &Translator{Device: device, Now: time.Now}
}

func (t *Translator) meta() input.Meta {
	return input.Meta{Time: t.Now(), Device: t.Device}
}

// Translate returns the events for msg, or nil if msg is not an input message.
func (t *Translator) Translate(msg tea.Msg) []input.Event {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return t.key(msg)
	case tea.MouseMsg:
		return t.mouse(msg)
	case tea.FocusMsg:
		return []input.Event{input.FocusChanged{Meta: t.meta(), Gained: true}}
	case tea.BlurMsg:
		return []input.Event{input.FocusChanged{Meta: t.meta(), Gained: false}}
	}
	return nil
}

// key handles keyboard input. Printable keys yield KeyDown followed by
// TextInput; a paste yields only TextInput.
func (t *Translator) key(msg tea.KeyMsg) []input.Event {
	meta := t.meta()

	if msg.Type == tea.KeyRunes {
		var events []input.Event
		for _, r := range msg.Runes {
			if !msg.Paste {
				code, upper := input.CharKey(r)
				var mods input.Modifiers
				if upper {
					mods |= input.ModShift
				}
				if msg.Alt {
					mods |= input.ModAlt
				}
				events = append(events, input.KeyDown{Meta: meta, Key: input.KeyInput{Code: code, Mods: mods}})
				if msg.Alt {
					continue
				}
			}
			events = append(events, input.TextInput{Meta: meta, Char: r})
		}
		return events
	}

	key, ok := ParseKey(msg.String())
	if !ok {
		return nil
	}
	events := []input.Event{input.KeyDown{Meta: meta, Key: key}}
	if key.Code == input.KeySpace && key.Mods == 0 {
		events = append(events, input.TextInput{Meta: meta, Char: ' '})
	}
	return events
}

var namedKeys = map[string]input.KeyCode{
	"enter":     input.KeyEnter,
	"esc":       input.KeyEscape,
	"tab":       input.KeyTab,
	"backspace": input.KeyBackspace,
	"delete":    input.KeyDelete,
	"insert":    input.KeyInsert,
	"up":        input.KeyArrowUp,
	"down":      input.KeyArrowDown,
	"left":      input.KeyLeft,
	"right":     input.KeyRight,
	"home":      input.KeyHome,
	"end":       input.KeyEnd,
	"pgup":      input.KeyPageUp,
	"pgdown":    input.KeyPageDown,
	" ":         input.KeySpace,
	"space":     input.KeySpace,
}

var modifierPrefixes = []struct {
	prefix string
	mod    input.Modifiers
}{
	{"ctrl+", input.ModCtrl},
	{"alt+", input.ModAlt},
	{"shift+", input.ModShift},
}

// ParseKey converts a Bubble Tea key string ("ctrl+shift+up", "alt+x",
// "f5", "A") into a key with modifiers.
func ParseKey(s string) (input.KeyInput, bool) {
	var mods input.Modifiers
	for stripped := true; stripped; {
		stripped = false
		for _, p := range modifierPrefixes {
			if rest, ok := strings.CutPrefix(s, p.prefix); ok && rest != "" {
				mods |= p.mod
				s = rest
				stripped = true
			}
		}
	}

	if code, ok := namedKeys[s]; ok {
		return input.KeyInput{Code: code, Mods: mods}, true
	}

	if len(s) > 1 && s[0] == 'f' {
		if n, err := strconv.Atoi(s[1:]); err == nil && n >= 1 && n <= 20 {
			return input.KeyInput{Code: input.FunctionKey(n), Mods: mods}, true
		}
	}

	if r := []rune(s); len(r) == 1 {
		code, upper := input.CharKey(r[0])
		if upper {
			mods |= input.ModShift
		}
		return input.KeyInput{Code: code, Mods: mods}, true
	}

	return input.KeyInput{}, false
}

var mouseButtons = map[tea.MouseButton]input.MouseButton{
	tea.MouseButtonLeft:     input.ButtonLeft,
	tea.MouseButtonMiddle:   input.ButtonMiddle,
	tea.MouseButtonRight:    input.ButtonRight,
	tea.MouseButtonBackward: input.ButtonBack,
	tea.MouseButtonForward:  input.ButtonForward,
}

// mouse handles pointer input. Coordinates are terminal cells.
func (t *Translator) mouse(msg tea.MouseMsg) []input.Event {
	meta := t.meta()
	x, y := float32(msg.X), float32(msg.Y)

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return []input.Event{input.MouseWheel{Meta: meta, Y: 1}}
	case tea.MouseButtonWheelDown:
		return []input.Event{input.MouseWheel{Meta: meta, Y: -1}}
	case tea.MouseButtonWheelLeft:
		return []input.Event{input.MouseWheel{Meta: meta, X: -1}}
	case tea.MouseButtonWheelRight:
		return []input.Event{input.MouseWheel{Meta: meta, X: 1}}
	}

	switch msg.Action {
	case tea.MouseActionPress:
		button, ok := mouseButtons[msg.Button]
		if !ok {
			return nil
		}
		t.lastButton = button
		t.lastX, t.lastY, t.havePos = msg.X, msg.Y, true
		return []input.Event{input.MouseDown{Meta: meta, Button: button, X: x, Y: y}}

	case tea.MouseActionRelease:
		button, ok := mouseButtons[msg.Button]
		if !ok {
			button = t.lastButton
		}
		if button == input.ButtonNone {
			button = input.ButtonLeft
		}
		t.lastButton = input.ButtonNone
		t.lastX, t.lastY, t.havePos = msg.X, msg.Y, true
		return []input.Event{input.MouseUp{Meta: meta, Button: button, X: x, Y: y}}

	case tea.MouseActionMotion:
		var dx, dy float32
		if t.havePos {
			dx, dy = float32(msg.X-t.lastX), float32(msg.Y-t.lastY)
		}
		t.lastX, t.lastY, t.havePos = msg.X, msg.Y, true
		return []input.Event{input.MouseMove{Meta: meta, X: x, Y: y, DX: dx, DY: dy}}
	}

	return nil
}
