package input

import (
	"strconv"
	"strings"
	"unicode"
)

// KeyCode is the logical name of a key. Letters are upper case ("A"),
// digits and symbols are the character itself, other keys use the
// constants below.
type KeyCode string

const (
	KeyUnknown   KeyCode = ""
	KeySpace     KeyCode = "Space"
	KeyEnter     KeyCode = "Enter"
	KeyEscape    KeyCode = "Escape"
	KeyTab       KeyCode = "Tab"
	KeyBackspace KeyCode = "Backspace"
	KeyDelete    KeyCode = "Delete"
	KeyInsert    KeyCode = "Insert"
	KeyArrowUp   KeyCode = "Up"
	KeyArrowDown KeyCode = "Down"
	KeyLeft      KeyCode = "Left"
	KeyRight     KeyCode = "Right"
	KeyHome      KeyCode = "Home"
	KeyEnd       KeyCode = "End"
	KeyPageUp    KeyCode = "PageUp"
	KeyPageDown  KeyCode = "PageDown"
)

// FunctionKey returns the code of function key Fn.
func FunctionKey(n int) KeyCode {
	return KeyCode("F" + strconv.Itoa(n))
}

// CharKey returns the code for a printable character. Letters are folded
// to upper case; the second result reports whether the character itself
// was an upper-case letter.
func CharKey(r rune) (KeyCode, bool) {
	if r == ' ' {
		return KeySpace, false
	}
	if unicode.IsLetter(r) {
		return KeyCode(string(unicode.ToUpper(r))), unicode.IsUpper(r)
	}
	return KeyCode(string(r)), false
}

var namedKeys = []KeyCode{
	KeySpace, KeyEnter, KeyEscape, KeyTab, KeyBackspace, KeyDelete, KeyInsert,
	KeyArrowUp, KeyArrowDown, KeyLeft, KeyRight, KeyHome, KeyEnd, KeyPageUp, KeyPageDown,
}

// ParseKeyCode accepts a named key ("enter", "page_up"), a function key
// ("F5") or a single character ("a" yields "A").
func ParseKeyCode(s string) (KeyCode, bool) {
	if s == "" {
		return KeyUnknown, false
	}
	for _, k := range namedKeys {
		if equalFold(string(k), s) {
			return k, true
		}
	}
	if equalFold(s, "esc") {
		return KeyEscape, true
	}
	if len(s) > 1 && (s[0] == 'F' || s[0] == 'f') {
		if n, err := strconv.Atoi(s[1:]); err == nil && n >= 1 && n <= 24 {
			return FunctionKey(n), true
		}
	}
	if r := []rune(s); len(r) == 1 {
		code, _ := CharKey(r[0])
		return code, true
	}
	return KeyUnknown, false
}

// Modifiers is a bitset of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModShift, "Shift"},
	{ModCtrl, "Ctrl"},
	{ModAlt, "Alt"},
	{ModSuper, "Super"},
}

// Contain reports whether all modifiers in m2 are set in m.
func (m Modifiers) Contain(m2 Modifiers) bool {
	return m&m2 == m2
}

// String returns the set modifiers joined by "|", or "None".
func (m Modifiers) String() string {
	if m == 0 {
		return "None"
	}
	var parts []string
	for _, mn := range modifierNames {
		if m.Contain(mn.mod) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseModifiers converts modifier names ("shift", "ctrl", ...) to a bitset.
func ParseModifiers(names []string) (Modifiers, bool) {
	var m Modifiers
	for _, n := range names {
		found := false
		for _, mn := range modifierNames {
			if equalFold(mn.name, n) {
				m |= mn.mod
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return m, true
}

// Names returns the lower-case names of the set modifiers.
func (m Modifiers) Names() []string {
	var names []string
	for _, mn := range modifierNames {
		if m.Contain(mn.mod) {
			names = append(names, strings.ToLower(mn.name))
		}
	}
	return names
}

// KeyInput describes a key as reported by the device. Scancode is zero
// when the source cannot observe physical keys.
type KeyInput struct {
	Scancode uint32
	Code     KeyCode
	Mods     Modifiers
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.ReplaceAll(a, "_", ""), strings.ReplaceAll(b, "_", ""))
}
