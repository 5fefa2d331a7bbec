package tui

import (
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/inputecho/internal/input"
)

// releaseMsg fires when a held key has seen no press for the release delay.
type releaseMsg struct {
	code input.KeyCode
	gen  uint64
}

// releaseCmd schedules the release check for a press of generation gen.
func releaseCmd(delay time.Duration, code input.KeyCode, gen uint64) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return releaseMsg{code: code, gen: gen}
	})
}

type heldKey struct {
	key input.KeyInput
	gen uint64
}

// HeldKeys tracks keys that are considered down. Terminals report presses
// (and auto-repeats) but never releases, so a key counts as released once
// no press for it arrived within the release delay.
type HeldKeys struct {
	keys map[input.KeyCode]heldKey
	gen  uint64
}

// NewHeldKeys creates an empty tracker.
func NewHeldKeys() *HeldKeys {
	return &HeldKeys{keys: make(map[input.KeyCode]heldKey)}
}

// Press marks key as held. It reports whether the key was already held
// (an auto-repeat) and returns the generation to pass to Release.
func (h *HeldKeys) Press(key input.KeyInput) (repeat bool, gen uint64) {
	_, repeat = h.keys[key.Code]
	h.gen++
	h.keys[key.Code] = heldKey{key: key, gen: h.gen}
	return repeat, h.gen
}

// Release drops the key if gen is still its latest press and returns the
// key as it was pressed. A stale generation is a no-op.
func (h *HeldKeys) Release(code input.KeyCode, gen uint64) (input.KeyInput, bool) {
	held, ok := h.keys[code]
	if !ok || held.gen != gen {
		return input.KeyInput{}, false
	}
	delete(h.keys, code)
	return held.key, true
}

// ReleaseAll drops every held key, returning them sorted by code.
func (h *HeldKeys) ReleaseAll() []input.KeyInput {
	keys := h.List()
	clear(h.keys)
	return keys
}

// List returns the held keys sorted by code.
func (h *HeldKeys) List() []input.KeyInput {
	keys := make([]input.KeyInput, 0, len(h.keys))
	for _, held := range h.keys {
		keys = append(keys, held.key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Code < keys[j].Code
	})
	return keys
}

// Mods returns the union of the modifiers of all held keys.
func (h *HeldKeys) Mods() input.Modifiers {
	var mods input.Modifiers
	for _, held := range h.keys {
		mods |= held.key.Mods
	}
	return mods
}

// String lists held key codes, e.g. "A, Space".
func (h *HeldKeys) String() string {
	keys := h.List()
	if len(keys) == 0 {
		return "none"
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k.Code)
	}
	return strings.Join(names, ", ")
}
