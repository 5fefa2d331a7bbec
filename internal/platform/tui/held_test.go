package tui

import (
	"testing"

	"github.com/vovakirdan/inputecho/internal/input"
)

func TestHeldKeysPressRelease(t *testing.T) {
	h := NewHeldKeys()
	a := input.KeyInput{Code: "A", Mods: input.ModShift}

	repeat, gen1 := h.Press(a)
	if repeat {
		t.Error("first press should not be a repeat")
	}

	repeat, gen2 := h.Press(a)
	if !repeat {
		t.Error("press of a held key should be a repeat")
	}

	// The first press's timer fires after the repeat: key still held
	if _, ok := h.Release("A", gen1); ok {
		t.Error("stale generation should not release the key")
	}
	if len(h.List()) != 1 {
		t.Fatal("key should still be held")
	}

	key, ok := h.Release("A", gen2)
	if !ok || key != a {
		t.Errorf("Release() = %+v, %v; expected %+v", key, ok, a)
	}
	if _, ok := h.Release("A", gen2); ok {
		t.Error("releasing twice should be a no-op")
	}

	if repeat, _ := h.Press(a); repeat {
		t.Error("press after release should not be a repeat")
	}
}

func TestHeldKeysReleaseAll(t *testing.T) {
	h := NewHeldKeys()
	h.Press(input.KeyInput{Code: input.KeySpace})
	h.Press(input.KeyInput{Code: "C", Mods: input.ModCtrl})
	h.Press(input.KeyInput{Code: "A", Mods: input.ModShift})

	if h.String() != "A, C, Space" {
		t.Errorf("String() = %q", h.String())
	}
	if h.Mods() != input.ModShift|input.ModCtrl {
		t.Errorf("Mods() = %v", h.Mods())
	}

	released := h.ReleaseAll()
	if len(released) != 3 || released[0].Code != "A" {
		t.Errorf("ReleaseAll() = %+v", released)
	}
	if h.String() != "none" || h.Mods() != 0 {
		t.Error("tracker should be empty after ReleaseAll")
	}
}
