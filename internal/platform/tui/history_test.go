package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/inputecho/internal/input"
	"github.com/vovakirdan/inputecho/internal/storage"
)

func openHistoryStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestHistoryModelEmpty(t *testing.T) {
	m, err := NewHistoryModel(openHistoryStore(t), 100, 30)
	if err != nil {
		t.Fatalf("NewHistoryModel() error = %v", err)
	}
	if m.Selected() != nil {
		t.Error("empty store should have no selection")
	}
	if !strings.Contains(m.View(), "No sessions recorded yet.") {
		t.Error("view should explain that there is no history")
	}
}

func TestHistoryModelBrowse(t *testing.T) {
	store := openHistoryStore(t)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.CreateSession("aaaaaaaa-1111", "tty"); err != nil {
		t.Fatal(err)
	}
	recs := []input.Record{
		{Kind: input.KindKeyDown, Time: at, Key: input.KeyInput{Code: "A"}},
		{Kind: input.KindTextInput, Time: at, Char: 'a'},
	}
	for i, rec := range recs {
		if _, err := store.SaveRecord("aaaaaaaa-1111", i, rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.CreateSession("bbbbbbbb-2222", "ssh:bob"); err != nil {
		t.Fatal(err)
	}

	m, err := NewHistoryModel(store, 120, 30)
	if err != nil {
		t.Fatalf("NewHistoryModel() error = %v", err)
	}
	first := m.Selected()
	if first == nil {
		t.Fatal("expected a selected session")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(HistoryModel)
	second := m.Selected()
	if second.ID == first.ID {
		t.Error("tab should select the next session")
	}

	// Find the session with records regardless of listing order
	if m.Selected().ID != "aaaaaaaa-1111" {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
		m = next.(HistoryModel)
	}
	rows := m.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][2] != input.KindKeyDown.String() || rows[1][3] != "Text input: a" {
		t.Errorf("rows = %v", rows)
	}

	view := m.View()
	if !strings.Contains(view, "aaaaaaaa (tty, 2 records)") {
		t.Error("title should describe the selected session")
	}
	if !strings.Contains(view, "bbbbbbbb ssh:bob") {
		t.Error("sidebar should list every session")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
	if next.View() != "" {
		t.Error("view should be empty after quitting")
	}
}
