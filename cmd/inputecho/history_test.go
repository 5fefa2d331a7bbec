package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/inputecho/internal/input"
	"github.com/vovakirdan/inputecho/internal/script"
	"github.com/vovakirdan/inputecho/internal/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestResolveSession(t *testing.T) {
	store := openTestStore(t)
	for _, id := range []string{"3f2a0000-aaaa", "3f2b0000-bbbb", "9c000000-cccc"} {
		if err := store.CreateSession(id, "tty"); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"9c000000-cccc", "9c000000-cccc", false},
		{"9c", "9c000000-cccc", false},
		{"3f2b", "3f2b0000-bbbb", false},
		{"3f2", "", true},
		{"ffff", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.ref, func(t *testing.T) {
			sess, err := resolveSession(store, tc.ref)
			if tc.wantErr {
				if err == nil {
					t.Errorf("resolveSession(%q) should fail, got %+v", tc.ref, sess)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveSession(%q) error = %v", tc.ref, err)
			}
			if sess.ID != tc.want {
				t.Errorf("resolveSession(%q) = %s, expected %s", tc.ref, sess.ID, tc.want)
			}
		})
	}
}

func TestSessionScriptReplays(t *testing.T) {
	store := openTestStore(t)
	const id = "5e551011-0000"
	if err := store.CreateSession(id, "tty"); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	recs := []input.Record{
		{Kind: input.KindMouseDown, Time: base, Device: "tty", Button: input.ButtonLeft, X: 3, Y: 4},
		{Kind: input.KindMouseMove, Time: base.Add(50 * time.Millisecond), Device: "tty", X: 9, Y: 7, DX: 6, DY: 3},
		// Out of order timestamps must not produce a backwards script
		{Kind: input.KindMouseUp, Time: base.Add(40 * time.Millisecond), Device: "tty", Button: input.ButtonLeft, X: 9, Y: 7},
		{Kind: input.KindTextInput, Time: base.Add(90 * time.Millisecond), Device: "ssh:alice", Char: 'z'},
	}
	for i, rec := range recs {
		if _, err := store.SaveRecord(id, i, rec); err != nil {
			t.Fatal(err)
		}
	}

	sess, err := store.SessionByID(id)
	if err != nil || sess == nil {
		t.Fatalf("SessionByID() = %v, %v", sess, err)
	}
	stored, err := store.SessionRecords(id, 0)
	if err != nil {
		t.Fatal(err)
	}

	s := sessionScript(sess, stored)
	if s.Name != "session-5e551011" || s.Device != "tty" {
		t.Errorf("script name/device = %q/%q", s.Name, s.Device)
	}
	if s.Events[2].At != 50*time.Millisecond {
		t.Errorf("offset of out-of-order record = %v, expected 50ms", s.Events[2].At)
	}

	data, err := script.Encode(s)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	parsed, err := script.Parse(data, "export")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	p, err := script.NewPlayer(parsed)
	if err != nil {
		t.Fatal(err)
	}
	st := input.NewStore(input.DefaultState())
	for i := range recs {
		ev, err := p.Next(context.Background())
		if err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
		rec := st.Dispatch(ev)
		if rec.Kind != recs[i].Kind || rec.Device != recs[i].Device {
			t.Errorf("event %d = %v from %s, expected %v from %s", i, rec.Kind, rec.Device, recs[i].Kind, recs[i].Device)
		}
	}

	if got := st.Get(); got.CursorX != 9 || got.CursorY != 7 || got.MouseDown {
		t.Errorf("final state = %+v", got)
	}
}
