package sink

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/inputecho/internal/input"
	"github.com/vovakirdan/inputecho/internal/storage"
)

func TestConsoleWritesLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	recs := []input.Record{
		{Kind: input.KindMouseDown, Button: input.ButtonLeft, X: 10, Y: 20},
		{Kind: input.KindFocusChanged, Gained: false},
	}
	for _, rec := range recs {
		if err := c.Consume(rec); err != nil {
			t.Fatalf("Consume() failed: %v", err)
		}
	}

	want := "Mouse button pressed: Left, x: 10, y: 20\nFocus lost\n"
	if buf.String() != want {
		t.Errorf("output = %q, expected %q", buf.String(), want)
	}
}

func TestLogSinkFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(log.New(&buf))

	rec := input.Record{
		Kind:   input.KindKeyDown,
		Device: "tty",
		Key:    input.KeyInput{Scancode: 30, Code: "A", Mods: input.ModShift},
	}
	if err := l.Consume(rec); err != nil {
		t.Fatalf("Consume() failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"key_down", "device=tty", "key=A", "mods=Shift", "repeat=false"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestLogSinkLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.InfoLevel)

	l := NewLog(logger).WithLevel(log.DebugLevel)
	l.Consume(input.Record{Kind: input.KindFocusChanged, Gained: true})

	if buf.Len() != 0 {
		t.Errorf("debug record should be filtered at info level, got %q", buf.String())
	}
}

func TestFieldsPerKind(t *testing.T) {
	tests := []struct {
		rec  input.Record
		keys []string
	}{
		{input.Record{Kind: input.KindMouseMove}, []string{"x", "y", "dx", "dy"}},
		{input.Record{Kind: input.KindTextInput, Char: 'q'}, []string{"char"}},
		{input.Record{Kind: input.KindGamepadAxis}, []string{"pad", "axis", "value"}},
		{input.Record{Kind: input.KindFocusChanged}, []string{"gained"}},
	}

	for _, tc := range tests {
		t.Run(tc.rec.Kind.String(), func(t *testing.T) {
			kv := Fields(tc.rec)
			if len(kv) != 2*len(tc.keys) {
				t.Fatalf("Fields() = %v, expected keys %v", kv, tc.keys)
			}
			for i, key := range tc.keys {
				if kv[2*i] != key {
					t.Errorf("key %d = %v, expected %s", i, kv[2*i], key)
				}
			}
		})
	}
}

func TestDatabaseSink(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if err := store.CreateSession("s1", "test"); err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}

	d := NewDatabase(store, "s1")
	d.Consume(input.Record{Kind: input.KindKeyDown})
	d.Consume(input.Record{Kind: input.KindKeyUp})

	if d.Saved() != 2 {
		t.Errorf("Saved() = %d, expected 2", d.Saved())
	}

	stored, err := store.SessionRecords("s1", 0)
	if err != nil {
		t.Fatalf("SessionRecords() failed: %v", err)
	}
	if len(stored) != 2 || stored[1].Seq != 1 || stored[1].Record.Kind != input.KindKeyUp {
		t.Errorf("stored = %+v", stored)
	}
}

func TestMultiJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	var got []input.Kind
	m := Multi{
		Func(func(input.Record) error { return errA }),
		Func(func(rec input.Record) error { got = append(got, rec.Kind); return nil }),
		Func(func(input.Record) error { return errB }),
	}

	err := m.Consume(input.Record{Kind: input.KindMouseWheel})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Consume() error = %v, expected both failures", err)
	}
	if len(got) != 1 {
		t.Error("a failing sink must not stop the others")
	}

	if err := (Multi{Discard}).Consume(input.Record{}); err != nil {
		t.Errorf("Consume() = %v, expected nil", err)
	}
}

func TestBuild(t *testing.T) {
	var buf bytes.Buffer
	env := Env{Out: &buf, Logger: log.New(&buf)}

	s, err := Build([]string{"console"}, env)
	if err != nil {
		t.Fatalf("Build(console) failed: %v", err)
	}
	if _, ok := s.(*Console); !ok {
		t.Errorf("Build(console) = %T, expected *Console", s)
	}

	s, err = Build([]string{"console", " LOG ", "console"}, env)
	if err != nil {
		t.Fatalf("Build(console, log) failed: %v", err)
	}
	if m, ok := s.(Multi); !ok || len(m) != 2 {
		t.Errorf("Build(console, log) = %#v, expected Multi of 2", s)
	}

	s, err = Build(nil, env)
	if err != nil || s != Discard {
		t.Errorf("Build(nil) = %v, %v; expected Discard", s, err)
	}

	if _, err := Build([]string{"printer"}, env); !errors.Is(err, ErrUnknownSink) {
		t.Errorf("Build(printer) error = %v, expected ErrUnknownSink", err)
	}

	if _, err := Build([]string{"store"}, env); err == nil {
		t.Error("Build(store) without a database should fail")
	}
}

func TestRegistryNames(t *testing.T) {
	names := Names()
	want := []string{"console", "log", "store"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, expected %v", names, want)
	}
	if !Exists("log") || Exists("printer") {
		t.Error("Exists() mismatch")
	}

	defer func() {
		if recover() == nil {
			t.Error("registering a duplicate name should panic")
		}
	}()
	Register("console", func(Env) (Sink, error) { return Discard, nil })
}
