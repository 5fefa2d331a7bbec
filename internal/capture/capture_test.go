package capture

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vovakirdan/inputecho/internal/input"
	"github.com/vovakirdan/inputecho/internal/router"
	"github.com/vovakirdan/inputecho/internal/script"
)

func sampleEvents(base time.Time) []input.Event {
	meta := func(ms int) input.Meta {
		return input.Meta{Time: base.Add(time.Duration(ms) * time.Millisecond), Device: "tty"}
	}
	return []input.Event{
		input.FocusChanged{Meta: meta(0), Gained: true},
		input.KeyDown{Meta: meta(3), Key: input.KeyInput{Scancode: 30, Code: "A", Mods: input.ModShift}},
		input.TextInput{Meta: meta(3), Char: 'A'},
		input.MouseDown{Meta: meta(10), Button: input.ButtonLeft, X: 10, Y: 20},
		input.MouseMove{Meta: meta(15), X: 50, Y: 60, DX: 40, DY: 40},
		input.MouseWheel{Meta: meta(20), Y: -1},
		input.GamepadAxis{Meta: meta(25), Axis: input.PadLeftStickX, Value: -0.5, Pad: 2},
		input.GamepadButtonUp{Meta: meta(30), Button: input.PadWest, Pad: 1},
	}
}

// readEvents drains r.
func readEvents(t *testing.T, r *Reader) []input.Event {
	t.Helper()
	var events []input.Event
	for {
		ev, err := r.Next(context.Background())
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

// stripTime drops timestamps so events can be compared with ==.
func stripTime(ev input.Event) input.Event {
	switch e := ev.(type) {
	case input.FocusChanged:
		e.Time = time.Time{}
		return e
	case input.KeyDown:
		e.Time = time.Time{}
		return e
	case input.TextInput:
		e.Time = time.Time{}
		return e
	case input.MouseDown:
		e.Time = time.Time{}
		return e
	case input.MouseMove:
		e.Time = time.Time{}
		return e
	case input.MouseWheel:
		e.Time = time.Time{}
		return e
	case input.GamepadAxis:
		e.Time = time.Time{}
		return e
	case input.GamepadButtonUp:
		e.Time = time.Time{}
		return e
	}
	return ev
}

func TestRoundTrip(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	events := sampleEvents(base)

	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	for _, ev := range events {
		require.NoError(t, w.Record(ev))
	}
	require.NoError(t, w.Close())
	assert.Equal(t, len(events), w.Count())
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(Magic)))

	r, err := NewReader(&buf)
	require.NoError(t, err)

	got := readEvents(t, r)
	require.Len(t, got, len(events))
	assert.Equal(t, len(events), r.Frames())

	for i := range events {
		assert.True(t, got[i].Header().Time.Equal(events[i].Header().Time), "event %d time", i)
		assert.Equal(t, stripTime(events[i]), stripTime(got[i]), "event %d", i)
	}
}

func TestReaderWithDevice(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.Record(input.FocusChanged{Meta: input.Meta{Device: "tty"}}))

	r, err := NewReader(&buf)
	require.NoError(t, err)
	r.WithDevice("replay")

	ev, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, input.DeviceID("replay"), ev.Header().Device)
	assert.True(t, ev.Header().Time.IsZero())

	_, err = r.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestReaderScript(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	events := sampleEvents(base)

	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	for _, ev := range events {
		require.NoError(t, w.Record(ev))
	}

	r, err := NewReader(&buf)
	require.NoError(t, err)
	s, err := r.Script("session")
	require.NoError(t, err)

	assert.Equal(t, "session", s.Name)
	require.Len(t, s.Events, len(events))
	assert.Equal(t, "key_down", s.Events[1].Type)
	assert.Equal(t, 10*time.Millisecond, s.Events[3].At)

	p, err := script.NewPlayer(s)
	require.NoError(t, err)
	var start time.Time
	for i, want := range events {
		got, err := p.Next(context.Background())
		require.NoError(t, err)
		if i == 0 {
			start = got.Header().Time
		}
		assert.Equal(t, want.Header().Time.Sub(base), got.Header().Time.Sub(start), "event %d offset", i)
		assert.Equal(t, stripTime(want), stripTime(got), "event %d", i)
	}
}

func TestBadMagic(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("name: demo\n")))
	assert.ErrorIs(t, err, ErrBadMagic)

	_, err = NewReader(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestCorruptFrames(t *testing.T) {
	t.Run("oversized", func(t *testing.T) {
		data := append([]byte(Magic), 0xff, 0xff, 0xff, 0xff)
		r, err := NewReader(bytes.NewReader(data))
		require.NoError(t, err)
		_, err = r.Next(context.Background())
		assert.ErrorIs(t, err, ErrFrameTooLarge)
	})

	t.Run("truncated", func(t *testing.T) {
		data := append([]byte(Magic), 0, 0, 0, 10, 1, 2)
		r, err := NewReader(bytes.NewReader(data))
		require.NoError(t, err)
		_, err = r.Next(context.Background())
		require.Error(t, err)
		assert.NotEqual(t, io.EOF, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString(Magic)
		s, err := structpb.NewStruct(map[string]interface{}{"type": "warp"})
		require.NoError(t, err)
		require.NoError(t, writeFrame(&buf, s))

		r, err := NewReader(&buf)
		require.NoError(t, err)
		_, err = r.Next(context.Background())
		assert.Error(t, err)
	})
}

func TestCreateOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.icap")
	assert.True(t, IsCapture(path))
	assert.False(t, IsCapture("demo.yaml"))

	w, err := Create(path)
	require.NoError(t, err)
	for _, ev := range sampleEvents(time.Unix(1700000000, 0)) {
		require.NoError(t, w.Record(ev))
	}
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Len(t, readEvents(t, r), 8)
}

func TestNextCancelled(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf)
	w.Record(input.FocusChanged{})

	r, err := NewReader(&buf)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

var errDiskFull = errors.New("disk full")

// fullDisk accepts the first room bytes, then fails every write.
type fullDisk struct {
	room int
}

func (d *fullDisk) Write(p []byte) (int, error) {
	if len(p) > d.room {
		n := d.room
		d.room = 0
		return n, errDiskFull
	}
	d.room -= len(p)
	return len(p), nil
}

func TestWriterReportsWriteFailures(t *testing.T) {
	_, err := NewWriter(&fullDisk{})
	assert.ErrorIs(t, err, errDiskFull, "header failure")

	w, err := NewWriter(&fullDisk{room: len(Magic)})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err := w.Record(input.FocusChanged{Gained: true})
		assert.ErrorIs(t, err, errDiskFull, "record %d", i)
	}
	assert.Equal(t, 0, w.Count())
	assert.ErrorIs(t, w.Close(), errDiskFull)
}

func TestWriterFailureStopsRouter(t *testing.T) {
	w, err := NewWriter(&fullDisk{room: len(Magic)})
	require.NoError(t, err)

	var routed int
	r := router.New(input.NewStore(input.DefaultState()), nil, router.WithRecorder(w))
	src := router.SourceFunc(func(context.Context) (input.Event, error) {
		routed++
		return input.MouseDown{Button: input.ButtonLeft, X: 1, Y: 2}, nil
	})

	err = r.Run(context.Background(), src)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, 1, routed, "router should stop at the first failed event")
	assert.Equal(t, 0, r.Count())
	assert.False(t, r.State().MouseDown, "event must not be dispatched")
}
