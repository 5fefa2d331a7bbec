package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vovakirdan/inputecho/internal/input"
	"github.com/vovakirdan/inputecho/internal/script"
)

// Reader yields the events of a capture stream. It implements the router's
// Source interface.
type Reader struct {
	br      *bufio.Reader
	c       io.Closer
	pending []input.Event
	frames  int
	device  input.DeviceID
}

// NewReader checks the header of r and returns a reader for it.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	header := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, header); err != nil || string(header) != Magic {
		return nil, ErrBadMagic
	}
	return &Reader{br: br}, nil
}

// Open opens a capture file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: cannot open file: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.c = f
	return r, nil
}

// IsCapture reports whether path names a capture file by extension.
func IsCapture(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".icap")
}

// WithDevice replaces the device of every event read.
func (r *Reader) WithDevice(device input.DeviceID) *Reader {
	r.device = device
	return r
}

// Next returns the next event, or io.EOF at the end of the stream.
func (r *Reader) Next(ctx context.Context) (input.Event, error) {
	for len(r.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var frame structpb.Struct
		if err := readFrame(r.br, &frame); err != nil {
			return nil, err
		}
		r.frames++

		step, at, err := decodeStep(&frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", r.frames, err)
		}

		meta := input.Meta{Time: at}
		if r.device != "" {
			step.Device = ""
			meta.Device = r.device
		}
		events, err := step.Events(meta)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", r.frames, err)
		}
		r.pending = events
	}

	ev := r.pending[0]
	r.pending = r.pending[1:]
	return ev, nil
}

// Script reads the remaining frames as the steps of a script named name,
// keeping their recorded offsets. Playing it back with realtime pacing
// reproduces the capture's timing.
func (r *Reader) Script(name string) (*script.Script, error) {
	s := &script.Script{Name: name, Device: string(r.device), Source: "capture"}
	for {
		var frame structpb.Struct
		err := readFrame(r.br, &frame)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		r.frames++

		step, _, err := decodeStep(&frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", r.frames, err)
		}
		if r.device != "" {
			step.Device = ""
		}
		s.Events = append(s.Events, step)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Frames returns the number of frames read so far.
func (r *Reader) Frames() int {
	return r.frames
}

// Close closes the file opened by Open.
func (r *Reader) Close() error {
	if r.c == nil {
		return nil
	}
	err := r.c.Close()
	r.c = nil
	return err
}
