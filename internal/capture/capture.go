package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vovakirdan/inputecho/internal/input"
	"github.com/vovakirdan/inputecho/internal/script"
)

// Writer appends events to a capture stream. It implements the router's
// Recorder interface.
type Writer struct {
	mu    sync.Mutex
	bw    *bufio.Writer
	c     io.Closer
	base  time.Time
	count int
}

// NewWriter writes the header to w and returns a writer for it.
func NewWriter(w io.Writer) (*Writer, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Magic); err != nil {
		return nil, fmt.Errorf("capture: failed to write header: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("capture: failed to write header: %w", err)
	}
	return &Writer{bw: bw}, nil
}

// Create creates (or truncates) a capture file, making parent directories.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("capture: cannot create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("capture: cannot create file: %w", err)
	}
	w, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.c = f
	return w, nil
}

// Record appends ev and flushes it, so a failing destination is reported
// for the event that hit it. Offsets are measured from the first recorded
// event.
func (w *Writer) Record(ev input.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	at := ev.Header().Time
	if w.count == 0 {
		w.base = at
	}

	frame, err := encodeStep(script.FromEvent(ev, w.base), at)
	if err != nil {
		return err
	}
	if err := writeFrame(w.bw, frame); err != nil {
		return err
	}
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("capture: failed to flush frame: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of recorded events.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close flushes and, for files opened by Create, closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.bw.Flush()
	if w.c != nil {
		if cerr := w.c.Close(); err == nil {
			err = cerr
		}
		w.c = nil
	}
	return err
}
