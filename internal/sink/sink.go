// Package sink provides consumers for normalized event records.
// The router hands every record to exactly one Sink; Multi fans out.
package sink

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/inputecho/internal/input"
	"github.com/vovakirdan/inputecho/internal/storage"
)

// Sink consumes records. Implementations must not retain rec beyond the call
// unless they copy it (Record is a value, so plain assignment is a copy).
type Sink interface {
	Consume(rec input.Record) error
}

// Func adapts a function to the Sink interface.
type Func func(rec input.Record) error

// Consume calls f(rec).
func (f Func) Consume(rec input.Record) error {
	return f(rec)
}

type discard struct{}

func (discard) Consume(input.Record) error { return nil }

// Discard drops every record.
var Discard Sink = discard{}

// Console writes one line per record in the classic console format.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console sink writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Consume writes rec.String() followed by a newline.
func (c *Console) Consume(rec input.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintln(c.w, rec.String()); err != nil {
		return fmt.Errorf("sink: console write failed: %w", err)
	}
	return nil
}

// Log emits a structured log line per record.
type Log struct {
	logger *log.Logger
	level  log.Level
}

// NewLog creates a log sink. Records are logged at info level.
func NewLog(logger *log.Logger) *Log {
	return &Log{logger: logger, level: log.InfoLevel}
}

// WithLevel changes the level records are logged at.
func (l *Log) WithLevel(level log.Level) *Log {
	l.level = level
	return l
}

// Consume logs rec with its kind-specific fields as key/value pairs.
func (l *Log) Consume(rec input.Record) error {
	l.logger.Log(l.level, rec.Kind.String(), Fields(rec)...)
	return nil
}

// Fields returns the key/value pairs relevant to the record's kind.
func Fields(rec input.Record) []interface{} {
	kv := []interface{}{}
	if rec.Device != "" {
		kv = append(kv, "device", string(rec.Device))
	}

	switch rec.Kind {
	case input.KindKeyDown:
		kv = append(kv, "scancode", rec.Key.Scancode, "key", string(rec.Key.Code),
			"mods", rec.Key.Mods.String(), "repeat", rec.Repeat)
	case input.KindKeyUp:
		kv = append(kv, "scancode", rec.Key.Scancode, "key", string(rec.Key.Code),
			"mods", rec.Key.Mods.String())
	case input.KindMouseDown, input.KindMouseUp:
		kv = append(kv, "button", rec.Button.String(), "x", rec.X, "y", rec.Y)
	case input.KindMouseMove:
		kv = append(kv, "x", rec.X, "y", rec.Y, "dx", rec.DX, "dy", rec.DY)
	case input.KindMouseWheel:
		kv = append(kv, "x", rec.X, "y", rec.Y)
	case input.KindTextInput:
		kv = append(kv, "char", string(rec.Char))
	case input.KindGamepadButtonDown, input.KindGamepadButtonUp:
		kv = append(kv, "pad", rec.Pad, "button", rec.PadButton.String())
	case input.KindGamepadAxis:
		kv = append(kv, "pad", rec.Pad, "axis", rec.Axis.String(), "value", rec.Value)
	case input.KindFocusChanged:
		kv = append(kv, "gained", rec.Gained)
	}
	return kv
}

// Database appends records to a stored session, numbering them in order.
type Database struct {
	mu        sync.Mutex
	store     *storage.Store
	sessionID string
	seq       int
}

// NewDatabase creates a database sink for an existing session.
func NewDatabase(store *storage.Store, sessionID string) *Database {
	return &Database{store: store, sessionID: sessionID}
}

// Consume saves rec with the next sequence number. A failed save does not
// consume a sequence number.
func (d *Database) Consume(rec input.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.store.SaveRecord(d.sessionID, d.seq, rec); err != nil {
		return err
	}
	d.seq++
	return nil
}

// Saved returns how many records were stored.
func (d *Database) Saved() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

// Multi hands every record to all of its sinks, even when one fails.
type Multi []Sink

// Consume forwards rec and joins the errors of the sinks that failed.
func (m Multi) Consume(rec input.Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Consume(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
