// Package router connects an event source to the dispatcher and a sink.
package router

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/inputecho/internal/input"
	"github.com/vovakirdan/inputecho/internal/sink"
)

// Source produces events one at a time. Next blocks until an event is
// available and returns io.EOF when the source is exhausted.
type Source interface {
	Next(ctx context.Context) (input.Event, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (input.Event, error)

// Next calls f(ctx).
func (f SourceFunc) Next(ctx context.Context) (input.Event, error) {
	return f(ctx)
}

// Recorder observes raw events before they are dispatched (e.g. a capture file).
type Recorder interface {
	Record(ev input.Event) error
}

// Router serializes event delivery: events are dispatched one at a time in
// the order they are routed. It is not safe for concurrent use.
type Router struct {
	store    *input.Store
	sink     sink.Sink
	recorder Recorder
	logger   *log.Logger
	count    int
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for sink failures and progress.
func WithLogger(l *log.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// WithRecorder taps raw events before dispatch.
func WithRecorder(rec Recorder) Option {
	return func(r *Router) {
		r.recorder = rec
	}
}

// New creates a router. A nil sink discards records.
func New(store *input.Store, s sink.Sink, opts ...Option) *Router {
	if s == nil {
		s = sink.Discard
	}
	r := &Router{
		store:  store,
		sink:   s,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route records, dispatches and delivers one event. A recorder failure is
// returned before the event is dispatched; a sink failure is logged and the
// record is still returned, since the state has already changed.
func (r *Router) Route(ev input.Event) (input.Record, error) {
	if r.recorder != nil {
		if err := r.recorder.Record(ev); err != nil {
			return input.Record{}, fmt.Errorf("router: recorder failed: %w", err)
		}
	}

	rec := r.store.Dispatch(ev)
	r.count++

	if err := r.sink.Consume(rec); err != nil {
		r.logger.Warn("sink failed", "kind", rec.Kind, "err", err)
	}
	return rec, nil
}

// Run routes events from src until it is exhausted (nil), ctx is done
// (ctx.Err()) or src or the recorder fails.
func (r *Router) Run(ctx context.Context, src Source) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			r.logger.Debug("source exhausted", "events", r.count)
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("router: source failed: %w", err)
		}

		if _, err := r.Route(ev); err != nil {
			return err
		}
	}
}

// Count returns how many events were dispatched.
func (r *Router) Count() int {
	return r.count
}

// State returns a snapshot of the application state.
func (r *Router) State() input.State {
	return r.store.Get()
}
