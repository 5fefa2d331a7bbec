package script

import (
	"context"
	"io"
	"time"

	"github.com/vovakirdan/inputecho/internal/input"
)

// Player plays a script back as an event source.
type Player struct {
	events   []input.Event
	offsets  []time.Duration
	pos      int
	realtime bool
	speed    float64
	start    time.Time
	began    time.Time
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithRealtime makes Next wait for each step's offset, divided by speed.
// A speed of zero or less plays at normal speed.
func WithRealtime(speed float64) PlayerOption {
	return func(p *Player) {
		p.realtime = true
		if speed > 0 {
			p.speed = speed
		}
	}
}

// NewPlayer expands s into its events, stamped with the creation time plus
// their offsets. Event devices default to the script's device, then to
// "script:<name>".
func NewPlayer(s *Script, opts ...PlayerOption) (*Player, error) {
	p := &Player{speed: 1, start: time.Now()}
	for _, opt := range opts {
		opt(p)
	}

	device := input.DeviceID(s.Device)
	if device == "" {
		device = input.DeviceID("script:" + s.Name)
	}

	for _, step := range s.Events {
		meta := input.Meta{Time: p.start.Add(step.At), Device: device}
		events, err := step.Events(meta)
		if err != nil {
			return nil, err
		}
		for range events {
			p.offsets = append(p.offsets, step.At)
		}
		p.events = append(p.events, events...)
	}
	return p, nil
}

// Len returns the number of events the player yields in total.
func (p *Player) Len() int {
	return len(p.events)
}

// Next returns the next event, or io.EOF after the last one.
func (p *Player) Next(ctx context.Context) (input.Event, error) {
	if p.pos >= len(p.events) {
		return nil, io.EOF
	}

	if p.realtime {
		if p.began.IsZero() {
			p.began = time.Now()
		}
		due := p.began.Add(time.Duration(float64(p.offsets[p.pos]) / p.speed))
		if wait := time.Until(due); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ev := p.events[p.pos]
	p.pos++
	return ev, nil
}
