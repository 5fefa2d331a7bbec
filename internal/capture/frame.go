// Package capture records raw device events to a compact binary file and
// reads them back as an event source.
//
// A capture file starts with the magic header "ICAP1\n" followed by frames.
// Each frame is a 4-byte big-endian length and a protobuf-encoded
// google.protobuf.Struct holding the event as a script step plus its
// timestamp.
package capture

import (
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vovakirdan/inputecho/internal/script"
)

// Magic is the header every capture file starts with.
const Magic = "ICAP1\n"

// maxFrame bounds a single frame; an event is a few hundred bytes at most.
const maxFrame = 64 * 1024

var (
	// ErrBadMagic means the input is not a capture file.
	ErrBadMagic = errors.New("capture: not a capture file")
	// ErrFrameTooLarge means a frame length is outside the sane range.
	ErrFrameTooLarge = errors.New("capture: frame too large")
)

// writeFrame writes msg with a length prefix.
func writeFrame(w io.Writer, msg proto.Message) error {
	data, err := proto.Marshal(msg)
	if err != nil {
		return fmt.Errorf("capture: failed to marshal frame: %w", err)
	}

	// Write length prefix (4 bytes, big-endian)
	length := len(data)
	lengthBuf := []byte{
		byte(length >> 24),
		byte(length >> 16),
		byte(length >> 8),
		byte(length),
	}

	if _, err := w.Write(lengthBuf); err != nil {
		return fmt.Errorf("capture: failed to write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("capture: failed to write data: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed frame into msg. It returns io.EOF only
// at a clean frame boundary.
func readFrame(r io.Reader, msg proto.Message) error {
	lengthBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, lengthBuf); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("capture: failed to read length: %w", err)
	}

	length := int(lengthBuf[0])<<24 | int(lengthBuf[1])<<16 | int(lengthBuf[2])<<8 | int(lengthBuf[3])
	if length <= 0 || length > maxFrame {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return fmt.Errorf("capture: truncated frame: %w", err)
	}
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("capture: failed to unmarshal frame: %w", err)
	}
	return nil
}

// encodeStep converts a step and its timestamp into a Struct.
func encodeStep(step script.Step, at time.Time) (*structpb.Struct, error) {
	m := map[string]interface{}{
		"type": step.Type,
	}
	if !at.IsZero() {
		m["time"] = at.UTC().Format(time.RFC3339Nano)
	}
	if step.At != 0 {
		m["at_ns"] = float64(step.At)
	}
	if step.Device != "" {
		m["device"] = step.Device
	}
	if step.Key != "" {
		m["key"] = step.Key
	}
	if len(step.Mods) > 0 {
		mods := make([]interface{}, len(step.Mods))
		for i, mod := range step.Mods {
			mods[i] = mod
		}
		m["mods"] = mods
	}
	if step.Scancode != 0 {
		m["scancode"] = step.Scancode
	}
	if step.Repeat {
		m["repeat"] = true
	}
	if step.Button != "" {
		m["button"] = step.Button
	}
	for key, v := range map[string]float32{"x": step.X, "y": step.Y, "dx": step.DX, "dy": step.DY, "value": step.Value} {
		if v != 0 {
			m[key] = v
		}
	}
	if step.Text != "" {
		m["text"] = step.Text
	}
	if step.Pad != 0 {
		m["pad"] = step.Pad
	}
	if step.Axis != "" {
		m["axis"] = step.Axis
	}
	if step.Gained {
		m["gained"] = true
	}

	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("capture: cannot encode step: %w", err)
	}
	return s, nil
}

// decodeStep is the inverse of encodeStep.
func decodeStep(s *structpb.Struct) (script.Step, time.Time, error) {
	fields := s.GetFields()

	str := func(key string) string { return fields[key].GetStringValue() }
	num := func(key string) float64 { return fields[key].GetNumberValue() }

	step := script.Step{
		Type:     str("type"),
		Device:   str("device"),
		At:       time.Duration(num("at_ns")),
		Key:      str("key"),
		Scancode: uint32(num("scancode")),
		Repeat:   fields["repeat"].GetBoolValue(),
		Button:   str("button"),
		X:        float32(num("x")),
		Y:        float32(num("y")),
		DX:       float32(num("dx")),
		DY:       float32(num("dy")),
		Text:     str("text"),
		Pad:      uint32(num("pad")),
		Axis:     str("axis"),
		Value:    float32(num("value")),
		Gained:   fields["gained"].GetBoolValue(),
	}
	for _, v := range fields["mods"].GetListValue().GetValues() {
		step.Mods = append(step.Mods, v.GetStringValue())
	}
	if step.Type == "" {
		return script.Step{}, time.Time{}, errors.New("capture: frame without type")
	}

	var at time.Time
	if ts := str("time"); ts != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return script.Step{}, time.Time{}, fmt.Errorf("capture: bad timestamp %q: %w", ts, err)
		}
		at = parsed
	}
	return step, at, nil
}
