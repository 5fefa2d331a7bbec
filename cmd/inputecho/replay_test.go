package main

import (
	"errors"
	"slices"
	"testing"

	"github.com/vovakirdan/inputecho/internal/sink"
)

func TestSinkNames(t *testing.T) {
	in := []string{" Console", "LOG", ""}
	got, err := sinkNames(in)
	if err != nil {
		t.Fatalf("sinkNames() error = %v", err)
	}
	if want := []string{"console", "log", ""}; !slices.Equal(got, want) {
		t.Errorf("sinkNames() = %q, expected %q", got, want)
	}
	if in[0] != " Console" {
		t.Error("sinkNames() should not modify its argument")
	}

	if _, err := sinkNames([]string{"console", "printer"}); !errors.Is(err, sink.ErrUnknownSink) {
		t.Errorf("sinkNames(printer) error = %v, expected ErrUnknownSink", err)
	}
}
