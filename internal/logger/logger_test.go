package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestSetLevel(t *testing.T) {
	defer Logger.SetLevel(log.InfoLevel)

	tests := []struct {
		name    string
		want    log.Level
		wantErr bool
	}{
		{"debug", log.DebugLevel, false},
		{"WARNING", log.WarnLevel, false},
		{" error ", log.ErrorLevel, false},
		{"", log.InfoLevel, false},
		{"loud", log.InfoLevel, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			Logger.SetLevel(log.InfoLevel)
			err := SetLevel(tc.name)
			if (err != nil) != tc.wantErr {
				t.Fatalf("SetLevel(%q) error = %v, wantErr %v", tc.name, err, tc.wantErr)
			}
			if Logger.GetLevel() != tc.want {
				t.Errorf("level = %v, expected %v", Logger.GetLevel(), tc.want)
			}
		})
	}
}

func TestConfigureKeepsLevelWhenEmpty(t *testing.T) {
	defer Logger.SetLevel(log.InfoLevel)

	Logger.SetLevel(log.ErrorLevel)
	if err := Configure("", false); err != nil {
		t.Fatalf("Configure() failed: %v", err)
	}
	if Logger.GetLevel() != log.ErrorLevel {
		t.Errorf("empty level should keep the current one, got %v", Logger.GetLevel())
	}

	if err := Configure("debug", true); err != nil {
		t.Fatalf("Configure() failed: %v", err)
	}
	if WithPrefix("test").GetLevel() != log.DebugLevel {
		t.Error("child logger should copy the configured level")
	}
}

func TestWithOutput(t *testing.T) {
	var shared, held bytes.Buffer
	Logger.SetOutput(&shared)
	defer Logger.SetOutput(nil)

	l := WithOutput("run", &held)
	l.Warn("sink failed", "err", "disk full")
	Logger.Info("routed")

	if !strings.Contains(held.String(), "sink failed") || !strings.Contains(held.String(), "run") {
		t.Errorf("child output = %q", held.String())
	}
	if strings.Contains(shared.String(), "sink failed") {
		t.Errorf("child wrote to the shared output: %q", shared.String())
	}
	if !strings.Contains(shared.String(), "routed") {
		t.Errorf("shared output = %q", shared.String())
	}
}
