// Package logger holds the process-wide charmbracelet logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the shared logger. Components take a prefixed child via WithPrefix.
var Logger *log.Logger

func init() {
	Logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "inputecho",
	})

	// LOG_LEVEL wins until Configure is called with an explicit level
	if err := SetLevel(os.Getenv("LOG_LEVEL")); err != nil {
		Logger.SetLevel(log.InfoLevel)
	}
}

// SetLevel parses a level name (debug, info, warn, error, fatal).
// An empty name selects info.
func SetLevel(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		Logger.SetLevel(log.InfoLevel)
		return nil
	case "warning":
		name = "warn"
	}

	level, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("logger: invalid level %q: %w", name, err)
	}
	Logger.SetLevel(level)
	return nil
}

// Configure applies the logging section of the configuration. An empty
// level keeps whatever LOG_LEVEL selected.
func Configure(level string, timestamps bool) error {
	Logger.SetReportTimestamp(timestamps)
	if level == "" {
		return nil
	}
	return SetLevel(level)
}

// WithPrefix returns a child logger writing to the same output. The child
// copies the current level, so call it after Configure.
func WithPrefix(prefix string) *log.Logger {
	return Logger.WithPrefix(prefix)
}

// WithOutput is WithPrefix writing to w. The shared logger keeps its output.
func WithOutput(prefix string, w io.Writer) *log.Logger {
	l := Logger.WithPrefix(prefix)
	l.SetOutput(w)
	return l
}

func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}
