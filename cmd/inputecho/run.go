package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/inputecho/internal/capture"
	"github.com/vovakirdan/inputecho/internal/config"
	"github.com/vovakirdan/inputecho/internal/input"
	"github.com/vovakirdan/inputecho/internal/logger"
	"github.com/vovakirdan/inputecho/internal/platform/tui"
	"github.com/vovakirdan/inputecho/internal/router"
	"github.com/vovakirdan/inputecho/internal/sink"
)

var (
	flagCapture string
	flagNoStore bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive input tester",
	Long: `Start the interactive tester in the current terminal.

Every key, mouse and focus event is routed through the dispatcher and
shown in the log pane. Drag with any mouse button to move the box.

Terminals do not report key releases: a key counts as released once it
has not repeated for display.release_delay_ms.

Controls:
  Ctrl+L  - Clear the log pane
  Ctrl+C  - Quit

Examples:
  inputecho run
  inputecho run --capture session.icap
  inputecho run --no-store`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		exitOnError(runTester())
	},
}

func init() {
	runCmd.Flags().StringVar(&flagCapture, "capture", "", "Record raw events to a capture file")
	runCmd.Flags().BoolVar(&flagNoStore, "no-store", false, "Do not save records to the history database")
}

func runTester() error {
	cfg := config.Get()

	// Get terminal size
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	var sinks sink.Multi
	var db *sink.Database
	if !flagNoStore {
		store, sessionID := startSession("tty")
		if store != nil {
			defer store.Close()
			db = sink.NewDatabase(store, sessionID)
			sinks = append(sinks, db)
		}
	}

	// The tester owns the terminal until it exits; its log lines are
	// printed afterwards.
	var held bytes.Buffer
	tlog := logger.WithOutput("run", &held)
	defer func() {
		if held.Len() > 0 {
			os.Stderr.Write(held.Bytes())
		}
	}()

	opts := []router.Option{router.WithLogger(tlog)}
	var rec *capture.Writer
	if flagCapture != "" {
		var err error
		rec, err = capture.Create(flagCapture)
		if err != nil {
			return err
		}
		opts = append(opts, router.WithRecorder(rec))
	}

	start := input.State{CursorX: float32(cfg.Display.StartX), CursorY: float32(cfg.Display.StartY)}
	r := router.New(input.NewStore(start), sinks, opts...)

	ctx, stop := signalContext()
	defer stop()

	err := tui.Run(ctx, tui.Options{
		Router:       r,
		Device:       "tty",
		Logger:       tlog,
		RectWidth:    cfg.Display.RectWidth,
		RectHeight:   cfg.Display.RectHeight,
		LogLines:     cfg.Display.LogLines,
		ReleaseDelay: time.Duration(cfg.Display.ReleaseDelayMS) * time.Millisecond,
		Width:        width,
		Height:       height,
	})

	fmt.Printf("Routed %d events\n", r.Count())
	if db != nil {
		fmt.Printf("Saved %d records to %s\n", db.Saved(), cfg.Storage.Path)
	}
	if rec != nil {
		return finishCapture(rec, flagCapture, err)
	}
	return err
}

// finishCapture closes the capture writer after the tester stopped with
// runErr. A close failure is never hidden behind a cancelled run, and the
// event count is only reported for a complete file.
func finishCapture(rec *capture.Writer, path string, runErr error) error {
	if err := rec.Close(); err != nil {
		err = fmt.Errorf("capture %s is incomplete: %w", path, err)
		if runErr == nil || errors.Is(runErr, context.Canceled) {
			return err
		}
		return errors.Join(runErr, err)
	}
	fmt.Printf("Captured %d events to %s\n", rec.Count(), path)
	return runErr
}
