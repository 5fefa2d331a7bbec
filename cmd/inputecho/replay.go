package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/inputecho/internal/capture"
	"github.com/vovakirdan/inputecho/internal/config"
	"github.com/vovakirdan/inputecho/internal/input"
	"github.com/vovakirdan/inputecho/internal/logger"
	"github.com/vovakirdan/inputecho/internal/router"
	"github.com/vovakirdan/inputecho/internal/script"
	"github.com/vovakirdan/inputecho/internal/sink"
	"github.com/vovakirdan/inputecho/internal/storage"
)

var (
	flagRealtime bool
	flagSpeed    float64
	flagSinks    []string
	flagDevice   string
)

var replayCmd = &cobra.Command{
	Use:   "replay [script|file.icap]",
	Short: "Route a script or capture file through the dispatcher",
	Long: `Replay events from a YAML script or a binary capture file.

Scripts are looked up as a path, then in ~/.inputecho/scripts and
./scripts, then among the built-ins. Without an argument the built-in
"demo" script is replayed.

Sinks (--sink, or "sinks" in the config):
  console  - Print one line per record to stdout
  log      - Structured log line per record
  store    - Save records to the history database

Examples:
  inputecho replay
  inputecho replay gamepad --realtime
  inputecho replay ./my-script.yaml --sink console,store
  inputecho replay session.icap --realtime --speed 2`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ref := "demo"
		if len(args) > 0 {
			ref = args[0]
		}
		exitOnError(runReplay(cmd, ref))
	},
}

func init() {
	replayCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Honor event offsets instead of replaying at once")
	replayCmd.Flags().Float64Var(&flagSpeed, "speed", 1.0, "Playback speed multiplier (with --realtime)")
	replayCmd.Flags().StringSliceVar(&flagSinks, "sink", nil, "Sinks to deliver records to (console, log, store)")
	replayCmd.Flags().StringVar(&flagDevice, "device", "", "Device for replayed events that do not name one")
}

// openSource resolves ref to a capture or a script. Captures replayed in
// realtime go through the script player, which paces them.
func openSource(ref string, realtime bool, speed float64) (router.Source, string, func(), error) {
	var opts []script.PlayerOption
	if realtime {
		opts = append(opts, script.WithRealtime(speed))
	}

	if capture.IsCapture(ref) {
		rd, err := capture.Open(ref)
		if err != nil {
			return nil, "", nil, err
		}
		if flagDevice != "" {
			rd.WithDevice(input.DeviceID(flagDevice))
		}
		source := "capture:" + filepath.Base(ref)
		if !realtime {
			return rd, source, func() {
				logger.Debug("capture closed", "file", ref, "frames", rd.Frames())
				rd.Close()
			}, nil
		}

		defer rd.Close()
		s, err := rd.Script(strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref)))
		if err != nil {
			return nil, "", nil, err
		}
		p, err := script.NewPlayer(s, opts...)
		if err != nil {
			return nil, "", nil, err
		}
		logger.Debug("capture loaded", "file", ref, "frames", rd.Frames(), "events", p.Len())
		return p, source, func() {}, nil
	}

	s, err := script.Load(ref)
	if err != nil {
		return nil, "", nil, err
	}
	if flagDevice != "" {
		s.Device = flagDevice
	}

	p, err := script.NewPlayer(s, opts...)
	if err != nil {
		return nil, "", nil, err
	}
	logger.Debug("script loaded", "name", s.Name, "source", s.Source, "events", p.Len())
	return p, "script:" + s.Name, func() {}, nil
}

// sinkNames normalizes sink names and rejects unregistered ones before any
// source or session is opened.
func sinkNames(names []string) ([]string, error) {
	names = slices.Clone(names)
	for i, n := range names {
		names[i] = strings.ToLower(strings.TrimSpace(n))
		if names[i] != "" && !sink.Exists(names[i]) {
			return nil, fmt.Errorf("%w %q (available: %s)", sink.ErrUnknownSink, names[i], strings.Join(sink.Names(), ", "))
		}
	}
	return names, nil
}

func runReplay(cmd *cobra.Command, ref string) error {
	cfg := config.Get()
	log := logger.WithPrefix("replay")

	realtime := cfg.Replay.Realtime
	if cmd.Flags().Changed("realtime") {
		realtime = flagRealtime
	}
	speed := cfg.Replay.Speed
	if cmd.Flags().Changed("speed") {
		speed = flagSpeed
	}
	if speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", speed)
	}

	names := cfg.Sinks
	if cmd.Flags().Changed("sink") {
		names = flagSinks
	}
	names, err := sinkNames(names)
	if err != nil {
		return err
	}

	src, source, closeSrc, err := openSource(ref, realtime, speed)
	if err != nil {
		return err
	}
	defer closeSrc()

	env := sink.Env{Out: os.Stdout, Logger: log}
	var store *storage.Store
	if slices.Contains(names, "store") {
		store, env.SessionID = startSession(source)
		if store == nil {
			return fmt.Errorf("store sink needs the history database (storage.enabled)")
		}
		defer store.Close()
		env.Store = store
	}

	s, err := sink.Build(names, env)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	r := router.New(input.NewStore(input.DefaultState()), s, router.WithLogger(log))
	if err := r.Run(ctx, src); err != nil {
		return err
	}

	st := r.State()
	log.Info("replay finished",
		"source", source,
		"events", r.Count(),
		"cursor_x", st.CursorX,
		"cursor_y", st.CursorY,
		"mouse_down", st.MouseDown,
	)
	if store != nil {
		log.Info("records saved", "session", env.SessionID)
	}
	return nil
}
