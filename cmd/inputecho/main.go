// inputecho routes keyboard, mouse, gamepad and focus events through a
// single dispatcher and echoes every one of them.
//
// Usage:
//
//	inputecho run                 - Interactive tester in this terminal
//	inputecho replay [script]     - Route a script or capture file
//	inputecho serve               - SSH server, one tester per session
//	inputecho history             - List recorded sessions
//	inputecho scripts             - List available scripts
//
// Global flags:
//
//	--config <file>    - Configuration file (default: ~/.inputecho/inputecho.yaml)
//	--db <path>        - Event history database (default: ~/.inputecho/events.db)
//	--log-level <lvl>  - debug, info, warn or error
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/inputecho/internal/config"
	"github.com/vovakirdan/inputecho/internal/logger"
	"github.com/vovakirdan/inputecho/internal/storage"
)

var (
	// Global flags
	flagConfigPath string
	flagDBPath     string
	flagLogLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "inputecho",
	Short: "inputecho - See every input event your terminal delivers",
	Long: `inputecho turns raw device input into typed events, routes each one
through a single dispatcher and echoes the result.

Available commands:
  run      - Interactive tester (keyboard, mouse, focus)
  replay   - Route a YAML script or a binary capture
  serve    - Start SSH server, one tester per connection
  history  - Browse recorded sessions
  scripts  - List built-in and user scripts

Examples:
  inputecho run
  inputecho run --capture session.icap
  inputecho replay demo
  inputecho replay session.icap --sink console,log
  inputecho serve --ssh :2222
  inputecho history show 3f2a`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if flagConfigPath != "" {
			config.SetConfigPath(flagConfigPath)
		}
		if err := config.Init(); err != nil {
			return err
		}

		cfg := config.Get()
		if cmd.Flags().Changed("db") {
			cfg.Storage.Path = flagDBPath
		}
		level := cfg.Logging.Level
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		if err := logger.Configure(level, cfg.Logging.Timestamps); err != nil {
			return err
		}

		if used := config.ConfigFileUsed(); used != "" {
			logger.Debug("config loaded", "file", used)
		}
		return nil
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.inputecho/events.db", "Path to event history database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(scriptsCmd)
}

// signalContext is cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openHistory opens the history database, or returns nil when history is
// disabled in the config.
func openHistory() (*storage.Store, error) {
	cfg := config.Get()
	if !cfg.Storage.Enabled {
		return nil, nil
	}
	return storage.Open(cfg.Storage.Path)
}

// startSession opens the history database and registers a new session in
// it. A nil store means history is off; failures only disable history.
func startSession(source string) (*storage.Store, string) {
	store, err := openHistory()
	if err != nil {
		logger.Warn("could not open event database, history disabled", "error", err)
		return nil, ""
	}
	if store == nil {
		return nil, ""
	}

	id := uuid.NewString()
	if err := store.CreateSession(id, source); err != nil {
		logger.Warn("could not create session, history disabled", "error", err)
		store.Close()
		return nil, ""
	}
	logger.Debug("session started", "session", id, "source", source)
	return store, id
}

// exitOnError prints err and exits. Cancellation by a signal is a clean exit.
func exitOnError(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
