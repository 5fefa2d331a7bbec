package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/inputecho/internal/config"
	"github.com/vovakirdan/inputecho/internal/logger"
	"github.com/vovakirdan/inputecho/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inputecho SSH server",
	Long: `Start an SSH server that runs the input tester for every connection.

Each SSH connection gets its own dispatcher and state. Records of every
session go to the shared history database (when enabled) and to the
debug log.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.inputecho/host_key

Examples:
  inputecho serve                           # Listen on :23235 with auto-generated key
  inputecho serve --ssh :2222               # Listen on port 2222
  inputecho serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23235`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		exitOnError(runServe(cmd))
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes before disconnecting")
}

func runServe(cmd *cobra.Command) error {
	cfg := config.Get()

	sc := tui.DefaultSSHServerConfig()
	sc.Address = cfg.Serve.Address
	sc.HostKeyPath = cfg.Serve.HostKeyPath
	sc.IdleTimeout = time.Duration(cfg.Serve.IdleTimeoutMinutes) * time.Minute
	if cmd.Flags().Changed("ssh") {
		sc.Address = flagSSHAddr
	}
	if cmd.Flags().Changed("host-key") {
		sc.HostKeyPath = flagHostKey
	}
	if cmd.Flags().Changed("idle-timeout") {
		sc.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	}

	sc.DBPath = ""
	if cfg.Storage.Enabled {
		sc.DBPath = cfg.Storage.Path
	}
	sc.Logger = logger.WithPrefix("ssh")
	sc.Tester = tui.Options{
		RectWidth:    cfg.Display.RectWidth,
		RectHeight:   cfg.Display.RectHeight,
		LogLines:     cfg.Display.LogLines,
		ReleaseDelay: time.Duration(cfg.Display.ReleaseDelayMS) * time.Millisecond,
		StartX:       cfg.Display.StartX,
		StartY:       cfg.Display.StartY,
	}

	server, err := tui.NewSSHServer(sc)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	port := sc.Address
	if i := strings.LastIndex(port, ":"); i >= 0 {
		port = port[i+1:]
	}
	fmt.Printf("Starting inputecho SSH server on %s\n", server.Addr())
	fmt.Printf("Connect with: ssh localhost -p %s\n", port)
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signalContext()
	defer stop()

	return server.ListenAndServe(ctx)
}
