package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/inputecho/internal/config"
	"github.com/vovakirdan/inputecho/internal/input"
	"github.com/vovakirdan/inputecho/internal/platform/tui"
	"github.com/vovakirdan/inputecho/internal/script"
	"github.com/vovakirdan/inputecho/internal/storage"
)

var (
	flagHistoryLimit int
	flagShowLimit    int
	flagClearYes     bool
	flagExportOut    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sessions",
	Long: `List the most recent sessions in the event history database.

Sessions are recorded by "run", by every SSH connection of "serve" and by
"replay --sink store".

Examples:
  inputecho history
  inputecho history --limit 50
  inputecho history show 3f2a9c1d
  inputecho history browse
  inputecho history export 3f2a9c1d -o session.yaml
  inputecho history clear --yes`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		exitOnError(runHistoryList())
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "Show the records of a session",
	Long: `Print the records of one session, followed by a count per event kind.
The session can be given by any unique prefix of its id.`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		exitOnError(runHistoryShow(args[0]))
	},
}

var historyBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse sessions interactively",
	Long: `Browse recorded sessions in a full-screen table.

Controls:
  Tab/Shift+Tab  - Next/previous session
  Up/Down/j/k    - Scroll records
  Q/Esc          - Quit`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		exitOnError(runHistoryBrowse())
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <session>",
	Short: "Export a session as a replayable script",
	Long: `Write the records of a session as a YAML event script. The script
keeps each record's offset from the first one, so "replay --realtime"
reproduces the original timing.`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		exitOnError(runHistoryExport(args[0]))
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear [session]",
	Short: "Delete one session or the whole history",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ref := ""
		if len(args) > 0 {
			ref = args[0]
		}
		exitOnError(runHistoryClear(ref))
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of sessions to list")
	historyShowCmd.Flags().IntVar(&flagShowLimit, "limit", 0, "Number of records to print (0 = all)")
	historyExportCmd.Flags().StringVarP(&flagExportOut, "output", "o", "", "Output file (default: stdout)")
	historyClearCmd.Flags().BoolVarP(&flagClearYes, "yes", "y", false, "Do not ask for confirmation")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyBrowseCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
}

// requireHistory opens the history database, failing when it is disabled.
func requireHistory() (*storage.Store, error) {
	store, err := openHistory()
	if err != nil {
		return nil, fmt.Errorf("opening event database: %w", err)
	}
	if store == nil {
		return nil, errors.New("event history is disabled (storage.enabled: false)")
	}
	return store, nil
}

// resolveSession finds a session by id or by a unique id prefix.
func resolveSession(store *storage.Store, ref string) (*storage.Session, error) {
	sess, err := store.SessionByID(ref)
	if err != nil || sess != nil {
		return sess, err
	}

	sessions, err := store.Sessions(10000)
	if err != nil {
		return nil, err
	}
	var found *storage.Session
	for i := range sessions {
		if !strings.HasPrefix(sessions[i].ID, ref) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("session prefix %q is ambiguous", ref)
		}
		found = &sessions[i]
	}
	if found == nil {
		return nil, fmt.Errorf("unknown session %q", ref)
	}
	return found, nil
}

func runHistoryList() error {
	store, err := requireHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.Sessions(flagHistoryLimit)
	if err != nil {
		return err
	}

	fmt.Printf("Sessions - %s\n", config.Get().Storage.Path)
	fmt.Println()

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		fmt.Println()
		fmt.Println("Run 'inputecho run' to record one.")
		return nil
	}

	fmt.Printf("  %-36s  %-20s  %-7s  %s\n", "Session", "Source", "Records", "Started")
	fmt.Printf("  %-36s  %-20s  %-7s  %s\n", "-------", "------", "-------", "-------")
	for _, s := range sessions {
		fmt.Printf("  %-36s  %-20s  %-7d  %s\n", s.ID, s.Source, s.Records, s.StartedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runHistoryShow(ref string) error {
	store, err := requireHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := resolveSession(store, ref)
	if err != nil {
		return err
	}
	records, err := store.SessionRecords(sess.ID, flagShowLimit)
	if err != nil {
		return err
	}

	fmt.Printf("Session %s (%s), started %s\n", sess.ID, sess.Source, sess.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Println()
	for _, r := range records {
		fmt.Printf("  %5d  %s  %s\n", r.Seq, r.Record.Time.Local().Format("15:04:05.000"), r.Record)
	}
	if len(records) < sess.Records {
		fmt.Printf("  ... %d more\n", sess.Records-len(records))
	}

	counts, err := store.KindCounts(sess.ID)
	if err != nil {
		return err
	}
	fmt.Println()
	for _, k := range input.Kinds() {
		if n := counts[k]; n > 0 {
			fmt.Printf("  %-20s %d\n", k, n)
		}
	}
	return nil
}

func runHistoryBrowse() error {
	store, err := requireHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return tui.RunHistory(store, width, height)
}

// sessionScript converts stored records to a script. Offsets are relative
// to the first record and never decrease.
func sessionScript(sess *storage.Session, records []storage.StoredRecord) *script.Script {
	s := &script.Script{Name: "session-" + sess.ID[:min(8, len(sess.ID))], Device: sess.Source}
	if len(records) == 0 {
		return s
	}
	base := records[0].Record.Time
	var last time.Duration
	for _, r := range records {
		step := script.FromRecord(r.Record, base)
		if step.Device == sess.Source {
			step.Device = ""
		}
		// Scripts cannot go back in time
		last = max(last, step.At)
		step.At = last
		s.Events = append(s.Events, step)
	}
	return s
}

func runHistoryExport(ref string) error {
	store, err := requireHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := resolveSession(store, ref)
	if err != nil {
		return err
	}
	records, err := store.SessionRecords(sess.ID, 0)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("session %s has no records", sess.ID)
	}

	data, err := script.Encode(sessionScript(sess, records))
	if err != nil {
		return err
	}
	if flagExportOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(flagExportOut, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Exported %d records to %s\n", len(records), flagExportOut)
	return nil
}

func runHistoryClear(ref string) error {
	store, err := requireHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	var sess *storage.Session
	prompt := "Delete the whole event history?"
	if ref != "" {
		if sess, err = resolveSession(store, ref); err != nil {
			return err
		}
		prompt = fmt.Sprintf("Delete session %s (%d records)?", sess.ID, sess.Records)
	}

	if !flagClearYes {
		confirmed := false
		err := huh.NewConfirm().
			Title(prompt).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Nothing deleted.")
			return nil
		}
	}

	if sess != nil {
		if err := store.ClearSession(sess.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted session %s\n", sess.ID)
		return nil
	}
	if err := store.ClearAll(); err != nil {
		return err
	}
	fmt.Println("Event history cleared")
	return nil
}
