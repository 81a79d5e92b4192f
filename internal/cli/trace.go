package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/phaseplay/internal/journal"
	"github.com/roach88/phaseplay/internal/timeline"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Session string
	Emitter string // optional - filter to one emitter
	List    bool
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session  journal.Session `json:"session"`
	Commands []journal.Entry `json:"commands"`
	Stats    TraceStats      `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Total    int            `json:"total"`
	ByKind   map[string]int `json:"by_kind"`
	Emitters []string       `json:"emitters"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [journal-db]",
		Short: "Print journaled emitter commands",
		Long: `Print the emitter commands journaled for a playback session.

Reads the latest session unless --session names one. The journal
defaults to journal.path from the config.

Examples:
  phaseplay trace show.db
  phaseplay trace show.db --session 0192f7c4-...
  phaseplay trace show.db --emitter sparks --format json
  phaseplay trace show.db --list`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.Config.Journal.Path
			if len(args) == 1 {
				path = args[0]
			}
			return runTrace(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (default latest)")
	cmd.Flags().StringVar(&opts.Emitter, "emitter", "", "filter to one emitter")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list sessions instead of commands")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	if path == "" {
		return NewExitError(ExitCommandError, "no journal given and journal.path is not configured")
	}
	// Opening creates the database; a trace of a missing file is an error.
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "journal not found", err)
	}

	st, err := journal.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	if opts.List {
		sessions, err := st.Sessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		return outputSessions(formatter, sessions)
	}

	session, err := findSession(ctx, st, opts.Session)
	if errors.Is(err, sql.ErrNoRows) {
		if formatter.JSON() {
			return formatter.Success(TraceResult{Commands: []journal.Entry{}, Stats: TraceStats{ByKind: map[string]int{}, Emitters: []string{}}})
		}
		fmt.Fprintln(formatter.Writer, "No sessions journaled.")
		return nil
	}
	if err != nil {
		return err
	}

	entries, err := st.Commands(ctx, session.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read commands", err)
	}

	result := buildTrace(session, entries, timeline.EmitterID(opts.Emitter))
	if formatter.JSON() {
		return formatter.Respond(CLIResponse{Status: "ok", SessionID: session.ID, Data: result})
	}
	outputTraceText(formatter, result)
	return nil
}

// findSession resolves the requested session, or the latest when id is
// empty. An unknown id is a command error.
func findSession(ctx context.Context, st *journal.Store, id string) (journal.Session, error) {
	if id == "" {
		return st.LatestSession(ctx)
	}
	sessions, err := st.Sessions(ctx)
	if err != nil {
		return journal.Session{}, WrapExitError(ExitCommandError, "failed to list sessions", err)
	}
	for _, s := range sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return journal.Session{}, NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", id))
}

// buildTrace filters entries to one emitter when set and summarises them.
func buildTrace(session journal.Session, entries []journal.Entry, emitter timeline.EmitterID) TraceResult {
	result := TraceResult{
		Session:  session,
		Commands: make([]journal.Entry, 0, len(entries)),
		Stats:    TraceStats{ByKind: make(map[string]int), Emitters: []string{}},
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if emitter != "" && e.Command.Emitter != emitter {
			continue
		}
		result.Commands = append(result.Commands, e)
		result.Stats.ByKind[string(e.Command.Kind)]++
		if id := string(e.Command.Emitter); !seen[id] {
			seen[id] = true
			result.Stats.Emitters = append(result.Stats.Emitters, id)
		}
	}
	result.Stats.Total = len(result.Commands)
	sort.Strings(result.Stats.Emitters)
	return result
}

func outputSessions(formatter *OutputFormatter, sessions []journal.Session) error {
	if formatter.JSON() {
		return formatter.Respond(CLIResponse{Status: "ok", Data: sessions})
	}

	w := formatter.Writer
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions journaled.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%3d  %s  phase=%q commands=%d table=%s\n", s.Ordinal, s.ID, s.Phase, s.Commands, shortHash(s.TableHash))
	}
	return nil
}

// outputTraceText outputs the trace result as text.
func outputTraceText(formatter *OutputFormatter, result TraceResult) {
	w := formatter.Writer

	fmt.Fprintf(w, "Session: %s\n", result.Session.ID)
	fmt.Fprintf(w, "Phase: %s\n", result.Session.Phase)
	fmt.Fprintf(w, "Table: %s\n", shortHash(result.Session.TableHash))
	fmt.Fprintln(w)

	if len(result.Commands) == 0 {
		fmt.Fprintln(w, "No commands journaled.")
		return
	}

	for _, e := range result.Commands {
		c := e.Command
		line := fmt.Sprintf("  #%-4d %-8s %-12s cause=%s phase=%s t=%.3fs",
			e.Seq, c.Kind, c.Emitter, c.Cause, c.Phase, c.Elapsed.Seconds())
		if c.Seek != 0 {
			line += fmt.Sprintf(" seek=%.3fs", c.Seek.Seconds())
		}
		fmt.Fprintln(w, line)
	}

	kinds := make([]string, 0, len(result.Stats.ByKind))
	for k := range result.Stats.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %d command(s)", result.Stats.Total)
	for _, k := range kinds {
		fmt.Fprintf(w, ", %s=%d", k, result.Stats.ByKind[k])
	}
	fmt.Fprintln(w)
	formatter.Debug("session timeline", "session", result.Session.ID, "table_hash", result.Session.TableHash)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
