package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/phaseplay/internal/harness"
	"github.com/roach88/phaseplay/internal/journal"
	"github.com/roach88/phaseplay/internal/player"
)

// Run error codes.
const (
	ErrCodeInvalidSteps = "E_INVALID_STEPS"
	ErrCodePlayRejected = "E_PLAY_REJECTED"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Steps      string
	Journal    string
	StopPolicy string
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	Trace    []harness.TraceEvent `json:"trace"`
	State    player.State         `json:"state"`
	Emitters map[string]string    `json:"emitters"`
	Errors   []string             `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <timeline>",
		Short: "Play a timeline against recording emitters",
		Long: `Drive the playback engine through a list of steps and print every
emitter command it issues.

Steps are comma separated:
  play:<name>    request a phase or jump
  activate       host activation (plays the start phase when idle)
  stop           stop playback
  tick:<secs>    advance phase time in running mode
  preview:<secs> editing-mode preview tick after <secs> of wall time

A rejected play fails the run with exit code 1.

Examples:
  phaseplay run show.yaml --steps "play:intro,tick:0.5,stop"
  phaseplay run show.yaml --steps "play:skip,tick:1" --journal show.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlayback(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Steps, "steps", "", "comma separated steps (required)")
	_ = cmd.MarkFlagRequired("steps")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "journal commands to this SQLite database")
	cmd.Flags().StringVar(&opts.StopPolicy, "stop-policy", "", "keep or clear (default player.stop_policy)")

	return cmd
}

func runPlayback(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	steps, err := ParseSteps(opts.Steps)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidSteps, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --steps", err)
	}
	if _, err := loadTimeline(formatter, path); err != nil {
		return err
	}

	policy := opts.StopPolicy
	if policy == "" {
		policy = opts.Config.Player.StopPolicy
	}
	if _, ok := player.ParseStopPolicy(policy); !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid stop policy %q: must be keep or clear", policy))
	}

	runOpts := []harness.Option{
		harness.WithLogger(opts.logger()),
		harness.WithStartPhase(opts.Config.Player.StartPhase),
	}
	if opts.Journal != "" {
		st, err := journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer st.Close()
		runOpts = append(runOpts, harness.WithStore(st))
		formatter.Debug("journaling playback", "path", opts.Journal)
	}

	result, err := harness.Run(&harness.Scenario{
		Name:       "run",
		Timeline:   path,
		StopPolicy: policy,
		Steps:      steps,
	}, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "playback failed", err)
	}

	sessionID := ""
	if opts.Journal != "" {
		sessionID = result.SessionID
	}

	if formatter.JSON() {
		resp := CLIResponse{
			Status:    "ok",
			SessionID: sessionID,
			Data: RunResult{
				Trace:    result.Trace,
				State:    result.State,
				Emitters: result.Emitters,
				Errors:   result.Errors,
			},
		}
		if !result.Pass {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodePlayRejected, Message: result.Errors[0]}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	} else {
		outputRunText(formatter, result, sessionID)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d step(s) failed", len(result.Errors)))
	}
	return nil
}

func outputRunText(formatter *OutputFormatter, result *harness.Result, sessionID string) {
	w := formatter.Writer

	if sessionID != "" {
		fmt.Fprintf(w, "Session: %s\n\n", sessionID)
	}
	if len(result.Trace) == 0 {
		fmt.Fprintln(w, "No commands issued.")
	}
	for _, e := range result.Trace {
		fmt.Fprintf(w, "  %s\n", formatTraceEvent(e))
	}

	st := result.State
	active := make([]string, len(st.Active))
	for i, id := range st.Active {
		active[i] = string(id)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Final: phase=%q elapsed=%.3fs running=%t active=[%s]\n",
		st.Phase, st.Elapsed.Seconds(), st.Running, strings.Join(active, " "))

	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s\n", e)
	}
}

func formatTraceEvent(e harness.TraceEvent) string {
	if e.Type == harness.EventRejected {
		return fmt.Sprintf("[step %d] rejected %q: %s", e.Step, e.Name, e.Code)
	}
	line := fmt.Sprintf("[step %d] #%d %-8s %-12s cause=%s phase=%s t=%.3fs",
		e.Step, e.Seq, e.Kind, e.Emitter, e.Cause, e.Phase, float64(e.Elapsed)/1e9)
	if e.Seek != 0 {
		line += fmt.Sprintf(" seek=%.3fs", float64(e.Seek)/1e9)
	}
	return line
}

// ParseSteps parses a comma separated step list such as
// "play:intro,tick:0.5,stop".
func ParseSteps(s string) ([]harness.Step, error) {
	var steps []harness.Step
	for i, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		kind, arg, hasArg := strings.Cut(tok, ":")

		var step harness.Step
		switch kind {
		case "play":
			if !hasArg {
				return nil, fmt.Errorf("step %d: play needs a name (play:<name>)", i)
			}
			name := arg
			step.Play = &name
		case "activate", "stop":
			if hasArg {
				return nil, fmt.Errorf("step %d: %s takes no argument", i, kind)
			}
			step.Activate = kind == "activate"
			step.Stop = kind == "stop"
		case "tick", "preview":
			secs, err := strconv.ParseFloat(arg, 64)
			if !hasArg || err != nil {
				return nil, fmt.Errorf("step %d: %s needs seconds (%s:<secs>)", i, kind, kind)
			}
			if kind == "tick" {
				step.Tick = &secs
			} else {
				step.Preview = &secs
			}
		default:
			return nil, fmt.Errorf("step %d: unknown step %q", i, kind)
		}
		steps = append(steps, step)
	}

	if err := harness.ValidateSteps(steps); err != nil {
		return nil, err
	}
	return steps, nil
}
