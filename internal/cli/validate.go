package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/phaseplay/internal/canon"
	"github.com/roach88/phaseplay/internal/timeline"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	DebugPhase string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Hash   string                     `json:"hash"`
	Phases int                        `json:"phases"`
	Jumps  int                        `json:"jumps"`
	Errors []timeline.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <timeline>",
		Short: "Check a timeline for authoring mistakes",
		Long: `Check a YAML or CUE timeline without playing it.

Reports empty names, unset cue emitters, duplicate phases, jumps to
unknown phases or to other jumps, and configured start or debug phases
that name nothing. Duplicate phases are warnings; everything else fails
validation.

Exit codes:
  0 - Timeline valid (warnings allowed)
  1 - Validation errors
  2 - Timeline could not be loaded

Examples:
  phaseplay validate show.yaml
  phaseplay validate show.cue --debug-phase finale --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DebugPhase, "debug-phase", "", "debug phase that must resolve (default player.debug_phase)")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	tbl, err := loadTimeline(formatter, path)
	if err != nil {
		return err
	}

	debugPhase := opts.DebugPhase
	if debugPhase == "" {
		debugPhase = opts.Config.Player.DebugPhase
	}
	errs := timeline.Validate(tbl,
		timeline.NamedRef{Label: "configured start phase", Name: opts.Config.Player.StartPhase},
		timeline.NamedRef{Label: "debug phase", Name: debugPhase},
	)

	hash, err := canon.TableHash(tbl)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to fingerprint timeline", err)
	}

	result := ValidationResult{
		Valid:  !timeline.HasErrors(errs),
		Hash:   hash,
		Phases: len(tbl.Phases),
		Jumps:  len(tbl.Jumps),
		Errors: errs,
	}
	opts.logger().Debug("timeline validated", "path", path, "hash", hash, "problems", len(errs))

	if formatter.JSON() {
		return outputValidateJSON(formatter, result)
	}
	return outputValidateText(formatter, result)
}

func outputValidateJSON(formatter *OutputFormatter, result ValidationResult) error {
	resp := CLIResponse{Status: "ok", Data: result}
	if !result.Valid {
		first := firstError(result.Errors)
		resp.Status = "error"
		resp.Error = &CLIError{Code: first.Code, Message: first.Message}
	}
	if err := formatter.Respond(resp); err != nil {
		return err
	}
	if !result.Valid {
		return validationFailed(result.Errors)
	}
	return nil
}

func outputValidateText(formatter *OutputFormatter, result ValidationResult) error {
	w := formatter.Writer

	if result.Valid {
		fmt.Fprintf(w, "✓ Timeline valid (%d phase(s), %d jump(s))\n", result.Phases, result.Jumps)
	} else {
		fmt.Fprintln(w, "✗ Validation failed")
	}
	if len(result.Errors) > 0 {
		fmt.Fprintln(w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s %s [%s]: %s\n", e.Severity, e.Code, e.Field, e.Message)
	}
	formatter.Debug("timeline fingerprint", "hash", result.Hash)

	if !result.Valid {
		return validationFailed(result.Errors)
	}
	return nil
}

func firstError(errs []timeline.ValidationError) timeline.ValidationError {
	for _, e := range errs {
		if e.Severity == timeline.SeverityError {
			return e
		}
	}
	return timeline.ValidationError{}
}

func validationFailed(errs []timeline.ValidationError) error {
	n := 0
	for _, e := range errs {
		if e.Severity == timeline.SeverityError {
			n++
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", n))
}
