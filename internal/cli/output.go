package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// Process exit codes.
const (
	ExitSuccess      = 0 // command succeeded
	ExitFailure      = 1 // timeline invalid, scenario failed or play rejected
	ExitCommandError = 2 // bad arguments, unreadable timeline or journal
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError wrapping err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Errors that carry no code
// exit with ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the JSON envelope every command writes in json format.
type CLIResponse struct {
	Status    string    `json:"status"` // "ok" or "error"
	Data      any       `json:"data,omitempty"`
	Error     *CLIError `json:"error,omitempty"`
	SessionID string    `json:"session_id,omitempty"` // journal session the command wrote or read
}

// CLIError is the error part of a CLIResponse. Codes are timeline loader
// codes (E001-E006), validation codes (E101-E107) or the E_* codes of the
// commands.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results to stdout as text or as a
// CLIResponse. Diagnostics never go through it; they go to Logger, which
// the root command points at stderr.
type OutputFormatter struct {
	Format string
	Writer io.Writer
	Logger *slog.Logger
}

// JSON reports whether results are written as CLIResponse envelopes.
func (f *OutputFormatter) JSON() bool { return f.Format == "json" }

// Respond writes resp as indented JSON.
func (f *OutputFormatter) Respond(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// Success writes data. In text format data is printed on one line.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return f.Respond(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes a coded error. In text format it reads
//
//	Error [E005]: timeline file not found (path=show.yaml)
//
// with string-map details rendered as sorted key=value pairs.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return f.Respond(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	line := fmt.Sprintf("Error [%s]: %s", code, message)
	if d := renderDetails(details); d != "" {
		line += " (" + d + ")"
	}
	_, err := fmt.Fprintln(f.Writer, line)
	return err
}

// Debug logs a diagnostic. It shows up with --verbose or
// PHASEPLAY_LOG_LEVEL=debug.
func (f *OutputFormatter) Debug(msg string, args ...any) {
	if f.Logger != nil {
		f.Logger.Debug(msg, args...)
	}
}

func renderDetails(details any) string {
	switch d := details.(type) {
	case nil:
		return ""
	case map[string]string:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + d[k]
		}
		return strings.Join(pairs, " ")
	default:
		return fmt.Sprint(d)
	}
}
