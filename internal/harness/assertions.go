package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/phaseplay/internal/timeline"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] step %d %s\n", i+1, event.Step, event.Label())
		}
	}

	return buf.String()
}

// matchCommand reports whether a command event satisfies the assertion's
// filters. Empty filters match anything.
func matchCommand(e TraceEvent, a Assertion) bool {
	if e.Type != EventCommand {
		return false
	}
	return (a.Kind == "" || e.Kind == a.Kind) &&
		(a.Emitter == "" || e.Emitter == a.Emitter) &&
		(a.Cause == "" || e.Cause == a.Cause) &&
		(a.Phase == "" || e.Phase == a.Phase)
}

func describeFilter(a Assertion) string {
	var parts []string
	for _, kv := range [][2]string{{"kind", a.Kind}, {"emitter", a.Emitter}, {"cause", a.Cause}, {"phase", a.Phase}} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	return strings.Join(parts, " ")
}

// assertCommandContains checks that at least one command matches.
func assertCommandContains(trace []TraceEvent, a Assertion) error {
	for _, e := range trace {
		if matchCommand(e, a) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertCommandContains,
		Expected: fmt.Sprintf("command with %s", describeFilter(a)),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertCommandOrder checks that the labels appear as a subsequence of the
// trace. Intervening events are allowed and labels may repeat.
func assertCommandOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, e := range trace {
		if next < len(a.Commands) && e.Label() == a.Commands[next] {
			next++
		}
	}
	if next == len(a.Commands) {
		return nil
	}
	return &AssertionError{
		Type:     AssertCommandOrder,
		Expected: fmt.Sprintf("commands in order: %v", a.Commands),
		Actual:   fmt.Sprintf("matched %d of %d, first missing %q", next, len(a.Commands), a.Commands[next]),
		Trace:    trace,
	}
}

// assertCommandCount checks that exactly Count commands match.
func assertCommandCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, e := range trace {
		if matchCommand(e, a) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertCommandCount,
			Expected: fmt.Sprintf("%d commands with %s", a.Count, describeFilter(a)),
			Actual:   fmt.Sprintf("%d commands", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState checks the player state and emitter statuses after the
// last step. Only the fields named in Expect are checked.
func assertFinalState(result *Result, a Assertion) error {
	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		expected := a.Expect[key]
		actual, ok, err := stateField(result, key, expected)
		if err != nil {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v", key, expected),
				Actual:   err.Error(),
			}
		}
		if !ok {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v", key, expected),
				Actual:   fmt.Sprintf("field %q = %v", key, actual),
			}
		}
	}
	return nil
}

// stateField compares one final_state field. It returns the actual value
// for messages and whether it matched.
func stateField(result *Result, key string, expected any) (any, bool, error) {
	st := result.State
	switch key {
	case "phase":
		s, ok := expected.(string)
		if !ok {
			return nil, false, fmt.Errorf("phase must be a string, got %T", expected)
		}
		return st.Phase, st.Phase == s, nil

	case "running":
		b, ok := expected.(bool)
		if !ok {
			return nil, false, fmt.Errorf("running must be a bool, got %T", expected)
		}
		return st.Running, st.Running == b, nil

	case "mode":
		s, ok := expected.(string)
		if !ok {
			return nil, false, fmt.Errorf("mode must be a string, got %T", expected)
		}
		return st.Mode.String(), st.Mode.String() == s, nil

	case "elapsed":
		secs, ok := toSeconds(expected)
		if !ok {
			return nil, false, fmt.Errorf("elapsed must be a number of seconds, got %T", expected)
		}
		return st.Elapsed, st.Elapsed == timeline.Seconds(secs), nil

	case "active":
		want, err := toStrings(expected)
		if err != nil {
			return nil, false, fmt.Errorf("active: %w", err)
		}
		got := make([]string, len(st.Active))
		for i, id := range st.Active {
			got[i] = string(id)
		}
		return got, slices.Equal(got, want), nil

	case "emitters":
		want, ok := expected.(map[string]any)
		if !ok {
			return nil, false, fmt.Errorf("emitters must be a map of id to status, got %T", expected)
		}
		for id, status := range want {
			if result.Emitters[id] != status {
				return fmt.Sprintf("%s=%s", id, result.Emitters[id]), false, nil
			}
		}
		return result.Emitters, true, nil

	default:
		return nil, false, fmt.Errorf("unknown field")
	}
}

func toSeconds(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toStrings(v any) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("must be a list, got %T", v)
	}
	out := make([]string, len(list))
	for i, elem := range list {
		s, ok := elem.(string)
		if !ok {
			return nil, fmt.Errorf("[%d] must be a string, got %T", i, elem)
		}
		out[i] = s
	}
	return out, nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCommandContains:
			err = assertCommandContains(result.Trace, assertion)
		case AssertCommandOrder:
			err = assertCommandOrder(result.Trace, assertion)
		case AssertCommandCount:
			err = assertCommandCount(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
