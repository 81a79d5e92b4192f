package timeline

import (
	"fmt"

	"github.com/agnivade/levenshtein"
)

// Validation error codes (E100-E199).
const (
	ErrPhaseNameEmpty  = "E101" // phase without a name
	ErrJumpFromEmpty   = "E102" // jump without a source name
	ErrJumpToEmpty     = "E103" // jump without a target name
	ErrCueEmitterUnset = "E104" // cue without an emitter
	ErrUnknownName     = "E105" // configured name matches no phase or jump
	ErrDuplicatePhase  = "E106" // phase name used more than once
	ErrChainedJump     = "E107" // jump target is only another jump's source
)

// Severities. Warnings describe tables that play, but maybe not as meant.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

const maxSuggestDistance = 3

// ValidationError describes one problem found in a table.
type ValidationError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// NamedRef is a name configured outside the table (the start phase, a
// debug phase) that must resolve to a phase or jump.
type NamedRef struct {
	Label string
	Name  string
}

// Validate checks a table for authoring problems. It reports every
// problem found rather than stopping at the first. Empty refs are skipped.
// The table's own StartPhase is always checked.
//
// Players never call Validate; a failed Play is the only runtime check.
func Validate(t *Table, refs ...NamedRef) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]int)
	for i, p := range t.Phases {
		if p.Name == "" {
			errs = append(errs, ValidationError{
				Field:    fmt.Sprintf("phases[%d].name", i),
				Message:  "phase name is empty",
				Code:     ErrPhaseNameEmpty,
				Severity: SeverityError,
			})
		} else if first, dup := seen[p.Name]; dup {
			errs = append(errs, ValidationError{
				Field:    fmt.Sprintf("phases[%d].name", i),
				Message:  fmt.Sprintf("duplicate phase name %q (phases[%d] wins)", p.Name, first),
				Code:     ErrDuplicatePhase,
				Severity: SeverityWarning,
			})
		} else {
			seen[p.Name] = i
		}

		errs = append(errs, checkCues(i, p, "on_enter", p.OnEnter)...)
		errs = append(errs, checkCues(i, p, "on_stop", p.OnStop)...)
		errs = append(errs, checkCues(i, p, "on_clear", p.OnClear)...)
	}

	for i, j := range t.Jumps {
		if j.From == "" {
			errs = append(errs, ValidationError{
				Field:    fmt.Sprintf("jumps[%d].from", i),
				Message:  "jump source name is empty",
				Code:     ErrJumpFromEmpty,
				Severity: SeverityError,
			})
		}
		if j.To == "" {
			errs = append(errs, ValidationError{
				Field:    fmt.Sprintf("jumps[%d].to", i),
				Message:  "jump target name is empty",
				Code:     ErrJumpToEmpty,
				Severity: SeverityError,
			})
			continue
		}
		if _, p := t.FindPhase(j.To); p == nil {
			code, msg := ErrUnknownName, fmt.Sprintf("jump target %q is not a phase", j.To)
			if isJumpSource(t, j.To) {
				code, msg = ErrChainedJump, fmt.Sprintf("jump target %q is another jump; jumps are not followed transitively", j.To)
			}
			errs = append(errs, ValidationError{
				Field:    fmt.Sprintf("jumps[%d].to", i),
				Message:  withSuggestion(t, msg, j.To),
				Code:     code,
				Severity: SeverityError,
			})
		}
	}

	all := append([]NamedRef{{Label: "start phase", Name: t.StartPhase}}, refs...)
	for _, ref := range all {
		if ref.Name == "" || t.HasName(ref.Name) {
			continue
		}
		errs = append(errs, ValidationError{
			Field:    ref.Label,
			Message:  withSuggestion(t, fmt.Sprintf("unknown %s %q", ref.Label, ref.Name), ref.Name),
			Code:     ErrUnknownName,
			Severity: SeverityError,
		})
	}

	return errs
}

// HasErrors reports whether any entry is error severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Suggest returns the known name closest to name, or "" when nothing is
// within a small edit distance.
func Suggest(t *Table, name string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, candidate := range t.Names() {
		d := levenshtein.ComputeDistance(name, candidate)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

func checkCues(phaseIdx int, p Phase, list string, cues []Cue) []ValidationError {
	var errs []ValidationError
	for i, c := range cues {
		if c.Emitter.IsSet() {
			continue
		}
		errs = append(errs, ValidationError{
			Field:    fmt.Sprintf("phases[%d].%s[%d].emitter", phaseIdx, list, i),
			Message:  fmt.Sprintf("emitter is not set in phase %q", p.Name),
			Code:     ErrCueEmitterUnset,
			Severity: SeverityError,
		})
	}
	return errs
}

func isJumpSource(t *Table, name string) bool {
	for _, j := range t.Jumps {
		if j.From == name {
			return true
		}
	}
	return false
}

func withSuggestion(t *Table, msg, name string) string {
	if s := Suggest(t, name); s != "" && s != name {
		return fmt.Sprintf("%s (did you mean %q?)", msg, s)
	}
	return msg
}
