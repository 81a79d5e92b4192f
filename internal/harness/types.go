package harness

import (
	"github.com/roach88/phaseplay/internal/journal"
	"github.com/roach88/phaseplay/internal/player"
)

// Trace event types.
const (
	EventCommand  = "command"  // emitter command read back from the journal
	EventRejected = "rejected" // play request refused by the player
)

// TraceEvent is one entry of a scenario trace: either a journaled emitter
// command or a rejected play request.
type TraceEvent struct {
	Type    string `json:"type"`
	Seq     int64  `json:"seq,omitempty"`
	Step    int    `json:"step"`
	Kind    string `json:"kind,omitempty"`
	Cause   string `json:"cause,omitempty"`
	Emitter string `json:"emitter,omitempty"`
	Phase   string `json:"phase,omitempty"`
	Elapsed int64  `json:"elapsed_ns"`
	Seek    int64  `json:"seek_ns,omitempty"`

	// Code and Name describe rejected plays.
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// Label renders the event as "kind:emitter", or "rejected:name".
// Used by command_order assertions and failure messages.
func (e TraceEvent) Label() string {
	if e.Type == EventRejected {
		return EventRejected + ":" + e.Name
	}
	return e.Kind + ":" + e.Emitter
}

func commandEvent(step int, entry journal.Entry) TraceEvent {
	c := entry.Command
	return TraceEvent{
		Type:    EventCommand,
		Seq:     entry.Seq,
		Step:    step,
		Kind:    string(c.Kind),
		Cause:   string(c.Cause),
		Emitter: string(c.Emitter),
		Phase:   c.Phase,
		Elapsed: int64(c.Elapsed),
		Seek:    int64(c.Seek),
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected and every
	// assertion held.
	Pass bool `json:"pass"`

	// SessionID is the journal session the scenario ran in.
	SessionID string `json:"session_id"`

	// Trace holds journaled commands and rejected plays in issue order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the player state after the last step.
	State player.State `json:"state"`

	// Emitters maps each emitter to its final recorder status.
	Emitters map[string]string `json:"emitters"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
		Emitters: make(map[string]string),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Commands returns only the command events of the trace.
func (r *Result) Commands() []TraceEvent {
	var out []TraceEvent
	for _, e := range r.Trace {
		if e.Type == EventCommand {
			out = append(out, e)
		}
	}
	return out
}
