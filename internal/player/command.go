package player

import (
	"time"

	"github.com/roach88/phaseplay/internal/timeline"
)

// CommandKind names what the player asked an emitter to do.
type CommandKind string

const (
	KindStart   CommandKind = "start"
	KindStop    CommandKind = "stop"
	KindClear   CommandKind = "clear"
	KindAdvance CommandKind = "advance" // preview tick
)

// Cause says why a command was issued.
type Cause string

const (
	CauseEnter   Cause = "enter"   // play reset of the phase's own enter cues
	CauseSibling Cause = "sibling" // play reset of another phase's enter cues
	CauseCue     Cause = "cue"     // cue delay elapsed
	CausePreview Cause = "preview" // preview tick
)

// Command describes one command issued to an emitter.
type Command struct {
	Kind    CommandKind        `json:"kind"`
	Cause   Cause              `json:"cause"`
	Emitter timeline.EmitterID `json:"emitter"`
	Phase   string             `json:"phase"`

	// Elapsed is the phase time when the command was issued.
	Elapsed time.Duration `json:"elapsed_ns"`

	// Seek is the start position for starts and the step for advances.
	Seek time.Duration `json:"seek_ns,omitempty"`
}

// Sink observes issued commands. Implementations must not call back into
// the player.
type Sink interface {
	Record(cmd Command)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Command)

// Record implements Sink.
func (f SinkFunc) Record(cmd Command) { f(cmd) }

// MultiSink fans commands out to several sinks in order.
type MultiSink []Sink

// Record implements Sink.
func (m MultiSink) Record(cmd Command) {
	for _, s := range m {
		s.Record(cmd)
	}
}
