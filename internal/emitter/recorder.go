package emitter

import (
	"fmt"
	"time"

	"github.com/roach88/phaseplay/internal/timeline"
)

// Call names recorded by Recorder.
const (
	CallStart    = "start"
	CallStop     = "stop"
	CallClear    = "clear"
	CallSimulate = "simulate"
)

// Status is a coarse view of what a Recorder would be showing.
type Status int

const (
	StatusIdle     Status = iota // nothing visible
	StatusPlaying                // emitting
	StatusStopping               // not emitting, output still visible
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusStopping:
		return "stopping"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Call is one recorded method call.
type Call struct {
	Name          string
	Time          time.Duration // seek for start, step for simulate
	RetainVisible bool          // stop only
	Restart       bool          // simulate only
}

func (c Call) String() string {
	switch c.Name {
	case CallStart:
		return fmt.Sprintf("start(%s)", c.Time)
	case CallStop:
		return fmt.Sprintf("stop(retain=%t)", c.RetainVisible)
	case CallSimulate:
		return fmt.Sprintf("simulate(%s, restart=%t)", c.Time, c.Restart)
	default:
		return c.Name + "()"
	}
}

// Recorder is an in-memory Emitter and Simulator that records every call
// and tracks the local time of its simulated output.
type Recorder struct {
	id     timeline.EmitterID
	calls  []Call
	status Status
	local  time.Duration
}

// NewRecorder creates an idle recorder.
func NewRecorder(id timeline.EmitterID) *Recorder {
	return &Recorder{id: id}
}

// ID returns the handle the recorder was created for.
func (r *Recorder) ID() timeline.EmitterID { return r.id }

// Start implements Emitter.
func (r *Recorder) Start(seek time.Duration) {
	r.calls = append(r.calls, Call{Name: CallStart, Time: seek})
	r.status = StatusPlaying
	r.local = seek
}

// Stop implements Emitter.
func (r *Recorder) Stop(retainVisible bool) {
	r.calls = append(r.calls, Call{Name: CallStop, RetainVisible: retainVisible})
	if retainVisible {
		if r.status == StatusPlaying {
			r.status = StatusStopping
		}
		return
	}
	r.status = StatusIdle
	r.local = 0
}

// Clear implements Emitter.
func (r *Recorder) Clear() {
	r.calls = append(r.calls, Call{Name: CallClear})
	if r.status == StatusStopping {
		r.status = StatusIdle
	}
	r.local = 0
}

// Simulate implements Simulator.
func (r *Recorder) Simulate(t time.Duration, restart bool) {
	r.calls = append(r.calls, Call{Name: CallSimulate, Time: t, Restart: restart})
	if restart {
		r.local = t
		return
	}
	r.local += t
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallNames returns just the names of the recorded calls.
func (r *Recorder) CallNames() []string {
	names := make([]string, len(r.calls))
	for i, c := range r.calls {
		names[i] = c.Name
	}
	return names
}

// Count returns how many calls named name were recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls. Status and local time are kept.
func (r *Recorder) Reset() {
	r.calls = nil
}

// Status returns the coarse visible state.
func (r *Recorder) Status() Status { return r.status }

// Local returns the simulated time of the emitter's output.
func (r *Recorder) Local() time.Duration { return r.local }
