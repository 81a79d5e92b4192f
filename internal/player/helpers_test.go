package player

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/roach88/phaseplay/internal/emitter"
	"github.com/roach88/phaseplay/internal/timeline"
)

// rig wires a player to recording emitters and collects issued commands.
type rig struct {
	table    *timeline.Table
	emitters *emitter.Registry
	player   *Player
	commands []Command
}

func newRig(t *testing.T, table *timeline.Table, opts ...Option) *rig {
	t.Helper()
	r := &rig{table: table, emitters: emitter.NewRecordingRegistry(table)}
	base := []Option{
		WithLogger(discardLogger()),
		WithSink(SinkFunc(func(c Command) { r.commands = append(r.commands, c) })),
	}
	r.player = New(table, r.emitters, append(base, opts...)...)
	return r
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (r *rig) rec(id timeline.EmitterID) *emitter.Recorder {
	return r.emitters.Recorder(id)
}

// kinds renders commands as "kind:emitter" for compact assertions.
func (r *rig) kinds() []string {
	out := make([]string, len(r.commands))
	for i, c := range r.commands {
		out[i] = string(c.Kind) + ":" + string(c.Emitter)
	}
	return out
}

func (r *rig) count(kind CommandKind, id timeline.EmitterID) int {
	n := 0
	for _, c := range r.commands {
		if c.Kind == kind && c.Emitter == id {
			n++
		}
	}
	return n
}

func (r *rig) reset() {
	r.commands = nil
}

func cue(id string, delaySeconds float64) timeline.Cue {
	return timeline.Cue{Emitter: timeline.EmitterID(id), Delay: timeline.Seconds(delaySeconds)}
}

func secs(s float64) time.Duration {
	return timeline.Seconds(s)
}

// recordingHost records activation changes.
type recordingHost struct {
	active  bool
	changes []bool
	onSet   func(bool)
}

func (h *recordingHost) Active() bool { return h.active }

func (h *recordingHost) SetActive(active bool) {
	h.active = active
	h.changes = append(h.changes, active)
	if h.onSet != nil {
		h.onSet(active)
	}
}
