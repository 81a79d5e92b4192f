// Package emitter defines the control surface a player drives.
//
// Emitters are owned by the host. A player only commands them; it never
// creates, destroys or queries them. The Recorder type is an in-memory
// emitter used by the harness, the CLI and the terminal preview.
package emitter

import (
	"time"

	"github.com/roach88/phaseplay/internal/timeline"
)

// Emitter is the command surface of one effect emitter.
type Emitter interface {
	// Start seeks to seek without restarting and begins continuous playback.
	Start(seek time.Duration)

	// Stop halts emission. With retainVisible, already visible output
	// stays and finishes naturally; without it, output is cleared too.
	Stop(retainVisible bool)

	// Clear removes visible output immediately.
	Clear()
}

// Simulator is implemented by emitters that can be advanced by hand.
// Players use it for the zero-time settle before a start and for preview
// ticks while the host is not running.
type Simulator interface {
	Simulate(t time.Duration, restart bool)
}

// Resolver maps cue handles to emitters. A nil result is a null handle.
type Resolver interface {
	Emitter(id timeline.EmitterID) Emitter
}

// Registry is a map-backed Resolver that remembers registration order.
type Registry struct {
	byID  map[timeline.EmitterID]Emitter
	order []timeline.EmitterID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[timeline.EmitterID]Emitter)}
}

// Register binds id to e, replacing any earlier binding. Registering the
// empty id is ignored.
func (r *Registry) Register(id timeline.EmitterID, e Emitter) {
	if !id.IsSet() {
		return
	}
	if _, ok := r.byID[id]; !ok {
		r.order = append(r.order, id)
	}
	r.byID[id] = e
}

// Emitter implements Resolver.
func (r *Registry) Emitter(id timeline.EmitterID) Emitter {
	if !id.IsSet() {
		return nil
	}
	return r.byID[id]
}

// IDs returns registered ids in registration order.
func (r *Registry) IDs() []timeline.EmitterID {
	out := make([]timeline.EmitterID, len(r.order))
	copy(out, r.order)
	return out
}

// Recorder returns the Recorder bound to id, or nil.
func (r *Registry) Recorder(id timeline.EmitterID) *Recorder {
	rec, _ := r.Emitter(id).(*Recorder)
	return rec
}

// NewRecordingRegistry registers a Recorder for every emitter the table
// references.
func NewRecordingRegistry(t *timeline.Table) *Registry {
	r := NewRegistry()
	for _, id := range t.Emitters() {
		r.Register(id, NewRecorder(id))
	}
	return r
}
