// Package player implements the phase timeline playback engine.
//
// A Player holds the runtime state of one timeline: the current phase, the
// time elapsed within it, whether it is running, and the set of emitters it
// has started and not yet stopped. It issues start, stop and clear commands
// to emitters as cue delays elapse.
//
// ARCHITECTURE:
//
// Single owner, synchronous:
// One logical caller drives a Player. Play, Stop, Tick and PreviewTick all
// complete before returning and nothing blocks, so the Player has no locks.
//
// Play sequence:
//  1. Reject empty names (EMPTY_NAME).
//  2. Resolve jump aliases, then the phase (PHASE_NOT_FOUND).
//  3. Activate the host, reset elapsed to the jump offset, mark running.
//  4. Clear every enter-cue emitter of the phase, unconditionally.
//  5. With ClearSiblings, clear every other phase's enter-cue emitters.
//  6. Run one evaluation pass.
//
// Evaluation pass:
// Enter cues, then stop cues, then clear cues, each list in author order.
// A cue is due once elapsed time strictly exceeds its delay. Enter cues
// start emitters not yet active; stop and clear cues act only on active
// emitters. An emitter can be started and stopped in the same pass.
//
// Time sources:
// Frame ticks (Tick) drive playback while the host runs. While the host is
// in editing mode, frame ticks are suspended and PreviewTick advances the
// active emitters from the wall clock without touching phase state.
package player
