// Package harness runs playback scenarios against the player.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	timeline: ../timelines/show.yaml
//	stop_policy: keep
//	steps:
//	  - play: intro
//	  - tick: 0.5
//	  - preview: 0.25
//	  - play: missing
//	    expect_error: PHASE_NOT_FOUND
//	  - stop: true
//	assertions:
//	  - type: command_contains
//	    kind: start
//	    emitter: sparks
//	  - type: command_order
//	    commands: ["clear:sparks", "start:sparks"]
//	  - type: command_count
//	    kind: start
//	    count: 1
//	  - type: final_state
//	    expect: { phase: intro, running: false, active: [sparks] }
//
// A tick step runs the player in running mode. A preview step switches to
// editing mode, advances the fake wall clock and delivers one preview tick.
//
// # Deterministic Testing
//
// The harness uses:
//   - Recording emitters for every handle the timeline references
//   - A fake wall clock (testutil.FakeClock) for preview deltas
//   - An in-memory journal with sequential session ids
//
// The trace is read back from the journal, so identical scenarios produce
// byte-identical snapshots for golden file comparison.
package harness
