package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/phaseplay/internal/canon"
	"github.com/roach88/phaseplay/internal/emitter"
	"github.com/roach88/phaseplay/internal/journal"
	"github.com/roach88/phaseplay/internal/player"
	"github.com/roach88/phaseplay/internal/testutil"
	"github.com/roach88/phaseplay/internal/timeline"
)

// SessionPrefix prefixes the deterministic journal session ids the
// harness uses, so golden traces are stable across runs.
const SessionPrefix = "scenario"

// Harness is the scenario execution engine.
// It runs one scenario against recording emitters, a fake wall clock and
// an in-memory journal.
type Harness struct {
	player   *player.Player
	emitters *emitter.Registry
	clock    *testutil.FakeClock
	logger   *slog.Logger

	step  int
	trace []TraceEvent
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger     *slog.Logger
	store      *journal.Store
	startPhase string
}

// WithLogger sets the logger used by the harness and the player.
// Default: a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

// WithStore journals the run into st instead of a private in-memory
// journal. Run does not close st.
func WithStore(st *journal.Store) Option {
	return func(c *runConfig) { c.store = st }
}

// WithStartPhase overrides the timeline's start phase.
func WithStartPhase(name string) Option {
	return func(c *runConfig) { c.startPhase = name }
}

// Run executes a scenario and returns the result.
//
// Unless WithStore is given, each scenario runs in a fresh in-memory
// journal for isolation.
//
// Execution flow:
// 1. Load the timeline and fingerprint it
// 2. Begin a journal session named after the first play step
// 3. Execute steps, journaling every emitter command
// 4. Read the trace back from the journal
// 5. Evaluate assertions against the trace and final state
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	tbl, err := timeline.Load(scenario.Timeline)
	if err != nil {
		return nil, fmt.Errorf("failed to load timeline: %w", err)
	}
	if cfg.startPhase != "" {
		tbl.StartPhase = cfg.startPhase
	}
	tableHash, err := canon.TableHash(tbl)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint timeline: %w", err)
	}
	policy, ok := player.ParseStopPolicy(scenario.StopPolicy)
	if !ok {
		return nil, fmt.Errorf("invalid stop policy %q", scenario.StopPolicy)
	}

	st := cfg.store
	if st == nil {
		st, err = journal.Open(":memory:", journal.WithSessionIDs(testutil.NewSequentialSessionIDs(SessionPrefix)))
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
		}
		defer st.Close()
	}

	ctx := context.Background()
	sessionID, err := st.BeginSession(ctx, tableHash, firstPlay(scenario.Steps))
	if err != nil {
		return nil, fmt.Errorf("failed to begin session: %w", err)
	}

	h := &Harness{
		emitters: emitter.NewRecordingRegistry(tbl),
		clock:    testutil.NewFakeClock(),
		logger:   cfg.logger.With("scenario", scenario.Name),
	}
	sink := journal.NewSink(ctx, st, sessionID, h.logger)
	h.player = player.New(tbl, h.emitters,
		player.WithLogger(h.logger),
		player.WithSink(player.MultiSink{sink, player.SinkFunc(h.collect)}),
		player.WithStopPolicy(policy),
		player.WithWallClock(h.clock.Now),
	)

	result := NewResult()
	result.SessionID = sessionID

	for i, step := range scenario.Steps {
		h.step = i
		h.execute(step, result)
	}
	result.State = h.player.State()
	h.player.Close()

	if err := sink.Err(); err != nil {
		return nil, fmt.Errorf("failed to journal commands: %w", err)
	}

	entries, err := st.Commands(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	trace, err := h.resolveTrace(entries)
	if err != nil {
		return nil, err
	}
	result.Trace = trace
	for _, id := range h.emitters.IDs() {
		result.Emitters[string(id)] = h.emitters.Recorder(id).Status().String()
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// execute runs one step.
func (h *Harness) execute(step Step, result *Result) {
	switch step.Kind() {
	case "play":
		h.request(*step.Play, h.player.Play(*step.Play), step.ExpectError, result)
	case "activate":
		h.request(h.player.Table().StartPhase, h.player.Activate(), step.ExpectError, result)
	case "stop":
		h.player.Stop()
	case "tick":
		h.player.SetMode(player.ModeRunning)
		h.player.Tick(timeline.Seconds(*step.Tick))
	case "preview":
		h.player.SetMode(player.ModeEditing)
		h.clock.Advance(timeline.Seconds(*step.Preview))
		h.player.PreviewTick()
	}

	h.logger.Info("step executed",
		"step", h.step,
		"kind", step.Kind(),
		"phase", h.player.CurrentPhase(),
		"elapsed", h.player.Elapsed(),
	)
}

// request checks the outcome of a play or activate against the step's
// expected error code. Rejections become trace events.
func (h *Harness) request(name string, err error, expectCode string, result *Result) {
	var pe *player.PlayError
	if err != nil && !errors.As(err, &pe) {
		result.AddError(fmt.Sprintf("steps[%d]: play %q: %v", h.step, name, err))
		return
	}

	if pe != nil {
		h.trace = append(h.trace, TraceEvent{
			Type: EventRejected,
			Step: h.step,
			Code: string(pe.Code),
			Name: name,
		})
	}

	got := ""
	if pe != nil {
		got = string(pe.Code)
	}
	if got != expectCode {
		result.AddError(fmt.Sprintf("steps[%d]: play %q: expected error %q, got %q", h.step, name, expectCode, got))
	}
}

// collect reserves a trace slot for each command; the slot is filled from
// the journal once the run is over.
func (h *Harness) collect(player.Command) {
	h.trace = append(h.trace, TraceEvent{Type: EventCommand, Step: h.step})
}

func (h *Harness) resolveTrace(entries []journal.Entry) ([]TraceEvent, error) {
	trace := make([]TraceEvent, 0, len(h.trace))
	next := 0
	for _, ev := range h.trace {
		if ev.Type != EventCommand {
			trace = append(trace, ev)
			continue
		}
		if next >= len(entries) {
			return nil, fmt.Errorf("journal holds %d commands, player issued more", len(entries))
		}
		trace = append(trace, commandEvent(ev.Step, entries[next]))
		next++
	}
	if next != len(entries) {
		return nil, fmt.Errorf("journal holds %d commands, player issued %d", len(entries), next)
	}
	return trace, nil
}

func firstPlay(steps []Step) string {
	for _, s := range steps {
		if s.Play != nil {
			return *s.Play
		}
	}
	return ""
}
