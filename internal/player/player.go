package player

import (
	"log/slog"
	"time"

	"github.com/roach88/phaseplay/internal/emitter"
	"github.com/roach88/phaseplay/internal/timeline"
)

// Host is the object that owns the player. Play activates it and Stop
// deactivates it; what activation means is up to the host.
type Host interface {
	Active() bool
	SetActive(active bool)
}

// StopPolicy decides what Stop does with the active-emitter set.
type StopPolicy int

const (
	// StopKeepActive leaves the set intact. Emitters active before Stop are
	// still treated as started after a later Play of a phase that does not
	// clear them.
	StopKeepActive StopPolicy = iota

	// StopClearActive empties the set on Stop. No emitter commands are issued.
	StopClearActive
)

// String returns the config spelling of the policy.
func (p StopPolicy) String() string {
	if p == StopClearActive {
		return "clear"
	}
	return "keep"
}

// ParseStopPolicy parses "keep" or "clear".
func ParseStopPolicy(s string) (StopPolicy, bool) {
	switch s {
	case "", "keep":
		return StopKeepActive, true
	case "clear":
		return StopClearActive, true
	default:
		return StopKeepActive, false
	}
}

// Player is the playback engine for one timeline table.
//
// Not safe for concurrent use; see the package documentation.
type Player struct {
	table    *timeline.Table
	emitters emitter.Resolver
	logger   *slog.Logger
	host     Host
	sink     Sink
	policy   StopPolicy
	now      func() time.Time

	phaseIdx int // index into table.Phases, -1 when none
	elapsed  time.Duration
	running  bool
	active   *Tracker
	playing  bool // inside Play; suppresses Activate re-entry

	mode    Mode
	preview previewState
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the diagnostic logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// WithHost sets the owning host. Default: a host that only remembers its flag.
func WithHost(h Host) Option {
	return func(p *Player) { p.host = h }
}

// WithSink sets the command observer.
func WithSink(s Sink) Option {
	return func(p *Player) { p.sink = s }
}

// WithStopPolicy sets what Stop does with the active set.
// Default: StopKeepActive.
func WithStopPolicy(policy StopPolicy) Option {
	return func(p *Player) { p.policy = policy }
}

// WithWallClock sets the clock read by preview ticks. Default: time.Now.
func WithWallClock(now func() time.Time) Option {
	return func(p *Player) { p.now = now }
}

// WithMode sets the initial host mode. Default: ModeRunning.
func WithMode(m Mode) Option {
	return func(p *Player) { p.mode = m }
}

// New creates an idle player over table, resolving cue handles through
// emitters. The table must not be modified while the player is in use.
func New(table *timeline.Table, emitters emitter.Resolver, opts ...Option) *Player {
	p := &Player{
		table:    table,
		emitters: emitters,
		logger:   slog.Default(),
		host:     &flagHost{},
		now:      time.Now,
		phaseIdx: -1,
		active:   NewTracker(),
		mode:     ModeRunning,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play starts the named phase or jump from its beginning (or the jump's
// start offset). Playing while another phase runs cuts over immediately.
// Playing the current phase again restarts it.
//
// A rejected request is logged, returned as a *PlayError, and leaves the
// player exactly as it was.
func (p *Player) Play(name string) error {
	return p.play(name, p.logger)
}

// DebugPlay is Play for editor and tooling callers.
func (p *Player) DebugPlay(name string) error {
	return p.play(name, p.logger.With("debug", true))
}

func (p *Player) play(name string, log *slog.Logger) error {
	if name == "" {
		err := &PlayError{Code: ErrCodeEmptyName}
		log.Error("play rejected", "error", err)
		return err
	}

	target, offset, jumped := p.table.ResolvePlayTarget(name)
	idx, phase := p.table.FindPhase(target)
	if phase == nil {
		err := &PlayError{Code: ErrCodePhaseNotFound, Requested: name, Resolved: target}
		log.Error("play rejected", "error", err)
		return err
	}

	p.playing = true
	defer func() { p.playing = false }()

	if !p.host.Active() {
		p.host.SetActive(true)
	}

	p.phaseIdx = idx
	p.elapsed = offset
	p.running = true

	log.Info("phase started",
		"requested", name,
		"phase", phase.Name,
		"jumped", jumped,
		"offset", offset,
	)

	for _, c := range phase.OnEnter {
		p.clearEmitter(c.Emitter, CauseEnter)
	}
	if phase.ClearSiblings {
		for i := range p.table.Phases {
			if i == idx {
				continue
			}
			for _, c := range p.table.Phases[i].OnEnter {
				if !c.Emitter.IsSet() {
					continue
				}
				p.clearEmitter(c.Emitter, CauseSibling)
			}
		}
	}

	p.evaluate()
	p.registerPreview()
	return nil
}

// Stop halts time advancement and deactivates the host. Stopping an idle
// player is harmless. Emitters are not commanded; what happens to the
// active set depends on the StopPolicy.
func (p *Player) Stop() {
	p.stop(p.logger)
}

// DebugStop is Stop for editor and tooling callers.
func (p *Player) DebugStop() {
	p.stop(p.logger.With("debug", true))
}

func (p *Player) stop(log *slog.Logger) {
	if p.host.Active() {
		p.host.SetActive(false)
	}
	wasRunning := p.running
	p.running = false
	if p.policy == StopClearActive {
		p.active.Reset()
	}
	p.unregisterPreview()

	if wasRunning {
		log.Info("phase stopped", "phase", p.CurrentPhase(), "elapsed", p.elapsed)
	}
}

// Tick advances phase time by dt and fires due cues. It does nothing
// while stopped or while the host is in editing mode. Negative deltas are
// treated as zero.
func (p *Player) Tick(dt time.Duration) {
	if !p.running || p.mode == ModeEditing {
		return
	}
	if dt < 0 {
		dt = 0
	}
	p.elapsed += dt
	p.evaluate()
}

// Activate is the host-activation hook. When the table names a start
// phase and the player is idle, the start phase is played. Activation
// caused by Play itself is ignored.
func (p *Player) Activate() error {
	if p.playing || p.running || p.table.StartPhase == "" {
		return nil
	}
	return p.Play(p.table.StartPhase)
}

// evaluate runs one pass over the current phase's cue lists.
func (p *Player) evaluate() {
	phase := p.currentPhase()
	if phase == nil {
		return
	}

	for _, c := range phase.OnEnter {
		if !c.Emitter.IsSet() || p.active.Contains(c.Emitter) || !p.due(c) {
			continue
		}
		p.startEmitter(phase, c)
	}
	for _, c := range phase.OnStop {
		if !p.active.Contains(c.Emitter) || !p.due(c) {
			continue
		}
		p.stopEmitter(c.Emitter)
	}
	for _, c := range phase.OnClear {
		if !p.active.Contains(c.Emitter) || !p.due(c) {
			continue
		}
		p.clearEmitter(c.Emitter, CauseCue)
	}
}

// due reports whether the cue's delay has strictly elapsed.
func (p *Player) due(c timeline.Cue) bool {
	return p.elapsed > c.Delay
}

func (p *Player) startEmitter(phase *timeline.Phase, c timeline.Cue) {
	e := p.resolve(c.Emitter)
	if e == nil {
		return
	}
	seek := p.elapsed - c.Delay

	e.Stop(false)
	if sim, ok := e.(emitter.Simulator); ok {
		// Some emitter chains only initialise correctly from absolute zero.
		sim.Simulate(0, true)
	}
	e.Start(seek)
	p.active.Add(c.Emitter)

	p.record(Command{Kind: KindStart, Cause: CauseCue, Emitter: c.Emitter, Phase: phase.Name, Seek: seek})
}

func (p *Player) stopEmitter(id timeline.EmitterID) {
	if e := p.resolve(id); e != nil {
		e.Stop(true)
	}
	p.active.Remove(id)
	p.record(Command{Kind: KindStop, Cause: CauseCue, Emitter: id, Phase: p.CurrentPhase()})
}

func (p *Player) clearEmitter(id timeline.EmitterID, cause Cause) {
	p.active.Remove(id)
	e := p.resolve(id)
	if e == nil {
		return
	}
	e.Clear()
	e.Stop(false)
	p.record(Command{Kind: KindClear, Cause: cause, Emitter: id, Phase: p.CurrentPhase()})
}

// resolve returns nil for the null handle and for ids the resolver does
// not know; both are silently skipped.
func (p *Player) resolve(id timeline.EmitterID) emitter.Emitter {
	if !id.IsSet() || p.emitters == nil {
		return nil
	}
	e := p.emitters.Emitter(id)
	if e == nil {
		p.logger.Debug("emitter not bound, skipping", "emitter", id)
	}
	return e
}

func (p *Player) record(cmd Command) {
	cmd.Elapsed = p.elapsed
	p.logger.Debug("emitter command",
		"kind", cmd.Kind,
		"cause", cmd.Cause,
		"emitter", cmd.Emitter,
		"phase", cmd.Phase,
		"elapsed", cmd.Elapsed,
		"seek", cmd.Seek,
	)
	if p.sink != nil {
		p.sink.Record(cmd)
	}
}

func (p *Player) currentPhase() *timeline.Phase {
	if p.phaseIdx < 0 || p.phaseIdx >= len(p.table.Phases) {
		return nil
	}
	return &p.table.Phases[p.phaseIdx]
}

// State is a snapshot of a player's runtime state.
type State struct {
	Phase             string               `json:"phase,omitempty"`
	PhaseIndex        int                  `json:"phase_index"`
	Elapsed           time.Duration        `json:"elapsed"`
	Running           bool                 `json:"running"`
	Active            []timeline.EmitterID `json:"active"`
	Mode              Mode                 `json:"mode"`
	PreviewRegistered bool                 `json:"preview_registered"`
}

// State returns a snapshot of the runtime state.
func (p *Player) State() State {
	return State{
		Phase:             p.CurrentPhase(),
		PhaseIndex:        p.phaseIdx,
		Elapsed:           p.elapsed,
		Running:           p.running,
		Active:            p.active.Members(),
		Mode:              p.mode,
		PreviewRegistered: p.preview.registered,
	}
}

// Running reports whether phase time is advancing.
func (p *Player) Running() bool { return p.running }

// Elapsed returns time since the current phase began, including any jump
// start offset.
func (p *Player) Elapsed() time.Duration { return p.elapsed }

// CurrentPhase returns the current phase name, or "" before the first Play.
func (p *Player) CurrentPhase() string {
	if ph := p.currentPhase(); ph != nil {
		return ph.Name
	}
	return ""
}

// IsActive reports whether the player considers id playing.
func (p *Player) IsActive(id timeline.EmitterID) bool {
	return p.active.Contains(id)
}

// Table returns the table the player was built with.
func (p *Player) Table() *timeline.Table { return p.table }

// flagHost is the default Host.
type flagHost struct{ active bool }

func (h *flagHost) Active() bool          { return h.active }
func (h *flagHost) SetActive(active bool) { h.active = active }
