package player

import (
	"fmt"
	"time"

	"github.com/roach88/phaseplay/internal/emitter"
)

// Mode selects which time source drives the player.
type Mode int

const (
	// ModeRunning: the host runs its frame loop and Tick drives playback.
	ModeRunning Mode = iota

	// ModeEditing: the host is not running. Tick is suspended and
	// PreviewTick advances active emitters for visual feedback.
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeRunning:
		return "running"
	case ModeEditing:
		return "editing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText renders the mode by name in JSON output.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a mode name.
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "running":
		*m = ModeRunning
	case "editing":
		*m = ModeEditing
	default:
		return fmt.Errorf("unknown mode %q", text)
	}
	return nil
}

// previewState is the preview tick registration. A single flag keeps
// registration idempotent.
type previewState struct {
	registered bool
	last       time.Time
}

// SetMode switches the active time source.
func (p *Player) SetMode(m Mode) {
	if p.mode == m {
		return
	}
	p.mode = m
	if m == ModeEditing && p.preview.registered {
		p.preview.last = p.now()
	}
	p.logger.Debug("host mode changed", "mode", m)
}

// Mode returns the current host mode.
func (p *Player) Mode() Mode { return p.mode }

// PreviewRegistered reports whether preview ticks currently have an effect
// in editing mode.
func (p *Player) PreviewRegistered() bool { return p.preview.registered }

// PreviewTick advances every active emitter that supports simulation by
// the wall-clock time since the previous preview tick, clamped to be
// non-negative. Phase time and cue state do not change. It is a no-op
// unless the player is registered for preview and in editing mode.
//
// Returns the applied delta.
func (p *Player) PreviewTick() time.Duration {
	if !p.preview.registered || p.mode != ModeEditing {
		return 0
	}
	now := p.now()
	dt := now.Sub(p.preview.last)
	if dt < 0 {
		dt = 0
	}
	p.preview.last = now

	for _, id := range p.active.Members() {
		sim, ok := p.resolve(id).(emitter.Simulator)
		if !ok {
			continue
		}
		sim.Simulate(dt, false)
		p.record(Command{Kind: KindAdvance, Cause: CausePreview, Emitter: id, Phase: p.CurrentPhase(), Seek: dt})
	}
	return dt
}

// Close tears the player down. Preview registration is always removed.
// Emitters are not commanded and the host is left as it is.
func (p *Player) Close() {
	p.unregisterPreview()
	p.running = false
}

func (p *Player) registerPreview() {
	// Re-registering only refreshes the baseline; it never adds a second
	// advance per tick.
	p.preview.registered = true
	p.preview.last = p.now()
}

func (p *Player) unregisterPreview() {
	p.preview.registered = false
}
