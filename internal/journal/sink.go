package journal

import (
	"context"
	"log/slog"

	"github.com/roach88/phaseplay/internal/player"
)

// Sink journals every command a player issues to one session.
//
// player.Sink has no error return, so write failures are logged and the
// first one is kept for Err.
type Sink struct {
	ctx     context.Context
	store   *Store
	session string
	logger  *slog.Logger
	err     error
}

// NewSink creates a sink appending to sessionID. A nil logger means
// slog.Default().
func NewSink(ctx context.Context, store *Store, sessionID string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{ctx: ctx, store: store, session: sessionID, logger: logger}
}

// Record implements player.Sink.
func (s *Sink) Record(cmd player.Command) {
	if _, err := s.store.WriteCommand(s.ctx, s.session, cmd); err != nil {
		s.logger.Error("journal write failed",
			"session", s.session,
			"kind", cmd.Kind,
			"emitter", cmd.Emitter,
			"error", err,
		)
		if s.err == nil {
			s.err = err
		}
	}
}

// SessionID returns the session the sink writes to.
func (s *Sink) SessionID() string { return s.session }

// Err returns the first write failure, if any.
func (s *Sink) Err() error { return s.err }

var _ player.Sink = (*Sink)(nil)
