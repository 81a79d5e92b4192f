package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/phaseplay/internal/player"
)

// ErrUnknownSession is returned when writing to a session that was never
// begun.
var ErrUnknownSession = errors.New("unknown session")

// BeginSession records the start of a playback session and returns its id.
// tableHash is the fingerprint of the played table; phase is the first
// phase requested.
func (s *Store) BeginSession(ctx context.Context, tableHash, phase string) (string, error) {
	id := s.ids.Generate()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin session: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var ordinal int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(ordinal), 0) + 1 FROM sessions`).Scan(&ordinal); err != nil {
		return "", fmt.Errorf("begin session: next ordinal: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, table_hash, phase, ordinal)
		VALUES (?, ?, ?, ?)
	`, id, tableHash, phase, ordinal); err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("begin session: commit: %w", err)
	}

	s.mu.Lock()
	s.clocks[id] = NewClock()
	s.mu.Unlock()

	return id, nil
}

// WriteCommand appends cmd to the session and returns its sequence number.
// Sessions begun by another Store are resumed after their last command.
func (s *Store) WriteCommand(ctx context.Context, sessionID string, cmd player.Command) (int64, error) {
	clock, err := s.clockFor(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("write command: %w", err)
	}
	seq := clock.Next()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO commands
		(session_id, seq, kind, cause, emitter, phase, elapsed_ns, seek_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sessionID,
		seq,
		string(cmd.Kind),
		string(cmd.Cause),
		string(cmd.Emitter),
		cmd.Phase,
		int64(cmd.Elapsed),
		int64(cmd.Seek),
	)
	if err != nil {
		return 0, fmt.Errorf("write command: %w", err)
	}
	return seq, nil
}

func (s *Store) clockFor(ctx context.Context, sessionID string) (*Clock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clocks[sessionID]; ok {
		return c, nil
	}

	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT MAX(seq) FROM commands WHERE session_id = s.id)
		FROM sessions s
		WHERE s.id = ?
	`, sessionID).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w %q", ErrUnknownSession, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("resume session %q: %w", sessionID, err)
	}

	c := NewClockAt(last.Int64)
	s.clocks[sessionID] = c
	return c, nil
}
