package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/phaseplay/internal/player"
	"github.com/roach88/phaseplay/internal/timeline"
)

// Session is a journaled playback session.
type Session struct {
	ID        string `json:"id"`
	TableHash string `json:"table_hash"`
	Phase     string `json:"phase"`
	Ordinal   int64  `json:"ordinal"`
	Commands  int    `json:"commands"`
}

// Entry is one journaled command.
type Entry struct {
	SessionID string         `json:"session_id"`
	Seq       int64          `json:"seq"`
	Command   player.Command `json:"command"`
}

// Sessions returns every session in the order they were begun.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	return s.querySessions(ctx, `
		SELECT s.id, s.table_hash, s.phase, s.ordinal,
		       (SELECT COUNT(*) FROM commands c WHERE c.session_id = s.id)
		FROM sessions s
		ORDER BY s.ordinal ASC
	`)
}

// SessionsForTable returns the sessions that played the table with the
// given fingerprint, oldest first.
func (s *Store) SessionsForTable(ctx context.Context, tableHash string) ([]Session, error) {
	return s.querySessions(ctx, `
		SELECT s.id, s.table_hash, s.phase, s.ordinal,
		       (SELECT COUNT(*) FROM commands c WHERE c.session_id = s.id)
		FROM sessions s
		WHERE s.table_hash = ?
		ORDER BY s.ordinal ASC
	`, tableHash)
}

// LatestSession returns the most recently begun session.
// Returns sql.ErrNoRows if the journal is empty.
func (s *Store) LatestSession(ctx context.Context) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.table_hash, s.phase, s.ordinal,
		       (SELECT COUNT(*) FROM commands c WHERE c.session_id = s.id)
		FROM sessions s
		ORDER BY s.ordinal DESC
		LIMIT 1
	`)
	var sess Session
	if err := row.Scan(&sess.ID, &sess.TableHash, &sess.Phase, &sess.Ordinal, &sess.Commands); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *Store) querySessions(ctx context.Context, query string, args ...any) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.TableHash, &sess.Phase, &sess.Ordinal, &sess.Commands); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Commands returns a session's commands ordered by seq.
//
// Returns an empty slice (not nil) if the session has no commands.
func (s *Store) Commands(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, kind, cause, emitter, phase, elapsed_ns, seek_ns
		FROM commands
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commands: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e                 Entry
		kind, cause, emID string
		elapsed, seek     int64
	)
	err := rows.Scan(&e.SessionID, &e.Seq, &kind, &cause, &emID, &e.Command.Phase, &elapsed, &seek)
	if err != nil {
		return Entry{}, fmt.Errorf("scan command: %w", err)
	}
	e.Command.Kind = player.CommandKind(kind)
	e.Command.Cause = player.Cause(cause)
	e.Command.Emitter = timeline.EmitterID(emID)
	e.Command.Elapsed = time.Duration(elapsed)
	e.Command.Seek = time.Duration(seek)
	return e, nil
}
