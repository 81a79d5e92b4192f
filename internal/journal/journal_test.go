package journal

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/phaseplay/internal/emitter"
	"github.com/roach88/phaseplay/internal/player"
	"github.com/roach88/phaseplay/internal/testutil"
	"github.com/roach88/phaseplay/internal/timeline"
)

func TestBeginSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.BeginSession(ctx, "hash-a", "intro")
	require.NoError(t, err)
	id2, err := s.BeginSession(ctx, "hash-b", "finale")
	require.NoError(t, err)

	assert.Equal(t, "test-session-0001", id1)
	assert.Equal(t, "test-session-0002", id2)

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Session{
		{ID: id1, TableHash: "hash-a", Phase: "intro", Ordinal: 1},
		{ID: id2, TableHash: "hash-b", Phase: "finale", Ordinal: 2},
	}, sessions)
}

func TestSessions_Empty(t *testing.T) {
	s := openTestStore(t)

	sessions, err := s.Sessions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)

	_, err = s.LatestSession(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSessionsForTable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a1, _ := s.BeginSession(ctx, "hash-a", "intro")
	_, _ = s.BeginSession(ctx, "hash-b", "intro")
	a2, _ := s.BeginSession(ctx, "hash-a", "finale")

	sessions, err := s.SessionsForTable(ctx, "hash-a")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, a1, sessions[0].ID)
	assert.Equal(t, a2, sessions[1].ID)

	latest, err := s.LatestSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, a2, latest.ID)
}

func TestWriteCommand_SequencesPerSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, _ := s.BeginSession(ctx, "h", "intro")
	b, _ := s.BeginSession(ctx, "h", "intro")

	cmd := player.Command{Kind: player.KindStart, Cause: player.CauseCue, Emitter: "sparks", Phase: "intro"}
	for _, sess := range []string{a, a, b, a} {
		_, err := s.WriteCommand(ctx, sess, cmd)
		require.NoError(t, err)
	}

	entries, err := s.Commands(ctx, a)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Seq)
	}

	entries, err = s.Commands(ctx, b)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Seq)
}

func TestWriteCommand_RoundTripsFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id, _ := s.BeginSession(ctx, "h", "intro")

	want := player.Command{
		Kind:    player.KindStart,
		Cause:   player.CauseCue,
		Emitter: "sparks",
		Phase:   "intro",
		Elapsed: 2500 * time.Millisecond,
		Seek:    time.Second,
	}
	seq, err := s.WriteCommand(ctx, id, want)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	entries, err := s.Commands(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{SessionID: id, Seq: 1, Command: want}, entries[0])
}

func TestWriteCommand_UnknownSession(t *testing.T) {
	s := openTestStore(t)
	_, err := s.WriteCommand(context.Background(), "nope", player.Command{Kind: player.KindStop})
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestWriteCommand_ResumesAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	id, err := s1.BeginSession(ctx, "h", "intro")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := s1.WriteCommand(ctx, id, player.Command{Kind: player.KindClear})
		require.NoError(t, err)
	}
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	seq, err := s2.WriteCommand(ctx, id, player.Command{Kind: player.KindStart})
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)
}

func TestCommands_Empty(t *testing.T) {
	s := openTestStore(t)
	entries, err := s.Commands(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestSink_JournalsPlayback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tbl := &timeline.Table{
		Phases: []timeline.Phase{{
			Name:    "intro",
			OnEnter: []timeline.Cue{{Emitter: "sparks"}},
			OnStop:  []timeline.Cue{{Emitter: "sparks", Delay: time.Second}},
		}},
	}
	id, err := s.BeginSession(ctx, "h", "intro")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink := NewSink(ctx, s, id, logger)
	p := player.New(tbl, emitter.NewRecordingRegistry(tbl), player.WithLogger(logger), player.WithSink(sink))

	require.NoError(t, p.Play("intro"))
	p.Tick(500 * time.Millisecond)
	p.Tick(time.Second)
	require.NoError(t, sink.Err())
	assert.Equal(t, id, sink.SessionID())

	entries, err := s.Commands(ctx, id)
	require.NoError(t, err)

	var kinds []player.CommandKind
	for _, e := range entries {
		kinds = append(kinds, e.Command.Kind)
	}
	assert.Equal(t, []player.CommandKind{player.KindClear, player.KindStart, player.KindStop}, kinds)
	assert.Equal(t, 1500*time.Millisecond, entries[2].Command.Elapsed)

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sessions[0].Commands)
}

func TestSink_KeepsFirstError(t *testing.T) {
	s := openTestStore(t)
	sink := NewSink(context.Background(), s, "never-begun", slog.New(slog.NewTextHandler(io.Discard, nil)))

	sink.Record(player.Command{Kind: player.KindStart})
	sink.Record(player.Command{Kind: player.KindStop})

	require.Error(t, sink.Err())
	assert.ErrorIs(t, sink.Err(), ErrUnknownSession)
}

func TestClock(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())

	r := NewClockAt(10)
	assert.Equal(t, int64(11), r.Next())
}

func TestUUIDv7Generator(t *testing.T) {
	var gen SessionIDGenerator = UUIDv7Generator{}
	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b, "v7 ids sort by creation time")
}

var _ SessionIDGenerator = (*testutil.SequentialSessionIDs)(nil)
