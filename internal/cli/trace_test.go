package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/phaseplay/internal/journal"
)

// journalWithRuns plays two runs into a fresh journal and returns its path.
func journalWithRuns(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "show.db")
	show := writeShow(t)

	_, err := execute(t, &RootOptions{Format: "text"}, NewRunCommand, show, "--steps", "play:intro,tick:0.6", "--journal", dbPath)
	require.NoError(t, err)
	_, err = execute(t, &RootOptions{Format: "text"}, NewRunCommand, show, "--steps", "play:skip", "--journal", dbPath)
	require.NoError(t, err)
	return dbPath
}

func TestTrace_Latest(t *testing.T) {
	dbPath := journalWithRuns(t)

	out, err := execute(t, &RootOptions{Format: "text"}, NewTraceCommand, dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Phase: skip")
	assert.Contains(t, out, "#1    clear    fireworks    cause=enter phase=finale t=1.500s")
	assert.Contains(t, out, "#2    clear    sparks       cause=sibling phase=finale t=1.500s")
	assert.Contains(t, out, "start    fireworks    cause=cue phase=finale t=1.500s seek=1.250s")
	assert.Contains(t, out, "Total: 4 command(s), clear=3, start=1")
}

func TestTrace_SessionAndList(t *testing.T) {
	dbPath := journalWithRuns(t)

	out, err := execute(t, &RootOptions{Format: "json"}, NewTraceCommand, dbPath, "--list")
	require.NoError(t, err)
	var list struct {
		Data []journal.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Data, 2)
	assert.Equal(t, "intro", list.Data[0].Phase)
	assert.Equal(t, 4, list.Data[0].Commands)

	out, err = execute(t, &RootOptions{Format: "json"}, NewTraceCommand, dbPath, "--session", list.Data[0].ID, "--emitter", "smoke")
	require.NoError(t, err)
	var resp struct {
		SessionID string      `json:"session_id"`
		Data      TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, list.Data[0].ID, resp.SessionID)
	assert.Equal(t, 2, resp.Data.Stats.Total)
	assert.Equal(t, map[string]int{"clear": 1, "start": 1}, resp.Data.Stats.ByKind)
	assert.Equal(t, []string{"smoke"}, resp.Data.Stats.Emitters)

	out, err = execute(t, &RootOptions{Format: "text"}, NewTraceCommand, dbPath, "--list")
	require.NoError(t, err)
	assert.Contains(t, out, `phase="intro" commands=4`)
	assert.Contains(t, out, `phase="skip" commands=4`)
}

func TestTrace_UnknownSession(t *testing.T) {
	_, err := execute(t, &RootOptions{Format: "text"}, NewTraceCommand, journalWithRuns(t), "--session", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "session not found: nope")
}

func TestTrace_EmptyJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := journal.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, &RootOptions{Format: "text"}, NewTraceCommand, dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions journaled.")
}

func TestTrace_MissingJournal(t *testing.T) {
	_, err := execute(t, &RootOptions{Format: "text"}, NewTraceCommand, "/nonexistent/show.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, &RootOptions{Format: "text"}, NewTraceCommand)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal.path is not configured")
}

func TestTrace_ConfiguredJournalPath(t *testing.T) {
	opts := &RootOptions{Format: "text"}
	opts.Config.Journal.Path = journalWithRuns(t)

	out, err := execute(t, opts, NewTraceCommand)
	require.NoError(t, err)
	assert.Contains(t, out, "Phase: skip")
}
