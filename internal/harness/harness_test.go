package harness

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/phaseplay/internal/journal"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"intro", "jump", "preview"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
			assert.Equal(t, "scenario-0001", result.SessionID)
		})
	}
}

func TestRun_TraceFromJournal(t *testing.T) {
	result, err := Run(loadTestScenario(t, "intro"))
	require.NoError(t, err)

	cmds := result.Commands()
	require.Len(t, cmds, 5)
	for i, c := range cmds {
		assert.Equal(t, int64(i+1), c.Seq, "journal seq is contiguous")
	}
	assert.Equal(t, "start:smoke", cmds[3].Label())
	assert.Equal(t, 2, cmds[3].Step)
	assert.Equal(t, int64(250_000_000), cmds[3].Seek)
}

func TestRun_RejectedPlayInTrace(t *testing.T) {
	result, err := Run(loadTestScenario(t, "jump"))
	require.NoError(t, err)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, EventRejected, last.Type)
	assert.Equal(t, "PHASE_NOT_FOUND", last.Code)
	assert.Equal(t, "nowhere", last.Name)
	assert.Equal(t, 3, last.Step)
	assert.Zero(t, last.Seq)
}

func TestRun_UnexpectedPlayError(t *testing.T) {
	s := loadTestScenario(t, "intro")
	missing := "missing"
	s.Steps = append(s.Steps, Step{Play: &missing})

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], `expected error "", got "PHASE_NOT_FOUND"`)
}

func TestRun_MissingExpectedError(t *testing.T) {
	s := loadTestScenario(t, "intro")
	s.Steps[0].ExpectError = "PHASE_NOT_FOUND"

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], `expected error "PHASE_NOT_FOUND", got ""`)
}

func TestRun_FailingAssertion(t *testing.T) {
	s := loadTestScenario(t, "intro")
	s.Assertions = []Assertion{{Type: AssertCommandCount, Kind: "start", Emitter: "fireworks", Count: 1}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: command_count")
	assert.Contains(t, result.Errors[0], "0 commands")
}

func TestRun_BadTimeline(t *testing.T) {
	s := loadTestScenario(t, "intro")
	s.Timeline = "testdata/timelines/missing.yaml"

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load timeline")
}

func TestRun_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := Run(loadTestScenario(t, "intro"), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "step executed")
	assert.Contains(t, buf.String(), "scenario=intro")
}

func TestRunWithGolden_Intro(t *testing.T) {
	// Regenerate with: go test ./internal/harness -run TestRunWithGolden_Intro -update
	require.NoError(t, RunWithGolden(t, loadTestScenario(t, "intro")))
}

func TestSnapshot_Deterministic(t *testing.T) {
	s := loadTestScenario(t, "jump")

	r1, err := Run(s)
	require.NoError(t, err)
	r2, err := Run(s)
	require.NoError(t, err)

	b1, err := Snapshot(s.Name, r1)
	require.NoError(t, err)
	b2, err := Snapshot(s.Name, r2)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
	assert.Contains(t, string(b1), `"code":"PHASE_NOT_FOUND"`)
}

func activateScenario() *Scenario {
	tick := 0.1
	return &Scenario{
		Name:     "activate",
		Timeline: filepath.Join("testdata", "timelines", "show.yaml"),
		Steps:    []Step{{Activate: true}, {Tick: &tick}},
	}
}

func TestRun_ActivatePlaysStartPhase(t *testing.T) {
	result, err := Run(activateScenario())
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, "intro", result.State.Phase)
	assert.Equal(t, "playing", result.Emitters["sparks"])
	assert.Equal(t, "start:sparks", result.Commands()[len(result.Commands())-1].Label())
}

func TestRun_WithStartPhase(t *testing.T) {
	s := activateScenario()
	s.Steps[0].ExpectError = "PHASE_NOT_FOUND"

	result, err := Run(s, WithStartPhase("ghost"))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 1)
	assert.Equal(t, "rejected:ghost", result.Trace[0].Label())
	assert.False(t, result.State.Running)
}

func TestRun_WithStore(t *testing.T) {
	st, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer st.Close()

	r1, err := Run(loadTestScenario(t, "intro"), WithStore(st))
	require.NoError(t, err)
	r2, err := Run(loadTestScenario(t, "jump"), WithStore(st))
	require.NoError(t, err)
	assert.NotEqual(t, r1.SessionID, r2.SessionID)

	sessions, err := st.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, r1.SessionID, sessions[0].ID)
	assert.Equal(t, r2.SessionID, sessions[1].ID)

	entries, err := st.Commands(context.Background(), r1.SessionID)
	require.NoError(t, err)
	assert.Len(t, entries, len(r1.Commands()))
}
