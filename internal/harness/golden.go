package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/phaseplay/internal/canon"
)

// GoldenDir is where golden traces live, relative to the test's package.
const GoldenDir = "testdata/golden"

// Snapshot renders a scenario result as canonical JSON: the trace, the
// final player state and the final emitter statuses. Identical runs
// produce identical bytes.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, e := range result.Trace {
		m := map[string]any{
			"type": e.Type,
			"step": e.Step,
		}
		switch e.Type {
		case EventCommand:
			m["seq"] = e.Seq
			m["kind"] = e.Kind
			m["cause"] = e.Cause
			m["emitter"] = e.Emitter
			m["phase"] = e.Phase
			m["elapsed_ns"] = e.Elapsed
			m["seek_ns"] = e.Seek
		case EventRejected:
			m["code"] = e.Code
			m["name"] = e.Name
		}
		trace[i] = m
	}

	active := make([]string, len(result.State.Active))
	for i, id := range result.State.Active {
		active[i] = string(id)
	}
	emitters := make(map[string]any, len(result.Emitters))
	for id, status := range result.Emitters {
		emitters[id] = status
	}

	return canon.Marshal(map[string]any{
		"scenario_name": scenarioName,
		"session_id":    result.SessionID,
		"trace":         trace,
		"final_state": map[string]any{
			"phase":      result.State.Phase,
			"running":    result.State.Running,
			"elapsed_ns": int64(result.State.Elapsed),
			"active":     active,
			"mode":       result.State.Mode.String(),
		},
		"emitters": emitters,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
