package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/phaseplay/internal/player"
)

// Scenario defines a playback scenario: a timeline, a sequence of
// play/stop/tick/preview steps, and assertions on the resulting trace and
// final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Timeline is the path to the timeline document. Relative paths are
	// resolved against the scenario file's directory by LoadScenario.
	Timeline string `yaml:"timeline"`

	// StopPolicy is "keep" (default) or "clear".
	StopPolicy string `yaml:"stop_policy,omitempty"`

	// Steps drive the player in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: command_contains, command_order, command_count, final_state
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scenario action. Exactly one of Play, Activate, Stop, Tick
// or Preview is set.
type Step struct {
	// Play requests a phase or jump by name.
	Play *string `yaml:"play,omitempty"`

	// Activate fires the host-activation hook, playing the start phase
	// when the player is idle.
	Activate bool `yaml:"activate,omitempty"`

	// Stop stops the player.
	Stop bool `yaml:"stop,omitempty"`

	// Tick advances phase time by this many seconds in running mode.
	Tick *float64 `yaml:"tick,omitempty"`

	// Preview switches to editing mode and advances the wall clock by this
	// many seconds before one preview tick.
	Preview *float64 `yaml:"preview,omitempty"`

	// ExpectError is the play error code the step must produce
	// (EMPTY_NAME or PHASE_NOT_FOUND). Only valid with Play and Activate.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Kind names the step's action.
func (s Step) Kind() string {
	switch {
	case s.Play != nil:
		return "play"
	case s.Activate:
		return "activate"
	case s.Stop:
		return "stop"
	case s.Tick != nil:
		return "tick"
	case s.Preview != nil:
		return "preview"
	default:
		return ""
	}
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "command_contains": a command matching kind/emitter/cause/phase exists
	// - "command_order": labels ("kind:emitter") appear in this order
	// - "command_count": matching commands appear exactly Count times
	// - "final_state": player state and emitter statuses after the last step
	Type string `yaml:"type"`

	// Kind, Emitter, Cause and Phase filter commands. Empty fields match
	// anything.
	Kind    string `yaml:"kind,omitempty"`
	Emitter string `yaml:"emitter,omitempty"`
	Cause   string `yaml:"cause,omitempty"`
	Phase   string `yaml:"phase,omitempty"`

	// Count is the expected number of matches (command_count).
	Count int `yaml:"count,omitempty"`

	// Commands is the expected label order (command_order).
	Commands []string `yaml:"commands,omitempty"`

	// Expect holds expected state fields (final_state): phase, running,
	// elapsed (seconds), active (list), mode, and emitters (id -> status).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertCommandContains = "command_contains"
	AssertCommandOrder    = "command_order"
	AssertCommandCount    = "command_count"
	AssertFinalState      = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Timeline != "" && !filepath.IsAbs(scenario.Timeline) {
		scenario.Timeline = filepath.Join(filepath.Dir(path), scenario.Timeline)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// ValidateSteps checks a step list the way LoadScenario does.
func ValidateSteps(steps []Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	return nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Timeline == "" {
		return fmt.Errorf("timeline is required")
	}
	if _, err := os.Stat(s.Timeline); os.IsNotExist(err) {
		return fmt.Errorf("timeline file not found: %s", s.Timeline)
	}

	if _, ok := player.ParseStopPolicy(s.StopPolicy); !ok {
		return fmt.Errorf("stop_policy must be keep or clear, got %q", s.StopPolicy)
	}

	if err := ValidateSteps(s.Steps); err != nil {
		return err
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s Step) error {
	set := 0
	if s.Play != nil {
		set++
	}
	if s.Activate {
		set++
	}
	if s.Stop {
		set++
	}
	if s.Tick != nil {
		set++
	}
	if s.Preview != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of play, activate, stop, tick, preview is required", index)
	}

	if s.ExpectError != "" {
		if s.Play == nil && !s.Activate {
			return fmt.Errorf("steps[%d]: expect_error is only valid with play or activate", index)
		}
		switch player.PlayErrorCode(s.ExpectError) {
		case player.ErrCodeEmptyName, player.ErrCodePhaseNotFound:
		default:
			return fmt.Errorf("steps[%d]: unknown expect_error %q", index, s.ExpectError)
		}
	}

	if s.Tick != nil && *s.Tick < 0 {
		return fmt.Errorf("steps[%d]: tick must be non-negative", index)
	}
	if s.Preview != nil && *s.Preview < 0 {
		return fmt.Errorf("steps[%d]: preview must be non-negative", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCommandContains:
		if a.Kind == "" && a.Emitter == "" {
			return fmt.Errorf("assertions[%d]: kind or emitter is required for command_contains", index)
		}
	case AssertCommandOrder:
		if len(a.Commands) == 0 {
			return fmt.Errorf("assertions[%d]: commands list is required for command_order", index)
		}
	case AssertCommandCount:
		if a.Kind == "" && a.Emitter == "" {
			return fmt.Errorf("assertions[%d]: kind or emitter is required for command_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for command_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
		for key := range a.Expect {
			if !finalStateKeys[key] {
				return fmt.Errorf("assertions[%d]: unknown final_state field %q", index, key)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

var finalStateKeys = map[string]bool{
	"phase":    true,
	"running":  true,
	"elapsed":  true,
	"active":   true,
	"mode":     true,
	"emitters": true,
}
