package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/phaseplay/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "" when there is no golden file
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run playback scenarios",
		Long: `Run scenario files against recording emitters.

Each scenario names a timeline, drives the player through its steps and
checks assertions on the command trace and final state. When
golden/<scenario>.golden exists next to the scenario, the canonical
snapshot must match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  phaseplay test ./scenarios
  phaseplay test ./scenarios --filter "jump-*"
  phaseplay test ./scenarios --update
  phaseplay test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	formatter := opts.formatter(cmd)
	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(formatter, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, opts)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		if opts.Format != "json" {
			printScenarioResult(formatter, scenResult)
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter, result)
}

// findScenarioFiles finds the YAML scenario files directly in dir.
// Subdirectories (golden/, timelines/) are not scenarios.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		if filter != "" {
			name := strings.TrimSuffix(entry.Name(), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}

		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// runScenario executes a single scenario and returns the result.
func runScenario(scenarioFile string, opts *TestOptions) ScenarioResult {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(scenarioFile),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.Run(scenario, harness.WithLogger(opts.logger()))
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	sr := ScenarioResult{Name: scenario.Name, Pass: result.Pass, Errors: result.Errors}

	snapshot, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to snapshot trace: %v", err))
		return sr
	}

	goldenPath := goldenFilePath(scenarioFile, scenario.Name)
	if opts.Update {
		if err := writeGoldenFile(goldenPath, snapshot); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to update golden file: %v", err))
			return sr
		}
		sr.Golden = "updated"
		return sr
	}

	golden, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		// No golden file - assertions alone decide.
		return sr
	}
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		return sr
	}

	if !bytes.Equal(golden, snapshot) {
		sr.Pass = false
		sr.Errors = append(sr.Errors, "trace does not match golden file (run with --update to regenerate)")
		return sr
	}
	sr.Golden = "match"
	return sr
}

// goldenFilePath returns golden/<name>.golden next to the scenario file.
func goldenFilePath(scenarioFile, name string) string {
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

func writeGoldenFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func printScenarioResult(formatter *OutputFormatter, sr ScenarioResult) {
	w := formatter.Writer
	if !sr.Pass {
		fmt.Fprintf(w, "✗ %s\n", sr.Name)
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return
	}
	switch sr.Golden {
	case "updated":
		fmt.Fprintf(w, "✓ %s (golden updated)\n", sr.Name)
	case "match":
		fmt.Fprintf(w, "✓ %s (golden)\n", sr.Name)
	default:
		fmt.Fprintf(w, "✓ %s\n", sr.Name)
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := formatter.Respond(response); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test summary as text.
func outputTestText(formatter *OutputFormatter, result TestResult) error {
	w := formatter.Writer

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
