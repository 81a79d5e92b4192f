package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const showYAML = `start_phase: intro
phases:
  - name: intro
    on_enter:
      - emitter: sparks
      - emitter: smoke
        delay: 0.5
    on_stop:
      - emitter: sparks
        delay: 2
  - name: finale
    clear_siblings: true
    on_enter:
      - emitter: fireworks
        delay: 0.25
    on_clear:
      - emitter: fireworks
        delay: 4
jumps:
  - from: skip
    to: finale
    start_offset: 1.5
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func writeShow(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "show.yaml", showYAML)
}

// execute runs a subcommand built by newCmd with fresh root options.
func execute(t *testing.T, opts *RootOptions, newCmd func(*RootOptions) *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newCmd(opts)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
