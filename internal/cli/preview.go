package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/roach88/phaseplay/internal/emitter"
	"github.com/roach88/phaseplay/internal/player"
	"github.com/roach88/phaseplay/internal/preview"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	Phase string
	FPS   int

	// ProgramOptions are passed to the bubbletea program (tests use them
	// to replace the terminal).
	ProgramOptions []tea.ProgramOption
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	return newPreviewCommand(&PreviewOptions{RootOptions: rootOpts})
}

func newPreviewCommand(opts *PreviewOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <timeline>",
		Short: "Play a timeline in the terminal",
		Long: `Open an interactive terminal preview of a timeline.

Frames tick the player at --fps (default player.tick_rate). Emitters are
recorders; the panel shows each one's status and local time.

Keys: up/down select, enter play, a activate, s stop,
e toggle editing mode, q quit.

Examples:
  phaseplay preview show.yaml
  phaseplay preview show.yaml --phase finale --fps 60`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Phase, "phase", "", "phase or jump to play on start (default player.debug_phase)")
	cmd.Flags().IntVar(&opts.FPS, "fps", 0, "frames per second (default player.tick_rate)")

	return cmd
}

func runPreview(opts *PreviewOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	tbl, err := loadTimeline(formatter, path)
	if err != nil {
		return err
	}
	if opts.Config.Player.StartPhase != "" {
		tbl.StartPhase = opts.Config.Player.StartPhase
	}

	emitters := emitter.NewRecordingRegistry(tbl)
	p := player.New(tbl, emitters,
		player.WithLogger(opts.logger()),
		player.WithStopPolicy(opts.Config.Player.Policy()),
	)

	phase := opts.Phase
	if phase == "" {
		phase = opts.Config.Player.DebugPhase
	}
	if phase != "" {
		if err := p.DebugPlay(phase); err != nil {
			_ = formatter.Error(ErrCodePlayRejected, err.Error(), nil)
			return WrapExitError(ExitFailure, "failed to play phase", err)
		}
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = opts.tickRate()
	}
	model := preview.New(p, emitters, preview.WithFPS(fps), preview.WithCursor(phase))

	progOpts := []tea.ProgramOption{tea.WithContext(cmd.Context()), tea.WithAltScreen()}
	progOpts = append(progOpts, opts.ProgramOptions...)
	if _, err := tea.NewProgram(model, progOpts...).Run(); err != nil {
		return WrapExitError(ExitCommandError, "preview failed", err)
	}
	return nil
}
