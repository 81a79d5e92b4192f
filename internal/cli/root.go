package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/phaseplay/internal/config"
)

// RootOptions holds global flags for all commands, and the configuration
// and logger resolved from them before any subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the phaseplay CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "phaseplay",
		Short: "phaseplay - phase-driven emitter timelines",
		Long: `Author, check and play back phase-driven effect timelines.

A timeline names phases whose cues start, stop and clear emitters after
a delay, plus jump aliases that enter a phase part way through.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.resolve(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $PHASEPLAY_CONFIG or ./phaseplay.{toml,yaml})")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewPreviewCommand(opts))

	return cmd
}

// resolve loads configuration and builds the logger. Diagnostics go to
// stderr so JSON output stays parseable.
func (o *RootOptions) resolve(stderr io.Writer) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logCfg, err := config.LoadLogConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load log config", err)
	}
	logger, err := logCfg.NewLogger(stderr, o.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure logging", err)
	}

	o.Config = cfg
	o.Logger = logger
	slog.SetDefault(logger)
	return nil
}

// logger returns the resolved logger, or a discard logger when the
// command runs without the root (as in tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// tickRate returns the configured frame rate, falling back to the default.
func (o *RootOptions) tickRate() int {
	if o.Config.Player.TickRate <= 0 {
		return config.DefaultTickRate
	}
	return o.Config.Player.TickRate
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format: o.Format,
		Writer: cmd.OutOrStdout(),
		Logger: o.logger(),
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
