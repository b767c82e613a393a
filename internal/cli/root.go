// Package cli implements the cobra command tree for toon.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/toon/internal/config"
	"github.com/hupe1980/toon/internal/logging"
	"github.com/hupe1980/toon/pkg/toon"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				fmt.Fprintln(os.Stderr, "Error:", exitErr.Err)
			}

			return exitErr.Code
		}

		fmt.Fprintln(os.Stderr, "Error:", err)

		return 1
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "toon",
		Short: "Encode JSON and YAML data as Token-Oriented Object Notation",
		Long: `toon converts JSON and YAML documents into TOON (Token-Oriented
Object Notation), a compact, indentation-based text format designed to
carry structured data into LLM prompts with fewer tokens than JSON.

Uniform arrays of objects become tables with a single header row,
primitive arrays are written inline, and nesting is expressed through
indentation instead of braces.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger := logging.SetupWithWriter(cfg, cmd.ErrOrStderr())

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("configFile", cfg.ConfigFile),
				logging.EncodingAttrs(cfg),
			)

			return nil
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .toon.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	// Encoding settings shared by every encoding subcommand.
	pf.Int("indent", toon.DefaultIndent, "spaces per nesting level")
	pf.String("delimiter", toon.DefaultDelimiter, "array and table delimiter: a single character or comma, tab, pipe")
	pf.String("length-marker", "", "optional character placed before array lengths (e.g. #)")
	pf.String("profile", "", "named encoding profile from the config file")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	// Register subcommands.
	cmd.AddCommand(
		newVersionCommand(),
		newEncodeCommand(),
		newDiffCommand(),
		newStatsCommand(),
		newWatchCommand(),
		newCompletionCommand(),
	)

	return cmd
}
