package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/toon/internal/input"
	"github.com/hupe1980/toon/internal/logging"
	"github.com/hupe1980/toon/internal/output"
	"github.com/hupe1980/toon/internal/watch"
)

type watchOptions struct {
	outputOptions

	inputFormat string
	debounce    time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <file...>",
		Short: "Watch input files and re-encode them on change",
		Long: `Watch encodes the given files once and then re-encodes each file
whenever it changes on disk.

Changes are debounced to avoid rapid re-runs, and saves that leave the
content unchanged are skipped. Each run reports the number of lines and
bytes written.

Use --output for a single file or --output-dir for several.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args, opts)
		},
	}

	registerInputFlags(cmd, &opts.inputFormat)
	registerOutputFlags(cmd, &opts.outputOptions)
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultOptions().Debounce, "debounce interval for file changes")

	return cmd
}

// watchTarget is one watched input and the file its encoding is written to.
type watchTarget struct {
	path   string
	output string
}

func runWatch(ctx context.Context, cmd *cobra.Command, args []string, opts *watchOptions) error {
	if opts.output == "" && opts.outputDir == "" {
		return &ExitError{Code: 2, Err: fmt.Errorf("--output (-o) or --output-dir is required for watch mode")}
	}

	format, err := parseInputFormat(opts.inputFormat)
	if err != nil {
		return err
	}

	dest, err := opts.resolve(len(args))
	if err != nil {
		return err
	}

	targets := make([]watchTarget, 0, len(args))
	byPath := make(map[string]watchTarget, len(args))

	for _, arg := range args {
		if arg == input.StdinName {
			return &ExitError{Code: 2, Err: fmt.Errorf("watch cannot read standard input")}
		}

		abs, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", arg, err)
		}

		t := watchTarget{path: arg, output: opts.output}
		if opts.outputDir != "" {
			t.output = output.DerivePath(opts.outputDir, arg, dest.codec)
		}

		targets = append(targets, t)
		byPath[filepath.Clean(abs)] = t
	}

	encodeTarget := func(fnCtx context.Context, t watchTarget) (int, int, error) {
		enc, err := encodeSource(fnCtx, cmd.InOrStdin(), t.path, format)
		if err != nil {
			return 0, 0, err
		}

		data := []byte(enc.text + "\n")
		if err := dest.factory(t.output, output.WithLogger(logging.ForSource(fnCtx, t.path))).Write(data); err != nil {
			return 0, 0, fmt.Errorf("writing output: %w", err)
		}

		return strings.Count(enc.text, "\n") + 1, len(data), nil
	}

	runFn := func(fnCtx context.Context, trigger string) (*watch.RunResult, error) {
		run := targets

		if trigger != watch.InitialTrigger {
			t, ok := byPath[trigger]
			if !ok {
				return nil, fmt.Errorf("unexpected trigger %q", trigger)
			}

			run = []watchTarget{t}
		}

		result := &watch.RunResult{}

		for _, t := range run {
			lines, n, err := encodeTarget(fnCtx, t)
			if err != nil {
				return nil, err
			}

			result.Lines += lines
			result.Bytes += n
			result.OutputPath = t.output
		}

		if len(run) > 1 {
			result.OutputPath = opts.outputDir
		}

		return result, nil
	}

	watchOpts := watch.DefaultOptions()
	watchOpts.Files = args
	watchOpts.Debounce = opts.debounce
	watchOpts.Logger = logging.FromContext(ctx)
	watchOpts.Out = cmd.ErrOrStderr()

	return watch.Run(ctx, watchOpts, runFn)
}
