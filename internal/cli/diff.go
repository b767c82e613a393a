package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/toon/internal/compress"
	"github.com/hupe1980/toon/internal/diff"
	"github.com/hupe1980/toon/internal/input"
)

type diffOptions struct {
	// Existing TOON file to diff against.
	existing string

	inputFormat string

	// Lines of context around each hunk.
	context int
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <file>",
		Short: "Compare a fresh encoding against an existing TOON file",
		Long: `Diff encodes the input document and compares the result with an
existing TOON file, printing a unified diff.

The existing file may be compressed with gzip, zstd, or lz4.

Exit codes:
  0  No differences
  1  Error
  2  Invalid arguments
  8  Differences found`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.existing, "existing", "", "path to the existing TOON file to diff against")
	f.IntVar(&opts.context, "context", diff.DefaultOptions().Context, "lines of context around each change")
	registerInputFlags(cmd, &opts.inputFormat)

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, path string, opts *diffOptions) error {
	if opts.existing == "" {
		return &ExitError{Code: 2, Err: fmt.Errorf("--existing flag is required: specify the path to the existing TOON file")}
	}

	format, err := parseInputFormat(opts.inputFormat)
	if err != nil {
		return err
	}

	existing, err := readExisting(opts.existing)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	enc, err := encodeSource(ctx, cmd.InOrStdin(), path, format)
	if err != nil {
		return err
	}

	diffOpts := diff.DefaultOptions()
	diffOpts.OldLabel = opts.existing
	diffOpts.NewLabel = enc.doc.Name
	diffOpts.Context = opts.context

	result, err := diff.Compute(existing, enc.text, diffOpts)
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("computing diff: %w", err)}
	}

	w := cmd.OutOrStdout()
	diff.Write(w, result, colorEnabled(ctx, w))

	if result.HasDifferences {
		return &ExitError{
			Code: 8,
			Err:  fmt.Errorf("encoding of %s differs from %s", enc.doc.Name, opts.existing),
		}
	}

	return nil
}

// readExisting loads a TOON file, decompressing it when needed.
func readExisting(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided CLI arg
	if err != nil {
		return "", fmt.Errorf("reading existing file: %w", err)
	}

	text, truncated, err := compress.Decompress(compress.Detect(path, data), data, input.MaxInputSize)
	if err != nil {
		return "", fmt.Errorf("decompressing %s: %w", path, err)
	}

	if truncated {
		return "", fmt.Errorf("%s exceeds %d bytes", path, input.MaxInputSize)
	}

	return string(text), nil
}
