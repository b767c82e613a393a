package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/toon/internal/config"
	"github.com/hupe1980/toon/internal/input"
	"github.com/hupe1980/toon/internal/logging"
	"github.com/hupe1980/toon/internal/output"
	"github.com/hupe1980/toon/pkg/toon"
)

type encodeOptions struct {
	outputOptions

	inputFormat string
	workers     int
}

func newEncodeCommand() *cobra.Command {
	opts := &encodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode [file...]",
		Short: "Encode JSON or YAML documents as TOON",
		Long: `Encode reads JSON or YAML documents and writes their TOON encoding.

Without arguments, or with "-", the document is read from standard input.
The input format is detected from the file extension or the content unless
--input-format is given. Inputs compressed with gzip, zstd, or lz4 are
decompressed transparently.

By default the result is written to standard output, with a blank line
between documents. Use --output for a single input or --output-dir to write
one .toon file per input; --output-dir encodes inputs concurrently.

Examples:
  toon encode users.json
  kubectl get pods -o json | toon encode --delimiter tab
  toon encode --output-dir out/ --compress zstd data/*.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd.Context(), cmd, args, opts)
		},
	}

	registerInputFlags(cmd, &opts.inputFormat)
	registerOutputFlags(cmd, &opts.outputOptions)
	cmd.Flags().IntVar(&opts.workers, "workers", runtime.GOMAXPROCS(0), "number of inputs encoded concurrently with --output-dir")

	return cmd
}

func runEncode(ctx context.Context, cmd *cobra.Command, args []string, opts *encodeOptions) error {
	paths, err := inputPaths(args)
	if err != nil {
		return err
	}

	format, err := parseInputFormat(opts.inputFormat)
	if err != nil {
		return err
	}

	dest, err := opts.resolve(len(paths))
	if err != nil {
		return err
	}

	if opts.outputDir != "" {
		if opts.workers < 1 {
			return &ExitError{Code: 2, Err: fmt.Errorf("--workers must be at least 1, got %d", opts.workers)}
		}

		return encodeToDir(ctx, cmd.InOrStdin(), paths, format, opts, dest)
	}

	var w output.Writer
	if opts.output != "" {
		w = dest.factory(opts.output, output.WithLogger(logging.FromContext(ctx)))
	} else {
		w = output.NewStdoutWriter(cmd.OutOrStdout()).Compressed(dest.codec)
	}

	var buf strings.Builder

	for i, path := range paths {
		enc, err := encodeSource(ctx, cmd.InOrStdin(), path, format)
		if err != nil {
			return err
		}

		if i > 0 {
			buf.WriteString("\n")
		}

		buf.WriteString(enc.text)
		buf.WriteString("\n")
	}

	if err := w.Write([]byte(buf.String())); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

// encodeToDir encodes every input into its own file below opts.outputDir.
func encodeToDir(ctx context.Context, stdin io.Reader, paths []string, format input.Format, opts *encodeOptions, dest *resolved) error {
	for _, path := range paths {
		if path == input.StdinName {
			return &ExitError{Code: 2, Err: fmt.Errorf("--output-dir cannot be used with standard input")}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			enc, err := encodeSource(gctx, stdin, path, format)
			if err != nil {
				return err
			}

			logger := logging.ForSource(gctx, path)

			target := output.DerivePath(opts.outputDir, path, dest.codec)
			if err := dest.factory(target, output.WithLogger(logger)).Write([]byte(enc.text + "\n")); err != nil {
				return fmt.Errorf("writing %s: %w", target, err)
			}

			logger.Info("encoded", slog.String("output", target))

			return nil
		})
	}

	return g.Wait()
}

// encoded is one input document together with its TOON text.
type encoded struct {
	doc  *input.Document
	text string
}

// encodeSource reads path and encodes it with the settings carried by ctx.
func encodeSource(ctx context.Context, stdin io.Reader, path string, format input.Format) (*encoded, error) {
	logger := logging.ForSource(ctx, path)

	doc, err := input.ReadFile(path, format, stdin)
	if err != nil {
		return nil, err
	}

	text, err := toon.EncodeValue(doc.Value, config.FromContext(ctx).EncodeOptions())
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", doc.Name, err)
	}

	logger.Debug("document encoded",
		slog.String("format", string(doc.Format)),
		slog.String("compression", string(doc.Compression)),
		slog.Int("inputBytes", len(doc.Raw)),
		slog.Int("outputBytes", len(text)),
	)

	return &encoded{doc: doc, text: text}, nil
}
