package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/toon/internal/config"
	"github.com/hupe1980/toon/internal/input"
	"github.com/hupe1980/toon/internal/stats"
)

type statsOptions struct {
	inputFormat string
	format      string
}

func newStatsCommand() *cobra.Command {
	opts := &statsOptions{}

	cmd := &cobra.Command{
		Use:   "stats [file...]",
		Short: "Compare the size of JSON and TOON encodings",
		Long: `Stats encodes each input as compact JSON and as TOON and reports
bytes, lines, and estimated tokens for both, together with the
percentage of tokens saved.

Token counts are estimated at four characters per token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), cmd, args, opts)
		},
	}

	registerInputFlags(cmd, &opts.inputFormat)
	cmd.Flags().StringVar(&opts.format, "format", stats.FormatTable,
		"report format: "+strings.Join(stats.Formats, ", "))

	return cmd
}

func runStats(ctx context.Context, cmd *cobra.Command, args []string, opts *statsOptions) error {
	if !slices.Contains(stats.Formats, opts.format) {
		return &ExitError{Code: 2, Err: fmt.Errorf("invalid report format %q: must be one of %s",
			opts.format, strings.Join(stats.Formats, ", "))}
	}

	paths, err := inputPaths(args)
	if err != nil {
		return err
	}

	format, err := parseInputFormat(opts.inputFormat)
	if err != nil {
		return err
	}

	encOpts := config.FromContext(ctx).EncodeOptions()
	entries := make([]stats.Entry, 0, len(paths))

	for _, path := range paths {
		doc, err := input.ReadFile(path, format, cmd.InOrStdin())
		if err != nil {
			return err
		}

		entry, err := stats.Measure(doc.Name, doc.Value, encOpts)
		if err != nil {
			return fmt.Errorf("measuring %s: %w", doc.Name, err)
		}

		entries = append(entries, entry)
	}

	w := cmd.OutOrStdout()

	return stats.Write(w, stats.NewReport(entries), opts.format, colorEnabled(ctx, w))
}
