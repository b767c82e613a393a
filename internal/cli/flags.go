package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/toon/internal/compress"
	"github.com/hupe1980/toon/internal/input"
	"github.com/hupe1980/toon/internal/output"
)

// registerInputFlags adds the input decoding flags to a cobra command.
func registerInputFlags(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVar(format, "input-format", string(input.FormatAuto), "input format: auto, json, yaml")
}

// registerOutputFlags adds the output destination flags to a cobra command.
func registerOutputFlags(cmd *cobra.Command, opts *outputOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file path (single input only)")
	f.StringVar(&opts.outputDir, "output-dir", "", "write one .toon file per input into this directory")
	f.StringVar(&opts.compression, "compress", output.CodecAuto,
		"output compression: "+strings.Join(output.DefaultRegistry().Names(), ", "))
}

// outputOptions selects where encoded documents are written.
type outputOptions struct {
	output      string
	outputDir   string
	compression string
}

// resolved is the validated form of outputOptions.
type resolved struct {
	factory output.WriterFactory
	codec   compress.Codec
}

// resolve validates the output flags for the given number of inputs.
func (o *outputOptions) resolve(inputs int) (*resolved, error) {
	if o.output != "" && o.outputDir != "" {
		return nil, &ExitError{Code: 2, Err: fmt.Errorf("--output and --output-dir are mutually exclusive")}
	}

	if o.output != "" && inputs > 1 {
		return nil, &ExitError{Code: 2, Err: fmt.Errorf("--output accepts a single input, got %d (use --output-dir)", inputs)}
	}

	factory, err := output.DefaultRegistry().Writer(o.compression)
	if err != nil {
		return nil, &ExitError{Code: 2, Err: err}
	}

	codec := compress.None
	if o.compression != output.CodecAuto {
		if codec, err = compress.Parse(o.compression); err != nil {
			return nil, &ExitError{Code: 2, Err: err}
		}
	}

	return &resolved{factory: factory, codec: codec}, nil
}

// parseInputFormat converts the --input-format flag, mapping errors to exit code 2.
func parseInputFormat(s string) (input.Format, error) {
	format, err := input.ParseFormat(s)
	if err != nil {
		return "", &ExitError{Code: 2, Err: err}
	}

	return format, nil
}

// inputPaths defaults to stdin and rejects reading stdin twice.
func inputPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{input.StdinName}, nil
	}

	stdin := 0

	for _, a := range args {
		if a == input.StdinName {
			stdin++
		}
	}

	if stdin > 1 {
		return nil, &ExitError{Code: 2, Err: fmt.Errorf("standard input (%q) can only be read once", input.StdinName)}
	}

	return args, nil
}
