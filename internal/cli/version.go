package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/toon/internal/version"
)

func newVersionCommand() *cobra.Command {
	var jsonOutput, toonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display the version, git commit, build date, Go version, and platform.",
		Args:  cobra.NoArgs,
		// Override parent PersistentPreRunE: version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonOutput && toonOutput {
				return &ExitError{Code: 2, Err: fmt.Errorf("--json and --toon are mutually exclusive")}
			}

			info := version.GetInfo()

			var (
				out string
				err error
			)

			switch {
			case jsonOutput:
				out, err = info.JSON()
			case toonOutput:
				out, err = info.TOON()
			default:
				out = info.String()
			}

			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)

			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output version info as JSON")
	cmd.Flags().BoolVar(&toonOutput, "toon", false, "output version info as TOON")

	return cmd
}
