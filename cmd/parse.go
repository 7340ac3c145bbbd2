package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cartdanawa/pricescan/internal/heuristic"
)

func newParseCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Extract name and price from price tag text",
		Long: `Runs the local heuristic parser over recognized price tag text.

Reads the named file, or stdin when no file is given.`,
		Example: `  echo -e "신라면\n4,830원" | pricescan parse
  pricescan parse tag.txt --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 && args[0] != "-" {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			result := heuristic.Parse(string(data))
			return writeOutput(cmd.OutOrStdout(), format, result)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "Output format (yaml or json)")

	return cmd
}
