package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sliceplan/sliceplan/pkg/optimize"
)

// windowSizeCommand creates the `windowsize` command, a closed-form helper
// that needs no series geometry: given an item count, a desired window count
// and an overlap percentage it prints the largest window size whose layout
// still fits.
func (c *CLI) windowSizeCommand() *cobra.Command {
	var (
		items   int
		windows int
		overlap float64
	)

	cmd := &cobra.Command{
		Use:   "windowsize",
		Short: "Compute the largest window size for a count and overlap",
		Example: `  sliceplan windowsize --items 20 --windows 4 --overlap 25
  sliceplan windowsize --items 100 --windows 10 --overlap 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := optimize.WindowSize(items, windows, overlap)
			if err != nil {
				return err
			}

			step := optimize.StepForOverlap(size, overlap)
			c.Logger.Debug("window size solved",
				"size", size, "step", step,
				"coverage", optimize.Coverage(windows, size, step))

			fmt.Fprintln(cmd.OutOrStdout(), size)
			return nil
		},
	}

	cmd.Flags().IntVar(&items, "items", 0, "number of items in the series")
	cmd.Flags().IntVar(&windows, "windows", 0, "desired number of windows")
	cmd.Flags().Float64Var(&overlap, "overlap", 0, "overlap between consecutive windows in percent")
	cmd.MarkFlagRequired("items")
	cmd.MarkFlagRequired("windows")

	return cmd
}
