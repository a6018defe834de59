package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labellens/backend/internal/usecase"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <product.json>...",
	Short: "Rank previously analyzed products",
	Long: `Compare loads Product JSON files (as written by "labelctl analyze") and
ranks them by overall score, listing ingredients not shared by all of them.

Example:
  labelctl compare a.json b.json c.json`,
	Args: cobra.RangeArgs(1, usecase.MaxComparedProducts),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVarP(&outputFormat, "output", "o", FormatJSON, "output format (json, yaml)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	products, err := loadProducts(args)
	if err != nil {
		return err
	}

	result := usecase.NewComparisonService().Compare(products)
	if verbose {
		fmt.Fprintln(cmd.ErrOrStderr(), result.Summary)
	}
	return writeOutput(cmd.OutOrStdout(), outputFormat, result)
}
