package cli

import (
	"github.com/spf13/cobra"

	"github.com/labellens/backend/internal/usecase"
)

var classifyFile string

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify label text and show what would be analyzed",
	Long: `Classify decides whether OCR text is a nutrition-facts table or an
ingredient list, then prints the extracted content. No oracle is called.

Example:
  labelctl classify --file label.txt
  pbpaste | labelctl classify --file - --output yaml`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "-", "label text file (- for stdin)")
	classifyCmd.Flags().StringVarP(&outputFormat, "output", "o", FormatJSON, "output format (json, yaml)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	text, err := readText(classifyFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	analysis := usecase.NewAnalysisService(nil, newLogger(), usecase.AnalysisServiceConfig{})
	return writeOutput(cmd.OutOrStdout(), outputFormat, analysis.Classify(text))
}
