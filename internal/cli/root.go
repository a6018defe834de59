package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labellens/backend/internal/pkg/logger"
)

// Version is the labelctl release
const Version = "1.0.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "labelctl",
	Short: "LabelLens - offline ingredient label analysis",
	Long: `labelctl runs the LabelLens label pipeline from the command line.

It classifies OCR text from product packaging, extracts ingredient lists or
nutrition facts, scores the product through the configured analysis oracle
and compares previously analyzed products.

Results are informational only and are not medical advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "labelctl v%s\n", Version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or /etc/labellens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

// newLogger logs to stderr in verbose mode and discards otherwise
func newLogger() *logger.Logger {
	if !verbose {
		return logger.NewNop()
	}
	log, err := logger.New("development")
	if err != nil {
		return logger.NewNop()
	}
	return log
}
