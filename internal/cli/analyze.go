package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/labellens/backend/config"
	"github.com/labellens/backend/internal/domain"
	"github.com/labellens/backend/internal/infrastructure/oracle"
	"github.com/labellens/backend/internal/usecase"
)

var (
	analyzeFile  string
	productName  string
	brand        string
	category     string
	profileFile  string
	region       string
	offline      bool
	outputFormat string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze label text into a scored product",
	Long: `Analyze runs the full pipeline on label text: classification, extraction,
the configured oracle and response sanitation. When the oracle is unavailable
the result is a degraded heuristic assessment.

Example:
  labelctl analyze --file label.txt --name "Oat Crackers" --category Snacks
  labelctl analyze --file label.txt --profile me.yaml --region DE --output yaml
  labelctl analyze --file label.txt --offline`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "-", "label text file (- for stdin)")
	analyzeCmd.Flags().StringVarP(&productName, "name", "n", "", "product name")
	analyzeCmd.Flags().StringVar(&brand, "brand", "", "product brand")
	analyzeCmd.Flags().StringVarP(&category, "category", "c", "", "product category")
	analyzeCmd.Flags().StringVarP(&profileFile, "profile", "p", "", "user profile YAML file")
	analyzeCmd.Flags().StringVar(&region, "region", "", "country or region code for regulatory context")
	analyzeCmd.Flags().BoolVar(&offline, "offline", false, "skip the oracle and produce a heuristic assessment")
	analyzeCmd.Flags().StringVarP(&outputFormat, "output", "o", FormatJSON, "output format (json, yaml)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := readText(analyzeFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	profile, err := loadProfile(profileFile)
	if err != nil {
		return err
	}

	log := newLogger()
	defer log.Sync()

	var analysisOracle domain.Oracle
	timeout := 25 * time.Second
	if !offline {
		cfg, err := config.LoadFile(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config (use --offline to skip the oracle): %w", err)
		}
		analysisOracle, err = oracle.New(oracle.Config{
			Provider:          cfg.Oracle.Provider,
			APIKey:            cfg.Oracle.APIKey,
			BaseURL:           cfg.Oracle.BaseURL,
			Model:             cfg.Oracle.Model,
			Timeout:           cfg.Oracle.Timeout,
			MaxTokens:         cfg.Oracle.MaxTokens,
			Temperature:       cfg.Oracle.Temperature,
			RequestsPerMinute: cfg.Oracle.RequestsPerMinute,
		}, log)
		if err != nil {
			return err
		}
		timeout = cfg.Oracle.Timeout
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing %d bytes of label text (oracle: %v)\n", len(text), analysisOracle != nil)
	}

	analysis := usecase.NewAnalysisService(analysisOracle, log, usecase.AnalysisServiceConfig{OracleTimeout: timeout})
	product := analysis.Analyze(context.Background(), &domain.AnalyzeRequest{
		ProductName: productName,
		Brand:       brand,
		Category:    category,
		RawText:     text,
		Profile:     profile,
		Region:      region,
	})

	if product.Degraded {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: oracle unavailable, showing a degraded heuristic assessment")
	}
	return writeOutput(cmd.OutOrStdout(), outputFormat, product)
}
