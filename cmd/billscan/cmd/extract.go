package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bill-extraction-service/cmd/billscan/config"
	"bill-extraction-service/internal/engine"
	"bill-extraction-service/internal/report"
	"bill-extraction-service/pkg/logger"
)

var (
	extractFile      string
	extractFormat    string
	extractOutput    string
	extractRank      bool
	extractRawFields bool
	extractMinFields int
	extractFallback  bool
	extractWatch     bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract bill data from a single document",
	Long: `Extract structured bill data (IBAN, bill number, amount, addresses)
from one document file.

The document is matched against every enabled vendor pattern available to
the user; the best qualifying pattern extracts the fields. When no pattern
recognizes the document it is reported unrecognized; pass --fallback to let
the built-in rule corpus try instead.

Examples:
  billscan extract --file bill.txt
  billscan extract --file bill.txt --user u1 --output-format json
  billscan extract --file bill.txt --rank
  billscan extract --file bill.txt --min-fields 2 --fallback`,
	PreRunE: validateExtractFlags,
	RunE:    runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractFile, "file", "", "document file to extract from (required)")
	extractCmd.Flags().StringVarP(&extractFormat, "output-format", "f", "console", "output format (console, json)")
	extractCmd.Flags().StringVarP(&extractOutput, "output-file", "o", "", "output file (default: stdout)")
	extractCmd.Flags().BoolVar(&extractRank, "rank", false, "show the full pattern ranking instead of the extraction result")
	extractCmd.Flags().BoolVar(&extractRawFields, "raw-fields", false, "include every raw pattern capture in the output")
	extractCmd.Flags().IntVar(&extractMinFields, "min-fields", 0, "minimum matched fields for a pattern to qualify (default 1)")
	extractCmd.Flags().BoolVar(&extractFallback, "fallback", false, "extract unclaimed documents with the built-in rule corpus")
	extractCmd.Flags().BoolVar(&extractWatch, "watch", false, "watch pattern directories and reload on change")

	extractCmd.MarkFlagRequired("file")
}

// validateExtractFlags validates the extract command flags
func validateExtractFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(extractFile, "document file"); err != nil {
		return err
	}

	switch extractFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid output format %q (valid: console, json)", extractFormat)
	}

	if extractMinFields < 0 {
		return fmt.Errorf("min-fields cannot be negative")
	}

	if extractOutput != "" {
		if err := validateOutputDir(extractOutput); err != nil {
			return err
		}
	}
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := commandLogger()

	doc, err := os.ReadFile(extractFile)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	loader, closeLoader, err := config.CreateLoader(
		viper.GetString("admin-patterns"), viper.GetString("user-patterns"), extractWatch, log)
	if err != nil {
		return err
	}
	defer closeLoader()

	eng, err := engine.NewEngine(loader, nil,
		config.CreateEngineConfig(extractMinFields, extractFallback), log)
	if err != nil {
		return err
	}

	generator, err := report.NewGenerator(config.CreateReportConfig(extractFormat, extractRawFields))
	if err != nil {
		return err
	}

	writer, closeWriter, err := openOutput(extractOutput)
	if err != nil {
		return err
	}
	defer closeWriter()

	user := viper.GetString("user")

	if extractRank {
		ranked, err := eng.MatchPatterns(ctx, doc, user)
		if err != nil {
			return err
		}
		return generator.RankingReport(ranked, writer)
	}

	result, err := eng.ExtractAuto(ctx, doc, user)
	if err != nil {
		return err
	}
	return generator.ExtractionReport(result, writer)
}

// validateFileExists checks that a flag names an existing regular file.
func validateFileExists(path, label string) error {
	if path == "" {
		return fmt.Errorf("%s is required", label)
	}
	stat, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", label, path)
	}
	if err != nil {
		return fmt.Errorf("cannot access %s %s: %w", label, path, err)
	}
	if stat.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", label, path)
	}
	return nil
}

// validateOutputDir checks that the directory of an output path exists.
func validateOutputDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	stat, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("output directory does not exist: %s", dir)
	}
	if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", dir, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("output path parent is not a directory: %s", dir)
	}
	return nil
}

// openOutput resolves the report destination. An empty path means stdout
// with a no-op closer.
func openOutput(path string) (*os.File, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, file.Close, nil
}

// commandLogger builds the per-invocation logger, honoring --verbose.
func commandLogger() logger.Logger {
	cfg := logger.DefaultConfig()
	if viper.GetBool("verbose") {
		cfg = logger.DebugConfig()
	}
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return logger.GetGlobalLogger()
	}
	logger.SetGlobalLogger(log)
	return log
}
