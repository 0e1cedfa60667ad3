package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bill-extraction-service/cmd/billscan/config"
	"bill-extraction-service/internal/address"
	"bill-extraction-service/internal/engine"
	"bill-extraction-service/internal/property"
	"bill-extraction-service/internal/report"
	"bill-extraction-service/pkg/logger"
)

var (
	matchProperties    string
	matchFormat        string
	matchOutput        string
	matchMinConfidence int
	matchMinFields     int
	matchFallback      bool
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match [document files...]",
	Short: "Match bill documents against registered properties",
	Long: `Extract each document and match its addresses against the landlord's
registered properties.

The properties file is a CSV with an id column and an address column.
Every address found in a document is compared against every property;
a containment hit resolves immediately, otherwise the best fuzzy
confidence wins if it clears the threshold.

Unrecognized documents stay in the report so nothing silently drops out
of the batch.

Examples:
  billscan match --properties properties.csv bill1.txt bill2.txt
  billscan match --properties properties.csv --user u1 --min-confidence 70 *.txt
  billscan match --properties properties.csv -f csv -o results.csv bills/*.txt`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateMatchFlags,
	RunE:    runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&matchProperties, "properties", "p", "", "properties CSV file (required)")
	matchCmd.Flags().StringVarP(&matchFormat, "output-format", "f", "console", "output format (console, json, csv)")
	matchCmd.Flags().StringVarP(&matchOutput, "output-file", "o", "", "output file (default: stdout)")
	matchCmd.Flags().IntVar(&matchMinConfidence, "min-confidence", 0, "confidence threshold for fuzzy matches (default 50)")
	matchCmd.Flags().IntVar(&matchMinFields, "min-fields", 0, "minimum matched fields for a pattern to qualify (default 1)")
	matchCmd.Flags().BoolVar(&matchFallback, "fallback", false, "extract unclaimed documents with the built-in rule corpus")

	matchCmd.MarkFlagRequired("properties")
}

// validateMatchFlags validates the match command flags
func validateMatchFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(matchProperties, "properties file"); err != nil {
		return err
	}
	for _, doc := range args {
		if err := validateFileExists(doc, "document file"); err != nil {
			return err
		}
	}

	switch matchFormat {
	case "console", "json", "csv":
	default:
		return fmt.Errorf("invalid output format %q (valid: console, json, csv)", matchFormat)
	}

	if matchMinConfidence < 0 || matchMinConfidence > 100 {
		return fmt.Errorf("min-confidence must be between 0 and 100")
	}

	if matchOutput != "" {
		if err := validateOutputDir(matchOutput); err != nil {
			return err
		}
	}
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := commandLogger()

	properties, err := config.LoadProperties(matchProperties)
	if err != nil {
		return err
	}

	loader, closeLoader, err := config.CreateLoader(
		viper.GetString("admin-patterns"), viper.GetString("user-patterns"), false, log)
	if err != nil {
		return err
	}
	defer closeLoader()

	eng, err := engine.NewEngine(loader, nil,
		config.CreateEngineConfig(matchMinFields, matchFallback), log)
	if err != nil {
		return err
	}

	scorer, err := address.NewScorer(config.CreateScorerConfig(matchMinConfidence))
	if err != nil {
		return err
	}
	matcher, err := property.NewMatcher(scorer, log)
	if err != nil {
		return err
	}

	user := viper.GetString("user")

	progress := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "match",
		Total:     int64(len(args)),
		Logger:    log,
	})

	batch := &report.BatchResult{ProcessedAt: time.Now()}
	for _, path := range args {
		outcome := report.MatchOutcome{Document: filepath.Base(path)}

		doc, readErr := os.ReadFile(path)
		if readErr != nil {
			log.WithError(readErr).WithField("document", path).Error("failed to read document, skipping")
			batch.Outcomes = append(batch.Outcomes, outcome)
			progress.Increment()
			continue
		}

		result, autoErr := eng.ExtractAuto(ctx, doc, user)
		if autoErr != nil {
			progress.CompleteWithError(autoErr)
			return autoErr
		}
		outcome.Result = result

		if result != nil {
			candidates := result.Info.AllAddresses
			if len(candidates) == 0 {
				if best := result.Info.BestAddress(); best != "" {
					candidates = []string{best}
				}
			}
			if propertyID, confidence, ok := matcher.Match(candidates, properties); ok {
				outcome.PropertyID = propertyID
				outcome.Confidence = confidence
				outcome.Matched = true
			}
		}

		batch.Outcomes = append(batch.Outcomes, outcome)
		progress.Increment()
	}
	progress.Complete()

	generator, err := report.NewGenerator(config.CreateReportConfig(matchFormat, false))
	if err != nil {
		return err
	}

	writer, closeWriter, err := openOutput(matchOutput)
	if err != nil {
		return err
	}
	defer closeWriter()

	return generator.MatchReport(batch, writer)
}
