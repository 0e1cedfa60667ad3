// Package report renders extraction and property-match results.
//
// Supported output formats:
//   - Console: human-readable output for terminal display
//   - JSON: structured format for programmatic consumption
//   - CSV: flat format for spreadsheet applications
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"bill-extraction-service/internal/engine"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// Config holds configuration options for report generation
type Config struct {
	Format OutputFormat `json:"format"`

	// IncludeRawFields adds every raw pattern capture to extraction
	// output, not just the typed fields.
	IncludeRawFields bool `json:"include_raw_fields"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultConfig returns a default report configuration
func DefaultConfig() *Config {
	return &Config{
		Format:       FormatConsole,
		CSVDelimiter: ',',
		CSVHeaders:   true,
	}
}

// Validate validates the report configuration
func (c *Config) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// MatchOutcome is one document's journey through extraction and property
// matching.
type MatchOutcome struct {
	Document   string             `json:"document"`
	Result     *engine.AutoResult `json:"result,omitempty"`
	PropertyID string             `json:"property_id,omitempty"`
	Confidence int                `json:"confidence,omitempty"`
	Matched    bool               `json:"matched"`
}

// BatchResult aggregates the outcomes of one processing run.
type BatchResult struct {
	ProcessedAt time.Time      `json:"processed_at"`
	Outcomes    []MatchOutcome `json:"outcomes"`
}

// Recognized counts the documents that produced an extraction result.
func (b *BatchResult) Recognized() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Result != nil {
			n++
		}
	}
	return n
}

// MatchedCount counts the documents resolved to a property.
func (b *BatchResult) MatchedCount() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Matched {
			n++
		}
	}
	return n
}

// Generator renders reports in the configured format.
type Generator struct {
	config *Config
}

// NewGenerator creates a report generator with the specified configuration
func NewGenerator(config *Config) (*Generator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &Generator{config: config}, nil
}

// ExtractionReport renders one extraction result. A nil result renders as
// an unrecognized-document notice rather than failing.
func (g *Generator) ExtractionReport(result *engine.AutoResult, writer io.Writer) error {
	switch g.config.Format {
	case FormatJSON:
		return writeJSON(writer, result)
	case FormatConsole, FormatCSV:
		return g.writeExtractionConsole(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", g.config.Format)
	}
}

func (g *Generator) writeExtractionConsole(result *engine.AutoResult, writer io.Writer) error {
	if result == nil {
		fmt.Fprintf(writer, "Document not recognized as a bill.\n")
		return nil
	}

	fmt.Fprintf(writer, "EXTRACTION RESULT\n")
	fmt.Fprintf(writer, "Run:        %s\n", result.RunID)
	if result.Fallback {
		fmt.Fprintf(writer, "Source:     built-in rules\n")
	} else {
		fmt.Fprintf(writer, "Source:     pattern %s (%s, %d/%d fields)\n",
			result.PatternID, result.PatternSource.Tier, result.MatchedFields, result.TotalFields)
	}
	fmt.Fprintf(writer, "Bill type:  %s\n\n", result.BillType)

	info := result.Info
	fmt.Fprintf(writer, "IBAN:                %s\n", orDash(info.IBAN))
	fmt.Fprintf(writer, "Bill number:         %s\n", orDash(info.BillNumber))
	amount := "-"
	if info.HasAmount() {
		amount = info.Amount.Decimal.StringFixed(2)
	}
	fmt.Fprintf(writer, "Amount:              %s\n", amount)
	fmt.Fprintf(writer, "Address:             %s\n", orDash(info.Address))
	fmt.Fprintf(writer, "Consumption address: %s\n", orDash(info.ConsumptionAddress))

	if len(info.AllAddresses) > 0 {
		fmt.Fprintf(writer, "\nAddress candidates (%d):\n", len(info.AllAddresses))
		for i, addr := range info.AllAddresses {
			fmt.Fprintf(writer, "  %d. %s\n", i+1, addr)
		}
	}

	if g.config.IncludeRawFields && len(info.Fields) > 0 {
		fmt.Fprintf(writer, "\nRaw captures:\n")
		for name, value := range info.Fields {
			fmt.Fprintf(writer, "  %s: %s\n", name, value)
		}
	}
	return nil
}

// RankingReport renders the pattern ranking for one document.
func (g *Generator) RankingReport(ranked []engine.Ranked, writer io.Writer) error {
	switch g.config.Format {
	case FormatJSON:
		return writeJSON(writer, ranked)
	case FormatConsole, FormatCSV:
		fmt.Fprintf(writer, "PATTERN RANKING (%d matched)\n", len(ranked))
		for i, r := range ranked {
			fmt.Fprintf(writer, "  %d. %-30s %5.1f%%  (%d/%d fields, tier %s, priority %d)\n",
				i+1, r.Loaded.ID, r.Percentage, r.Matched, r.Total,
				r.Loaded.Source.Tier, r.Loaded.Pattern.Priority)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", g.config.Format)
	}
}

// MatchReport renders a batch of document-to-property outcomes.
func (g *Generator) MatchReport(batch *BatchResult, writer io.Writer) error {
	if batch == nil {
		return fmt.Errorf("batch result cannot be nil")
	}

	switch g.config.Format {
	case FormatConsole:
		return g.writeMatchConsole(batch, writer)
	case FormatJSON:
		return writeJSON(writer, batch)
	case FormatCSV:
		return g.writeMatchCSV(batch, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", g.config.Format)
	}
}

func (g *Generator) writeMatchConsole(batch *BatchResult, writer io.Writer) error {
	fmt.Fprintf(writer, "BILL MATCHING REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n\n", batch.ProcessedAt.Format(time.RFC3339))

	fmt.Fprintf(writer, "Documents:  %d\n", len(batch.Outcomes))
	fmt.Fprintf(writer, "Recognized: %d\n", batch.Recognized())
	fmt.Fprintf(writer, "Matched:    %d\n\n", batch.MatchedCount())

	for _, o := range batch.Outcomes {
		status := "unrecognized"
		switch {
		case o.Matched:
			status = fmt.Sprintf("matched %s (confidence %d)", o.PropertyID, o.Confidence)
		case o.Result != nil:
			status = "recognized, no property match"
		}
		fmt.Fprintf(writer, "  %-30s %s\n", o.Document, status)
	}
	return nil
}

func (g *Generator) writeMatchCSV(batch *BatchResult, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = g.config.CSVDelimiter
	defer csvWriter.Flush()

	if g.config.CSVHeaders {
		headers := []string{
			"Document", "Recognized", "Pattern_ID", "Bill_Type",
			"Bill_Number", "Amount", "Property_ID", "Confidence",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, o := range batch.Outcomes {
		record := []string{o.Document, "false", "", "", "", "", "", ""}
		if o.Result != nil {
			record[1] = "true"
			record[2] = o.Result.PatternID
			record[3] = o.Result.BillType.String()
			record[4] = o.Result.Info.BillNumber
			if o.Result.Info.HasAmount() {
				record[5] = o.Result.Info.Amount.Decimal.StringFixed(2)
			}
		}
		if o.Matched {
			record[6] = o.PropertyID
			record[7] = strconv.Itoa(o.Confidence)
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write match record: %w", err)
		}
	}
	return nil
}

func writeJSON(writer io.Writer, v interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
