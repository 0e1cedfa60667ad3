package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bill-extraction-service/internal/engine"
	"bill-extraction-service/internal/models"
	"bill-extraction-service/internal/patterns"
)

func sampleResult() *engine.AutoResult {
	return &engine.AutoResult{
		RunID: "run-1",
		Info: &models.ExtractedBillInfo{
			IBAN:               "RO49AAAA1B31007593840000",
			BillNumber:         "FX-1",
			Amount:             decimal.NewNullDecimal(decimal.RequireFromString("245.67")),
			ConsumptionAddress: "Strada Lunga 7",
			AllAddresses:       []string{"Strada Lunga 7"},
			Fields:             map[string]string{"due_date": "25.08.2026"},
		},
		BillType:      models.BillTypeElectricity,
		PatternID:     "electrica",
		PatternName:   "Electrica Furnizare",
		PatternSource: patterns.Source{Tier: patterns.TierAdmin},
		MatchedFields: 3,
		TotalFields:   3,
		Percentage:    100,
	}
}

func sampleBatch() *BatchResult {
	return &BatchResult{
		ProcessedAt: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		Outcomes: []MatchOutcome{
			{Document: "iulie.eml", Result: sampleResult(), PropertyID: "prop-1", Confidence: 100, Matched: true},
			{Document: "spam.eml"},
		},
	}
}

func TestExtractionReportConsole(t *testing.T) {
	g, err := NewGenerator(nil)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := g.ExtractionReport(sampleResult(), &buf); err != nil {
		t.Fatalf("ExtractionReport failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"electrica", "245.67", "FX-1", "Strada Lunga 7", "electricity"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestExtractionReportUnrecognized(t *testing.T) {
	g, _ := NewGenerator(nil)

	var buf bytes.Buffer
	if err := g.ExtractionReport(nil, &buf); err != nil {
		t.Fatalf("ExtractionReport failed: %v", err)
	}
	if !strings.Contains(buf.String(), "not recognized") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestExtractionReportJSON(t *testing.T) {
	g, err := NewGenerator(&Config{Format: FormatJSON, CSVDelimiter: ','})
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := g.ExtractionReport(sampleResult(), &buf); err != nil {
		t.Fatalf("ExtractionReport failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["pattern_id"] != "electrica" {
		t.Errorf("pattern_id = %v", decoded["pattern_id"])
	}

	info, ok := decoded["info"].(map[string]interface{})
	if !ok {
		t.Fatal("missing info object")
	}
	if info["amount"] != "245.67" {
		t.Errorf("amount rendered as %v, want decimal string", info["amount"])
	}
}

func TestMatchReportConsole(t *testing.T) {
	g, _ := NewGenerator(nil)

	var buf bytes.Buffer
	if err := g.MatchReport(sampleBatch(), &buf); err != nil {
		t.Fatalf("MatchReport failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Documents:  2", "Recognized: 1", "Matched:    1", "prop-1", "unrecognized"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestMatchReportCSV(t *testing.T) {
	g, err := NewGenerator(&Config{Format: FormatCSV, CSVDelimiter: ',', CSVHeaders: true})
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := g.MatchReport(sampleBatch(), &buf); err != nil {
		t.Fatalf("MatchReport failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 records, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Document,") {
		t.Errorf("missing headers: %s", lines[0])
	}
	if !strings.Contains(lines[1], "prop-1") || !strings.Contains(lines[1], "245.67") {
		t.Errorf("matched record incomplete: %s", lines[1])
	}
	if !strings.Contains(lines[2], "false") {
		t.Errorf("unrecognized record incomplete: %s", lines[2])
	}
}

func TestRankingReport(t *testing.T) {
	g, _ := NewGenerator(nil)

	ranked := []engine.Ranked{{
		Loaded: patterns.Loaded{
			Pattern: &patterns.Pattern{Name: "Electrica", Priority: 10},
			ID:      "electrica",
			Source:  patterns.Source{Tier: patterns.TierAdmin},
		},
		Matched:    2,
		Total:      3,
		Percentage: 66.7,
	}}

	var buf bytes.Buffer
	if err := g.RankingReport(ranked, &buf); err != nil {
		t.Fatalf("RankingReport failed: %v", err)
	}
	if !strings.Contains(buf.String(), "electrica") {
		t.Errorf("ranking output missing pattern id:\n%s", buf.String())
	}
}

func TestNewGeneratorRejectsBadFormat(t *testing.T) {
	if _, err := NewGenerator(&Config{Format: "xml"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}
