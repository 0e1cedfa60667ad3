package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bill-extraction-service/internal/amount"
	"bill-extraction-service/internal/extract"
	"bill-extraction-service/internal/models"
	"bill-extraction-service/internal/patterns"
	"bill-extraction-service/pkg/logger"
)

// AutoResult is the outcome of automatic extraction: the bill data plus
// provenance saying which pattern produced it.
type AutoResult struct {
	RunID string `json:"run_id"`

	Info     *models.ExtractedBillInfo `json:"info"`
	BillType models.BillType           `json:"bill_type"`

	// Pattern provenance. Empty PatternID with Fallback set means the
	// built-in rule corpus produced the result.
	PatternID     string          `json:"pattern_id,omitempty"`
	PatternName   string          `json:"pattern_name,omitempty"`
	PatternSource patterns.Source `json:"pattern_source,omitempty"`
	Fallback      bool            `json:"fallback,omitempty"`

	MatchedFields int     `json:"matched_fields"`
	TotalFields   int     `json:"total_fields"`
	Percentage    float64 `json:"percentage"`
}

// ExtractAuto recognizes the document and extracts its bill data in one
// step: rank the patterns, let the best qualifying one extract, fall back
// to the rule corpus when no pattern claims the document.
//
// A (nil, nil) return means the document was not recognized as a bill.
// That is an expected outcome, not an error; callers route such documents
// to manual review. Faults inside pattern or rule application, panics
// included, are contained and logged, and the document is likewise
// reported unrecognized rather than failing the pipeline.
func (e *Engine) ExtractAuto(ctx context.Context, doc []byte, userID string) (result *AutoResult, err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	runID := uuid.NewString()
	log := e.log.WithFields(logger.Fields{"run_id": runID, "user_id": userID})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("extraction panicked, document treated as unrecognized")
			result = nil
			err = nil
		}
	}()

	ranked, matchErr := e.MatchPatterns(ctx, doc, userID)
	if matchErr != nil {
		log.WithError(matchErr).Error("pattern matching failed, document treated as unrecognized")
		return nil, nil
	}

	text, textErr := e.text.Extract(ctx, doc)
	if textErr != nil {
		log.WithError(textErr).Error("text extraction failed, document treated as unrecognized")
		return nil, nil
	}

	for _, candidate := range ranked {
		if candidate.Matched < e.config.MinFieldsMatched {
			continue
		}
		info := e.buildInfo(candidate.Values, text)
		log.WithFields(logger.Fields{
			"pattern_id": candidate.Loaded.ID,
			"matched":    candidate.Matched,
			"total":      candidate.Total,
		}).Info("document extracted by pattern")
		return &AutoResult{
			RunID:         runID,
			Info:          info,
			BillType:      candidate.Loaded.Pattern.BillType.OrDefault(),
			PatternID:     candidate.Loaded.ID,
			PatternName:   candidate.Loaded.Pattern.Name,
			PatternSource: candidate.Loaded.Source,
			MatchedFields: candidate.Matched,
			TotalFields:   candidate.Total,
			Percentage:    candidate.Percentage,
		}, nil
	}

	if !e.config.FallbackRules {
		log.Info("no pattern qualified, fallback disabled, document unrecognized")
		return nil, nil
	}

	info := e.extractor.Extract(extract.Document{Body: text})
	if info.IsEmpty() {
		log.Info("no pattern qualified and rule corpus found nothing, document unrecognized")
		return nil, nil
	}

	log.Info("document extracted by built-in rules")
	return &AutoResult{
		RunID:    runID,
		Info:     info,
		BillType: models.BillTypeUtilities,
		Fallback: true,
	}, nil
}

// buildInfo lifts a pattern's raw captures into the typed bill record. The
// address candidate list always merges in the rule corpus scan, so the
// property matcher sees every address in the document even when the
// pattern only declared one.
func (e *Engine) buildInfo(values map[string]string, text string) *models.ExtractedBillInfo {
	info := &models.ExtractedBillInfo{
		Fields: values,
	}

	if iban, ok := values[models.FieldIBAN]; ok {
		info.IBAN = strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	}
	if number, ok := values[models.FieldBillNumber]; ok {
		info.BillNumber = number
	}
	if raw, ok := values[models.FieldAmount]; ok {
		if value, parsed := amount.Parse(raw); parsed {
			info.Amount = decimal.NewNullDecimal(value)
		} else {
			e.log.WithField("raw", raw).Warn("pattern captured an unparseable amount")
		}
	}
	if addr, ok := values[models.FieldAddress]; ok {
		info.Address = addr
	}
	if addr, ok := values[models.FieldConsumptionAddress]; ok {
		info.ConsumptionAddress = addr
	}

	seen := make(map[string]struct{})
	appendAddr := func(addr string) {
		if addr == "" {
			return
		}
		if _, dup := seen[addr]; dup {
			return
		}
		seen[addr] = struct{}{}
		info.AllAddresses = append(info.AllAddresses, addr)
	}
	appendAddr(info.ConsumptionAddress)
	appendAddr(info.Address)
	for _, addr := range e.extractor.AllAddresses(text) {
		appendAddr(addr)
	}

	return info
}
