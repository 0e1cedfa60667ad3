// Package engine ties pattern loading, pattern application and the rule
// corpus into the two operations the rest of the system calls: ranking the
// patterns that recognize a document, and extracting bill data
// automatically.
package engine

import (
	"context"
	"fmt"
	"sort"

	"bill-extraction-service/internal/extract"
	"bill-extraction-service/internal/patterns"
	apperrors "bill-extraction-service/pkg/errors"
	"bill-extraction-service/pkg/logger"
)

// Ranked is one pattern's result against one document.
type Ranked struct {
	Loaded     patterns.Loaded   `json:"pattern"`
	Matched    int               `json:"matched"`
	Total      int               `json:"total"`
	Percentage float64           `json:"percentage"`
	Values     map[string]string `json:"values,omitempty"`
}

// Engine evaluates vendor patterns against documents.
type Engine struct {
	loader    patterns.Loader
	text      TextExtractor
	extractor *extract.Extractor
	config    *Config
	log       logger.Logger
}

// NewEngine creates an engine. The loader is required; a nil text
// extractor defaults to PlainText, a nil config to the defaults.
func NewEngine(loader patterns.Loader, text TextExtractor, config *Config, log logger.Logger) (*Engine, error) {
	if loader == nil {
		return nil, fmt.Errorf("pattern loader is required")
	}
	if text == nil {
		text = PlainText{}
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("engine")
	return &Engine{
		loader:    loader,
		text:      text,
		extractor: extract.NewExtractor(log),
		config:    config.Clone(),
		log:       log,
	}, nil
}

// MatchPatterns applies every enabled pattern available to the user and
// returns the ones that captured at least one field, best first.
//
// Ordering is by match percentage, then tier (admin patterns outrank user
// patterns at equal percentage), then declared priority, and is otherwise
// stable in load order. The tier rule is what keeps a curated pattern in
// charge when a user has cloned it with tweaks.
func (e *Engine) MatchPatterns(ctx context.Context, doc []byte, userID string) ([]Ranked, error) {
	text, err := e.text.Extract(ctx, doc)
	if err != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeTextExtraction, "pattern matching", err)
	}

	loaded, err := e.loader.LoadAll(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryPattern, apperrors.CodePatternInvalid, "pattern load failed")
	}

	var ranked []Ranked
	for _, l := range loaded {
		if !l.Pattern.IsEnabled() {
			continue
		}
		values, matched := l.Pattern.Apply(text)
		if matched == 0 {
			continue
		}
		total := l.Pattern.FieldCount()
		ranked = append(ranked, Ranked{
			Loaded:     l,
			Matched:    matched,
			Total:      total,
			Percentage: float64(matched) / float64(total) * 100,
			Values:     values,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Percentage != ranked[j].Percentage {
			return ranked[i].Percentage > ranked[j].Percentage
		}
		ti, tj := tierRank(ranked[i].Loaded.Source.Tier), tierRank(ranked[j].Loaded.Source.Tier)
		if ti != tj {
			return ti < tj
		}
		return ranked[i].Loaded.Pattern.Priority > ranked[j].Loaded.Pattern.Priority
	})

	e.log.WithFields(logger.Fields{
		"user_id":  userID,
		"patterns": len(loaded),
		"matched":  len(ranked),
	}).Debug("pattern ranking complete")

	return ranked, nil
}

func tierRank(t patterns.Tier) int {
	if t == patterns.TierAdmin {
		return 0
	}
	return 1
}
