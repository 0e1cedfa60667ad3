package address

import (
	"fmt"
	"strings"
)

// ConfidenceResult is the outcome of scoring one extracted address against
// one property address: an integer confidence in [0, 100] plus the
// sub-scores and a human-readable breakdown for operators debugging a
// mismatch.
type ConfidenceResult struct {
	Confidence int `json:"confidence"`

	TokenScore     float64 `json:"token_score"`
	ComponentScore float64 `json:"component_score"`
	SubstringBonus float64 `json:"substring_bonus"`

	SharedTokens       int `json:"shared_tokens"`
	ComponentsCompared int `json:"components_compared"`
	ComponentsMatched  int `json:"components_matched"`

	Breakdown string `json:"breakdown"`
}

// Scorer computes address match confidence. Safe for concurrent use.
type Scorer struct {
	config *ScorerConfig
}

// NewScorer creates a scorer with the given configuration, or the defaults
// when config is nil.
func NewScorer(config *ScorerConfig) (*Scorer, error) {
	if config == nil {
		config = DefaultScorerConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scorer configuration: %w", err)
	}
	return &Scorer{config: config.Clone()}, nil
}

// Config returns a copy of the scorer's configuration.
func (s *Scorer) Config() *ScorerConfig {
	return s.config.Clone()
}

// Score compares an extracted bill address with a property address.
//
// The formula layers three signals:
//
//  1. Token overlap: Jaccard similarity of the normalized token sets,
//     scaled by a progressive bonus for larger intersections, capped at
//     TokenWeight.
//  2. Structural components: the fraction of components present in both
//     addresses that agree, scaled to ComponentWeight. When the addresses
//     share no comparable components, the token score stands in, amplified
//     by ComponentFallbackFactor.
//  3. A flat SubstringBonus when one normalized address contains the
//     other.
//
// The sum is truncated to an integer and clamped to [0, 100]. Two empty
// addresses trivially match with confidence 100, and addresses that yield
// no tokens at all compare by literal equality of their normalized forms.
func (s *Scorer) Score(extracted, property string) ConfidenceResult {
	normExtracted := strings.ToLower(Fold(Normalize(extracted)))
	normProperty := strings.ToLower(Fold(Normalize(property)))

	if normExtracted == "" || normProperty == "" {
		return ConfidenceResult{
			Confidence: 100,
			Breakdown:  "at least one address empty after normalization, nothing to contradict",
		}
	}

	extractedTokens := Tokens(extracted)
	propertyTokens := Tokens(property)

	// Pure punctuation leaves no tokens to weigh; all that remains is
	// literal equality of the normalized strings.
	if len(extractedTokens) == 0 && len(propertyTokens) == 0 {
		if normExtracted == normProperty {
			return ConfidenceResult{
				Confidence: 100,
				Breakdown:  "no tokens on either side, normalized strings identical",
			}
		}
		return ConfidenceResult{
			Breakdown: "no tokens on either side, normalized strings differ",
		}
	}

	shared := 0
	for tok := range extractedTokens {
		if _, ok := propertyTokens[tok]; ok {
			shared++
		}
	}
	union := len(extractedTokens) + len(propertyTokens) - shared

	var tokenScore float64
	if union > 0 {
		jaccard := float64(shared) / float64(union)
		tokenScore = jaccard * s.config.TokenWeight * (1 + s.config.TokenBonusFactor*float64(shared))
		if tokenScore > s.config.TokenWeight {
			tokenScore = s.config.TokenWeight
		}
	}

	extractedComponents := Components(extracted)
	propertyComponents := Components(property)

	// A component present on one side only still counts against the score:
	// an address that declares a block the property lacks is weaker evidence
	// than one declaring nothing at all.
	keys := make(map[ComponentKey]struct{})
	for key := range extractedComponents {
		keys[key] = struct{}{}
	}
	for key := range propertyComponents {
		keys[key] = struct{}{}
	}

	compared := len(keys)
	matched := 0
	for key := range keys {
		extractedValue, inExtracted := extractedComponents[key]
		propertyValue, inProperty := propertyComponents[key]
		if inExtracted && inProperty && extractedValue == propertyValue {
			matched++
		}
	}

	var componentScore float64
	if compared > 0 {
		componentScore = float64(matched) / float64(compared) * s.config.ComponentWeight
	} else {
		// Neither address exposes any structure; lean harder on the tokens.
		componentScore = tokenScore * s.config.ComponentFallbackFactor
		if componentScore > s.config.ComponentWeight {
			componentScore = s.config.ComponentWeight
		}
	}

	var substringBonus float64
	if strings.Contains(normExtracted, normProperty) || strings.Contains(normProperty, normExtracted) {
		substringBonus = s.config.SubstringBonus
	}

	confidence := int(tokenScore + componentScore + substringBonus)
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}

	return ConfidenceResult{
		Confidence:         confidence,
		TokenScore:         tokenScore,
		ComponentScore:     componentScore,
		SubstringBonus:     substringBonus,
		SharedTokens:       shared,
		ComponentsCompared: compared,
		ComponentsMatched:  matched,
		Breakdown:          buildBreakdown(tokenScore, componentScore, substringBonus, shared, compared, matched),
	}
}

// Accepts reports whether a confidence value clears the acceptance
// threshold.
func (s *Scorer) Accepts(confidence int) bool {
	return confidence >= s.config.AcceptThreshold
}

func buildBreakdown(tokenScore, componentScore, substringBonus float64, shared, compared, matched int) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("tokens %.1f (%d shared)", tokenScore, shared))
	if compared > 0 {
		parts = append(parts, fmt.Sprintf("components %.1f (%d/%d matched)", componentScore, matched, compared))
	} else {
		parts = append(parts, fmt.Sprintf("components %.1f (token fallback)", componentScore))
	}
	if substringBonus > 0 {
		parts = append(parts, fmt.Sprintf("substring bonus %.0f", substringBonus))
	}
	return strings.Join(parts, ", ")
}
