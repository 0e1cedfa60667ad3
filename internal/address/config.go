package address

import "fmt"

// ScorerConfig holds the weights of the confidence formula. The defaults
// are tuned against a corpus of Romanian utility bills; change them only
// with a labelled evaluation set at hand.
type ScorerConfig struct {
	// TokenWeight is the maximum contribution of token overlap.
	TokenWeight float64 `json:"token_weight"`

	// ComponentWeight is the maximum contribution of structural component
	// agreement.
	ComponentWeight float64 `json:"component_weight"`

	// TokenBonusFactor progressively rewards larger shared-token sets:
	// the Jaccard score is multiplied by (1 + factor * shared).
	TokenBonusFactor float64 `json:"token_bonus_factor"`

	// ComponentFallbackFactor scales the token score into the component
	// slot when neither address exposes comparable components.
	ComponentFallbackFactor float64 `json:"component_fallback_factor"`

	// SubstringBonus is added when one normalized address contains the
	// other verbatim.
	SubstringBonus float64 `json:"substring_bonus"`

	// AcceptThreshold is the minimum confidence a property match must
	// reach before it is reported.
	AcceptThreshold int `json:"accept_threshold"`
}

// DefaultScorerConfig returns the production scoring weights.
func DefaultScorerConfig() *ScorerConfig {
	return &ScorerConfig{
		TokenWeight:             50,
		ComponentWeight:         50,
		TokenBonusFactor:        0.3,
		ComponentFallbackFactor: 1.2,
		SubstringBonus:          10,
		AcceptThreshold:         50,
	}
}

// Validate checks the configuration for consistency.
func (c *ScorerConfig) Validate() error {
	if c.TokenWeight <= 0 {
		return fmt.Errorf("token weight must be positive, got %v", c.TokenWeight)
	}
	if c.ComponentWeight <= 0 {
		return fmt.Errorf("component weight must be positive, got %v", c.ComponentWeight)
	}
	if c.TokenBonusFactor < 0 {
		return fmt.Errorf("token bonus factor cannot be negative, got %v", c.TokenBonusFactor)
	}
	if c.ComponentFallbackFactor < 0 {
		return fmt.Errorf("component fallback factor cannot be negative, got %v", c.ComponentFallbackFactor)
	}
	if c.SubstringBonus < 0 {
		return fmt.Errorf("substring bonus cannot be negative, got %v", c.SubstringBonus)
	}
	if c.AcceptThreshold < 0 || c.AcceptThreshold > 100 {
		return fmt.Errorf("accept threshold must be within [0, 100], got %d", c.AcceptThreshold)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *ScorerConfig) Clone() *ScorerConfig {
	clone := *c
	return &clone
}
