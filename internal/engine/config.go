package engine

import "fmt"

// Config controls pattern qualification and fallback behavior.
type Config struct {
	// MinFieldsMatched is the number of fields a pattern must capture in a
	// document before it qualifies for automatic extraction.
	MinFieldsMatched int `json:"min_fields_matched"`

	// FallbackRules enables the built-in rule corpus for documents no
	// vendor pattern claims. Off by default: an unclaimed document is
	// reported unrecognized unless the caller opts in.
	FallbackRules bool `json:"fallback_rules"`
}

// DefaultConfig returns the production engine configuration.
func DefaultConfig() *Config {
	return &Config{
		MinFieldsMatched: 1,
		FallbackRules:    false,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MinFieldsMatched < 1 {
		return fmt.Errorf("min fields matched must be at least 1, got %d", c.MinFieldsMatched)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
