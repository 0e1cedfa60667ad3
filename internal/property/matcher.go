// Package property maps extracted bill addresses onto a landlord's
// registered properties. The package never owns property data; callers
// pass the candidate list on every call.
package property

import (
	"strings"

	"bill-extraction-service/internal/address"
	"bill-extraction-service/internal/models"
	"bill-extraction-service/pkg/logger"
)

// Matcher resolves addresses to property ids using two strategies:
// cheap substring containment first, fuzzy confidence scoring second.
type Matcher struct {
	scorer *address.Scorer
	log    logger.Logger
}

// NewMatcher creates a matcher around the given scorer. A nil scorer gets
// the default configuration; a nil logger falls back to the global
// instance.
func NewMatcher(scorer *address.Scorer, log logger.Logger) (*Matcher, error) {
	if scorer == nil {
		var err error
		scorer, err = address.NewScorer(nil)
		if err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Matcher{
		scorer: scorer,
		log:    log.WithComponent("property"),
	}, nil
}

// canonical returns the normalized, folded, lowercased view used for
// containment checks.
func canonical(s string) string {
	return strings.ToLower(address.Fold(address.Normalize(s)))
}

// MatchByContainment returns the first property whose address contains the
// extracted address, or is contained by it, after normalization. Empty
// addresses on either side never match; without the guard every property
// would contain the empty string.
func (m *Matcher) MatchByContainment(extracted string, properties []models.Property) (string, bool) {
	needle := canonical(extracted)
	if needle == "" {
		return "", false
	}

	for _, prop := range properties {
		haystack := canonical(prop.Address)
		if haystack == "" {
			continue
		}
		if strings.Contains(haystack, needle) || strings.Contains(needle, haystack) {
			m.log.WithFields(logger.Fields{
				"property_id": prop.ID,
				"strategy":    "containment",
			}).Debug("property matched")
			return prop.ID, true
		}
	}
	return "", false
}

// MatchByConfidence scores the extracted address against every property
// and returns the best one, provided it clears the acceptance threshold.
// On ties the earliest property in the list wins.
func (m *Matcher) MatchByConfidence(extracted string, properties []models.Property) (string, int, bool) {
	if canonical(extracted) == "" {
		return "", 0, false
	}

	bestID := ""
	bestConfidence := -1
	for _, prop := range properties {
		if canonical(prop.Address) == "" {
			continue
		}
		result := m.scorer.Score(extracted, prop.Address)
		if result.Confidence > bestConfidence {
			bestConfidence = result.Confidence
			bestID = prop.ID
		}
	}

	if bestID == "" || !m.scorer.Accepts(bestConfidence) {
		return "", 0, false
	}

	m.log.WithFields(logger.Fields{
		"property_id": bestID,
		"confidence":  bestConfidence,
		"strategy":    "confidence",
	}).Debug("property matched")
	return bestID, bestConfidence, true
}

// Match tries every candidate address against the property list:
// containment over the candidates in order first, then the best confidence
// score across all candidate/property pairs. Candidates are ordered most
// specific first (consumption location ahead of billing address), so the
// first containment hit is the right one.
func (m *Matcher) Match(candidates []string, properties []models.Property) (string, int, bool) {
	for _, candidate := range candidates {
		if id, ok := m.MatchByContainment(candidate, properties); ok {
			return id, 100, true
		}
	}

	bestID := ""
	bestConfidence := -1
	for _, candidate := range candidates {
		id, confidence, ok := m.MatchByConfidence(candidate, properties)
		if ok && confidence > bestConfidence {
			bestConfidence = confidence
			bestID = id
		}
	}
	if bestID == "" {
		return "", 0, false
	}
	return bestID, bestConfidence, true
}
