package address

import (
	"regexp"
	"strings"
)

// ComponentKey names a structural part of a Romanian address.
type ComponentKey string

const (
	ComponentStreet    ComponentKey = "street"
	ComponentNumber    ComponentKey = "number"
	ComponentBlock     ComponentKey = "block"
	ComponentStaircase ComponentKey = "staircase"
	ComponentApartment ComponentKey = "apartment"
)

// componentPatterns run against the folded, lowercased raw address. They
// must see the label tokens ("nr", "bl"...), so component extraction works
// on the un-normalized text; Normalize would have stripped the labels.
var componentPatterns = map[ComponentKey]*regexp.Regexp{
	ComponentStreet:    regexp.MustCompile(`\b(?:strada|str|aleea|alee|bulevardul|bd|calea|soseaua|sos)\.?\s+([a-z]+)`),
	ComponentNumber:    regexp.MustCompile(`\b(?:numar|nr)\.?\s*:?\s*(\d+)`),
	ComponentBlock:     regexp.MustCompile(`\b(?:bloc|bl)\.?\s*:?\s*([a-z0-9]+)`),
	ComponentStaircase: regexp.MustCompile(`\b(?:scara|sc)\.?\s*:?\s*([a-z0-9]+)`),
	ComponentApartment: regexp.MustCompile(`\b(?:apartament|ap)\.?\s*:?\s*(\d+)`),
}

// Components extracts the structural parts it can recognize in an address.
// Missing parts are simply absent from the map; an address with no
// recognizable structure yields an empty map.
func Components(s string) map[ComponentKey]string {
	folded := strings.ToLower(Fold(s))
	components := make(map[ComponentKey]string)
	for key, pattern := range componentPatterns {
		if m := pattern.FindStringSubmatch(folded); m != nil {
			components[key] = m[1]
		}
	}
	return components
}
