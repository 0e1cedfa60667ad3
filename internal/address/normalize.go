// Package address provides normalization, tokenization, structural component
// extraction and fuzzy confidence scoring for Romanian postal addresses.
//
// Romanian addresses mix abbreviations ("str", "nr", "bl", "sc", "ap"),
// diacritic variants (both the comma-below ș/ț and the legacy cedilla ş/ţ
// code points appear in the wild) and free word order. Every comparison in
// this package therefore runs on a normalized, diacritic-folded, lowercased
// view of the input, never on the raw text.
package address

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fillerPattern matches address tokens that carry no identifying power:
// the labels in front of the values ("nr", "bloc", "scara"...) and the
// sector designators. Whole tokens only; "scara" inside another word
// survives.
var fillerPattern = regexp.MustCompile(`(?i)\b(?:numar|număr|nr|bloc|bl|scara|sc|apartament|ap|sector|sect)\b\.?`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// tokenPattern matches maximal alphanumeric runs in folded lowercase text,
// so "A1" stays a single token.
var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// foldTransformer strips combining marks: NFD decomposition, drop the marks,
// recompose. Maps both ș (U+0219) and ş (U+015F) to plain s, ă/â to a, and
// so on, giving every diacritic spelling of a street the same folded form.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold returns the input with all combining marks removed. Characters that
// fail to transform are returned unchanged.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return folded
}

// Normalize removes filler tokens and collapses whitespace. It preserves
// case and diacritics; callers that compare normalized addresses fold and
// lowercase separately. Normalize is idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	cleaned := fillerPattern.ReplaceAllString(s, " ")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Tokens returns the comparison token set of an address: normalize, fold
// diacritics, lowercase, then split into alphanumeric runs.
//
//	Tokens("Strada Mihai Viteazu nr 10 bl A1")
//	  => {strada, mihai, viteazu, 10, a1}
func Tokens(s string) map[string]struct{} {
	folded := strings.ToLower(Fold(Normalize(s)))
	tokens := make(map[string]struct{})
	for _, tok := range tokenPattern.FindAllString(folded, -1) {
		tokens[tok] = struct{}{}
	}
	return tokens
}
