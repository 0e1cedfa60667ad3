package address

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain street", "Strada Mihai Viteazu", "Strada Mihai Viteazu"},
		{"strips labels", "Strada Mihai Viteazu nr 10 bl A1", "Strada Mihai Viteazu 10 A1"},
		{"strips dotted labels", "Bd. Unirii Nr. 5, Bl. C2, Sc. 1, Ap. 33", "Bd. Unirii 5, C2, 1, 33"},
		{"strips sector", "Calea Victoriei 21 sector 1", "Calea Victoriei 21 1"},
		{"uppercase labels", "NR. 10 BLOC A1", "10 A1"},
		{"collapses whitespace", "  Strada   Lunga    7 ", "Strada Lunga 7"},
		{"label inside word survives", "Strada Scarii 4", "Strada Scarii 4"},
		{"empty", "", ""},
		{"only fillers", "nr bl sc ap", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := Normalize(got); again != got {
				t.Errorf("Normalize not idempotent: %q -> %q -> %q", tt.input, got, again)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Strada Mihai Viteazu nr 10 bl A1")
	want := map[string]struct{}{
		"strada": {}, "mihai": {}, "viteazu": {}, "10": {}, "a1": {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
}

func TestTokensFoldDiacritics(t *testing.T) {
	// Comma-below (U+0219/U+021B) and legacy cedilla (U+015F/U+0163)
	// spellings must produce the same tokens.
	commaBelow := Tokens("Șoseaua Ștefan cel Mare, Ploiești")
	cedilla := Tokens("Şoseaua Ştefan cel Mare, Ploieşti")
	plain := Tokens("Soseaua Stefan cel Mare, Ploiesti")

	if !reflect.DeepEqual(commaBelow, plain) {
		t.Errorf("comma-below tokens %v differ from plain %v", commaBelow, plain)
	}
	if !reflect.DeepEqual(cedilla, plain) {
		t.Errorf("cedilla tokens %v differ from plain %v", cedilla, plain)
	}
}

func TestComponents(t *testing.T) {
	got := Components("Strada Mihai Viteazu nr. 10, Bl. A1, Sc. 2, Ap. 15")
	want := map[ComponentKey]string{
		ComponentStreet:    "mihai",
		ComponentNumber:    "10",
		ComponentBlock:     "a1",
		ComponentStaircase: "2",
		ComponentApartment: "15",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Components = %v, want %v", got, want)
	}
}

func TestComponentsAbbreviatedStreet(t *testing.T) {
	got := Components("str. Aviatorilor nr 7")
	if got[ComponentStreet] != "aviatorilor" {
		t.Errorf("street = %q, want %q", got[ComponentStreet], "aviatorilor")
	}
	if got[ComponentNumber] != "7" {
		t.Errorf("number = %q, want %q", got[ComponentNumber], "7")
	}
}

func TestComponentsUnstructured(t *testing.T) {
	got := Components("Piata Unirii")
	if len(got) != 0 {
		t.Errorf("expected no components, got %v", got)
	}
}

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	scorer, err := NewScorer(nil)
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}
	return scorer
}

func TestScoreIdenticalAddresses(t *testing.T) {
	scorer := newTestScorer(t)
	addr := "Strada Mihai Viteazu nr 10 bl A1"

	result := scorer.Score(addr, addr)
	if result.Confidence != 100 {
		t.Errorf("identical addresses scored %d, want 100", result.Confidence)
	}
	if result.ComponentsMatched != result.ComponentsCompared {
		t.Errorf("expected all %d compared components to match, got %d",
			result.ComponentsCompared, result.ComponentsMatched)
	}
}

func TestScoreEmptyAddresses(t *testing.T) {
	scorer := newTestScorer(t)

	for _, pair := range [][2]string{
		{"", "Strada Lunga 7"},
		{"Strada Lunga 7", ""},
		{"", ""},
		{"nr bl sc", "Strada Lunga 7"}, // empty after normalization
	} {
		result := scorer.Score(pair[0], pair[1])
		if result.Confidence != 100 {
			t.Errorf("Score(%q, %q) = %d, want 100", pair[0], pair[1], result.Confidence)
		}
	}
}

func TestScoreTokenlessAddresses(t *testing.T) {
	scorer := newTestScorer(t)

	// Punctuation survives normalization but yields no tokens; the only
	// signal left is literal equality.
	identical := scorer.Score("!!!", "!!!")
	if identical.Confidence != 100 {
		t.Errorf("Score(%q, %q) = %d, want 100", "!!!", "!!!", identical.Confidence)
	}

	different := scorer.Score("!!!", "???")
	if different.Confidence != 0 {
		t.Errorf("Score(%q, %q) = %d, want 0", "!!!", "???", different.Confidence)
	}
}

func TestScoreDisjointAddresses(t *testing.T) {
	scorer := newTestScorer(t)

	result := scorer.Score("Strada X nr 5", "Strada Y nr 99")
	if result.Confidence >= 50 {
		t.Errorf("disjoint addresses scored %d, want below 50", result.Confidence)
	}
	if result.Confidence != 13 {
		t.Errorf("disjoint addresses scored %d, want 13", result.Confidence)
	}
	if result.ComponentsCompared != 2 || result.ComponentsMatched != 0 {
		t.Errorf("components compared/matched = %d/%d, want 2/0",
			result.ComponentsCompared, result.ComponentsMatched)
	}
}

func TestScoreComponentFallback(t *testing.T) {
	scorer := newTestScorer(t)

	// Neither address has labelled components, so the component slot is
	// fed from the token score.
	result := scorer.Score("Unirii 3", "Piata Unirii")
	if result.ComponentsCompared != 0 {
		t.Fatalf("expected no comparable components, got %d", result.ComponentsCompared)
	}
	if result.Confidence != 47 {
		t.Errorf("fallback score = %d, want 47", result.Confidence)
	}
	if result.ComponentScore <= result.TokenScore {
		t.Errorf("fallback component score %.2f should exceed token score %.2f",
			result.ComponentScore, result.TokenScore)
	}
}

func TestScoreDiacriticVariants(t *testing.T) {
	scorer := newTestScorer(t)

	result := scorer.Score("Str. Știrbei Vodă nr 10", "str Stirbei Voda nr 10")
	if result.Confidence != 100 {
		t.Errorf("diacritic variants scored %d, want 100", result.Confidence)
	}
}

func TestScoreSubstringBonus(t *testing.T) {
	scorer := newTestScorer(t)

	with := scorer.Score("Calea Grivitei 100", "Bucuresti, Calea Grivitei 100")
	if with.SubstringBonus == 0 {
		t.Error("expected substring bonus when one address contains the other")
	}

	without := scorer.Score("Calea Grivitei 100", "Calea Grivitei 102")
	if without.SubstringBonus != 0 {
		t.Error("expected no substring bonus for different numbers")
	}
}

func TestScoreBounds(t *testing.T) {
	scorer := newTestScorer(t)

	pairs := [][2]string{
		{"Strada Mihai Viteazu nr 10 bl A1", "Strada Mihai Viteazu nr 10 bl A1"},
		{"Strada X nr 5", "Strada Y nr 99"},
		{"a", "b"},
		{"Bd. Unirii 5 Bl. C2", "Bulevardul Unirii nr 5 bloc C2"},
	}
	for _, pair := range pairs {
		result := scorer.Score(pair[0], pair[1])
		if result.Confidence < 0 || result.Confidence > 100 {
			t.Errorf("Score(%q, %q) = %d, outside [0, 100]", pair[0], pair[1], result.Confidence)
		}
		if result.Breakdown == "" {
			t.Errorf("Score(%q, %q) produced empty breakdown", pair[0], pair[1])
		}
	}
}

func TestScorerAccepts(t *testing.T) {
	scorer := newTestScorer(t)
	if !scorer.Accepts(50) {
		t.Error("default threshold should accept 50")
	}
	if scorer.Accepts(49) {
		t.Error("default threshold should reject 49")
	}
}

func TestScorerConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ScorerConfig)
	}{
		{"zero token weight", func(c *ScorerConfig) { c.TokenWeight = 0 }},
		{"negative component weight", func(c *ScorerConfig) { c.ComponentWeight = -1 }},
		{"negative bonus factor", func(c *ScorerConfig) { c.TokenBonusFactor = -0.1 }},
		{"threshold above 100", func(c *ScorerConfig) { c.AcceptThreshold = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultScorerConfig()
			tt.modify(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
			if _, err := NewScorer(config); err == nil {
				t.Error("expected NewScorer to reject invalid config")
			}
		})
	}
}
