package amount

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"dot decimal", "123.45", "123.45", true},
		{"comma decimal", "123,45", "123.45", true},
		{"bare digits", "12345", "123.45", true},
		{"thousands dot comma decimal", "1.234,56", "1234.56", true},
		{"thousands comma dot decimal", "1,234.56", "1234.56", true},
		{"internal whitespace", "1 234,56", "1234.56", true},
		{"currency suffix", "123,45 lei", "123.45", true},
		{"leading label junk", "RON 99,10", "99.10", true},
		{"single digit", "5", "0.05", true},
		{"zero", "000", "0", true},
		{"empty", "", "", false},
		{"only letters", "abc", "", false},
		{"only separators", ".,  ,.", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			want, err := decimal.NewFromString(tt.want)
			if err != nil {
				t.Fatalf("bad expectation %q: %v", tt.want, err)
			}
			if !got.Equal(want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, want)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	got, ok := ParseFloat("12345")
	if !ok {
		t.Fatal("expected ParseFloat to succeed")
	}
	if got != 123.45 {
		t.Errorf("ParseFloat(\"12345\") = %v, want 123.45", got)
	}

	if _, ok := ParseFloat("n/a"); ok {
		t.Error("expected ParseFloat to fail on non-numeric input")
	}
}
