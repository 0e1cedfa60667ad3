// Package patterns loads and applies vendor extraction patterns: regex
// bundles, maintained as JSON or YAML files outside the binary, that teach
// the engine how one specific biller lays out its documents.
//
// Patterns live in two tiers. Admin patterns are curated centrally and
// apply to everyone; user patterns belong to a single landlord. Admin
// patterns always rank ahead of user patterns at equal match quality.
package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"bill-extraction-service/internal/models"
)

// Tier says who maintains a pattern.
type Tier string

const (
	TierAdmin Tier = "admin"
	TierUser  Tier = "user"
)

// Source identifies where a loaded pattern came from. The tagged value is
// authoritative; the pattern id prefix is only a convenience for logs.
type Source struct {
	Tier   Tier   `json:"tier"`
	UserID string `json:"user_id,omitempty"`
}

// Loaded is one pattern together with its identity and provenance.
type Loaded struct {
	Pattern *Pattern `json:"pattern"`
	ID      string   `json:"id"`
	Source  Source   `json:"source"`
}

// FieldRule is one regex attempt for a field. Group selects the capture
// group holding the value; zero means group 1.
type FieldRule struct {
	Regex     string `json:"regex" yaml:"regex"`
	Group     int    `json:"group,omitempty" yaml:"group,omitempty"`
	Transform string `json:"transform,omitempty" yaml:"transform,omitempty"`

	compiled *regexp.Regexp
}

// Field is a named extraction target with its ordered rule list. The first
// rule that matches wins the field.
type Field struct {
	Name  string      `json:"name" yaml:"name"`
	Rules []FieldRule `json:"patterns" yaml:"patterns"`
}

// Pattern is one vendor's extraction recipe.
type Pattern struct {
	Name     string          `json:"name" yaml:"name"`
	BillType models.BillType `json:"bill_type,omitempty" yaml:"bill_type,omitempty"`
	Priority int             `json:"priority,omitempty" yaml:"priority,omitempty"`
	Enabled  *bool           `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Fields   []Field         `json:"fields" yaml:"fields"`
}

// IsEnabled reports whether the pattern participates in matching. Patterns
// are enabled unless the file says otherwise.
func (p *Pattern) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

var validTransforms = map[string]bool{
	"":      true,
	"trim":  true,
	"upper": true,
	"lower": true,
}

// Compile validates the pattern and compiles every rule regex. Field names
// must be unique within a pattern; rule groups must exist in their regex.
func (p *Pattern) Compile() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("pattern name is empty")
	}
	if len(p.Fields) == 0 {
		return fmt.Errorf("pattern %q declares no fields", p.Name)
	}

	seen := make(map[string]bool)
	for fi := range p.Fields {
		field := &p.Fields[fi]
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("pattern %q has a field with no name", p.Name)
		}
		if seen[name] {
			return fmt.Errorf("pattern %q declares field %q more than once", p.Name, name)
		}
		seen[name] = true
		field.Name = name

		if len(field.Rules) == 0 {
			return fmt.Errorf("field %q has no rules", name)
		}
		for ri := range field.Rules {
			rule := &field.Rules[ri]
			// Rules match case-insensitively, same as the built-in rule
			// corpus; pattern authors write the label vocabulary once and
			// documents match in any casing.
			compiled, err := regexp.Compile("(?i)" + rule.Regex)
			if err != nil {
				return fmt.Errorf("field %q rule %d: %w", name, ri, err)
			}
			group := rule.Group
			if group == 0 {
				group = 1
			}
			if group > compiled.NumSubexp() {
				return fmt.Errorf("field %q rule %d: group %d exceeds %d capture groups",
					name, ri, group, compiled.NumSubexp())
			}
			if !validTransforms[rule.Transform] {
				return fmt.Errorf("field %q rule %d: unknown transform %q", name, ri, rule.Transform)
			}
			rule.Group = group
			rule.compiled = compiled
		}
	}
	return nil
}

// Apply runs the pattern against document text. It returns the captured
// value per matched field and the matched-field count; fields whose rules
// all miss are absent from the map.
func (p *Pattern) Apply(text string) (map[string]string, int) {
	values := make(map[string]string)
	for _, field := range p.Fields {
		for _, rule := range field.Rules {
			if rule.compiled == nil {
				continue
			}
			m := rule.compiled.FindStringSubmatch(text)
			if m == nil || rule.Group >= len(m) {
				continue
			}
			value := applyTransform(rule.Transform, m[rule.Group])
			if value == "" {
				continue
			}
			values[field.Name] = value
			break
		}
	}
	return values, len(values)
}

// FieldCount returns the number of fields the pattern declares.
func (p *Pattern) FieldCount() int {
	return len(p.Fields)
}

func applyTransform(transform, value string) string {
	value = strings.TrimSpace(value)
	switch transform {
	case "upper":
		return strings.ToUpper(value)
	case "lower":
		return strings.ToLower(value)
	default:
		return value
	}
}
