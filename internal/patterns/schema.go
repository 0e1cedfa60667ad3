package patterns

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// patternSchema is the contract every pattern file must satisfy before it
// is decoded. Unknown keys are deliberately allowed so files written
// against a newer engine keep loading on an older one.
const patternSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "fields"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "bill_type": {"type": "string"},
    "priority": {"type": "integer"},
    "enabled": {"type": "boolean"},
    "fields": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "patterns"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "patterns": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["regex"],
              "properties": {
                "regex": {"type": "string", "minLength": 1},
                "group": {"type": "integer", "minimum": 0},
                "transform": {"type": "string", "enum": ["", "trim", "upper", "lower"]}
              }
            }
          }
        }
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("pattern.schema.json", strings.NewReader(patternSchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("pattern.schema.json")
}

// validateSchema checks a decoded pattern document against the schema.
// The value must come from encoding/json or be converted to the same shape
// (map[string]interface{} / []interface{} / primitives).
func validateSchema(doc interface{}) error {
	return compiledSchema.Validate(doc)
}
