package questions

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// bankSchemaDef is the JSON schema every loaded question bank must satisfy.
var bankSchemaDef = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"category": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 2,
				"maxItems": 5,
			},
			"correctAnswer": map[string]any{
				"type": "string",
				"enum": []any{"A", "B", "C", "D", "E"},
			},
			"explanation": map[string]any{"type": "string"},
			"imageUrl":    map[string]any{"type": "string"},
			"cmeEligible": map[string]any{"type": "boolean"},
		},
		"required": []any{"question", "category", "options", "correctAnswer", "explanation"},
	},
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// validateBank checks raw bank JSON against the bank schema.
func validateBank(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("question bank is not valid JSON: %w", err)
	}

	schema, err := bankSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("question bank schema validation failed: %w", err)
	}
	return nil
}

// bankSchema compiles the schema once and caches it.
func bankSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		// The compiler expects a parsed JSON value; round-trip the
		// definition to strip Go-specific typing.
		defBytes, err := json.Marshal(bankSchemaDef)
		if err != nil {
			schemaErr = fmt.Errorf("marshal bank schema: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			schemaErr = fmt.Errorf("parse bank schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://question-bank.json"
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}
