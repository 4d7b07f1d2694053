// Package schema defines the JSON contract for user-supplied strategy
// documents and validates candidate documents against it.
package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	strategySchemaLoader     gojsonschema.JSONLoader
	strategySchemaLoaderOnce sync.Once
)

// StrategyDocumentSchema returns the JSON schema a strategy document must
// satisfy before it is registered: a category, ordered critical and
// important field lists, and weights bounded to [0,1].
func StrategyDocumentSchema() map[string]any {
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"required":             []any{"category", "criticalFields"},
		"additionalProperties": false,
		"properties": map[string]any{
			"category": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"criticalFields": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"importantFields": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"weights": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":    "number",
					"minimum": 0,
					"maximum": 1,
				},
			},
		},
	}
}

type documentValidationError struct {
	issues []string
}

func (e documentValidationError) Error() string {
	if len(e.issues) == 0 {
		return "strategy document failed schema validation"
	}
	return strings.Join(e.issues, "; ")
}

// ValidateStrategyDocument checks a JSON strategy document against the
// schema and returns an error listing every violation.
func ValidateStrategyDocument(raw []byte) error {
	strategySchemaLoaderOnce.Do(func() {
		strategySchemaLoader = gojsonschema.NewGoLoader(StrategyDocumentSchema())
	})

	result, err := gojsonschema.Validate(strategySchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema: validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return documentValidationError{issues: issues}
}
