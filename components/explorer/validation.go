package explorer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// chartRequestSchema bounds the request payload arriving over HTTP.
// Column existence is checked later against the loaded dataset.
func chartRequestSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"x_axis", "y_axis", "kind"},
		"properties": map[string]any{
			"x_axis": map[string]any{"type": "string", "minLength": 1},
			"y_axis": map[string]any{"type": "string", "minLength": 1},
			"aggregate": map[string]any{
				"type":    "string",
				"enum":    []string{"raw", "sum", "average"},
				"default": "raw",
			},
			"kind": map[string]any{
				"type": "string",
				"enum": []string{"line", "scatter", "bar", "pie"},
			},
			"all_rows": map[string]any{
				"type":    "boolean",
				"default": false,
			},
		},
		"additionalProperties": false,
	}
}

// JSONSchemaValidator validates chart requests against their schema.
type JSONSchemaValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{}
}

// Validate ensures the chart request satisfies the schema.
func (v *JSONSchemaValidator) Validate(req ChartRequest) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("explorer: marshal chart request: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("explorer: normalize chart request: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("explorer: chart request failed validation: %w", err)
	}
	return nil
}

func (v *JSONSchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		data, err := json.Marshal(chartRequestSchema())
		if err != nil {
			v.err = fmt.Errorf("explorer: marshal chart request schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		const name = "chart_request.json"
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			v.err = fmt.Errorf("explorer: load chart request schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(name)
	})
	return v.compiled, v.err
}

// noopRequestValidator disables schema validation, for embedders that
// register chart kinds outside the built-in enum.
type noopRequestValidator struct{}

func (noopRequestValidator) Validate(ChartRequest) error { return nil }
