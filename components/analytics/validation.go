package analytics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RequestValidator checks prediction requests before they are sent.
type RequestValidator interface {
	ValidatePrediction(req PredictionRequest) error
}

const predictionSchemaName = "prediction_request.json"

// numeric strings accepted by the prediction service's float() coercion
const numericPattern = `^\s*[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?\s*$`

func predictionSchema() map[string]any {
	feature := map[string]any{
		"type":    []string{"number", "string"},
		"pattern": numericPattern,
	}
	properties := map[string]any{}
	required := make([]string, 0, len(predictionFormFields)+1)
	for _, name := range predictionFormFields {
		properties[name] = feature
		required = append(required, name)
	}
	models := make([]string, 0, 3)
	for _, m := range PredictionModels() {
		models = append(models, string(m))
	}
	properties["model"] = map[string]any{"type": "string", "enum": models}
	required = append(required, "model")
	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// SchemaValidator validates prediction requests against a JSON schema.
type SchemaValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewSchemaValidator builds a validator backed by jsonschema v5.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// ValidatePrediction returns a *ValidationError naming the first offending field.
func (v *SchemaValidator) ValidatePrediction(req PredictionRequest) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("analytics: marshal prediction request: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("analytics: normalize prediction request: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return toValidationError(err)
	}
	return nil
}

func (v *SchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		data, err := json.Marshal(predictionSchema())
		if err != nil {
			v.err = fmt.Errorf("analytics: marshal prediction schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(predictionSchemaName, bytes.NewReader(data)); err != nil {
			v.err = fmt.Errorf("analytics: load prediction schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(predictionSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("analytics: compile prediction schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}

func toValidationError(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &ValidationError{Message: err.Error(), Err: err}
	}
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		field = missingProperty(leaf.Message)
	}
	return &ValidationError{Field: field, Message: leaf.Message, Err: err}
}

// missingProperty extracts the name from messages like "missing properties: 'floors'".
func missingProperty(message string) string {
	start := strings.Index(message, "'")
	if start < 0 {
		return ""
	}
	end := strings.Index(message[start+1:], "'")
	if end < 0 {
		return ""
	}
	return message[start+1 : start+1+end]
}
