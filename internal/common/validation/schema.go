package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks a document against a JSON schema expressed as a Go map.
func Validate(document map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, resErr := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   resErr.Field(),
			Message: resErr.Description(),
		})
	}
	return out, nil
}

// MustBeValid returns an error describing the first schema violation, nil when valid.
func MustBeValid(document map[string]interface{}, schema map[string]interface{}) error {
	result, err := Validate(document, schema)
	if err != nil {
		return err
	}
	if !result.Valid {
		if len(result.Errors) > 0 {
			return fmt.Errorf("schema violation: %s: %s", result.Errors[0].Field, result.Errors[0].Message)
		}
		return fmt.Errorf("schema violation")
	}
	return nil
}
