// Package schemas provides JSON Schema validation for raw source record batches.
package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// rawBatchSchema is the contract for batches arriving from the
// data-collection boundary: an array of envelopes keyed by
// (source, external_id) with an arbitrary per-source payload.
const rawBatchSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["source", "external_id"],
    "properties": {
      "source": {"type": "string", "minLength": 1},
      "external_id": {"type": "string", "minLength": 1},
      "fetched_at": {"type": "string"},
      "payload": {"type": "object"}
    }
  }
}`

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates schema validation errors for one batch.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "batch validation failed"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return fmt.Sprintf("batch validation failed: %s", strings.Join(parts, "; "))
}

// ValidateRawBatch validates a raw batch document against the batch
// schema. A nil return means the batch envelope is well formed; the
// per-record identifying fields are checked again by the normalizer so
// that one bad record drops alone rather than failing the whole batch.
func ValidateRawBatch(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(rawBatchSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate batch: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, desc := range result.Errors() {
		verr.Errors = append(verr.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return verr
}
