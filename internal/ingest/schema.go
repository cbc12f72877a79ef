package ingest

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ratingEventSchema validates rating events arriving over the message
// bus before they touch the rating table.
const ratingEventSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["user_id", "product_id", "rating", "timestamp"],
	"properties": {
		"event_id": {"type": "string"},
		"user_id": {"type": "integer", "minimum": 0},
		"product_id": {"type": "integer", "minimum": 0},
		"rating": {"type": "number"},
		"timestamp": {"type": "integer", "minimum": 0}
	},
	"additionalProperties": false
}`

// EventValidator checks rating events against the JSON schema.
type EventValidator struct {
	schema *gojsonschema.Schema
}

func NewEventValidator() (*EventValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(ratingEventSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile rating event schema: %w", err)
	}
	return &EventValidator{schema: schema}, nil
}

// Validate returns a descriptive error when the payload does not match
// the rating event schema.
func (v *EventValidator) Validate(payload []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		issues = append(issues, e.String())
	}
	return fmt.Errorf("invalid rating event: %s", strings.Join(issues, "; "))
}
