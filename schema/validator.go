package schema

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"plan-payment-api/models"
)

//go:embed payment.json
var paymentSchema string

// ValidationError lists every rule the request broke.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "request does not conform to schema: " + strings.Join(e.Violations, "; ")
}

// Validator checks payment requests against the embedded JSON Schema.
type Validator struct {
	schema *gojsonschema.Schema
}

func NewValidator() (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(paymentSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile payment schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate checks the JSON form of the whole request, token included.
func (v *Validator) Validate(ctx context.Context, req models.PaymentRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := v.schema.Validate(gojsonschema.NewGoLoader(req))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return &ValidationError{Violations: violations}
}
