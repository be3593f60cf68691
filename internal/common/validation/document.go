package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DocumentValidator checks raw JSON documents against a compiled JSON Schema.
type DocumentValidator struct {
	schema *gojsonschema.Schema
}

// NewDocumentValidator compiles schemaJSON once for repeated use.
func NewDocumentValidator(schemaJSON string) (*DocumentValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &DocumentValidator{schema: schema}, nil
}

// MustDocumentValidator panics on an invalid schema. For package-level schemas only.
func MustDocumentValidator(schemaJSON string) *DocumentValidator {
	v, err := NewDocumentValidator(schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate returns nil when doc conforms, otherwise an error listing every violation.
func (d *DocumentValidator) Validate(doc []byte) error {
	result, err := d.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("document invalid: %s", strings.Join(msgs, "; "))
}
