package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
)

// JSONSchema defines the structure for job input/output schemas.
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties,omitempty"`
}

type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description,omitempty"`
	Default     interface{}         `json:"default,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Pattern     *string             `json:"pattern,omitempty"`
	MinLength   *int                `json:"minLength,omitempty"`
	MaxLength   *int                `json:"maxLength,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	taskTypePattern = regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z]+$`)
)

// ValidateInput validates decoded job variables against schema.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	errs := []ValidationError{}

	for _, requiredField := range schema.Required {
		if v, exists := input[requiredField]; !exists || v == nil {
			errs = append(errs, ValidationError{
				Field:   requiredField,
				Message: "required field missing",
				Code:    "REQUIRED_FIELD_MISSING",
			})
		}
	}

	for fieldName, value := range input {
		prop, exists := schema.Properties[fieldName]
		if !exists {
			if !schema.AdditionalProperties {
				errs = append(errs, ValidationError{
					Field:   fieldName,
					Message: "field not allowed in schema",
					Code:    "EXTRA_FIELD",
				})
			}
			continue
		}
		if value == nil && !slices.Contains(schema.Required, fieldName) {
			continue
		}

		errs = append(errs, validateField(fieldName, value, prop)...)
	}

	return &ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

func validateField(fieldName string, value interface{}, prop Property) []ValidationError {
	if err := validateType(value, prop.Type); err != nil {
		return []ValidationError{{
			Field:   fieldName,
			Message: err.Error(),
			Code:    "INVALID_TYPE",
		}}
	}

	var errs []ValidationError

	switch v := value.(type) {
	case string:
		errs = append(errs, validateString(fieldName, v, prop)...)
	case []interface{}:
		if prop.Items != nil {
			for i, item := range v {
				errs = append(errs, validateField(fmt.Sprintf("%s[%d]", fieldName, i), item, *prop.Items)...)
			}
		}
	case map[string]interface{}:
		if prop.Properties != nil {
			nested := ValidateInput(v, JSONSchema{
				Type:                 "object",
				Properties:           prop.Properties,
				Required:             prop.Required,
				AdditionalProperties: true,
			})
			for _, nestedErr := range nested.Errors {
				nestedErr.Field = fieldName + "." + nestedErr.Field
				errs = append(errs, nestedErr)
			}
		}
	}

	return errs
}

func validateString(fieldName, s string, prop Property) []ValidationError {
	var errs []ValidationError

	if prop.MinLength != nil && len(s) < *prop.MinLength {
		errs = append(errs, ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("value must be at least %d characters", *prop.MinLength),
			Code:    "MIN_LENGTH_VIOLATION",
		})
	}
	if prop.MaxLength != nil && len(s) > *prop.MaxLength {
		errs = append(errs, ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("value must be at most %d characters", *prop.MaxLength),
			Code:    "MAX_LENGTH_VIOLATION",
		})
	}
	if prop.Pattern != nil {
		if matched, err := regexp.MatchString(*prop.Pattern, s); err != nil || !matched {
			errs = append(errs, ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("value must match pattern %s", *prop.Pattern),
				Code:    "PATTERN_MISMATCH",
			})
		}
	}
	if len(prop.Enum) > 0 && !slices.Contains(prop.Enum, s) {
		errs = append(errs, ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("value must be one of %v", prop.Enum),
			Code:    "INVALID_ENUM_VALUE",
		})
	}

	return errs
}

func validateType(value interface{}, expectedType string) error {
	ok := true
	switch expectedType {
	case "string":
		_, ok = value.(string)
	case "number":
		switch value.(type) {
		case float64, float32, int, int32, int64, json.Number:
		default:
			ok = false
		}
	case "integer":
		switch n := value.(type) {
		case int, int32, int64:
		case float64:
			ok = n == float64(int64(n))
		default:
			ok = false
		}
	case "boolean":
		_, ok = value.(bool)
	case "object":
		_, ok = value.(map[string]interface{})
	case "array":
		_, ok = value.([]interface{})
	}
	if !ok {
		return fmt.Errorf("expected %s, got %T", expectedType, value)
	}
	return nil
}

// ValidateEmail reports whether s looks like a deliverable address.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateTaskType enforces the domain.subdomain.action naming used for job types.
func ValidateTaskType(taskType string) error {
	if !taskTypePattern.MatchString(taskType) {
		return fmt.Errorf("task type must follow format: domain.subdomain.action (e.g., lead.notify.send)")
	}
	return nil
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors reports whether field has at least one error.
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}
