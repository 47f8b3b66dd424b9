package schema

import (
	"fmt"
	"slices"

	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/aretw0/typeguard/pkg/registry"
	"github.com/aretw0/typeguard/pkg/validator"
	"github.com/aretw0/typeguard/pkg/violation"
)

// Schema is a map of field names to their expected types.
// Example: {"api_key": Of[string](), "retries": Of[int](), "tags": ListOf(Of[string]())}
type Schema map[string]descriptor.Descriptor

// ParseTypeMap converts a map of field names to type expressions into a Schema.
// Example: {"api_key": "str", "retries": "int", "tags": "list[str]"}
func ParseTypeMap(typeMap map[string]string, scope *Scope) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, expr := range typeMap {
		d, err := Parse(expr, scope)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = d
	}
	return result, nil
}

// Keys returns the field names in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Record returns the schema as a record descriptor, fields in name order.
func (s Schema) Record() *descriptor.Record {
	fields := make([]descriptor.Field, 0, len(s))
	for _, k := range s.Keys() {
		fields = append(fields, descriptor.Required(k, s[k]))
	}
	return descriptor.RecordOf(fields...)
}

// Validate checks if data conforms to the schema.
// All fields share one type-variable registry.
// Returns an error with all validation failures found.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}
	return ValidateFields(schema, data, schema.Keys()...)
}

// ValidateFields validates only specific fields from data against the schema.
// Missing fields are treated as an error.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	pass := validator.New(violation.Subject{Kind: "record", Name: "data"}, registry.New())
	var errs []error
	for _, fieldName := range fields {
		fieldType, exists := schema[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "not defined in schema",
			})
			continue
		}

		value, fieldExists := data[fieldName]
		if !fieldExists {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
			})
			continue
		}

		for _, v := range pass.Validate(value, fieldType, fieldName) {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: v.Message(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
