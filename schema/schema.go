// Package schema builds and validates the JSON Schemas of tool parameters.
//
// The same schema is sent to the model as the tool's parameter description and checked
// against every call's arguments before the tool runs:
//
//	params := schema.Object(map[string]*schema.Property{
//	    "origin":      schema.String("Departure city or airport code"),
//	    "destination": schema.String("Arrival city or airport code"),
//	    "date":        schema.String("Travel date (YYYY-MM-DD)"),
//	}, "origin", "destination", "date")
//
//	s := schema.MustCompile(params)
//	if err := s.Validate(args); err != nil {
//	    var ve *schema.ValidationError
//	    errors.As(err, &ve) // ve.Field names the offending argument
//	}
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

// Schema pairs the raw schema map sent to models with its compiled validator.
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the schema as a plain map.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate checks data against the schema. A nil Schema accepts anything.
func (s *Schema) Validate(data map[string]any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if data == nil {
		data = map[string]any{}
	}
	if err := s.compiled.Validate(data); err != nil {
		return newValidationError(err)
	}
	return nil
}

// ValidationError reports arguments that do not satisfy a schema.
type ValidationError struct {
	// Field is the top-level argument at fault, empty when the whole object is.
	Field string

	// Reasons are the individual failures, one per line of the validator output.
	Reasons []string

	Err error
}

func newValidationError(err error) *ValidationError {
	ve := &ValidationError{Err: err}

	var jve *jsonschema.ValidationError
	if errors.As(err, &jve) {
		leaf := jve
		for len(leaf.Causes) > 0 {
			leaf = leaf.Causes[0]
		}
		if req, ok := leaf.ErrorKind.(*kind.Required); ok && len(req.Missing) > 0 {
			if len(leaf.InstanceLocation) > 0 {
				ve.Field = leaf.InstanceLocation[0]
			} else {
				ve.Field = req.Missing[0]
			}
		} else if len(leaf.InstanceLocation) > 0 {
			ve.Field = leaf.InstanceLocation[0]
		}
	}

	for _, line := range strings.Split(err.Error(), "\n")[1:] {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line != "" {
			ve.Reasons = append(ve.Reasons, line)
		}
	}
	return ve
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return fmt.Sprintf("invalid arguments: %v", e.Err)
	}
	return "invalid arguments: " + strings.Join(e.Reasons, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles raw into a Schema. A nil map compiles to a nil Schema.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{raw: raw, compiled: compiled}, nil
}

// MustCompile is Compile for schemas fixed at build time. It panics on error.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Object creates an object schema. Trailing names mark properties as required.
func Object(properties map[string]*Property, required ...string) map[string]any {
	out := map[string]any{
		"type":       "object",
		"properties": buildAll(properties),
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func buildAll(properties map[string]*Property) map[string]any {
	props := make(map[string]any, len(properties))
	for name, prop := range properties {
		props[name] = prop.build()
	}
	return props
}

// Property is one property of an object schema.
type Property struct {
	typ         string
	description string
	enum        []any
	format      string
	minimum     *float64
	maximum     *float64
	minLength   *int
	maxLength   *int
	pattern     string
	items       map[string]any
	properties  map[string]*Property
	required    []string
	additional  *bool
	def         any
}

func (p *Property) build() map[string]any {
	m := map[string]any{}

	if p.typ != "" {
		m["type"] = p.typ
	}
	if p.description != "" {
		m["description"] = p.description
	}
	if len(p.enum) > 0 {
		m["enum"] = p.enum
	}
	if p.format != "" {
		m["format"] = p.format
	}
	if p.minimum != nil {
		m["minimum"] = *p.minimum
	}
	if p.maximum != nil {
		m["maximum"] = *p.maximum
	}
	if p.minLength != nil {
		m["minLength"] = *p.minLength
	}
	if p.maxLength != nil {
		m["maxLength"] = *p.maxLength
	}
	if p.pattern != "" {
		m["pattern"] = p.pattern
	}
	if p.items != nil {
		m["items"] = p.items
	}
	if p.properties != nil {
		m["properties"] = buildAll(p.properties)
	}
	if len(p.required) > 0 {
		m["required"] = p.required
	}
	if p.additional != nil {
		m["additionalProperties"] = *p.additional
	}
	if p.def != nil {
		m["default"] = p.def
	}

	return m
}

// String creates a string property.
//
//	schema.String("Booking id").Pattern(`^(flight|bus|train|cab)-\w{4}-\d{8}$`)
//	schema.String("Transport type").Enum("flight", "bus", "train", "cab")
func String(description string) *Property {
	return &Property{typ: "string", description: description}
}

// Integer creates an integer property.
//
//	schema.Integer("Number of adult passengers").Min(1).Max(9).Default(1)
func Integer(description string) *Property {
	return &Property{typ: "integer", description: description}
}

// Number creates a floating point property.
func Number(description string) *Property {
	return &Property{typ: "number", description: description}
}

// Boolean creates a boolean property.
func Boolean(description string) *Property {
	return &Property{typ: "boolean", description: description}
}

// Array creates an array property whose items follow the items schema.
func Array(description string, items map[string]any) *Property {
	return &Property{typ: "array", description: description, items: items}
}

// Nested creates an object-valued property. Trailing names mark nested properties as
// required.
//
//	schema.Nested("Passenger details", map[string]*schema.Property{
//	    "name":    schema.String("Full name"),
//	    "contact": schema.String("Phone number"),
//	}, "name", "contact")
func Nested(description string, properties map[string]*Property, required ...string) *Property {
	if properties == nil {
		properties = map[string]*Property{}
	}
	return &Property{typ: "object", description: description, properties: properties, required: required}
}

// Enum restricts the property to values.
func (p *Property) Enum(values ...any) *Property {
	p.enum = values
	return p
}

// Format sets a string format such as "date" or "email".
func (p *Property) Format(format string) *Property {
	p.format = format
	return p
}

// Min sets the inclusive minimum of a numeric property.
func (p *Property) Min(min float64) *Property {
	p.minimum = &min
	return p
}

// Max sets the inclusive maximum of a numeric property.
func (p *Property) Max(max float64) *Property {
	p.maximum = &max
	return p
}

// MinLength sets the minimum length of a string property.
func (p *Property) MinLength(min int) *Property {
	p.minLength = &min
	return p
}

// MaxLength sets the maximum length of a string property.
func (p *Property) MaxLength(max int) *Property {
	p.maxLength = &max
	return p
}

// Pattern sets the regular expression a string property must match.
func (p *Property) Pattern(pattern string) *Property {
	p.pattern = pattern
	return p
}

// AdditionalProperties allows or forbids unknown keys in an object property.
func (p *Property) AdditionalProperties(allowed bool) *Property {
	p.additional = &allowed
	return p
}

// Default sets the value documented as the default.
func (p *Property) Default(value any) *Property {
	p.def = value
	return p
}
