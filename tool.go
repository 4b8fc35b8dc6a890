package travelkit

import (
	"context"
)

// Tool is a single named operation an agent can call, with typed input and output.
//
// Responsibility split:
//   - Tool: accept typed input, run the travel operation, return a typed output
//   - tools.Registry: validate raw arguments, convert them to the input type, call the tool,
//     and render the output for the agent
//
// Tools never format their output; the same tool serves JSON, YAML and HTTP callers.
type Tool[I, O any] interface {
	// Name returns the identifier the agent selects the tool by.
	Name() string

	// Description returns a human-readable description for the agent.
	Description() string

	// ParameterSchema returns the JSON Schema for the tool's arguments.
	// Returns nil if the tool takes no arguments.
	ParameterSchema() map[string]any

	// Call executes the tool with the given typed input.
	Call(ctx context.Context, input I) (*ToolResult[O], error)
}

// ToolResult wraps the typed output of a tool call.
type ToolResult[O any] struct {
	Output O
}

// ToolFunc builds a Tool from a plain function.
type ToolFunc[I, O any] struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, input I) (O, error)
}

// NewToolFunc creates a new ToolFunc with typed input and output.
func NewToolFunc[I, O any](
	name, description string,
	schema map[string]any,
	fn func(ctx context.Context, input I) (O, error),
) *ToolFunc[I, O] {
	return &ToolFunc[I, O]{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

// Name returns the tool's identifier.
func (t *ToolFunc[I, O]) Name() string {
	return t.name
}

// Description returns a human-readable description for the agent.
func (t *ToolFunc[I, O]) Description() string {
	return t.description
}

// ParameterSchema returns the JSON Schema for the tool's parameters.
func (t *ToolFunc[I, O]) ParameterSchema() map[string]any {
	return t.schema
}

// Call executes the tool function with the given typed input.
func (t *ToolFunc[I, O]) Call(ctx context.Context, input I) (*ToolResult[O], error) {
	if t.fn == nil {
		return nil, NewError(KindSystemError, "System error: tool %s has no implementation", t.name)
	}
	output, err := t.fn(ctx, input)
	if err != nil {
		return nil, err
	}
	return &ToolResult[O]{Output: output}, nil
}
