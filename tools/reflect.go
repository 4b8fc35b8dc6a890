package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// toolMeta is what the registry learns about a travelkit.Tool[I, O] by reflection.
type toolMeta struct {
	name        string
	description string
	schema      map[string]any
	tool        any
	inputType   reflect.Type
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// inspect extracts the metadata of a generic tool. Any value with the Tool method set
// qualifies, whatever its input and output types.
func inspect(tool any) (*toolMeta, error) {
	v := reflect.ValueOf(tool)
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return nil, errors.New("tool is nil")
	}

	name, err := callString(v, "Name")
	if err != nil {
		return nil, err
	}
	description, err := callString(v, "Description")
	if err != nil {
		return nil, err
	}

	schemaMethod := v.MethodByName("ParameterSchema")
	if !schemaMethod.IsValid() {
		return nil, fmt.Errorf("tool %s does not have a ParameterSchema method", name)
	}
	var params map[string]any
	if out := schemaMethod.Call(nil); len(out) == 1 && !out[0].IsNil() {
		m, ok := out[0].Interface().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tool %s ParameterSchema does not return map[string]any", name)
		}
		params = m
	}

	call := v.MethodByName("Call")
	if !call.IsValid() {
		return nil, fmt.Errorf("tool %s does not have a Call method", name)
	}
	ct := call.Type()
	if ct.NumIn() != 2 || !ct.In(0).Implements(contextType) || ct.NumOut() != 2 || ct.Out(1) != errorType {
		return nil, fmt.Errorf("tool %s Call must be func(context.Context, I) (*ToolResult[O], error)", name)
	}

	return &toolMeta{
		name:        name,
		description: description,
		schema:      params,
		tool:        tool,
		inputType:   ct.In(1),
	}, nil
}

func callString(v reflect.Value, method string) (string, error) {
	m := v.MethodByName(method)
	if !m.IsValid() {
		return "", fmt.Errorf("tool does not have a %s method", method)
	}
	out := m.Call(nil)
	if len(out) != 1 || out[0].Kind() != reflect.String {
		return "", fmt.Errorf("tool %s method does not return a string", method)
	}
	return out[0].String(), nil
}

// decodeArgs converts raw arguments into the tool's input type through a JSON round trip.
func (m *toolMeta) decodeArgs(args map[string]any) (reflect.Value, error) {
	if args == nil {
		args = map[string]any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("failed to marshal args: %w", err)
	}

	target := m.inputType
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	ptr := reflect.New(target)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("failed to decode args into %s: %w", target, err)
	}

	if m.inputType.Kind() == reflect.Ptr {
		return ptr, nil
	}
	return ptr.Elem(), nil
}

// invoke calls the tool with typed input and unwraps the Output of its *ToolResult[O].
func (m *toolMeta) invoke(ctx context.Context, input reflect.Value) (any, error) {
	out := reflect.ValueOf(m.tool).MethodByName("Call").Call([]reflect.Value{
		reflect.ValueOf(ctx),
		input,
	})

	if errVal := out[1]; !errVal.IsNil() {
		return nil, errVal.Interface().(error)
	}

	res := out[0]
	if res.Kind() == reflect.Ptr {
		if res.IsNil() {
			return nil, errors.New("nil result from tool")
		}
		res = res.Elem()
	}
	if res.Kind() != reflect.Struct {
		return res.Interface(), nil
	}
	field := res.FieldByName("Output")
	if !field.IsValid() {
		return nil, errors.New("tool result has no Output field")
	}
	return field.Interface(), nil
}
