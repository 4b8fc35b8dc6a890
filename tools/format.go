package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"gopkg.in/yaml.v3"
)

// Format selects how a CallResult is rendered for a model.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. The empty string is JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
	}
}

// Render renders res as text.
func Render(res *CallResult, f Format) (string, error) {
	if res == nil {
		res = Failure(nil)
	}
	switch f {
	case FormatYAML:
		data, err := yaml.Marshal(res)
		if err != nil {
			return "", fmt.Errorf("failed to render yaml: %w", err)
		}
		return string(data), nil
	case FormatJSON, "":
		data, err := json.Marshal(res)
		if err != nil {
			return "", fmt.Errorf("failed to render json: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown format %q", f)
	}
}

// Text renders res, falling back to its message when rendering fails. Models always get
// something readable.
func Text(res *CallResult, f Format) string {
	out, err := Render(res, f)
	if err != nil {
		if res == nil {
			return "status: error"
		}
		return fmt.Sprintf("status: %s\nmessage: %s", res.Status, res.Message)
	}
	return out
}

// LLMTools exports the catalog as function definitions for models with native tool calling.
func (r *Registry) LLMTools() []llms.Tool {
	catalog := r.Catalog()
	out := make([]llms.Tool, 0, len(catalog))
	for _, e := range catalog {
		params := e.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        e.Name,
				Description: e.Description,
				Parameters:  params,
			},
		})
	}
	return out
}
