// Package loggers provides hooks that log tool calls and model turns as YAML.
package loggers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rickchristie/travelkit/agent"
	"github.com/rickchristie/travelkit/booking"
	"github.com/rickchristie/travelkit/tools"
	"github.com/tmc/langchaingo/llms"
	"gopkg.in/yaml.v3"
)

const redacted = "[REDACTED]"

// LoggerHook logs every tool call and model turn. Register it on a tools.Registry, an
// agent.Session or both. Payment details and provider credentials never reach the output.
type LoggerHook struct {
	mu      sync.Mutex
	out     io.Writer
	now     func() time.Time
	secrets []string
}

// Option configures a LoggerHook.
type Option func(*LoggerHook)

// WithSecrets adds values scrubbed from every logged line, such as the RapidAPI key.
func WithSecrets(secrets ...string) Option {
	return func(h *LoggerHook) {
		for _, s := range secrets {
			if s != "" {
				h.secrets = append(h.secrets, s)
			}
		}
	}
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(h *LoggerHook) { h.now = now }
}

// NewLoggerHook creates a LoggerHook that writes to stdout.
func NewLoggerHook(opts ...Option) *LoggerHook {
	return NewLoggerHookWithWriter(os.Stdout, opts...)
}

// NewLoggerHookWithWriter creates a LoggerHook that writes to w.
func NewLoggerHookWithWriter(w io.Writer, opts ...Option) *LoggerHook {
	h := &LoggerHook{out: w, now: time.Now}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *LoggerHook) logEvent(name string) {
	timestamp := h.now().Format("2006-01-02 15:04:05.000")
	h.write(fmt.Sprintf("\n>>> [%s]: %s\n", name, timestamp))
}

func (h *LoggerHook) log(format string, args ...any) {
	h.write(fmt.Sprintf(format+"\n", args...))
}

func (h *LoggerHook) logYAML(v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		h.log("(failed to marshal: %v)", err)
		return
	}
	h.write(string(data))
}

func (h *LoggerHook) write(s string) {
	for _, secret := range h.secrets {
		s = strings.ReplaceAll(s, secret, redacted)
	}
	fmt.Fprint(h.out, s)
}

// OnBeforeCall logs the tool name and its arguments.
func (h *LoggerHook) OnBeforeCall(_ context.Context, event *tools.BeforeCallEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.logEvent("BeforeToolCall: " + event.Tool)
	h.log("Args:")
	h.logYAML(scrub(event.Args))
}

// OnAfterCall logs the outcome of a tool call.
func (h *LoggerHook) OnAfterCall(_ context.Context, event tools.AfterCallEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.logEvent(fmt.Sprintf("AfterToolCall: %s (duration: %s)", event.Tool, event.Duration))
	if event.Result == nil {
		h.log("Result: <nil>")
		return
	}

	res := *event.Result
	if m, ok := res.Details.(map[string]any); ok {
		res.Details = scrub(m)
	}
	h.log("Result:")
	h.logYAML(res)
}

// OnBeforeModelCall logs the conversation sent to the model.
func (h *LoggerHook) OnBeforeModelCall(_ context.Context, event agent.BeforeModelCallEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.logEvent(fmt.Sprintf("BeforeModelCall %d", event.Step))
	h.log("Request:")
	for i, msg := range event.Messages {
		h.log("  [%d] Role: %s", i, msg.Role)
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				h.log("      Content:")
				for _, line := range strings.Split(p.Text, "\n") {
					h.log("        %s", line)
				}
			case llms.ToolCall:
				if p.FunctionCall != nil {
					h.log("      ToolCall %s: %s %s", p.ID, p.FunctionCall.Name, p.FunctionCall.Arguments)
				}
			case llms.ToolCallResponse:
				h.log("      ToolResponse %s: %s", p.ToolCallID, p.Name)
			}
		}
	}
}

// OnAfterModelCall logs the model response and token usage.
func (h *LoggerHook) OnAfterModelCall(_ context.Context, event agent.AfterModelCallEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.logEvent(fmt.Sprintf("AfterModelCall %d (duration: %s)", event.Step, event.Duration))
	if event.Err != nil {
		h.log("Error: %v", event.Err)
		return
	}

	if event.Response != nil {
		for i, choice := range event.Response.Choices {
			if choice == nil {
				continue
			}
			h.log("Choice[%d]:", i)
			if choice.Content != "" {
				h.log("  Content:")
				for _, line := range strings.Split(choice.Content, "\n") {
					h.log("    %s", line)
				}
			}
			for _, tc := range choice.ToolCalls {
				if tc.FunctionCall != nil {
					h.log("  ToolCall %s: %s", tc.ID, tc.FunctionCall.Name)
				}
			}
			if choice.StopReason != "" {
				h.log("  StopReason: %s", choice.StopReason)
			}
		}
	}
	h.log("Tokens: input=%d, output=%d, total=%d",
		event.Usage.InputTokens, event.Usage.OutputTokens, event.Usage.TotalTokens)
}

// scrub masks payment details and credential-looking keys in a copy of m.
func scrub(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		lower := strings.ToLower(k)
		switch {
		case lower == "payment_details" || lower == "payment":
			if nested, ok := v.(map[string]any); ok {
				out[k] = booking.MaskPayment(nested)
			} else {
				out[k] = redacted
			}
		case strings.Contains(lower, "api_key") || strings.Contains(lower, "apikey") ||
			strings.Contains(lower, "token") || strings.Contains(lower, "secret"):
			out[k] = redacted
		default:
			if nested, ok := v.(map[string]any); ok {
				out[k] = scrub(nested)
			} else {
				out[k] = v
			}
		}
	}
	return out
}

// Compile-time checks.
var (
	_ tools.BeforeCallHook      = (*LoggerHook)(nil)
	_ tools.AfterCallHook       = (*LoggerHook)(nil)
	_ agent.BeforeModelCallHook = (*LoggerHook)(nil)
	_ agent.AfterModelCallHook  = (*LoggerHook)(nil)
)
