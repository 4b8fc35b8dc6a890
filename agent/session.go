// Package agent runs a chat session in which a model answers travel requests by calling the
// travel tools through native function calling.
//
// Each Send appends the user message, then alternates model turns and tool dispatch until the
// model answers without tool calls or the step limit is reached. Tool failures are fed back to
// the model as rendered error results so it can correct its arguments and retry.
//
//	llm, _ := openai.New(openai.WithToken(key), openai.WithBaseURL(baseURL), openai.WithModel(model))
//	s := agent.NewSession(llm, registry, agent.Config{})
//	answer, err := s.Send(ctx, "Search for flights between NYC and PAR on 2025-05-30")
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/tools"
	"github.com/tmc/langchaingo/llms"
)

// DefaultSystemPrompt frames the model as a travel assistant.
const DefaultSystemPrompt = `You are a travel assistant. Use the available tools to search for flights, buses, trains and cabs, and to book, cancel or look up bookings.
Dates must be YYYY-MM-DD and not in the past. Before booking, make sure you have the passenger's name and contact number.
Tool results are JSON. When a result has status "error", explain the message to the user or fix the arguments and try again.`

// DefaultMaxSteps bounds the model turns of a single Send.
const DefaultMaxSteps = 8

// ErrMaxSteps is returned when the model keeps calling tools past the step limit.
var ErrMaxSteps = errors.New("agent: step limit reached before a final answer")

// Config configures a Session.
type Config struct {
	SystemPrompt string
	MaxSteps     int

	// MaxTurns bounds how many past user turns are sent to the model. 0 keeps all of them.
	MaxTurns int

	Format      tools.Format
	CallOptions []llms.CallOption
	Clock       travelkit.TimeProvider
}

// Session is a conversation with history. A Session is safe for concurrent use but serializes
// Send calls.
type Session struct {
	model    llms.Model
	registry *tools.Registry
	cfg      Config

	mu      sync.Mutex
	history []llms.MessageContent
	usage   Usage
	hooks   []any
}

// NewSession creates a Session over model with the tools of registry.
func NewSession(model llms.Model, registry *tools.Registry, cfg Config) *Session {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.MaxSteps < 1 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.Format == "" {
		cfg.Format = tools.FormatJSON
	}
	if cfg.Clock == nil {
		cfg.Clock = travelkit.NewDefaultTimeProvider()
	}
	s := &Session{model: model, registry: registry, cfg: cfg}
	s.resetLocked()
	return s
}

// RegisterHook adds a hook implementing BeforeModelCallHook, AfterModelCallHook or both.
// Tool call hooks belong on the Registry.
func (s *Session) RegisterHook(hook any) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
	return s
}

// Send adds a user message and returns the model's final answer.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, llms.TextParts(llms.ChatMessageTypeHuman, text))
	s.history = windowTurns(s.history, s.cfg.MaxTurns)

	opts := make([]llms.CallOption, 0, len(s.cfg.CallOptions)+1)
	opts = append(opts, llms.WithTools(s.registry.LLMTools()))
	opts = append(opts, s.cfg.CallOptions...)

	for step := 1; step <= s.cfg.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		choice, err := s.generate(ctx, step, opts)
		if err != nil {
			return "", err
		}

		if len(choice.ToolCalls) == 0 {
			s.history = append(s.history, llms.TextParts(llms.ChatMessageTypeAI, choice.Content))
			return choice.Content, nil
		}

		assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if strings.TrimSpace(choice.Content) != "" {
			assistant.Parts = append(assistant.Parts, llms.TextContent{Text: choice.Content})
		}
		for _, tc := range choice.ToolCalls {
			assistant.Parts = append(assistant.Parts, tc)
		}
		s.history = append(s.history, assistant)

		for _, tc := range choice.ToolCalls {
			s.history = append(s.history, llms.MessageContent{
				Role:  llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{s.dispatch(ctx, tc)},
			})
		}
	}
	return "", ErrMaxSteps
}

func (s *Session) generate(ctx context.Context, step int, opts []llms.CallOption) (*llms.ContentChoice, error) {
	s.fireBefore(ctx, BeforeModelCallEvent{Step: step, Messages: s.history})

	started := s.cfg.Clock.Now()
	resp, err := s.model.GenerateContent(ctx, s.history, opts...)
	event := AfterModelCallEvent{
		Step:     step,
		Response: resp,
		Err:      err,
		Duration: s.cfg.Clock.Now().Sub(started),
	}
	if err == nil && resp != nil && len(resp.Choices) > 0 {
		event.Usage = usageOf(resp.Choices[0].GenerationInfo)
		s.usage.add(event.Usage)
	}
	s.fireAfter(ctx, event)

	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, errors.New("model returned no choices")
	}
	return resp.Choices[0], nil
}

// dispatch runs one tool call and renders its result for the model.
func (s *Session) dispatch(ctx context.Context, tc llms.ToolCall) llms.ToolCallResponse {
	name := ""
	var args map[string]any
	var res *tools.CallResult

	if tc.FunctionCall == nil {
		res = tools.Failure(travelkit.ValidationError("tool", "Tool call %s has no function", tc.ID))
	} else {
		name = tc.FunctionCall.Name
		parsed, err := parseArguments(tc.FunctionCall.Arguments)
		if err != nil {
			res = tools.Failure(travelkit.ValidationError("", "Arguments of %s are not a JSON object: %v", name, err))
		} else {
			args = parsed
			res = s.registry.Call(ctx, name, args)
		}
	}

	return llms.ToolCallResponse{
		ToolCallID: tc.ID,
		Name:       name,
		Content:    tools.Text(res, s.cfg.Format),
	}
}

// History returns a copy of the conversation, system prompt first.
func (s *Session) History() []llms.MessageContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llms.MessageContent, len(s.history))
	copy(out, s.history)
	return out
}

// Usage returns the token usage accumulated over the session.
func (s *Session) Usage() Usage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// Reset drops the conversation, keeping the system prompt.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.history = []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeSystem, s.cfg.SystemPrompt)}
	s.usage = Usage{}
}

func (s *Session) fireBefore(ctx context.Context, event BeforeModelCallEvent) {
	for _, h := range s.hooks {
		if hook, ok := h.(BeforeModelCallHook); ok {
			hook.OnBeforeModelCall(ctx, event)
		}
	}
}

func (s *Session) fireAfter(ctx context.Context, event AfterModelCallEvent) {
	for _, h := range s.hooks {
		if hook, ok := h.(AfterModelCallHook); ok {
			hook.OnAfterModelCall(ctx, event)
		}
	}
}

// BeforeModelCallEvent is fired before each model turn.
type BeforeModelCallEvent struct {
	Step     int
	Messages []llms.MessageContent
}

// AfterModelCallEvent is fired after each model turn, successful or not.
type AfterModelCallEvent struct {
	Step     int
	Response *llms.ContentResponse
	Usage    Usage
	Err      error
	Duration time.Duration
}

type BeforeModelCallHook interface {
	OnBeforeModelCall(ctx context.Context, event BeforeModelCallEvent)
}

type AfterModelCallHook interface {
	OnAfterModelCall(ctx context.Context, event AfterModelCallEvent)
}
