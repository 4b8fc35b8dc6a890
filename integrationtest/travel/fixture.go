// Package travel runs agent scenarios against a live OpenAI-compatible model with canned
// provider responses.
package travel

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/agent"
	"github.com/rickchristie/travelkit/booking"
	"github.com/rickchristie/travelkit/config"
	"github.com/rickchristie/travelkit/gateway/gatewaytest"
	"github.com/rickchristie/travelkit/loggers"
	"github.com/rickchristie/travelkit/tools"
	"github.com/rickchristie/travelkit/transport"
	"github.com/tmc/langchaingo/llms/openai"
)

// KeyEnv holds the API key of the model used by the scenarios.
const KeyEnv = "TRAVELKIT_TEST_LLM_KEY"

// Fixture is a session over canned providers that records every tool call.
type Fixture struct {
	Session  *agent.Session
	Provider *gatewaytest.Requester

	mu    sync.Mutex
	calls []tools.AfterCallEvent
}

// OnAfterCall records the call.
func (f *Fixture) OnAfterCall(_ context.Context, event tools.AfterCallEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, event)
}

// Calls returns the recorded tool calls named name, or all of them when name is empty.
func (f *Fixture) Calls(name string) []tools.AfterCallEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tools.AfterCallEvent
	for _, c := range f.calls {
		if name == "" || c.Tool == name {
			out = append(out, c)
		}
	}
	return out
}

// NewFixture builds a Fixture logging to w.
func NewFixture(w io.Writer) (*Fixture, error) {
	apiKey := os.Getenv(KeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable not set", KeyEnv)
	}

	cfg := config.Default()
	if v := os.Getenv("TRAVELKIT_TEST_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("TRAVELKIT_TEST_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(cfg.LLM.BaseURL),
		openai.WithModel(cfg.LLM.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM: %w", err)
	}

	provider := &gatewaytest.Requester{Handler: cannedProviders}
	clock := travelkit.NewDefaultTimeProvider()
	reg := tools.NewTravelRegistry(tools.Services{
		Searchers: transport.NewRouter(provider, cfg, clock),
		Bookings:  booking.NewManager(provider, clock),
	}).WithClock(clock)

	logger := loggers.NewLoggerHookWithWriter(w)
	f := &Fixture{Provider: provider}
	reg.RegisterHook(logger).RegisterHook(f)

	f.Session = agent.NewSession(llm, reg, agent.Config{Clock: clock}).RegisterHook(logger)
	return f, nil
}

func cannedProviders(c gatewaytest.Call) gatewaytest.Response {
	switch {
	case c.Family == config.FamilyFlight:
		return gatewaytest.Response{Body: map[string]any{"data": []any{
			map[string]any{
				"flight_number":     "AF0007",
				"operating_carrier": map[string]any{"display_name": "Air France"},
				"departure_time":    "08:30",
				"arrival_time":      "21:45",
				"duration":          "7h 15m",
				"price":             map[string]any{"amount": "612.40"},
			},
			map[string]any{
				"flight_number":     "DL0264",
				"operating_carrier": map[string]any{"display_name": "Delta"},
				"departure_time":    "18:05",
				"arrival_time":      "07:20",
				"duration":          "7h 15m",
				"price":             map[string]any{"amount": "540.00"},
			},
		}}}
	case strings.HasSuffix(c.Endpoint, "/cancel"):
		return gatewaytest.Response{Body: map[string]any{"status": "cancelled", "refund_status": "processing"}}
	case strings.HasPrefix(c.Endpoint, "bookings/"):
		return gatewaytest.Response{Body: map[string]any{"status": "confirmed", "transport_type": "flight"}}
	default:
		return gatewaytest.Response{Body: map[string]any{"connections": []any{}}}
	}
}
