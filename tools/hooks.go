package tools

import (
	"context"
	"time"
)

// BeforeCallEvent is fired before a tool runs. Hooks may replace Args.
type BeforeCallEvent struct {
	Tool    string
	Args    map[string]any
	Started time.Time
}

// AfterCallEvent is fired after every call, including calls that failed validation or named
// an unknown tool.
type AfterCallEvent struct {
	Tool     string
	Args     map[string]any
	Result   *CallResult
	Duration time.Duration
}

// BeforeCallHook observes calls before execution.
type BeforeCallHook interface {
	OnBeforeCall(ctx context.Context, event *BeforeCallEvent)
}

// AfterCallHook observes call outcomes.
type AfterCallHook interface {
	OnAfterCall(ctx context.Context, event AfterCallEvent)
}

// hookList dispatches to registered hooks in registration order. A hook may implement
// either interface or both.
type hookList []any

func (l hookList) fireBefore(ctx context.Context, event *BeforeCallEvent) {
	for _, h := range l {
		if hook, ok := h.(BeforeCallHook); ok {
			hook.OnBeforeCall(ctx, event)
		}
	}
}

func (l hookList) fireAfter(ctx context.Context, event AfterCallEvent) {
	for _, h := range l {
		if hook, ok := h.(AfterCallHook); ok {
			hook.OnAfterCall(ctx, event)
		}
	}
}
