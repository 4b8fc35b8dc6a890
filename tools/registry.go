package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/schema"
)

// Entry describes one registered tool.
type Entry struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

type registered struct {
	meta   *toolMeta
	schema *schema.Schema
}

// Registry holds named tools and runs calls against them.
//
// Call is the facade contract: it always returns a *CallResult and never panics or
// returns a Go error, whatever the tool or its arguments do.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]*registered
	hooks hookList
	clock travelkit.TimeProvider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*registered),
		clock: travelkit.NewDefaultTimeProvider(),
	}
}

// WithClock sets the clock used to time calls.
func (r *Registry) WithClock(clock travelkit.TimeProvider) *Registry {
	if clock != nil {
		r.clock = clock
	}
	return r
}

// Register adds a travelkit.Tool[I, O] of any input and output types. Its parameter schema
// is compiled up front.
func (r *Registry) Register(tool any) error {
	meta, err := inspect(tool)
	if err != nil {
		return err
	}
	if meta.name == "" {
		return errors.New("tool name is empty")
	}
	compiled, err := schema.Compile(meta.schema)
	if err != nil {
		return fmt.Errorf("tool %s: %w", meta.name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[meta.name]; exists {
		return fmt.Errorf("tool %s is already registered", meta.name)
	}
	r.tools[meta.name] = &registered{meta: meta, schema: compiled}
	r.order = append(r.order, meta.name)
	return nil
}

// MustRegister is Register for tools fixed at build time. It panics on error.
func (r *Registry) MustRegister(tool any) *Registry {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
	return r
}

// RegisterHook adds a hook implementing BeforeCallHook, AfterCallHook or both.
func (r *Registry) RegisterHook(hook any) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
	return r
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Catalog describes every tool in registration order.
func (r *Registry) Catalog() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		m := r.tools[name].meta
		out = append(out, Entry{Name: m.name, Description: m.description, Parameters: m.schema})
	}
	return out
}

// Call runs the named tool with raw arguments.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (res *CallResult) {
	r.mu.RLock()
	entry, ok := r.tools[name]
	hooks := r.hooks
	r.mu.RUnlock()

	started := r.clock.Now()
	before := &BeforeCallEvent{Tool: name, Args: args, Started: started}

	defer func() {
		if p := recover(); p != nil {
			res = Failure(travelkit.SystemError(fmt.Errorf("panic in tool %s: %v", name, p)))
		}
		hooks.fireAfter(ctx, AfterCallEvent{
			Tool:     name,
			Args:     before.Args,
			Result:   res,
			Duration: r.clock.Now().Sub(started),
		})
	}()

	if !ok {
		return Failure(travelkit.ValidationError("tool", "Unknown tool %q", name))
	}

	hooks.fireBefore(ctx, before)
	return entry.run(ctx, before.Args)
}

func (e *registered) run(ctx context.Context, args map[string]any) *CallResult {
	if err := e.schema.Validate(args); err != nil {
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			return Failure(travelkit.ValidationError(ve.Field, "Invalid arguments for %s: %s", e.meta.name, joinReasons(ve)).WithCause(err))
		}
		return Failure(travelkit.ValidationError("", "Invalid arguments for %s: %v", e.meta.name, err).WithCause(err))
	}

	input, err := e.meta.decodeArgs(args)
	if err != nil {
		return Failure(travelkit.ValidationError("", "Invalid arguments for %s: %v", e.meta.name, err).WithCause(err))
	}

	output, err := e.meta.invoke(ctx, input)
	if err != nil {
		return Failure(err)
	}
	return present(output)
}

func joinReasons(ve *schema.ValidationError) string {
	if len(ve.Reasons) == 0 {
		return ve.Err.Error()
	}
	return strings.Join(ve.Reasons, "; ")
}
