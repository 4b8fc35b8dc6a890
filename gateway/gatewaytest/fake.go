// Package gatewaytest provides a scriptable gateway.Requester for tests.
package gatewaytest

import (
	"context"
	"net/url"
	"sync"

	"github.com/rickchristie/travelkit/config"
	"github.com/rickchristie/travelkit/gateway"
)

// Call records one outbound request.
type Call struct {
	Method   string
	Family   config.Family
	Endpoint string
	Params   url.Values
	Payload  map[string]any
}

// Response is what the fake returns for a call.
type Response struct {
	Body map[string]any
	Err  error
}

// Requester records every call and answers from Handler, or from the fixed Response when
// Handler is nil.
type Requester struct {
	mu    sync.Mutex
	calls []Call

	Response Response
	Handler  func(Call) Response
}

// New returns a Requester that answers every call with body.
func New(body map[string]any) *Requester {
	return &Requester{Response: Response{Body: body}}
}

// Failing returns a Requester that fails every call with err.
func Failing(err error) *Requester {
	return &Requester{Response: Response{Err: err}}
}

func (r *Requester) Get(
	_ context.Context,
	family config.Family,
	endpoint string,
	params url.Values,
) (map[string]any, error) {
	return r.answer(Call{Method: "GET", Family: family, Endpoint: endpoint, Params: params})
}

func (r *Requester) Post(
	_ context.Context,
	family config.Family,
	endpoint string,
	payload map[string]any,
) (map[string]any, error) {
	return r.answer(Call{Method: "POST", Family: family, Endpoint: endpoint, Payload: payload})
}

func (r *Requester) answer(c Call) (map[string]any, error) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	handler, resp := r.Handler, r.Response
	r.mu.Unlock()

	if handler != nil {
		resp = handler(c)
	}
	return resp.Body, resp.Err
}

// Calls returns a copy of the recorded calls.
func (r *Requester) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns the number of recorded calls.
func (r *Requester) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Last returns the most recent call, or the zero Call when none was made.
func (r *Requester) Last() Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}
	}
	return r.calls[len(r.calls)-1]
}

var _ gateway.Requester = (*Requester)(nil)
