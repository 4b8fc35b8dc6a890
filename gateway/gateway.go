// Package gateway issues the outbound provider calls of the travel tools.
//
// Every call has a bounded timeout. Failures of any kind (timeout, DNS, refused connection,
// non-2xx status, undecodable body) come back as a *travelkit.Error of kind TransportFailure
// carrying the status code when one was received. Read-only GETs are retried with exponential
// backoff on network errors, 429 and 5xx; POSTs are single-attempt.
//
// Requester.Get is the single read entry point: every search adapter and the booking status
// lookup call it with the provider family, the endpoint below the family's base URL and the
// query parameters.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/config"
	"golang.org/x/time/rate"
)

const (
	// maxErrorBody bounds how much of a failed response body is kept in error details.
	maxErrorBody = 512

	// maxResponseBody bounds how much of a provider response is read.
	maxResponseBody = 8 << 20
)

// Requester is the outbound surface the search adapters and booking manager depend on.
type Requester interface {
	// Get performs an idempotent read. Implementations may retry it.
	Get(ctx context.Context, family config.Family, endpoint string, params url.Values) (map[string]any, error)

	// Post performs a state-changing call. Implementations must not retry it.
	Post(ctx context.Context, family config.Family, endpoint string, payload map[string]any) (map[string]any, error)
}

// Gateway is the HTTP implementation of Requester. It holds no per-call state and is safe
// for concurrent use.
type Gateway struct {
	cfg      *config.Config
	client   *http.Client
	limiter  *rate.Limiter
	attempts int
	backoff  time.Duration
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is overwritten by the
// configured request timeout when zero.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		g.client = c
	}
}

// New creates a Gateway from cfg.
func New(cfg *config.Config, opts ...Option) *Gateway {
	g := &Gateway{
		cfg:      cfg,
		client:   &http.Client{},
		attempts: cfg.RetryAttempts,
		backoff:  cfg.RetryBackoff,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.client.Timeout == 0 {
		g.client.Timeout = cfg.RequestTimeout
	}
	if g.attempts < 1 {
		g.attempts = 1
	}
	if g.backoff <= 0 {
		g.backoff = 100 * time.Millisecond
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return g
}

// Get performs a GET with retry and backoff.
func (g *Gateway) Get(
	ctx context.Context,
	family config.Family,
	endpoint string,
	params url.Values,
) (out map[string]any, err error) {
	defer recoverSystemError(&err)

	target, headers, err := g.resolve(family, endpoint)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.backoff
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(g.attempts-1)), ctx)

	err = backoff.Retry(func() error {
		var callErr error
		out, callErr = g.do(ctx, http.MethodGet, target, headers, nil)
		if callErr == nil {
			return nil
		}
		if retryable(callErr) {
			return callErr
		}
		return backoff.Permanent(callErr)
	}, policy)
	if err != nil {
		// The policy reports the context error itself when the caller gave up between attempts.
		var te *travelkit.Error
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, transportError(err)
	}
	return out, nil
}

// Post performs a single-attempt POST with a JSON body.
func (g *Gateway) Post(
	ctx context.Context,
	family config.Family,
	endpoint string,
	payload map[string]any,
) (out map[string]any, err error) {
	defer recoverSystemError(&err)

	target, headers, err := g.resolve(family, endpoint)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, travelkit.SystemError(fmt.Errorf("failed to encode request: %w", err))
	}
	return g.do(ctx, http.MethodPost, target, headers, body)
}

func (g *Gateway) resolve(family config.Family, endpoint string) (string, map[string]string, error) {
	ep, err := g.cfg.Family(family)
	if err != nil {
		return "", nil, travelkit.NewError(travelkit.KindConfiguration, "%v", err).WithCause(err)
	}
	target := ep.BaseURL
	if endpoint = strings.Trim(endpoint, "/"); endpoint != "" {
		target += "/" + endpoint
	}
	return target, ep.Headers, nil
}

func (g *Gateway) do(
	ctx context.Context,
	method, target string,
	headers map[string]string,
	body []byte,
) (map[string]any, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, transportError(err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.client.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, travelkit.SystemError(fmt.Errorf("failed to build request: %w", err))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, transportError(err)
	}
	if len(data) > maxResponseBody {
		return nil, travelkit.NewError(
			travelkit.KindTransportFailure,
			"API request failed: response exceeds %d bytes", maxResponseBody,
		).WithStatus(resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := string(data)
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, travelkit.NewError(
			travelkit.KindTransportFailure,
			"API request failed: %s", http.StatusText(resp.StatusCode),
		).WithStatus(resp.StatusCode).WithDetails(map[string]any{"body": excerpt})
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, travelkit.NewError(
			travelkit.KindTransportFailure,
			"API request failed: response is not a JSON object",
		).WithCause(err)
	}
	return out, nil
}

func transportError(err error) *travelkit.Error {
	return travelkit.NewError(
		travelkit.KindTransportFailure,
		"API request failed: %v (Status: N/A)", err,
	).WithCause(err)
}

// retryable reports whether a failed GET may be attempted again.
func retryable(err error) bool {
	var te *travelkit.Error
	if !errors.As(err, &te) || te.Kind != travelkit.KindTransportFailure {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch {
	case te.StatusCode == 0:
		return true
	case te.StatusCode == http.StatusTooManyRequests:
		return true
	case te.StatusCode >= 500:
		return true
	default:
		return false
	}
}

func recoverSystemError(err *error) {
	if r := recover(); r != nil {
		*err = travelkit.SystemError(fmt.Errorf("panic: %v", r))
	}
}

var _ Requester = (*Gateway)(nil)
