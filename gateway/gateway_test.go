package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.RapidAPIKey = "test-key"
	cfg.FlightBaseURL = baseURL + "/flights"
	cfg.TransportBaseURL = baseURL
	cfg.RequestTimeout = 2 * time.Second
	cfg.RetryAttempts = 3
	cfg.RetryBackoff = time.Millisecond
	return cfg
}

func TestGateway_GetSendsHeadersAndParams(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"data": [1, 2]}`))
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL))
	out, err := g.Get(context.Background(), config.FamilyFlight, "search-one-way", url.Values{
		"from": {"NYC"},
		"to":   {"PAR"},
	})
	require.NoError(t, err)

	assert.Len(t, out["data"], 2)
	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/flights/search-one-way", got.URL.Path)
	assert.Equal(t, "NYC", got.URL.Query().Get("from"))
	assert.Equal(t, "PAR", got.URL.Query().Get("to"))
	assert.Equal(t, "test-key", got.Header.Get("X-RapidAPI-Key"))
	assert.Equal(t, "tripadvisor-com1.p.rapidapi.com", got.Header.Get("X-RapidAPI-Host"))
}

func TestGateway_StatusErrors(t *testing.T) {
	type expected struct {
		status int
		calls  int32
	}

	tests := []struct {
		name     string
		status   int
		expected expected
	}{
		{name: "403 is not retried", status: http.StatusForbidden, expected: expected{status: 403, calls: 1}},
		{name: "404 is not retried", status: http.StatusNotFound, expected: expected{status: 404, calls: 1}},
		{name: "429 is retried", status: http.StatusTooManyRequests, expected: expected{status: 429, calls: 3}},
		{name: "502 is retried", status: http.StatusBadGateway, expected: expected{status: 502, calls: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message": "nope"}`))
			}))
			defer srv.Close()

			g := New(testConfig(srv.URL))
			_, err := g.Get(context.Background(), config.FamilyTransport, "connections", nil)
			require.Error(t, err)

			te := travelkit.AsError(err)
			assert.Equal(t, travelkit.KindTransportFailure, te.Kind)
			assert.Equal(t, tt.expected.status, te.StatusCode)
			assert.Contains(t, te.Details["body"], "nope")
			assert.Equal(t, tt.expected.calls, calls.Load())
		})
	}
}

func TestGateway_RetryRecovers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"connections": []}`))
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL))
	out, err := g.Get(context.Background(), config.FamilyTransport, "connections", url.Values{"limit": {"10"}})
	require.NoError(t, err)
	assert.Contains(t, out, "connections")
	assert.Equal(t, int32(2), calls.Load())
}

func TestGateway_PostIsNeverRetried(t *testing.T) {
	var calls atomic.Int32
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL))
	_, err := g.Post(context.Background(), config.FamilyBooking, "bookings/x/cancel", map[string]any{"reason": "sick"})
	require.Error(t, err)
	assert.Equal(t, 500, travelkit.AsError(err).StatusCode)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "sick", body["reason"])
}

func TestGateway_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig(srv.URL)
	cfg.RequestTimeout = 50 * time.Millisecond
	cfg.RetryAttempts = 1

	start := time.Now()
	_, err := New(cfg).Get(context.Background(), config.FamilyTransport, "connections", nil)
	require.Error(t, err)

	te := travelkit.AsError(err)
	assert.Equal(t, travelkit.KindTransportFailure, te.Kind)
	assert.Equal(t, 0, te.StatusCode)
	assert.Contains(t, te.Message, "(Status: N/A)")
	assert.Less(t, time.Since(start), time.Second)
}

func TestGateway_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	cfg := testConfig(base)
	cfg.RetryAttempts = 2
	_, err := New(cfg).Get(context.Background(), config.FamilyTransport, "connections", nil)
	assert.ErrorIs(t, err, travelkit.ErrTransportFailure)
}

func TestGateway_NonObjectBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL)).Get(context.Background(), config.FamilyTransport, "connections", nil)
	assert.ErrorIs(t, err, travelkit.ErrTransportFailure)
}

func TestGateway_OversizedBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write(make([]byte, maxResponseBody+1))
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL)).Get(context.Background(), config.FamilyTransport, "connections", nil)
	require.ErrorIs(t, err, travelkit.ErrTransportFailure)
	assert.Contains(t, err.Error(), "exceeds")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGateway_UnconfiguredFamily(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.FlightHost = ""
	g := New(cfg)

	_, err := g.Get(context.Background(), config.FamilyFlight, "search-one-way", nil)
	assert.ErrorIs(t, err, travelkit.ErrConfiguration)

	_, err = g.Get(context.Background(), config.Family("hotel"), "x", nil)
	assert.ErrorIs(t, err, travelkit.ErrConfiguration)
	assert.Equal(t, int32(0), calls.Load())
}

func TestGateway_RateLimiterHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RequestsPerSecond = 0.001
	cfg.RetryAttempts = 1
	g := New(cfg)

	_, err := g.Get(context.Background(), config.FamilyTransport, "connections", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.Get(ctx, config.FamilyTransport, "connections", nil)
	assert.ErrorIs(t, err, travelkit.ErrTransportFailure)
}
