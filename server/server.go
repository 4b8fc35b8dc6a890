// Package server exposes the tool registry over HTTP.
//
//	GET  /healthz          liveness
//	GET  /v1/tools         tool catalog
//	POST /v1/tools/{name}  call a tool with a JSON object body
//
// Tool failures are reported in the body with status "error" and HTTP 200. Only an unknown
// tool (404) and a body that is not a JSON object (400) change the HTTP status.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rickchristie/travelkit/tools"
)

const maxBodyBytes = 1 << 20

// Server routes HTTP requests to a tools.Registry.
type Server struct {
	registry *tools.Registry
	router   chi.Router
	quiet    bool
}

// Option configures a Server.
type Option func(*Server)

// WithoutRequestLog disables the chi request logger.
func WithoutRequestLog() Option {
	return func(s *Server) { s.quiet = true }
}

// New creates a Server over registry.
func New(registry *tools.Registry, opts ...Option) *Server {
	s := &Server{registry: registry}
	for _, o := range opts {
		o(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if !s.quiet {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/tools", func(r chi.Router) {
		r.Get("/", s.handleCatalog)
		r.Post("/{name}", s.handleCall)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("travelkit listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.registry.Catalog()})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.registry.Has(name) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown tool %q", name))
		return
	}

	args, err := decodeArgs(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.registry.Call(r.Context(), name, args))
}

// decodeArgs reads a JSON object. An empty body is an empty object.
func decodeArgs(body io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("cannot read body: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("request body must be a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, &tools.CallResult{Status: tools.StatusError, Message: message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}
