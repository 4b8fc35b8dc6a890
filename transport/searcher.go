// Package transport implements the per-mode search adapters behind the search tools.
//
// Every adapter validates the travel date before any outbound call, delegates the call to a
// gateway.Requester, and normalizes the provider payload into travelkit.TransportOption rows
// where absent fields become fixed fallback strings. An empty provider list is reported as
// NoResultsFound, never as an empty success.
package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/config"
	"github.com/rickchristie/travelkit/dates"
	"github.com/rickchristie/travelkit/gateway"
)

// Searcher searches one transport mode.
type Searcher interface {
	Mode() travelkit.TransportType
	Search(ctx context.Context, q travelkit.SearchQuery) (*travelkit.SearchResult, error)
}

// Router dispatches searches by mode. Searchers can be replaced at runtime, which is how a
// real cab provider drops in over the stub.
type Router struct {
	mu        sync.RWMutex
	searchers map[travelkit.TransportType]Searcher
}

// NewRouter wires the default searcher of every mode.
func NewRouter(req gateway.Requester, cfg *config.Config, clock travelkit.TimeProvider) *Router {
	validator := dates.NewValidator(clock)
	r := &Router{searchers: make(map[travelkit.TransportType]Searcher, len(travelkit.TransportTypes))}
	r.Register(NewFlightSearcher(req, validator, cfg.Currency))
	r.Register(NewConnectionSearcher(travelkit.TransportBus, req, validator, cfg.ResultLimit))
	r.Register(NewConnectionSearcher(travelkit.TransportTrain, req, validator, cfg.ResultLimit))
	r.Register(NewCabSearcher(validator))
	return r
}

// Register installs s for its mode, replacing any previous searcher.
func (r *Router) Register(s Searcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchers[s.Mode()] = s
}

// Searcher returns the searcher of mode.
func (r *Router) Searcher(mode travelkit.TransportType) (Searcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.searchers[mode]
	if !ok {
		return nil, travelkit.ValidationError("transport_type", "No searcher registered for %q", mode)
	}
	return s, nil
}

// Search runs q against the searcher of mode.
func (r *Router) Search(
	ctx context.Context,
	mode travelkit.TransportType,
	q travelkit.SearchQuery,
) (*travelkit.SearchResult, error) {
	s, err := r.Searcher(mode)
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, q)
}

// prepare runs the checks shared by every provider-backed search. It returns the normalized
// date so the provider always receives YYYY-MM-DD.
func prepare(v *dates.Validator, q travelkit.SearchQuery) (string, error) {
	day, err := v.Validate(q.Date)
	if err != nil {
		return "", err
	}
	if err := q.Validate(); err != nil {
		return "", err
	}
	return dates.Format(day), nil
}

// recoverMapping converts a panic during payload mapping into a SystemError for mode.
func recoverMapping(mode travelkit.TransportType, err *error) {
	if r := recover(); r != nil {
		*err = travelkit.NewError(travelkit.KindSystemError, "Error processing %s: %v", plural(mode), r).
			WithCause(fmt.Errorf("panic: %v", r))
	}
}

func plural(mode travelkit.TransportType) string {
	if mode == travelkit.TransportBus {
		return "buses"
	}
	return string(mode) + "s"
}
