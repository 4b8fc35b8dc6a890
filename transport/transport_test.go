package transport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/config"
	"github.com/rickchristie/travelkit/dates"
	"github.com/rickchristie/travelkit/gateway/gatewaytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

func testValidator() *dates.Validator {
	return dates.NewValidator(travelkit.NewMockTimeProvider(testNow))
}

func futureQuery() travelkit.SearchQuery {
	return travelkit.SearchQuery{Origin: "NYC", Destination: "PAR", Date: "2026-12-01"}
}

func TestFlightSearcher_MapsRowsWithFallbacks(t *testing.T) {
	req := gatewaytest.New(map[string]any{
		"data": []any{
			map[string]any{
				"operating_carrier": map[string]any{"display_name": "Air France"},
				"flight_number":     "AF7",
				"departure_time":    "2026-12-01T08:00",
				"arrival_time":      "2026-12-01T20:00",
				"duration":          "7h",
				"price":             map[string]any{"amount": 450.5},
			},
			map[string]any{},
		},
	})
	s := NewFlightSearcher(req, testValidator(), "EUR")

	q := futureQuery()
	q.Passengers = 2
	res, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, res.Options, 2)

	assert.Equal(t, travelkit.TransportOption{
		Provider:   "Air France",
		Identifier: "AF7",
		Departure:  "2026-12-01T08:00",
		Arrival:    "2026-12-01T20:00",
		Duration:   "7h",
		Price:      "450.5",
	}, res.Options[0])
	assert.Equal(t, travelkit.TransportOption{
		Provider:   "Unknown",
		Identifier: "N/A",
		Departure:  "N/A",
		Arrival:    "N/A",
		Duration:   "N/A",
		Price:      "Contact for pricing",
	}, res.Options[1])

	call := req.Last()
	assert.Equal(t, config.FamilyFlight, call.Family)
	assert.Equal(t, "search-one-way", call.Endpoint)
	assert.Equal(t, "NYC", call.Params.Get("from"))
	assert.Equal(t, "PAR", call.Params.Get("to"))
	assert.Equal(t, "2026-12-01", call.Params.Get("date"))
	assert.Equal(t, "2", call.Params.Get("adults"))
	assert.Equal(t, "EUR", call.Params.Get("currency"))
}

func TestFlightSearcher_NormalizesDateForProvider(t *testing.T) {
	req := gatewaytest.New(map[string]any{"data": []any{map[string]any{}}})
	s := NewFlightSearcher(req, testValidator(), "")

	q := futureQuery()
	q.Date = "December 1, 2026"
	_, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "2026-12-01", req.Last().Params.Get("date"))
	assert.Equal(t, "USD", req.Last().Params.Get("currency"))
}

func TestFlightSearcher_AccessDenied(t *testing.T) {
	req := gatewaytest.Failing(
		travelkit.NewError(travelkit.KindTransportFailure, "API request failed: Forbidden").WithStatus(403),
	)
	s := NewFlightSearcher(req, testValidator(), "USD")

	_, err := s.Search(context.Background(), travelkit.SearchQuery{
		Origin: "NYC", Destination: "PAR", Date: "2026-12-01",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, travelkit.ErrAccessDenied)
	assert.Contains(t, err.Error(), "credentials")
	assert.Equal(t, 403, travelkit.AsError(err).StatusCode)
}

func TestSearchers_GatewayErrorsPropagate(t *testing.T) {
	failure := travelkit.NewError(travelkit.KindTransportFailure, "API request failed: Bad Gateway").WithStatus(502)

	tests := []struct {
		name     string
		searcher func(*gatewaytest.Requester) Searcher
	}{
		{name: "flight", searcher: func(r *gatewaytest.Requester) Searcher {
			return NewFlightSearcher(r, testValidator(), "USD")
		}},
		{name: "bus", searcher: func(r *gatewaytest.Requester) Searcher {
			return NewConnectionSearcher(travelkit.TransportBus, r, testValidator(), 10)
		}},
		{name: "train", searcher: func(r *gatewaytest.Requester) Searcher {
			return NewConnectionSearcher(travelkit.TransportTrain, r, testValidator(), 10)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := gatewaytest.Failing(failure)
			_, err := tt.searcher(req).Search(context.Background(), futureQuery())
			assert.Same(t, failure, travelkit.AsError(err))
			assert.Equal(t, 1, req.Count())
		})
	}
}

func TestSearchers_DateRejectedBeforeNetwork(t *testing.T) {
	type expected struct {
		kind travelkit.ErrorKind
	}

	tests := []struct {
		name     string
		mode     travelkit.TransportType
		date     string
		expected expected
	}{
		{name: "flight past", mode: travelkit.TransportFlight, date: "2020-01-01", expected: expected{kind: travelkit.KindPastDate}},
		{name: "bus past", mode: travelkit.TransportBus, date: "2026-10-13", expected: expected{kind: travelkit.KindPastDate}},
		{name: "train past", mode: travelkit.TransportTrain, date: "2020-01-01", expected: expected{kind: travelkit.KindPastDate}},
		{name: "train garbage", mode: travelkit.TransportTrain, date: "not a date", expected: expected{kind: travelkit.KindInvalidFormat}},
		{name: "flight empty", mode: travelkit.TransportFlight, date: "", expected: expected{kind: travelkit.KindInvalidFormat}},
		{name: "cab past", mode: travelkit.TransportCab, date: "2020-01-01", expected: expected{kind: travelkit.KindPastDate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := gatewaytest.New(map[string]any{})
			router := NewRouter(req, config.Default(), travelkit.NewMockTimeProvider(testNow))

			_, err := router.Search(context.Background(), tt.mode, travelkit.SearchQuery{
				Origin: "X", Destination: "Y", Date: tt.date,
			})
			require.Error(t, err)
			assert.Equal(t, tt.expected.kind, travelkit.KindOf(err))
			assert.Equal(t, 0, req.Count())
		})
	}
}

func TestSearchers_TodayIsAccepted(t *testing.T) {
	req := gatewaytest.New(map[string]any{"connections": []any{map[string]any{}}})
	s := NewConnectionSearcher(travelkit.TransportBus, req, testValidator(), 10)

	q := futureQuery()
	q.Date = "2026-10-14"
	res, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, res.Options, 1)
}

func TestSearchers_MissingLocation(t *testing.T) {
	req := gatewaytest.New(map[string]any{})
	s := NewFlightSearcher(req, testValidator(), "USD")

	_, err := s.Search(context.Background(), travelkit.SearchQuery{Destination: "PAR", Date: "2026-12-01"})
	assert.ErrorIs(t, err, travelkit.ErrValidationFailure)
	assert.Equal(t, "origin", travelkit.AsError(err).Field)
	assert.Equal(t, 0, req.Count())
}

func TestSearchers_NoResults(t *testing.T) {
	type expected struct {
		message string
	}

	tests := []struct {
		name     string
		mode     travelkit.TransportType
		body     map[string]any
		expected expected
	}{
		{name: "flight empty list", mode: travelkit.TransportFlight, body: map[string]any{"data": []any{}}, expected: expected{message: "No flights found for this route"}},
		{name: "flight missing key", mode: travelkit.TransportFlight, body: map[string]any{}, expected: expected{message: "No flights found for this route"}},
		{name: "bus", mode: travelkit.TransportBus, body: map[string]any{"connections": []any{}}, expected: expected{message: "No buses found"}},
		{name: "train", mode: travelkit.TransportTrain, body: map[string]any{"connections": nil}, expected: expected{message: "No trains found"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(gatewaytest.New(tt.body), config.Default(), travelkit.NewMockTimeProvider(testNow))
			res, err := router.Search(context.Background(), tt.mode, futureQuery())
			assert.Nil(t, res)
			assert.ErrorIs(t, err, travelkit.ErrNoResultsFound)
			assert.Equal(t, tt.expected.message, err.Error())
		})
	}
}

func TestConnectionSearcher_MapsRows(t *testing.T) {
	body := map[string]any{
		"connections": []any{
			map[string]any{
				"id":       "IC-2041",
				"from":     map[string]any{"departure": "09:00"},
				"to":       map[string]any{"arrival": "13:00"},
				"duration": "04:00",
				"products": []any{"ICE 71"},
				"price":    49.0,
			},
			map[string]any{
				"products": []any{},
			},
		},
	}

	t.Run("train", func(t *testing.T) {
		req := gatewaytest.New(body)
		s := NewConnectionSearcher(travelkit.TransportTrain, req, testValidator(), 5)

		res, err := s.Search(context.Background(), futureQuery())
		require.NoError(t, err)
		require.Len(t, res.Options, 2)
		assert.Equal(t, travelkit.TransportOption{
			Provider: "ICE 71", Identifier: "IC-2041", Departure: "09:00", Arrival: "13:00", Duration: "04:00", Price: "49",
		}, res.Options[0])
		assert.Equal(t, travelkit.TransportOption{
			Provider: "Unknown", Identifier: "TRAIN002", Departure: "N/A", Arrival: "N/A", Duration: "N/A", Price: "Varies by class",
		}, res.Options[1])

		call := req.Last()
		assert.Equal(t, config.FamilyTransport, call.Family)
		assert.Equal(t, "connections", call.Endpoint)
		assert.Equal(t, "train", call.Params.Get("transport_types"))
		assert.Equal(t, "5", call.Params.Get("limit"))
	})

	t.Run("bus", func(t *testing.T) {
		req := gatewaytest.New(body)
		s := NewConnectionSearcher(travelkit.TransportBus, req, testValidator(), 0)

		res, err := s.Search(context.Background(), futureQuery())
		require.NoError(t, err)
		assert.Equal(t, "N/A", res.Options[1].Price)
		assert.Equal(t, "BUS002", res.Options[1].Identifier)
		assert.Equal(t, "bus", req.Last().Params.Get("transport_types"))
		assert.Equal(t, "10", req.Last().Params.Get("limit"))
	})
}

func TestSearchers_RowCountMatchesProvider(t *testing.T) {
	for _, n := range []int{1, 2, 7, 25} {
		t.Run(fmt.Sprintf("%d entries", n), func(t *testing.T) {
			flights := make([]any, n)
			connections := make([]any, n)
			for i := range flights {
				flights[i] = map[string]any{"flight_number": fmt.Sprintf("F%d", i)}
				connections[i] = map[string]any{"duration": fmt.Sprintf("%dh", i)}
			}
			req := gatewaytest.New(map[string]any{"data": flights, "connections": connections})
			router := NewRouter(req, config.Default(), travelkit.NewMockTimeProvider(testNow))

			for _, mode := range []travelkit.TransportType{travelkit.TransportFlight, travelkit.TransportBus, travelkit.TransportTrain} {
				res, err := router.Search(context.Background(), mode, futureQuery())
				require.NoError(t, err)
				rows := res.Rows()
				require.Len(t, rows, n)
				for _, row := range rows {
					assert.Len(t, row, len(res.Columns()))
					for _, cell := range row {
						assert.NotEmpty(t, cell)
					}
				}
			}
		})
	}
}

func TestSearchers_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		mode travelkit.TransportType
		body map[string]any
	}{
		{name: "flight data not a list", mode: travelkit.TransportFlight, body: map[string]any{"data": "oops"}},
		{name: "bus entry not an object", mode: travelkit.TransportBus, body: map[string]any{"connections": []any{"x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(gatewaytest.New(tt.body), config.Default(), travelkit.NewMockTimeProvider(testNow))
			res, err := router.Search(context.Background(), tt.mode, futureQuery())
			assert.Nil(t, res)
			assert.ErrorIs(t, err, travelkit.ErrTransportFailure)
		})
	}
}

func TestSearchers_PanicBecomesSystemError(t *testing.T) {
	req := &gatewaytest.Requester{Handler: func(gatewaytest.Call) gatewaytest.Response {
		panic("provider exploded")
	}}
	s := NewConnectionSearcher(travelkit.TransportTrain, req, testValidator(), 10)

	res, err := s.Search(context.Background(), futureQuery())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, travelkit.ErrSystemError)
	assert.Contains(t, err.Error(), "Error processing trains")
}

func TestCabSearcher(t *testing.T) {
	req := gatewaytest.New(map[string]any{})
	router := NewRouter(req, config.Default(), travelkit.NewMockTimeProvider(testNow))

	for _, q := range []travelkit.SearchQuery{
		{Origin: "Airport", Destination: "Downtown"},
		{Origin: "A", Destination: "B", Date: "2026-11-01"},
		{},
	} {
		res, err := router.Search(context.Background(), travelkit.TransportCab, q)
		require.NoError(t, err)
		require.Len(t, res.Options, 2)
		assert.Equal(t, "City Cabs", res.Options[0].Provider)
		assert.Equal(t, "Premium Taxis", res.Options[1].Provider)
		assert.Equal(t, "SUV", res.Options[1].VehicleType)
	}
	assert.Equal(t, 0, req.Count())

	// Callers get a copy of the fixed offers.
	res, _ := router.Search(context.Background(), travelkit.TransportCab, travelkit.SearchQuery{})
	res.Options[0].Provider = "changed"
	again, _ := router.Search(context.Background(), travelkit.TransportCab, travelkit.SearchQuery{})
	assert.Equal(t, "City Cabs", again.Options[0].Provider)
}

type fixedSearcher struct {
	mode travelkit.TransportType
}

func (f fixedSearcher) Mode() travelkit.TransportType { return f.mode }

func (f fixedSearcher) Search(context.Context, travelkit.SearchQuery) (*travelkit.SearchResult, error) {
	return &travelkit.SearchResult{Mode: f.mode, Options: []travelkit.TransportOption{{Provider: "Real Cabs"}}}, nil
}

func TestRouter_RegisterReplaces(t *testing.T) {
	router := NewRouter(gatewaytest.New(nil), config.Default(), travelkit.NewMockTimeProvider(testNow))
	router.Register(fixedSearcher{mode: travelkit.TransportCab})

	res, err := router.Search(context.Background(), travelkit.TransportCab, travelkit.SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Real Cabs", res.Options[0].Provider)

	_, err = router.Search(context.Background(), travelkit.TransportType("boat"), travelkit.SearchQuery{})
	assert.ErrorIs(t, err, travelkit.ErrValidationFailure)
}

func TestNewConnectionSearcher_RejectsOtherModes(t *testing.T) {
	assert.Panics(t, func() {
		NewConnectionSearcher(travelkit.TransportFlight, gatewaytest.New(nil), testValidator(), 10)
	})
}
