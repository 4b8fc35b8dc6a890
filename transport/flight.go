package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/config"
	"github.com/rickchristie/travelkit/dates"
	"github.com/rickchristie/travelkit/gateway"
)

const (
	flightEndpoint   = "search-one-way"
	msgNoFlights     = "No flights found for this route"
	msgAccessDenied  = "API access denied. Please check your API credentials and subscription."
	fallbackAirline  = "Unknown"
	fallbackField    = "N/A"
	fallbackFlightPx = "Contact for pricing"
)

// FlightSearcher searches one-way flights on the flight provider family.
type FlightSearcher struct {
	req      gateway.Requester
	dates    *dates.Validator
	currency string
}

// NewFlightSearcher creates a FlightSearcher quoting prices in currency.
func NewFlightSearcher(req gateway.Requester, v *dates.Validator, currency string) *FlightSearcher {
	if currency == "" {
		currency = "USD"
	}
	return &FlightSearcher{req: req, dates: v, currency: currency}
}

// Mode returns TransportFlight.
func (s *FlightSearcher) Mode() travelkit.TransportType { return travelkit.TransportFlight }

// Search validates q and queries the one-way flight endpoint for its date.
func (s *FlightSearcher) Search(
	ctx context.Context,
	q travelkit.SearchQuery,
) (result *travelkit.SearchResult, err error) {
	defer recoverMapping(travelkit.TransportFlight, &err)

	day, err := prepare(s.dates, q)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("from", q.Origin)
	params.Set("to", q.Destination)
	params.Set("date", day)
	params.Set("adults", strconv.Itoa(q.PassengerCount()))
	params.Set("currency", s.currency)

	payload, err := s.req.Get(ctx, config.FamilyFlight, flightEndpoint, params)
	if err != nil {
		var te *travelkit.Error
		if errors.As(err, &te) && te.StatusCode == http.StatusForbidden {
			return nil, travelkit.NewError(travelkit.KindAccessDenied, msgAccessDenied).
				WithStatus(http.StatusForbidden).
				WithCause(err)
		}
		return nil, err
	}

	flights, err := items(payload, "data")
	if err != nil {
		return nil, err
	}
	if len(flights) == 0 {
		return nil, travelkit.NewError(travelkit.KindNoResultsFound, msgNoFlights)
	}

	result = &travelkit.SearchResult{
		Mode:    travelkit.TransportFlight,
		Options: make([]travelkit.TransportOption, 0, len(flights)),
	}
	for _, f := range flights {
		result.Options = append(result.Options, travelkit.TransportOption{
			Provider:   text(f, fallbackAirline, "operating_carrier", "display_name"),
			Identifier: text(f, fallbackField, "flight_number"),
			Departure:  text(f, fallbackField, "departure_time"),
			Arrival:    text(f, fallbackField, "arrival_time"),
			Duration:   text(f, fallbackField, "duration"),
			Price:      text(f, fallbackFlightPx, "price", "amount"),
		})
	}
	return result, nil
}

var _ Searcher = (*FlightSearcher)(nil)
