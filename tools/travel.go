package tools

import (
	"context"
	"strings"
	"time"

	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/booking"
	"github.com/rickchristie/travelkit/schema"
)

// Tool names. Agents bind to these; they must not change.
const (
	SearchFlights    = "search_flights"
	SearchBuses      = "search_buses"
	SearchTrains     = "search_trains"
	SearchCabs       = "search_cabs"
	BookTransport    = "book_transport"
	CancelBooking    = "cancel_booking"
	GetBookingStatus = "get_booking_status"
)

// Searcher runs a search for one mode. transport.Router implements it.
type Searcher interface {
	Search(ctx context.Context, mode travelkit.TransportType, q travelkit.SearchQuery) (*travelkit.SearchResult, error)
}

// Bookings runs booking operations. booking.Manager implements it.
type Bookings interface {
	Book(ctx context.Context, req booking.BookRequest) (*booking.Booking, error)
	Cancel(ctx context.Context, id, reason string) (*booking.Cancellation, error)
	Status(ctx context.Context, id string) (*booking.Details, error)
}

// Services are the backends of the travel tools.
type Services struct {
	Searchers Searcher
	Bookings  Bookings
}

// SearchInput is the argument shape of every search tool.
type SearchInput struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
	Passengers  int    `json:"passengers,omitempty"`
}

func (in SearchInput) query() travelkit.SearchQuery {
	return travelkit.SearchQuery{
		Origin:      in.Origin,
		Destination: in.Destination,
		Date:        in.Date,
		Passengers:  in.Passengers,
	}
}

// BookInput is the argument shape of book_transport.
type BookInput struct {
	TransportType    string         `json:"transport_type"`
	OptionID         string         `json:"option_id"`
	PassengerDetails map[string]any `json:"passenger_details"`
	PaymentDetails   map[string]any `json:"payment_details,omitempty"`
}

// CancelInput is the argument shape of cancel_booking.
type CancelInput struct {
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason,omitempty"`
}

// StatusInput is the argument shape of get_booking_status.
type StatusInput struct {
	BookingID string `json:"booking_id"`
}

func searchParams(dateRequired bool, withPassengers bool) map[string]any {
	props := map[string]*schema.Property{
		"origin":      schema.String("Departure city, station or airport code"),
		"destination": schema.String("Arrival city, station or airport code"),
		"date":        schema.String("Travel date, YYYY-MM-DD. Must not be in the past"),
	}
	if withPassengers {
		props["passengers"] = schema.Integer("Number of adult passengers").Min(1).Max(9).Default(1)
	}
	required := []string{"origin", "destination"}
	if dateRequired {
		required = append(required, "date")
	}
	return schema.Object(props, required...)
}

func bookParams() map[string]any {
	// No enum: mode names are matched case-insensitively by travelkit.ParseTransportType.
	types := make([]string, len(travelkit.TransportTypes))
	for i, t := range travelkit.TransportTypes {
		types[i] = string(t)
	}
	return schema.Object(map[string]*schema.Property{
		"transport_type": schema.String("Mode of the selected option, one of " + strings.Join(types, ", ")),
		"option_id":      schema.String("Identifier of the selected option from a search result (flight_no or option_id)"),
		"passenger_details": schema.Nested("Passenger details. name and contact are required", map[string]*schema.Property{
			"name":    schema.String("Passenger full name"),
			"contact": schema.String("Passenger phone number"),
			"email":   schema.String("Passenger email"),
		}).AdditionalProperties(true),
		"payment_details": schema.Nested("Optional payment details. Nothing is charged", nil).AdditionalProperties(true),
	}, "transport_type", "option_id", "passenger_details")
}

func bookingIDParam() *schema.Property {
	return schema.String("Booking id, e.g. flight-OPT1-20250530")
}

// NewTravelRegistry builds a Registry with the seven travel tools.
func NewTravelRegistry(svc Services) *Registry {
	r := NewRegistry()

	search := func(mode travelkit.TransportType) func(context.Context, SearchInput) (*CallResult, error) {
		return func(ctx context.Context, in SearchInput) (*CallResult, error) {
			res, err := svc.Searchers.Search(ctx, mode, in.query())
			if err != nil {
				return nil, err
			}
			return SearchTable(res), nil
		}
	}

	r.MustRegister(travelkit.NewToolFunc(
		SearchFlights,
		"Search one-way flights between two places on a date. Returns airline, flight number, times, duration and price.",
		searchParams(true, true),
		search(travelkit.TransportFlight),
	))
	r.MustRegister(travelkit.NewToolFunc(
		SearchBuses,
		"Search bus connections between two places on a date.",
		searchParams(true, false),
		search(travelkit.TransportBus),
	))
	r.MustRegister(travelkit.NewToolFunc(
		SearchTrains,
		"Search train connections between two places on a date.",
		searchParams(true, false),
		search(travelkit.TransportTrain),
	))
	r.MustRegister(travelkit.NewToolFunc(
		SearchCabs,
		"Search cab options between two places. The date is optional.",
		searchParams(false, false),
		search(travelkit.TransportCab),
	))

	r.MustRegister(travelkit.NewToolFunc(
		BookTransport,
		"Book a transport option found by a search. Requires passenger name and contact.",
		bookParams(),
		func(ctx context.Context, in BookInput) (*CallResult, error) {
			b, err := svc.Bookings.Book(ctx, booking.BookRequest{
				TransportType: in.TransportType,
				OptionID:      in.OptionID,
				Passenger:     booking.PassengerFromMap(in.PassengerDetails),
				Payment:       in.PaymentDetails,
			})
			if err != nil {
				return nil, err
			}
			details := map[string]any{
				"reference":      b.Reference,
				"transport_type": string(b.TransportType),
				"option_id":      b.OptionID,
				"passenger":      b.Passenger.Map(),
				"booking_time":   b.CreatedAt.Format(time.RFC3339),
				"status":         string(b.Status),
			}
			if b.Payment != nil {
				details["payment"] = b.Payment
			}
			return &CallResult{
				Status:    StatusSuccess,
				Message:   "Booking confirmed",
				BookingID: b.ID,
				Details:   details,
			}, nil
		},
	))

	r.MustRegister(travelkit.NewToolFunc(
		CancelBooking,
		"Cancel a booking by booking id, optionally giving a reason.",
		schema.Object(map[string]*schema.Property{
			"booking_id": bookingIDParam(),
			"reason":     schema.String("Reason for cancelling"),
		}, "booking_id"),
		func(ctx context.Context, in CancelInput) (*CallResult, error) {
			c, err := svc.Bookings.Cancel(ctx, in.BookingID, in.Reason)
			if err != nil {
				return nil, err
			}
			details := map[string]any{
				"booking_id":        c.BookingID,
				"cancellation_time": c.CancellationTime.Format(time.RFC3339),
				"refund_status":     c.RefundStatus,
				"refund_amount":     c.RefundAmount,
			}
			if c.Reason != "" {
				details["reason"] = c.Reason
			}
			return &CallResult{
				Status:    StatusSuccess,
				Message:   "Booking cancelled successfully",
				BookingID: c.BookingID,
				Details:   details,
			}, nil
		},
	))

	r.MustRegister(travelkit.NewToolFunc(
		GetBookingStatus,
		"Look up the current status of a booking by booking id.",
		schema.Object(map[string]*schema.Property{
			"booking_id": bookingIDParam(),
		}, "booking_id"),
		func(ctx context.Context, in StatusInput) (*CallResult, error) {
			d, err := svc.Bookings.Status(ctx, in.BookingID)
			if err != nil {
				return nil, err
			}
			return &CallResult{
				Status:    StatusSuccess,
				BookingID: d.BookingID,
				Details: map[string]any{
					"status":          d.Status,
					"transport_type":  d.TransportType,
					"passenger":       d.Passenger,
					"booking_time":    d.BookingTime,
					"journey_details": d.JourneyDetails,
				},
			}, nil
		},
	))

	return r
}
