// Package booking manages the booking lifecycle: local synthesis of confirmed bookings,
// provider-backed cancellation and status lookup.
//
// Booking ids follow IDPattern. Cancel and Status check the pattern before any outbound call,
// so a malformed id never costs a network round trip.
//
//	m := booking.NewManager(gw, clock)
//	b, err := m.Book(ctx, booking.BookRequest{
//	    TransportType: "flight",
//	    OptionID:      "OPT1234",
//	    Passenger:     booking.Passenger{Name: "A", Contact: "555"},
//	})
//	// b.ID == "flight-OPT1-20250530"
package booking

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/config"
	"github.com/rickchristie/travelkit/gateway"
)

const (
	msgInvalidID       = "Invalid booking ID format"
	msgCancelFailed    = "Failed to cancel booking"
	defaultRefundState = "pending"
)

// Booking is a confirmed reservation.
type Booking struct {
	ID string `json:"booking_id" yaml:"booking_id"`

	// Reference is unique per booking. Two bookings of the same option on the same day
	// share an ID but never a Reference.
	Reference string `json:"reference" yaml:"reference"`

	TransportType travelkit.TransportType `json:"transport_type" yaml:"transport_type"`
	OptionID      string                  `json:"option_id" yaml:"option_id"`
	Passenger     Passenger               `json:"passenger" yaml:"passenger"`
	Payment       map[string]any          `json:"payment,omitempty" yaml:"payment,omitempty"`
	Status        Status                  `json:"status" yaml:"status"`
	CreatedAt     time.Time               `json:"booking_time" yaml:"booking_time"`
}

func (b *Booking) transition(next Status) error {
	if !b.Status.CanTransition(next) {
		return travelkit.NewError(
			travelkit.KindSystemError,
			"Booking %s cannot move from %s to %s", b.ID, b.Status, next,
		)
	}
	b.Status = next
	return nil
}

// BookRequest is the input of Manager.Book.
type BookRequest struct {
	TransportType string
	OptionID      string
	Passenger     Passenger

	// Payment is accepted and echoed masked. Nothing is charged.
	Payment map[string]any
}

// Cancellation is the outcome of a successful cancel.
type Cancellation struct {
	BookingID        string    `json:"booking_id" yaml:"booking_id"`
	CancellationTime time.Time `json:"cancellation_time" yaml:"cancellation_time"`
	Reason           string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	RefundStatus     string    `json:"refund_status" yaml:"refund_status"`
	RefundAmount     any       `json:"refund_amount" yaml:"refund_amount"`
}

// Details is a provider-side view of a booking.
type Details struct {
	BookingID      string         `json:"booking_id" yaml:"booking_id"`
	Status         any            `json:"status" yaml:"status"`
	TransportType  any            `json:"transport_type" yaml:"transport_type"`
	Passenger      any            `json:"passenger" yaml:"passenger"`
	BookingTime    any            `json:"booking_time" yaml:"booking_time"`
	JourneyDetails any            `json:"journey_details" yaml:"journey_details"`
	Raw            map[string]any `json:"-" yaml:"-"`
}

// Manager runs booking operations. It keeps no state between calls.
type Manager struct {
	req          gateway.Requester
	clock        travelkit.TimeProvider
	strictStatus bool
	reference    func() string
}

// Option customizes a Manager.
type Option func(*Manager)

// WithStrictStatusLookup toggles the id format check on Status. It is on by default.
func WithStrictStatusLookup(strict bool) Option {
	return func(m *Manager) {
		m.strictStatus = strict
	}
}

// WithReferenceGenerator replaces the UUID generator of Booking.Reference.
func WithReferenceGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.reference = fn
	}
}

// NewManager creates a Manager. Cancel and Status go through req; a nil clock uses the
// system clock.
func NewManager(req gateway.Requester, clock travelkit.TimeProvider, opts ...Option) *Manager {
	if clock == nil {
		clock = travelkit.NewDefaultTimeProvider()
	}
	m := &Manager{
		req:          req,
		clock:        clock,
		strictStatus: true,
		reference:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Book validates req and returns a confirmed booking. No provider is contacted.
func (m *Manager) Book(_ context.Context, req BookRequest) (b *Booking, err error) {
	defer recoverAs("Booking failed", &err)

	mode, err := travelkit.ParseTransportType(req.TransportType)
	if err != nil {
		return nil, err
	}
	if err := req.Passenger.Validate(); err != nil {
		return nil, err
	}

	now := m.clock.Now()
	id, err := NewID(mode, req.OptionID, now)
	if err != nil {
		return nil, err
	}

	b = &Booking{
		ID:            id,
		Reference:     m.reference(),
		TransportType: mode,
		OptionID:      req.OptionID,
		Passenger:     req.Passenger,
		Payment:       MaskPayment(req.Payment),
		Status:        StatusPending,
		CreatedAt:     now,
	}
	if err := b.transition(StatusConfirmed); err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel asks the provider to cancel id. A provider status other than "cancelled" fails with
// ProviderRejected carrying the provider payload as details.
func (m *Manager) Cancel(ctx context.Context, id, reason string) (c *Cancellation, err error) {
	defer recoverAs("Cancellation failed", &err)

	if !ValidID(id) {
		return nil, malformedID(id)
	}

	now := m.clock.Now()
	payload := map[string]any{
		"booking_id":        id,
		"cancellation_time": now.Format(time.RFC3339),
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		payload["reason"] = reason
	}

	result, err := m.req.Post(ctx, config.FamilyBooking, "bookings/"+url.PathEscape(id)+"/cancel", payload)
	if err != nil {
		return nil, err
	}

	if status, _ := result["status"].(string); status != string(StatusCancelled) {
		return nil, travelkit.NewError(travelkit.KindProviderRejected, msgCancelFailed).WithDetails(result)
	}

	refund, _ := result["refund_status"].(string)
	if refund == "" {
		refund = defaultRefundState
	}
	return &Cancellation{
		BookingID:        id,
		CancellationTime: now,
		Reason:           reason,
		RefundStatus:     refund,
		RefundAmount:     result["refund_amount"],
	}, nil
}

// Status reads the provider's view of id.
func (m *Manager) Status(ctx context.Context, id string) (d *Details, err error) {
	defer recoverAs("Failed to get booking status", &err)

	if m.strictStatus && !ValidID(id) {
		return nil, malformedID(id)
	}
	if strings.TrimSpace(id) == "" {
		return nil, travelkit.ValidationError("booking_id", "Missing booking id")
	}

	result, err := m.req.Get(ctx, config.FamilyBooking, "bookings/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return &Details{
		BookingID:      id,
		Status:         result["status"],
		TransportType:  result["transport_type"],
		Passenger:      result["passenger"],
		BookingTime:    result["booking_time"],
		JourneyDetails: result["journey_details"],
		Raw:            result,
	}, nil
}

func malformedID(id string) error {
	return travelkit.NewError(travelkit.KindMalformedBookingID, msgInvalidID).
		WithDetails(map[string]any{"booking_id": id, "expected": IDPattern})
}

func recoverAs(prefix string, err *error) {
	if r := recover(); r != nil {
		*err = travelkit.NewError(travelkit.KindSystemError, "%s: %v", prefix, r).
			WithCause(fmt.Errorf("panic: %v", r))
	}
}
