package transport

import (
	"context"
	"strings"

	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/dates"
)

// cabOptions is the fixed offer list of the cab stub.
var cabOptions = []travelkit.TransportOption{
	{
		Provider:    "City Cabs",
		Identifier:  "CITYSTD1",
		VehicleType: "Standard",
		Price:       "₹500-600",
		ETA:         "5-10 mins",
		Contact:     "+91 1234567890",
	},
	{
		Provider:    "Premium Taxis",
		Identifier:  "PREMSUV1",
		VehicleType: "SUV",
		Price:       "₹800-1000",
		ETA:         "10-15 mins",
		Contact:     "+91 9876543210",
	},
}

// CabSearcher is a stub with no provider behind it. It returns the same two offers for every
// query. Register a real Searcher for TransportCab on the Router to replace it.
type CabSearcher struct {
	dates *dates.Validator
}

// NewCabSearcher creates a CabSearcher validating optional dates with v.
func NewCabSearcher(v *dates.Validator) *CabSearcher {
	return &CabSearcher{dates: v}
}

// Mode returns TransportCab.
func (s *CabSearcher) Mode() travelkit.TransportType { return travelkit.TransportCab }

// Search ignores origin and destination. The date is optional; when given it must be a
// valid day that is not in the past.
func (s *CabSearcher) Search(
	_ context.Context,
	q travelkit.SearchQuery,
) (*travelkit.SearchResult, error) {
	if strings.TrimSpace(q.Date) != "" {
		if _, err := s.dates.Validate(q.Date); err != nil {
			return nil, err
		}
	}
	options := make([]travelkit.TransportOption, len(cabOptions))
	copy(options, cabOptions)
	return &travelkit.SearchResult{Mode: travelkit.TransportCab, Options: options}, nil
}

var _ Searcher = (*CabSearcher)(nil)
