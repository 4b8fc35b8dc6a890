package travelkit

import (
	"fmt"
	"strings"
)

// TransportType is the mode of travel a search or booking refers to.
type TransportType string

const (
	TransportFlight TransportType = "flight"
	TransportBus    TransportType = "bus"
	TransportTrain  TransportType = "train"
	TransportCab    TransportType = "cab"
)

// TransportTypes lists every supported mode in canonical order.
var TransportTypes = []TransportType{TransportFlight, TransportBus, TransportTrain, TransportCab}

// ParseTransportType parses a mode name, ignoring case and surrounding whitespace.
func ParseTransportType(s string) (TransportType, error) {
	t := TransportType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TransportTypes {
		if t == known {
			return t, nil
		}
	}
	return "", ValidationError("transport_type", "Invalid transport type %q (must be one of flight, bus, train, cab)", s)
}

// SearchQuery is the per-call input of every transport search.
type SearchQuery struct {
	Origin      string
	Destination string
	Date        string
	Passengers  int
}

// PassengerCount returns Passengers, defaulting to 1.
func (q SearchQuery) PassengerCount() int {
	if q.Passengers < 1 {
		return 1
	}
	return q.Passengers
}

// Validate checks that origin and destination are present.
func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Origin) == "" {
		return ValidationError("origin", "Missing origin")
	}
	if strings.TrimSpace(q.Destination) == "" {
		return ValidationError("destination", "Missing destination")
	}
	return nil
}

// TransportOption is one normalized row of a search result.
// Absent provider fields hold a fallback value, never an empty string.
type TransportOption struct {
	Provider   string `json:"provider" yaml:"provider"`
	Identifier string `json:"identifier" yaml:"identifier"`
	Departure  string `json:"departure" yaml:"departure"`
	Arrival    string `json:"arrival" yaml:"arrival"`
	Duration   string `json:"duration" yaml:"duration"`
	Price      string `json:"price" yaml:"price"`

	// Cab rows only.
	VehicleType string `json:"vehicle_type,omitempty" yaml:"vehicle_type,omitempty"`
	ETA         string `json:"eta,omitempty" yaml:"eta,omitempty"`
	Contact     string `json:"contact,omitempty" yaml:"contact,omitempty"`
}

// SearchResult is the success value of a search: a non-empty ordered list of rows.
type SearchResult struct {
	Mode    TransportType     `json:"mode" yaml:"mode"`
	Options []TransportOption `json:"options" yaml:"options"`
}

// Columns returns the column headers shared by every row of the result.
func (r *SearchResult) Columns() []string {
	switch r.Mode {
	case TransportFlight:
		return []string{"airline", "flight_no", "departure", "arrival", "duration", "price"}
	case TransportBus:
		return []string{"option_id", "operator", "departure", "arrival", "duration", "price"}
	case TransportTrain:
		return []string{"option_id", "train_type", "departure", "arrival", "duration", "price"}
	case TransportCab:
		return []string{"option_id", "provider", "vehicle_type", "estimated_price", "eta", "contact"}
	default:
		return []string{"provider", "identifier", "departure", "arrival", "duration", "price"}
	}
}

// Rows returns the result as a table matching Columns.
func (r *SearchResult) Rows() [][]string {
	rows := make([][]string, 0, len(r.Options))
	for _, o := range r.Options {
		var row []string
		switch r.Mode {
		case TransportFlight:
			row = []string{o.Provider, o.Identifier, o.Departure, o.Arrival, o.Duration, o.Price}
		case TransportBus, TransportTrain:
			row = []string{o.Identifier, o.Provider, o.Departure, o.Arrival, o.Duration, o.Price}
		case TransportCab:
			row = []string{o.Identifier, o.Provider, o.VehicleType, o.Price, o.ETA, o.Contact}
		default:
			row = []string{o.Provider, o.Identifier, o.Departure, o.Arrival, o.Duration, o.Price}
		}
		rows = append(rows, row)
	}
	return rows
}

// Records returns each row as a column -> value map, in row order.
func (r *SearchResult) Records() []map[string]string {
	cols := r.Columns()
	rows := r.Rows()
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		rec := make(map[string]string, len(cols))
		for j, c := range cols {
			rec[c] = row[j]
		}
		out[i] = rec
	}
	return out
}

func (r *SearchResult) String() string {
	return fmt.Sprintf("%d %s option(s)", len(r.Options), r.Mode)
}
