package transport

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/config"
	"github.com/rickchristie/travelkit/dates"
	"github.com/rickchristie/travelkit/gateway"
)

const (
	connectionEndpoint = "connections"
	fallbackOperator   = "Unknown"
	fallbackTrainPrice = "Varies by class"
	defaultLimit       = 10
)

// ConnectionSearcher searches bus or train connections on the transport provider family.
type ConnectionSearcher struct {
	mode  travelkit.TransportType
	req   gateway.Requester
	dates *dates.Validator
	limit int
}

// NewConnectionSearcher creates a searcher for mode, which must be bus or train.
func NewConnectionSearcher(
	mode travelkit.TransportType,
	req gateway.Requester,
	v *dates.Validator,
	limit int,
) *ConnectionSearcher {
	if mode != travelkit.TransportBus && mode != travelkit.TransportTrain {
		panic(fmt.Sprintf("transport: connection searcher does not serve %q", mode))
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return &ConnectionSearcher{mode: mode, req: req, dates: v, limit: limit}
}

// Mode returns the bus or train mode the searcher was built for.
func (s *ConnectionSearcher) Mode() travelkit.TransportType { return s.mode }

// Search validates q and queries the connections endpoint filtered to the searcher's mode.
func (s *ConnectionSearcher) Search(
	ctx context.Context,
	q travelkit.SearchQuery,
) (result *travelkit.SearchResult, err error) {
	defer recoverMapping(s.mode, &err)

	day, err := prepare(s.dates, q)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("from", q.Origin)
	params.Set("to", q.Destination)
	params.Set("date", day)
	params.Set("transport_types", string(s.mode))
	params.Set("limit", strconv.Itoa(s.limit))

	payload, err := s.req.Get(ctx, config.FamilyTransport, connectionEndpoint, params)
	if err != nil {
		return nil, err
	}

	connections, err := items(payload, "connections")
	if err != nil {
		return nil, err
	}
	if len(connections) == 0 {
		return nil, travelkit.NewError(travelkit.KindNoResultsFound, "No %s found", plural(s.mode))
	}

	result = &travelkit.SearchResult{
		Mode:    s.mode,
		Options: make([]travelkit.TransportOption, 0, len(connections)),
	}
	for i, c := range connections {
		price := fallbackField
		if s.mode == travelkit.TransportTrain {
			price = fallbackTrainPrice
		}
		result.Options = append(result.Options, travelkit.TransportOption{
			Provider:   text(c, fallbackOperator, "products", "0"),
			Identifier: text(c, s.positionalID(i), "id"),
			Departure:  text(c, fallbackField, "from", "departure"),
			Arrival:    text(c, fallbackField, "to", "arrival"),
			Duration:   text(c, fallbackField, "duration"),
			Price:      text(c, price, "price"),
		})
	}
	return result, nil
}

// positionalID names a connection the provider gave no id, e.g. BUS001.
func (s *ConnectionSearcher) positionalID(i int) string {
	return fmt.Sprintf("%s%03d", strings.ToUpper(string(s.mode)), i+1)
}

var _ Searcher = (*ConnectionSearcher)(nil)
