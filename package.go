// Package travelkit is the tool layer of a travel-planning assistant: the operations an LLM
// agent calls to search and book flights, buses, trains and cabs.
//
// # Layout
//
//   - travelkit: shared types ([TransportType], [SearchQuery], [TransportOption]), the typed
//     error taxonomy ([Error], [ErrorKind]), the tagged [Result], the clock ([TimeProvider]) and
//     the tool contract ([Tool], [ToolFunc])
//   - dates: parses loosely formatted dates and rejects past ones
//   - config: explicit configuration with named missing-key errors
//   - gateway: outbound provider calls with timeout, backoff and uniform errors
//   - transport: one search adapter per mode, normalizing provider JSON into rows
//   - booking: booking id generation, passenger validation, cancellation and status lookup
//   - tools: the named tool surface handed to the agent
//   - loggers: YAML call logging hooks
//   - agent, server, cmd/travelkit: callers of the tool surface
//
// # Quick Start
//
//	cfg, err := config.Load(config.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	gw := gateway.New(cfg)
//	clock := travelkit.NewDefaultTimeProvider()
//
//	reg := tools.NewTravelRegistry(tools.Services{
//	    Searchers: transport.NewRouter(gw, cfg, clock),
//	    Bookings:  booking.NewManager(gw, clock, booking.WithStrictStatusLookup(cfg.StrictStatusLookup)),
//	})
//
//	res := reg.Call(ctx, "search_flights", map[string]any{
//	    "origin": "NYC", "destination": "PAR", "date": "2025-05-30",
//	})
//	fmt.Println(res.Status, res.Message)
//
// # Errors
//
// Every operation returns an [*Error] instead of panicking. Branch on its Kind, or use
// errors.Is with the sentinels:
//
//	if errors.Is(err, travelkit.ErrPastDate) {
//	    // ask the user for another date
//	}
//
// The tools package renders errors as readable strings, so an agent can relay them or retry
// with corrected arguments.
package travelkit
