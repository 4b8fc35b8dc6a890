package travel

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rickchristie/travelkit/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSearchAndBookScenario asks the agent to find a flight and book it. The model must call
// search_flights, then book_transport with an option id taken from the search rows.
func TestSearchAndBookScenario(t *testing.T) {
	if os.Getenv(KeyEnv) == "" {
		t.Skip(KeyEnv + " not set, skipping integration test")
	}

	f, err := NewFixture(os.Stdout)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	date := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	_, err = f.Session.Send(ctx, "Find me a flight from NYC to PAR on "+date+
		" and book the cheapest one for Jane Doe, phone +1 555 0100.")
	require.NoError(t, err)

	searches := f.Calls(tools.SearchFlights)
	require.NotEmpty(t, searches)
	assert.True(t, searches[0].Result.OK())

	bookings := f.Calls(tools.BookTransport)
	require.NotEmpty(t, bookings, "agent never called %s", tools.BookTransport)
	last := bookings[len(bookings)-1]
	assert.True(t, last.Result.OK(), last.Result.Message)
	assert.Regexp(t, `^flight-\w{4}-\d{8}$`, last.Result.BookingID)
}

// TestPastDateScenario asks for a date in the past. The agent must relay the error instead of
// inventing results, and no provider call may be made.
func TestPastDateScenario(t *testing.T) {
	if os.Getenv(KeyEnv) == "" {
		t.Skip(KeyEnv + " not set, skipping integration test")
	}

	f, err := NewFixture(os.Stdout)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	answer, err := f.Session.Send(ctx, "Are there trains from Mumbai to Pune on 2020-01-15?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.Equal(t, 0, f.Provider.Count())
}
