package booking

// Status is the lifecycle state of a Booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"

	// StatusError marks a failed local outcome. No Booking is ever in this state.
	StatusError Status = "error"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed},
	StatusConfirmed: {StatusCancelled},
}

// CanTransition reports whether a booking in s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
