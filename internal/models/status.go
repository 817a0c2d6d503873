package models

// BookingStatus is the persisted state of a booking. WAITING is the only
// initial status; APPROVED and REJECTED are terminal.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// BookingState is the query-time filter for booking listings. CURRENT, PAST
// and FUTURE are evaluated against "now" at call time.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ParseBookingState maps a raw query parameter to a state. Unknown or empty
// values collapse to ALL.
func ParseBookingState(raw string) BookingState {
	switch BookingState(raw) {
	case StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected, StateAll:
		return BookingState(raw)
	default:
		return StateAll
	}
}
