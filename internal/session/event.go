package session

import "gamble3000/internal/game/slot"

// EventKind identifies what a session reports to its Output.
type EventKind int

const (
	EventStarted   EventKind = iota // Session opened with the starting balance
	EventRejected                   // Bet refused; Err says why
	EventSpin                       // A spin settled
	EventCashedOut                  // Player left voluntarily
	EventWashedOut                  // Balance fell below the minimum bet
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventRejected:
		return "rejected"
	case EventSpin:
		return "spin"
	case EventCashedOut:
		return "cashed_out"
	case EventWashedOut:
		return "washed_out"
	default:
		return "unknown"
	}
}

// Event is one observable step of a session. Balance is always the balance
// after the step.
type Event struct {
	Kind    EventKind
	Err     error // EventRejected only
	Bet     int64
	Line    slot.Line
	Outcome slot.Outcome
	Payout  int64
	Balance int64
}

// Output receives session events in order.
type Output interface {
	Emit(ev Event)
}

// OutputFunc adapts a function to Output.
type OutputFunc func(ev Event)

// Emit calls f.
func (f OutputFunc) Emit(ev Event) {
	f(ev)
}
