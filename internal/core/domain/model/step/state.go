package step

import (
	"fmt"

	"custody/internal/pkg/errs"
)

// State represents the lifecycle state of a custody step.
// It implements a state machine with defined transitions to ensure steps
// follow the settlement workflow of one custody hop.
//
// Forward flow:
//
//	Pending ──> Accepted ──> Initialized ──> Committed ──> PickedUp ──>
//	Commenced ──> DroppedOff ──> Fulfilled ──> Claimed ──> Completed
//
// Abort edges leave the flow at Pending/Accepted/Initialized (Cancelled,
// Rejected) and at Initialized/Committed (Refunded). Delegated, Cancelled,
// Rejected, and Refunded are terminal. Completed additionally allows the
// legacy backward edge to Fulfilled.
//
// State is a value object that validates transitions and provides string
// representations for persistence and display.
type State int

const (
	// Unknown represents an invalid or undefined state.
	// This value (0) helps catch uninitialized State values.
	Unknown State = iota

	// Pending is the initial state of every generated step.
	Pending

	// Accepted indicates the operator accepted the hop.
	Accepted

	// Initialized indicates the settlement parameters were placed on chain.
	Initialized

	// Committed indicates the performer committed funds/collateral on chain.
	Committed

	// PickedUp indicates the performer took custody of the parcel.
	PickedUp

	// Commenced indicates the hop is physically underway.
	Commenced

	// DroppedOff indicates the parcel was handed to the next custodian.
	DroppedOff

	// Fulfilled indicates the hop's contractual obligation was met.
	Fulfilled

	// Claimed indicates the performer claimed the settlement payout.
	Claimed

	// Completed indicates the hop is fully settled.
	Completed

	// Delegated indicates custody was handed to a delegate; terminal here.
	Delegated

	// Cancelled indicates the hop was aborted before execution. Terminal.
	Cancelled

	// Rejected indicates the operator refused the hop. Terminal.
	Rejected

	// Refunded indicates committed funds were returned. Terminal.
	Refunded
)

// getStateStrings returns a map of State values to their string representations.
func getStateStrings() map[State]string {
	return map[State]string{
		Unknown:     "Unknown",
		Pending:     "Pending",
		Accepted:    "Accepted",
		Initialized: "Initialized",
		Committed:   "Committed",
		PickedUp:    "PickedUp",
		Commenced:   "Commenced",
		DroppedOff:  "DroppedOff",
		Fulfilled:   "Fulfilled",
		Claimed:     "Claimed",
		Completed:   "Completed",
		Delegated:   "Delegated",
		Cancelled:   "Cancelled",
		Rejected:    "Rejected",
		Refunded:    "Refunded",
	}
}

// StateFromString parses a state name as it appears in message payloads and
// query filters. Returns a ValueIsInvalidError for unrecognized names.
func StateFromString(name string) (State, error) {
	for state, str := range getStateStrings() {
		if state != Unknown && str == name {
			return state, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%q is not a valid state", name))
}

// AllStates returns every valid state in declaration order.
func AllStates() []State {
	states := make([]State, 0, int(Refunded))
	for s := Pending; s <= Refunded; s++ {
		states = append(states, s)
	}
	return states
}

// Validate checks if the State value is valid.
// Unknown (0) and out-of-range values are invalid.
func (s State) Validate() error {
	if s <= Unknown || s > Refunded {
		return errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%d is not a valid state", s))
	}
	return nil
}

// String returns the human-readable name of the state.
// Returns "Unknown" for invalid state values. Implements fmt.Stringer.
func (s State) String() string {
	if str, ok := getStateStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// NextStates returns the set of states reachable from s.
// Terminal states return nil. The Completed -> Fulfilled edge runs backward
// relative to the otherwise forward chain; it is kept exactly as the
// settlement contract observes it.
func (s State) NextStates() []State {
	switch s {
	case Pending:
		return []State{Accepted, Cancelled, Rejected}
	case Accepted:
		return []State{Initialized, Cancelled}
	case Initialized:
		return []State{Committed, Cancelled, Refunded}
	case Committed:
		return []State{PickedUp, Refunded}
	case PickedUp:
		return []State{Commenced}
	case Commenced:
		return []State{DroppedOff}
	case DroppedOff:
		return []State{Fulfilled}
	case Fulfilled:
		return []State{Claimed}
	case Claimed:
		return []State{Completed}
	case Completed:
		return []State{Fulfilled}
	case Delegated, Cancelled, Rejected, Refunded:
		return nil
	case Unknown:
		return nil
	default:
		return nil
	}
}

// CanTransitionTo checks whether target is reachable from s without
// performing the transition.
//
// Returns an InvalidTransitionError when target is not in the allowed set.
func (s State) CanTransitionTo(target State) error {
	if err := target.Validate(); err != nil {
		return errs.NewInvalidTransitionErrorWithCause(s.String(), target.String(), err)
	}

	for _, next := range s.NextStates() {
		if next == target {
			return nil
		}
	}

	return errs.NewInvalidTransitionError(s.String(), target.String())
}

// TransitionTo returns the new state after a validated transition.
//
// Returns (Unknown, InvalidTransitionError) when target is not reachable
// from s; the caller's state is left unchanged.
func (s State) TransitionTo(target State) (State, error) {
	if err := s.CanTransitionTo(target); err != nil {
		return Unknown, err
	}
	return target, nil
}

// IsTerminal reports whether no further transitions are possible from s.
func (s State) IsTerminal() bool {
	return s.Validate() == nil && len(s.NextStates()) == 0
}

// IsTerminalAbort reports whether s aborts the whole shipment
// (Cancelled or Refunded).
func (s State) IsTerminalAbort() bool {
	return s == Cancelled || s == Refunded
}

// IsTerminalFail reports whether s fails the whole shipment (Rejected).
func (s State) IsTerminalFail() bool {
	return s == Rejected
}

// IsCompleted reports whether the hop's obligation is met
// (Completed, Fulfilled, or Claimed).
func (s State) IsCompleted() bool {
	return s == Completed || s == Fulfilled || s == Claimed
}

// IsActive reports whether the parcel is moving on this hop
// (PickedUp, Commenced, DroppedOff, or Delegated).
func (s State) IsActive() bool {
	return s == PickedUp || s == Commenced || s == DroppedOff || s == Delegated
}
