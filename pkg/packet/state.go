package packet

// State is a packet's position in its request/reply round trip.
// States are ordered; a packet never moves to a lower state.
type State int

const (
	StateIdle State = iota
	StateGoing
	StateWaitResult
	StateSuccess
	StateFail
)

// IsTerminal reports whether no further transition is allowed
func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateFail
}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateGoing:
		return "GOING"
	case StateWaitResult:
		return "WAIT_RESULT"
	case StateSuccess:
		return "SUCCESS"
	case StateFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// canMove reports whether current -> next is a legal transition.
// Equal states are handled by the caller as a no-op.
func canMove(current, next State) bool {
	if current.IsTerminal() {
		return false
	}
	return next > current
}
