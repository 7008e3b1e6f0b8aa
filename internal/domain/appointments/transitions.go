package appointments

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var transitions = map[State][]State{
	StateConfirmed: {StateCheckedIn, StateCancelled, StateDidNotAttend},
	StateCheckedIn: {StateScreened, StatePartiallyScreened, StateAttendedNotScreened, StateCancelled},
}

// Terminal states accept no further status records.
func (s State) Terminal() bool {
	_, ok := transitions[s]
	return !ok && s.Valid()
}

// CanTransition reports whether to may follow from.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}
