package appointments

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidFilter = errors.New("invalid appointment filter")

// Filter groups appointments by their current state.
type Filter string

const (
	FilterRemaining Filter = "remaining"
	FilterCheckedIn Filter = "checked_in"
	FilterComplete  Filter = "complete"
	FilterAll       Filter = "all"
)

// Filters lists every filter in tab order.
func Filters() []Filter {
	return []Filter{FilterRemaining, FilterCheckedIn, FilterComplete, FilterAll}
}

func (f Filter) String() string { return string(f) }

var filterStates = map[Filter][]State{
	FilterRemaining: {StateConfirmed, StateCheckedIn},
	FilterCheckedIn: {StateCheckedIn},
	FilterComplete: {
		StateCancelled,
		StateDidNotAttend,
		StateScreened,
		StatePartiallyScreened,
		StateAttendedNotScreened,
	},
	FilterAll: nil,
}

// States returns the current states the filter admits. Nil means no restriction.
func (f Filter) States() []State {
	return filterStates[f]
}

var filterLabels = map[Filter]string{
	FilterRemaining: "Remaining",
	FilterCheckedIn: "Checked in",
	FilterComplete:  "Complete",
	FilterAll:       "All",
}

func (f Filter) Label() string { return filterLabels[f] }

// ParseFilter returns def for an empty string and ErrInvalidFilter for
// anything it does not know.
func ParseFilter(s string, def Filter) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def, nil
	}
	if _, ok := filterStates[Filter(s)]; ok {
		return Filter(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

// Scope restricts a query to one clinic or one participant.
type Scope struct {
	ClinicID      uuid.UUID
	ParticipantID uuid.UUID
}

func ClinicScope(id uuid.UUID) Scope      { return Scope{ClinicID: id} }
func ParticipantScope(id uuid.UUID) Scope { return Scope{ParticipantID: id} }

// Query selects appointments by scope and current state.
type Query struct {
	Scope  Scope
	States []State
}

func (f Filter) Query(scope Scope) Query {
	return Query{Scope: scope, States: f.States()}
}

// Matches reports whether an appointment in state st passes the query's
// state restriction.
func (q Query) Matches(st State) bool {
	if len(q.States) == 0 {
		return true
	}
	for _, s := range q.States {
		if s == st {
			return true
		}
	}
	return false
}
