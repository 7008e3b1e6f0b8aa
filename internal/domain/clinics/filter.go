package clinics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"manage-breast-screening/internal/platform/format"
)

var ErrInvalidFilter = errors.New("invalid clinic filter")

// Filter selects clinics by start date relative to today.
type Filter string

const (
	FilterToday     Filter = "today"
	FilterUpcoming  Filter = "upcoming"
	FilterCompleted Filter = "completed"
	FilterAll       Filter = "all"
)

// Filters lists every filter in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterToday, FilterUpcoming, FilterCompleted}
}

func (f Filter) String() string { return string(f) }

// ParseFilter rejects unknown names. An empty string is today.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterToday, nil
	}
	for _, f := range Filters() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

// DateRange is a half-open [From, To) interval. A zero bound is unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Range turns the filter into a start-time interval for the day of now in loc.
func (f Filter) Range(now time.Time, loc *time.Location) DateRange {
	today := format.StartOfDay(now, loc)
	tomorrow := today.AddDate(0, 0, 1)

	switch f {
	case FilterToday:
		return DateRange{From: today, To: tomorrow}
	case FilterUpcoming:
		return DateRange{From: tomorrow}
	case FilterCompleted:
		return DateRange{To: today}
	}
	return DateRange{}
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}
