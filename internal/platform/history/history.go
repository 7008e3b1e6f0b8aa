// Package history derives the current entry of an append-only status history.
package history

import (
	"sort"
	"time"
)

// Entry is anything recorded with a creation time and an insertion sequence.
type Entry interface {
	RecordedAt() time.Time
	Sequence() int64
}

// Latest returns the entry with the greatest (RecordedAt, Sequence), so two
// rows written in the same instant resolve to the one inserted last. Input
// order does not matter.
func Latest[T Entry](items []T) (T, bool) {
	var best T
	if len(items) == 0 {
		return best, false
	}
	best = items[0]
	for _, it := range items[1:] {
		if newer(it, best) {
			best = it
		}
	}
	return best, true
}

// SortNewestFirst orders entries by (RecordedAt, Sequence) descending, in place.
func SortNewestFirst[T Entry](items []T) {
	sort.SliceStable(items, func(i, j int) bool { return newer(items[i], items[j]) })
}

func newer(a, b Entry) bool {
	at, bt := a.RecordedAt(), b.RecordedAt()
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return a.Sequence() > b.Sequence()
}
