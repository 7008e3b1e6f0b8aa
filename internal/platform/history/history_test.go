package history

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type rec struct {
	name string
	at   time.Time
	seq  int64
}

func (r rec) RecordedAt() time.Time { return r.at }
func (r rec) Sequence() int64       { return r.seq }

func TestLatest_Empty(t *testing.T) {
	_, ok := Latest([]rec{})
	assert.False(t, ok)
}

func TestLatest_MaxTimestamp(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	items := []rec{
		{"b", t0.Add(time.Minute), 2},
		{"c", t0.Add(2 * time.Minute), 1},
		{"a", t0, 3},
	}
	got, ok := Latest(items)
	assert.True(t, ok)
	assert.Equal(t, "c", got.name)
}

func TestLatest_TieBrokenByInsertionOrder(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	items := []rec{{"second", t0, 2}, {"first", t0, 1}}

	got, _ := Latest(items)
	assert.Equal(t, "second", got.name)
}

func TestLatest_OrderIndependent(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	items := make([]rec, 0, 20)
	for i := 0; i < 20; i++ {
		// several rows share a timestamp
		items = append(items, rec{at: t0.Add(time.Duration(i/3) * time.Second), seq: int64(i)})
	}
	want := items[len(items)-1]

	r := rand.New(rand.NewSource(1))
	for n := 0; n < 50; n++ {
		r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		got, _ := Latest(items)
		assert.Equal(t, want, got)
	}
}

func TestSortNewestFirst(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	items := []rec{{"a", t0, 1}, {"c", t0.Add(time.Second), 3}, {"b", t0, 2}}

	SortNewestFirst(items)
	assert.Equal(t, "c", items[0].name)
	assert.Equal(t, "b", items[1].name)
	assert.Equal(t, "a", items[2].name)
}
