package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDate(t *testing.T) {
	assert.Equal(t, "1 January 2025", Date(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "31 December 1999", Date(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", Date(time.Time{}))
}

func TestTime(t *testing.T) {
	tests := map[string]time.Time{
		"9am":     time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		"11:30am": time.Date(2025, 1, 1, 11, 30, 0, 0, time.UTC),
		"12pm":    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		"1pm":     time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC),
		"12:05am": time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC),
	}
	for want, in := range tests {
		assert.Equal(t, want, Time(in))
	}
}

func TestTimeRange(t *testing.T) {
	got := TimeRange(
		time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, "9am to 3pm", got)
}

func TestRelativeDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), "today"},
		{time.Date(2025, 3, 11, 23, 0, 0, 0, time.UTC), "tomorrow"},
		{time.Date(2025, 3, 9, 1, 0, 0, 0, time.UTC), "yesterday"},
		{time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC), "in 3 days"},
		{time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC), "3 days ago"},
		{time.Date(2025, 5, 15, 9, 0, 0, 0, time.UTC), "in 2 months"},
		{time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC), "1 month ago"},
		{time.Date(2023, 3, 1, 9, 0, 0, 0, time.UTC), "2 years ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeDate(tt.in, now), tt.in.String())
	}
}

func TestRelativeDate_UsesNowLocation(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 23:30 UTC on 30 June is already 1 July in London.
	now := time.Date(2025, 7, 1, 8, 0, 0, 0, london)
	at := time.Date(2025, 6, 30, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "today", RelativeDate(at, now))
}

func TestNHSNumber(t *testing.T) {
	assert.Equal(t, "999 009 00829", NHSNumber("99900900829"))
	assert.Equal(t, "999 009 0082", NHSNumber("9990090082"))
	assert.Equal(t, "999 009 00829", NHSNumber("999 009 00829"))
	assert.Equal(t, "123", NHSNumber("123"))
}

func TestPhone(t *testing.T) {
	assert.Equal(t, "07700 900000", Phone("07700900000"))
	assert.Equal(t, "07700 900000", Phone("07700 900000"))
	assert.Equal(t, "+44 7700 900000", Phone(" +44 7700 900000 "))
	assert.Equal(t, "", Phone(""))
}

func TestSentenceCase(t *testing.T) {
	assert.Equal(t, "Moderate risk", SentenceCase("MODERATE RISK"))
	assert.Equal(t, "High", SentenceCase("high"))
	assert.Equal(t, "", SentenceCase("  "))
}

func TestAge(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	dob := time.Date(1955, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 70, AgeInYears(dob, now))
	assert.Equal(t, "70 years old", Age(AgeInYears(dob, now)))
	assert.Equal(t, 69, AgeInYears(time.Date(1955, 1, 2, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "1 year old", Age(1))
}

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(time.Date(2025, 1, 1, 15, 4, 5, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), got)
}
