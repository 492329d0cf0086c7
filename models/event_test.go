package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifySingleDayEvent(t *testing.T) {
	eventDate := date(2024, 1, 10)

	assert.Equal(t, EventUpcoming, Classify(eventDate, nil, date(2024, 1, 9)))
	assert.Equal(t, EventCurrent, Classify(eventDate, nil, date(2024, 1, 10)))
	assert.Equal(t, EventPast, Classify(eventDate, nil, date(2024, 1, 11)))
}

func TestClassifyMultiDayEvent(t *testing.T) {
	eventDate := date(2024, 1, 10)
	endDate := date(2024, 1, 12)

	assert.Equal(t, EventUpcoming, Classify(eventDate, &endDate, date(2024, 1, 9)))
	assert.Equal(t, EventCurrent, Classify(eventDate, &endDate, date(2024, 1, 10)))
	assert.Equal(t, EventCurrent, Classify(eventDate, &endDate, date(2024, 1, 11)))
	assert.Equal(t, EventCurrent, Classify(eventDate, &endDate, date(2024, 1, 12)))
	assert.Equal(t, EventPast, Classify(eventDate, &endDate, date(2024, 1, 13)))
}

func TestClassifyIgnoresTimeOfDay(t *testing.T) {
	// An event later today is current, not upcoming, even when "now"
	// is earlier in the day than the event's stored timestamp.
	eventDate := time.Date(2024, 1, 10, 19, 30, 0, 0, time.UTC)
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, EventCurrent, Classify(eventDate, nil, now))

	// And an event that happened this morning has not become past yet.
	eventDate = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	now = time.Date(2024, 1, 10, 23, 50, 0, 0, time.UTC)
	assert.Equal(t, EventCurrent, Classify(eventDate, nil, now))
}

func TestClassifyExactlyOneStatus(t *testing.T) {
	eventDate := date(2024, 6, 15)
	endDate := date(2024, 6, 17)

	for day := 10; day <= 22; day++ {
		now := date(2024, 6, day)
		status := Classify(eventDate, &endDate, now)
		assert.Contains(t, []EventStatus{EventUpcoming, EventCurrent, EventPast}, status,
			"day %d must map to exactly one status", day)
	}
}

func TestUpcoming(t *testing.T) {
	eventDate := date(2024, 1, 10)
	endDate := date(2024, 1, 12)

	// Current events still count as upcoming for listing purposes.
	assert.True(t, Upcoming(eventDate, &endDate, date(2024, 1, 9)))
	assert.True(t, Upcoming(eventDate, &endDate, date(2024, 1, 11)))
	assert.False(t, Upcoming(eventDate, &endDate, date(2024, 1, 13)))
}

func TestValidEventCategory(t *testing.T) {
	assert.True(t, ValidEventCategory("Workshop"))
	assert.True(t, ValidEventCategory("Concert"))
	assert.False(t, ValidEventCategory("workshop"))
	assert.False(t, ValidEventCategory(""))
	assert.False(t, ValidEventCategory("unknown"))
}
