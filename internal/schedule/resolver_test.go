package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextClassPicksNearestFixedOccurrence(t *testing.T) {
	next := NextClass("2024-01-15", UserOccurrences{
		FixedWeekDays: []WeekDay{Wednesday, Friday},
	})
	assert.Equal(t, "2024-01-17", next)
}

func TestNextClassTodayCounts(t *testing.T) {
	next := NextClass("2024-01-15", UserOccurrences{
		FixedWeekDays: []WeekDay{Monday},
	})
	assert.Equal(t, "2024-01-15", next)
}

func TestNextClassOneOffBeatsFixedWhenCloser(t *testing.T) {
	next := NextClass("2024-01-15", UserOccurrences{
		FixedWeekDays: []WeekDay{Friday},
		OneOffDates:   []string{"2024-01-16"},
	})
	assert.Equal(t, "2024-01-16", next)
}

func TestNextClassCancellationRemovesDateNotPattern(t *testing.T) {
	// Canceling the Monday the 15th leaves the weekly Monday slot intact:
	// the 22nd is a distinct projected date only once the reference moves
	// past the canceled one, so from the 15th the Wednesday slot wins.
	next := NextClass("2024-01-15", UserOccurrences{
		FixedWeekDays: []WeekDay{Monday, Wednesday},
		CanceledDates: []string{"2024-01-15"},
	})
	assert.Equal(t, "2024-01-17", next)

	next = NextClass("2024-01-16", UserOccurrences{
		FixedWeekDays: []WeekDay{Monday},
		CanceledDates: []string{"2024-01-15"},
	})
	assert.Equal(t, "2024-01-22", next)
}

func TestNextClassNoSchedules(t *testing.T) {
	assert.Equal(t, NoClassScheduledForUser, NextClass("2024-01-15", UserOccurrences{}))
}

func TestNextClassStaleCancellationsOnly(t *testing.T) {
	next := NextClass("2024-01-15", UserOccurrences{
		CanceledDates: []string{"2024-01-10", "2024-01-11"},
	})
	assert.Equal(t, NoClassScheduledForUser, next)
}
