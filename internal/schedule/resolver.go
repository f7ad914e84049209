package schedule

// NoClassScheduledForUser is returned by NextClass when the user has no
// upcoming occurrence. Absence of a next class is a normal outcome, not an
// error.
const NoClassScheduledForUser = "NO_CLASS_SCHEDULED_FOR_USER"

// UserOccurrences carries the three occurrence sources of a single user:
// the weekdays of their fixed weekly slots, the dates of their one-off
// bookings, and the dates they canceled. The lists are read-only inputs;
// keeping them current is the caller's responsibility.
type UserOccurrences struct {
	FixedWeekDays []WeekDay
	OneOffDates   []string
	CanceledDates []string
}

// NextClass computes the date of the user's nearest upcoming class relative
// to the reference date. Fixed weekdays are projected onto concrete dates,
// merged with the one-off bookings, and every canceled date is removed.
// A cancellation removes a single date, not the weekly pattern: once the
// reference date moves past a canceled occurrence the same weekday projects
// onto a fresh date that the stale cancellation no longer matches.
func NextClass(referenceDate string, occ UserOccurrences) string {
	recurring := ProjectWeekdaysToDates(referenceDate, occ.FixedWeekDays)
	merged := MergeOccurrences(recurring, occ.OneOffDates, occ.CanceledDates)

	nearest, ok := NearestFutureDate(referenceDate, merged)
	if !ok {
		return NoClassScheduledForUser
	}
	return nearest
}
