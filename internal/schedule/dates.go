package schedule

import "time"

// dateLayout is the wire format for naive calendar dates. No time-of-day,
// no timezone.
const dateLayout = "2006-01-02"

func parseDate(date string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ProjectWeekdayToDate finds the date of the next occurrence of the target
// weekday on or after the reference date. When the reference date already
// falls on the target weekday the reference date itself is returned; the
// projection never looks backward.
func ProjectWeekdayToDate(referenceDate string, target WeekDay) string {
	ref, ok := parseDate(referenceDate)
	if !ok {
		return ""
	}
	daysToAdd := forwardDistance(int(ref.Weekday()), target.Index())
	return FormatDate(ref.AddDate(0, 0, daysToAdd), "-")
}

// ProjectWeekdaysToDates projects each weekday onto its next concrete date
// relative to the same reference date. Input order and duplicates are
// preserved; the result is neither sorted nor deduplicated.
func ProjectWeekdaysToDates(referenceDate string, targets []WeekDay) []string {
	if len(targets) == 0 {
		return nil
	}
	dates := make([]string, 0, len(targets))
	for _, target := range targets {
		dates = append(dates, ProjectWeekdayToDate(referenceDate, target))
	}
	return dates
}

// NearestFutureDate returns the candidate with the smallest non-negative
// day difference from the reference date. Candidates strictly before the
// reference date are ignored; ties keep the first candidate encountered.
// The second return is false when no candidate qualifies.
func NearestFutureDate(referenceDate string, candidates []string) (string, bool) {
	ref, ok := parseDate(referenceDate)
	if !ok {
		return "", false
	}

	var nearest string
	found := false
	minDiff := 0
	for _, candidate := range candidates {
		t, ok := parseDate(candidate)
		if !ok {
			continue
		}
		diff := int(t.Sub(ref).Hours() / 24)
		if diff < 0 {
			continue
		}
		if !found || diff < minDiff {
			nearest = candidate
			minDiff = diff
			found = true
		}
	}
	return nearest, found
}

// SubtractDates filters the list down to dates not present in toRemove.
// Membership is by value; order and duplicates of the surviving entries are
// preserved.
func SubtractDates(dates, toRemove []string) []string {
	if len(dates) == 0 {
		return nil
	}
	removed := make(map[string]struct{}, len(toRemove))
	for _, date := range toRemove {
		removed[date] = struct{}{}
	}
	kept := make([]string, 0, len(dates))
	for _, date := range dates {
		if _, skip := removed[date]; skip {
			continue
		}
		kept = append(kept, date)
	}
	return kept
}

// MergeOccurrences concatenates the recurring and one-off date sets, then
// removes every date present in the canceled set.
func MergeOccurrences(recurring, oneOff, canceled []string) []string {
	merged := make([]string, 0, len(recurring)+len(oneOff))
	merged = append(merged, recurring...)
	merged = append(merged, oneOff...)
	return SubtractDates(merged, canceled)
}
