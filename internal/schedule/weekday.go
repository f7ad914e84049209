package schedule

import "time"

// WeekDay names a day of the week. Values are the seven canonical
// upper-case names ordered Sunday-first, so index arithmetic lines up with
// time.Weekday.
type WeekDay string

const (
	Sunday    WeekDay = "SUNDAY"
	Monday    WeekDay = "MONDAY"
	Tuesday   WeekDay = "TUESDAY"
	Wednesday WeekDay = "WEDNESDAY"
	Thursday  WeekDay = "THURSDAY"
	Friday    WeekDay = "FRIDAY"
	Saturday  WeekDay = "SATURDAY"
)

var weekDays = [7]WeekDay{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Index returns the Sunday-first position of the weekday (0-6), or -1 for a
// value outside the canonical set. Callers are expected to pass validated
// weekday names.
func (w WeekDay) Index() int {
	for i, d := range weekDays {
		if d == w {
			return i
		}
	}
	return -1
}

// WeekDayOf maps a concrete date to its weekday name.
func WeekDayOf(date string) WeekDay {
	t, ok := parseDate(date)
	if !ok {
		return ""
	}
	return weekDays[int(t.Weekday())]
}

// forwardDistance counts days from one weekday index to the next occurrence
// of another, wrapping at the week boundary. Same index yields zero.
func forwardDistance(from, to int) int {
	return (to - from + 7) % 7
}

// ClosestWeekDay returns the candidate with the minimum forward distance
// from the reference weekday, together with that distance. Ties keep the
// first candidate encountered. An empty candidate list yields ("", 0).
func ClosestWeekDay(reference WeekDay, candidates []WeekDay) (WeekDay, int) {
	if len(candidates) == 0 {
		return "", 0
	}

	refIdx := reference.Index()
	var closest WeekDay
	minDiff := -1
	for _, candidate := range candidates {
		diff := forwardDistance(refIdx, candidate.Index())
		if minDiff < 0 || diff < minDiff {
			minDiff = diff
			closest = candidate
		}
	}
	return closest, minDiff
}

// FormatDate renders year/month/day zero-padded with the given separator
// between components. An empty separator yields YYYYMMDD.
func FormatDate(t time.Time, separator string) string {
	layout := "2006" + separator + "01" + separator + "02"
	return t.Format(layout)
}

// DayWithDate pairs a weekday name with its concrete date, as consumed by
// the availability endpoints.
type DayWithDate struct {
	WeekDay WeekDay `json:"week_day"`
	Date    string  `json:"date"`
}

// NextSevenDays lists the seven consecutive calendar days starting at
// today, each paired with its weekday name, in chronological order.
func NextSevenDays(today time.Time) []DayWithDate {
	days := make([]DayWithDate, 0, 7)
	for i := 0; i < 7; i++ {
		date := today.AddDate(0, 0, i)
		days = append(days, DayWithDate{
			WeekDay: weekDays[int(date.Weekday())],
			Date:    FormatDate(date, "-"),
		})
	}
	return days
}
