package schedule

import "sort"

// FixedSlot is the capacity baseline of one hour of a weekly pattern.
// Enrolled counts the users currently holding a permanent spot.
type FixedSlot struct {
	Hour          string
	NumberOfSpots int
	Enrolled      int
}

// SlotUsage counts the users on a date-specific record (a one-off booking
// or a cancellation) for one hour.
type SlotUsage struct {
	Hour  string
	Users int
}

// HourAvailability reports capacity for a single hour of a day.
type HourAvailability struct {
	Hour           string `json:"hour"`
	NumberOfSpots  int    `json:"numberOfSpots"`
	AvailableSpots int    `json:"availableSpots"`
}

// DayAvailability aggregates capacity across all hours of one concrete day.
type DayAvailability struct {
	Day            string             `json:"day"`
	NumberOfSpots  int                `json:"numberOfSpots"`
	AvailableSpots int                `json:"availableSpots"`
	Hours          []HourAvailability `json:"hours"`
}

// BuildDayAvailability folds the three record kinds into one day report.
// The passes run in a fixed order: fixed capacity first, then one-off
// bookings subtract, then cancellations add back. Both adjustment passes
// mutate the same running totals, so reversing them changes the result;
// the order is part of the contract.
func BuildDayAvailability(day string, fixed []FixedSlot, variable, canceled []SlotUsage) DayAvailability {
	report := applyFixedSlots(day, sortSlots(fixed))
	report = applyVariableUsage(report, sortUsage(variable))
	report = applyCanceledUsage(report, sortUsage(canceled))
	return report
}

// applyFixedSlots builds the base report. Each hour starts at full
// capacity; the day-level available total already accounts for current
// enrollment while the per-hour entries do not yet.
func applyFixedSlots(day string, fixed []FixedSlot) DayAvailability {
	report := DayAvailability{Day: day, Hours: []HourAvailability{}}
	for _, slot := range fixed {
		report.NumberOfSpots += slot.NumberOfSpots
		report.AvailableSpots += slot.NumberOfSpots - slot.Enrolled
		report.Hours = append(report.Hours, HourAvailability{
			Hour:           slot.Hour,
			NumberOfSpots:  slot.NumberOfSpots,
			AvailableSpots: slot.NumberOfSpots,
		})
	}
	return report
}

// applyVariableUsage subtracts one-off bookings from the hour they land on.
// A booking for an hour with no fixed slot is dropped: capacity only exists
// for hours present in the weekly pattern.
func applyVariableUsage(report DayAvailability, usage []SlotUsage) DayAvailability {
	next := cloneReport(report)
	for _, u := range usage {
		idx := findHour(next.Hours, u.Hour)
		if idx < 0 {
			continue
		}
		next.AvailableSpots -= u.Users
		next.Hours[idx].AvailableSpots -= u.Users
	}
	return next
}

// applyCanceledUsage adds canceled spots back to the hour they free.
// Cancellations for hours outside the weekly pattern are dropped.
func applyCanceledUsage(report DayAvailability, usage []SlotUsage) DayAvailability {
	next := cloneReport(report)
	for _, u := range usage {
		idx := findHour(next.Hours, u.Hour)
		if idx < 0 {
			continue
		}
		next.AvailableSpots += u.Users
		next.Hours[idx].AvailableSpots += u.Users
	}
	return next
}

func cloneReport(report DayAvailability) DayAvailability {
	next := report
	next.Hours = make([]HourAvailability, len(report.Hours))
	copy(next.Hours, report.Hours)
	return next
}

func findHour(hours []HourAvailability, hour string) int {
	for i, h := range hours {
		if h.Hour == hour {
			return i
		}
	}
	return -1
}

// sortSlots orders slots ascending by hour. Hours are zero-padded HH:MM so
// lexical comparison is chronological; the sort is stable so records
// sharing an hour keep their relative order.
func sortSlots(slots []FixedSlot) []FixedSlot {
	sorted := make([]FixedSlot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Hour < sorted[j].Hour })
	return sorted
}

func sortUsage(usage []SlotUsage) []SlotUsage {
	sorted := make([]SlotUsage, len(usage))
	copy(sorted, usage)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Hour < sorted[j].Hour })
	return sorted
}
