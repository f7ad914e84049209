package models

import (
	"fmt"

	"github.com/classbook/classbook-api/internal/schedule"
)

// FixedSchedule is a recurring weekly slot with a spot cap. UsersList is
// the ordered enrollment list; insertion order is enrollment order and a
// user listed twice occupies two spots.
type FixedSchedule struct {
	ID            string           `db:"id" json:"id"`
	WeekDay       schedule.WeekDay `db:"week_day" json:"week_day"`
	HourOfTheDay  string           `db:"hour_of_the_day" json:"hour_of_the_day"`
	NumberOfSpots int              `db:"number_of_spots" json:"number_of_spots"`
	UsersList     []string         `db:"-" json:"users_list"`
}

// VariableSchedule is a one-off booking record for a single concrete date
// and hour. It is created lazily on the first booking for that date/hour.
type VariableSchedule struct {
	ID           string   `db:"id" json:"id"`
	Day          string   `db:"day" json:"day"`
	HourOfTheDay string   `db:"hour_of_the_day" json:"hour_of_the_day"`
	UsersList    []string `db:"-" json:"users_list"`
}

// CanceledSchedule mirrors VariableSchedule but lists the users who opted
// out of a normally-scheduled fixed occurrence on that date.
type CanceledSchedule struct {
	ID           string   `db:"id" json:"id"`
	Day          string   `db:"day" json:"day"`
	HourOfTheDay string   `db:"hour_of_the_day" json:"hour_of_the_day"`
	UsersList    []string `db:"-" json:"users_list"`
}

// DatedScheduleID builds the conventional "{date}_{hour}" identifier used
// by variable and canceled records.
func DatedScheduleID(day, hour string) string {
	return fmt.Sprintf("%s_%s", day, hour)
}
