package models

import (
	"time"

	"github.com/classbook/classbook-api/internal/schedule"
)

// User represents a member stored in the users table, together with the
// three schedule reference lists reconstructed from the membership tables.
type User struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	Age              int       `db:"age" json:"age"`
	Admin            bool      `db:"admin" json:"admin"`
	Phone            string    `db:"phone" json:"phone"`
	Gender           string    `db:"gender" json:"gender"`
	Plan             string    `db:"plan" json:"plan"`
	ClassesToRecover int       `db:"classes_to_recover" json:"classes_to_recover"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`

	FixedSchedules    []UserFixedScheduleRef `db:"-" json:"fixed_schedules"`
	VariableSchedules []UserDatedScheduleRef `db:"-" json:"variable_schedules"`
	CanceledSchedules []UserDatedScheduleRef `db:"-" json:"canceled_schedules"`
}

// UserFixedScheduleRef is a lightweight reference to a fixed weekly slot
// the user is enrolled in.
type UserFixedScheduleRef struct {
	ID           string           `db:"id" json:"id"`
	HourOfTheDay string           `db:"hour_of_the_day" json:"hour_of_the_day"`
	WeekDay      schedule.WeekDay `db:"week_day" json:"week_day"`
}

// UserDatedScheduleRef references a date-specific record (a one-off booking
// or a cancellation) the user appears in.
type UserDatedScheduleRef struct {
	ID           string `db:"id" json:"id"`
	HourOfTheDay string `db:"hour_of_the_day" json:"hour_of_the_day"`
	Day          string `db:"day" json:"day"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Plan      string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
