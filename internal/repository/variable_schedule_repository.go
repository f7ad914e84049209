package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/classbook/classbook-api/internal/models"
)

// VariableScheduleRepository provides persistence for one-off bookings.
type VariableScheduleRepository struct {
	db *sqlx.DB
}

// NewVariableScheduleRepository creates a new variable schedule repository.
func NewVariableScheduleRepository(db *sqlx.DB) *VariableScheduleRepository {
	return &VariableScheduleRepository{db: db}
}

// Create inserts a new one-off record. The id follows the "{date}_{hour}"
// convention.
func (r *VariableScheduleRepository) Create(ctx context.Context, record *models.VariableSchedule) error {
	if record.ID == "" {
		record.ID = models.DatedScheduleID(record.Day, record.HourOfTheDay)
	}
	const query = `INSERT INTO variable_schedules (id, day, hour_of_the_day)
		VALUES (:id, :day, :hour_of_the_day)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create variable schedule: %w", err)
	}
	return nil
}

// FindByID loads a record and its booking list.
func (r *VariableScheduleRepository) FindByID(ctx context.Context, id string) (*models.VariableSchedule, error) {
	const query = `SELECT id, day, hour_of_the_day FROM variable_schedules WHERE id = $1`
	var record models.VariableSchedule
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	lists, err := loadMemberLists(ctx, r.db, "variable_schedule_users", []string{record.ID})
	if err != nil {
		return nil, err
	}
	record.UsersList = lists[record.ID]
	return &record, nil
}

// FindByDayHour loads the record for one date/hour combination.
func (r *VariableScheduleRepository) FindByDayHour(ctx context.Context, day, hour string) (*models.VariableSchedule, error) {
	const query = `SELECT id, day, hour_of_the_day FROM variable_schedules WHERE day = $1 AND hour_of_the_day = $2`
	var record models.VariableSchedule
	if err := r.db.GetContext(ctx, &record, query, day, hour); err != nil {
		return nil, err
	}
	lists, err := loadMemberLists(ctx, r.db, "variable_schedule_users", []string{record.ID})
	if err != nil {
		return nil, err
	}
	record.UsersList = lists[record.ID]
	return &record, nil
}

// ListByDay returns all one-off records for a date with their booking
// lists, ordered by hour.
func (r *VariableScheduleRepository) ListByDay(ctx context.Context, day string) ([]models.VariableSchedule, error) {
	const query = `SELECT id, day, hour_of_the_day FROM variable_schedules WHERE day = $1 ORDER BY hour_of_the_day ASC`
	var records []models.VariableSchedule
	if err := r.db.SelectContext(ctx, &records, query, day); err != nil {
		return nil, fmt.Errorf("list variable schedules by day: %w", err)
	}
	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.ID
	}
	lists, err := loadMemberLists(ctx, r.db, "variable_schedule_users", ids)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].UsersList = lists[records[i].ID]
	}
	return records, nil
}

// Delete removes the record and its booking list.
func (r *VariableScheduleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete variable schedule: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM variable_schedule_users WHERE schedule_id = $1", id); err != nil {
		return fmt.Errorf("detach variable schedule users: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM variable_schedules WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete variable schedule: %w", err)
	}
	return tx.Commit()
}

// AddUser appends a user to the booking list.
func (r *VariableScheduleRepository) AddUser(ctx context.Context, scheduleID, email string) error {
	return appendMember(ctx, r.db, "variable_schedule_users", scheduleID, email)
}

// RemoveUser pulls every entry of the user from the booking list.
func (r *VariableScheduleRepository) RemoveUser(ctx context.Context, scheduleID, email string) error {
	return removeMember(ctx, r.db, "variable_schedule_users", scheduleID, email)
}
