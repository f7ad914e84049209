package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/classbook/classbook-api/internal/models"
)

// CanceledScheduleRepository provides persistence for per-date opt-outs of
// fixed occurrences.
type CanceledScheduleRepository struct {
	db *sqlx.DB
}

// NewCanceledScheduleRepository creates a new canceled schedule repository.
func NewCanceledScheduleRepository(db *sqlx.DB) *CanceledScheduleRepository {
	return &CanceledScheduleRepository{db: db}
}

// Create inserts a new cancellation record. The id follows the
// "{date}_{hour}" convention.
func (r *CanceledScheduleRepository) Create(ctx context.Context, record *models.CanceledSchedule) error {
	if record.ID == "" {
		record.ID = models.DatedScheduleID(record.Day, record.HourOfTheDay)
	}
	const query = `INSERT INTO canceled_schedules (id, day, hour_of_the_day)
		VALUES (:id, :day, :hour_of_the_day)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create canceled schedule: %w", err)
	}
	return nil
}

// FindByID loads a record and its users list.
func (r *CanceledScheduleRepository) FindByID(ctx context.Context, id string) (*models.CanceledSchedule, error) {
	const query = `SELECT id, day, hour_of_the_day FROM canceled_schedules WHERE id = $1`
	var record models.CanceledSchedule
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	lists, err := loadMemberLists(ctx, r.db, "canceled_schedule_users", []string{record.ID})
	if err != nil {
		return nil, err
	}
	record.UsersList = lists[record.ID]
	return &record, nil
}

// FindByDayHour loads the record for one date/hour combination.
func (r *CanceledScheduleRepository) FindByDayHour(ctx context.Context, day, hour string) (*models.CanceledSchedule, error) {
	const query = `SELECT id, day, hour_of_the_day FROM canceled_schedules WHERE day = $1 AND hour_of_the_day = $2`
	var record models.CanceledSchedule
	if err := r.db.GetContext(ctx, &record, query, day, hour); err != nil {
		return nil, err
	}
	lists, err := loadMemberLists(ctx, r.db, "canceled_schedule_users", []string{record.ID})
	if err != nil {
		return nil, err
	}
	record.UsersList = lists[record.ID]
	return &record, nil
}

// ListByDay returns all cancellation records for a date with their users
// lists, ordered by hour.
func (r *CanceledScheduleRepository) ListByDay(ctx context.Context, day string) ([]models.CanceledSchedule, error) {
	const query = `SELECT id, day, hour_of_the_day FROM canceled_schedules WHERE day = $1 ORDER BY hour_of_the_day ASC`
	var records []models.CanceledSchedule
	if err := r.db.SelectContext(ctx, &records, query, day); err != nil {
		return nil, fmt.Errorf("list canceled schedules by day: %w", err)
	}
	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.ID
	}
	lists, err := loadMemberLists(ctx, r.db, "canceled_schedule_users", ids)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].UsersList = lists[records[i].ID]
	}
	return records, nil
}

// Delete removes the record and its users list.
func (r *CanceledScheduleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete canceled schedule: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM canceled_schedule_users WHERE schedule_id = $1", id); err != nil {
		return fmt.Errorf("detach canceled schedule users: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM canceled_schedules WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete canceled schedule: %w", err)
	}
	return tx.Commit()
}

// AddUser appends a user to the cancellation list.
func (r *CanceledScheduleRepository) AddUser(ctx context.Context, scheduleID, email string) error {
	return appendMember(ctx, r.db, "canceled_schedule_users", scheduleID, email)
}

// RemoveUser pulls every entry of the user from the cancellation list.
func (r *CanceledScheduleRepository) RemoveUser(ctx context.Context, scheduleID, email string) error {
	return removeMember(ctx, r.db, "canceled_schedule_users", scheduleID, email)
}
