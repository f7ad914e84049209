package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classbook/classbook-api/internal/models"
	"github.com/classbook/classbook-api/internal/schedule"
)

// FixedScheduleRepository provides persistence for recurring weekly slots.
type FixedScheduleRepository struct {
	db *sqlx.DB
}

// NewFixedScheduleRepository creates a new fixed schedule repository.
func NewFixedScheduleRepository(db *sqlx.DB) *FixedScheduleRepository {
	return &FixedScheduleRepository{db: db}
}

// Create inserts a new weekly pattern.
func (r *FixedScheduleRepository) Create(ctx context.Context, slot *models.FixedSchedule) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	const query = `INSERT INTO fixed_schedules (id, week_day, hour_of_the_day, number_of_spots)
		VALUES (:id, :week_day, :hour_of_the_day, :number_of_spots)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create fixed schedule: %w", err)
	}
	return nil
}

// FindByID loads a pattern and its enrollment list.
func (r *FixedScheduleRepository) FindByID(ctx context.Context, id string) (*models.FixedSchedule, error) {
	const query = `SELECT id, week_day, hour_of_the_day, number_of_spots FROM fixed_schedules WHERE id = $1`
	var slot models.FixedSchedule
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	lists, err := loadMemberLists(ctx, r.db, "fixed_schedule_users", []string{slot.ID})
	if err != nil {
		return nil, err
	}
	slot.UsersList = lists[slot.ID]
	return &slot, nil
}

// ListByWeekDay returns all patterns for a weekday with their enrollment
// lists, ordered by hour.
func (r *FixedScheduleRepository) ListByWeekDay(ctx context.Context, weekDay schedule.WeekDay) ([]models.FixedSchedule, error) {
	const query = `SELECT id, week_day, hour_of_the_day, number_of_spots FROM fixed_schedules WHERE week_day = $1 ORDER BY hour_of_the_day ASC`
	var slots []models.FixedSchedule
	if err := r.db.SelectContext(ctx, &slots, query, weekDay); err != nil {
		return nil, fmt.Errorf("list fixed schedules by week day: %w", err)
	}
	ids := make([]string, len(slots))
	for i, slot := range slots {
		ids[i] = slot.ID
	}
	lists, err := loadMemberLists(ctx, r.db, "fixed_schedule_users", ids)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		slots[i].UsersList = lists[slots[i].ID]
	}
	return slots, nil
}

// Update modifies the pattern fields; the enrollment list is managed
// through AddUser/RemoveUser.
func (r *FixedScheduleRepository) Update(ctx context.Context, slot *models.FixedSchedule) error {
	const query = `UPDATE fixed_schedules SET week_day = :week_day, hour_of_the_day = :hour_of_the_day, number_of_spots = :number_of_spots WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update fixed schedule: %w", err)
	}
	return nil
}

// Delete removes the pattern and detaches every enrolled user.
func (r *FixedScheduleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete fixed schedule: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM fixed_schedule_users WHERE schedule_id = $1", id); err != nil {
		return fmt.Errorf("detach fixed schedule users: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM fixed_schedules WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete fixed schedule: %w", err)
	}
	return tx.Commit()
}

// AddUser appends a user to the enrollment list. Duplicates are allowed; a
// user listed twice occupies two spots.
func (r *FixedScheduleRepository) AddUser(ctx context.Context, scheduleID, email string) error {
	return appendMember(ctx, r.db, "fixed_schedule_users", scheduleID, email)
}

// RemoveUser pulls every entry of the user from the enrollment list.
func (r *FixedScheduleRepository) RemoveUser(ctx context.Context, scheduleID, email string) error {
	return removeMember(ctx, r.db, "fixed_schedule_users", scheduleID, email)
}
