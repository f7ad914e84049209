package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/classbook/classbook-api/internal/schedule"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestFixedScheduleRepositoryListByWeekDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFixedScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "week_day", "hour_of_the_day", "number_of_spots"}).
		AddRow("fs-1", "MONDAY", "17:00", 2).
		AddRow("fs-2", "MONDAY", "18:00", 4)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, week_day, hour_of_the_day, number_of_spots FROM fixed_schedules WHERE week_day = $1 ORDER BY hour_of_the_day ASC")).
		WithArgs(schedule.Monday).
		WillReturnRows(rows)

	members := sqlmock.NewRows([]string{"schedule_id", "user_email"}).
		AddRow("fs-1", "ana@example.com").
		AddRow("fs-1", "bob@example.com")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT schedule_id, user_email FROM fixed_schedule_users WHERE schedule_id = ANY($1) ORDER BY schedule_id, position")).
		WithArgs(pq.Array([]string{"fs-1", "fs-2"})).
		WillReturnRows(members)

	slots, err := repo.ListByWeekDay(context.Background(), schedule.Monday)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	require.Equal(t, []string{"ana@example.com", "bob@example.com"}, slots[0].UsersList)
	require.Empty(t, slots[1].UsersList)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFixedScheduleRepositoryAddUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFixedScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fixed_schedule_users (schedule_id, user_email, position)")).
		WithArgs("fs-1", "ana@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddUser(context.Background(), "fs-1", "ana@example.com"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFixedScheduleRepositoryDeleteDetachesUsers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFixedScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM fixed_schedule_users WHERE schedule_id = $1")).
		WithArgs("fs-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM fixed_schedules WHERE id = $1")).
		WithArgs("fs-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "fs-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
