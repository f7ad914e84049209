package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/classbook/classbook-api/internal/models"
)

func TestVariableScheduleRepositoryCreateBuildsConventionalID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVariableScheduleRepository(db)

	mock.ExpectExec("INSERT INTO variable_schedules").
		WithArgs("2024-01-16_19:00", "2024-01-16", "19:00").
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.VariableSchedule{Day: "2024-01-16", HourOfTheDay: "19:00"}
	require.NoError(t, repo.Create(context.Background(), record))
	require.Equal(t, "2024-01-16_19:00", record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVariableScheduleRepositoryListByDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVariableScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, day, hour_of_the_day FROM variable_schedules WHERE day = $1 ORDER BY hour_of_the_day ASC")).
		WithArgs("2024-01-16").
		WillReturnRows(sqlmock.NewRows([]string{"id", "day", "hour_of_the_day"}).
			AddRow("2024-01-16_19:00", "2024-01-16", "19:00"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT schedule_id, user_email FROM variable_schedule_users WHERE schedule_id = ANY($1) ORDER BY schedule_id, position")).
		WithArgs(pq.Array([]string{"2024-01-16_19:00"})).
		WillReturnRows(sqlmock.NewRows([]string{"schedule_id", "user_email"}).
			AddRow("2024-01-16_19:00", "ana@example.com"))

	records, err := repo.ListByDay(context.Background(), "2024-01-16")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, []string{"ana@example.com"}, records[0].UsersList)
	require.NoError(t, mock.ExpectationsWereMet())
}
