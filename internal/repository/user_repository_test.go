package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func userColumns() []string {
	return []string{"id", "name", "email", "password_hash", "age", "admin", "phone", "gender", "plan", "classes_to_recover", "created_at", "updated_at"}
}

func TestUserRepositoryFindByEmailLoadsScheduleRefs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, age, admin, phone, gender, plan, classes_to_recover, created_at, updated_at FROM users WHERE email = $1")).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow("u-1", "Ana", "ana@example.com", "hash", 30, false, "", "", "basic", 1, now, now))

	mock.ExpectQuery("SELECT fs.id, fs.hour_of_the_day, fs.week_day").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "hour_of_the_day", "week_day"}).
			AddRow("fs-1", "18:00", "MONDAY"))

	mock.ExpectQuery("SELECT vs.id, vs.hour_of_the_day, vs.day").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "hour_of_the_day", "day"}).
			AddRow("2024-01-16_19:00", "19:00", "2024-01-16"))

	mock.ExpectQuery("SELECT cs.id, cs.hour_of_the_day, cs.day").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "hour_of_the_day", "day"}))

	user, err := repo.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, 1, user.ClassesToRecover)
	require.Len(t, user.FixedSchedules, 1)
	require.Len(t, user.VariableSchedules, 1)
	require.Empty(t, user.CanceledSchedules)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryAdjustClassesToRecover(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET classes_to_recover = GREATEST(classes_to_recover + $2, 0), updated_at = NOW() WHERE email = $1")).
		WithArgs("ana@example.com", -1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AdjustClassesToRecover(context.Background(), "ana@example.com", -1))
	require.NoError(t, mock.ExpectationsWereMet())
}
