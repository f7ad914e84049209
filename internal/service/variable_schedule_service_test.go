package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classbook/classbook-api/internal/models"
)

type datedRepoStub struct {
	byDayHour map[string]*models.VariableSchedule
	byID      map[string]*models.VariableSchedule
	created   []*models.VariableSchedule
	added     [][2]string
	removed   [][2]string
}

func newDatedRepoStub() *datedRepoStub {
	return &datedRepoStub{
		byDayHour: map[string]*models.VariableSchedule{},
		byID:      map[string]*models.VariableSchedule{},
	}
}

func (s *datedRepoStub) key(day, hour string) string { return day + "|" + hour }

func (s *datedRepoStub) Create(ctx context.Context, record *models.VariableSchedule) error {
	record.ID = models.DatedScheduleID(record.Day, record.HourOfTheDay)
	s.created = append(s.created, record)
	s.byDayHour[s.key(record.Day, record.HourOfTheDay)] = record
	s.byID[record.ID] = record
	return nil
}

func (s *datedRepoStub) FindByID(ctx context.Context, id string) (*models.VariableSchedule, error) {
	if record, ok := s.byID[id]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *datedRepoStub) FindByDayHour(ctx context.Context, day, hour string) (*models.VariableSchedule, error) {
	if record, ok := s.byDayHour[s.key(day, hour)]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *datedRepoStub) ListByDay(ctx context.Context, day string) ([]models.VariableSchedule, error) {
	var out []models.VariableSchedule
	for _, record := range s.byDayHour {
		if record.Day == day {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (s *datedRepoStub) Delete(ctx context.Context, id string) error {
	record, ok := s.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	delete(s.byID, id)
	delete(s.byDayHour, s.key(record.Day, record.HourOfTheDay))
	return nil
}

func (s *datedRepoStub) AddUser(ctx context.Context, scheduleID, email string) error {
	record := s.byID[scheduleID]
	record.UsersList = append(record.UsersList, email)
	s.added = append(s.added, [2]string{scheduleID, email})
	return nil
}

func (s *datedRepoStub) RemoveUser(ctx context.Context, scheduleID, email string) error {
	record := s.byID[scheduleID]
	kept := record.UsersList[:0]
	for _, existing := range record.UsersList {
		if existing != email {
			kept = append(kept, existing)
		}
	}
	record.UsersList = kept
	s.removed = append(s.removed, [2]string{scheduleID, email})
	return nil
}

type recoveryStub struct {
	users  map[string]*models.User
	deltas []int
}

func (s *recoveryStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *recoveryStub) AdjustClassesToRecover(ctx context.Context, email string, delta int) error {
	s.deltas = append(s.deltas, delta)
	return nil
}

type cacheStub struct {
	patterns []string
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func TestVariableScheduleServiceBookCreatesRecordAndDebitsClass(t *testing.T) {
	repo := newDatedRepoStub()
	users := &recoveryStub{users: map[string]*models.User{
		"ana@example.com": {Email: "ana@example.com", ClassesToRecover: 2},
	}}
	cache := &cacheStub{}
	svc := NewVariableScheduleService(repo, users, cache, nil, nil)

	record, err := svc.Book(context.Background(), BookRequest{
		Day:          "2024-01-20",
		HourOfTheDay: "18:00",
		Email:        "ana@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-20_18:00", record.ID)
	assert.Equal(t, []string{"ana@example.com"}, record.UsersList)
	assert.Equal(t, []int{-1}, users.deltas)
	assert.Contains(t, cache.patterns, "availability:*:2024-01-20")
}

func TestVariableScheduleServiceBookIsIdempotentPerUser(t *testing.T) {
	repo := newDatedRepoStub()
	users := &recoveryStub{users: map[string]*models.User{
		"ana@example.com": {Email: "ana@example.com"},
	}}
	svc := NewVariableScheduleService(repo, users, nil, nil, nil)

	req := BookRequest{Day: "2024-01-20", HourOfTheDay: "18:00", Email: "ana@example.com"}
	_, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	record, err := svc.Book(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"ana@example.com"}, record.UsersList)
	assert.Len(t, repo.created, 1)
	assert.Equal(t, []int{-1}, users.deltas, "second booking must not debit again")
}

func TestVariableScheduleServiceBookUnknownUser(t *testing.T) {
	repo := newDatedRepoStub()
	users := &recoveryStub{users: map[string]*models.User{}}
	svc := NewVariableScheduleService(repo, users, nil, nil, nil)

	_, err := svc.Book(context.Background(), BookRequest{
		Day:          "2024-01-20",
		HourOfTheDay: "18:00",
		Email:        "ghost@example.com",
	})
	require.Error(t, err)
	assert.Empty(t, repo.created)
	assert.Empty(t, users.deltas)
}

func TestVariableScheduleServiceUnbookCreditsClassBack(t *testing.T) {
	repo := newDatedRepoStub()
	users := &recoveryStub{users: map[string]*models.User{
		"ana@example.com": {Email: "ana@example.com"},
	}}
	svc := NewVariableScheduleService(repo, users, nil, nil, nil)

	_, err := svc.Book(context.Background(), BookRequest{Day: "2024-01-20", HourOfTheDay: "18:00", Email: "ana@example.com"})
	require.NoError(t, err)

	record, err := svc.Unbook(context.Background(), "2024-01-20", "18:00", "ana@example.com")
	require.NoError(t, err)
	assert.Empty(t, record.UsersList)
	assert.Equal(t, []int{-1, 1}, users.deltas)

	// removing again is a no-op
	_, err = svc.Unbook(context.Background(), "2024-01-20", "18:00", "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 1}, users.deltas)
}
