package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classbook/classbook-api/internal/models"
)

type canceledRepoStub struct {
	byDayHour map[string]*models.CanceledSchedule
	byID      map[string]*models.CanceledSchedule
	created   []*models.CanceledSchedule
}

func newCanceledRepoStub() *canceledRepoStub {
	return &canceledRepoStub{
		byDayHour: map[string]*models.CanceledSchedule{},
		byID:      map[string]*models.CanceledSchedule{},
	}
}

func (s *canceledRepoStub) key(day, hour string) string { return day + "|" + hour }

func (s *canceledRepoStub) Create(ctx context.Context, record *models.CanceledSchedule) error {
	record.ID = models.DatedScheduleID(record.Day, record.HourOfTheDay)
	s.created = append(s.created, record)
	s.byDayHour[s.key(record.Day, record.HourOfTheDay)] = record
	s.byID[record.ID] = record
	return nil
}

func (s *canceledRepoStub) FindByID(ctx context.Context, id string) (*models.CanceledSchedule, error) {
	if record, ok := s.byID[id]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *canceledRepoStub) FindByDayHour(ctx context.Context, day, hour string) (*models.CanceledSchedule, error) {
	if record, ok := s.byDayHour[s.key(day, hour)]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *canceledRepoStub) ListByDay(ctx context.Context, day string) ([]models.CanceledSchedule, error) {
	var out []models.CanceledSchedule
	for _, record := range s.byDayHour {
		if record.Day == day {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (s *canceledRepoStub) Delete(ctx context.Context, id string) error {
	record, ok := s.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	delete(s.byID, id)
	delete(s.byDayHour, s.key(record.Day, record.HourOfTheDay))
	return nil
}

func (s *canceledRepoStub) AddUser(ctx context.Context, scheduleID, email string) error {
	record := s.byID[scheduleID]
	record.UsersList = append(record.UsersList, email)
	return nil
}

func (s *canceledRepoStub) RemoveUser(ctx context.Context, scheduleID, email string) error {
	record := s.byID[scheduleID]
	kept := record.UsersList[:0]
	for _, existing := range record.UsersList {
		if existing != email {
			kept = append(kept, existing)
		}
	}
	record.UsersList = kept
	return nil
}

func TestCanceledScheduleServiceCancelBanksAClass(t *testing.T) {
	repo := newCanceledRepoStub()
	users := &recoveryStub{users: map[string]*models.User{
		"ana@example.com": {Email: "ana@example.com"},
	}}
	cache := &cacheStub{}
	svc := NewCanceledScheduleService(repo, users, cache, nil, nil)

	record, err := svc.Cancel(context.Background(), CancelRequest{
		Day:          "2024-01-17",
		HourOfTheDay: "17:00",
		Email:        "ana@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-17_17:00", record.ID)
	assert.Equal(t, []string{"ana@example.com"}, record.UsersList)
	assert.Equal(t, []int{1}, users.deltas)
	assert.Contains(t, cache.patterns, "availability:*:2024-01-17")
}

func TestCanceledScheduleServiceCancelIsIdempotentPerUser(t *testing.T) {
	repo := newCanceledRepoStub()
	users := &recoveryStub{users: map[string]*models.User{
		"ana@example.com": {Email: "ana@example.com"},
	}}
	svc := NewCanceledScheduleService(repo, users, nil, nil, nil)

	req := CancelRequest{Day: "2024-01-17", HourOfTheDay: "17:00", Email: "ana@example.com"}
	_, err := svc.Cancel(context.Background(), req)
	require.NoError(t, err)
	record, err := svc.Cancel(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"ana@example.com"}, record.UsersList)
	assert.Len(t, repo.created, 1)
	assert.Equal(t, []int{1}, users.deltas, "second cancellation must not credit again")
}

func TestCanceledScheduleServiceCancelUnknownUser(t *testing.T) {
	repo := newCanceledRepoStub()
	users := &recoveryStub{users: map[string]*models.User{}}
	svc := NewCanceledScheduleService(repo, users, nil, nil, nil)

	_, err := svc.Cancel(context.Background(), CancelRequest{
		Day:          "2024-01-17",
		HourOfTheDay: "17:00",
		Email:        "ghost@example.com",
	})
	require.Error(t, err)
	assert.Empty(t, repo.created)
	assert.Empty(t, users.deltas)
}

func TestCanceledScheduleServiceRevertDebitsBankedClass(t *testing.T) {
	repo := newCanceledRepoStub()
	users := &recoveryStub{users: map[string]*models.User{
		"ana@example.com": {Email: "ana@example.com"},
	}}
	svc := NewCanceledScheduleService(repo, users, nil, nil, nil)

	_, err := svc.Cancel(context.Background(), CancelRequest{Day: "2024-01-17", HourOfTheDay: "17:00", Email: "ana@example.com"})
	require.NoError(t, err)

	record, err := svc.Revert(context.Background(), "2024-01-17", "17:00", "ana@example.com")
	require.NoError(t, err)
	assert.Empty(t, record.UsersList)
	assert.Equal(t, []int{1, -1}, users.deltas)
}
